package orchestrator

import (
	"time"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/privacy"
	"github.com/elitecommand/aura-session/internal/vault"
)

// #region phase

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseInitializing  Phase = "initializing"
	PhaseReady         Phase = "ready"
	PhaseActive        Phase = "active"
	PhaseStopped       Phase = "stopped"
)

// #endregion phase

// #region config

// Config aggregates every component's knobs for one session.
type Config struct {
	PrivacyLevel          privacy.Level
	AnonymizationStrength privacy.Strength

	Capture capture.Config
	Adapt   adapt.Config
	Vault   vault.Config

	// StorePath enables local insight storage when non-empty.
	StorePath string
	// EncryptAtRest seals stored blobs with the session key.
	EncryptAtRest bool
	// ProvenancePath enables the adaptation log when non-empty.
	ProvenancePath string

	// BackendURL enables ingestion when non-empty; an unreachable backend
	// never stops local adaptation.
	BackendURL string

	// TargetElement receives biometric tag deltas. Defaults to the layout
	// tree root.
	TargetElement string

	// TrackerRetryDelay is the pause before restarting a failed capture
	// loop.
	TrackerRetryDelay time.Duration
}

// DefaultConfig returns the standard session configuration.
func DefaultConfig() Config {
	return Config{
		PrivacyLevel:          privacy.LevelStandard,
		AnonymizationStrength: privacy.StrengthHigh,
		Capture:               capture.DefaultConfig(),
		Adapt:                 adapt.DefaultConfig(),
		Vault:                 vault.DefaultConfig(),
		TrackerRetryDelay:     5 * time.Second,
	}
}

func (c *Config) defaults() {
	if c.PrivacyLevel == "" {
		c.PrivacyLevel = privacy.LevelStandard
	}
	if c.AnonymizationStrength == "" {
		c.AnonymizationStrength = privacy.StrengthHigh
	}
	if c.TrackerRetryDelay <= 0 {
		c.TrackerRetryDelay = 5 * time.Second
	}
}

// #endregion config
