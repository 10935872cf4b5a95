package orchestrator

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/backend"
	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/command"
	"github.com/elitecommand/aura-session/internal/privacy"
	"github.com/elitecommand/aura-session/internal/settings"
)

// brokenSource fails to open, simulating a missing camera.
type brokenSource struct{}

func (brokenSource) Open(ctx context.Context) error {
	return errors.New("no capture device")
}
func (brokenSource) Capture(ctx context.Context) (capture.Frame, error) {
	return capture.Frame{}, errors.New("no capture device")
}
func (brokenSource) Close() error { return nil }

func syntheticEstimators() Estimators {
	est := capture.NewSyntheticEstimator(42)
	return Estimators{
		Source:  capture.NewSyntheticSource(),
		Face:    est,
		Emotion: est,
		Gaze:    est,
	}
}

func stressedReading() capture.Reading {
	return capture.Reading{
		Timestamp:  time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		GazeX:      0.5,
		GazeY:      0.5,
		Attention:  0.8,
		Stress:     0.85,
		Confidence: 0.9,
	}
}

func TestInitializeReachesReadyAndStartStopAreIdempotent(t *testing.T) {
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if sys.Phase() != PhaseReady {
		t.Fatalf("phase = %s, want ready", sys.Phase())
	}
	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err == nil {
		t.Fatalf("second Initialize succeeded")
	}

	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if sys.Phase() != PhaseActive {
		t.Fatalf("phase = %s, want active", sys.Phase())
	}

	sys.Stop()
	sys.Stop()
	if sys.Phase() != PhaseStopped {
		t.Fatalf("phase = %s, want stopped", sys.Phase())
	}

	if err := sys.Start(ctx); err != nil {
		t.Fatalf("restart after stop: %v", err)
	}
	sys.Shutdown(ctx)
	if sys.Phase() != PhaseUninitialized {
		t.Fatalf("phase after shutdown = %s", sys.Phase())
	}
}

func TestMissingDeviceDisablesTrackingOnly(t *testing.T) {
	est := syntheticEstimators()
	est.Source = brokenSource{}
	sys := New(DefaultConfig(), est, zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize with broken source: %v", err)
	}
	if sys.Phase() != PhaseReady {
		t.Fatalf("phase = %s, want ready", sys.Phase())
	}
	// The rest of the session still works.
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	intent, err := sys.SubmitFeedback("too noisy", command.ModeMirror, "")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if !intent.Actionable() {
		t.Fatalf("feedback not parsed")
	}
	sys.Shutdown(ctx)
}

func TestUnreachableBackendRunsLocally(t *testing.T) {
	srv := httptest.NewServer(backend.NewDevServer(zap.NewNop()).Router())
	url := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.BackendURL = url
	sys := New(cfg, syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if sys.SessionID() != "" {
		t.Fatalf("session id set despite dead backend")
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	sys.Shutdown(ctx)
}

func TestBackendDirectivesReachTheEngine(t *testing.T) {
	srv := httptest.NewServer(backend.NewDevServer(zap.NewNop()).Router())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BackendURL = srv.URL
	sys := New(cfg, syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if sys.SessionID() == "" {
		t.Fatalf("no backend session id")
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// High stress produces a calming color-scheme directive from the stub.
	if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	if got := sys.Engine().State().ColorScheme; got != adapt.PaletteCalming {
		t.Fatalf("color scheme = %q, want calming", got)
	}
	if got := sys.Theme().Get("--aura-primary-h"); got != "200" {
		t.Fatalf("theme hue = %q, want 200", got)
	}
	sys.Shutdown(ctx)
}

func TestPassiveTierGatesBiometricReaction(t *testing.T) {
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	// Passive tier off by default: readings change nothing.
	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	if sys.Engine().Weights().Get("calm") != 0 {
		t.Fatalf("passive tier disabled but reading drove tag changes")
	}
	sys.Shutdown(ctx)

	// Opted in, the same reading raises calming tags.
	optIn := settings.DefaultSettings("nika")
	optIn.PassiveTierEnabled = true
	sys = New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	if err := sys.Initialize(ctx, "nika", optIn); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	if sys.Engine().Weights().Get("calm") == 0 {
		t.Fatalf("passive tier enabled but stress reading changed nothing")
	}
	sys.Shutdown(ctx)
}

func TestUserSettingsOverrideSessionConfig(t *testing.T) {
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	u := settings.DefaultSettings("nika")
	u.PrivacyLevel = "comprehensive"
	u.AnonymizationStrength = "low"
	u.AdaptationSensitivity = 0.25
	u.PropagationFactor = 0.5
	u.AggressiveConflicts = true
	u.DataRetentionDays = 2

	if err := sys.Initialize(ctx, "nika", u); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer sys.Shutdown(ctx)

	if sys.cfg.PrivacyLevel != privacy.LevelComprehensive {
		t.Fatalf("privacy level = %s", sys.cfg.PrivacyLevel)
	}
	if sys.cfg.AnonymizationStrength != privacy.StrengthLow {
		t.Fatalf("anonymization strength = %s", sys.cfg.AnonymizationStrength)
	}
	if sys.cfg.Adapt.BiometricSensitivity != 0.25 {
		t.Fatalf("biometric sensitivity = %f", sys.cfg.Adapt.BiometricSensitivity)
	}
	if sys.cfg.Adapt.PropagationFactor != 0.5 {
		t.Fatalf("propagation factor = %f", sys.cfg.Adapt.PropagationFactor)
	}
	if sys.cfg.Adapt.ReductionFactor != aggressiveReductionFactor {
		t.Fatalf("reduction factor = %f", sys.cfg.Adapt.ReductionFactor)
	}
	if sys.cfg.Vault.RetentionHours != 48 {
		t.Fatalf("retention hours = %d", sys.cfg.Vault.RetentionHours)
	}
}

func TestSensitivityScalesPassiveReaction(t *testing.T) {
	ctx := context.Background()
	calmAt := func(sensitivity float64) float64 {
		u := settings.DefaultSettings("nika")
		u.PassiveTierEnabled = true
		u.AdaptationSensitivity = sensitivity
		sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
		if err := sys.Initialize(ctx, "nika", u); err != nil {
			t.Fatalf("Initialize: %v", err)
		}
		defer sys.Shutdown(ctx)
		if err := sys.Start(ctx); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
			t.Fatalf("ProcessReading: %v", err)
		}
		return sys.Engine().Weights().Get("calm")
	}

	full := calmAt(1.0)
	quarter := calmAt(0.25)
	if full == 0 || quarter == 0 {
		t.Fatalf("stress reaction inert: full=%f quarter=%f", full, quarter)
	}
	if quarter >= full {
		t.Fatalf("lower sensitivity did not dampen reaction: full=%f quarter=%f", full, quarter)
	}
}

func TestInvalidUserPrivacyLevelFailsInitialize(t *testing.T) {
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	u := settings.DefaultSettings("nika")
	u.PrivacyLevel = "paranoid"

	if err := sys.Initialize(context.Background(), "nika", u); err == nil {
		t.Fatalf("invalid privacy level accepted")
	}
	if sys.Phase() != PhaseUninitialized {
		t.Fatalf("phase after failed initialize = %s", sys.Phase())
	}
}

func TestFeedbackTierGating(t *testing.T) {
	muted := settings.DefaultSettings("nika")
	muted.SemiActiveTierEnabled = false
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", muted); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	intent, err := sys.SubmitFeedback("too noisy", command.ModeMirror, "")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if intent.Actionable() {
		t.Fatalf("disabled tier still parsed feedback")
	}
	if sys.Engine().Weights().Get("minimal") != 0 {
		t.Fatalf("disabled tier still applied deltas")
	}
	sys.Shutdown(ctx)
}

func TestEditFeedbackTargetsContextElement(t *testing.T) {
	sys := New(DefaultConfig(), syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	intent, err := sys.SubmitFeedback("make this smaller", command.ModeEdit, "metrics_grid")
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if len(intent.TargetElements) != 1 || intent.TargetElements[0] != "metrics_grid" {
		t.Fatalf("targets = %v", intent.TargetElements)
	}
	el, err := sys.Engine().Tree().Element("metrics_grid")
	if err != nil {
		t.Fatalf("Element: %v", err)
	}
	if el.TagWeights["compact"] == 0 {
		t.Fatalf("edit did not raise compact on target element")
	}
	if !sys.Revert() {
		t.Fatalf("revert after edit failed")
	}
	sys.Shutdown(ctx)
}

func TestStorageRetainsReadings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorePath = filepath.Join(t.TempDir(), "insights.db")
	cfg.EncryptAtRest = true
	sys := New(cfg, syntheticEstimators(), zap.NewNop())
	ctx := context.Background()

	if err := sys.Initialize(ctx, "nika", settings.DefaultSettings("nika")); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := sys.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := sys.ProcessReading(ctx, stressedReading()); err != nil {
		t.Fatalf("ProcessReading: %v", err)
	}
	sys.Shutdown(ctx)
}

func TestClassifyCoversTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want FailureClass
	}{
		{capture.ErrDeviceUnavailable, FailureDevice},
		{&capture.ModelLoadError{Capability: "gaze", Err: errors.New("missing model")}, FailureModelLoad},
		{&capture.ProcessingError{Stage: "face", Err: errors.New("bad frame")}, FailureProcessing},
		{&adapt.RejectedError{Reason: adapt.RejectCooldown}, FailureRejection},
		{&adapt.TransformError{Type: adapt.TypeColorScheme, Err: errors.New("bad palette")}, FailureTransform},
		{&backend.NetworkError{Op: "ingest", Err: errors.New("refused")}, FailureNetwork},
		{errors.New("mystery"), FailureUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Fatalf("Classify(%v) = %s, want %s", c.err, got, c.want)
		}
	}
}
