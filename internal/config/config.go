package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/orchestrator"
	"github.com/elitecommand/aura-session/internal/privacy"
)

// #region file

// File is the on-disk session configuration. Every field is optional;
// zero values fall back to the built-in defaults.
type File struct {
	Privacy struct {
		Level                 string `yaml:"level"`
		AnonymizationStrength string `yaml:"anonymization_strength"`
	} `yaml:"privacy"`

	Capture struct {
		SamplingRateHz      float64 `yaml:"sampling_rate_hz"`
		ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	} `yaml:"capture"`

	Adaptation struct {
		MaxPerMinute      int     `yaml:"max_per_minute"`
		CooldownMillis    int     `yaml:"cooldown_ms"`
		AnimationMillis   int     `yaml:"animation_ms"`
		SpeedMultiplier   float64 `yaml:"speed_multiplier"`
		ReductionFactor   float64 `yaml:"reduction_factor"`
		PropagationFactor float64 `yaml:"propagation_factor"`
	} `yaml:"adaptation"`

	Storage struct {
		Path           string `yaml:"path"`
		EncryptAtRest  *bool  `yaml:"encrypt_at_rest"`
		RetentionHours int    `yaml:"retention_hours"`
		ProvenancePath string `yaml:"provenance_path"`
	} `yaml:"storage"`

	Backend struct {
		URL string `yaml:"url"`
	} `yaml:"backend"`

	TargetElement string `yaml:"target_element"`
}

// Load reads a YAML config file and resolves it to a session
// configuration. A missing path returns the defaults.
func Load(path string) (orchestrator.Config, error) {
	if path == "" {
		return orchestrator.DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return orchestrator.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes to a session configuration.
func Parse(data []byte) (orchestrator.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return orchestrator.Config{}, fmt.Errorf("parse config: %w", err)
	}
	return f.Resolve()
}

// #endregion file

// #region resolve

// Resolve validates the file and merges it over the defaults.
func (f *File) Resolve() (orchestrator.Config, error) {
	cfg := orchestrator.DefaultConfig()

	if f.Privacy.Level != "" {
		level := privacy.Level(f.Privacy.Level)
		switch level {
		case privacy.LevelMinimal, privacy.LevelStandard, privacy.LevelComprehensive:
			cfg.PrivacyLevel = level
		default:
			return orchestrator.Config{}, fmt.Errorf("unknown privacy level %q", f.Privacy.Level)
		}
	}
	if f.Privacy.AnonymizationStrength != "" {
		strength := privacy.Strength(f.Privacy.AnonymizationStrength)
		switch strength {
		case privacy.StrengthLow, privacy.StrengthMedium, privacy.StrengthHigh:
			cfg.AnonymizationStrength = strength
		default:
			return orchestrator.Config{}, fmt.Errorf("unknown anonymization strength %q", f.Privacy.AnonymizationStrength)
		}
	}

	if err := f.resolveCapture(&cfg.Capture); err != nil {
		return orchestrator.Config{}, err
	}
	if err := f.resolveAdaptation(&cfg.Adapt); err != nil {
		return orchestrator.Config{}, err
	}
	f.resolveStorage(&cfg)

	cfg.BackendURL = f.Backend.URL
	cfg.TargetElement = f.TargetElement
	return cfg, nil
}

func (f *File) resolveCapture(c *capture.Config) error {
	if f.Capture.SamplingRateHz != 0 {
		if f.Capture.SamplingRateHz < 0 {
			return fmt.Errorf("sampling rate %.2f must be positive", f.Capture.SamplingRateHz)
		}
		c.SamplingRateHz = f.Capture.SamplingRateHz
	}
	if f.Capture.ConfidenceThreshold != 0 {
		if f.Capture.ConfidenceThreshold < 0 || f.Capture.ConfidenceThreshold > 1 {
			return fmt.Errorf("confidence threshold %.2f outside [0,1]", f.Capture.ConfidenceThreshold)
		}
		c.ConfidenceThreshold = f.Capture.ConfidenceThreshold
	}
	return nil
}

func (f *File) resolveAdaptation(c *adapt.Config) error {
	a := f.Adaptation
	if a.MaxPerMinute != 0 {
		if a.MaxPerMinute < 0 {
			return fmt.Errorf("max adaptations per minute %d must be positive", a.MaxPerMinute)
		}
		c.MaxAdaptationsPerMinute = a.MaxPerMinute
	}
	if a.CooldownMillis != 0 {
		c.Cooldown = time.Duration(a.CooldownMillis) * time.Millisecond
	}
	if a.AnimationMillis != 0 {
		c.AnimationDuration = time.Duration(a.AnimationMillis) * time.Millisecond
	}
	if a.SpeedMultiplier != 0 {
		c.SpeedMultiplier = a.SpeedMultiplier
	}
	if a.ReductionFactor != 0 {
		if a.ReductionFactor < 0 || a.ReductionFactor > 1 {
			return fmt.Errorf("reduction factor %.2f outside [0,1]", a.ReductionFactor)
		}
		c.ReductionFactor = a.ReductionFactor
	}
	if a.PropagationFactor != 0 {
		if a.PropagationFactor < 0 || a.PropagationFactor > 1 {
			return fmt.Errorf("propagation factor %.2f outside [0,1]", a.PropagationFactor)
		}
		c.PropagationFactor = a.PropagationFactor
	}
	return nil
}

func (f *File) resolveStorage(cfg *orchestrator.Config) {
	cfg.StorePath = f.Storage.Path
	cfg.ProvenancePath = f.Storage.ProvenancePath
	cfg.EncryptAtRest = f.Storage.Path != ""
	if f.Storage.EncryptAtRest != nil {
		cfg.EncryptAtRest = *f.Storage.EncryptAtRest
	}
	if f.Storage.RetentionHours != 0 {
		cfg.Vault.RetentionHours = f.Storage.RetentionHours
	}
}

// #endregion resolve
