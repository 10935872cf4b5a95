package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/privacy"
)

// #region fixture

// Fixture is a recorded capture trace plus the pipeline knobs to replay it
// under. Readings reuse the capture wire form.
type Fixture struct {
	Description           string            `json:"description"`
	PrivacyLevel          privacy.Level     `json:"privacy_level"`
	AnonymizationStrength privacy.Strength  `json:"anonymization_strength"`
	ConfidenceThreshold   float64           `json:"confidence_threshold"`
	TickMillis            int               `json:"tick_millis"`
	TargetElement         string            `json:"target_element"`
	Readings              []capture.Reading `json:"readings"`
}

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture JSON and fills defaults.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if f.PrivacyLevel == "" {
		f.PrivacyLevel = privacy.LevelStandard
	}
	if f.AnonymizationStrength == "" {
		f.AnonymizationStrength = privacy.StrengthHigh
	}
	if f.ConfidenceThreshold <= 0 {
		f.ConfidenceThreshold = 0.7
	}
	if f.TickMillis <= 0 {
		f.TickMillis = 100
	}
	if len(f.Readings) == 0 {
		return nil, fmt.Errorf("fixture has no readings")
	}
	return &f, nil
}

// #endregion fixture
