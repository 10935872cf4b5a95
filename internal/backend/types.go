package backend

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/privacy"
)

// #region session

// StartSessionRequest opens a monitoring session for a user.
type StartSessionRequest struct {
	UserID          string            `json:"user_id"`
	DeviceInfo      map[string]string `json:"device_info,omitempty"`
	PrivacySettings map[string]string `json:"privacy_settings,omitempty"`
}

// UserProfile is the backend's view of the user's adaptation profile.
type UserProfile struct {
	AdaptationSensitivity float64 `json:"adaptation_sensitivity"`
	PrivacyLevel          string  `json:"privacy_level"`
	LearningConfidence    float64 `json:"learning_confidence"`
}

// StartSessionResponse acknowledges a started session.
type StartSessionResponse struct {
	SessionID   string      `json:"session_id"`
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	UserProfile UserProfile `json:"user_profile"`
}

// SessionSummary is returned when a session ends.
type SessionSummary struct {
	Status              string  `json:"status"`
	SessionDuration     float64 `json:"session_duration"` // seconds
	DataPointsCollected int     `json:"data_points_collected"`
	SessionQuality      float64 `json:"session_quality"`
	TotalAdaptations    int     `json:"total_adaptations"`
}

// #endregion session

// #region ingest

// IngestRequest carries one anonymized payload into the backend.
type IngestRequest struct {
	privacy.BackendPayload
}

// Directive is one adaptation the backend asks the client to apply.
type Directive struct {
	Type       string         `json:"type"`
	Trigger    string         `json:"trigger"`
	Parameters map[string]any `json:"parameters"`
	Confidence float64        `json:"confidence"`
	Urgency    float64        `json:"urgency"`
}

// IngestResponse reports processing status and any resulting directives.
type IngestResponse struct {
	Status             string      `json:"status"`
	AdaptationsApplied int         `json:"adaptations_applied"`
	Adaptations        []Directive `json:"adaptations"`
	Timestamp          time.Time   `json:"timestamp"`
}

// #endregion ingest

// #region decode

// Decode turns a wire directive into a typed adaptation. Unknown directive
// types and malformed parameters are errors; the caller decides whether to
// skip or abort.
func (d Directive) Decode() (adapt.Adaptation, error) {
	a := adapt.Adaptation{
		Confidence: d.Confidence,
		Urgency:    d.Urgency,
		Source:     adapt.SourceBiometric,
	}
	switch adapt.Type(d.Type) {
	case adapt.TypeColorScheme:
		a.Params = adapt.ColorSchemeParams{Scheme: adapt.Palette(paramString(d.Parameters, "scheme", "default"))}
	case adapt.TypeTypography:
		a.Params = adapt.TypographyParams{
			SizeScale:    paramFloat(d.Parameters, "size_increase", 1.0),
			SpacingScale: paramFloat(d.Parameters, "spacing_increase", 1.0),
		}
	case adapt.TypeLayoutDensity:
		a.Params = adapt.LayoutDensityParams{Density: adapt.DensityLevel(paramString(d.Parameters, "density", "default"))}
	case adapt.TypeInformationFiltering:
		a.Params = adapt.InformationFilteringParams{FilterLevel: adapt.FilterLevel(paramString(d.Parameters, "filter_level", "default"))}
	case adapt.TypeInteractionSpeed:
		a.Params = adapt.InteractionSpeedParams{Speed: adapt.SpeedLevel(paramString(d.Parameters, "speed", "standard"))}
	case adapt.TypeContentPrioritization:
		a.Params = adapt.ContentPrioritizationParams{
			HighlightImportant: paramBool(d.Parameters, "highlight_important"),
			FocusMode:          paramBool(d.Parameters, "focus_mode"),
			ComparisonMode:     paramBool(d.Parameters, "comparison_mode"),
		}
	case adapt.TypeAutomationLevel:
		a.Params = adapt.AutomationLevelParams{Level: adapt.AutomationGrade(paramString(d.Parameters, "level", "standard"))}
	case adapt.TypeFeedbackIntensity:
		a.Params = adapt.FeedbackIntensityParams{
			Intensity:    paramString(d.Parameters, "intensity", "standard"),
			Explanations: paramBool(d.Parameters, "explanations"),
			Guidance:     paramBool(d.Parameters, "guidance"),
		}
	default:
		return adapt.Adaptation{}, fmt.Errorf("unknown directive type %q", d.Type)
	}
	return a, nil
}

func paramString(m map[string]any, key, fallback string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return fallback
}

func paramFloat(m map[string]any, key string, fallback float64) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f
		}
	}
	return fallback
}

func paramBool(m map[string]any, key string) bool {
	v, _ := m[key].(bool)
	return v
}

// #endregion decode
