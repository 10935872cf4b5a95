package adapt

import "time"

// #region adaptation-type

// Type enumerates the eight adaptation channels. Each channel has its own
// cooldown state.
type Type string

const (
	TypeColorScheme           Type = "color_scheme"
	TypeTypography            Type = "typography"
	TypeLayoutDensity         Type = "layout_density"
	TypeInformationFiltering  Type = "information_filtering"
	TypeInteractionSpeed      Type = "interaction_speed"
	TypeContentPrioritization Type = "content_prioritization"
	TypeAutomationLevel       Type = "automation_level"
	TypeFeedbackIntensity     Type = "feedback_intensity"
)

// AllTypes lists every adaptation channel.
func AllTypes() []Type {
	return []Type{
		TypeColorScheme, TypeTypography, TypeLayoutDensity,
		TypeInformationFiltering, TypeInteractionSpeed,
		TypeContentPrioritization, TypeAutomationLevel, TypeFeedbackIntensity,
	}
}

// Source records what initiated an adaptation.
type Source string

const (
	SourceBiometric Source = "biometric"
	SourceManual    Source = "manual"
	SourceCommand   Source = "command"
)

// #endregion adaptation-type

// #region params-union

// Params is the closed union of per-type parameter records. Exactly one
// concrete type exists per adaptation Type; the engine dispatches with an
// exhaustive type switch.
type Params interface {
	AdaptationType() Type
	isParams()
}

// ColorSchemeParams selects a named palette.
type ColorSchemeParams struct {
	Scheme Palette
}

func (ColorSchemeParams) AdaptationType() Type { return TypeColorScheme }
func (ColorSchemeParams) isParams()            {}

// TypographyParams scales font size and letter/line spacing.
type TypographyParams struct {
	SizeScale    float64
	SpacingScale float64
}

func (TypographyParams) AdaptationType() Type { return TypeTypography }
func (TypographyParams) isParams()            {}

// LayoutDensityParams selects a named density level.
type LayoutDensityParams struct {
	Density DensityLevel
}

func (LayoutDensityParams) AdaptationType() Type { return TypeLayoutDensity }
func (LayoutDensityParams) isParams()            {}

// FilterLevel names an information-filtering posture.
type FilterLevel string

const (
	FilterEssentialOnly FilterLevel = "essential_only"
	FilterHighPriority  FilterLevel = "high_priority"
	FilterComprehensive FilterLevel = "comprehensive"
	FilterDefault       FilterLevel = "default"
)

// InformationFilteringParams selects a filtering posture.
type InformationFilteringParams struct {
	FilterLevel FilterLevel
}

func (InformationFilteringParams) AdaptationType() Type { return TypeInformationFiltering }
func (InformationFilteringParams) isParams()            {}

// SpeedLevel names an interaction pacing.
type SpeedLevel string

const (
	SpeedRelaxed  SpeedLevel = "relaxed"
	SpeedStandard SpeedLevel = "standard"
	SpeedBrisk    SpeedLevel = "brisk"
)

// InteractionSpeedParams selects interaction pacing.
type InteractionSpeedParams struct {
	Speed SpeedLevel
}

func (InteractionSpeedParams) AdaptationType() Type { return TypeInteractionSpeed }
func (InteractionSpeedParams) isParams()            {}

// ContentPrioritizationParams tunes what content is surfaced first.
type ContentPrioritizationParams struct {
	HighlightImportant bool
	FocusMode          bool
	ComparisonMode     bool
}

func (ContentPrioritizationParams) AdaptationType() Type { return TypeContentPrioritization }
func (ContentPrioritizationParams) isParams()            {}

// AutomationGrade names how much the interface automates on the user's behalf.
type AutomationGrade string

const (
	AutomationMinimal   AutomationGrade = "minimal"
	AutomationStandard  AutomationGrade = "standard"
	AutomationIncreased AutomationGrade = "increased"
)

// AutomationLevelParams selects the automation grade.
type AutomationLevelParams struct {
	Level AutomationGrade
}

func (AutomationLevelParams) AdaptationType() Type { return TypeAutomationLevel }
func (AutomationLevelParams) isParams()            {}

// FeedbackIntensityParams tunes how loudly the interface responds.
type FeedbackIntensityParams struct {
	Intensity    string // "reduced" | "standard" | "enhanced"
	Explanations bool
	Guidance     bool
}

func (FeedbackIntensityParams) AdaptationType() Type { return TypeFeedbackIntensity }
func (FeedbackIntensityParams) isParams()            {}

// #endregion params-union

// #region adaptation

// Adaptation is one typed request to change rendered UI state.
type Adaptation struct {
	Params     Params
	Confidence float64
	Urgency    float64
	Source     Source
}

// Type returns the adaptation channel of the request.
func (a Adaptation) Type() Type { return a.Params.AdaptationType() }

// #endregion adaptation

// #region config

// Config holds the engine's pacing and resolution knobs.
type Config struct {
	MaxAdaptationsPerMinute int
	Cooldown                time.Duration
	AnimationDuration       time.Duration
	SpeedMultiplier         float64
	ReductionFactor         float64
	PropagationFactor       float64

	// BiometricSensitivity scales biometric tag deltas before application.
	// 1 applies them as derived; the per-user setting dials this down.
	BiometricSensitivity float64

	// TagActivationThreshold is the weight above which a tag's render effect
	// is written to the render target.
	TagActivationThreshold float64
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MaxAdaptationsPerMinute: 10,
		Cooldown:                30 * time.Second,
		AnimationDuration:       300 * time.Millisecond,
		SpeedMultiplier:         1.0,
		ReductionFactor:         0.7,
		PropagationFactor:       0.3,
		BiometricSensitivity:    1.0,
		TagActivationThreshold:  0.5,
	}
}

func (c *Config) defaults() {
	if c.MaxAdaptationsPerMinute <= 0 {
		c.MaxAdaptationsPerMinute = 10
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.AnimationDuration <= 0 {
		c.AnimationDuration = 300 * time.Millisecond
	}
	if c.SpeedMultiplier <= 0 {
		c.SpeedMultiplier = 1.0
	}
	if c.ReductionFactor <= 0 {
		c.ReductionFactor = 0.7
	}
	if c.PropagationFactor < 0 {
		c.PropagationFactor = 0.3
	}
	if c.BiometricSensitivity <= 0 {
		c.BiometricSensitivity = 1.0
	}
	if c.TagActivationThreshold <= 0 {
		c.TagActivationThreshold = 0.5
	}
}

// #endregion config
