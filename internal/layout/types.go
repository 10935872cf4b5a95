package layout

// #region priority

// Priority ranks how strongly an element participates in adaptation.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Multiplier scales any tag-weight delta applied to an element of this
// priority. Unknown priorities fall back to the low multiplier.
func (p Priority) Multiplier() float64 {
	switch p {
	case PriorityCritical:
		return 1.0
	case PriorityHigh:
		return 0.8
	case PriorityMedium:
		return 0.6
	default:
		return 0.4
	}
}

// #endregion priority

// #region element

// Element is one addressable UI region in the layout tree.
type Element struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"` // container, panel, card, button, ...
	ParentID string   `yaml:"parent"`
	Children []string `yaml:"-"`

	// TagWeights is the element's current per-tag weight state, seeded from
	// the configured defaults.
	TagWeights map[string]float64 `yaml:"tags"`

	// AdaptationPriority scales deltas applied to this element.
	AdaptationPriority Priority `yaml:"priority"`

	// VisibilityRank orders elements 1 (always shown) to 10 (first hidden)
	// for density-driven visibility thresholds.
	VisibilityRank int `yaml:"visibility_rank"`
}

// #endregion element
