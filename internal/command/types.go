package command

// #region entry-mode

// EntryMode is how the user's input enters the pipeline.
type EntryMode string

const (
	// ModeMirror is freeform feedback about the whole interface:
	// "too noisy", "feels sharp".
	ModeMirror EntryMode = "mirror"
	// ModeEdit is an element-specific instruction: "make this smaller".
	ModeEdit EntryMode = "edit"
	// ModeObserve is passive biometric reflection; no text is parsed.
	ModeObserve EntryMode = "observe"
)

// #endregion entry-mode

// #region intent

// Intent is the structured result of parsing one input.
type Intent struct {
	Mode             EntryMode
	RawInput         string
	DetectedPatterns []string
	TagChanges       map[string]float64
	TargetElements   []string
	Confidence       float64
}

// Actionable reports whether the intent carries any tag changes.
func (in Intent) Actionable() bool { return len(in.TagChanges) > 0 }

// #endregion intent
