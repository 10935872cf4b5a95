package adapt

import (
	"time"
)

// #region state

// UIState holds the current value of every adaptation channel. Channels
// start at their "default" value and are overwritten whole by each applied
// adaptation.
type UIState struct {
	ColorScheme   Palette
	FontSizeScale float64
	SpacingScale  float64
	LayoutDensity DensityLevel
	FilterLevel   string
	SpeedFactor   float64
	Highlight     bool
	FocusMode     bool
	Comparison    bool
	Automation    string
	Feedback      string
	Explanations  bool
	Guidance      bool
}

// DefaultUIState returns the channel values before any adaptation runs.
func DefaultUIState() UIState {
	return UIState{
		ColorScheme:   PaletteDefault,
		FontSizeScale: 1.0,
		SpacingScale:  1.0,
		LayoutDensity: DensityDefault,
		FilterLevel:   string(FilterDefault),
		SpeedFactor:   1.0,
		Automation:    string(AutomationStandard),
		Feedback:      "standard",
	}
}

// #endregion state

// #region history

// HistoryEntry records one applied adaptation.
type HistoryEntry struct {
	At         time.Time
	Adaptation Adaptation
}

// history is a bounded FIFO of applied adaptations, oldest evicted first.
type history struct {
	max     int
	entries []HistoryEntry
}

func (h *history) add(e HistoryEntry) {
	h.entries = append(h.entries, e)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
}

// #endregion history

// #region undo

// snapshot captures everything an undo must restore: channel values, the
// session tag weights, and per-element tag weights on the layout tree.
type snapshot struct {
	state   UIState
	weights map[string]float64
	tree    map[string]map[string]float64
}

// undoStack is a bounded LIFO; pushing past capacity drops the oldest
// snapshot, so only the most recent N applications can be reverted.
type undoStack struct {
	max   int
	snaps []snapshot
}

func (u *undoStack) push(s snapshot) {
	u.snaps = append(u.snaps, s)
	if len(u.snaps) > u.max {
		u.snaps = u.snaps[len(u.snaps)-u.max:]
	}
}

func (u *undoStack) pop() (snapshot, bool) {
	if len(u.snaps) == 0 {
		return snapshot{}, false
	}
	s := u.snaps[len(u.snaps)-1]
	u.snaps = u.snaps[:len(u.snaps)-1]
	return s, true
}

func (u *undoStack) depth() int { return len(u.snaps) }

// #endregion undo
