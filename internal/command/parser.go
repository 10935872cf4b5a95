package command

import (
	"strings"
)

// #region patterns

// patternGroup maps trigger words (any match) to the tag deltas they imply.
// Multi-word triggers match as phrases; single words match whole tokens.
type patternGroup struct {
	triggers []string
	deltas   map[string]float64
}

// Mirror-mode groups: feedback about overall style and layout.
var styleFeedback = []patternGroup{
	{triggers: []string{"harsh", "sharp", "aggressive", "bright"},
		deltas: map[string]float64{"smooth": 0.7, "calm": 0.5}},
	{triggers: []string{"soft", "muted", "calm"},
		deltas: map[string]float64{"energetic": 0.6, "sharp": 0.4}},
	{triggers: []string{"noisy", "busy", "cluttered"},
		deltas: map[string]float64{"minimal": 0.8, "open": 0.6}},
	{triggers: []string{"empty", "sparse", "boring"},
		deltas: map[string]float64{"dense": 0.5, "energetic": 0.4}},
}

var layoutFeedback = []patternGroup{
	{triggers: []string{"dense", "crowded", "packed"},
		deltas: map[string]float64{"open": 0.8, "spacious": 0.6}},
	{triggers: []string{"spacious", "empty", "sparse"},
		deltas: map[string]float64{"dense": 0.6, "compact": 0.5}},
	{triggers: []string{"scattered", "disorganized"},
		deltas: map[string]float64{"focused": 0.8, "minimal": 0.5}},
	{triggers: []string{"hard to focus"},
		deltas: map[string]float64{"focused": 0.9, "minimal": 0.7}},
}

// Edit-mode groups: instructions against a specific element.
var elementEdits = []patternGroup{
	{triggers: []string{"smaller", "reduce", "shrink"},
		deltas: map[string]float64{"compact": 0.8, "minimal": 0.6}},
	{triggers: []string{"bigger", "larger", "expand"},
		deltas: map[string]float64{"open": 0.7, "spacious": 0.5}},
	{triggers: []string{"hide", "remove", "less"},
		deltas: map[string]float64{"minimal": 0.9, "light": 0.7}},
	{triggers: []string{"emphasize", "highlight", "focus"},
		deltas: map[string]float64{"focused": 0.8, "alert": 0.6}},
}

// matchConfidence is assigned whenever at least one group matches.
const matchConfidence = 0.8

// #endregion patterns

// #region parser

// Parser turns freeform feedback and element edits into tag deltas.
// Stateless and safe for concurrent use.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser { return &Parser{} }

// Parse extracts tag changes from one input. contextElement names the
// element the user is interacting with; it becomes the target when the
// input says "this". Observe mode returns an empty intent.
func (p *Parser) Parse(raw string, mode EntryMode, contextElement string) Intent {
	intent := Intent{
		Mode:       mode,
		RawInput:   raw,
		TagChanges: map[string]float64{},
	}
	if mode == ModeObserve {
		return intent
	}

	lower := strings.ToLower(raw)
	tokens := tokenSet(lower)

	var groups []patternGroup
	switch mode {
	case ModeMirror:
		groups = append(groups, styleFeedback...)
		groups = append(groups, layoutFeedback...)
	case ModeEdit:
		groups = elementEdits
	}

	for _, g := range groups {
		for _, trig := range g.triggers {
			if !matches(lower, tokens, trig) {
				continue
			}
			intent.DetectedPatterns = append(intent.DetectedPatterns, trig)
			for tag, delta := range g.deltas {
				intent.TagChanges[tag] = delta
			}
			intent.Confidence = matchConfidence
			break
		}
	}

	if strings.Contains(lower, "this") && contextElement != "" {
		intent.TargetElements = append(intent.TargetElements, contextElement)
	}
	return intent
}

// matches checks a trigger against the input: phrases by substring, single
// words against the token set so "calming" does not trigger "calm".
func matches(lower string, tokens map[string]bool, trigger string) bool {
	if strings.ContainsRune(trigger, ' ') {
		return strings.Contains(lower, trigger)
	}
	return tokens[trigger]
}

// #endregion parser
