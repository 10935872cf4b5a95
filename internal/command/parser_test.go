package command

import (
	"math"
	"testing"
)

func TestMirrorStyleFeedback(t *testing.T) {
	p := NewParser()
	intent := p.Parse("This feels too harsh", ModeMirror, "")

	if !intent.Actionable() {
		t.Fatalf("no tag changes for %q", intent.RawInput)
	}
	if math.Abs(intent.TagChanges["smooth"]-0.7) > 1e-9 {
		t.Fatalf("smooth delta = %f, want 0.7", intent.TagChanges["smooth"])
	}
	if math.Abs(intent.TagChanges["calm"]-0.5) > 1e-9 {
		t.Fatalf("calm delta = %f, want 0.5", intent.TagChanges["calm"])
	}
	if intent.Confidence != 0.8 {
		t.Fatalf("confidence = %f, want 0.8", intent.Confidence)
	}
}

func TestMirrorLayoutPhrase(t *testing.T) {
	p := NewParser()
	intent := p.Parse("it's hard to focus on anything here", ModeMirror, "")

	if math.Abs(intent.TagChanges["focused"]-0.9) > 1e-9 {
		t.Fatalf("focused delta = %f, want 0.9", intent.TagChanges["focused"])
	}
	if math.Abs(intent.TagChanges["minimal"]-0.7) > 1e-9 {
		t.Fatalf("minimal delta = %f, want 0.7", intent.TagChanges["minimal"])
	}
}

func TestEditModeTargetsContextElement(t *testing.T) {
	p := NewParser()
	intent := p.Parse("make this smaller", ModeEdit, "metrics_grid")

	if math.Abs(intent.TagChanges["compact"]-0.8) > 1e-9 {
		t.Fatalf("compact delta = %f, want 0.8", intent.TagChanges["compact"])
	}
	if len(intent.TargetElements) != 1 || intent.TargetElements[0] != "metrics_grid" {
		t.Fatalf("targets = %v, want [metrics_grid]", intent.TargetElements)
	}
}

func TestThisWithoutContextTargetsNothing(t *testing.T) {
	p := NewParser()
	intent := p.Parse("hide this", ModeEdit, "")

	if len(intent.TargetElements) != 0 {
		t.Fatalf("targets = %v, want none", intent.TargetElements)
	}
	if math.Abs(intent.TagChanges["minimal"]-0.9) > 1e-9 {
		t.Fatalf("minimal delta = %f, want 0.9", intent.TagChanges["minimal"])
	}
}

func TestMirrorPatternsIgnoredInEditMode(t *testing.T) {
	p := NewParser()
	intent := p.Parse("too noisy", ModeEdit, "")

	if intent.Actionable() {
		t.Fatalf("mirror pattern matched in edit mode: %v", intent.TagChanges)
	}
	if intent.Confidence != 0 {
		t.Fatalf("confidence = %f, want 0", intent.Confidence)
	}
}

func TestObserveModeParsesNothing(t *testing.T) {
	p := NewParser()
	intent := p.Parse("too harsh", ModeObserve, "dashboard")

	if intent.Actionable() || len(intent.DetectedPatterns) != 0 {
		t.Fatalf("observe mode produced intent: %+v", intent)
	}
}

func TestWholeWordMatchingAvoidsSubstrings(t *testing.T) {
	p := NewParser()
	// "calming" must not trigger the "calm" group.
	intent := p.Parse("the calming colors are nice", ModeMirror, "")

	if intent.Actionable() {
		t.Fatalf("substring matched as trigger: %v", intent.TagChanges)
	}
}

func TestOverlappingGroupsMergeDeltas(t *testing.T) {
	p := NewParser()
	// "empty" appears in a style group and a layout group; both apply, the
	// later (layout) group wins on shared tags.
	intent := p.Parse("feels empty", ModeMirror, "")

	if len(intent.DetectedPatterns) != 2 {
		t.Fatalf("detected patterns = %v, want 2 groups", intent.DetectedPatterns)
	}
	if math.Abs(intent.TagChanges["dense"]-0.6) > 1e-9 {
		t.Fatalf("dense delta = %f, want layout group's 0.6", intent.TagChanges["dense"])
	}
	if math.Abs(intent.TagChanges["compact"]-0.5) > 1e-9 {
		t.Fatalf("compact delta = %f, want 0.5", intent.TagChanges["compact"])
	}
}
