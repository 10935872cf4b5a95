package tags

import (
	"errors"
	"math"
	"testing"
)

func TestResolveKnownAndUnknown(t *testing.T) {
	c := DefaultCatalog()

	d, err := c.Resolve("calm")
	if err != nil {
		t.Fatalf("Resolve(calm): %v", err)
	}
	if d.Category != CategoryStyle {
		t.Fatalf("expected style category, got %s", d.Category)
	}

	_, err = c.Resolve("nonexistent")
	if !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestApplyDeltaClamps(t *testing.T) {
	w := NewWeights(DefaultCatalog())

	if err := w.ApplyDelta("calm", 1.7); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got := w.Get("calm"); got != 1.0 {
		t.Fatalf("expected clamp to 1.0, got %f", got)
	}

	if err := w.ApplyDelta("calm", -5.0); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got := w.Get("calm"); got != 0.0 {
		t.Fatalf("expected clamp to 0.0, got %f", got)
	}
}

func TestConflictReductionCompounds(t *testing.T) {
	w := NewWeights(DefaultCatalog())

	// "calm" conflicts with "energetic"
	if err := w.ApplyDelta("energetic", 0.8); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	// Each delta to calm re-reduces energetic by the factor.
	if err := w.ApplyDelta("calm", 0.1); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got, want := w.Get("energetic"), 0.8*0.7; math.Abs(got-want) > 1e-9 {
		t.Fatalf("after first delta: got %f want %f", got, want)
	}

	if err := w.ApplyDelta("calm", 0.1); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got, want := w.Get("energetic"), 0.8*0.7*0.7; math.Abs(got-want) > 1e-9 {
		t.Fatalf("after second delta: got %f want %f", got, want)
	}
}

func TestConflictReductionSkipsZeroWeights(t *testing.T) {
	w := NewWeights(DefaultCatalog())

	if err := w.ApplyDelta("calm", 0.5); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if got := w.Get("energetic"); got != 0 {
		t.Fatalf("zero-weight conflict should stay zero, got %f", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	w := NewWeights(DefaultCatalog())
	if err := w.ApplyDelta("soft", 0.4); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	snap := w.Snapshot()
	if err := w.ApplyDelta("soft", 0.3); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}
	if err := w.ApplyDelta("sharp", 0.9); err != nil {
		t.Fatalf("ApplyDelta: %v", err)
	}

	w.Restore(snap)
	if got := w.Get("soft"); math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("restore soft: got %f want 0.4", got)
	}
	if got := w.Get("sharp"); got != 0 {
		t.Fatalf("restore sharp: got %f want 0", got)
	}
}

func TestLoadCatalogYAML(t *testing.T) {
	data := []byte(`
tags:
  - name: quiet
    category: mood
    conflicts: [loud]
    render:
      "--aura-volume": "0.2"
  - name: loud
    category: mood
    conflicts: [quiet]
`)
	c, err := LoadCatalog(data)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 tags, got %d", c.Len())
	}
	d, err := c.Resolve("quiet")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.RenderEffect["--aura-volume"] != "0.2" {
		t.Fatalf("render effect not loaded: %v", d.RenderEffect)
	}
}

func TestLoadCatalogRejectsDuplicates(t *testing.T) {
	data := []byte("tags:\n  - name: a\n    category: mood\n  - name: a\n    category: mood\n")
	if _, err := LoadCatalog(data); err == nil {
		t.Fatal("expected duplicate error")
	}
}
