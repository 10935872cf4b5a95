package tags

import "fmt"

// #region weights

// Weights holds one session's mutable tag weights over a shared catalog.
// All tags start at 0; weights are clamped to [0,1]. Not safe for concurrent
// use — a session's pipeline runs strictly sequentially.
type Weights struct {
	catalog *Catalog
	w       map[string]float64
	factor  float64 // conflict reduction factor
}

// NewWeights creates a zeroed weight map bound to catalog.
func NewWeights(catalog *Catalog) *Weights {
	return NewWeightsWithFactor(catalog, DefaultReductionFactor)
}

// NewWeightsWithFactor creates a zeroed weight map with a custom conflict
// reduction factor.
func NewWeightsWithFactor(catalog *Catalog, reductionFactor float64) *Weights {
	w := make(map[string]float64, catalog.Len())
	for _, name := range catalog.order {
		w[name] = 0
	}
	return &Weights{catalog: catalog, w: w, factor: reductionFactor}
}

// Catalog returns the catalog these weights are bound to.
func (s *Weights) Catalog() *Catalog { return s.catalog }

// Get returns the current weight of a tag, or 0 for unknown tags.
func (s *Weights) Get(name string) float64 { return s.w[name] }

// #endregion weights

// #region apply-delta

// ApplyDelta shifts a tag's weight by delta, clamped to [0,1], then decays
// every conflicting tag's non-zero weight by the reduction factor. The decay
// is applied on every call: repeated deltas against tag A keep compounding the
// reduction on A's conflicts. That repeated-decay behaviour is intentional
// and load-bearing for callers that rely on conflicts fading out under
// sustained pressure.
func (s *Weights) ApplyDelta(name string, delta float64) error {
	def, ok := s.catalog.defs[name]
	if !ok {
		return fmt.Errorf("apply delta to %q: %w", name, ErrTagNotFound)
	}

	s.w[name] = clamp01(s.w[name] + delta)

	for _, conflict := range def.Conflicts {
		if cur, present := s.w[conflict]; present && cur != 0 {
			s.w[conflict] = clamp01(cur * s.factor)
		}
	}
	return nil
}

// #endregion apply-delta

// #region snapshot

// Snapshot returns a copy of the current weights, suitable for undo.
func (s *Weights) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.w))
	for k, v := range s.w {
		out[k] = v
	}
	return out
}

// Restore replaces the current weights with a previously taken snapshot.
func (s *Weights) Restore(snap map[string]float64) {
	for k := range s.w {
		s.w[k] = snap[k]
	}
}

// Reset zeroes every weight.
func (s *Weights) Reset() {
	for k := range s.w {
		s.w[k] = 0
	}
}

// #endregion snapshot

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
