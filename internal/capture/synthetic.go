package capture

import (
	"context"
	"math"
	"math/rand"
	"sync"
)

// #region synthetic-source

// SyntheticSource generates frames without hardware, for local runs, tests,
// and replay fixtures. Deterministic for a fixed seed.
type SyntheticSource struct {
	mu     sync.Mutex
	opened bool
	n      int
}

// NewSyntheticSource returns a source that is always available.
func NewSyntheticSource() *SyntheticSource { return &SyntheticSource{} }

// Open marks the source as acquired.
func (s *SyntheticSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	return nil
}

// Capture produces a tiny frame whose first byte is a frame counter, which
// the synthetic estimators use to vary their output.
func (s *SyntheticSource) Capture(ctx context.Context) (Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.opened {
		return Frame{}, ErrDeviceUnavailable
	}
	s.n++
	return Frame{Width: 1, Height: 1, Pixels: []byte{byte(s.n)}}, nil
}

// Close releases the source.
func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = false
	return nil
}

// #endregion synthetic-source

// #region synthetic-estimators

// SyntheticEstimator implements all three estimator interfaces with smooth
// pseudo-random drifts around a calm baseline.
type SyntheticEstimator struct {
	rng *rand.Rand
	mu  sync.Mutex
	t   float64
}

// NewSyntheticEstimator creates a seeded estimator bundle.
func NewSyntheticEstimator(seed int64) *SyntheticEstimator {
	return &SyntheticEstimator{rng: rand.New(rand.NewSource(seed))}
}

// Load never fails for the synthetic estimator.
func (s *SyntheticEstimator) Load(ctx context.Context) error { return nil }

// EstimateFace drifts pupil diameter and blink rate sinusoidally with noise.
func (s *SyntheticEstimator) EstimateFace(ctx context.Context, f Frame) (FaceMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t += 0.1
	return FaceMetrics{
		PupilDiameter: clamp01(0.5 + 0.2*math.Sin(s.t/3) + 0.05*s.rng.Float64()),
		BlinkRate:     clamp01(0.15 + 0.05*math.Sin(s.t/7) + 0.02*s.rng.Float64()),
		Confidence:    0.85 + 0.1*s.rng.Float64(),
	}, nil
}

// EstimateEmotions returns a mostly-neutral distribution with mild noise.
func (s *SyntheticEstimator) EstimateEmotions(ctx context.Context, f Frame) (EmotionDist, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	noise := func() float64 { return 0.05 * s.rng.Float64() }
	dist := EmotionDist{
		Happy:     0.1 + noise(),
		Sad:       noise(),
		Angry:     noise(),
		Fearful:   noise(),
		Surprised: noise(),
		Disgusted: noise(),
		Neutral:   clamp01(0.7 + 0.1*math.Sin(s.t/5)),
	}
	return dist, 0.8 + 0.15*s.rng.Float64(), nil
}

// EstimateGaze wanders around the screen center.
func (s *SyntheticEstimator) EstimateGaze(ctx context.Context, f Frame) (GazeEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return GazeEstimate{
		X:          clamp01(0.5 + 0.3*math.Sin(s.t/2) + 0.05*s.rng.Float64()),
		Y:          clamp01(0.5 + 0.2*math.Cos(s.t/2) + 0.05*s.rng.Float64()),
		Confidence: 0.8 + 0.15*s.rng.Float64(),
	}, nil
}

// #endregion synthetic-estimators
