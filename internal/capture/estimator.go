package capture

import "context"

// #region frame

// Frame is one captured sample from a video source. Pixel layout is owned by
// whichever FrameSource produced it; estimators and sources are paired.
type Frame struct {
	Width  int
	Height int
	Pixels []byte
}

// FrameSource abstracts the capture device (webcam in a browser, a synthetic
// generator in tests and replay).
type FrameSource interface {
	Open(ctx context.Context) error
	Capture(ctx context.Context) (Frame, error)
	Close() error
}

// #endregion frame

// #region estimators

// FaceMetrics is the output of the face estimator.
type FaceMetrics struct {
	PupilDiameter float64
	BlinkRate     float64
	Confidence    float64
}

// FaceEstimator derives physiological metrics from a frame. Load is called
// once during initialization; a load failure disables the capability.
type FaceEstimator interface {
	Load(ctx context.Context) error
	EstimateFace(ctx context.Context, f Frame) (FaceMetrics, error)
}

// EmotionEstimator derives the emotion distribution from a frame.
type EmotionEstimator interface {
	Load(ctx context.Context) error
	EstimateEmotions(ctx context.Context, f Frame) (EmotionDist, float64, error)
}

// GazeEstimate is the output of the gaze estimator, normalized to [0,1].
type GazeEstimate struct {
	X          float64
	Y          float64
	Confidence float64
}

// GazeEstimator derives the gaze point from a frame.
type GazeEstimator interface {
	Load(ctx context.Context) error
	EstimateGaze(ctx context.Context, f Frame) (GazeEstimate, error)
}

// #endregion estimators

// #region sink

// Sink receives readings that pass the confidence gate. The orchestrator
// wires this to the privacy transform and backend forwarding.
type Sink interface {
	HandleReading(ctx context.Context, r Reading) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r Reading) error

// HandleReading calls f.
func (f SinkFunc) HandleReading(ctx context.Context, r Reading) error { return f(ctx, r) }

// #endregion sink
