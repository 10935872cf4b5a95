package capture

import "time"

// #region emotions

// EmotionDist holds the seven-category emotion distribution. Each value is in
// [0,1]; the categories are not forced to sum to 1.
type EmotionDist struct {
	Happy     float64 `json:"happy"`
	Sad       float64 `json:"sad"`
	Angry     float64 `json:"angry"`
	Fearful   float64 `json:"fearful"`
	Surprised float64 `json:"surprised"`
	Disgusted float64 `json:"disgusted"`
	Neutral   float64 `json:"neutral"`
}

// #endregion emotions

// #region reading

// Reading is one sampling tick's output. It is created by the tracker and
// never mutated downstream.
type Reading struct {
	Timestamp     time.Time   `json:"timestamp"`
	Emotions      EmotionDist `json:"emotions"`
	GazeX         float64     `json:"gaze_x"` // normalized [0,1]
	GazeY         float64     `json:"gaze_y"` // normalized [0,1]
	PupilDiameter float64     `json:"pupil_diameter"`
	BlinkRate     float64     `json:"blink_rate"` // blinks per second, normalized
	Attention     float64     `json:"attention_score"`
	Stress        float64     `json:"stress_level"`
	CognitiveLoad float64     `json:"cognitive_load"`
	Confidence    float64     `json:"confidence"`
}

// #endregion reading

// #region capabilities

// Capabilities reports which estimators are live after initialization.
// A capability that failed to load is reported disabled; the tracker keeps
// running with the rest.
type Capabilities struct {
	FaceTracking     bool
	EmotionDetection bool
	GazeTracking     bool
}

// Any reports whether at least one estimator is live.
func (c Capabilities) Any() bool {
	return c.FaceTracking || c.EmotionDetection || c.GazeTracking
}

// #endregion capabilities

// #region config

// Config holds sampling knobs for the capture loop.
type Config struct {
	SamplingRateHz      float64 // ticks per second
	ConfidenceThreshold float64 // readings at or below are dropped
}

// DefaultConfig returns the standard sampling configuration.
func DefaultConfig() Config {
	return Config{
		SamplingRateHz:      10,
		ConfidenceThreshold: 0.7,
	}
}

// Interval returns the pause between the end of one tick and the start of
// the next.
func (c Config) Interval() time.Duration {
	hz := c.SamplingRateHz
	if hz <= 0 {
		hz = 10
	}
	return time.Duration(float64(time.Second) / hz)
}

// #endregion config
