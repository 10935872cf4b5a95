package privacy

import "time"

// #region levels

// Level gates which fields of a reading survive the transform.
type Level string

const (
	LevelMinimal       Level = "minimal"
	LevelStandard      Level = "standard"
	LevelComprehensive Level = "comprehensive"
)

// Strength selects the magnitude of uniform noise added to continuous fields.
type Strength string

const (
	StrengthLow    Strength = "low"
	StrengthMedium Strength = "medium"
	StrengthHigh   Strength = "high"
)

// NoiseLevel maps an anonymization strength to its noise magnitude.
func (s Strength) NoiseLevel() float64 {
	switch s {
	case StrengthLow:
		return 0.01
	case StrengthMedium:
		return 0.05
	default:
		return 0.1
	}
}

// #endregion levels

// #region buckets

// Bucket is a coarsened category for a continuous score.
type Bucket string

const (
	BucketLow      Bucket = "low"
	BucketModerate Bucket = "moderate"
	BucketHigh     Bucket = "high"
	BucketVeryHigh Bucket = "very_high"
)

// Bucketize coarsens a [0,1] score into four categories.
func Bucketize(v float64) Bucket {
	switch {
	case v < 0.25:
		return BucketLow
	case v < 0.5:
		return BucketModerate
	case v < 0.75:
		return BucketHigh
	default:
		return BucketVeryHigh
	}
}

// #endregion buckets

// #region local-insight

// LocalInsight is the privacy-filtered, locally retained view of a reading.
// Fields beyond the active privacy level stay zero.
type LocalInsight struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	PrivacyLevel Level     `json:"privacy_level"`

	// Always present.
	AttentionLevel float64 `json:"attention_level"`
	DataQuality    float64 `json:"data_quality"`

	// standard and above.
	StressCategory        Bucket             `json:"stress_category,omitempty"`
	CognitiveLoadCategory Bucket             `json:"cognitive_load_category,omitempty"`
	Emotions              map[string]float64 `json:"emotions,omitempty"`

	// comprehensive only.
	GazeZone      string  `json:"gaze_zone,omitempty"`
	PupilDiameter float64 `json:"pupil_diameter,omitempty"`
	BlinkRate     float64 `json:"blink_rate,omitempty"`
}

// #endregion local-insight

// #region backend-payload

// BackendPayload is the anonymized form sent to the ingestion endpoint. The
// session identity is always the literal "anonymous"; the timestamp is a
// salted one-way hash.
type BackendPayload struct {
	SessionID       string `json:"session_id"`
	HashedTimestamp string `json:"hashed_timestamp"`
	PrivacyLevel    Level  `json:"privacy_level"`

	AttentionLevel float64 `json:"attention_level"`
	DataQuality    float64 `json:"data_quality"`

	StressCategory        Bucket             `json:"stress_category,omitempty"`
	CognitiveLoadCategory Bucket             `json:"cognitive_load_category,omitempty"`
	Emotions              map[string]float64 `json:"emotions,omitempty"`

	GazeZone string `json:"gaze_zone,omitempty"`
}

// #endregion backend-payload
