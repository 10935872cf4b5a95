package privacy

import (
	"math"
	"testing"
	"time"

	"github.com/elitecommand/aura-session/internal/capture"
)

func fullReading() capture.Reading {
	return capture.Reading{
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Emotions: capture.EmotionDist{
			Happy: 0.1, Sad: 0.05, Angry: 0.02, Fearful: 0.01,
			Surprised: 0.03, Disgusted: 0.01, Neutral: 0.7,
		},
		GazeX:         0.8,
		GazeY:         0.1,
		PupilDiameter: 0.5,
		BlinkRate:     0.15,
		Attention:     0.9,
		Stress:        0.3,
		CognitiveLoad: 0.6,
		Confidence:    0.95,
	}
}

func TestMinimalLevelEmitsOnlyAttention(t *testing.T) {
	p, err := NewProcessor(LevelMinimal, StrengthLow)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	insight, payload := p.ProcessPrivately(fullReading())

	if insight.StressCategory != "" || insight.CognitiveLoadCategory != "" {
		t.Fatalf("minimal insight leaked stress/cognitive fields: %+v", insight)
	}
	if insight.Emotions != nil || insight.GazeZone != "" {
		t.Fatalf("minimal insight leaked emotion/gaze fields: %+v", insight)
	}
	if insight.PupilDiameter != 0 || insight.BlinkRate != 0 {
		t.Fatalf("minimal insight leaked physiological fields: %+v", insight)
	}
	if math.Abs(insight.AttentionLevel-0.9) > 0.01 {
		t.Fatalf("attention out of noise bound: %f", insight.AttentionLevel)
	}
	if math.Abs(insight.DataQuality-0.95) > 0.01 {
		t.Fatalf("data quality out of noise bound: %f", insight.DataQuality)
	}
	if payload.GazeZone != "" || payload.StressCategory != "" {
		t.Fatalf("minimal payload leaked fields: %+v", payload)
	}
}

func TestStandardLevelDropsGazeAndPhysiology(t *testing.T) {
	p, _ := NewProcessor(LevelStandard, StrengthLow)
	insight, payload := p.ProcessPrivately(fullReading())

	if insight.GazeZone != "" || insight.PupilDiameter != 0 || insight.BlinkRate != 0 {
		t.Fatalf("standard level leaked raw detail: %+v", insight)
	}
	if insight.StressCategory != BucketModerate {
		t.Fatalf("stress bucket: got %s want %s", insight.StressCategory, BucketModerate)
	}
	if insight.CognitiveLoadCategory != BucketHigh {
		t.Fatalf("cognitive bucket: got %s want %s", insight.CognitiveLoadCategory, BucketHigh)
	}
	if len(insight.Emotions) != 7 {
		t.Fatalf("expected 7 emotion categories, got %d", len(insight.Emotions))
	}
	if payload.SessionID != "anonymous" {
		t.Fatalf("payload session must be anonymous, got %q", payload.SessionID)
	}
}

func TestComprehensiveKeepsAnonymizedEverything(t *testing.T) {
	p, _ := NewProcessor(LevelComprehensive, StrengthLow)
	insight, payload := p.ProcessPrivately(fullReading())

	if insight.GazeZone != "top_right" {
		t.Fatalf("gaze zone: got %s want top_right", insight.GazeZone)
	}
	if payload.GazeZone != "top_right" {
		t.Fatalf("payload gaze zone: got %s", payload.GazeZone)
	}
	if insight.PupilDiameter == 0 {
		t.Fatal("comprehensive should retain noised pupil diameter")
	}
}

func TestNoiseBoundedAndNonDeterministic(t *testing.T) {
	p, _ := NewProcessor(LevelStandard, StrengthHigh)
	r := fullReading()

	var outputs []float64
	for i := 0; i < 50; i++ {
		insight, _ := p.ProcessPrivately(r)
		if dev := math.Abs(insight.AttentionLevel - r.Attention); dev > p.NoiseLevel()+1e-12 {
			t.Fatalf("deviation %f exceeds noise level %f", dev, p.NoiseLevel())
		}
		outputs = append(outputs, insight.AttentionLevel)
	}
	allSame := true
	for _, v := range outputs[1:] {
		if v != outputs[0] {
			allSame = false
			break
		}
	}
	if allSame {
		t.Fatal("noised outputs never varied across 50 calls")
	}
}

func TestHashTimestampStablePerSaltDistinctAcrossSalts(t *testing.T) {
	p1, _ := NewProcessor(LevelStandard, StrengthHigh)
	p2, _ := NewProcessor(LevelStandard, StrengthHigh)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

	a := p1.HashTimestamp(ts)
	b := p1.HashTimestamp(ts)
	if a != b {
		t.Fatalf("same salt, same timestamp must hash identically: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("hash should be 16 hex chars, got %d", len(a))
	}
	if c := p2.HashTimestamp(ts); c == a {
		t.Fatal("two salts produced the same hash")
	}
}

func TestGazeZones(t *testing.T) {
	cases := []struct {
		x, y float64
		want string
	}{
		{0.1, 0.1, "top_left"},
		{0.5, 0.5, "middle_center"},
		{0.9, 0.9, "bottom_right"},
		{0.5, 0.1, "top_center"},
		{0.1, 0.9, "bottom_left"},
		{0.9, 0.5, "middle_right"},
	}
	for _, c := range cases {
		if got := GazeZone(c.x, c.y); got != c.want {
			t.Fatalf("GazeZone(%f,%f) = %s, want %s", c.x, c.y, got, c.want)
		}
	}
}

func TestBucketize(t *testing.T) {
	cases := []struct {
		v    float64
		want Bucket
	}{
		{0.0, BucketLow}, {0.24, BucketLow},
		{0.25, BucketModerate}, {0.49, BucketModerate},
		{0.5, BucketHigh}, {0.74, BucketHigh},
		{0.75, BucketVeryHigh}, {1.0, BucketVeryHigh},
	}
	for _, c := range cases {
		if got := Bucketize(c.v); got != c.want {
			t.Fatalf("Bucketize(%f) = %s, want %s", c.v, got, c.want)
		}
	}
}

func TestUnknownLevelRejected(t *testing.T) {
	if _, err := NewProcessor("paranoid", StrengthHigh); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if _, err := NewProcessor(LevelStandard, "extreme"); err == nil {
		t.Fatal("expected error for unknown strength")
	}
}
