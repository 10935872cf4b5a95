package replay

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/capture"
)

func fixtureWith(t *testing.T, readings ...capture.Reading) *Fixture {
	t.Helper()
	data, err := json.Marshal(&Fixture{Readings: readings})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return f
}

func reading(at time.Time, stress, confidence float64) capture.Reading {
	return capture.Reading{
		Timestamp:  at,
		GazeX:      0.5,
		GazeY:      0.5,
		Attention:  0.8,
		Stress:     stress,
		Confidence: confidence,
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	f := fixtureWith(t,
		reading(base, 0.9, 0.9),
		reading(base.Add(100*time.Millisecond), 0.2, 0.9),
		reading(base.Add(200*time.Millisecond), 0.85, 0.9),
	)

	_, first, err := Replay(f, zap.NewNop())
	if err != nil {
		t.Fatalf("first replay: %v", err)
	}
	_, second, err := Replay(f, zap.NewNop())
	if err != nil {
		t.Fatalf("second replay: %v", err)
	}

	if first.TagDeltas != second.TagDeltas || first.GatedDeltas != second.GatedDeltas {
		t.Fatalf("replay diverged: %+v vs %+v", first, second)
	}
	for name, w := range first.FinalWeights {
		if second.FinalWeights[name] != w {
			t.Fatalf("weight %s diverged: %f vs %f", name, w, second.FinalWeights[name])
		}
	}
}

func TestLowConfidenceReadingsAreDropped(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	f := fixtureWith(t,
		reading(base, 0.9, 0.5),
		reading(base.Add(100*time.Millisecond), 0.9, 0.7), // at threshold, still dropped
		reading(base.Add(200*time.Millisecond), 0.9, 0.9),
	)

	results, summary, err := Replay(f, zap.NewNop())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.LowConfidence != 2 {
		t.Fatalf("low confidence count = %d, want 2", summary.LowConfidence)
	}
	if results[0].Action != "low_confidence" || results[1].Action != "low_confidence" {
		t.Fatalf("actions = %s, %s", results[0].Action, results[1].Action)
	}
	if results[2].Action != "applied" {
		t.Fatalf("confident stressed reading action = %s", results[2].Action)
	}
	if len(results[0].Signals) != 0 {
		t.Fatalf("dropped reading still derived signals")
	}
}

func TestCalmTraceStaysQuiet(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	f := fixtureWith(t,
		reading(base, 0.1, 0.9),
		reading(base.Add(100*time.Millisecond), 0.2, 0.9),
	)

	_, summary, err := Replay(f, zap.NewNop())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.QuietReadings != 2 || summary.TagDeltas != 0 {
		t.Fatalf("calm trace produced activity: %+v", summary)
	}
	if summary.FinalWeights["calm"] != 0 {
		t.Fatalf("calm weight raised on a calm trace")
	}
}

func TestSustainedStressRaisesCalmingWeights(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	var readings []capture.Reading
	for i := 0; i < 5; i++ {
		readings = append(readings, reading(base.Add(time.Duration(i)*100*time.Millisecond), 0.9, 0.95))
	}
	f := fixtureWith(t, readings...)

	_, summary, err := Replay(f, zap.NewNop())
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if summary.FinalWeights["calm"] == 0 {
		t.Fatalf("sustained stress left calm at zero")
	}
	if summary.TagDeltas == 0 {
		t.Fatalf("no deltas applied under sustained stress")
	}
}

func TestParseFixtureRejectsEmptyTrace(t *testing.T) {
	if _, err := ParseFixture([]byte(`{"readings": []}`)); err == nil {
		t.Fatalf("empty fixture accepted")
	}
}
