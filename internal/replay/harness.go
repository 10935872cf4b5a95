package replay

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/layout"
	"github.com/elitecommand/aura-session/internal/privacy"
	"github.com/elitecommand/aura-session/internal/tags"
)

// #region types

// Result captures the pipeline outcome for one replayed reading.
type Result struct {
	Index     int
	Timestamp time.Time
	Action    string // "applied" | "rejected" | "low_confidence" | "quiet"
	Reason    string

	Insight privacy.LocalInsight
	Signals []adapt.Signal
	Applied int
	Gated   int
}

// Summary aggregates one replay run.
type Summary struct {
	TotalReadings int
	LowConfidence int
	QuietReadings int
	TagDeltas     int
	GatedDeltas   int
	FinalState    adapt.UIState
	FinalWeights  map[string]float64
	ThemeSnapshot map[string]string
}

// #endregion types

// #region replay

// Replay feeds every recorded reading through the privacy transform and the
// adaptation engine with a deterministic clock that advances one tick per
// reading. Entirely in-memory.
func Replay(f *Fixture, log *zap.Logger) ([]Result, Summary, error) {
	if log == nil {
		log = zap.NewNop()
	}

	processor, err := privacy.NewProcessor(f.PrivacyLevel, f.AnonymizationStrength)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("replay processor: %w", err)
	}

	tree := layout.DefaultTree()
	target := adapt.NewThemeMap()
	engine := adapt.NewEngine(adapt.DefaultConfig(), tags.DefaultCatalog(), tree, target, log)

	targetElement := f.TargetElement
	if targetElement == "" {
		targetElement = tree.Root()
	}

	clock := f.Readings[0].Timestamp
	tick := time.Duration(f.TickMillis) * time.Millisecond
	engine.SetClock(func() time.Time { return clock })

	results := make([]Result, 0, len(f.Readings))
	summary := Summary{TotalReadings: len(f.Readings)}

	for i, r := range f.Readings {
		res := replayOne(i, r, f.ConfidenceThreshold, processor, engine, targetElement)
		switch res.Action {
		case "low_confidence":
			summary.LowConfidence++
		case "quiet":
			summary.QuietReadings++
		}
		summary.TagDeltas += res.Applied
		summary.GatedDeltas += res.Gated
		results = append(results, res)
		clock = clock.Add(tick)
	}

	summary.FinalState = engine.State()
	summary.FinalWeights = engine.Weights().Snapshot()
	summary.ThemeSnapshot = target.Snapshot()
	return results, summary, nil
}

func replayOne(i int, r capture.Reading, threshold float64, processor *privacy.Processor, engine *adapt.Engine, targetElement string) Result {
	res := Result{Index: i, Timestamp: r.Timestamp}

	if r.Confidence <= threshold {
		res.Action = "low_confidence"
		res.Reason = fmt.Sprintf("confidence %.2f at or below threshold %.2f", r.Confidence, threshold)
		return res
	}

	res.Insight, _ = processor.ProcessPrivately(r)
	res.Signals = adapt.DeriveSignals(r)

	for _, sig := range res.Signals {
		deltas := adapt.TagDeltasFor(sig)
		if deltas == nil {
			continue
		}
		if adapt.AvoidTarget(targetElement) {
			continue
		}
		if err := engine.ApplyTagDeltas(targetElement, deltas, adapt.SourceBiometric); err != nil {
			res.Gated++
			res.Reason = err.Error()
			continue
		}
		res.Applied++
	}

	switch {
	case res.Applied > 0:
		res.Action = "applied"
	case res.Gated > 0:
		res.Action = "rejected"
	default:
		res.Action = "quiet"
		res.Reason = "no actionable signal"
	}
	return res
}

// #endregion replay
