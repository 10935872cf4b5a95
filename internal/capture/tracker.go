package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// #region tracker

// Tracker owns the biometric capture loop: acquire the frame source, run the
// enabled estimators once per tick, gate on confidence, and hand readings to
// the sink. Per-tick failures are logged and never stop the loop.
type Tracker struct {
	source  FrameSource
	face    FaceEstimator
	emotion EmotionEstimator
	gaze    GazeEstimator

	config Config
	sink   Sink
	log    *zap.Logger

	caps     Capabilities
	tracking atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTracker wires a tracker. Any estimator may be nil; the matching
// capability is simply reported disabled.
func NewTracker(source FrameSource, face FaceEstimator, emotion EmotionEstimator, gaze GazeEstimator, config Config, sink Sink, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		source:  source,
		face:    face,
		emotion: emotion,
		gaze:    gaze,
		config:  config,
		sink:    sink,
		log:     log.Named("capture"),
	}
}

// #endregion tracker

// #region initialize

// Initialize opens the frame source and loads estimators. The source failing
// returns ErrDeviceUnavailable. An estimator failing to load only disables
// its capability; the first such failure is returned as a *ModelLoadError so
// the caller can log the degradation, alongside usable capabilities.
func (t *Tracker) Initialize(ctx context.Context) (Capabilities, error) {
	if err := t.source.Open(ctx); err != nil {
		return Capabilities{}, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	var degraded error

	if t.face != nil {
		if err := t.face.Load(ctx); err != nil {
			t.log.Warn("face estimator disabled", zap.Error(err))
			degraded = &ModelLoadError{Capability: "face", Err: err}
		} else {
			t.caps.FaceTracking = true
		}
	}
	if t.emotion != nil {
		if err := t.emotion.Load(ctx); err != nil {
			t.log.Warn("emotion estimator disabled", zap.Error(err))
			if degraded == nil {
				degraded = &ModelLoadError{Capability: "emotion", Err: err}
			}
		} else {
			t.caps.EmotionDetection = true
		}
	}
	if t.gaze != nil {
		if err := t.gaze.Load(ctx); err != nil {
			t.log.Warn("gaze estimator disabled", zap.Error(err))
			if degraded == nil {
				degraded = &ModelLoadError{Capability: "gaze", Err: err}
			}
		} else {
			t.caps.GazeTracking = true
		}
	}

	t.log.Info("capture initialized",
		zap.Bool("face", t.caps.FaceTracking),
		zap.Bool("emotion", t.caps.EmotionDetection),
		zap.Bool("gaze", t.caps.GazeTracking))

	return t.caps, degraded
}

// Capabilities returns the capabilities established by Initialize.
func (t *Tracker) Capabilities() Capabilities { return t.caps }

// #endregion initialize

// #region start-stop

// StartTracking launches the capture loop. It is a no-op when already
// running. The next tick is always scheduled from the completion of the
// previous one, so slow sinks degrade the effective rate instead of queuing
// work.
func (t *Tracker) StartTracking(ctx context.Context) {
	if !t.tracking.CompareAndSwap(false, true) {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	t.mu.Lock()
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	go t.loop(loopCtx, done)
}

// StopTracking requests the loop to stop and waits for the in-flight tick to
// finish. No-op when not running.
func (t *Tracker) StopTracking() {
	if !t.tracking.CompareAndSwap(true, false) {
		return
	}
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// IsTracking reports whether the loop is running.
func (t *Tracker) IsTracking() bool { return t.tracking.Load() }

// Close stops tracking and releases the frame source.
func (t *Tracker) Close() error {
	t.StopTracking()
	return t.source.Close()
}

// #endregion start-stop

// #region loop

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if !t.tracking.Load() {
			return
		}

		if err := t.tick(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Warn("tick skipped", zap.Error(err))
		}

		// Schedule from completion time.
		timer.Reset(t.config.Interval())
	}
}

// tick captures one frame, runs enabled estimators, derives scores, and
// forwards the reading when confident enough.
func (t *Tracker) tick(ctx context.Context) error {
	frame, err := t.source.Capture(ctx)
	if err != nil {
		return &ProcessingError{Stage: "capture", Err: err}
	}

	r := Reading{Timestamp: time.Now().UTC()}
	var confSum float64
	var confN int

	if t.caps.FaceTracking {
		fm, ferr := t.face.EstimateFace(ctx, frame)
		if ferr != nil {
			return &ProcessingError{Stage: "face", Err: ferr}
		}
		r.PupilDiameter = fm.PupilDiameter
		r.BlinkRate = fm.BlinkRate
		confSum += fm.Confidence
		confN++
	}
	if t.caps.EmotionDetection {
		dist, conf, eerr := t.emotion.EstimateEmotions(ctx, frame)
		if eerr != nil {
			return &ProcessingError{Stage: "emotion", Err: eerr}
		}
		r.Emotions = dist
		confSum += conf
		confN++
	}
	if t.caps.GazeTracking {
		g, gerr := t.gaze.EstimateGaze(ctx, frame)
		if gerr != nil {
			return &ProcessingError{Stage: "gaze", Err: gerr}
		}
		r.GazeX, r.GazeY = g.X, g.Y
		confSum += g.Confidence
		confN++
	}

	if confN > 0 {
		r.Confidence = confSum / float64(confN)
	}
	r.Attention = AttentionScore(r.Emotions, r.GazeX, r.GazeY, r.BlinkRate)
	r.Stress = StressScore(r.Emotions, r.PupilDiameter, r.BlinkRate)
	r.CognitiveLoad = CognitiveLoadScore(r.Emotions, r.PupilDiameter)

	if r.Confidence <= t.config.ConfidenceThreshold {
		t.log.Debug("reading below confidence threshold",
			zap.Float64("confidence", r.Confidence),
			zap.Float64("threshold", t.config.ConfidenceThreshold))
		return nil
	}

	if t.sink != nil {
		if err := t.sink.HandleReading(ctx, r); err != nil {
			return &ProcessingError{Stage: "sink", Err: err}
		}
	}
	return nil
}

// #endregion loop
