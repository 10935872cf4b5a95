package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/backend"
	"github.com/elitecommand/aura-session/internal/capture"
	"github.com/elitecommand/aura-session/internal/cipher"
	"github.com/elitecommand/aura-session/internal/command"
	"github.com/elitecommand/aura-session/internal/layout"
	"github.com/elitecommand/aura-session/internal/privacy"
	"github.com/elitecommand/aura-session/internal/settings"
	"github.com/elitecommand/aura-session/internal/tags"
	"github.com/elitecommand/aura-session/internal/vault"
)

// #region system

// Estimators bundles the capture dependencies injected into a session.
type Estimators struct {
	Source  capture.FrameSource
	Face    capture.FaceEstimator
	Emotion capture.EmotionEstimator
	Gaze    capture.GazeEstimator
}

// System owns one user session end to end: capture, privacy transform,
// local storage, adaptation, and the backend exchange. All engine access is
// serialized through the system's mutex; the capture loop and callers never
// touch the engine concurrently.
type System struct {
	cfg Config
	log *zap.Logger
	est Estimators

	mu    sync.Mutex
	phase Phase

	userID    string
	sessionID string
	user      settings.Settings

	catalog   *tags.Catalog
	processor *privacy.Processor
	target    *adapt.ThemeMap
	engine    *adapt.Engine
	tracker   *capture.Tracker
	store     *vault.Store
	prov      *adapt.ProvenanceLog
	client    *backend.Client
	parser    *command.Parser

	retryTimer *time.Timer
}

// New creates an unstarted system.
func New(cfg Config, est Estimators, log *zap.Logger) *System {
	cfg.defaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &System{
		cfg:    cfg,
		est:    est,
		log:    log,
		phase:  PhaseUninitialized,
		parser: command.NewParser(),
	}
}

// Phase returns the current lifecycle phase.
func (s *System) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Engine exposes the adaptation engine for inspection. Callers must not
// retain it across Stop.
func (s *System) Engine() *adapt.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// SessionID returns the backend session id, empty when offline.
func (s *System) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Theme returns the session's render target.
func (s *System) Theme() *adapt.ThemeMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Snapshot is a point-in-time view of the session for inspection.
type Snapshot struct {
	Phase     Phase             `json:"phase"`
	SessionID string            `json:"session_id,omitempty"`
	State     adapt.UIState     `json:"state"`
	Theme     map[string]string `json:"theme"`
	UndoDepth int               `json:"undo_depth"`
}

// Snapshot captures the current phase, UI state, and theme variables. The
// engine keeps mutating afterwards; the copy does not.
func (s *System) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Phase: s.phase, SessionID: s.sessionID}
	if s.engine != nil {
		snap.State = s.engine.State()
		snap.UndoDepth = s.engine.UndoDepth()
	}
	if s.target != nil {
		snap.Theme = s.target.Snapshot()
	}
	return snap
}

// #endregion system

// #region initialize

// Initialize wires components in fixed dependency order: privacy processor,
// then adaptive UI, then storage, then backend session, then the biometric
// tracker. A later stage failing leaves earlier stages live — partial
// initialization is deliberate, trading consistency for available
// functionality. Only privacy and adaptive UI failures propagate.
func (s *System) Initialize(ctx context.Context, userID string, userSettings settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseUninitialized {
		return fmt.Errorf("initialize in phase %s", s.phase)
	}
	s.phase = PhaseInitializing
	s.userID = userID
	s.user = userSettings
	s.applyUserSettings(userSettings)

	processor, err := privacy.NewProcessor(s.cfg.PrivacyLevel, s.cfg.AnonymizationStrength)
	if err != nil {
		s.phase = PhaseUninitialized
		return fmt.Errorf("privacy processor: %w", err)
	}
	s.processor = processor

	s.catalog = tags.DefaultCatalog()
	s.target = adapt.NewThemeMap()
	s.engine = adapt.NewEngine(s.cfg.Adapt, s.catalog, layout.DefaultTree(), s.target, s.log.Named("adapt"))

	if s.cfg.ProvenancePath != "" {
		prov, err := adapt.OpenProvenanceLog(s.cfg.ProvenancePath)
		if err != nil {
			s.log.Warn("provenance log unavailable", zap.Error(err))
		} else {
			s.prov = prov
			s.engine.SetProvenance(prov)
		}
	}

	if s.cfg.StorePath != "" {
		var enc cipher.Cipher
		if s.cfg.EncryptAtRest {
			pc, err := cipher.NewProcessCipher(cipher.CryptoRand())
			if err != nil {
				s.log.Warn("session cipher unavailable, storing plaintext", zap.Error(err))
			} else {
				enc = pc
			}
		}
		store, err := vault.Open(s.cfg.StorePath, s.cfg.Vault, enc, s.log.Named("vault"))
		if err != nil {
			s.log.Warn("insight store unavailable, continuing without storage", zap.Error(err))
		} else {
			s.store = store
		}
	}

	if s.cfg.BackendURL != "" {
		s.client = backend.NewClient(s.cfg.BackendURL)
		resp, err := s.client.StartSession(ctx, backend.StartSessionRequest{
			UserID:          userID,
			PrivacySettings: map[string]string{"privacy_level": string(s.cfg.PrivacyLevel)},
		})
		if err != nil {
			s.log.Warn("backend session not started, running locally",
				zap.String("class", string(Classify(err))), zap.Error(err))
			s.client = nil
		} else {
			s.sessionID = resp.SessionID
		}
	}

	if s.est.Source != nil {
		tracker := capture.NewTracker(s.est.Source, s.est.Face, s.est.Emotion, s.est.Gaze,
			s.cfg.Capture, capture.SinkFunc(s.handleReading), s.log.Named("capture"))
		if _, err := tracker.Initialize(ctx); err != nil {
			switch Classify(err) {
			case FailureDevice:
				s.log.Warn("capture device unavailable, tracking disabled", zap.Error(err))
			case FailureModelLoad:
				s.log.Warn("capture degraded, continuing with remaining estimators", zap.Error(err))
				s.tracker = tracker
			default:
				s.log.Warn("capture initialization failed, tracking disabled", zap.Error(err))
			}
		} else {
			s.tracker = tracker
		}
	}

	s.phase = PhaseReady
	s.log.Info("session initialized",
		zap.String("user_id", userID),
		zap.Bool("tracking", s.tracker != nil),
		zap.Bool("storage", s.store != nil),
		zap.Bool("backend", s.client != nil))
	return nil
}

// aggressiveReductionFactor replaces the standard conflict reduction when
// the user opts into aggressive conflict resolution: opposing tags erode
// twice as fast per application.
const aggressiveReductionFactor = 0.5

// applyUserSettings folds the user's persisted knobs over the session
// config before components are built. Zero values leave the config
// untouched; an invalid privacy level or strength surfaces through the
// privacy processor constructor.
func (s *System) applyUserSettings(u settings.Settings) {
	if u.PrivacyLevel != "" {
		s.cfg.PrivacyLevel = privacy.Level(u.PrivacyLevel)
	}
	if u.AnonymizationStrength != "" {
		s.cfg.AnonymizationStrength = privacy.Strength(u.AnonymizationStrength)
	}
	if u.AdaptationSensitivity > 0 {
		s.cfg.Adapt.BiometricSensitivity = u.AdaptationSensitivity
	}
	if u.PropagationFactor > 0 {
		s.cfg.Adapt.PropagationFactor = u.PropagationFactor
	}
	if u.AggressiveConflicts {
		s.cfg.Adapt.ReductionFactor = aggressiveReductionFactor
	}
	if u.DataRetentionDays > 0 {
		s.cfg.Vault.RetentionHours = u.DataRetentionDays * 24
	}
}

// #endregion initialize

// #region start-stop

// Start begins tracking. A no-op when already active.
func (s *System) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.phase {
	case PhaseActive:
		return nil
	case PhaseReady, PhaseStopped:
	default:
		return fmt.Errorf("start in phase %s", s.phase)
	}
	if s.tracker != nil {
		s.tracker.StartTracking(ctx)
	}
	s.phase = PhaseActive
	return nil
}

// Stop pauses tracking. A no-op when already stopped. The in-flight tick
// completes before the loop exits.
func (s *System) Stop() {
	s.mu.Lock()
	if s.phase != PhaseActive {
		s.mu.Unlock()
		return
	}
	tracker := s.tracker
	if s.retryTimer != nil {
		s.retryTimer.Stop()
		s.retryTimer = nil
	}
	s.phase = PhaseStopped
	s.mu.Unlock()

	if tracker != nil {
		tracker.StopTracking()
	}
}

// Shutdown stops tracking, ends the backend session, and releases storage.
// The system returns to uninitialized.
func (s *System) Shutdown(ctx context.Context) {
	s.Stop()

	s.mu.Lock()
	client, sessionID := s.client, s.sessionID
	store, prov, tracker := s.store, s.prov, s.tracker
	s.client, s.store, s.prov, s.tracker, s.engine = nil, nil, nil, nil, nil
	s.phase = PhaseUninitialized
	s.mu.Unlock()

	if client != nil && sessionID != "" {
		if summary, err := client.EndSession(ctx, sessionID); err != nil {
			s.log.Warn("backend session not ended", zap.Error(err))
		} else {
			s.log.Info("session ended",
				zap.Float64("duration_s", summary.SessionDuration),
				zap.Int("data_points", summary.DataPointsCollected))
		}
	}
	if tracker != nil {
		if err := tracker.Close(); err != nil {
			s.log.Warn("capture source close failed", zap.Error(err))
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			s.log.Warn("insight store close failed", zap.Error(err))
		}
	}
	if prov != nil {
		prov.Close()
	}
}

// #endregion start-stop

// #region tick

// ProcessReading pushes one reading through the session pipeline exactly as
// the capture loop would. Replay and tests drive the system with it.
func (s *System) ProcessReading(ctx context.Context, r capture.Reading) error {
	return s.handleReading(ctx, r)
}

// handleReading is the per-tick pipeline: privacy transform, fire-and-forget
// local storage, passive adaptation, then the backend exchange. Every stage
// failure is isolated; the tick never propagates an error to the tracker.
func (s *System) handleReading(ctx context.Context, r capture.Reading) error {
	s.mu.Lock()
	if s.phase != PhaseActive || s.engine == nil {
		s.mu.Unlock()
		return nil
	}
	processor, store, client := s.processor, s.store, s.client
	s.mu.Unlock()

	insight, payload := processor.ProcessPrivately(r)

	if store != nil {
		if _, err := store.Put(r, insight); err != nil {
			s.log.Warn("insight not stored", zap.Error(err))
		}
	}

	if s.user.PassiveTierEnabled {
		s.mu.Lock()
		targetElement := s.cfg.TargetElement
		if targetElement == "" {
			targetElement = s.engine.Tree().Root()
		}
		reactErr := s.engine.React(r, targetElement)
		s.mu.Unlock()
		if reactErr != nil {
			s.ReportFailure(ctx, "adaptive_ui", reactErr)
		}
	}

	if client != nil {
		resp, err := client.Ingest(ctx, payload)
		if err != nil {
			// No retry queue: the reading is already retained locally.
			s.log.Warn("ingest failed",
				zap.String("class", string(Classify(err))), zap.Error(err))
			return nil
		}
		s.applyDirectives(ctx, resp.Adaptations)
	}
	return nil
}

func (s *System) applyDirectives(ctx context.Context, directives []backend.Directive) {
	var failure error
	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		return
	}
	for _, d := range directives {
		a, err := d.Decode()
		if err != nil {
			s.log.Warn("directive dropped", zap.String("type", d.Type), zap.Error(err))
			continue
		}
		if err := s.engine.Apply(a); err != nil && !errors.Is(err, adapt.ErrRejected) {
			failure = err
		}
	}
	s.mu.Unlock()
	if failure != nil {
		s.ReportFailure(ctx, "adaptive_ui", failure)
	}
}

// #endregion tick

// #region feedback

// SubmitFeedback runs one user utterance through the prompt parser and
// applies the resulting tag deltas. The entry mode is gated by the user's
// tier settings; a disabled tier makes this a logged no-op.
func (s *System) SubmitFeedback(raw string, mode command.EntryMode, contextElement string) (command.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		return command.Intent{}, fmt.Errorf("submit feedback in phase %s", s.phase)
	}
	switch mode {
	case command.ModeMirror:
		if !s.user.SemiActiveTierEnabled {
			s.log.Info("mirror feedback ignored, tier disabled", zap.String("user_id", s.userID))
			return command.Intent{Mode: mode, RawInput: raw}, nil
		}
	case command.ModeEdit:
		if !s.user.ActiveTierEnabled {
			s.log.Info("edit command ignored, tier disabled", zap.String("user_id", s.userID))
			return command.Intent{Mode: mode, RawInput: raw}, nil
		}
	}

	intent := s.parser.Parse(raw, mode, contextElement)
	if !intent.Actionable() {
		return intent, nil
	}

	targets := intent.TargetElements
	if len(targets) == 0 {
		targets = []string{s.engine.Tree().Root()}
	}
	for _, el := range targets {
		if err := s.engine.ApplyTagDeltas(el, intent.TagChanges, adapt.SourceCommand); err != nil {
			if errors.Is(err, adapt.ErrRejected) {
				s.log.Info("feedback gated", zap.String("element", el), zap.Error(err))
				continue
			}
			return intent, err
		}
	}
	return intent, nil
}

// Revert undoes the most recent adaptation.
func (s *System) Revert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return false
	}
	return s.engine.Revert()
}

// #endregion feedback

// #region recovery

// ReportFailure is the single funnel for component-level errors. It
// classifies the error and applies the component's recovery: the capture
// loop restarts after a delay, the adaptive UI resets to defaults, anything
// else is logged only. Must not be called with s.mu held.
func (s *System) ReportFailure(ctx context.Context, component string, err error) {
	class := Classify(err)
	s.log.Error("component failure",
		zap.String("component", component),
		zap.String("class", string(class)),
		zap.Error(err))

	switch component {
	case "biometric":
		s.mu.Lock()
		tracker := s.tracker
		active := s.phase == PhaseActive
		s.mu.Unlock()
		if tracker == nil || !active {
			return
		}
		tracker.StopTracking()
		s.mu.Lock()
		s.retryTimer = time.AfterFunc(s.cfg.TrackerRetryDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.phase == PhaseActive && s.tracker != nil {
				s.log.Info("restarting capture loop")
				s.tracker.StartTracking(ctx)
			}
		})
		s.mu.Unlock()
	case "adaptive_ui":
		s.mu.Lock()
		if s.catalog != nil {
			s.log.Info("resetting adaptive UI to defaults")
			s.engine = adapt.NewEngine(s.cfg.Adapt, s.catalog, layout.DefaultTree(), s.target, s.log.Named("adapt"))
			if s.prov != nil {
				s.engine.SetProvenance(s.prov)
			}
		}
		s.mu.Unlock()
	default:
		// No recovery strategy; logged above.
	}
}

// #endregion recovery
