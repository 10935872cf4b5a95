package backend

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elitecommand/aura-session/internal/privacy"
)

// #region devserver

// DevServer is an in-memory stand-in for the ingestion backend, so a full
// session loop can run without any remote service. It applies the same
// trigger rules the production backend uses and hands back the first
// matching directive per trigger.
type DevServer struct {
	log *zap.Logger

	mu       sync.Mutex
	sessions map[string]*devSession
}

type devSession struct {
	userID      string
	startedAt   time.Time
	dataPoints  int
	adaptations int
	qualitySum  float64
}

// NewDevServer creates a dev server.
func NewDevServer(log *zap.Logger) *DevServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &DevServer{log: log, sessions: map[string]*devSession{}}
}

// Router returns the chi router serving the backend API surface.
func (s *DevServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Route("/api/biometric", func(r chi.Router) {
		r.Post("/session/start", s.handleStart)
		r.Post("/data/ingest", s.handleIngest)
		r.Post("/session/{sessionID}/end", s.handleEnd)
	})
	return r
}

func (s *DevServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "missing required field: user_id")
		return
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &devSession{userID: req.UserID, startedAt: time.Now()}
	s.mu.Unlock()

	s.log.Info("dev session started", zap.String("session_id", id), zap.String("user_id", req.UserID))
	writeJSON(w, http.StatusOK, StartSessionResponse{
		SessionID: id,
		Status:    "started",
		Timestamp: time.Now().UTC(),
		UserProfile: UserProfile{
			AdaptationSensitivity: 0.5,
			PrivacyLevel:          "standard",
		},
	})
}

func (s *DevServer) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SessionID == "" || req.HashedTimestamp == "" {
		writeError(w, http.StatusBadRequest, "missing required field: session_id or hashed_timestamp")
		return
	}

	directives := deriveDirectives(req.BackendPayload)

	// Anonymized payloads carry no real session id, so data points are
	// attributed to every open session.
	s.mu.Lock()
	for _, sess := range s.sessions {
		sess.dataPoints++
		sess.qualitySum += req.DataQuality
		sess.adaptations += len(directives)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, IngestResponse{
		Status:             "processed",
		AdaptationsApplied: len(directives),
		Adaptations:        directives,
		Timestamp:          time.Now().UTC(),
	})
}

func (s *DevServer) handleEnd(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	quality := 0.0
	if sess.dataPoints > 0 {
		quality = sess.qualitySum / float64(sess.dataPoints)
	}
	writeJSON(w, http.StatusOK, SessionSummary{
		Status:              "ended",
		SessionDuration:     time.Since(sess.startedAt).Seconds(),
		DataPointsCollected: sess.dataPoints,
		SessionQuality:      quality,
		TotalAdaptations:    sess.adaptations,
	})
}

// #endregion devserver

// #region trigger-rules

// deriveDirectives applies the backend's trigger rules to one payload. Each
// trigger contributes its primary adaptation.
func deriveDirectives(p privacy.BackendPayload) []Directive {
	var out []Directive

	if p.StressCategory == privacy.BucketHigh || p.StressCategory == privacy.BucketVeryHigh {
		out = append(out, Directive{
			Type:       "color_scheme",
			Trigger:    "stress_elevation",
			Parameters: map[string]any{"scheme": "calming", "intensity": 0.8},
			Confidence: 0.8,
			Urgency:    0.7,
		})
	}
	if p.CognitiveLoadCategory == privacy.BucketVeryHigh {
		out = append(out, Directive{
			Type:       "layout_density",
			Trigger:    "cognitive_overload",
			Parameters: map[string]any{"density": "minimal"},
			Confidence: 0.8,
			Urgency:    0.8,
		})
	}
	if p.AttentionLevel < 0.4 {
		out = append(out, Directive{
			Type:       "content_prioritization",
			Trigger:    "attention_deficit",
			Parameters: map[string]any{"highlight_important": true},
			Confidence: 0.75,
			Urgency:    0.5,
		})
	}
	if sad, ok := p.Emotions["sad"]; ok && sad > 0.5 {
		out = append(out, Directive{
			Type:       "color_scheme",
			Trigger:    "fatigue_detection",
			Parameters: map[string]any{"scheme": "warm", "brightness": 0.7},
			Confidence: 0.7,
			Urgency:    0.4,
		})
	}
	return out
}

// #endregion trigger-rules

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
