// Package server exposes the coach over HTTP.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moola-ai/coach/internal/agent"
	"github.com/moola-ai/coach/internal/intent"
	"github.com/moola-ai/coach/internal/prompt"
)

// maxBodyBytes caps chat request bodies; a single user turn has no business
// being larger than this.
const maxBodyBytes = 1 << 20

// Server handles HTTP requests for the coach.
type Server struct {
	coach *agent.Coach
	log   zerolog.Logger
}

// New creates a Server around a coach.
func New(coach *agent.Coach, log zerolog.Logger) *Server {
	return &Server{coach: coach, log: log}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(150 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Post("/api/chat", s.handleChat)
	r.Delete("/api/sessions/{id}", s.handleDeleteSession)

	return r
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message   string             `json:"message"`
	SessionID string             `json:"sessionId,omitempty"`
	Mode      string             `json:"mode,omitempty"`
	Context   *prompt.SimContext `json:"context,omitempty"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Message    string          `json:"message"`
	SessionID  string          `json:"sessionId"`
	Intent     string          `json:"intent,omitempty"`
	Params     intent.ParamSet `json:"params,omitempty"`
	Action     *intent.Action  `json:"action,omitempty"`
	Confidence float64         `json:"confidence"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	} else if !agent.ValidSessionID(sessionID) {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	resp, err := s.coach.Process(r.Context(), &agent.Request{
		SessionID: sessionID,
		Message:   req.Message,
		Mode:      req.Mode,
		Context:   req.Context,
	})
	if err != nil {
		s.log.Error().Err(err).Str("session", sessionID).Msg("chat turn failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.writeJSON(w, http.StatusOK, ChatResponse{
		Message:    resp.Message,
		SessionID:  resp.SessionID,
		Intent:     resp.Intent,
		Params:     resp.Params,
		Action:     resp.Action,
		Confidence: resp.Confidence,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !agent.ValidSessionID(id) {
		s.writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	existed, err := s.coach.DeleteSession(r.Context(), id)
	if err != nil {
		s.log.Error().Err(err).Str("session", id).Msg("delete session failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !existed {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "ok"
	if !s.coach.ModelAvailable() {
		status = "degraded"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"model":  s.coach.ModelAvailable(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.coach.Stats())
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"service": "coach",
		"chat":    "POST /api/chat",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("write response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// requestLogger logs one line per request, after it finishes.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
