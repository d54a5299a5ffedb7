// Package server exposes quiz sessions over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/ladderquiz/internal/ladder"
	"github.com/abhisek/ladderquiz/internal/session"
)

// Server routes API calls to a session engine.
type Server struct {
	engine   *session.Engine
	sessions *Registry
}

// New creates a Server backed by engine and an empty registry.
func New(engine *session.Engine) *Server {
	return &Server{engine: engine, sessions: NewRegistry()}
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.Routes(r)
	return r
}

// Routes registers the API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/start", s.handleStart)
		r.Post("/answer", s.handleAnswer)
		r.Post("/continue", s.handleContinue)
		r.Get("/sessions/{sessionID}", s.handleGetSession)
	})
}

type startRequest struct {
	Subject string `json:"subject"`
	Level   string `json:"level"`
}

type startResponse struct {
	SessionID string                `json:"session_id"`
	Level     ladder.Level          `json:"level"`
	Question  *session.QuestionView `json:"question"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if !decode(w, r, &req) {
		return
	}

	level := ladder.Default
	if strings.TrimSpace(req.Level) != "" {
		l, err := ladder.Parse(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		level = l
	}

	id := NewID()
	ctx := session.WithID(r.Context(), id)
	st := s.engine.CreateSession(ctx, req.Subject, level)
	s.sessions.Put(id, st)

	slog.Info("session started", "session_id", id, "subject", st.Subject, "level", st.Level.String())

	writeJSON(w, http.StatusOK, startResponse{
		SessionID: id,
		Level:     st.Level,
		Question:  currentQuestion(st),
	})
}

type answerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"q_id"`
	Answer     string `json:"answer"`
}

type answerResponse struct {
	session.Feedback
	NextQuestion  *session.QuestionView `json:"next_question"`
	BatchComplete bool                  `json:"batch_complete"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := session.WithID(r.Context(), req.SessionID)
	var turn session.Turn
	err := s.sessions.Update(req.SessionID, func(st session.State) (session.State, error) {
		var err error
		turn, err = s.engine.SubmitAndGrade(ctx, st, req.QuestionID, req.Answer)
		return turn.State, err
	})
	switch {
	case errors.Is(err, ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, session.ErrBatchExhausted):
		writeError(w, http.StatusConflict, "batch complete; continue or stop first")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, answerResponse{
		Feedback:      turn.Feedback,
		NextQuestion:  turn.Next,
		BatchComplete: turn.BatchComplete,
	})
}

type continueRequest struct {
	SessionID string `json:"session_id"`
	Continue  bool   `json:"continue"`
}

type continueResponse struct {
	Level        ladder.Level          `json:"level"`
	Question     *session.QuestionView `json:"question"`
	BatchSummary *session.BatchSummary `json:"batch_summary"`
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	var req continueRequest
	if !decode(w, r, &req) {
		return
	}

	ctx := session.WithID(r.Context(), req.SessionID)
	var resp continueResponse
	err := s.sessions.Update(req.SessionID, func(st session.State) (session.State, error) {
		if !req.Continue {
			next, sum := s.engine.StopAndSummarize(st)
			resp = continueResponse{Level: next.Level, BatchSummary: &sum}
			return next, nil
		}
		c := s.engine.ContinueToNextBatch(ctx, st)
		resp = continueResponse{Level: c.Level, Question: c.Next, BatchSummary: &c.Summary}
		return c.State, nil
	})
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

type sessionResponse struct {
	SessionID     string                `json:"session_id"`
	Subject       string                `json:"subject"`
	Level         ladder.Level          `json:"level"`
	Question      *session.QuestionView `json:"question"`
	Answered      int                   `json:"answered"`
	BatchSize     int                   `json:"batch_size"`
	BatchComplete bool                  `json:"batch_complete"`
	QuestionCount int                   `json:"question_count"`
	TotalScore    int                   `json:"total_score"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	st, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID:     id,
		Subject:       st.Subject,
		Level:         st.Level,
		Question:      currentQuestion(st),
		Answered:      st.Cursor,
		BatchSize:     len(st.Batch),
		BatchComplete: session.IsBatchComplete(st),
		QuestionCount: st.QuestionCount,
		TotalScore:    st.TotalScore,
	})
}

func currentQuestion(st session.State) *session.QuestionView {
	q, ok := session.CurrentQuestion(st)
	if !ok {
		return nil
	}
	return &q
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
