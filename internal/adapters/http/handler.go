package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PabloGalante/eco-agent/internal/app/conversation"
	"github.com/PabloGalante/eco-agent/internal/app/greeting"
	"github.com/PabloGalante/eco-agent/internal/app/triggers"
	"github.com/PabloGalante/eco-agent/internal/domain"
	"github.com/PabloGalante/eco-agent/internal/observability"
)

const maxBodyBytes = 64 << 10

type Server struct {
	svc         *conversation.Service
	limiter     *RateLimiter
	corsOrigins []string
}

type Option func(*Server)

// WithRateLimiter limits message and detection endpoints.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.limiter = rl }
}

func WithCORSOrigins(origins []string) Option {
	return func(s *Server) { s.corsOrigins = origins }
}

func NewServer(svc *conversation.Service, opts ...Option) http.Handler {
	s := &Server{svc: svc, corsOrigins: []string{"*"}}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(withRequestLogging)
	r.Use(withCORS(s.corsOrigins))

	r.Get("/healthz", s.handleHealthz)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/messages", s.handleSendMessage)
	})

	r.With(withIPRateLimit(s.limiter)).Post("/triggers/detect", s.handleDetect)

	return r
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserID string `json:"user_id"`
	Title  string `json:"title,omitempty"`
}

type createSessionResponse struct {
	Session sessionResponse `json:"session"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Author      string    `json:"author"`
	Text        string    `json:"text"`
	Tags        []string  `json:"tags,omitempty"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// signalFields are the optional hints shared by messages and detection.
type signalFields struct {
	OpennessLevel    *int `json:"openness_level,omitempty"`
	Intensity        *int `json:"intensity,omitempty"`
	MinutesAvailable *int `json:"minutes_available,omitempty"`
}

func (f signalFields) validate() error {
	if f.OpennessLevel != nil && (*f.OpennessLevel < 1 || *f.OpennessLevel > 3) {
		return fmt.Errorf("openness_level must be between 1 and 3")
	}
	if f.Intensity != nil && (*f.Intensity < 0 || *f.Intensity > 10) {
		return fmt.Errorf("intensity must be between 0 and 10")
	}
	if f.MinutesAvailable != nil && *f.MinutesAvailable < 0 {
		return fmt.Errorf("minutes_available must not be negative")
	}
	return nil
}

type sendMessageRequest struct {
	UserID     string `json:"user_id"`
	Text       string `json:"text"`
	UserName   string `json:"user_name,omitempty"`
	ClientHour *int   `json:"client_hour,omitempty"`
	ClientTZ   string `json:"client_tz,omitempty"`
	signalFields
}

type sendMessageResponse struct {
	UserMessage      messageResponse       `json:"user_message"`
	AssistantMessage messageResponse       `json:"assistant_message"`
	Shortcut         greeting.Kind         `json:"shortcut"`
	Practices        []triggers.Result     `json:"practices"`
	Topics           []triggers.TopicMatch `json:"topics"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type detectRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold,omitempty"`
	signalFields
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{
		UserID: domain.UserID(req.UserID),
		Title:  req.Title,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session: toSessionResponse(out.Session),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		badRequest(w, "user_id is required")
		return
	}

	sessions, err := s.svc.ListSessions(r.Context(), domain.UserID(userID), queryLimit(r, 20))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := listSessionsResponse{Sessions: make([]sessionResponse, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := domain.SessionID(chi.URLParam(r, "id"))

	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, queryLimit(r, 0))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := domain.SessionID(chi.URLParam(r, "id"))

	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if req.UserID == "" {
		badRequest(w, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}
	if err := req.validate(); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.ClientHour != nil && (*req.ClientHour < 0 || *req.ClientHour > 23) {
		badRequest(w, "client_hour must be between 0 and 23")
		return
	}

	if !s.limiter.Allow("user:" + req.UserID) {
		tooManyRequests(w)
		return
	}

	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID:        sessionID,
		UserID:           domain.UserID(req.UserID),
		Text:             req.Text,
		UserName:         req.UserName,
		ClientHour:       req.ClientHour,
		ClientTZ:         req.ClientTZ,
		OpennessLevel:    req.OpennessLevel,
		Intensity:        req.Intensity,
		MinutesAvailable: req.MinutesAvailable,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
		Shortcut:         out.Shortcut,
		Practices:        nonNil(out.Practices),
		Topics:           nonNil(out.Topics),
	})
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	threshold := s.svc.Threshold()
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			badRequest(w, "threshold must be between 0 and 1")
			return
		}
		threshold = *req.Threshold
	}

	out := s.svc.Detect(triggers.Input{
		Text:             req.Text,
		OpennessLevel:    req.OpennessLevel,
		Intensity:        req.Intensity,
		MinutesAvailable: req.MinutesAvailable,
	}, threshold)

	out.Practices = nonNil(out.Practices)
	out.Topics = nonNil(out.Topics)
	writeJSON(w, http.StatusOK, out)
}

// ─────────────────────────────────────────────
// Conversation Helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		UserID:    string(s.UserID),
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:          string(m.ID),
		SessionID:   string(m.SessionID),
		Author:      string(m.Author),
		Text:        m.Text,
		Tags:        m.Tags,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func queryLimit(r *http.Request, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 0 {
		return def
	}
	return n
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorMessage(w, http.StatusBadRequest, msg)
}

func tooManyRequests(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "60")
	writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
}

// writeError maps domain errors to status codes and logs the rest.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		writeErrorMessage(w, http.StatusNotFound, "session not found")
	case errors.Is(err, domain.ErrUserMismatch):
		writeErrorMessage(w, http.StatusForbidden, "session belongs to another user")
	case errors.Is(err, domain.ErrEmptyMessage):
		badRequest(w, "text is required")
	case errors.Is(err, domain.ErrSessionExists):
		writeErrorMessage(w, http.StatusConflict, "session already exists")
	case errors.Is(err, domain.ErrEmptyReply):
		writeErrorMessage(w, http.StatusBadGateway, "empty reply from model")
	default:
		observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
