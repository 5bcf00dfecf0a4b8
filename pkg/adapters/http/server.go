package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/aretw0/gmboard"
	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/history"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a session.Manager as a JSON API.
type Server struct {
	Manager  *session.Manager
	Streams  *StreamManager
	Defaults *docstore.Set

	gatherer prometheus.Gatherer
	logger   *slog.Logger

	mu        sync.Mutex
	published map[string]int // history entries already streamed, per run
}

// Option configures the Server.
type Option func(*Server)

// WithDefaultDocuments sets the scenario used when POST /sessions carries no upload.
func WithDefaultDocuments(docs *docstore.Set) Option {
	return func(s *Server) { s.Defaults = docs }
}

// WithGatherer serves metrics from g at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Manager:   mgr,
		Streams:   NewStreamManager(),
		gatherer:  prometheus.DefaultGatherer,
		logger:    logging.NewNop(),
		published: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.CreateSession)
		r.Get("/", s.ListSessions)
		r.Route("/{runID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/steps", s.ListSteps)
			r.Get("/steps/{name}", s.GetStep)
			r.Post("/steps/select", s.SelectStep)
			r.Post("/documents/select", s.SelectDocument)
			r.Post("/input", s.SubmitInput)
			r.Post("/views/{kind}/toggle", s.ToggleView)
			r.Post("/caches/{kind}/refresh", s.RefreshCache)
			r.Post("/clocks/{clockID}", s.AdjustClock)
			r.Post("/tools/{tool}", s.RunTool)
			r.Post("/roll", s.Roll)
			r.Get("/history", s.GetHistory)
			r.Get("/export", s.Export)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Entry is the wire form of a response: its category plus its fields.
type Entry struct {
	Type domain.Category `json:"type"`
	Data domain.Response `json:"data"`
}

// SessionView is the wire form of a session snapshot.
type SessionView struct {
	RunID string           `json:"run_id"`
	View  session.View     `json:"view"`
	State domain.GameState `json:"state"`
}

// TransitionResult is returned by every mutating endpoint.
type TransitionResult struct {
	Entry   *Entry      `json:"entry,omitempty"`
	Session SessionView `json:"session"`
}

type createRequest struct {
	Documents []docstore.Upload `json:"documents"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type inputRequest struct {
	Text string `json:"text"`
}

type clockRequest struct {
	Delta int `json:"delta"`
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("CreateSession: Invalid request body", "err", err)
		return
	}

	docs := s.Defaults
	if len(body.Documents) > 0 {
		uploaded, err := docstore.FromUploads(body.Documents...)
		if err != nil {
			s.writeError(w, err)
			return
		}
		docs = uploaded
	}

	sess, err := s.Manager.Create(r.Context(), docs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.viewOf(sess))
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Manager.List()})
}

// GetSession handles GET /sessions/{runID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.viewOf(sess))
}

// DeleteSession handles DELETE /sessions/{runID}.
// It waits for the transitions running on the session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if err := s.Manager.Delete(r.Context(), runID); err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	delete(s.published, runID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// ListSteps handles GET /sessions/{runID}/steps.
func (s *Server) ListSteps(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"steps":     sess.Steps(),
		"documents": sess.Documents().Names(),
	})
}

// GetStep handles GET /sessions/{runID}/steps/{name}.
func (s *Server) GetStep(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	name := urlParam(r, "name")
	step, found := sess.Step(name)
	if !found {
		http.Error(w, fmt.Sprintf("step %q not found", name), http.StatusNotFound)
		return
	}
	var rows [][]string
	if step.Table != nil {
		rows = step.Table.Rows()
	}
	writeJSON(w, http.StatusOK, map[string]any{"step": step, "rows": rows})
}

// SelectStep handles POST /sessions/{runID}/steps/select.
func (s *Server) SelectStep(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if !decode(w, r, &body) {
		return
	}
	s.transition(w, r, func(sess *session.Session) (domain.Response, error) {
		return sess.SelectStep(r.Context(), body.Name)
	})
}

// SelectDocument handles POST /sessions/{runID}/documents/select.
func (s *Server) SelectDocument(w http.ResponseWriter, r *http.Request) {
	var body nameRequest
	if !decode(w, r, &body) {
		return
	}
	s.transition(w, r, func(sess *session.Session) (domain.Response, error) {
		return sess.SelectDocument(body.Name)
	})
}

// SubmitInput handles POST /sessions/{runID}/input.
func (s *Server) SubmitInput(w http.ResponseWriter, r *http.Request) {
	var body inputRequest
	if !decode(w, r, &body) {
		return
	}
	s.transition(w, r, func(sess *session.Session) (domain.Response, error) {
		return sess.SubmitInput(r.Context(), body.Text)
	})
}

// ToggleView handles POST /sessions/{runID}/views/{kind}/toggle.
func (s *Server) ToggleView(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.cacheKind(w, r)
	if !ok {
		return
	}
	s.transition(w, r, func(sess *session.Session) (domain.Response, error) {
		return sess.ToggleCacheView(r.Context(), kind)
	})
}

// RefreshCache handles POST /sessions/{runID}/caches/{kind}/refresh.
func (s *Server) RefreshCache(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.cacheKind(w, r)
	if !ok {
		return
	}
	s.transition(w, r, func(sess *session.Session) (domain.Response, error) {
		return sess.ForceRefresh(r.Context(), kind)
	})
}

// AdjustClock handles POST /sessions/{runID}/clocks/{clockID}.
func (s *Server) AdjustClock(w http.ResponseWriter, r *http.Request) {
	var body clockRequest
	if !decode(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "clockID")
	var (
		clock domain.Clock
		found bool
	)
	err := s.Manager.Use(r.Context(), chi.URLParam(r, "runID"), func(_ context.Context, sess *session.Session) error {
		clock, found = sess.ApplyClockDelta(id, body.Delta)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !found {
		http.Error(w, fmt.Sprintf("clock %q not found", id), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, clock)
}

// RunTool handles POST /sessions/{runID}/tools/{tool}.
func (s *Server) RunTool(w http.ResponseWriter, r *http.Request) {
	tool := chi.URLParam(r, "tool")
	var run func(*session.Session) (domain.Response, error)
	switch tool {
	case "brief":
		run = func(sess *session.Session) (domain.Response, error) { return sess.RequestBrief(r.Context()) }
	case "bridges":
		run = func(sess *session.Session) (domain.Response, error) { return sess.RequestBridges(r.Context()) }
	case "options":
		run = func(sess *session.Session) (domain.Response, error) { return sess.RequestOptions(r.Context()) }
	default:
		http.Error(w, fmt.Sprintf("unknown tool %q", tool), http.StatusNotFound)
		return
	}
	s.transition(w, r, run)
}

// Roll handles POST /sessions/{runID}/roll.
func (s *Server) Roll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"value": sess.RollDie()})
}

// GetHistory handles GET /sessions/{runID}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": sess.History()})
}

// Export handles GET /sessions/{runID}/export.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := sess.Export(&buf); err != nil {
		if errors.Is(err, history.ErrEmpty) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sess.ExportName()))
	_, _ = w.Write(buf.Bytes())
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "gmboard-http",
		"version": strings.TrimSpace(gmboard.Version),
	})
}

// -- Helpers --

func (s *Server) transition(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (domain.Response, error)) {
	var result TransitionResult
	err := s.Manager.Use(r.Context(), chi.URLParam(r, "runID"), func(_ context.Context, sess *session.Session) error {
		resp, err := fn(sess)
		s.publish(sess)
		if err != nil {
			return err
		}
		result.Session = s.viewOf(sess)
		if resp != nil {
			result.Entry = &Entry{Type: resp.Category(), Data: resp}
		}
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// publish streams the history entries appended since the last call for the
// run, oldest first. Each entry is streamed once; cache fills never reach
// history and are never streamed.
func (s *Server) publish(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := sess.History()
	from := s.published[sess.RunID()]
	if from > len(entries) {
		from = len(entries)
	}
	for _, e := range entries[from:] {
		data, err := json.Marshal(Entry{Type: e.Category(), Data: e.Response})
		if err != nil {
			s.logger.Warn("Failed to encode history entry", "err", err)
			continue
		}
		s.Streams.Broadcast(sess.RunID(), string(data))
	}
	s.published[sess.RunID()] = len(entries)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Manager.Get(chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) cacheKind(w http.ResponseWriter, r *http.Request) (domain.CacheKind, bool) {
	raw := chi.URLParam(r, "kind")
	kind, ok := domain.ParseCacheKind(raw)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown cache kind %q", raw), http.StatusNotFound)
		return "", false
	}
	return kind, true
}

func (s *Server) viewOf(sess *session.Session) SessionView {
	return SessionView{RunID: sess.RunID(), View: sess.View(), State: sess.Snapshot()}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.logger.Error("Request failed", "err", err)
	} else {
		s.logger.Debug("Request rejected", "status", status, "err", err)
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRequestInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNoDocuments),
		errors.Is(err, domain.ErrDuplicateDocument),
		errors.Is(err, domain.ErrInvalidStep),
		errors.Is(err, domain.ErrUnknownCacheKind):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
