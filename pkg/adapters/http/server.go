package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/stepper"
	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxDesignBytes bounds the size of an uploaded design.
const MaxDesignBytes = 1 << 20

// Engine is the part of stepper.Engine the server drives.
type Engine interface {
	List(ctx context.Context) ([]string, error)
	Current(ctx context.Context, name string) (stepper.View, error)
	Next(ctx context.Context, name string) (stepper.View, error)
	Prev(ctx context.Context, name string) (stepper.View, error)
	Reset(ctx context.Context, name string) (stepper.View, error)
	GoTo(ctx context.Context, name, path string) (stepper.View, error)
	Apply(ctx context.Context, name string, d *design.Design) ([]sequencer.CommitResult, error)
	Diagram(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

var _ Engine = (*stepper.Engine)(nil)

// Server exposes an Engine as a JSON API.
type Server struct {
	Engine      Engine
	Streams     *StreamManager
	logger      *slog.Logger
	metrics     http.Handler
	metricsPath string
}

// Option configures the handler.
type Option func(*Server)

// WithStreams shares a StreamManager, typically one whose Hooks feed the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the request logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts a metrics handler (usually promhttp) at path.
func WithMetrics(path string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for the engine.
//
//	GET    /health
//	GET    /info
//	GET    /sequences
//	GET    /sequences/{name}
//	DELETE /sequences/{name}
//	POST   /sequences/{name}/next
//	POST   /sequences/{name}/prev
//	POST   /sequences/{name}/reset
//	POST   /sequences/{name}/goto      {"path": "..."}
//	POST   /sequences/{name}/design    YAML or JSON design
//	GET    /sequences/{name}/diagram
//	GET    /sequences/{name}/events    server-sent events
func NewHandler(engine Engine, opts ...Option) http.Handler {
	s := &Server{Engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}
	r.Route("/sequences", func(r chi.Router) {
		r.Get("/", s.ListSequences)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.GetCurrent)
			r.Delete("/", s.DeleteSequence)
			r.Post("/next", s.navigate(s.Engine.Next))
			r.Post("/prev", s.navigate(s.Engine.Prev))
			r.Post("/reset", s.navigate(s.Engine.Reset))
			r.Post("/goto", s.GoTo)
			r.Post("/design", s.ApplyDesign)
			r.Get("/diagram", s.GetDiagram)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "stepper-http",
		"version": strings.TrimSpace(stepper.Version),
	})
}

// ListSequences handles GET /sequences.
func (s *Server) ListSequences(w http.ResponseWriter, r *http.Request) {
	names, err := s.Engine.List(r.Context())
	if err != nil {
		s.fail(w, "List", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.writeJSON(w, http.StatusOK, names)
}

// GetCurrent handles GET /sequences/{name}.
func (s *Server) GetCurrent(w http.ResponseWriter, r *http.Request) {
	view, err := s.Engine.Current(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Current", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// DeleteSequence handles DELETE /sequences/{name}.
func (s *Server) DeleteSequence(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.fail(w, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) navigate(move func(context.Context, string) (stepper.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := move(r.Context(), chi.URLParam(r, "name"))
		if err != nil {
			s.fail(w, "Navigate", err)
			return
		}
		s.writeJSON(w, http.StatusOK, view)
	}
}

// GoToRequest is the body of POST /sequences/{name}/goto.
type GoToRequest struct {
	Path string `json:"path"`
}

// GoTo handles POST /sequences/{name}/goto.
func (s *Server) GoTo(w http.ResponseWriter, r *http.Request) {
	var body GoToRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("GoTo: Invalid request body", "error", err)
		return
	}
	view, err := s.Engine.GoTo(r.Context(), chi.URLParam(r, "name"), body.Path)
	if err != nil {
		s.fail(w, "GoTo", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// ApplyResponse is the body returned by POST /sequences/{name}/design.
type ApplyResponse struct {
	Results []sequencer.CommitResult `json:"results"`
	Current stepper.View             `json:"current"`
}

// ApplyDesign handles POST /sequences/{name}/design. The body is a design
// document; JSON is accepted as a subset of YAML.
func (s *Server) ApplyDesign(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	d, err := design.Parse(http.MaxBytesReader(w, r.Body, MaxDesignBytes))
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid design: %v", err), http.StatusBadRequest)
		s.logger.Warn("ApplyDesign: Invalid design", "error", err, "sequence", name)
		return
	}
	results, err := s.Engine.Apply(r.Context(), name, d)
	if err != nil {
		s.fail(w, "ApplyDesign", err)
		return
	}
	view, err := s.Engine.Current(r.Context(), name)
	if err != nil {
		s.fail(w, "ApplyDesign", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ApplyResponse{Results: results, Current: view})
}

// GetDiagram handles GET /sequences/{name}/diagram.
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	diagram, err := s.Engine.Diagram(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, "Diagram", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, diagram)
}

// SubscribeEvents handles GET /sequences/{name}/events (SSE).
// Each lifecycle event of the sequence is sent as a JSON data line.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}
	name := chi.URLParam(r, "name")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(name)
	defer cancel()
	s.logger.Info("SSE: Subscribing to sequence events", "sequence", name)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "sequence", name)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrUnevenPartition):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCapacity):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
