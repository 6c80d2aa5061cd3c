package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/internal/presentation/graph"
	"github.com/aretw0/magnetrade/pkg/adapters/execsvc"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Studio is the application surface served over HTTP.
// *magnetrade.Studio implements it.
type Studio interface {
	Catalog() *schema.Catalog
	Compile(g domain.Graph) (domain.Graph, compiler.Workflow, error)
	Validate(g domain.Graph) []compiler.Issue
	Save(ctx context.Context, s *domain.Strategy) (*domain.Strategy, error)
	Load(ctx context.Context, id string) (*domain.Strategy, error)
	List(ctx context.Context, owner string) ([]*domain.Strategy, error)
	Delete(ctx context.Context, id string) error
	Evaluate(ctx context.Context, id string) (*domain.Strategy, compiler.BindReport, error)
	Balance(ctx context.Context) (*domain.Balance, error)
}

// Server serves the strategy API.
type Server struct {
	Studio   Studio
	logger   *slog.Logger
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	version  string
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records request metrics and serves gatherer on /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewHandler creates the HTTP handler for the studio.
func NewHandler(studio Studio, opts ...Option) http.Handler {
	s := &Server{
		Studio:  studio,
		logger:  logging.NewNop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.instrument)

	r.Get("/health", s.Health)
	r.Get("/schema", s.GetSchema)
	r.Post("/compile", s.Compile)
	r.Route("/strategies", func(r chi.Router) {
		r.Post("/", s.SaveStrategy)
		r.Get("/", s.ListStrategies)
		r.Get("/{id}", s.GetStrategy)
		r.Delete("/{id}", s.DeleteStrategy)
		r.Post("/{id}/evaluate", s.EvaluateStrategy)
		r.Get("/{id}/graph", s.GetStrategyGraph)
	})
	r.Post("/balance", s.GetBalance)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and records it under its route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(route, r.Method, strconv.Itoa(rec.status), elapsed)
		s.logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}

// -- Payloads --

// GraphPayload is the canvas shape accepted by /compile.
type GraphPayload struct {
	Nodes []domain.Node `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// CompileResponse carries the recompiled graph and its workflow.
type CompileResponse struct {
	Nodes    []domain.Node     `json:"nodes"`
	Edges    []domain.Edge     `json:"edges"`
	Workflow compiler.Workflow `json:"workflow"`
	Issues   []string          `json:"issues,omitempty"`
}

// SaveRequest is the body of POST /strategies, in the stored document shape.
type SaveRequest struct {
	ID        string           `json:"id,omitempty"`
	UID       string           `json:"uid"`
	Name      string           `json:"name,omitempty"`
	Strategy  domain.Graph     `json:"strategy"`
	Frequency domain.Frequency `json:"frequency,omitempty"`
}

// EvaluateResponse is the evaluated strategy plus the binding report.
type EvaluateResponse struct {
	Strategy   *domain.Strategy    `json:"strategy"`
	Bound      []string            `json:"bound"`
	Missed     []string            `json:"missed"`
	Collisions map[string][]string `json:"collisions,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// -- Handlers --

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

// GetSchema handles GET /schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Studio.Catalog())
}

// Compile handles POST /compile.
func (s *Server) Compile(w http.ResponseWriter, r *http.Request) {
	var body GraphPayload
	if !s.decode(w, r, &body) {
		return
	}
	g := domain.Graph{Nodes: body.Nodes, Edges: body.Edges}
	fresh, workflow, err := s.Studio.Compile(g)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := CompileResponse{Nodes: fresh.Nodes, Edges: fresh.Edges, Workflow: workflow}
	for _, issue := range s.Studio.Validate(g) {
		resp.Issues = append(resp.Issues, issue.String())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SaveStrategy handles POST /strategies.
func (s *Server) SaveStrategy(w http.ResponseWriter, r *http.Request) {
	var body SaveRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.UID == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "uid is required"})
		return
	}
	freq, err := domain.ParseFrequency(string(body.Frequency))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	saved, err := s.Studio.Save(r.Context(), &domain.Strategy{
		ID:        body.ID,
		Owner:     body.UID,
		Name:      body.Name,
		Graph:     body.Strategy,
		Frequency: freq,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	status := http.StatusOK
	if body.ID == "" {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, saved)
}

// ListStrategies handles GET /strategies?owner=.
func (s *Server) ListStrategies(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "owner query parameter is required"})
		return
	}
	list, err := s.Studio.List(r.Context(), owner)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// GetStrategy handles GET /strategies/{id}.
func (s *Server) GetStrategy(w http.ResponseWriter, r *http.Request) {
	strategy, err := s.Studio.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, strategy)
}

// DeleteStrategy handles DELETE /strategies/{id}.
func (s *Server) DeleteStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.Studio.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EvaluateStrategy handles POST /strategies/{id}/evaluate.
func (s *Server) EvaluateStrategy(w http.ResponseWriter, r *http.Request) {
	strategy, report, err := s.Studio.Evaluate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, EvaluateResponse{
		Strategy:   strategy,
		Bound:      nonNil(report.Bound),
		Missed:     nonNil(report.Missed),
		Collisions: report.Collisions,
	})
}

// GetStrategyGraph handles GET /strategies/{id}/graph.
func (s *Server) GetStrategyGraph(w http.ResponseWriter, r *http.Request) {
	strategy, err := s.Studio.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(graph.GenerateMermaid(strategy.Graph))); err != nil {
		s.logger.Error("GetStrategyGraph write failed", "err", err)
	}
}

// GetBalance handles POST /balance.
func (s *Server) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.Studio.Balance(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, balance)
}

// -- Helpers --

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var (
		cycle    *compiler.CycleError
		upstream *execsvc.StatusError
	)
	switch {
	case errors.Is(err, domain.ErrStrategyNotFound):
		return http.StatusNotFound
	case errors.As(err, &cycle), errors.Is(err, domain.ErrEmptyID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNoExecutionService):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &upstream), errors.Is(err, execsvc.ErrUnreachable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
