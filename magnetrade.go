package magnetrade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/adapters/memory"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/editor"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/aretw0/magnetrade/pkg/repository"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// ErrNoExecutionService is returned by Evaluate and Balance when no client is configured.
var ErrNoExecutionService = domain.ErrNoExecutionService

// Studio is the high-level entry point of the library.
// It compiles graphs, persists strategies and round-trips them through the execution service.
// Safe for concurrent use.
type Studio struct {
	catalog     *schema.Catalog
	store       ports.StrategyStore
	repo        *repository.Manager
	exec        ports.ExecutionService
	metrics     *observability.Metrics
	logger      *slog.Logger
	cyclePolicy compiler.CyclePolicy
	repoOpts    []repository.Option
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithCatalog replaces the embedded default catalog.
func WithCatalog(c *schema.Catalog) Option {
	return func(s *Studio) {
		s.catalog = c
	}
}

// WithStore sets the strategy store. Defaults to an in-memory store.
func WithStore(store ports.StrategyStore) Option {
	return func(s *Studio) {
		s.store = store
	}
}

// WithExecutionService sets the client used by Evaluate and Balance.
func WithExecutionService(exec ports.ExecutionService) Option {
	return func(s *Studio) {
		s.exec = exec
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Studio) {
		s.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// WithCyclePolicy controls how workflow extraction treats cycles.
func WithCyclePolicy(p compiler.CyclePolicy) Option {
	return func(s *Studio) {
		s.cyclePolicy = p
	}
}

// WithLocker serializes writes across replicas through a distributed lock.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Studio) {
		s.repoOpts = append(s.repoOpts, repository.WithLocker(locker))
	}
}

// WithRepositoryOptions passes options to the underlying repository.Manager.
func WithRepositoryOptions(opts ...repository.Option) Option {
	return func(s *Studio) {
		s.repoOpts = append(s.repoOpts, opts...)
	}
}

// New creates a Studio.
func New(opts ...Option) *Studio {
	s := &Studio{
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = schema.Default()
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	repoOpts := append([]repository.Option{repository.WithLogger(s.logger)}, s.repoOpts...)
	s.repo = repository.NewManager(s.store, repoOpts...)
	return s
}

// Catalog returns the menu catalog.
func (s *Studio) Catalog() *schema.Catalog {
	return s.catalog
}

// Editor opens a strategy for editing against the Studio's catalog.
// A nil strategy starts an empty one.
func (s *Studio) Editor(strategy *domain.Strategy) *editor.Editor {
	if strategy == nil {
		return editor.New(s.catalog, editor.WithLogger(s.logger))
	}
	return editor.Open(s.catalog, strategy, editor.WithLogger(s.logger))
}

// Compile recompiles every summary of g and extracts its workflow.
func (s *Studio) Compile(g domain.Graph) (domain.Graph, compiler.Workflow, error) {
	fresh, w, err := compiler.Compile(s.catalog, g, compiler.WithCyclePolicy(s.cyclePolicy))
	s.metrics.ObserveCompilation(len(w), err)
	if err != nil {
		return fresh, nil, err
	}
	return fresh, w, nil
}

// Validate reports structural issues of g after recompiling its summaries.
func (s *Studio) Validate(g domain.Graph) []compiler.Issue {
	return compiler.Validate(compiler.Recompile(s.catalog, g))
}

// Save compiles the strategy and persists it with its workflow.
// Strategies without an ID get one; the saved copy is returned.
func (s *Studio) Save(ctx context.Context, strategy *domain.Strategy) (*domain.Strategy, error) {
	if strategy.Frequency != "" {
		if _, err := domain.ParseFrequency(string(strategy.Frequency)); err != nil {
			return nil, err
		}
	}
	fresh, w, err := s.Compile(strategy.Graph)
	if err != nil {
		return nil, fmt.Errorf("failed to compile strategy: %w", err)
	}

	in := strategy.Clone()
	in.Graph = fresh
	in.Workflow = w
	saved, err := s.repo.Save(ctx, in)
	if err != nil {
		s.logger.Error("failed to save strategy", "strategy_id", in.ID, "err", err)
		return nil, err
	}
	s.logger.Info("strategy saved",
		"strategy_id", saved.ID,
		"owner", saved.Owner,
		"workflows", len(saved.Workflow),
	)
	return saved, nil
}

// Load retrieves a strategy by ID.
func (s *Studio) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	return s.repo.Load(ctx, id)
}

// List returns the strategies of an owner, oldest first.
func (s *Studio) List(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	return s.repo.ListByOwner(ctx, owner)
}

// Delete removes a strategy.
func (s *Studio) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Evaluate submits the strategy's workflow to the execution service, binds the
// results onto its Condition nodes and persists the evaluated graph.
// Results are bound onto the graph stored at write time, so a save made while the
// request was in flight keeps its nodes and edges. On failure the stored strategy
// is left untouched.
func (s *Studio) Evaluate(ctx context.Context, id string) (*domain.Strategy, compiler.BindReport, error) {
	if s.exec == nil {
		return nil, compiler.BindReport{}, ErrNoExecutionService
	}
	strategy, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, compiler.BindReport{}, err
	}
	_, w, err := s.Compile(strategy.Graph)
	if err != nil {
		return nil, compiler.BindReport{}, fmt.Errorf("failed to compile strategy: %w", err)
	}

	start := time.Now()
	results, err := s.exec.Evaluate(ctx, w)
	s.metrics.ObserveEvaluation(time.Since(start), err)
	if err != nil {
		s.logger.Error("evaluation failed", "strategy_id", id, "err", err)
		return nil, compiler.BindReport{}, err
	}

	var report compiler.BindReport
	updated, err := s.repo.Update(ctx, id, func(st *domain.Strategy) error {
		current, cw, err := compiler.Compile(s.catalog, st.Graph, compiler.WithCyclePolicy(s.cyclePolicy))
		if err != nil {
			return fmt.Errorf("failed to compile strategy: %w", err)
		}
		st.Graph, report = compiler.Bind(current, results)
		st.Workflow = cw
		return nil
	})
	if err != nil {
		return nil, report, err
	}
	s.metrics.ObserveBinding(len(report.Bound), len(report.Missed))
	for summary, nodes := range report.Collisions {
		s.logger.Warn("summary shared by several condition nodes",
			"strategy_id", id,
			"summary", summary,
			"nodes", nodes,
		)
	}
	s.logger.Info("strategy evaluated",
		"strategy_id", id,
		"bound", len(report.Bound),
		"missed", len(report.Missed),
	)
	return updated, report, nil
}

// Balance reads the account state from the execution service.
func (s *Studio) Balance(ctx context.Context) (*domain.Balance, error) {
	if s.exec == nil {
		return nil, ErrNoExecutionService
	}
	b, err := s.exec.Balance(ctx)
	if err != nil {
		s.logger.Error("balance request failed", "err", err)
		return nil, err
	}
	return b, nil
}
