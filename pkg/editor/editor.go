// Package editor holds the authoring state of one strategy.
//
// An Editor owns the graph and keeps every node's summary in step with its
// configuration: each mutation recompiles the affected summary before it returns,
// so no stale summary can be persisted or traversed. It is not safe for concurrent
// use; callers serialize edits the way a UI event loop does.
package editor

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// Editor is the single owner of a strategy's graph during a session.
type Editor struct {
	catalog  *schema.Catalog
	strategy *domain.Strategy
	nextID   int
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Editor.
type Option func(*Editor)

// WithLogger configures a logger for configuration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// New creates an editor over an empty strategy.
func New(catalog *schema.Catalog, opts ...Option) *Editor {
	return Open(catalog, &domain.Strategy{Frequency: domain.FrequencyNow}, opts...)
}

// Open creates an editor over an existing strategy. Every summary is recompiled and
// the ID counter is seeded above the highest numeric node ID, so IDs are never reused.
func Open(catalog *schema.Catalog, s *domain.Strategy, opts ...Option) *Editor {
	e := &Editor{
		catalog:  catalog,
		strategy: s.Clone(),
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.strategy.Graph = compiler.Recompile(catalog, e.strategy.Graph)
	for _, n := range e.strategy.Graph.Nodes {
		if v, err := strconv.Atoi(n.ID); err == nil && v > e.nextID {
			e.nextID = v
		}
	}
	return e
}

// Catalog returns the catalog the editor validates against.
func (e *Editor) Catalog() *schema.Catalog {
	return e.catalog
}

// Graph returns a copy of the current graph.
func (e *Editor) Graph() domain.Graph {
	return e.strategy.Graph.Clone()
}

// Node returns a copy of a node.
func (e *Editor) Node(id string) (domain.Node, error) {
	n, ok := e.strategy.Graph.Node(id)
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	return n.Clone(), nil
}

// SetMetadata updates the owner, name and frequency of the strategy.
func (e *Editor) SetMetadata(owner, name string, freq domain.Frequency) {
	e.strategy.Owner = owner
	e.strategy.Name = name
	e.strategy.Frequency = freq
}

// Strategy returns a snapshot of the strategy with its workflow extracted from the
// current graph.
func (e *Editor) Strategy(opts ...compiler.ExtractOption) (*domain.Strategy, error) {
	w, err := compiler.Extract(e.strategy.Graph, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract workflow: %w", err)
	}
	s := e.strategy.Clone()
	s.Workflow = w
	return s, nil
}

// AddNode places a new block and returns its ID.
func (e *Editor) AddNode(kind domain.BlockKind, pos domain.Position) string {
	e.nextID++
	n := domain.Node{
		ID:         strconv.Itoa(e.nextID),
		Kind:       kind,
		Position:   pos,
		Menus:      make(map[string]string),
		Selections: make(map[string]map[string]domain.Value),
	}
	n.Summary = compiler.Summarize(e.catalog, n)
	e.strategy.Graph.Nodes = append(e.strategy.Graph.Nodes, n)
	e.touch()
	return n.ID
}

// RemoveNode deletes a node and every edge touching it.
func (e *Editor) RemoveNode(id string) error {
	i := e.strategy.Graph.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	g := &e.strategy.Graph
	g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)

	edges := g.Edges[:0]
	for _, edge := range g.Edges {
		if edge.Source != id && edge.Target != id {
			edges = append(edges, edge)
		}
	}
	g.Edges = edges
	e.touch()
	return nil
}

// MoveNode updates the cosmetic canvas position of a node.
func (e *Editor) MoveNode(id string, pos domain.Position) error {
	n, ok := e.strategy.Graph.Node(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id)
	}
	n.Position = pos
	return nil
}

// Connect adds an edge from source to target and returns its ID.
// Connecting the same pair twice returns the existing edge.
func (e *Editor) Connect(source, target string) (string, error) {
	g := &e.strategy.Graph
	if _, ok := g.Node(source); !ok {
		return "", fmt.Errorf("%w: source %s", domain.ErrInvalidEdge, source)
	}
	if _, ok := g.Node(target); !ok {
		return "", fmt.Errorf("%w: target %s", domain.ErrInvalidEdge, target)
	}
	for _, edge := range g.Edges {
		if edge.Source == source && edge.Target == target {
			return edge.ID, nil
		}
	}
	edge := domain.NewEdge(source, target)
	g.Edges = append(g.Edges, edge)
	e.touch()
	return edge.ID, nil
}

// Disconnect removes an edge by ID.
func (e *Editor) Disconnect(edgeID string) error {
	g := &e.strategy.Graph
	for i, edge := range g.Edges {
		if edge.ID == edgeID {
			g.Edges = append(g.Edges[:i], g.Edges[i+1:]...)
			e.touch()
			return nil
		}
	}
	return fmt.Errorf("%w: %s not found", domain.ErrInvalidEdge, edgeID)
}

// ApplyResults binds evaluation results onto the graph, replacing previous results.
func (e *Editor) ApplyResults(results compiler.Results) compiler.BindReport {
	g, report := compiler.Bind(e.strategy.Graph, results)
	e.strategy.Graph = g
	e.logger.Debug("Results bound", "bound", len(report.Bound), "missed", len(report.Missed))
	for summary, ids := range report.Collisions {
		e.logger.Warn("Several conditions share a summary and received the same result", "summary", summary, "nodes", ids)
	}
	return report
}

// ClearResults drops every evaluation result.
func (e *Editor) ClearResults() {
	for i := range e.strategy.Graph.Nodes {
		e.strategy.Graph.Nodes[i].Result = nil
	}
}

func (e *Editor) touch() {
	ts := e.now().UTC()
	if e.strategy.CreatedAt.IsZero() {
		e.strategy.CreatedAt = ts
	}
	e.strategy.UpdatedAt = ts
}
