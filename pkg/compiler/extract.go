package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// CyclePolicy decides what Extract does when a walk reaches a node that is already
// on the current path.
//
// Cyclic strategies are not malformed by definition. Rejecting them is this
// package's default, not a property of the graph model; the HTTP API and the CLI
// pass the configured policy (cycle_policy: skip) through unchanged.
type CyclePolicy int

const (
	// CycleReject aborts extraction with a *CycleError.
	CycleReject CyclePolicy = iota
	// CycleSkip drops the closing edge and keeps walking the remaining branches.
	CycleSkip
)

// CycleError reports the path of the first cycle met during extraction.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", domain.ErrCycleDetected, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return domain.ErrCycleDetected }

// ExtractOption configures Extract.
type ExtractOption func(*extractor)

// WithCyclePolicy sets the behaviour on cyclic input. The default is CycleReject.
func WithCyclePolicy(p CyclePolicy) ExtractOption {
	return func(x *extractor) {
		x.policy = p
	}
}

type extractor struct {
	nodes    map[string]domain.Node
	outgoing map[string][]domain.Edge
	policy   CyclePolicy

	// stack is the current DFS path; onStack indexes it.
	stack   []string
	onStack map[string]bool
}

// Extract linearizes the graph into one command list per entry node.
//
// Entry nodes (no incoming edge, either kind) are visited in node declaration order.
// Each walk is depth-first and appends into a single shared list, following outgoing
// edges in edge declaration order; a node reachable through two branches is appended
// once per branch. An Action node without outgoing edges ends its branch. Edges to
// nodes that do not exist are skipped.
//
// A walk that returns to a node already on its own path is a cycle; see CyclePolicy.
// Components without any entry node produce no workflow.
func Extract(g domain.Graph, opts ...ExtractOption) (Workflow, error) {
	x := &extractor{
		nodes:    g.NodeMap(),
		outgoing: make(map[string][]domain.Edge),
		onStack:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(x)
	}
	for _, e := range g.Edges {
		x.outgoing[e.Source] = append(x.outgoing[e.Source], e)
	}

	workflows := make(Workflow, 0)
	for _, entry := range g.EntryNodes() {
		var path []string
		if err := x.buildPath(entry.ID, &path); err != nil {
			return nil, err
		}
		workflows = append(workflows, resolved(path))
	}
	return workflows, nil
}

func (x *extractor) buildPath(id string, path *[]string) error {
	node, ok := x.nodes[id]
	if !ok {
		return nil
	}
	*path = append(*path, node.Summary)

	out := x.outgoing[id]
	if node.Kind == domain.KindAction && len(out) == 0 {
		return nil
	}

	x.stack = append(x.stack, id)
	x.onStack[id] = true
	defer func() {
		x.stack = x.stack[:len(x.stack)-1]
		delete(x.onStack, id)
	}()

	for _, e := range out {
		if x.onStack[e.Target] {
			if x.policy == CycleSkip {
				continue
			}
			return &CycleError{Path: x.cyclePath(e.Target)}
		}
		if err := x.buildPath(e.Target, path); err != nil {
			return err
		}
	}
	return nil
}

// cyclePath returns the stack slice from target to the top, closed by target.
func (x *extractor) cyclePath(target string) []string {
	start := 0
	for i, id := range x.stack {
		if id == target {
			start = i
			break
		}
	}
	cycle := append([]string(nil), x.stack[start:]...)
	return append(cycle, target)
}

// resolved drops entries whose summary is empty.
func resolved(path []string) []string {
	out := make([]string, 0, len(path))
	for _, s := range path {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
