package compiler

import (
	"errors"
	"fmt"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// Issue levels.
const (
	LevelWarning = "warning"
	LevelError   = "error"
)

// Issue is a structural finding about a graph.
// None of them stop compilation; they are reported to the author.
type Issue struct {
	Level   string `json:"level"`
	NodeID  string `json:"node_id,omitempty"`
	EdgeID  string `json:"edge_id,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	switch {
	case i.NodeID != "":
		return fmt.Sprintf("[%s] node %s: %s", i.Level, i.NodeID, i.Message)
	case i.EdgeID != "":
		return fmt.Sprintf("[%s] edge %s: %s", i.Level, i.EdgeID, i.Message)
	}
	return fmt.Sprintf("[%s] %s", i.Level, i.Message)
}

// Validate inspects a compiled graph and reports dangling or self-referencing edges,
// unconfigured nodes, Condition nodes that lead nowhere, and cycles.
func Validate(g domain.Graph) []Issue {
	var issues []Issue

	for _, e := range g.DanglingEdges() {
		issues = append(issues, Issue{Level: LevelWarning, EdgeID: e.ID,
			Message: fmt.Sprintf("references a missing node (%s -> %s) and is ignored", e.Source, e.Target)})
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			issues = append(issues, Issue{Level: LevelError, EdgeID: e.ID, Message: "connects a node to itself"})
		}
	}
	for _, n := range g.Nodes {
		if n.Summary == EmptySummary || n.Summary == "" {
			issues = append(issues, Issue{Level: LevelWarning, NodeID: n.ID, Message: "has no operations defined"})
		}
		if n.Kind == domain.KindCondition && len(g.Outgoing(n.ID)) == 0 {
			issues = append(issues, Issue{Level: LevelWarning, NodeID: n.ID, Message: "condition leads to no action"})
		}
	}

	if _, err := Extract(g); err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			issues = append(issues, Issue{Level: LevelError, Message: cycle.Error()})
		} else {
			issues = append(issues, Issue{Level: LevelError, Message: err.Error()})
		}
	}
	if len(g.Nodes) > 0 && len(g.EntryNodes()) == 0 {
		issues = append(issues, Issue{Level: LevelError, Message: "graph has no entry node"})
	}
	return issues
}

// HasErrors reports whether any issue is at error level.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Level == LevelError {
			return true
		}
	}
	return false
}
