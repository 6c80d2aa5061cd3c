package compiler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

// Text is a result field the execution service may send as a string, number or
// boolean. It is kept as its textual form.
type Text string

// UnmarshalJSON accepts any JSON scalar.
func (t *Text) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case strings.HasPrefix(raw, "{"), strings.HasPrefix(raw, "["):
		return fmt.Errorf("expected scalar, got %s", raw)
	default:
		*t = Text(raw)
	}
	return nil
}

// CommandResult is the execution service's answer for one command.
type CommandResult struct {
	LHS    Text `json:"lhs"`
	RHS    Text `json:"rhs"`
	Result Text `json:"result"`
}

// Results maps command strings to their evaluation.
type Results map[string]CommandResult

// BindReport describes what Bind matched.
type BindReport struct {
	// Bound lists the Condition nodes that received a result.
	Bound []string
	// Missed lists the Condition nodes whose summary had no result.
	Missed []string
	// Collisions maps summaries shared by several Condition nodes to their node IDs.
	// Those nodes all receive the same result.
	Collisions map[string][]string
}

// Bind returns a copy of the graph with evaluation results attached.
//
// A Condition node is matched when its summary equals a key of results, exactly.
// There is no node-ID correlation: nodes with identical summaries receive identical
// results. The operator is not returned by the service and is re-derived from the
// node's own summary. Results are replaced wholesale: Condition nodes without a match
// end up with no result, and Action nodes never carry one.
func Bind(g domain.Graph, results Results) (domain.Graph, BindReport) {
	out := g.Clone()
	report := BindReport{Collisions: make(map[string][]string)}
	bySummary := make(map[string][]string)

	for i := range out.Nodes {
		n := &out.Nodes[i]
		n.Result = nil
		if n.Kind != domain.KindCondition {
			continue
		}
		bySummary[n.Summary] = append(bySummary[n.Summary], n.ID)

		res, ok := results[n.Summary]
		if !ok {
			report.Missed = append(report.Missed, n.ID)
			continue
		}
		n.Result = &domain.EvaluatedResult{
			LHS:      string(res.LHS),
			RHS:      string(res.RHS),
			Operator: DeriveOperator(n.Summary),
			Result:   string(res.Result),
		}
		report.Bound = append(report.Bound, n.ID)
	}

	for summary, ids := range bySummary {
		if len(ids) > 1 {
			report.Collisions[summary] = ids
		}
	}
	return out, report
}

// DeriveOperator returns the first comparison operator found in a summary, or "".
// Whole tokens are preferred; a substring scan in operator order is the fallback.
func DeriveOperator(summary string) string {
	for _, tok := range strings.Fields(summary) {
		for _, op := range schema.Operators {
			if tok == op {
				return op
			}
		}
	}
	for _, op := range schema.Operators {
		if strings.Contains(summary, op) {
			return op
		}
	}
	return ""
}
