package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
)

const (
	promptAggregation = "Aggregation:"
	promptLookBack    = "Look-back Period:"
)

// StrategyReport renders a strategy as a markdown document.
func StrategyReport(s *domain.Strategy) string {
	var sb strings.Builder

	name := s.Name
	if name == "" {
		name = "Untitled strategy"
	}
	fmt.Fprintf(&sb, "# %s\n\n", name)

	if s.ID != "" {
		fmt.Fprintf(&sb, "- **ID:** %s\n", s.ID)
	}
	if s.Owner != "" {
		fmt.Fprintf(&sb, "- **Owner:** %s\n", s.Owner)
	}
	freq := s.Frequency
	if freq == "" {
		freq = domain.FrequencyNow
	}
	fmt.Fprintf(&sb, "- **Frequency:** %s\n", freq)
	if !s.UpdatedAt.IsZero() {
		fmt.Fprintf(&sb, "- **Updated:** %s\n", s.UpdatedAt.UTC().Format(time.RFC3339))
	}

	sb.WriteString("\n## Blocks\n\n")
	if len(s.Graph.Nodes) == 0 {
		sb.WriteString("_No blocks._\n")
	} else {
		sb.WriteString("| ID | Kind | Summary | Timeframe | Result |\n")
		sb.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, n := range s.Graph.Nodes {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				cell(n.ID), cell(n.Kind.Label()), cell(n.Summary), cell(timeframe(n)), cell(result(n.Result)))
		}
	}

	sb.WriteString("\n## Workflow\n\n")
	if len(s.Workflow) == 0 {
		sb.WriteString("_No workflow._\n")
	}
	for i, path := range s.Workflow {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.Join(path, " -> "))
	}
	return sb.String()
}

// BalanceReport renders the account state as a markdown document.
func BalanceReport(b *domain.Balance) string {
	var sb strings.Builder
	sb.WriteString("# Account\n\n")
	fmt.Fprintf(&sb, "- **Cash:** %.2f\n", b.Cash)
	fmt.Fprintf(&sb, "- **Equity:** %.2f\n", b.Equity)
	writeOrders(&sb, "Open orders", b.OpenOrders)
	writeOrders(&sb, "Closed orders", b.ClosedOrders)
	return sb.String()
}

func writeOrders(sb *strings.Builder, title string, orders []string) {
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	if len(orders) == 0 {
		sb.WriteString("_None._\n")
		return
	}
	for _, o := range orders {
		fmt.Fprintf(sb, "- %s\n", o)
	}
}

// timeframe derives the bar timeframe of the first operand, when it has one.
func timeframe(n domain.Node) string {
	if n.Kind != domain.KindCondition {
		return ""
	}
	agg, ok := n.PromptValue(schema.MenuOperand1, promptAggregation)
	if !ok || agg.IsZero() {
		return ""
	}
	qty, ok := n.PromptValue(schema.MenuOperand1, promptLookBack)
	if !ok || qty.IsZero() {
		return ""
	}
	return schema.Timeframe(agg.Tokens(), qty.Tokens())
}

func result(r *domain.EvaluatedResult) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %s: %s", r.LHS, r.Operator, r.RHS, r.Result)
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
