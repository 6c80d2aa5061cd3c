package tui

import (
	"bytes"
	"testing"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportStrategy() *domain.Strategy {
	return &domain.Strategy{
		ID:        "s-1",
		Owner:     "alice",
		Name:      "RSI swing",
		Frequency: domain.FrequencyDay,
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Graph: domain.Graph{
			Nodes: []domain.Node{
				{
					ID:   "1",
					Kind: domain.KindCondition,
					Selections: map[string]map[string]domain.Value{
						schema.MenuOperand1: {
							"Look-back Period:": domain.Scalar("14"),
							"Aggregation:":      domain.Scalar("Days"),
						},
					},
					Summary: "RSI AAPL 14 Days > Constant 70",
					Result:  &domain.EvaluatedResult{LHS: "72.5", RHS: "70", Operator: ">", Result: "true"},
				},
				{ID: "2", Kind: domain.KindAction, Summary: "Buy AAPL 10"},
			},
			Edges: []domain.Edge{domain.NewEdge("1", "2")},
		},
		Workflow: [][]string{{"RSI AAPL 14 Days > Constant 70", "Buy AAPL 10"}},
	}
}

func TestReports_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	g.Assert(t, "strategy_report", []byte(StrategyReport(reportStrategy())))
	g.Assert(t, "balance_report", []byte(BalanceReport(&domain.Balance{
		Cash:       1000.5,
		Equity:     2500,
		OpenOrders: []string{"Buy AAPL 10"},
	})))
}

func TestStrategyReport_Empty(t *testing.T) {
	out := StrategyReport(&domain.Strategy{})
	assert.Contains(t, out, "# Untitled strategy")
	assert.Contains(t, out, "- **Frequency:** now")
	assert.Contains(t, out, "_No blocks._")
	assert.Contains(t, out, "_No workflow._")
}

func TestRenderers(t *testing.T) {
	plain, err := PlainRenderer()("# Title")
	require.NoError(t, err)
	assert.Equal(t, "# Title", plain)

	render, err := NewRenderer(80)
	require.NoError(t, err)
	out, err := render("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), `|_|  |_|`)
}
