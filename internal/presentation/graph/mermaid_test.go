package graph_test

import (
	"testing"

	"github.com/aretw0/magnetrade/internal/presentation/graph"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

func fixture() domain.Graph {
	return domain.Graph{
		Nodes: []domain.Node{
			{ID: "1", Kind: domain.KindCondition, Summary: "RSI AAPL 14 Days > Constant 70"},
			{ID: "2", Kind: domain.KindAction, Summary: "Buy AAPL 10"},
			{ID: "3", Kind: domain.KindCondition, Summary: "Current Stock Price MSFT < Constant 400"},
			{ID: "4", Kind: domain.KindAction, Summary: "Sell MSFT 3"},
		},
		Edges: []domain.Edge{
			domain.NewEdge("1", "2"),
			domain.NewEdge("1", "3"),
			domain.NewEdge("3", "4"),
			domain.NewEdge("3", "99"),
		},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := newGoldie(t)

	t.Run("strategy", func(t *testing.T) {
		g.Assert(t, "strategy", []byte(graph.GenerateMermaid(fixture())))
	})

	t.Run("evaluated", func(t *testing.T) {
		evaluated := fixture()
		evaluated.Nodes[0].Result = &domain.EvaluatedResult{LHS: "72.5", RHS: "70", Operator: ">", Result: "true"}
		evaluated.Nodes[2].Result = &domain.EvaluatedResult{LHS: "410", RHS: "400", Operator: "<", Result: "False"}
		g.Assert(t, "evaluated", []byte(graph.GenerateMermaid(evaluated)))
	})
}

func TestGenerateMermaid_Escaping(t *testing.T) {
	out := graph.GenerateMermaid(domain.Graph{Nodes: []domain.Node{
		{ID: "node-1", Kind: domain.KindAction, Summary: `say "hi"`},
	}})
	assert.Contains(t, out, `nnode_1["say #quot;hi#quot;"]`)
}
