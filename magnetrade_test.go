package magnetrade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/aretw0/magnetrade/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	results  compiler.Results
	err      error
	received compiler.Workflow
	during   func()
}

func (f *fakeExec) Evaluate(ctx context.Context, w compiler.Workflow) (compiler.Results, error) {
	f.received = w
	if f.during != nil {
		f.during()
	}
	return f.results, f.err
}

func (f *fakeExec) Balance(ctx context.Context) (*domain.Balance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Balance{Cash: 100, Equity: 150}, nil
}

func rsiStrategy(owner string) *domain.Strategy {
	return &domain.Strategy{
		Owner: owner,
		Name:  "rsi overbought",
		Graph: domain.Graph{
			Nodes: []domain.Node{
				{
					ID:   "1",
					Kind: domain.KindCondition,
					Menus: map[string]string{
						schema.MenuOperand1:  "RSI",
						schema.MenuCondition: schema.SubMenuOperator,
						schema.MenuOperand2:  "Constant",
					},
					Selections: map[string]map[string]domain.Value{
						schema.MenuOperand1: {
							"Asset:":            domain.Scalar("AAPL"),
							"Look-back Period:": domain.Scalar("14"),
							"Aggregation:":      domain.Scalar("Days"),
						},
						schema.MenuCondition: {schema.PromptOperator: domain.Scalar(">")},
						schema.MenuOperand2:  {"Value:": domain.Scalar("70")},
					},
				},
				{
					ID:    "2",
					Kind:  domain.KindAction,
					Menus: map[string]string{schema.MenuActions: "Sell"},
					Selections: map[string]map[string]domain.Value{
						schema.MenuActions: {"Asset:": domain.Scalar("AAPL"), "Quantity:": domain.Scalar("5")},
					},
				},
			},
			Edges: []domain.Edge{domain.NewEdge("1", "2")},
		},
	}
}

func TestStudio_SaveCompiles(t *testing.T) {
	studio := magnetrade.New()
	ctx := context.Background()

	saved, err := studio.Save(ctx, rsiStrategy("alice"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, domain.FrequencyNow, saved.Frequency)
	assert.Equal(t, "RSI AAPL 14 Days > Constant 70", saved.Graph.Nodes[0].Summary)
	assert.Equal(t, [][]string{{"RSI AAPL 14 Days > Constant 70", "Sell AAPL 5"}}, saved.Workflow)

	list, err := studio.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)

	require.NoError(t, studio.Delete(ctx, saved.ID))
	_, err = studio.Load(ctx, saved.ID)
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)
}

func TestStudio_SaveRejectsCycles(t *testing.T) {
	studio := magnetrade.New()
	s := rsiStrategy("alice")
	s.Graph.Nodes[1].Kind = domain.KindCondition
	s.Graph.Edges = append(s.Graph.Edges, domain.NewEdge("2", "1"), domain.NewEdge("0", "1"))
	s.Graph.Nodes = append([]domain.Node{{ID: "0", Kind: domain.KindCondition}}, s.Graph.Nodes...)

	_, err := studio.Save(context.Background(), s)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	lenient := magnetrade.New(magnetrade.WithCyclePolicy(compiler.CycleSkip))
	_, err = lenient.Save(context.Background(), s)
	assert.NoError(t, err)
}

func TestStudio_SaveRejectsUnknownFrequency(t *testing.T) {
	s := rsiStrategy("alice")
	s.Frequency = "1week"
	_, err := magnetrade.New().Save(context.Background(), s)
	assert.Error(t, err)
}

func TestStudio_Evaluate(t *testing.T) {
	exec := &fakeExec{results: compiler.Results{
		"RSI AAPL 14 Days > Constant 70": {LHS: "72.1", RHS: "70", Result: "true"},
	}}
	reg := prometheus.NewRegistry()
	studio := magnetrade.New(
		magnetrade.WithExecutionService(exec),
		magnetrade.WithMetrics(observability.NewMetrics(reg)),
	)
	ctx := context.Background()

	saved, err := studio.Save(ctx, rsiStrategy("alice"))
	require.NoError(t, err)

	evaluated, report, err := studio.Evaluate(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, report.Bound)
	assert.Equal(t, compiler.Workflow{{"RSI AAPL 14 Days > Constant 70", "Sell AAPL 5"}}, exec.received)

	result := evaluated.Graph.Nodes[0].Result
	require.NotNil(t, result)
	assert.Equal(t, domain.EvaluatedResult{LHS: "72.1", RHS: "70", Operator: ">", Result: "true"}, *result)
	assert.Nil(t, evaluated.Graph.Nodes[1].Result)

	stored, err := studio.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, evaluated.Graph, stored.Graph)
}

func TestStudio_EvaluateKeepsConcurrentSave(t *testing.T) {
	exec := &fakeExec{results: compiler.Results{
		"RSI AAPL 14 Days > Constant 70": {LHS: "72.1", RHS: "70", Result: "true"},
	}}
	studio := magnetrade.New(magnetrade.WithExecutionService(exec))
	ctx := context.Background()

	saved, err := studio.Save(ctx, rsiStrategy("alice"))
	require.NoError(t, err)

	exec.during = func() {
		edited := saved.Clone()
		edited.Graph.Nodes = append(edited.Graph.Nodes, domain.Node{
			ID:    "3",
			Kind:  domain.KindAction,
			Menus: map[string]string{schema.MenuActions: "Buy"},
			Selections: map[string]map[string]domain.Value{
				schema.MenuActions: {"Asset:": domain.Scalar("MSFT"), "Quantity:": domain.Scalar("2")},
			},
		})
		edited.Graph.Edges = append(edited.Graph.Edges, domain.NewEdge("1", "3"))
		_, err := studio.Save(ctx, edited)
		require.NoError(t, err)
	}

	evaluated, report, err := studio.Evaluate(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, report.Bound)

	stored, err := studio.Load(ctx, saved.ID)
	require.NoError(t, err)
	require.Len(t, stored.Graph.Nodes, 3)
	assert.Len(t, stored.Graph.Edges, 2)
	assert.NotNil(t, stored.Graph.Nodes[0].Result)
	assert.Equal(t, evaluated.Graph, stored.Graph)
	assert.Len(t, stored.Workflow, 2)
}

func TestStudio_EvaluateFailureLeavesStrategy(t *testing.T) {
	exec := &fakeExec{err: errors.New("connection refused")}
	studio := magnetrade.New(magnetrade.WithExecutionService(exec))
	ctx := context.Background()

	saved, err := studio.Save(ctx, rsiStrategy("alice"))
	require.NoError(t, err)

	_, _, err = studio.Evaluate(ctx, saved.ID)
	assert.Error(t, err)

	stored, err := studio.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Graph, stored.Graph)
	assert.True(t, saved.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestStudio_NoExecutionService(t *testing.T) {
	studio := magnetrade.New()
	_, _, err := studio.Evaluate(context.Background(), "any")
	assert.ErrorIs(t, err, magnetrade.ErrNoExecutionService)
	_, err = studio.Balance(context.Background())
	assert.ErrorIs(t, err, magnetrade.ErrNoExecutionService)
}

func TestStudio_Balance(t *testing.T) {
	studio := magnetrade.New(magnetrade.WithExecutionService(&fakeExec{}))
	b, err := studio.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, b.Cash)
}
