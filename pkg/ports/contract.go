package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractStrategy(id, owner string) *domain.Strategy {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Strategy{
		ID:    id,
		Owner: owner,
		Name:  "contract",
		Graph: domain.Graph{
			Nodes: []domain.Node{
				{
					ID:       "1",
					Kind:     domain.KindCondition,
					Position: domain.Position{X: 250, Y: 0},
					Menus:    map[string]string{"Operation 1": "Current Stock Price"},
					Selections: map[string]map[string]domain.Value{
						"Operation 1": {"Asset:": domain.Scalar("AAPL")},
					},
					Summary: "Current Stock Price AAPL",
					Result:  &domain.EvaluatedResult{LHS: "190.5", RHS: "180", Operator: ">", Result: "true"},
				},
				{
					ID:       "2",
					Kind:     domain.KindAction,
					Position: domain.Position{X: 100, Y: 100},
					Menus:    map[string]string{"Actions": "Buy"},
					Selections: map[string]map[string]domain.Value{
						"Actions": {"Asset:": domain.Scalar("AAPL"), "Quantity:": domain.Scalar("10")},
					},
					Summary: "Buy AAPL 10",
				},
			},
			Edges: []domain.Edge{domain.NewEdge("1", "2")},
		},
		Workflow:  [][]string{{"Current Stock Price AAPL", "Buy AAPL 10"}},
		Frequency: domain.FrequencyDay,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}

// RunStrategyStoreContract runs a suite of tests to verify that a StrategyStore
// implementation adheres to the defined interface contract.
func RunStrategyStoreContract(t *testing.T, store StrategyStore) {
	ctx := context.Background()
	suffix := time.Now().Format("20060102150405.000000000")

	t.Run("Save and Load", func(t *testing.T) {
		s := contractStrategy("contract-"+suffix, "owner-"+suffix)

		require.NoError(t, store.Save(ctx, s), "Save should not return error")

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, s.Graph, loaded.Graph)
		assert.Equal(t, s.Workflow, loaded.Workflow)
		assert.Equal(t, s.Owner, loaded.Owner)
		assert.Equal(t, s.Frequency, loaded.Frequency)
		assert.True(t, s.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+suffix)
		assert.ErrorIs(t, err, domain.ErrStrategyNotFound)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		s := contractStrategy("replace-"+suffix, "owner-"+suffix)
		require.NoError(t, store.Save(ctx, s))

		s.Graph.Nodes = s.Graph.Nodes[1:]
		s.Graph.Edges = nil
		s.Workflow = [][]string{{"Buy AAPL 10"}}
		require.NoError(t, store.Save(ctx, s))

		loaded, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Graph.Nodes, 1)
		assert.Empty(t, loaded.Graph.Edges)
		assert.Equal(t, [][]string{{"Buy AAPL 10"}}, loaded.Workflow)
	})

	t.Run("ListByOwner", func(t *testing.T) {
		owner := "lister-" + suffix
		a := contractStrategy("list-a-"+suffix, owner)
		b := contractStrategy("list-b-"+suffix, owner)
		b.CreatedAt = a.CreatedAt.Add(time.Minute)
		other := contractStrategy("list-c-"+suffix, "someone-else-"+suffix)
		for _, s := range []*domain.Strategy{b, a, other} {
			require.NoError(t, store.Save(ctx, s))
		}
		defer func() {
			_ = store.Delete(ctx, a.ID)
			_ = store.Delete(ctx, b.ID)
			_ = store.Delete(ctx, other.ID)
		}()

		list, err := store.ListByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, a.ID, list[0].ID)
		assert.Equal(t, b.ID, list[1].ID)

		// Moving a strategy to another owner removes it from the first listing.
		b.Owner = other.Owner
		require.NoError(t, store.Save(ctx, b))
		list, err = store.ListByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a.ID, list[0].ID)

		empty, err := store.ListByOwner(ctx, "nobody-"+suffix)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("Delete", func(t *testing.T) {
		s := contractStrategy("delete-"+suffix, "owner-"+suffix)
		require.NoError(t, store.Save(ctx, s))

		require.NoError(t, store.Delete(ctx, s.ID), "Delete should not return error")

		_, err := store.Load(ctx, s.ID)
		assert.ErrorIs(t, err, domain.ErrStrategyNotFound, "Load after Delete should return ErrStrategyNotFound")

		list, err := store.ListByOwner(ctx, s.Owner)
		require.NoError(t, err)
		for _, item := range list {
			assert.NotEqual(t, s.ID, item.ID)
		}

		assert.NoError(t, store.Delete(ctx, s.ID), "Deleting twice should not fail")
	})
}
