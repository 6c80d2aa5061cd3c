package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/magnetrade/pkg/adapters/memory"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStrategyStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	s := &domain.Strategy{
		ID:    "iso",
		Owner: "alice",
		Graph: domain.Graph{Nodes: []domain.Node{{ID: "1", Kind: domain.KindAction, Summary: "Buy AAPL 10"}}},
	}
	require.NoError(t, store.Save(ctx, s))

	s.Graph.Nodes[0].Summary = "mutated"
	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "Buy AAPL 10", loaded.Graph.Nodes[0].Summary)

	loaded.Graph.Nodes[0].Summary = "mutated again"
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "Buy AAPL 10", again.Graph.Nodes[0].Summary)
}

func TestMemoryStore_EmptyID(t *testing.T) {
	err := memory.NewStore().Save(context.Background(), &domain.Strategy{})
	assert.ErrorIs(t, err, domain.ErrEmptyID)
}
