package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.StrategyStore = (*Store)(nil)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "strategies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunStrategyStoreContract(t, openTemp(t))
}

func TestSQLiteStore_ColumnLayout(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &domain.Strategy{
		ID:        "row",
		Owner:     "alice",
		Workflow:  [][]string{{"Sell MSFT 5"}},
		Frequency: domain.FrequencyMinute,
	}))

	var uid, workflow, freq string
	err := s.db.QueryRow(`SELECT uid, ordered_workflow, frequency FROM strategies WHERE id = ?`, "row").
		Scan(&uid, &workflow, &freq)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
	assert.Equal(t, `[["Sell MSFT 5"]]`, workflow)
	assert.Equal(t, "1min", freq)

	loaded, err := s.Load(ctx, "row")
	require.NoError(t, err)
	assert.True(t, loaded.CreatedAt.IsZero())
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, &domain.Strategy{ID: "keep", Owner: "bob"}))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	loaded, err := second.Load(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "bob", loaded.Owner)
}
