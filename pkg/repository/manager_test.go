package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/magnetrade/pkg/adapters/memory"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowStore widens the read-modify-write window so unserialized saves would overlap.
type slowStore struct {
	*memory.Store
	active  atomic.Int32
	overlap atomic.Bool
}

func (s *slowStore) Save(ctx context.Context, st *domain.Strategy) error {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	defer s.active.Add(-1)
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, st)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked int
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	f.locked = append(f.locked, key)
	f.mu.Unlock()
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked++
		return nil
	}, nil
}

func fixedClock(ts ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := ts[i]
		if i < len(ts)-1 {
			i++
		}
		return t
	}
}

func TestManager_SaveAssignsIDAndTimestamps(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	m := NewManager(memory.NewStore(),
		WithIDGenerator(func() string { return "gen-1" }),
		WithClock(fixedClock(created, created, later, later)),
	)
	ctx := context.Background()

	in := &domain.Strategy{Owner: "alice"}
	saved, err := m.Save(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", saved.ID)
	assert.Empty(t, in.ID, "caller's strategy must not be mutated")
	assert.Equal(t, domain.FrequencyNow, saved.Frequency)
	assert.Equal(t, created, saved.CreatedAt)

	saved.Name = "renamed"
	again, err := m.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, created, again.CreatedAt, "CreatedAt survives resave")
	assert.Equal(t, later, again.UpdatedAt)

	loaded, err := m.Load(ctx, "gen-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", loaded.Name)
}

func TestManager_Locking(t *testing.T) {
	store := &slowStore{Store: memory.NewStore()}
	m := NewManager(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.Save(ctx, &domain.Strategy{ID: "race", Name: fmt.Sprint(i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.False(t, store.overlap.Load(), "saves to one strategy must be serialized")
}

func TestManager_LockLifecycle(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("strategy-%d", i)
		_, _ = m.Save(ctx, &domain.Strategy{ID: id})
		_ = m.Delete(ctx, id)
	}

	assert.Empty(t, m.locks, "lock entries must be released")
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	m := NewManager(memory.NewStore(), WithLocker(locker))
	ctx := context.Background()

	_, err := m.Save(ctx, &domain.Strategy{ID: "x"})
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "x"))

	assert.Equal(t, []string{"x", "x"}, locker.locked)
	assert.Equal(t, 2, locker.unlocked)
}

func TestManager_Update(t *testing.T) {
	m := NewManager(memory.NewStore())
	ctx := context.Background()

	saved, err := m.Save(ctx, &domain.Strategy{Owner: "alice", Name: "before"})
	require.NoError(t, err)

	updated, err := m.Update(ctx, saved.ID, func(s *domain.Strategy) error {
		s.Name = "after"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Name)

	boom := errors.New("boom")
	_, err = m.Update(ctx, saved.ID, func(s *domain.Strategy) error {
		s.Name = "discarded"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := m.Load(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", loaded.Name)

	_, err = m.Update(ctx, "missing", func(*domain.Strategy) error { return nil })
	assert.ErrorIs(t, err, domain.ErrStrategyNotFound)
}
