package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/magnetrade/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "strategy-1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)
	assert.True(t, mr.Exists("test:lock:strategy-1"), "Lock key should be set in Redis")

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:strategy-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock1, err := first.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	ctxTimeout, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = second.Lock(ctxTimeout, "shared", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock1(ctx))

	unlock2, err := second.Lock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_ReleaseOnlyOwnLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "k", 5*time.Second)
	require.NoError(t, err)

	// Simulate expiry and takeover by another holder.
	mr.Set("test:lock:k", "someone-else")
	require.NoError(t, unlock(ctx))
	assert.True(t, mr.Exists("test:lock:k"))
}
