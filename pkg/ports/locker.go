package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker coordinates writes to one strategy across service replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The returned UnlockFunc must be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
