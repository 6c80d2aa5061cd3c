package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to strategies stored in a ports.StrategyStore.
type Manager struct {
	store ports.StrategyStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator replaces the UUID generator used for new strategies.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// NewManager creates a Manager over store.
func NewManager(store ports.StrategyStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying strategy store.
func (m *Manager) Store() ports.StrategyStore {
	return m.store
}

// acquire gets or creates a lock entry and increments its reference count.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the lock for the strategy ID.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"strategy_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Save persists a copy of s and returns it with its ID and timestamps filled in.
// A strategy without ID gets a new one. Saving over an existing record keeps its CreatedAt.
func (m *Manager) Save(ctx context.Context, s *domain.Strategy) (*domain.Strategy, error) {
	out := s.Clone()
	if out.ID == "" {
		out.ID = m.newID()
	}
	if out.Frequency == "" {
		out.Frequency = domain.FrequencyNow
	}

	err := m.WithLock(ctx, out.ID, func(ctx context.Context) error {
		existing, err := m.store.Load(ctx, out.ID)
		switch {
		case err == nil:
			out.CreatedAt = existing.CreatedAt
		case errors.Is(err, domain.ErrStrategyNotFound):
			out.CreatedAt = m.now().UTC()
		default:
			return fmt.Errorf("failed to check strategy existence: %w", err)
		}
		out.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, out)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Debug("strategy saved", "strategy_id", out.ID, "owner", out.Owner)
	return out, nil
}

// Update loads the strategy, applies fn and saves the result under one lock.
// Nothing is written when fn returns an error.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.Strategy) error) (*domain.Strategy, error) {
	var out *domain.Strategy
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		s.ID = id
		s.UpdatedAt = m.now().UTC()
		if err := m.store.Save(ctx, s); err != nil {
			return err
		}
		out = s
		return nil
	})
	return out, err
}

// Load retrieves a strategy.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	return m.store.Load(ctx, id)
}

// ListByOwner delegates to the store.
func (m *Manager) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	return m.store.ListByOwner(ctx, owner)
}

// Delete removes the strategy.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}
