package memory

import (
	"context"
	"sync"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// Store implements ports.StrategyStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Strategy
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Strategy),
	}
}

// Save persists a deep copy of the strategy.
func (s *Store) Save(ctx context.Context, strategy *domain.Strategy) error {
	if strategy.ID == "" {
		return domain.ErrEmptyID
	}
	copied := strategy.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[strategy.ID] = copied
	return nil
}

// Load retrieves a copy so callers can't mutate the stored strategy.
func (s *Store) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	strategy, ok := s.data[id]
	if !ok {
		return nil, domain.ErrStrategyNotFound
	}
	return strategy.Clone(), nil
}

// ListByOwner returns copies of the owner's strategies, oldest first.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Strategy, 0)
	for _, strategy := range s.data {
		if strategy.Owner == owner {
			list = append(list, strategy.Clone())
		}
	}
	domain.SortByCreation(list)
	return list, nil
}

// Delete removes the strategy.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}
