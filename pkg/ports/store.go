package ports

import (
	"context"

	"github.com/aretw0/magnetrade/pkg/domain"
)

// StrategyStore defines the interface for persisting strategy documents.
// Records are replaced wholesale on Save; they are never partially patched.
type StrategyStore interface {
	// Save creates or replaces the strategy with s.ID.
	Save(ctx context.Context, s *domain.Strategy) error

	// Load retrieves a strategy by ID.
	// Returns domain.ErrStrategyNotFound if the strategy does not exist.
	Load(ctx context.Context, id string) (*domain.Strategy, error)

	// ListByOwner returns the strategies of an owner, oldest first.
	ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error)

	// Delete removes a strategy. Deleting a missing strategy is not an error.
	Delete(ctx context.Context, id string) error
}
