package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "magnetrade:"

// Store implements ports.StrategyStore using Redis.
//
// Each strategy document is a JSON string at <prefix>strategy:<id>.
// A sorted set per owner at <prefix>owner:<uid> indexes IDs by creation time.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets an expiration for strategy documents.
// Expired IDs are pruned from the owner index on the next listing.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to build a Locker on it.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(id string) string {
	return s.prefix + "strategy:" + id
}

func (s *Store) ownerKey(owner string) string {
	return s.prefix + "owner:" + owner
}

func (s *Store) get(ctx context.Context, id string) (*domain.Strategy, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrStrategyNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(val)
}

func decode(val string) (*domain.Strategy, error) {
	var doc domain.Document
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal strategy: %w", err)
	}
	return domain.FromDocument(doc)
}

// Save writes the document and moves the ID between owner indexes when the owner changed.
func (s *Store) Save(ctx context.Context, strategy *domain.Strategy) error {
	if strategy.ID == "" {
		return domain.ErrEmptyID
	}
	doc, err := strategy.ToDocument()
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal strategy: %w", err)
	}

	previous, err := s.get(ctx, strategy.ID)
	if err != nil && !errors.Is(err, domain.ErrStrategyNotFound) {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(strategy.ID), data, s.ttl)
	if previous != nil && previous.Owner != strategy.Owner {
		pipe.ZRem(ctx, s.ownerKey(previous.Owner), strategy.ID)
	}
	pipe.ZAdd(ctx, s.ownerKey(strategy.Owner), backend.Z{
		Score:  float64(strategy.CreatedAt.UnixMilli()),
		Member: strategy.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves a strategy from Redis.
func (s *Store) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	return s.get(ctx, id)
}

// ListByOwner reads the owner index and fetches the documents in one round trip.
// Index entries whose document has expired are removed lazily.
func (s *Store) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	ids, err := s.client.ZRange(ctx, s.ownerKey(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list strategies: %w", err)
	}
	list := make([]*domain.Strategy, 0, len(ids))
	if len(ids) == 0 {
		return list, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch strategies: %w", err)
	}

	var stale []any
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		strategy, err := decode(str)
		if err != nil {
			return nil, err
		}
		list = append(list, strategy)
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.ownerKey(owner), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune expired strategies: %w", err)
		}
	}
	domain.SortByCreation(list)
	return list, nil
}

// Delete removes the document and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	previous, err := s.get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrStrategyNotFound) {
			return nil
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.ownerKey(previous.Owner), id)
	_, err = pipe.Exec(ctx)
	return err
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
