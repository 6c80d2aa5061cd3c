package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/aretw0/magnetrade/pkg/ports"
)

type instrumentMiddleware struct {
	next    ports.StrategyStore
	logger  *slog.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewInstrumentMiddleware records the duration and outcome of every store call.
// Failures are logged at error level, the rest at debug. Either argument may be nil.
func NewInstrumentMiddleware(logger *slog.Logger, metrics *observability.Metrics) Middleware {
	if logger == nil {
		logger = logging.NewNop()
	}
	return func(next ports.StrategyStore) ports.StrategyStore {
		return &instrumentMiddleware{
			next:    next,
			logger:  logger,
			metrics: metrics,
			now:     time.Now,
		}
	}
}

func (m *instrumentMiddleware) observe(op string, start time.Time, err error, attrs ...any) {
	d := m.now().Sub(start)
	m.metrics.ObserveStoreOperation(op, d, err)

	attrs = append(attrs, "op", op, "duration", d)
	switch {
	case err == nil, errors.Is(err, domain.ErrStrategyNotFound):
		m.logger.Debug("store operation", attrs...)
	default:
		m.logger.Error("store operation failed", append(attrs, "err", err)...)
	}
}

func (m *instrumentMiddleware) Save(ctx context.Context, strategy *domain.Strategy) error {
	start := m.now()
	err := m.next.Save(ctx, strategy)
	m.observe("save", start, err, "strategy_id", strategy.ID, "owner", strategy.Owner)
	return err
}

func (m *instrumentMiddleware) Load(ctx context.Context, id string) (*domain.Strategy, error) {
	start := m.now()
	s, err := m.next.Load(ctx, id)
	m.observe("load", start, err, "strategy_id", id)
	return s, err
}

func (m *instrumentMiddleware) ListByOwner(ctx context.Context, owner string) ([]*domain.Strategy, error) {
	start := m.now()
	list, err := m.next.ListByOwner(ctx, owner)
	m.observe("list", start, err, "owner", owner, "count", len(list))
	return list, err
}

func (m *instrumentMiddleware) Delete(ctx context.Context, id string) error {
	start := m.now()
	err := m.next.Delete(ctx, id)
	m.observe("delete", start, err, "strategy_id", id)
	return err
}
