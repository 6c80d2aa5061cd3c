package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/magnetrade"
	"github.com/aretw0/magnetrade/internal/config"
	"github.com/aretw0/magnetrade/pkg/adapters/execsvc"
	"github.com/aretw0/magnetrade/pkg/adapters/file"
	"github.com/aretw0/magnetrade/pkg/adapters/memory"
	"github.com/aretw0/magnetrade/pkg/adapters/redis"
	"github.com/aretw0/magnetrade/pkg/adapters/sqlite"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/observability"
	"github.com/aretw0/magnetrade/pkg/persistence/middleware"
	"github.com/aretw0/magnetrade/pkg/ports"
	"github.com/aretw0/magnetrade/pkg/schema"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the configured strategy store and, for Redis, the distributed locker.
// The returned closer releases the backend connection.
func openStore(cfg config.StoreConfig) (ports.StrategyStore, ports.DistributedLocker, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil, nopCloser{}, nil
	case config.DriverFile:
		return file.New(cfg.Path), nil, nopCloser{}, nil
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		store, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store, nil
	case config.DriverRedis:
		rc := cfg.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		var locker ports.DistributedLocker
		if rc.Lock {
			locker = redis.NewLocker(store.Client(), rc.Prefix)
		}
		return store, locker, store, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// newStudio wires a Studio from configuration. Metrics may be nil.
func newStudio(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*magnetrade.Studio, io.Closer, error) {
	opts := []magnetrade.Option{
		magnetrade.WithLogger(logger),
		magnetrade.WithMetrics(metrics),
	}

	if cfg.Catalog != "" {
		catalog, err := schema.Load(cfg.Catalog)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, magnetrade.WithCatalog(catalog))
	}

	if cfg.CyclePolicy == "skip" {
		opts = append(opts, magnetrade.WithCyclePolicy(compiler.CycleSkip))
	}

	if cfg.Exec.URL != "" {
		client := execsvc.New(cfg.Exec.URL,
			execsvc.WithTimeout(cfg.Exec.Timeout),
			execsvc.WithLogger(logger),
		)
		opts = append(opts, magnetrade.WithExecutionService(client))
	}

	store, locker, closer, err := openStore(cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	store = middleware.Chain(store, middleware.NewInstrumentMiddleware(logger, metrics))
	opts = append(opts, magnetrade.WithStore(store))
	if locker != nil {
		opts = append(opts, magnetrade.WithLocker(locker))
	}

	logger.Debug("studio configured",
		"store", cfg.Store.Driver,
		"exec_url", cfg.Exec.URL,
		"cycle_policy", cfg.CyclePolicy,
	)
	return magnetrade.New(opts...), closer, nil
}

// offline returns a copy of cfg that touches neither a backing store nor the
// execution service. File commands only need the catalog and cycle policy.
func offline(cfg *config.Config) *config.Config {
	out := *cfg
	out.Store = config.StoreConfig{Driver: config.DriverMemory}
	out.Exec.URL = ""
	return &out
}
