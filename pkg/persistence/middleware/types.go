// Package middleware decorates a ports.StrategyStore with cross-cutting behavior.
package middleware

import "github.com/aretw0/magnetrade/pkg/ports"

// Middleware allows wrapping a StrategyStore to add behavior.
type Middleware func(ports.StrategyStore) ports.StrategyStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.StrategyStore, mws ...Middleware) ports.StrategyStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
