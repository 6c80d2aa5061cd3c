package ports

import (
	"context"

	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
)

// Evaluator submits compiled workflows to the execution service.
type Evaluator interface {
	// Evaluate sends the workflow and returns the results keyed by command string.
	Evaluate(ctx context.Context, w compiler.Workflow) (compiler.Results, error)
}

// BalanceFetcher reads the account state from the execution service.
type BalanceFetcher interface {
	Balance(ctx context.Context) (*domain.Balance, error)
}

// ExecutionService is implemented by clients that offer both endpoints.
type ExecutionService interface {
	Evaluator
	BalanceFetcher
}
