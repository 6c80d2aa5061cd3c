/*
Package ports defines the driven ports (interfaces) of the strategy service.

These interfaces decouple the pure compiler and editor from storage and from the
remote execution service.

# Key Interfaces

  - StrategyStore: persists strategies by ID and lists them by owner.
  - Evaluator: submits a compiled workflow and returns per-command results.
  - BalanceFetcher: reads the trading account balance and orders.
  - DistributedLocker: serializes writes to one strategy across replicas.
*/
package ports
