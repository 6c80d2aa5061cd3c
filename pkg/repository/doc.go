/*
Package repository orchestrates strategy persistence.

Manager wraps a ports.StrategyStore and serializes writes per strategy ID, locally
with reference counted mutexes and, when configured, across replicas through a
ports.DistributedLocker. It owns the record metadata: IDs are assigned on first
save, CreatedAt survives every later save and UpdatedAt is stamped on each write.
*/
package repository
