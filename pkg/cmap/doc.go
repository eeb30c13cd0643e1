// Package cmap provides a concurrent map used by the in-memory token store.
//
// The map is split into a fixed number of shards, each guarded by its
// own RWMutex:
//
//   - Sharding: configurable power-of-two shard count
//   - Fine-grained locking: single-key operations lock one shard
//   - Atomic primitives: SetIfAbsent, SetIfPresent, Swap
//   - Iteration: Range and SortedKeys, shard by shard
//
// Usage:
//
//	m := cmap.New[string, uint32]()
//	_, loaded := m.Swap("ABC", 1)
//	keys := cmap.SortedKeys(m, nil)
//
// Iteration is not a consistent snapshot across shards.
package cmap
