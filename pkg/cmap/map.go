package cmap

import (
	"cmp"
	"hash/maphash"
	"slices"
	"sync"
)

// DefaultShardCount is used when New is given a count that is not a
// positive power of two.
const DefaultShardCount = 16

// Map is a sharded map. Single-key operations lock exactly one shard and
// are atomic for that key.
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	mask   uint64
	seed   maphash.Seed
}

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New creates a map with DefaultShardCount shards.
func New[K comparable, V any]() *Map[K, V] {
	return NewWithShards[K, V](DefaultShardCount)
}

// NewWithShards creates a map with n shards.
func NewWithShards[K comparable, V any](n int) *Map[K, V] {
	if n <= 0 || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	m := &Map[K, V]{
		shards: make([]*shard[K, V], n),
		mask:   uint64(n - 1),
		seed:   maphash.MakeSeed(),
	}
	for i := range m.shards {
		m.shards[i] = &shard[K, V]{items: make(map[K]V)}
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	return m.shards[maphash.Comparable(m.seed, key)&m.mask]
}

// write runs fn with the key's shard locked for writing.
func (m *Map[K, V]) write(key K, fn func(items map[K]V)) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.items)
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Has reports whether key is stored.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// SetIfAbsent stores value unless key exists. It reports whether it
// stored.
func (m *Map[K, V]) SetIfAbsent(key K, value V) (stored bool) {
	m.write(key, func(items map[K]V) {
		if _, ok := items[key]; !ok {
			items[key] = value
			stored = true
		}
	})
	return stored
}

// SetIfPresent replaces the value of an existing key. It reports whether
// it stored.
func (m *Map[K, V]) SetIfPresent(key K, value V) (stored bool) {
	m.write(key, func(items map[K]V) {
		if _, ok := items[key]; ok {
			items[key] = value
			stored = true
		}
	})
	return stored
}

// Swap stores value and returns the previous one. loaded reports whether
// key was present.
func (m *Map[K, V]) Swap(key K, value V) (previous V, loaded bool) {
	m.write(key, func(items map[K]V) {
		previous, loaded = items[key]
		items[key] = value
	})
	return previous, loaded
}

// Count returns the number of entries.
func (m *Map[K, V]) Count() int {
	n := 0
	for _, s := range m.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Clear removes every entry.
func (m *Map[K, V]) Clear() {
	for _, s := range m.shards {
		s.mu.Lock()
		clear(s.items)
		s.mu.Unlock()
	}
}

// Range calls fn for each entry until it returns false. Shards are
// visited one at a time, so the view is not a snapshot.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, s := range m.shards {
		if !s.each(fn) {
			return
		}
	}
}

func (s *shard[K, V]) each(fn func(K, V) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, v := range s.items {
		if !fn(k, v) {
			return false
		}
	}
	return true
}

// SortedKeys returns the keys accepted by keep in ascending order. A nil
// keep accepts every key.
func SortedKeys[K cmp.Ordered, V any](m *Map[K, V], keep func(K) bool) []K {
	var keys []K
	m.Range(func(key K, _ V) bool {
		if keep == nil || keep(key) {
			keys = append(keys, key)
		}
		return true
	})
	slices.Sort(keys)
	return keys
}
