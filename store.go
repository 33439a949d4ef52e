package baseapi

import (
	"hash/fnv"
	"sync"
)

// Store is a sharded concurrent map, the container underneath InMemoryCache.
// It is generic over key and value so embedders can instantiate side stores
// of their own without re-implementing the sharding.
type Store[K comparable, V any] struct {
	shards    []*storeShard[K, V]
	numShards int
	hash      func(K) uint32
}

type storeShard[K comparable, V any] struct {
	mu    sync.RWMutex
	store map[K]V
}

// NewStore creates a store that distributes keys across shards by hash.
func NewStore[K comparable, V any](hash func(K) uint32) *Store[K, V] {
	numShards := 16
	shards := make([]*storeShard[K, V], numShards)
	for i := range shards {
		shards[i] = &storeShard[K, V]{
			store: make(map[K]V),
		}
	}
	return &Store[K, V]{
		shards:    shards,
		numShards: numShards,
		hash:      hash,
	}
}

// NewStringStore creates a store for string keys sharded by FNV-1a.
func NewStringStore[V any]() *Store[string, V] {
	return NewStore[string, V](func(key string) uint32 {
		hash := fnv.New32a()
		hash.Write([]byte(key))
		return hash.Sum32()
	})
}

func (s *Store[K, V]) getShard(key K) *storeShard[K, V] {
	return s.shards[s.hash(key)%uint32(s.numShards)]
}

// Get returns the value stored under key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	shard := s.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	value, exists := shard.store[key]
	return value, exists
}

// Set stores value under key, overwriting any previous entry.
func (s *Store[K, V]) Set(key K, value V) {
	shard := s.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.store[key] = value
}

// Delete removes key.
func (s *Store[K, V]) Delete(key K) {
	shard := s.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	delete(shard.store, key)
}

// Clear removes every entry.
func (s *Store[K, V]) Clear() {
	for _, shard := range s.shards {
		shard.mu.Lock()
		shard.store = make(map[K]V)
		shard.mu.Unlock()
	}
}

// Len reports the number of stored entries.
func (s *Store[K, V]) Len() int {
	total := 0
	for _, shard := range s.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}
