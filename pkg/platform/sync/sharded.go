// Package sync provides fine-grained locking primitives shared across the
// validation core.
package sync

import (
	"hash/fnv"
	"sync"
)

const shardCount = 64

// ShardedMutex serializes operations per resource key without a single
// global lock. Operations are distributed across a fixed set of shards
// based on a hash of the key, so two concurrent validations for the same
// (user, action) pair always contend on the same mutex while unrelated
// pairs almost never do.
type ShardedMutex struct {
	shards [shardCount]sync.Mutex
}

// NewShardedMutex creates a ShardedMutex.
func NewShardedMutex() *ShardedMutex {
	return &ShardedMutex{}
}

// Lock acquires the lock for the given key's shard.
func (m *ShardedMutex) Lock(key string) {
	m.shards[m.shardFor(key)].Lock()
}

// Unlock releases the lock for the given key's shard.
func (m *ShardedMutex) Unlock(key string) {
	m.shards[m.shardFor(key)].Unlock()
}

// WithLock runs fn while holding the lock for key.
func (m *ShardedMutex) WithLock(key string, fn func() error) error {
	m.Lock(key)
	defer m.Unlock(key)
	return fn()
}

// shardFor returns the shard index for the given key.
// Empty keys default to shard 0.
func (m *ShardedMutex) shardFor(key string) uint32 {
	if key == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}
