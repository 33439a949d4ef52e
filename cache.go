package baseapi

import (
	"context"
	"math"
	"time"
)

// TTLForever keeps cached entries live for the remaining process lifetime.
const TTLForever time.Duration = math.MaxInt64

// Entry is one memoized call result.
type Entry struct {
	Value    any       // decoded result; remote stores return json.RawMessage
	StoredAt time.Time // captured when the producing call began
}

// Age reports how long ago the entry was stored.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// Cache stores memoized call results keyed by serialized CallKeys.
// Implementations must be safe for concurrent use.
//
// Get reports bare presence: freshness is the TTL policy's decision, made by
// the memo layer at read time, so stores never judge staleness themselves.
// Stale entries are overwritten by the next successful call, never evicted
// by the memo layer.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, entry Entry)
	Delete(ctx context.Context, key string)
	Clear(ctx context.Context)
}

// TTLPolicy decides whether a cached entry of a given age is still live.
type TTLPolicy interface {
	Alive(age time.Duration) bool
}

// FixedTTL keeps entries for exactly its duration: an entry aged exactly the
// TTL is still fresh, one instant older is not. A non-positive duration
// keeps nothing, which disables reuse without disabling the cache.
type FixedTTL time.Duration

// Alive implements TTLPolicy.
func (t FixedTTL) Alive(age time.Duration) bool {
	return age <= time.Duration(t)
}

// InMemoryCache is the default Cache: a sharded, process-local store private
// to one client. The context is accepted for interface compatibility and
// ignored.
type InMemoryCache struct {
	store *Store[string, Entry]
}

// NewInMemoryCache creates an empty in-memory cache.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{store: NewStringStore[Entry]()}
}

// Get implements Cache.
func (c *InMemoryCache) Get(_ context.Context, key string) (Entry, bool) {
	return c.store.Get(key)
}

// Set implements Cache.
func (c *InMemoryCache) Set(_ context.Context, key string, entry Entry) {
	c.store.Set(key, entry)
}

// Delete implements Cache.
func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.store.Delete(key)
}

// Clear implements Cache.
func (c *InMemoryCache) Clear(_ context.Context) {
	c.store.Clear()
}

// Len reports the number of stored entries, live or stale.
func (c *InMemoryCache) Len() int {
	return c.store.Len()
}
