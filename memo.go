package baseapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// CallKey identifies one memoizable call: the method name, the positional
// arguments, and the names of any optional flags. Flag values are not part
// of the identity: two calls differing only in flag values share a cache
// slot, so flags should carry presentation hints, never anything that
// changes the result set. Argument order matters, flag order does not.
type CallKey struct {
	Method string
	Args   []any
	Flags  []string
}

// KeyFunc serializes a CallKey into the string the cache is keyed by.
type KeyFunc func(CallKey) string

// DefaultKeyFunc renders a CallKey as "method|arg|arg#flag,flag". Arguments
// are stringified in order; flags are sorted first since their order carries
// no meaning.
func DefaultKeyFunc(key CallKey) string {
	var b strings.Builder
	b.WriteString(key.Method)
	for _, arg := range key.Args {
		b.WriteByte('|')
		b.WriteString(formatValue(arg))
	}
	if len(key.Flags) > 0 {
		flags := make([]string, len(key.Flags))
		copy(flags, key.Flags)
		sort.Strings(flags)
		b.WriteByte('#')
		b.WriteString(strings.Join(flags, ","))
	}
	return b.String()
}

// HashKeyFunc hashes the default serialization to a fixed-width hex string.
// Useful when arguments are long or carry characters a remote store's key
// space dislikes.
func HashKeyFunc(key CallKey) string {
	sum := sha256.Sum256([]byte(DefaultKeyFunc(key)))
	return hex.EncodeToString(sum[:])
}

// Memoize routes a call through the client's cache. On success the result of
// fn is cached under key's serialization; later calls with the same key
// reuse it while it stays fresh under the TTL in effect at read time. Errors
// are never cached. With deduplication enabled, concurrent calls sharing a
// key collapse into one fn execution; without it each concurrent caller may
// invoke fn.
//
// The entry's timestamp is captured when Memoize begins, not when fn
// returns, so the result of a slow call ages from the call's start.
func Memoize[T any](ctx context.Context, c *Client, key CallKey, fn func() (T, error)) (T, error) {
	var zero T

	if c.validationError != nil {
		return zero, c.validationError
	}

	now := time.Now()
	k := c.keyFunc(key)
	policy := c.ttlPolicyNow()

	if entry, ok := c.memo.Get(ctx, k); ok && policy.Alive(entry.Age(now)) {
		if value, ok := entryValue[T](entry); ok {
			if c.metrics != nil {
				c.metrics.RecordCacheHit(key.Method)
			}
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
				c.logger.Debug("Cache hit", "method", key.Method, "cacheKey", k)
			}
			return value, nil
		}
	}

	if c.metrics != nil {
		c.metrics.RecordCacheMiss(key.Method)
	}
	if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
		c.logger.Debug("Cache miss", "method", key.Method, "cacheKey", k)
	}

	var value T
	var err error
	joined := false

	if c.dedup && c.group != nil {
		var shared any
		shared, err, joined = c.group.Do(k, func() (any, error) {
			return fn()
		})
		if err == nil {
			var ok bool
			if value, ok = shared.(T); !ok {
				// Two call sites share a key but disagree on the result
				// type; compute independently rather than corrupt either.
				value, err = fn()
				joined = false
			}
		}
		if joined {
			if c.metrics != nil {
				c.metrics.RecordDeduplicationHit(key.Method)
			}
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
				c.logger.Debug("Deduplication hit", "method", key.Method, "cacheKey", k)
			}
		}
	} else {
		value, err = fn()
	}

	if err != nil {
		return zero, err
	}

	// Joined callers skip the store: the execution's owner writes the entry.
	if !joined {
		c.memo.Set(ctx, k, Entry{Value: value, StoredAt: now})
		c.recordMemoSize()
		if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
			c.logger.Debug("Result cached", "method", key.Method, "cacheKey", k)
		}
	}

	return value, nil
}

// Forget drops the cached entry for one call signature.
func (c *Client) Forget(ctx context.Context, key CallKey) {
	c.memo.Delete(ctx, c.keyFunc(key))
}

// FlushCache drops every cached entry.
func (c *Client) FlushCache(ctx context.Context) {
	c.memo.Clear(ctx)
}

// ttlPolicyNow returns the policy governing one lookup: the configured
// policy if any, else a FixedTTL over the client's current TTL.
func (c *Client) ttlPolicyNow() TTLPolicy {
	if c.ttlPolicy != nil {
		return c.ttlPolicy
	}
	return FixedTTL(c.CacheTTL())
}

// entryValue recovers a typed value from a cache entry. In-memory entries
// hold the value as stored; remote stores hold json.RawMessage, which is
// decoded into T unless T is itself json.RawMessage.
func entryValue[T any](entry Entry) (T, bool) {
	var zero T
	if raw, ok := entry.Value.(json.RawMessage); ok {
		if _, keep := any(zero).(json.RawMessage); !keep {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return zero, false
			}
			return v, true
		}
	}
	if v, ok := entry.Value.(T); ok {
		return v, true
	}
	return zero, false
}

func (c *Client) recordMemoSize() {
	if c.metrics == nil {
		return
	}
	if counter, ok := c.memo.(interface{ Len() int }); ok {
		c.metrics.RecordCacheSize("memo", counter.Len())
	}
}
