package baseapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisEnvelope is the stored representation of an Entry in Redis. The value
// is kept as raw JSON so readers with different target types can share it.
type redisEnvelope struct {
	Value    json.RawMessage `json:"v"`
	StoredAt int64           `json:"at"`
}

// RedisCache stores memoized entries in Redis so a fleet of processes can
// share them. Freshness still belongs to the client's TTL policy, judged at
// read time; the optional GC TTL only bounds how long Redis retains entries
// nobody reads anymore.
//
// Failures degrade to cache misses: a Redis outage slows callers down to
// network speed but never fails their calls.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	gcTTL  time.Duration
	logger Logger
}

// RedisOption configures a RedisCache.
type RedisOption func(*RedisCache)

// WithRedisPrefix overrides the default "baseapi:" key prefix.
func WithRedisPrefix(prefix string) RedisOption {
	return func(rc *RedisCache) {
		rc.prefix = prefix
	}
}

// WithRedisGCTTL bounds server-side retention. Zero, the default, keeps
// entries until overwritten or deleted.
func WithRedisGCTTL(ttl time.Duration) RedisOption {
	return func(rc *RedisCache) {
		rc.gcTTL = ttl
	}
}

// WithRedisLogger logs operations that degraded to misses.
func WithRedisLogger(logger Logger) RedisOption {
	return func(rc *RedisCache) {
		rc.logger = logger
	}
}

// NewRedisCache wraps an existing Redis client as a Cache. The client is
// shared, not owned: closing it remains the caller's job.
func NewRedisCache(client redis.UniversalClient, opts ...RedisOption) *RedisCache {
	rc := &RedisCache{
		client: client,
		prefix: "baseapi:",
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// redisKey hashes the cache key so arbitrary call signatures stay within
// Redis's key conventions.
func (rc *RedisCache) redisKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return rc.prefix + hex.EncodeToString(sum[:])
}

// Get implements Cache.
func (rc *RedisCache) Get(ctx context.Context, key string) (Entry, bool) {
	data, err := rc.client.Get(ctx, rc.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rc.degraded("redis get failed", key, err)
		}
		return Entry{}, false
	}

	var env redisEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		rc.degraded("redis entry undecodable", key, err)
		return Entry{}, false
	}

	return Entry{Value: env.Value, StoredAt: time.Unix(0, env.StoredAt)}, true
}

// Set implements Cache.
func (rc *RedisCache) Set(ctx context.Context, key string, entry Entry) {
	value, err := json.Marshal(entry.Value)
	if err != nil {
		rc.degraded("redis entry unencodable", key, err)
		return
	}

	data, err := json.Marshal(redisEnvelope{
		Value:    value,
		StoredAt: entry.StoredAt.UnixNano(),
	})
	if err != nil {
		rc.degraded("redis envelope unencodable", key, err)
		return
	}

	if err := rc.client.Set(ctx, rc.redisKey(key), data, rc.gcTTL).Err(); err != nil {
		rc.degraded("redis set failed", key, err)
	}
}

// Delete implements Cache.
func (rc *RedisCache) Delete(ctx context.Context, key string) {
	if err := rc.client.Del(ctx, rc.redisKey(key)).Err(); err != nil {
		rc.degraded("redis delete failed", key, err)
	}
}

// Clear implements Cache. It scans the prefix keyspace, so it is O(keys)
// and meant for tests and maintenance, not hot paths.
func (rc *RedisCache) Clear(ctx context.Context) {
	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 512 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				rc.degraded("redis clear failed", "", err)
				return
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		rc.degraded("redis scan failed", "", err)
		return
	}
	if len(keys) > 0 {
		if err := rc.client.Del(ctx, keys...).Err(); err != nil {
			rc.degraded("redis clear failed", "", err)
		}
	}
}

func (rc *RedisCache) degraded(msg, key string, err error) {
	if rc.logger == nil {
		return
	}
	rc.logger.Warn(msg, "key", key, "error", err.Error())
}
