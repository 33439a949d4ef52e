package baseapi

import (
	"sync/atomic"
	"time"
)

// RateLimiter is a token bucket that fails fast: Allow consumes a token or
// reports false immediately, it never waits. The client turns a refusal into
// a rate limit error before any request is sent; recovering (waiting,
// retrying) is the caller's business.
type RateLimiter struct {
	maxTokens  int64
	tokens     int64
	refillRate time.Duration
	lastRefill int64
}

// NewRateLimiter creates a bucket holding maxTokens, refilling one token per
// refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		maxTokens:  int64(maxTokens),
		tokens:     int64(maxTokens),
		refillRate: refillRate,
		lastRefill: time.Now().UnixNano(),
	}
}

// Allow checks if a request is allowed by the rate limiter
func (rl *RateLimiter) Allow() bool {
	rl.refillTokens()
	return rl.consumeToken()
}

// Tokens reports the currently available tokens, for gauges and tests.
func (rl *RateLimiter) Tokens() int {
	rl.refillTokens()
	return int(atomic.LoadInt64(&rl.tokens))
}

// refillTokens refills tokens based on elapsed time since last refill
func (rl *RateLimiter) refillTokens() {
	now := time.Now().UnixNano()

	for {
		currentTokens := atomic.LoadInt64(&rl.tokens)
		lastRefill := atomic.LoadInt64(&rl.lastRefill)

		elapsed := now - lastRefill
		tokensToAdd := int64(0)
		if rl.refillRate > 0 {
			tokensToAdd = elapsed / int64(rl.refillRate)
		}

		if tokensToAdd == 0 {
			break
		}

		newTokens := currentTokens + tokensToAdd
		if newTokens > rl.maxTokens {
			newTokens = rl.maxTokens
		}

		newLastRefill := lastRefill + (tokensToAdd * int64(rl.refillRate))

		// Try to update lastRefill first
		if !atomic.CompareAndSwapInt64(&rl.lastRefill, lastRefill, newLastRefill) {
			// If lastRefill changed, retry
			continue
		}

		atomic.StoreInt64(&rl.tokens, newTokens)
		break
	}
}

// consumeToken attempts to consume one token
func (rl *RateLimiter) consumeToken() bool {
	for {
		currentTokens := atomic.LoadInt64(&rl.tokens)
		if currentTokens <= 0 {
			return false
		}

		if atomic.CompareAndSwapInt64(&rl.tokens, currentTokens, currentTokens-1) {
			return true
		}
		// If CAS failed, retry
	}
}
