package baseapi

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(10, time.Second)

	if rl == nil {
		t.Fatal("NewRateLimiter() returned nil")
	}

	if rl.maxTokens != 10 {
		t.Errorf("Expected maxTokens=10, got %d", rl.maxTokens)
	}

	if rl.tokens != 10 {
		t.Errorf("Expected initial tokens=10, got %d", rl.tokens)
	}

	if rl.refillRate != time.Second {
		t.Errorf("Expected refillRate=1s, got %v", rl.refillRate)
	}

	if rl.lastRefill == 0 {
		t.Error("Expected lastRefill to be initialized")
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		if !rl.Allow() {
			t.Errorf("Expected request %d to be allowed", i+1)
		}
	}

	if rl.Allow() {
		t.Error("Expected request beyond capacity to be denied")
	}
}

func TestRateLimiterTokens(t *testing.T) {
	rl := NewRateLimiter(3, time.Hour)

	if got := rl.Tokens(); got != 3 {
		t.Errorf("Expected 3 tokens, got %d", got)
	}

	rl.Allow()

	if got := rl.Tokens(); got != 2 {
		t.Errorf("Expected 2 tokens after one call, got %d", got)
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := NewRateLimiter(5, time.Hour)

	for i := 0; i < 5; i++ {
		rl.Allow()
	}
	if rl.Allow() {
		t.Fatal("Expected bucket to be empty")
	}

	// Backdate the refill clock instead of sleeping.
	atomic.StoreInt64(&rl.lastRefill, time.Now().Add(-150*time.Minute).UnixNano())

	if got := rl.Tokens(); got != 2 {
		t.Errorf("Expected 2 refilled tokens, got %d", got)
	}

	if !rl.Allow() || !rl.Allow() {
		t.Error("Expected both refilled tokens to be usable")
	}
	if rl.Allow() {
		t.Error("Expected bucket to be empty again")
	}
}

func TestRateLimiterRefillCapsAtMax(t *testing.T) {
	rl := NewRateLimiter(5, time.Hour)

	atomic.StoreInt64(&rl.lastRefill, time.Now().Add(-100*time.Hour).UnixNano())

	if got := rl.Tokens(); got != 5 {
		t.Errorf("Expected refill to cap at 5 tokens, got %d", got)
	}
}

func TestRateLimiterZeroRefillRate(t *testing.T) {
	rl := NewRateLimiter(1, 0)

	if !rl.Allow() {
		t.Error("Expected the initial token to be usable")
	}
	if rl.Allow() {
		t.Error("Expected no refill with zero rate")
	}
}

func TestRateLimiterConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(50, time.Hour)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow() {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed calls, got %d", allowed)
	}
}

func TestRateLimiterImplementsLimiter(t *testing.T) {
	var limiter Limiter = NewRateLimiter(1, time.Second)

	if !limiter.Allow() {
		t.Error("Expected first call through the interface to be allowed")
	}
}
