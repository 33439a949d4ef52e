package baseapi

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// BenchmarkStoreGet measures shard lookup on a pre-populated store.
func BenchmarkStoreGet(b *testing.B) {
	store := NewStringStore[Entry]()
	entry := Entry{Value: "benchmark value", StoredAt: time.Now()}

	for i := 0; i < 1000; i++ {
		store.Set(fmt.Sprintf("key_%d", i), entry)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			store.Get(fmt.Sprintf("key_%d", i%1000))
			i++
		}
	})
}

// BenchmarkStoreMixedOperations measures the store under a 25% write,
// 75% read workload across all shards.
func BenchmarkStoreMixedOperations(b *testing.B) {
	store := NewStringStore[Entry]()
	entry := Entry{Value: "benchmark value", StoredAt: time.Now()}
	var counter int64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := atomic.AddInt64(&counter, 1)
			key := fmt.Sprintf("key_%d", i%100)

			if i%4 == 0 {
				store.Set(key, entry)
			} else {
				store.Get(key)
			}
		}
	})
}

// BenchmarkRateLimiterAllow measures the token bucket hot path under
// parallel load.
func BenchmarkRateLimiterAllow(b *testing.B) {
	rl := NewRateLimiter(1000, time.Second)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			rl.Allow()
		}
	})
}

// BenchmarkRateLimiterHighContention measures Allow with many more
// goroutines than cores fighting over one bucket.
func BenchmarkRateLimiterHighContention(b *testing.B) {
	rl := NewRateLimiter(10000, time.Second)
	numGoroutines := runtime.NumCPU() * 4

	var wg sync.WaitGroup
	operations := int64(b.N)

	b.ResetTimer()
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for atomic.AddInt64(&operations, -1) > 0 {
				rl.Allow()
			}
		}()
	}
	wg.Wait()
}

// BenchmarkCircuitBreakerAllow measures the closed-state hot path.
func BenchmarkCircuitBreakerAllow(b *testing.B) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	})

	b.Run("Sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			cb.Allow()
		}
	})

	b.Run("Parallel", func(b *testing.B) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				cb.Allow()
			}
		})
	})
}

// BenchmarkKeyFuncs measures call signature serialization.
func BenchmarkKeyFuncs(b *testing.B) {
	key := CallKey{
		Method: "Search",
		Args:   []any{"artists?genre=jazz&", 25, true},
		Flags:  []string{"include_bio", "include_images"},
	}

	b.Run("Default", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			DefaultKeyFunc(key)
		}
	})

	b.Run("Hash", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			HashKeyFunc(key)
		}
	})
}

// BenchmarkMemoizeHit measures a fully warmed memoized call.
func BenchmarkMemoizeHit(b *testing.B) {
	client := New("http://localhost/")
	ctx := context.Background()
	key := CallKey{Method: "Fetch", Args: []any{"q"}}
	fn := func() (string, error) {
		return "benchmark value", nil
	}

	if _, err := Memoize(ctx, client, key, fn); err != nil {
		b.Fatalf("Memoize() returned error: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := Memoize(ctx, client, key, fn); err != nil {
				b.Errorf("Memoize() returned error: %v", err)
			}
		}
	})
}

// BenchmarkParamsEncode measures query string rendering.
func BenchmarkParamsEncode(b *testing.B) {
	params := Params{
		{Key: "genre", Value: "jazz"},
		{Key: "limit", Value: 25},
		{Key: "offset", Value: 0},
		{Key: "verbose", Value: true},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		params.Encode()
	}
}
