// Package singleflight collapses concurrent calls with the same key into a
// single execution whose result every caller receives. The memoization layer
// uses it for opt-in request deduplication.
package singleflight

import (
	"sync"
	"time"
)

// Group manages a set of in-flight calls to prevent duplicate work.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

// call represents an active or completed function call.
type call struct {
	wg  sync.WaitGroup
	val any
	err error
}

// New creates a new singleflight Group.
func New() *Group {
	return &Group{
		m: make(map[string]*call),
	}
}

// Do executes and returns the results of the given function, making sure
// that only one execution is in-flight for a given key at a time. If a
// duplicate comes in, the duplicate caller waits for the original to
// complete and receives the same results. The joined result reports whether
// this caller received a result computed by an execution another caller
// started.
func (g *Group) Do(key string, fn func() (any, error)) (v any, err error, joined bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}

	c := &call{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	// Clean up the call from the map after a short delay to allow
	// for immediate duplicate detection while preventing memory leaks.
	go func() {
		time.Sleep(100 * time.Millisecond)
		g.mu.Lock()
		if g.m[key] == c {
			delete(g.m, key)
		}
		g.mu.Unlock()
	}()

	return c.val, c.err, false
}
