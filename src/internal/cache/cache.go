// Package cache provides lookup.Cache implementations: an unbounded
// in-process map, a bounded LRU, a Redis-backed cache, and a no-op.
package cache

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/lookup"
)

// Stats reports cache effectiveness.
type Stats struct {
	Hits   int64
	Misses int64
}

type counters struct{ hits, misses atomic.Int64 }

func (c *counters) record(ok bool) {
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

func (c *counters) Stats() Stats { return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()} }

// Memory keeps every result for the life of the process. There is no eviction.
type Memory struct {
	counters
	mu sync.RWMutex
	m  map[lookup.Key][]bookmeta.BookRecord
}

// NewMemory returns an empty unbounded cache.
func NewMemory() *Memory { return &Memory{m: map[lookup.Key][]bookmeta.BookRecord{}} }

func (c *Memory) Get(_ context.Context, k lookup.Key) ([]bookmeta.BookRecord, bool) {
	c.mu.RLock()
	recs, ok := c.m[k]
	c.mu.RUnlock()
	c.record(ok)
	return slices.Clone(recs), ok
}

func (c *Memory) Put(_ context.Context, k lookup.Key, recs []bookmeta.BookRecord) {
	c.mu.Lock()
	c.m[k] = slices.Clone(recs)
	c.mu.Unlock()
}

// Len returns the number of cached calls.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// LRU keeps at most size results, evicting the least recently used.
type LRU struct {
	counters
	c *lru.Cache[lookup.Key, []bookmeta.BookRecord]
}

// NewLRU returns a bounded cache. size must be positive.
func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[lookup.Key, []bookmeta.BookRecord](size)
	if err != nil {
		return nil, err
	}
	return &LRU{c: c}, nil
}

func (c *LRU) Get(_ context.Context, k lookup.Key) ([]bookmeta.BookRecord, bool) {
	recs, ok := c.c.Get(k)
	c.record(ok)
	return slices.Clone(recs), ok
}

func (c *LRU) Put(_ context.Context, k lookup.Key, recs []bookmeta.BookRecord) {
	c.c.Add(k, slices.Clone(recs))
}

// Len returns the number of cached calls.
func (c *LRU) Len() int { return c.c.Len() }

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, lookup.Key) ([]bookmeta.BookRecord, bool) { return nil, false }
func (Nop) Put(context.Context, lookup.Key, []bookmeta.BookRecord)        {}
