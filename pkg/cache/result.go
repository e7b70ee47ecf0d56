package cache

import (
	"context"
	"sync"
	"time"
)

// ResultCache holds computed search results keyed by canonical request
// token. It is best-effort: a backend failure reads as a miss.
//
// A writer that computes a value from the database reads Generation before
// the query and passes it to Set. If a Purge happened in between, the value
// may predate the write that caused the purge and Set drops it.
type ResultCache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Generation(ctx context.Context) int64
	// Set stores value unless the cache was purged after gen was read.
	Set(ctx context.Context, gen int64, key string, value V)
	// Purge drops every entry, e.g. after a write that may change results.
	Purge(ctx context.Context)
	Close() error
}

// MemoryResultCache is the single-process ResultCache.
type MemoryResultCache[V any] struct {
	c *TTLCache[string, V]

	// mu orders Set against Purge so a stale Set cannot land after a purge.
	mu  sync.Mutex
	gen int64
}

func NewMemoryResultCache[V any](ttl time.Duration) *MemoryResultCache[V] {
	sweep := ttl
	if sweep < time.Second {
		sweep = time.Second
	}
	return &MemoryResultCache[V]{c: New[string, V](ttl, sweep)}
}

func (m *MemoryResultCache[V]) Get(_ context.Context, key string) (V, bool) {
	return m.c.Get(key)
}

func (m *MemoryResultCache[V]) Generation(context.Context) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

func (m *MemoryResultCache[V]) Set(_ context.Context, gen int64, key string, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	m.c.Set(key, value)
}

func (m *MemoryResultCache[V]) Purge(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.c.Clear()
}

func (m *MemoryResultCache[V]) Close() error {
	m.c.Close()
	return nil
}
