// Package detailcache memoizes detail fetches for the lifetime of one view.
//
// Entries are never evicted and never invalidated individually; a fresh
// successful fetch is the only thing that overwrites one. Dispose drops the
// whole cache when the owning view goes away.
package detailcache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the record for key.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Option configures a Cache.
type Option func(*options)

type options struct {
	singleFlight bool
}

// WithSingleFlight collapses concurrent misses on the same key into one fetch.
func WithSingleFlight() Option {
	return func(o *options) { o.singleFlight = true }
}

// Cache is a per-view detail cache.
type Cache[K comparable, V any] struct {
	fetch   FetchFunc[K, V]
	mu      sync.RWMutex
	entries map[K]V
	// gen counts Dispose calls; a fetch started before one is not stored.
	gen   uint64
	group *singleflight.Group
}

// New creates a Cache that loads misses with fetch.
func New[K comparable, V any](fetch FetchFunc[K, V], opts ...Option) *Cache[K, V] {
	if fetch == nil {
		panic("detailcache.New: fetch must not be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &Cache[K, V]{fetch: fetch, entries: make(map[K]V)}
	if o.singleFlight {
		c.group = &singleflight.Group{}
	}
	return c
}

// GetOrFetch returns the cached record for key, fetching it on a miss.
// Failed fetches are not cached.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K) (V, error) {
	c.mu.RLock()
	v, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	if c.group == nil {
		return c.load(ctx, key)
	}
	res, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		return c.load(ctx, key)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *Cache[K, V]) load(ctx context.Context, key K) (V, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	v, err := c.fetch(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.entries[key] = v
	}
	c.mu.Unlock()
	return v, nil
}

// Peek returns the cached record for key without fetching.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Len returns the number of cached records.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Dispose drops every entry. Fetches still in flight return their result to
// the caller but are not cached. The cache stays usable.
func (c *Cache[K, V]) Dispose() {
	c.mu.Lock()
	c.gen++
	c.entries = make(map[K]V)
	c.mu.Unlock()
}
