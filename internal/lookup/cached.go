package lookup

import (
	"context"
	"sync"
)

type cacheKey struct {
	kind, code string
}

type cacheEntry struct {
	value string
	ok    bool
}

// Cached memoizes Value results of the wrapped backend, including misses.
// Put clears the memo.
type Cached struct {
	next Backend

	mu    sync.Mutex
	cache map[cacheKey]cacheEntry
}

// NewCached wraps next.
func NewCached(next Backend) *Cached {
	return &Cached{next: next, cache: make(map[cacheKey]cacheEntry)}
}

// Value serves repeated lookups from the cache, including misses.
func (c *Cached) Value(ctx context.Context, kind, code string) (string, bool, error) {
	key := cacheKey{kind, code}
	c.mu.Lock()
	e, hit := c.cache[key]
	c.mu.Unlock()
	if hit {
		return e.value, e.ok, nil
	}

	v, ok, err := c.next.Value(ctx, kind, code)
	if err != nil {
		return "", false, err
	}
	c.mu.Lock()
	c.cache[key] = cacheEntry{value: v, ok: ok}
	c.mu.Unlock()
	return v, ok, nil
}

// IsValid delegates to the wrapped backend.
func (c *Cached) IsValid(ctx context.Context, code string) (bool, error) {
	return c.next.IsValid(ctx, code)
}

// Code delegates to the wrapped backend; reverse lookups are not cached.
func (c *Cached) Code(ctx context.Context, kind, value string) (string, bool, error) {
	return c.next.Code(ctx, kind, value)
}

// Put writes through and then empties the cache.
func (c *Cached) Put(ctx context.Context, entries []Entry) error {
	err := c.next.Put(ctx, entries)
	c.mu.Lock()
	clear(c.cache)
	c.mu.Unlock()
	return err
}

// Close closes the wrapped backend.
func (c *Cached) Close() error { return c.next.Close() }
