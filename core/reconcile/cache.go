package reconcile

import (
	"context"
	"sync"
	"time"

	"asset-reconciler/core/rules"

	"golang.org/x/sync/singleflight"
)

// BookLoader loads a rule book.
type BookLoader func(ctx context.Context) (*rules.Book, error)

type cachedBook struct {
	book  *rules.Book
	built time.Time
}

// BookCache holds parsed rule books keyed by their origin so repeated runs against the
// same workbook skip parsing. Concurrent misses for one key share a single load.
type BookCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]*cachedBook
	sf      singleflight.Group
	now     func() time.Time
}

// NewBookCache creates a cache. A zero ttl disables caching; concurrent loads are
// still collapsed.
func NewBookCache(ttl time.Duration) *BookCache {
	return &BookCache{ttl: ttl, entries: make(map[string]*cachedBook), now: time.Now}
}

func (c *BookCache) fresh(key string) (*rules.Book, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.built) > c.ttl {
		return nil, false
	}
	return e.book, true
}

// Get returns the cached book for key or loads it.
func (c *BookCache) Get(ctx context.Context, key string, load BookLoader) (*rules.Book, error) {
	if b, ok := c.fresh(key); ok {
		return b, nil
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have stored it while we waited
		if b, ok := c.fresh(key); ok {
			return b, nil
		}
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[key] = &cachedBook{book: b, built: c.now()}
			c.mu.Unlock()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rules.Book), nil
}

// Invalidate drops the entry for key.
func (c *BookCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of cached books.
func (c *BookCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
