package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/emiliopalmerini/kpiboard/internal/domain"
)

// DefaultTTL is how long a fetched result stays valid.
const DefaultTTL = 600 * time.Second

type entry struct {
	value      *domain.FetchResult
	insertedAt time.Time
}

// Cache memoizes fetch results by query text for a fixed TTL.
// Entries are only invalidated when read after expiry; there is no other eviction.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	// sf coalesces concurrent misses for the same key into one load.
	sf singleflight.Group
}

// NewCache creates a cache. A nil clock means time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     now,
	}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key if it is still fresh.
func (c *Cache) Get(key string) (*domain.FetchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getLocked(key)
}

func (c *Cache) getLocked(key string) (*domain.FetchResult, bool) {
	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(ent.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return ent.value, true
}

// Put inserts or replaces the entry for key, stamped with the current time.
func (c *Cache) Put(key string, value *domain.FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

// GetOrLoad returns the fresh cached value for key, or calls load exactly once
// across all concurrent callers and caches its result. Failed loads are not
// cached. hit is false only for the caller whose load ran.
//
// The load runs detached from ctx cancellation, so a caller that gives up
// does not fail the others waiting on the same key. Such a caller gets
// ctx.Err() back while the load carries on and fills the cache.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(context.Context) (*domain.FetchResult, error)) (value *domain.FetchResult, hit bool, err error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}

	loaded := false
	ch := c.sf.DoChan(key, func() (any, error) {
		// A flight that finished between our miss and this call has
		// already stored a fresh value.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		res, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		loaded = true
		c.Put(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, false, r.Err
		}
		return r.Val.(*domain.FetchResult), !loaded, nil
	}
}

// Len returns the number of entries, fresh or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
