package catalog

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL mirrors how long the storefront trusts a catalog read.
const DefaultCacheTTL = 5 * time.Minute

const reloadJob = "catalog_reload"

// ReloadObserver receives the outcome of every upstream catalog reload.
type ReloadObserver interface {
	Observe(job string, took time.Duration, err error)
}

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
	loaded    bool
}

func (e cacheEntry[T]) fresh(now time.Time) bool {
	return e.loaded && now.Before(e.expiresAt)
}

// CachedProvider memoises each collection of an upstream provider for a fixed TTL.
type CachedProvider struct {
	upstream Provider
	ttl      time.Duration
	observer ReloadObserver
	now      func() time.Time

	mu         sync.Mutex
	agents     cacheEntry[[]Agent]
	categories cacheEntry[[]Category]
	products   cacheEntry[[]Product]
}

type CacheOption func(*CachedProvider)

func WithReloadObserver(observer ReloadObserver) CacheOption {
	return func(c *CachedProvider) { c.observer = observer }
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedProvider) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCachedProvider(upstream Provider, ttl time.Duration, opts ...CacheOption) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &CachedProvider{
		upstream: upstream,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedProvider) Agents(ctx context.Context) ([]Agent, error) {
	return load(c, &c.agents, "agents", func() ([]Agent, error) { return c.upstream.Agents(ctx) })
}

func (c *CachedProvider) Categories(ctx context.Context) ([]Category, error) {
	return load(c, &c.categories, "categories", func() ([]Category, error) { return c.upstream.Categories(ctx) })
}

func (c *CachedProvider) Products(ctx context.Context) ([]Product, error) {
	return load(c, &c.products, "products", func() ([]Product, error) { return c.upstream.Products(ctx) })
}

// Invalidate drops every cached collection; the next read goes upstream.
func (c *CachedProvider) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agents = cacheEntry[[]Agent]{}
	c.categories = cacheEntry[[]Category]{}
	c.products = cacheEntry[[]Product]{}
}

// Refresh reloads every collection from upstream and swaps them in together. On failure
// the cached collections are left untouched.
func (c *CachedProvider) Refresh(ctx context.Context) (Snapshot, error) {
	started := time.Now()
	snap, err := LoadSnapshot(ctx, c.upstream)
	if c.observer != nil {
		c.observer.Observe(reloadJob+"_refresh", time.Since(started), err)
	}
	if err != nil {
		return Snapshot{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	expiresAt := c.now().Add(c.ttl)
	c.agents = cacheEntry[[]Agent]{value: snap.Agents, expiresAt: expiresAt, loaded: true}
	c.categories = cacheEntry[[]Category]{value: snap.Categories, expiresAt: expiresAt, loaded: true}
	c.products = cacheEntry[[]Product]{value: snap.Products, expiresAt: expiresAt, loaded: true}
	return snap, nil
}

func load[T any](c *CachedProvider, entry *cacheEntry[T], collection string, fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry.fresh(now) {
		return entry.value, nil
	}

	started := time.Now()
	value, err := fetch()
	if c.observer != nil {
		c.observer.Observe(reloadJob+"_"+collection, time.Since(started), err)
	}
	if err != nil {
		// Fall back to the last good load.
		if entry.loaded {
			return entry.value, nil
		}
		var zero T
		return zero, err
	}
	*entry = cacheEntry[T]{value: value, expiresAt: now.Add(c.ttl), loaded: true}
	return value, nil
}
