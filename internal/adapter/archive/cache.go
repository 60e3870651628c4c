package archive

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by unit.
// Only months that have ended are cached; the archive still grows for the
// current month.
type CachedFetcher struct {
	inner   domain.Fetcher
	cache   *lruCache
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a fetcher. A nil clock
// uses wall-clock time.
func NewCachedFetcher(inner domain.Fetcher, maxEntries int, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedFetcher) Fetch(ctx context.Context, unit domain.FetchUnit) (string, error) {
	if !unit.Closed(c.clock.Now()) {
		c.metrics.ArchiveCache.WithLabelValues("bypass").Inc()
		return c.inner.Fetch(ctx, unit)
	}

	key := unit.Key()
	if raw, ok := c.cache.get(key); ok {
		c.metrics.ArchiveCache.WithLabelValues("hit").Inc()
		return raw, nil
	}
	c.metrics.ArchiveCache.WithLabelValues("miss").Inc()

	raw, err := c.inner.Fetch(ctx, unit)
	if err != nil {
		return raw, err
	}
	// An empty month is not cached so it is retried upstream.
	if len(domain.ExtractReports(raw, unit.ReportType)) > 0 {
		c.cache.put(key, raw)
	}
	return raw, nil
}

// lruCache holds raw responses by unit key. The front of order is the most
// recently used entry.
type lruCache struct {
	maxEntries int

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type cached struct {
	key string
	raw string
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *lruCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cached).raw, true
}

func (c *lruCache) put(key, raw string) {
	if c.maxEntries <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*cached).raw = raw
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cached{key: key, raw: raw})

	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cached).key)
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
