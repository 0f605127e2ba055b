package stats

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
)

const defaultTTL = 5 * time.Minute

// Cache memoizes aggregate statistics per taxonomy path with TTL-based
// invalidation. Stale entries are recomputed lazily on the next access, never
// evicted proactively. Recomputation is serialized per path key: concurrent
// Gets for the same missing or stale path block behind a single aggregation
// call and share its result, while Gets for different paths never block each
// other.
type Cache struct {
	aggregator backend.StatsAggregator
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu      sync.RWMutex
	entries map[string]core.HierarchyStatsEntry
	group   singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache) error

// WithTTL sets the staleness window for cached entries.
// Default is 5 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// withClock overrides the time source. Test hook.
func withClock(now func() time.Time) Option {
	return func(c *Cache) error {
		c.now = now
		return nil
	}
}

// NewCache creates a stats cache over the given aggregation collaborator.
func NewCache(aggregator backend.StatsAggregator, opts ...Option) (*Cache, error) {
	if aggregator == nil {
		return nil, ErrAggregatorRequired
	}

	c := &Cache{
		aggregator: aggregator,
		ttl:        defaultTTL,
		logger:     slog.Default(),
		now:        time.Now,
		entries:    make(map[string]core.HierarchyStatsEntry),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Get returns the cached entry for the path, recomputing it synchronously
// when missing or stale. The recomputation itself is detached from the
// caller's context: cancelling a request does not invalidate cache work done
// on its behalf, and the entry is committed even if the requester has gone
// away. The cancelled caller still returns promptly with ctx.Err().
func (c *Cache) Get(ctx context.Context, taxonomy string, path core.HierarchyPath) (core.HierarchyStatsEntry, error) {
	key := taxonomy + "|" + path.String()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && !entry.Stale(c.now(), c.ttl) {
		return entry, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// Detached context: the computation outlives any single requester.
		agg, err := c.aggregator.AggregatePath(context.WithoutCancel(ctx), taxonomy, path)
		if err != nil {
			return nil, err
		}
		fresh := core.HierarchyStatsEntry{
			Count:             agg.Count,
			ChildDistribution: agg.ChildDistribution,
			ComputedAt:        c.now(),
		}
		c.mu.Lock()
		c.entries[key] = fresh
		c.mu.Unlock()
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return core.HierarchyStatsEntry{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.logger.Warn("stats recomputation failed", "taxonomy", taxonomy, "path", path.String(), "err", res.Err)
			return core.HierarchyStatsEntry{}, res.Err
		}
		return res.Val.(core.HierarchyStatsEntry), nil
	}
}

// Invalidate drops the cached entry for a path, forcing recomputation on the
// next Get. Used after bulk ingestion.
func (c *Cache) Invalidate(taxonomy string, path core.HierarchyPath) {
	key := taxonomy + "|" + path.String()
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of cached entries, stale or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
