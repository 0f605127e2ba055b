package stats

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/backend/mock"
	"github.com/poiesic/juris/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	t.Run("nil aggregator", func(t *testing.T) {
		_, err := NewCache(nil)
		assert.Equal(t, ErrAggregatorRequired, err)
	})

	t.Run("invalid ttl", func(t *testing.T) {
		_, err := NewCache(mock.NewMockAggregator(), WithTTL(0))
		assert.Equal(t, ErrInvalidTTL, err)
	})
}

func TestCacheGet_ComputesOnceWhileFresh(t *testing.T) {
	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		return backend.Aggregate{Count: 42, ChildDistribution: map[string]int{"texas": 40, "ohio": 2}}, nil
	}

	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	ctx := context.Background()
	path := core.MustParsePath("united_states")

	entry, err := cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)
	assert.Equal(t, 42, entry.Count)
	assert.Equal(t, 40, entry.ChildDistribution["texas"])

	// Second access is served from cache.
	_, err = cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)
	assert.Equal(t, 1, aggregator.CallCount())
}

func TestCacheGet_RecomputesWhenStale(t *testing.T) {
	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		return backend.Aggregate{Count: 1}, nil
	}

	current := time.Now()
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	cache, err := NewCache(aggregator, WithTTL(time.Minute), withClock(clock))
	require.NoError(t, err)

	ctx := context.Background()
	path := core.MustParsePath("united_states/texas")

	_, err = cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)

	// Advance past the TTL; the stale entry stays resident until the next
	// access recomputes it.
	mu.Lock()
	current = current.Add(2 * time.Minute)
	mu.Unlock()
	assert.Equal(t, 1, cache.Len())

	_, err = cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)
	assert.Equal(t, 2, aggregator.CallCount())
}

func TestCacheGet_SingleFlight(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})

	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		calls.Add(1)
		<-release
		return backend.Aggregate{Count: 7}, nil
	}

	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	ctx := context.Background()
	path := core.MustParsePath("united_states/texas")

	const concurrency = 50
	var wg sync.WaitGroup
	errs := make([]error, concurrency)
	entries := make([]core.HierarchyStatsEntry, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entries[i], errs[i] = cache.Get(ctx, core.TaxonomyJurisdiction, path)
		}(i)
	}

	// Give every goroutine time to join the flight before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < concurrency; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 7, entries[i].Count)
	}
	assert.Equal(t, int32(1), calls.Load(), "exactly one recomputation for 50 concurrent gets")
}

func TestCacheGet_DistinctPathsDoNotBlock(t *testing.T) {
	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		return backend.Aggregate{Count: path.Depth()}, nil
	}

	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	ctx := context.Background()

	a, err := cache.Get(ctx, core.TaxonomyJurisdiction, core.MustParsePath("united_states"))
	require.NoError(t, err)
	b, err := cache.Get(ctx, core.TaxonomyJurisdiction, core.MustParsePath("united_states/texas"))
	require.NoError(t, err)

	assert.Equal(t, 1, a.Count)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, 2, aggregator.CallCount())
}

func TestCacheGet_CancelledCallerStillCommits(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		close(started)
		<-release
		// The aggregation context is detached from the requester.
		assert.NoError(t, ctx.Err())
		return backend.Aggregate{Count: 3}, nil
	}

	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	path := core.MustParsePath("united_states/texas")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, gerr := cache.Get(ctx, core.TaxonomyJurisdiction, path)
		done <- gerr
	}()

	<-started
	cancel()
	gerr := <-done
	assert.ErrorIs(t, gerr, context.Canceled)

	close(release)

	// The flight completes and commits despite the cancellation.
	assert.Eventually(t, func() bool {
		entry, err := cache.Get(context.Background(), core.TaxonomyJurisdiction, path)
		return err == nil && entry.Count == 3 && aggregator.CallCount() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCacheGet_AggregatorError(t *testing.T) {
	boom := errors.New("backend down")
	aggregator := mock.NewMockAggregator()
	aggregator.AggregateFunc = func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
		return backend.Aggregate{}, boom
	}

	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	_, err = cache.Get(context.Background(), core.TaxonomyJurisdiction, core.MustParsePath("united_states"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len(), "failed recomputation commits nothing")
}

func TestCacheInvalidate(t *testing.T) {
	aggregator := mock.NewMockAggregator()
	cache, err := NewCache(aggregator)
	require.NoError(t, err)

	ctx := context.Background()
	path := core.MustParsePath("united_states")

	_, err = cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	cache.Invalidate(core.TaxonomyJurisdiction, path)
	assert.Equal(t, 0, cache.Len())

	_, err = cache.Get(ctx, core.TaxonomyJurisdiction, path)
	require.NoError(t, err)
	assert.Equal(t, 2, aggregator.CallCount())
}
