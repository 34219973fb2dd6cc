package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petrunin/cachefront/eviction/lfu"
	"github.com/petrunin/cachefront/eviction/lru"
	"github.com/petrunin/cachefront/eviction/none"
	"github.com/stretchr/testify/require"
)

// fakeClock lets the expiry scenario advance time deterministically
// instead of sleeping in the test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{now: time.Unix(0, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func singleShardConfig(name string, maxSize uint64, policy EvictionPolicy) Configuration {
	return Configuration{
		Name:             name,
		MaxSize:          maxSize,
		EvictionPolicy:   policy,
		ConcurrencyLevel: 1,
	}
}

func TestCache_LRUEvictionUnderPressure(t *testing.T) {
	cfg := singleShardConfig("lru-pressure", 3, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	var evicted []string
	c.AddListener(func(ev Event[string, int]) {
		if ev.Type == EventEvict {
			evicted = append(evicted, ev.Key)
		}
	})

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "A", 1))
	require.NoError(t, c.Put(ctx, "B", 2))
	require.NoError(t, c.Put(ctx, "C", 3))
	_, hit, err := c.Get(ctx, "A")
	require.NoError(t, err)
	require.True(t, hit)
	require.NoError(t, c.Put(ctx, "D", 4))

	require.Equal(t, []string{"B"}, evicted)
	m, err := c.AsMap(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"A": 1, "C": 3, "D": 4}, m)

	stats := c.GetStats()
	require.Equal(t, uint64(1), stats.Evictions)
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(0), stats.Misses)
}

func TestCache_LFUEviction(t *testing.T) {
	cfg := singleShardConfig("lfu-pressure", 3, PolicyLFU)
	c, err := New[string, int](cfg, lfu.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	var evicted []string
	c.AddListener(func(ev Event[string, int]) {
		if ev.Type == EventEvict {
			evicted = append(evicted, ev.Key)
		}
	})

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "A", 1))
	require.NoError(t, c.Put(ctx, "B", 2))
	require.NoError(t, c.Put(ctx, "C", 3))
	c.Get(ctx, "A")
	c.Get(ctx, "A")
	c.Get(ctx, "B")
	require.NoError(t, c.Put(ctx, "D", 4))

	require.Equal(t, []string{"C"}, evicted)
}

func TestCache_ExpiryFiresRemoveAndMiss(t *testing.T) {
	clock := newFakeClock()
	cfg := singleShardConfig("ttl-expiry", 10, PolicyLRU)
	cfg.DefaultTTL = 100 * time.Millisecond
	raw, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	c := raw.(*instance[string, int])
	c.clock = clock
	defer c.Close()

	var removed []RemovalCause
	c.AddListener(func(ev Event[string, int]) {
		if ev.Type == EventRemove {
			removed = append(removed, ev.Cause)
		}
	})

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "K", 7))
	clock.Advance(150 * time.Millisecond)

	_, hit, err := c.Get(ctx, "K")
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, []RemovalCause{CauseExpired}, removed)
	require.Equal(t, uint64(1), c.GetStats().Misses)
}

func TestCache_AllowNullValuesFalseRejectsPut(t *testing.T) {
	cfg := singleShardConfig("no-null", 10, PolicyLRU)
	c, err := New[string, *int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	err = c.Put(context.Background(), "k", nil)
	require.ErrorIs(t, err, ErrInvalidValue)
	contains, err := c.ContainsKey(context.Background(), "k")
	require.NoError(t, err)
	require.False(t, contains)
}

func TestCache_PutIfAbsent(t *testing.T) {
	cfg := singleShardConfig("put-if-absent", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	prev, existed, err := c.PutIfAbsent(ctx, "k", 1)
	require.NoError(t, err)
	require.False(t, existed)
	require.Equal(t, 0, prev)

	prev, existed, err = c.PutIfAbsent(ctx, "k", 2)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, 1, prev)

	v, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestCache_GetWithLoaderSingleFlight(t *testing.T) {
	cfg := singleShardConfig("loader", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	var calls int64
	loader := func(ctx context.Context, key string) (int, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return 99, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetWithLoader(context.Background(), "K", loader)
			require.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	for _, v := range results {
		require.Equal(t, 99, v)
	}
	v, hit, err := c.Get(context.Background(), "K")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, 99, v)
	require.LessOrEqual(t, atomic.LoadInt64(&calls), int64(2))
}

func TestCache_GetWithLoaderMissRecordedOnce(t *testing.T) {
	cfg := singleShardConfig("loader-miss-stat", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	v, err := c.GetWithLoader(context.Background(), "K", func(ctx context.Context, key string) (int, error) {
		return 99, nil
	})
	require.NoError(t, err)
	require.Equal(t, 99, v)

	stats := c.GetStats()
	require.Equal(t, uint64(1), stats.Misses, "the outer Get and the singleflight re-check must not both record a miss")
	require.Equal(t, uint64(0), stats.Hits)
}

func TestCache_GetWithLoaderErrorNotCached(t *testing.T) {
	cfg := singleShardConfig("loader-err", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	boom := errors.New("boom")
	_, err = c.GetWithLoader(context.Background(), "K", func(ctx context.Context, key string) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	contains, err := c.ContainsKey(context.Background(), "K")
	require.NoError(t, err)
	require.False(t, contains)
}

func TestCache_RemoveTwiceSecondIsNoop(t *testing.T) {
	cfg := singleShardConfig("remove-twice", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "k", 1))
	_, existed, err := c.Remove(ctx, "k")
	require.NoError(t, err)
	require.True(t, existed)
	_, existed, err = c.Remove(ctx, "k")
	require.NoError(t, err)
	require.False(t, existed)
}

func TestCache_CloseTwiceIsNoop(t *testing.T) {
	cfg := singleShardConfig("close-twice", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestCache_ClosedCacheRejectsPut(t *testing.T) {
	cfg := singleShardConfig("closed-reject", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	err = c.Put(context.Background(), "k", 1)
	require.ErrorIs(t, err, ErrClosedCache)
}

func TestCache_ClosedCacheRejectsAllReadsAndWrites(t *testing.T) {
	cfg := singleShardConfig("closed-reject-all", 10, PolicyLRU)
	c, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), "k", 1))
	require.NoError(t, c.Close())

	ctx := context.Background()
	_, _, err = c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrClosedCache)

	_, _, err = c.Remove(ctx, "k")
	require.ErrorIs(t, err, ErrClosedCache)

	_, err = c.ContainsKey(ctx, "k")
	require.ErrorIs(t, err, ErrClosedCache)

	_, err = c.AsMap(ctx)
	require.ErrorIs(t, err, ErrClosedCache)

	require.ErrorIs(t, c.Clear(ctx), ErrClosedCache)
	require.ErrorIs(t, c.Evict(ctx, "k"), ErrClosedCache)
	require.ErrorIs(t, c.EvictAll(ctx, func(string, int) bool { return true }), ErrClosedCache)

	// GetStats, ResetStats and Size-family calls keep reporting the now-empty
	// state rather than erroring.
	require.Equal(t, 0, c.Size())
	require.True(t, c.IsEmpty())
	c.ResetStats()
}

func TestCache_AsyncPutThenGet(t *testing.T) {
	cfg := singleShardConfig("async", 10, PolicyLRU)
	raw, err := New[string, int](cfg, lru.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	c := raw.(*instance[string, int])
	defer c.Close()

	fut := c.PutAsync(context.Background(), "k", 5)
	_, err = fut.Wait(context.Background())
	require.NoError(t, err)

	gfut := c.GetAsync(context.Background(), "k")
	v, err := gfut.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

func TestCache_NonePolicyRejectsOnceFull(t *testing.T) {
	cfg := singleShardConfig("none-policy", 2, PolicyNone)
	c, err := New[string, int](cfg, none.New[string](), NoopMetrics{}, nil)
	require.NoError(t, err)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, "A", 1))
	require.NoError(t, c.Put(ctx, "B", 2))
	require.NoError(t, c.Put(ctx, "C", 3))

	require.Equal(t, 2, c.Size())
	contains, err := c.ContainsKey(ctx, "C")
	require.NoError(t, err)
	require.False(t, contains)
}
