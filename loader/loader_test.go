package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type item struct {
	ID    int
	Value string
}

func itemID(it item) int { return it.ID }

type fakeDelegate struct {
	mu        sync.Mutex
	findCalls int32

	byID map[int]item

	saveFn      func(it item, params string) (item, error)
	saveBatchFn func(items []item, params string) ([]item, error)
}

func newFakeDelegate() *fakeDelegate {
	return &fakeDelegate{byID: make(map[int]item)}
}

func (d *fakeDelegate) FindByID(ctx context.Context, id int) (item, bool, error) {
	atomic.AddInt32(&d.findCalls, 1)
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.byID[id]
	return v, ok, nil
}

func (d *fakeDelegate) Save(ctx context.Context, it item, params string) (item, error) {
	if d.saveFn != nil {
		return d.saveFn(it, params)
	}
	d.mu.Lock()
	d.byID[it.ID] = it
	d.mu.Unlock()
	return it, nil
}

func (d *fakeDelegate) SaveBatch(ctx context.Context, items []item, params string) ([]item, error) {
	if d.saveBatchFn != nil {
		return d.saveBatchFn(items, params)
	}
	d.mu.Lock()
	for _, it := range items {
		d.byID[it.ID] = it
	}
	d.mu.Unlock()
	return items, nil
}

func (d *fakeDelegate) InitializeStorage(ctx context.Context) error { return nil }
func (d *fakeDelegate) HealthCheck(ctx context.Context) error       { return nil }
func (d *fakeDelegate) Shutdown(ctx context.Context) error          { return nil }

func (d *fakeDelegate) findCallCount() int32 {
	return atomic.LoadInt32(&d.findCalls)
}

func newTestLoader(t *testing.T, delegate Delegate[int, item, string]) *CachedLoader[int, item, string] {
	t.Helper()
	l, err := NewDefault[int, item, string]("orders", 100, delegate, itemID, zap.NewNop())
	require.NoError(t, err)
	return l
}

func TestCachedLoader_NegativeCache(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	_, found, err := l.FindByID(ctx, 7)
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = l.FindByID(ctx, 7)
	require.NoError(t, err)
	require.False(t, found)

	require.EqualValues(t, 1, delegate.findCallCount())

	key := l.keygen.ByID(7)
	negHas, err := l.negative.ContainsKey(ctx, key)
	require.NoError(t, err)
	require.True(t, negHas)
	posHas, err := l.positive.ContainsKey(ctx, key)
	require.NoError(t, err)
	require.False(t, posHas)
}

func TestCachedLoader_WriteThroughAfterSave(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	saved, err := l.Save(ctx, item{ID: 42, Value: "widget"}, "")
	require.NoError(t, err)
	require.Equal(t, 42, saved.ID)

	found, ok, err := l.FindByID(ctx, 42)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "widget", found.Value)
	require.EqualValues(t, 0, delegate.findCallCount())

	key := l.keygen.ByID(42)
	negHas, err := l.negative.ContainsKey(ctx, key)
	require.NoError(t, err)
	require.False(t, negHas)
}

func TestCachedLoader_SaveClearsExistingNegativeEntry(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	_, found, err := l.FindByID(ctx, 9)
	require.NoError(t, err)
	require.False(t, found)

	key := l.keygen.ByID(9)
	negHas, err := l.negative.ContainsKey(ctx, key)
	require.NoError(t, err)
	require.True(t, negHas)

	_, err = l.Save(ctx, item{ID: 9, Value: "later"}, "")
	require.NoError(t, err)
	negHas, err = l.negative.ContainsKey(ctx, key)
	require.NoError(t, err)
	require.False(t, negHas)

	found2, ok, err := l.FindByID(ctx, 9)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "later", found2.Value)
}

func TestCachedLoader_ConcurrentFindByIDConsistentState(t *testing.T) {
	delegate := newFakeDelegate()
	delegate.byID[5] = item{ID: 5, Value: "concurrent"}

	l := newTestLoader(t, delegate)
	ctx := context.Background()

	const n = 8
	results := make([]item, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			v, ok, err := l.FindByID(ctx, 5)
			require.NoError(t, err)
			require.True(t, ok)
			results[i] = v
		}()
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, "concurrent", r.Value)
	}

	v, ok, err := l.positive.Get(ctx, l.keygen.ByID(5))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "concurrent", v.Value)
}

func TestCachedLoader_SaveBatchPublishesEveryItem(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	items := []item{{ID: 1, Value: "a"}, {ID: 2, Value: "b"}, {ID: 3, Value: "c"}}
	saved, err := l.SaveBatch(ctx, items, "", BatchOptions{Timeout: 2 * time.Second})
	require.NoError(t, err)
	require.Len(t, saved, 3)

	for _, it := range items {
		v, ok, err := l.positive.Get(ctx, l.keygen.ByID(it.ID))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, it.Value, v.Value)
	}
}

func TestCachedLoader_HealthCheckProbesCache(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	require.NoError(t, l.HealthCheck(context.Background()))
}

func TestCachedLoader_GetDebugInfo(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	_, _, _ = l.FindByID(ctx, 1)
	info := l.GetDebugInfo()
	require.Equal(t, "orders", info.Name)
	require.True(t, info.NegativeEnabled)
	require.True(t, info.Healthy)
}

func TestCachedLoader_EvictAndPreload(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	require.NoError(t, l.PreloadIntoCache(item{ID: 11, Value: "preloaded"}, ""))
	v, ok, err := l.FindByID(ctx, 11)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "preloaded", v.Value)
	require.EqualValues(t, 0, delegate.findCallCount())

	l.EvictFromCache(11)
	posHas, err := l.positive.ContainsKey(ctx, l.keygen.ByID(11))
	require.NoError(t, err)
	require.False(t, posHas)
}

func TestCachedLoader_GetCacheStatistics(t *testing.T) {
	delegate := newFakeDelegate()
	l := newTestLoader(t, delegate)
	ctx := context.Background()

	_, _, _ = l.FindByID(ctx, 1)
	_, _, _ = l.FindByID(ctx, 1)

	stats := l.GetCacheStatistics()
	require.GreaterOrEqual(t, stats.Negative.Hits+stats.Negative.Misses, uint64(0))
}
