package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petrunin/cachefront/cache"
	"github.com/petrunin/cachefront/internal/logging"
	"github.com/petrunin/cachefront/keygen"
	"go.uber.org/zap"
)

// Default sizing for NewDefault's positive/negative caches: the negative
// cache is a tenth the size of the positive one with a shorter TTL, since
// it only needs to remember recent known-absent lookups.
const (
	defaultPositiveTTL  = 30 * time.Minute
	defaultNegativeTTL  = 5 * time.Minute
	negativeSizeDivisor = 10
)

// FindResult bundles FindByIDAsync's two success values for the Future
// handle, mirroring FindByID's (Item, bool) return pair.
type FindResult[Item any] struct {
	Value Item
	Found bool
}

// CacheStatistics aggregates the positive and negative cache's lifetime
// counters for GetCacheStatistics.
type CacheStatistics struct {
	Positive cache.Stats
	Negative cache.Stats
}

// CachedLoader adapts a Delegate to a cache-fronted contract: read-through
// with negative caching on the positive cache's misses, write-through on
// save, and a circuit breaker around every delegate call.
type CachedLoader[ID comparable, Item any, Params any] struct {
	name string
	cfg  cache.Configuration

	delegate Delegate[ID, Item, Params]
	idOf     func(Item) ID

	positive               cache.Cache[string, Item]
	negative               cache.Cache[string, struct{}]
	negativeCachingEnabled bool

	keygen   keygen.KeyGenerator
	breakers *breakers[Item]
	log      *zap.Logger
}

// New builds a CachedLoader from caller-supplied positive/negative
// caches. negative may be nil to disable negative caching entirely (every
// absent lookup then re-invokes the delegate). cfg is kept only for
// GetConfiguration's reporting surface; it does not configure positive or
// negative itself — callers already built those with whatever
// Configuration they need.
//
// idOf extracts the logical ID from a saved Item. The wrapper keys both
// the read path (find_by_id) and the write path (save/save_batch/preload)
// through key_gen.ByID(id), so a save under a given identity is always
// visible to a subsequent find_by_id under that same identity — idOf is
// what lets the write path recover that identity from the item the
// delegate handed back (which may carry a server-assigned ID the caller
// didn't have yet).
func New[ID comparable, Item any, Params any](
	cfg cache.Configuration,
	delegate Delegate[ID, Item, Params],
	idOf func(Item) ID,
	positive cache.Cache[string, Item],
	negative cache.Cache[string, struct{}],
	kg keygen.KeyGenerator,
	log *zap.Logger,
) *CachedLoader[ID, Item, Params] {
	if log == nil {
		log = logging.New()
	}
	if kg == nil {
		kg = keygen.Default{}
	}
	return &CachedLoader[ID, Item, Params]{
		name:                   cfg.Name,
		cfg:                    cfg,
		delegate:               delegate,
		idOf:                   idOf,
		positive:               positive,
		negative:               negative,
		negativeCachingEnabled: negative != nil,
		keygen:                 kg,
		breakers:               newBreakers[Item](cfg.Name, log),
		log:                    log,
	}
}

// NewDefault builds both the positive and negative cache with the
// library's default sizing/TTL policy (30 minutes positive, 10%-sized
// negative at 5 minutes) and wires them into a CachedLoader using the
// default KeyGenerator.
func NewDefault[ID comparable, Item any, Params any](
	name string,
	maxSize uint64,
	delegate Delegate[ID, Item, Params],
	idOf func(Item) ID,
	log *zap.Logger,
) (*CachedLoader[ID, Item, Params], error) {
	if log == nil {
		log = logging.New()
	}

	positiveCfg := cache.Configuration{
		Name:           name + ".positive",
		MaxSize:        maxSize,
		DefaultTTL:     defaultPositiveTTL,
		EvictionPolicy: cache.PolicyLRU,
	}
	negSize := maxSize / negativeSizeDivisor
	if negSize == 0 {
		negSize = 1
	}
	negativeCfg := cache.Configuration{
		Name:           name + ".negative",
		MaxSize:        negSize,
		DefaultTTL:     defaultNegativeTTL,
		EvictionPolicy: cache.PolicyLRU,
	}

	positive, err := cache.New[string, Item](positiveCfg, cache.FactoryForPolicy[string](positiveCfg.EvictionPolicy), cache.NoopMetrics{}, log)
	if err != nil {
		return nil, fmt.Errorf("loader %s: positive cache: %w", name, err)
	}
	negative, err := cache.New[string, struct{}](negativeCfg, cache.FactoryForPolicy[string](negativeCfg.EvictionPolicy), cache.NoopMetrics{}, log)
	if err != nil {
		return nil, fmt.Errorf("loader %s: negative cache: %w", name, err)
	}

	wrapperCfg := cache.Configuration{Name: name, MaxSize: maxSize, DefaultTTL: defaultPositiveTTL}
	return New[ID, Item, Params](wrapperCfg, delegate, idOf, positive, negative, keygen.Default{}, log), nil
}

// FindByID returns the cached value for id, consulting the positive cache,
// then the negative cache, then the delegate (through a circuit breaker)
// in that order. found=false with a nil error covers both "known absent"
// (negative cache hit or a delegate miss) and a zero-value id.
func (l *CachedLoader[ID, Item, Params]) FindByID(ctx context.Context, id ID) (Item, bool, error) {
	var zero Item
	var zeroID ID
	if id == zeroID {
		return zero, false, nil
	}

	key := l.keygen.ByID(id)

	if v, ok, err := l.positive.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}
	if l.negativeCachingEnabled {
		if known, err := l.negative.ContainsKey(ctx, key); err == nil && known {
			return zero, false, nil
		}
	}

	res, err := l.breakers.findByID.Execute(func() (findByIDResult[Item], error) {
		v, found, derr := l.delegate.FindByID(ctx, id)
		if derr != nil {
			return findByIDResult[Item]{}, derr
		}
		return findByIDResult[Item]{Value: v, Found: found}, nil
	})
	if err != nil {
		return zero, false, fmt.Errorf("%w: %v", ErrLoaderFailure, err)
	}

	if res.Found {
		if perr := l.positive.Put(ctx, key, res.Value); perr != nil {
			l.log.Warn("loader.cache_put_failed", zap.String("key", key), zap.Error(perr))
		}
		return res.Value, true, nil
	}
	if l.negativeCachingEnabled {
		if perr := l.negative.Put(ctx, key, struct{}{}); perr != nil {
			l.log.Warn("loader.negative_cache_put_failed", zap.String("key", key), zap.Error(perr))
		}
	}
	return zero, false, nil
}

// FindByIDAsync schedules FindByID on its own goroutine and returns a
// Future handle, mirroring the cache's own *Async methods.
func (l *CachedLoader[ID, Item, Params]) FindByIDAsync(ctx context.Context, id ID) *cache.Future[FindResult[Item]] {
	fut := cache.NewFuture[FindResult[Item]]()
	go func() {
		v, found, err := l.FindByID(ctx, id)
		fut.Complete(FindResult[Item]{Value: v, Found: found}, err)
	}()
	return fut
}

// Save writes item through the delegate (breaker-guarded), then publishes
// the saved form to the positive cache and clears any negative-cache entry
// for the same key.
func (l *CachedLoader[ID, Item, Params]) Save(ctx context.Context, item Item, params Params) (Item, error) {
	saved, err := l.breakers.save.Execute(func() (Item, error) {
		return l.delegate.Save(ctx, item, params)
	})
	if err != nil {
		var zero Item
		return zero, fmt.Errorf("%w: %v", ErrLoaderFailure, err)
	}

	key := l.keygen.ByID(l.idOf(saved))
	if perr := l.positive.Put(ctx, key, saved); perr != nil {
		l.log.Warn("loader.cache_put_failed", zap.String("key", key), zap.Error(perr))
	}
	if l.negativeCachingEnabled {
		l.negative.Remove(ctx, key)
	}
	return saved, nil
}

// SaveAsync schedules Save on its own goroutine and returns a Future.
func (l *CachedLoader[ID, Item, Params]) SaveAsync(ctx context.Context, item Item, params Params) *cache.Future[Item] {
	fut := cache.NewFuture[Item]()
	go func() {
		saved, err := l.Save(ctx, item, params)
		fut.Complete(saved, err)
	}()
	return fut
}

// BatchOptions bounds the reactive collector that publishes a SaveBatch
// result's per-item cache mutations. Zero values mean "no timeout"/"no
// item cap".
type BatchOptions struct {
	Timeout       time.Duration
	MaxItems      int
	CollectErrors bool
}

// SaveBatch writes every item through the delegate in one call (breaker-
// guarded), then fans the per-item cache publication out over a reactive
// collector bounded by opts. A cache-mutation failure for one item never
// affects another item's mutation, and never turns the delegate's success
// into an error — it is only logged.
func (l *CachedLoader[ID, Item, Params]) SaveBatch(ctx context.Context, items []Item, params Params, opts BatchOptions) ([]Item, error) {
	saved, err := l.breakers.saveBatch.Execute(func() ([]Item, error) {
		return l.delegate.SaveBatch(ctx, items, params)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoaderFailure, err)
	}

	errs := runCollected(ctx, len(saved), collectorOptions{
		Timeout:       opts.Timeout,
		MaxItems:      opts.MaxItems,
		CollectErrors: opts.CollectErrors,
	}, func(ctx context.Context, i int) error {
		key := l.keygen.ByID(l.idOf(saved[i]))
		if perr := l.positive.Put(ctx, key, saved[i]); perr != nil {
			return perr
		}
		if l.negativeCachingEnabled {
			l.negative.Remove(ctx, key)
		}
		return nil
	})
	if len(errs) > 0 {
		l.log.Warn("loader.save_batch_cache_update_failed", zap.Int("failed_items", len(errs)), zap.Int("total_items", len(saved)))
	}
	return saved, nil
}

// SaveBatchAsync schedules SaveBatch on its own goroutine and returns a
// Future.
func (l *CachedLoader[ID, Item, Params]) SaveBatchAsync(ctx context.Context, items []Item, params Params, opts BatchOptions) *cache.Future[[]Item] {
	fut := cache.NewFuture[[]Item]()
	go func() {
		saved, err := l.SaveBatch(ctx, items, params, opts)
		fut.Complete(saved, err)
	}()
	return fut
}

// InitializeStorage passes through to the delegate unchanged.
func (l *CachedLoader[ID, Item, Params]) InitializeStorage(ctx context.Context) error {
	return l.delegate.InitializeStorage(ctx)
}

// HealthCheck reports the delegate's health extended with a cache-healthy
// probe (a throwaway put+remove against the positive cache).
func (l *CachedLoader[ID, Item, Params]) HealthCheck(ctx context.Context) error {
	if err := l.delegate.HealthCheck(ctx); err != nil {
		return err
	}
	return l.probeCacheHealthy(ctx)
}

func (l *CachedLoader[ID, Item, Params]) probeCacheHealthy(ctx context.Context) error {
	const probeKey = "__health_probe__"
	var zero Item
	err := l.positive.Put(ctx, probeKey, zero)
	if err != nil && !errors.Is(err, cache.ErrInvalidValue) {
		return fmt.Errorf("loader: cache health probe failed: %w", err)
	}
	if err == nil {
		l.positive.Remove(ctx, probeKey)
	}
	return nil
}

// Shutdown releases the delegate and both caches, returning the first
// error encountered.
func (l *CachedLoader[ID, Item, Params]) Shutdown(ctx context.Context) error {
	if err := l.delegate.Shutdown(ctx); err != nil {
		return err
	}
	if err := l.positive.Close(); err != nil {
		return err
	}
	if l.negative != nil {
		if err := l.negative.Close(); err != nil {
			return err
		}
	}
	return nil
}

// GetConfiguration returns the Configuration this loader was built with
// (see New's cfg parameter).
func (l *CachedLoader[ID, Item, Params]) GetConfiguration() cache.Configuration {
	return l.cfg
}

// GetDebugInfo snapshots positive/negative cache sizes and whether the
// cache side of the wrapper is currently healthy.
func (l *CachedLoader[ID, Item, Params]) GetDebugInfo() DebugInfo {
	negSize := 0
	if l.negative != nil {
		negSize = l.negative.Size()
	}
	return DebugInfo{
		Name:              l.name,
		PositiveCacheSize: l.positive.Size(),
		NegativeCacheSize: negSize,
		NegativeEnabled:   l.negativeCachingEnabled,
		Healthy:           l.probeCacheHealthy(context.Background()) == nil,
	}
}

// EvictFromCache removes id's entry from both the positive and negative
// cache.
func (l *CachedLoader[ID, Item, Params]) EvictFromCache(id ID) {
	ctx := context.Background()
	key := l.keygen.ByID(id)
	l.positive.Evict(ctx, key)
	if l.negativeCachingEnabled {
		l.negative.Evict(ctx, key)
	}
}

// EvictAllFromCache clears both caches entirely.
func (l *CachedLoader[ID, Item, Params]) EvictAllFromCache() {
	ctx := context.Background()
	l.positive.Clear(ctx)
	if l.negativeCachingEnabled {
		l.negative.Clear(ctx)
	}
}

// PreloadIntoCache publishes item to the positive cache directly, without
// going through the delegate, clearing any stale negative-cache entry for
// the same key. params is accepted for API parity with Save but does not
// affect the computed key: the wrapper always keys by the item's own ID.
func (l *CachedLoader[ID, Item, Params]) PreloadIntoCache(item Item, params Params) error {
	ctx := context.Background()
	key := l.keygen.ByID(l.idOf(item))
	if err := l.positive.Put(ctx, key, item); err != nil {
		return err
	}
	if l.negativeCachingEnabled {
		l.negative.Remove(ctx, key)
	}
	return nil
}

// GetCacheStatistics aggregates the positive and negative cache's lifetime
// counters.
func (l *CachedLoader[ID, Item, Params]) GetCacheStatistics() CacheStatistics {
	stats := CacheStatistics{Positive: l.positive.GetStats()}
	if l.negativeCachingEnabled {
		stats.Negative = l.negative.GetStats()
	}
	return stats
}
