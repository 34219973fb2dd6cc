package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petrunin/cachefront/eviction"
	"github.com/petrunin/cachefront/internal/logging"
	"github.com/petrunin/cachefront/internal/util"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Clock abstracts time so TTL/idle-expiration logic can be driven by a
// fake clock in tests.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// instance is the concrete, provider-agnostic Cache[K,V] implementation:
// a lock-striped set of shards, a single-flight loader coalescer, atomic
// statistics and a copy-on-write listener list. providers (reference,
// highperf) differ only in how they size and wire this type, not in its
// logic.
type instance[K comparable, V any] struct {
	cfg Configuration

	shards   []*shard[K, V]
	shardCnt int

	stats     *statCounters
	metrics   Metrics
	listeners *listenerList[K, V]
	log       *zap.Logger
	clock     Clock

	sf singleflight.Group

	jobs chan func()

	closed atomic.Bool
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New constructs a cache instance directly from a Configuration and an
// eviction.Factory. Providers are the intended entry point for most
// callers (they apply family-specific defaults); New is exported for
// callers who want full control, and is what the providers call
// internally.
func New[K comparable, V any](cfg Configuration, factory eviction.Factory[K], metrics Metrics, log *zap.Logger) (Cache[K, V], error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	if log == nil {
		log = logging.New()
	}

	shardCnt := int(cfg.ConcurrencyLevel)
	if shardCnt < 1 {
		shardCnt = 1
	}
	if shardCnt > int(cfg.MaxSize) && cfg.MaxSize > 0 {
		shardCnt = int(cfg.MaxSize)
	}
	if shardCnt < 1 {
		shardCnt = 1
	}

	// Split MaxSize exactly: the first MaxSize%shardCnt shards take one
	// extra slot, so the per-shard capacities sum to MaxSize.
	base := cfg.MaxSize / uint64(shardCnt)
	rem := cfg.MaxSize % uint64(shardCnt)

	shards := make([]*shard[K, V], shardCnt)
	for i := range shards {
		capacity := base
		if uint64(i) < rem {
			capacity++
		}
		shards[i] = newShard[K, V](capacity, cfg.EvictionPolicy, factory)
	}

	inst := &instance[K, V]{
		cfg:       cfg,
		shards:    shards,
		shardCnt:  shardCnt,
		stats:     &statCounters{},
		metrics:   metrics,
		listeners: newListenerList[K, V](log),
		log:       log,
		clock:     realClock{},
		stopCh:    make(chan struct{}),
	}
	inst.startCleanup()
	inst.startWorkerPool()
	return inst, nil
}

func (c *instance[K, V]) shardFor(key K) *shard[K, V] {
	h := util.Fnv64a(key)
	idx := util.ShardIndex(h, c.shardCnt)
	return c.shards[idx]
}

func sfKey[K comparable](key K) string {
	return fmt.Sprintf("%v", key)
}

// peek re-checks key without recording hit/miss statistics or emitting
// EventHit/EventMiss; used by GetWithLoader's post-queue re-check, where
// the outer Get already accounted for this logical lookup once.
func (c *instance[K, V]) peek(key K) (V, bool) {
	s := c.shardFor(key)
	v, ok, expired := s.Peek(key, c.clock.Now())
	c.onRemoval(key, expired)
	return v, ok
}

func (c *instance[K, V]) emit(ev Event[K, V]) {
	c.listeners.Dispatch(ev)
}

func (c *instance[K, V]) onRemoval(key K, r *removal[K, V]) {
	if r == nil {
		return
	}
	if r.Cause == CauseSize {
		c.stats.recordEviction()
		c.metrics.Evict(CauseSize)
		c.emit(Event[K, V]{Type: EventEvict, Key: r.Key, Value: r.Value, Cause: CauseSize})
		return
	}
	c.emit(Event[K, V]{Type: EventRemove, Key: r.Key, Value: r.Value, Cause: r.Cause})
}

func (c *instance[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	if c.closed.Load() {
		var zero V
		return zero, false, ErrClosedCache
	}
	s := c.shardFor(key)
	now := c.clock.Now()
	v, hit, expired := s.Get(key, now)
	c.onRemoval(key, expired)
	if hit {
		c.stats.recordHit()
		c.metrics.Hit()
		c.emit(Event[K, V]{Type: EventHit, Key: key, Value: v})
	} else {
		c.stats.recordMiss()
		c.metrics.Miss()
		c.emit(Event[K, V]{Type: EventMiss, Key: key})
	}
	return v, hit, nil
}

// GetWithLoader implements the read-through path: a true cache miss calls
// loader at most once across all concurrent callers of the same key
// (golang.org/x/sync/singleflight), stores the result with the
// configured default TTL, and returns it to every waiter. A loader error
// is returned to every waiter and never cached.
func (c *instance[K, V]) GetWithLoader(ctx context.Context, key K, loader Loader[K, V]) (V, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}
	if ok {
		return v, nil
	}

	res, err, _ := c.sf.Do(sfKey(key), func() (interface{}, error) {
		// Re-check under the flight group in case another caller already
		// populated the entry while we were queued. This must not
		// re-record hit/miss stats or events: the outer Get above already
		// recorded this logical lookup's outcome once.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		start := c.clock.Now()
		v, err := loader(ctx, key)
		if err != nil {
			return v, err
		}
		elapsed := c.clock.Now().Sub(start)
		c.stats.recordLoad(elapsed.Nanoseconds())
		c.metrics.Load(elapsed.Nanoseconds())
		// Store before the flight ends, so a caller arriving after it
		// finds the value instead of starting a second load.
		return v, c.Put(ctx, key, v)
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *instance[K, V]) Put(ctx context.Context, key K, value V) error {
	return c.PutWithTTL(ctx, key, value, c.cfg.effectiveTTL())
}

func (c *instance[K, V]) PutWithTTL(ctx context.Context, key K, value V, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosedCache
	}
	s := c.shardFor(key)
	now := c.clock.Now()
	evicted, _, err := s.Set(key, value, ttl, c.cfg.effectiveIdleTTL(), now, c.cfg.AllowNullValues)
	if err != nil {
		return err
	}
	c.onRemoval(key, evicted)
	c.emit(Event[K, V]{Type: EventPut, Key: key, Value: value})
	return nil
}

func (c *instance[K, V]) PutIfAbsent(ctx context.Context, key K, value V) (V, bool, error) {
	if c.closed.Load() {
		var zero V
		return zero, false, ErrClosedCache
	}
	s := c.shardFor(key)
	now := c.clock.Now()
	prev, existed, evicted, err := s.PutIfAbsent(key, value, c.cfg.effectiveTTL(), c.cfg.effectiveIdleTTL(), now, c.cfg.AllowNullValues)
	if err != nil {
		return prev, existed, err
	}
	c.onRemoval(key, evicted)
	if !existed {
		c.emit(Event[K, V]{Type: EventPut, Key: key, Value: value})
	}
	return prev, existed, nil
}

func (c *instance[K, V]) Remove(ctx context.Context, key K) (V, bool, error) {
	if c.closed.Load() {
		var zero V
		return zero, false, ErrClosedCache
	}
	s := c.shardFor(key)
	v, existed := s.Remove(key)
	if existed {
		c.emit(Event[K, V]{Type: EventRemove, Key: key, Value: v, Cause: CauseExplicit})
	}
	return v, existed, nil
}

func (c *instance[K, V]) ContainsKey(ctx context.Context, key K) (bool, error) {
	if c.closed.Load() {
		return false, ErrClosedCache
	}
	s := c.shardFor(key)
	ok, expired := s.ContainsKey(key, c.clock.Now())
	c.onRemoval(key, expired)
	return ok, nil
}

// GetAll tolerates a closed cache or a per-key error as simply "absent",
// consistent with spec's documented partial-failure tolerance for the bulk
// operations.
func (c *instance[K, V]) GetAll(ctx context.Context, keys []K) map[K]V {
	out := make(map[K]V, len(keys))
	for _, k := range keys {
		if v, ok, err := c.Get(ctx, k); err == nil && ok {
			out[k] = v
		}
	}
	return out
}

func (c *instance[K, V]) PutAll(ctx context.Context, values map[K]V) error {
	for k, v := range values {
		if err := c.Put(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *instance[K, V]) RemoveAll(ctx context.Context, keys []K) {
	for _, k := range keys {
		c.Remove(ctx, k)
	}
}

func (c *instance[K, V]) AsMap(ctx context.Context) (map[K]V, error) {
	if c.closed.Load() {
		return nil, ErrClosedCache
	}
	now := c.clock.Now()
	out := make(map[K]V)
	for _, s := range c.shards {
		m, expired := s.AsMap(now)
		for k, v := range m {
			out[k] = v
		}
		for _, r := range expired {
			c.onRemoval(r.Key, &r)
		}
	}
	return out, nil
}

func (c *instance[K, V]) Clear(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosedCache
	}
	for _, s := range c.shards {
		s.Clear()
	}
	return nil
}

func (c *instance[K, V]) Size() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

func (c *instance[K, V]) IsEmpty() bool { return c.Size() == 0 }

func (c *instance[K, V]) EstimatedSize() int64 { return int64(c.Size()) }

func (c *instance[K, V]) Evict(ctx context.Context, key K) error {
	if c.closed.Load() {
		return ErrClosedCache
	}
	s := c.shardFor(key)
	v, existed := s.Remove(key)
	if existed {
		c.stats.recordEviction()
		c.metrics.Evict(CauseExplicit)
		c.emit(Event[K, V]{Type: EventEvict, Key: key, Value: v, Cause: CauseExplicit})
	}
	return nil
}

func (c *instance[K, V]) EvictAll(ctx context.Context, pred func(K, V) bool) error {
	if c.closed.Load() {
		return ErrClosedCache
	}
	if pred == nil {
		return ErrInvalidArgument
	}
	for _, s := range c.shards {
		removed := s.EvictAll(pred)
		for _, r := range removed {
			c.stats.recordEviction()
			c.metrics.Evict(r.Cause)
			c.emit(Event[K, V]{Type: EventEvict, Key: r.Key, Value: r.Value, Cause: r.Cause})
		}
	}
	return nil
}

func (c *instance[K, V]) GetStats() Stats {
	return c.stats.snapshot(uint64(c.Size()))
}

func (c *instance[K, V]) ResetStats() {
	c.stats.reset()
}

func (c *instance[K, V]) AddListener(l Listener[K, V]) {
	c.listeners.Add(l)
}

func (c *instance[K, V]) RemoveAllListeners() {
	c.listeners.Clear()
}

func (c *instance[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stopCh)
	c.stopWorkerPool()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		c.log.Warn("cache.close.cleanup_timeout", zap.String("cache", c.cfg.Name))
	}

	c.listeners.Clear()
	for _, s := range c.shards {
		s.Clear()
	}
	return nil
}
