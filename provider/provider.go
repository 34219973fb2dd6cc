// Package provider defines the CacheProvider contract: a named factory
// that owns a flat name -> cache registry for one key/value type pair.
// reference and highperf are two families sharing the same cache.New
// engine, differing only in the defaults and metrics wiring they apply.
package provider

import (
	"fmt"
	"sync"

	"github.com/petrunin/cachefront/cache"
	"go.uber.org/zap"
)

// Stats is a point-in-time snapshot of a provider's bookkeeping.
type Stats struct {
	ProviderName string
	CacheCount   int
	Closed       bool
	Names        []string
}

// Provider owns every cache it has created under a given name and can
// produce new ones from a Configuration.
type Provider[K comparable, V any] interface {
	// Name returns the provider family's human-readable identifier, e.g.
	// "ReferenceImpl" or "HighPerf".
	Name() string

	// CreateCache validates cfg, applies this provider's defaults, builds
	// a cache.Cache and registers it under cfg.Name. Creating a cache
	// under a name that already exists returns the existing instance
	// without reapplying cfg.
	CreateCache(cfg cache.Configuration) (cache.Cache[K, V], error)

	// Get returns the already-created cache registered under name.
	Get(name string) (cache.Cache[K, V], bool)

	// DestroyCache closes and unregisters the cache named name. A missing
	// name is not an error.
	DestroyCache(name string) error

	// Stats reports how many caches this provider owns and their names.
	Stats() Stats

	// Close closes every cache this provider owns and refuses further
	// CreateCache calls.
	Close() error
}

// ApplyDefaults customizes a Configuration before it reaches cache.New,
// e.g. forcing a shard count or leaving it alone.
type ApplyDefaults func(cache.Configuration) cache.Configuration

// MetricsFor builds (or selects) the cache.Metrics implementation a newly
// created cache should report to, keyed by its name.
type MetricsFor func(name string) cache.Metrics

// base is the shared implementation behind both named families; reference
// and highperf each construct one with family-specific ApplyDefaults and
// MetricsFor closures.
type base[K comparable, V any] struct {
	mu     sync.Mutex
	name   string
	caches map[string]cache.Cache[K, V]
	closed bool

	applyDefaults ApplyDefaults
	metricsFor    MetricsFor
	log           *zap.Logger
}

// New builds a Provider sharing cache.New as its engine. name identifies
// the family ("ReferenceImpl", "HighPerf", ...); applyDefaults and
// metricsFor let each family customize sharding/observability without
// duplicating the registry bookkeeping below.
func New[K comparable, V any](name string, applyDefaults ApplyDefaults, metricsFor MetricsFor, log *zap.Logger) Provider[K, V] {
	return &base[K, V]{
		name:          name,
		caches:        make(map[string]cache.Cache[K, V]),
		applyDefaults: applyDefaults,
		metricsFor:    metricsFor,
		log:           log,
	}
}

func (b *base[K, V]) Name() string { return b.name }

func (b *base[K, V]) CreateCache(cfg cache.Configuration) (cache.Cache[K, V], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("provider %s: %w", b.name, cache.ErrClosedCache)
	}
	if existing, ok := b.caches[cfg.Name]; ok {
		return existing, nil
	}

	cfg = b.applyDefaults(cfg)
	factory := cache.FactoryForPolicy[K](cfg.EvictionPolicy)
	metrics := b.metricsFor(cfg.Name)

	c, err := cache.New[K, V](cfg, factory, metrics, b.log)
	if err != nil {
		return nil, err
	}
	b.caches[cfg.Name] = c
	return c, nil
}

func (b *base[K, V]) Get(name string) (cache.Cache[K, V], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.caches[name]
	return c, ok
}

func (b *base[K, V]) DestroyCache(name string) error {
	b.mu.Lock()
	c, ok := b.caches[name]
	if ok {
		delete(b.caches, name)
	}
	b.mu.Unlock()

	if !ok {
		return nil
	}
	return c.Close()
}

func (b *base[K, V]) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.caches))
	for n := range b.caches {
		names = append(names, n)
	}
	return Stats{
		ProviderName: b.name,
		CacheCount:   len(b.caches),
		Closed:       b.closed,
		Names:        names,
	}
}

func (b *base[K, V]) Close() error {
	b.mu.Lock()
	b.closed = true
	caches := b.caches
	b.caches = make(map[string]cache.Cache[K, V])
	b.mu.Unlock()

	var firstErr error
	for _, c := range caches {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
