// Package manager implements the multi-provider cache registry: named
// caches acquired by configuration, with global defaults that fill in
// whatever a specific configuration leaves unset.
package manager

import (
	"context"
	"fmt"
	"sync"

	"github.com/petrunin/cachefront/cache"
	"github.com/petrunin/cachefront/provider"
	"go.uber.org/zap"
)

// Stats is a point-in-time aggregate across every provider a Manager
// owns.
type Stats struct {
	ProviderCount int
	CacheCount    int
	Hits          uint64
	Misses        uint64
	Evictions     uint64
	Closed        bool
}

// HitRate returns Hits/(Hits+Misses), or 0 when there have been no
// lookups across any owned cache.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Manager owns a set of named providers and the caches each creates,
// applying a global defaults Configuration to every cache acquired under
// the reserved name "default" (see mergeDefaults).
type Manager[K comparable, V any] struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider[K, V]
	defaults  cache.Configuration
	log       *zap.Logger
	closed    bool
}

// New builds a Manager, probing for an optimized provider to register
// under defaultProviderKey (see probeOptimizedProvider) and falling back
// to the reference implementation when none is usable. globalDefaults
// supplies the fallback values a specific Configuration's unset fields
// inherit; pass a zero cache.Configuration to disable inheritance
// entirely.
func New[K comparable, V any](globalDefaults cache.Configuration, log *zap.Logger) *Manager[K, V] {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager[K, V]{
		providers: make(map[string]provider.Provider[K, V]),
		defaults:  globalDefaults,
		log:       log,
	}
	m.providers[defaultProviderKey] = probeOptimizedProvider[K, V](log)
	return m
}

// RegisterProvider adds p under name, so GetFrom(name, cfg) can route to
// it. Registering under a name that already exists replaces the previous
// provider without closing it — callers that need the old one closed
// should call its Close themselves first. Registering under
// defaultProviderKey ("default") replaces the provider Get and
// CacheDefault route to, overriding whatever New probed for.
func (m *Manager[K, V]) RegisterProvider(name string, p provider.Provider[K, V]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

// Get acquires (creating if necessary) the cache named cfg.Name from the
// manager's default provider (see defaultProviderKey): the optimized
// provider probed for at New time, or the reference implementation if
// none was usable. cfg's unset fields inherit from the manager's global
// defaults when cfg.Name == "default"; any other name is honored
// verbatim, on the theory that an explicitly-named cache is opting out of
// blanket defaulting.
func (m *Manager[K, V]) Get(cfg cache.Configuration) (cache.Cache[K, V], error) {
	return m.GetFrom(defaultProviderKey, cfg)
}

// GetFrom acquires (creating if necessary) the cache named cfg.Name from
// the provider registered under providerName. cfg's unset fields inherit
// from the manager's global defaults when cfg.Name == "default"; any
// other name is honored verbatim, on the theory that an explicitly-named
// cache is opting out of blanket defaulting.
func (m *Manager[K, V]) GetFrom(providerName string, cfg cache.Configuration) (cache.Cache[K, V], error) {
	m.mu.RLock()
	closed := m.closed
	p, ok := m.providers[providerName]
	defaults := m.defaults
	m.mu.RUnlock()

	if closed {
		return nil, fmt.Errorf("manager: %w", cache.ErrClosedCache)
	}
	if !ok {
		return nil, fmt.Errorf("manager: no provider registered under %q", providerName)
	}

	if cfg.Name == "default" {
		cfg = mergeDefaults(defaults, cfg)
	}
	return p.CreateCache(cfg)
}

// GetAllStats returns one provider.Stats per registered provider, keyed by
// the name it was registered under.
func (m *Manager[K, V]) GetAllStats() map[string]provider.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]provider.Stats, len(m.providers))
	for name, p := range m.providers {
		out[name] = p.Stats()
	}
	return out
}

// GetManagerStats aggregates hit/miss/eviction counters and cache counts
// across every provider and every cache each one owns.
func (m *Manager[K, V]) GetManagerStats() Stats {
	m.mu.RLock()
	providers := make([]provider.Provider[K, V], 0, len(m.providers))
	for _, p := range m.providers {
		providers = append(providers, p)
	}
	closed := m.closed
	m.mu.RUnlock()

	agg := Stats{ProviderCount: len(providers), Closed: closed}
	for _, p := range providers {
		ps := p.Stats()
		agg.CacheCount += ps.CacheCount
		for _, name := range ps.Names {
			c, ok := p.Get(name)
			if !ok {
				continue
			}
			s := c.GetStats()
			agg.Hits += s.Hits
			agg.Misses += s.Misses
			agg.Evictions += s.Evictions
		}
	}
	return agg
}

// ResetAllStats zeroes the lifetime counters of every cache every
// registered provider owns.
func (m *Manager[K, V]) ResetAllStats() {
	m.mu.RLock()
	providers := make([]provider.Provider[K, V], 0, len(m.providers))
	for _, p := range m.providers {
		providers = append(providers, p)
	}
	m.mu.RUnlock()

	for _, p := range providers {
		ps := p.Stats()
		for _, name := range ps.Names {
			if c, ok := p.Get(name); ok {
				c.ResetStats()
			}
		}
	}
}

// CleanupAll removes the expired entries of every cache every registered
// provider owns (AsMap reaps them as it scans), leaving live entries in
// place and closing nothing.
func (m *Manager[K, V]) CleanupAll() {
	m.mu.RLock()
	providers := make([]provider.Provider[K, V], 0, len(m.providers))
	for _, p := range m.providers {
		providers = append(providers, p)
	}
	m.mu.RUnlock()

	for _, p := range providers {
		ps := p.Stats()
		for _, name := range ps.Names {
			if c, ok := p.Get(name); ok {
				c.AsMap(context.Background())
			}
		}
	}
}

// Close closes every provider this manager owns (which in turn closes
// every cache each one owns) and marks the manager closed, rejecting
// further Get calls. Idempotent.
func (m *Manager[K, V]) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	providers := make([]provider.Provider[K, V], 0, len(m.providers))
	for _, p := range m.providers {
		providers = append(providers, p)
	}
	m.mu.Unlock()

	var firstErr error
	for _, p := range providers {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
