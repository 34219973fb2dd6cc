package manager

import (
	"time"

	"github.com/petrunin/cachefront/cache"
)

// CacheBuilder accumulates a Configuration fluently, then forwards it to
// Manager.GetFrom on Build.
type CacheBuilder[K comparable, V any] struct {
	m            *Manager[K, V]
	providerName string
	cfg          cache.Configuration
}

// Cache starts a builder targeting providerName's cache named name on m.
func (m *Manager[K, V]) Cache(providerName, name string) *CacheBuilder[K, V] {
	return &CacheBuilder[K, V]{
		m:            m,
		providerName: providerName,
		cfg:          cache.Configuration{Name: name},
	}
}

// CacheDefault starts a builder targeting the manager's default
// provider's cache named name, the same one Get routes to.
func (m *Manager[K, V]) CacheDefault(name string) *CacheBuilder[K, V] {
	return m.Cache(defaultProviderKey, name)
}

func (b *CacheBuilder[K, V]) MaxSize(n uint64) *CacheBuilder[K, V] {
	b.cfg.MaxSize = n
	return b
}

func (b *CacheBuilder[K, V]) DefaultTTL(d time.Duration) *CacheBuilder[K, V] {
	b.cfg.DefaultTTL = d
	return b
}

func (b *CacheBuilder[K, V]) MaxIdle(d time.Duration) *CacheBuilder[K, V] {
	b.cfg.MaxIdle = d
	return b
}

func (b *CacheBuilder[K, V]) EvictionPolicy(p cache.EvictionPolicy) *CacheBuilder[K, V] {
	b.cfg.EvictionPolicy = p
	return b
}

func (b *CacheBuilder[K, V]) ConcurrencyLevel(n uint16) *CacheBuilder[K, V] {
	b.cfg.ConcurrencyLevel = n
	return b
}

func (b *CacheBuilder[K, V]) RecordStats(v bool) *CacheBuilder[K, V] {
	b.cfg.RecordStats = v
	return b
}

func (b *CacheBuilder[K, V]) AllowNullValues(v bool) *CacheBuilder[K, V] {
	b.cfg.AllowNullValues = v
	return b
}

// Build acquires (or creates) the configured cache from the targeted
// provider.
func (b *CacheBuilder[K, V]) Build() (cache.Cache[K, V], error) {
	return b.m.GetFrom(b.providerName, b.cfg)
}
