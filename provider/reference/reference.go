// Package reference implements the "ReferenceImpl" cache provider family:
// conservative defaults, no forced sharding, no metrics wired unless the
// caller supplies a cache.Metrics explicitly. This is the provider
// manager.New registers as its default when GOMAXPROCS is 1.
package reference

import (
	"github.com/petrunin/cachefront/cache"
	"github.com/petrunin/cachefront/provider"
	"go.uber.org/zap"
)

// Name is this family's human-readable identifier.
const Name = "ReferenceImpl"

// New builds a ReferenceImpl provider for (K,V). It leaves
// ConcurrencyLevel at whatever the caller's Configuration sets (or
// cache.New's own default of 16 if unset) and reports no metrics unless
// extraMetrics is non-nil.
func New[K comparable, V any](log *zap.Logger, extraMetrics cache.Metrics) provider.Provider[K, V] {
	applyDefaults := func(cfg cache.Configuration) cache.Configuration {
		return cfg.WithDefaults()
	}
	metricsFor := func(name string) cache.Metrics {
		if extraMetrics != nil {
			return extraMetrics
		}
		return cache.NoopMetrics{}
	}
	return provider.New[K, V](Name, applyDefaults, metricsFor, log)
}
