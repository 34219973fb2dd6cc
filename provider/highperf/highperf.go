// Package highperf implements the "HighPerf" cache provider family: shard
// count derived from runtime.GOMAXPROCS and a Prometheus metrics adapter
// wired in by default for every cache it creates.
package highperf

import (
	"github.com/petrunin/cachefront/cache"
	"github.com/petrunin/cachefront/internal/util"
	"github.com/petrunin/cachefront/metrics/prom"
	"github.com/petrunin/cachefront/provider"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Name is this family's human-readable identifier.
const Name = "HighPerf"

// New builds a HighPerf provider for (K,V). reg is the Prometheus
// registerer every created cache's metrics are registered against (nil
// falls back to prometheus.DefaultRegisterer); namespace/subsystem label
// every exported metric.
func New[K comparable, V any](log *zap.Logger, reg prometheus.Registerer, namespace, subsystem string) provider.Provider[K, V] {
	applyDefaults := func(cfg cache.Configuration) cache.Configuration {
		if cfg.ConcurrencyLevel == 0 {
			cfg.ConcurrencyLevel = uint16(util.ReasonableShardCount())
		}
		return cfg.WithDefaults()
	}
	metricsFor := func(name string) cache.Metrics {
		return prom.New(reg, namespace, subsystem, prometheus.Labels{"cache": name})
	}
	return provider.New[K, V](Name, applyDefaults, metricsFor, log)
}
