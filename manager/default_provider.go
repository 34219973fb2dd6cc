package manager

import (
	"runtime"

	"github.com/petrunin/cachefront/provider"
	"github.com/petrunin/cachefront/provider/highperf"
	"github.com/petrunin/cachefront/provider/reference"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// defaultProviderKey is the reserved provider name Get and CacheDefault
// route through. New populates it with whatever probeOptimizedProvider
// finds; RegisterProvider can replace it explicitly.
const defaultProviderKey = "default"

// probeOptimizedProvider picks the HighPerf provider when this process can
// actually benefit from its GOMAXPROCS-derived sharding (more than one
// logical CPU — see internal/util.ReasonableShardCount), falling back to
// ReferenceImpl on a single-core build where extra shards only add
// overhead. HighPerf's metrics are registered against a private
// prometheus.Registry so probing never risks colliding with collectors
// an application already registered on prometheus.DefaultRegisterer.
func probeOptimizedProvider[K comparable, V any](log *zap.Logger) provider.Provider[K, V] {
	if runtime.GOMAXPROCS(0) > 1 {
		return highperf.New[K, V](log, prometheus.NewRegistry(), "cachefront", "manager")
	}
	return reference.New[K, V](log, nil)
}
