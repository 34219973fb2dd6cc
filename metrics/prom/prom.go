// Package prom implements a cache.Metrics adapter backed by
// prometheus/client_golang, extended from a four-signal hit/miss/evict/size
// exporter to also report load latency, matching cache.Metrics' full
// surface.
package prom

import (
	"github.com/petrunin/cachefront/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters,
// gauges and a histogram. Safe for concurrent use; every Prometheus metric
// type is goroutine-safe on its own.
type Adapter struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evicts    *prometheus.CounterVec
	size      prometheus.Gauge
	loadNanos prometheus.Histogram
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (e.g. {"cache": name})
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "removals_total",
				Help:        "Cache entries removed, by cause",
				ConstLabels: constLabels,
			},
			[]string{"cause"},
		),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		loadNanos: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "load_duration_nanoseconds",
			Help:        "Loader call latency on a read-through miss",
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(1000, 4, 12),
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.size, a.loadNanos)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Load records a loader call's latency.
func (a *Adapter) Load(durationNanos int64) {
	a.loadNanos.Observe(float64(durationNanos))
}

// Evict increments the removal counter with a cause label.
func (a *Adapter) Evict(cause cache.RemovalCause) {
	a.evicts.WithLabelValues(cause.String()).Inc()
}

// Size updates the resident-entry gauge.
func (a *Adapter) Size(entries int64) {
	a.size.Set(float64(entries))
}

var _ cache.Metrics = (*Adapter)(nil)
