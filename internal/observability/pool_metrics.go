package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics tracks the cache of initialized per-organization engines.
type PoolMetrics struct {
	hits      prometheus.Counter
	misses    prometheus.Counter
	evictions prometheus.Counter
	size      prometheus.Gauge
}

var (
	defaultPoolMetrics     *PoolMetrics
	defaultPoolMetricsOnce sync.Once
)

// NewPoolMetrics builds a PoolMetrics recorder using the default registry.
func NewPoolMetrics() *PoolMetrics {
	defaultPoolMetricsOnce.Do(func() {
		defaultPoolMetrics = newPoolMetrics(prometheus.DefaultRegisterer)
	})
	return defaultPoolMetrics
}

// NewPoolMetricsWithRegisterer allows tests to provide a dedicated registry.
func NewPoolMetricsWithRegisterer(reg prometheus.Registerer) *PoolMetrics {
	return newPoolMetrics(reg)
}

func newPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PoolMetrics{
		hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "goalbridge",
			Subsystem: "engine_pool",
			Name:      "hit_total",
			Help:      "Requests served by an already initialized engine",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "goalbridge",
			Subsystem: "engine_pool",
			Name:      "miss_total",
			Help:      "Requests that had to initialize an engine",
		}),
		evictions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "goalbridge",
			Subsystem: "engine_pool",
			Name:      "eviction_total",
			Help:      "Engines dropped from the pool",
		}),
		size: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "goalbridge",
			Subsystem: "engine_pool",
			Name:      "size",
			Help:      "Engines currently cached",
		}),
	}
}

// RecordHit increments the hit counter.
func (m *PoolMetrics) RecordHit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

// RecordMiss increments the miss counter.
func (m *PoolMetrics) RecordMiss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

// RecordEviction increments the eviction counter.
func (m *PoolMetrics) RecordEviction() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

// SetSize records the current pool size.
func (m *PoolMetrics) SetSize(n int) {
	if m == nil {
		return
	}
	m.size.Set(float64(n))
}
