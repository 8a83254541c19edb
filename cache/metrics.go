package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/emergence/metric"
)

// cacheMetrics holds Prometheus metrics for cache operations.
type cacheMetrics struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	sets        prometheus.Counter
	evictions   prometheus.Counter
	expirations prometheus.Counter
	size        prometheus.Gauge
}

// newCacheMetrics creates and registers cache metrics with the provided registrar.
func newCacheMetrics(registry metric.Registrar, prefix string) (*cacheMetrics, error) {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "emergence",
			Subsystem:   "cache",
			Name:        name,
			ConstLabels: prometheus.Labels{"cache": prefix},
			Help:        help,
		})
	}

	m := &cacheMetrics{
		hits:        counter("hits_total", "Total number of cache hits"),
		misses:      counter("misses_total", "Total number of cache misses"),
		sets:        counter("sets_total", "Total number of cache store operations"),
		evictions:   counter("evictions_total", "Total number of capacity evictions"),
		expirations: counter("expirations_total", "Total number of lazily expired entries"),
		size: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "emergence",
			Subsystem:   "cache",
			Name:        "size",
			ConstLabels: prometheus.Labels{"cache": prefix},
			Help:        "Current number of entries in cache",
		}),
	}

	registrations := []struct {
		name      string
		collector prometheus.Counter
	}{
		{"cache_hits", m.hits},
		{"cache_misses", m.misses},
		{"cache_sets", m.sets},
		{"cache_evictions", m.evictions},
		{"cache_expirations", m.expirations},
	}
	for _, r := range registrations {
		if err := registry.RegisterCounter(prefix, r.name, r.collector); err != nil {
			return nil, err
		}
	}
	if err := registry.RegisterGauge(prefix, "cache_size", m.size); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *cacheMetrics) recordHit()        { m.hits.Inc() }
func (m *cacheMetrics) recordMiss()       { m.misses.Inc() }
func (m *cacheMetrics) recordSet()        { m.sets.Inc() }
func (m *cacheMetrics) recordEviction()   { m.evictions.Inc() }
func (m *cacheMetrics) recordExpiration() { m.expirations.Inc() }
func (m *cacheMetrics) updateSize(size int) {
	m.size.Set(float64(size))
}
