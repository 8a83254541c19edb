package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all engine-level metrics (not component-specific).
type Metrics struct {
	// Composition metrics
	CompositionsTotal        *prometheus.CounterVec
	CompositionDuration      *prometheus.HistogramVec
	StageDuration            *prometheus.HistogramVec
	ComponentsPerComposition prometheus.Histogram

	// Interaction metrics
	InteractionsTotal  *prometheus.CounterVec
	BehaviorsTotal     *prometheus.CounterVec
	DegradedPairsTotal prometheus.Counter

	// Cross-cutting metrics
	CacheHitRatio prometheus.Gauge
	QualityState  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all engine metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		CompositionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emergence",
				Subsystem: "engine",
				Name:      "compositions_total",
				Help:      "Total number of composition requests",
			},
			[]string{"status"}, // success, failure
		),

		CompositionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "emergence",
				Subsystem: "engine",
				Name:      "composition_duration_seconds",
				Help:      "Total composition duration in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"quality"}, // full, reduced, minimal
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "emergence",
				Subsystem: "engine",
				Name:      "stage_duration_seconds",
				Help:      "Per-stage composition duration in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"stage"}, // instantiate, calculate, discover
		),

		ComponentsPerComposition: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "emergence",
				Subsystem: "engine",
				Name:      "components_per_composition",
				Help:      "Number of components per composition request",
				Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
			},
		),

		InteractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emergence",
				Subsystem: "interactions",
				Name:      "computed_total",
				Help:      "Total number of pairwise interactions by classification",
			},
			[]string{"kind"}, // amplification, arms-race, suppression, neutral
		),

		BehaviorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "emergence",
				Subsystem: "detector",
				Name:      "behaviors_total",
				Help:      "Total number of emergent behaviors discovered by archetype",
			},
			[]string{"archetype"},
		),

		DegradedPairsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "emergence",
				Subsystem: "interactions",
				Name:      "degraded_pairs_total",
				Help:      "Pairwise calculations absorbed into neutral results",
			},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "emergence",
				Subsystem: "cache",
				Name:      "hit_ratio",
				Help:      "Interaction cache hit ratio over process lifetime",
			},
		),

		QualityState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "emergence",
				Subsystem: "governor",
				Name:      "quality_state",
				Help:      "Current governor quality state (0=full, 1=reduced, 2=minimal)",
			},
		),
	}
}
