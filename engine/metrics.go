package engine

import (
	"sync/atomic"
	"time"

	"github.com/c360/emergence/governor"
	"github.com/c360/emergence/metric"
	"github.com/c360/emergence/types"
)

// engineMetrics records composition outcomes on the core Prometheus
// metrics. A nil core disables recording, so the engine never branches on
// whether metrics are wired.
type engineMetrics struct {
	core *metric.Metrics

	// Lifetime cache tallies backing the hit ratio gauge.
	hits   atomic.Int64
	misses atomic.Int64
}

func newEngineMetrics(core *metric.Metrics) *engineMetrics {
	return &engineMetrics{core: core}
}

func (m *engineMetrics) recordFailure() {
	if m.core == nil {
		return
	}
	m.core.CompositionsTotal.WithLabelValues("failure").Inc()
}

func (m *engineMetrics) recordSuccess(threat *types.ComposedThreat, quality governor.Quality) {
	if m.core == nil {
		return
	}
	cm := threat.Metrics

	m.core.CompositionsTotal.WithLabelValues("success").Inc()
	m.core.CompositionDuration.WithLabelValues(cm.Quality).Observe(cm.TotalTime.Seconds())
	m.core.StageDuration.WithLabelValues("instantiate").Observe(cm.InstantiateTime.Seconds())
	m.core.StageDuration.WithLabelValues("calculate").Observe(cm.CalculateTime.Seconds())
	m.core.StageDuration.WithLabelValues("discover").Observe(cm.DiscoverTime.Seconds())
	m.core.ComponentsPerComposition.Observe(float64(len(threat.Components)))

	for _, r := range threat.Interactions {
		m.core.InteractionsTotal.WithLabelValues(string(r.Kind)).Inc()
	}
	for _, b := range threat.Behaviors {
		m.core.BehaviorsTotal.WithLabelValues(b.Archetype).Inc()
	}
	m.core.DegradedPairsTotal.Add(float64(cm.DegradedPairs))

	hits := m.hits.Add(int64(cm.CacheHits))
	misses := m.misses.Add(int64(cm.CacheMisses))
	if total := hits + misses; total > 0 {
		m.core.CacheHitRatio.Set(float64(hits) / float64(total))
	}
	m.core.QualityState.Set(float64(quality))
}

// stageTimer measures one composition stage.
type stageTimer struct {
	start time.Time
}

func startStage() stageTimer {
	return stageTimer{start: time.Now()}
}

func (t stageTimer) elapsed() time.Duration {
	return time.Since(t.start)
}
