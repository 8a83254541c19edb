// Package metric provides Prometheus metrics for the emergence engine.
//
// MetricsRegistry wraps a private prometheus.Registry (plus Go runtime and
// process collectors) and offers typed registration methods that guard
// against duplicate names. Core engine metrics (compositions, stage
// durations, cache effectiveness, governor quality state, discovered
// behaviors) are created and registered up front; packages with their own
// metrics (cache, engine) register through the same registry so one
// /metrics endpoint exposes everything.
//
// Server exposes the registry over HTTP using promhttp. The engine itself
// never requires metrics: every integration point accepts a nil registry
// and degrades to internal statistics only.
package metric
