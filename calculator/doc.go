// Package calculator computes pairwise interaction results between two
// threat components.
//
// Scoring follows a declared, versioned formula (see ScoringConfig;
// currently "v1") so results are reproducible and testable: the weights
// are configuration, not physics. Compatibility starts from the
// registry's declared affinity prior and the domain relation; synergy is
// amplified by transmission-role properties, conflict by defense-role
// properties (both may be non-zero at once); emergent potential is
// compatibility times the product of both components' individual
// potentials, so two low-potential components can never combine into a
// high-potential pair.
//
// # Context Quantization and Cache Transparency
//
// Every instance-derived scoring input (context intensity, per-side
// property means) is quantized before scoring, and the same quantized
// levels form the cache signature. Two calculations that share a cache
// entry therefore share their inputs exactly, which makes the cache a
// pure optimization: disabling it changes recompute cost, never values.
// Under a reduced budget the signature collapses to a single bucket,
// deliberately trading context sensitivity for hit rate.
//
// Results are computed in canonical type order, cached instance-free, and
// bound to the caller's instances on the way out, so Calculate(a, b) and
// Calculate(b, a) are the same calculation.
package calculator
