// Package emergence provides a component composition and emergent interaction
// engine: threats are assembled from small, independently defined behavioral
// components, and higher-order ("emergent") behaviors are discovered when
// specific component groups interact.
//
// # Architecture
//
// The engine is a pure in-process computational library with no transport,
// wire format, or CLI of its own:
//
//	┌─────────────────────────────────────┐
//	│        Composition Engine           │  instantiate, calculate,
//	│         (engine package)            │  discover, assemble
//	└─────────────────────────────────────┘
//	     ↓ reads            ↓ consults
//	┌──────────────┐   ┌──────────────────┐
//	│   Registry   │   │    Calculator    │  pairwise scoring,
//	│ (definitions)│   │  (cache-checked) │  versioned formula
//	└──────────────┘   └──────────────────┘
//	                        ↓ feeds
//	                   ┌──────────────────┐
//	                   │     Detector     │  3+ component synergies,
//	                   │  (archetypes)    │  deterministic discovery
//	                   └──────────────────┘
//
// A performance budget governor observes composition timing and degrades
// calculation fidelity (FULL → REDUCED → MINIMAL) instead of failing under
// load. The interaction cache is a bounded, TTL-expiring optimization layer:
// removing it never changes computed results, only recompute cost.
//
// # Packages
//
//   - types: immutable definitions, component instances, interaction results,
//     emergent behaviors, composed threats
//   - registry: component definition registry and YAML definition loader
//   - cache: bounded interaction result cache (TTL + batched LRU eviction)
//   - calculator: pairwise interaction scoring (versioned formula)
//   - detector: higher-order emergence discovery over complete result sets
//   - governor: adaptive compute-budget state machine with hysteresis
//   - engine: composition orchestration and performance metrics
//   - metric: Prometheus metrics registry and HTTP exposition
//   - config: YAML configuration with defaults and validation
//   - errors: classified error handling shared by all packages
package emergence
