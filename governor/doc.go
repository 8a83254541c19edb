// Package governor implements the performance budget governor: a
// three-state machine (FULL, REDUCED, MINIMAL) that trades calculation
// fidelity for throughput when compositions run over their time budget.
//
// The governor observes one sample per composition (its total calculation
// time) and degrades one step after N consecutive samples over the
// high-water mark; it recovers one step after M consecutive samples under
// the low-water mark. The asymmetric streaks are deliberate hysteresis:
// a single slow or fast composition never flips the state, so the engine
// cannot oscillate between quality levels.
//
// The governor never errors; it only maps its state to a Budget that the
// calculator and detector honor:
//
//   - FULL: 5 context buckets, unbounded group search
//   - REDUCED: 1 context bucket (higher cache hit rate, less context
//     sensitivity), group search capped at size 3
//   - MINIMAL: discovery skipped entirely; only cached or trivially
//     computed pairwise results are used
//
// It is an explicit dependency injected into the engine and fed observed
// durations by its caller; it never reads the ambient clock, which keeps
// the whole pipeline unit-testable without wall-clock dependencies.
package governor
