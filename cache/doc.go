// Package cache provides the bounded interaction result cache.
//
// Entries map a canonical component type pair plus a quantized context
// bucket to a previously computed, instance-free interaction result. The
// pair is canonicalized internally (smaller type first), so A-B and B-A
// queries always resolve to the same entry and callers never need to know
// the ordering.
//
// # Eviction
//
// Two policies bound the cache:
//
//   - TTL: entries expire after a configurable time-to-live (a few seconds
//     by default). An expired entry is treated as a miss and lazily removed
//     on the lookup that finds it; there is no background sweeper.
//   - Capacity: when an insert would exceed capacity, the oldest 20% of
//     entries by last access are evicted in one batch, bounding amortized
//     eviction cost instead of paying it entry by entry.
//
// The cache is safe for concurrent use; the mutex scopes to map mutation
// only, never to interaction calculation. It is a pure optimization layer:
// removing it changes recompute cost, never computed results.
//
// Statistics are always collected; Prometheus metrics are opt-in via
// WithMetrics.
package cache
