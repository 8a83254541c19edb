// Package types defines the data model shared across the emergence engine:
// immutable component definitions, instantiated threat components, pairwise
// interaction results, discovered emergent behaviors, and the composed
// threat aggregate that owns them.
//
// Definitions are registry-owned and immutable once registered. Instances,
// interaction results, and behaviors are owned exclusively by the composed
// threat that created them and are destroyed as a unit with it.
//
// All scoring scalars (compatibility, synergy, conflict, emergent potential)
// are clamped to [0,1] at construction. JSON tags describe the in-memory
// shape consumed by downstream persistence and visualization layers; the
// engine itself owns no file format.
package types
