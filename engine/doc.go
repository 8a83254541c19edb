// Package engine orchestrates threat composition: it instantiates the
// requested components, computes the complete pairwise interaction matrix,
// runs emergence discovery, and assembles the resulting composed threat
// with a performance snapshot.
//
// Compose is a pure request/response operation: it owns no state between
// calls beyond its injected collaborators and produces no side effects
// other than the returned threat, metrics, and log lines. Composition time
// is fed to the governor after every call, so sustained pressure degrades
// fidelity on subsequent compositions instead of failing the current one.
package engine
