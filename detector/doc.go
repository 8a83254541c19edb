// Package detector discovers emergent behaviors: higher-order effects that
// appear only when qualifying groups of three or more components co-occur
// in a composed threat.
//
// Discovery runs over the complete pairwise interaction matrix, never over
// partial data. Candidate groups are enumerated in lexicographic index
// order, each group is scored from the mean pairwise emergent potential
// with a size penalty, and groups at or above the activation threshold
// emit exactly one behavior per matched archetype from a fixed catalog.
// Nothing on the discovery path draws randomness: the same components and
// interaction matrix always produce the same behaviors with the same ids,
// names, and order. Naming is a pure rendering concern layered on top of
// scoring; changing a template never changes which groups activate.
package detector
