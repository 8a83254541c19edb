package detector

import (
	"github.com/c360/emergence/types"
)

// Archetype ids, stable across releases: behavior ids are derived from them.
const (
	ArchetypeAmplificationChain   = "amplification-chain"
	ArchetypeMutualEscalation     = "mutual-escalation"
	ArchetypeCrossDomainSynthesis = "cross-domain-synthesis"
)

// escalationFloor is the per-pair level both synergy and conflict must
// reach for a pair to count as mutually escalating.
const escalationFloor = 0.3

// synthesisCompatibilityFloor is the per-pair compatibility required for a
// cross-domain group to count as synthesizing rather than merely coexisting.
const synthesisCompatibilityFloor = 0.5

// archetype is one shape in the fixed catalog. The catalog is code, not
// configuration: adding a shape is a deliberate engine change so that
// discovery stays deterministic across deployments.
type archetype struct {
	id    string
	label string

	// matches inspects a candidate group and its complete pairwise results.
	// It must be a pure function of its inputs.
	matches func(group []*types.ThreatComponent, pairs []types.InteractionResult) bool
}

// catalog returns the archetypes in their fixed evaluation order.
func catalog() []archetype {
	return []archetype{
		{
			id:      ArchetypeAmplificationChain,
			label:   "Amplification Chain",
			matches: matchesAmplificationChain,
		},
		{
			id:      ArchetypeMutualEscalation,
			label:   "Mutual Escalation",
			matches: matchesMutualEscalation,
		},
		{
			id:      ArchetypeCrossDomainSynthesis,
			label:   "Cross-Domain Synthesis",
			matches: matchesCrossDomainSynthesis,
		},
	}
}

// matchesAmplificationChain: every pair reinforces, synergy dominating
// conflict throughout, and at least one pair is an outright amplification.
func matchesAmplificationChain(_ []*types.ThreatComponent, pairs []types.InteractionResult) bool {
	amplified := false
	for _, p := range pairs {
		if p.Synergy <= p.Conflict {
			return false
		}
		if p.Kind == types.KindAmplification {
			amplified = true
		}
	}
	return amplified
}

// matchesMutualEscalation: every pair carries both high synergy and high
// conflict at once, the arms-race shape extended to the whole group.
func matchesMutualEscalation(_ []*types.ThreatComponent, pairs []types.InteractionResult) bool {
	for _, p := range pairs {
		if p.Synergy < escalationFloor || p.Conflict < escalationFloor {
			return false
		}
	}
	return len(pairs) > 0
}

// matchesCrossDomainSynthesis: the group spans at least two domains and
// every pair is compatible enough to combine across the boundary.
func matchesCrossDomainSynthesis(group []*types.ThreatComponent, pairs []types.InteractionResult) bool {
	domains := make(map[types.Domain]struct{}, len(group))
	for _, c := range group {
		domains[c.Domain] = struct{}{}
	}
	if len(domains) < 2 {
		return false
	}
	for _, p := range pairs {
		if p.Compatibility < synthesisCompatibilityFloor {
			return false
		}
	}
	return true
}
