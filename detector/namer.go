package detector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/c360/emergence/types"
)

// behaviorNamespace seeds content-derived behavior ids. Changing it would
// change every behavior id, so it is fixed.
var behaviorNamespace = uuid.MustParse("8f3c6f40-2b1a-5e96-9b52-1d1f6a0c6b7e")

// makeBehavior renders one behavior for a matched group. Everything here is
// derived from the archetype, the member set, and the score; no randomness
// and no clock, so reruns reproduce ids, names, and descriptions exactly.
func makeBehavior(a archetype, group []*types.ThreatComponent, score float64) types.EmergentBehavior {
	ids := make([]string, len(group))
	memberTypes := make([]string, len(group))
	for i, c := range group {
		ids[i] = c.ID
		memberTypes[i] = c.Type
	}
	sort.Strings(ids)
	sort.Strings(memberTypes)

	return types.EmergentBehavior{
		ID:              behaviorID(a.id, ids),
		Archetype:       a.id,
		Name:            behaviorName(a, group),
		Description:     behaviorDescription(a, memberTypes, score),
		Impact:          impactOf(score),
		Complexity:      complexityOf(len(group)),
		Predictability:  types.Clamp01(1 - score),
		Components:      ids,
		ActivationScore: score,
	}
}

// behaviorID derives a stable UUID from the archetype and the sorted member
// ids, so the same group activating the same archetype always yields the
// same behavior id.
func behaviorID(archetypeID string, sortedMemberIDs []string) string {
	content := archetypeID + "|" + strings.Join(sortedMemberIDs, ",")
	return uuid.NewSHA1(behaviorNamespace, []byte(content)).String()
}

// behaviorName templates a short human-readable name from the archetype
// label and the domains the group spans.
func behaviorName(a archetype, group []*types.ThreatComponent) string {
	seen := make(map[types.Domain]bool, len(group))
	var domains []string
	for _, c := range group {
		if !seen[c.Domain] {
			seen[c.Domain] = true
			domains = append(domains, string(c.Domain))
		}
	}
	sort.Strings(domains)
	return fmt.Sprintf("%s (%s)", a.label, strings.Join(domains, " / "))
}

func behaviorDescription(a archetype, sortedMemberTypes []string, score float64) string {
	return fmt.Sprintf("%s across %s at activation %.2f",
		a.label, strings.Join(sortedMemberTypes, ", "), score)
}

// impactOf grades the activation score. Thresholds sit above the default
// activation threshold so that barely-activated groups read as low impact.
func impactOf(score float64) types.ImpactLevel {
	switch {
	case score >= 0.9:
		return types.ImpactCritical
	case score >= 0.8:
		return types.ImpactHigh
	case score >= 0.7:
		return types.ImpactMedium
	default:
		return types.ImpactLow
	}
}

// complexityOf scales group size onto [0,1]: the minimum group is the
// simplest emergent structure, growth saturates at seven members.
func complexityOf(size int) float64 {
	return types.Clamp01(float64(size-minGroupSize+1) / 5)
}
