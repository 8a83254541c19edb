package types

// InteractionKind classifies the shape of a pairwise interaction from the
// signed balance of its synergy and conflict scores.
type InteractionKind string

// Known interaction kinds.
const (
	// KindAmplification: synergy clearly dominates conflict.
	KindAmplification InteractionKind = "amplification"
	// KindArmsRace: both synergy and conflict are simultaneously high,
	// an ambivalent mutual-escalation interaction.
	KindArmsRace InteractionKind = "arms-race"
	// KindSuppression: conflict clearly dominates synergy.
	KindSuppression InteractionKind = "suppression"
	// KindNeutral: neither score dominates.
	KindNeutral InteractionKind = "neutral"
)

// PairSlot addresses one side of a canonical type pair. SlotA always refers
// to the lexicographically smaller type so that cached results carry no
// instance identity and A-B / B-A queries resolve identically.
type PairSlot string

// Canonical pair slots.
const (
	SlotA PairSlot = "a"
	SlotB PairSlot = "b"
)

// PropertyDelta is a side-effect descriptor: a property adjustment to apply
// to one side of the interacting pair. Slot addresses the canonical side;
// Component is the concrete instance id, bound by the calculator when the
// result is attached to real instances (and left empty inside the cache).
// Min/Max carry the property's declared range so applying the delta can
// clamp without a registry lookup; a degenerate range (Max <= Min) means
// the range is unknown and the delta applies unclamped.
type PropertyDelta struct {
	Slot      PairSlot `json:"slot"`
	Component string   `json:"component,omitempty"`
	Property  string   `json:"property"`
	Delta     float64  `json:"delta"`
	Min       float64  `json:"min"`
	Max       float64  `json:"max"`
}

// InteractionResult is the computed interaction between two component
// instances. TypeA/TypeB are stored in canonical order (TypeA <= TypeB);
// ComponentA/ComponentB are the instance ids occupying those slots. The
// four scalars are always in [0,1]. Results are transient: recomputed or
// cache-fetched per query, never persisted beyond the cache.
type InteractionResult struct {
	TypeA      string `json:"type_a"`
	TypeB      string `json:"type_b"`
	ComponentA string `json:"component_a,omitempty"`
	ComponentB string `json:"component_b,omitempty"`

	Compatibility     float64 `json:"compatibility"`
	Synergy           float64 `json:"synergy"`
	Conflict          float64 `json:"conflict"`
	EmergentPotential float64 `json:"emergent_potential"`

	Kind        InteractionKind `json:"kind"`
	SideEffects []PropertyDelta `json:"side_effects,omitempty"`
}

// CanonicalPair orders two type names so the smaller sorts first. Equal
// types stay as given.
func CanonicalPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// Bind attaches concrete instances to a (possibly cache-fetched) result,
// assigning ids to canonical slots and resolving side-effect targets.
// For same-type pairs the instance with the smaller id takes slot A so
// binding stays deterministic.
func (r *InteractionResult) Bind(a, b *ThreatComponent) {
	first, second := a, b
	if a.Type != r.TypeA || (a.Type == b.Type && b.ID < a.ID) {
		first, second = b, a
	}
	r.ComponentA = first.ID
	r.ComponentB = second.ID

	for i := range r.SideEffects {
		switch r.SideEffects[i].Slot {
		case SlotA:
			r.SideEffects[i].Component = first.ID
		case SlotB:
			r.SideEffects[i].Component = second.ID
		}
	}
}

// Unbind strips instance identity so the result can be cached and reused
// across instances of the same type pair.
func (r InteractionResult) Unbind() InteractionResult {
	r.ComponentA = ""
	r.ComponentB = ""
	if len(r.SideEffects) > 0 {
		effects := make([]PropertyDelta, len(r.SideEffects))
		copy(effects, r.SideEffects)
		for i := range effects {
			effects[i].Component = ""
		}
		r.SideEffects = effects
	}
	return r
}

// Involves reports whether the result references the given instance id.
func (r InteractionResult) Involves(id string) bool {
	return r.ComponentA == id || r.ComponentB == id
}

// NeutralResult builds the all-zero fail-soft result recorded when a
// pairwise calculation cannot be completed, so one malformed component
// never blocks discovery among the others.
func NeutralResult(a, b *ThreatComponent) InteractionResult {
	typeA, typeB := CanonicalPair(a.Type, b.Type)
	r := InteractionResult{
		TypeA: typeA,
		TypeB: typeB,
		Kind:  KindNeutral,
	}
	r.Bind(a, b)
	return r
}
