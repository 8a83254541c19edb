package types

// ImpactLevel grades the severity of an emergent behavior.
type ImpactLevel string

// Known impact levels.
const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// EmergentBehavior is a higher-order effect discovered only when a
// qualifying group of components co-occurs. Created exclusively by the
// detector, owned by the composed threat, never shared across threats.
//
// Invariant: Components has size >= 2 and references only instances present
// in the same composed threat. ID is content-derived so identical inputs
// yield identical behaviors across runs.
type EmergentBehavior struct {
	ID          string      `json:"id"`
	Archetype   string      `json:"archetype"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Impact      ImpactLevel `json:"impact"`

	// Complexity grows with group size; Predictability falls as the
	// activation score rises.
	Complexity     float64 `json:"complexity"`
	Predictability float64 `json:"predictability"`

	// Components holds contributing instance ids in deterministic order.
	Components []string `json:"components"`

	// ActivationScore is the aggregate emergent potential that crossed the
	// activation threshold.
	ActivationScore float64 `json:"activation_score"`
}
