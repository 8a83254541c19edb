package calculator

import (
	"fmt"
	"sort"

	"github.com/c360/emergence/cache"
	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/governor"
	"github.com/c360/emergence/types"
)

// DefinitionSource is the slice of the registry the calculator needs: static
// definitions for validation and role lookup, plus the declared affinity
// prior between two types.
type DefinitionSource interface {
	Definition(typeName string) (*types.ComponentDefinition, bool)
	Affinity(typeA, typeB string) float64
}

// Context carries the ambient conditions of a composition. Intensity is the
// overall pressure of the scenario in [0,1]; Modifiers are named signed
// adjustments (policy posture, season, alert level) folded into the
// effective intensity before quantization.
type Context struct {
	Intensity float64            `json:"intensity" yaml:"intensity"`
	Modifiers map[string]float64 `json:"modifiers,omitempty" yaml:"modifiers,omitempty"`
}

// effectiveIntensity folds the mean modifier into the base intensity.
func (c Context) effectiveIntensity() float64 {
	if len(c.Modifiers) == 0 {
		return types.Clamp01(c.Intensity)
	}
	var sum float64
	for _, v := range c.Modifiers {
		sum += v
	}
	return types.Clamp01(c.Intensity + sum/float64(len(c.Modifiers)))
}

// Calculator computes pairwise interaction results, consulting the cache
// first and the scoring formula on a miss. Safe for concurrent use: its own
// state is immutable after construction and the cache is internally locked.
type Calculator struct {
	source  DefinitionSource
	cache   *cache.Cache
	scoring ScoringConfig
}

// New creates a calculator. The cache may be nil, in which case every
// calculation recomputes; results are identical either way.
func New(source DefinitionSource, interactionCache *cache.Cache, scoring ScoringConfig) (*Calculator, error) {
	if source == nil {
		return nil, errors.WrapFatal(
			fmt.Errorf("%w: definition source", errors.ErrMissingConfig),
			"Calculator", "New", "dependency check")
	}
	if err := scoring.Validate(); err != nil {
		return nil, errors.Wrap(err, "Calculator", "New", "scoring validation")
	}
	return &Calculator{source: source, cache: interactionCache, scoring: scoring}, nil
}

// Scoring returns the formula weights in effect.
func (c *Calculator) Scoring() ScoringConfig {
	return c.scoring
}

// Calculate computes the interaction between two component instances under
// the given ambient context and compute budget. The returned result is bound
// to the caller's instances; cached is true when it was served from the
// cache. Calculate(a, b) and Calculate(b, a) return the same scores.
//
// Instances missing a property their definition declares fail with
// ErrInvalidComponentState; such failures are never cached.
func (c *Calculator) Calculate(
	a, b *types.ThreatComponent,
	ictx Context,
	budget governor.Budget,
) (result types.InteractionResult, cached bool, err error) {
	defA, err := c.lookupDefinition(a)
	if err != nil {
		return types.InteractionResult{}, false, err
	}
	defB, err := c.lookupDefinition(b)
	if err != nil {
		return types.InteractionResult{}, false, err
	}
	if err := validateInstance(defA, a); err != nil {
		return types.InteractionResult{}, false, err
	}
	if err := validateInstance(defB, b); err != nil {
		return types.InteractionResult{}, false, err
	}

	// Order inputs canonically so the computation, the cache signature, and
	// the stored result are all independent of argument order.
	first, second := a, b
	firstDef, secondDef := defA, defB
	typeA, typeB := types.CanonicalPair(a.Type, b.Type)
	if a.Type != typeA || (a.Type == b.Type && b.ID < a.ID) {
		first, second = b, a
		firstDef, secondDef = defB, defA
	}

	buckets := budget.Buckets
	if buckets < 1 {
		buckets = 1
	}
	intensityBucket, intensity := quantizeIntensity(ictx.effectiveIntensity(), buckets)
	profileFirst := profileOf(firstDef, first)
	profileSecond := profileOf(secondDef, second)
	signature := contextSignature(intensityBucket, buckets, profileFirst, profileSecond)

	if c.cache != nil {
		if hit, ok := c.cache.Get(typeA, typeB, signature); ok {
			hit.Bind(a, b)
			return hit, true, nil
		}
	}

	affinity := c.source.Affinity(typeA, typeB)
	relation := domainRelation(firstDef.Domain, secondDef.Domain)
	compatibility, synergy, conflict, emergent := c.scoring.score(
		affinity, relation, intensity,
		profileFirst, profileSecond,
		first.EmergencePotential, second.EmergencePotential)

	result = types.InteractionResult{
		TypeA:             typeA,
		TypeB:             typeB,
		Compatibility:     compatibility,
		Synergy:           synergy,
		Conflict:          conflict,
		EmergentPotential: emergent,
		Kind:              c.scoring.classify(synergy, conflict),
	}
	result.SideEffects = c.sideEffects(firstDef, secondDef, synergy, conflict)

	if c.cache != nil {
		// Best effort: a full or misbehaving cache never fails the calculation.
		_ = c.cache.Put(typeA, typeB, signature, result.Unbind())
	}

	result.Bind(a, b)
	return result, false, nil
}

// lookupDefinition resolves an instance's definition, treating an
// unregistered type as invalid component state: the instance cannot be
// scored without its static schema.
func (c *Calculator) lookupDefinition(comp *types.ThreatComponent) (*types.ComponentDefinition, error) {
	def, ok := c.source.Definition(comp.Type)
	if !ok {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %s (instance %s)", errors.ErrUnknownType, comp.Type, comp.ID),
			"Calculator", "Calculate", "definition lookup")
	}
	return def, nil
}

// validateInstance checks the instance carries every property its definition
// declares. Extra instance properties are ignored.
func validateInstance(def *types.ComponentDefinition, comp *types.ThreatComponent) error {
	for _, name := range def.PropertyNames() {
		if _, ok := comp.Property(name); !ok {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %s on instance %s of type %s",
					errors.ErrInvalidComponentState, name, comp.ID, comp.Type),
				"Calculator", "Calculate", "instance validation")
		}
	}
	return nil
}

// quantizeIntensity snaps the effective intensity to one of the budget's
// buckets and returns both the bucket index and its representative value.
// A single-bucket budget always uses the neutral midpoint, which is what
// makes the reduced budget coarse: every context scores alike.
func quantizeIntensity(intensity float64, buckets int) (bucket int, representative float64) {
	if buckets <= 1 {
		return 0, 0.5
	}
	bucket = int(intensity * float64(buckets))
	if bucket > buckets-1 {
		bucket = buckets - 1
	}
	return bucket, float64(bucket) / float64(buckets-1)
}

// contextSignature packs the intensity bucket and both sides' quantized
// profiles into one cache bucket value. Because the scoring inputs are the
// quantized representatives themselves, two calculations sharing a
// signature share their scores exactly, so a cache hit is always
// value-identical to a recompute. A single-bucket budget collapses the
// signature entirely, trading sensitivity for hit rate.
func contextSignature(intensityBucket, buckets int, first, second sideProfile) int {
	if buckets <= 1 {
		return 0
	}
	side := (quantLevels + 1) * (quantLevels + 1)
	return (intensityBucket*side+first.signature())*side + second.signature()
}

// sideEffects derives slot-addressed property deltas from the score balance:
// strong synergy boosts transmission-role properties on both sides, strong
// conflict erodes them. Deltas are emitted in slot order, property names
// sorted, so the result is deterministic.
func (c *Calculator) sideEffects(firstDef, secondDef *types.ComponentDefinition, synergy, conflict float64) []types.PropertyDelta {
	var magnitude float64
	switch {
	case synergy >= c.scoring.SideEffectThreshold:
		magnitude = c.scoring.SideEffectScale * synergy
	case conflict >= c.scoring.SideEffectThreshold:
		magnitude = -c.scoring.SideEffectScale * conflict
	default:
		return nil
	}

	var deltas []types.PropertyDelta
	appendSide := func(slot types.PairSlot, def *types.ComponentDefinition) {
		names := make([]string, 0, len(def.Properties))
		for name, spec := range def.Properties {
			if spec.Role == types.RoleTransmission {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			spec := def.Properties[name]
			deltas = append(deltas, types.PropertyDelta{
				Slot:     slot,
				Property: name,
				Delta:    magnitude,
				Min:      spec.Min,
				Max:      spec.Max,
			})
		}
	}
	appendSide(types.SlotA, firstDef)
	appendSide(types.SlotB, secondDef)
	return deltas
}
