package calculator

import (
	"fmt"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/types"
)

// ScoringVersionV1 identifies the current combining formula. Bump when the
// shape of the formula changes, not when weights are retuned.
const ScoringVersionV1 = "v1"

// quantLevels is the per-side property quantization granularity feeding
// the cache signature. Finer levels mean more cache entries and more
// context sensitivity.
const quantLevels = 8

// ScoringConfig declares the weights of the versioned combining formula.
// All weights are configuration, not physics; DefaultScoring documents the
// tuned baseline.
type ScoringConfig struct {
	Version string `json:"version" yaml:"version"`

	// Compatibility weights
	AffinityWeight float64 `json:"affinity_weight" yaml:"affinity_weight"`
	DomainWeight   float64 `json:"domain_weight" yaml:"domain_weight"`

	// Synergy weights
	SynergyBase        float64 `json:"synergy_base" yaml:"synergy_base"`
	TransmissionWeight float64 `json:"transmission_weight" yaml:"transmission_weight"`

	// Conflict weights
	ConflictBase  float64 `json:"conflict_base" yaml:"conflict_base"`
	DefenseWeight float64 `json:"defense_weight" yaml:"defense_weight"`

	// Classification thresholds
	ArmsRaceFloor   float64 `json:"arms_race_floor" yaml:"arms_race_floor"`
	DominanceMargin float64 `json:"dominance_margin" yaml:"dominance_margin"`

	// Side-effect emission
	SideEffectThreshold float64 `json:"side_effect_threshold" yaml:"side_effect_threshold"`
	SideEffectScale     float64 `json:"side_effect_scale" yaml:"side_effect_scale"`
}

// DefaultScoring returns the v1 baseline weights.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Version:             ScoringVersionV1,
		AffinityWeight:      0.5,
		DomainWeight:        0.15,
		SynergyBase:         0.2,
		TransmissionWeight:  0.6,
		ConflictBase:        0.15,
		DefenseWeight:       0.6,
		ArmsRaceFloor:       0.35,
		DominanceMargin:     0.1,
		SideEffectThreshold: 0.55,
		SideEffectScale:     0.05,
	}
}

// Validate rejects configurations the formula cannot work with.
func (c ScoringConfig) Validate() error {
	if c.Version != ScoringVersionV1 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: unsupported scoring version %q", errors.ErrInvalidConfig, c.Version),
			"ScoringConfig", "Validate", "version check")
	}
	weights := map[string]float64{
		"affinity_weight":       c.AffinityWeight,
		"domain_weight":         c.DomainWeight,
		"synergy_base":          c.SynergyBase,
		"transmission_weight":   c.TransmissionWeight,
		"conflict_base":         c.ConflictBase,
		"defense_weight":        c.DefenseWeight,
		"arms_race_floor":       c.ArmsRaceFloor,
		"dominance_margin":      c.DominanceMargin,
		"side_effect_threshold": c.SideEffectThreshold,
		"side_effect_scale":     c.SideEffectScale,
	}
	for name, w := range weights {
		if w < 0 {
			return errors.WrapInvalid(
				fmt.Errorf("%w: negative weight %s", errors.ErrInvalidConfig, name),
				"ScoringConfig", "Validate", "weight check")
		}
	}
	return nil
}

// domainRelation is the static compatibility prior between two domains:
// same domain reinforces, related domains combine, unrelated ones are
// neutral. Symmetric by construction.
func domainRelation(a, b types.Domain) float64 {
	if a == b {
		return 0.5
	}
	related := map[[2]types.Domain]bool{
		{types.DomainBiological, types.DomainEnvironmental}: true,
		{types.DomainBiological, types.DomainSocial}:        true,
		{types.DomainCyber, types.DomainPhysical}:           true,
		{types.DomainCyber, types.DomainEconomic}:           true,
		{types.DomainEnvironmental, types.DomainPhysical}:   true,
		{types.DomainEconomic, types.DomainSocial}:          true,
	}
	if related[[2]types.Domain{a, b}] || related[[2]types.Domain{b, a}] {
		return 0.25
	}
	return 0
}

// sideProfile is one component's quantized scoring input: the mean of its
// transmission-role and defense-role property values, normalized to the
// declared ranges and snapped to quantLevels representatives.
type sideProfile struct {
	transmission float64
	defense      float64
}

// signature packs the profile into the cache signature.
func (p sideProfile) signature() int {
	return quantizeLevel(p.transmission)*(quantLevels+1) + quantizeLevel(p.defense)
}

// quantizeLevel snaps v in [0,1] to one of quantLevels+1 discrete levels.
func quantizeLevel(v float64) int {
	level := int(types.Clamp01(v)*quantLevels + 0.5)
	if level > quantLevels {
		level = quantLevels
	}
	return level
}

// quantized returns the profile rebuilt from its own representatives, so
// scoring consumes exactly what the cache signature encodes.
func (p sideProfile) quantized() sideProfile {
	return sideProfile{
		transmission: float64(quantizeLevel(p.transmission)) / quantLevels,
		defense:      float64(quantizeLevel(p.defense)) / quantLevels,
	}
}

// profileOf derives a component's scoring profile from its definition's
// property roles.
func profileOf(def *types.ComponentDefinition, comp *types.ThreatComponent) sideProfile {
	var p sideProfile
	var transmissionCount, defenseCount int

	for name, spec := range def.Properties {
		value, ok := comp.Property(name)
		if !ok {
			continue
		}
		normalized := spec.Normalize(value)
		switch spec.Role {
		case types.RoleTransmission:
			p.transmission += normalized
			transmissionCount++
		case types.RoleDefense:
			p.defense += normalized
			defenseCount++
		}
	}

	if transmissionCount > 0 {
		p.transmission /= float64(transmissionCount)
	}
	if defenseCount > 0 {
		p.defense /= float64(defenseCount)
	}
	return p.quantized()
}

// score applies formula v1 to quantized inputs. All outputs are in [0,1].
func (c ScoringConfig) score(
	affinity, relation, intensity float64,
	first, second sideProfile,
	potentialFirst, potentialSecond float64,
) (compatibility, synergy, conflict, emergent float64) {
	if affinity > 1 {
		affinity = 1
	}
	if affinity < -1 {
		affinity = -1
	}

	compatibility = types.Clamp01(0.5 + c.AffinityWeight*affinity + c.DomainWeight*relation)

	meanTransmission := (first.transmission + second.transmission) / 2
	synergy = types.Clamp01(
		compatibility *
			(c.SynergyBase + c.TransmissionWeight*meanTransmission) *
			(0.5 + 0.5*intensity))

	meanDefense := (first.defense + second.defense) / 2
	conflict = types.Clamp01(c.ConflictBase*(1-compatibility) + c.DefenseWeight*meanDefense)

	// The product of the two individual potentials is the multiplicative
	// floor: zero on either side pins the pair to zero.
	emergent = types.Clamp01(compatibility * potentialFirst * potentialSecond * (1 + synergy))
	return compatibility, synergy, conflict, emergent
}

// classify maps the score balance onto an interaction kind.
func (c ScoringConfig) classify(synergy, conflict float64) types.InteractionKind {
	switch {
	case synergy >= c.ArmsRaceFloor && conflict >= c.ArmsRaceFloor:
		return types.KindArmsRace
	case synergy-conflict >= c.DominanceMargin:
		return types.KindAmplification
	case conflict-synergy >= c.DominanceMargin:
		return types.KindSuppression
	default:
		return types.KindNeutral
	}
}
