package types

import (
	"fmt"
	"sort"

	"github.com/c360/emergence/errors"
)

// Domain is the coarse category a component belongs to. It is used as a
// prior for interaction compatibility: same-domain pairs amplify, related
// domains combine, unrelated domains stay neutral.
type Domain string

// Known component domains.
const (
	DomainBiological    Domain = "biological"
	DomainCyber         Domain = "cyber"
	DomainEnvironmental Domain = "environmental"
	DomainEconomic      Domain = "economic"
	DomainSocial        Domain = "social"
	DomainPhysical      Domain = "physical"
)

// Domains lists all valid domains in stable order.
func Domains() []Domain {
	return []Domain{
		DomainBiological,
		DomainCyber,
		DomainEnvironmental,
		DomainEconomic,
		DomainSocial,
		DomainPhysical,
	}
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	for _, known := range Domains() {
		if d == known {
			return true
		}
	}
	return false
}

// PropertyRole tags how a property influences pairwise scoring.
// Transmission-style properties amplify synergy; defensive-style properties
// amplify conflict; neutral properties carry state without affecting scores.
type PropertyRole string

// Known property roles.
const (
	RoleTransmission PropertyRole = "transmission"
	RoleDefense      PropertyRole = "defense"
	RoleNeutral      PropertyRole = "neutral"
)

// Valid reports whether r is a known property role.
func (r PropertyRole) Valid() bool {
	return r == RoleTransmission || r == RoleDefense || r == RoleNeutral
}

// PropertySpec declares one named, typed field of a component's closed
// property schema: its scoring role, default value, and legal range.
type PropertySpec struct {
	Role    PropertyRole `json:"role" yaml:"role"`
	Default float64      `json:"default" yaml:"default"`
	Min     float64      `json:"min" yaml:"min"`
	Max     float64      `json:"max" yaml:"max"`
}

// Clamp forces v into the declared [Min, Max] range. The second return
// value reports whether v was already in range.
func (ps PropertySpec) Clamp(v float64) (float64, bool) {
	if v < ps.Min {
		return ps.Min, false
	}
	if v > ps.Max {
		return ps.Max, false
	}
	return v, true
}

// Normalize maps a concrete value onto [0,1] relative to the declared
// range. Degenerate ranges (Min == Max) normalize to 0.
func (ps PropertySpec) Normalize(v float64) float64 {
	if ps.Max <= ps.Min {
		return 0
	}
	n := (v - ps.Min) / (ps.Max - ps.Min)
	return Clamp01(n)
}

// ComplexityClass estimates how a component's interaction cost scales with
// composition size.
type ComplexityClass string

// Known complexity classes.
const (
	ComplexityConstant  ComplexityClass = "constant"
	ComplexityLinear    ComplexityClass = "linear"
	ComplexityQuadratic ComplexityClass = "quadratic"
)

// PerformanceProfile carries static cost estimates used by capacity
// planning and reporting. The engine reads it but never mutates it.
type PerformanceProfile struct {
	UpdateCost      float64         `json:"update_cost" yaml:"update_cost"`
	MemoryFootprint int             `json:"memory_footprint" yaml:"memory_footprint"`
	Complexity      ComplexityClass `json:"complexity" yaml:"complexity"`
}

// ComponentDefinition is the immutable, registry-owned description of a
// component type: its domain, closed property schema, performance profile,
// declared interaction affinities, and base emergence potential.
type ComponentDefinition struct {
	Type               string                  `json:"type" yaml:"type"`
	Domain             Domain                  `json:"domain" yaml:"domain"`
	Description        string                  `json:"description,omitempty" yaml:"description,omitempty"`
	EmergencePotential float64                 `json:"emergence_potential" yaml:"emergence_potential"`
	Properties         map[string]PropertySpec `json:"properties,omitempty" yaml:"properties,omitempty"`
	Affinities         map[string]float64      `json:"affinities,omitempty" yaml:"affinities,omitempty"`
	Profile            PerformanceProfile      `json:"profile,omitempty" yaml:"profile,omitempty"`
}

// Validate checks structural invariants of a definition before it is
// admitted to a registry.
func (d *ComponentDefinition) Validate() error {
	if d == nil {
		return errors.WrapInvalid(errors.ErrInvalidDefinition, "ComponentDefinition", "Validate", "nil definition")
	}
	if d.Type == "" {
		return errors.WrapInvalid(errors.ErrInvalidDefinition, "ComponentDefinition", "Validate", "empty type")
	}
	if !d.Domain.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown domain %q for type %q", errors.ErrInvalidDefinition, d.Domain, d.Type),
			"ComponentDefinition", "Validate", "domain check")
	}
	if d.EmergencePotential < 0 || d.EmergencePotential > 1 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: emergence potential %v outside [0,1] for type %q",
				errors.ErrInvalidDefinition, d.EmergencePotential, d.Type),
			"ComponentDefinition", "Validate", "emergence potential check")
	}
	for name, spec := range d.Properties {
		if name == "" {
			return errors.WrapInvalid(
				fmt.Errorf("%w: empty property name for type %q", errors.ErrInvalidDefinition, d.Type),
				"ComponentDefinition", "Validate", "property name check")
		}
		if spec.Role != "" && !spec.Role.Valid() {
			return errors.WrapInvalid(
				fmt.Errorf("%w: unknown role %q for property %q of type %q",
					errors.ErrInvalidDefinition, spec.Role, name, d.Type),
				"ComponentDefinition", "Validate", "property role check")
		}
		if spec.Min > spec.Max {
			return errors.WrapInvalid(
				fmt.Errorf("%w: property %q of type %q declares min %v > max %v",
					errors.ErrInvalidDefinition, name, d.Type, spec.Min, spec.Max),
				"ComponentDefinition", "Validate", "property range check")
		}
		if _, ok := spec.Clamp(spec.Default); !ok {
			return errors.WrapInvalid(
				fmt.Errorf("%w: property %q of type %q declares default %v outside [%v,%v]",
					errors.ErrInvalidDefinition, name, d.Type, spec.Default, spec.Min, spec.Max),
				"ComponentDefinition", "Validate", "property default check")
		}
	}
	return nil
}

// Clone returns a deep copy so registry-held definitions stay immutable
// even when callers mutate what they were handed.
func (d *ComponentDefinition) Clone() *ComponentDefinition {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Properties != nil {
		clone.Properties = make(map[string]PropertySpec, len(d.Properties))
		for name, spec := range d.Properties {
			clone.Properties[name] = spec
		}
	}
	if d.Affinities != nil {
		clone.Affinities = make(map[string]float64, len(d.Affinities))
		for target, prior := range d.Affinities {
			clone.Affinities[target] = prior
		}
	}
	return &clone
}

// PropertyNames returns the declared property names in sorted order.
func (d *ComponentDefinition) PropertyNames() []string {
	names := make([]string, 0, len(d.Properties))
	for name := range d.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThreatComponent is one instantiated component, owned exclusively by the
// composed threat that created it. Properties are concrete values clamped
// to the definition's declared ranges; State is a free-form bag for
// downstream consumers.
type ThreatComponent struct {
	ID                 string             `json:"id"`
	Type               string             `json:"type"`
	Domain             Domain             `json:"domain"`
	Properties         map[string]float64 `json:"properties,omitempty"`
	State              map[string]float64 `json:"state,omitempty"`
	EmergencePotential float64            `json:"emergence_potential"`
}

// Property returns a concrete property value and whether it is present.
func (c *ThreatComponent) Property(name string) (float64, bool) {
	v, ok := c.Properties[name]
	return v, ok
}

// Clamp01 forces v into [0,1]. All interaction scalars pass through here.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
