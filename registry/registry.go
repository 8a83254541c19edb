package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/types"
)

// RegisterOption configures a single Register call.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	override bool
}

// Override allows Register to replace an existing definition of the same
// type. Without it, re-registering a type fails with ErrDuplicateType.
func Override() RegisterOption {
	return func(o *registerOptions) {
		o.override = true
	}
}

// Registry manages immutable component definitions. It is safe for
// concurrent use: lookups take the read lock, registration the write lock.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*types.ComponentDefinition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]*types.ComponentDefinition),
	}
}

// Register validates and stores a definition. Re-registering an existing
// type fails with ErrDuplicateType unless Override() is supplied.
func (r *Registry) Register(def *types.ComponentDefinition, opts ...RegisterOption) error {
	if err := def.Validate(); err != nil {
		return errors.Wrap(err, "Registry", "Register", "definition validation")
	}

	var options registerOptions
	for _, opt := range opts {
		opt(&options)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[def.Type]; exists && !options.override {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrDuplicateType, def.Type),
			"Registry", "Register", "duplicate type check")
	}

	r.definitions[def.Type] = def.Clone()
	return nil
}

// Definition returns a deep copy of the definition for the given type.
func (r *Registry) Definition(typeName string) (*types.ComponentDefinition, bool) {
	r.mu.RLock()
	def, exists := r.definitions[typeName]
	r.mu.RUnlock()

	if !exists {
		return nil, false
	}
	return def.Clone(), true
}

// Types returns all registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.definitions)
}

// Instantiate creates a new threat component of the given type, merging
// overrides onto declared defaults. Values outside the declared range are
// clamped and reported as non-fatal warnings. Overrides naming undeclared
// properties fail with ErrUnknownProperty; unregistered types fail with
// ErrUnknownType.
func (r *Registry) Instantiate(
	typeName string, overrides map[string]float64,
) (*types.ThreatComponent, []types.Warning, error) {
	r.mu.RLock()
	def, exists := r.definitions[typeName]
	r.mu.RUnlock()

	if !exists {
		return nil, nil, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownType, typeName),
			"Registry", "Instantiate", "definition lookup")
	}

	// The property schema is closed: reject overrides for properties the
	// definition never declared.
	for name := range overrides {
		if _, declared := def.Properties[name]; !declared {
			return nil, nil, errors.WrapInvalid(
				fmt.Errorf("%w: %q for type %q", errors.ErrUnknownProperty, name, typeName),
				"Registry", "Instantiate", "override validation")
		}
	}

	properties := make(map[string]float64, len(def.Properties))
	var warnings []types.Warning
	for name, spec := range def.Properties {
		value := spec.Default
		if override, ok := overrides[name]; ok {
			clamped, inRange := spec.Clamp(override)
			if !inRange {
				warnings = append(warnings, types.Warning{
					ComponentType: typeName,
					Property:      name,
					Value:         override,
					Min:           spec.Min,
					Max:           spec.Max,
				})
			}
			value = clamped
		}
		properties[name] = value
	}

	// Warnings are collected in map order above; sort for determinism.
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Property < warnings[j].Property
	})

	return &types.ThreatComponent{
		ID:                 uuid.NewString(),
		Type:               typeName,
		Domain:             def.Domain,
		Properties:         properties,
		EmergencePotential: types.Clamp01(def.EmergencePotential),
	}, warnings, nil
}

// Affinity returns the declared interaction prior between two types as a
// symmetric signed scalar. When both directions are declared the mean is
// used; undeclared pairs (or unknown types) return the neutral 0. This is
// a static, side-effect-free read.
func (r *Registry) Affinity(typeA, typeB string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum float64
	var declared int
	if def, ok := r.definitions[typeA]; ok {
		if prior, ok := def.Affinities[typeB]; ok {
			sum += prior
			declared++
		}
	}
	if def, ok := r.definitions[typeB]; ok {
		if prior, ok := def.Affinities[typeA]; ok {
			sum += prior
			declared++
		}
	}

	if declared == 0 {
		return 0
	}
	return sum / float64(declared)
}
