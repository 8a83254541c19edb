package types

import (
	"fmt"
	"time"
)

// Warning records a non-fatal instantiation issue: a supplied property
// override fell outside the declared range and was clamped.
type Warning struct {
	ComponentType string  `json:"component_type"`
	Property      string  `json:"property"`
	Value         float64 `json:"value"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
}

// String renders the warning for logs and metadata.
func (w Warning) String() string {
	return fmt.Sprintf("property %q of %q: value %v clamped to [%v,%v]",
		w.Property, w.ComponentType, w.Value, w.Min, w.Max)
}

// CompositionMetrics is the performance snapshot attached to every
// composed threat: time spent in each stage, cache effectiveness, the
// quality state that produced the result, and fail-soft accounting.
type CompositionMetrics struct {
	TotalTime       time.Duration `json:"total_time"`
	InstantiateTime time.Duration `json:"instantiate_time"`
	CalculateTime   time.Duration `json:"calculate_time"`
	DiscoverTime    time.Duration `json:"discover_time"`

	Pairs         int     `json:"pairs"`
	CacheHits     int     `json:"cache_hits"`
	CacheMisses   int     `json:"cache_misses"`
	CacheHitRatio float64 `json:"cache_hit_ratio"`

	// DegradedPairs counts pairwise calculations absorbed into neutral
	// results after an invalid component state.
	DegradedPairs int `json:"degraded_pairs"`

	// GroupsEvaluated counts candidate groups the detector scored.
	GroupsEvaluated int `json:"groups_evaluated"`

	// Quality is the governor state the composition ran under.
	Quality string `json:"quality"`
}

// ComposedThreat is the aggregate root returned by one engine composition:
// the component instances it owns, the complete pairwise interaction
// matrix, discovered emergent behaviors, clamping warnings, and a
// performance snapshot. Created by one Compose call, destroyed as a unit.
type ComposedThreat struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Components   []*ThreatComponent  `json:"components"`
	Interactions []InteractionResult `json:"interactions"`
	Behaviors    []EmergentBehavior  `json:"behaviors"`
	Warnings     []Warning           `json:"warnings,omitempty"`
	Metrics      CompositionMetrics  `json:"metrics"`
}

// Component returns the owned instance with the given id, or nil.
func (t *ComposedThreat) Component(id string) *ThreatComponent {
	for _, c := range t.Components {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Interaction returns the pairwise result between two owned instances,
// insensitive to argument order.
func (t *ComposedThreat) Interaction(idA, idB string) (InteractionResult, bool) {
	for _, r := range t.Interactions {
		if (r.ComponentA == idA && r.ComponentB == idB) ||
			(r.ComponentA == idB && r.ComponentB == idA) {
			return r, true
		}
	}
	return InteractionResult{}, false
}

// ApplyDeltas materializes interaction side effects onto the owned
// components' property values, clamping each result to the delta's declared
// range so adjusted values never leave [Min,Max]. The pre-adjustment value
// is preserved in the component's state bag under "<property>.base" the
// first time a property is adjusted. Unknown targets are skipped.
func (t *ComposedThreat) ApplyDeltas() int {
	applied := 0
	for _, r := range t.Interactions {
		for _, d := range r.SideEffects {
			c := t.Component(d.Component)
			if c == nil {
				continue
			}
			v, ok := c.Properties[d.Property]
			if !ok {
				continue
			}
			if c.State == nil {
				c.State = make(map[string]float64)
			}
			baseKey := d.Property + ".base"
			if _, seen := c.State[baseKey]; !seen {
				c.State[baseKey] = v
			}
			next := v + d.Delta
			if d.Max > d.Min {
				if next < d.Min {
					next = d.Min
				}
				if next > d.Max {
					next = d.Max
				}
			}
			c.Properties[d.Property] = next
			applied++
		}
	}
	return applied
}
