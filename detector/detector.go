package detector

import (
	"github.com/c360/emergence/governor"
	"github.com/c360/emergence/types"
)

// Defaults applied by New.
const (
	DefaultActivationThreshold = 0.6
	DefaultMaxGroupSize        = 5

	// minGroupSize is fixed: pairwise effects belong to the calculator, so
	// emergence starts at three components.
	minGroupSize = 3
)

// Config tunes discovery. Zero fields fall back to defaults.
type Config struct {
	// ActivationThreshold is the aggregate score a group must reach to emit
	// behaviors.
	ActivationThreshold float64 `json:"activation_threshold" yaml:"activation_threshold"`

	// MaxGroupSize bounds the group search independent of the budget.
	MaxGroupSize int `json:"max_group_size" yaml:"max_group_size"`
}

func (c *Config) applyDefaults() {
	if c.ActivationThreshold <= 0 {
		c.ActivationThreshold = DefaultActivationThreshold
	}
	if c.MaxGroupSize <= 0 {
		c.MaxGroupSize = DefaultMaxGroupSize
	}
}

// Detector evaluates component groups against the archetype catalog.
// Stateless after construction and safe for concurrent use.
type Detector struct {
	cfg        Config
	archetypes []archetype
}

// New creates a detector with the fixed archetype catalog.
func New(cfg Config) *Detector {
	cfg.applyDefaults()
	return &Detector{cfg: cfg, archetypes: catalog()}
}

// Result carries the discovered behaviors plus discovery accounting.
type Result struct {
	Behaviors       []types.EmergentBehavior
	GroupsEvaluated int
}

// Discover enumerates groups of size 3 up to the smaller of the configured
// and budgeted maximum, scores each against the complete interaction
// matrix, and returns behaviors for every group/archetype match at or
// above the activation threshold. The input slices are read only.
//
// Components are taken in their given order; enumeration is lexicographic
// over indices, so discovery is deterministic for a fixed input order.
func (d *Detector) Discover(
	components []*types.ThreatComponent,
	interactions []types.InteractionResult,
	budget governor.Budget,
) Result {
	if budget.SkipDiscovery || len(components) < minGroupSize {
		return Result{}
	}

	maxSize := d.cfg.MaxGroupSize
	if budget.MaxGroupSize > 0 && budget.MaxGroupSize < maxSize {
		maxSize = budget.MaxGroupSize
	}
	if maxSize > len(components) {
		maxSize = len(components)
	}

	matrix := indexInteractions(interactions)

	var res Result
	for size := minGroupSize; size <= maxSize; size++ {
		forEachGroup(len(components), size, func(indices []int) {
			group := make([]*types.ThreatComponent, size)
			for i, idx := range indices {
				group[i] = components[idx]
			}
			pairs, complete := matrix.pairsOf(group)
			if !complete {
				return
			}
			res.GroupsEvaluated++

			score := groupScore(pairs, size)
			if score < d.cfg.ActivationThreshold {
				return
			}
			for _, a := range d.archetypes {
				if a.matches(group, pairs) {
					res.Behaviors = append(res.Behaviors, makeBehavior(a, group, score))
				}
			}
		})
	}
	return res
}

// groupScore is the mean pairwise emergent potential weighted down as the
// group grows, so large groups must be uniformly strong to activate.
func groupScore(pairs []types.InteractionResult, size int) float64 {
	if len(pairs) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pairs {
		sum += p.EmergentPotential
	}
	mean := sum / float64(len(pairs))
	return types.Clamp01(mean * (float64(minGroupSize) / float64(size)))
}

// forEachGroup visits every size-k index combination of [0,n) in
// lexicographic order.
func forEachGroup(n, k int, visit func(indices []int)) {
	if k > n {
		return
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		visit(indices)

		// Advance to the next combination.
		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}

// pairKey is an unordered instance-id pair.
type pairKey struct {
	a, b string
}

func newPairKey(idA, idB string) pairKey {
	if idB < idA {
		idA, idB = idB, idA
	}
	return pairKey{a: idA, b: idB}
}

type interactionIndex map[pairKey]types.InteractionResult

func indexInteractions(interactions []types.InteractionResult) interactionIndex {
	idx := make(interactionIndex, len(interactions))
	for _, r := range interactions {
		idx[newPairKey(r.ComponentA, r.ComponentB)] = r
	}
	return idx
}

// pairsOf collects the group's pairwise results in enumeration order.
// complete is false when any pair is missing from the matrix, which only
// happens on malformed input; such groups are skipped rather than scored
// on partial data.
func (idx interactionIndex) pairsOf(group []*types.ThreatComponent) (pairs []types.InteractionResult, complete bool) {
	pairs = make([]types.InteractionResult, 0, len(group)*(len(group)-1)/2)
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			r, ok := idx[newPairKey(group[i].ID, group[j].ID)]
			if !ok {
				return nil, false
			}
			pairs = append(pairs, r)
		}
	}
	return pairs, true
}
