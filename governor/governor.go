package governor

import (
	"sync"
	"time"
)

// Quality is the governor's fidelity level. The numeric order matters:
// higher values mean lower fidelity, and transitions move one step at a
// time.
type Quality int

// Quality states, best fidelity first.
const (
	QualityFull Quality = iota
	QualityReduced
	QualityMinimal
)

// String returns the string representation of a quality state.
func (q Quality) String() string {
	switch q {
	case QualityFull:
		return "full"
	case QualityReduced:
		return "reduced"
	case QualityMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// Budget tells the calculator and detector how much fidelity the current
// quality state affords.
type Budget struct {
	// Buckets is the number of context quantization buckets the
	// calculator may use.
	Buckets int

	// MaxGroupSize caps the detector's group search; 0 means unbounded.
	MaxGroupSize int

	// SkipDiscovery disables emergent-behavior discovery entirely.
	SkipDiscovery bool
}

// Config tunes the governor. Zero fields fall back to defaults.
type Config struct {
	// HighWater is the composition time above which a sample counts
	// toward demotion.
	HighWater time.Duration `json:"high_water" yaml:"high_water"`

	// LowWater is the composition time below which a sample counts
	// toward promotion.
	LowWater time.Duration `json:"low_water" yaml:"low_water"`

	// DemoteAfter is the number of consecutive over-budget samples
	// required to degrade one quality step.
	DemoteAfter int `json:"demote_after" yaml:"demote_after"`

	// PromoteAfter is the number of consecutive under-budget samples
	// required to recover one quality step.
	PromoteAfter int `json:"promote_after" yaml:"promote_after"`

	// FullBuckets is the context quantization granularity at FULL quality.
	FullBuckets int `json:"full_buckets" yaml:"full_buckets"`

	// ReducedGroupSize caps detector group size at REDUCED quality.
	ReducedGroupSize int `json:"reduced_group_size" yaml:"reduced_group_size"`
}

// Defaults applied by New.
const (
	DefaultHighWater        = 8 * time.Millisecond
	DefaultLowWater         = 2 * time.Millisecond
	DefaultDemoteAfter      = 3
	DefaultPromoteAfter     = 5
	DefaultFullBuckets      = 5
	DefaultReducedGroupSize = 3
)

func (c *Config) applyDefaults() {
	if c.HighWater <= 0 {
		c.HighWater = DefaultHighWater
	}
	if c.LowWater <= 0 {
		c.LowWater = DefaultLowWater
	}
	if c.DemoteAfter <= 0 {
		c.DemoteAfter = DefaultDemoteAfter
	}
	if c.PromoteAfter <= 0 {
		c.PromoteAfter = DefaultPromoteAfter
	}
	if c.FullBuckets <= 0 {
		c.FullBuckets = DefaultFullBuckets
	}
	if c.ReducedGroupSize <= 0 {
		c.ReducedGroupSize = DefaultReducedGroupSize
	}
}

// Governor is the adaptive compute-budget state machine. Safe for
// concurrent use; engines sharing one governor converge on a common
// quality state.
type Governor struct {
	mu  sync.Mutex
	cfg Config

	quality     Quality
	overStreak  int
	underStreak int

	demotions  int
	promotions int
}

// New creates a governor starting at FULL quality.
func New(cfg Config) *Governor {
	cfg.applyDefaults()
	return &Governor{cfg: cfg}
}

// Quality returns the current quality state.
func (g *Governor) Quality() Quality {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.quality
}

// Budget maps the current quality state to calculation fidelity limits.
func (g *Governor) Budget() Budget {
	_, budget := g.Plan()
	return budget
}

// Plan returns the current quality state together with its budget from a
// single read of the state, so a concurrent Observe can never slip between
// the two and hand a caller a budget that mismatches the quality it
// records.
func (g *Governor) Plan() (Quality, Budget) {
	g.mu.Lock()
	quality := g.quality
	g.mu.Unlock()
	return quality, g.budgetFor(quality)
}

// budgetFor maps a quality state to its fidelity limits. Config is
// immutable after New, so no lock is needed.
func (g *Governor) budgetFor(quality Quality) Budget {
	switch quality {
	case QualityReduced:
		return Budget{Buckets: 1, MaxGroupSize: g.cfg.ReducedGroupSize}
	case QualityMinimal:
		return Budget{Buckets: 1, SkipDiscovery: true}
	default:
		return Budget{Buckets: g.cfg.FullBuckets}
	}
}

// Observe feeds one composition's calculation time into the state machine
// and returns the (possibly changed) quality state. Samples between the
// water marks reset both streaks, so only sustained pressure or sustained
// headroom moves the state.
func (g *Governor) Observe(elapsed time.Duration) Quality {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch {
	case elapsed > g.cfg.HighWater:
		g.overStreak++
		g.underStreak = 0
		if g.overStreak >= g.cfg.DemoteAfter && g.quality < QualityMinimal {
			g.quality++
			g.overStreak = 0
			g.demotions++
		}
	case elapsed < g.cfg.LowWater:
		g.underStreak++
		g.overStreak = 0
		if g.underStreak >= g.cfg.PromoteAfter && g.quality > QualityFull {
			g.quality--
			g.underStreak = 0
			g.promotions++
		}
	default:
		g.overStreak = 0
		g.underStreak = 0
	}

	return g.quality
}

// Snapshot reports the governor's state for metrics and debugging.
type Snapshot struct {
	Quality     Quality `json:"quality"`
	OverStreak  int     `json:"over_streak"`
	UnderStreak int     `json:"under_streak"`
	Demotions   int     `json:"demotions"`
	Promotions  int     `json:"promotions"`
}

// State returns a point-in-time snapshot.
func (g *Governor) State() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		Quality:     g.quality,
		OverStreak:  g.overStreak,
		UnderStreak: g.underStreak,
		Demotions:   g.demotions,
		Promotions:  g.promotions,
	}
}
