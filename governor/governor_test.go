package governor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		HighWater:    10 * time.Millisecond,
		LowWater:     2 * time.Millisecond,
		DemoteAfter:  3,
		PromoteAfter: 2,
	}
}

func TestStartsAtFull(t *testing.T) {
	g := New(testConfig())
	assert.Equal(t, QualityFull, g.Quality())

	b := g.Budget()
	assert.Equal(t, DefaultFullBuckets, b.Buckets)
	assert.Equal(t, 0, b.MaxGroupSize)
	assert.False(t, b.SkipDiscovery)
}

func TestDemotionRequiresConsecutiveOverruns(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond
	fast := time.Millisecond

	g.Observe(slow)
	g.Observe(slow)
	assert.Equal(t, QualityFull, g.Quality())

	// A fast sample breaks the streak.
	g.Observe(fast)
	g.Observe(slow)
	g.Observe(slow)
	assert.Equal(t, QualityFull, g.Quality())

	g.Observe(slow)
	assert.Equal(t, QualityReduced, g.Quality())
}

func TestDemotionDescendsOneStepAtATime(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	assert.Equal(t, QualityReduced, g.Quality())

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	assert.Equal(t, QualityMinimal, g.Quality())

	// Already at the floor; further overruns change nothing.
	for i := 0; i < 6; i++ {
		g.Observe(slow)
	}
	assert.Equal(t, QualityMinimal, g.Quality())
}

func TestPromotionRequiresConsecutiveHeadroom(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond
	fast := time.Millisecond

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	assert.Equal(t, QualityReduced, g.Quality())

	g.Observe(fast)
	assert.Equal(t, QualityReduced, g.Quality())
	g.Observe(fast)
	assert.Equal(t, QualityFull, g.Quality())
}

func TestMiddleBandResetsBothStreaks(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond
	middling := 5 * time.Millisecond

	g.Observe(slow)
	g.Observe(slow)
	g.Observe(middling)
	g.Observe(slow)
	g.Observe(slow)
	assert.Equal(t, QualityFull, g.Quality())

	s := g.State()
	assert.Equal(t, 2, s.OverStreak)
	assert.Equal(t, 0, s.UnderStreak)
}

func TestBudgetPerQuality(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	b := g.Budget()
	assert.Equal(t, 1, b.Buckets)
	assert.Equal(t, DefaultReducedGroupSize, b.MaxGroupSize)
	assert.False(t, b.SkipDiscovery)

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	b = g.Budget()
	assert.Equal(t, 1, b.Buckets)
	assert.True(t, b.SkipDiscovery)
}

func TestNoOscillationAroundHighWater(t *testing.T) {
	// Alternating just-over and just-under samples must never move the
	// state: each direction keeps resetting the other streak.
	g := New(testConfig())
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			g.Observe(11 * time.Millisecond)
		} else {
			g.Observe(time.Millisecond)
		}
	}
	assert.Equal(t, QualityFull, g.Quality())
}

func TestSnapshotCountsTransitions(t *testing.T) {
	g := New(testConfig())
	slow := 20 * time.Millisecond
	fast := time.Millisecond

	for i := 0; i < 3; i++ {
		g.Observe(slow)
	}
	for i := 0; i < 2; i++ {
		g.Observe(fast)
	}

	s := g.State()
	assert.Equal(t, 1, s.Demotions)
	assert.Equal(t, 1, s.Promotions)
	assert.Equal(t, QualityFull, s.Quality)
}

func TestPlanPairsQualityWithItsBudget(t *testing.T) {
	cfg := testConfig()
	g := New(cfg)

	expected := map[Quality]Budget{
		QualityFull:    {Buckets: DefaultFullBuckets},
		QualityReduced: {Buckets: 1, MaxGroupSize: DefaultReducedGroupSize},
		QualityMinimal: {Buckets: 1, SkipDiscovery: true},
	}

	// Walk the state machine down through every quality, checking the
	// atomic pair at each step.
	for steps := 0; steps <= 2; steps++ {
		quality, budget := g.Plan()
		assert.Equal(t, Quality(steps), quality)
		assert.Equal(t, expected[quality], budget)
		for i := 0; i < cfg.DemoteAfter; i++ {
			g.Observe(cfg.HighWater + time.Millisecond)
		}
	}
}

func TestPlanConsistentUnderConcurrentObserve(t *testing.T) {
	cfg := testConfig()
	g := New(cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2000; i++ {
			if i%2 == 0 {
				g.Observe(cfg.HighWater + time.Millisecond)
			} else {
				g.Observe(cfg.LowWater - time.Millisecond)
			}
		}
	}()

	for i := 0; i < 2000; i++ {
		quality, budget := g.Plan()
		switch quality {
		case QualityFull:
			assert.Equal(t, DefaultFullBuckets, budget.Buckets)
			assert.False(t, budget.SkipDiscovery)
		case QualityReduced:
			assert.Equal(t, 1, budget.Buckets)
			assert.Equal(t, DefaultReducedGroupSize, budget.MaxGroupSize)
		case QualityMinimal:
			assert.Equal(t, 1, budget.Buckets)
			assert.True(t, budget.SkipDiscovery)
		}
	}
	<-done
}

func TestQualityString(t *testing.T) {
	assert.Equal(t, "full", QualityFull.String())
	assert.Equal(t, "reduced", QualityReduced.String())
	assert.Equal(t, "minimal", QualityMinimal.String())
	assert.Equal(t, "unknown", Quality(9).String())
}
