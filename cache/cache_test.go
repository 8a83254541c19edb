package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/c360/emergence/metric"
	"github.com/c360/emergence/types"
)

func newTestCache(t *testing.T, capacity int, ttl time.Duration) *Cache {
	t.Helper()
	c, err := New(Config{Capacity: capacity, TTL: ttl})
	if err != nil {
		t.Fatalf("unexpected error creating cache: %v", err)
	}
	return c
}

func result(synergy float64) types.InteractionResult {
	return types.InteractionResult{
		TypeA:   "drought",
		TypeB:   "wildfire",
		Synergy: synergy,
		Kind:    types.KindAmplification,
	}
}

func TestGetMissThenHit(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	if _, ok := c.Get("drought", "wildfire", 2); ok {
		t.Error("expected miss on empty cache")
	}

	if err := c.Put("drought", "wildfire", 2, result(0.7)); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	got, ok := c.Get("drought", "wildfire", 2)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Synergy != 0.7 {
		t.Errorf("expected synergy 0.7, got %v", got.Synergy)
	}

	if c.Stats().Hits() != 1 || c.Stats().Misses() != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d/%d", c.Stats().Hits(), c.Stats().Misses())
	}
}

func TestKeyCanonicalization(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	if err := c.Put("wildfire", "drought", 0, result(0.5)); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	// Reversed type order and original order hit the same entry.
	if _, ok := c.Get("drought", "wildfire", 0); !ok {
		t.Error("expected hit with canonical order")
	}
	if _, ok := c.Get("wildfire", "drought", 0); !ok {
		t.Error("expected hit with reversed order")
	}

	// A different bucket is a different entry.
	if _, ok := c.Get("wildfire", "drought", 1); ok {
		t.Error("expected miss for different bucket")
	}
}

func TestKeySegmentsCannotCollide(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	// Type names carrying the old separator byte must not fold distinct
	// pairs onto one entry.
	stored := types.InteractionResult{TypeA: "a|b", TypeB: "c", Synergy: 0.9}
	if err := c.Put("a|b", "c", 0, stored); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	if _, ok := c.Get("a", "b|c", 0); ok {
		t.Error("distinct pair (a, b|c) hit the entry for (a|b, c)")
	}

	other := types.InteractionResult{TypeA: "a", TypeB: "b|c", Synergy: 0.2}
	if err := c.Put("a", "b|c", 0, other); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}
	if c.Size() != 2 {
		t.Fatalf("expected 2 independent entries, got %d", c.Size())
	}

	got, ok := c.Get("a|b", "c", 0)
	if !ok || got.Synergy != 0.9 {
		t.Errorf("expected original entry intact, got %+v (ok=%t)", got, ok)
	}
}

func TestPutRejectsBoundResults(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	bound := result(0.5)
	bound.ComponentA = "instance-1"
	if err := c.Put("drought", "wildfire", 0, bound); err == nil {
		t.Error("expected error storing an instance-bound result")
	}
}

func TestTTLExpiryIsLazy(t *testing.T) {
	c := newTestCache(t, 10, time.Second)

	base := time.Now()
	c.now = func() time.Time { return base }

	if err := c.Put("drought", "wildfire", 0, result(0.5)); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	// Still fresh just inside the TTL.
	c.now = func() time.Time { return base.Add(900 * time.Millisecond) }
	if _, ok := c.Get("drought", "wildfire", 0); !ok {
		t.Error("expected hit inside TTL")
	}

	// Past the TTL the entry is a miss and is removed on this lookup.
	c.now = func() time.Time { return base.Add(2 * time.Second) }
	if _, ok := c.Get("drought", "wildfire", 0); ok {
		t.Error("expected miss after TTL")
	}
	if c.Size() != 0 {
		t.Errorf("expected lazy removal, size is %d", c.Size())
	}
	if c.Stats().Expirations() != 1 {
		t.Errorf("expected 1 expiration, got %d", c.Stats().Expirations())
	}
}

func TestCapacityNeverExceeded(t *testing.T) {
	const capacity = 10
	c := newTestCache(t, capacity, time.Minute)

	for i := 0; i < capacity*3; i++ {
		r := types.InteractionResult{TypeA: "a", TypeB: "b"}
		if err := c.Put(fmt.Sprintf("type-%02d", i), "anchor", 0, r); err != nil {
			t.Fatalf("unexpected error on put %d: %v", i, err)
		}
		if c.Size() > capacity {
			t.Fatalf("capacity exceeded after insert %d: size %d", i, c.Size())
		}
	}

	if c.Stats().Evictions() == 0 {
		t.Error("expected evictions after overfilling")
	}
}

func TestBatchEvictionRemovesOldestByAccess(t *testing.T) {
	c := newTestCache(t, 10, time.Hour)

	base := time.Now()
	for i := 0; i < 10; i++ {
		c.now = func() time.Time { return base.Add(time.Duration(i) * time.Second) }
		r := types.InteractionResult{TypeA: "a", TypeB: "b"}
		if err := c.Put(fmt.Sprintf("type-%02d", i), "anchor", 0, r); err != nil {
			t.Fatalf("unexpected error on put: %v", err)
		}
	}

	// Refresh the access time of the two oldest entries.
	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Get("type-00", "anchor", 0)
	c.Get("type-01", "anchor", 0)

	// The next insert triggers one batch eviction of 20% (2 entries): the
	// least recently accessed ones, which are now type-02 and type-03.
	if err := c.Put("type-99", "anchor", 0, types.InteractionResult{TypeA: "a", TypeB: "b"}); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	if _, ok := c.Get("type-00", "anchor", 0); !ok {
		t.Error("recently accessed entry type-00 was evicted")
	}
	if _, ok := c.Get("type-02", "anchor", 0); ok {
		t.Error("oldest entry type-02 survived batch eviction")
	}
	if _, ok := c.Get("type-03", "anchor", 0); ok {
		t.Error("oldest entry type-03 survived batch eviction")
	}
	if got := c.Stats().Evictions(); got != 2 {
		t.Errorf("expected 2 evictions, got %d", got)
	}
}

func TestPutOverwritesInPlace(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)

	if err := c.Put("drought", "wildfire", 0, result(0.3)); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}
	if err := c.Put("drought", "wildfire", 0, result(0.9)); err != nil {
		t.Fatalf("unexpected error on put: %v", err)
	}

	got, ok := c.Get("drought", "wildfire", 0)
	if !ok || got.Synergy != 0.9 {
		t.Errorf("expected overwritten value 0.9, got %v (ok=%t)", got.Synergy, ok)
	}
	if c.Size() != 1 {
		t.Errorf("expected single entry after overwrite, got %d", c.Size())
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)
	_ = c.Put("drought", "wildfire", 0, result(0.5))

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("expected empty cache after clear, got %d", c.Size())
	}
}

func TestInvalidConfig(t *testing.T) {
	if _, err := New(Config{Capacity: -1}); err == nil {
		t.Error("expected error for negative capacity")
	}
	if _, err := New(Config{TTL: -time.Second}); err == nil {
		t.Error("expected error for negative TTL")
	}

	// Zero values fall back to defaults.
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Capacity() != DefaultCapacity {
		t.Errorf("expected default capacity %d, got %d", DefaultCapacity, c.Capacity())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t, 50, time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				typeA := fmt.Sprintf("type-%d", (worker+i)%20)
				r := types.InteractionResult{TypeA: "a", TypeB: "b"}
				_ = c.Put(typeA, "anchor", i%5, r)
				c.Get(typeA, "anchor", i%5)
			}
		}(w)
	}
	wg.Wait()

	if c.Size() > 50 {
		t.Errorf("capacity exceeded under concurrency: %d", c.Size())
	}
}

func TestWithMetricsRegistersThroughRegistrar(t *testing.T) {
	var registrar metric.Registrar = metric.NewMetricsRegistry()

	c, err := New(Config{Capacity: 10, TTL: time.Minute}, WithMetrics(registrar, "test"))
	if err != nil {
		t.Fatalf("unexpected error creating cache with metrics: %v", err)
	}

	_ = c.Put("drought", "wildfire", 0, result(0.5))
	c.Get("drought", "wildfire", 0)

	// The collectors were registered via the interface under the prefix.
	if !registrar.Unregister("test", "cache_hits") {
		t.Error("expected cache_hits registered under prefix")
	}
	if !registrar.Unregister("test", "cache_size") {
		t.Error("expected cache_size registered under prefix")
	}

	// A second cache on the same registrar and prefix collides.
	if _, err := New(Config{Capacity: 10, TTL: time.Minute}, WithMetrics(registrar, "test")); err == nil {
		t.Error("expected duplicate metric registration to fail")
	}
}

func TestStatsSummary(t *testing.T) {
	c := newTestCache(t, 10, time.Minute)
	_ = c.Put("drought", "wildfire", 0, result(0.5))
	c.Get("drought", "wildfire", 0)
	c.Get("drought", "flood", 0)

	s := c.Stats().Summary()
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.HitRatio != 0.5 {
		t.Errorf("expected hit ratio 0.5, got %v", s.HitRatio)
	}

	c.Stats().Reset()
	if c.Stats().Hits() != 0 || c.Stats().HitRatio() != 0 {
		t.Error("expected zeroed stats after reset")
	}
}
