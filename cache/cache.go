package cache

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/c360/emergence/errors"
	"github.com/c360/emergence/metric"
	"github.com/c360/emergence/types"
)

// Defaults applied by New when the config leaves fields zero.
const (
	DefaultCapacity = 1024
	DefaultTTL      = 5 * time.Second

	// evictBatchFraction is the share of entries removed in one capacity
	// eviction, oldest last-access first.
	evictBatchFraction = 0.2
)

// Config bounds the cache.
type Config struct {
	Capacity int           `json:"capacity" yaml:"capacity"`
	TTL      time.Duration `json:"ttl" yaml:"ttl"`
}

// Option configures cache behavior using the functional options pattern.
type Option func(*cacheOptions)

type cacheOptions struct {
	metricsReg    metric.Registrar
	metricsPrefix string
}

// WithMetrics enables Prometheus metrics export for cache statistics,
// registering through any metric.Registrar. If registry is nil or prefix
// empty, the option is ignored.
func WithMetrics(registry metric.Registrar, prefix string) Option {
	return func(opts *cacheOptions) {
		if registry != nil && prefix != "" {
			opts.metricsReg = registry
			opts.metricsPrefix = prefix
		}
	}
}

// entry is one cached interaction result with its eviction bookkeeping.
type entry struct {
	result     types.InteractionResult
	createdAt  time.Time
	accessedAt time.Time
}

// Cache is the bounded, TTL-expiring interaction result store.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*entry
	stats    *Statistics   // always initialized
	metrics  *cacheMetrics // optional, if metrics enabled

	// now is swappable so expiry is testable without wall-clock sleeps.
	now func() time.Time
}

// New creates an interaction cache. Zero config fields fall back to
// DefaultCapacity and DefaultTTL; a negative capacity or TTL is invalid.
func New(cfg Config, opts ...Option) (*Cache, error) {
	if cfg.Capacity < 0 || cfg.TTL < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: capacity %d, ttl %s", errors.ErrInvalidConfig, cfg.Capacity, cfg.TTL),
			"Cache", "New", "config validation")
	}
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}

	var options cacheOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var metrics *cacheMetrics
	if options.metricsReg != nil {
		var err error
		metrics, err = newCacheMetrics(options.metricsReg, options.metricsPrefix)
		if err != nil {
			return nil, errors.WrapTransient(err, "Cache", "New", "metrics registration")
		}
	}

	return &Cache{
		capacity: cfg.Capacity,
		ttl:      cfg.TTL,
		entries:  make(map[string]*entry, cfg.Capacity),
		stats:    NewStatistics(),
		metrics:  metrics,
		now:      time.Now,
	}, nil
}

// key builds the canonical cache key for a type pair and context bucket.
// Segment lengths lead the payload so type names containing any byte,
// separators included, can never make two distinct pairs collide.
func key(typeA, typeB string, bucket int) string {
	a, b := types.CanonicalPair(typeA, typeB)
	var sb strings.Builder
	sb.Grow(len(a) + len(b) + 16)
	sb.WriteString(strconv.Itoa(len(a)))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(len(b)))
	sb.WriteByte(':')
	sb.WriteString(strconv.Itoa(bucket))
	sb.WriteByte(':')
	sb.WriteString(a)
	sb.WriteString(b)
	return sb.String()
}

// Get returns the cached result for a type pair and bucket. Expired entries
// are removed and reported as misses. Argument order does not matter.
func (c *Cache) Get(typeA, typeB string, bucket int) (types.InteractionResult, bool) {
	k := key(typeA, typeB, bucket)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[k]
	if !exists {
		c.recordMiss()
		return types.InteractionResult{}, false
	}

	if now.Sub(e.createdAt) > c.ttl {
		delete(c.entries, k)
		c.recordExpiration()
		c.recordMiss()
		c.updateSize()
		return types.InteractionResult{}, false
	}

	e.accessedAt = now
	c.recordHit()
	return e.result, true
}

// Put stores an instance-free result under the canonical key, batch-evicting
// the oldest entries first when the cache is full. Results still bound to
// instances are rejected so the cache can never leak identity across
// compositions.
func (c *Cache) Put(typeA, typeB string, bucket int, result types.InteractionResult) error {
	if result.ComponentA != "" || result.ComponentB != "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: result still bound to instances", errors.ErrInvalidKey),
			"Cache", "Put", "result validation")
	}

	k := key(typeA, typeB, bucket)
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.entries[k]; exists {
		e.result = result
		e.createdAt = now
		e.accessedAt = now
		c.recordSet()
		return nil
	}

	if len(c.entries) >= c.capacity {
		c.evictBatch()
	}

	c.entries[k] = &entry{result: result, createdAt: now, accessedAt: now}
	c.recordSet()
	c.updateSize()
	return nil
}

// evictBatch removes the oldest 20% of entries by last access time.
// Must be called with the mutex held.
func (c *Cache) evictBatch() {
	batch := int(float64(c.capacity) * evictBatchFraction)
	if batch < 1 {
		batch = 1
	}

	type victim struct {
		key        string
		accessedAt time.Time
	}
	victims := make([]victim, 0, len(c.entries))
	for k, e := range c.entries {
		victims = append(victims, victim{key: k, accessedAt: e.accessedAt})
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].accessedAt.Equal(victims[j].accessedAt) {
			return victims[i].key < victims[j].key
		}
		return victims[i].accessedAt.Before(victims[j].accessedAt)
	})

	if batch > len(victims) {
		batch = len(victims)
	}
	for _, v := range victims[:batch] {
		delete(c.entries, v.key)
		c.recordEviction()
	}
	c.updateSize()
}

// Size returns the current number of entries, including any not yet
// lazily expired.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry, c.capacity)
	c.updateSize()
}

// Capacity returns the configured maximum entry count.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Stats returns the always-on cache statistics.
func (c *Cache) Stats() *Statistics {
	return c.stats
}

// Tracking helpers keep stats (always) and metrics (optional) in step.

func (c *Cache) recordHit() {
	c.stats.Hit()
	if c.metrics != nil {
		c.metrics.recordHit()
	}
}

func (c *Cache) recordMiss() {
	c.stats.Miss()
	if c.metrics != nil {
		c.metrics.recordMiss()
	}
}

func (c *Cache) recordSet() {
	c.stats.Set()
	if c.metrics != nil {
		c.metrics.recordSet()
	}
}

func (c *Cache) recordEviction() {
	c.stats.Eviction()
	if c.metrics != nil {
		c.metrics.recordEviction()
	}
}

func (c *Cache) recordExpiration() {
	c.stats.Expiration()
	if c.metrics != nil {
		c.metrics.recordExpiration()
	}
}

func (c *Cache) updateSize() {
	c.stats.UpdateSize(int64(len(c.entries)))
	if c.metrics != nil {
		c.metrics.updateSize(len(c.entries))
	}
}
