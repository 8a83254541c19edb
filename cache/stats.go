package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks cache performance. Counters use atomics so the hot
// path never contends on the stats themselves.
type Statistics struct {
	hits        int64
	misses      int64
	sets        int64
	evictions   int64
	expirations int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	peakSize    int64
}

// NewStatistics creates a new statistics tracker.
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Hit records a cache hit.
func (s *Statistics) Hit() { atomic.AddInt64(&s.hits, 1) }

// Miss records a cache miss.
func (s *Statistics) Miss() { atomic.AddInt64(&s.misses, 1) }

// Set records a store operation.
func (s *Statistics) Set() { atomic.AddInt64(&s.sets, 1) }

// Eviction records a capacity eviction.
func (s *Statistics) Eviction() { atomic.AddInt64(&s.evictions, 1) }

// Expiration records a lazily removed expired entry.
func (s *Statistics) Expiration() { atomic.AddInt64(&s.expirations, 1) }

// UpdateSize updates the current cache size.
func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	if size > s.peakSize {
		s.peakSize = size
	}
	s.mu.Unlock()
}

// Hits returns the total number of cache hits.
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the total number of cache misses.
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Sets returns the total number of store operations.
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// Evictions returns the total number of capacity evictions.
func (s *Statistics) Evictions() int64 { return atomic.LoadInt64(&s.evictions) }

// Expirations returns the total number of lazily expired entries.
func (s *Statistics) Expirations() int64 { return atomic.LoadInt64(&s.expirations) }

// CurrentSize returns the current number of entries.
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// PeakSize returns the largest entry count the cache has held.
func (s *Statistics) PeakSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peakSize
}

// HitRatio returns hits/(hits+misses) in [0,1]; 0 before any lookups.
func (s *Statistics) HitRatio() float64 {
	hits := s.Hits()
	total := hits + s.Misses()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

// Uptime returns how long the cache has been running.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset zeroes all statistics.
func (s *Statistics) Reset() {
	atomic.StoreInt64(&s.hits, 0)
	atomic.StoreInt64(&s.misses, 0)
	atomic.StoreInt64(&s.sets, 0)
	atomic.StoreInt64(&s.evictions, 0)
	atomic.StoreInt64(&s.expirations, 0)

	s.mu.Lock()
	s.startTime = time.Now()
	s.currentSize = 0
	s.peakSize = 0
	s.mu.Unlock()
}

// Summary is a point-in-time snapshot of all statistics.
type Summary struct {
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	Sets        int64   `json:"sets"`
	Evictions   int64   `json:"evictions"`
	Expirations int64   `json:"expirations"`
	CurrentSize int64   `json:"current_size"`
	PeakSize    int64   `json:"peak_size"`
	HitRatio    float64 `json:"hit_ratio"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() Summary {
	return Summary{
		Hits:        s.Hits(),
		Misses:      s.Misses(),
		Sets:        s.Sets(),
		Evictions:   s.Evictions(),
		Expirations: s.Expirations(),
		CurrentSize: s.CurrentSize(),
		PeakSize:    s.PeakSize(),
		HitRatio:    s.HitRatio(),
	}
}
