package astrosim

import (
	"container/list"
	"fmt"
	"math"
	"sync"
)

const (
	// DefaultCacheCapacity bounds the number of memoized states.
	DefaultCacheCapacity = 10000
	// DefaultTimeTolerance is the query rounding tolerance in days. Two
	// queries whose Julian dates fall in the same tolerance bucket share a
	// cache entry: a deliberate accuracy/performance trade-off.
	DefaultTimeTolerance = 0.01
)

// CacheStats reports hit/miss counters and occupancy for observability.
type CacheStats struct {
	Hits     uint64
	Misses   uint64
	Size     int
	Capacity int
}

// HitRate returns the fraction of queries served from the cache.
func (s CacheStats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s CacheStats) String() string {
	return fmt.Sprintf("hits=%d misses=%d size=%d/%d rate=%.1f%%", s.Hits, s.Misses, s.Size, s.Capacity, 100*s.HitRate())
}

type cacheEntry struct {
	key  string
	r, v []float64
}

// OrbitCache memoizes Kepler state computations keyed by the rounded Julian
// date, the serialized orbital elements and the central mass. Entries are
// evicted least-recently-used once capacity is reached. All access goes
// through a single mutex so eviction and insertion are atomic as a unit; the
// stored state is always the one computed at the rounded date, so a hit can
// never diverge from a direct computation by more than the rounding error.
type OrbitCache struct {
	mu        sync.Mutex
	capacity  int
	tolerance float64
	entries   map[string]*list.Element
	order     *list.List // front is the most recently used
	hits      uint64
	misses    uint64
}

// NewOrbitCache returns an empty cache. Panics on a non positive capacity or
// tolerance: those are programming defects, not runtime conditions.
func NewOrbitCache(capacity int, tolerance float64) *OrbitCache {
	if capacity < 1 {
		panic(fmt.Errorf("cache capacity must be at least 1, got %d", capacity))
	}
	if tolerance <= 0 {
		panic(fmt.Errorf("time tolerance must be strictly positive, got %f", tolerance))
	}
	return &OrbitCache{
		capacity:  capacity,
		tolerance: tolerance,
		entries:   make(map[string]*list.Element, capacity),
		order:     list.New(),
	}
}

// NewDefaultOrbitCache returns a cache with the default capacity and
// time tolerance.
func NewDefaultOrbitCache() *OrbitCache {
	return NewOrbitCache(DefaultCacheCapacity, DefaultTimeTolerance)
}

// bucket maps a Julian date to its tolerance bucket index. Keying on the
// integer index keeps distinct buckets distinct at any tolerance, which a
// fixed-precision decimal rendering of the rounded date would not.
func (c *OrbitCache) bucket(jd float64) int64 {
	return int64(math.Round(jd / c.tolerance))
}

// GetOrCompute returns the memoized state for (el, jd, centralMass) or
// computes, stores and returns it. The returned slices are copies: callers
// may mutate them freely.
func (c *OrbitCache) GetOrCompute(el Elements, jd, centralMass float64) (R, V []float64, err error) {
	bucket := c.bucket(jd)
	rounded := float64(bucket) * c.tolerance
	key := fmt.Sprintf("%d|%s|%.15e", bucket, el.key(), centralMass)

	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, found := c.entries[key]; found {
		c.hits++
		c.order.MoveToFront(elem)
		entry := elem.Value.(*cacheEntry)
		return append([]float64(nil), entry.r...), append([]float64(nil), entry.v...), nil
	}
	c.misses++
	R, V, err = StateAt(el, rounded, centralMass)
	if err != nil {
		return nil, nil, err
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key, R, V})
	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	if c.order.Len() > c.capacity {
		panic(fmt.Errorf("orbit cache exceeded its capacity (%d > %d)", c.order.Len(), c.capacity))
	}
	return append([]float64(nil), R...), append([]float64(nil), V...), nil
}

// Stats returns a snapshot of the cache counters.
func (c *OrbitCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Size: c.order.Len(), Capacity: c.capacity}
}

// Clear drops all entries and resets the counters.
func (c *OrbitCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element, c.capacity)
	c.order.Init()
	c.hits = 0
	c.misses = 0
}

// Tolerance returns the configured time rounding tolerance in days.
func (c *OrbitCache) Tolerance() float64 {
	return c.tolerance
}
