// Package cache holds the per-session caches of derived plot data: downsampled
// series keyed by zoom level and column statistics keyed by data version.
package cache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"spcplot/app/downsample"
)

// ZoomCache memoizes downsampled series per (series, zoom bucket). Panning at
// a constant zoom level reuses the same entry; zooming far enough to change
// bucket recomputes.
type ZoomCache struct {
	storage      map[zoomKey]*zoomEntry
	order        *orderList[zoomKey]
	maxEntries   int
	targetPoints int
	mutex        sync.Mutex
	logger       Logger

	// Performance counters
	hits   int64
	misses int64
}

// NewZoomCache creates a zoom cache holding at most maxEntries series
func NewZoomCache(maxEntries int) *ZoomCache {
	return NewZoomCacheWithLogger(maxEntries, nil)
}

// NewZoomCacheWithLogger creates a zoom cache with a logger
func NewZoomCacheWithLogger(maxEntries int, logger Logger) *ZoomCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &ZoomCache{
		storage:      make(map[zoomKey]*zoomEntry),
		order:        newOrderList[zoomKey](),
		maxEntries:   maxEntries,
		targetPoints: DefaultTargetPoints,
		logger:       logger,
	}
}

// SetLogger sets the logger for the cache
func (c *ZoomCache) SetLogger(logger Logger) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.logger = logger
}

// SetTargetPoints changes the point budget handed to compute functions
func (c *ZoomCache) SetTargetPoints(target int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if target > 0 {
		c.targetPoints = target
	}
}

// SetMaxEntries changes the capacity, evicting if the cache is now over it
func (c *ZoomCache) SetMaxEntries(maxEntries int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c.maxEntries = maxEntries
	for c.order.Size() > c.maxEntries {
		c.evictHalf()
	}
}

// GetOrCompute returns the cached series for the zoom bucket of visible, or
// calls compute with the target point count and stores its result. compute
// runs without the cache lock held.
func (c *ZoomCache) GetOrCompute(seriesID int, visible VisibleRange, compute func(target int) []downsample.Point) []downsample.Point {
	key := zoomKey{SeriesID: seriesID, Bucket: ZoomBucket(visible.Width())}

	c.mutex.Lock()
	if entry, exists := c.storage[key]; exists {
		logger := c.logger
		c.mutex.Unlock()

		atomic.AddInt64(&c.hits, 1)
		if logger != nil {
			logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_HIT] Key: %s, Points: %d", key, len(entry.Points)))
		}
		return entry.Points
	}
	target := c.targetPoints
	logger := c.logger
	c.mutex.Unlock()

	atomic.AddInt64(&c.misses, 1)
	if logger != nil {
		logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_MISS] Key: %s, Width: %g", key, visible.Width()))
	}

	points := compute(target)
	c.store(key, points)
	return points
}

// GetOrDownsample is GetOrCompute over raw x-sorted points: on a miss the raw
// series is restricted to the visible window widened by VisibleMargin on each
// side, then reduced with fn.
func (c *ZoomCache) GetOrDownsample(seriesID int, visible VisibleRange, raw []downsample.Point, fn func(points []downsample.Point, target int) []downsample.Point) []downsample.Point {
	return c.GetOrCompute(seriesID, visible, func(target int) []downsample.Point {
		window := visible.Widen(VisibleMargin)
		return fn(downsample.CullPoints(raw, window.Min, window.Max, 0), target)
	})
}

// Has reports whether the series is cached for the zoom bucket of visible
func (c *ZoomCache) Has(seriesID int, visible VisibleRange) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	_, exists := c.storage[zoomKey{SeriesID: seriesID, Bucket: ZoomBucket(visible.Width())}]
	return exists
}

func (c *ZoomCache) store(key zoomKey, points []downsample.Point) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.storage[key]; !exists && c.order.Size() >= c.maxEntries {
		c.evictHalf()
	}

	c.storage[key] = &zoomEntry{Points: points}
	c.order.PushFront(key)

	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_STORE] Key: %s, Points: %d, Entries: %d/%d",
			key, len(points), c.order.Size(), c.maxEntries))
	}
}

// evictHalf drops the oldest-inserted half of the entries. Caller holds the lock.
func (c *ZoomCache) evictHalf() {
	count := max(c.order.Size()/2, 1)
	for i := 0; i < count; i++ {
		key, ok := c.order.RemoveOldest()
		if !ok {
			break
		}
		delete(c.storage, key)
	}
	if c.logger != nil {
		c.logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_EVICT] Evicted %d entries, %d remaining", count, c.order.Size()))
	}
}

// Invalidate removes every entry, e.g. after a load or a filter change
func (c *ZoomCache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := len(c.storage)
	c.storage = make(map[zoomKey]*zoomEntry)
	c.order = newOrderList[zoomKey]()

	if c.logger != nil && removed > 0 {
		c.logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_INVALIDATE] Removed %d entries", removed))
	}
}

// InvalidateSeries removes every zoom level of one series
func (c *ZoomCache) InvalidateSeries(seriesID int) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for key := range c.storage {
		if key.SeriesID == seriesID {
			delete(c.storage, key)
			c.order.Remove(key)
			removed++
		}
	}

	if c.logger != nil && removed > 0 {
		c.logger.Log("debug", fmt.Sprintf("[ZOOM_CACHE_INVALIDATE] Series: %d, Removed %d entries", seriesID, removed))
	}
	return removed
}

// Len returns the number of cached entries
func (c *ZoomCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.storage)
}

// Stats returns entry, size and hit statistics
func (c *ZoomCache) Stats() ZoomCacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	stats := ZoomCacheStats{
		Entries: len(c.storage),
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
	}
	for _, entry := range c.storage {
		stats.TotalPoints += len(entry.Points)
	}
	stats.EstimatedBytes = int64(stats.TotalPoints) * bytesPerPoint
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}
