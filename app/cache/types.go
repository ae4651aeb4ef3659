package cache

import "spcplot/app/downsample"

// Logger interface for cache logging
type Logger interface {
	Log(level, message string)
}

// DefaultMaxEntries is the default zoom cache capacity
const DefaultMaxEntries = 100

// DefaultTargetPoints is the point budget passed to compute functions
const DefaultTargetPoints = 5000

// bytesPerPoint is the in-memory size of one downsample.Point
const bytesPerPoint = 16

// VisibleMargin widens the visible window on each side before downsampling,
// as a fraction of its width
const VisibleMargin = 0.2

// zoomEntry is a cached downsampled series
type zoomEntry struct {
	Points []downsample.Point
}

// ZoomCacheStats contains zoom cache statistics
type ZoomCacheStats struct {
	Entries        int
	TotalPoints    int
	EstimatedBytes int64
	Hits           int64
	Misses         int64
	HitRate        float64
}
