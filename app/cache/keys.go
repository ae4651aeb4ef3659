package cache

import (
	"fmt"
	"math"
)

// zoomKey identifies a cached series at one zoom level
type zoomKey struct {
	SeriesID int
	Bucket   int
}

func (k zoomKey) String() string {
	return fmt.Sprintf("series:%d|zoom:%d", k.SeriesID, k.Bucket)
}

// ZoomBucket quantizes a visible width into half-octave buckets, so widths
// within about 41% of each other share an entry. Non-positive and NaN widths
// map to bucket 0.
func ZoomBucket(width float64) int {
	if !(width > 0) || math.IsInf(width, 0) {
		return 0
	}
	return int(math.Floor(math.Log2(width) * 2))
}

// VisibleRange is the x extent currently on screen
type VisibleRange struct {
	Min float64
	Max float64
}

// Width returns Max - Min
func (r VisibleRange) Width() float64 {
	return r.Max - r.Min
}

// Widen returns the range grown by frac of its width on each side
func (r VisibleRange) Widen(frac float64) VisibleRange {
	pad := r.Width() * frac
	return VisibleRange{Min: r.Min - pad, Max: r.Max + pad}
}
