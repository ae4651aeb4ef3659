// Package downsample reduces large x-sorted series to a drawable number of
// points while keeping their visual shape.
package downsample

import (
	"math"
	"sort"
)

// Point is one (x, y) sample of a series.
type Point struct {
	X float64
	Y float64
}

// LTTB reduces points to target points with Largest-Triangle-Three-Buckets.
//
// The first and last points are always kept. The remaining points are split
// into target-2 buckets of (n-2)/(target-2) points each; from every bucket the
// point forming the largest triangle with the previously selected point and
// the average of the next bucket is kept. Input order is preserved.
// When n <= target or target < 3 a copy of the input is returned.
func LTTB(points []Point, target int) []Point {
	n := len(points)
	if n <= target || target < 3 {
		return append([]Point(nil), points...)
	}

	out := make([]Point, 0, target)
	out = append(out, points[0])

	bucketSize := float64(n-2) / float64(target-2)
	selected := 0

	for i := 0; i < target-2; i++ {
		start := int(math.Floor(float64(i)*bucketSize)) + 1
		end := min(int(math.Floor(float64(i+1)*bucketSize))+1, n-1)

		// Average of the next bucket; the final bucket looks at the last point
		nextStart := end
		nextEnd := min(int(math.Floor(float64(i+2)*bucketSize))+1, n)
		if i == target-3 {
			nextStart, nextEnd = n-1, n
		}
		var avgX, avgY float64
		for j := nextStart; j < nextEnd; j++ {
			avgX += points[j].X
			avgY += points[j].Y
		}
		count := float64(nextEnd - nextStart)
		avgX /= count
		avgY /= count

		a := points[selected]
		maxArea := -1.0
		best := start
		for j := start; j < end; j++ {
			area := math.Abs((a.X-avgX)*(points[j].Y-a.Y)-(a.X-points[j].X)*(avgY-a.Y)) * 0.5
			if area > maxArea {
				maxArea = area
				best = j
			}
		}

		out = append(out, points[best])
		selected = best
	}

	out = append(out, points[n-1])
	return out
}

// NthPoint keeps every k-th point, k = max(n/target, 1). It is the cheap
// path used while the user is interacting.
func NthPoint(points []Point, target int) []Point {
	if target <= 0 || len(points) <= target {
		return append([]Point(nil), points...)
	}
	step := max(len(points)/target, 1)
	out := make([]Point, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		out = append(out, points[i])
	}
	return out
}

// DefaultCullMargin is the number of extra points kept on each side of the
// visible window so panning does not expose gaps.
const DefaultCullMargin = 10

// CullPoints returns the sub-slice of x-sorted points inside [xMin, xMax],
// widened by margin points on both sides. The result aliases points.
func CullPoints(points []Point, xMin, xMax float64, margin int) []Point {
	if len(points) == 0 {
		return points
	}
	start := sort.Search(len(points), func(i int) bool { return points[i].X >= xMin })
	end := sort.Search(len(points), func(i int) bool { return points[i].X > xMax })
	start = max(start-margin, 0)
	end = min(end+margin, len(points))
	if start >= end {
		return points[:0]
	}
	return points[start:end]
}
