package cache

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"spcplot/app/downsample"
	"spcplot/app/stats"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Log(level, message string) {
	l.messages = append(l.messages, message)
}

func (l *recordingLogger) count(tag string) int {
	n := 0
	for _, m := range l.messages {
		if strings.Contains(m, tag) {
			n++
		}
	}
	return n
}

func series(n int) []downsample.Point {
	points := make([]downsample.Point, n)
	for i := range points {
		points[i] = downsample.Point{X: float64(i), Y: float64(i % 7)}
	}
	return points
}

func TestZoomBucket(t *testing.T) {
	if ZoomBucket(100) != ZoomBucket(110) {
		t.Errorf("Expected 100 and 110 to share a bucket, got %d and %d", ZoomBucket(100), ZoomBucket(110))
	}
	if ZoomBucket(100) == ZoomBucket(1000) {
		t.Errorf("Expected 100 and 1000 to differ, both %d", ZoomBucket(100))
	}

	tests := []struct {
		width float64
		want  int
	}{
		{1, 0},
		{2, 2},
		{4, 4},
		{0, 0},
		{-5, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := ZoomBucket(tt.width); got != tt.want {
			t.Errorf("ZoomBucket(%v) = %d, expected %d", tt.width, got, tt.want)
		}
	}
}

func TestGetOrComputeCallsOnce(t *testing.T) {
	logger := &recordingLogger{}
	c := NewZoomCacheWithLogger(10, logger)
	calls := 0
	compute := func(target int) []downsample.Point {
		calls++
		if target != DefaultTargetPoints {
			t.Errorf("Expected target %d, got %d", DefaultTargetPoints, target)
		}
		return series(3)
	}

	first := c.GetOrCompute(1, VisibleRange{Min: 0, Max: 100}, compute)
	second := c.GetOrCompute(1, VisibleRange{Min: 50, Max: 160}, compute)

	if calls != 1 {
		t.Fatalf("Expected one compute call, got %d", calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected cached points on hit")
	}
	if !c.Has(1, VisibleRange{Min: 0, Max: 105}) || c.Has(2, VisibleRange{Min: 0, Max: 100}) {
		t.Error("Unexpected Has result")
	}

	c.GetOrCompute(1, VisibleRange{Min: 0, Max: 1000}, compute)
	if calls != 2 {
		t.Errorf("Expected recompute for a new zoom level, got %d calls", calls)
	}

	s := c.Stats()
	if s.Entries != 2 || s.Hits != 1 || s.Misses != 2 || s.TotalPoints != 6 || s.EstimatedBytes != 96 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if logger.count("[ZOOM_CACHE_HIT]") != 1 || logger.count("[ZOOM_CACHE_MISS]") != 2 {
		t.Errorf("Unexpected log messages %v", logger.messages)
	}
}

func TestEvictsOldestHalf(t *testing.T) {
	logger := &recordingLogger{}
	c := NewZoomCacheWithLogger(4, logger)
	for id := 0; id < 4; id++ {
		c.GetOrCompute(id, VisibleRange{Max: 10}, func(int) []downsample.Point { return series(1) })
	}
	if c.Len() != 4 {
		t.Fatalf("Expected 4 entries, got %d", c.Len())
	}

	// A hit does not refresh insertion order
	c.GetOrCompute(0, VisibleRange{Max: 10}, func(int) []downsample.Point { return nil })
	c.GetOrCompute(4, VisibleRange{Max: 10}, func(int) []downsample.Point { return series(1) })

	if c.Len() != 3 {
		t.Fatalf("Expected 3 entries after eviction, got %d", c.Len())
	}
	for id, want := range map[int]bool{0: false, 1: false, 2: true, 3: true, 4: true} {
		if got := c.Has(id, VisibleRange{Max: 10}); got != want {
			t.Errorf("Has(%d) = %v, expected %v", id, got, want)
		}
	}
	if logger.count("[ZOOM_CACHE_EVICT]") != 1 {
		t.Errorf("Expected one eviction log, got %v", logger.messages)
	}
}

func TestInvalidate(t *testing.T) {
	c := NewZoomCache(0)
	for id := 0; id < 3; id++ {
		c.GetOrCompute(id, VisibleRange{Max: 10}, func(int) []downsample.Point { return series(2) })
		c.GetOrCompute(id, VisibleRange{Max: 1000}, func(int) []downsample.Point { return series(2) })
	}

	if removed := c.InvalidateSeries(1); removed != 2 {
		t.Errorf("Expected 2 entries removed, got %d", removed)
	}
	if c.Len() != 4 {
		t.Errorf("Expected 4 entries, got %d", c.Len())
	}

	c.Invalidate()
	if c.Len() != 0 || c.Stats().TotalPoints != 0 {
		t.Errorf("Expected empty cache, got %+v", c.Stats())
	}
}

func TestGetOrDownsampleRestrictsWindow(t *testing.T) {
	c := NewZoomCache(10)
	c.SetTargetPoints(50)
	raw := series(1000)

	var seen []downsample.Point
	out := c.GetOrDownsample(7, VisibleRange{Min: 100, Max: 200}, raw, func(points []downsample.Point, target int) []downsample.Point {
		seen = points
		return downsample.LTTB(points, target)
	})

	if len(seen) != 141 || seen[0].X != 80 || seen[len(seen)-1].X != 220 {
		t.Fatalf("Expected window [80, 220], got %d points from %v", len(seen), seen[0])
	}
	if len(out) != 50 {
		t.Errorf("Expected 50 points, got %d", len(out))
	}
}

func TestStatsCache(t *testing.T) {
	c := NewStatsCache()
	s := stats.ComputeCachedStats([]float64{1, 2, 3}, 2)

	if _, ok := c.Get(0, 1); ok {
		t.Error("Expected miss on empty cache")
	}
	c.Put(0, 1, s)
	if got, ok := c.Get(0, 1); !ok || !reflect.DeepEqual(got, s) {
		t.Errorf("Expected hit, got %+v %v", got, ok)
	}

	if _, ok := c.Get(0, 2); ok {
		t.Error("Expected miss for a newer version")
	}
	if c.Len() != 0 {
		t.Errorf("Expected version change to drop entries, got %d", c.Len())
	}

	c.Put(3, 2, s)
	c.Invalidate()
	if _, ok := c.Get(3, 2); ok {
		t.Error("Expected miss after invalidate")
	}
}
