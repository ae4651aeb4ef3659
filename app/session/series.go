package session

import (
	"fmt"
	"math"

	"spcplot/app/cache"
	"spcplot/app/downsample"
	"spcplot/app/filter"
)

// Series is one plotted Y column after filtering
type Series struct {
	Column int
	Name   string
	Points []downsample.Point
	// Rows holds the view row of each point
	Rows []int
	// SortedX is true when the points are in non-decreasing x order
	SortedX bool
}

// Values returns the y value of every point
func (s *Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Y
	}
	return values
}

// XYPairs returns the points as (x, y) pairs
func (s *Series) XYPairs() [][2]float64 {
	pairs := make([][2]float64, len(s.Points))
	for i, p := range s.Points {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	return pairs
}

// Series returns the filtered points of every selected Y column, building
// them on first use after a change.
func (s *Session) Series() ([]Series, error) {
	if s.seriesValid {
		return s.series, nil
	}
	if s.table == nil {
		return nil, nil
	}

	var xs []float64
	if !s.useRowIndex {
		var err error
		if xs, err = s.table.ColumnAsNumeric(s.xCol); err != nil {
			return nil, err
		}
	}

	if s.filters.FilterOutliers {
		if err := s.outliers.Populate(s.table, s.yCols); err != nil {
			return nil, err
		}
	}

	names := s.table.ColumnNames()
	out := make([]Series, 0, len(s.yCols))
	for _, col := range s.yCols {
		ys, err := s.table.ColumnAsNumeric(col)
		if err != nil {
			return nil, err
		}
		var raw []string
		if s.filters.FilterEmpty {
			if raw, err = s.table.ColumnAsString(col); err != nil {
				return nil, err
			}
		}

		series := Series{Column: col, Name: names[col], SortedX: true}
		for row, y := range ys {
			x := float64(row)
			if xs != nil {
				x = xs[row]
			}
			candidate := filter.Candidate{Row: row, X: x, Y: y, YCol: col}
			if raw != nil {
				candidate.Raw = raw[row]
			}
			if !filter.Passes(candidate, &s.filters, s.yCols, s.outliers) {
				continue
			}
			// Points without a numeric position cannot be drawn
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				continue
			}
			if n := len(series.Points); n > 0 && x < series.Points[n-1].X {
				series.SortedX = false
			}
			series.Points = append(series.Points, downsample.Point{X: x, Y: y})
			series.Rows = append(series.Rows, row)
		}
		out = append(out, series)
	}

	s.series = out
	s.seriesValid = true
	s.log("debug", fmt.Sprintf("[SESSION_SERIES] Built %d series at version %d", len(out), s.version))
	return out, nil
}

// DisplayPoints returns the points of series idx to draw for the visible x
// range. Small series are returned whole. While the user drags, and for a few
// frames after, a cheap nth-point reduction is used; otherwise the series is
// reduced with LTTB at a density matching the zoom level and cached per zoom
// bucket, then culled to the visible range.
func (s *Session) DisplayPoints(idx int, visible cache.VisibleRange, dragging bool) ([]downsample.Point, error) {
	all, err := s.Series()
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(all) {
		return nil, fmt.Errorf("series index %d out of range (max: %d)", idx, len(all)-1)
	}
	series := all[idx]
	if len(series.Points) <= s.opts.DownsampleThreshold {
		return series.Points, nil
	}

	adaptive := s.adaptiveFor(series.Column)
	if dragging || adaptive.IsFastMode() {
		return adaptive.Downsample(series.Points, s.opts.LttbTargetPoints, dragging), nil
	}

	if !series.SortedX {
		return s.zoom.GetOrCompute(series.Column, visible, func(target int) []downsample.Point {
			return downsample.LTTB(series.Points, target)
		}), nil
	}

	first, last := series.Points[0].X, series.Points[len(series.Points)-1].X
	reduced := s.zoom.GetOrCompute(series.Column, visible, func(target int) []downsample.Point {
		return downsample.LTTB(series.Points, densityTarget(target, len(series.Points), last-first, visible.Width()))
	})
	return downsample.CullPoints(reduced, visible.Min, visible.Max, downsample.DefaultCullMargin), nil
}

// densityTarget scales the point budget so that about target points fall
// inside the visible width
func densityTarget(target, n int, total, visible float64) int {
	if !(visible > 0) || !(total > visible) {
		return target
	}
	scaled := float64(target) * total / visible
	if scaled >= float64(n) {
		return n
	}
	return int(scaled)
}

// IsFastMode reports whether any series is being drawn with the interactive
// reduction
func (s *Session) IsFastMode() bool {
	for _, a := range s.adaptive {
		if a.IsFastMode() {
			return true
		}
	}
	return false
}

func (s *Session) adaptiveFor(col int) *downsample.AdaptiveDownsampler {
	a, ok := s.adaptive[col]
	if !ok {
		a = downsample.NewAdaptiveDownsampler()
		s.adaptive[col] = a
	}
	return a
}
