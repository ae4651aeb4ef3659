package session

import (
	"context"
	"fmt"

	"spcplot/app/downsample"
	"spcplot/app/stats"
)

// HistogramChart is a binned series
type HistogramChart struct {
	Bins     [][2]float64
	Min      float64
	BinWidth float64
}

// Histogram bins series idx using the view's bin count
func (s *Session) Histogram(idx int) (HistogramChart, error) {
	values, err := s.seriesValues(idx)
	if err != nil {
		return HistogramChart{}, err
	}
	bins, lo, width := stats.Histogram(values, max(s.View.HistogramBins, 1))
	return HistogramChart{Bins: bins, Min: lo, BinWidth: width}, nil
}

// Boxplot returns the five-number summary of series idx
func (s *Session) Boxplot(idx int) (stats.Boxplot, bool, error) {
	values, err := s.seriesValues(idx)
	if err != nil {
		return stats.Boxplot{}, false, err
	}
	b, ok := stats.BoxplotStats(values)
	return b, ok, nil
}

// Pareto returns the value frequencies and cumulative percentages of series idx
func (s *Session) Pareto(idx int) ([]stats.ParetoEntry, []float64, error) {
	values, err := s.seriesValues(idx)
	if err != nil {
		return nil, nil, err
	}
	entries, cumulative := stats.Pareto(values)
	return entries, cumulative, nil
}

// XbarR builds the X-bar/R chart of series idx with the configured subgroup size
func (s *Session) XbarR(idx int) (stats.XbarR, error) {
	values, err := s.seriesValues(idx)
	if err != nil {
		return stats.XbarR{}, err
	}
	return stats.XbarRChart(values, s.Spc.XbarRSubgroupSize), nil
}

// PChart builds the p-chart of series idx, reading each value as a defect
// count out of the configured sample size
func (s *Session) PChart(idx int) (stats.PChartResult, error) {
	values, err := s.seriesValues(idx)
	if err != nil {
		return stats.PChartResult{}, err
	}
	return stats.PChart(values, s.Spc.PChartSampleSize), nil
}

// ColumnStats returns summary statistics of a column over the current view,
// memoized until the data changes.
func (s *Session) ColumnStats(col int) (stats.CachedStats, error) {
	if s.table == nil {
		return stats.CachedStats{}, fmt.Errorf("no data loaded")
	}
	if cached, ok := s.stats.Get(col, s.version); ok {
		return cached, nil
	}
	values, err := s.table.ColumnAsNumeric(col)
	if err != nil {
		return stats.CachedStats{}, err
	}
	computed := stats.ComputeCachedStats(values, max(s.View.HistogramBins, 1))
	s.stats.Put(col, s.version, computed)
	return computed, nil
}

// GenerateLOD writes level-of-detail files of series idx into dir
func (s *Session) GenerateLOD(ctx context.Context, idx int, dir string) ([]string, error) {
	all, err := s.Series()
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(all) {
		return nil, fmt.Errorf("series index %d out of range (max: %d)", idx, len(all)-1)
	}
	xName := "row"
	if !s.useRowIndex {
		xName = s.table.ColumnNames()[s.xCol]
	}
	return downsample.GenerateLODTiers(ctx, all[idx].Points, dir, xName, all[idx].Name)
}

func (s *Session) seriesValues(idx int) ([]float64, error) {
	all, err := s.Series()
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= len(all) {
		return nil, fmt.Errorf("series index %d out of range (max: %d)", idx, len(all)-1)
	}
	return all[idx].Values(), nil
}
