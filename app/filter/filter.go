// Package filter decides, point by point, whether a candidate (x, y) pair
// makes it into a plotted series.
package filter

import (
	"math"
	"strings"

	"spcplot/app/stats"
)

// DefaultOutlierSigma is the z-score beyond which points are excluded.
const DefaultOutlierSigma = 3.0

// Config holds the user's point filters. Nil bounds are inactive.
type Config struct {
	FilterEmpty    bool     `json:"filter_empty" yaml:"filter_empty"`
	XMin           *float64 `json:"filter_x_min,omitempty" yaml:"filter_x_min,omitempty"`
	XMax           *float64 `json:"filter_x_max,omitempty" yaml:"filter_x_max,omitempty"`
	YMin           *float64 `json:"filter_y_min,omitempty" yaml:"filter_y_min,omitempty"`
	YMax           *float64 `json:"filter_y_max,omitempty" yaml:"filter_y_max,omitempty"`
	FilterOutliers bool     `json:"filter_outliers" yaml:"filter_outliers"`
	OutlierSigma   float64  `json:"filter_outlier_sigma" yaml:"filter_outlier_sigma"`
}

// DefaultConfig returns a config with every filter off.
func DefaultConfig() Config {
	return Config{OutlierSigma: DefaultOutlierSigma}
}

// Clear turns every filter off.
func (c *Config) Clear() {
	*c = DefaultConfig()
}

// HasActiveFilters reports whether any filter would exclude points.
func (c Config) HasActiveFilters() bool {
	return c.FilterEmpty || c.FilterOutliers ||
		c.XMin != nil || c.XMax != nil || c.YMin != nil || c.YMax != nil
}

// XRange returns the X bounds when both are set.
func (c Config) XRange() (lo, hi float64, ok bool) {
	if c.XMin == nil || c.XMax == nil {
		return 0, 0, false
	}
	return *c.XMin, *c.XMax, true
}

// YRange returns the Y bounds when both are set.
func (c Config) YRange() (lo, hi float64, ok bool) {
	if c.YMin == nil || c.YMax == nil {
		return 0, 0, false
	}
	return *c.YMin, *c.YMax, true
}

// SetXRange sets both X bounds.
func (c *Config) SetXRange(lo, hi float64) {
	c.XMin, c.XMax = &lo, &hi
}

// SetYRange sets both Y bounds.
func (c *Config) SetYRange(lo, hi float64) {
	c.YMin, c.YMax = &lo, &hi
}

// Validate swaps inverted ranges and clamps the outlier sigma to [1, 6].
func (c *Config) Validate() {
	if c.XMin != nil && c.XMax != nil && *c.XMin > *c.XMax {
		c.XMin, c.XMax = c.XMax, c.XMin
	}
	if c.YMin != nil && c.YMax != nil && *c.YMin > *c.YMax {
		c.YMin, c.YMax = c.YMax, c.YMin
	}
	c.OutlierSigma = math.Max(1, math.Min(6, c.OutlierSigma))
}

// ColumnStats is the mean and population standard deviation of a column.
type ColumnStats struct {
	Mean   float64
	StdDev float64
}

// NumericSource provides numeric column projections.
type NumericSource interface {
	ColumnAsNumeric(col int) ([]float64, error)
}

// OutlierStatsCache holds per-column statistics for the outlier filter. The
// caller fills it before a filtering pass and clears it when the data or the
// filters change.
type OutlierStatsCache struct {
	stats map[int]ColumnStats
}

// NewOutlierStatsCache returns an empty cache.
func NewOutlierStatsCache() *OutlierStatsCache {
	return &OutlierStatsCache{stats: make(map[int]ColumnStats)}
}

// Populate replaces the cache contents with the statistics of cols, computed
// over their finite values.
func (c *OutlierStatsCache) Populate(src NumericSource, cols []int) error {
	c.Clear()
	for _, col := range cols {
		values, err := src.ColumnAsNumeric(col)
		if err != nil {
			return err
		}
		mean, sd := stats.MeanStdDev(stats.FiniteValues(values))
		c.stats[col] = ColumnStats{Mean: mean, StdDev: sd}
	}
	return nil
}

// Set stores the statistics of one column.
func (c *OutlierStatsCache) Set(col int, s ColumnStats) {
	c.stats[col] = s
}

// Get returns the statistics of one column.
func (c *OutlierStatsCache) Get(col int) (ColumnStats, bool) {
	s, ok := c.stats[col]
	return s, ok
}

// Len returns the number of cached columns.
func (c *OutlierStatsCache) Len() int {
	return len(c.stats)
}

// Clear empties the cache.
func (c *OutlierStatsCache) Clear() {
	c.stats = make(map[int]ColumnStats)
}

// Candidate is one (x, y) point under consideration.
type Candidate struct {
	Row  int
	X    float64
	Y    float64
	YCol int
	// Raw is the display form of the Y cell, used by the empty filter
	Raw string
}

// IsEmptyValue reports whether a displayed cell counts as empty.
func IsEmptyValue(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || s == "NaN" || s == "nan" || s == "null"
}

// Passes evaluates the filters in order: empty value (only for selected Y
// columns), X range, Y range, outlier z-score. The first failing filter
// rejects the point. A column without cached statistics, or with zero
// deviation, is not outlier filtered.
func Passes(p Candidate, cfg *Config, selectedY []int, outliers *OutlierStatsCache) bool {
	if cfg.FilterEmpty && containsInt(selectedY, p.YCol) && IsEmptyValue(p.Raw) {
		return false
	}

	if cfg.XMin != nil && p.X < *cfg.XMin {
		return false
	}
	if cfg.XMax != nil && p.X > *cfg.XMax {
		return false
	}

	if cfg.YMin != nil && p.Y < *cfg.YMin {
		return false
	}
	if cfg.YMax != nil && p.Y > *cfg.YMax {
		return false
	}

	if cfg.FilterOutliers && outliers != nil {
		if s, ok := outliers.Get(p.YCol); ok && s.StdDev > 0 {
			if math.Abs((p.Y-s.Mean)/s.StdDev) > cfg.OutlierSigma {
				return false
			}
		}
	}

	return true
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
