// Package stats is the statistics engine behind the SPC overlays. Every
// function is pure and total: degenerate input (empty, constant, singular)
// yields a zero value or ok == false rather than an error.
package stats

import (
	"math"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"
)

// MeanStdDev returns the mean and population standard deviation (divide by N).
// Empty input gives (0, 0).
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	n := float64(len(values))
	for _, v := range values {
		mean += v
	}
	mean /= n

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

// Median sorts a copy of values and returns the middle value, or the average
// of the two middle values for even lengths. Empty input gives 0.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// Percentile returns the interpolated p-th percentile (p in [0, 100]).
// Empty input gives 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return mstats.Sample{Xs: sortedCopy(values), Sorted: true}.Quantile(p / 100)
}

// DetectOutliers returns the indices whose |z-score| exceeds threshold.
// A zero standard deviation flags nothing.
func DetectOutliers(values []float64, threshold float64) []int {
	mean, stddev := MeanStdDev(values)
	if stddev == 0 {
		return nil
	}
	var out []int
	for i, v := range values {
		if math.Abs((v-mean)/stddev) > threshold {
			out = append(out, i)
		}
	}
	return out
}

// Boxplot holds the five values drawn by a box plot.
type Boxplot struct {
	LowerWhisker float64
	Q1           float64
	Median       float64
	Q3           float64
	UpperWhisker float64
}

// BoxplotStats computes quartiles by direct index (len/4 and 3*len/4 of the
// sorted values, no interpolation). Whiskers are the most extreme values within
// 1.5*IQR of the quartiles, falling back to the data extremes.
func BoxplotStats(values []float64) (Boxplot, bool) {
	if len(values) == 0 {
		return Boxplot{}, false
	}
	sorted := sortedCopy(values)
	n := len(sorted)

	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	iqr := q3 - q1
	lowFence := q1 - 1.5*iqr
	highFence := q3 + 1.5*iqr

	lower := sorted[0]
	for _, v := range sorted {
		if v >= lowFence {
			lower = v
			break
		}
	}
	upper := sorted[n-1]
	for i := n - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			upper = sorted[i]
			break
		}
	}

	return Boxplot{
		LowerWhisker: lower,
		Q1:           q1,
		Median:       Median(sorted),
		Q3:           q3,
		UpperWhisker: upper,
	}, true
}

// FiniteValues drops NaN and infinite values.
func FiniteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// CachedStats is the summary shown in the statistics panel for one column.
type CachedStats struct {
	Count        int
	Min          float64
	Max          float64
	Mean         float64
	Median       float64
	StdDev       float64
	P5           float64
	P25          float64
	P75          float64
	P95          float64
	Histogram    []int
	HistogramMax int
}

// ComputeCachedStats summarizes the finite values of a column.
func ComputeCachedStats(values []float64, bins int) CachedStats {
	finite := FiniteValues(values)
	if len(finite) == 0 {
		return CachedStats{}
	}
	sort.Float64s(finite)
	sample := mstats.Sample{Xs: finite, Sorted: true}

	cs := CachedStats{Count: len(finite)}
	cs.Min, cs.Max = mstats.Bounds(finite)
	cs.Mean, cs.StdDev = MeanStdDev(finite)
	cs.Median = Median(finite)
	cs.P5 = sample.Quantile(0.05)
	cs.P25 = sample.Quantile(0.25)
	cs.P75 = sample.Quantile(0.75)
	cs.P95 = sample.Quantile(0.95)

	hist, _, _ := Histogram(finite, bins)
	cs.Histogram = make([]int, len(hist))
	for i, b := range hist {
		cs.Histogram[i] = int(b[1])
		cs.HistogramMax = max(cs.HistogramMax, cs.Histogram[i])
	}
	return cs
}

func sortedCopy(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted
}
