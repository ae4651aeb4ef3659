package stats

import (
	"math"
	"sort"
)

// Histogram bins values into equal-width bins spanning [min, max]. Each bin
// is returned as [left edge, count]. The maximum lands in the last bin.
// A zero range puts every value in the first bin at min.
func Histogram(values []float64, bins int) (hist [][2]float64, lo, binWidth float64) {
	if len(values) == 0 || bins <= 0 {
		return nil, 0, 0
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi == lo {
		hist = make([][2]float64, bins)
		for i := range hist {
			hist[i] = [2]float64{lo, 0}
		}
		hist[0][1] = float64(len(values))
		return hist, lo, 0
	}

	binWidth = (hi - lo) / float64(bins)
	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - lo) / binWidth)
		counts[min(max(idx, 0), bins-1)]++
	}

	hist = make([][2]float64, bins)
	for i, c := range counts {
		hist[i] = [2]float64{lo + float64(i)*binWidth, float64(c)}
	}
	return hist, lo, binWidth
}

// ParetoEntry is one distinct value and how often it occurs.
type ParetoEntry struct {
	Value float64
	Count int
}

// Pareto groups finite values rounded to two decimals, sorts the groups by
// count descending then value ascending, and returns the running cumulative
// percentage for each group.
func Pareto(values []float64) ([]ParetoEntry, []float64) {
	counts := make(map[int64]int)
	total := 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		counts[int64(math.Round(v*100))]++
		total++
	}
	if total == 0 {
		return nil, nil
	}

	entries := make([]ParetoEntry, 0, len(counts))
	for key, c := range counts {
		entries = append(entries, ParetoEntry{Value: float64(key) / 100, Count: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Value < entries[j].Value
	})

	cumulative := make([]float64, len(entries))
	running := 0
	for i, e := range entries {
		running += e.Count
		cumulative[i] = float64(running) / float64(total) * 100
	}
	return entries, cumulative
}

// controlConstants are the A2, D3 and D4 factors for subgroup sizes 2 to 10.
var controlConstants = map[int][3]float64{
	2:  {1.880, 0, 3.267},
	3:  {1.023, 0, 2.574},
	4:  {0.729, 0, 2.282},
	5:  {0.577, 0, 2.114},
	6:  {0.483, 0, 2.004},
	7:  {0.419, 0.076, 1.924},
	8:  {0.373, 0.136, 1.864},
	9:  {0.337, 0.184, 1.816},
	10: {0.308, 0.223, 1.777},
}

// XbarR holds the X-bar and R chart series and limits.
type XbarR struct {
	Means     [][2]float64
	Ranges    [][2]float64
	GrandMean float64
	UCL       float64
	LCL       float64
	MeanRange float64
	RangeUCL  float64
	RangeLCL  float64
}

// XbarRChart splits values into consecutive subgroups and computes the means
// and ranges chart. Trailing values that do not fill a subgroup are dropped.
// Sizes outside 2-10 silently use the size-5 constants.
// TODO: report unsupported subgroup sizes to the caller instead of substituting.
func XbarRChart(values []float64, subgroupSize int) XbarR {
	if len(values) == 0 || subgroupSize < 2 {
		return XbarR{}
	}
	groups := len(values) / subgroupSize
	if groups == 0 {
		return XbarR{}
	}

	var r XbarR
	var sumMeans, sumRanges float64
	for g := 0; g < groups; g++ {
		sub := values[g*subgroupSize : (g+1)*subgroupSize]
		lo, hi, sum := sub[0], sub[0], 0.0
		for _, v := range sub {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			sum += v
		}
		mean := sum / float64(subgroupSize)
		r.Means = append(r.Means, [2]float64{float64(g), mean})
		r.Ranges = append(r.Ranges, [2]float64{float64(g), hi - lo})
		sumMeans += mean
		sumRanges += hi - lo
	}

	c, ok := controlConstants[subgroupSize]
	if !ok {
		c = controlConstants[5]
	}
	a2, d3, d4 := c[0], c[1], c[2]

	r.GrandMean = sumMeans / float64(groups)
	r.MeanRange = sumRanges / float64(groups)
	r.UCL = r.GrandMean + a2*r.MeanRange
	r.LCL = r.GrandMean - a2*r.MeanRange
	r.RangeUCL = d4 * r.MeanRange
	r.RangeLCL = d3 * r.MeanRange
	return r
}

// PChartResult holds the proportion series and its limits.
type PChartResult struct {
	Proportions [][2]float64
	PBar        float64
	UCL         float64
	LCL         float64
}

// PChart treats each value as a defect count out of sampleSize inspections.
// The lower limit is floored at zero.
func PChart(defects []float64, sampleSize int) PChartResult {
	if len(defects) == 0 || sampleSize <= 0 {
		return PChartResult{}
	}
	n := float64(sampleSize)

	var res PChartResult
	var total float64
	for i, d := range defects {
		res.Proportions = append(res.Proportions, [2]float64{float64(i), d / n})
		total += d
	}
	res.PBar = total / (float64(len(defects)) * n)
	spread := 3 * math.Sqrt(res.PBar*(1-res.PBar)/n)
	res.UCL = res.PBar + spread
	res.LCL = math.Max(res.PBar-spread, 0)
	return res
}

// ProcessCapability returns Cp and Cpk. Empty input, usl <= lsl or a
// constant series give (0, 0).
func ProcessCapability(values []float64, lsl, usl float64) (cp, cpk float64) {
	if len(values) == 0 || usl <= lsl {
		return 0, 0
	}
	mean, sigma := MeanStdDev(values)
	if sigma == 0 {
		return 0, 0
	}
	cp = (usl - lsl) / (6 * sigma)
	cpk = math.Min((usl-mean)/(3*sigma), (mean-lsl)/(3*sigma))
	return cp, cpk
}

// ControlLimits returns mean +/- sigma*stddev as (ucl, lcl).
func ControlLimits(mean, stddev, sigma float64) (ucl, lcl float64) {
	return mean + sigma*stddev, mean - sigma*stddev
}

// SigmaZones returns the 1, 2 and 3 sigma boundaries above and below the
// mean, ordered from -3 sigma to +3 sigma.
func SigmaZones(mean, stddev float64) [6]float64 {
	return [6]float64{
		mean - 3*stddev, mean - 2*stddev, mean - stddev,
		mean + stddev, mean + 2*stddev, mean + 3*stddev,
	}
}

// SMA is the trailing simple moving average, emitted as [index, average]
// from the first full window onwards.
func SMA(values []float64, window int) [][2]float64 {
	if window <= 0 || len(values) < window {
		return nil
	}
	out := make([][2]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i+1 >= window {
			out = append(out, [2]float64{float64(i), sum / float64(window)})
		}
	}
	return out
}

// EWMA is the exponentially weighted moving average seeded with the first
// value, emitted as [index, ewma].
func EWMA(values []float64, lambda float64) [][2]float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([][2]float64, len(values))
	ewma := values[0]
	for i, v := range values {
		ewma = lambda*v + (1-lambda)*ewma
		out[i] = [2]float64{float64(i), ewma}
	}
	return out
}
