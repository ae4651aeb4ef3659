package settings

import "spcplot/app/stats"

// SpcConfig holds the statistical process control overlay options.
type SpcConfig struct {
	ShowSpcLimits   bool
	SigmaMultiplier float64
	ShowSigmaZones  bool

	ShowOutliers     bool
	OutlierThreshold float64

	ShowMovingAvg bool
	MAWindow      int

	ShowEWMA   bool
	EWMALambda float64

	ShowRegression  bool
	RegressionOrder int

	ShowWERules bool

	ShowCapability bool
	SpecLower      float64
	SpecUpper      float64

	XbarRSubgroupSize int
	PChartSampleSize  int

	// Violations and ExcursionRows hold the result of the last overlay pass
	Violations    []stats.WEViolation
	ExcursionRows map[int]struct{}
}

// DefaultSpcConfig returns every overlay off with the standard parameters
func DefaultSpcConfig() SpcConfig {
	return SpcConfig{
		SigmaMultiplier:   3.0,
		OutlierThreshold:  3.0,
		MAWindow:          10,
		EWMALambda:        0.2,
		RegressionOrder:   1,
		SpecLower:         0,
		SpecUpper:         100,
		XbarRSubgroupSize: 5,
		PChartSampleSize:  50,
		ExcursionRows:     make(map[int]struct{}),
	}
}

// Validate clamps every parameter into its usable range.
func (c *SpcConfig) Validate() {
	c.SigmaMultiplier = clamp(c.SigmaMultiplier, 1, 6)
	c.OutlierThreshold = clamp(c.OutlierThreshold, 1, 6)
	c.MAWindow = max(c.MAWindow, 2)
	c.EWMALambda = clamp(c.EWMALambda, 0.01, 0.99)
	c.RegressionOrder = min(max(c.RegressionOrder, 1), 2)
	c.XbarRSubgroupSize = max(c.XbarRSubgroupSize, 2)
	c.PChartSampleSize = max(c.PChartSampleSize, 2)
	if c.SpecLower >= c.SpecUpper {
		c.SpecUpper = c.SpecLower + 1
	}
}

// ClearDerived drops the results of the last overlay pass
func (c *SpcConfig) ClearDerived() {
	c.Violations = nil
	c.ExcursionRows = make(map[int]struct{})
}

// IsExcursion reports whether row was flagged by the last overlay pass
func (c *SpcConfig) IsExcursion(row int) bool {
	_, ok := c.ExcursionRows[row]
	return ok
}

func clamp(v, lo, hi float64) float64 {
	if v != v {
		return lo
	}
	return min(max(v, lo), hi)
}
