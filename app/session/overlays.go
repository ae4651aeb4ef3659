package session

import (
	"sort"

	"spcplot/app/stats"
)

// Overlay holds the SPC annotations of one series. Indices refer to points
// of the series, not table rows.
type Overlay struct {
	Column int
	Mean   float64
	StdDev float64

	UCL, LCL   float64
	SigmaZones [6]float64

	Outliers    []int
	LimitBreaks []int
	Violations  []stats.WEViolation

	MovingAvg [][2]float64
	EWMA      [][2]float64

	Linear        stats.Linear
	HasLinear     bool
	Polynomial    stats.Polynomial
	HasPolynomial bool

	Cp, Cpk float64
}

// Overlays computes the enabled SPC overlays of every series and records the
// Western Electric violations and the excursion rows in s.Spc.
func (s *Session) Overlays() ([]Overlay, error) {
	all, err := s.Series()
	if err != nil {
		return nil, err
	}

	s.Spc.Validate()
	s.Spc.ClearDerived()
	spc := &s.Spc

	out := make([]Overlay, 0, len(all))
	for _, series := range all {
		values := series.Values()
		o := Overlay{Column: series.Column}
		o.Mean, o.StdDev = stats.MeanStdDev(values)
		o.UCL, o.LCL = stats.ControlLimits(o.Mean, o.StdDev, spc.SigmaMultiplier)

		if spc.ShowSigmaZones {
			o.SigmaZones = stats.SigmaZones(o.Mean, o.StdDev)
		}
		if spc.ShowOutliers {
			o.Outliers = stats.DetectOutliers(values, spc.OutlierThreshold)
			s.markExcursions(series, o.Outliers)
		}
		if spc.ShowSpcLimits {
			for i, v := range values {
				if v > o.UCL || v < o.LCL {
					o.LimitBreaks = append(o.LimitBreaks, i)
				}
			}
			s.markExcursions(series, o.LimitBreaks)
		}
		if spc.ShowWERules {
			o.Violations = stats.WesternElectricViolations(values)
			indices := make([]int, len(o.Violations))
			for i, v := range o.Violations {
				indices[i] = v.PointIndex
				spc.Violations = append(spc.Violations, stats.WEViolation{
					PointIndex: series.Rows[v.PointIndex],
					Rules:      v.Rules,
				})
			}
			s.markExcursions(series, indices)
		}
		if spc.ShowMovingAvg {
			o.MovingAvg = stats.SMA(values, spc.MAWindow)
		}
		if spc.ShowEWMA {
			o.EWMA = stats.EWMA(values, spc.EWMALambda)
		}
		if spc.ShowRegression {
			pairs := series.XYPairs()
			if spc.RegressionOrder == 1 {
				o.Linear, o.HasLinear = stats.LinearRegression(pairs)
			} else {
				o.Polynomial, o.HasPolynomial = stats.PolynomialRegression(pairs, spc.RegressionOrder)
			}
		}
		if spc.ShowCapability {
			o.Cp, o.Cpk = stats.ProcessCapability(values, spc.SpecLower, spc.SpecUpper)
		}
		out = append(out, o)
	}

	sort.SliceStable(spc.Violations, func(i, j int) bool {
		return spc.Violations[i].PointIndex < spc.Violations[j].PointIndex
	})
	return out, nil
}

// ViolationsAt returns the rules violated at a table row by the last overlay pass
func (s *Session) ViolationsAt(row int) []string {
	var rules []string
	for _, v := range s.Spc.Violations {
		if v.PointIndex == row {
			rules = append(rules, v.Rules...)
		}
	}
	return rules
}

func (s *Session) markExcursions(series Series, points []int) {
	for _, p := range points {
		s.Spc.ExcursionRows[series.Rows[p]] = struct{}{}
	}
}
