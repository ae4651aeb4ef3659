package stats

import (
	"sort"
)

// Western Electric rule names as shown to the user.
const (
	RuleTwoOfThree   = "Rule 2: 2/3 beyond 2σ"
	RuleFourOfFive   = "Rule 3: 4/5 beyond 1σ"
	RuleEightSide    = "Rule 4: 8 consecutive on same side"
	RuleSixTrend     = "Rule 5: 6 trending"
	RuleFourteenAlt  = "Rule 6: 14 alternating"
	minWesternPoints = 8
)

// WEViolation lists the rules a single point violates.
type WEViolation struct {
	PointIndex int
	Rules      []string
}

// WesternElectricViolations checks rules 2 to 6 over sliding windows and
// tags every point of a violating window. Rule 1 (a point beyond 3 sigma) is
// covered by outlier detection. Fewer than 8 points give no violations.
// Results are sorted by point index and list each rule once per point.
func WesternElectricViolations(values []float64) []WEViolation {
	if len(values) < minWesternPoints {
		return nil
	}
	mean, sd := MeanStdDev(values)

	tags := make(map[int][]string)
	tag := func(from, to int, rule string) {
		for j := from; j <= to; j++ {
			rules := tags[j]
			if len(rules) > 0 && rules[len(rules)-1] == rule {
				continue
			}
			tags[j] = append(rules, rule)
		}
	}

	// Rule 4: 8 consecutive on the same side of the mean
	for i := 7; i < len(values); i++ {
		if allOf(values[i-7:i+1], func(v float64) bool { return v > mean }) ||
			allOf(values[i-7:i+1], func(v float64) bool { return v < mean }) {
			tag(i-7, i, RuleEightSide)
		}
	}

	// Rule 2: 2 of 3 beyond 2 sigma on the same side
	for i := 2; i < len(values); i++ {
		w := values[i-2 : i+1]
		if countOf(w, func(v float64) bool { return v > mean+2*sd }) >= 2 ||
			countOf(w, func(v float64) bool { return v < mean-2*sd }) >= 2 {
			tag(i-2, i, RuleTwoOfThree)
		}
	}

	// Rule 3: 4 of 5 beyond 1 sigma on the same side
	for i := 4; i < len(values); i++ {
		w := values[i-4 : i+1]
		if countOf(w, func(v float64) bool { return v > mean+sd }) >= 4 ||
			countOf(w, func(v float64) bool { return v < mean-sd }) >= 4 {
			tag(i-4, i, RuleFourOfFive)
		}
	}

	// Rule 5: 6 strictly increasing or decreasing
	for i := 5; i < len(values); i++ {
		w := values[i-5 : i+1]
		inc, dec := true, true
		for k := 1; k < len(w); k++ {
			inc = inc && w[k] > w[k-1]
			dec = dec && w[k] < w[k-1]
		}
		if inc || dec {
			tag(i-5, i, RuleSixTrend)
		}
	}

	// Rule 6: 14 points alternating up and down
	for i := 13; i < len(values); i++ {
		w := values[i-13 : i+1]
		alternating := true
		for k := 1; k+1 < len(w) && alternating; k++ {
			peak := w[k] > w[k-1] && w[k] > w[k+1]
			trough := w[k] < w[k-1] && w[k] < w[k+1]
			alternating = peak || trough
		}
		if alternating {
			tag(i-13, i, RuleFourteenAlt)
		}
	}

	out := make([]WEViolation, 0, len(tags))
	for idx, rules := range tags {
		out = append(out, WEViolation{PointIndex: idx, Rules: rules})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PointIndex < out[j].PointIndex })
	return out
}

func allOf(values []float64, pred func(float64) bool) bool {
	for _, v := range values {
		if !pred(v) {
			return false
		}
	}
	return true
}

func countOf(values []float64, pred func(float64) bool) int {
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return n
}
