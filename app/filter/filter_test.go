package filter

import (
	"errors"
	"math"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	cfg := Config{XMin: ptr(10), XMax: ptr(1), YMin: ptr(-1), YMax: ptr(5), OutlierSigma: 9}
	cfg.Validate()

	if *cfg.XMin != 1 || *cfg.XMax != 10 {
		t.Errorf("Expected swapped X range, got [%v, %v]", *cfg.XMin, *cfg.XMax)
	}
	if *cfg.YMin != -1 || *cfg.YMax != 5 {
		t.Errorf("Expected Y range untouched, got [%v, %v]", *cfg.YMin, *cfg.YMax)
	}
	if cfg.OutlierSigma != 6 {
		t.Errorf("Expected sigma clamped to 6, got %v", cfg.OutlierSigma)
	}

	cfg.OutlierSigma = 0.2
	cfg.Validate()
	if cfg.OutlierSigma != 1 {
		t.Errorf("Expected sigma clamped to 1, got %v", cfg.OutlierSigma)
	}
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HasActiveFilters() {
		t.Error("Expected default config to be inactive")
	}
	cfg.SetYRange(0, 100)
	if lo, hi, ok := cfg.YRange(); !ok || lo != 0 || hi != 100 {
		t.Errorf("Unexpected Y range %v %v %v", lo, hi, ok)
	}
	if _, _, ok := cfg.XRange(); ok {
		t.Error("Expected no X range")
	}
	if !cfg.HasActiveFilters() {
		t.Error("Expected Y range to activate filters")
	}
	cfg.Clear()
	if cfg.HasActiveFilters() || cfg.OutlierSigma != DefaultOutlierSigma {
		t.Errorf("Expected cleared config, got %+v", cfg)
	}

	// accessors work on returned copies
	if _, _, ok := DefaultConfig().XRange(); ok || DefaultConfig().HasActiveFilters() {
		t.Error("Expected default config to have no ranges")
	}
}

func TestPassesComposition(t *testing.T) {
	outliers := NewOutlierStatsCache()
	outliers.Set(1, ColumnStats{Mean: 50, StdDev: 10})
	outliers.Set(2, ColumnStats{Mean: 50, StdDev: 0})

	cfg := Config{
		FilterEmpty:    true,
		XMin:           ptr(0),
		XMax:           ptr(100),
		YMin:           ptr(0),
		YMax:           ptr(90),
		FilterOutliers: true,
		OutlierSigma:   3,
	}
	selected := []int{1, 2}

	tests := []struct {
		name     string
		point    Candidate
		cfg      Config
		expected bool
	}{
		{"passes all", Candidate{X: 5, Y: 55, YCol: 1, Raw: "55"}, cfg, true},
		{"empty raw", Candidate{X: 5, Y: math.NaN(), YCol: 1, Raw: " "}, cfg, false},
		{"nan raw", Candidate{X: 5, Y: 55, YCol: 1, Raw: "NaN"}, cfg, false},
		{"null raw", Candidate{X: 5, Y: 55, YCol: 1, Raw: "null"}, cfg, false},
		{"empty check skipped for unselected column", Candidate{X: 5, Y: 55, YCol: 3, Raw: ""}, cfg, true},
		{"below x min", Candidate{X: -1, Y: 55, YCol: 1, Raw: "55"}, cfg, false},
		{"above x max", Candidate{X: 101, Y: 55, YCol: 1, Raw: "55"}, cfg, false},
		{"x bound inclusive", Candidate{X: 100, Y: 55, YCol: 1, Raw: "55"}, cfg, true},
		{"below y min", Candidate{X: 5, Y: -0.5, YCol: 1, Raw: "-0.5"}, cfg, false},
		{"above y max", Candidate{X: 5, Y: 95, YCol: 1, Raw: "95"}, cfg, false},
		{"outlier", Candidate{X: 5, Y: 85, YCol: 1, Raw: "85"}, cfg, false},
		{"zero stddev skips outlier check", Candidate{X: 5, Y: 85, YCol: 2, Raw: "85"}, cfg, true},
		{"no stats skips outlier check", Candidate{X: 5, Y: 85, YCol: 3, Raw: "85"}, cfg, true},
		{"inactive filters ignored", Candidate{X: -50, Y: 1e9, YCol: 1, Raw: ""}, DefaultConfig(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			if got := Passes(tt.point, &cfg, selected, outliers); got != tt.expected {
				t.Errorf("Passes(%+v) = %v, expected %v", tt.point, got, tt.expected)
			}
		})
	}
}

type fakeSource map[int][]float64

func (f fakeSource) ColumnAsNumeric(col int) ([]float64, error) {
	v, ok := f[col]
	if !ok {
		return nil, errors.New("no such column")
	}
	return v, nil
}

func TestOutlierStatsCachePopulate(t *testing.T) {
	cache := NewOutlierStatsCache()
	src := fakeSource{0: {1, 2, 3, 4, 5, math.NaN()}}

	if err := cache.Populate(src, []int{0}); err != nil {
		t.Fatalf("Failed to populate cache: %v", err)
	}
	s, ok := cache.Get(0)
	if !ok || s.Mean != 3 || math.Abs(s.StdDev-math.Sqrt2) > 1e-9 {
		t.Errorf("Unexpected stats %+v", s)
	}

	if err := cache.Populate(src, []int{7}); err == nil {
		t.Error("Expected error for unknown column")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d entries", cache.Len())
	}
}
