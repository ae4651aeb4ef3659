package settings

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
)

// LineStyle controls how scatter series are drawn
type LineStyle string

const (
	LineStyleLine          LineStyle = "Line"
	LineStylePoints        LineStyle = "Points"
	LineStyleLineAndPoints LineStyle = "LineAndPoints"
)

// ViewOptions are the display toggles that are not SPC overlays
type ViewOptions struct {
	ShowGrid      bool
	ShowLegend    bool
	LineStyle     LineStyle
	ShowHistogram bool
	HistogramBins int
	ShowBoxplot   bool
	DarkMode      bool
}

// DefaultViewOptions returns the startup display options
func DefaultViewOptions() ViewOptions {
	return ViewOptions{
		ShowGrid:      true,
		ShowLegend:    true,
		LineStyle:     LineStyleLine,
		HistogramBins: defaultSettings.HistogramBins,
		DarkMode:      true,
	}
}

// ViewConfig is the saved-view document: display options plus SPC overlay
// parameters. Every field is written; fields missing on read keep defaults.
type ViewConfig struct {
	ShowGrid         bool      `json:"show_grid"`
	ShowLegend       bool      `json:"show_legend"`
	LineStyle        LineStyle `json:"line_style"`
	ShowSpcLimits    bool      `json:"show_spc_limits"`
	SigmaMultiplier  float64   `json:"sigma_multiplier"`
	ShowSigmaZones   bool      `json:"show_sigma_zones"`
	ShowOutliers     bool      `json:"show_outliers"`
	OutlierThreshold float64   `json:"outlier_threshold"`
	ShowMovingAvg    bool      `json:"show_moving_avg"`
	MAWindow         int       `json:"ma_window"`
	ShowEWMA         bool      `json:"show_ewma"`
	EWMALambda       float64   `json:"ewma_lambda"`
	ShowRegression   bool      `json:"show_regression"`
	RegressionOrder  int       `json:"regression_order"`
	ShowHistogram    bool      `json:"show_histogram"`
	HistogramBins    int       `json:"histogram_bins"`
	ShowBoxplot      bool      `json:"show_boxplot"`
	ShowCapability   bool      `json:"show_capability"`
	SpecLower        float64   `json:"spec_lower"`
	SpecUpper        float64   `json:"spec_upper"`
	ShowWERules      bool      `json:"show_we_rules"`
	DarkMode         bool      `json:"dark_mode"`
}

// NewViewConfig captures the current view and SPC options
func NewViewConfig(view ViewOptions, spc SpcConfig) ViewConfig {
	return ViewConfig{
		ShowGrid:         view.ShowGrid,
		ShowLegend:       view.ShowLegend,
		LineStyle:        view.LineStyle,
		ShowSpcLimits:    spc.ShowSpcLimits,
		SigmaMultiplier:  spc.SigmaMultiplier,
		ShowSigmaZones:   spc.ShowSigmaZones,
		ShowOutliers:     spc.ShowOutliers,
		OutlierThreshold: spc.OutlierThreshold,
		ShowMovingAvg:    spc.ShowMovingAvg,
		MAWindow:         spc.MAWindow,
		ShowEWMA:         spc.ShowEWMA,
		EWMALambda:       spc.EWMALambda,
		ShowRegression:   spc.ShowRegression,
		RegressionOrder:  spc.RegressionOrder,
		ShowHistogram:    view.ShowHistogram,
		HistogramBins:    view.HistogramBins,
		ShowBoxplot:      view.ShowBoxplot,
		ShowCapability:   spc.ShowCapability,
		SpecLower:        spc.SpecLower,
		SpecUpper:        spc.SpecUpper,
		ShowWERules:      spc.ShowWERules,
		DarkMode:         view.DarkMode,
	}
}

// DefaultViewConfig is the config of a fresh session
func DefaultViewConfig() ViewConfig {
	return NewViewConfig(DefaultViewOptions(), DefaultSpcConfig())
}

// Apply copies the saved options into view and spc. Derived SPC fields are
// left alone.
func (c ViewConfig) Apply(view *ViewOptions, spc *SpcConfig) {
	view.ShowGrid = c.ShowGrid
	view.ShowLegend = c.ShowLegend
	view.LineStyle = c.LineStyle
	view.ShowHistogram = c.ShowHistogram
	view.HistogramBins = max(c.HistogramBins, 1)
	view.ShowBoxplot = c.ShowBoxplot
	view.DarkMode = c.DarkMode

	spc.ShowSpcLimits = c.ShowSpcLimits
	spc.SigmaMultiplier = c.SigmaMultiplier
	spc.ShowSigmaZones = c.ShowSigmaZones
	spc.ShowOutliers = c.ShowOutliers
	spc.OutlierThreshold = c.OutlierThreshold
	spc.ShowMovingAvg = c.ShowMovingAvg
	spc.MAWindow = c.MAWindow
	spc.ShowEWMA = c.ShowEWMA
	spc.EWMALambda = c.EWMALambda
	spc.ShowRegression = c.ShowRegression
	spc.RegressionOrder = c.RegressionOrder
	spc.ShowCapability = c.ShowCapability
	spc.SpecLower = c.SpecLower
	spc.SpecUpper = c.SpecUpper
	spc.ShowWERules = c.ShowWERules
	spc.Validate()
}

func (c ViewConfig) toMap() map[string]any {
	return map[string]any{
		"show_grid":         c.ShowGrid,
		"show_legend":       c.ShowLegend,
		"line_style":        string(c.LineStyle),
		"show_spc_limits":   c.ShowSpcLimits,
		"sigma_multiplier":  c.SigmaMultiplier,
		"show_sigma_zones":  c.ShowSigmaZones,
		"show_outliers":     c.ShowOutliers,
		"outlier_threshold": c.OutlierThreshold,
		"show_moving_avg":   c.ShowMovingAvg,
		"ma_window":         int64(c.MAWindow),
		"show_ewma":         c.ShowEWMA,
		"ewma_lambda":       c.EWMALambda,
		"show_regression":   c.ShowRegression,
		"regression_order":  int64(c.RegressionOrder),
		"show_histogram":    c.ShowHistogram,
		"histogram_bins":    int64(c.HistogramBins),
		"show_boxplot":      c.ShowBoxplot,
		"show_capability":   c.ShowCapability,
		"spec_lower":        c.SpecLower,
		"spec_upper":        c.SpecUpper,
		"show_we_rules":     c.ShowWERules,
		"dark_mode":         c.DarkMode,
	}
}

// MarshalViewConfig renders c as indented JSON with sorted keys
func MarshalViewConfig(c ViewConfig) ([]byte, error) {
	return oj.Marshal(c.toMap(), &ojg.Options{Indent: 2, Sort: true})
}

// ParseViewConfig reads a view config document. Missing or mistyped fields
// keep their defaults; an unknown line style is an error.
func ParseViewConfig(data []byte) (ViewConfig, error) {
	c := DefaultViewConfig()

	parsed, err := oj.Parse(data)
	if err != nil {
		return c, fmt.Errorf("failed to parse config file: %w", err)
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		return c, fmt.Errorf("failed to parse config file: expected an object, got %T", parsed)
	}

	setBool(m, "show_grid", &c.ShowGrid)
	setBool(m, "show_legend", &c.ShowLegend)
	setBool(m, "show_spc_limits", &c.ShowSpcLimits)
	setBool(m, "show_sigma_zones", &c.ShowSigmaZones)
	setBool(m, "show_outliers", &c.ShowOutliers)
	setBool(m, "show_moving_avg", &c.ShowMovingAvg)
	setBool(m, "show_ewma", &c.ShowEWMA)
	setBool(m, "show_regression", &c.ShowRegression)
	setBool(m, "show_histogram", &c.ShowHistogram)
	setBool(m, "show_boxplot", &c.ShowBoxplot)
	setBool(m, "show_capability", &c.ShowCapability)
	setBool(m, "show_we_rules", &c.ShowWERules)
	setBool(m, "dark_mode", &c.DarkMode)

	setFloat(m, "sigma_multiplier", &c.SigmaMultiplier)
	setFloat(m, "outlier_threshold", &c.OutlierThreshold)
	setFloat(m, "ewma_lambda", &c.EWMALambda)
	setFloat(m, "spec_lower", &c.SpecLower)
	setFloat(m, "spec_upper", &c.SpecUpper)

	setInt(m, "ma_window", &c.MAWindow)
	setInt(m, "regression_order", &c.RegressionOrder)
	setInt(m, "histogram_bins", &c.HistogramBins)

	if v, ok := m["line_style"].(string); ok {
		switch style := LineStyle(v); style {
		case LineStyleLine, LineStylePoints, LineStyleLineAndPoints:
			c.LineStyle = style
		default:
			return DefaultViewConfig(), fmt.Errorf("failed to parse config file: unknown line_style %q", v)
		}
	}
	return c, nil
}

// SaveViewConfig writes c to path
func SaveViewConfig(path string, c ViewConfig) error {
	b, err := MarshalViewConfig(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// LoadViewConfig reads a view config from path
func LoadViewConfig(path string) (ViewConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return DefaultViewConfig(), fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseViewConfig(b)
}

func setBool(m map[string]any, key string, dst *bool) {
	if v, ok := m[key].(bool); ok {
		*dst = v
	}
}

func setFloat(m map[string]any, key string, dst *float64) {
	switch v := m[key].(type) {
	case float64:
		*dst = v
	case int64:
		*dst = float64(v)
	}
}

func setInt(m map[string]any, key string, dst *int) {
	switch v := m[key].(type) {
	case int64:
		*dst = int(v)
	case float64:
		if v == float64(int(v)) {
			*dst = int(v)
		}
	}
}
