// Package session holds the state of one open data file: the table, the
// column selection, the point filters, the SPC options and the caches derived
// from them. A Session is owned by the interactive goroutine.
package session

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"spcplot/app/cache"
	"spcplot/app/downsample"
	"spcplot/app/filter"
	"spcplot/app/settings"
	"spcplot/app/table"
)

// Logger interface for session logging
type Logger interface {
	Log(level, message string)
}

// PlotMode selects the main chart
type PlotMode int

const (
	ModeScatter PlotMode = iota
	ModeHistogram
	ModeBoxPlot
	ModePareto
	ModeXbarR
	ModePChart
)

// String returns the string representation of PlotMode
func (m PlotMode) String() string {
	switch m {
	case ModeHistogram:
		return "Histogram"
	case ModeBoxPlot:
		return "BoxPlot"
	case ModePareto:
		return "Pareto"
	case ModeXbarR:
		return "XbarR"
	case ModePChart:
		return "PChart"
	default:
		return "Scatter"
	}
}

// Options are the performance knobs taken from the app settings
type Options struct {
	DownsampleThreshold int
	LttbTargetPoints    int
	ZoomCacheMaxEntries int
}

// OptionsFromSettings extracts session options from app settings
func OptionsFromSettings(s settings.Settings) Options {
	return Options{
		DownsampleThreshold: s.DownsampleThreshold,
		LttbTargetPoints:    s.LttbTargetPoints,
		ZoomCacheMaxEntries: s.ZoomCacheMaxEntries,
	}
}

// Session is the state of one open data file
type Session struct {
	View settings.ViewOptions
	Spc  settings.SpcConfig
	Mode PlotMode

	table   *table.Table
	version uint64

	xCol        int
	useRowIndex bool
	yCols       []int
	filters     filter.Config

	outliers *filter.OutlierStatsCache
	zoom     *cache.ZoomCache
	stats    *cache.StatsCache
	adaptive map[int]*downsample.AdaptiveDownsampler

	series      []Series
	seriesValid bool

	dataTable *DataTableView

	opts   Options
	logger Logger
}

// New creates an empty session
func New(opts Options, logger Logger) *Session {
	if opts.DownsampleThreshold <= 0 {
		opts.DownsampleThreshold = settings.DefaultSettings().DownsampleThreshold
	}
	if opts.LttbTargetPoints < 3 {
		opts.LttbTargetPoints = settings.DefaultSettings().LttbTargetPoints
	}
	zoom := cache.NewZoomCacheWithLogger(opts.ZoomCacheMaxEntries, logger)
	zoom.SetTargetPoints(opts.LttbTargetPoints)

	s := &Session{
		View:     settings.DefaultViewOptions(),
		Spc:      settings.DefaultSpcConfig(),
		filters:  filter.DefaultConfig(),
		outliers: filter.NewOutlierStatsCache(),
		zoom:     zoom,
		stats:    cache.NewStatsCache(),
		adaptive: make(map[int]*downsample.AdaptiveDownsampler),
		opts:     opts,
		logger:   logger,
	}
	s.dataTable = newDataTableView(s)
	return s
}

// SetTable replaces the loaded data. The X column becomes the first column
// and the Y selection the second; a single-column table plots against the
// row index. When the plotted columns cannot be projected the previous table
// stays active.
func (s *Session) SetTable(ctx context.Context, tbl *table.Table) error {
	xCol, useRowIndex := 0, false
	var yCols []int
	switch {
	case tbl.ColumnCount() > 1:
		yCols = []int{1}
	case tbl.ColumnCount() == 1:
		yCols = []int{0}
		useRowIndex = true
	}

	plotted := append([]int(nil), yCols...)
	if !useRowIndex && tbl.ColumnCount() > 0 {
		plotted = append(plotted, xCol)
	}
	if err := tbl.EnsureNumericColumns(ctx, plotted); err != nil {
		return err
	}

	s.table = tbl
	s.xCol, s.useRowIndex, s.yCols = xCol, useRowIndex, yCols
	s.dataTable.reset()
	s.dataChanged()

	s.log("info", fmt.Sprintf("[SESSION_LOAD] %s: %d rows, %d columns, version %d",
		filepath.Base(tbl.Path()), tbl.RowCount(), tbl.ColumnCount(), s.version))
	return nil
}

// Table returns the loaded table, or nil
func (s *Session) Table() *table.Table { return s.table }

// HasData reports whether a table is loaded
func (s *Session) HasData() bool { return s.table != nil }

// Version increments on every change to the table contents or view
func (s *Session) Version() uint64 { return s.version }

// ZoomCacheStats exposes the downsample cache statistics
func (s *Session) ZoomCacheStats() cache.ZoomCacheStats { return s.zoom.Stats() }

// XColumn returns the X column index
func (s *Session) XColumn() int { return s.xCol }

// UseRowIndex reports whether X is the row number
func (s *Session) UseRowIndex() bool { return s.useRowIndex }

// YColumns returns a copy of the selected Y columns
func (s *Session) YColumns() []int { return append([]int(nil), s.yCols...) }

// XIsTimestamp reports whether the X axis shows datetimes
func (s *Session) XIsTimestamp() bool {
	return s.table != nil && !s.useRowIndex && s.table.IsDatetimeColumn(s.xCol)
}

// SetXColumn selects the X column
func (s *Session) SetXColumn(col int) error {
	if err := s.checkColumn(col); err != nil {
		return err
	}
	s.xCol = col
	s.useRowIndex = false
	s.seriesChanged()
	return nil
}

// SetUseRowIndex plots against the row number instead of the X column
func (s *Session) SetUseRowIndex(v bool) {
	if s.useRowIndex != v {
		s.useRowIndex = v
		s.seriesChanged()
	}
}

// SetYColumns replaces the Y selection. Duplicates are dropped.
func (s *Session) SetYColumns(cols []int) error {
	seen := make(map[int]bool, len(cols))
	out := make([]int, 0, len(cols))
	for _, col := range cols {
		if err := s.checkColumn(col); err != nil {
			return err
		}
		if !seen[col] {
			seen[col] = true
			out = append(out, col)
		}
	}
	s.yCols = out
	s.seriesChanged()
	return nil
}

// ToggleYColumn adds or removes one Y column
func (s *Session) ToggleYColumn(col int) error {
	if err := s.checkColumn(col); err != nil {
		return err
	}
	for i, c := range s.yCols {
		if c == col {
			s.yCols = append(s.yCols[:i:i], s.yCols[i+1:]...)
			s.seriesChanged()
			return nil
		}
	}
	s.yCols = append(s.yCols, col)
	s.seriesChanged()
	return nil
}

// SelectYColumnsGlob selects every column whose name matches a glob pattern
// such as "sensor_*" or "temp_{a,b}", excluding the X column. It returns the
// number of selected columns.
func (s *Session) SelectYColumnsGlob(pattern string) (int, error) {
	if s.table == nil {
		return 0, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalid column pattern %q", pattern)
	}
	var cols []int
	for i, name := range s.table.ColumnNames() {
		if i == s.xCol && !s.useRowIndex {
			continue
		}
		if ok, _ := doublestar.Match(pattern, name); ok {
			cols = append(cols, i)
		}
	}
	if err := s.SetYColumns(cols); err != nil {
		return 0, err
	}
	return len(cols), nil
}

// Filters returns the point filter configuration
func (s *Session) Filters() filter.Config { return s.filters }

// SetFilters replaces the point filters
func (s *Session) SetFilters(cfg filter.Config) {
	cfg.Validate()
	s.filters = cfg
	s.outliers.Clear()
	s.seriesChanged()
}

// ApplyFilterExpression restricts the table to rows matching expr. On error
// the previous rows stay selected.
func (s *Session) ApplyFilterExpression(expr string) error {
	if s.table == nil {
		return nil
	}
	if err := s.table.ApplyFilterExpression(expr); err != nil {
		return err
	}
	s.dataChanged()
	return nil
}

// ClearFilterExpression restores every row of the table
func (s *Session) ClearFilterExpression() {
	if s.table == nil {
		return
	}
	s.table.Refresh()
	s.dataChanged()
}

// ParseWarnings lists plotted columns with many unparseable values
func (s *Session) ParseWarnings() []string {
	if s.table == nil {
		return nil
	}
	return s.table.ParseWarnings()
}

// InvalidateCaches drops every derived cache without changing the data
func (s *Session) InvalidateCaches() {
	s.dataChanged()
}

func (s *Session) checkColumn(col int) error {
	if s.table == nil {
		return fmt.Errorf("no data loaded")
	}
	_, err := s.table.Column(col)
	return err
}

func (s *Session) plottedColumns() []int {
	cols := append([]int(nil), s.yCols...)
	if !s.useRowIndex && s.table != nil && s.table.ColumnCount() > 0 {
		cols = append(cols, s.xCol)
	}
	return cols
}

// dataChanged is called whenever the rows of the view change
func (s *Session) dataChanged() {
	s.version++
	s.stats.Invalidate()
	s.outliers.Clear()
	s.Spc.ClearDerived()
	if s.dataTable != nil {
		s.dataTable.ClearSelection()
	}
	s.seriesChanged()
}

// seriesChanged is called whenever the plotted points change
func (s *Session) seriesChanged() {
	s.series = nil
	s.seriesValid = false
	s.zoom.Invalidate()
	for _, a := range s.adaptive {
		a.ForceSettle()
	}
}

func (s *Session) log(level, message string) {
	if s.logger != nil {
		s.logger.Log(level, message)
	}
}
