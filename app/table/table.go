package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"spcplot/app/query"
	"spcplot/app/timestamps"
)

// Table is a loaded data file plus a materialized row view over it.
//
// The numeric and string projections are memoized per column. Both caches
// always describe the current view and are cleared together whenever the view
// changes. A Table is owned by one goroutine at a time.
type Table struct {
	path        string
	format      FileType
	compression CompressionType
	fingerprint string

	columns []*Column
	// view holds base row indices of the materialized view, in order
	view []int

	numeric map[int][]float64
	strs    map[int][]string
}

// Load reads a CSV or Parquet file into a Table selecting every row.
func Load(ctx context.Context, path string) (*Table, error) {
	format, compression, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	fingerprint, err := CalculateFileHash(path)
	if err != nil {
		return nil, newIOError(path, err)
	}

	var columns []*Column
	switch format {
	case FileTypeCSV:
		rc, err := openDecompressing(path, compression)
		if err != nil {
			return nil, newIOError(path, err)
		}
		columns, err = readCSV(ctx, rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
	case FileTypeParquet:
		columns, err = readParquet(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	t := New(columns)
	t.path = path
	t.format = format
	t.compression = compression
	t.fingerprint = fingerprint

	log.Printf("[TABLE_LOAD] %s (%s, compression=%s): %d rows x %d columns",
		filepath.Base(path), format, compression, t.RowCount(), t.ColumnCount())
	return t, nil
}

// New builds an in-memory table from columns of equal length.
func New(columns []*Column) *Table {
	t := &Table{
		columns: columns,
		numeric: make(map[int][]float64),
		strs:    make(map[int][]string),
	}
	t.view = t.allRows()
	return t
}

func (t *Table) allRows() []int {
	n := 0
	if len(t.columns) > 0 {
		n = t.columns[0].Len()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// Path returns the file the table was loaded from.
func (t *Table) Path() string { return t.path }

// Format returns the detected file type.
func (t *Table) Format() FileType { return t.format }

// Fingerprint returns the hex HighwayHash of the loaded file.
func (t *Table) Fingerprint() string { return t.fingerprint }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// RowCount returns the number of rows in the materialized view.
func (t *Table) RowCount() int { return len(t.view) }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// Column returns the column at index col.
func (t *Table) Column(col int) (*Column, error) {
	if col < 0 || col >= len(t.columns) {
		return nil, newInvalidColumnIndex(col, len(t.columns))
	}
	return t.columns[col], nil
}

// ColumnIndex resolves a column name.
func (t *Table) ColumnIndex(name string) (int, error) {
	for i, c := range t.columns {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, newColumnNotFound(name)
}

// IsDatetimeColumn reports whether the column holds datetime or date values.
// Out-of-range indices are not datetime columns.
func (t *Table) IsDatetimeColumn(col int) bool {
	if col < 0 || col >= len(t.columns) {
		return false
	}
	k := t.columns[col].Kind
	return k == KindDatetime || k == KindDate
}

// EnsureNumeric computes and memoizes the numeric projection of col.
func (t *Table) EnsureNumeric(col int) error {
	if _, ok := t.numeric[col]; ok {
		return nil
	}
	c, err := t.Column(col)
	if err != nil {
		return err
	}
	t.numeric[col] = projectNumeric(c, t.view)
	return nil
}

// EnsureNumericColumns projects several columns concurrently and memoizes
// them. Columns already cached are skipped.
func (t *Table) EnsureNumericColumns(ctx context.Context, cols []int) error {
	pending := make([]int, 0, len(cols))
	for _, col := range cols {
		if _, ok := t.numeric[col]; ok {
			continue
		}
		if _, err := t.Column(col); err != nil {
			return err
		}
		pending = append(pending, col)
	}

	results := make([][]float64, len(pending))
	g, ctx := errgroup.WithContext(ctx)
	for i, col := range pending {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = projectNumeric(t.columns[col], t.view)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, col := range pending {
		t.numeric[col] = results[i]
	}
	return nil
}

// ColumnAsNumeric returns one float64 per view row. Nulls and unparseable
// cells are NaN, datetimes are Unix seconds, bools are 0 or 1.
func (t *Table) ColumnAsNumeric(col int) ([]float64, error) {
	if err := t.EnsureNumeric(col); err != nil {
		return nil, err
	}
	return t.numeric[col], nil
}

// CachedNumeric returns the memoized projection without computing it.
func (t *Table) CachedNumeric(col int) ([]float64, bool) {
	v, ok := t.numeric[col]
	return v, ok
}

// EnsureString computes and memoizes the display projection of col.
func (t *Table) EnsureString(col int) error {
	if _, ok := t.strs[col]; ok {
		return nil
	}
	c, err := t.Column(col)
	if err != nil {
		return err
	}
	out := make([]string, len(t.view))
	for i, row := range t.view {
		out[i] = cellText(c, row)
	}
	t.strs[col] = out
	return nil
}

// ColumnAsString returns the display form of every view row of col.
func (t *Table) ColumnAsString(col int) ([]string, error) {
	if err := t.EnsureString(col); err != nil {
		return nil, err
	}
	return t.strs[col], nil
}

// CachedString returns the memoized display projection without computing it.
func (t *Table) CachedString(col int) ([]string, bool) {
	v, ok := t.strs[col]
	return v, ok
}

// ApplyFilterExpression replaces the view with the base rows matching expr.
// On error the view and caches are left untouched.
func (t *Table) ApplyFilterExpression(expr string) error {
	ast, err := query.ParseFilterExpression(expr, t.ColumnNames())
	if err != nil {
		var unknown *query.UnknownColumnError
		if errors.As(err, &unknown) {
			return newColumnNotFound(unknown.Name)
		}
		return newParseError(fmt.Sprintf("Invalid filter expression %q", expr), err)
	}

	base := t.allRows()
	view := make([]int, 0, len(base))
	for _, row := range base {
		if ast.Eval(baseRow{t: t, row: row}) {
			view = append(view, row)
		}
	}

	log.Printf("[TABLE_FILTER] %q kept %d of %d rows", expr, len(view), len(base))
	t.view = view
	t.clearCaches()
	return nil
}

// Refresh restores the view to every base row.
func (t *Table) Refresh() {
	t.view = t.allRows()
	t.clearCaches()
}

func (t *Table) clearCaches() {
	t.numeric = make(map[int][]float64)
	t.strs = make(map[int][]string)
}

// ParseWarnings lists columns where more than 5% of view rows have no
// numeric value.
func (t *Table) ParseWarnings() []string {
	total := t.RowCount()
	if total == 0 {
		return nil
	}
	var warnings []string
	for col, c := range t.columns {
		values, err := t.ColumnAsNumeric(col)
		if err != nil {
			continue
		}
		nan := 0
		for _, v := range values {
			if math.IsNaN(v) {
				nan++
			}
		}
		pct := float64(nan) / float64(total) * 100
		if nan > 0 && pct > 5 {
			warnings = append(warnings, fmt.Sprintf("Column '%s': %d/%d values (%.1f%%) failed to parse",
				c.Name, nan, total, pct))
		}
	}
	return warnings
}

// baseRow adapts a base row for filter evaluation.
type baseRow struct {
	t   *Table
	row int
}

func (r baseRow) Text(col int) string {
	if col < 0 || col >= len(r.t.columns) {
		return ""
	}
	return cellText(r.t.columns[col], r.row)
}

func (r baseRow) Number(col int) float64 {
	if col < 0 || col >= len(r.t.columns) {
		return math.NaN()
	}
	return cellNumber(r.t.columns[col], r.row)
}

func projectNumeric(c *Column, view []int) []float64 {
	out := make([]float64, len(view))
	for i, row := range view {
		out[i] = cellNumber(c, row)
	}
	return out
}

func cellNumber(c *Column, row int) float64 {
	if !c.valid[row] {
		return math.NaN()
	}
	switch c.Kind {
	case KindFloat:
		return c.floats[row]
	case KindInt, KindBool:
		return float64(c.ints[row])
	case KindDatetime, KindDate:
		return timestamps.UnixSeconds(time.Unix(0, c.ints[row]))
	case KindString:
		v, err := strconv.ParseFloat(c.strs[row], 64)
		if err != nil {
			return math.NaN()
		}
		return v
	}
	return math.NaN()
}

// NullText is the display form of a null cell.
const NullText = "null"

func cellText(c *Column, row int) string {
	if !c.valid[row] {
		return NullText
	}
	switch c.Kind {
	case KindFloat:
		return FormatFloat(c.floats[row])
	case KindInt:
		return strconv.FormatInt(c.ints[row], 10)
	case KindBool:
		return strconv.FormatBool(c.ints[row] != 0)
	case KindDatetime:
		return timestamps.FormatDatetime(time.Unix(0, c.ints[row]))
	case KindDate:
		return timestamps.FormatDate(time.Unix(0, c.ints[row]))
	default:
		return c.strs[row]
	}
}

// FormatFloat renders a float in its shortest round-trip form, switching to
// exponent notation only for very large or very small magnitudes.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e21 || abs < 1e-6) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewFloatColumn builds a float column; NaN values are stored as null.
func NewFloatColumn(name string, values []float64) *Column {
	c := newColumn(name, KindFloat, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			c.appendNull()
		} else {
			c.appendFloat(v)
		}
	}
	return c
}

// NewStringColumn builds a string column; empty values are stored as null.
func NewStringColumn(name string, values []string) *Column {
	c := newColumn(name, KindString, len(values))
	for _, v := range values {
		if v == "" {
			c.appendNull()
		} else {
			c.appendString(v)
		}
	}
	return c
}

// NewDatetimeColumn builds a datetime column.
func NewDatetimeColumn(name string, values []time.Time) *Column {
	c := newColumn(name, KindDatetime, len(values))
	for _, v := range values {
		c.appendInt(v.UnixNano())
	}
	return c
}
