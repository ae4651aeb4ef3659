package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowMajorFloat64 returns the numeric projection of every column, one slice
// per view row.
func (t *Table) RowMajorFloat64() [][]float64 {
	cols := make([][]float64, len(t.columns))
	for col := range t.columns {
		cols[col], _ = t.ColumnAsNumeric(col)
	}
	rows := make([][]float64, t.RowCount())
	for r := range rows {
		row := make([]float64, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows
}

// RowMajorString returns the display projection of every column, one slice
// per view row.
func (t *Table) RowMajorString() [][]string {
	cols := make([][]string, len(t.columns))
	for col := range t.columns {
		cols[col], _ = t.ColumnAsString(col)
	}
	rows := make([][]string, t.RowCount())
	for r := range rows {
		row := make([]string, len(cols))
		for c := range cols {
			row[c] = cols[c][r]
		}
		rows[r] = row
	}
	return rows
}

// ExportCSV writes the header and every view row in display form.
func (t *Table) ExportCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range t.RowMajorString() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportXLSX writes the view to a single-sheet workbook. Numeric columns are
// written as numbers, everything else in display form; nulls stay empty.
func (t *Table) ExportXLSX(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.Name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	numeric := make([]bool, len(t.columns))
	for i, c := range t.columns {
		numeric[i] = c.Kind == KindFloat || c.Kind == KindInt
	}

	floats := t.RowMajorFloat64()
	strs := t.RowMajorString()
	for r := range strs {
		values := make([]interface{}, len(t.columns))
		for c := range t.columns {
			switch {
			case t.columns[c].IsNull(t.view[r]):
				values[c] = nil
			case numeric[c] && !math.IsNaN(floats[r][c]):
				values[c] = floats[r][c]
			default:
				values[c] = strs[r][c]
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return newIOError(path, err)
	}
	return nil
}

// FormatRowsTSV renders the selected view rows of the given columns as
// tab-separated text with a header line. Rows are emitted in view order.
func (t *Table) FormatRowsTSV(rows []int, cols []int) (string, error) {
	var b strings.Builder
	names := make([]string, len(cols))
	data := make([][]string, len(cols))
	for i, col := range cols {
		c, err := t.Column(col)
		if err != nil {
			return "", err
		}
		names[i] = c.Name
		if data[i], err = t.ColumnAsString(col); err != nil {
			return "", err
		}
	}
	b.WriteString(strings.Join(names, "\t"))
	b.WriteByte('\n')

	sorted := append([]int(nil), rows...)
	sort.Ints(sorted)
	fields := make([]string, len(cols))
	for _, row := range sorted {
		if row < 0 || row >= t.RowCount() {
			continue
		}
		for i := range cols {
			fields[i] = data[i][row]
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}
