package table

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"spcplot/app/timestamps"
)

// InferSampleRows is the number of data rows used to infer column kinds.
const InferSampleRows = 100

// ctxCheckInterval is how many rows are processed between cancellation checks.
const ctxCheckInterval = 4096

// readCSV decodes a CSV stream whose first row is the header.
func readCSV(ctx context.Context, r io.Reader) ([]*Column, error) {
	reader := csv.NewReader(r)
	// Allow variable number of fields per record; short rows are padded with nulls
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	firstRow, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newParseError("CSV file is empty", nil)
		}
		return nil, newParseError("Failed to read CSV header", err)
	}
	header := NormalizeHeaders(firstRow)

	var records [][]string
	for {
		if len(records)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, newParseError("Failed to decode CSV", err)
		}
		records = append(records, rec)
	}

	columns := make([]*Column, len(header))
	for col, name := range header {
		sample := make([]string, 0, InferSampleRows)
		for i := 0; i < len(records) && i < InferSampleRows; i++ {
			sample = append(sample, cell(records[i], col))
		}
		kind, layout := inferKind(sample)

		c := newColumn(name, kind, len(records))
		for _, rec := range records {
			appendCell(c, layout, cell(rec, col))
		}
		columns[col] = c
	}
	return columns, nil
}

func cell(rec []string, col int) string {
	if col < len(rec) {
		return strings.TrimSpace(rec[col])
	}
	return ""
}

// inferKind picks the narrowest kind that every non-empty sample parses as.
// Columns with no non-empty sample are strings.
func inferKind(sample []string) (ColumnKind, *timestamps.Layout) {
	seen := 0
	isInt, isFloat, isBool := true, true, true
	for _, s := range sample {
		if s == "" {
			continue
		}
		seen++
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
	}

	switch {
	case seen == 0:
		return KindString, nil
	case isInt:
		return KindInt, nil
	case isFloat:
		return KindFloat, nil
	case isBool:
		return KindBool, nil
	}

	if layout, ok := timestamps.DetectLayout(sample); ok {
		if layout.Kind == timestamps.KindDate {
			return KindDate, layout
		}
		return KindDatetime, layout
	}
	return KindString, nil
}

// appendCell parses s as the column's kind; failures become null.
func appendCell(c *Column, layout *timestamps.Layout, s string) {
	if s == "" && c.Kind != KindString {
		c.appendNull()
		return
	}

	switch c.Kind {
	case KindInt:
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			c.appendInt(v)
			return
		}
	case KindFloat:
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			c.appendFloat(v)
			return
		}
	case KindBool:
		if v, ok := parseBool(s); ok {
			c.appendInt(ternary(v, int64(1), int64(0)))
			return
		}
	case KindDatetime, KindDate:
		if t, ok := layout.Parse(s); ok {
			c.appendInt(t.UnixNano())
			return
		}
	case KindString:
		if s == "" {
			c.appendNull()
			return
		}
		c.appendString(s)
		return
	}
	c.appendNull()
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
