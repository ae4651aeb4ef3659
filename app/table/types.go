package table

// Package table holds the columnar data model: typed columns loaded from CSV
// or Parquet, a materialized row view, and the memoized numeric and string
// projections the plot and statistics paths read from.

// FileType represents the type of data file being loaded
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeCSV
	FileTypeParquet
)

// String returns the string representation of FileType
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeParquet:
		return "Parquet"
	default:
		return "Unknown"
	}
}

// ColumnKind is the storage type of a column.
type ColumnKind int

const (
	KindFloat ColumnKind = iota
	KindInt
	KindBool
	KindString
	KindDatetime
	KindDate
)

// String returns the string representation of ColumnKind
func (k ColumnKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindDatetime:
		return "datetime"
	case KindDate:
		return "date"
	default:
		return "unknown"
	}
}

// Column is one typed column of the base table. Exactly one value slice is
// populated, chosen by Kind:
//   - KindFloat: floats
//   - KindInt, KindBool (0/1): ints
//   - KindDatetime, KindDate (Unix nanoseconds, dates at midnight UTC): ints
//   - KindString: strs
//
// valid[i] is false for null cells.
type Column struct {
	Name   string
	Kind   ColumnKind
	floats []float64
	ints   []int64
	strs   []string
	valid  []bool
}

// Len returns the number of base rows in the column.
func (c *Column) Len() int {
	return len(c.valid)
}

// IsNull reports whether the base row is null.
func (c *Column) IsNull(row int) bool {
	return !c.valid[row]
}

func newColumn(name string, kind ColumnKind, capacity int) *Column {
	c := &Column{Name: name, Kind: kind, valid: make([]bool, 0, capacity)}
	switch kind {
	case KindFloat:
		c.floats = make([]float64, 0, capacity)
	case KindString:
		c.strs = make([]string, 0, capacity)
	default:
		c.ints = make([]int64, 0, capacity)
	}
	return c
}

func (c *Column) appendNull() {
	switch c.Kind {
	case KindFloat:
		c.floats = append(c.floats, 0)
	case KindString:
		c.strs = append(c.strs, "")
	default:
		c.ints = append(c.ints, 0)
	}
	c.valid = append(c.valid, false)
}

func (c *Column) appendFloat(v float64) {
	c.floats = append(c.floats, v)
	c.valid = append(c.valid, true)
}

func (c *Column) appendInt(v int64) {
	c.ints = append(c.ints, v)
	c.valid = append(c.valid, true)
}

func (c *Column) appendString(v string) {
	c.strs = append(c.strs, v)
	c.valid = append(c.valid, true)
}
