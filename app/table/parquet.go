package table

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
)

// readParquet loads every column of a Parquet file through Arrow.
func readParquet(ctx context.Context, path string) ([]*Column, error) {
	pf, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, newParseError("Failed to open Parquet file", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{Parallel: true}, memory.DefaultAllocator)
	if err != nil {
		return nil, newParseError("Failed to create Parquet reader", err)
	}

	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newParseError("Failed to read Parquet data", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	names := make([]string, schema.NumFields())
	for i, f := range schema.Fields() {
		names[i] = f.Name
	}
	names = NormalizeHeaders(names)

	rows := int(tbl.NumRows())
	columns := make([]*Column, tbl.NumCols())
	for i := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		field := schema.Field(i)
		c := newColumn(names[i], arrowKind(field.Type), rows)
		for _, chunk := range tbl.Column(i).Data().Chunks() {
			appendArrow(c, chunk)
		}
		columns[i] = c
	}
	return columns, nil
}

// arrowKind maps an Arrow type to the column kind that stores it.
func arrowKind(dt arrow.DataType) ColumnKind {
	switch dt.ID() {
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return KindFloat
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return KindInt
	case arrow.BOOL:
		return KindBool
	case arrow.TIMESTAMP:
		return KindDatetime
	case arrow.DATE32, arrow.DATE64:
		return KindDate
	default:
		return KindString
	}
}

func appendArrow(c *Column, arr arrow.Array) {
	for i := 0; i < arr.Len(); i++ {
		if arr.IsNull(i) {
			c.appendNull()
			continue
		}
		switch a := arr.(type) {
		case *array.Float64:
			c.appendFloat(a.Value(i))
		case *array.Float32:
			c.appendFloat(float64(a.Value(i)))
		case *array.Float16:
			c.appendFloat(float64(a.Value(i).Float32()))
		case *array.Int8:
			c.appendInt(int64(a.Value(i)))
		case *array.Int16:
			c.appendInt(int64(a.Value(i)))
		case *array.Int32:
			c.appendInt(int64(a.Value(i)))
		case *array.Int64:
			c.appendInt(a.Value(i))
		case *array.Uint8:
			c.appendInt(int64(a.Value(i)))
		case *array.Uint16:
			c.appendInt(int64(a.Value(i)))
		case *array.Uint32:
			c.appendInt(int64(a.Value(i)))
		case *array.Uint64:
			c.appendInt(int64(a.Value(i)))
		case *array.Boolean:
			c.appendInt(ternary(a.Value(i), int64(1), int64(0)))
		case *array.Timestamp:
			unit := a.DataType().(*arrow.TimestampType).Unit
			c.appendInt(a.Value(i).ToTime(unit).UnixNano())
		case *array.Date32:
			c.appendInt(a.Value(i).ToTime().UnixNano())
		case *array.Date64:
			c.appendInt(a.Value(i).ToTime().UnixNano())
		case *array.String:
			c.appendString(a.Value(i))
		case *array.LargeString:
			c.appendString(a.Value(i))
		default:
			if c.Kind == KindString {
				c.appendString(arr.ValueStr(i))
			} else {
				c.appendNull()
			}
		}
	}
}

// WriteFloatParquet writes equally long float64 columns to a Parquet file.
func WriteFloatParquet(path string, names []string, columns [][]float64) error {
	if len(names) != len(columns) {
		return fmt.Errorf("got %d names for %d columns", len(names), len(columns))
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64}
	}
	schema := arrow.NewSchema(fields, nil)

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()
	for i, values := range columns {
		builder.Field(i).(*array.Float64Builder).AppendValues(values, nil)
	}
	rec := builder.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return newIOError(path, err)
	}
	defer f.Close()

	writer, err := pqarrow.NewFileWriter(schema, f, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	if err := writer.Write(rec); err != nil {
		writer.Close()
		return fmt.Errorf("failed to write parquet record: %w", err)
	}
	// Close flushes the footer and closes the file
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
