package table

import (
	"fmt"
)

// ErrorKind classifies a DataError.
type ErrorKind int

const (
	IoError ErrorKind = iota
	UnsupportedFormat
	ParseError
	ColumnNotFound
	InvalidColumnIndex
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case ParseError:
		return "ParseError"
	case ColumnNotFound:
		return "ColumnNotFound"
	case InvalidColumnIndex:
		return "InvalidColumnIndex"
	default:
		return "Unknown"
	}
}

// DataError is returned by every fallible table operation.
type DataError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

// Sentinels for errors.Is. A DataError matches the sentinel of its kind.
var (
	ErrIO                 = &DataError{Kind: IoError}
	ErrUnsupportedFormat  = &DataError{Kind: UnsupportedFormat}
	ErrParse              = &DataError{Kind: ParseError}
	ErrColumnNotFound     = &DataError{Kind: ColumnNotFound}
	ErrInvalidColumnIndex = &DataError{Kind: InvalidColumnIndex}
)

func (e *DataError) Error() string {
	if e.Err != nil {
		if e.Detail == "" {
			return e.Err.Error()
		}
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Is(target error) bool {
	t, ok := target.(*DataError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Detail == "" && t.Err == nil
}

// Title is the short heading shown in the error banner.
func (e *DataError) Title() string {
	switch e.Kind {
	case IoError:
		return "File Error"
	case UnsupportedFormat:
		return "Unsupported Format"
	case ColumnNotFound:
		return "Column Not Found"
	case InvalidColumnIndex:
		return "Invalid Column"
	default:
		return "Data Error"
	}
}

func newIOError(path string, err error) *DataError {
	return &DataError{Kind: IoError, Detail: fmt.Sprintf("Failed to access file %s", path), Err: err}
}

func newUnsupportedFormat(ext string) *DataError {
	return &DataError{Kind: UnsupportedFormat, Detail: fmt.Sprintf("Unsupported file format: '%s'", ext)}
}

func newParseError(detail string, err error) *DataError {
	return &DataError{Kind: ParseError, Detail: detail, Err: err}
}

func newColumnNotFound(name string) *DataError {
	return &DataError{Kind: ColumnNotFound, Detail: fmt.Sprintf("Column '%s' not found", name)}
}

func newInvalidColumnIndex(index, count int) *DataError {
	return &DataError{Kind: InvalidColumnIndex, Detail: fmt.Sprintf("Column index %d out of range (max: %d)", index, count-1)}
}
