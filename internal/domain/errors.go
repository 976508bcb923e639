package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by lookups for datasets that do not exist.
var ErrNotFound = errors.New("not found")

type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// RowParseError reports the first data row (1-based) that could not be
// converted into an equipment record.
type RowParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *RowParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: malformed record: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: column %q: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type %q: upload a .csv or .xlsx file", e.Filename)
}

// MalformedFileError means the upload could not be opened as its declared format.
type MalformedFileError struct {
	Format string
	Err    error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed %s file: %v", e.Format, e.Err)
}

func (e *MalformedFileError) Unwrap() error { return e.Err }

// RenderError wraps unexpected chart or document synthesis failures.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	var mc *MissingColumnsError
	var rp *RowParseError
	var uf *UnsupportedFormatError
	var mf *MalformedFileError
	return errors.As(err, &mc) || errors.As(err, &rp) || errors.As(err, &uf) || errors.As(err, &mf)
}
