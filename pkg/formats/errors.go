package formats

import (
	"errors"
	"fmt"
)

// MSHX format errors.
var (
	ErrMissingHeader    = errors.New("missing MSHX1 header")
	ErrMissingGroups    = errors.New("missing GROUPS statement")
	ErrInvalidStatement = errors.New("invalid statement")
	ErrMissingBlock     = errors.New("block missing or malformed")
	ErrVertexFields     = errors.New("vertex line must have 3, 5, 6 or 8 fields")
	ErrTriangleFields   = errors.New("triangle line must have 3 integer fields")
	ErrTruncatedMSHX    = errors.New("unexpected end of mesh file")
)

// FormatError reports a structurally invalid mesh file. It carries the
// offending statement so the caller can show where reading stopped.
type FormatError struct {
	Line      int    // 1-based line number, 0 when unknown
	Statement string // offending line content, comments stripped
	Err       error
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("mshx line %d: %v: %q", e.Line, e.Err, e.Statement)
	}
	return fmt.Sprintf("mshx: %v: %q", e.Err, e.Statement)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ResourceError reports a mesh or include file that could not be opened,
// written or closed.
type ResourceError struct {
	Op   string
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func formatErr(line int, statement string, err error) *FormatError {
	return &FormatError{Line: line, Statement: statement, Err: err}
}
