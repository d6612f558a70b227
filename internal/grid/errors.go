package grid

import (
	"errors"
	"fmt"
)

// Domain errors for grid parsing.
var (
	// ErrUnknownGlyph indicates a character that does not map to any cell.
	ErrUnknownGlyph = errors.New("grid: unknown glyph")

	// ErrRaggedRow indicates a row whose length differs from the first row.
	ErrRaggedRow = errors.New("grid: ragged row")
)

// ParseError wraps a parse failure with its position in the input.
type ParseError struct {
	Line    int
	Col     int
	Glyph   rune
	Wrapped error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Wrapped, ErrUnknownGlyph) {
		return fmt.Sprintf("line %d, col %d: %v %q", e.Line, e.Col, e.Wrapped, e.Glyph)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Wrapped)
}

func (e *ParseError) Unwrap() error {
	return e.Wrapped
}
