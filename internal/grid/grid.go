package grid

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

type Cell uint8

const (
	Empty Cell = iota
	Movable
	Fixed
)

// Glyph returns the character used for c in text renderings.
func (c Cell) Glyph() rune {
	switch c {
	case Movable:
		return 'O'
	case Fixed:
		return '#'
	default:
		return '.'
	}
}

func (c Cell) String() string {
	switch c {
	case Movable:
		return "movable"
	case Fixed:
		return "fixed"
	default:
		return "empty"
	}
}

// CellFromGlyph maps a text character to its cell.
func CellFromGlyph(r rune) (Cell, bool) {
	switch r {
	case 'O':
		return Movable, true
	case '#':
		return Fixed, true
	case '.':
		return Empty, true
	}
	return Empty, false
}

type Coord struct {
	Row, Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Grid is an immutable rectangular cell array. The zero value is a 0x0 grid.
type Grid struct {
	rows, cols int
	cells      []Cell
	fp         uint64
}

// New builds a grid from row-major cells. The slice is copied.
// It panics if len(cells) != rows*cols.
func New(rows, cols int, cells []Cell) Grid {
	if rows < 0 || cols < 0 || len(cells) != rows*cols {
		panic(fmt.Sprintf("grid: %d cells do not fill %dx%d", len(cells), rows, cols))
	}
	c := make([]Cell, len(cells))
	copy(c, cells)
	return build(rows, cols, c)
}

// Adopt is like New but takes ownership of cells instead of copying them.
// The caller must not modify cells afterwards.
func Adopt(rows, cols int, cells []Cell) Grid {
	if rows < 0 || cols < 0 || len(cells) != rows*cols {
		panic(fmt.Sprintf("grid: %d cells do not fill %dx%d", len(cells), rows, cols))
	}
	return build(rows, cols, cells)
}

// build takes ownership of cells.
func build(rows, cols int, cells []Cell) Grid {
	g := Grid{rows: rows, cols: cols, cells: cells}
	g.fp = fingerprint(rows, cols, cells)
	return g
}

// fingerprint is zero for grids without cells so the zero Grid agrees with
// New(0, 0, nil).
func fingerprint(rows, cols int, cells []Cell) uint64 {
	if len(cells) == 0 {
		return 0
	}
	h := fnv.New64a()
	var dims [16]byte
	binary.LittleEndian.PutUint64(dims[:8], uint64(rows))
	binary.LittleEndian.PutUint64(dims[8:], uint64(cols))
	h.Write(dims[:])
	buf := make([]byte, len(cells))
	for i, c := range cells {
		buf[i] = byte(c)
	}
	h.Write(buf)
	return h.Sum64()
}

func (g Grid) Rows() int { return g.rows }
func (g Grid) Cols() int { return g.cols }

// InBounds reports whether (row, col) lies inside the grid.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the cell at c. Out-of-range coordinates are a programming
// error and panic.
func (g Grid) At(c Coord) Cell {
	if !g.InBounds(c.Row, c.Col) {
		panic(fmt.Sprintf("grid: coordinate %v outside %dx%d", c, g.rows, g.cols))
	}
	return g.cells[c.Row*g.cols+c.Col]
}

// Cells returns a copy of the row-major cell data.
func (g Grid) Cells() []Cell {
	c := make([]Cell, len(g.cells))
	copy(c, g.cells)
	return c
}

// Count returns how many cells hold the given value.
func (g Grid) Count(cell Cell) int {
	n := 0
	for _, c := range g.cells {
		if c == cell {
			n++
		}
	}
	return n
}

func (g Grid) Fingerprint() uint64 { return g.fp }

// Equal reports whether both grids have the same shape and cells.
func (g Grid) Equal(other Grid) bool {
	if g.rows != other.rows || g.cols != other.cols || g.fp != other.fp {
		return false
	}
	for i, c := range g.cells {
		if other.cells[i] != c {
			return false
		}
	}
	return true
}

// Load sums rows-row over every movable cell, i.e. the distance of each
// movable cell from the bottom edge.
func (g Grid) Load() int {
	total := 0
	for i, c := range g.cells {
		if c == Movable {
			total += g.rows - i/g.cols
		}
	}
	return total
}

func (g Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for r := 0; r < g.rows; r++ {
		for _, c := range g.cells[r*g.cols : (r+1)*g.cols] {
			b.WriteRune(c.Glyph())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
