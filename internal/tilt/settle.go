package tilt

import "github.com/san-kum/tiltsim/internal/grid"

// Transform maps a grid to its successor. Implementations must be pure.
type Transform func(grid.Grid) grid.Grid

// Settle moves every movable cell as far toward dir as it can go. Movement
// stops at fixed cells, the grid edge and other movable cells.
//
// Each pass decides eligible moves from the state at the start of the pass
// and only then applies them. Passes repeat until one moves nothing.
func Settle(g grid.Grid, dir Direction) grid.Grid {
	rows, cols := g.Rows(), g.Cols()
	cells := g.Cells()
	dr, dc := dir.Delta()
	offset := dr*cols + dc

	moves := make([]int, 0, len(cells))
	for {
		moves = moves[:0]
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				i := r*cols + c
				if cells[i] != grid.Movable || !g.InBounds(r+dr, c+dc) {
					continue
				}
				if cells[i+offset] == grid.Empty {
					moves = append(moves, i)
				}
			}
		}
		if len(moves) == 0 {
			break
		}
		// A destination was empty at pass start, so it is never another
		// move's source; apply order does not matter.
		for _, i := range moves {
			cells[i] = grid.Empty
			cells[i+offset] = grid.Movable
		}
	}

	// cells is our own copy from g.Cells().
	return grid.Adopt(rows, cols, cells)
}

// Spin settles g in each direction of SpinOrder in turn.
func Spin(g grid.Grid) grid.Grid {
	for _, dir := range SpinOrder {
		g = Settle(g, dir)
	}
	return g
}

// ForDirection returns a Transform settling toward dir.
func ForDirection(dir Direction) Transform {
	return func(g grid.Grid) grid.Grid {
		return Settle(g, dir)
	}
}
