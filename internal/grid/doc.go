// Package grid provides the immutable grid state the settling simulation works on.
//
// A [Grid] is a rectangular, row-major array of [Cell] values:
//
//   - [Movable]: a cell that slides when the grid is tilted
//   - [Fixed]: an obstacle that never moves
//   - [Empty]: free space
//
// Grids never change after construction. Every transformation returns a new
// value, so states kept around for comparison cannot be invalidated later.
//
// # Example
//
//	g, err := grid.Parse("O.#\n.O.\n")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(g.Load(), g.Fingerprint())
//
// # Equality
//
// [Grid.Fingerprint] is computed once at construction and is suitable as a
// map key. Equal grids always share a fingerprint; distinct grids may collide,
// so code that keys on fingerprints must confirm matches with [Grid.Equal].
package grid
