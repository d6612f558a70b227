package metrics

import "github.com/san-kum/tiltsim/internal/grid"

// Census counts cells of one kind in the last observed grid. Both counts
// are constant along any settling trajectory.
type Census struct {
	name  string
	cell  grid.Cell
	count int
}

func NewMovableCount() *Census {
	return &Census{name: "movable", cell: grid.Movable}
}

func NewFixedCount() *Census {
	return &Census{name: "fixed", cell: grid.Fixed}
}

func (c *Census) Name() string { return c.name }

func (c *Census) Observe(g grid.Grid) {
	c.count = g.Count(c.cell)
}

func (c *Census) Value() float64 {
	return float64(c.count)
}

func (c *Census) Reset() {
	c.count = 0
}
