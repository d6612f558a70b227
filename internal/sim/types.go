package sim

import (
	"github.com/san-kum/tiltsim/internal/cycle"
	"github.com/san-kum/tiltsim/internal/grid"
)

type Metric interface {
	Name() string
	Observe(g grid.Grid)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(g grid.Grid, step int)
}

// DefaultTraceCap bounds Result.Loads when Config.TraceCap is not set.
const DefaultTraceCap = 1 << 16

type Config struct {
	Target      int
	Accelerated bool
	// Fallback runs the direct path when cycle detection gives up.
	Fallback bool
	// TraceCap is the most loads a Result keeps; older loads are dropped
	// first. Non-positive means DefaultTraceCap.
	TraceCap int
}

func DefaultConfig() Config {
	return Config{
		Target:      1_000_000_000,
		Accelerated: true,
		Fallback:    false,
	}
}

// Result holds the outcome of one run. Loads[i] is the load at step
// LoadsFrom+i. Only steps the run actually passes through are recorded: every
// step up to Target for direct runs, and steps up to min(Target,
// PreCycleLen+CycleLen-1) for accelerated runs, since later states repeat
// earlier ones. At most TraceCap loads are kept, the latest ones.
type Result struct {
	Final        grid.Grid
	Record       *cycle.Record[grid.Grid]
	Applications int
	LoadsFrom    int
	Loads        []int
	Metrics      map[string]float64
	FellBack     bool
}
