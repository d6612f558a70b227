package config

import "sort"

// Presets maps a name to a built-in starting grid.
var Presets = map[string]*Config{
	"reference": {
		Transform: "spin", Detector: "floyd", Target: 1_000_000_000, Accelerated: true, MaxSteps: DefaultMaxSteps,
		Grid: `O....#....
O.OO#....#
.....##...
OO.#O....O
.O.....O#.
O.#..O.#.#
..O..#O..O
.......O..
#....###..
#OO..#....
`,
	},
	"north": {
		Transform: "north", Detector: "floyd", Target: 1, Accelerated: false, MaxSteps: DefaultMaxSteps,
		Grid: `O....#....
O.OO#....#
.....##...
OO.#O....O
.O.....O#.
O.#..O.#.#
..O..#O..O
.......O..
#....###..
#OO..#....
`,
	},
	"empty": {
		Transform: "spin", Detector: "floyd", Target: 1_000_000_000, Accelerated: true, MaxSteps: DefaultMaxSteps,
		Grid: `#....#
..##..
#....#
`,
	},
	"rubble": {
		Transform: "spin", Detector: "brent", Target: 1_000_000_000, Accelerated: true, MaxSteps: DefaultMaxSteps,
		Grid: `O.O.#..O.O
.#O..O.#..
O..#.O..O.
..O.O..#.O
#.O..O.O..
.O..#..O.#
O.O.O.#..O
..#O..O.O.
.O..O#.O..
O.#.O..O.O
`,
	},
	"corridor": {
		Transform: "spin", Detector: "memo", Target: 1_000_000_000, Accelerated: true, MaxSteps: DefaultMaxSteps,
		Grid: `#.#######
O.......O
#.##.##.#
..O...O..
#######.#
`,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *p
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
