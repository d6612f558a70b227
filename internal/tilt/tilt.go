// Package tilt implements directional settling of movable cells.
package tilt

import (
	"fmt"
	"strings"
)

type Direction uint8

const (
	North Direction = iota
	West
	South
	East
)

// SpinOrder is the fixed sequence of one full spin. Loads and cycle periods
// depend on it, so it must not be reordered.
var SpinOrder = [4]Direction{North, West, South, East}

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case West:
		return "west"
	case South:
		return "south"
	case East:
		return "east"
	}
	return fmt.Sprintf("direction(%d)", uint8(d))
}

// Inverse returns the opposite direction.
func (d Direction) Inverse() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case West:
		return East
	case East:
		return West
	}
	panic(fmt.Sprintf("tilt: invalid direction %d", uint8(d)))
}

// Delta returns the row and column offset of one step toward d.
func (d Direction) Delta() (dr, dc int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case West:
		return 0, -1
	case East:
		return 0, 1
	}
	panic(fmt.Sprintf("tilt: invalid direction %d", uint8(d)))
}

// ParseDirection accepts full names or their first letter, case-insensitively.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "north", "n":
		return North, nil
	case "west", "w":
		return West, nil
	case "south", "s":
		return South, nil
	case "east", "e":
		return East, nil
	}
	return 0, fmt.Errorf("unknown direction: %s", name)
}
