// Package viz animates a settling simulation in the terminal.
//
// [Model] is a Bubble Tea model that spins a grid on a timer and shows the
// grid, its load history and the loop once a state repeats.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step
//	R     - Reset to the starting grid
//	+/-   - Faster/slower
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
