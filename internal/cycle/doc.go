// Package cycle extrapolates deterministic iteration to arbitrary step counts.
//
// Iterating a pure function over a finite state space always ends up in a
// loop. Once the loop is known, the state after N steps follows from
//
//   - PreCycleLen: index of the first state that recurs
//   - CycleLen: number of steps between recurrences
//   - Representative: the state at index PreCycleLen
//
// without applying the function N times. Three detectors find the loop:
//
//   - [Floyd]: tortoise and hare, O(1) memory
//   - [Brent]: teleporting tortoise, fewer applications than Floyd
//   - [Memo]: table of visited states keyed by fingerprint
//
// # Example
//
//	it := cycle.NewIterator(tilt.Spin, cycle.NewFloyd[grid.Grid](0))
//	out, err := it.RunAccelerated(start, 1_000_000_000)
//
// # Limits
//
// Every detector stops after a bounded number of applications and reports a
// [*DetectionError] wrapping [ErrNoCycle] rather than looping forever.
package cycle
