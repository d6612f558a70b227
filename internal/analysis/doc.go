// Package analysis characterizes load traces produced by a simulation.
//
//   - [Summarize]: range, mean and amplitude of a trace
//   - [PowerSpectrum]: magnitude spectrum of a trace
//   - [DominantPeriod]: strongest period in a trace, read off the spectrum
//
// # Cross-checking a Detected Loop
//
// A trace sampled over several laps of the loop peaks at the loop's period:
//
//	p := analysis.DominantPeriod(loads)
//	if rec.CycleLen%p != 0 {
//	    // spectrum disagrees with the detector
//	}
package analysis
