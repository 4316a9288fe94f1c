// Package analysis turns simulation output into numbers and plots.
//
//   - [Summarize]: boil/dry times, peaks and energy totals of a run trace
//   - [Convergence]: final-temperature error as the reference step shrinks
//   - [AltitudeSweep]: boiling point across altitudes for one fluid
//   - [NewPortrait]: temperature against remaining liquid
//
// # Choosing a reference step
//
//	study, _ := analysis.Convergence(ctx, fluid, body, in, 600, []float64{600, 150, 37.5})
//	if study.Monotonic() {
//	    // halving the step never made things worse
//	}
package analysis
