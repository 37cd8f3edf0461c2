// Package grid provides the numeric grid plumbing shared by the expression
// evaluator, the contour provider and the planner.
//
// A Grid is a dense, row-major matrix of float64 values. Grids produced by
// Sampling.Mesh hold the sample coordinates (X and Y); grids produced by
// evaluating an expression hold the function values (the ValueGrid). Values
// may be NaN or ±Inf: those are ordinary numeric outcomes, not errors.
//
// Example usage:
//
//	s := grid.DefaultSampling() // [-10,10]×[-10,10], 400×400
//	x, y := s.Mesh()
//	z, err := grid.Map2(x, y, func(a, b float64) float64 { return a*a + b*b })
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lo, hi, _ := z.FiniteRange()
//
// No operation in this package mutates its inputs; every transformation
// returns a new Grid.
package grid
