// Package cel provides a CEL (Common Expression Language) evaluator for
// region masks.
//
// A region is a boolean condition over the sample coordinates x and y. Points
// where it is false are masked out of the ValueGrid (set to NaN), so no
// contour is drawn there. CEL is a non-Turing complete expression language,
// so conditions are safe to accept from users.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	x, y := grid.DefaultSampling().Mesh()
//	masked, err := evaluator.Mask(ctx, "x*x + y*y < 25.0", z, x, y)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - Arithmetic: +, -, *, /
//   - Conditionals: cond ? a : b
//
// Literals must be doubles (25.0, not 25) because x and y are declared as
// double.
package cel
