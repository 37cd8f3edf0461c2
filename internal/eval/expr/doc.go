// Package expr compiles untrusted two-variable expressions into reusable
// programs that evaluate elementwise over numeric grids.
//
// The grammar is closed: a hand-written recursive descent parser produces a
// typed AST whose only node kinds are Literal, VarRef, Constant, UnaryOp,
// BinaryOp and Call, and the compiler only knows how to turn those into
// closures. There is no path from input text to anything outside the
// allow-list below.
//
// Example usage:
//
//	evaluator := expr.NewEvaluator()
//
//	program, err := evaluator.Compile("sin(x) + y^2")
//	if err != nil {
//	    var nameErr *expr.NameError
//	    if errors.As(err, &nameErr) {
//	        log.Printf("forbidden identifier %q", nameErr.Name)
//	    }
//	    return err
//	}
//
//	x, y := grid.DefaultSampling().Mesh()
//	z, err := program.Evaluate(x, y)
//
// Grammar (lowest precedence first):
//
//	sum     := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := '-' unary | power
//	power   := primary ('**' unary)?
//	primary := number | name | name '(' sum (',' sum)* ')' | '(' sum ')'
//
// '^' is accepted as a spelling of '**'. Power is right associative and binds
// tighter than a unary minus on its left, so -x**2 is -(x**2).
//
// Allowed names:
//   - Variables: x, y
//   - Constants: pi, e
//   - Unary functions: sin, cos, tan, arcsin, arccos, arctan, sinh, cosh,
//     tanh, sqrt, log, log10, exp, abs, floor, ceil
//   - Binary functions: arctan2, power, min, max
//
// Evaluation follows IEEE-754: division by zero yields ±Inf or NaN and domain
// errors (log of a negative number, sqrt(-1), arcsin(2)) yield NaN. Those are
// values, not errors.
//
// Errors:
//   - *SyntaxError (matches ErrSyntax) for malformed text, with a byte offset
//   - *NameError (matches ErrNameNotAllowed) naming the forbidden identifier
//   - *EvalError (matches ErrEvaluation) for grid shape problems
package expr
