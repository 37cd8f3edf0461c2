package expr

import (
	"fmt"

	"github.com/aescanero/dago-levelset/internal/grid"
)

// Program is a validated, compiled expression. It is immutable and safe for
// concurrent use.
type Program struct {
	source  string
	canon   string
	root    Node
	fn      scalarFunc
	vars    []string
	symbols []string
}

// Compile parses, validates and compiles text
func Compile(text string) (*Program, error) {
	root, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return CompileAST(text, root)
}

// CompileAST validates and compiles an already built tree. source is kept
// for display and cache keys only.
func CompileAST(source string, root Node) (*Program, error) {
	if root == nil {
		return nil, &SyntaxError{Msg: "empty expression"}
	}
	vars, symbols, err := validate(root)
	if err != nil {
		return nil, err
	}
	fn, err := compileNode(root)
	if err != nil {
		return nil, err
	}
	return &Program{
		source:  source,
		canon:   root.String(),
		root:    root,
		fn:      fn,
		vars:    vars,
		symbols: symbols,
	}, nil
}

// Source returns the text the program was compiled from
func (p *Program) Source() string {
	return p.source
}

// AST returns the root of the parsed tree
func (p *Program) AST() Node {
	return p.root
}

// Vars returns the free variables referenced, sorted
func (p *Program) Vars() []string {
	return append([]string(nil), p.vars...)
}

// Symbols returns the allow-listed constants and functions referenced, sorted
func (p *Program) Symbols() []string {
	return append([]string(nil), p.symbols...)
}

// At evaluates the program at a single point
func (p *Program) At(x, y float64) float64 {
	return p.fn(x, y)
}

// Evaluate applies the program elementwise over co-indexed coordinate grids
// and returns a new ValueGrid. Inputs are not modified. Non-finite results
// are kept as values.
func (p *Program) Evaluate(x, y *grid.Grid) (*grid.Grid, error) {
	if x == nil || y == nil {
		return nil, &EvalError{Msg: "nil coordinate grid"}
	}
	if err := x.Validate(); err != nil {
		return nil, &EvalError{Msg: "x grid", Err: err}
	}
	if err := y.Validate(); err != nil {
		return nil, &EvalError{Msg: "y grid", Err: err}
	}
	out, err := grid.Map2(x, y, p.fn)
	if err != nil {
		return nil, &EvalError{Msg: fmt.Sprintf("evaluating %q", p.source), Err: err}
	}
	return out, nil
}

// String returns the fully parenthesised form of the program
func (p *Program) String() string {
	return p.canon
}
