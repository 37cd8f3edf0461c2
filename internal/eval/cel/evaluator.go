package cel

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/interpreter"

	"github.com/aescanero/dago-levelset/internal/grid"
)

// ErrNotBoolean is returned when a region condition does not produce a bool
var ErrNotBoolean = errors.New("cel: region condition must evaluate to bool")

// costLimit bounds the work a single point evaluation may do
const costLimit = 10000

// Evaluator evaluates CEL region conditions over sample points
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator with x and y declared as doubles
func NewEvaluator() *Evaluator {
	env, err := cel.NewEnv(
		cel.Variable("x", cel.DoubleType),
		cel.Variable("y", cel.DoubleType),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create CEL environment: %v", err))
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}
}

// point is a reusable activation holding one sample point
type point struct {
	x, y float64
}

func (p *point) ResolveName(name string) (any, bool) {
	switch name {
	case "x":
		return p.x, true
	case "y":
		return p.y, true
	}
	return nil, false
}

func (p *point) Parent() interpreter.Activation {
	return nil
}

// Contains evaluates condition at a single point
func (e *Evaluator) Contains(condition string, x, y float64) (bool, error) {
	program, err := e.getProgram(condition)
	if err != nil {
		return false, fmt.Errorf("failed to compile condition: %w", err)
	}
	return eval(program, &point{x: x, y: y})
}

// Mask returns a copy of values with NaN wherever condition is false at the
// corresponding (x, y) sample
func (e *Evaluator) Mask(ctx context.Context, condition string, values, x, y *grid.Grid) (*grid.Grid, error) {
	if !values.SameShape(x) || !values.SameShape(y) {
		return nil, fmt.Errorf("mask: %w", grid.ErrShapeMismatch)
	}

	program, err := e.getProgram(condition)
	if err != nil {
		return nil, fmt.Errorf("failed to compile condition: %w", err)
	}

	out := values.Clone()
	act := &point{}
	for i := 0; i < values.Rows; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j < values.Cols; j++ {
			k := i*values.Cols + j
			act.x, act.y = x.Data[k], y.Data[k]
			inside, err := eval(program, act)
			if err != nil {
				return nil, fmt.Errorf("evaluation failed at (%g, %g): %w", act.x, act.y, err)
			}
			if !inside {
				out.Data[k] = math.NaN()
			}
		}
	}
	return out, nil
}

func eval(program cel.Program, act interpreter.Activation) (bool, error) {
	out, _, err := program.Eval(act)
	if err != nil {
		return false, err
	}
	inside, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBoolean, out.Value())
	}
	return inside, nil
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(condition string) (cel.Program, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if program, ok := e.cache[condition]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	// Compile the condition (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if program, ok := e.cache[condition]; ok {
		return program, nil
	}

	ast, err := e.check(condition)
	if err != nil {
		return nil, err
	}

	// Generate the program
	program, err := e.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	// Cache the program
	e.cache[condition] = program

	return program, nil
}

// ValidateExpression checks that condition compiles and returns a bool
func (e *Evaluator) ValidateExpression(condition string) error {
	_, err := e.check(condition)
	return err
}

// check parses and type-checks condition
func (e *Evaluator) check(condition string) (*cel.Ast, error) {
	ast, issues := e.env.Compile(condition)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}
	if out := ast.OutputType(); out.String() != "bool" {
		return nil, fmt.Errorf("%w, got %s", ErrNotBoolean, out)
	}
	return ast, nil
}

// ClearCache clears the compiled program cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}
