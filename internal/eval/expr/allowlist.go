package expr

import (
	"math"
	"sort"
)

// Free variables
const (
	VarX = "x"
	VarY = "y"
)

// function is an allow-listed elementwise function. Exactly one of unary and
// binary is set.
type function struct {
	arity  int
	unary  func(float64) float64
	binary func(float64, float64) float64
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var functions = map[string]function{
	"sin":     {arity: 1, unary: math.Sin},
	"cos":     {arity: 1, unary: math.Cos},
	"tan":     {arity: 1, unary: math.Tan},
	"arcsin":  {arity: 1, unary: math.Asin},
	"arccos":  {arity: 1, unary: math.Acos},
	"arctan":  {arity: 1, unary: math.Atan},
	"sinh":    {arity: 1, unary: math.Sinh},
	"cosh":    {arity: 1, unary: math.Cosh},
	"tanh":    {arity: 1, unary: math.Tanh},
	"sqrt":    {arity: 1, unary: math.Sqrt},
	"log":     {arity: 1, unary: math.Log},
	"log10":   {arity: 1, unary: math.Log10},
	"exp":     {arity: 1, unary: math.Exp},
	"abs":     {arity: 1, unary: math.Abs},
	"floor":   {arity: 1, unary: math.Floor},
	"ceil":    {arity: 1, unary: math.Ceil},
	"arctan2": {arity: 2, binary: math.Atan2},
	"power":   {arity: 2, binary: math.Pow},
	"min":     {arity: 2, binary: math.Min},
	"max":     {arity: 2, binary: math.Max},
}

func isVar(name string) bool {
	return name == VarX || name == VarY
}

// Allowed reports whether name may appear in an expression
func Allowed(name string) bool {
	if isVar(name) {
		return true
	}
	if _, ok := constants[name]; ok {
		return true
	}
	_, ok := functions[name]
	return ok
}

// AllowList returns every allowed constant and function name, sorted
func AllowList() []string {
	names := make([]string, 0, len(constants)+len(functions))
	for name := range constants {
		names = append(names, name)
	}
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
