package expr

import (
	"fmt"
	"math"
	"sort"
)

// scalarFunc evaluates a compiled node at one sample point
type scalarFunc func(x, y float64) float64

// validate checks every reference in the tree against the allow-list and
// collects the variables and symbols used
func validate(root Node) (vars, symbols []string, err error) {
	varSet := make(map[string]struct{})
	symSet := make(map[string]struct{})

	Walk(root, func(n Node) {
		if err != nil {
			return
		}
		switch v := n.(type) {
		case *VarRef:
			if !isVar(v.Name) {
				err = &NameError{Name: v.Name, Offset: v.Pos}
				return
			}
			varSet[v.Name] = struct{}{}
		case *Constant:
			if _, ok := constants[v.Name]; !ok {
				err = &NameError{Name: v.Name, Offset: v.Pos}
				return
			}
			symSet[v.Name] = struct{}{}
		case *Call:
			fn, ok := functions[v.Func]
			if !ok {
				err = &NameError{Name: v.Func, Offset: v.Pos}
				return
			}
			if len(v.Args) != fn.arity {
				err = &SyntaxError{Offset: v.Pos, Msg: fmt.Sprintf("%s takes %d argument(s), got %d", v.Func, fn.arity, len(v.Args))}
				return
			}
			symSet[v.Func] = struct{}{}
		case *Literal, *UnaryOp, *BinaryOp:
		case nil:
			err = &SyntaxError{Msg: "nil node"}
		default:
			err = &SyntaxError{Offset: n.Offset(), Msg: fmt.Sprintf("unsupported node %T", n)}
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return sortedKeys(varSet), sortedKeys(symSet), nil
}

// compileNode turns a validated node into a closure. Subtrees that do not
// reference x or y are folded into constants.
func compileNode(n Node) (scalarFunc, error) {
	fn, _, err := compileTree(n)
	return fn, err
}

// compileTree compiles n bottom-up and reports whether it reads x or y, so
// folding needs a single pass over the tree
func compileTree(n Node) (scalarFunc, bool, error) {
	fn, usesVars, err := compileOp(n)
	if err != nil {
		return nil, false, err
	}
	if !usesVars {
		v := fn(0, 0)
		return func(float64, float64) float64 { return v }, false, nil
	}
	return fn, true, nil
}

func compileOp(n Node) (scalarFunc, bool, error) {
	switch v := n.(type) {
	case *Literal:
		val := v.Value
		return func(float64, float64) float64 { return val }, false, nil

	case *Constant:
		val := constants[v.Name]
		return func(float64, float64) float64 { return val }, false, nil

	case *VarRef:
		if v.Name == VarX {
			return func(x, _ float64) float64 { return x }, true, nil
		}
		return func(_, y float64) float64 { return y }, true, nil

	case *UnaryOp:
		x, uses, err := compileTree(v.X)
		if err != nil {
			return nil, false, err
		}
		if v.Op != OpNeg {
			return nil, false, &SyntaxError{Offset: v.Pos, Msg: fmt.Sprintf("unsupported unary operator %s", v.Op)}
		}
		return func(a, b float64) float64 { return -x(a, b) }, uses, nil

	case *BinaryOp:
		l, lUses, err := compileTree(v.L)
		if err != nil {
			return nil, false, err
		}
		r, rUses, err := compileTree(v.R)
		if err != nil {
			return nil, false, err
		}
		uses := lUses || rUses
		switch v.Op {
		case OpAdd:
			return func(a, b float64) float64 { return l(a, b) + r(a, b) }, uses, nil
		case OpSub:
			return func(a, b float64) float64 { return l(a, b) - r(a, b) }, uses, nil
		case OpMul:
			return func(a, b float64) float64 { return l(a, b) * r(a, b) }, uses, nil
		case OpDiv:
			return func(a, b float64) float64 { return l(a, b) / r(a, b) }, uses, nil
		case OpPow:
			return func(a, b float64) float64 { return math.Pow(l(a, b), r(a, b)) }, uses, nil
		}
		return nil, false, &SyntaxError{Offset: v.Pos, Msg: fmt.Sprintf("unsupported binary operator %s", v.Op)}

	case *Call:
		f := functions[v.Func]
		args := make([]scalarFunc, len(v.Args))
		uses := false
		for i, a := range v.Args {
			c, u, err := compileTree(a)
			if err != nil {
				return nil, false, err
			}
			args[i] = c
			uses = uses || u
		}
		if f.arity == 1 {
			u, a0 := f.unary, args[0]
			return func(a, b float64) float64 { return u(a0(a, b)) }, uses, nil
		}
		bin, a0, a1 := f.binary, args[0], args[1]
		return func(a, b float64) float64 { return bin(a0(a, b), a1(a, b)) }, uses, nil
	}
	return nil, false, &SyntaxError{Offset: n.Offset(), Msg: fmt.Sprintf("unsupported node %T", n)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
