package expr

import (
	"strconv"
	"strings"
)

// Op is a unary or binary arithmetic operator
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpNeg
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "**"
	case OpNeg:
		return "-"
	}
	return "?"
}

// Node is an AST node. The set of implementations is closed: Literal,
// VarRef, Constant, UnaryOp, BinaryOp and Call.
type Node interface {
	// Offset returns the byte offset of the node in the source text
	Offset() int
	String() string
	node()
}

// Literal is a numeric literal
type Literal struct {
	Value float64
	Pos   int
}

// VarRef references a free variable (x or y)
type VarRef struct {
	Name string
	Pos  int
}

// Constant references a named constant (pi or e)
type Constant struct {
	Name  string
	Value float64
	Pos   int
}

// UnaryOp applies a prefix operator
type UnaryOp struct {
	Op  Op
	X   Node
	Pos int
}

// BinaryOp applies an infix operator
type BinaryOp struct {
	Op   Op
	L, R Node
	Pos  int
}

// Call applies an allow-listed function
type Call struct {
	Func string
	Args []Node
	Pos  int
}

func (n *Literal) Offset() int  { return n.Pos }
func (n *VarRef) Offset() int   { return n.Pos }
func (n *Constant) Offset() int { return n.Pos }
func (n *UnaryOp) Offset() int  { return n.Pos }
func (n *BinaryOp) Offset() int { return n.Pos }
func (n *Call) Offset() int     { return n.Pos }

func (*Literal) node()  {}
func (*VarRef) node()   {}
func (*Constant) node() {}
func (*UnaryOp) node()  {}
func (*BinaryOp) node() {}
func (*Call) node()     {}

func (n *Literal) String() string  { return nodeString(n) }
func (n *VarRef) String() string   { return nodeString(n) }
func (n *Constant) String() string { return nodeString(n) }
func (n *UnaryOp) String() string  { return nodeString(n) }
func (n *BinaryOp) String() string { return nodeString(n) }
func (n *Call) String() string     { return nodeString(n) }

// nodeString renders n fully parenthesised in one buffer
func nodeString(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch v := n.(type) {
	case *Literal:
		b.WriteString(strconv.FormatFloat(v.Value, 'g', -1, 64))
	case *VarRef:
		b.WriteString(v.Name)
	case *Constant:
		b.WriteString(v.Name)
	case *UnaryOp:
		b.WriteString("(")
		b.WriteString(v.Op.String())
		writeNode(b, v.X)
		b.WriteString(")")
	case *BinaryOp:
		b.WriteString("(")
		writeNode(b, v.L)
		b.WriteString(" ")
		b.WriteString(v.Op.String())
		b.WriteString(" ")
		writeNode(b, v.R)
		b.WriteString(")")
	case *Call:
		b.WriteString(v.Func)
		b.WriteString("(")
		for i, a := range v.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, a)
		}
		b.WriteString(")")
	}
}

// Walk calls fn for n and every descendant in depth-first order
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch v := n.(type) {
	case *UnaryOp:
		Walk(v.X, fn)
	case *BinaryOp:
		Walk(v.L, fn)
		Walk(v.R, fn)
	case *Call:
		for _, a := range v.Args {
			Walk(a, fn)
		}
	}
}
