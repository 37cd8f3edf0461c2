package expr

import "fmt"

// maxDepth bounds nesting so hostile input cannot exhaust the stack
const maxDepth = 256

// MaxLen is the longest expression text, in bytes, Parse accepts
const MaxLen = 1 << 17

// parser is a recursive descent parser over the closed grammar described in
// the package documentation. Names are resolved as soon as they are read.
type parser struct {
	lex   *lexer
	tok   token
	depth int
}

// Parse parses text into an AST without compiling it
func Parse(text string) (Node, error) {
	if len(text) > MaxLen {
		return nil, &SyntaxError{Offset: MaxLen, Msg: fmt.Sprintf("expression longer than %d bytes", MaxLen)}
	}
	p := &parser{lex: newLexer(text)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.typ == tokEOF {
		return nil, &SyntaxError{Offset: p.tok.offset, Msg: "empty expression"}
	}

	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokEOF {
		return nil, p.unexpected()
	}
	return root, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected() error {
	if p.tok.typ == tokEOF {
		return &SyntaxError{Offset: p.tok.offset, Msg: "unexpected end of input"}
	}
	return &SyntaxError{Offset: p.tok.offset, Msg: fmt.Sprintf("unexpected %s %q", p.tok.typ, p.tok.text)}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return &SyntaxError{Offset: p.tok.offset, Msg: "expression nested too deeply"}
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

// sum := term (('+' | '-') term)*
func (p *parser) parseSum() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokPlus || p.tok.typ == tokMinus {
		op, pos := OpAdd, p.tok.offset
		if p.tok.typ == tokMinus {
			op = OpSub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, L: left, R: right, Pos: pos}
	}
	return left, nil
}

// term := unary (('*' | '/') unary)*
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokStar || p.tok.typ == tokSlash {
		op, pos := OpMul, p.tok.offset
		if p.tok.typ == tokSlash {
			op = OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, L: left, R: right, Pos: pos}
	}
	return left, nil
}

// unary := '-' unary | power
func (p *parser) parseUnary() (Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.tok.typ == tokMinus {
		pos := p.tok.offset
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpNeg, X: x, Pos: pos}, nil
	}
	return p.parsePower()
}

// power := primary ('**' unary)?
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != tokPow {
		return base, nil
	}
	pos := p.tok.offset
	if err := p.advance(); err != nil {
		return nil, err
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &BinaryOp{Op: OpPow, L: base, R: exp, Pos: pos}, nil
}

// primary := number | name | name '(' args ')' | '(' sum ')'
func (p *parser) parsePrimary() (Node, error) {
	switch p.tok.typ {
	case tokNumber:
		n := &Literal{Value: p.tok.value, Pos: p.tok.offset}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return n, nil

	case tokName:
		return p.parseName()

	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.tok.typ != tokRParen {
			return nil, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.unexpected()
}

func (p *parser) parseName() (Node, error) {
	name, pos := p.tok.text, p.tok.offset

	// resolve before reading further input
	if !Allowed(name) {
		return nil, &NameError{Name: name, Offset: pos}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	fn, isFunc := functions[name]
	if !isFunc {
		if p.tok.typ == tokLParen {
			return nil, &SyntaxError{Offset: p.tok.offset, Msg: fmt.Sprintf("%s is not a function", name)}
		}
		if isVar(name) {
			return &VarRef{Name: name, Pos: pos}, nil
		}
		return &Constant{Name: name, Value: constants[name], Pos: pos}, nil
	}

	if p.tok.typ != tokLParen {
		return nil, &SyntaxError{Offset: pos, Msg: fmt.Sprintf("function %s must be called", name)}
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var args []Node
	if p.tok.typ != tokRParen {
		for {
			arg, err := p.parseSum()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.typ != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if p.tok.typ != tokRParen {
		return nil, p.unexpected()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	if len(args) != fn.arity {
		return nil, &SyntaxError{
			Offset: pos,
			Msg:    fmt.Sprintf("%s takes %d argument(s), got %d", name, fn.arity, len(args)),
		}
	}
	return &Call{Func: name, Args: args, Pos: pos}, nil
}
