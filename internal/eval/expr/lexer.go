package expr

import (
	"fmt"
	"strconv"
)

// tokenType is the kind of a lexical token
type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal

	tokNumber
	tokName

	tokPlus   // "+"
	tokMinus  // "-"
	tokStar   // "*"
	tokSlash  // "/"
	tokPow    // "**" or "^"
	tokLParen // "("
	tokRParen // ")"
	tokComma  // ","
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokIllegal:
		return "illegal character"
	case tokNumber:
		return "number"
	case tokName:
		return "name"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// token is a lexical token. value is set for numbers.
type token struct {
	typ    tokenType
	text   string
	value  float64
	offset int
}

// lexer produces tokens on demand so that the parser can reject a forbidden
// name before it ever looks at the text that follows it
type lexer struct {
	src []byte
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []byte(src)}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{typ: tokEOF, offset: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.number()
	case isNameStart(c):
		for l.pos < len(l.src) && isNamePart(l.src[l.pos]) {
			l.pos++
		}
		return token{typ: tokName, text: string(l.src[start:l.pos]), offset: start}, nil
	}

	l.pos++
	switch c {
	case '+':
		return token{typ: tokPlus, text: "+", offset: start}, nil
	case '-':
		return token{typ: tokMinus, text: "-", offset: start}, nil
	case '*':
		if l.pos < len(l.src) && l.src[l.pos] == '*' {
			l.pos++
			return token{typ: tokPow, text: "**", offset: start}, nil
		}
		return token{typ: tokStar, text: "*", offset: start}, nil
	case '^':
		// caret is the conventional spelling of exponentiation
		return token{typ: tokPow, text: "^", offset: start}, nil
	case '/':
		return token{typ: tokSlash, text: "/", offset: start}, nil
	case '(':
		return token{typ: tokLParen, text: "(", offset: start}, nil
	case ')':
		return token{typ: tokRParen, text: ")", offset: start}, nil
	case ',':
		return token{typ: tokComma, text: ",", offset: start}, nil
	}

	return token{typ: tokIllegal, text: string(c), offset: start},
		&SyntaxError{Offset: start, Msg: fmt.Sprintf("unexpected character %q", c)}
}

func (l *lexer) number() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	// exponent only when digits follow, so "2e" lexes as 2 then the name e
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		k := l.pos + 1
		if k < len(l.src) && (l.src[k] == '+' || l.src[k] == '-') {
			k++
		}
		if k < len(l.src) && isDigit(l.src[k]) {
			l.pos = k
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}

	text := string(l.src[start:l.pos])
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// out of range literals still parse to ±Inf with a range error
		if ne, ok := err.(*strconv.NumError); !ok || ne.Err != strconv.ErrRange {
			return token{}, &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid number %q", text)}
		}
	}
	return token{typ: tokNumber, text: text, value: v, offset: start}, nil
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || isDigit(c)
}
