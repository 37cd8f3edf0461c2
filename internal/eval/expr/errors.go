package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax matches every *SyntaxError.
	ErrSyntax = errors.New("expr: syntax error")

	// ErrNameNotAllowed matches every *NameError.
	ErrNameNotAllowed = errors.New("expr: name not allowed")

	// ErrEvaluation matches every *EvalError.
	ErrEvaluation = errors.New("expr: evaluation error")
)

// Error kinds reported to callers that cannot inspect Go error values
const (
	KindSyntax         = "syntax"
	KindNameNotAllowed = "name_not_allowed"
	KindEvaluation     = "evaluation"
)

// SyntaxError reports malformed expression text
type SyntaxError struct {
	Offset int    // byte offset into the submitted text
	Msg    string // what went wrong
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("expr: syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Is makes errors.Is(err, ErrSyntax) hold
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NameError reports an identifier outside the allow-list
type NameError struct {
	Name   string
	Offset int
}

func (e *NameError) Error() string {
	return fmt.Sprintf("expr: name %q is not allowed (offset %d)", e.Name, e.Offset)
}

// Is makes errors.Is(err, ErrNameNotAllowed) hold
func (e *NameError) Is(target error) bool {
	return target == ErrNameNotAllowed
}

// EvalError reports a failure that cannot be expressed as NaN or Inf
type EvalError struct {
	Msg string
	Err error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("expr: evaluation error: %s: %v", e.Msg, e.Err)
	}
	return "expr: evaluation error: " + e.Msg
}

// Is makes errors.Is(err, ErrEvaluation) hold
func (e *EvalError) Is(target error) bool {
	return target == ErrEvaluation
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// Kind classifies err as one of the Kind constants, or "" if it is none of them
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSyntax):
		return KindSyntax
	case errors.Is(err, ErrNameNotAllowed):
		return KindNameNotAllowed
	case errors.Is(err, ErrEvaluation):
		return KindEvaluation
	default:
		return ""
	}
}
