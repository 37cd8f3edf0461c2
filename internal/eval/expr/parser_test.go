package expr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-levelset/internal/eval/expr"
)

//----------------------------------------------------------------------------//
// Accepted input
//----------------------------------------------------------------------------//

// TestParse_Structure checks precedence and associativity through the
// parenthesised String form.
func TestParse_Structure(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"x^2 + y^2", "((x ** 2) + (y ** 2))"},
		{"x**2 + y**2", "((x ** 2) + (y ** 2))"},
		{"-x**2", "(-(x ** 2))"},
		{"2**3**2", "(2 ** (3 ** 2))"},
		{"2**-1", "(2 ** (-1))"},
		{"x - y - 1", "((x - y) - 1)"},
		{"x / y * 2", "((x / y) * 2)"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"arctan2(y, x)", "arctan2(y, x)"},
		{"max(sin(x), cos(y))", "max(sin(x), cos(y))"},
		{"pi * e", "(pi * e)"},
		{"1e3 + .5 + 2.", "((1000 + 0.5) + 2)"},
		{"  x\t+\ny ", "(x + y)"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			root, err := expr.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, root.String())
		})
	}
}

// TestParse_EveryAllowedName makes sure the whole allow-list compiles.
func TestParse_EveryAllowedName(t *testing.T) {
	binary := map[string]bool{"arctan2": true, "power": true, "min": true, "max": true}
	for _, name := range expr.AllowList() {
		src := name
		switch {
		case binary[name]:
			src = name + "(x, y)"
		case name != "pi" && name != "e":
			src = name + "(x)"
		}
		t.Run(name, func(t *testing.T) {
			_, err := expr.Compile(src)
			require.NoError(t, err)
		})
	}
}

//----------------------------------------------------------------------------//
// Rejected input
//----------------------------------------------------------------------------//

// TestParse_SyntaxErrors verifies malformed text yields *SyntaxError with the
// offset of the offending token.
func TestParse_SyntaxErrors(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		offset int
	}{
		{"MissingOperand", "x** + y", 4},
		{"Empty", "", 0},
		{"Blank", "   ", 3},
		{"UnclosedParen", "(x + y", 6},
		{"StrayParen", "x + y)", 5},
		{"AttributeAccess", "x.real", 1},
		{"Subscript", "x[0]", 1},
		{"Assignment", "x = 1", 2},
		{"StringLiteral", "x + 'a'", 4},
		{"Semicolon", "x; y", 1},
		{"UnaryPlus", "+x", 0},
		{"CallOnVariable", "x(1)", 1},
		{"BareFunction", "sin + 1", 0},
		{"WrongArity", "sin(x, y)", 0},
		{"MissingArg", "power(x)", 0},
		{"Juxtaposition", "2x", 1},
		{"TrailingExponent", "2e", 1},
		{"TrailingComma", "max(x, )", 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := expr.Compile(tc.in)
			require.Error(t, err)
			require.ErrorIs(t, err, expr.ErrSyntax)
			assert.False(t, errors.Is(err, expr.ErrNameNotAllowed))

			var se *expr.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.offset, se.Offset, "error: %v", err)
		})
	}
}

// TestParse_NameNotAllowed verifies that identifiers outside the allow-list
// are rejected by name, including code injection payloads.
func TestParse_NameNotAllowed(t *testing.T) {
	cases := []struct {
		in   string
		name string
	}{
		{"__import__('os').system('x')", "__import__"},
		{"os.system('rm -rf /')", "os"},
		{"np.sin(x)", "np"},
		{"pow(x, 2) + y", "pow"},
		{"eval('1')", "eval"},
		{"lambda: 0", "lambda"},
		{"x + z", "z"},
		{"X + y", "X"},
		{"sin(x) + exec(y)", "exec"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			_, err := expr.Compile(tc.in)
			require.ErrorIs(t, err, expr.ErrNameNotAllowed)

			var ne *expr.NameError
			require.True(t, errors.As(err, &ne))
			assert.Equal(t, tc.name, ne.Name)
			assert.Contains(t, err.Error(), tc.name)
		})
	}
}

// TestParse_DeepNesting guards the recursion limit.
func TestParse_DeepNesting(t *testing.T) {
	src := ""
	for i := 0; i < 1000; i++ {
		src += "("
	}
	src += "x"
	for i := 0; i < 1000; i++ {
		src += ")"
	}
	_, err := expr.Parse(src)
	require.ErrorIs(t, err, expr.ErrSyntax)
}

func TestParse_TooLong(t *testing.T) {
	src := strings.Repeat("x", expr.MaxLen+1)
	_, err := expr.Parse(src)
	require.ErrorIs(t, err, expr.ErrSyntax)

	var se *expr.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, expr.MaxLen, se.Offset)

	_, err = expr.Compile(src)
	assert.Equal(t, expr.KindSyntax, expr.Kind(err))
}

func TestKind(t *testing.T) {
	_, syntaxErr := expr.Compile("x**")
	_, nameErr := expr.Compile("os")

	assert.Equal(t, expr.KindSyntax, expr.Kind(syntaxErr))
	assert.Equal(t, expr.KindNameNotAllowed, expr.Kind(nameErr))
	assert.Equal(t, expr.KindEvaluation, expr.Kind(&expr.EvalError{Msg: "boom"}))
	assert.Equal(t, "", expr.Kind(nil))
	assert.Equal(t, "", expr.Kind(errors.New("other")))
}
