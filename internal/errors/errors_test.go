package errors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

func TestCompilerErrorFormat(t *testing.T) {
	err := NewCompilerError(lexer.Position{Line: 2, Column: 5}, "unexpected token", "let x =\nlet y = 1;", "main.js")
	out := err.Format(false)
	require.Contains(t, out, "main.js:2:5")
	require.Contains(t, out, "let y = 1;")
	require.Contains(t, out, "unexpected token")
}

func TestRuntimeErrorFormat(t *testing.T) {
	err := NewRuntimeError("TypeError", "undefined is not a function", lexer.Position{Line: 10, Column: 3})
	err.Stack = []StackFrame{{FunctionName: "main", Pos: lexer.Position{Line: 10, Column: 3}}}
	out := err.Format(false)
	require.Contains(t, out, "TypeError")
	require.Contains(t, out, "at main (10:3)")
}

func TestFormatErrorsBatch(t *testing.T) {
	errs := []*CompilerError{
		NewCompilerError(lexer.Position{Line: 1, Column: 1}, "first", "", ""),
		NewCompilerError(lexer.Position{Line: 2, Column: 1}, "second", "", ""),
	}
	out := FormatErrors(errs, false)
	require.Contains(t, out, "2 error(s)")
	require.Contains(t, out, "first")
	require.Contains(t, out, "second")
}
