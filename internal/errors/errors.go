// Package errors formats compiler and runtime diagnostics with source
// context, line/column information, and a caret pointing at the offending
// token.
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// CompilerError is a single lex or parse error with position and context.
type CompilerError struct {
	Message string
	Source  string
	File    string
	Pos     lexer.Position
}

// NewCompilerError creates a new compiler error.
func NewCompilerError(pos lexer.Position, message, source, file string) *CompilerError {
	return &CompilerError{Pos: pos, Message: message, Source: source, File: file}
}

func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a single line of source context and a
// caret; colorized via github.com/fatih/color when color is true.
func (e *CompilerError) Format(useColor bool) string {
	var sb strings.Builder
	writeHeader(&sb, "Error", e.File, e.Pos)

	sourceLine := sourceLineAt(e.Source, e.Pos.Line)
	if sourceLine != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(sourceLine)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		writeCaret(&sb, useColor)
	}

	writeMessage(&sb, e.Message, useColor)
	return sb.String()
}

// RuntimeError is an exception surfaced during evaluation: an ECMA-262
// error Kind plus the engine-side file/function/line trail used for
// embedder diagnosis (spec §7).
type RuntimeError struct {
	Kind    string // TypeError, ReferenceError, RangeError, SyntaxError, InternalError
	Message string
	Pos     lexer.Position
	File    string
	Stack   []StackFrame

	// Value, when non-nil, is the thrown script value (for `throw` of a
	// non-Error value); nil means the error originated inside the engine
	// itself rather than from a script-level throw.
	Value interface{}
}

// StackFrame is one entry in a RuntimeError's call stack trail.
type StackFrame struct {
	FunctionName string
	Pos          lexer.Position
}

func NewRuntimeError(kind, message string, pos lexer.Position) *RuntimeError {
	return &RuntimeError{Kind: kind, Message: message, Pos: pos}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Format renders the error plus its call stack trail, teacher-style.
func (e *RuntimeError) Format(useColor bool) string {
	var sb strings.Builder
	writeHeader(&sb, e.Kind, e.File, e.Pos)
	writeMessage(&sb, e.Message, useColor)
	for _, frame := range e.Stack {
		sb.WriteString(fmt.Sprintf("\n    at %s (%d:%d)", frame.FunctionName, frame.Pos.Line, frame.Pos.Column))
	}
	return sb.String()
}

func writeHeader(sb *strings.Builder, label, file string, pos lexer.Position) {
	if file != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", label, file, pos.Line, pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at line %d:%d\n", label, pos.Line, pos.Column))
	}
}

func writeCaret(sb *strings.Builder, useColor bool) {
	if useColor {
		sb.WriteString(color.RedString("^"))
	} else {
		sb.WriteString("^")
	}
	sb.WriteString("\n")
}

func writeMessage(sb *strings.Builder, message string, useColor bool) {
	if useColor {
		sb.WriteString(color.New(color.Bold).Sprint(message))
	} else {
		sb.WriteString(message)
	}
}

func sourceLineAt(source string, lineNum int) string {
	if source == "" {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors formats a batch of compile errors, teacher-style
// ("[Error N of M]" banners between entries).
func FormatErrors(errs []*CompilerError, useColor bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(useColor)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Compilation failed with %d error(s):\n\n", len(errs)))
	for i, err := range errs {
		sb.WriteString(fmt.Sprintf("[Error %d of %d]\n", i+1, len(errs)))
		sb.WriteString(err.Format(useColor))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
