package ast

import (
	"strings"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// Param is one formal parameter: a binding pattern, an optional default,
// and whether it's a rest parameter.
type Param struct {
	Pattern Expression // Identifier, ArrayLiteral, or ObjectLiteral (destructuring)
	Default Expression
	Rest    bool
}

func (p *Param) String() string {
	s := p.Pattern.String()
	if p.Rest {
		s = "..." + s
	}
	if p.Default != nil {
		s += " = " + p.Default.String()
	}
	return s
}

// FunctionLiteral is a `function` declaration or expression, including
// generator (`function*`) and async (`async function`) variants.
type FunctionLiteral struct {
	Token       lexer.Token
	Name        *Identifier // nil for anonymous function expressions
	Params      []*Param
	Body        *BlockStatement
	IsGenerator bool
	IsAsync     bool
}

func (f *FunctionLiteral) expressionNode()      {}
func (f *FunctionLiteral) statementNode()       {}
func (f *FunctionLiteral) TokenLiteral() string { return f.Token.Literal }
func (f *FunctionLiteral) String() string {
	var sb strings.Builder
	if f.IsAsync {
		sb.WriteString("async ")
	}
	sb.WriteString("function")
	if f.IsGenerator {
		sb.WriteString("*")
	}
	if f.Name != nil {
		sb.WriteString(" " + f.Name.Name)
	}
	sb.WriteString("(")
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(") ")
	sb.WriteString(f.Body.String())
	return sb.String()
}
func (f *FunctionLiteral) Pos() lexer.Position { return f.Token.Pos }

// ArrowFunctionLiteral is `(params) => body`, where Body is either a
// *BlockStatement (braced body) or an Expression (concise body).
type ArrowFunctionLiteral struct {
	Token   lexer.Token
	Params  []*Param
	Body    Node // *BlockStatement or Expression
	IsAsync bool
}

func (a *ArrowFunctionLiteral) expressionNode()      {}
func (a *ArrowFunctionLiteral) TokenLiteral() string { return a.Token.Literal }
func (a *ArrowFunctionLiteral) String() string {
	parts := make([]string, len(a.Params))
	for i, p := range a.Params {
		parts[i] = p.String()
	}
	prefix := ""
	if a.IsAsync {
		prefix = "async "
	}
	return prefix + "(" + strings.Join(parts, ", ") + ") => " + a.Body.String()
}
func (a *ArrowFunctionLiteral) Pos() lexer.Position { return a.Token.Pos }
