package ast

import (
	"strings"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// ClassMethod is one method/accessor/constructor entry in a class body.
type ClassMethod struct {
	Key         Expression
	Computed    bool
	Kind        string // "constructor", "method", "get", "set"
	Static      bool
	IsGenerator bool
	IsAsync     bool
	Function    *FunctionLiteral
}

// ClassField is a field declaration with an optional initializer,
// evaluated in constructor order (instance) or once (static).
type ClassField struct {
	Key      Expression
	Computed bool
	Static   bool
	Value    Expression
}

// ClassLiteral is `class Name extends Super { ... }`, used for both class
// declarations and class expressions.
type ClassLiteral struct {
	Token      lexer.Token
	Name       *Identifier // nil for anonymous class expressions
	SuperClass Expression  // any member expression, or nil
	Methods    []*ClassMethod
	Fields     []*ClassField
}

func (c *ClassLiteral) expressionNode()      {}
func (c *ClassLiteral) statementNode()       {}
func (c *ClassLiteral) TokenLiteral() string { return c.Token.Literal }
func (c *ClassLiteral) String() string {
	var sb strings.Builder
	sb.WriteString("class")
	if c.Name != nil {
		sb.WriteString(" " + c.Name.Name)
	}
	if c.SuperClass != nil {
		sb.WriteString(" extends " + c.SuperClass.String())
	}
	sb.WriteString(" { ... }")
	return sb.String()
}
func (c *ClassLiteral) Pos() lexer.Position { return c.Token.Pos }
