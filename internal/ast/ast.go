// Package ast defines the abstract syntax tree node types produced by the
// parser and walked by the evaluator.
package ast

import (
	"bytes"
	"strings"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// Node is the base interface implemented by every AST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node executed for effect.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of the AST for a compilation unit.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

// Identifier is a bare name reference.
type Identifier struct {
	Token lexer.Token
	Name  string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Name }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }

// NumberLiteral is a Number-tagged literal.
type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }
func (n *NumberLiteral) Pos() lexer.Position  { return n.Token.Pos }

// BigIntLiteral is a BigInt-tagged literal (trailing `n` stripped by the lexer).
type BigIntLiteral struct {
	Token lexer.Token
	Text  string // decimal digits, base prefix preserved (0x/0o/0b)
}

func (b *BigIntLiteral) expressionNode()      {}
func (b *BigIntLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BigIntLiteral) String() string       { return b.Text + "n" }
func (b *BigIntLiteral) Pos() lexer.Position  { return b.Token.Pos }

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return "\"" + s.Value + "\"" }
func (s *StringLiteral) Pos() lexer.Position  { return s.Token.Pos }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }
func (b *BooleanLiteral) Pos() lexer.Position  { return b.Token.Pos }

// NullLiteral is the `null` literal.
type NullLiteral struct{ Token lexer.Token }

func (n *NullLiteral) expressionNode()      {}
func (n *NullLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NullLiteral) String() string       { return "null" }
func (n *NullLiteral) Pos() lexer.Position  { return n.Token.Pos }

// UndefinedLiteral is the `undefined` literal.
type UndefinedLiteral struct{ Token lexer.Token }

func (u *UndefinedLiteral) expressionNode()      {}
func (u *UndefinedLiteral) TokenLiteral() string { return u.Token.Literal }
func (u *UndefinedLiteral) String() string       { return "undefined" }
func (u *UndefinedLiteral) Pos() lexer.Position  { return u.Token.Pos }

// ThisExpression is the `this` keyword.
type ThisExpression struct{ Token lexer.Token }

func (t *ThisExpression) expressionNode()      {}
func (t *ThisExpression) TokenLiteral() string { return t.Token.Literal }
func (t *ThisExpression) String() string       { return "this" }
func (t *ThisExpression) Pos() lexer.Position  { return t.Token.Pos }

// SuperExpression is the `super` keyword, valid as a call target or as the
// receiver of a property access inside a derived class or object method.
type SuperExpression struct{ Token lexer.Token }

func (s *SuperExpression) expressionNode()      {}
func (s *SuperExpression) TokenLiteral() string { return s.Token.Literal }
func (s *SuperExpression) String() string       { return "super" }
func (s *SuperExpression) Pos() lexer.Position  { return s.Token.Pos }

// NewTargetExpression is `new.target`.
type NewTargetExpression struct{ Token lexer.Token }

func (n *NewTargetExpression) expressionNode()      {}
func (n *NewTargetExpression) TokenLiteral() string { return n.Token.Literal }
func (n *NewTargetExpression) String() string       { return "new.target" }
func (n *NewTargetExpression) Pos() lexer.Position  { return n.Token.Pos }

// RegexLiteral is a /body/flags literal.
type RegexLiteral struct {
	Token lexer.Token
	Body  string
	Flags string
}

func (r *RegexLiteral) expressionNode()      {}
func (r *RegexLiteral) TokenLiteral() string { return r.Token.Literal }
func (r *RegexLiteral) String() string       { return "/" + r.Body + "/" + r.Flags }
func (r *RegexLiteral) Pos() lexer.Position  { return r.Token.Pos }

// TemplateLiteral interleaves literal string chunks with substitution
// expressions: Quasis has one more element than Expressions.
type TemplateLiteral struct {
	Token       lexer.Token
	Quasis      []string
	Expressions []Expression
}

func (t *TemplateLiteral) expressionNode()      {}
func (t *TemplateLiteral) TokenLiteral() string { return t.Token.Literal }
func (t *TemplateLiteral) String() string {
	var out bytes.Buffer
	out.WriteString("`")
	for i, q := range t.Quasis {
		out.WriteString(q)
		if i < len(t.Expressions) {
			out.WriteString("${")
			out.WriteString(t.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteString("`")
	return out.String()
}
func (t *TemplateLiteral) Pos() lexer.Position { return t.Token.Pos }

// TaggedTemplateExpression is tag`...`.
type TaggedTemplateExpression struct {
	Token   lexer.Token
	Tag     Expression
	Quasi   *TemplateLiteral
}

func (t *TaggedTemplateExpression) expressionNode()      {}
func (t *TaggedTemplateExpression) TokenLiteral() string { return t.Token.Literal }
func (t *TaggedTemplateExpression) String() string       { return t.Tag.String() + t.Quasi.String() }
func (t *TaggedTemplateExpression) Pos() lexer.Position  { return t.Token.Pos }

// ArrayLiteral is `[elem, elem, ...]`; elements may be nil to represent a
// sparse-array hole, or *SpreadElement.
type ArrayLiteral struct {
	Token    lexer.Token
	Elements []Expression
}

func (a *ArrayLiteral) expressionNode()      {}
func (a *ArrayLiteral) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayLiteral) String() string {
	parts := make([]string, 0, len(a.Elements))
	for _, e := range a.Elements {
		if e == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *ArrayLiteral) Pos() lexer.Position { return a.Token.Pos }

// SpreadElement is `...expr`, valid in array/object literals, call arguments
// and array destructuring rest positions.
type SpreadElement struct {
	Token    lexer.Token
	Argument Expression
}

func (s *SpreadElement) expressionNode()      {}
func (s *SpreadElement) TokenLiteral() string { return s.Token.Literal }
func (s *SpreadElement) String() string       { return "..." + s.Argument.String() }
func (s *SpreadElement) Pos() lexer.Position  { return s.Token.Pos }

// ObjectProperty is one `key: value`, `key` shorthand, `[computed]: value`,
// `...spread`, or method entry of an ObjectLiteral.
type ObjectProperty struct {
	Key       Expression
	Value     Expression
	Computed  bool
	Shorthand bool
	IsSpread  bool
	Kind      string // "init", "get", "set", "method"
	IsMethod  bool
	IsGenerator bool
	IsAsync     bool
}

// ObjectLiteral is `{ prop, prop, ... }`.
type ObjectLiteral struct {
	Token      lexer.Token
	Properties []*ObjectProperty
}

func (o *ObjectLiteral) expressionNode()      {}
func (o *ObjectLiteral) TokenLiteral() string { return o.Token.Literal }
func (o *ObjectLiteral) String() string {
	parts := make([]string, 0, len(o.Properties))
	for _, p := range o.Properties {
		if p.IsSpread {
			parts = append(parts, "..."+p.Value.String())
			continue
		}
		parts = append(parts, p.Key.String()+": "+p.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o *ObjectLiteral) Pos() lexer.Position { return o.Token.Pos }

// BinaryExpression is `left op right` for arithmetic/relational/logical/
// bitwise/nullish operators.
type BinaryExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}
func (b *BinaryExpression) Pos() lexer.Position { return b.Token.Pos }

// LogicalExpression is `left && right`, `left || right`, or `left ?? right`;
// kept distinct from BinaryExpression because of short-circuit evaluation.
type LogicalExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (l *LogicalExpression) expressionNode()      {}
func (l *LogicalExpression) TokenLiteral() string { return l.Token.Literal }
func (l *LogicalExpression) String() string {
	return "(" + l.Left.String() + " " + l.Operator + " " + l.Right.String() + ")"
}
func (l *LogicalExpression) Pos() lexer.Position { return l.Token.Pos }

// AssignmentExpression is `target op= value` for `=` and compound assignment
// operators.
type AssignmentExpression struct {
	Token    lexer.Token
	Target   Expression
	Operator string
	Value    Expression
}

func (a *AssignmentExpression) expressionNode()      {}
func (a *AssignmentExpression) TokenLiteral() string { return a.Token.Literal }
func (a *AssignmentExpression) String() string {
	return a.Target.String() + " " + a.Operator + " " + a.Value.String()
}
func (a *AssignmentExpression) Pos() lexer.Position { return a.Token.Pos }

// UnaryExpression is `op operand` for prefix operators (`typeof`, `delete`,
// `void`, `!`, `~`, unary `+`/`-`, `await`).
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpression) String() string       { return "(" + u.Operator + u.Operand.String() + ")" }
func (u *UnaryExpression) Pos() lexer.Position  { return u.Token.Pos }

// UpdateExpression is `++`/`--`, prefix or postfix.
type UpdateExpression struct {
	Token    lexer.Token
	Operator string
	Operand  Expression
	Prefix   bool
}

func (u *UpdateExpression) expressionNode()      {}
func (u *UpdateExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UpdateExpression) String() string {
	if u.Prefix {
		return u.Operator + u.Operand.String()
	}
	return u.Operand.String() + u.Operator
}
func (u *UpdateExpression) Pos() lexer.Position { return u.Token.Pos }

// ConditionalExpression is `test ? consequent : alternate`.
type ConditionalExpression struct {
	Token       lexer.Token
	Test        Expression
	Consequent  Expression
	Alternate   Expression
}

func (c *ConditionalExpression) expressionNode()      {}
func (c *ConditionalExpression) TokenLiteral() string { return c.Token.Literal }
func (c *ConditionalExpression) String() string {
	return "(" + c.Test.String() + " ? " + c.Consequent.String() + " : " + c.Alternate.String() + ")"
}
func (c *ConditionalExpression) Pos() lexer.Position { return c.Token.Pos }

// CallExpression is `callee(args...)`, optionally optional-chained (`?.(`).
type CallExpression struct {
	Token    lexer.Token
	Callee   Expression
	Args     []Expression
	Optional bool
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (c *CallExpression) Pos() lexer.Position { return c.Token.Pos }

// NewExpression is `new Callee(args...)`.
type NewExpression struct {
	Token  lexer.Token
	Callee Expression
	Args   []Expression
}

func (n *NewExpression) expressionNode()      {}
func (n *NewExpression) TokenLiteral() string { return n.Token.Literal }
func (n *NewExpression) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return "new " + n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (n *NewExpression) Pos() lexer.Position { return n.Token.Pos }

// MemberExpression is `object.property` or `object[property]`, optionally
// optional-chained (`?.`).
type MemberExpression struct {
	Token    lexer.Token
	Object   Expression
	Property Expression
	Computed bool
	Optional bool
}

func (m *MemberExpression) expressionNode()      {}
func (m *MemberExpression) TokenLiteral() string { return m.Token.Literal }
func (m *MemberExpression) String() string {
	if m.Computed {
		return m.Object.String() + "[" + m.Property.String() + "]"
	}
	return m.Object.String() + "." + m.Property.String()
}
func (m *MemberExpression) Pos() lexer.Position { return m.Token.Pos }

// SequenceExpression is the comma operator `a, b, c`.
type SequenceExpression struct {
	Token       lexer.Token
	Expressions []Expression
}

func (s *SequenceExpression) expressionNode()      {}
func (s *SequenceExpression) TokenLiteral() string { return s.Token.Literal }
func (s *SequenceExpression) String() string {
	parts := make([]string, len(s.Expressions))
	for i, e := range s.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
func (s *SequenceExpression) Pos() lexer.Position { return s.Token.Pos }

// YieldExpression is `yield expr` or `yield* expr`.
type YieldExpression struct {
	Token    lexer.Token
	Argument Expression
	Delegate bool
}

func (y *YieldExpression) expressionNode()      {}
func (y *YieldExpression) TokenLiteral() string { return y.Token.Literal }
func (y *YieldExpression) String() string {
	if y.Delegate {
		return "yield* " + y.Argument.String()
	}
	if y.Argument == nil {
		return "yield"
	}
	return "yield " + y.Argument.String()
}
func (y *YieldExpression) Pos() lexer.Position { return y.Token.Pos }
