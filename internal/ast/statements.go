package ast

import (
	"strings"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// ExpressionStatement wraps an expression evaluated for its side effects.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()       {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStatement) String() string {
	if e.Expression != nil {
		return e.Expression.String() + ";"
	}
	return ""
}
func (e *ExpressionStatement) Pos() lexer.Position { return e.Token.Pos }

// BlockStatement is `{ stmt; stmt; ... }`.
type BlockStatement struct {
	Token      lexer.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()       {}
func (b *BlockStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, s := range b.Statements {
		sb.WriteString(s.String())
	}
	sb.WriteString(" }")
	return sb.String()
}
func (b *BlockStatement) Pos() lexer.Position { return b.Token.Pos }

// EmptyStatement is a bare `;`.
type EmptyStatement struct{ Token lexer.Token }

func (e *EmptyStatement) statementNode()       {}
func (e *EmptyStatement) TokenLiteral() string { return e.Token.Literal }
func (e *EmptyStatement) String() string       { return ";" }
func (e *EmptyStatement) Pos() lexer.Position  { return e.Token.Pos }

// VarDeclarator is one `name = init` (or destructuring pattern `= init`)
// entry of a declaration statement.
type VarDeclarator struct {
	Pattern Expression // Identifier, ArrayLiteral, or ObjectLiteral
	Init    Expression // nil when the declarator has no initializer
}

// DeclarationKind distinguishes var/let/const binding semantics.
type DeclarationKind string

const (
	DeclVar   DeclarationKind = "var"
	DeclLet   DeclarationKind = "let"
	DeclConst DeclarationKind = "const"
)

// VarDeclaration is `var|let|const a, b = 1, ...;`.
type VarDeclaration struct {
	Token       lexer.Token
	Kind        DeclarationKind
	Declarators []*VarDeclarator
}

func (v *VarDeclaration) statementNode()       {}
func (v *VarDeclaration) TokenLiteral() string { return v.Token.Literal }
func (v *VarDeclaration) String() string {
	parts := make([]string, len(v.Declarators))
	for i, d := range v.Declarators {
		if d.Init != nil {
			parts[i] = d.Pattern.String() + " = " + d.Init.String()
		} else {
			parts[i] = d.Pattern.String()
		}
	}
	return string(v.Kind) + " " + strings.Join(parts, ", ") + ";"
}
func (v *VarDeclaration) Pos() lexer.Position { return v.Token.Pos }

// IfStatement is `if (test) consequent else alternate`.
type IfStatement struct {
	Token       lexer.Token
	Test        Expression
	Consequent  Statement
	Alternate   Statement
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) String() string {
	s := "if (" + i.Test.String() + ") " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}
func (i *IfStatement) Pos() lexer.Position { return i.Token.Pos }

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	Token lexer.Token
	Test  Expression
	Body  Statement
}

func (w *WhileStatement) statementNode()       {}
func (w *WhileStatement) TokenLiteral() string { return w.Token.Literal }
func (w *WhileStatement) String() string       { return "while (" + w.Test.String() + ") " + w.Body.String() }
func (w *WhileStatement) Pos() lexer.Position  { return w.Token.Pos }

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	Token lexer.Token
	Body  Statement
	Test  Expression
}

func (d *DoWhileStatement) statementNode()       {}
func (d *DoWhileStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DoWhileStatement) String() string {
	return "do " + d.Body.String() + " while (" + d.Test.String() + ");"
}
func (d *DoWhileStatement) Pos() lexer.Position { return d.Token.Pos }

// ForStatement is the classic C-style `for (init; test; update) body`; any
// clause may be nil.
type ForStatement struct {
	Token  lexer.Token
	Init   Node // *VarDeclaration or Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (f *ForStatement) statementNode()       {}
func (f *ForStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForStatement) String() string       { return "for (...) " + f.Body.String() }
func (f *ForStatement) Pos() lexer.Position  { return f.Token.Pos }

// ForInStatement is `for (left in right) body`.
type ForInStatement struct {
	Token lexer.Token
	Left  Node // *VarDeclaration (single declarator) or Expression pattern
	Right Expression
	Body  Statement
}

func (f *ForInStatement) statementNode()       {}
func (f *ForInStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForInStatement) String() string       { return "for (... in " + f.Right.String() + ") " + f.Body.String() }
func (f *ForInStatement) Pos() lexer.Position  { return f.Token.Pos }

// ForOfStatement is `for (left of right) body`, optionally `for await`.
type ForOfStatement struct {
	Token   lexer.Token
	Left    Node
	Right   Expression
	Body    Statement
	IsAwait bool
}

func (f *ForOfStatement) statementNode()       {}
func (f *ForOfStatement) TokenLiteral() string { return f.Token.Literal }
func (f *ForOfStatement) String() string       { return "for (... of " + f.Right.String() + ") " + f.Body.String() }
func (f *ForOfStatement) Pos() lexer.Position  { return f.Token.Pos }

// BreakStatement is `break;` or `break label;`.
type BreakStatement struct {
	Token lexer.Token
	Label string
}

func (b *BreakStatement) statementNode()       {}
func (b *BreakStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BreakStatement) String() string       { return "break;" }
func (b *BreakStatement) Pos() lexer.Position  { return b.Token.Pos }

// ContinueStatement is `continue;` or `continue label;`.
type ContinueStatement struct {
	Token lexer.Token
	Label string
}

func (c *ContinueStatement) statementNode()       {}
func (c *ContinueStatement) TokenLiteral() string { return c.Token.Literal }
func (c *ContinueStatement) String() string       { return "continue;" }
func (c *ContinueStatement) Pos() lexer.Position  { return c.Token.Pos }

// LabeledStatement is `label: statement`, the target of labeled break/continue.
type LabeledStatement struct {
	Token lexer.Token
	Label string
	Body  Statement
}

func (l *LabeledStatement) statementNode()       {}
func (l *LabeledStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LabeledStatement) String() string       { return l.Label + ": " + l.Body.String() }
func (l *LabeledStatement) Pos() lexer.Position  { return l.Token.Pos }

// ReturnStatement is `return expr;`.
type ReturnStatement struct {
	Token lexer.Token
	Value Expression
}

func (r *ReturnStatement) statementNode()       {}
func (r *ReturnStatement) TokenLiteral() string { return r.Token.Literal }
func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return;"
	}
	return "return " + r.Value.String() + ";"
}
func (r *ReturnStatement) Pos() lexer.Position { return r.Token.Pos }

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	Token lexer.Token
	Value Expression
}

func (t *ThrowStatement) statementNode()       {}
func (t *ThrowStatement) TokenLiteral() string { return t.Token.Literal }
func (t *ThrowStatement) String() string       { return "throw " + t.Value.String() + ";" }
func (t *ThrowStatement) Pos() lexer.Position  { return t.Token.Pos }

// CatchClause binds an optional parameter pattern and runs Body.
type CatchClause struct {
	Param *Identifier // nil for parameterless `catch {}`
	Body  *BlockStatement
}

// TryStatement is `try { } catch (e) { } finally { }`; Catch/Finally may be nil.
type TryStatement struct {
	Token   lexer.Token
	Block   *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (t *TryStatement) statementNode()       {}
func (t *TryStatement) TokenLiteral() string { return t.Token.Literal }
func (t *TryStatement) String() string       { return "try " + t.Block.String() }
func (t *TryStatement) Pos() lexer.Position  { return t.Token.Pos }

// SwitchCase is one `case test:` or `default:` arm.
type SwitchCase struct {
	Test       Expression // nil for `default`
	Consequent []Statement
}

// SwitchStatement is `switch (disc) { case ...: ... }`.
type SwitchStatement struct {
	Token      lexer.Token
	Discriminant Expression
	Cases      []*SwitchCase
}

func (s *SwitchStatement) statementNode()       {}
func (s *SwitchStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SwitchStatement) String() string       { return "switch (" + s.Discriminant.String() + ") { ... }" }
func (s *SwitchStatement) Pos() lexer.Position  { return s.Token.Pos }
