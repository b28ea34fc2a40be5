// Package parser implements a Pratt parser that turns a token stream from
// internal/lexer into the internal/ast tree walked by the evaluator.
//
// Key patterns:
//   - Lexer feedback: advance() decides the regex-allowed bit for the
//     lexer's NextToken from the token that precedes the one being scanned.
//   - Brace tracking: every LBRACE/RBRACE the lexer returns is reported back
//     at once via Lexer.TrackBrace so template-literal resumption stays in
//     sync with nested object literals inside `${ }` substitutions.
//   - Error recovery: parse errors are collected rather than panicking;
//     synchronize() skips to a statement boundary after a malformed one.
package parser

import (
	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// Precedence levels, lowest to highest.
const (
	_ int = iota
	LOWEST
	COMMA
	ASSIGN
	CONDITIONAL
	NULLISH
	LOGICAL_OR
	LOGICAL_AND
	BIT_OR
	BIT_XOR
	BIT_AND
	EQUALITY
	RELATIONAL
	SHIFT
	ADDITIVE
	MULTIPLICATIVE
	EXPONENT
	UNARY
	UPDATE
	CALL
	MEMBER
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGN, lexer.PLUS_ASSIGN: ASSIGN, lexer.MINUS_ASSIGN: ASSIGN,
	lexer.STAR_ASSIGN: ASSIGN, lexer.SLASH_ASSIGN: ASSIGN, lexer.PERCENT_ASSIGN: ASSIGN,
	lexer.POW_ASSIGN: ASSIGN, lexer.AND_ASSIGN: ASSIGN, lexer.OR_ASSIGN: ASSIGN,
	lexer.XOR_ASSIGN: ASSIGN, lexer.SHL_ASSIGN: ASSIGN, lexer.SHR_ASSIGN: ASSIGN,
	lexer.USHR_ASSIGN: ASSIGN, lexer.LAND_ASSIGN: ASSIGN, lexer.LOR_ASSIGN: ASSIGN,
	lexer.NULLISH_ASSIGN: ASSIGN,

	lexer.QUESTION: CONDITIONAL,
	lexer.NULLISH:  NULLISH,
	lexer.OR_OR:    LOGICAL_OR,
	lexer.AND_AND:  LOGICAL_AND,
	lexer.BIT_OR:   BIT_OR,
	lexer.BIT_XOR:  BIT_XOR,
	lexer.BIT_AND:  BIT_AND,

	lexer.EQ: EQUALITY, lexer.NOT_EQ: EQUALITY, lexer.STRICT_EQ: EQUALITY, lexer.STRICT_NOT_EQ: EQUALITY,

	lexer.LT: RELATIONAL, lexer.GT: RELATIONAL, lexer.LT_EQ: RELATIONAL, lexer.GT_EQ: RELATIONAL,
	lexer.INSTANCEOF: RELATIONAL, lexer.IN: RELATIONAL,

	lexer.SHL: SHIFT, lexer.SHR: SHIFT, lexer.USHR: SHIFT,

	lexer.PLUS: ADDITIVE, lexer.MINUS: ADDITIVE,

	lexer.STAR: MULTIPLICATIVE, lexer.SLASH: MULTIPLICATIVE, lexer.PERCENT: MULTIPLICATIVE,

	lexer.POW: EXPONENT,

	lexer.INC: UPDATE, lexer.DEC: UPDATE,

	lexer.LPAREN: CALL,

	lexer.DOT: MEMBER, lexer.LBRACKET: MEMBER, lexer.OPTIONAL_CHAIN: MEMBER,
	lexer.TEMPLATE_STRING: MEMBER, lexer.TEMPLATE_HEAD: MEMBER,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser turns a lexer.Lexer's token stream into an *ast.Program.
type Parser struct {
	l *lexer.Lexer

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn

	errors []*ParseError

	// loopDepth and switchDepth count the loop and switch bodies being
	// parsed, and labels holds the label names currently in scope. No parse
	// function reads them and funcDepth is never incremented, so
	// return/break/continue are accepted in any position.
	funcDepth   int
	loopDepth   int
	switchDepth int
	labels      map[string]bool
}

// New builds a Parser reading from l and primes the two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l, labels: map[string]bool{}}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{}
	p.infixParseFns = map[lexer.TokenType]infixParseFn{}
	p.registerPrefix()
	p.registerInfix()

	p.advance()
	p.advance()
	return p
}

// Errors returns the parse errors collected so far.
func (p *Parser) Errors() []*ParseError { return p.errors }

// TokenEndsExpression exports tokenEndsExpression for standalone tokenizers
// (pkg/jsvm's Tokenize) that need the same regex/division disambiguation
// the parser itself drives, without re-deriving it.
func TokenEndsExpression(t lexer.TokenType) bool { return tokenEndsExpression(t) }

// tokenEndsExpression reports whether t can be the last token of a complete
// expression, i.e. whether a following `/` must mean division rather than
// the start of a regex literal (spec §4.1).
func tokenEndsExpression(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENT, lexer.NUMBER, lexer.BIGINT, lexer.STRING,
		lexer.TEMPLATE_STRING, lexer.TEMPLATE_TAIL, lexer.REGEX,
		lexer.THIS, lexer.SUPER, lexer.NULL, lexer.UNDEFINED, lexer.TRUE, lexer.FALSE,
		lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.INC, lexer.DEC:
		return true
	}
	return false
}

// advance pulls the next token from the lexer, passing the regex-allowed
// feedback bit for the token that now precedes it, and reports a scanned
// `{`/`}` to Lexer.TrackBrace before the lexer scans anything further.
func (p *Parser) advance() {
	p.curToken = p.peekToken
	regexAllowed := !tokenEndsExpression(p.curToken.Type)
	p.peekToken = p.l.NextToken(regexAllowed)
	if p.peekToken.Type == lexer.LBRACE || p.peekToken.Type == lexer.RBRACE {
		p.l.TrackBrace(p.peekToken.Type)
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.advance()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	// A newline before a postfix ++/-- terminates the expression instead
	// (automatic semicolon insertion forbids a postfix operator on the
	// following line from attaching to it).
	if (p.peekToken.Type == lexer.INC || p.peekToken.Type == lexer.DEC) && p.peekToken.NewlineBefore {
		return LOWEST
	}
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// consumeSemicolon implements the spec's simplified automatic-semicolon
// insertion: an explicit `;` is consumed, otherwise a newline, `}`, or EOF
// before the next token is accepted as an inserted semicolon (spec §4.1).
func (p *Parser) consumeSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.advance()
		return
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		return
	}
	p.peekError(lexer.SEMICOLON)
}

// ParseProgram parses the full token stream into a Program node.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}
	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.advance()
	}
	return program
}

// synchronize skips tokens until a likely statement boundary, used for
// error recovery after a malformed statement.
func (p *Parser) synchronize() {
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			return
		}
		switch p.peekToken.Type {
		case lexer.VAR, lexer.LET, lexer.CONST, lexer.FUNCTION, lexer.CLASS,
			lexer.IF, lexer.FOR, lexer.WHILE, lexer.RETURN, lexer.RBRACE:
			return
		}
		p.advance()
	}
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorf("unexpected token %s (%q)", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.advance()
		left = infix(left)
	}
	return left
}

// parseAssignExpr parses a single assignment-level expression (no bare
// comma operator), the grammar used for call arguments, array/object
// literal elements, and default values.
func (p *Parser) parseAssignExpr() ast.Expression {
	return p.parseExpression(ASSIGN - 1)
}

// parseExpr parses a full expression, including the comma operator,
// collapsing a comma-separated run into a SequenceExpression.
func (p *Parser) parseExpr() ast.Expression {
	tok := p.curToken
	first := p.parseAssignExpr()
	if !p.peekTokenIs(lexer.COMMA) {
		return first
	}
	exprs := []ast.Expression{first}
	for p.peekTokenIs(lexer.COMMA) {
		p.advance()
		p.advance()
		exprs = append(exprs, p.parseAssignExpr())
	}
	return &ast.SequenceExpression{Token: tok, Expressions: exprs}
}
