package parser

import (
	"fmt"

	"github.com/cwbudde/go-jsvm/internal/lexer"
)

// ParseError is one syntax error collected while parsing. Parsing continues
// after most errors so a single pass can report more than one problem.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Message: fmt.Sprintf(format, args...),
		Pos:     p.curToken.Pos,
	})
}

func (p *Parser) peekError(want lexer.TokenType) {
	p.errorf("expected next token to be %s, got %s (%q) instead", want, p.peekToken.Type, p.peekToken.Literal)
}
