package parser

import (
	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/lexer"
)

func (p *Parser) parseClassDeclaration() ast.Statement {
	return p.parseClassBody()
}

func (p *Parser) parseClassExpression() ast.Expression {
	return p.parseClassBody()
}

// parseClassBody parses `class Name extends Super { ... }`, returning a
// *ast.ClassLiteral usable as either a statement or an expression.
func (p *Parser) parseClassBody() *ast.ClassLiteral {
	tok := p.curToken
	cls := &ast.ClassLiteral{Token: tok}

	if p.peekTokenIs(lexer.IDENT) {
		p.advance()
		cls.Name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}
	if p.peekTokenIs(lexer.EXTENDS) {
		p.advance()
		p.advance()
		cls.SuperClass = p.parseExpression(CALL - 1)
	}
	if !p.expectPeek(lexer.LBRACE) {
		return cls
	}

	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.advance()
		if p.curTokenIs(lexer.SEMICOLON) {
			continue
		}
		p.parseClassMember(cls)
	}
	p.expectPeek(lexer.RBRACE)
	return cls
}

func (p *Parser) parseClassMember(cls *ast.ClassLiteral) {
	static := false
	if p.curTokenIs(lexer.STATIC) && !p.peekTokenIs(lexer.LPAREN) && !p.peekTokenIs(lexer.ASSIGN) {
		static = true
		p.advance()
	}

	isAsync := false
	isGenerator := false
	kind := "method"

	if p.curTokenIs(lexer.ASYNC) && !p.peekTokenIs(lexer.LPAREN) && !p.peekTokenIs(lexer.ASSIGN) {
		isAsync = true
		p.advance()
	}
	if p.curTokenIs(lexer.STAR) {
		isGenerator = true
		p.advance()
	}
	if (p.curTokenIs(lexer.GET) || p.curTokenIs(lexer.SET)) && !p.peekTokenIs(lexer.LPAREN) && !p.peekTokenIs(lexer.ASSIGN) {
		kind = p.curToken.Literal
		p.advance()
	}

	computed := false
	var key ast.Expression
	if p.curTokenIs(lexer.LBRACKET) {
		computed = true
		p.advance()
		key = p.parseAssignExpr()
		if !p.expectPeek(lexer.RBRACKET) {
			return
		}
	} else if p.curTokenIs(lexer.STRING) {
		key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	} else {
		key = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}

	if p.peekTokenIs(lexer.LPAREN) {
		name, _ := key.(*ast.Identifier)
		if name != nil && name.Name == "constructor" && !static {
			kind = "constructor"
		}
		fn := p.parseMethodTail(isGenerator, isAsync)
		cls.Methods = append(cls.Methods, &ast.ClassMethod{
			Key: key, Computed: computed, Kind: kind, Static: static,
			IsGenerator: isGenerator, IsAsync: isAsync, Function: fn,
		})
		return
	}

	field := &ast.ClassField{Key: key, Computed: computed, Static: static}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.advance()
		p.advance()
		field.Value = p.parseAssignExpr()
	}
	cls.Fields = append(cls.Fields, field)
	p.consumeSemicolon()
}
