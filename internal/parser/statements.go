package parser

import (
	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/lexer"
)

func (p *Parser) parseStatement() ast.Statement {
	stmt := p.parseStatementInner()
	if stmt == nil && len(p.errors) > 0 {
		p.synchronize()
	}
	return stmt
}

func (p *Parser) parseStatementInner() ast.Statement {
	switch p.curToken.Type {
	case lexer.SEMICOLON:
		return &ast.EmptyStatement{Token: p.curToken}
	case lexer.LBRACE:
		return p.parseBlockStatement()
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVarDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.DO:
		return p.parseDoWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.BREAK:
		return p.parseBreakStatement()
	case lexer.CONTINUE:
		return p.parseContinueStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.THROW:
		return p.parseThrowStatement()
	case lexer.TRY:
		return p.parseTryStatement()
	case lexer.SWITCH:
		return p.parseSwitchStatement()
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.ASYNC:
		if p.peekTokenIs(lexer.FUNCTION) {
			tok := p.curToken
			p.advance()
			return p.parseFunctionDeclarationFrom(tok, true)
		}
		return p.parseExpressionStatement()
	case lexer.CLASS:
		return p.parseClassDeclaration()
	case lexer.IDENT:
		if p.peekTokenIs(lexer.COLON) {
			return p.parseLabeledStatement()
		}
		return p.parseExpressionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.advance()
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.advance()
	}
	return block
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	tok := p.curToken
	expr := p.parseExpr()
	stmt := &ast.ExpressionStatement{Token: tok, Expression: expr}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) declKind() ast.DeclarationKind {
	switch p.curToken.Type {
	case lexer.LET:
		return ast.DeclLet
	case lexer.CONST:
		return ast.DeclConst
	default:
		return ast.DeclVar
	}
}

func (p *Parser) parseVarDeclaration() *ast.VarDeclaration {
	decl := &ast.VarDeclaration{Token: p.curToken, Kind: p.declKind()}
	for {
		p.advance()
		d := &ast.VarDeclarator{Pattern: p.parseBindingTarget()}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.advance()
			p.advance()
			d.Init = p.parseAssignExpr()
		}
		decl.Declarators = append(decl.Declarators, d)
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.consumeSemicolon()
	return decl
}

// parseVarDeclarationNoSemi is used inside `for (...)` headers, where the
// declaration is terminated by `;` or `in`/`of`, not consumeSemicolon.
func (p *Parser) parseVarDeclarationNoSemi() *ast.VarDeclaration {
	decl := &ast.VarDeclaration{Token: p.curToken, Kind: p.declKind()}
	for {
		p.advance()
		d := &ast.VarDeclarator{Pattern: p.parseBindingTarget()}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.advance()
			p.advance()
			d.Init = p.parseAssignExpr()
		}
		decl.Declarators = append(decl.Declarators, d)
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	return decl
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.advance()
	stmt.Test = p.parseExpr()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.advance()
	stmt.Consequent = p.parseStatement()
	if p.peekTokenIs(lexer.ELSE) {
		p.advance()
		p.advance()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.advance()
	stmt.Test = p.parseExpr()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.advance()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseDoWhileStatement() ast.Statement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.advance()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	if !p.expectPeek(lexer.WHILE) {
		return nil
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.advance()
	stmt.Test = p.parseExpr()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

// parseForStatement covers classic C-style for, for-in, and for-of (with
// optional `await`), disambiguating after parsing the init clause.
func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	isAwait := false
	if p.peekTokenIs(lexer.AWAIT) {
		isAwait = true
		p.advance()
	}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	var init ast.Node
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.advance()
	} else {
		p.advance()
		if p.curTokenIs(lexer.VAR) || p.curTokenIs(lexer.LET) || p.curTokenIs(lexer.CONST) {
			init = p.parseVarDeclarationNoSemi()
		} else {
			init = p.parseExpr()
		}

		if p.peekTokenIs(lexer.IN) {
			p.advance()
			p.advance()
			right := p.parseExpr()
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			p.advance()
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return &ast.ForInStatement{Token: tok, Left: init, Right: right, Body: body}
		}
		if p.peekTokenIs(lexer.OF) {
			p.advance()
			p.advance()
			right := p.parseAssignExpr()
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
			p.advance()
			p.loopDepth++
			body := p.parseStatement()
			p.loopDepth--
			return &ast.ForOfStatement{Token: tok, Left: init, Right: right, Body: body, IsAwait: isAwait}
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}

	stmt := &ast.ForStatement{Token: tok, Init: init}
	if !p.peekTokenIs(lexer.SEMICOLON) {
		p.advance()
		stmt.Test = p.parseExpr()
	}
	if !p.expectPeek(lexer.SEMICOLON) {
		return nil
	}
	if !p.peekTokenIs(lexer.RPAREN) {
		p.advance()
		stmt.Update = p.parseExpr()
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	p.advance()
	p.loopDepth++
	stmt.Body = p.parseStatement()
	p.loopDepth--
	return stmt
}

func (p *Parser) parseBreakStatement() ast.Statement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) && !p.peekToken.NewlineBefore {
		p.advance()
		stmt.Label = p.curToken.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() ast.Statement {
	stmt := &ast.ContinueStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.IDENT) && !p.peekToken.NewlineBefore {
		p.advance()
		stmt.Label = p.curToken.Literal
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) || p.peekToken.NewlineBefore {
		p.consumeSemicolon()
		return stmt
	}
	p.advance()
	stmt.Value = p.parseExpr()
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseThrowStatement() ast.Statement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.advance()
	stmt.Value = p.parseExpr()
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() ast.Statement {
	stmt := &ast.TryStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	stmt.Block = p.parseBlockStatement()

	if p.peekTokenIs(lexer.CATCH) {
		p.advance()
		clause := &ast.CatchClause{}
		if p.peekTokenIs(lexer.LPAREN) {
			p.advance()
			p.advance()
			ident := p.curToken
			clause.Param = &ast.Identifier{Token: ident, Name: ident.Literal}
			if !p.expectPeek(lexer.RPAREN) {
				return nil
			}
		}
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		clause.Body = p.parseBlockStatement()
		stmt.Catch = clause
	}

	if p.peekTokenIs(lexer.FINALLY) {
		p.advance()
		if !p.expectPeek(lexer.LBRACE) {
			return nil
		}
		stmt.Finally = p.parseBlockStatement()
	}

	return stmt
}

func (p *Parser) parseSwitchStatement() ast.Statement {
	stmt := &ast.SwitchStatement{Token: p.curToken}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.advance()
	stmt.Discriminant = p.parseExpr()
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.switchDepth++
	for !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
		p.advance()
		c := &ast.SwitchCase{}
		if p.curTokenIs(lexer.CASE) {
			p.advance()
			c.Test = p.parseExpr()
		} else if !p.curTokenIs(lexer.DEFAULT) {
			p.errorf("expected 'case' or 'default', got %s", p.curToken.Type)
			break
		}
		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		for !p.peekTokenIs(lexer.CASE) && !p.peekTokenIs(lexer.DEFAULT) && !p.peekTokenIs(lexer.RBRACE) && !p.peekTokenIs(lexer.EOF) {
			p.advance()
			s := p.parseStatement()
			if s != nil {
				c.Consequent = append(c.Consequent, s)
			}
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	p.switchDepth--
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return stmt
}

func (p *Parser) parseLabeledStatement() ast.Statement {
	tok := p.curToken
	label := p.curToken.Literal
	p.advance() // consume :
	p.advance()
	p.labels[label] = true
	body := p.parseStatement()
	delete(p.labels, label)
	return &ast.LabeledStatement{Token: tok, Label: label, Body: body}
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	return p.parseFunctionDeclarationFrom(p.curToken, false)
}

func (p *Parser) parseFunctionDeclarationFrom(tok lexer.Token, isAsync bool) ast.Statement {
	fn := &ast.FunctionLiteral{Token: tok, IsAsync: isAsync}
	if p.peekTokenIs(lexer.STAR) {
		fn.IsGenerator = true
		p.advance()
	}
	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.Params = p.parseParamList()
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockStatement()
	return fn
}
