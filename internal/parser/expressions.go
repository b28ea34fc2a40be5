package parser

import (
	"strings"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/lexer"
)

func (p *Parser) registerPrefix() {
	p.prefixParseFns[lexer.IDENT] = p.parseIdentifier
	p.prefixParseFns[lexer.NUMBER] = p.parseNumberLiteral
	p.prefixParseFns[lexer.BIGINT] = p.parseBigIntLiteral
	p.prefixParseFns[lexer.STRING] = p.parseStringLiteral
	p.prefixParseFns[lexer.TRUE] = p.parseBooleanLiteral
	p.prefixParseFns[lexer.FALSE] = p.parseBooleanLiteral
	p.prefixParseFns[lexer.NULL] = p.parseNullLiteral
	p.prefixParseFns[lexer.UNDEFINED] = p.parseUndefinedLiteral
	p.prefixParseFns[lexer.THIS] = p.parseThisExpression
	p.prefixParseFns[lexer.SUPER] = p.parseSuperExpression
	p.prefixParseFns[lexer.REGEX] = p.parseRegexLiteral
	p.prefixParseFns[lexer.TEMPLATE_STRING] = p.parseTemplateLiteral
	p.prefixParseFns[lexer.TEMPLATE_HEAD] = p.parseTemplateLiteral
	p.prefixParseFns[lexer.LPAREN] = p.parseGroupedOrArrow
	p.prefixParseFns[lexer.LBRACKET] = p.parseArrayLiteral
	p.prefixParseFns[lexer.LBRACE] = p.parseObjectLiteral
	p.prefixParseFns[lexer.FUNCTION] = p.parseFunctionExpression
	p.prefixParseFns[lexer.ASYNC] = p.parseAsyncPrefix
	p.prefixParseFns[lexer.CLASS] = p.parseClassExpression
	p.prefixParseFns[lexer.NEW] = p.parseNewExpressionOrTarget
	p.prefixParseFns[lexer.YIELD] = p.parseYieldExpression

	for _, t := range []lexer.TokenType{lexer.NOT, lexer.BIT_NOT, lexer.PLUS, lexer.MINUS,
		lexer.TYPEOF, lexer.VOID, lexer.DELETE, lexer.AWAIT} {
		p.prefixParseFns[t] = p.parseUnaryExpression
	}
	p.prefixParseFns[lexer.INC] = p.parsePrefixUpdate
	p.prefixParseFns[lexer.DEC] = p.parsePrefixUpdate
	p.prefixParseFns[lexer.SPREAD] = p.parseSpreadElement
}

func (p *Parser) registerInfix() {
	for _, t := range []lexer.TokenType{lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.PERCENT, lexer.POW,
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LT_EQ, lexer.GT_EQ, lexer.INSTANCEOF, lexer.IN,
		lexer.SHL, lexer.SHR, lexer.USHR, lexer.BIT_AND, lexer.BIT_OR, lexer.BIT_XOR} {
		p.infixParseFns[t] = p.parseBinaryExpression
	}
	p.infixParseFns[lexer.AND_AND] = p.parseLogicalExpression
	p.infixParseFns[lexer.OR_OR] = p.parseLogicalExpression
	p.infixParseFns[lexer.NULLISH] = p.parseLogicalExpression

	for _, t := range []lexer.TokenType{lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.STAR_ASSIGN, lexer.SLASH_ASSIGN, lexer.PERCENT_ASSIGN, lexer.POW_ASSIGN,
		lexer.AND_ASSIGN, lexer.OR_ASSIGN, lexer.XOR_ASSIGN, lexer.SHL_ASSIGN, lexer.SHR_ASSIGN,
		lexer.USHR_ASSIGN, lexer.LAND_ASSIGN, lexer.LOR_ASSIGN, lexer.NULLISH_ASSIGN} {
		p.infixParseFns[t] = p.parseAssignmentExpression
	}

	p.infixParseFns[lexer.QUESTION] = p.parseConditionalExpression
	p.infixParseFns[lexer.LPAREN] = p.parseCallExpression
	p.infixParseFns[lexer.DOT] = p.parseMemberExpression
	p.infixParseFns[lexer.LBRACKET] = p.parseMemberExpression
	p.infixParseFns[lexer.OPTIONAL_CHAIN] = p.parseMemberExpression
	p.infixParseFns[lexer.INC] = p.parsePostfixUpdate
	p.infixParseFns[lexer.DEC] = p.parsePostfixUpdate
	p.infixParseFns[lexer.TEMPLATE_STRING] = p.parseTaggedTemplate
	p.infixParseFns[lexer.TEMPLATE_HEAD] = p.parseTaggedTemplate
}

// parseIdentifier also covers the single-parameter arrow shorthand
// `x => expr`, which has no enclosing parens to trigger parseGroupedOrArrow.
func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.curToken
	ident := &ast.Identifier{Token: tok, Name: tok.Literal}
	if p.peekTokenIs(lexer.ARROW) {
		p.advance()
		return p.finishArrowFunction(tok, []*ast.Param{{Pattern: ident}}, false)
	}
	return ident
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	val := parseNumberText(tok.Literal)
	return &ast.NumberLiteral{Token: tok, Value: val}
}

func (p *Parser) parseBigIntLiteral() ast.Expression {
	return &ast.BigIntLiteral{Token: p.curToken, Text: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == lexer.TRUE}
}

func (p *Parser) parseNullLiteral() ast.Expression      { return &ast.NullLiteral{Token: p.curToken} }
func (p *Parser) parseUndefinedLiteral() ast.Expression { return &ast.UndefinedLiteral{Token: p.curToken} }
func (p *Parser) parseThisExpression() ast.Expression   { return &ast.ThisExpression{Token: p.curToken} }
func (p *Parser) parseSuperExpression() ast.Expression  { return &ast.SuperExpression{Token: p.curToken} }

func (p *Parser) parseRegexLiteral() ast.Expression {
	tok := p.curToken
	body := tok.Literal
	// body is "/.../flags"; split off the trailing flag run after the final
	// unescaped slash.
	last := strings.LastIndex(body, "/")
	return &ast.RegexLiteral{Token: tok, Body: body[1:last], Flags: body[last+1:]}
}

// parseTemplateLiteral handles both a single TEMPLATE_STRING (no
// substitutions) and a TEMPLATE_HEAD ... TEMPLATE_TAIL run.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.TemplateLiteral{Token: tok}
	if tok.Type == lexer.TEMPLATE_STRING {
		lit.Quasis = []string{tok.Literal}
		return lit
	}
	lit.Quasis = append(lit.Quasis, tok.Literal)
	for {
		p.advance()
		lit.Expressions = append(lit.Expressions, p.parseExpr())
		if p.peekTokenIs(lexer.TEMPLATE_MIDDLE) {
			p.advance()
			lit.Quasis = append(lit.Quasis, p.curToken.Literal)
			continue
		}
		if p.peekTokenIs(lexer.TEMPLATE_TAIL) {
			p.advance()
			lit.Quasis = append(lit.Quasis, p.curToken.Literal)
			return lit
		}
		p.errorf("expected template continuation, got %s", p.peekToken.Type)
		return lit
	}
}

func (p *Parser) parseTaggedTemplate(tag ast.Expression) ast.Expression {
	tok := p.curToken
	quasi := p.parseTemplateLiteral().(*ast.TemplateLiteral)
	return &ast.TaggedTemplateExpression{Token: tok, Tag: tag, Quasi: quasi}
}

// parseGroupedOrArrow disambiguates `(expr)` grouping from `(params) =>`
// by speculatively parsing as a parenthesized expression first, then
// re-checking for a following `=>`.
func (p *Parser) parseGroupedOrArrow() ast.Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.RPAREN) {
		p.advance() // consume )
		if !p.expectPeek(lexer.ARROW) {
			return nil
		}
		return p.finishArrowFunction(tok, nil, false)
	}

	p.advance()
	var exprs []ast.Expression
	exprs = append(exprs, p.parseParamOrExpr())
	for p.peekTokenIs(lexer.COMMA) {
		p.advance()
		p.advance()
		exprs = append(exprs, p.parseParamOrExpr())
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	if p.peekTokenIs(lexer.ARROW) {
		return p.continueAsArrow(tok, exprs, false)
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &ast.SequenceExpression{Token: tok, Expressions: exprs}
}

// parseParamOrExpr parses one comma-separated slot inside `( ... )`, which
// may turn out to be either an arrow parameter (plain, defaulted, rest, or
// a destructuring pattern) or an ordinary expression; exprsToParams
// reinterprets the result if `=>` follows.
func (p *Parser) parseParamOrExpr() ast.Expression {
	if p.curTokenIs(lexer.SPREAD) {
		return p.parseSpreadElement()
	}
	return p.parseAssignExpr()
}

func (p *Parser) continueAsArrow(tok lexer.Token, exprs []ast.Expression, isAsync bool) ast.Expression {
	p.advance() // consume =>
	params := exprsToParams(exprs)
	return p.finishArrowFunction(tok, params, isAsync)
}

func (p *Parser) parseArrowFunction(isAsync bool) ast.Expression {
	tok := p.curToken
	params := p.parseParamList()
	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	return p.finishArrowFunction(tok, params, isAsync)
}

func (p *Parser) finishArrowFunction(tok lexer.Token, params []*ast.Param, isAsync bool) ast.Expression {
	arrow := &ast.ArrowFunctionLiteral{Token: tok, Params: params, IsAsync: isAsync}
	p.advance()
	if p.curTokenIs(lexer.LBRACE) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseAssignExpr()
	}
	return arrow
}

func (p *Parser) parseAsyncPrefix() ast.Expression {
	if p.peekTokenIs(lexer.FUNCTION) {
		p.advance()
		return p.parseFunctionExpression()
	}
	if p.peekTokenIs(lexer.LPAREN) {
		p.advance()
		return p.parseArrowFunction(true)
	}
	if p.peekTokenIs(lexer.IDENT) && !p.peekToken.NewlineBefore {
		tok := p.curToken
		p.advance()
		ident := p.parseIdentifier()
		if p.peekTokenIs(lexer.ARROW) {
			p.advance()
			return p.finishArrowFunction(tok, exprsToParams([]ast.Expression{ident}), true)
		}
		return ident
	}
	return p.parseIdentifier()
}

func exprsToParams(exprs []ast.Expression) []*ast.Param {
	params := make([]*ast.Param, len(exprs))
	for i, e := range exprs {
		if spread, ok := e.(*ast.SpreadElement); ok {
			params[i] = &ast.Param{Pattern: spread.Argument, Rest: true}
			continue
		}
		if assign, ok := e.(*ast.AssignmentExpression); ok && assign.Operator == "=" {
			params[i] = &ast.Param{Pattern: assign.Target, Default: assign.Value}
			continue
		}
		params[i] = &ast.Param{Pattern: e}
	}
	return params
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.ArrayLiteral{Token: tok}
	for !p.peekTokenIs(lexer.RBRACKET) {
		p.advance()
		if p.curTokenIs(lexer.COMMA) {
			lit.Elements = append(lit.Elements, nil)
			continue
		}
		if p.curTokenIs(lexer.SPREAD) {
			lit.Elements = append(lit.Elements, p.parseSpreadElement())
		} else {
			lit.Elements = append(lit.Elements, p.parseAssignExpr())
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return lit
}

func (p *Parser) parseSpreadElement() ast.Expression {
	tok := p.curToken
	p.advance()
	return &ast.SpreadElement{Token: tok, Argument: p.parseAssignExpr()}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	tok := p.curToken
	lit := &ast.ObjectLiteral{Token: tok}
	for !p.peekTokenIs(lexer.RBRACE) {
		p.advance()
		prop := p.parseObjectProperty()
		if prop != nil {
			lit.Properties = append(lit.Properties, prop)
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return lit
}

func (p *Parser) parseObjectProperty() *ast.ObjectProperty {
	if p.curTokenIs(lexer.SPREAD) {
		p.advance()
		return &ast.ObjectProperty{IsSpread: true, Value: p.parseAssignExpr()}
	}

	isAsync := false
	isGenerator := false
	kind := "init"

	if p.curTokenIs(lexer.ASYNC) && !p.peekTokenIs(lexer.COLON) && !p.peekTokenIs(lexer.LPAREN) && !p.peekTokenIs(lexer.COMMA) && !p.peekTokenIs(lexer.RBRACE) {
		isAsync = true
		p.advance()
	}
	if p.curTokenIs(lexer.STAR) {
		isGenerator = true
		p.advance()
	}
	if (p.curTokenIs(lexer.GET) || p.curTokenIs(lexer.SET)) &&
		!p.peekTokenIs(lexer.COLON) && !p.peekTokenIs(lexer.LPAREN) && !p.peekTokenIs(lexer.COMMA) && !p.peekTokenIs(lexer.RBRACE) {
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
			return nil
		}
	} else if p.curTokenIs(lexer.STRING) {
		key = &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	} else if p.curTokenIs(lexer.NUMBER) {
		key = p.parseNumberLiteral()
	} else {
		key = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}

	prop := &ast.ObjectProperty{Key: key, Computed: computed, Kind: kind}

	switch {
	case kind == "get" || kind == "set":
		fn := p.parseMethodTail(isGenerator, isAsync)
		prop.Value = fn
		prop.IsMethod = true
		prop.IsGenerator = isGenerator
		prop.IsAsync = isAsync
	case p.peekTokenIs(lexer.LPAREN):
		fn := p.parseMethodTail(isGenerator, isAsync)
		prop.Value = fn
		prop.Kind = "method"
		prop.IsMethod = true
		prop.IsGenerator = isGenerator
		prop.IsAsync = isAsync
	case p.peekTokenIs(lexer.COLON):
		p.advance()
		p.advance()
		prop.Value = p.parseAssignExpr()
	default:
		prop.Shorthand = true
		prop.Value = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}
	return prop
}

// parseMethodTail parses `(params) { body }` with curToken on the method
// name and returns a FunctionLiteral covering the parameter list and body.
func (p *Parser) parseMethodTail(isGenerator, isAsync bool) *ast.FunctionLiteral {
	tok := p.curToken
	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params := p.parseParamList()
	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body := p.parseBlockStatement()
	return &ast.FunctionLiteral{Token: tok, Params: params, Body: body, IsGenerator: isGenerator, IsAsync: isAsync}
}

func (p *Parser) parseFunctionExpression() ast.Expression {
	tok := p.curToken
	fn := &ast.FunctionLiteral{Token: tok}
	if p.peekTokenIs(lexer.STAR) {
		fn.IsGenerator = true
		p.advance()
	}
	if p.peekTokenIs(lexer.IDENT) {
		p.advance()
		fn.Name = &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}
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

// parseParamList parses `(p1, p2 = default, ...rest)` with curToken on `(`
// and leaves curToken on the matching `)`.
func (p *Parser) parseParamList() []*ast.Param {
	var params []*ast.Param
	for !p.peekTokenIs(lexer.RPAREN) {
		p.advance()
		param := &ast.Param{}
		if p.curTokenIs(lexer.SPREAD) {
			param.Rest = true
			p.advance()
		}
		param.Pattern = p.parseBindingTarget()
		if p.peekTokenIs(lexer.ASSIGN) {
			p.advance()
			p.advance()
			param.Default = p.parseAssignExpr()
		}
		params = append(params, param)
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return params
	}
	return params
}

// parseBindingTarget parses an identifier or an array/object destructuring
// pattern with curToken on the pattern's first token.
func (p *Parser) parseBindingTarget() ast.Expression {
	switch p.curToken.Type {
	case lexer.LBRACKET:
		return p.parseArrayLiteral()
	case lexer.LBRACE:
		return p.parseObjectLiteral()
	default:
		return &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	p.advance()
	operand := p.parseExpression(UNARY)
	return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Operand: operand}
}

func (p *Parser) parsePrefixUpdate() ast.Expression {
	tok := p.curToken
	p.advance()
	operand := p.parseExpression(UNARY)
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: operand, Prefix: true}
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	tok := p.curToken
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: left, Prefix: false}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := p.curPrecedence()
	if tok.Type == lexer.POW {
		prec-- // right-associative: a ** b ** c groups as a ** (b ** c)
	}
	p.advance()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := p.curPrecedence()
	p.advance()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Token: tok, Left: left, Operator: tok.Literal, Right: right}
}

func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.advance()
	right := p.parseExpression(ASSIGN - 1)
	return &ast.AssignmentExpression{Token: tok, Target: left, Operator: tok.Literal, Value: right}
}

func (p *Parser) parseConditionalExpression(test ast.Expression) ast.Expression {
	tok := p.curToken
	p.advance()
	consequent := p.parseAssignExpr()
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.advance()
	alternate := p.parseExpression(ASSIGN - 1)
	return &ast.ConditionalExpression{Token: tok, Test: test, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseArgList()
	return &ast.CallExpression{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) parseArgList() []ast.Expression {
	var args []ast.Expression
	for !p.peekTokenIs(lexer.RPAREN) {
		p.advance()
		if p.curTokenIs(lexer.SPREAD) {
			args = append(args, p.parseSpreadElement())
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if p.peekTokenIs(lexer.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expectPeek(lexer.RPAREN)
	return args
}

func (p *Parser) parseMemberExpression(object ast.Expression) ast.Expression {
	tok := p.curToken
	optional := tok.Type == lexer.OPTIONAL_CHAIN

	if optional && p.peekTokenIs(lexer.LPAREN) {
		p.advance()
		args := p.parseArgList()
		return &ast.CallExpression{Token: tok, Callee: object, Args: args, Optional: true}
	}

	if tok.Type == lexer.LBRACKET {
		p.advance()
		prop := p.parseExpr()
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Computed: true}
	}

	// `.` or `?.` followed by an identifier (or `[` handled above).
	if optional && p.peekTokenIs(lexer.LBRACKET) {
		p.advance()
		p.advance()
		prop := p.parseExpr()
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Computed: true, Optional: true}
	}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	prop := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
	return &ast.MemberExpression{Token: tok, Object: object, Property: prop, Optional: optional}
}

// parseNewExpressionOrTarget handles both `new Target(args)` and the
// `new.target` meta-property. The constructor callee is parsed as a member
// chain with no call attached, so that the argument list immediately after
// it (if any) is bound to the `new`, not to a trailing call expression.
func (p *Parser) parseNewExpressionOrTarget() ast.Expression {
	tok := p.curToken
	if p.peekTokenIs(lexer.DOT) {
		p.advance()
		if !p.expectPeek(lexer.IDENT) || p.curToken.Literal != "target" {
			p.errorf("expected 'target' after 'new.'")
		}
		return &ast.NewTargetExpression{Token: tok}
	}
	p.advance()

	var callee ast.Expression
	if p.curTokenIs(lexer.NEW) {
		callee = p.parseNewExpressionOrTarget()
	} else {
		prefix := p.prefixParseFns[p.curToken.Type]
		if prefix == nil {
			p.errorf("unexpected token %s (%q) after 'new'", p.curToken.Type, p.curToken.Literal)
			return nil
		}
		callee = prefix()
	}

	for p.peekTokenIs(lexer.DOT) || p.peekTokenIs(lexer.LBRACKET) {
		p.advance()
		callee = p.parseMemberExpression(callee)
	}

	var args []ast.Expression
	if p.peekTokenIs(lexer.LPAREN) {
		p.advance()
		args = p.parseArgList()
	}
	return &ast.NewExpression{Token: tok, Callee: callee, Args: args}
}

func (p *Parser) parseYieldExpression() ast.Expression {
	tok := p.curToken
	delegate := false
	if p.peekTokenIs(lexer.STAR) {
		delegate = true
		p.advance()
	}
	expr := &ast.YieldExpression{Token: tok, Delegate: delegate}
	if p.peekToken.NewlineBefore || p.peekTokenIs(lexer.SEMICOLON) || p.peekTokenIs(lexer.RPAREN) ||
		p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.RBRACKET) || p.peekTokenIs(lexer.COMMA) || p.peekTokenIs(lexer.EOF) {
		return expr
	}
	p.advance()
	expr.Argument = p.parseAssignExpr()
	return expr
}

func parseNumberText(text string) float64 {
	var v float64
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		v = float64(parseRadix(text[2:], 16))
	case strings.HasPrefix(text, "0o") || strings.HasPrefix(text, "0O"):
		v = float64(parseRadix(text[2:], 8))
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		v = float64(parseRadix(text[2:], 2))
	default:
		v = parseDecimal(text)
	}
	return v
}

func parseRadix(digits string, radix int64) int64 {
	var n int64
	for _, r := range digits {
		var d int64
		switch {
		case r >= '0' && r <= '9':
			d = int64(r - '0')
		case r >= 'a' && r <= 'f':
			d = int64(r-'a') + 10
		case r >= 'A' && r <= 'F':
			d = int64(r-'A') + 10
		default:
			continue
		}
		n = n*radix + d
	}
	return n
}

func parseDecimal(text string) float64 {
	var intPart, fracPart string
	mantissa := text
	exponent := 0
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		mantissa = text[:i]
		expText := text[i+1:]
		sign := 1
		if strings.HasPrefix(expText, "+") {
			expText = expText[1:]
		} else if strings.HasPrefix(expText, "-") {
			sign = -1
			expText = expText[1:]
		}
		for _, r := range expText {
			exponent = exponent*10 + int(r-'0')
		}
		exponent *= sign
	}
	if i := strings.IndexByte(mantissa, '.'); i >= 0 {
		intPart, fracPart = mantissa[:i], mantissa[i+1:]
	} else {
		intPart = mantissa
	}
	var v float64
	for _, r := range intPart {
		v = v*10 + float64(r-'0')
	}
	frac := 0.0
	scale := 1.0
	for _, r := range fracPart {
		scale *= 10
		frac += float64(r-'0') / scale
	}
	v += frac
	for exponent > 0 {
		v *= 10
		exponent--
	}
	for exponent < 0 {
		v /= 10
		exponent++
	}
	return v
}
