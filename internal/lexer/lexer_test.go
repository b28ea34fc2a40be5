package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `let x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"let", LET},
		{"x", IDENT},
		{"=", ASSIGN},
		{"5", NUMBER},
		{";", SEMICOLON},
		{"x", IDENT},
		{"=", ASSIGN},
		{"x", IDENT},
		{"+", PLUS},
		{"10", NUMBER},
		{";", SEMICOLON},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken(false)
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%s, got=%s (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `var let const function return if else for while do
		break continue switch case default try catch finally throw
		new delete typeof void in of instanceof this super
		class extends static get set yield async await
		true false null undefined`

	tests := []TokenType{
		VAR, LET, CONST, FUNCTION, RETURN, IF, ELSE, FOR, WHILE, DO,
		BREAK, CONTINUE, SWITCH, CASE, DEFAULT, TRY, CATCH, FINALLY, THROW,
		NEW, DELETE, TYPEOF, VOID, IN, OF, INSTANCEOF, THIS, SUPER,
		CLASS, EXTENDS, STATIC, GET, SET, YIELD, ASYNC, AWAIT,
		TRUE, FALSE, NULL, UNDEFINED,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken(false)
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestPunctuatorsGreedyMatch(t *testing.T) {
	input := `=== !== **= <<= >>= ... &&= ||= ??= >>>= >>> == != <= >= && || ?? ++ -- ** += -= *= /= %= &= |= ^= << >> => ?. = + - * / % < > ! & | ^ ~ , ; : ? . ( ) { } [ ]`

	tests := []TokenType{
		STRICT_EQ, STRICT_NOT_EQ, POW_ASSIGN, SHL_ASSIGN, SHR_ASSIGN, SPREAD,
		LAND_ASSIGN, LOR_ASSIGN, NULLISH_ASSIGN, USHR_ASSIGN, USHR,
		EQ, NOT_EQ, LT_EQ, GT_EQ, AND_AND, OR_OR, NULLISH, INC, DEC, POW,
		PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
		AND_ASSIGN, OR_ASSIGN, XOR_ASSIGN, SHL, SHR, ARROW, OPTIONAL_CHAIN,
		ASSIGN, PLUS, MINUS, STAR, SLASH, PERCENT, LT, GT, NOT, BIT_AND, BIT_OR,
		BIT_XOR, BIT_NOT, COMMA, SEMICOLON, COLON, QUESTION, DOT,
		LPAREN, RPAREN, LBRACE, RBRACE, LBRACKET, RBRACKET,
	}

	l := New(input)
	for i, want := range tests {
		tok := l.NextToken(false)
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	input := `"a\nb\tc\\d" 'single \' quote'`
	l := New(input)

	tok := l.NextToken(false)
	if tok.Type != STRING || tok.Literal != "a\nb\tc\\d" {
		t.Fatalf("unexpected double-quoted token: %+v", tok)
	}
	tok = l.NextToken(false)
	if tok.Type != STRING || tok.Literal != "single ' quote" {
		t.Fatalf("unexpected single-quoted token: %+v", tok)
	}
}

func TestUnterminatedStringIsIllegal(t *testing.T) {
	l := New(`"no closing quote`)
	tok := l.NextToken(false)
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %s", tok.Type)
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		typ     TokenType
	}{
		{"0xFF", "0xFF", NUMBER},
		{"0o17", "0o17", NUMBER},
		{"0b101", "0b101", NUMBER},
		{"3.14", "3.14", NUMBER},
		{"1e10", "1e10", NUMBER},
		{"1_000_000", "1000000", NUMBER},
		{"42n", "42", BIGINT},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken(false)
		if tok.Type != tt.typ || tok.Literal != tt.literal {
			t.Fatalf("input %q: expected {%s %q}, got {%s %q}", tt.input, tt.typ, tt.literal, tok.Type, tok.Literal)
		}
	}
}

func TestRegexVsDivision(t *testing.T) {
	l := New(`/abc/g`)
	tok := l.NextToken(true)
	if tok.Type != REGEX || tok.Literal != "/abc/g" {
		t.Fatalf("expected regex literal, got %+v", tok)
	}

	l2 := New(`a / b`)
	tok = l2.NextToken(false) // IDENT "a"
	if tok.Type != IDENT {
		t.Fatalf("expected IDENT, got %s", tok.Type)
	}
	tok = l2.NextToken(false) // division, not regex: regexAllowed false after an operand
	if tok.Type != SLASH {
		t.Fatalf("expected SLASH (division), got %s", tok.Type)
	}
}

func TestTemplateLiteralSubstitution(t *testing.T) {
	l := New("`a${b}c`")

	tok := l.NextToken(false)
	if tok.Type != TEMPLATE_HEAD || tok.Literal != "a" {
		t.Fatalf("expected TEMPLATE_HEAD %q, got %+v", "a", tok)
	}
	tok = l.NextToken(false)
	if tok.Type != IDENT || tok.Literal != "b" {
		t.Fatalf("expected IDENT b, got %+v", tok)
	}
	// the substitution contains no braces, so braceDepth still equals the
	// depth recorded at `${` and this `}` resumes template scanning.
	tok = l.NextToken(false)
	if tok.Type != TEMPLATE_TAIL || tok.Literal != "c" {
		t.Fatalf("expected TEMPLATE_TAIL %q, got %+v", "c", tok)
	}
}

func TestTemplateLiteralNoSubstitution(t *testing.T) {
	l := New("`plain text`")
	tok := l.NextToken(false)
	if tok.Type != TEMPLATE_STRING || tok.Literal != "plain text" {
		t.Fatalf("expected TEMPLATE_STRING, got %+v", tok)
	}
}

func TestUnicodeIdentifierNormalization(t *testing.T) {
	// U+00E9 (precomposed) versus "e" + U+0301 combining acute accent (NFD)
	// must lex to the same interned identifier text.
	precomposed := "\u00e9"
	decomposed := "e\u0301"

	l1 := New(precomposed)
	t1 := l1.NextToken(false)
	l2 := New(decomposed)
	t2 := l2.NextToken(false)

	if t1.Type != IDENT || t2.Type != IDENT {
		t.Fatalf("expected both to lex as IDENT, got %s and %s", t1.Type, t2.Type)
	}
	if t1.Literal != t2.Literal {
		t.Fatalf("expected NFC-normalized identifiers to match: %q != %q", t1.Literal, t2.Literal)
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("a\nbb")
	tok := l.NextToken(false)
	if tok.Pos.Line != 1 {
		t.Fatalf("expected line 1, got %d", tok.Pos.Line)
	}
	tok = l.NextToken(false)
	if tok.Type != IDENT || tok.Literal != "bb" || tok.Pos.Line != 2 {
		t.Fatalf("expected IDENT bb on line 2, got %+v", tok)
	}
	if !tok.NewlineBefore {
		t.Fatalf("expected NewlineBefore to be set after the line break")
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	l := New("a // line comment\n/* block\ncomment */ b")
	tok := l.NextToken(false)
	if tok.Type != IDENT || tok.Literal != "a" {
		t.Fatalf("expected IDENT a, got %+v", tok)
	}
	tok = l.NextToken(false)
	if tok.Type != IDENT || tok.Literal != "b" {
		t.Fatalf("expected IDENT b after skipped comments, got %+v", tok)
	}
}
