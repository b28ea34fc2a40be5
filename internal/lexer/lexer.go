// Package lexer tokenizes JavaScript source text.
//
// # Unicode
//
// Source text is decoded as UTF-8 into a logical sequence of Unicode scalar
// values. Identifiers are normalized to NFC (golang.org/x/text/unicode/norm)
// before interning, so visually identical identifiers spelled with combining
// marks compare equal — matching how production engines treat Unicode
// identifiers. Column positions count runes, not bytes or display width,
// following the teacher repo's convention.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/juju/loggo"
	"golang.org/x/text/unicode/norm"
)

var logger = loggo.GetLogger("jsvm.lexer")

// LexError is a fatal lexical error: an unterminated string/regex/comment or
// an invalid escape sequence (spec §4.1).
type LexError struct {
	Message string
	Pos     Position
}

func (e *LexError) Error() string { return e.Message }

// Lexer is a hand-written scanner for JavaScript source text. It resolves
// the regex-vs-division ambiguity via a feedback bit the caller (normally
// the parser) passes into NextToken, and re-enters itself mid-token to
// produce the interleaved string/substitution stream template literals
// require.
type Lexer struct {
	input        string
	position     int
	readPosition int
	line         int
	column       int
	ch           rune

	// templateStack holds the brace depth at which each currently-open
	// `${ ... }` substitution began, so a matching `}` resumes template
	// scanning instead of emitting RBRACE.
	templateStack []int
	braceDepth    int

	tracing bool
}

// Option configures a Lexer, following the teacher's functional-options
// convention.
type Option func(*Lexer)

// WithTracing enables loggo debug tracing of token production.
func WithTracing(trace bool) Option {
	return func(l *Lexer) { l.tracing = trace }
}

// New creates a Lexer over input, stripping a UTF-8 BOM if present.
func New(input string, opts ...Option) *Lexer {
	if len(input) >= 3 && input[0] == 0xEF && input[1] == 0xBB && input[2] == 0xBF {
		input = input[3:]
	}

	l := &Lexer{input: input, line: 1, column: 0}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.column++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
	l.column++
	if r == '\n' {
		l.line++
		l.column = 0
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) peekCharAt(byteOffset int) rune {
	pos := l.readPosition + byteOffset
	if pos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[pos:])
	return r
}

func (l *Lexer) currentPos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) skipWhitespaceAndComments() bool {
	sawNewline := false
	for {
		switch {
		case l.ch == '\n':
			sawNewline = true
			l.readChar()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') && l.ch != 0 {
				if l.ch == '\n' {
					sawNewline = true
				}
				l.readChar()
			}
			if l.ch == 0 {
				return sawNewline
			}
			l.readChar()
			l.readChar()
		default:
			return sawNewline
		}
	}
}

// NextToken scans and returns the next token. regexAllowed is the
// lexer-parser feedback bit: true when the previous significant token
// cannot terminate an expression, so a leading `/` begins a regex literal
// rather than division (spec §4.1).
func (l *Lexer) NextToken(regexAllowed bool) Token {
	newline := l.skipWhitespaceAndComments()
	pos := l.currentPos()

	var tok Token
	switch {
	case l.ch == 0:
		tok = Token{Type: EOF, Literal: ""}
	case l.ch == '"' || l.ch == '\'':
		tok = l.readString(l.ch)
	case l.ch == '`':
		tok = l.readTemplateChunk(true)
	case isDigit(l.ch) || (l.ch == '.' && isDigit(l.peekChar())):
		tok = l.readNumber()
	case isIdentStart(l.ch):
		tok = l.readIdentifier()
	case l.ch == '/' && regexAllowed:
		tok = l.readRegex()
	case l.ch == '}' && len(l.templateStack) > 0 && l.templateStack[len(l.templateStack)-1] == l.braceDepth:
		l.templateStack = l.templateStack[:len(l.templateStack)-1]
		l.readChar() // consume the substitution's closing }
		tok = l.readTemplateChunk(false)
	default:
		tok = l.readPunctuator()
	}

	tok.Pos = pos
	tok.NewlineBefore = newline
	if l.tracing {
		logger.Debugf("token %s %q at %d:%d", tok.Type, tok.Literal, pos.Line, pos.Column)
	}
	return tok
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}

func (l *Lexer) readIdentifier() Token {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	text := norm.NFC.String(l.input[start:l.position])
	return Token{Type: LookupIdent(text), Literal: text}
}

// readNumber scans decimal, hex (0x), octal (0o), binary (0b) and
// floating-point literals, plus a trailing BigInt `n` suffix (spec §4.1).
func (l *Lexer) readNumber() Token {
	start := l.position
	isFloat := false
	isBigInt := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	} else if l.ch == '0' && (l.peekChar() == 'o' || l.peekChar() == 'O') {
		l.readChar()
		l.readChar()
		for (l.ch >= '0' && l.ch <= '7') || l.ch == '_' {
			l.readChar()
		}
	} else if l.ch == '0' && (l.peekChar() == 'b' || l.peekChar() == 'B') {
		l.readChar()
		l.readChar()
		for l.ch == '0' || l.ch == '1' || l.ch == '_' {
			l.readChar()
		}
	} else {
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
		if l.ch == '.' && isDigit(l.peekChar()) {
			isFloat = true
			l.readChar()
			for isDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
		}
		if l.ch == 'e' || l.ch == 'E' {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	if l.ch == 'n' && !isFloat {
		isBigInt = true
		l.readChar()
	}

	text := strings.ReplaceAll(l.input[start:l.position], "_", "")
	if isBigInt {
		return Token{Type: BIGINT, Literal: strings.TrimSuffix(text, "n")}
	}
	return Token{Type: NUMBER, Literal: text}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// readString scans a single- or double-quoted string literal, resolving
// escape sequences eagerly into the token's Literal.
func (l *Lexer) readString(quote rune) Token {
	var sb strings.Builder
	l.readChar() // consume opening quote
	for l.ch != quote {
		if l.ch == 0 {
			return Token{Type: ILLEGAL, Literal: "unterminated string literal"}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(l.readEscape())
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // consume closing quote
	return Token{Type: STRING, Literal: sb.String()}
}

func (l *Lexer) readEscape() rune {
	r := l.ch
	l.readChar()
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	default:
		return r
	}
}

// readTemplateChunk scans template-literal text up to the next `${` or the
// closing backtick. start indicates whether the opening backtick still
// needs to be consumed (true at the start of a template, false when resuming
// after a substitution's `}`).
func (l *Lexer) readTemplateChunk(start bool) Token {
	if start {
		l.readChar() // consume opening `
	}
	var sb strings.Builder
	for {
		if l.ch == 0 {
			return Token{Type: ILLEGAL, Literal: "unterminated template literal"}
		}
		if l.ch == '`' {
			l.readChar()
			if start {
				return Token{Type: TEMPLATE_STRING, Literal: sb.String()}
			}
			return Token{Type: TEMPLATE_TAIL, Literal: sb.String()}
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar()
			l.readChar()
			l.templateStack = append(l.templateStack, l.braceDepth)
			if start {
				return Token{Type: TEMPLATE_HEAD, Literal: sb.String()}
			}
			return Token{Type: TEMPLATE_MIDDLE, Literal: sb.String()}
		}
		if l.ch == '\\' {
			l.readChar()
			sb.WriteRune(l.readEscape())
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}
}

// readRegex scans a regex literal body and trailing flags, called only when
// the lexer-parser feedback bit says a `/` cannot be division here.
func (l *Lexer) readRegex() Token {
	start := l.position
	l.readChar() // consume opening /
	inClass := false
	for {
		if l.ch == 0 || l.ch == '\n' {
			return Token{Type: ILLEGAL, Literal: "unterminated regex literal"}
		}
		if l.ch == '\\' {
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '[' {
			inClass = true
		} else if l.ch == ']' {
			inClass = false
		} else if l.ch == '/' && !inClass {
			l.readChar()
			break
		}
		l.readChar()
	}
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return Token{Type: REGEX, Literal: l.input[start:l.position]}
}

func (l *Lexer) readPunctuator() Token {
	ch := l.ch
	two := string(ch) + string(l.peekChar())
	three := two + string(l.peekCharAt(utf8.RuneLen(l.peekChar())))

	switch three {
	case "===", "!==", "**=", "<<=", ">>=", "...", "&&=", "||=", "??=":
		l.readChar()
		l.readChar()
		l.readChar()
		return Token{Type: threeCharOp[three], Literal: three}
	}
	if three == ">>>" {
		if l.peekCharAt(2) == '=' {
			l.readChar()
			l.readChar()
			l.readChar()
			l.readChar()
			return Token{Type: USHR_ASSIGN, Literal: ">>>="}
		}
		l.readChar()
		l.readChar()
		l.readChar()
		return Token{Type: USHR, Literal: ">>>"}
	}

	switch two {
	case "==", "!=", "<=", ">=", "&&", "||", "??", "++", "--", "**",
		"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<", ">>", "=>", "?.":
		l.readChar()
		l.readChar()
		return Token{Type: twoCharOp[two], Literal: two}
	}

	l.readChar()
	if t, ok := oneCharOp[ch]; ok {
		return Token{Type: t, Literal: string(ch)}
	}
	return Token{Type: ILLEGAL, Literal: string(ch)}
}

var threeCharOp = map[string]TokenType{
	"===": STRICT_EQ, "!==": STRICT_NOT_EQ, "**=": POW_ASSIGN,
	"<<=": SHL_ASSIGN, ">>=": SHR_ASSIGN, "...": SPREAD,
	"&&=": LAND_ASSIGN, "||=": LOR_ASSIGN, "??=": NULLISH_ASSIGN,
}

var twoCharOp = map[string]TokenType{
	"==": EQ, "!=": NOT_EQ, "<=": LT_EQ, ">=": GT_EQ,
	"&&": AND_AND, "||": OR_OR, "??": NULLISH, "++": INC, "--": DEC, "**": POW,
	"+=": PLUS_ASSIGN, "-=": MINUS_ASSIGN, "*=": STAR_ASSIGN, "/=": SLASH_ASSIGN,
	"%=": PERCENT_ASSIGN, "&=": AND_ASSIGN, "|=": OR_ASSIGN, "^=": XOR_ASSIGN,
	"<<": SHL, ">>": SHR, "=>": ARROW, "?.": OPTIONAL_CHAIN,
}

var oneCharOp = map[rune]TokenType{
	'=': ASSIGN, '+': PLUS, '-': MINUS, '*': STAR, '/': SLASH, '%': PERCENT,
	'<': LT, '>': GT, '!': NOT, '&': BIT_AND, '|': BIT_OR, '^': BIT_XOR, '~': BIT_NOT,
	',': COMMA, ';': SEMICOLON, ':': COLON, '?': QUESTION, '.': DOT,
	'(': LPAREN, ')': RPAREN, '[': LBRACKET, ']': RBRACKET, '@': AT,
	'{': LBRACE, '}': RBRACE,
}

// TrackBrace must be called for every `{` or `}` token the lexer returns,
// before the next token is scanned, so the lexer's template-literal
// resumption logic stays in sync.
func (l *Lexer) TrackBrace(tok TokenType) {
	switch tok {
	case LBRACE:
		l.braceDepth++
	case RBRACE:
		l.braceDepth--
	}
}
