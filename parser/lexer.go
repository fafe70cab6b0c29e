package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/panyam/coredsl/decl"
)

// Lexer structure
type Lexer struct {
	lookaheadRunes  []rune
	lookaheadWidths []int
	reader          *bufio.Reader
	buf             bytes.Buffer // Temporary buffer for scanned text
	lastError       error

	// Name of the document being lexed, used in error messages
	SourceName string

	// Position tracking for the current token
	tokenStart decl.Location
	tokenText  string // Raw text of the current token

	// Current position in the input
	pos  int
	line int
	col  int
}

// NewLexer creates a new lexer instance
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{
		reader: bufio.NewReader(r),
		pos:    0,
		line:   1,
		col:    1,
	}
}

// Error records a lexing or parsing error at the current token.
func (l *Lexer) Error(s string) {
	l.lastError = &ParseError{
		Source: l.SourceName,
		Start:  l.tokenStart,
		End:    l.Location(),
		Near:   l.tokenText,
		Msg:    s,
	}
}

// LastError returns the most recent error recorded by Error.
func (l *Lexer) LastError() error {
	return l.lastError
}

// Location returns the current position in the input.
func (l *Lexer) Location() decl.Location {
	return decl.Location{Pos: l.pos, Line: l.line, Col: l.col}
}

// Text returns the raw text of the most recently lexed token.
func (l *Lexer) Text() string {
	return l.tokenText
}

// --- Rune Reading Helpers (with line/col tracking) ---
func (l *Lexer) read() (r rune, width int) {
	if l.peek() == eof {
		return eof, 0
	}
	r, width = l.lookaheadRunes[0], l.lookaheadWidths[0]
	l.lookaheadRunes, l.lookaheadWidths = l.lookaheadRunes[1:], l.lookaheadWidths[1:]
	l.updatePosition(r, width)
	return r, width
}

func (l *Lexer) updatePosition(r rune, width int) {
	l.pos += width
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *Lexer) peekN(nthchar int) rune {
	l.ensureLookAhead(nthchar + 1)
	if nthchar >= len(l.lookaheadRunes) {
		return eof
	}
	return l.lookaheadRunes[nthchar]
}

func (l *Lexer) peek() rune {
	return l.peekN(0)
}

func (l *Lexer) ensureLookAhead(numchars int) int {
	for len(l.lookaheadRunes) < numchars {
		r, width, err := l.reader.ReadRune()
		if err != nil {
			break
		}
		l.lookaheadRunes = append(l.lookaheadRunes, r)
		l.lookaheadWidths = append(l.lookaheadWidths, width)
	}
	return len(l.lookaheadRunes)
}

// hasPrefix checks whether the upcoming input starts with prefix and
// optionally consumes it.
func (l *Lexer) hasPrefix(prefix string, consume bool) bool {
	runes := []rune(prefix)
	if l.ensureLookAhead(len(runes)) < len(runes) {
		return false
	}
	for i, r := range runes {
		if l.lookaheadRunes[i] != r {
			return false
		}
	}
	if consume {
		for range runes {
			l.read()
		}
	}
	return true
}

func (l *Lexer) readTill(stop rune, skip bool) (foundeof bool) {
	for {
		r := l.peek()
		if r == eof {
			return true
		}
		if r == stop {
			if skip {
				l.read()
			}
			return false
		}
		l.read()
	}
}

// --- Scanning Functions ---

// skipWhitespace skips spaces and comments.  Returns true on eof.
func (l *Lexer) skipWhitespace() bool {
	for {
		firstChar := l.peek()
		if firstChar == eof {
			return true
		}
		if unicode.IsSpace(firstChar) {
			l.read()
		} else if l.hasPrefix("//", true) {
			l.readTill('\n', true)
		} else if l.hasPrefix("/*", true) {
			for {
				if l.hasPrefix("*/", true) {
					break
				}
				if r, _ := l.read(); r == eof {
					l.Error("unterminated block comment")
					return true
				}
			}
		} else {
			return false
		}
	}
}

func isIdentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func (l *Lexer) scanIdentifierOrKeyword() (tok int, text string) {
	l.buf.Reset()
	for r := l.peek(); r != eof && isIdentRune(r); r = l.peek() {
		l.read()
		l.buf.WriteRune(r)
	}
	text = l.buf.String()
	if kw, ok := keywords[text]; ok {
		return kw, text
	}
	return IDENTIFIER, text
}

// scanNumber scans C style integers (with radix prefixes and u/l suffixes),
// sized Verilog literals (8'hFF) and floats.  Validation of the digits is
// left to decl.ParseInteger and decl.ParseDecimal.
func (l *Lexer) scanNumber() (tok int, text string) {
	l.buf.Reset()
	consumeWhile := func(pred func(r rune) bool) {
		for r := l.peek(); r != eof && pred(r); r = l.peek() {
			l.read()
			l.buf.WriteRune(r)
		}
	}
	isDigit := func(r rune) bool { return unicode.IsDigit(r) || r == '_' }

	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X' || l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		consumeWhile(isIdentRune)
		return INT_LITERAL, l.buf.String()
	}

	isFloat := false
	consumeWhile(unicode.IsDigit)
	if l.peek() == '\'' && (isIdentRune(l.peekN(1))) {
		// Verilog style sized literal
		l.read()
		l.buf.WriteRune('\'')
		consumeWhile(isIdentRune)
		return INT_LITERAL, l.buf.String()
	}
	if l.peek() == '.' && unicode.IsDigit(l.peekN(1)) {
		isFloat = true
		l.read()
		l.buf.WriteRune('.')
		consumeWhile(isDigit)
	}
	if e := l.peek(); e == 'e' || e == 'E' {
		next := l.peekN(1)
		if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peekN(2))) {
			isFloat = true
			l.read()
			l.buf.WriteRune(e)
			if next == '+' || next == '-' {
				l.read()
				l.buf.WriteRune(next)
			}
			consumeWhile(unicode.IsDigit)
		}
	}
	// Suffixes (u, l, f) and anything else glued to the number
	consumeWhile(isIdentRune)
	if isFloat {
		return FLOAT_LITERAL, l.buf.String()
	}
	return INT_LITERAL, l.buf.String()
}

func (l *Lexer) readEscape() (rune, bool) {
	esc, _ := l.read()
	switch esc {
	case 'n':
		return '\n', true
	case 't':
		return '\t', true
	case 'r':
		return '\r', true
	case '0':
		return 0, true
	case '\\', '\'', '"', '?':
		return esc, true
	case 'x':
		var hex []rune
		for len(hex) < 2 && unicode.Is(unicode.ASCII_Hex_Digit, l.peek()) {
			r, _ := l.read()
			hex = append(hex, r)
		}
		v, err := strconv.ParseUint(string(hex), 16, 8)
		if err != nil {
			l.Error("invalid hex escape sequence")
			return 0, false
		}
		return rune(v), true
	case eof:
		l.Error("unterminated escape sequence")
		return 0, false
	}
	l.Error(fmt.Sprintf("invalid escape sequence \\%c", esc))
	return esc, false
}

func (l *Lexer) scanQuoted(quote rune) (content string, ok bool) {
	l.buf.Reset()
	l.read() // Consume opening quote
	for {
		r, _ := l.read()
		if r == eof || r == '\n' {
			l.Error("unterminated literal")
			return "", false
		}
		if r == quote {
			break
		}
		if r == '\\' {
			esc, valid := l.readEscape()
			if !valid {
				return "", false
			}
			l.buf.WriteRune(esc)
		} else {
			l.buf.WriteRune(r)
		}
	}
	return l.buf.String(), true
}

// Lex is the main lexing function called by the parser.
func (l *Lexer) Lex(lval *TokenValue) int {
	tok := l.lex(lval)
	lval.Kind = tok
	lval.NodeInfo = decl.NodeInfo{StartPos: l.tokenStart, StopPos: l.Location()}
	return tok
}

func (l *Lexer) lex(lval *TokenValue) int {
	l.tokenText = ""
	lval.Text = ""
	if l.skipWhitespace() {
		l.tokenStart = l.Location()
		return eof
	}
	l.tokenStart = l.Location()

	r := l.peek()
	if unicode.IsLetter(r) || r == '_' {
		tok, text := l.scanIdentifierOrKeyword()
		l.tokenText, lval.Text = text, text
		return tok
	}

	if unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peekN(1))) {
		if r == '.' {
			// ".5" style float
			l.read()
			tok, text := l.scanNumber()
			text = "." + text
			l.tokenText, lval.Text = text, text
			if tok == INT_LITERAL {
				tok = FLOAT_LITERAL
			}
			return tok
		}
		tok, text := l.scanNumber()
		l.tokenText, lval.Text = text, text
		return tok
	}

	if r == '"' || r == '\'' {
		content, ok := l.scanQuoted(r)
		if !ok {
			return eof
		}
		l.tokenText = string(r) + content + string(r)
		lval.Text = content
		if r == '"' {
			return STRING_LITERAL
		}
		if len([]rune(content)) != 1 {
			l.Error("character literal must contain exactly one character")
			return eof
		}
		return CHAR_LITERAL
	}

	for _, sym := range symbols {
		if l.hasPrefix(sym, true) {
			l.tokenText, lval.Text = sym, sym
			if tok, ok := punctuation[sym]; ok {
				return tok
			}
			return OPERATOR
		}
	}

	l.read()
	l.tokenText = string(r)
	l.Error(fmt.Sprintf("unexpected character '%c'", r))
	return eof
}
