package parser

import (
	"io"
	"log/slog"
	"strings"

	"github.com/panyam/coredsl/decl"
)

// Parse reads a complete CoreDSL document.  sourceName is only used in
// error messages.
func Parse(input io.Reader, sourceName string) (*decl.DescriptionContent, error) {
	lexer := NewLexer(input)
	lexer.SourceName = sourceName
	p := NewLLParser(lexer)
	doc := &decl.DescriptionContent{}
	if err := p.Parse(doc); err != nil {
		slog.Debug("Parse failed", "source", sourceName, "error", err)
		return nil, err
	}
	return doc, nil
}

// ParseString is Parse over an in-memory document.
func ParseString(input, sourceName string) (*decl.DescriptionContent, error) {
	return Parse(strings.NewReader(input), sourceName)
}

// ParseExpression parses a single standalone expression.
func ParseExpression(input string) (decl.Expression, error) {
	p := NewLLParser(NewLexer(strings.NewReader(input)))
	expr, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.PeekToken(); tok != eof {
		return nil, p.Errorf("unexpected %s after expression", TokenString(tok))
	}
	if lexErr := p.lexer.LastError(); lexErr != nil {
		return nil, lexErr
	}
	return expr, nil
}
