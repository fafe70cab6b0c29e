package parser

import (
	"fmt"

	"github.com/panyam/coredsl/decl"
)

// ParseError is a syntax error at a location in a document.
type ParseError struct {
	Source string
	Start  decl.Location
	End    decl.Location
	Near   string
	Msg    string
}

func (e *ParseError) Error() string {
	prefix := ""
	if e.Source != "" {
		prefix = e.Source + ": "
	}
	if e.Near != "" {
		return fmt.Sprintf("%sError at Line %d, Col %d near '%s': %s", prefix, e.Start.Line, e.Start.Col, e.Near, e.Msg)
	}
	return fmt.Sprintf("%sError at Line %d, Col %d: %s", prefix, e.Start.Line, e.Start.Col, e.Msg)
}
