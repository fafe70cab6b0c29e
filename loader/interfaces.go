package loader

import (
	"io"

	"github.com/panyam/coredsl/decl"
	"github.com/panyam/coredsl/parser"
)

// Parser turns document text into a syntax tree.
type Parser interface {
	// Parse reads from the input reader and returns the root AST node.
	// sourceName is used for context in error messages (e.g., file path).
	Parse(input io.Reader, sourceName string) (*decl.DescriptionContent, error)
}

// FileResolver resolves import paths and opens the documents they name.
type FileResolver interface {
	// Resolve takes the path of the importing document ("" for a root
	// document) and the path from the import statement.  It returns the
	// content and the canonical path used to identify the document.
	Resolve(importerPath, importPath string) (content io.ReadCloser, canonicalPath string, err error)
}

type coreDSLParser struct{}

// NewParser returns the CoreDSL parser as a loader Parser.
func NewParser() Parser { return coreDSLParser{} }

func (coreDSLParser) Parse(input io.Reader, sourceName string) (*decl.DescriptionContent, error) {
	return parser.Parse(input, sourceName)
}
