package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/panyam/coredsl/decl"
)

// LoadResult holds the outcome of a loading operation.
type LoadResult struct {
	// The document for the first requested root.
	Root *Document

	// Every document loaded, linked and sharing one parent index.
	Workspace *Workspace

	// Problems with imports.  Failing to load a root is returned as an error
	// instead.
	Errors []error
}

// Loader parses root documents and everything they import into a Workspace
// and links the result.
type Loader struct {
	parser   Parser
	resolver FileResolver
	maxDepth int

	mutex   sync.Mutex
	ws      *Workspace
	pending map[string]bool // documents on the current import path
	errors  []error
}

// NewLoader creates a new loader.  maxDepth limits import nesting: 0 means
// no limit, 1 means roots only, 2 roots and their direct imports and so on.
func NewLoader(parser Parser, resolver FileResolver, maxDepth int) *Loader {
	return &Loader{
		parser:   parser,
		resolver: resolver,
		maxDepth: maxDepth,
	}
}

func (l *Loader) reset() {
	l.ws = NewWorkspace()
	l.pending = map[string]bool{}
	l.errors = nil
}

// LoadFile loads a single root document.
func (l *Loader) LoadFile(path string) (*LoadResult, error) {
	return l.LoadFiles(path)
}

// LoadFiles loads several root documents into one workspace.  Loading stops
// at the first root that cannot be read or parsed.
func (l *Loader) LoadFiles(paths ...string) (*LoadResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.reset()

	result := &LoadResult{Workspace: l.ws}
	for _, path := range paths {
		doc, err := l.loadRecursive("", path, 0)
		if err != nil {
			result.Errors = l.errors
			return result, fmt.Errorf("failed to load root file '%s': %w", path, err)
		}
		if result.Root == nil {
			result.Root = doc
		}
	}
	l.link()
	result.Errors = l.errors
	return result, nil
}

// LoadSource loads a document held in memory under uri.  Its imports are
// resolved relative to uri.
func (l *Loader) LoadSource(uri, source string) (*LoadResult, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.reset()

	result := &LoadResult{Workspace: l.ws}
	content, err := l.parser.Parse(strings.NewReader(source), uri)
	if err != nil {
		return result, fmt.Errorf("parsing error in '%s': %w", uri, err)
	}
	result.Root = l.addDocument(uri, content, 0)
	l.link()
	result.Errors = l.errors
	return result, nil
}

func (l *Loader) link() {
	unresolved := NewLinker(l.ws).LinkAll()
	slog.Debug("linked workspace", "documents", len(l.ws.Documents()), "unresolved", unresolved)
}

func (l *Loader) loadRecursive(importerPath, importPath string, depth int) (*Document, error) {
	if l.maxDepth > 0 && depth >= l.maxDepth {
		return nil, fmt.Errorf("max import depth (%d) exceeded near '%s'", l.maxDepth, importPath)
	}

	reader, canonicalPath, err := l.resolver.Resolve(importerPath, importPath)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve import '%s' from '%s': %w", importPath, importerPath, err)
	}
	defer reader.Close()

	if doc := l.ws.Document(canonicalPath); doc != nil {
		if l.pending[canonicalPath] {
			return doc, errImportCycle
		}
		return doc, nil
	}

	content, err := l.parse(reader, canonicalPath)
	if err != nil {
		return nil, err
	}
	return l.addDocument(canonicalPath, content, depth), nil
}

var errImportCycle = errors.New("circular import")

func (l *Loader) parse(reader io.Reader, uri string) (*decl.DescriptionContent, error) {
	slog.Debug("parsing document", "uri", uri)
	content, err := l.parser.Parse(reader, uri)
	if err != nil {
		return nil, fmt.Errorf("parsing error in '%s': %w", uri, err)
	}
	return content, nil
}

// addDocument registers content and loads its imports.  Import problems are
// recorded against the import directive and loading carries on.
func (l *Loader) addDocument(uri string, content *decl.DescriptionContent, depth int) *Document {
	doc := l.ws.AddDocument(uri, content)
	l.pending[uri] = true
	defer delete(l.pending, uri)

	for _, imp := range content.Imports {
		imported, err := l.loadRecursive(uri, imp.URI, depth+1)
		switch {
		case err == errImportCycle:
			l.errors = append(l.errors, &Diagnostic{
				Severity: SeverityWarning, Pos: imp.Pos(), End: imp.End(), Source: uri,
				Message: fmt.Sprintf("circular import of '%s'", imported.URI),
			})
		case err != nil:
			l.errors = append(l.errors, Errorf(uri, imp, "failed to load import '%s': %v", imp.URI, err))
			continue
		}
		doc.Imports = append(doc.Imports, imported.URI)
	}
	return doc
}
