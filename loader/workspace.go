package loader

import (
	"sync"
	"time"

	"github.com/panyam/coredsl/decl"
)

// Document is one loaded CoreDSL source and its validation state.
type Document struct {
	ErrorCollector

	URI     string
	Content *decl.DescriptionContent

	// Canonical URIs of the documents named by Content's imports, in import
	// order.  Imports that failed to load are missing.
	Imports []string

	LastValidated time.Time
}

// Workspace indexes every loaded document by URI and shares one parent
// index across all of them, so references may cross document boundaries.
type Workspace struct {
	Parents *decl.ParentIndex

	mu        sync.RWMutex
	documents map[string]*Document
	order     []string
	byContent map[*decl.DescriptionContent]*Document
}

func NewWorkspace() *Workspace {
	return &Workspace{
		Parents:   decl.NewParentIndex(),
		documents: map[string]*Document{},
		byContent: map[*decl.DescriptionContent]*Document{},
	}
}

// AddDocument registers content under uri and indexes its parents.  Adding
// a uri twice returns the existing document.
func (w *Workspace) AddDocument(uri string, content *decl.DescriptionContent) *Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc, ok := w.documents[uri]; ok {
		return doc
	}
	doc := &Document{URI: uri, Content: content}
	w.documents[uri] = doc
	w.order = append(w.order, uri)
	w.byContent[content] = doc
	w.Parents.Index(content)
	return doc
}

func (w *Workspace) Document(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.documents[uri]
}

// DocumentOf returns the document containing n.
func (w *Workspace) DocumentOf(n decl.Node) *Document {
	return w.DocumentFor(w.Parents.Document(n))
}

// DocumentFor returns the document whose syntax tree is content.
func (w *Workspace) DocumentFor(content *decl.DescriptionContent) *Document {
	if content == nil {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.byContent[content]
}

// Documents returns all documents in the order they were added.
func (w *Workspace) Documents() (out []*Document) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, uri := range w.order {
		out = append(out, w.documents[uri])
	}
	return
}

// lookup finds a document by exact uri, then with the document suffix
// appended.
func (w *Workspace) lookup(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if doc, ok := w.documents[uri]; ok {
		return doc
	}
	full := WithSuffix(uri)
	return w.documents[full]
}

// ExportedInstructionSets returns the top level instruction sets of the
// document at uri.  Nothing else a document declares is visible to its
// importers.
func (w *Workspace) ExportedInstructionSets(uri string) []*decl.InstructionSet {
	doc := w.lookup(uri)
	if doc == nil || doc.Content == nil {
		return nil
	}
	return doc.Content.InstructionSets()
}

// ImportedInstructionSets collects the instruction sets exported by doc's
// imports, following imports of imports.  Each document contributes once.
func (w *Workspace) ImportedInstructionSets(doc *Document) (out []*decl.InstructionSet) {
	if doc == nil {
		return nil
	}
	visited := map[string]bool{doc.URI: true}
	queue := append([]string(nil), doc.Imports...)
	for len(queue) > 0 {
		uri := queue[0]
		queue = queue[1:]
		imported := w.lookup(uri)
		if imported == nil || visited[imported.URI] {
			continue
		}
		visited[imported.URI] = true
		out = append(out, w.ExportedInstructionSets(imported.URI)...)
		queue = append(queue, imported.Imports...)
	}
	return
}
