package loader

import (
	"log/slog"

	"github.com/panyam/coredsl/decl"
)

// Linker fills in the Target of every Reference in a workspace.
type Linker struct {
	ws     *Workspace
	scopes *ScopeProvider
}

func NewLinker(ws *Workspace) *Linker {
	return &Linker{ws: ws, scopes: NewScopeProvider(ws)}
}

func (l *Linker) Scopes() *ScopeProvider { return l.scopes }

// references returns the references of content in document order.
func references(content *decl.DescriptionContent) (out []*decl.Reference) {
	decl.Walk(content, func(n decl.Node) bool {
		if r, ok := n.(*decl.Reference); ok {
			out = append(out, r)
		}
		return true
	})
	return
}

// LinkAll links every document of the workspace.  Supertype and provides
// references of all documents are linked before anything else because the
// scopes of definition bodies depend on them.  Returns the number of
// references that stayed unresolved.
func (l *Linker) LinkAll() (unresolved int) {
	docs := l.ws.Documents()
	for _, doc := range docs {
		l.linkInstructionSets(doc)
	}
	for _, doc := range docs {
		unresolved += l.linkEntities(doc)
	}
	return
}

// Link links a single document.  Documents it imports should be linked
// first.
func (l *Linker) Link(doc *Document) (unresolved int) {
	l.linkInstructionSets(doc)
	return l.linkEntities(doc)
}

func (l *Linker) linkInstructionSets(doc *Document) {
	for _, ref := range references(doc.Content) {
		if ref.Target != nil || !ref.InstructionSetsOnly {
			continue
		}
		if isa := l.scopes.InstructionSet(doc.Content, ref.Name); isa != nil {
			ref.Target = isa
		}
	}
}

func (l *Linker) linkEntities(doc *Document) (unresolved int) {
	for _, ref := range references(doc.Content) {
		if ref.InstructionSetsOnly {
			if ref.Target == nil {
				unresolved++
			}
			continue
		}
		if ref.Target != nil {
			continue
		}
		if target := l.scopes.ScopeFor(ref).Lookup(ref.Name); target != nil {
			ref.Target = target
			continue
		}
		unresolved++
		slog.Debug("unresolved reference", "uri", doc.URI, "name", ref.Name, "pos", ref.Pos().LineColStr())
	}
	return
}

// LinkExpression resolves the references of an expression parsed on its own
// against the body of def.  Returns the names that stayed unresolved.
func (l *Linker) LinkExpression(e decl.Expression, def decl.Definition) (unresolved []string) {
	scope := l.scopes.DefinitionScope(def)
	decl.Walk(e, func(n decl.Node) bool {
		ref, ok := n.(*decl.Reference)
		if !ok || ref.Target != nil {
			return true
		}
		if target := scope.Lookup(ref.Name); target != nil {
			ref.Target = target
		} else {
			unresolved = append(unresolved, ref.Name)
		}
		return true
	})
	return
}
