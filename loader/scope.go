package loader

import (
	"github.com/panyam/coredsl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// Scope is the chain of name bindings visible at one site.  Each level of
// the chain is one binder (a block, an instruction, a definition) and inner
// levels shadow outer ones.
type Scope struct {
	env *decl.Env[decl.NamedEntity]
}

// Lookup returns the innermost entity named name, or nil.
func (s *Scope) Lookup(name string) decl.NamedEntity {
	if s == nil || s.env == nil {
		return nil
	}
	out, _ := s.env.Get(name)
	return out
}

// Elements lists every visible candidate, innermost level first.  Shadowed
// entities are included after the ones shadowing them.
func (s *Scope) Elements() (out []decl.NamedEntity) {
	if s == nil {
		return nil
	}
	for curr := s.env; curr != nil; curr = curr.Outer() {
		for _, key := range curr.Keys() {
			out = append(out, curr.GetRef(key).Value)
		}
	}
	return
}

// Names lists the visible names, innermost first, each once.
func (s *Scope) Names() []string {
	if s == nil || s.env == nil {
		return nil
	}
	return s.env.Visible()
}

func (s *Scope) Depth() int {
	if s == nil || s.env == nil {
		return 0
	}
	return s.env.Depth()
}

// ScopeProvider computes the Scope visible at a syntactic position by
// walking up the parent index of a workspace.
type ScopeProvider struct {
	ws *Workspace
}

func NewScopeProvider(ws *Workspace) *ScopeProvider {
	return &ScopeProvider{ws: ws}
}

// ScopeFor returns the scope seen by a reference at site.
//
//   - blocks expose declarations that precede the statement holding site
//   - for loops expose their start declaration outside of it
//   - instructions expose their encoding fields
//   - functions expose every declarator of parameters and body
//   - instruction sets expose their state and functions, then their supertype's
//   - cores expose their own, then each provided set's chain, each set once
//   - the document exposes its definitions and the imported instruction sets
func (p *ScopeProvider) ScopeFor(site decl.Node) *Scope {
	var levels [][]decl.NamedEntity
	parents := p.ws.Parents
	child := site
	for curr := parents.Parent(site); curr != nil; child, curr = curr, parents.Parent(curr) {
		switch n := curr.(type) {
		case *decl.CompoundStatement:
			levels = append(levels, blockLevel(n, child))
		case *decl.ForLoop:
			if n.StartDeclaration != nil && child != decl.Node(n.StartDeclaration) {
				levels = append(levels, declarators(n.StartDeclaration))
			}
		case *decl.Instruction:
			levels = append(levels, encodingLevel(n))
		case *decl.FunctionDefinition:
			levels = append(levels, functionLevel(n))
		case *decl.InstructionSet:
			levels = append(levels, p.definitionLevels(n)...)
		case *decl.CoreDef:
			levels = append(levels, p.definitionLevels(n)...)
		case *decl.DescriptionContent:
			levels = append(levels, p.globalLevel(n))
		}
	}
	return newScope(levels)
}

// DefinitionScope is the scope seen directly inside the body of def.
func (p *ScopeProvider) DefinitionScope(def decl.Definition) *Scope {
	levels := p.definitionLevels(def)
	if content := p.ws.Parents.Document(def); content != nil {
		levels = append(levels, p.globalLevel(content))
	}
	return newScope(levels)
}

// GlobalScope is the outermost scope of content.
func (p *ScopeProvider) GlobalScope(content *decl.DescriptionContent) *Scope {
	return newScope([][]decl.NamedEntity{p.globalLevel(content)})
}

// InstructionSet finds the instruction set name refers to from content.
// Cores and other entities sharing the name are skipped.
func (p *ScopeProvider) InstructionSet(content *decl.DescriptionContent, name string) *decl.InstructionSet {
	for _, e := range p.globalLevel(content) {
		if isa, ok := e.(*decl.InstructionSet); ok && isa.Name == name {
			return isa
		}
	}
	return nil
}

// newScope chains levels, innermost first, into an Env.  Within a level
// the first binding of a name wins.
func newScope(levels [][]decl.NamedEntity) *Scope {
	var env *decl.Env[decl.NamedEntity]
	for i := len(levels) - 1; i >= 0; i-- {
		env = decl.NewEnv(env)
		for _, e := range levels[i] {
			env.Add(e.EntityName(), e)
		}
	}
	if env == nil {
		env = decl.NewEnv[decl.NamedEntity](nil)
	}
	return &Scope{env: env}
}

func declarators(d *decl.Declaration) []decl.NamedEntity {
	return gfn.Map(d.Declarators, func(dd *decl.Declarator) decl.NamedEntity { return dd })
}

// blockLevel returns the declarators of block declared strictly before the
// item holding the site.
func blockLevel(block *decl.CompoundStatement, holder decl.Node) (out []decl.NamedEntity) {
	for _, item := range block.Items {
		if decl.Node(item) == holder {
			break
		}
		if ds, ok := item.(*decl.DeclarationStatement); ok {
			out = append(out, declarators(ds.Declaration)...)
		}
	}
	return
}

func encodingLevel(instr *decl.Instruction) (out []decl.NamedEntity) {
	if instr.Encoding == nil {
		return nil
	}
	for _, f := range instr.Encoding.Fields {
		if bf, ok := f.(*decl.BitField); ok {
			out = append(out, bf)
		}
	}
	return
}

func functionLevel(fn *decl.FunctionDefinition) (out []decl.NamedEntity) {
	decl.Walk(fn, func(n decl.Node) bool {
		if d, ok := n.(*decl.Declarator); ok {
			out = append(out, d)
		}
		return true
	})
	return
}

func ownLevel(def decl.Definition) (out []decl.NamedEntity) {
	body := def.Body()
	for _, d := range body.StateDeclarators() {
		out = append(out, d)
	}
	for _, f := range body.Functions {
		out = append(out, f)
	}
	return
}

// definitionLevels returns one level per definition contributing to def:
// def itself, then for an instruction set its supertypes, and for a core
// the chains of its provided sets in order, each set listed once.
func (p *ScopeProvider) definitionLevels(def decl.Definition) (levels [][]decl.NamedEntity) {
	seen := map[decl.Definition]bool{def: true}
	levels = append(levels, ownLevel(def))
	addChain := func(isa *decl.InstructionSet) {
		for ; isa != nil && !seen[isa]; isa = isa.Super() {
			seen[isa] = true
			levels = append(levels, ownLevel(isa))
		}
	}
	switch d := def.(type) {
	case *decl.InstructionSet:
		addChain(d.Super())
	case *decl.CoreDef:
		for _, isa := range d.Provided() {
			addChain(isa)
		}
	}
	return
}

func (p *ScopeProvider) globalLevel(content *decl.DescriptionContent) (out []decl.NamedEntity) {
	if content == nil {
		return nil
	}
	for _, def := range content.Definitions {
		out = append(out, def)
	}
	for _, isa := range p.ws.ImportedInstructionSets(p.ws.DocumentFor(content)) {
		out = append(out, isa)
	}
	return
}
