package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Location is a position in a source document.
type Location struct {
	Pos  int // byte offset
	Line int // 1-based
	Col  int // 1-based, in runes
}

func (l Location) LineColStr() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

func (l Location) String() string {
	return fmt.Sprintf("Line %d, Col %d", l.Line, l.Col)
}

// --- Interfaces ---

// Node represents any node in the syntax tree of a CoreDSL document.
type Node interface {
	Pos() Location  // Starting position (for error reporting)
	End() Location  // Ending position
	String() string // Source-like rendering for debugging/printing
}

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct{ StartPos, StopPos Location }

func (n *NodeInfo) Pos() Location  { return n.StartPos }
func (n *NodeInfo) End() Location  { return n.StopPos }
func (n *NodeInfo) String() string { return "{Node}" }

// NamedEntity is anything a name reference can resolve to: declarators,
// functions, encoding bit fields and the top level definitions.
type NamedEntity interface {
	Node
	EntityName() string
}

// Definition is the common view over an InstructionSet and a CoreDef.  Every
// definition owns state declarations, state assignments, functions and
// instructions.
type Definition interface {
	NamedEntity
	Body() *ISABody
	definitionNode()
}

// Reference is a by-name cross reference.  The linker fills in Target once;
// a nil Target after linking means the name could not be resolved.
type Reference struct {
	NodeInfo
	Name   string
	Target NamedEntity

	// When set only InstructionSets are acceptable targets (extends/provides).
	InstructionSetsOnly bool
}

func (r *Reference) Resolved() bool { return r != nil && r.Target != nil }

func (r *Reference) String() string { return r.Name }

// InstructionSet returns the referenced instruction set, or nil if the
// reference is unresolved or points at something else.
func (r *Reference) InstructionSet() *InstructionSet {
	if r == nil {
		return nil
	}
	isa, _ := r.Target.(*InstructionSet)
	return isa
}

// --- Top Level declarations ---

// DescriptionContent is the root of a parsed CoreDSL document.
type DescriptionContent struct {
	NodeInfo
	Imports     []*Import
	Definitions []Definition
}

func (d *DescriptionContent) String() string {
	cp := NewCodePrinter()
	d.PrettyPrint(cp)
	return cp.String()
}

// InstructionSets returns the top level instruction sets in document order.
func (d *DescriptionContent) InstructionSets() (out []*InstructionSet) {
	for _, def := range d.Definitions {
		if isa, ok := def.(*InstructionSet); ok {
			out = append(out, isa)
		}
	}
	return
}

// Cores returns the top level core definitions in document order.
func (d *DescriptionContent) Cores() (out []*CoreDef) {
	for _, def := range d.Definitions {
		if core, ok := def.(*CoreDef); ok {
			out = append(out, core)
		}
	}
	return
}

// FindDefinition returns the top level definition with the given name.
func (d *DescriptionContent) FindDefinition(name string) Definition {
	for _, def := range d.Definitions {
		if def.EntityName() == name {
			return def
		}
	}
	return nil
}

// Import is an `import "uri"` directive.
type Import struct {
	NodeInfo
	URI string
}

func (i *Import) String() string { return fmt.Sprintf("import %q", i.URI) }

// ISABody holds the parts shared by instruction sets and cores.
type ISABody struct {
	Declarations                []*DeclarationStatement
	Assignments                 []*ExpressionStatement
	Functions                   []*FunctionDefinition
	Instructions                []*Instruction
	CommonInstructionAttributes []*Attribute
	AlwaysBlocks                []*AlwaysBlock
}

func (b *ISABody) Body() *ISABody { return b }

// StateDeclarators flattens the declarators of all state declarations.
func (b *ISABody) StateDeclarators() (out []*Declarator) {
	for _, ds := range b.Declarations {
		out = append(out, ds.Declaration.Declarators...)
	}
	return
}

// FindFunction returns the function with the given name declared directly in this body.
func (b *ISABody) FindFunction(name string) *FunctionDefinition {
	for _, f := range b.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// InstructionSet is an extensible collection of state, functions and
// instructions (`InstructionSet X extends Y { ... }`).
type InstructionSet struct {
	NodeInfo
	ISABody
	Name      string
	SuperType *Reference
}

func (i *InstructionSet) EntityName() string { return i.Name }
func (i *InstructionSet) definitionNode()    {}
func (i *InstructionSet) String() string {
	if i.SuperType != nil {
		return fmt.Sprintf("InstructionSet %s extends %s", i.Name, i.SuperType.Name)
	}
	return fmt.Sprintf("InstructionSet %s", i.Name)
}

// Super returns the resolved supertype or nil.
func (i *InstructionSet) Super() *InstructionSet {
	return i.SuperType.InstructionSet()
}

// CoreDef composes zero or more instruction sets (`Core X provides A, B { ... }`).
type CoreDef struct {
	NodeInfo
	ISABody
	Name                    string
	ProvidedInstructionSets []*Reference
}

func (c *CoreDef) EntityName() string { return c.Name }
func (c *CoreDef) definitionNode()    {}
func (c *CoreDef) String() string {
	if len(c.ProvidedInstructionSets) > 0 {
		return fmt.Sprintf("Core %s provides %s", c.Name,
			strings.Join(gfn.Map(c.ProvidedInstructionSets, func(r *Reference) string { return r.Name }), ", "))
	}
	return fmt.Sprintf("Core %s", c.Name)
}

// Provided returns the resolved provided instruction sets in declaration
// order, skipping unresolved ones.
func (c *CoreDef) Provided() (out []*InstructionSet) {
	for _, r := range c.ProvidedInstructionSets {
		if isa := r.InstructionSet(); isa != nil {
			out = append(out, isa)
		}
	}
	return
}

// Attribute is a `[[name]]`, `[[name=expr]]` or `[[name(a, b)]]` annotation.
type Attribute struct {
	NodeInfo
	Name       string
	Parameters []Expression
}

func (a *Attribute) String() string {
	switch len(a.Parameters) {
	case 0:
		return fmt.Sprintf("[[%s]]", a.Name)
	default:
		return fmt.Sprintf("[[%s(%s)]]", a.Name, joinExprs(a.Parameters, ", "))
	}
}

// FunctionDefinition is a named function of an instruction set or core.
type FunctionDefinition struct {
	NodeInfo
	Extern     bool
	ReturnType TypeSpecifier
	Name       string
	Parameters []*ParameterDeclaration
	Attributes []*Attribute
	Body       *CompoundStatement // nil for extern/prototype functions
}

func (f *FunctionDefinition) EntityName() string { return f.Name }
func (f *FunctionDefinition) String() string {
	return fmt.Sprintf("%s %s(%s)", f.ReturnType, f.Name,
		strings.Join(gfn.Map(f.Parameters, func(p *ParameterDeclaration) string { return p.String() }), ", "))
}

// ParameterDeclaration is a single function parameter.
type ParameterDeclaration struct {
	NodeInfo
	Type       TypeSpecifier
	Declarator *Declarator
}

func (p *ParameterDeclaration) String() string {
	if p.Declarator == nil {
		return p.Type.String()
	}
	return fmt.Sprintf("%s %s", p.Type, p.Declarator)
}

// Instruction describes the encoding, assembly syntax and behavior of one instruction.
type Instruction struct {
	NodeInfo
	Name       string
	Attributes []*Attribute
	Encoding   *Encoding
	Assembly   *AssemblyDescription
	Behavior   Statement
}

func (i *Instruction) String() string { return fmt.Sprintf("%s { encoding: %s }", i.Name, i.Encoding) }

// AssemblyDescription is the `assembly:` part of an instruction.  Mnemonic is
// optional (`assembly: {"mnem", "operands"}`).
type AssemblyDescription struct {
	NodeInfo
	Mnemonic string
	Operands string
}

func (a *AssemblyDescription) String() string {
	if a.Mnemonic != "" {
		return fmt.Sprintf("{%q, %q}", a.Mnemonic, a.Operands)
	}
	return fmt.Sprintf("%q", a.Operands)
}

// AlwaysBlock is a named behavior block executed every cycle.
type AlwaysBlock struct {
	NodeInfo
	Name       string
	Attributes []*Attribute
	Behavior   Statement
}

func (a *AlwaysBlock) String() string { return a.Name }

// EncodingField is a BitField or a BitValue.
type EncodingField interface {
	Node
	encodingField()
}

// Encoding is the `::` separated bit pattern of an instruction.
type Encoding struct {
	NodeInfo
	Fields []EncodingField
}

func (e *Encoding) String() string {
	return strings.Join(gfn.Map(e.Fields, func(f EncodingField) string { return f.String() }), " :: ")
}

// BitField names a slice of the instruction word, eg `rs1[4:0]`.
type BitField struct {
	NodeInfo
	Name       string
	StartIndex *IntegerConstant
	EndIndex   *IntegerConstant
}

func (b *BitField) EntityName() string { return b.Name }
func (b *BitField) encodingField()     {}
func (b *BitField) String() string {
	return fmt.Sprintf("%s[%s:%s]", b.Name, b.StartIndex, b.EndIndex)
}

// BitValue is a fixed chunk of the instruction word, eg `0b0110011`.
type BitValue struct {
	NodeInfo
	Value string
}

func (b *BitValue) encodingField()  {}
func (b *BitValue) String() string { return b.Value }

// Width is the number of instruction bits the chunk occupies.  Binary and
// hex chunks count their digits, sized literals use their declared size and
// anything else falls back to the literal's width.  Returns 0 if the text is
// not a valid literal.
func (b *BitValue) Width() int {
	lit, err := ParseInteger(b.Value)
	if err != nil {
		return 0
	}
	if strings.Contains(b.Value, "'") {
		return lit.Size
	}
	digits := strings.ReplaceAll(strings.ToLower(b.Value), "_", "")
	switch {
	case strings.HasPrefix(digits, "0b"):
		return len(digits) - 2
	case strings.HasPrefix(digits, "0x"):
		return 4 * (len(digits) - 2)
	}
	return lit.Size
}

// Declaration groups declarators sharing a type specifier and attributes.
type Declaration struct {
	NodeInfo
	Storage     []string // static, extern, register
	Qualifiers  []string // const, volatile
	Attributes  []*Attribute
	Type        TypeSpecifier
	Declarators []*Declarator
}

func (d *Declaration) String() string {
	var parts []string
	parts = append(parts, d.Storage...)
	parts = append(parts, d.Qualifiers...)
	for _, a := range d.Attributes {
		parts = append(parts, a.String())
	}
	if d.Type != nil {
		parts = append(parts, d.Type.String())
	}
	decls := strings.Join(gfn.Map(d.Declarators, func(dd *Declarator) string { return dd.String() }), ", ")
	if decls != "" {
		parts = append(parts, decls)
	}
	return strings.Join(parts, " ")
}

// IsConst returns true if the declaration carries the const qualifier.
func (d *Declaration) IsConst() bool {
	for _, q := range d.Qualifiers {
		if q == "const" {
			return true
		}
	}
	return false
}

// Declarator is a single named binding.  Two declarators are never equal by
// name alone: the pointer is the identity used for caching.
type Declarator struct {
	NodeInfo
	Name        string
	Dimensions  []Expression
	Attributes  []*Attribute
	Initializer Initializer
}

func (d *Declarator) EntityName() string { return d.Name }
func (d *Declarator) String() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	for _, dim := range d.Dimensions {
		sb.WriteString("[")
		sb.WriteString(dim.String())
		sb.WriteString("]")
	}
	for _, a := range d.Attributes {
		sb.WriteString(" ")
		sb.WriteString(a.String())
	}
	if d.Initializer != nil {
		sb.WriteString(" = ")
		sb.WriteString(d.Initializer.String())
	}
	return sb.String()
}

// InitialValue returns the initializer expression when the declarator has a
// plain expression initializer.
func (d *Declarator) InitialValue() Expression {
	if ei, ok := d.Initializer.(*ExpressionInitializer); ok {
		return ei.Value
	}
	return nil
}

// Initializer is either an ExpressionInitializer or a ListInitializer.
type Initializer interface {
	Node
	initializerNode()
}

type ExpressionInitializer struct {
	NodeInfo
	Value Expression
}

func (e *ExpressionInitializer) initializerNode() {}
func (e *ExpressionInitializer) String() string   { return e.Value.String() }

// ListInitializer is a brace enclosed initializer list, eg `{1, 2, 3}`.
type ListInitializer struct {
	NodeInfo
	Initializers []Initializer
}

func (l *ListInitializer) initializerNode() {}
func (l *ListInitializer) String() string {
	return fmt.Sprintf("{%s}", strings.Join(gfn.Map(l.Initializers, func(i Initializer) string { return i.String() }), ", "))
}

func joinExprs(exprs []Expression, sep string) string {
	return strings.Join(gfn.Map(exprs, func(e Expression) string { return e.String() }), sep)
}
