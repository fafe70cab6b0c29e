package loader

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/panyam/coredsl/decl"
	"github.com/panyam/coredsl/runtime"
)

type AttributeUsage int

const (
	InstructionAttribute AttributeUsage = iota
	FunctionAttribute
	DeclarationAttribute
)

func (u AttributeUsage) String() string {
	switch u {
	case InstructionAttribute:
		return "instruction"
	case FunctionAttribute:
		return "function"
	case DeclarationAttribute:
		return "declaration"
	}
	return fmt.Sprintf("AttributeUsage(%d)", int(u))
}

// AttributeInfo describes where an attribute may appear and how many
// parameters it takes.
type AttributeInfo struct {
	Name       string
	Parameters int
	Usage      AttributeUsage
}

var knownAttributes = []AttributeInfo{
	{"enable", 1, InstructionAttribute},
	{"hls", 0, InstructionAttribute},
	{"no_cont", 0, InstructionAttribute},
	{"cond", 0, InstructionAttribute},
	{"flush", 0, InstructionAttribute},
	{"do_not_synthesize", 0, FunctionAttribute},
	{"is_pc", 0, DeclarationAttribute},
	{"is_main_reg", 0, DeclarationAttribute},
	{"is_main_mem", 0, DeclarationAttribute},
	{"is_interlock_for", 1, DeclarationAttribute},
	{"clk_budget", 1, FunctionAttribute},
	{"type", 1, InstructionAttribute},
}

// KnownAttributes lists the attributes the validator accepts.
func KnownAttributes() []AttributeInfo {
	return append([]AttributeInfo(nil), knownAttributes...)
}

func LookupAttribute(name string) (AttributeInfo, bool) {
	for _, info := range knownAttributes {
		if info.Name == name {
			return info, true
		}
	}
	return AttributeInfo{}, false
}

// Options turns on the checks that are off by default.
type Options struct {
	// Report expressions that cannot be typed and operands that cannot be
	// compared.
	CheckTypes bool

	// Report state sizes of cores that are not compile time constants.
	CheckConstants bool
}

// Validator reports semantic problems of linked documents.
type Validator struct {
	Options
	ws     *Workspace
	interp *runtime.Interpreter
}

func NewValidator(ws *Workspace, opts Options) *Validator {
	return &Validator{Options: opts, ws: ws, interp: runtime.NewInterpreter(ws.Parents)}
}

// ValidateAll validates every document of the workspace and returns true if
// none of them has errors.
func (v *Validator) ValidateAll() (ok bool) {
	ok = true
	for _, doc := range v.ws.Documents() {
		if !v.Validate(doc) {
			ok = false
		}
	}
	return
}

// Validate replaces doc's errors with the problems found in it and returns
// true if there are none.
func (v *Validator) Validate(doc *Document) bool {
	doc.Errors = nil
	if doc.Content == nil {
		return true
	}
	decl.Walk(doc.Content, func(n decl.Node) bool {
		v.check(doc, n)
		return true
	})
	if v.CheckConstants {
		v.checkConstants(doc)
	}
	doc.LastValidated = time.Now()
	slog.Debug("validated document", "uri", doc.URI, "errors", len(doc.Errors))
	return !doc.HasErrors()
}

func (v *Validator) check(doc *Document, n decl.Node) {
	switch n := n.(type) {
	case *decl.Reference:
		if n.Target == nil {
			doc.Errorf(doc.URI, n, "Could not resolve reference to NamedEntity named '%s'.", n.Name)
		}
	case *decl.InstructionSet:
		v.checkAttributes(doc, n.CommonInstructionAttributes, InstructionAttribute)
	case *decl.CoreDef:
		v.checkAttributes(doc, n.CommonInstructionAttributes, InstructionAttribute)
	case *decl.Instruction:
		v.checkAttributes(doc, n.Attributes, InstructionAttribute)
	case *decl.Declaration:
		v.checkAttributes(doc, n.Attributes, DeclarationAttribute)
	case *decl.Declarator:
		v.checkAttributes(doc, n.Attributes, DeclarationAttribute)
	case *decl.FunctionDefinition:
		v.checkAttributes(doc, n.Attributes, FunctionAttribute)
	case decl.Expression:
		if v.CheckTypes {
			v.checkType(doc, n)
		}
	}
}

// checkAttributes stops at the first misplaced or unknown attribute of a
// list.
func (v *Validator) checkAttributes(doc *Document, attrs []*decl.Attribute, usage AttributeUsage) {
	for _, attr := range attrs {
		info, ok := LookupAttribute(attr.Name)
		if !ok || info.Usage != usage {
			doc.Errorf(doc.URI, attr, "unexpected attribute '%s'", attr.Name)
			return
		}
		if len(attr.Parameters) != info.Parameters {
			doc.Errorf(doc.URI, attr, "attribute '%s' requires exactly %d parameter(s)", attr.Name, info.Parameters)
		}
	}
}

func (v *Validator) checkType(doc *Document, e decl.Expression) {
	types := v.interp.Types()
	switch e := e.(type) {
	case *decl.BoolConstant, *decl.IntegerConstant, *decl.FloatConstant, *decl.CharacterConstant,
		*decl.StringConstant, *decl.EntityReference, *decl.ParenthesisExpression,
		*decl.PrefixExpression, *decl.PostfixExpression:
		if types.TypeForExpression(e) == nil {
			doc.Errorf(doc.URI, e, "incompatible types used.")
		}
	case *decl.CastExpression:
		if types.TypeForExpression(e) == nil {
			doc.Errorf(doc.URI, e, "illegal type used")
		}
	case *decl.InfixExpression:
		if e.Operator == "::" {
			return
		}
		l, r := types.TypeForExpression(e.Left), types.TypeForExpression(e.Right)
		if !types.IsComparable(l, r) {
			doc.Errorf(doc.URI, e, "incompatible types used. %s vs %s", l, r)
		} else if types.TypeForExpression(e) == nil {
			doc.Errorf(doc.URI, e, "incompatible types used.")
		}
	}
}

// checkConstants evaluates, for every core of doc, the array dimensions and
// explicit integer widths of all state it owns or inherits.  A node is
// reported once even if several cores share it.
func (v *Validator) checkConstants(doc *Document) {
	reported := map[decl.Node]bool{}
	mustBeConstant := func(e decl.Expression, ctx *runtime.EvaluationContext) {
		if e == nil || reported[e] {
			return
		}
		if _, err := v.interp.MustValueOf(e, ctx.Child()); err != nil {
			reported[e] = true
			source := doc.URI
			if owner := v.ws.DocumentOf(e); owner != nil {
				source = owner.URI
			}
			doc.Errorf(source, e, "expression must be a compile-time constant")
		}
	}
	for _, core := range doc.Content.Cores() {
		ctx := runtime.NewEvaluationContext(core)
		for _, def := range runtime.DefinitionChain(core) {
			for _, ds := range def.Body().Declarations {
				if spec, ok := ds.Declaration.Type.(*decl.IntegerTypeSpecifier); ok {
					mustBeConstant(spec.Size, ctx)
				}
				for _, d := range ds.Declaration.Declarators {
					for _, dim := range d.Dimensions {
						mustBeConstant(dim, ctx)
					}
				}
			}
		}
	}
}
