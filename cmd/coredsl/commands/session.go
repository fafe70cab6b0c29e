package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/panyam/coredsl/decl"
	"github.com/panyam/coredsl/loader"
	"github.com/panyam/coredsl/parser"
	"github.com/panyam/coredsl/runtime"
)

// session is a loaded and validated document plus the definition that
// expressions are evaluated against.
type session struct {
	result *loader.LoadResult
	linker *loader.Linker
	interp *runtime.Interpreter
	def    decl.Definition
}

// openSession loads path with its imports and validates it.  Import and
// validation problems are written to errs.
func openSession(path string, opts loader.Options, errs io.Writer) (*session, error) {
	result, err := newLoader().LoadFile(path)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		(&loader.ErrorCollector{Errors: result.Errors}).FprintErrors(errs)
	}
	doc := result.Root
	if !loader.NewValidator(result.Workspace, opts).Validate(doc) {
		doc.FprintErrors(errs)
		return nil, fmt.Errorf("%s has %d error(s)", doc.URI, len(doc.Errors))
	}
	s := &session{
		result: result,
		linker: loader.NewLinker(result.Workspace),
		interp: runtime.NewInterpreter(result.Workspace.Parents),
	}
	return s, s.selectDefinition("")
}

// selectDefinition makes name the current definition.  An empty name picks
// the last core of the root document, or failing that its last instruction
// set.
func (s *session) selectDefinition(name string) error {
	content := s.result.Root.Content
	if name != "" {
		def := content.FindDefinition(name)
		if def == nil {
			for _, isa := range s.result.Workspace.ImportedInstructionSets(s.result.Root) {
				if isa.Name == name {
					def = isa
				}
			}
		}
		if def == nil {
			return fmt.Errorf("no instruction set or core named '%s'", name)
		}
		s.def = def
		return nil
	}
	if cores := content.Cores(); len(cores) > 0 {
		s.def = cores[len(cores)-1]
	} else if isas := content.InstructionSets(); len(isas) > 0 {
		s.def = isas[len(isas)-1]
	} else {
		return fmt.Errorf("%s defines no instruction set or core", s.result.Root.URI)
	}
	return nil
}

// eval parses src as an expression, binds it to the current definition and
// folds it.  A nil value means the expression is not constant.
func (s *session) eval(src string) (*decl.Value, error) {
	e, err := parser.ParseExpression(src)
	if err != nil {
		return nil, err
	}
	if unresolved := s.linker.LinkExpression(e, s.def); len(unresolved) > 0 {
		return nil, fmt.Errorf("unknown name(s) in %s: %s", s.def.EntityName(), strings.Join(unresolved, ", "))
	}
	return s.interp.ValueOf(e, runtime.NewEvaluationContext(s.def)), nil
}

type stateEntry struct {
	Owner      string
	Declarator *decl.Declarator
	Type       *decl.DataType
	Value      *decl.Value

	// Declarator whose initializer or assignments govern Value, nil when the
	// variable is never given a value.
	Effective *decl.Declarator
}

// state lists every state declarator visible in the current definition with
// its type and effective value.  All entries share one evaluation context.
func (s *session) state() (out []stateEntry) {
	ctx := runtime.NewEvaluationContext(s.def)
	types := s.interp.Types()
	for _, owner := range runtime.DefinitionChain(s.def) {
		for _, d := range owner.Body().StateDeclarators() {
			out = append(out, stateEntry{
				Owner:      owner.EntityName(),
				Declarator: d,
				Type:       types.TypeIn(d, ctx),
				Value:      s.interp.Evaluate(d, ctx),
				Effective:  s.interp.EffectiveDeclarator(s.def, d.Name),
			})
		}
	}
	return
}
