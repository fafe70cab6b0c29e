package runtime

import (
	"github.com/panyam/coredsl/decl"
)

// DefinitionChain lists the definitions whose state contributes to def, in
// the order their initializers and assignments apply.  For an instruction
// set this is its supertypes, root first, followed by the set itself.  For a
// core it is the chain of every provided instruction set, in declaration
// order with each set listed once, followed by the core.
func DefinitionChain(def decl.Definition) (out []decl.Definition) {
	seen := map[decl.Definition]bool{}
	var addISA func(isa *decl.InstructionSet)
	addISA = func(isa *decl.InstructionSet) {
		if isa == nil || seen[isa] {
			return
		}
		seen[isa] = true
		addISA(isa.Super())
		out = append(out, isa)
	}
	switch d := def.(type) {
	case *decl.InstructionSet:
		addISA(d)
	case *decl.CoreDef:
		for _, isa := range d.Provided() {
			addISA(isa)
		}
		out = append(out, d)
	}
	return
}

// EnclosingDefinition returns the closest core containing n, else the closest
// instruction set, else nil.
func EnclosingDefinition(parents *decl.ParentIndex, n decl.Node) decl.Definition {
	if core, ok := decl.ContainerOf[*decl.CoreDef](parents, n); ok {
		return core
	}
	if isa, ok := decl.ContainerOf[*decl.InstructionSet](parents, n); ok {
		return isa
	}
	return nil
}

// assignedDeclarator returns the declarator a state assignment writes to.
// Only plain `=` assignments whose target is a name count.
func assignedDeclarator(stmt *decl.ExpressionStatement) (*decl.Declarator, decl.Expression) {
	ae := stmt.Assignment()
	if ae == nil {
		return nil, nil
	}
	ref, ok := decl.Unparen(ae.Target).(*decl.EntityReference)
	if !ok {
		return nil, nil
	}
	return ref.Declarator(), ae.Value
}

// stateCandidates collects the expressions that may give d its value under
// def: d's initializer where d is declared and every state assignment to d,
// in chain order.  The last candidate is the effective one.  Declarators that
// are not part of the chain contribute their own initializer first.
func stateCandidates(def decl.Definition, d *decl.Declarator) (out []decl.Expression) {
	declared := false
	for _, curr := range DefinitionChain(def) {
		body := curr.Body()
		for _, sd := range body.StateDeclarators() {
			if sd == d {
				declared = true
				if init := d.InitialValue(); init != nil {
					out = append(out, init)
				}
			}
		}
		for _, stmt := range body.Assignments {
			if target, value := assignedDeclarator(stmt); target == d && value != nil {
				out = append(out, value)
			}
		}
	}
	if !declared {
		if init := d.InitialValue(); init != nil {
			out = append([]decl.Expression{init}, out...)
		}
	}
	return
}
