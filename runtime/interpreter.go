package runtime

import (
	"fmt"
	"log/slog"
	"math/big"

	"github.com/panyam/coredsl/decl"
)

// Interpreter folds compile-time constant expressions.  ValueOf returns nil
// for anything that is not constant in the given context.  That is a normal
// outcome and not an error.
type Interpreter struct {
	parents *decl.ParentIndex
	types   *TypeProvider
}

func NewInterpreter(parents *decl.ParentIndex) *Interpreter {
	if parents == nil {
		parents = decl.NewParentIndex()
	}
	out := &Interpreter{parents: parents}
	out.types = &TypeProvider{parents: parents, interp: out}
	return out
}

// Types returns the TypeProvider sharing this interpreter's parent index.
func (i *Interpreter) Types() *TypeProvider { return i.types }

// MustValueOf is ValueOf for callers that require a constant: a nil value or
// a value without payload becomes an error wrapping ErrNotConstant.
func (i *Interpreter) MustValueOf(node decl.Node, ctx *EvaluationContext) (*decl.Value, error) {
	v := i.ValueOf(node, ctx)
	if v.IsNil() {
		return nil, notConstant(node)
	}
	return v, nil
}

// ValueOf evaluates node under ctx.
func (i *Interpreter) ValueOf(node decl.Node, ctx *EvaluationContext) *decl.Value {
	if ctx == nil {
		ctx = NewEvaluationContext(nil)
	}
	switch n := node.(type) {
	// Constants
	case *decl.BoolConstant:
		return decl.BoolValue(n.Value)
	case *decl.CharacterConstant:
		return decl.IntValue(decl.SignedType(8), big.NewInt(int64(n.Value)))
	case *decl.FloatConstant:
		lit, err := decl.ParseDecimal(n.Value)
		if err != nil {
			return nil
		}
		return decl.NewValue(decl.FloatType(lit.Size), lit)
	case *decl.IntegerConstant:
		lit := n.Literal()
		if lit == nil {
			return nil
		}
		return decl.NewValue(literalType(lit), lit)
	case *decl.StringConstant:
		return decl.NewValue(decl.SignedType(0), nil)

	// Named entities
	case *decl.Declarator:
		return i.Evaluate(n, ctx)
	case *decl.FunctionDefinition:
		return i.typeOnly(n.ReturnType, ctx)
	case *decl.BitField:
		return decl.NewValue(i.types.TypeIn(n, ctx), nil)
	case *decl.BitValue:
		return decl.IntValue(decl.UnsignedType(1), big.NewInt(0))
	case *decl.InstructionSet, *decl.CoreDef, *decl.Instruction, *decl.AlwaysBlock, *decl.Encoding:
		return nil

	// Type specifiers evaluate to a typed value without payload
	case *decl.BoolTypeSpecifier, *decl.VoidTypeSpecifier, *decl.EnumTypeSpecifier,
		*decl.UserTypeSpecifier, *decl.FloatTypeSpecifier, *decl.IntegerTypeSpecifier:
		return i.typeOnly(n, ctx)

	// Expressions
	case *decl.EntityReference:
		if n.Target == nil || n.Target.Target == nil {
			return nil
		}
		return i.ValueOf(n.Target.Target, ctx)
	case *decl.ParenthesisExpression:
		return i.ValueOf(n.Inner, ctx)
	case *decl.AssignmentExpression:
		return i.ValueOf(n.Value, ctx)
	case *decl.ConditionalExpression:
		cond := i.ValueOf(n.Condition, ctx)
		if cond == nil {
			return nil
		}
		// a condition without payload, such as a comparison, takes the then branch
		if truth, known := cond.IsTrue(); truth || !known {
			return i.ValueOf(n.ThenExpression, ctx)
		}
		return i.ValueOf(n.ElseExpression, ctx)
	case *decl.InfixExpression:
		return i.infixValue(n, ctx)
	case *decl.PrefixExpression:
		return i.prefixValue(n, ctx)
	case *decl.CastExpression:
		if n.TargetType == nil {
			return nil
		}
		return i.ValueOf(n.TargetType, ctx)
	case *decl.ExpressionInitializer:
		return i.ValueOf(n.Value, ctx)

	// Side effects or runtime state
	case *decl.PostfixExpression, *decl.FunctionCallExpression, *decl.ArrayAccessExpression,
		*decl.MemberAccessExpression, *decl.ListInitializer:
		return nil
	}
	panic(fmt.Errorf("ValueOf not implemented for %T", node))
}

func (i *Interpreter) typeOnly(n decl.Node, ctx *EvaluationContext) *decl.Value {
	t := i.types.TypeIn(n, ctx)
	if t == nil {
		return nil
	}
	return decl.NewValue(t, nil)
}

// Evaluate returns the effective value of a declarator under ctx.  Results
// are memoized in ctx by declarator identity.  A declarator whose value
// depends on itself is not constant.
func (i *Interpreter) Evaluate(d *decl.Declarator, ctx *EvaluationContext) *decl.Value {
	if ctx == nil {
		ctx = NewEvaluationContext(nil)
	}
	if v, ok := ctx.GetValue(d); ok {
		return v
	}
	if ctx.isEvaluating(d) {
		slog.Debug("cyclic constant definition", "name", d.Name, "pos", d.Pos().LineColStr())
		return nil
	}
	ctx.beginEvaluating(d)
	defer ctx.endEvaluating(d)

	var candidates []decl.Expression
	if ctx.Definition == nil {
		if init := d.InitialValue(); init != nil {
			candidates = append(candidates, init)
		}
	} else {
		candidates = stateCandidates(ctx.Definition, d)
	}
	if len(candidates) == 0 {
		return nil
	}
	v := i.ValueOf(candidates[len(candidates)-1], ctx)
	if v == nil {
		return nil
	}
	return ctx.NewValue(d, v)
}

// StateValue evaluates the state variable name as seen from def.
func (i *Interpreter) StateValue(def decl.Definition, name string) (*decl.Value, error) {
	if def == nil {
		return nil, ErrNoDefinition
	}
	d := i.FindStateDeclarator(def, name)
	if d == nil {
		return nil, fmt.Errorf("'%s' in %s: %w", name, def.EntityName(), ErrNotFound)
	}
	v := i.Evaluate(d, NewEvaluationContext(def))
	if v.IsNil() {
		return nil, notConstant(d)
	}
	return v, nil
}

// EffectiveDeclarator finds the state declarator named name that governs its
// value in def.  In a core the core's own declarations and assignments win,
// then the provided instruction sets are searched last to first.  In an
// instruction set a declarator counts if it is initialized or assigned there,
// otherwise the supertype is searched.
func (i *Interpreter) EffectiveDeclarator(def decl.Definition, name string) *decl.Declarator {
	return effectiveDeclarator(def, name, map[decl.Definition]bool{})
}

func effectiveDeclarator(def decl.Definition, name string, visited map[decl.Definition]bool) *decl.Declarator {
	if def == nil || visited[def] {
		return nil
	}
	visited[def] = true
	body := def.Body()
	assigned := func() *decl.Declarator {
		for idx := len(body.Assignments) - 1; idx >= 0; idx-- {
			if target, _ := assignedDeclarator(body.Assignments[idx]); target != nil && target.Name == name {
				return target
			}
		}
		return nil
	}

	switch d := def.(type) {
	case *decl.CoreDef:
		for _, sd := range body.StateDeclarators() {
			if sd.Name == name {
				return sd
			}
		}
		if target := assigned(); target != nil {
			return target
		}
		provided := d.Provided()
		for idx := len(provided) - 1; idx >= 0; idx-- {
			if found := effectiveDeclarator(provided[idx], name, visited); found != nil {
				return found
			}
		}
	case *decl.InstructionSet:
		for _, sd := range body.StateDeclarators() {
			if sd.Name == name && sd.Initializer != nil {
				return sd
			}
		}
		if target := assigned(); target != nil {
			return target
		}
		return effectiveDeclarator(d.Super(), name, visited)
	}
	return nil
}

// FindStateDeclarator returns the innermost state declarator named name
// visible in def, whether or not it is initialized.
func (i *Interpreter) FindStateDeclarator(def decl.Definition, name string) *decl.Declarator {
	chain := DefinitionChain(def)
	for idx := len(chain) - 1; idx >= 0; idx-- {
		for _, sd := range chain[idx].Body().StateDeclarators() {
			if sd.Name == name {
				return sd
			}
		}
	}
	return nil
}

func (i *Interpreter) infixValue(n *decl.InfixExpression, ctx *EvaluationContext) *decl.Value {
	if decl.IsComparisonOperator(n.Operator) {
		return decl.NewValue(decl.BoolType, nil)
	}
	switch n.Operator {
	case "<<", ">>":
		left := i.ValueOf(n.Left, ctx)
		if left == nil || !left.Type.IsIntegral() {
			return nil
		}
		return left
	}

	left := i.ValueOf(n.Left, ctx)
	right := i.ValueOf(n.Right, ctx)
	if left == nil || right == nil {
		return nil
	}
	switch n.Operator {
	case "|", "&", "^":
		if !left.Type.IsIntegral() || !right.Type.IsIntegral() || left.Type.Kind != right.Type.Kind {
			return nil
		}
		return left
	case "+", "-", "*", "/":
		if left.Type == nil || !left.Type.Equals(right.Type) {
			return nil
		}
		return arithmetic(n.Operator, left, right)
	case "%":
		if !left.Type.IsIntegral() || !right.Type.IsIntegral() {
			return nil
		}
		return arithmetic(n.Operator, left, right)
	case "::":
		if !left.Type.IsIntegral() || !right.Type.IsIntegral() {
			return nil
		}
		t := decl.UnsignedType(left.Type.Width + right.Type.Width)
		l, lok := left.BigInt()
		r, rok := right.BigInt()
		if !lok || !rok {
			return decl.NewValue(t, nil)
		}
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(right.Type.Width)), big.NewInt(1))
		out := new(big.Int).Lsh(l, uint(right.Type.Width))
		return decl.IntValue(t, out.Or(out, r.And(r, mask)))
	}
	return nil
}

// arithmetic applies op to the unwrapped payloads.  The result keeps the left
// operand's type.  Operands without payload give a typed value without
// payload; division by zero is not constant.
func arithmetic(op string, left, right *decl.Value) *decl.Value {
	if left.IsNil() || right.IsNil() {
		return decl.NewValue(left.Type, nil)
	}
	if l, ok := left.BigInt(); ok {
		r, ok := right.BigInt()
		if !ok {
			return nil
		}
		switch op {
		case "+":
			return decl.IntValue(left.Type, l.Add(l, r))
		case "-":
			return decl.IntValue(left.Type, l.Sub(l, r))
		case "*":
			return decl.IntValue(left.Type, l.Mul(l, r))
		case "/":
			if r.Sign() == 0 {
				return nil
			}
			return decl.IntValue(left.Type, l.Quo(l, r))
		case "%":
			if r.Sign() == 0 {
				return nil
			}
			return decl.IntValue(left.Type, l.Rem(l, r))
		}
		return nil
	}
	if l, ok := left.Float(); ok {
		r, ok := right.Float()
		if !ok {
			return nil
		}
		switch op {
		case "+":
			return decl.FloatValue(left.Type, l+r)
		case "-":
			return decl.FloatValue(left.Type, l-r)
		case "*":
			return decl.FloatValue(left.Type, l*r)
		case "/":
			if r == 0 {
				return nil
			}
			return decl.FloatValue(left.Type, l/r)
		}
	}
	return nil
}

func (i *Interpreter) prefixValue(n *decl.PrefixExpression, ctx *EvaluationContext) *decl.Value {
	switch n.Operator {
	case "~", "+":
		return i.ValueOf(n.Operand, ctx)
	case "!":
		v := i.ValueOf(n.Operand, ctx)
		if v == nil {
			return nil
		}
		truth, known := v.IsTrue()
		if !known {
			return decl.NewValue(decl.BoolType, nil)
		}
		return decl.BoolValue(!truth)
	case "-":
		v := i.ValueOf(n.Operand, ctx)
		if v == nil {
			return nil
		}
		if b, ok := v.BigInt(); ok {
			return decl.IntValue(v.Type, b.Neg(b))
		}
		if f, ok := v.Float(); ok {
			return decl.FloatValue(v.Type, -f)
		}
		return decl.NewValue(v.Type, nil)
	}
	// ++ and -- have side effects, & and * need runtime state
	return nil
}
