package runtime

import (
	"fmt"
	"math/big"

	"github.com/panyam/coredsl/decl"
)

// TypeProvider infers the static type of syntax nodes.  A nil result means
// the node has no type; it is never replaced by a default.
type TypeProvider struct {
	parents *decl.ParentIndex
	interp  *Interpreter
}

// NewTypeProvider returns a type provider backed by a fresh Interpreter.
func NewTypeProvider(parents *decl.ParentIndex) *TypeProvider {
	return NewInterpreter(parents).Types()
}

// Interpreter returns the evaluator used for explicit integer widths.
func (t *TypeProvider) Interpreter() *Interpreter { return t.interp }

// TypeOf returns the type of node within def.  Without a definition nothing
// has a type.
func (t *TypeProvider) TypeOf(node decl.Node, def decl.Definition) *decl.DataType {
	if def == nil {
		return nil
	}
	return t.TypeIn(node, NewEvaluationContext(def))
}

// MustTypeOf is TypeOf for callers that need a type.
func (t *TypeProvider) MustTypeOf(node decl.Node, def decl.Definition) (*decl.DataType, error) {
	if def == nil {
		return nil, ErrNoDefinition
	}
	out := t.TypeOf(node, def)
	if out == nil {
		return nil, fmt.Errorf("%s: '%s': %w", node.Pos().LineColStr(), node, ErrNoType)
	}
	return out, nil
}

// TypeForExpression types e against its enclosing core, or failing that its
// enclosing instruction set.
func (t *TypeProvider) TypeForExpression(e decl.Node) *decl.DataType {
	return t.TypeOf(e, EnclosingDefinition(t.parents, e))
}

func (t *TypeProvider) IsComparable(left, right *decl.DataType) bool {
	return decl.IsComparable(left, right)
}

func (t *TypeProvider) IsIntegral(dt *decl.DataType) bool { return dt.IsIntegral() }

// TypeIn types node under an existing evaluation context.  Explicit integer
// widths are evaluated in a child of ctx.  Literals and type specifiers with
// fixed widths are typed even when ctx has no definition.
func (t *TypeProvider) TypeIn(node decl.Node, ctx *EvaluationContext) *decl.DataType {
	if ctx == nil {
		ctx = NewEvaluationContext(nil)
	}
	switch n := node.(type) {
	// Constants
	case *decl.BoolConstant:
		return decl.BoolType
	case *decl.CharacterConstant:
		return decl.SignedType(8)
	case *decl.FloatConstant:
		lit, err := decl.ParseDecimal(n.Value)
		if err != nil {
			return nil
		}
		return decl.FloatType(lit.Size)
	case *decl.IntegerConstant:
		return literalType(n.Literal())
	case *decl.StringConstant:
		return decl.SignedType(0)

	// Type specifiers
	case *decl.BoolTypeSpecifier:
		return decl.BoolType
	case *decl.VoidTypeSpecifier:
		return decl.VoidType
	case *decl.EnumTypeSpecifier:
		return decl.SignedType(32)
	case *decl.UserTypeSpecifier:
		return decl.CompositeType()
	case *decl.FloatTypeSpecifier:
		if n.Shorthand == "double" {
			return decl.FloatType(64)
		}
		return decl.FloatType(32)
	case *decl.IntegerTypeSpecifier:
		return t.integerSpecType(n, ctx)

	// Named entities
	case *decl.Declarator:
		switch owner := t.parents.Parent(n).(type) {
		case *decl.Declaration:
			return t.TypeIn(owner.Type, ctx)
		case *decl.ParameterDeclaration:
			return t.TypeIn(owner.Type, ctx)
		}
		return nil
	case *decl.FunctionDefinition:
		return t.TypeIn(n.ReturnType, ctx)
	case *decl.BitField:
		width, ok := bitFieldWidth(n)
		if !ok {
			return nil
		}
		return decl.UnsignedType(width)
	case *decl.BitValue:
		if w := n.Width(); w > 0 {
			return decl.UnsignedType(w)
		}
		return nil
	case *decl.Encoding:
		size := 0
		for _, f := range n.Fields {
			if ft := t.TypeIn(f, ctx); ft != nil {
				size += ft.Width
			}
		}
		return decl.UnsignedType(size)
	case *decl.InstructionSet, *decl.CoreDef, *decl.Instruction, *decl.AlwaysBlock:
		return nil

	// Expressions
	case *decl.EntityReference:
		if n.Target == nil || n.Target.Target == nil {
			return nil
		}
		return t.TypeIn(n.Target.Target, ctx)
	case *decl.ParenthesisExpression:
		return t.TypeIn(n.Inner, ctx)
	case *decl.AssignmentExpression:
		return t.TypeIn(n.Value, ctx)
	case *decl.ConditionalExpression:
		return t.TypeIn(n.ThenExpression, ctx)
	case *decl.InfixExpression:
		return t.infixType(n, ctx)
	case *decl.PrefixExpression:
		switch n.Operator {
		case "++", "--", "~", "+", "-":
			return t.TypeIn(n.Operand, ctx)
		case "!":
			return decl.BoolType
		}
		return nil
	case *decl.PostfixExpression:
		return t.TypeIn(n.Operand, ctx)
	case *decl.CastExpression:
		if n.TargetType != nil {
			return t.TypeIn(n.TargetType, ctx)
		}
		ot := t.TypeIn(n.Operand, ctx)
		if ot == nil || n.Signedness == "" {
			return nil
		}
		return decl.IntegralType(n.Signedness == "unsigned", ot.Width)
	case *decl.ArrayAccessExpression:
		return t.TypeIn(n.Target, ctx)
	case *decl.MemberAccessExpression:
		if n.Member == nil || n.Member.Target == nil {
			return nil
		}
		return t.TypeIn(n.Member.Target, ctx)
	case *decl.FunctionCallExpression:
		return nil
	case *decl.ExpressionInitializer:
		return t.TypeIn(n.Value, ctx)
	case *decl.ListInitializer:
		return nil
	}
	panic(fmt.Errorf("TypeIn not implemented for %T", node))
}

func (t *TypeProvider) integerSpecType(n *decl.IntegerTypeSpecifier, ctx *EvaluationContext) *decl.DataType {
	unsigned := n.IsUnsigned()
	if n.Size != nil {
		// a width may reach its own specifier, e.g. through a function's return type
		if ctx.isEvaluating(n.Size) {
			return nil
		}
		child := ctx.Child()
		child.beginEvaluating(n.Size)
		defer child.endEvaluating(n.Size)
		v := t.interp.ValueOf(n.Size, child)
		width, ok := v.Int64()
		if !ok || width <= 0 {
			return nil
		}
		return decl.IntegralType(unsigned, int(width))
	}
	switch n.Shorthand {
	case "char":
		return decl.IntegralType(unsigned, 8)
	case "short":
		return decl.IntegralType(unsigned, 16)
	case "int":
		return decl.IntegralType(unsigned, 32)
	case "long":
		return decl.IntegralType(unsigned, 64)
	case "":
		// plain `signed` or `unsigned`
		if n.Signedness != "" {
			return decl.IntegralType(unsigned, 32)
		}
	}
	return nil
}

func (t *TypeProvider) infixType(n *decl.InfixExpression, ctx *EvaluationContext) *decl.DataType {
	if decl.IsComparisonOperator(n.Operator) {
		return decl.BoolType
	}
	left := t.TypeIn(n.Left, ctx)
	switch n.Operator {
	case "<<", ">>":
		if left.IsIntegral() {
			return left
		}
		return nil
	}

	right := t.TypeIn(n.Right, ctx)
	if left == nil || right == nil {
		return nil
	}
	switch n.Operator {
	case "|", "&", "^":
		if left.IsIntegral() && left.Kind == right.Kind {
			return &decl.DataType{Kind: left.Kind, Width: max(left.Width, right.Width)}
		}
	case "+", "-", "*", "/":
		if left.Equals(right) {
			return left
		}
	case "%":
		if left.IsIntegral() && left.Equals(right) {
			return left
		}
	case "::":
		if left.IsIntegral() && right.IsIntegral() {
			return decl.UnsignedType(left.Width + right.Width)
		}
	}
	return nil
}

// literalType types an integer literal from its lexical form.  Sized
// hardware literals are unsigned.
func literalType(lit *decl.IntegerWithRadix) *decl.DataType {
	if lit == nil {
		return nil
	}
	return decl.IntegralType(lit.Signedness != decl.SignednessSigned, lit.Size)
}

func bitFieldWidth(b *decl.BitField) (int, bool) {
	if b.StartIndex == nil || b.EndIndex == nil {
		return 0, false
	}
	start, end := b.StartIndex.Literal(), b.EndIndex.Literal()
	if start == nil || end == nil {
		return 0, false
	}
	diff := new(big.Int).Sub(start.Int(), end.Int())
	diff.Abs(diff)
	if !diff.IsInt64() {
		return 0, false
	}
	return int(diff.Int64()) + 1, true
}
