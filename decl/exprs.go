package decl

import (
	"fmt"
	"strconv"
)

// Expression is any expression node.  The set of expression kinds is closed.
type Expression interface {
	Node
	exprNode()
}

type ExprBase struct {
	NodeInfo
}

func (e *ExprBase) exprNode() {}

// --- Constants ---

type BoolConstant struct {
	ExprBase
	Value bool
}

func (b *BoolConstant) String() string { return strconv.FormatBool(b.Value) }

// IntegerConstant keeps the literal text; it is parsed on demand with
// ParseInteger so that width and radix information is not lost.
type IntegerConstant struct {
	ExprBase
	Value string
}

func (i *IntegerConstant) String() string { return i.Value }

// Literal returns the parsed literal or nil if the text is malformed.
func (i *IntegerConstant) Literal() *IntegerWithRadix {
	if i == nil {
		return nil
	}
	lit, err := ParseInteger(i.Value)
	if err != nil {
		return nil
	}
	return lit
}

type FloatConstant struct {
	ExprBase
	Value string
}

func (f *FloatConstant) String() string { return f.Value }

// CharacterConstant holds the decoded character (without quotes).
type CharacterConstant struct {
	ExprBase
	Value rune
}

func (c *CharacterConstant) String() string { return strconv.QuoteRune(c.Value) }

// StringConstant holds the decoded string (adjacent literals already joined).
type StringConstant struct {
	ExprBase
	Value string
}

func (s *StringConstant) String() string { return strconv.Quote(s.Value) }

// --- References ---

// EntityReference is a name used as an expression.
type EntityReference struct {
	ExprBase
	Target *Reference
}

func (e *EntityReference) String() string { return e.Target.Name }

// Declarator returns the referenced declarator if the reference resolved to one.
func (e *EntityReference) Declarator() *Declarator {
	if e == nil || e.Target == nil {
		return nil
	}
	d, _ := e.Target.Target.(*Declarator)
	return d
}

// --- Operators ---

// InfixExpression is `left op right` for all binary operators including `::`.
type InfixExpression struct {
	ExprBase
	Left     Expression
	Operator string
	Right    Expression
}

func (b *InfixExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Operator, b.Right)
}

type PrefixExpression struct {
	ExprBase
	Operator string // ++ -- ~ ! - + & *
	Operand  Expression
}

func (p *PrefixExpression) String() string { return fmt.Sprintf("%s%s", p.Operator, p.Operand) }

type PostfixExpression struct {
	ExprBase
	Operand  Expression
	Operator string // ++ --
}

func (p *PostfixExpression) String() string { return fmt.Sprintf("%s%s", p.Operand, p.Operator) }

// AssignmentExpression covers `=` and the compound assignment operators.
type AssignmentExpression struct {
	ExprBase
	Target   Expression
	Operator string
	Value    Expression
}

func (a *AssignmentExpression) String() string {
	return fmt.Sprintf("%s %s %s", a.Target, a.Operator, a.Value)
}

type ConditionalExpression struct {
	ExprBase
	Condition      Expression
	ThenExpression Expression
	ElseExpression Expression
}

func (c *ConditionalExpression) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", c.Condition, c.ThenExpression, c.ElseExpression)
}

// CastExpression is either `(type) operand` (TargetType set) or
// `(signed|unsigned) operand` (only Signedness set).
type CastExpression struct {
	ExprBase
	TargetType TypeSpecifier
	Signedness string
	Operand    Expression
}

func (c *CastExpression) String() string {
	if c.TargetType != nil {
		return fmt.Sprintf("(%s) %s", c.TargetType, c.Operand)
	}
	return fmt.Sprintf("(%s) %s", c.Signedness, c.Operand)
}

// ArrayAccessExpression is `target[index]` or the bit range `target[index:end]`.
type ArrayAccessExpression struct {
	ExprBase
	Target     Expression
	Index      Expression
	IndexUpper Expression
}

func (a *ArrayAccessExpression) String() string {
	if a.IndexUpper != nil {
		return fmt.Sprintf("%s[%s:%s]", a.Target, a.Index, a.IndexUpper)
	}
	return fmt.Sprintf("%s[%s]", a.Target, a.Index)
}

// MemberAccessExpression is `target.member` or `target->member`.
type MemberAccessExpression struct {
	ExprBase
	Target   Expression
	Operator string // "." or "->"
	Member   *Reference
}

func (m *MemberAccessExpression) String() string {
	return fmt.Sprintf("%s%s%s", m.Target, m.Operator, m.Member.Name)
}

type FunctionCallExpression struct {
	ExprBase
	Target    Expression
	Arguments []Expression
}

func (f *FunctionCallExpression) String() string {
	return fmt.Sprintf("%s(%s)", f.Target, joinExprs(f.Arguments, ", "))
}

type ParenthesisExpression struct {
	ExprBase
	Inner Expression
}

func (p *ParenthesisExpression) String() string { return parenthesized(p.Inner) }

// parenthesized renders e wrapped in exactly one pair of parentheses.
// Infix and conditional expressions already render their own.
func parenthesized(e Expression) string {
	switch e.(type) {
	case *InfixExpression, *ConditionalExpression:
		return e.String()
	}
	return fmt.Sprintf("(%s)", e)
}

// Unparen strips any number of enclosing parentheses.
func Unparen(e Expression) Expression {
	for {
		p, ok := e.(*ParenthesisExpression)
		if !ok {
			return e
		}
		e = p.Inner
	}
}

// IsComparisonOperator returns true for operators that always produce a boolean.
func IsComparisonOperator(op string) bool {
	switch op {
	case "||", "&&", "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// IsAssignmentOperator returns true for `=` and the compound assignments.
func IsAssignmentOperator(op string) bool {
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "<<=", ">>=", "&=", "|=", "^=":
		return true
	}
	return false
}
