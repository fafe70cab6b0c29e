package parser

import (
	"fmt"
	"strings"

	"github.com/panyam/coredsl/decl"
	gfn "github.com/panyam/goutils/fn"
)

// ChainedExpr is a flat run of operands separated by binary operators, as
// collected by the parser before precedences are applied.
type ChainedExpr struct {
	Children  []decl.Expression
	Operators []string

	// Expression after operators have been taken into account
	UnchainedExpr decl.Expression
}

func (c *ChainedExpr) String() string {
	return fmt.Sprintf("(%s)", strings.Join(gfn.Map(c.Children, func(e decl.Expression) string { return e.String() }), ", "))
}

type Associativity int

const (
	AssocNone Associativity = iota
	AssocLeft
	AssocRight
)

type Precedencer interface {
	PrecedenceFor(operator string) int
	AssociativityFor(operator string) Associativity
}

// coreDSLPrecedencer orders the binary operators of CoreDSL.  Bit
// concatenation (::) binds tighter than comparisons but looser than shifts.
type coreDSLPrecedencer struct{}

var binaryPrecedences = map[string]int{
	"||": 1,
	"&&": 2,
	"|":  3,
	"^":  4,
	"&":  5,
	"==": 6, "!=": 6,
	"<": 7, ">": 7, "<=": 7, ">=": 7,
	"::": 8,
	"<<": 9, ">>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
}

// IsBinaryOperator returns true for operators handled by ChainedExpr.
func IsBinaryOperator(op string) bool {
	_, ok := binaryPrecedences[op]
	return ok
}

func (dp *coreDSLPrecedencer) PrecedenceFor(operator string) int {
	return binaryPrecedences[operator]
}

func (dp *coreDSLPrecedencer) AssociativityFor(operator string) Associativity {
	return AssocLeft
}

// Unchain converts the ChainedExpr into a tree of InfixExpression nodes,
// respecting operator precedence and associativity provided by the Precedencer.
// The result is stored in c.UnchainedExpr and is nil if the chain is malformed.
func (c *ChainedExpr) Unchain(preceder Precedencer) {
	if c == nil {
		return
	}
	c.UnchainedExpr = nil
	if len(c.Children) == 0 || len(c.Children) != len(c.Operators)+1 {
		return
	}
	if len(c.Operators) == 0 {
		c.UnchainedExpr = c.Children[0]
		return
	}

	p := preceder
	if p == nil {
		p = &coreDSLPrecedencer{}
	}

	childIdx := 0
	opIdx := 0
	result := c.parseExpressionRecursive(p, &childIdx, &opIdx, 0)
	if childIdx != len(c.Children) || opIdx != len(c.Operators) {
		return
	}
	c.UnchainedExpr = result
}

// parseExpressionRecursive implements precedence climbing over the operand
// and operator lists, only consuming operators with precedence >= minPrecedence.
func (c *ChainedExpr) parseExpressionRecursive(p Precedencer, childIdx *int, opIdx *int, minPrecedence int) decl.Expression {
	if *childIdx >= len(c.Children) {
		return nil
	}

	lhs := c.Children[*childIdx]
	if lhs == nil {
		return nil
	}
	*childIdx++

	for *opIdx < len(c.Operators) {
		currentOp := c.Operators[*opIdx]
		opPrec := p.PrecedenceFor(currentOp)
		if opPrec < minPrecedence {
			break
		}
		*opIdx++

		// Left and non associative operators only let strictly tighter
		// operators into their right operand.
		nextMinPrecedence := opPrec + 1
		if p.AssociativityFor(currentOp) == AssocRight {
			nextMinPrecedence = opPrec
		}

		rhs := c.parseExpressionRecursive(p, childIdx, opIdx, nextMinPrecedence)
		if rhs == nil {
			return nil
		}

		newExpr := &decl.InfixExpression{
			Left:     lhs,
			Operator: currentOp,
			Right:    rhs,
		}
		newExpr.NodeInfo = decl.NodeInfo{StartPos: lhs.Pos(), StopPos: rhs.End()}
		lhs = newExpr
	}
	return lhs
}
