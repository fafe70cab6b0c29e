package parser

import (
	"testing"

	"github.com/panyam/coredsl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(name string, start, end int) decl.Expression {
	e := &decl.EntityReference{Target: &decl.Reference{Name: name}}
	e.NodeInfo = decl.NodeInfo{StartPos: decl.Location{Pos: start}, StopPos: decl.Location{Pos: end}}
	return e
}

func newTestChainedExpr(children []decl.Expression, operators []string) *ChainedExpr {
	return &ChainedExpr{Children: children, Operators: operators}
}

func assertInfix(t *testing.T, expr decl.Expression, expectedOp string, expectedLeft, expectedRight decl.Expression) *decl.InfixExpression {
	t.Helper()
	infix, ok := expr.(*decl.InfixExpression)
	require.True(t, ok, "Expected *InfixExpression, got %T", expr)
	assert.Equal(t, expectedOp, infix.Operator)
	if expectedLeft != nil {
		assert.Same(t, expectedLeft, infix.Left)
		assert.Equal(t, expectedLeft.Pos(), infix.Pos())
	}
	if expectedRight != nil {
		assert.Same(t, expectedRight, infix.Right)
		assert.Equal(t, expectedRight.End(), infix.End())
	}
	return infix
}

func TestChainedExpr_Unchain_NilReceiver(t *testing.T) {
	var c *ChainedExpr
	c.Unchain(nil) // Should not panic
	assert.Nil(t, c)
}

func TestChainedExpr_Unchain_Malformed(t *testing.T) {
	a, b := ref("a", 0, 1), ref("b", 4, 5)

	c := newTestChainedExpr(nil, nil)
	c.Unchain(nil)
	assert.Nil(t, c.UnchainedExpr)

	c = newTestChainedExpr([]decl.Expression{a, b}, nil)
	c.Unchain(nil)
	assert.Nil(t, c.UnchainedExpr)

	c = newTestChainedExpr([]decl.Expression{a}, []string{"+"})
	c.Unchain(nil)
	assert.Nil(t, c.UnchainedExpr)
}

func TestChainedExpr_Unchain_SingleChild(t *testing.T) {
	a := ref("a", 0, 1)
	c := newTestChainedExpr([]decl.Expression{a}, nil)
	c.Unchain(nil)
	assert.Same(t, a, c.UnchainedExpr)
}

func TestChainedExpr_Unchain_Precedence(t *testing.T) {
	a, b, d := ref("a", 0, 1), ref("b", 4, 5), ref("d", 8, 9)

	// a + b * d => a + (b * d)
	c := newTestChainedExpr([]decl.Expression{a, b, d}, []string{"+", "*"})
	c.Unchain(nil)
	root := assertInfix(t, c.UnchainedExpr, "+", a, nil)
	assertInfix(t, root.Right, "*", b, d)

	// a * b + d => (a * b) + d
	c = newTestChainedExpr([]decl.Expression{a, b, d}, []string{"*", "+"})
	c.Unchain(nil)
	root = assertInfix(t, c.UnchainedExpr, "+", nil, d)
	assertInfix(t, root.Left, "*", a, b)
}

func TestChainedExpr_Unchain_LeftAssociative(t *testing.T) {
	a, b, d := ref("a", 0, 1), ref("b", 4, 5), ref("d", 8, 9)
	c := newTestChainedExpr([]decl.Expression{a, b, d}, []string{"-", "-"})
	c.Unchain(nil)
	root := assertInfix(t, c.UnchainedExpr, "-", nil, d)
	assertInfix(t, root.Left, "-", a, b)
}

func TestChainedExpr_Unchain_ConcatenationLevel(t *testing.T) {
	tests := []struct {
		ops      []string
		expected string
	}{
		{[]string{"<<", "::"}, "((a << b) :: d)"},
		{[]string{"::", "<<"}, "(a :: (b << d))"},
		{[]string{"::", "=="}, "((a :: b) == d)"},
		{[]string{"<", "::"}, "(a < (b :: d))"},
		{[]string{"||", "&&"}, "(a || (b && d))"},
		{[]string{"|", "^"}, "(a | (b ^ d))"},
		{[]string{"^", "&"}, "(a ^ (b & d))"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			c := newTestChainedExpr([]decl.Expression{ref("a", 0, 1), ref("b", 4, 5), ref("d", 8, 9)}, tt.ops)
			c.Unchain(nil)
			require.NotNil(t, c.UnchainedExpr)
			assert.Equal(t, tt.expected, c.UnchainedExpr.String())
		})
	}
}

type rightAssocPrecedencer struct{ coreDSLPrecedencer }

func (r *rightAssocPrecedencer) AssociativityFor(op string) Associativity { return AssocRight }

func TestChainedExpr_Unchain_RightAssociative(t *testing.T) {
	a, b, d := ref("a", 0, 1), ref("b", 4, 5), ref("d", 8, 9)
	c := newTestChainedExpr([]decl.Expression{a, b, d}, []string{"-", "-"})
	c.Unchain(&rightAssocPrecedencer{})
	root := assertInfix(t, c.UnchainedExpr, "-", a, nil)
	assertInfix(t, root.Right, "-", b, d)
}
