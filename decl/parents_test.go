package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// InstructionSet X { architectural_state { int a = 1; int b = a; } }
func buildSmallDocument() (*DescriptionContent, *Declarator, *Declarator, *EntityReference) {
	a := &Declarator{Name: "a", Initializer: &ExpressionInitializer{Value: &IntegerConstant{Value: "1"}}}
	ref := &EntityReference{Target: &Reference{Name: "a"}}
	b := &Declarator{Name: "b", Initializer: &ExpressionInitializer{Value: ref}}
	isa := &InstructionSet{Name: "X"}
	isa.Declarations = []*DeclarationStatement{
		{Declaration: &Declaration{Type: &IntegerTypeSpecifier{Shorthand: "int"}, Declarators: []*Declarator{a}}},
		{Declaration: &Declaration{Type: &IntegerTypeSpecifier{Shorthand: "int"}, Declarators: []*Declarator{b}}},
	}
	doc := &DescriptionContent{Definitions: []Definition{isa}}
	return doc, a, b, ref
}

func TestParentIndex(t *testing.T) {
	doc, a, b, ref := buildSmallDocument()
	idx := NewParentIndex().Index(doc)

	isa, found := ContainerOf[*InstructionSet](idx, ref)
	require.True(t, found)
	assert.Equal(t, "X", isa.Name)

	decl, found := ContainerOf[*Declarator](idx, ref)
	require.True(t, found)
	assert.Same(t, b, decl)

	assert.Same(t, doc, idx.Document(a))
	assert.True(t, idx.IsAncestor(b, ref))
	assert.False(t, idx.IsAncestor(a, ref))
	assert.Nil(t, idx.Parent(doc))

	_, found = ContainerOf[*FunctionDefinition](idx, ref)
	assert.False(t, found)
}

func TestWalkVisitsInDocumentOrder(t *testing.T) {
	doc, _, _, _ := buildSmallDocument()
	var names []string
	Walk(doc, func(n Node) bool {
		if d, ok := n.(*Declarator); ok {
			names = append(names, d.Name)
		}
		return true
	})
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestChildrenSkipsAbsentBranches(t *testing.T) {
	ifStmt := &IfStatement{Condition: &BoolConstant{Value: true}, Then: &EmptyStatement{}}
	assert.Len(t, Children(ifStmt), 2)
}
