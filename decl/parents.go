package decl

import (
	"fmt"
	"reflect"
)

// ParentIndex maps every node of one or more documents to its syntactic
// parent.  Nodes do not carry back pointers; scope resolution and constant
// evaluation walk upwards through this index instead.
type ParentIndex struct {
	parents map[Node]Node
	roots   map[Node]bool
}

func NewParentIndex() *ParentIndex {
	return &ParentIndex{parents: map[Node]Node{}, roots: map[Node]bool{}}
}

// Index records the parent of every node reachable from root.  Indexing the
// same root twice is a no-op.
func (p *ParentIndex) Index(root Node) *ParentIndex {
	if root == nil || p.roots[root] {
		return p
	}
	p.roots[root] = true
	var visit func(n Node)
	visit = func(n Node) {
		for _, child := range Children(n) {
			p.parents[child] = n
			visit(child)
		}
	}
	visit(root)
	return p
}

// Parent returns the syntactic parent of n or nil for a root.
func (p *ParentIndex) Parent(n Node) Node {
	if p == nil {
		return nil
	}
	return p.parents[n]
}

// Root returns the top most ancestor of n.
func (p *ParentIndex) Root(n Node) Node {
	for {
		parent := p.Parent(n)
		if parent == nil {
			return n
		}
		n = parent
	}
}

// Document returns the document n belongs to, or nil if n is not indexed.
func (p *ParentIndex) Document(n Node) *DescriptionContent {
	doc, _ := p.Root(n).(*DescriptionContent)
	return doc
}

// ContainerOf returns the closest strict ancestor of n with type T.
func ContainerOf[T Node](p *ParentIndex, n Node) (out T, found bool) {
	for curr := p.Parent(n); curr != nil; curr = p.Parent(curr) {
		if t, ok := curr.(T); ok {
			return t, true
		}
	}
	return
}

// IsAncestor returns true if ancestor is n or one of n's ancestors.
func (p *ParentIndex) IsAncestor(ancestor, n Node) bool {
	for curr := n; curr != nil; curr = p.Parent(curr) {
		if curr == ancestor {
			return true
		}
	}
	return false
}

// Walk visits n and all of its descendants in document order.  Returning
// false from visit skips the children of that node.
func Walk(n Node, visit func(n Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}

// Children returns the direct syntactic children of a node in document order.
// Cross references (Reference) are children of the node that holds them, but
// their targets are not.
func Children(n Node) (out []Node) {
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	switch n := n.(type) {
	case *DescriptionContent:
		for _, imp := range n.Imports {
			add(imp)
		}
		for _, d := range n.Definitions {
			add(d)
		}
	case *Import:
	case *InstructionSet:
		if n.SuperType != nil {
			add(n.SuperType)
		}
		out = append(out, bodyChildren(&n.ISABody)...)
	case *CoreDef:
		for _, r := range n.ProvidedInstructionSets {
			add(r)
		}
		out = append(out, bodyChildren(&n.ISABody)...)
	case *Reference:
	case *Attribute:
		for _, p := range n.Parameters {
			add(p)
		}
	case *FunctionDefinition:
		add(n.ReturnType)
		for _, p := range n.Parameters {
			add(p)
		}
		for _, a := range n.Attributes {
			add(a)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ParameterDeclaration:
		add(n.Type)
		if n.Declarator != nil {
			add(n.Declarator)
		}
	case *Instruction:
		for _, a := range n.Attributes {
			add(a)
		}
		if n.Encoding != nil {
			add(n.Encoding)
		}
		if n.Assembly != nil {
			add(n.Assembly)
		}
		add(n.Behavior)
	case *AssemblyDescription:
	case *AlwaysBlock:
		for _, a := range n.Attributes {
			add(a)
		}
		add(n.Behavior)
	case *Encoding:
		for _, f := range n.Fields {
			add(f)
		}
	case *BitField:
		if n.StartIndex != nil {
			add(n.StartIndex)
		}
		if n.EndIndex != nil {
			add(n.EndIndex)
		}
	case *BitValue:
	case *Declaration:
		for _, a := range n.Attributes {
			add(a)
		}
		add(n.Type)
		for _, d := range n.Declarators {
			add(d)
		}
	case *Declarator:
		for _, d := range n.Dimensions {
			add(d)
		}
		for _, a := range n.Attributes {
			add(a)
		}
		add(n.Initializer)
	case *ExpressionInitializer:
		add(n.Value)
	case *ListInitializer:
		for _, i := range n.Initializers {
			add(i)
		}

	// Statements
	case *ExpressionStatement:
		add(n.Expression)
	case *DeclarationStatement:
		add(n.Declaration)
	case *CompoundStatement:
		for _, s := range n.Items {
			add(s)
		}
	case *ForLoop:
		if n.StartDeclaration != nil {
			add(n.StartDeclaration)
		}
		for _, e := range n.StartExpressions {
			add(e)
		}
		add(n.Condition)
		for _, e := range n.LoopExpressions {
			add(e)
		}
		add(n.Body)
	case *IfStatement:
		add(n.Condition, n.Then, n.Else)
	case *WhileLoop:
		add(n.Condition, n.Body)
	case *DoWhileLoop:
		add(n.Body, n.Condition)
	case *SwitchStatement:
		add(n.Condition)
		for _, s := range n.Sections {
			add(s)
		}
	case *SwitchSection:
		add(n.Case)
		for _, s := range n.Items {
			add(s)
		}
	case *ReturnStatement:
		add(n.Value)
	case *SpawnStatement:
		add(n.Body)
	case *BreakStatement, *ContinueStatement, *EmptyStatement:

	// Expressions
	case *BoolConstant, *IntegerConstant, *FloatConstant, *CharacterConstant, *StringConstant:
	case *EntityReference:
		if n.Target != nil {
			add(n.Target)
		}
	case *InfixExpression:
		add(n.Left, n.Right)
	case *PrefixExpression:
		add(n.Operand)
	case *PostfixExpression:
		add(n.Operand)
	case *AssignmentExpression:
		add(n.Target, n.Value)
	case *ConditionalExpression:
		add(n.Condition, n.ThenExpression, n.ElseExpression)
	case *CastExpression:
		add(n.TargetType, n.Operand)
	case *ArrayAccessExpression:
		add(n.Target, n.Index, n.IndexUpper)
	case *MemberAccessExpression:
		add(n.Target)
		if n.Member != nil {
			add(n.Member)
		}
	case *FunctionCallExpression:
		add(n.Target)
		for _, a := range n.Arguments {
			add(a)
		}
	case *ParenthesisExpression:
		add(n.Inner)

	// Types
	case *BoolTypeSpecifier, *VoidTypeSpecifier, *FloatTypeSpecifier, *EnumTypeSpecifier, *UserTypeSpecifier:
	case *IntegerTypeSpecifier:
		add(n.Size)
	default:
		panic(fmt.Errorf("Children not implemented for %T", n))
	}
	return
}

func bodyChildren(b *ISABody) (out []Node) {
	for _, a := range b.CommonInstructionAttributes {
		out = append(out, a)
	}
	for _, d := range b.Declarations {
		out = append(out, d)
	}
	for _, a := range b.Assignments {
		out = append(out, a)
	}
	for _, f := range b.Functions {
		out = append(out, f)
	}
	for _, i := range b.Instructions {
		out = append(out, i)
	}
	for _, ab := range b.AlwaysBlocks {
		out = append(out, ab)
	}
	return
}

// isNilNode catches both untyped nils and typed nil pointers stored in an
// interface, eg an absent Else branch.
func isNilNode(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
