package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Statement represents a statement node in a behavior or function body.
type Statement interface {
	Node
	stmtNode()
}

type StmtBase struct {
	NodeInfo
}

func (s *StmtBase) stmtNode() {}

// ExpressionStatement wraps an expression used as a statement.  State
// assignments of instruction sets and cores are ExpressionStatements too.
type ExpressionStatement struct {
	StmtBase
	Expression Expression
}

func (e *ExpressionStatement) String() string { return e.Expression.String() + ";" }

// Assignment returns the plain `=` assignment this statement holds, if any.
func (e *ExpressionStatement) Assignment() *AssignmentExpression {
	if ae, ok := e.Expression.(*AssignmentExpression); ok && ae.Operator == "=" {
		return ae
	}
	return nil
}

// DeclarationStatement wraps a Declaration in statement position.
type DeclarationStatement struct {
	StmtBase
	Declaration *Declaration
}

func (d *DeclarationStatement) String() string { return d.Declaration.String() + ";" }

// CompoundStatement is a `{ ... }` block and defines a lexical scope.
type CompoundStatement struct {
	StmtBase
	Items []Statement
}

func (c *CompoundStatement) String() string {
	return fmt.Sprintf("{ %s }", strings.Join(gfn.Map(c.Items, func(s Statement) string { return s.String() }), " "))
}

// ForLoop is a C style for loop.  Either StartDeclaration or StartExpressions
// is set for the init clause.
type ForLoop struct {
	StmtBase
	StartDeclaration *Declaration
	StartExpressions []Expression
	Condition        Expression
	LoopExpressions  []Expression
	Body             Statement
}

func (f *ForLoop) String() string {
	init := ""
	if f.StartDeclaration != nil {
		init = f.StartDeclaration.String()
	} else {
		init = joinExprs(f.StartExpressions, ", ")
	}
	cond := ""
	if f.Condition != nil {
		cond = f.Condition.String()
	}
	return fmt.Sprintf("for (%s; %s; %s) %s", init, cond, joinExprs(f.LoopExpressions, ", "), f.Body)
}

type IfStatement struct {
	StmtBase
	Condition Expression
	Then      Statement
	Else      Statement
}

func (i *IfStatement) String() string {
	if i.Else != nil {
		return fmt.Sprintf("if %s %s else %s", parenthesized(i.Condition), i.Then, i.Else)
	}
	return fmt.Sprintf("if %s %s", parenthesized(i.Condition), i.Then)
}

type WhileLoop struct {
	StmtBase
	Condition Expression
	Body      Statement
}

func (w *WhileLoop) String() string {
	return fmt.Sprintf("while %s %s", parenthesized(w.Condition), w.Body)
}

type DoWhileLoop struct {
	StmtBase
	Body      Statement
	Condition Expression
}

func (d *DoWhileLoop) String() string {
	return fmt.Sprintf("do %s while %s;", d.Body, parenthesized(d.Condition))
}

type SwitchStatement struct {
	StmtBase
	Condition Expression
	Sections  []*SwitchSection
}

func (s *SwitchStatement) String() string {
	return fmt.Sprintf("switch %s { %s }", parenthesized(s.Condition),
		strings.Join(gfn.Map(s.Sections, func(c *SwitchSection) string { return c.String() }), " "))
}

// SwitchSection is one `case X:` or `default:` label with its statements.
// Case is nil for the default section.
type SwitchSection struct {
	NodeInfo
	Case  Expression
	Items []Statement
}

func (s *SwitchSection) String() string {
	label := "default:"
	if s.Case != nil {
		label = fmt.Sprintf("case %s:", s.Case)
	}
	return strings.TrimSpace(label + " " + strings.Join(gfn.Map(s.Items, func(s Statement) string { return s.String() }), " "))
}

type ReturnStatement struct {
	StmtBase
	Value Expression
}

func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", r.Value)
}

// SpawnStatement runs its body asynchronously to the instruction.
type SpawnStatement struct {
	StmtBase
	Body Statement
}

func (s *SpawnStatement) String() string { return fmt.Sprintf("spawn %s", s.Body) }

type BreakStatement struct{ StmtBase }

func (b *BreakStatement) String() string { return "break;" }

type ContinueStatement struct{ StmtBase }

func (c *ContinueStatement) String() string { return "continue;" }

type EmptyStatement struct{ StmtBase }

func (e *EmptyStatement) String() string { return ";" }
