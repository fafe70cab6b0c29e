package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

type CodePrinter interface {
	Indent(n int)
	Unindent(n int)
	Print(str string)
	Printf(fmt string, args ...any)
	Println(str string)
	String() string
}

func WithIndent(n int, cp CodePrinter, block func(cp CodePrinter)) {
	cp.Indent(n)
	defer cp.Unindent(n)
	block(cp)
}

type codePrinter struct {
	indent      int
	col         int
	builder     strings.Builder
	linebuilder strings.Builder
}

func NewCodePrinter() CodePrinter {
	return &codePrinter{}
}

func (c *codePrinter) Indent(n int) {
	c.indent += n
}

func (c *codePrinter) Unindent(n int) {
	c.indent -= n
	if c.indent < 0 {
		c.indent = 0
	}
}

func (c *codePrinter) Print(str string) {
	lines := strings.Split(str, "\n")
	for idx, l := range lines {
		if c.col == 0 && l != "" {
			// new line has started so add the indent string
			c.linebuilder.WriteString(c.IndentString())
		}
		c.linebuilder.WriteString(l)
		c.col += len(l)
		if idx < len(lines)-1 {
			c.col = 0
			c.builder.WriteString(c.linebuilder.String())
			c.builder.WriteRune('\n')
			c.linebuilder.Reset()
		}
	}
}

func (c *codePrinter) Println(str string) {
	c.Print(str + "\n")
}

func (c *codePrinter) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

func (c *codePrinter) IndentString() string {
	return strings.Repeat("  ", c.indent)
}

func (c *codePrinter) String() string {
	return c.builder.String() + c.linebuilder.String()
}

// PrettyPrint renders the document in canonical CoreDSL syntax.
func (d *DescriptionContent) PrettyPrint(cp CodePrinter) {
	for _, imp := range d.Imports {
		cp.Println(imp.String())
	}
	for i, def := range d.Definitions {
		if i > 0 || len(d.Imports) > 0 {
			cp.Println("")
		}
		PrettyPrintDefinition(cp, def)
	}
}

func PrettyPrintDefinition(cp CodePrinter, def Definition) {
	cp.Print(def.String())
	body := def.Body()
	cp.Println(" {")
	WithIndent(1, cp, func(cp CodePrinter) {
		if len(body.Declarations) > 0 || len(body.Assignments) > 0 {
			cp.Println("architectural_state {")
			WithIndent(1, cp, func(cp CodePrinter) {
				for _, d := range body.Declarations {
					cp.Println(d.String())
				}
				for _, a := range body.Assignments {
					cp.Println(a.String())
				}
			})
			cp.Println("}")
		}
		if len(body.Functions) > 0 {
			cp.Println("functions {")
			WithIndent(1, cp, func(cp CodePrinter) {
				for _, f := range body.Functions {
					prettyPrintFunction(cp, f)
				}
			})
			cp.Println("}")
		}
		if len(body.Instructions) > 0 || len(body.CommonInstructionAttributes) > 0 {
			cp.Print("instructions ")
			if len(body.CommonInstructionAttributes) > 0 {
				cp.Print(attrString(body.CommonInstructionAttributes) + " ")
			}
			cp.Println("{")
			WithIndent(1, cp, func(cp CodePrinter) {
				for _, instr := range body.Instructions {
					prettyPrintInstruction(cp, instr)
				}
			})
			cp.Println("}")
		}
		if len(body.AlwaysBlocks) > 0 {
			cp.Println("always {")
			WithIndent(1, cp, func(cp CodePrinter) {
				for _, ab := range body.AlwaysBlocks {
					cp.Print(ab.Name)
					if len(ab.Attributes) > 0 {
						cp.Print(" " + attrString(ab.Attributes))
					}
					cp.Print(" ")
					PrettyPrintStatement(cp, ab.Behavior)
					cp.Println("")
				}
			})
			cp.Println("}")
		}
	})
	cp.Println("}")
}

func prettyPrintFunction(cp CodePrinter, f *FunctionDefinition) {
	if f.Extern {
		cp.Print("extern ")
	}
	cp.Print(f.String())
	if len(f.Attributes) > 0 {
		cp.Print(" " + attrString(f.Attributes))
	}
	if f.Body == nil {
		cp.Println(";")
		return
	}
	cp.Print(" ")
	PrettyPrintStatement(cp, f.Body)
	cp.Println("")
}

func prettyPrintInstruction(cp CodePrinter, instr *Instruction) {
	cp.Print(instr.Name)
	if len(instr.Attributes) > 0 {
		cp.Print(" " + attrString(instr.Attributes))
	}
	cp.Println(" {")
	WithIndent(1, cp, func(cp CodePrinter) {
		if instr.Encoding != nil {
			cp.Printf("encoding: %s;\n", instr.Encoding)
		}
		if instr.Assembly != nil {
			cp.Printf("assembly: %s;\n", instr.Assembly)
		}
		if instr.Behavior != nil {
			cp.Print("behavior: ")
			PrettyPrintStatement(cp, instr.Behavior)
			cp.Println("")
		}
	})
	cp.Println("}")
}

// PrettyPrintStatement prints a statement, breaking blocks over multiple
// lines.  The cursor is left at the end of the statement.
func PrettyPrintStatement(cp CodePrinter, stmt Statement) {
	switch s := stmt.(type) {
	case *CompoundStatement:
		cp.Println("{")
		WithIndent(1, cp, func(cp CodePrinter) {
			for _, item := range s.Items {
				PrettyPrintStatement(cp, item)
				cp.Println("")
			}
		})
		cp.Print("}")
	case *IfStatement:
		cp.Printf("if %s ", parenthesized(s.Condition))
		PrettyPrintStatement(cp, s.Then)
		if s.Else != nil {
			cp.Print(" else ")
			PrettyPrintStatement(cp, s.Else)
		}
	case *WhileLoop:
		cp.Printf("while %s ", parenthesized(s.Condition))
		PrettyPrintStatement(cp, s.Body)
	case *DoWhileLoop:
		cp.Print("do ")
		PrettyPrintStatement(cp, s.Body)
		cp.Printf(" while %s;", parenthesized(s.Condition))
	case *ForLoop:
		header := s.String()
		cp.Print(strings.TrimSuffix(header, s.Body.String()))
		PrettyPrintStatement(cp, s.Body)
	case *SpawnStatement:
		cp.Print("spawn ")
		PrettyPrintStatement(cp, s.Body)
	case *SwitchStatement:
		cp.Printf("switch %s {\n", parenthesized(s.Condition))
		WithIndent(1, cp, func(cp CodePrinter) {
			for _, sec := range s.Sections {
				if sec.Case != nil {
					cp.Printf("case %s:\n", sec.Case)
				} else {
					cp.Println("default:")
				}
				WithIndent(1, cp, func(cp CodePrinter) {
					for _, item := range sec.Items {
						PrettyPrintStatement(cp, item)
						cp.Println("")
					}
				})
			}
		})
		cp.Print("}")
	case nil:
		cp.Print(";")
	default:
		cp.Print(stmt.String())
	}
}

func attrString(attrs []*Attribute) string {
	return strings.Join(gfn.Map(attrs, func(a *Attribute) string { return a.String() }), " ")
}
