package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodePrinterIndents(t *testing.T) {
	cp := NewCodePrinter()
	cp.Println("a {")
	WithIndent(1, cp, func(cp CodePrinter) {
		cp.Println("b;")
		cp.Print("c")
		cp.Println(";")
	})
	cp.Print("}")
	assert.Equal(t, "a {\n  b;\n  c;\n}", cp.String())
}

func TestPrettyPrintDocument(t *testing.T) {
	doc, _, _, _ := buildSmallDocument()
	expected := `InstructionSet X {
  architectural_state {
    int a = 1;
    int b = a;
  }
}
`
	assert.Equal(t, expected, doc.String())
}
