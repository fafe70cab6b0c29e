package parser

import (
	"testing"

	"github.com/panyam/coredsl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rv32iSource = `
import "RISCVBase.core_desc"

InstructionSet RV32I extends RISCVBase {
	architectural_state {
		[[is_pc]] register unsigned<XLEN> PC;
		register unsigned<XLEN> X[32] [[is_main_reg]];
		extern char MEM[1 << XLEN] [[is_main_mem]];
		XLEN = 32;
	}

	functions {
		extern unsigned<8> fetch(unsigned<XLEN> addr) [[do_not_synthesize]];
		signed<XLEN> sext(unsigned<12> imm) {
			return (signed<XLEN>) imm;
		}
	}

	instructions [[hls]] {
		ADDI {
			encoding: imm[11:0] :: rs1[4:0] :: 3'b000 :: rd[4:0] :: 7'b0010011;
			assembly: "{name(rd)}, {name(rs1)}, {imm}";
			behavior: if (rd != 0) X[rd] = X[rs1] + sext(imm);
		}
		LUI {
			encoding: imm[31:12] :: rd[4:0] :: 7'b0110111;
			behavior: {
				if (rd != 0) X[rd] = (unsigned<XLEN>) imm;
			}
		}
	}

	always {
		tick {
			PC = PC + 4;
		}
	}
}

Core MyCore provides RV32I, Zicsr {
	architectural_state {
		CSR_SIZE = 4096;
	}
}
`

func TestParseDocument(t *testing.T) {
	doc, err := ParseString(rv32iSource, "rv32i.core_desc")
	require.NoError(t, err)

	require.Len(t, doc.Imports, 1)
	assert.Equal(t, "RISCVBase.core_desc", doc.Imports[0].URI)

	require.Len(t, doc.Definitions, 2)
	isas := doc.InstructionSets()
	require.Len(t, isas, 1)
	isa := isas[0]
	assert.Equal(t, "RV32I", isa.Name)
	require.NotNil(t, isa.SuperType)
	assert.Equal(t, "RISCVBase", isa.SuperType.Name)
	assert.True(t, isa.SuperType.InstructionSetsOnly)

	assert.Len(t, isa.Declarations, 3)
	assert.Len(t, isa.Assignments, 1)
	assert.Equal(t, []string{"PC", "X", "MEM"}, declaratorNames(isa.StateDeclarators()))
	assert.Len(t, isa.Functions, 2)
	assert.True(t, isa.Functions[0].Extern)
	assert.Nil(t, isa.Functions[0].Body)
	assert.NotNil(t, isa.FindFunction("sext"))
	require.Len(t, isa.Instructions, 2)
	assert.Equal(t, "ADDI", isa.Instructions[0].Name)
	assert.Nil(t, isa.Instructions[1].Assembly)
	require.Len(t, isa.CommonInstructionAttributes, 1)
	assert.Equal(t, "hls", isa.CommonInstructionAttributes[0].Name)
	require.Len(t, isa.AlwaysBlocks, 1)
	assert.Equal(t, "tick", isa.AlwaysBlocks[0].Name)

	cores := doc.Cores()
	require.Len(t, cores, 1)
	core := cores[0]
	assert.Equal(t, "MyCore", core.Name)
	require.Len(t, core.ProvidedInstructionSets, 2)
	assert.Equal(t, "Zicsr", core.ProvidedInstructionSets[1].Name)
	assert.Same(t, core, doc.FindDefinition("MyCore"))
}

func TestParsePrettyPrintRoundTrip(t *testing.T) {
	doc, err := ParseString(rv32iSource, "rv32i.core_desc")
	require.NoError(t, err)
	printed := doc.String()

	reparsed, err := ParseString(printed, "printed.core_desc")
	require.NoError(t, err, printed)
	assert.Equal(t, printed, reparsed.String())
}

func TestParseDocumentErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		errorContains string
	}{
		{"unknown top level", "Foo X {}", "expected 'import', 'InstructionSet' or 'Core'"},
		{"missing name", "InstructionSet {}", "expected IDENTIFIER"},
		{"unknown section", "InstructionSet X { registers {} }", "expected 'architectural_state'"},
		{"unclosed section", "InstructionSet X { architectural_state { int x;", "unexpected end of input"},
		{"bad encoding", "InstructionSet X { instructions { I { encoding: ; } } }", "expected a bit field or bit value"},
		{"source name in error", "Core", "bad.core_desc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			name := "test.core_desc"
			if tt.name == "source name in error" {
				name = "bad.core_desc"
			}
			_, err := ParseString(input, name)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func declaratorNames(decls []*decl.Declarator) (out []string) {
	for _, d := range decls {
		out = append(out, d.Name)
	}
	return
}
