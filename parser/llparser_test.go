package parser

import (
	"testing"

	"github.com/panyam/coredsl/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fragmentTest struct {
	name          string
	input         string
	expected      string
	expectError   bool
	errorContains string
}

func runExpressionTests(t *testing.T, tests []fragmentTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := parseFragment(t, tt.input, func(p *LLParser) (decl.Expression, error) {
				return p.ParseExpression()
			})
			assertError(t, tt.input, err, tt.expectError, tt.errorContains)
			if !tt.expectError && err == nil {
				assertNodeEqual(t, tt.input, tt.expected, actual)
			}
		})
	}
}

func TestParseLiterals(t *testing.T) {
	runExpressionTests(t, []fragmentTest{
		{"integer", "12345", "12345", false, ""},
		{"hex", "0x1F", "0x1F", false, ""},
		{"verilog", "8'hFF", "8'hFF", false, ""},
		{"float", "1.5f", "1.5f", false, ""},
		{"char", "'a'", "'a'", false, ""},
		{"adjacent strings", `"ab" "cd"`, `"abcd"`, false, ""},
		{"true", "true", "true", false, ""},
		{"false", "false", "false", false, ""},
		{"bad integer", "08", "", true, "invalid literal"},
		{"bad verilog", "8'hZZ", "", true, "invalid literal"},
		{"unterminated string", `"abc`, "", true, "unterminated literal"},
		{"not an expression", ";", "", true, "expected an expression"},
	})
}

func TestParseBinaryExpressions(t *testing.T) {
	runExpressionTests(t, []fragmentTest{
		{"precedence", "1 + 2 * 3", "(1 + (2 * 3))", false, ""},
		{"left assoc", "a - b - c", "((a - b) - c)", false, ""},
		{"concat below shift", "a << 2 :: b", "((a << 2) :: b)", false, ""},
		{"concat above equality", "a :: b == c", "((a :: b) == c)", false, ""},
		{"logical", "a || b && c", "(a || (b && c))", false, ""},
		{"bitwise", "a & b | c ^ d", "((a & b) | (c ^ d))", false, ""},
		{"comparison", "a < b", "(a < b)", false, ""},
		{"parens", "(a + b) * c", "((a + b) * c)", false, ""},
		{"modulo", "a % 4", "(a % 4)", false, ""},
		{"missing operand", "1 +", "", true, "expected an expression"},
	})
}

func TestParseUnaryAndPostfixExpressions(t *testing.T) {
	runExpressionTests(t, []fragmentTest{
		{"negate", "-a + ~b", "(-a + ~b)", false, ""},
		{"not", "!done", "!done", false, ""},
		{"pre increment", "++i", "++i", false, ""},
		{"post increment", "i++", "i++", false, ""},
		{"index", "X[rs1]", "X[rs1]", false, ""},
		{"bit range", "X[rs1][4:0]", "X[rs1][4:0]", false, ""},
		{"call", "f(a, b + 1)", "f(a, (b + 1))", false, ""},
		{"empty call", "f()", "f()", false, ""},
		{"member", "s.field", "s.field", false, ""},
		{"arrow", "p->next", "p->next", false, ""},
		{"unclosed index", "X[1", "", true, "expected ']'"},
	})
}

func TestParseCastsAndConditionals(t *testing.T) {
	runExpressionTests(t, []fragmentTest{
		{"sized cast", "(unsigned<8>) x", "(unsigned<8>) x", false, ""},
		{"signedness cast", "(signed) x", "(signed) x", false, ""},
		{"shorthand cast", "(int) x + 1", "((int) x + 1)", false, ""},
		{"unsigned int cast", "(unsigned int) x", "(unsigned int) x", false, ""},
		{"conditional", "c ? 1 : 2", "(c ? 1 : 2)", false, ""},
		{"nested conditional", "a ? b : c ? d : e", "(a ? b : (c ? d : e))", false, ""},
		{"assignment", "x = y = 3", "x = y = 3", false, ""},
		{"compound assignment", "x <<= 2", "x <<= 2", false, ""},
		{"missing colon", "a ? b", "", true, "expected ':'"},
		{"unclosed cast", "(int x", "", true, "expected ')'"},
	})
}

func TestParseStatements(t *testing.T) {
	tests := []fragmentTest{
		{"compound", "{ int i = 0; i += 1; }", "{ int i = 0; i += 1; }", false, ""},
		{"if else", "if (a) b = 1; else { b = 2; }", "if (a) b = 1; else { b = 2; }", false, ""},
		{"for decl", "for (int i = 0; i < 4; i++) x += i;", "for (int i = 0; (i < 4); i++) x += i;", false, ""},
		{"for exprs", "for (i = 0, j = 1; ; ) ;", "for (i = 0, j = 1; ; ) ;", false, ""},
		{"while", "while (x) x--;", "while (x) x--;", false, ""},
		{"do while", "do { x++; } while (x < 3);", "do { x++; } while (x < 3);", false, ""},
		{"switch", "switch (x) { case 1: y = 2; break; default: y = 3; }", "switch (x) { case 1: y = 2; break; default: y = 3; }", false, ""},
		{"spawn", "spawn { x = 1; }", "spawn { x = 1; }", false, ""},
		{"return", "return x + 1;", "return (x + 1);", false, ""},
		{"bare return", "return;", "return;", false, ""},
		{"continue", "continue;", "continue;", false, ""},
		{"sized declaration", "unsigned<XLEN> a = 1, b;", "unsigned<XLEN> a = 1, b;", false, ""},
		{"size expression", "signed<XLEN + 1> x;", "signed<(XLEN + 1)> x;", false, ""},
		{"greater in initializer", "unsigned<32> x = a > b;", "unsigned<32> x = (a > b);", false, ""},
		{"attributes and storage", "[[is_pc]] register unsigned<32> PC;", "register [[is_pc]] unsigned<32> PC;", false, ""},
		{"array with list", "const int T[2] = {1, 2};", "const int T[2] = {1, 2};", false, ""},
		{"declarator attribute", "char MEM[4] [[is_main_mem]];", "char MEM[4] [[is_main_mem]];", false, ""},
		{"missing semicolon", "x = 1", "", true, "expected ';'"},
		{"unclosed block", "{ x = 1;", "", true, "expected '}'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := parseFragment(t, tt.input, func(p *LLParser) (decl.Statement, error) {
				return p.ParseStatement()
			})
			assertError(t, tt.input, err, tt.expectError, tt.errorContains)
			if !tt.expectError && err == nil {
				assertNodeEqual(t, tt.input, tt.expected, actual)
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	actual, err := parseFragment(t, "[[enable=1]] [[type(a, 2)]] [[hls]]", func(p *LLParser) (*decl.Attribute, error) {
		attrs, err := p.ParseAttributes()
		if err != nil {
			return nil, err
		}
		require.Len(t, attrs, 3)
		assert.Equal(t, "enable", attrs[0].Name)
		assert.Len(t, attrs[0].Parameters, 1)
		assert.Len(t, attrs[1].Parameters, 2)
		assert.Len(t, attrs[2].Parameters, 0)
		return attrs[2], nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[[hls]]", actual.String())
}

func TestParseInstruction(t *testing.T) {
	input := `ADD [[enable=1]] {
		encoding: 7'b0000000 :: rs2[4:0] :: rs1[4:0] :: 3'b000 :: rd[4:0] :: 7'b0110011;
		assembly: {"add", "{name(rd)}, {name(rs1)}, {name(rs2)}"};
		behavior: if (rd != 0) X[rd] = X[rs1] + X[rs2];
	}`
	instr, err := parseFragment(t, input, func(p *LLParser) (*decl.Instruction, error) {
		return p.ParseInstruction()
	})
	require.NoError(t, err)
	assert.Equal(t, "ADD", instr.Name)
	require.Len(t, instr.Attributes, 1)
	require.NotNil(t, instr.Encoding)
	require.Len(t, instr.Encoding.Fields, 6)

	bv, ok := instr.Encoding.Fields[0].(*decl.BitValue)
	require.True(t, ok)
	assert.Equal(t, "7'b0000000", bv.Value)

	bf, ok := instr.Encoding.Fields[1].(*decl.BitField)
	require.True(t, ok)
	assert.Equal(t, "rs2", bf.Name)
	assert.Equal(t, "4", bf.StartIndex.Value)
	assert.Equal(t, "0", bf.EndIndex.Value)

	assert.Equal(t, "add", instr.Assembly.Mnemonic)
	assert.Equal(t, "{name(rd)}, {name(rs1)}, {name(rs2)}", instr.Assembly.Operands)
	_, ok = instr.Behavior.(*decl.IfStatement)
	assert.True(t, ok)
}

func TestParseFunctionDefinition(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		params   int
		hasBody  bool
		extern   bool
	}{
		{"with body", "unsigned<32> add(unsigned<32> a, unsigned<32> b) { return a + b; }", "unsigned<32> add(unsigned<32> a, unsigned<32> b)", 2, true, false},
		{"void params", "void reset(void) { }", "void reset()", 0, true, false},
		{"extern prototype", "extern unsigned<8> load(unsigned<32> addr) [[do_not_synthesize]];", "unsigned<8> load(unsigned<32> addr)", 1, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseFragment(t, tt.input, func(p *LLParser) (*decl.FunctionDefinition, error) {
				return p.ParseFunctionDefinition()
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f.String())
			assert.Len(t, f.Parameters, tt.params)
			assert.Equal(t, tt.hasBody, f.Body != nil)
			assert.Equal(t, tt.extern, f.Extern)
		})
	}
}

func TestParsePositions(t *testing.T) {
	expr, err := ParseExpression("a +\n  bc")
	require.NoError(t, err)
	infix := expr.(*decl.InfixExpression)
	assert.Equal(t, 1, infix.Pos().Line)
	assert.Equal(t, 1, infix.Pos().Col)
	assert.Equal(t, 2, infix.Right.Pos().Line)
	assert.Equal(t, 3, infix.Right.Pos().Col)
	assert.Equal(t, 8, infix.End().Pos)
}
