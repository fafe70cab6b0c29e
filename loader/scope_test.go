package loader

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/panyam/coredsl/decl"
	"github.com/panyam/coredsl/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSource(t *testing.T, src string) *LoadResult {
	t.Helper()
	l := NewLoader(NewParser(), NewFileSystemResolver(NewMemoryFS()), 10)
	result, err := l.LoadSource("test.core_desc", src)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	return result
}

func validateSource(t *testing.T, src string, opts Options) []*Diagnostic {
	t.Helper()
	result := loadSource(t, src)
	NewValidator(result.Workspace, opts).Validate(result.Root)
	return result.Root.Diagnostics()
}

func assertNoErrors(t *testing.T, src string) {
	t.Helper()
	diags := validateSource(t, src, Options{})
	for _, d := range diags {
		t.Errorf("unexpected diagnostic: %s", d)
	}
}

func assertUnresolved(t *testing.T, src string, names ...string) {
	t.Helper()
	diags := validateSource(t, src, Options{})
	require.Len(t, diags, len(names))
	for i, name := range names {
		assert.Equal(t, "Could not resolve reference to NamedEntity named '"+name+"'.", diags[i].Message)
	}
}

// references named name in content, in document order.
func findReferences(content *decl.DescriptionContent, name string) (out []*decl.Reference) {
	for _, r := range references(content) {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return
}

func TestUseBeforeDeclaration(t *testing.T) {
	assertUnresolved(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					x = 0;
					int x;
				}
			}
		}
	}`, "x")
}

func TestDeclarationBeforeUse(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					int x;
					x = 0;
				}
			}
		}
	}`)
}

func TestUseBeforeDeclarationNested(t *testing.T) {
	assertUnresolved(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					{
						x = 0;
					}
					int x;
				}
			}
		}
	}`, "x")
}

func TestDeclarationBeforeUseNested(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					int x;
					{
						x = 0;
					}
				}
			}
		}
	}`)
}

func TestGlobalScope(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		architectural_state {
			int CCC = 42;
			unsigned int X[32];
		}

		functions {
			int foo(int arg) {
				return arg;
			}
		}

		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					X[rd] = X[rs1] + X[rs2] + foo(CCC);
				}
			}
		}
	}`)
}

func TestGlobalScopeExtended(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		architectural_state {
			int CCC = 42;
			unsigned int X[32];
		}

		functions {
			int foo(int arg) {
				return arg;
			}
		}
	}

	InstructionSet TestISA2 extends TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				assembly: "{name(rd)}, {name(rs1)}, {name(rs2)}";
				behavior: {
					X[rd] = X[rs1] + X[rs2] + foo(CCC);
				}
			}
		}
	}`)
}

func TestSpawn(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		architectural_state {
			int X[32];
			int PC;
		}
		functions {
			void maybe_corrupt_PC(int i) {
				if ((i & 17) > 3)
					PC = 0xdeadbeef;
			}
		}
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				behavior: {
					int incr = X[rs1] * X[rs2];
					spawn {
						int i;
						for (i = 0; i < 42; i += incr) {
							maybe_corrupt_PC(i % X[rd]);
						}
					}
				}
			}
		}
	}`)
}

func TestForLoopDeclaration(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				behavior: {
					for (int y = 0, z = -1; y < 0 && z != 5; ++y) {}
				}
			}
		}
	}`)
}

func TestForLoopDeclarationNotVisibleAfterLoop(t *testing.T) {
	assertUnresolved(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rd[4:0];
				behavior: {
					for (int y = 0; y < 4; y++) {}
					y = 1;
				}
			}
		}
	}`, "y")
}

func TestDoWhile(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				behavior: {
					int z = 0;
					do {
						z++;
					} while (z < 10);
				}
			}
		}
	}`)
}

func TestSwitches(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0000000;
				behavior: {
					int foobar;
					switch(rs1) {
						case 1:
							foobar = rs2;
							break;
						case 2: {
							int foobar = rs2;
							int baz = foobar;
							break;
						}
					}
				}
			}
		}
	}`)
}

func TestFunctionDeclaratorsAreFlattened(t *testing.T) {
	assertNoErrors(t, `InstructionSet TestISA {
		functions {
			int f(int p) {
				q = p;
				int q;
				return q;
			}
		}
	}`)
}

func TestInnerDeclarationShadowsOuter(t *testing.T) {
	result := loadSource(t, `InstructionSet TestISA {
		architectural_state {
			int x = 1;
		}
		instructions {
			Inst1 {
				encoding: 0b0000000 :: rd[4:0];
				behavior: {
					int x = 2;
					{
						int x = 3;
						rd = x;
					}
				}
			}
		}
	}`)
	refs := findReferences(result.Root.Content, "x")
	require.Len(t, refs, 1)
	target, ok := refs[0].Target.(*decl.Declarator)
	require.True(t, ok)
	assert.Equal(t, "x = 3", target.String())

	// every x is a candidate, innermost first
	scope := NewScopeProvider(result.Workspace).ScopeFor(refs[0])
	var inits []string
	for _, e := range scope.Elements() {
		if d, ok := e.(*decl.Declarator); ok && d.Name == "x" {
			inits = append(inits, d.InitialValue().String())
		}
	}
	assert.Equal(t, []string{"3", "2", "1"}, inits)
}

func TestCoreCompositionListsSharedSetOnce(t *testing.T) {
	result := loadSource(t, `InstructionSet Base {
		architectural_state {
			int a;
		}
	}
	InstructionSet Left extends Base {
		architectural_state {
			int l;
		}
	}
	InstructionSet Right extends Base {
		architectural_state {
			int r;
		}
	}
	Core Both provides Left, Right {
		architectural_state {
			a = 1;
			l = 2;
			r = 3;
		}
	}`)
	assert.True(t, NewValidator(result.Workspace, Options{}).Validate(result.Root))

	refs := findReferences(result.Root.Content, "a")
	require.Len(t, refs, 1)
	scope := NewScopeProvider(result.Workspace).ScopeFor(refs[0])

	count := 0
	for _, e := range scope.Elements() {
		if e.EntityName() == "a" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// core, Left, Base, Right, document
	assert.Equal(t, 5, scope.Depth())
	assert.Same(t, result.Root.Content.FindDefinition("Base").Body().StateDeclarators()[0], refs[0].Target)
}

func TestInstructionSetCycleTerminates(t *testing.T) {
	result := loadSource(t, `InstructionSet A extends B {
		architectural_state {
			int a;
		}
	}
	InstructionSet B extends A {
		architectural_state {
			int b = a;
		}
	}`)
	refs := findReferences(result.Root.Content, "a")
	require.Len(t, refs, 1)
	assert.NotNil(t, refs[0].Target)
}

func TestSuperTypeOnlyResolvesInstructionSets(t *testing.T) {
	assertUnresolved(t, `Core Other {}
	InstructionSet X extends Other {}`, "Other")
}

func TestLinkExpressionAgainstDefinition(t *testing.T) {
	result := loadSource(t, `InstructionSet Base {
		architectural_state {
			int XLEN = 32;
		}
	}
	Core C provides Base {
		architectural_state {
			int extra = 2;
		}
	}`)
	core := result.Root.Content.FindDefinition("C")
	e, err := parser.ParseExpression("XLEN * extra + missing - C")
	require.NoError(t, err)

	unresolved := NewLinker(result.Workspace).LinkExpression(e, core)
	if diff := deep.Equal(unresolved, []string{"missing"}); diff != nil {
		t.Error(diff)
	}

	var targets []string
	decl.Walk(e, func(n decl.Node) bool {
		if r, ok := n.(*decl.Reference); ok && r.Target != nil {
			targets = append(targets, r.Target.EntityName())
		}
		return true
	})
	if diff := deep.Equal(targets, []string{"XLEN", "extra", "C"}); diff != nil {
		t.Error(diff)
	}
	assert.Same(t, result.Root.Content.FindDefinition("Base").Body().StateDeclarators()[0],
		NewScopeProvider(result.Workspace).DefinitionScope(core).Lookup("XLEN"))
}
