package commands

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/panyam/coredsl/loader"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

const wideCore = `InstructionSet Base {
	architectural_state {
		unsigned int XLEN = 32;
		unsigned<XLEN> X[32];
	}
	instructions {
		ADD {
			encoding: 0b0000000 :: rs2[4:0] :: rs1[4:0] :: 0b000 :: rd[4:0] :: 0b0110011;
			behavior: {
				X[rd] = X[rs1] + X[rs2];
			}
		}
	}
}
Core Wide provides Base {
	architectural_state {
		XLEN = 64;
	}
}`

// run executes the command line against an in-memory file system.
func run(t *testing.T, mem *loader.MemoryFS, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	saved := newFileSystem
	newFileSystem = func() loader.FileSystem { return mem }
	t.Cleanup(func() {
		newFileSystem = saved
		evalDef, typesDef, dumpDef = "", "", ""
		fmtWrite, fmtCheck = false, false
	})

	var out, errs bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errs)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errs.String(), err
}

func files() *loader.MemoryFS {
	return loader.NewMemoryFS().AddFiles(map[string]string{"rv.core_desc": wideCore})
}

func TestEvalState(t *testing.T) {
	out, _, err := run(t, files(), "eval", "rv.core_desc")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "Base.XLEN = 64 (INTEGRAL_SIGNED 32)"))
	assert.Assert(t, is.Contains(out, "Base.X = <unset>"))

	mem := loader.NewMemoryFS().AddFiles(map[string]string{"loop.core_desc": `InstructionSet T {
		architectural_state {
			int a = b;
			int b = a;
			int c;
		}
	}`})
	out, _, err = run(t, mem, "eval", "loop.core_desc")
	assert.NilError(t, err)
	assert.Equal(t, out, "T.a = <not constant>\nT.b = <not constant>\nT.c = <unset>\n")
}

func TestEvalExpressions(t *testing.T) {
	out, _, err := run(t, files(), "eval", "rv.core_desc", "XLEN * 2", "XLEN > 1")
	assert.NilError(t, err)
	assert.Equal(t, out, "XLEN * 2 = 128 (INTEGRAL_SIGNED 32)\nXLEN > 1 = ? (INTEGRAL_SIGNED 1)\n")

	out, _, err = run(t, files(), "eval", "--def", "Base", "rv.core_desc", "XLEN * 2")
	assert.NilError(t, err)
	assert.Equal(t, out, "XLEN * 2 = 64 (INTEGRAL_SIGNED 32)\n")
}

func TestEvalErrors(t *testing.T) {
	_, _, err := run(t, files(), "eval", "rv.core_desc", "nope + 1")
	assert.ErrorContains(t, err, "unknown name(s) in Wide: nope")

	_, _, err = run(t, files(), "eval", "--def", "Narrow", "rv.core_desc")
	assert.ErrorContains(t, err, "no instruction set or core named 'Narrow'")

	_, _, err = run(t, files(), "eval", "missing.core_desc")
	assert.ErrorContains(t, err, "failed to load root file 'missing.core_desc'")
}

func TestTypes(t *testing.T) {
	out, _, err := run(t, files(), "types", "rv.core_desc")
	assert.NilError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, len(lines), 3)
	assert.Assert(t, is.Contains(lines[1], "XLEN"))
	assert.Assert(t, is.Contains(lines[1], "INTEGRAL_UNSIGNED 32"))
	assert.Assert(t, is.Contains(lines[2], "INTEGRAL_UNSIGNED 64"))

	out, _, err = run(t, files(), "types", "--def", "Base", "rv.core_desc")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, "ADD"))
}

func TestValidate(t *testing.T) {
	mem := files().AddFiles(map[string]string{
		"bad.core_desc": `InstructionSet B { architectural_state { int y = z; } }`,
	})
	_, _, err := run(t, mem, "validate", "rv.core_desc")
	assert.NilError(t, err)

	_, _, err = run(t, mem, "validate", "rv.core_desc", "bad.core_desc")
	assert.ErrorContains(t, err, "validation failed")
}

func TestDump(t *testing.T) {
	out, _, err := run(t, files(), "dump", "--def", "Wide", "rv.core_desc")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, `"Wide"`))
	assert.Assert(t, is.Contains(out, "CoreDef"))
}

func TestFmtIsStable(t *testing.T) {
	mem := files()
	formatted, _, err := run(t, mem, "fmt", "rv.core_desc")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(formatted, "Core Wide provides Base"))

	_, _, err = run(t, mem, "fmt", "--write", "rv.core_desc")
	assert.NilError(t, err)
	written, err := mem.ReadFile("rv.core_desc")
	assert.NilError(t, err)
	assert.Equal(t, string(written), formatted)

	_, _, err = run(t, mem, "fmt", "--check", "rv.core_desc")
	assert.NilError(t, err)
}

func TestReplCommands(t *testing.T) {
	saved := newFileSystem
	mem := files()
	newFileSystem = func() loader.FileSystem { return mem }
	defer func() { newFileSystem = saved }()

	var out, errs bytes.Buffer
	r := &repl{out: &out, errs: &errs}
	assert.Equal(t, r.prompt(), "coredsl> ")

	assert.Assert(t, !r.execute("XLEN"))
	assert.Assert(t, is.Contains(errs.String(), "no file loaded"))

	assert.Assert(t, !r.execute(":load rv.core_desc"))
	assert.Assert(t, is.Contains(out.String(), "evaluating in Wide"))
	assert.Equal(t, r.prompt(), "coredsl[Wide]> ")

	out.Reset()
	r.execute("XLEN")
	assert.Equal(t, out.String(), "64 (INTEGRAL_SIGNED 32)\n")

	out.Reset()
	r.execute(":def Base")
	r.execute("XLEN")
	assert.Equal(t, out.String(), "32 (INTEGRAL_SIGNED 32)\n")

	out.Reset()
	r.execute(":state")
	assert.Assert(t, is.Contains(out.String(), "Base.XLEN : INTEGRAL_UNSIGNED 32 = 32 (INTEGRAL_SIGNED 32)"))

	errs.Reset()
	r.execute(":bogus")
	assert.Assert(t, is.Contains(errs.String(), "unknown command ':bogus'"))
	assert.Assert(t, r.execute(":quit"))
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("COREDSL_LOG_LEVEL", "debug")
	t.Setenv("COREDSL_MAX_IMPORT_DEPTH", "3")
	t.Setenv("COREDSL_PATH", "lib"+string(os.PathListSeparator)+"vendor")

	cfg, err := loadConfig(rootCmd)
	assert.NilError(t, err)
	assert.Equal(t, cfg.LogLevel, slog.LevelDebug)
	assert.Equal(t, cfg.MaxDepth, 3)
	assert.DeepEqual(t, cfg.SearchPaths, []string{"lib", "vendor"})

	t.Setenv("COREDSL_MAX_IMPORT_DEPTH", "deep")
	_, err = loadConfig(rootCmd)
	assert.ErrorContains(t, err, "invalid COREDSL_MAX_IMPORT_DEPTH 'deep'")
}

func TestPrettyHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))
	logger.Debug("hidden")
	logger.With("uri", "a.core_desc").Info("linked", "unresolved", 2)
	assert.Assert(t, !strings.Contains(buf.String(), "hidden"))
	assert.Assert(t, is.Contains(buf.String(), "linked"))
	assert.Assert(t, is.Contains(buf.String(), `"uri": "a.core_desc"`))
	assert.Assert(t, is.Contains(buf.String(), `"unresolved": 2`))
}
