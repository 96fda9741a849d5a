package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoutes/chapel/internal/errors"
)

func TestMain(m *testing.M) {
	pterm.DisableColor()
	os.Exit(m.Run())
}

func zooPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs("testdata/zoo.yaml")
	require.NoError(t, err)
	return p
}

// run executes cgsynth in an empty working directory so no configuration
// file is picked up.
func run(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	chdir(t, t.TempDir())
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	code = 0
	if err := root.Execute(); err != nil {
		reportError(&errOut, err)
		code = 1
	}
	return out.String(), errOut.String(), code
}

func TestMethodCommand(t *testing.T) {
	zoo := zooPath(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"init", []string{"method", zoo, "Pen", "init"},
			"proc Pen.init(ref this: Pen, in size: int(64) = ?, in open: bool = ?)"},
		{"shadowed", []string{"method", zoo, "Pen", "=="}, "no compiler-generated routine"},
		{"assign", []string{"method", zoo, "Pen", "="},
			"operator Pen.=(const ref this: Pen, const ref lhs: Pen, const ref rhs: Pen)"},
		{"class deinit", []string{"method", zoo, "owned Keeper", "deinit"},
			"proc Keeper.deinit(const in this: borrowed Keeper)"},
		{"parenless", []string{"method", zoo, "domain(2)", "rank", "--parenless"},
			"proc _domain.rank(const ref this: domain(2))"},
		{"parenful rank", []string{"method", zoo, "domain(2)", "rank"}, "no compiler-generated routine"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, errOut, code := run(t, tc.args...)
			require.Equal(t, 0, code, errOut)
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestMethodCommandUnimplemented(t *testing.T) {
	out, errOut, code := run(t, "method", zooPath(t), "Cage", "init")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "unimplemented: ")
	assert.Contains(t, errOut, "initializers on generic types")
	assert.Contains(t, errOut, "type Cage has generic fields")
}

func TestBinopCommand(t *testing.T) {
	out, errOut, code := run(t, "binop", zooPath(t), "Diet", "type int", ":")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "operator :(from: Diet, type to: integral)")
	assert.Contains(t, out, "needs instantiation: true")

	out, _, code = run(t, "binop", zooPath(t), "int", "type Diet", ":")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "operator :(from: integral, type to: Diet)")
}

func TestFieldCommand(t *testing.T) {
	out, errOut, code := run(t, "field", zooPath(t), "Pen", "open")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "proc Pen.open(ref-maybe-const this: Pen)")
	assert.Contains(t, out, "declared at: Zoo.Pen.open")

	_, errOut, code = run(t, "field", zooPath(t), "int", "x")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error: int(64) has no fields")
	assert.Contains(t, errOut, "hint: field accessors exist for records, classes and unions")
}

func TestCommandErrors(t *testing.T) {
	_, errOut, code := run(t, "method", zooPath(t), "Nope", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "error: unknown type Nope")
	assert.Contains(t, errOut, "hint: ")

	_, errOut, code = run(t, "method", filepath.Join(t.TempDir(), "missing.toml"), "R", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "failed to read program description")

	_, _, code = run(t, "method", zooPath(t))
	assert.Equal(t, 1, code)
}

func TestProgramProblemsAreReported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(p, []byte(`
[[module]]
name = "M"
  [[module.type]]
  kind = "record"
  name = "R"
    [[module.type.field]]
    name = "x"
    type = "Missing"
`), 0o644))

	_, errOut, code := run(t, "method", p, "R", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "cannot resolve")
	assert.Contains(t, errOut, "M.R.x: unknown type Missing")
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ordinary", errors.WithHint(errors.New("no such file"), "pass a .toml or .yaml program"), "error: no such file\nhint: pass a .toml or .yaml program\n"},
		{"unimplemented", errors.Unimplemented("initializers on generic types"), "unimplemented: not yet implemented: initializers on generic types\n"},
		{"assertion", errors.AssertionFailedf("query sig depends on its own result"), "internal error: query sig depends on its own result\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			reportError(&out, tc.err)
			assert.True(t, strings.HasPrefix(out.String(), tc.want), out.String())
		})
	}
}

func TestSurveyCommand(t *testing.T) {
	zoo := zooPath(t)
	out, errOut, code := run(t, "survey", zoo, "--jobs", "3", "--type", "[domain(1)] int")
	require.Equal(t, 0, code, errOut)

	assert.Contains(t, out, "proc Pen.init(ref this: Pen, in size: int(64) = ?, in open: bool = ?)")
	assert.Contains(t, out, "unimplemented: ")
	assert.Contains(t, out, "operator :(from: Diet, type to: integral)")
	assert.Contains(t, out, "proc _array.eltType(const ref this: [domain(1)] int(64))")
	assert.NotContains(t, out, "Pen.==")
	assert.Contains(t, out, "queries generated a routine")

	all, errOut, code := run(t, "survey", zoo, "--all")
	require.Equal(t, 0, code, errOut)
	assert.Greater(t, strings.Count(all, "\n"), strings.Count(out, "\n")-2)
	assert.Regexp(t, `(?m)\|\s*-\s*$`, all)
}

func TestSurveyUsesConfiguredNames(t *testing.T) {
	zoo := zooPath(t)
	dir := t.TempDir()
	cfg := filepath.Join(dir, "cgsynth.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[survey]\nnames = [\"deinit\"]\njobs = 2\n"), 0o644))

	out, errOut, code := run(t, "--config", cfg, "survey", zoo)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "proc Pen.deinit(ref this: Pen)")
	assert.NotContains(t, out, "Pen.init(")
}

func TestSplitBinop(t *testing.T) {
	tests := []struct {
		in           string
		lhs, op, rhs string
		ok           bool
	}{
		{"Color : type int", "Color", ":", "type int", true},
		{"owned C? == owned C?", "owned C?", "==", "owned C?", true},
		{"(int, real) = (int, real)", "(int, real)", "=", "(int, real)", true},
		{": int", "", "", "", false},
		{"Color int", "", "", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			lhs, op, rhs, ok := splitBinop(strings.Fields(tc.in))
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.lhs, lhs)
			assert.Equal(t, tc.op, op)
			assert.Equal(t, tc.rhs, rhs)
		})
	}
}

func TestReplEval(t *testing.T) {
	s, err := openSession(zooPath(t))
	require.NoError(t, err)
	ctx := context.Background()

	eval := func(line string) (string, bool, error) {
		var out bytes.Buffer
		quit, err := s.eval(ctx, line, &out)
		return out.String(), quit, err
	}

	out, quit, err := eval("method Pen init")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out, "proc Pen.init(")

	out, _, err = eval("method domain(2) rank parenless")
	require.NoError(t, err)
	assert.Contains(t, out, "proc _domain.rank(")

	out, _, err = eval("method owned Keeper init=")
	require.NoError(t, err)
	assert.Contains(t, out, "proc Keeper.init=(const in this: borrowed Keeper, const ref other: borrowed Keeper)")

	out, _, err = eval("binop Diet : type int")
	require.NoError(t, err)
	assert.Contains(t, out, "operator :(")

	out, _, err = eval("field Keeper name")
	require.NoError(t, err)
	assert.Contains(t, out, "proc Keeper.name(ref-maybe-const this: borrowed Keeper)")

	out, _, err = eval("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "method builds: 3")

	out, _, err = eval("advance")
	require.NoError(t, err)
	assert.Contains(t, out, "generation 2")

	_, _, err = eval("method Pen init")
	require.NoError(t, err)
	out, _, err = eval("stats")
	require.NoError(t, err)
	assert.Contains(t, out, "method builds: 4")

	out, _, err = eval("help")
	require.NoError(t, err)
	assert.Contains(t, out, "binop <lhs> <op> <rhs>")

	_, _, err = eval("frobnicate")
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "type help")

	_, _, err = eval("method Pen")
	assert.Error(t, err)
	_, _, err = eval("binop Diet int")
	assert.Error(t, err)
	_, _, err = eval("field Pen")
	assert.Error(t, err)

	_, _, err = eval("method Cage init")
	assert.True(t, errors.IsUnimplemented(err))

	_, quit, err = eval("quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
