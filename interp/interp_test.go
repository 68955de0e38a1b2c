package interp

import (
	"io"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/cirrusshell/cirrus/parser"
)

// runScript parses and runs src against a fresh Executor, returning its
// captured stdout and final exit code.
func runScript(c *qt.C, src string) (string, int) {
	rt := NewRuntime()
	r, w, err := os.Pipe()
	c.Assert(err, qt.IsNil)
	rt.Stdout = w

	ex := NewExecutor(rt)

	file, err := parser.Parse(src, "test")
	c.Assert(err, qt.IsNil)

	done := make(chan []byte)
	go func() {
		out, _ := io.ReadAll(r)
		done <- out
	}()

	code := ex.Run(file.Stmts)
	w.Close()
	out := <-done
	r.Close()

	return string(out), code
}

func TestPipefailPropagatesFailure(t *testing.T) {
	c := qt.New(t)
	out, code := runScript(c, `set -o pipefail; false | true | true; echo $?`)
	c.Assert(out, qt.Equals, "1\n")
	c.Assert(code, qt.Equals, 0)
}

func TestWithoutPipefailOnlyLastStageCounts(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `false | true | true; echo $?`)
	c.Assert(out, qt.Equals, "0\n")
}

func TestFunctionLocalScopingAndPositional(t *testing.T) {
	c := qt.New(t)
	out, code := runScript(c, `
f() { local x=inner; echo "$1 $x"; }
x=outer
f hello
echo $x
`)
	c.Assert(out, qt.Equals, "hello inner\nouter\n")
	c.Assert(code, qt.Equals, 0)
}

func TestHeredocExpandsVariables(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, "name=world\ncat <<EOF\nhello $name\nEOF\n")
	c.Assert(out, qt.Equals, "hello world\n")
}

func TestHeredocLiteralDoesNotExpand(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, "name=world\ncat <<'EOF'\nhello $name\nEOF\n")
	c.Assert(out, qt.Equals, "hello $name\n")
}

func TestParameterExpansionDefaultAndLength(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `
unset FOO
echo "${FOO:-fallback}"
BAR=hello
echo "${#BAR}"
`)
	c.Assert(out, qt.Equals, "fallback\n5\n")
}

func TestForLoopBreaksOnMatch(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `
for x in one two three; do
  echo $x
  case $x in
    two) break ;;
  esac
done
`)
	c.Assert(out, qt.Equals, "one\ntwo\n")
}

func TestSubshellIsolationWithErrexit(t *testing.T) {
	c := qt.New(t)
	out, code := runScript(c, `
x=outer
(
  set -e
  x=inner
  false
  echo "unreachable"
)
echo "$x"
`)
	c.Assert(out, qt.Equals, "outer\n")
	c.Assert(code, qt.Equals, 0)
}

func TestAndOrShortCircuit(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `true && echo yes || echo no`)
	c.Assert(out, qt.Equals, "yes\n")

	out, _ = runScript(c, `false && echo yes || echo no`)
	c.Assert(out, qt.Equals, "no\n")
}

func TestReturnExitsFunctionOnly(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `
f() { echo before; return 3; echo after; }
f
echo "code=$?"
echo done
`)
	c.Assert(out, qt.Equals, "before\ncode=3\ndone\n")
}

func TestHistoryIsRecordedPerCommand(t *testing.T) {
	c := qt.New(t)
	rt := NewRuntime()
	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	c.Assert(err, qt.IsNil)
	defer devNull.Close()
	rt.Stdout = devNull
	ex := NewExecutor(rt)

	file, err := parser.Parse("echo one\necho two\n", "test")
	c.Assert(err, qt.IsNil)
	ex.Run(file.Stmts)

	got := rt.recentHistory(10)
	c.Assert(got, qt.DeepEquals, []string{"echo two", "echo one"})
}

func TestKnownNamesIncludesHistoryCommandNames(t *testing.T) {
	c := qt.New(t)
	rt := NewRuntime()
	ex := NewExecutor(rt)
	rt.recordHistory("gerp foo bar")

	names := ex.knownNames()
	found := false
	for _, n := range names {
		if n == "gerp" {
			found = true
		}
	}
	c.Assert(found, qt.IsTrue)
}

func TestProfileBuiltinRecordsStagesAndPreservesVariables(t *testing.T) {
	c := qt.New(t)
	out, code := runScript(c, `
TEST_VAR=before
profile echo hello
echo "$TEST_VAR"
`)
	c.Assert(code, qt.Equals, 0)
	c.Assert(out, qt.Contains, "hello")
	c.Assert(out, qt.Contains, "Profiling: echo hello")
	c.Assert(out, qt.Contains, "Execution Timeline")
	c.Assert(out, qt.Contains, "before\n")
}

func TestProfileBuiltinJSONOutput(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `profile -json echo test`)
	c.Assert(out, qt.Contains, "\"command\":\"echo test\"")
	c.Assert(out, qt.Contains, "\"exit_code\":0")
}

func TestProfileDataRecordsAverageAndTotal(t *testing.T) {
	c := qt.New(t)
	p := NewProfileData()
	p.Record(StageParse, 10*time.Millisecond)
	p.Record(StageParse, 30*time.Millisecond)
	stages := p.Stages()
	c.Assert(stages, qt.HasLen, 1)
	c.Assert(stages[0].Count, qt.Equals, 2)
	c.Assert(stages[0].Average(), qt.Equals, 20*time.Millisecond)
	c.Assert(stages[0].Total, qt.Equals, 40*time.Millisecond)
}

func TestReadonlyAssignmentFails(t *testing.T) {
	c := qt.New(t)
	out, _ := runScript(c, `
X=1
readonly X
X=2
echo "$X"
`)
	c.Assert(out, qt.Equals, "1\n")
}
