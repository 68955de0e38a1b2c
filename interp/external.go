package interp

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
)

// commandNotFoundError carries the unresolved name. execExternal prints the
// diagnostic and any suggestions and sets $? to 127 before returning it, so
// the statement-list runners neither print it again nor reset $?.
type commandNotFoundError struct{ Name string }

func (e *commandNotFoundError) Error() string { return e.Name + ": command not found" }

// lookPath resolves name against PATH, or uses it directly if it contains
// a slash.
func (ex *Executor) lookPath(name string) (string, error) {
	if strings.Contains(name, "/") {
 if isExecutableFile(name) {
 return name, nil
 }
 return "", fmt.Errorf("%s: not found", name)
	}
	pathVal := ex.RT.environ().Get("PATH").Value
	for _, dir := range filepath.SplitList(pathVal) {
 if dir == "" {
 dir = "."
 }
 candidate := filepath.Join(dir, name)
 if isExecutableFile(candidate) {
 return candidate, nil
 }
	}
	return "", fmt.Errorf("%s: not found", name)
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
 return false
	}
	return info.Mode()&0o111 != 0
}

// execExternal resolves, forks with setpgid, execs, waits, and records the
// exit status for an external command.
func (ex *Executor) execExternal(name string, args []string, redirects []*ast.Redirect) error {
	path, err := ex.lookPath(name)
	if err != nil {
 ex.RT.LastExit = 127
 if ex.Suggest != nil {
 for _, s := range ex.Suggest.Suggest(name, ex.knownNames()) {
 fmt.Fprintln(ex.RT.Stderr, "cirrus: did you mean:", s)
 }
 }
 fmt.Fprintf(ex.RT.Stderr, "cirrus: %s: command not found\n", name)
 return &commandNotFoundError{Name: name}
	}

	restore, err := ex.applyRedirects(redirects)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	defer restore()

	cmd := exec.Command(path, args...)
	cmd.Dir = ex.RT.Dir
	cmd.Env = execEnv(ex.RT.environ())
	cmd.Stdin = ex.RT.Stdin
	cmd.Stdout = ex.RT.Stdout
	cmd.Stderr = ex.RT.Stderr
	// setpgid in the child isolates it into its own process group so a
	// terminal SIGINT targets the child's group, not the shell's.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	return ex.timeStage(StageExternalExecution, func() error {
 if err := cmd.Start(); err != nil {
 ex.RT.LastExit = 126
 return err
 }

 var stop func()
 if interactiveForeground(ex.RT, redirects) {
 stop = ex.startProgressIndicator(name)
 }

 waitErr := cmd.Wait()
 if stop != nil {
 stop()
 }

 ex.RT.LastExit = exitCodeFor(waitErr)
 return nil
	})
}

// interactiveForeground reports whether stdout is a TTY with no redirects
// shadowing it: the heuristic used to decide whether to show the ephemeral
// progress indicator.
func interactiveForeground(rt *Runtime, redirects []*ast.Redirect) bool {
	for _, r := range redirects {
 if r.Kind == ast.RedirStdout || r.Kind == ast.RedirStdoutAppend || r.Kind == ast.RedirBoth {
 return false
 }
	}
	f, ok := any(rt.Stdout).(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// startProgressIndicator shows a spinner after a short threshold for
// long-running foreground externals.
func (ex *Executor) startProgressIndicator(name string) func() {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " " + name
	timer := time.AfterFunc(200*time.Millisecond, func() { s.Start() })
	return func() {
		timer.Stop()
		s.Stop()
	}
}

func exitCodeFor(err error) int {
	if err == nil {
 return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
 if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
 return 128 + int(status.Signal())
 }
 return exitErr.ExitCode()
	}
	return 126
}

// execEnv merges the runtime's exported variables into a process
// environment list: variables explicitly exported propagate to child
// processes, unexported shell variables do not.
func execEnv(env runtimeEnviron) []string {
	var out []string
	env.Each(func(name string, v expand.Variable) bool {
 if v.Exported {
 out = append(out, name+"="+v.Value)
 }
 return true
	})
	return out
}

// knownNames gathers the candidate pool for the "did you mean" suggestion:
// builtins, aliases, functions, and command names pulled from recent
// history.
func (ex *Executor) knownNames() []string {
	var names []string
	for n := range ex.RT.Functions {
 names = append(names, n)
	}
	for n := range ex.RT.Aliases {
 names = append(names, n)
	}
	for n := range builtins {
 names = append(names, n)
	}
	for _, line := range ex.RT.recentHistory(50) {
 if i := strings.IndexByte(line, ' '); i >= 0 {
 names = append(names, line[:i])
 } else {
 names = append(names, line)
 }
	}
	return names
}
