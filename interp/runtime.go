// Package interp walks the AST produced by package parser, maintaining the
// shell's runtime state and executing statements against it.
package interp

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
)

// Options holds the boolean shell options named.
type Options struct {
	Errexit bool
	Nounset bool
	Xtrace bool
	Pipefail bool
	NoGlob bool
	NoClobber bool
}

// JobStatus is the state of a job-table entry.
type JobStatus int

const (
	JobRunning JobStatus = iota
	JobStopped
	JobDone
)

func (s JobStatus) String() string {
	switch s {
	case JobRunning:
 return "Running"
	case JobStopped:
 return "Stopped"
	default:
 return "Done"
	}
}

// Job is one entry of the job table.
type Job struct {
	ID int
	Pid int
	Pgid int
	Command string
	Status JobStatus
	Exit int
}

// Runtime is the process-wide interpreter state, cloned per subshell: the
// thing that gets deep-copied at a subshell boundary, never the thing a
// command mutates through a side channel.
type Runtime struct {
	// Scopes is a stack of maps from name to *Variable; index 0 is global.
	Scopes []map[string]*expand.Variable

	Readonly map[string]bool

	Functions map[string]*ast.FunctionDef
	Aliases map[string]string
	Traps map[string]string // signal name (or "EXIT"/"ERR") -> command string

	Jobs map[int]*Job
	nextJob int

	// Positional is a stack of positional-parameter lists; Positional[0] is
	// $1..$N at the top level, pushed/popped around function calls. $0 is
	// not part of it: it is read from the global variable "0".
	Positional [][]string

	Options Options

	LoopDepth int
	FuncDepth int
	CallStack []string

	LastExit int
	LastBgPid int
	LastArg string
	Pid int
	Shlvl int

	OPTIND int
	OPTARG string

	History *lru.LRU[int, string]
	histSeq int

	Dir string // current working directory, tracked in parallel with os.Chdir

	Stdout, Stderr, Stdin *os.File
}

// NewRuntime builds the top-level Runtime for a freshly started shell
// process, seeded from the OS environment the way a real shell inherits its
// parent's environment at startup.
func NewRuntime() *Runtime {
	h, _ := lru.NewLRU[int, string](1000, nil)
	rt := &Runtime{
 Scopes: []map[string]*expand.Variable{{}},
 Readonly: map[string]bool{},
 Functions: map[string]*ast.FunctionDef{},
 Aliases: map[string]string{},
 Traps: map[string]string{},
 Jobs: map[int]*Job{},
 Positional: [][]string{{}},
 Options: Options{},
 Pid: os.Getpid(),
 History: h,
 Stdout: os.Stdout,
 Stderr: os.Stderr,
 Stdin: os.Stdin,
	}
	for _, kv := range os.Environ() {
 name, val, ok := splitEnv(kv)
 if !ok {
 continue
 }
 rt.Scopes[0][name] = &expand.Variable{Set: true, Value: val, Exported: true}
	}
	if ifs := rt.Scopes[0]["IFS"]; ifs == nil {
 rt.Scopes[0]["IFS"] = &expand.Variable{Set: true, Value: " \t\n"}
	}
	if dir, err := os.Getwd(); err == nil {
 rt.Dir = dir
 rt.Scopes[0]["PWD"] = &expand.Variable{Set: true, Value: dir, Exported: true}
	}
	return rt
}

func splitEnv(kv string) (name, val string, ok bool) {
	for i := 0; i < len(kv); i++ {
 if kv[i] == '=' {
 return kv[:i], kv[i+1:], true
 }
	}
	return "", "", false
}

// Clone deep-copies the Runtime for subshell execution. The function and
// alias tables are copied into new maps, so definitions made in the clone
// don't reach the original; the FunctionDef values themselves are immutable
// once stored and are shared. The History buffer is shared as well; the
// other mutable state gets its own backing storage.
func (rt *Runtime) Clone() *Runtime {
	clone := &Runtime{
 Readonly: map[string]bool{},
 Functions: map[string]*ast.FunctionDef{},
 Aliases: map[string]string{},
 Traps: map[string]string{},
 Jobs: map[int]*Job{},
 Options: rt.Options,
 LastExit: rt.LastExit,
 LastBgPid: rt.LastBgPid,
 LastArg: rt.LastArg,
 Pid: rt.Pid,
 Shlvl: rt.Shlvl + 1,
 OPTIND: rt.OPTIND,
 OPTARG: rt.OPTARG,
 History: rt.History,
 Dir: rt.Dir,
 Stdout: rt.Stdout,
 Stderr: rt.Stderr,
 Stdin: rt.Stdin,
	}
	clone.Scopes = make([]map[string]*expand.Variable, len(rt.Scopes))
	for i, scope := range rt.Scopes {
 copied := make(map[string]*expand.Variable, len(scope))
 for k, v := range scope {
 cp := *v
 copied[k] = &cp
 }
 clone.Scopes[i] = copied
	}
	for k, v := range rt.Readonly {
 clone.Readonly[k] = v
	}
	for k, v := range rt.Functions {
 clone.Functions[k] = v
	}
	for k, v := range rt.Aliases {
 clone.Aliases[k] = v
	}
	for k, v := range rt.Traps {
 clone.Traps[k] = v
	}
	clone.Positional = make([][]string, len(rt.Positional))
	for i, p := range rt.Positional {
 cp := make([]string, len(p))
 copy(cp, p)
 clone.Positional[i] = cp
	}
	clone.CallStack = append([]string(nil), rt.CallStack...)
	return clone
}

// lookup walks the scope stack top-down, innermost scope first.
func (rt *Runtime) lookup(name string) (*expand.Variable, int) {
	for i := len(rt.Scopes) - 1; i >= 0; i-- {
 if v, ok := rt.Scopes[i][name]; ok {
 return v, i
 }
	}
	return nil, -1
}

// pushScope implements `local`'s push_scope invariant.
func (rt *Runtime) pushScope() {
	rt.Scopes = append(rt.Scopes, map[string]*expand.Variable{})
}

func (rt *Runtime) popScope() {
	rt.Scopes = rt.Scopes[:len(rt.Scopes)-1]
}

func (rt *Runtime) pushPositional(args []string) {
	rt.Positional = append(rt.Positional, args)
}

func (rt *Runtime) popPositional() {
	rt.Positional = rt.Positional[:len(rt.Positional)-1]
}

func (rt *Runtime) positional() []string {
	return rt.Positional[len(rt.Positional)-1]
}

// ReadonlyError is returned when an assignment targets a readonly name.
type ReadonlyError struct {
	Name string
}

func (e *ReadonlyError) Error() string {
	return fmt.Sprintf("%s: readonly variable", e.Name)
}

// nextJobID allocates a job table id, 1-based like a real job control shell.
func (rt *Runtime) nextJobID() int {
	rt.nextJob++
	return rt.nextJob
}

// recordHistory appends line to the bounded history ring buffer, keyed by
// an increasing sequence number so the LRU evicts the oldest entry first
// once it fills.
func (rt *Runtime) recordHistory(line string) {
	if line == "" {
 return
	}
	rt.histSeq++
	rt.History.Add(rt.histSeq, line)
}

// recentHistory returns up to n of the most recently recorded history
// entries, newest first. Used by command-not-found suggestions.
func (rt *Runtime) recentHistory(n int) []string {
	keys := rt.History.Keys()
	out := make([]string, 0, n)
	for i := len(keys) - 1; i >= 0 && len(out) < n; i-- {
 if v, ok := rt.History.Peek(keys[i]); ok {
 out = append(out, v)
 }
	}
	return out
}

// SetGlobal sets a variable directly in the global (bottom) scope. It is
// exported for callers outside the package, such as cmd/cirrus applying
// config-file defaults before any script runs.
func (rt *Runtime) SetGlobal(name, value string) {
	rt.Scopes[0][name] = &expand.Variable{Set: true, Value: value}
}
