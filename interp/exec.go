package interp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
	"github.com/cirrusshell/cirrus/interp/suggest"
	"github.com/cirrusshell/cirrus/parser"
)

// Executor walks a parsed program against a Runtime.
type Executor struct {
	RT *Runtime
	Log zerolog.Logger

	Suggest *suggest.Engine

	// EnableProfiling turns on the per-stage execution timing collector
	// (off by default; see profile.go). Profile is always allocated so
	// callers can inspect it even before enabling collection.
	EnableProfiling bool
	Profile *ProfileData

	// condDepth is non-zero while evaluating a conditional context (if/while/
	// until condition, &&, ||, !). errexit and the ERR trap are suppressed in
	// this state.
	condDepth int

	sigCh chan os.Signal
	pending []os.Signal
	maxDepth int
}

// NewExecutor builds an Executor over rt, wiring the default stderr-leveled
// zerolog logger.
func NewExecutor(rt *Runtime) *Executor {
	ex := &Executor{
 RT: rt,
 Log: zerolog.New(rt.Stderr).With().Timestamp().Logger(),
 Suggest: suggest.New(),
 Profile: NewProfileData(),
 maxDepth: 100,
	}
	ex.sigCh = make(chan os.Signal, 8)
	signal.Notify(ex.sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	return ex
}

// Run executes a top-level program, wiring the EXIT trap and top-level exit
// semantics: EXIT runs after the main command loop ends, or after an
// uncaught exit signal is caught.
func (ex *Executor) Run(stmts []*ast.Statement) int {
	if ex.EnableProfiling {
 ex.Profile.StartTotal()
	}
	err := ex.execList(stmts)
	code := ex.RT.LastExit
	var es *exitSignal
	if errors.As(err, &es) {
 code = es.Code
	} else if err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus:", err)
 code = 1
	}
	if cmd, ok := ex.RT.Traps["EXIT"]; ok && cmd != "" {
 ex.runTrapCommand(cmd)
	}
	return code
}

// checkpoint services any pending OS signal against the trap table: the
// executor inserts checkpoints before each statement.
func (ex *Executor) checkpoint() error {
	for {
 select {
 case sig := <-ex.sigCh:
 name := signalName(sig)
 if cmd, ok := ex.RT.Traps[name]; ok {
 if cmd != "" {
 ex.runTrapCommand(cmd)
 }
 continue
 }
 if name == "INT" || name == "TERM" {
 return &exitSignal{Code: 128 + signalNumber(name)}
 }
 default:
 return nil
 }
	}
}

func signalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
 return "INT"
	case syscall.SIGTERM:
 return "TERM"
	case syscall.SIGHUP:
 return "HUP"
	default:
 return sig.String()
	}
}

func signalNumber(name string) int {
	switch name {
	case "HUP":
 return 1
	case "INT":
 return 2
	case "TERM":
 return 15
	default:
 return 0
	}
}

func (ex *Executor) runTrapCommand(cmd string) {
	file, err := ex.parseTimed(cmd, "trap")
	if err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus: trap:", err)
 return
	}
	_ = ex.execList(file.Stmts)
}

// parseTimed re-parses a runtime string (trap command, `eval`/`.` body,
// alias replacement) through package parser, recording the call against
// StageParse when profiling is enabled.
func (ex *Executor) parseTimed(src, name string) (*ast.File, error) {
	var file *ast.File
	err := ex.timeStage(StageParse, func() error {
 var perr error
 file, perr = parseSource(src, name)
 return perr
	})
	return file, err
}

// execList runs a statement list, applying errexit and the ERR trap after
// each statement.
func (ex *Executor) execList(stmts []*ast.Statement) error {
	for _, st := range stmts {
 if err := ex.checkpoint(); err != nil {
 return err
 }
 err := ex.execStatement(st)
 if isControl(err) {
 return err
 }
 if err != nil && !errors.As(err, new(*commandNotFoundError)) {
 fmt.Fprintln(ex.RT.Stderr, "cirrus:", err)
 ex.RT.LastExit = 1
 }
 if ex.RT.LastExit != 0 && ex.condDepth == 0 && !st.Negated {
 if cmd, ok := ex.RT.Traps["ERR"]; ok && cmd != "" {
 ex.runTrapCommand(cmd)
 }
 if ex.RT.Options.Errexit {
 return &exitSignal{Code: ex.RT.LastExit}
 }
 }
	}
	return nil
}

func isControl(err error) bool {
	var c controlSignal
	return errors.As(err, &c)
}

// execStatement dispatches one Statement by Kind, applying the leading `!`
// negation that attaches to any statement.
func (ex *Executor) execStatement(st *ast.Statement) error {
	if st.Negated {
 ex.condDepth++
	}
	err := ex.execKind(st)
	if st.Negated {
 ex.condDepth--
	}
	if isControl(err) {
 return err
	}
	if st.Negated {
 if err != nil {
 ex.RT.LastExit = 1
 } else if ex.RT.LastExit == 0 {
 ex.RT.LastExit = 1
 } else {
 ex.RT.LastExit = 0
 }
 return nil
	}
	return err
}

func (ex *Executor) execKind(st *ast.Statement) error {
	switch st.Kind {
	case ast.KindCommand:
 return ex.execCommand(st.Command)
	case ast.KindPipeline:
 return ex.execPipeline(st.Pipeline)
	case ast.KindParallel:
 return ex.execParallel(st.Parallel)
	case ast.KindAssignment:
 return ex.execAssignment(st.Assign)
	case ast.KindFunctionDef:
 ex.RT.Functions[st.FuncDef.Name] = st.FuncDef
 ex.RT.LastExit = 0
 return nil
	case ast.KindIf:
 return ex.execIf(st.If)
	case ast.KindFor:
 return ex.execFor(st.For)
	case ast.KindWhile:
 return ex.execWhile(st.While)
	case ast.KindUntil:
 return ex.execUntil(st.Until)
	case ast.KindCase:
 return ex.execCase(st.Case)
	case ast.KindAnd:
 return ex.execAnd(st.And)
	case ast.KindOr:
 return ex.execOr(st.Or)
	case ast.KindSubshell:
 return ex.execSubshell(st.Subshell)
	case ast.KindBrace:
 return ex.execList(st.Brace.Body)
	case ast.KindBackground:
 return ex.execBackground(st.Background)
	}
	return fmt.Errorf("interp: unhandled statement kind %d", st.Kind)
}

func (ex *Executor) execAssignment(a *ast.Assignment) error {
	exp := ex.expander()
	val, err := exp.Argument(a.Value)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	if a.Append {
 cur := ex.RT.environ().Get(a.Name)
 val = cur.Value + val
	}
	if err := ex.RT.setVar(a.Name, expand.Variable{Set: true, Value: val}); err != nil {
 ex.RT.LastExit = 1
 return err
	}
	ex.RT.LastExit = 0
	return nil
}

// expander builds an Expander bound to the current runtime, wiring command
// substitution back through the executor.
func (ex *Executor) expander() *expand.Expander {
	return &expand.Expander{
 Env: ex.RT.environ(),
 NoGlob: ex.RT.Options.NoGlob,
 CommandSubst: func(stmts []*ast.Statement) (string, error) {
 return ex.captureCommandSubst(stmts)
 },
	}
}

// captureCommandSubst runs stmts against a cloned runtime (so mutations
// don't escape) and returns its captured, trailing-newline-stripped
// stdout.
func (ex *Executor) captureCommandSubst(stmts []*ast.Statement) (string, error) {
	var result string
	err := ex.timeStage(StageCommandSubstitution, func() error {
 r, w, err := os.Pipe()
 if err != nil {
 return err
 }
 clone := ex.RT.Clone()
 clone.Stdout = w
 sub := &Executor{RT: clone, Log: ex.Log, Suggest: ex.Suggest, EnableProfiling: ex.EnableProfiling, Profile: ex.Profile, maxDepth: ex.maxDepth}
 sub.sigCh = make(chan os.Signal, 1)

 done := make(chan struct{})
 var out []byte
 go func() {
 out, _ = io.ReadAll(r)
 close(done)
 }()

 _ = sub.execList(stmts)
 if clone.Dir != ex.RT.Dir {
 // `cd` changes the process's working directory; move it back.
 _ = os.Chdir(ex.RT.Dir)
 }
 w.Close()
 <-done
 r.Close()

 ex.RT.LastExit = clone.LastExit
 for len(out) > 0 && out[len(out)-1] == '\n' {
 out = out[:len(out)-1]
 }
 result = string(out)
 return nil
	})
	return result, err
}

// parseSource is the shared hook used by command substitution, `eval`,
// `.`/source, and trap command strings, all of which re-enter the parser on
// a runtime string rather than the original script text.
func parseSource(src, name string) (*ast.File, error) {
	return parser.Parse(src, name)
}
