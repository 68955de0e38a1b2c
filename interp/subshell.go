package interp

import (
	"errors"
	"os"

	"github.com/cirrusshell/cirrus/ast"
)

// execSubshell implements this shell's `(...)`: clone the runtime, run
// the body against the clone, and discard every mutation except the
// combined output and exit code. An `exit` inside the subshell is caught
// here, not at the process boundary.
func (ex *Executor) execSubshell(s *ast.Subshell) error {
	clone := ex.RT.Clone()
	sub := &Executor{RT: clone, Log: ex.Log, Suggest: ex.Suggest, EnableProfiling: ex.EnableProfiling, Profile: ex.Profile, maxDepth: ex.maxDepth}
	err := sub.execListNoSignals(s.Body)
	if clone.Dir != ex.RT.Dir {
 // `cd` changes the process's working directory; move it back.
 _ = os.Chdir(ex.RT.Dir)
	}

	var es *exitSignal
	if errors.As(err, &es) {
 ex.RT.LastExit = es.Code
 return nil
	}
	ex.RT.LastExit = clone.LastExit
	if isControl(err) {
 return err
	}
	return err
}

// execListNoSignals runs a subshell body without wiring OS signal delivery:
// the subshell shares the parent process's signal disposition, so a clone
// only needs cloned Runtime state, not a cloned signal channel.
func (ex *Executor) execListNoSignals(stmts []*ast.Statement) error {
	for _, st := range stmts {
 err := ex.execStatement(st)
 if isControl(err) {
 return err
 }
 if err != nil && !errors.As(err, new(*commandNotFoundError)) {
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

// execBackground spawns stmt without waiting, registering it in the job
// table and setting $!.
func (ex *Executor) execBackground(b *ast.BackgroundCommand) error {
	clone := ex.RT.Clone()
	sub := &Executor{RT: clone, Log: ex.Log, Suggest: ex.Suggest, EnableProfiling: ex.EnableProfiling, Profile: ex.Profile, maxDepth: ex.maxDepth}

	job := &Job{Command: renderStatement(b.Stmt), Status: JobRunning}
	job.ID = ex.RT.nextJobID()
	// A background statement may be a pipeline, builtin, or compound
	// command, not always a single external process with one real pid,
	// so the job table key (job.ID) doubles as the synthesized "$!" value
	// rather than a literal kernel pid; no real pid is recorded on the Job,
	// even when the statement runs an external command.
	job.Pid = job.ID
	ex.RT.Jobs[job.ID] = job

	done := make(chan int, 1)
	go func() {
 _ = sub.execListNoSignals([]*ast.Statement{b.Stmt})
 done <- clone.LastExit
	}()

	ex.RT.LastBgPid = job.Pid
	ex.RT.LastExit = 0
	go func() {
 code := <-done
 job.Status = JobDone
 job.Exit = code
	}()
	return nil
}

// execParallel implements `|||`: every element runs concurrently against
// its own cloned runtime snapshot; results are joined in submission order.
func (ex *Executor) execParallel(p *ast.ParallelExecution) error {
	type result struct {
 out string
 code int
	}
	results := make([]result, len(p.Elements))
	done := make(chan int, len(p.Elements))
	for i, st := range p.Elements {
 i, st := i, st
 go func() {
 r, w, perr := newPipe()
 clone := ex.RT.Clone()
 if perr == nil {
 clone.Stdout = w
 }
 sub := &Executor{RT: clone, Log: ex.Log, Suggest: ex.Suggest, EnableProfiling: ex.EnableProfiling, Profile: ex.Profile, maxDepth: ex.maxDepth}
 _ = sub.execListNoSignals([]*ast.Statement{st})
 var out string
 if perr == nil {
 w.Close()
 out = readAllString(r)
 r.Close()
 }
 results[i] = result{out: out, code: clone.LastExit}
 done <- i
 }()
	}
	maxCode := 0
	for range p.Elements {
 <-done
	}
	for _, r := range results {
 ex.RT.Stdout.WriteString(r.out)
 if r.code > maxCode {
 maxCode = r.code
 }
	}
	ex.RT.LastExit = maxCode
	return nil
}
