package interp

import (
	"os"

	"github.com/cirrusshell/cirrus/ast"
)

// execPipeline builds the pipeline left-to-right, wiring a pipe between
// each adjacent pair and spawning all stages before waiting on any of them.
func (ex *Executor) execPipeline(p *ast.Pipeline) error {
	n := len(p.Elements)
	if n == 0 {
 ex.RT.LastExit = 0
 return nil
	}
	if n == 1 {
 err := ex.execStatement(p.Elements[0])
 if p.Negated {
 ex.negateExit()
 }
 return err
	}

	stageRT := make([]*Runtime, n)
	readers := make([]*os.File, n)
	writers := make([]*os.File, n)
	err := ex.timeStage(StagePipelineSetup, func() error {
 for i := 0; i < n; i++ {
 stageRT[i] = ex.RT.Clone()
 }
 for i := 0; i < n-1; i++ {
 r, w, err := os.Pipe()
 if err != nil {
 return err
 }
 readers[i+1] = r
 writers[i] = w
 }
 for i := 0; i < n; i++ {
 if writers[i] != nil {
 stageRT[i].Stdout = writers[i]
 }
 if readers[i] != nil {
 stageRT[i].Stdin = readers[i]
 }
 }
 return nil
	})
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}

	done := make(chan int, n)
	for i := 0; i < n; i++ {
 i := i
 go func() {
 sub := &Executor{RT: stageRT[i], Log: ex.Log, Suggest: ex.Suggest, EnableProfiling: ex.EnableProfiling, Profile: ex.Profile, maxDepth: ex.maxDepth}
 _ = sub.execListNoSignals([]*ast.Statement{p.Elements[i]})
 if writers[i] != nil {
 writers[i].Close()
 }
 if readers[i] != nil {
 readers[i].Close()
 }
 done <- stageRT[i].LastExit
 }()
	}

	for i := 0; i < n; i++ {
 <-done
	}
	last := stageRT[n-1].LastExit
	code := last
	if ex.RT.Options.Pipefail {
 code = 0
 for _, rt := range stageRT {
 if rt.LastExit != 0 {
 code = rt.LastExit
 }
 }
	}
	ex.RT.LastExit = code
	if p.Negated {
 ex.negateExit()
	}
	return nil
}

func (ex *Executor) negateExit() {
	if ex.RT.LastExit == 0 {
 ex.RT.LastExit = 1
	} else {
 ex.RT.LastExit = 0
	}
}
