package interp

import (
	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
)

// execCond runs a command-list condition inside the conditional-context
// suppression this shell applies: errexit and the ERR trap
// do not fire while a command's exit status is being tested.
func (ex *Executor) execCond(stmts []*ast.Statement) error {
	ex.condDepth++
	defer func() { ex.condDepth-- }()
	return ex.execList(stmts)
}

func (ex *Executor) execAnd(a *ast.ConditionalAnd) error {
	if err := ex.execCondStatement(a.X); isControl(err) {
 return err
	}
	if ex.RT.LastExit != 0 {
 return nil
	}
	return ex.execCondStatement(a.Y)
}

func (ex *Executor) execOr(o *ast.ConditionalOr) error {
	if err := ex.execCondStatement(o.X); isControl(err) {
 return err
	}
	if ex.RT.LastExit == 0 {
 return nil
	}
	return ex.execCondStatement(o.Y)
}

// execCondStatement runs a single statement (the operand of &&, ||, or !)
// under the same conditional suppression execCond applies to a whole list.
func (ex *Executor) execCondStatement(st *ast.Statement) error {
	ex.condDepth++
	defer func() { ex.condDepth-- }()
	return ex.execStatement(st)
}

func truthy(last int, word string) bool {
	if word != "" {
 return word != "0" && word != "false"
	}
	return last == 0
}

func (ex *Executor) execIf(i *ast.IfStatement) error {
	for _, arm := range i.Arms {
 if err := ex.execCond(arm.Cond); isControl(err) {
 return err
 }
 if truthy(ex.RT.LastExit, "") {
 return ex.execList(arm.Body)
 }
	}
	if i.Else != nil {
 return ex.execList(i.Else)
	}
	ex.RT.LastExit = 0
	return nil
}

func (ex *Executor) execFor(f *ast.ForLoop) error {
	var words []string
	if f.Words == nil {
 words = ex.RT.positional()
	} else {
 exp := ex.expander()
 err := ex.timeStage(StageGlobExpansion, func() error {
 var ferr error
 words, ferr = exp.Fields(f.Words)
 return ferr
 })
 if err != nil {
 ex.RT.LastExit = 1
 return err
 }
	}
	ex.RT.LoopDepth++
	defer func() { ex.RT.LoopDepth-- }()
	for _, w := range words {
 if err := ex.checkpoint(); err != nil {
 return err
 }
 if err := ex.RT.setVar(f.Name, expand.Variable{Set: true, Value: w}); err != nil {
 return err
 }
 err := ex.execList(f.Body)
 if brk, ok := asBreak(err); ok {
 if brk.Level > 1 {
 brk.Level--
 return brk
 }
 break
 }
 if cont, ok := asContinue(err); ok {
 if cont.Level > 1 {
 cont.Level--
 return cont
 }
 continue
 }
 if err != nil {
 return err
 }
	}
	return nil
}

func (ex *Executor) execWhile(w *ast.WhileLoop) error {
	ex.RT.LoopDepth++
	defer func() { ex.RT.LoopDepth-- }()
	for {
 if err := ex.checkpoint(); err != nil {
 return err
 }
 if err := ex.execCond(w.Cond); isControl(err) {
 return err
 }
 if ex.RT.LastExit != 0 {
 break
 }
 err := ex.execList(w.Body)
 stop, propagate, err := loopBoundary(err)
 if propagate {
 return err
 }
 if stop {
 break
 }
	}
	ex.RT.LastExit = 0
	return nil
}

func (ex *Executor) execUntil(u *ast.UntilLoop) error {
	ex.RT.LoopDepth++
	defer func() { ex.RT.LoopDepth-- }()
	for {
 if err := ex.checkpoint(); err != nil {
 return err
 }
 if err := ex.execCond(u.Cond); isControl(err) {
 return err
 }
 if ex.RT.LastExit == 0 {
 break
 }
 err := ex.execList(u.Body)
 stop, propagate, err := loopBoundary(err)
 if propagate {
 return err
 }
 if stop {
 break
 }
	}
	ex.RT.LastExit = 0
	return nil
}

// loopBoundary interprets a body's result at a while/until loop boundary:
// stop reports whether the loop should end (a break at this level),
// propagate reports whether err must unwind further (an outer
// break/continue level, return/exit, or any other non-nil error); a
// continue at this level or a nil result goes on to the next condition
// check.
func loopBoundary(err error) (stop, propagate bool, out error) {
	if brk, ok := asBreak(err); ok {
 if brk.Level > 1 {
 brk.Level--
 return false, true, brk
 }
 return true, false, nil
	}
	if cont, ok := asContinue(err); ok {
 if cont.Level > 1 {
 cont.Level--
 return false, true, cont
 }
 return false, false, nil
	}
	if isControl(err) {
 return false, true, err
	}
	if err != nil {
 return false, true, err
	}
	return false, false, nil
}

func asBreak(err error) (*breakSignal, bool) {
	b, ok := err.(*breakSignal)
	return b, ok
}

func asContinue(err error) (*continueSignal, bool) {
	c, ok := err.(*continueSignal)
	return c, ok
}

func (ex *Executor) execCase(c *ast.CaseStatement) error {
	exp := ex.expander()
	word, err := exp.Argument(c.Word)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	for _, arm := range c.Arms {
 for _, patArg := range arm.Patterns {
 pat, err := exp.Argument(patArg)
 if err != nil {
 continue
 }
 if matchGlob(pat, word) {
 return ex.execList(arm.Body)
 }
 }
	}
	ex.RT.LastExit = 0
	return nil
}
