package interp

import (
	"fmt"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
)

// execCommand implements this shell's "Simple Command": apply the
// prefix-env (save/restore), expand alias replacement once, then resolve
// function → builtin → external in that order (the order resolved
// for this shell).
func (ex *Executor) execCommand(c *ast.Command) error {
	restore, err := ex.applyPrefixEnv(c.PrefixEnv)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	if c.Name == nil {
 // A bare prefix-assignment "command" (`A=1 B=2` alone): the
 // assignments above stay applied; nothing further to run.
 ex.RT.LastExit = 0
 return nil
	}
	defer restore()

	exp := ex.expander()
	name, err := exp.Argument(c.Name)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}

	var args []string
	err = ex.timeStage(StageVariableExpansion, func() error {
 var ferr error
 args, ferr = ex.expandArgList(c.Args)
 return ferr
	})
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}

	name, args = ex.expandAlias(name, args)
	if len(args) > 0 {
 ex.RT.LastArg = args[len(args)-1]
	} else {
 ex.RT.LastArg = name
	}

	ex.RT.recordHistory(renderCommandLine(name, args))

	if ex.RT.Options.Xtrace {
 ex.traceCommand(name, args)
	}

	if fn, ok := ex.RT.Functions[name]; ok {
 return ex.callFunction(fn, args, c.Redirects)
	}
	if handler, ok := builtins[name]; ok {
 return ex.runBuiltinWithRedirects(handler, args, c.Redirects)
	}
	return ex.execExternal(name, args, c.Redirects)
}

// expandArgList expands a command's arguments (the name is expanded
// separately) into the final field list, applying the full expansion
// pipeline.
func (ex *Executor) expandArgList(argv []*ast.Argument) ([]string, error) {
	exp := ex.expander()
	return exp.Fields(argv)
}

// expandAlias splices a matching alias's replacement text into the front of
// the command, one level deep (no recursion).
func (ex *Executor) expandAlias(name string, args []string) (string, []string) {
	repl, ok := ex.RT.Aliases[name]
	if !ok {
 return name, args
	}
	file, err := ex.parseTimed(repl, "alias:"+name)
	if err != nil || len(file.Stmts) == 0 {
 return name, args
	}
	st := file.Stmts[0]
	if st.Kind != ast.KindCommand || st.Command == nil || st.Command.Name == nil {
 return name, args
	}
	exp := ex.expander()
	newName, err := exp.Argument(st.Command.Name)
	if err != nil {
 return name, args
	}
	var newArgs []string
	for _, a := range st.Command.Args {
 s, err := exp.Argument(a)
 if err != nil {
 continue
 }
 newArgs = append(newArgs, s)
	}
	return newName, append(newArgs, args...)
}

// applyPrefixEnv saves the previous value of each prefix-assignment name
// and applies the new one, returning a restore func: save old values, set
// new, restore after the command runs.
func (ex *Executor) applyPrefixEnv(assigns []ast.Assignment) (func(), error) {
	if len(assigns) == 0 {
 return func() {}, nil
	}
	type saved struct {
 name string
 had bool
 v expand.Variable
	}
	var saves []saved
	exp := ex.expander()
	for _, a := range assigns {
 old, idx := ex.RT.lookup(a.Name)
 had := idx >= 0
 var ov expand.Variable
 if had {
 ov = *old
 }
 saves = append(saves, saved{name: a.Name, had: had, v: ov})

 val, err := exp.Argument(a.Value)
 if err != nil {
 return func() {}, err
 }
 if err := ex.RT.setVar(a.Name, expand.Variable{Set: true, Value: val}); err != nil {
 return func() {}, err
 }
	}
	return func() {
 for _, s := range saves {
 if s.had {
 ex.RT.setVar(s.name, s.v)
 } else {
 ex.clearVar(s.name)
 }
 }
	}, nil
}

func (ex *Executor) clearVar(name string) {
	for i := len(ex.RT.Scopes) - 1; i >= 0; i-- {
 if _, ok := ex.RT.Scopes[i][name]; ok {
 delete(ex.RT.Scopes[i], name)
 return
 }
	}
}

func (ex *Executor) traceCommand(name string, args []string) {
	line := "+ " + name
	for _, a := range args {
 line += " " + a
	}
	fmt.Fprintln(ex.RT.Stderr, line)
	ex.Log.Trace().Str("command", name).Strs("args", args).Msg("xtrace")
}
