package interp

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/expand"
)

// builtinFunc is one builtin's handler. The table below holds the
// control-flow-coupled core set, the supplemented getopts/command/read,
// the convenience builtins :, cd, echo, alias and unalias, and profile.
// Builtins run in-process against the current Runtime, so
// unlike an external command they can mutate scopes, traps, and options
// directly.
type builtinFunc func(ex *Executor, args []string) error

var builtins = map[string]builtinFunc{
	"break": biBreak,
	"continue": biContinue,
	"return": biReturn,
	"exit": biExit,
	"local": biLocal,
	"trap": biTrap,
	"set": biSet,
	"shift": biShift,
	"readonly": biReadonly,
	"unset": biUnset,
	"export": biExport,
	"eval": biEval,
	".": biSource,
	"source": biSource,
	"getopts": biGetopts,
	"command": biCommand,
	"read": biRead,
	":": biColon,
	"cd": biCd,
	"echo": biEcho,
	"alias": biAlias,
	"unalias": biUnalias,
	"profile": biProfile,
}

// runBuiltinWithRedirects applies the redirection-for-builtins contract
// around a builtin invocation: builtins can't dup fds, so their output is
// simply written to whatever Runtime.Stdout/Stderr/Stdin applyRedirects
// swapped in for the duration of the call.
func (ex *Executor) runBuiltinWithRedirects(fn builtinFunc, args []string, redirects []*ast.Redirect) error {
	restore, err := ex.applyRedirects(redirects)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	defer restore()
	return ex.timeStage(StageBuiltinExecution, func() error { return fn(ex, args) })
}

func usageError(ex *Executor, name, msg string) error {
	fmt.Fprintf(ex.RT.Stderr, "cirrus: %s: %s\n", name, msg)
	ex.RT.LastExit = 2
	return nil
}

func biColon(ex *Executor, args []string) error {
	ex.RT.LastExit = 0
	return nil
}

func biBreak(ex *Executor, args []string) error {
	if ex.RT.LoopDepth == 0 {
 return usageError(ex, "break", "only meaningful in a loop")
	}
	n := 1
	if len(args) > 0 {
 if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
 n = v
 }
	}
	ex.RT.LastExit = 0
	return &breakSignal{Level: n}
}

func biContinue(ex *Executor, args []string) error {
	if ex.RT.LoopDepth == 0 {
 return usageError(ex, "continue", "only meaningful in a loop")
	}
	n := 1
	if len(args) > 0 {
 if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
 n = v
 }
	}
	ex.RT.LastExit = 0
	return &continueSignal{Level: n}
}

func biReturn(ex *Executor, args []string) error {
	if ex.RT.FuncDepth == 0 {
 return usageError(ex, "return", "can only be used in a function")
	}
	code := ex.RT.LastExit
	if len(args) > 0 {
 if v, err := strconv.Atoi(args[0]); err == nil {
 code = v
 }
	}
	return &returnSignal{Code: code}
}

func biExit(ex *Executor, args []string) error {
	code := ex.RT.LastExit
	if len(args) > 0 {
 if v, err := strconv.Atoi(args[0]); err == nil {
 code = v
 }
	}
	return &exitSignal{Code: code}
}

func biLocal(ex *Executor, args []string) error {
	if ex.RT.FuncDepth == 0 {
 return usageError(ex, "local", "can only be used in a function")
	}
	for _, a := range args {
 name, val, hasVal := strings.Cut(a, "=")
 if !hasVal {
 if err := ex.RT.setLocal(name, expand.Variable{Set: true, Value: ""}); err != nil {
 return err
 }
 continue
 }
 if err := ex.RT.setLocal(name, expand.Variable{Set: true, Value: val}); err != nil {
 return err
 }
	}
	ex.RT.LastExit = 0
	return nil
}

func biReadonly(ex *Executor, args []string) error {
	for _, a := range args {
 name, val, hasVal := strings.Cut(a, "=")
 if hasVal {
 if err := ex.RT.setVar(name, expand.Variable{Set: true, Value: val}); err != nil {
 ex.RT.LastExit = 1
 return nil
 }
 }
 ex.RT.Readonly[name] = true
	}
	ex.RT.LastExit = 0
	return nil
}

func biUnset(ex *Executor, args []string) error {
	for _, name := range args {
 if ex.RT.Readonly[name] {
 ex.RT.LastExit = 1
 return &ReadonlyError{Name: name}
 }
 ex.clearVar(name)
 delete(ex.RT.Functions, name)
	}
	ex.RT.LastExit = 0
	return nil
}

func biExport(ex *Executor, args []string) error {
	for _, a := range args {
 name, val, hasVal := strings.Cut(a, "=")
 v := ex.RT.environ().Get(name)
 if hasVal {
 v.Value = val
 v.Set = true
 }
 v.Exported = true
 if err := ex.RT.setVar(name, v); err != nil {
 ex.RT.LastExit = 1
 return err
 }
	}
	ex.RT.LastExit = 0
	return nil
}

func biEval(ex *Executor, args []string) error {
	src := strings.Join(args, " ")
	file, err := ex.parseTimed(src, "eval")
	if err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus: eval:", err)
 ex.RT.LastExit = 2
 return nil
	}
	return ex.execList(file.Stmts)
}

func biSource(ex *Executor, args []string) error {
	if len(args) == 0 {
 return usageError(ex, ".", "filename argument required")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus:", err)
 ex.RT.LastExit = 1
 return nil
	}
	file, err := ex.parseTimed(string(data), args[0])
	if err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus:", err)
 ex.RT.LastExit = 2
 return nil
	}
	saved := append([]string(nil), ex.RT.positional()...)
	if len(args) > 1 {
 ex.RT.Positional[len(ex.RT.Positional)-1] = args[1:]
	}
	err = ex.execList(file.Stmts)
	ex.RT.Positional[len(ex.RT.Positional)-1] = saved
	return err
}

func biCd(ex *Executor, args []string) error {
	dir := ex.RT.environ().Get("HOME").Value
	if len(args) > 0 {
 dir = args[0]
	}
	old := ex.RT.Dir
	if err := os.Chdir(dir); err != nil {
 fmt.Fprintln(ex.RT.Stderr, "cirrus: cd:", err)
 ex.RT.LastExit = 1
 return nil
	}
	abs, err := os.Getwd()
	if err != nil {
 abs = dir
	}
	ex.RT.Dir = abs
	ex.RT.setVar("OLDPWD", expand.Variable{Set: true, Value: old, Exported: true})
	ex.RT.setVar("PWD", expand.Variable{Set: true, Value: abs, Exported: true})
	ex.RT.LastExit = 0
	return nil
}

func biEcho(ex *Executor, args []string) error {
	fmt.Fprintln(ex.RT.Stdout, strings.Join(args, " "))
	ex.RT.LastExit = 0
	return nil
}

func biAlias(ex *Executor, args []string) error {
	if len(args) == 0 {
 for name, repl := range ex.RT.Aliases {
 fmt.Fprintf(ex.RT.Stdout, "alias %s='%s'\n", name, repl)
 }
 ex.RT.LastExit = 0
 return nil
	}
	for _, a := range args {
 name, repl, ok := strings.Cut(a, "=")
 if !ok {
 if repl, ok := ex.RT.Aliases[name]; ok {
 fmt.Fprintf(ex.RT.Stdout, "alias %s='%s'\n", name, repl)
 }
 continue
 }
 ex.RT.Aliases[name] = repl
	}
	ex.RT.LastExit = 0
	return nil
}

func biUnalias(ex *Executor, args []string) error {
	for _, name := range args {
 delete(ex.RT.Aliases, name)
	}
	ex.RT.LastExit = 0
	return nil
}

// biRead implements the read builtin: -r (raw,
// no backslash processing), -p prompt, multi-var splitting on IFS.
func biRead(ex *Executor, args []string) error {
	raw := false
	prompt := ""
	var names []string
	for i := 0; i < len(args); i++ {
 switch args[i] {
 case "-r":
 raw = true
 case "-p":
 i++
 if i < len(args) {
 prompt = args[i]
 }
 default:
 names = append(names, args[i])
 }
	}
	if len(names) == 0 {
 names = []string{"REPLY"}
	}
	if prompt != "" {
 fmt.Fprint(ex.RT.Stderr, prompt)
	}
	reader := bufio.NewReader(ex.RT.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
 ex.RT.LastExit = 1
 return nil
	}
	line = strings.TrimSuffix(line, "\n")
	if !raw {
 line = strings.ReplaceAll(line, "\\", "")
	}
	ifs := ex.RT.environ().Get("IFS").Value
	if ifs == "" {
 ifs = " \t\n"
	}
	fields := strings.FieldsFunc(line, func(r rune) bool { return strings.ContainsRune(ifs, r) })
	for i, name := range names {
 val := ""
 if i < len(fields) {
 if i == len(names)-1 {
 val = strings.Join(fields[i:], " ")
 } else {
 val = fields[i]
 }
 }
 ex.RT.setVar(name, expand.Variable{Set: true, Value: val})
	}
	ex.RT.LastExit = 0
	return nil
}

// biGetopts implements the getopts builtin,
// tracking OPTIND/OPTARG in the Runtime.
func biGetopts(ex *Executor, args []string) error {
	if len(args) < 2 {
 return usageError(ex, "getopts", "optstring name")
	}
	optstring, name := args[0], args[1]
	operands := ex.RT.positional()
	if ex.RT.OPTIND == 0 {
 ex.RT.OPTIND = 1
	}
	idx := ex.RT.OPTIND - 1
	if idx >= len(operands) {
 ex.RT.LastExit = 1
 return nil
	}
	arg := operands[idx]
	if len(arg) < 2 || arg[0] != '-' {
 ex.RT.LastExit = 1
 return nil
	}
	opt := arg[1]
	pos := strings.IndexByte(optstring, opt)
	if pos < 0 {
 ex.RT.setVar(name, expand.Variable{Set: true, Value: "?"})
 ex.RT.OPTIND++
 ex.RT.LastExit = 0
 return nil
	}
	ex.RT.setVar(name, expand.Variable{Set: true, Value: string(opt)})
	if pos+1 < len(optstring) && optstring[pos+1] == ':' {
 ex.RT.OPTIND++
 if ex.RT.OPTIND-1 < len(operands) {
 ex.RT.OPTARG = operands[ex.RT.OPTIND-1]
 }
	}
	ex.RT.OPTIND++
	ex.RT.LastExit = 0
	return nil
}

// biCommand implements the command builtin:
// bypass function/alias lookup, going straight to builtin-or-external.
func biCommand(ex *Executor, args []string) error {
	if len(args) == 0 {
 ex.RT.LastExit = 0
 return nil
	}
	if args[0] == "-v" || args[0] == "-V" {
 if len(args) < 2 {
 ex.RT.LastExit = 1
 return nil
 }
 name := args[1]
 switch {
 case builtins[name] != nil:
 fmt.Fprintln(ex.RT.Stdout, name)
 default:
 if path, err := ex.lookPath(name); err == nil {
 fmt.Fprintln(ex.RT.Stdout, path)
 } else {
 ex.RT.LastExit = 1
 return nil
 }
 }
 ex.RT.LastExit = 0
 return nil
	}
	name, rest := args[0], args[1:]
	if handler, ok := builtins[name]; ok {
 return handler(ex, rest)
	}
	return ex.execExternal(name, rest, nil)
}
