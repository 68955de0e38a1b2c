package expand

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/pattern"
)

// CommandSubstFunc runs the statements inside a `$(...)` or `` `...` ``
// form and returns its captured, trailing-newline-stripped stdout. The
// interp package supplies the real implementation, running the
// statements against a cloned runtime.
type CommandSubstFunc func(stmts []*ast.Statement) (string, error)

// Expander carries everything word expansion needs: the variable table,
// the command-substitution hook, and the handful of options (IFS, noglob)
// that change expansion behavior.
type Expander struct {
	Env Setter
	CommandSubst CommandSubstFunc
	NoGlob bool
}

func (ex *Expander) ifs() string {
	if vr := ex.Env.Get("IFS"); vr.Set {
 return vr.Value
	}
	return " \t\n"
}

// expandWordParts concatenates the expansion of every part with no
// field-splitting or globbing; used for the operand word of a parameter
// expansion (${NAME:-word}) and similar single-string contexts.
func (ex *Expander) expandWordParts(parts []ast.WordPart) (string, error) {
	var sb strings.Builder
	for _, p := range parts {
 s, err := ex.expandPart(p)
 if err != nil {
 return "", err
 }
 sb.WriteString(s)
	}
	return sb.String(), nil
}

func (ex *Expander) expandPart(p ast.WordPart) (string, error) {
	switch p := p.(type) {
	case *ast.LiteralPart:
 return p.Value, nil
	case *ast.VariableExpansion:
 return ex.expandSpecialOrVar(p.Name), nil
	case *ast.BracedExpansion:
 return ex.evalBraced(p)
	case *ast.CommandSubstitution:
 if ex.CommandSubst == nil {
 return "", nil
 }
 return ex.CommandSubst(p.Stmts)
	case *ast.ArithmeticSubstitution:
 n, err := EvalArith(p.Expr, ex.Env)
 if err != nil {
 return "", err
 }
 return strconvItoa(n), nil
	}
	return "", nil
}

func (ex *Expander) expandSpecialOrVar(name string) string {
	return ex.Env.Get(name).Value
}

func strconvItoa(n int64) string {
	if n == 0 {
 return "0"
	}
	neg := n < 0
	if neg {
 n = -n
	}
	var buf [24]byte
	i := len(buf)
	for n > 0 {
 i--
 buf[i] = byte('0' + n%10)
 n /= 10
	}
	if neg {
 i--
 buf[i] = '-'
	}
	return string(buf[i:])
}

// Argument expands one argument's parts into its raw (pre-split,
// pre-glob) string, applying tilde expansion first when the argument is
// unquoted and begins with a literal `~`.
func (ex *Expander) Argument(arg *ast.Argument) (string, error) {
	parts := arg.Parts
	if !arg.SingleQuoted && len(parts) > 0 {
 if lit, ok := parts[0].(*ast.LiteralPart); ok && !lit.InDquote && strings.HasPrefix(lit.Value, "~") {
 expanded := expandTilde(lit.Value)
 rest := make([]ast.WordPart, len(parts))
 copy(rest, parts)
 rest[0] = &ast.LiteralPart{LitPos: lit.LitPos, Value: expanded}
 parts = rest
 }
	}
	return ex.expandWordParts(parts)
}

// splits reports whether arg is eligible for IFS field-splitting and
// pathname expansion: only unquoted arguments are.
func splits(arg *ast.Argument) bool {
	return !arg.SingleQuoted && !arg.DoubleQuoted
}

// Fields expands a full argument list into the final list of words: brace
// expansion, then per-argument expansion (tilde/parameter/arithmetic/
// command substitution), then IFS splitting and pathname expansion for
// unquoted results, per the step order.
func (ex *Expander) Fields(args []*ast.Argument) ([]string, error) {
	braced := BraceExpandArgs(args)
	var out []string
	for _, arg := range braced {
 raw, err := ex.Argument(arg)
 if err != nil {
 return nil, err
 }
 if !splits(arg) {
 out = append(out, raw)
 continue
 }
 for _, field := range ex.splitIFS(raw) {
 out = append(out, ex.globField(field)...)
 }
	}
	return out, nil
}

// splitIFS breaks s into fields on runs of IFS characters, POSIX-style:
// leading/trailing IFS whitespace is dropped, and a completely empty or
// all-IFS-whitespace string yields no fields at all.
func (ex *Expander) splitIFS(s string) []string {
	ifs := ex.ifs()
	if ifs == "" {
 if s == "" {
 return nil
 }
 return []string{s}
	}
	isIFS := func(r rune) bool { return strings.ContainsRune(ifs, r) }
	var fields []string
	i := 0
	for i < len(s) && isIFS(rune(s[i])) {
 i++
	}
	for i < len(s) {
 start := i
 for i < len(s) && !isIFS(rune(s[i])) {
 i++
 }
 fields = append(fields, s[start:i])
 for i < len(s) && isIFS(rune(s[i])) {
 i++
 }
	}
	return fields
}

// globField expands field as a pathname pattern when it contains glob
// metacharacters, falling back to the literal field when nothing matches.
func (ex *Expander) globField(field string) []string {
	if ex.NoGlob || !pattern.HasMeta(field, 0) {
 return []string{field}
	}
	matches, err := doublestar.FilepathGlob(field)
	if err != nil || len(matches) == 0 {
 return []string{field}
	}
	return matches
}

// compileRegexp is a small indirection so param.go doesn't need to import
// regexp directly for its one use.
func compileRegexp(expr string) *regexp.Regexp {
	rx, err := regexp.Compile(expr)
	if err != nil {
 return nil
	}
	return rx
}
