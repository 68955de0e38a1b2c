package expand

import (
	"strings"

	"github.com/cirrusshell/cirrus/ast"
)

// braceExpand implements a minimal brace-expansion step: a single,
// unnested `{a,b,c}` alternation inside an otherwise plain
// literal word is expanded into one Argument per alternative, before any
// other expansion runs. Brace groups that straddle a quote or an
// expansion (${...}, $(...), $((...))) are left untouched and expand to
// themselves literally - full bash-style brace expansion (ranges,
// nesting) is out of scope; see the Non-goals.
func braceExpand(arg *ast.Argument) []*ast.Argument {
	if arg.DoubleQuoted || arg.SingleQuoted || len(arg.Parts) != 1 {
 return []*ast.Argument{arg}
	}
	lit, ok := arg.Parts[0].(*ast.LiteralPart)
	if !ok || lit.InDquote {
 return []*ast.Argument{arg}
	}
	open := strings.IndexByte(lit.Value, '{')
	if open < 0 {
 return []*ast.Argument{arg}
	}
	close := matchingBrace(lit.Value, open)
	if close < 0 {
 return []*ast.Argument{arg}
	}
	inner := lit.Value[open+1 : close]
	alts := splitTopLevel(inner, ',')
	if len(alts) < 2 {
 return []*ast.Argument{arg}
	}
	prefix, suffix := lit.Value[:open], lit.Value[close+1:]
	out := make([]*ast.Argument, 0, len(alts))
	for _, alt := range alts {
 text := prefix + alt + suffix
 out = append(out, &ast.Argument{
 ArgPos: arg.ArgPos,
 Kind: arg.Kind,
 Parts: []ast.WordPart{&ast.LiteralPart{LitPos: lit.LitPos, Value: text}},
 })
	}
	return out
}

func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
 switch s[i] {
 case '{':
 depth++
 case '}':
 depth--
 if depth == 0 {
 return i
 }
 }
	}
	return -1
}

func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
 switch s[i] {
 case '{':
 depth++
 case '}':
 depth--
 case sep:
 if depth == 0 {
 out = append(out, s[start:i])
 start = i + 1
 }
 }
	}
	out = append(out, s[start:])
	return out
}

// BraceExpandArgs applies braceExpand across a full argument list, in
// order, flattening each argument's alternatives into the result.
func BraceExpandArgs(args []*ast.Argument) []*ast.Argument {
	var out []*ast.Argument
	for _, a := range args {
 out = append(out, braceExpand(a)...)
	}
	return out
}
