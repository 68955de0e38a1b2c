package parser

import (
	"strings"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/token"
)

// parseBraced decodes the raw contents of a `${...}` form into a
// BracedExpansion, recognizing the operator set:
// ${#NAME}, ${NAME:-d}, ${NAME:=d}, ${NAME:?msg}, ${NAME:+alt},
// ${NAME#pat}/${NAME##pat}, ${NAME%pat}/${NAME%%pat}.
func parseBraced(raw string, pos token.Pos) (*ast.BracedExpansion, error) {
	if strings.HasPrefix(raw, "#") && len(raw) > 1 && isNameStart(raw[1]) {
 name, rest := scanName(raw[1:])
 if rest == "" {
 return &ast.BracedExpansion{BracePos: pos, Name: name, Length: true}, nil
 }
	}
	name, rest := scanName(raw)
	be := &ast.BracedExpansion{BracePos: pos, Name: name}
	if rest == "" {
 return be, nil
	}
	type opSpec struct {
 prefix string
 op ast.ParamOp
	}
	ops := []opSpec{
 {":-", ast.ParamDefaultUnset},
 {":=", ast.ParamAssignUnset},
 {":?", ast.ParamErrorUnset},
 {":+", ast.ParamAltSet},
 {"##", ast.ParamRemoveLongPre},
 {"#", ast.ParamRemoveShortPre},
 {"%%", ast.ParamRemoveLongSuf},
 {"%", ast.ParamRemoveShortSuf},
	}
	for _, o := range ops {
 if strings.HasPrefix(rest, o.prefix) {
 be.Op = o.op
 word := rest[len(o.prefix):]
 parts, err := parseWordText(word, pos)
 if err != nil {
 return nil, err
 }
 be.Word = parts
 return be, nil
 }
	}
	return nil, &ParseError{Pos: pos, Message: "unknown parameter expansion operator in ${" + raw + "}"}
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// scanName reads a variable name (or special parameter) from the start of s,
// returning the name and the remaining unconsumed text.
func scanName(s string) (string, string) {
	if s == "" {
 return "", ""
	}
	c := s[0]
	switch {
	case c >= '0' && c <= '9':
 i := 0
 for i < len(s) && s[i] >= '0' && s[i] <= '9' {
 i++
 }
 return s[:i], s[i:]
	case c == '?' || c == '!' || c == '$' || c == '@' || c == '*' || c == '#' || c == '-' || c == '_':
 return s[:1], s[1:]
	default:
 i := 0
 for i < len(s) && isNameByte(s[i]) {
 i++
 }
 return s[:i], s[i:]
	}
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// parseWordText re-lexes a small text fragment (a ${...} operator's operand)
// into WordParts, so nested $VAR/$(...) inside e.g. ${NAME:-$OTHER} still
// expand.
func parseWordText(s string, pos token.Pos) ([]ast.WordPart, error) {
	if s == "" {
 return nil, nil
	}
	f, err := Parse(s+"\n", "<param-word>")
	if err != nil || len(f.Stmts) == 0 || f.Stmts[0].Command == nil || f.Stmts[0].Command.Name == nil {
 // Fall back to a plain literal if the fragment isn't a clean word
 // (e.g. contains glob metacharacters that upset statement parsing).
 return []ast.WordPart{&ast.LiteralPart{LitPos: pos, Value: s}}, nil
	}
	return f.Stmts[0].Command.Name.Parts, nil
}
