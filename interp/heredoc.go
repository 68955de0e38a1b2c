package interp

import (
	"strings"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/parser"
)

// expandHeredocBody expands an already-captured heredoc body the way a
// double-quoted literal expands. The lexer hands heredoc bodies to
// the parser as a synthesized plain-string token, so there are no
// pre-tokenized WordParts to expand here; instead this re-tokenizes the
// body by feeding it to the parser as a double-quoted argument and
// expanding the resulting parts, reusing the same word-part machinery
// every other double-quoted word goes through.
func (ex *Executor) expandHeredocBody(body string) (string, error) {
	if !strings.Contains(body, "$") && !strings.Contains(body, "`") {
 return body, nil
	}
	src := ": " + quoteForReparse(body)
	file, err := parser.Parse(src, "heredoc")
	if err != nil || len(file.Stmts) == 0 {
 return body, nil
	}
	st := file.Stmts[0]
	if st.Kind != ast.KindCommand || len(st.Command.Args) == 0 {
 return body, nil
	}
	exp := ex.expander()
	return exp.Argument(st.Command.Args[0])
}

// quoteForReparse wraps body in double quotes, escaping the characters that
// would otherwise end the quoted region or change escape meaning.
func quoteForReparse(body string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(body); i++ {
 c := body[i]
 if c == '"' || c == '\\' {
 sb.WriteByte('\\')
 }
 sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}
