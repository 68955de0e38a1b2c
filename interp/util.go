package interp

import (
	"io"
	"os"
	"strings"

	"github.com/cirrusshell/cirrus/ast"
)

func newPipe() (*os.File, *os.File, error) {
	return os.Pipe()
}

func readAllString(r io.Reader) string {
	b, _ := io.ReadAll(r)
	return string(b)
}

// renderStatement produces a short source-like rendering of a statement for
// job-table listings and xtrace, not a full round-trippable unparser.
func renderStatement(st *ast.Statement) string {
	if st == nil {
		return ""
	}
	switch st.Kind {
	case ast.KindCommand:
		if st.Command == nil || st.Command.Name == nil {
			return ""
		}
		return renderArgLiteral(st.Command.Name)
	case ast.KindPipeline:
		return "pipeline"
	default:
		return "compound command"
	}
}

func renderArgLiteral(a *ast.Argument) string {
	var out string
	for _, p := range a.Parts {
		if lit, ok := p.(*ast.LiteralPart); ok {
			out += lit.Value
		}
	}
	return out
}

// renderCommandLine joins a resolved command name and its expanded
// arguments back into a single history-entry string.
func renderCommandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}
