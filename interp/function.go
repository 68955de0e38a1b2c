package interp

import (
	"errors"
	"fmt"

	"github.com/cirrusshell/cirrus/ast"
)

// recursionLimitError is the "Recursion limit" error class.
type recursionLimitError struct{ Name string }

func (e *recursionLimitError) Error() string {
	return fmt.Sprintf("%s: function recursion limit exceeded", e.Name)
}

// callFunction implements this shell's invocation sequence.
func (ex *Executor) callFunction(fn *ast.FunctionDef, args []string, redirects []*ast.Redirect) error {
	if len(ex.RT.CallStack) >= ex.maxDepth {
 ex.RT.LastExit = 1
 return &recursionLimitError{Name: fn.Name}
	}

	restoreRedirects, err := ex.applyRedirects(redirects)
	if err != nil {
 ex.RT.LastExit = 1
 return err
	}
	defer restoreRedirects()

	ex.RT.CallStack = append(ex.RT.CallStack, fn.Name)
	ex.RT.pushScope()
	ex.RT.pushPositional(args)
	ex.RT.FuncDepth++

	var body []*ast.Statement
	switch {
	case fn.Body == nil:
	case fn.Body.Kind == ast.KindBrace:
 body = fn.Body.Brace.Body
	case fn.Body.Kind == ast.KindSubshell:
 body = fn.Body.Subshell.Body
	default:
 body = []*ast.Statement{fn.Body}
	}

	runErr := ex.execList(body)

	ex.RT.FuncDepth--
	ex.RT.popPositional()
	ex.RT.popScope()
	ex.RT.CallStack = ex.RT.CallStack[:len(ex.RT.CallStack)-1]

	var rs *returnSignal
	if errors.As(runErr, &rs) {
 ex.RT.LastExit = rs.Code
 return nil
	}
	return runErr
}
