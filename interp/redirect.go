package interp

import (
	"fmt"
	"os"

	"github.com/cirrusshell/cirrus/ast"
)

// applyRedirects opens each redirect's target and swaps it onto the
// runtime's Stdin/Stdout/Stderr, returning a restore func. This is used for
// both function calls and builtins, which have no separate process and so
// cannot dup file descriptors the way an external command's child can.
func (ex *Executor) applyRedirects(redirects []*ast.Redirect) (func(), error) {
	if len(redirects) == 0 {
		return func() {}, nil
	}
	origStdout, origStderr, origStdin := ex.RT.Stdout, ex.RT.Stderr, ex.RT.Stdin
	var opened []*os.File
	restore := func() {
		ex.RT.Stdout, ex.RT.Stderr, ex.RT.Stdin = origStdout, origStderr, origStdin
		for _, f := range opened {
			f.Close()
		}
	}

	exp := ex.expander()
	for _, r := range redirects {
		switch r.Kind {
		case ast.RedirStdout, ast.RedirStdoutAppend, ast.RedirBoth, ast.RedirBothAppend:
			path, err := exp.Argument(r.Target)
			if err != nil {
				restore()
				return func() {}, err
			}
			flags := os.O_CREATE | os.O_WRONLY
			if r.Kind == ast.RedirStdoutAppend || r.Kind == ast.RedirBothAppend {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				restore()
				return func() {}, fmt.Errorf("%s: %w", path, err)
			}
			opened = append(opened, f)
			ex.RT.Stdout = f
			if r.Kind == ast.RedirBoth || r.Kind == ast.RedirBothAppend {
				ex.RT.Stderr = f
			}
		case ast.RedirStderr, ast.RedirStderrAppend:
			path, err := exp.Argument(r.Target)
			if err != nil {
				restore()
				return func() {}, err
			}
			flags := os.O_CREATE | os.O_WRONLY
			if r.Kind == ast.RedirStderrAppend {
				flags |= os.O_APPEND
			} else {
				flags |= os.O_TRUNC
			}
			f, err := os.OpenFile(path, flags, 0o644)
			if err != nil {
				restore()
				return func() {}, fmt.Errorf("%s: %w", path, err)
			}
			opened = append(opened, f)
			ex.RT.Stderr = f
		case ast.RedirStderrToStdout:
			ex.RT.Stderr = ex.RT.Stdout
		case ast.RedirStdin:
			path, err := exp.Argument(r.Target)
			if err != nil {
				restore()
				return func() {}, err
			}
			f, err := os.Open(path)
			if err != nil {
				restore()
				return func() {}, fmt.Errorf("%s: %w", path, err)
			}
			opened = append(opened, f)
			ex.RT.Stdin = f
		case ast.RedirHeredoc, ast.RedirHeredocLiteral, ast.RedirHereString:
			body := r.HeredocBody
			if r.Kind == ast.RedirHereString {
				var err error
				body, err = exp.Argument(r.Target)
				if err != nil {
					restore()
					return func() {}, err
				}
				body += "\n"
			} else if r.HeredocExpand {
				expanded, err := ex.expandHeredocBody(body)
				if err == nil {
					body = expanded
				}
			}
			rf, wf, err := os.Pipe()
			if err != nil {
				restore()
				return func() {}, err
			}
			go func() {
				wf.WriteString(body)
				wf.Close()
			}()
			opened = append(opened, rf)
			ex.RT.Stdin = rf
		}
	}
	return restore, nil
}
