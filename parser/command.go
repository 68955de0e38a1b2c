package parser

import (
	"strings"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/lexer"
	"github.com/cirrusshell/cirrus/token"
)

// simpleCommandStmt parses prefix assignments, a command name, its
// arguments, and any interleaved redirections into a Command, or a bare
// Assignment statement if no command name follows the assignments.
func (p *parser) simpleCommandStmt() (*ast.Statement, error) {
	pos := p.cur().Pos
	var prefix []ast.Assignment
	for p.tok() == token.ASSIGN {
 a, err := p.assignment()
 if err != nil {
 return nil, err
 }
 prefix = append(prefix, *a)
	}
	var redirects []*ast.Redirect
	var name *ast.Argument
	var args []*ast.Argument
	for {
 if isRedirectStart(p.tok()) {
 r, err := p.redirect()
 if err != nil {
 return nil, err
 }
 redirects = append(redirects, r)
 continue
 }
 if p.atStmtEnd() || p.tok() == token.PIPE || p.tok() == token.PARALLEL ||
 p.tok() == token.LAND || p.tok() == token.LOR || p.tok() == token.AND {
 break
 }
 arg, err := p.argument()
 if err != nil {
 return nil, err
 }
 if name == nil {
 name = arg
 } else {
 args = append(args, arg)
 }
	}
	if name == nil {
 if len(prefix) == 0 && len(redirects) == 0 {
 return nil, p.errorf("unexpected token %v", p.tok())
 }
 if len(prefix) == 1 && len(redirects) == 0 {
 a := prefix[0]
 return &ast.Statement{StmtPos: pos, Kind: ast.KindAssignment, Assign: &a}, nil
 }
 // Multiple bare assignments with no command: execute as a sequence
 // of assignments via a nameless Command (the executor applies
 // PrefixEnv permanently to the current scope when there's no name).
 return &ast.Statement{StmtPos: pos, Kind: ast.KindCommand,
 Command: &ast.Command{CommandPos: pos, Redirects: redirects, PrefixEnv: prefix}}, nil
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindCommand,
 Command: &ast.Command{CommandPos: pos, Name: name, Args: args, Redirects: redirects, PrefixEnv: prefix}}, nil
}

func (p *parser) assignment() (*ast.Assignment, error) {
	it := p.cur()
	raw := litName(it)
	eq := strings.IndexByte(raw, '=')
	name := raw[:eq]
	append_ := false
	if strings.HasSuffix(name, "+") {
 name = name[:len(name)-1]
 append_ = true
	}
	valText := raw[eq+1:]
	pos := it.Pos
	p.advance()
	val := &ast.Argument{ArgPos: pos, Kind: ast.ArgLiteral}
	if valText != "" {
 val.Parts = []ast.WordPart{&ast.LiteralPart{LitPos: pos, Value: valText}}
	}
	return &ast.Assignment{AssignPos: pos, Name: name, Value: val, Append: append_}, nil
}

func isRedirectStart(t token.Token) bool {
	switch t {
	case token.LSS, token.GTR, token.APPEND, token.SHL, token.DHEREDOC,
 token.DUPOUT, token.RDRERR2O, token.RDRALL, token.APPALL, token.HERESTR:
 return true
	}
	return false
}

func (p *parser) redirect() (*ast.Redirect, error) {
	it := p.advance() // the redirection operator token
	r := &ast.Redirect{RedirPos: it.Pos}
	switch it.Tok {
	case token.LSS:
 r.Kind = ast.RedirStdin
	case token.GTR:
 r.Kind = ast.RedirStdout
	case token.APPEND:
 r.Kind = ast.RedirStdoutAppend
	case token.DUPOUT:
 r.Kind = ast.RedirStderr
	case token.RDRERR2O:
 r.Kind = ast.RedirStderrToStdout
 return r, nil
	case token.RDRALL:
 r.Kind = ast.RedirBoth
	case token.APPALL:
 r.Kind = ast.RedirBothAppend
	case token.HERESTR:
 r.Kind = ast.RedirHereString
	case token.SHL, token.DHEREDOC:
 if it.Tok == token.DHEREDOC {
 r.Kind = ast.RedirHeredoc
 } else {
 r.Kind = ast.RedirHeredoc
 }
 delimIt := p.cur()
 if delimIt.Tok != token.LIT {
 return nil, p.errorf("missing heredoc delimiter")
 }
 p.advance()
 hb, ok := p.heredocs[it.Pos]
 if !ok {
 return nil, p.errorf("internal error: heredoc body not resolved for delimiter at %d", it.Pos)
 }
 r.HeredocBody = hb.Text
 r.HeredocExpand = hb.Expand
 if !hb.Expand {
 r.Kind = ast.RedirHeredocLiteral
 }
 return r, nil
	}
	target, err := p.argument()
	if err != nil {
 return nil, p.errorf("malformed redirection: %v", err)
	}
	r.Target = target
	return r, nil
}

// argument parses one word into a classified ast.Argument.
func (p *parser) argument() (*ast.Argument, error) {
	it := p.cur()
	if it.Tok != token.LIT {
 return nil, p.errorf("expected a word, got %v", it.Tok)
	}
	p.advance()
	arg := &ast.Argument{ArgPos: it.Pos}
	parts := make([]ast.WordPart, 0, len(it.Segments))
	allQuoted := len(it.Segments) > 0
	anyDquote := false
	for _, seg := range it.Segments {
 switch seg.Kind {
 case lexer.SegLit:
 parts = append(parts, &ast.LiteralPart{LitPos: it.Pos, Value: seg.Lit, InDquote: seg.Quoted})
 if !seg.Quoted {
 allQuoted = false
 } else {
 anyDquote = true
 }
 case lexer.SegVar:
 parts = append(parts, &ast.VariableExpansion{VarPos: seg.Pos, Name: seg.VarName})
 allQuoted = false
 case lexer.SegBraced:
 bp, err := parseBraced(seg.Braced, seg.Pos)
 if err != nil {
 return nil, err
 }
 parts = append(parts, bp)
 allQuoted = false
 case lexer.SegCmdSubst:
 inner, err := Parse(seg.Subst, "<command-substitution>")
 if err != nil {
 return nil, err
 }
 parts = append(parts, &ast.CommandSubstitution{SubstPos: seg.Pos, Stmts: inner.Stmts, Backtick: seg.Backtick})
 allQuoted = false
 case lexer.SegArithSubst:
 expr, err := parseArith(seg.Arith)
 if err != nil {
 return nil, err
 }
 parts = append(parts, &ast.ArithmeticSubstitution{ArithPos: seg.Pos, Expr: expr})
 allQuoted = false
 }
	}
	arg.Parts = parts
	arg.SingleQuoted = allQuoted
	arg.DoubleQuoted = anyDquote && !allQuoted
	arg.Kind = classify(it, parts)
	return arg, nil
}

// classify assigns the Argument's Kind tag, the only way the expander later
// knows whether to IFS-split and glob-expand it.
func classify(it lexer.Item, parts []ast.WordPart) ast.ArgKind {
	if len(parts) == 1 {
 switch v := parts[0].(type) {
 case *ast.VariableExpansion:
 return ast.ArgVariable
 case *ast.BracedExpansion:
 _ = v
 return ast.ArgBracedVariable
 case *ast.CommandSubstitution:
 return ast.ArgCommandSubst
 case *ast.ArithmeticSubstitution:
 return ast.ArgArithSubst
 case *ast.LiteralPart:
 if v.InDquote {
 return ast.ArgLiteral
 }
 }
	}
	if it.HasGlob {
 return ast.ArgGlob
	}
	if len(it.Segments) > 0 {
 if lit, ok := soleUnquotedLit(it); ok && strings.HasPrefix(lit, "-") {
 return ast.ArgFlag
 }
 if lit, ok := soleUnquotedLit(it); ok && strings.ContainsRune(lit, '/') {
 return ast.ArgPath
 }
	}
	return ast.ArgLiteral
}

func soleUnquotedLit(it lexer.Item) (string, bool) {
	if len(it.Segments) != 1 || it.Segments[0].Kind != lexer.SegLit || it.Segments[0].Quoted {
 return "", false
	}
	return it.Segments[0].Lit, true
}
