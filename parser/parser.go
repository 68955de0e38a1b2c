// Package parser builds an AST (package ast) from the token stream produced
// by package lexer, via recursive descent.
package parser

import (
	"fmt"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/lexer"
	"github.com/cirrusshell/cirrus/token"
)

// ParseError reports a parser diagnostic: unexpected token, a missing
// closing keyword, or a malformed redirection.
type ParseError struct {
	Pos token.Pos
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d: %s", e.Pos, e.Message)
}

type parser struct {
	items []lexer.Item
	heredocs map[token.Pos]lexer.HeredocBody
	pos int
}

// Parse tokenizes and parses src into a File named name.
func Parse(src, name string) (*ast.File, error) {
	res, err := lexer.Tokenize(src)
	if err != nil {
 return nil, err
	}
	p := &parser{items: res.Items, heredocs: res.Heredocs}
	p.skipInvalid()
	stmts, err := p.stmtList(token.EOF)
	if err != nil {
 return nil, err
	}
	return &ast.File{Name: name, Stmts: stmts}, nil
}

func (p *parser) cur() lexer.Item {
	if p.pos >= len(p.items) {
 return lexer.Item{Tok: token.EOF}
	}
	return p.items[p.pos]
}

func (p *parser) skipInvalid() {
	for p.pos < len(p.items) && !p.items[p.pos].Valid && p.items[p.pos].Tok != token.EOF {
 p.pos++
	}
}

func (p *parser) advance() lexer.Item {
	it := p.cur()
	if p.pos < len(p.items) {
 p.pos++
	}
	p.skipInvalid()
	return it
}

func (p *parser) tok() token.Token { return p.cur().Tok }

func (p *parser) errorf(format string, args...any) error {
	return &ParseError{Pos: p.cur().Pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(t token.Token) (lexer.Item, error) {
	if p.tok() != t {
 return lexer.Item{}, p.errorf("unexpected token %v, wanted %v", p.tok(), t)
	}
	return p.advance(), nil
}

func (p *parser) skipNewlines() {
	for p.tok() == token.NEWLINE {
 p.advance()
	}
}

func (p *parser) atStmtEnd() bool {
	switch p.tok() {
	case token.EOF, token.NEWLINE, token.SEMI, token.RBRACE, token.RPAREN,
 token.THEN, token.ELIF, token.ELSE, token.FI, token.DO, token.DONE,
 token.ESAC, token.DSEMI:
 return true
	}
	return false
}

// stmtList parses statements separated by `;`/newline until it sees one of
// the given stop tokens or EOF.
func (p *parser) stmtList(stops...token.Token) ([]*ast.Statement, error) {
	isStop := func(t token.Token) bool {
 for _, s := range stops {
 if t == s {
 return true
 }
 }
 return false
	}
	var out []*ast.Statement
	p.skipNewlines()
	for !isStop(p.tok()) && p.tok() != token.EOF {
 st, err := p.andOr()
 if err != nil {
 return nil, err
 }
 st, err = p.maybeBackground(st)
 if err != nil {
 return nil, err
 }
 out = append(out, st)
 switch p.tok() {
 case token.SEMI, token.NEWLINE:
 p.advance()
 p.skipNewlines()
 default:
 if !isStop(p.tok()) && p.tok() != token.EOF {
 return nil, p.errorf("unexpected token %v after statement", p.tok())
 }
 }
	}
	return out, nil
}

func (p *parser) maybeBackground(st *ast.Statement) (*ast.Statement, error) {
	if p.tok() == token.AND {
 pos := p.cur().Pos
 p.advance()
 return &ast.Statement{StmtPos: pos, Kind: ast.KindBackground,
 Background: &ast.BackgroundCommand{BgPos: pos, Stmt: st}}, nil
	}
	return st, nil
}

// andOr parses `&&`/`||` chains, left-associative, equal precedence, above
// `;`/newline and below pipelines.
func (p *parser) andOr() (*ast.Statement, error) {
	x, err := p.pipeline()
	if err != nil {
 return nil, err
	}
	for {
 switch p.tok() {
 case token.LAND:
 pos := p.cur().Pos
 p.advance()
 p.skipNewlines()
 y, err := p.pipeline()
 if err != nil {
 return nil, err
 }
 x = &ast.Statement{StmtPos: pos, Kind: ast.KindAnd, And: &ast.ConditionalAnd{AndPos: pos, X: x, Y: y}}
 case token.LOR:
 pos := p.cur().Pos
 p.advance()
 p.skipNewlines()
 y, err := p.pipeline()
 if err != nil {
 return nil, err
 }
 x = &ast.Statement{StmtPos: pos, Kind: ast.KindOr, Or: &ast.ConditionalOr{OrPos: pos, X: x, Y: y}}
 default:
 return x, nil
 }
	}
}

// pipeline parses `|`/`|||`-joined command chains, the tightest-binding
// composition operators, with optional leading `!` negation.
func (p *parser) pipeline() (*ast.Statement, error) {
	negated := false
	if p.tok() == token.LIT && isBang(p.cur()) {
 negated = true
 p.advance()
	}
	first, err := p.compound()
	if err != nil {
 return nil, err
	}
	if p.tok() != token.PIPE && p.tok() != token.PARALLEL {
 if negated {
 first.Negated = true
 }
 return first, nil
	}
	parallel := p.tok() == token.PARALLEL
	pos := p.cur().Pos
	elems := []*ast.Statement{first}
	for p.tok() == token.PIPE || p.tok() == token.PARALLEL {
 p.advance()
 p.skipNewlines()
 next, err := p.compound()
 if err != nil {
 return nil, err
 }
 elems = append(elems, next)
	}
	if parallel {
 return &ast.Statement{StmtPos: pos, Kind: ast.KindParallel,
 Parallel: &ast.ParallelExecution{ParPos: pos, Elements: elems}}, nil
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindPipeline,
 Pipeline: &ast.Pipeline{PipePos: pos, Elements: elems, Negated: negated}}, nil
}

func isBang(it lexer.Item) bool {
	return len(it.Segments) == 1 && it.Segments[0].Kind == lexer.SegLit && it.Segments[0].Lit == "!"
}

// atIn reports whether the current token is the `in` of a for/case header.
// The lexer only makes `in` a keyword in command position, so after
// `for NAME` or `case WORD` it arrives as a plain LIT.
func (p *parser) atIn() bool {
	if p.tok() == token.IN {
		return true
	}
	lit, ok := soleUnquotedLit(p.cur())
	return p.tok() == token.LIT && ok && lit == "in"
}

// compound dispatches to a compound command (if/for/while/until/case/
// subshell/brace group/function def) or falls through to a simple command.
func (p *parser) compound() (*ast.Statement, error) {
	switch p.tok() {
	case token.IF:
 return p.ifStatement()
	case token.FOR:
 return p.forLoop()
	case token.WHILE:
 return p.whileLoop()
	case token.UNTIL:
 return p.untilLoop()
	case token.CASE:
 return p.caseStatement()
	case token.LPAREN:
 return p.subshell()
	case token.LBRACE:
 return p.braceGroup()
	case token.FUNCTION:
 return p.functionDef(true)
	}
	if p.isFunctionHeader() {
 return p.functionDef(false)
	}
	return p.simpleCommandStmt()
}

// isFunctionHeader detects the POSIX `name() {` form by lookahead.
func (p *parser) isFunctionHeader() bool {
	if p.tok() != token.LIT || len(p.cur().Segments) != 1 || p.cur().Segments[0].Kind != lexer.SegLit {
 return false
	}
	return p.pos+2 < len(p.items) && p.items[p.pos+1].Tok == token.LPAREN && p.items[p.pos+2].Tok == token.RPAREN
}

func (p *parser) functionDef(keyword bool) (*ast.Statement, error) {
	pos := p.cur().Pos
	if keyword {
 p.advance() // the `function` keyword
	}
	nameIt, err := p.expect(token.LIT)
	if err != nil {
 return nil, err
	}
	name := litName(nameIt)
	if keyword {
 // `function name {... }` or `function name() {... }`
 if p.tok() == token.LPAREN {
 p.advance()
 if _, err := p.expect(token.RPAREN); err != nil {
 return nil, err
 }
 }
	} else {
 if _, err := p.expect(token.LPAREN); err != nil {
 return nil, err
 }
 if _, err := p.expect(token.RPAREN); err != nil {
 return nil, err
 }
	}
	p.skipNewlines()
	body, err := p.compound()
	if err != nil {
 return nil, err
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindFunctionDef,
 FuncDef: &ast.FunctionDef{FuncPos: pos, Name: name, Body: body, Keyword: keyword}}, nil
}

func litName(it lexer.Item) string {
	var s string
	for _, seg := range it.Segments {
 if seg.Kind == lexer.SegLit {
 s += seg.Lit
 }
	}
	return s
}

func (p *parser) subshell() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	body, err := p.stmtList(token.RPAREN)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
 return nil, p.errorf("missing closing ) for subshell")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindSubshell, Subshell: &ast.Subshell{SubPos: pos, Body: body}}, nil
}

func (p *parser) braceGroup() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	body, err := p.stmtList(token.RBRACE)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.RBRACE); err != nil {
 return nil, p.errorf("missing closing } for brace group")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindBrace, Brace: &ast.BraceGroup{BracePos: pos, Body: body}}, nil
}

func (p *parser) ifStatement() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	var arms []ast.IfArm
	for {
 cond, err := p.stmtList(token.THEN)
 if err != nil {
 return nil, err
 }
 if len(cond) == 0 {
 return nil, p.errorf("unexpected token %v, wanted a condition", p.tok())
 }
 if _, err := p.expect(token.THEN); err != nil {
 return nil, p.errorf("missing 'then'")
 }
 body, err := p.stmtList(token.ELIF, token.ELSE, token.FI)
 if err != nil {
 return nil, err
 }
 arms = append(arms, ast.IfArm{Cond: cond, Body: body})
 if p.tok() == token.ELIF {
 p.advance()
 continue
 }
 break
	}
	var elseBody []*ast.Statement
	if p.tok() == token.ELSE {
 p.advance()
 var err error
 elseBody, err = p.stmtList(token.FI)
 if err != nil {
 return nil, err
 }
	}
	if _, err := p.expect(token.FI); err != nil {
 return nil, p.errorf("missing 'fi'")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindIf,
 If: &ast.IfStatement{IfPos: pos, Arms: arms, Else: elseBody}}, nil
}

func (p *parser) forLoop() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	nameIt, err := p.expect(token.LIT)
	if err != nil {
 return nil, err
	}
	name := litName(nameIt)
	var words []*ast.Argument
	if p.atIn() {
 p.advance()
 for !p.atStmtEnd() {
 a, err := p.argument()
 if err != nil {
 return nil, err
 }
 words = append(words, a)
 }
 if words == nil {
 words = []*ast.Argument{}
 }
	}
	if p.tok() == token.SEMI || p.tok() == token.NEWLINE {
 p.advance()
 p.skipNewlines()
	}
	if _, err := p.expect(token.DO); err != nil {
 return nil, p.errorf("missing 'do'")
	}
	body, err := p.stmtList(token.DONE)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
 return nil, p.errorf("missing 'done'")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindFor,
 For: &ast.ForLoop{ForPos: pos, Name: name, Words: words, Body: body}}, nil
}

func (p *parser) whileLoop() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	cond, err := p.stmtList(token.DO)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
 return nil, p.errorf("missing 'do'")
	}
	body, err := p.stmtList(token.DONE)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
 return nil, p.errorf("missing 'done'")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindWhile,
 While: &ast.WhileLoop{WhilePos: pos, Cond: cond, Body: body}}, nil
}

func (p *parser) untilLoop() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	cond, err := p.stmtList(token.DO)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
 return nil, p.errorf("missing 'do'")
	}
	body, err := p.stmtList(token.DONE)
	if err != nil {
 return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
 return nil, p.errorf("missing 'done'")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindUntil,
 Until: &ast.UntilLoop{UntilPos: pos, Cond: cond, Body: body}}, nil
}

func (p *parser) caseStatement() (*ast.Statement, error) {
	pos := p.cur().Pos
	p.advance()
	word, err := p.argument()
	if err != nil {
 return nil, err
	}
	if !p.atIn() {
 return nil, p.errorf("missing 'in' after case word")
	}
	p.advance()
	p.skipNewlines()
	var arms []ast.CaseArm
	for p.tok() != token.ESAC && p.tok() != token.EOF {
 if p.tok() == token.LPAREN {
 p.advance()
 }
 var pats []*ast.Argument
 for {
 pa, err := p.argument()
 if err != nil {
 return nil, err
 }
 pats = append(pats, pa)
 if p.tok() == token.PIPE {
 p.advance()
 continue
 }
 break
 }
 if _, err := p.expect(token.RPAREN); err != nil {
 return nil, p.errorf("missing ) in case pattern")
 }
 p.skipNewlines()
 body, err := p.stmtList(token.DSEMI, token.ESAC)
 if err != nil {
 return nil, err
 }
 arms = append(arms, ast.CaseArm{Patterns: pats, Body: body})
 if p.tok() == token.DSEMI {
 p.advance()
 p.skipNewlines()
 }
	}
	if _, err := p.expect(token.ESAC); err != nil {
 return nil, p.errorf("missing 'esac'")
	}
	return &ast.Statement{StmtPos: pos, Kind: ast.KindCase,
 Case: &ast.CaseStatement{CasePos: pos, Word: word, Arms: arms}}, nil
}
