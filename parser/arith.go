package parser

import (
	"strconv"
	"strings"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/token"
)

// arithScanner is a minimal tokenizer over arithmetic-expression text,
// independent of the shell lexer: arithmetic is "a minimal integer
// expression grammar", and its operator set (bitwise, shift, compound
// assignment) doesn't otherwise appear in shell word lexing, so it gets
// its own small scanner rather than overloading package lexer's Token set.
type arithScanner struct {
	s   string
	i   int
	tok string
}

func newArithScanner(s string) *arithScanner {
	a := &arithScanner{s: s}
	a.next()
	return a
}

var arithOps = []string{
	"<<=", ">>=",
	"&&", "||", "==", "!=", "<=", ">=", "<<", ">>", "+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "&", "|", "^", "~", "!", "<", ">", "=", "(", ")",
}

func (a *arithScanner) next() {
	for a.i < len(a.s) && (a.s[a.i] == ' ' || a.s[a.i] == '\t' || a.s[a.i] == '\n') {
		a.i++
	}
	if a.i >= len(a.s) {
		a.tok = ""
		return
	}
	c := a.s[a.i]
	if c >= '0' && c <= '9' {
		j := a.i
		for j < len(a.s) && a.s[j] >= '0' && a.s[j] <= '9' {
			j++
		}
		a.tok = a.s[a.i:j]
		a.i = j
		return
	}
	if c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
		j := a.i + 1
		for j < len(a.s) && (a.s[j] == '_' || (a.s[j] >= 'a' && a.s[j] <= 'z') ||
			(a.s[j] >= 'A' && a.s[j] <= 'Z') || (a.s[j] >= '0' && a.s[j] <= '9')) {
			j++
		}
		a.tok = a.s[a.i:j]
		a.i = j
		return
	}
	for _, op := range arithOps {
		if strings.HasPrefix(a.s[a.i:], op) {
			a.tok = op
			a.i += len(op)
			return
		}
	}
	a.tok = a.s[a.i : a.i+1]
	a.i++
}

type arithParser struct {
	sc  *arithScanner
	pos token.Pos
}

func parseArith(s string) (ast.ArithExpr, error) {
	ap := &arithParser{sc: newArithScanner(s)}
	e, err := ap.assign()
	if err != nil {
		return nil, err
	}
	if ap.sc.tok != "" {
		return nil, &ParseError{Pos: ap.pos, Message: "unexpected token in arithmetic expression: " + ap.sc.tok}
	}
	return e, nil
}

func (ap *arithParser) assign() (ast.ArithExpr, error) {
	lhs, err := ap.logicalOr()
	if err != nil {
		return nil, err
	}
	compound := map[string]ast.ArithOp{
		"=": ast.ArithAssignOp, "+=": ast.ArithAddAssign, "-=": ast.ArithSubAssign,
		"*=": ast.ArithMulAssign, "/=": ast.ArithQuoAssign, "%=": ast.ArithRemAssign,
	}
	if op, ok := compound[ap.sc.tok]; ok {
		v, isVar := lhs.(*ast.ArithVar)
		if !isVar {
			return nil, &ParseError{Pos: ap.pos, Message: "assignment target must be a variable"}
		}
		ap.sc.next()
		rhs, err := ap.assign() // right-associative
		if err != nil {
			return nil, err
		}
		return &ast.ArithAssign{OpPos: ap.pos, Name: v.Name, Op: op, X: rhs}, nil
	}
	return lhs, nil
}

func (ap *arithParser) binary(next func() (ast.ArithExpr, error), ops map[string]ast.ArithOp) (ast.ArithExpr, error) {
	x, err := next()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := ops[ap.sc.tok]
		if !ok {
			return x, nil
		}
		ap.sc.next()
		y, err := next()
		if err != nil {
			return nil, err
		}
		x = &ast.ArithBinary{OpPos: ap.pos, Op: op, X: x, Y: y}
	}
}

func (ap *arithParser) logicalOr() (ast.ArithExpr, error) {
	return ap.binary(ap.logicalAnd, map[string]ast.ArithOp{"||": ast.ArithLOr})
}
func (ap *arithParser) logicalAnd() (ast.ArithExpr, error) {
	return ap.binary(ap.bitOr, map[string]ast.ArithOp{"&&": ast.ArithLAnd})
}
func (ap *arithParser) bitOr() (ast.ArithExpr, error) {
	return ap.binary(ap.bitXor, map[string]ast.ArithOp{"|": ast.ArithOr})
}
func (ap *arithParser) bitXor() (ast.ArithExpr, error) {
	return ap.binary(ap.bitAnd, map[string]ast.ArithOp{"^": ast.ArithXor})
}
func (ap *arithParser) bitAnd() (ast.ArithExpr, error) {
	return ap.binary(ap.equality, map[string]ast.ArithOp{"&": ast.ArithAnd})
}
func (ap *arithParser) equality() (ast.ArithExpr, error) {
	return ap.binary(ap.relational, map[string]ast.ArithOp{"==": ast.ArithEql, "!=": ast.ArithNeq})
}
func (ap *arithParser) relational() (ast.ArithExpr, error) {
	return ap.binary(ap.shift, map[string]ast.ArithOp{
		"<": ast.ArithLss, ">": ast.ArithGtr, "<=": ast.ArithLeq, ">=": ast.ArithGeq,
	})
}
func (ap *arithParser) shift() (ast.ArithExpr, error) {
	return ap.binary(ap.additive, map[string]ast.ArithOp{"<<": ast.ArithShl, ">>": ast.ArithShr})
}
func (ap *arithParser) additive() (ast.ArithExpr, error) {
	return ap.binary(ap.multiplicative, map[string]ast.ArithOp{"+": ast.ArithAdd, "-": ast.ArithSub})
}
func (ap *arithParser) multiplicative() (ast.ArithExpr, error) {
	return ap.binary(ap.unary, map[string]ast.ArithOp{"*": ast.ArithMul, "/": ast.ArithQuo, "%": ast.ArithRem})
}

func (ap *arithParser) unary() (ast.ArithExpr, error) {
	switch ap.sc.tok {
	case "-":
		ap.sc.next()
		x, err := ap.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: ap.pos, Op: ast.ArithNeg, X: x}, nil
	case "+":
		ap.sc.next()
		return ap.unary()
	case "!":
		ap.sc.next()
		x, err := ap.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: ap.pos, Op: ast.ArithNot, X: x}, nil
	case "~":
		ap.sc.next()
		x, err := ap.unary()
		if err != nil {
			return nil, err
		}
		return &ast.ArithUnary{OpPos: ap.pos, Op: ast.ArithBitNot, X: x}, nil
	}
	return ap.primary()
}

func (ap *arithParser) primary() (ast.ArithExpr, error) {
	t := ap.sc.tok
	if t == "" {
		return nil, &ParseError{Pos: ap.pos, Message: "unexpected end of arithmetic expression"}
	}
	if t == "(" {
		ap.sc.next()
		e, err := ap.assign()
		if err != nil {
			return nil, err
		}
		if ap.sc.tok != ")" {
			return nil, &ParseError{Pos: ap.pos, Message: "missing ) in arithmetic expression"}
		}
		ap.sc.next()
		return e, nil
	}
	if t[0] >= '0' && t[0] <= '9' {
		n, err := strconv.ParseInt(t, 0, 64)
		if err != nil {
			return nil, &ParseError{Pos: ap.pos, Message: "invalid number: " + t}
		}
		ap.sc.next()
		return &ast.ArithNum{NumPos: ap.pos, Value: n}, nil
	}
	name := t
	if strings.HasPrefix(name, "$") {
		name = name[1:]
	}
	ap.sc.next()
	return &ast.ArithVar{VarPos: ap.pos, Name: name}, nil
}
