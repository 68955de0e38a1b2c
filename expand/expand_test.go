package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/cirrusshell/cirrus/ast"
)

type testEnv map[string]Variable

func (e testEnv) Get(name string) Variable { return e[name] }
func (e testEnv) Each(fn func(string, Variable) bool) {
	for k, v := range e {
		if !fn(k, v) {
			return
		}
	}
}
func (e testEnv) Set(name string, v Variable) error {
	e[name] = v
	return nil
}

func litArg(s string) *ast.Argument {
	return &ast.Argument{Kind: ast.ArgLiteral, Parts: []ast.WordPart{&ast.LiteralPart{Value: s}}}
}

func TestParamDefaultUnset(t *testing.T) {
	c := qt.New(t)
	env := testEnv{}
	ex := &Expander{Env: env}
	got, err := ex.evalBraced(&ast.BracedExpansion{
		Name: "FOO", Op: ast.ParamDefaultUnset,
		Word: []ast.WordPart{&ast.LiteralPart{Value: "fallback"}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "fallback")
}

func TestParamAssignUnset(t *testing.T) {
	c := qt.New(t)
	env := testEnv{}
	ex := &Expander{Env: env}
	got, err := ex.evalBraced(&ast.BracedExpansion{
		Name: "FOO", Op: ast.ParamAssignUnset,
		Word: []ast.WordPart{&ast.LiteralPart{Value: "set-me"}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "set-me")
	c.Assert(env.Get("FOO").Value, qt.Equals, "set-me")
}

func TestParamErrorUnset(t *testing.T) {
	c := qt.New(t)
	env := testEnv{}
	ex := &Expander{Env: env}
	_, err := ex.evalBraced(&ast.BracedExpansion{
		Name: "FOO", Op: ast.ParamErrorUnset,
		Word: []ast.WordPart{&ast.LiteralPart{Value: "must be set"}},
	})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestParamRemoveSuffix(t *testing.T) {
	c := qt.New(t)
	env := testEnv{"FOO": {Set: true, Value: "file.tar.gz"}}
	ex := &Expander{Env: env}
	got, err := ex.evalBraced(&ast.BracedExpansion{
		Name: "FOO", Op: ast.ParamRemoveShortSuf,
		Word: []ast.WordPart{&ast.LiteralPart{Value: "*.gz"}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "file.tar")
}

func TestParamLength(t *testing.T) {
	c := qt.New(t)
	env := testEnv{"FOO": {Set: true, Value: "hello"}}
	ex := &Expander{Env: env}
	got, err := ex.evalBraced(&ast.BracedExpansion{Name: "FOO", Length: true})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, "5")
}

func TestArithEval(t *testing.T) {
	c := qt.New(t)
	env := testEnv{"X": {Set: true, Value: "4"}}
	expr := &ast.ArithBinary{
		Op: ast.ArithAdd,
		X:  &ast.ArithVar{Name: "X"},
		Y:  &ast.ArithNum{Value: 3},
	}
	got, err := EvalArith(expr, env)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, int64(7))
}

func TestArithDivisionByZero(t *testing.T) {
	c := qt.New(t)
	env := testEnv{}
	expr := &ast.ArithBinary{Op: ast.ArithQuo, X: &ast.ArithNum{Value: 1}, Y: &ast.ArithNum{Value: 0}}
	_, err := EvalArith(expr, env)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestBraceExpand(t *testing.T) {
	c := qt.New(t)
	got := BraceExpandArgs([]*ast.Argument{litArg("foo{a,b,c}bar")})
	c.Assert(len(got), qt.Equals, 3)
	ex := &Expander{Env: testEnv{}}
	var words []string
	for _, a := range got {
		s, err := ex.Argument(a)
		c.Assert(err, qt.IsNil)
		words = append(words, s)
	}
	c.Assert(words, qt.DeepEquals, []string{"fooabar", "foobbar", "foocbar"})
}

func TestFieldsIFSSplit(t *testing.T) {
	c := qt.New(t)
	env := testEnv{"IFS": {Set: true, Value: " "}}
	ex := &Expander{Env: env}
	arg := &ast.Argument{Kind: ast.ArgVariable, Parts: []ast.WordPart{&ast.VariableExpansion{Name: "X"}}}
	env["X"] = Variable{Set: true, Value: "a b  c"}
	got, err := ex.Fields([]*ast.Argument{arg})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"a", "b", "c"})
}

func TestFieldsGlobLiteralFallback(t *testing.T) {
	c := qt.New(t)
	ex := &Expander{Env: testEnv{}}
	got, err := ex.Fields([]*ast.Argument{litArg("no-such-file-*.xyz")})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"no-such-file-*.xyz"})
}
