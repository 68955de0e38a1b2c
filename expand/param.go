package expand

import (
	"strconv"
	"unicode/utf8"

	"github.com/cirrusshell/cirrus/ast"
	"github.com/cirrusshell/cirrus/pattern"
)

// UnsetParameterError is returned by the `${NAME:?message}` form when NAME
// is unset or empty.
type UnsetParameterError struct {
	Name string
	Message string
}

func (e *UnsetParameterError) Error() string {
	if e.Message != "" {
 return e.Name + ": " + e.Message
	}
	return e.Name + ": parameter not set"
}

// evalBraced evaluates one `${...}` form. Unlike bash, there are no array
// or nameref variables to juggle, so the logic here is a small decision
// tree over the operator set rather than a general Variable.Kind dispatch.
func (ex *Expander) evalBraced(b *ast.BracedExpansion) (string, error) {
	vr := ex.Env.Get(b.Name)
	str := vr.Value
	set := vr.Set

	if b.Length {
 return strconv.Itoa(utf8.RuneCountInString(str)), nil
	}

	switch b.Op {
	case ast.ParamNone:
 return str, nil

	case ast.ParamDefaultUnset:
 if set && str != "" {
 return str, nil
 }
 return ex.expandWordParts(b.Word)

	case ast.ParamAssignUnset:
 if set && str != "" {
 return str, nil
 }
 word, err := ex.expandWordParts(b.Word)
 if err != nil {
 return "", err
 }
 if err := ex.Env.Set(b.Name, Variable{Set: true, Value: word}); err != nil {
 return "", err
 }
 return word, nil

	case ast.ParamErrorUnset:
 if set && str != "" {
 return str, nil
 }
 msg, err := ex.expandWordParts(b.Word)
 if err != nil {
 return "", err
 }
 return "", &UnsetParameterError{Name: b.Name, Message: msg}

	case ast.ParamAltSet:
 if !set || str == "" {
 return "", nil
 }
 return ex.expandWordParts(b.Word)

	case ast.ParamRemoveShortPre, ast.ParamRemoveLongPre,
 ast.ParamRemoveShortSuf, ast.ParamRemoveLongSuf:
 pat, err := ex.expandWordParts(b.Word)
 if err != nil {
 return "", err
 }
 suffix := b.Op == ast.ParamRemoveShortSuf || b.Op == ast.ParamRemoveLongSuf
 greedy := b.Op == ast.ParamRemoveLongPre || b.Op == ast.ParamRemoveLongSuf
 return removePattern(str, pat, suffix, greedy), nil
	}
	return str, nil
}

// removePattern strips the shortest (or, if greedy, longest) match of pat
// from the front or back of str, per the `#`/`##`/`%`/`%%` operators.
func removePattern(str, pat string, fromEnd, greedy bool) string {
	mode := pattern.Mode(0)
	if !greedy {
 mode |= pattern.Shortest
	}
	expr, err := pattern.Regexp(pat, mode)
	if err != nil {
 return str
	}
	switch {
	case fromEnd && !greedy:
 expr = ".*(" + expr + ")$"
	case fromEnd:
 expr = "(" + expr + ")$"
	default:
 expr = "^(" + expr + ")"
	}
	rx := compileRegexp(expr)
	if rx == nil {
 return str
	}
	if loc := rx.FindStringSubmatchIndex(str); loc != nil {
 return str[:loc[2]] + str[loc[3]:]
	}
	return str
}
