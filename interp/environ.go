package interp

import (
	"strconv"
	"strings"

	"github.com/cirrusshell/cirrus/expand"
)

// runtimeEnviron adapts a Runtime's scope stack to expand.Setter, including
// synthesis of the special parameters ($?, $!, $$, $#, $@, $*, $0-$9, $-,
// $_). Keeping this special-casing here, rather than in package expand, is
// what lets expand stay name-agnostic: it only ever sees "get/set a named
// variable".
type runtimeEnviron struct {
	rt *Runtime
}

func (e runtimeEnviron) Get(name string) expand.Variable {
	if v, ok := e.special(name); ok {
 return v
	}
	if v, _ := e.rt.lookup(name); v != nil {
 return *v
	}
	return expand.Variable{}
}

func (e runtimeEnviron) special(name string) (expand.Variable, bool) {
	rt := e.rt
	switch name {
	case "?":
 return expand.Variable{Set: true, Value: strconv.Itoa(rt.LastExit)}, true
	case "!":
 if rt.LastBgPid == 0 {
 return expand.Variable{}, true
 }
 return expand.Variable{Set: true, Value: strconv.Itoa(rt.LastBgPid)}, true
	case "$":
 return expand.Variable{Set: true, Value: strconv.Itoa(rt.Pid)}, true
	case "#":
 return expand.Variable{Set: true, Value: strconv.Itoa(len(rt.positional()))}, true
	case "@", "*":
 return expand.Variable{Set: true, Value: strings.Join(rt.positional(), " ")}, true
	case "_":
 return expand.Variable{Set: true, Value: rt.LastArg}, true
	case "-":
 return expand.Variable{Set: true, Value: rt.optionFlags()}, true
	case "0":
 if v, ok := rt.Scopes[0]["0"]; ok {
 return *v, true
 }
 return expand.Variable{Set: true, Value: "cirrus"}, true
	}
	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
 idx := int(name[0] - '1')
 pos := rt.positional()
 if idx < len(pos) {
 return expand.Variable{Set: true, Value: pos[idx]}, true
 }
 return expand.Variable{}, true
	}
	return expand.Variable{}, false
}

func (rt *Runtime) optionFlags() string {
	var sb strings.Builder
	if rt.Options.Errexit {
 sb.WriteByte('e')
	}
	if rt.Options.Nounset {
 sb.WriteByte('u')
	}
	if rt.Options.Xtrace {
 sb.WriteByte('x')
	}
	return sb.String()
}

func (e runtimeEnviron) Each(fn func(string, expand.Variable) bool) {
	seen := map[string]bool{}
	for i := len(e.rt.Scopes) - 1; i >= 0; i-- {
 for name, v := range e.rt.Scopes[i] {
 if seen[name] {
 continue
 }
 seen[name] = true
 if !fn(name, *v) {
 return
 }
 }
	}
}

func (e runtimeEnviron) Set(name string, v expand.Variable) error {
	return e.rt.setVar(name, v)
}

// setVar applies an assignment, honoring the readonly set and targeting the scope the name already
// lives in, or the top scope for a brand new name - this is what makes
// `local x` followed by `x=1` update the local, not the global.
func (rt *Runtime) setVar(name string, v expand.Variable) error {
	if rt.Readonly[name] {
 return &ReadonlyError{Name: name}
	}
	if existing, idx := rt.lookup(name); existing != nil {
 rt.Scopes[idx][name] = &v
 return nil
	}
	rt.Scopes[len(rt.Scopes)-1][name] = &v
	return nil
}

// setLocal creates or overwrites name in the top scope only, matching
// `local`'s semantics, regardless of whether an outer scope already has a
// binding for it.
func (rt *Runtime) setLocal(name string, v expand.Variable) error {
	if rt.Readonly[name] {
 return &ReadonlyError{Name: name}
	}
	rt.Scopes[len(rt.Scopes)-1][name] = &v
	return nil
}

func (rt *Runtime) environ() runtimeEnviron {
	return runtimeEnviron{rt: rt}
}
