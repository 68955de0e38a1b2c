package interp

import "strings"

// biSet implements the option-toggling forms of `set` (`set -e`,
// `set -o pipefail`,...) plus `set -- args...` for replacing the
// positional parameters.
func biSet(ex *Executor, args []string) error {
	i := 0
	for ; i < len(args); i++ {
 a := args[i]
 switch {
 case a == "--":
 i++
 goto positional
 case strings.HasPrefix(a, "-o"):
 name := a[2:]
 if name == "" {
 i++
 if i < len(args) {
 name = args[i]
 }
 }
 ex.setOption(name, true)
 case strings.HasPrefix(a, "+o"):
 name := a[2:]
 if name == "" {
 i++
 if i < len(args) {
 name = args[i]
 }
 }
 ex.setOption(name, false)
 case strings.HasPrefix(a, "-") && len(a) > 1:
 for _, c := range a[1:] {
 ex.setFlag(c, true)
 }
 case strings.HasPrefix(a, "+") && len(a) > 1:
 for _, c := range a[1:] {
 ex.setFlag(c, false)
 }
 default:
 goto positional
 }
	}
positional:
	if i < len(args) {
 ex.RT.Positional[len(ex.RT.Positional)-1] = append([]string{}, args[i:]...)
	}
	ex.RT.LastExit = 0
	return nil
}

func (ex *Executor) setOption(name string, on bool) {
	switch name {
	case "errexit":
 ex.RT.Options.Errexit = on
	case "nounset":
 ex.RT.Options.Nounset = on
	case "xtrace":
 ex.RT.Options.Xtrace = on
	case "pipefail":
 ex.RT.Options.Pipefail = on
	case "noglob":
 ex.RT.Options.NoGlob = on
	case "noclobber":
 ex.RT.Options.NoClobber = on
	}
}

func (ex *Executor) setFlag(c rune, on bool) {
	switch c {
	case 'e':
 ex.RT.Options.Errexit = on
	case 'u':
 ex.RT.Options.Nounset = on
	case 'x':
 ex.RT.Options.Xtrace = on
	case 'f':
 ex.RT.Options.NoGlob = on
	case 'C':
 ex.RT.Options.NoClobber = on
	}
}

// biShift implements `shift [N]`, removing the first N positional
// parameters.
func biShift(ex *Executor, args []string) error {
	n := 1
	if len(args) > 0 {
 if v, ok := parseUint(args[0]); ok {
 n = v
 }
	}
	top := len(ex.RT.Positional) - 1
	pos := ex.RT.Positional[top]
	if n > len(pos) {
 ex.RT.LastExit = 1
 return nil
	}
	ex.RT.Positional[top] = pos[n:]
	ex.RT.LastExit = 0
	return nil
}

func parseUint(s string) (int, bool) {
	n := 0
	if s == "" {
 return 0, false
	}
	for _, c := range s {
 if c < '0' || c > '9' {
 return 0, false
 }
 n = n*10 + int(c-'0')
	}
	return n, true
}
