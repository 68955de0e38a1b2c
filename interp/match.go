package interp

import (
	"regexp"

	"github.com/cirrusshell/cirrus/pattern"
)

// matchGlob reports whether word matches the glob pattern pat in its
// entirety, used for case-arm matching (each pattern is a glob).
func matchGlob(pat, word string) bool {
	expr, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
 return pat == word
	}
	rx, err := regexp.Compile(expr)
	if err != nil {
 return pat == word
	}
	return rx.MatchString(word)
}
