// Package suggest produces "did you mean" suggestions for an unresolved
// command name, for command-not-found diagnostics.
package suggest

import (
	"sort"

	"github.com/agext/levenshtein"
)

// maxDistance bounds how different a candidate may be before it is no
// longer considered a plausible typo.
const maxDistance = 2

// maxSuggestions caps the number of suggestions shown at once.
const maxSuggestions = 3

// Engine scores candidate names against an unresolved command name using
// edit distance, backed by a real distance library instead of a
// hand-rolled one.
type Engine struct {
	params *levenshtein.Params
}

// New builds an Engine with the library's default cost parameters.
func New() *Engine {
	return &Engine{params: levenshtein.NewParams()}
}

type scored struct {
	name string
	dist int
}

// Suggest returns up to maxSuggestions names from candidates that are
// within maxDistance edits of name, closest first.
func (e *Engine) Suggest(name string, candidates []string) []string {
	var scoredList []scored
	seen := map[string]bool{}
	for _, c := range candidates {
 if c == name || seen[c] {
 continue
 }
 seen[c] = true
 d := levenshtein.Distance(name, c, e.params)
 if d <= maxDistance {
 scoredList = append(scoredList, scored{name: c, dist: d})
 }
	}
	sort.Slice(scoredList, func(i, j int) bool {
 if scoredList[i].dist != scoredList[j].dist {
 return scoredList[i].dist < scoredList[j].dist
 }
 return scoredList[i].name < scoredList[j].name
	})
	if len(scoredList) > maxSuggestions {
 scoredList = scoredList[:maxSuggestions]
	}
	out := make([]string, len(scoredList))
	for i, s := range scoredList {
 out[i] = s.name
	}
	return out
}
