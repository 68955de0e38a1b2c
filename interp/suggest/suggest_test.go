package suggest

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSuggestFindsCloseMatches(t *testing.T) {
	c := qt.New(t)
	e := New()
	got := e.Suggest("gerp", []string{"grep", "getopts", "export", "echo"})
	c.Assert(got, qt.DeepEquals, []string{"grep"})
}

func TestSuggestCapsAtThreeAndOrdersByDistance(t *testing.T) {
	c := qt.New(t)
	e := New()
	got := e.Suggest("ech", []string{"echo", "eche", "ech1", "echoo", "unrelated"})
	c.Assert(len(got), qt.Equals, 3)
	c.Assert(got[0], qt.Equals, "ech1")
}

func TestSuggestExcludesExactMatchAndFarNames(t *testing.T) {
	c := qt.New(t)
	e := New()
	got := e.Suggest("echo", []string{"echo", "completely-different"})
	c.Assert(got, qt.HasLen, 0)
}
