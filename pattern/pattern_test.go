package pattern

import (
	"regexp"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestRegexp(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		pat  string
		mode Mode
		want string
	}{
		{pat: "", want: ""},
		{pat: "foo", want: "foo"},
		{pat: "foo*", want: "(?s)foo.*"},
		{pat: "foo*", mode: Shortest, want: "(?sU)foo.*"},
		{pat: "a?c", want: "(?s)a.c"},
		{pat: "[abc]", want: "(?s)[abc]"},
		{pat: "foo", mode: EntireString, want: "(?s)^foo$"},
	}
	for _, tc := range tests {
		got, err := Regexp(tc.pat, tc.mode)
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, tc.want)
	}
}

func TestRegexpMatches(t *testing.T) {
	c := qt.New(t)
	expr, err := Regexp("foo*bar?", EntireString)
	c.Assert(err, qt.IsNil)
	rx := regexp.MustCompile(expr)
	c.Assert(rx.MatchString("foo-bar!"), qt.IsTrue)
	c.Assert(rx.MatchString("foobar!"), qt.IsTrue)
	c.Assert(rx.MatchString("bar!"), qt.IsFalse)
}

func TestHasMeta(t *testing.T) {
	c := qt.New(t)
	c.Assert(HasMeta("plain", 0), qt.IsFalse)
	c.Assert(HasMeta(`foo\*bar`, 0), qt.IsFalse)
	c.Assert(HasMeta("foo*bar", 0), qt.IsTrue)
	c.Assert(HasMeta("foo?bar", 0), qt.IsTrue)
	c.Assert(HasMeta("foo[bar]", 0), qt.IsTrue)
}

func TestQuoteMeta(t *testing.T) {
	c := qt.New(t)
	c.Assert(QuoteMeta("foo*bar?", 0), qt.Equals, `foo\*bar\?`)
	c.Assert(QuoteMeta("plain", 0), qt.Equals, "plain")
}
