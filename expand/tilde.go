package expand

import (
	"os/user"
	"strings"
)

// expandTilde implements `~`, `~/path`, and `~user[/path]` at the start of
// an unquoted word. Quoting a tilde (`"~"`, `\~`) suppresses it entirely -
// callers only invoke this against a leading, unquoted LiteralPart.
func expandTilde(s string) string {
	if !strings.HasPrefix(s, "~") {
 return s
	}
	rest := s[1:]
	name, tail, _ := strings.Cut(rest, "/")
	var home string
	if name == "" {
 u, err := user.Current()
 if err != nil {
 return s
 }
 home = u.HomeDir
	} else {
 u, err := user.Lookup(name)
 if err != nil {
 return s
 }
 home = u.HomeDir
	}
	if strings.Contains(rest, "/") {
 return home + "/" + tail
	}
	return home
}
