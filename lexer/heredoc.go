package lexer

import (
	"strings"

	"github.com/cirrusshell/cirrus/token"
)

// HeredocBody is returned as extra metadata rather than its own Item
// variant: the parser looks it up by the position (Pos) of the
// SHL/DHEREDOC token that introduced it.
type HeredocBody struct {
	Text string
	Expand bool // false if the delimiter was quoted (<<'EOF')
	Stripped bool // true for <<- (leading tabs stripped)
}

// fixupHeredocs implements the heredoc post-pass:
// the primary scan above has already lexed straight through any heredoc body
// lines as if they were ordinary source (producing tokens that don't belong
// to the surrounding command). This pass walks the resulting Item slice,
// locates each <</<<- operator's delimiter, re-derives the true body text
// directly from the source by counting newlines already consumed, records it
// in the returned map keyed by the operator Item's Pos, and invalidates any
// Items that fell inside the consumed body range so the parser skips them.
func fixupHeredocs(src string, items []Item) map[token.Pos]HeredocBody {
	lineOffsets := computeLineOffsets(src)
	heredocBodies := make(map[token.Pos]HeredocBody)

	// nextBodyLine tracks, for the current top-level command line, the
	// 1-based line where the next heredoc body search falls back to when no
	// terminating NEWLINE is found; consecutive heredocs on one line consume
	// body lines in FIFO order from there.
	var nextBodyLine int
	haveLine := false

	for idx := 0; idx < len(items); idx++ {
 it := &items[idx]
 if it.Tok == token.NEWLINE {
 haveLine = false
 continue
 }
 if it.Tok != token.SHL && it.Tok != token.DHEREDOC {
 continue
 }
 // The delimiter word should be the very next valid LIT item.
 widx := idx + 1
 for widx < len(items) && !items[widx].Valid {
 widx++
 }
 if widx >= len(items) || items[widx].Tok != token.LIT {
 continue
 }
 delimRaw, quoted := delimText(items[widx])

 if !haveLine {
 line := lineAt(lineOffsets, int(it.Pos))
 nextBodyLine = line // body search starts on the line after the
 // one containing this operator; refined below once we know
 // where the command's terminating newline actually is.
 haveLine = true
 }

 startLine := findNewlineAfter(items, idx, lineOffsets)
 if startLine < 0 {
 startLine = nextBodyLine + 1
 }

 bodyLines, endLine := readHeredocLines(src, lineOffsets, startLine, delimRaw)
 strip := it.Tok == token.DHEREDOC
 if strip {
 for i, ln := range bodyLines {
 bodyLines[i] = strings.TrimLeft(ln, "\t")
 }
 }
 body := strings.Join(bodyLines, "\n")
 if len(bodyLines) > 0 {
 body += "\n"
 }
 heredocBodies[it.Pos] = HeredocBody{Text: body, Expand: !quoted, Stripped: strip}

 // Invalidate any items that were spuriously lexed from the body's
 // byte range so the parser walks past them.
 lo := lineOffsets[startLine-1]
 hi := len(src)
 if endLine < len(lineOffsets) {
 hi = lineOffsets[endLine]
 }
 for j := widx + 1; j < len(items); j++ {
 p := int(items[j].Pos)
 if p >= lo && p < hi {
 items[j].Valid = false
 } else if p >= hi {
 break
 }
 }
 nextBodyLine = endLine + 1
	}
	return heredocBodies
}

func delimText(it Item) (string, bool) {
	var b strings.Builder
	quoted := false
	for _, s := range it.Segments {
 if s.Kind == SegLit {
 b.WriteString(s.Lit)
 if s.Quoted {
 quoted = true
 }
 }
	}
	return b.String(), quoted
}

func computeLineOffsets(src string) []int {
	offs := []int{0}
	for i := 0; i < len(src); i++ {
 if src[i] == '\n' {
 offs = append(offs, i+1)
 }
	}
	return offs
}

func lineAt(offs []int, pos int) int {
	lo, hi := 0, len(offs)-1
	for lo < hi {
 mid := (lo + hi + 1) / 2
 if offs[mid] <= pos {
 lo = mid
 } else {
 hi = mid - 1
 }
	}
	return lo + 1
}

// findNewlineAfter finds the 1-based line number right after the NEWLINE
// token that terminates the command containing items[idx].
func findNewlineAfter(items []Item, idx int, offs []int) int {
	for j := idx; j < len(items); j++ {
 if items[j].Tok == token.NEWLINE {
 return lineAt(offs, int(items[j].Pos)) + 1
 }
 if items[j].Tok == token.EOF {
 return -1
 }
	}
	return -1
}

// readHeredocLines reads source lines starting at 1-based startLine until it
// finds one equal to delim, returning the intervening lines (exclusive of
// the delimiter line) and the 1-based line number of the delimiter line.
func readHeredocLines(src string, offs []int, startLine int, delim string) ([]string, int) {
	var lines []string
	for ln := startLine; ln <= len(offs); ln++ {
 lo := offs[ln-1]
 hi := len(src)
 if ln < len(offs) {
 hi = offs[ln] - 1
 }
 if hi > 0 && hi <= len(src) && hi > lo && src[hi-1] == '\n' {
 hi--
 }
 line := ""
 if lo <= hi && lo <= len(src) {
 line = src[lo:hi]
 }
 if strings.TrimLeft(line, "\t") == delim || line == delim {
 return lines, ln
 }
 lines = append(lines, line)
	}
	return lines, len(offs) + 1
}
