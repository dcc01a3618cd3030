// Package format provides shared text formatting utilities for terminal output.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// ansiRegex matches ANSI color sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the visible width of s in terminal columns. Color
// codes take no space and wide runes such as CJK or emoji take two.
func DisplayWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// TruncateToWidth shortens s to at most maxWidth columns, ending it with
// "..." when anything was cut. Color codes are kept and, if any were cut
// off mid-span, a reset is appended. It returns the result and its width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	width := DisplayWidth(s)
	if width <= maxWidth {
		return s, width
	}

	budget := maxWidth - len(Ellipsis)
	if budget < 0 {
		budget = 0
	}

	var b strings.Builder
	colored := false
	used := 0
	for pos := 0; pos < len(s); {
		if loc := ansiRegex.FindStringIndex(s[pos:]); loc != nil && loc[0] == 0 {
			b.WriteString(s[pos : pos+loc[1]])
			pos += loc[1]
			colored = true
			continue
		}
		r, size := utf8.DecodeRuneInString(s[pos:])
		rw := runewidth.RuneWidth(r)
		if used+rw > budget {
			break
		}
		b.WriteRune(r)
		used += rw
		pos += size
	}

	b.WriteString(Ellipsis)
	if colored {
		b.WriteString("\033[0m")
	}
	return b.String(), used + len(Ellipsis)
}

// PadRight pads a string with spaces to reach the target visible width.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// Fit truncates or pads s so it occupies exactly width columns.
func Fit(s string, width int) string {
	out, w := TruncateToWidth(s, width)
	return PadRight(out, w, width)
}
