package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// WrapIndent wraps text and indents every line by the given prefix.
func WrapIndent(text, prefix string) string {
	wrapped := wordwrap.String(text, DefaultWidth-len(prefix))
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Capitalize returns s with its first character uppercased.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
