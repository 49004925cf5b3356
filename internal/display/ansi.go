package display

import (
	"fmt"
	"regexp"
	"strings"
)

// ANSI escape sequences understood by conformant MUD clients.
const (
	Red       = "\x1b[31m"
	Green     = "\x1b[32m"
	Yellow    = "\x1b[33m"
	Blue      = "\x1b[34m"
	Magenta   = "\x1b[35m"
	Cyan      = "\x1b[36m"
	White     = "\x1b[37m"
	Reset     = "\x1b[0m"
	Bold      = "\x1b[1m"
	Dim       = "\x1b[2m"
	Underline = "\x1b[4m"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Colorize wraps text in the given ANSI sequence and a trailing reset.
// An empty color returns the text unchanged.
func Colorize(text, color string) string {
	if color == "" {
		return text
	}
	return color + text + Reset
}

// StripANSI removes all ANSI color sequences from text. Log sinks and
// automated clients use this to get plain text.
func StripANSI(text string) string {
	return ansiPattern.ReplaceAllString(text, "")
}

// VisibleLen returns the length of text with ANSI sequences excluded.
func VisibleLen(text string) int {
	return len([]rune(StripANSI(text)))
}

// Underlined returns text followed by a dash rule of matching visible width.
func Underlined(text string) string {
	return fmt.Sprintf("%s\n%s", text, strings.Repeat("-", VisibleLen(text)))
}
