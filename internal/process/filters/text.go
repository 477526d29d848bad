package filters

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	fileSeparator   = '\x1c'
	recordSeparator = '\x1e'
	unitSeparator   = '\x1f'
)

// isSpace matches the whitespace class of the reference tokenizer: Unicode
// White_Space plus the ASCII information separators U+001C..U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= fileSeparator && r <= unitSeparator)
}

// isLineBreak reports the characters that end a line.
func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}

	return r >= fileSeparator && r <= recordSeparator
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, isSpace)
}

// splitLines splits on line boundaries, treating "\r\n" as one boundary.
// A trailing boundary does not produce an empty final line, and an empty
// text yields no lines.
func splitLines(text string) []string {
	var lines []string

	start := 0
	skipLF := false

	for i, r := range text {
		if skipLF {
			skipLF = false

			if r == '\n' {
				start = i + 1
				continue
			}
		}

		if !isLineBreak(r) {
			continue
		}

		lines = append(lines, text[start:i])
		start = i + utf8.RuneLen(r)
		skipLF = r == '\r'
	}

	if start < len(text) {
		lines = append(lines, text[start:])
	}

	return lines
}

func trimLeftSpace(s string) string {
	return strings.TrimLeftFunc(s, isSpace)
}

func trimRightSpace(s string) string {
	return strings.TrimRightFunc(s, isSpace)
}

func hasLetter(word string) bool {
	for _, r := range word {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}
