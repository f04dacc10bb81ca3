package rendering

import (
	"strings"
	"unicode/utf8"
)

// EscapeInline escapes characters that would turn single-line text into
// markdown markup. Newlines collapse to spaces.
// Special characters: \ * _ ` [ ] < > | #
func EscapeInline(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + 8)

	for _, r := range text {
		switch r {
		case '\\', '*', '_', '`', '[', ']', '<', '>', '|', '#':
			result.WriteByte('\\')
			result.WriteRune(r)
		case '\r':
		case '\n', '\t':
			result.WriteByte(' ')
		default:
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// Quote renders text as a blockquote so a "---" line inside it cannot start
// a new slide.
func Quote(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Chunk splits s into pieces of at most size runes. Nothing is dropped:
// joining the chunks yields s.
func Chunk(s string, size int) []string {
	if s == "" {
		return nil
	}
	if size <= 0 {
		return []string{s}
	}

	var chunks []string
	start, n := 0, 0
	for pos := range s {
		if n == size {
			chunks = append(chunks, s[start:pos])
			start, n = pos, 0
		}
		n++
	}
	return append(chunks, s[start:])
}
