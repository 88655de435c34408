// Package lineindex maps a free-form text buffer to numbered lines and
// translates between flat character offsets and line/column positions.
//
// Lines are always derived wholesale from the current buffer. Edits never
// patch a Line in place: they rebuild the buffer, write it back to the
// editing surface and the next query derives the lines again.
package lineindex

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/starford/quire/internal/parser"
)

// Line is one addressable line of the plain-text buffer. Offsets are
// character offsets; EndOffset of a line and StartOffset of the next one
// differ by exactly one (the newline).
type Line struct {
	ID          string `json:"id"`
	Number      int    `json:"number"`
	Content     string `json:"content"`
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	Length      int    `json:"length"`
}

// Derive splits the plain-text form of raw into lines. An empty or
// whitespace-only buffer yields a single empty line, never zero lines.
func Derive(raw string) []Line {
	text := parser.PlainText(raw)
	if strings.TrimSpace(text) == "" {
		return []Line{newLine(1, "", 0)}
	}

	parts := strings.Split(text, "\n")
	lines := make([]Line, 0, len(parts))
	offset := 0
	for i, p := range parts {
		l := newLine(i+1, p, offset)
		lines = append(lines, l)
		offset = l.EndOffset + 1
	}
	return lines
}

func newLine(number int, content string, start int) Line {
	n := utf8.RuneCountInString(content)
	return Line{
		ID:          "line-" + strconv.Itoa(number),
		Number:      number,
		Content:     content,
		StartOffset: start,
		EndOffset:   start + n,
		Length:      n,
	}
}

// Join rebuilds the plain-text buffer from lines.
func Join(lines []Line) string {
	return strings.Join(contents(lines), "\n")
}

func contents(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Content
	}
	return out
}

// lineAt returns the line whose [StartOffset, EndOffset] range contains o.
func lineAt(lines []Line, o int) (Line, bool) {
	for _, l := range lines {
		if o >= l.StartOffset && o <= l.EndOffset {
			return l, true
		}
	}
	return Line{}, false
}

// byNumber returns line n (1-based).
func byNumber(lines []Line, n int) (Line, bool) {
	for _, l := range lines {
		if l.Number == n {
			return l, true
		}
	}
	return Line{}, false
}
