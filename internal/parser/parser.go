// Package parser extracts plain text and frontmatter from document markup.
package parser

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// PlainText strips markup tags from s and decodes escaped entities to their
// literal characters. Newlines come only from the buffer itself; block tags
// are not translated into line breaks.
func PlainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	b.Grow(len(s))
	raw := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce.
			return strings.ReplaceAll(b.String(), "\u00a0", " ")
		case html.TextToken:
			if raw == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				raw++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && raw > 0 {
				raw--
			}
		}
	}
}

// isRawText reports elements whose text is never shown to the reader.
func isRawText(tag []byte) bool {
	return bytes.Equal(tag, []byte("script")) || bytes.Equal(tag, []byte("style"))
}

// WordCount returns the number of whitespace-delimited tokens in the plain
// text form of s.
func WordCount(s string) int {
	return len(strings.Fields(PlainText(s)))
}

// CharCount returns the literal length of s in characters, markup included.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// SplitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. If no frontmatter is found the entire content is body.
func SplitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: body only, no error.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// StringField returns fm[key] when it is a non-empty string.
func StringField(fm map[string]any, key string) string {
	if fm == nil {
		return ""
	}
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
