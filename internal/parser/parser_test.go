package parser

import (
	"testing"
)

func TestPlainText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "line1\nline2\n\nline4", "line1\nline2\n\nline4"},
		{"tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities", "a &amp; b &lt;c&gt;", "a & b <c>"},
		{"nbsp", "a&nbsp;b", "a b"},
		{"newlines kept", "<div>one</div>\n<div>two</div>", "one\ntwo"},
		{"script dropped", "x<script>var y = 1;</script>z", "xz"},
		{"style dropped", "<style>p{color:red}</style>text", "text"},
		{"bare less-than", "1 < 2", "1 < 2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in); got != tc.want {
				t.Errorf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWordCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"one", 1},
		{"<p>one two</p><p>three</p>", 2},
		{"<p>one two</p> <p>three</p>", 3},
		{"hello,   world\nagain", 3},
	}
	for _, tc := range cases {
		if got := WordCount(tc.in); got != tc.want {
			t.Errorf("WordCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCharCount_IncludesMarkup(t *testing.T) {
	if got := CharCount("<b>hi</b>"); got != 9 {
		t.Errorf("CharCount = %d, want 9", got)
	}
	if got := CharCount("héllo"); got != 5 {
		t.Errorf("CharCount counts characters, got %d", got)
	}
}

func TestSplitFrontmatter(t *testing.T) {
	input := []byte("---\nname: memo\ntitle: Memo\n---\n<h1>Memo</h1>\n")
	fm, body, err := SplitFrontmatter(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if StringField(fm, "name") != "memo" {
		t.Errorf("name = %v", fm["name"])
	}
	if StringField(fm, "title") != "Memo" {
		t.Errorf("title = %v", fm["title"])
	}
	if body != "<h1>Memo</h1>\n" {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_None(t *testing.T) {
	input := []byte("<p>Just a body</p>")
	fm, body, err := SplitFrontmatter(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm != nil {
		t.Errorf("expected nil frontmatter, got %v", fm)
	}
	if body != string(input) {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\nBody\n")
	fm, body, err := SplitFrontmatter(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fm != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if body != string(input) {
		t.Errorf("body = %q", body)
	}
}

func TestSplitFrontmatter_Unclosed(t *testing.T) {
	input := []byte("---\nname: x\nno closing fence")
	fm, _, _ := SplitFrontmatter(input)
	if fm != nil {
		t.Errorf("expected nil frontmatter without closing fence")
	}
}
