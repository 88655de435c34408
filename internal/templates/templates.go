// Package templates provides the starting content offered when a new
// document is created.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/quire/internal/parser"
)

// Template is a named starting point for a new document. An empty Title or
// Category keeps the document's defaults.
type Template struct {
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
	Content  string `json:"content"`
}

// Provider supplies templates.
type Provider interface {
	Templates() []Template
	Lookup(name string) (Template, bool)
}

// Set is a Provider over a fixed list of templates.
type Set struct {
	list []Template
}

// NewSet creates a Set. Later templates replace earlier ones with the same
// name; the order of first appearance is kept.
func NewSet(list ...Template) *Set {
	s := &Set{}
	pos := make(map[string]int, len(list))
	for _, t := range list {
		if i, ok := pos[t.Name]; ok {
			s.list[i] = t
			continue
		}
		pos[t.Name] = len(s.list)
		s.list = append(s.list, t)
	}
	return s
}

// Templates returns a copy of the templates in order.
func (s *Set) Templates() []Template {
	return append([]Template(nil), s.list...)
}

// Lookup finds a template by name.
func (s *Set) Lookup(name string) (Template, bool) {
	for _, t := range s.list {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Merge combines providers; templates from later providers override earlier
// ones by name.
func Merge(providers ...Provider) *Set {
	var all []Template
	for _, p := range providers {
		all = append(all, p.Templates()...)
	}
	return NewSet(all...)
}

// Builtin returns the templates shipped with the editor.
func Builtin() *Set {
	return NewSet(
		Template{
			Name:    "blank",
			Content: "",
		},
		Template{
			Name:     "meeting-notes",
			Title:    "Meeting Notes",
			Category: "Work",
			Content: "<h1>Meeting Notes</h1>\n<p><strong>Date:</strong> </p>\n<p><strong>Attendees:</strong> </p>\n" +
				"<h2>Agenda</h2>\n<ul><li></li></ul>\n<h2>Action Items</h2>\n<ul><li></li></ul>",
		},
		Template{
			Name:     "letter",
			Title:    "Letter",
			Category: "Personal",
			Content:  "<p>Dear ,</p>\n<p></p>\n<p>Sincerely,</p>\n<p></p>",
		},
		Template{
			Name:    "todo",
			Title:   "To-Do List",
			Content: "<h1>To-Do</h1>\n<ul>\n<li>[ ] </li>\n</ul>",
		},
	)
}

// LoadDir reads every .html and .md file in dir as a template. YAML
// frontmatter may set name, title and category; the file stem is the default
// name.
func LoadDir(dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("templates: read dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".html" && ext != ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	list := make([]Template, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", name, err)
		}
		fm, body, err := parser.SplitFrontmatter(data)
		if err != nil {
			return nil, fmt.Errorf("templates: parse %s: %w", name, err)
		}
		t := Template{
			Name:     parser.StringField(fm, "name"),
			Title:    parser.StringField(fm, "title"),
			Category: parser.StringField(fm, "category"),
			Content:  strings.TrimRight(body, "\n"),
		}
		if t.Name == "" {
			t.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		list = append(list, t)
	}
	return NewSet(list...), nil
}
