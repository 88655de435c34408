package templates

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltin(t *testing.T) {
	b := Builtin()
	if len(b.Templates()) < 2 {
		t.Fatal("expected built-in templates")
	}
	blank, ok := b.Lookup("blank")
	if !ok || blank.Content != "" {
		t.Errorf("blank = %+v, %v", blank, ok)
	}
	if _, ok := b.Lookup("nope"); ok {
		t.Error("unknown template found")
	}
}

func TestNewSet_OverridesByName(t *testing.T) {
	s := NewSet(
		Template{Name: "a", Content: "1"},
		Template{Name: "b", Content: "2"},
		Template{Name: "a", Content: "3"},
	)
	list := s.Templates()
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].Name != "a" || list[0].Content != "3" {
		t.Errorf("list[0] = %+v", list[0])
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("report.html", "---\nname: weekly-report\ntitle: Weekly Report\ncategory: Work\n---\n<h1>Report</h1>\n")
	write("plain.md", "Just text\n")
	write("ignored.txt", "nope")

	s, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(s.Templates()) != 2 {
		t.Fatalf("templates = %+v", s.Templates())
	}
	r, ok := s.Lookup("weekly-report")
	if !ok {
		t.Fatal("frontmatter name not used")
	}
	if r.Title != "Weekly Report" || r.Category != "Work" || r.Content != "<h1>Report</h1>" {
		t.Errorf("report = %+v", r)
	}
	p, ok := s.Lookup("plain")
	if !ok || p.Content != "Just text" {
		t.Errorf("plain = %+v, %v", p, ok)
	}
}

func TestLoadDir_Missing(t *testing.T) {
	if _, err := LoadDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing dir")
	}
}

func TestMerge(t *testing.T) {
	custom := NewSet(Template{Name: "blank", Content: "<p>custom</p>"}, Template{Name: "extra"})
	m := Merge(Builtin(), custom)
	blank, _ := m.Lookup("blank")
	if blank.Content != "<p>custom</p>" {
		t.Errorf("blank not overridden: %+v", blank)
	}
	if _, ok := m.Lookup("extra"); !ok {
		t.Error("extra missing")
	}
	if _, ok := m.Lookup("letter"); !ok {
		t.Error("builtin letter missing")
	}
}
