package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func testConfig(t *testing.T, backend string) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Storage = StorageConfig{Backend: backend, Path: filepath.Join(dir, "data")}
	if backend == BackendSQLite {
		cfg.Storage.Path = filepath.Join(dir, "docs.db")
	}
	cfg.Index.Path = filepath.Join(dir, "index", "quire.db")
	return cfg
}

func TestBuildCore_Backends(t *testing.T) {
	for _, backend := range []string{BackendMemory, BackendFS, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := testConfig(t, backend)
			c, err := buildCore(cfg, discard)
			if err != nil {
				t.Fatalf("buildCore: %v", err)
			}
			defer c.Close()

			if (c.fs != nil) != (backend == BackendFS) {
				t.Errorf("fs backend = %v", c.fs)
			}
			doc, err := c.service.CreateDocument("todo")
			if err != nil {
				t.Fatalf("CreateDocument: %v", err)
			}
			res, err := c.service.Search("List", 10)
			if err != nil || len(res) != 1 || res[0].ID != doc.ID {
				t.Errorf("search = %+v, %v", res, err)
			}
		})
	}
}

func TestBuildCore_PersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t, BackendFS)
	c, err := buildCore(cfg, discard)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := c.service.CreateDocument("")
	if _, err := c.service.UpdateContent("kept", ""); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = buildCore(cfg, discard)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	st := c.service.State()
	if st.CurrentDocument == nil || st.CurrentDocument.ID != doc.ID || st.CurrentDocument.Content != "kept" {
		t.Errorf("resumed = %+v", st.CurrentDocument)
	}
	if st.CanUndo {
		t.Error("history should not survive a restart")
	}
}

func TestBuildCore_IndexDisabled(t *testing.T) {
	cfg := testConfig(t, BackendMemory)
	cfg.Index.Path = ""
	c, err := buildCore(cfg, discard)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if c.db != nil {
		t.Error("index should be disabled")
	}
	c.service.CreateDocument("letter")
	if res, _ := c.service.Search("sincerely", 10); len(res) != 1 {
		t.Errorf("in-memory search = %+v", res)
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	data := "---\nname: letter\ntitle: Custom Letter\n---\n<p>Hi</p>\n"
	if err := os.WriteFile(filepath.Join(dir, "letter.html"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := loadTemplates(TemplatesConfig{Dir: dir})
	if err != nil {
		t.Fatalf("loadTemplates: %v", err)
	}
	tpl, ok := p.Lookup("letter")
	if !ok || tpl.Title != "Custom Letter" {
		t.Errorf("override = %+v", tpl)
	}
	if _, ok := p.Lookup("todo"); !ok {
		t.Error("built-in templates lost")
	}
	if _, err := loadTemplates(TemplatesConfig{Dir: filepath.Join(dir, "missing")}); err == nil {
		t.Error("missing dir should fail")
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(t.Context()); err == nil {
		t.Error("Run without config should fail")
	}
}
