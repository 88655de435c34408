package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestFS_SetAndGet(t *testing.T) {
	s := tempFS(t)
	if err := s.Set("quire.documents", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get("quire.documents")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != `[{"id":"1"}]` {
		t.Errorf("Get = %q, %v", got, ok)
	}
}

func TestFS_GetMissing(t *testing.T) {
	s := tempFS(t)
	v, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || v != "" {
		t.Errorf("missing key returned %q, %v", v, ok)
	}
}

func TestFS_Remove(t *testing.T) {
	s := tempFS(t)
	_ = s.Set("gone", "bye")
	if err := s.Remove("gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get("gone"); ok {
		t.Error("key still present after Remove")
	}
	if err := s.Remove("gone"); err != nil {
		t.Errorf("second Remove should be a no-op: %v", err)
	}
}

func TestFS_InvalidKeysRejected(t *testing.T) {
	s := tempFS(t)

	cases := []string{
		"../../etc/passwd",
		"../outside",
		"/etc/shadow",
		"a/b",
		".hidden",
		"",
	}
	for _, k := range cases {
		if _, _, err := s.Get(k); err == nil {
			t.Errorf("expected error for get %q", k)
		}
		if err := s.Set(k, "x"); err == nil {
			t.Errorf("expected error for set %q", k)
		}
	}
}

func TestFS_AtomicWriteNoLeftovers(t *testing.T) {
	s := tempFS(t)
	_ = s.Set("atomic", "original content")
	if err := s.Set("atomic", "updated content"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ := s.Get("atomic")
	if got != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".quire-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFS_LastWritten(t *testing.T) {
	s := tempFS(t)
	if _, ok := s.LastWritten("k"); ok {
		t.Fatal("untouched key should be unknown")
	}
	_ = s.Set("k", "v1")
	sum, ok := s.LastWritten("k")
	if !ok || sum == "" {
		t.Fatalf("LastWritten after Set = %q, %v", sum, ok)
	}
	if s.externallyChanged("k") {
		t.Error("own write reported as external")
	}
	if err := os.WriteFile(filepath.Join(s.Root(), "k"), []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !s.externallyChanged("k") {
		t.Error("external write not detected")
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/quire-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "quire-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
