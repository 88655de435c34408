package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/starford/quire/internal/checksum"
)

// FS implements Backend with one file per key inside a directory.
type FS struct {
	root string // absolute path to the data directory

	mu      sync.Mutex
	written map[string]string // key -> checksum of the last value this process wrote
}

// NewFS creates a new FS backend rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, written: make(map[string]string)}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string {
	return f.root
}

// keyPath maps a key to its file. Valid keys never contain separators or
// start with a dot, so the result always stays directly under root.
func (f *FS) keyPath(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.root, key), nil
}

// Get reads the file holding key.
func (f *FS) Get(key string) (string, bool, error) {
	p, err := f.keyPath(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set atomically writes value: tmp file → fsync → rename.
func (f *FS) Set(key, value string) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.root, ".quire-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.WriteString(value); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}

	// Record before the rename so a watcher never sees an unknown checksum
	// for our own write.
	f.mu.Lock()
	prev, hadPrev := f.written[key]
	f.written[key] = checksum.Sum([]byte(value))
	f.mu.Unlock()

	if err := os.Rename(tmpName, p); err != nil {
		f.mu.Lock()
		if hadPrev {
			f.written[key] = prev
		} else {
			delete(f.written, key)
		}
		f.mu.Unlock()
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Remove deletes the file holding key.
func (f *FS) Remove(key string) error {
	p, err := f.keyPath(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.written[key] = ""
	f.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", key, err)
	}
	return nil
}

// LastWritten returns the checksum of the value this process last wrote for
// key, "" if it last removed it. ok is false if the process never touched key.
func (f *FS) LastWritten(key string) (sum string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, ok = f.written[key]
	return sum, ok
}
