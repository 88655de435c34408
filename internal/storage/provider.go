// Package storage defines the key-value persistence backends documents are
// stored in.
package storage

import (
	"fmt"
	"regexp"
)

// Backend is a synchronous key-value store holding string values.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// Verify implementations satisfy Backend at compile time.
var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*FS)(nil)
	_ Backend = (*SQLite)(nil)
)

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidKey reports whether key can be stored by every backend.
func ValidKey(key string) bool {
	return len(key) <= 200 && keyRe.MatchString(key)
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
