package kv

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File implements Store with one file per key under a root directory.
// Writes go through a temp file + rename so readers never observe a
// partially written value.
type File struct {
	mu   sync.Mutex
	root string
}

// NewFile creates a file-backed store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create kv root: %w", err)
	}
	return &File{root: dir}, nil
}

func (f *File) Read(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %q: %w", key, err)
	}
	return string(data), true, nil
}

func (f *File) Write(key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit %q: %w", key, err)
	}
	return nil
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// path maps a key to a file name. Keys contain ":" separators, so they are
// hex-encoded to stay filesystem-safe on every platform.
func (f *File) path(key string) string {
	return filepath.Join(f.root, hex.EncodeToString([]byte(key))+".json")
}
