package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
)

// ============================================================
// File Store
// ============================================================

// FileStore keeps one file per key under root.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

// Path is the file backing key. Keys are escaped so they never leave root.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, url.PathEscape(key))
}

func (s *FileStore) EnsureDir() error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("mkdir store dir: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	return data, err
}

func (s *FileStore) Put(_ context.Context, key string, value []byte) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	tmp := s.Path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return os.Rename(tmp, s.Path(key))
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Ping(_ context.Context) error {
	return s.EnsureDir()
}
