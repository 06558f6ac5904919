package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore writes each artifact as a file named by its key under one
// directory. Writes go through a temp file and rename, so readers never
// observe a partially written artifact.
type FSStore struct {
	dir string
}

// NewFSStore opens a filesystem store rooted at dir, creating it if
// needed.
func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating artifact directory: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *FSStore) Dir() string {
	return s.dir
}

func (s *FSStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, key)

	f, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return "", &PersistenceError{Key: key, Err: err}
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0o644)
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", &PersistenceError{Key: key, Err: err}
	}
	return path, nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, &PersistenceError{Key: key, Err: err}
	}
	return data, nil
}

func (s *FSStore) Close() error {
	return nil
}
