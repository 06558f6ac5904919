// Package store persists pipeline artifacts under stable keys.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound reports a key with no stored artifact.
var ErrNotFound = errors.New("artifact not found")

// PersistenceError reports a failed artifact write or read.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store is a keyed artifact store. Put persists data under key and returns
// the artifact's location, a filesystem path or backend-specific address.
// Get returns ErrNotFound for keys never put.
type Store interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Close() error
}
