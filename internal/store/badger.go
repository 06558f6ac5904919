package store

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// artifactPrefix namespaces artifact keys inside the database.
const artifactPrefix = "a:"

// BadgerStore persists artifacts in a Badger key-value database, useful
// when many ontology runs share one store.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens or creates the database at path. Read-only mode
// allows concurrent readers against a store another process owns.
func NewBadgerStore(path string, readOnly bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR)
	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening artifact database: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(artifactPrefix+key), data)
	})
	if err != nil {
		return "", &PersistenceError{Key: key, Err: err}
	}
	return "badger:" + key, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(artifactPrefix + key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, &PersistenceError{Key: key, Err: err}
	}
	return data, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
