package store

import (
	"context"
	"fmt"
	"sync"
)

// MemStore keeps artifacts in memory. It backs tests and dry runs.
type MemStore struct {
	mu        sync.RWMutex
	artifacts map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{artifacts: make(map[string][]byte)}
}

func (s *MemStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[key] = append([]byte(nil), data...)
	return "mem:" + key, nil
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.artifacts[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Len returns the number of stored artifacts.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.artifacts)
}

func (s *MemStore) Close() error {
	return nil
}
