package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTrip exercises the Store contract shared by every backend.
func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	location, err := s.Put(ctx, "hp_ontology_ancestors.json", []byte(`{"a":{}}`))
	require.NoError(t, err)
	assert.NotEmpty(t, location)

	data, err := s.Get(ctx, "hp_ontology_ancestors.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{}}`, string(data))

	// Overwrite replaces the previous artifact.
	_, err = s.Put(ctx, "hp_ontology_ancestors.json", []byte(`{"a":{"0":["b"]}}`))
	require.NoError(t, err)

	data, err = s.Get(ctx, "hp_ontology_ancestors.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"0":["b"]}}`, string(data))
}

func TestMemStore(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	defer func() { require.NoError(t, s.Close()) }()

	roundTrip(t, s)
	assert.Equal(t, 1, s.Len())
}

func TestMemStoreCopiesData(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx := context.Background()

	payload := []byte("original")
	_, err := s.Put(ctx, "k", payload)
	require.NoError(t, err)
	payload[0] = 'X'

	data, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestFSStore(t *testing.T) {
	t.Parallel()

	s, err := NewFSStore(filepath.Join(t.TempDir(), "artifacts"))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	roundTrip(t, s)
}

func TestFSStoreLocationIsPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	location, err := s.Put(context.Background(), "registry.json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "registry.json"), location)

	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestFSStoreLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "a.json", []byte("{}"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestStoreCancelledContext(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Put(ctx, "k", nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBadgerStore(t *testing.T) {
	t.Parallel()

	s, err := NewBadgerStore(filepath.Join(t.TempDir(), "badger"), false)
	require.NoError(t, err)

	roundTrip(t, s)
	require.NoError(t, s.Close())
}

func TestBadgerStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "badger")

	s, err := NewBadgerStore(path, false)
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "k", []byte("v"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := NewBadgerStore(path, true)
	require.NoError(t, err)
	defer func() { require.NoError(t, reopened.Close()) }()

	data, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}
