package closure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsDepths(t *testing.T) {
	t.Parallel()

	levels := Levels{2: {"a"}, 0: {"b"}, 1: {"c"}}
	assert.Equal(t, []int{0, 1, 2}, levels.Depths())
	assert.Empty(t, Levels{}.Depths())
}

func TestIndexLookupUnknown(t *testing.T) {
	t.Parallel()

	idx := NewIndex(Ancestors)

	_, err := idx.Lookup("http://purl.obolibrary.org/obo/HP_9999999")
	require.Error(t, err)

	var unknown *UnknownClassError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "http://purl.obolibrary.org/obo/HP_9999999", unknown.Class)
}

func TestIndexMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	ix := &Indexer{Parents: mapNeighbors(map[string][]string{
		"b": {"a"},
		"c": {"b"},
	})}

	idx, err := ix.IndexAll(context.Background(), Ancestors, []string{"a", "b", "c"})
	require.NoError(t, err)

	data, err := idx.MarshalArtifact()
	require.NoError(t, err)

	decoded, err := UnmarshalArtifact(Ancestors, data)
	require.NoError(t, err)
	assert.Equal(t, idx.Classes(), decoded.Classes())

	for _, class := range idx.Classes() {
		want, err := idx.Lookup(class)
		require.NoError(t, err)
		got, err := decoded.Lookup(class)
		require.NoError(t, err)
		assert.Equal(t, want, got, "closure of %s", class)
	}
}

func TestIndexMarshalDeterministic(t *testing.T) {
	t.Parallel()

	parents := mapNeighbors(map[string][]string{
		"b": {"a"},
		"c": {"b", "a"},
		"d": {"c", "b"},
	})

	first, err := (&Indexer{Parents: parents}).IndexAll(context.Background(), Ancestors, []string{"a", "b", "c", "d"})
	require.NoError(t, err)
	second, err := (&Indexer{Parents: parents, Workers: 4}).IndexAll(context.Background(), Ancestors, []string{"d", "c", "b", "a", "d"})
	require.NoError(t, err)

	firstData, err := first.MarshalArtifact()
	require.NoError(t, err)
	secondData, err := second.MarshalArtifact()
	require.NoError(t, err)

	assert.Equal(t, firstData, secondData)
}

func TestIndexMarshalEmptyClosureAsObject(t *testing.T) {
	t.Parallel()

	ix := &Indexer{Parents: mapNeighbors(nil)}
	idx, err := ix.IndexAll(context.Background(), Ancestors, []string{"root"})
	require.NoError(t, err)

	data, err := idx.MarshalArtifact()
	require.NoError(t, err)
	assert.JSONEq(t, `{"root":{}}`, string(data))
}
