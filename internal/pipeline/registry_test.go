package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "hp_ontology_hierarchy_information.csv", TableKey("hp"))
	assert.Equal(t, "hp_ontology_ancestors.json", AncestorsKey("hp"))
	assert.Equal(t, "hp_ontology_children.json", ChildrenKey("hp"))
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.NotEmpty(t, r.RunID)
	assert.False(t, r.StartedAt.IsZero())
	assert.Empty(t, r.IDs())

	hp := ArtifactSet{Table: "t", Ancestors: "a", Children: "c"}
	r.Register("hp", hp)
	r.Register("doid", ArtifactSet{Table: "t2", Ancestors: "a2", Children: "c2"})

	assert.Equal(t, []string{"doid", "hp"}, r.IDs())

	got, ok := r.Lookup("hp")
	require.True(t, ok)
	assert.Equal(t, hp, got)

	_, ok = r.Lookup("mondo")
	assert.False(t, ok)

	r.Remove("hp")
	assert.Equal(t, []string{"doid"}, r.IDs())
}

func TestRegistryMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.Register("hp", ArtifactSet{
		Table:     "/artifacts/hp_ontology_hierarchy_information.csv",
		Ancestors: "/artifacts/hp_ontology_ancestors.json",
		Children:  "/artifacts/hp_ontology_children.json",
	})

	data, err := r.Marshal()
	require.NoError(t, err)

	parsed, err := ParseRegistry(data)
	require.NoError(t, err)
	assert.Equal(t, r.RunID, parsed.RunID)
	assert.Equal(t, r.IDs(), parsed.IDs())
	assert.True(t, r.StartedAt.Equal(parsed.StartedAt))

	got, ok := parsed.Lookup("hp")
	require.True(t, ok)
	assert.Equal(t, "/artifacts/hp_ontology_ancestors.json", got.Ancestors)
}

func TestParseRegistryEmptyObject(t *testing.T) {
	t.Parallel()

	parsed, err := ParseRegistry([]byte(`{"run_id":"r","started_at":"2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, parsed.Ontologies)
	assert.Empty(t, parsed.IDs())
}

func TestParseRegistryInvalid(t *testing.T) {
	t.Parallel()

	_, err := ParseRegistry([]byte("not json"))
	assert.Error(t, err)
}
