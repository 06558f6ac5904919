package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		classID string
		want    string
	}{
		{"http://purl.obolibrary.org/obo/HP_0000002", "HP:0000002"},
		{"http://purl.obolibrary.org/obo/NCBITaxon_9606", "NCBITaxon:9606"},
		{"http://purl.obolibrary.org/obo/SO_0000110_variant", "SO:0000110:variant"},
		{"HP_0000002", "HP:0000002"},
		{"plain", "plain"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CodeFor(tc.classID))
		})
	}
}

func TestTableClassIDs(t *testing.T) {
	t.Parallel()

	table := &Table{Rows: []Record{
		{ClassID: "b"},
		{ClassID: "a"},
		{ClassID: "b"},
	}}

	assert.Equal(t, []string{"a", "b"}, table.ClassIDs())
	assert.Equal(t, 3, table.Len())
}

func TestTableCSVRoundTrip(t *testing.T) {
	t.Parallel()

	table := &Table{Rows: []Record{
		{
			ClassID:       "http://purl.obolibrary.org/obo/HP_0000002",
			Code:          "HP:0000002",
			Text:          "abnormality of body height",
			TextKind:      KindLabel,
			DBX:           "D003117",
			DBXType:       "oboInOwl:hasDbXref",
			DBXSource:     "msh",
			DBXSourceName: "msh",
			Source:        "http://purl.obolibrary.org/obo/hp/releases/2024-01-01/hp.owl",
			SemanticType:  "human_phenotype",
		},
		{
			ClassID:       "http://purl.obolibrary.org/obo/HP_0000001",
			Code:          "HP:0000001",
			Text:          `text with, comma and "quotes"`,
			TextKind:      KindDefinition,
			DBX:           NoneValue,
			DBXType:       NoneValue,
			DBXSource:     NoneValue,
			DBXSourceName: NoneValue,
			Source:        "hp",
			SemanticType:  "hp",
		},
	}}

	data, err := table.MarshalCSV()
	require.NoError(t, err)

	again, err := table.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, data, again)

	decoded, err := UnmarshalCSV(data)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, decoded.Rows)
}

func TestUnmarshalCSVRejectsBadHeader(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalCSV([]byte("id,code,string,string_type,dbx,dbx_type,dbx_source,dbx_source_name,obo_source,obo_semantic_type\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected metadata column")
}

func TestUnmarshalCSVRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := UnmarshalCSV(nil)
	assert.Error(t, err)
}

func TestUnmarshalCSVRejectsShortRows(t *testing.T) {
	t.Parallel()

	table := &Table{}
	data, err := table.MarshalCSV()
	require.NoError(t, err)

	_, err = UnmarshalCSV(append(data, []byte("only,three,fields\n")...))
	assert.Error(t, err)
}
