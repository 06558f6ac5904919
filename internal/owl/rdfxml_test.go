package owl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRDFXML = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:oboInOwl="http://www.geneontology.org/formats/oboInOwl#">
  <owl:Ontology rdf:about="http://purl.obolibrary.org/obo/hp.owl">
    <owl:versionIRI rdf:resource="http://purl.obolibrary.org/obo/hp/releases/2024-01-01/hp.owl"/>
  </owl:Ontology>
  <owl:Class rdf:about="http://purl.obolibrary.org/obo/HP_0000002">
    <rdfs:subClassOf rdf:resource="http://purl.obolibrary.org/obo/HP_0000001"/>
    <rdfs:label xml:lang="en">Abnormality of body height</rdfs:label>
    <oboInOwl:hasDbXref rdf:datatype="http://www.w3.org/2001/XMLSchema#string">UMLS:C4025901</oboInOwl:hasDbXref>
  </owl:Class>
</rdf:RDF>
`

func TestDecodeRDFXMLTypedNodes(t *testing.T) {
	t.Parallel()

	g, err := LoadReader(strings.NewReader(sampleRDFXML), FormatRDFXML)
	require.NoError(t, err)

	types := g.Objects("http://purl.obolibrary.org/obo/HP_0000002", rdfTypeIRI)
	require.Len(t, types, 1)
	assert.Equal(t, "http://www.w3.org/2002/07/owl#Class", types[0].Value)

	parents := g.Objects("http://purl.obolibrary.org/obo/HP_0000002", "http://www.w3.org/2000/01/rdf-schema#subClassOf")
	require.Len(t, parents, 1)
	assert.Equal(t, "http://purl.obolibrary.org/obo/HP_0000001", parents[0].Value)
	assert.Equal(t, IRI, parents[0].Kind)

	labels := g.Objects("http://purl.obolibrary.org/obo/HP_0000002", "http://www.w3.org/2000/01/rdf-schema#label")
	require.Len(t, labels, 1)
	assert.Equal(t, "Abnormality of body height", labels[0].Value)
	assert.Equal(t, "en", labels[0].Lang)

	xrefs := g.Objects("http://purl.obolibrary.org/obo/HP_0000002", "http://www.geneontology.org/formats/oboInOwl#hasDbXref")
	require.Len(t, xrefs, 1)
	assert.Equal(t, "UMLS:C4025901", xrefs[0].Value)
	assert.Equal(t, "http://www.w3.org/2001/XMLSchema#string", xrefs[0].Datatype)
}

func TestDecodeRDFXMLVersionIRI(t *testing.T) {
	t.Parallel()

	g, err := LoadReader(strings.NewReader(sampleRDFXML), FormatRDFXML)
	require.NoError(t, err)

	version, ok := g.FirstObject("http://www.w3.org/2002/07/owl#versionIRI")
	require.True(t, ok)
	assert.Equal(t, "http://purl.obolibrary.org/obo/hp/releases/2024-01-01/hp.owl", version.Value)
}

func TestDecodeRDFXMLDoctypeEntities(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<!DOCTYPE rdf:RDF [
  <!ENTITY obo "http://purl.obolibrary.org/obo/">
  <!ENTITY rdfs "http://www.w3.org/2000/01/rdf-schema#">
]>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#"
         xmlns:owl="http://www.w3.org/2002/07/owl#">
  <owl:Class rdf:about="&obo;HP_0000005">
    <rdfs:subClassOf rdf:resource="&obo;HP_0000001"/>
  </owl:Class>
</rdf:RDF>
`

	g, err := LoadReader(strings.NewReader(doc), FormatRDFXML)
	require.NoError(t, err)

	parents := g.Objects("http://purl.obolibrary.org/obo/HP_0000005", "http://www.w3.org/2000/01/rdf-schema#subClassOf")
	require.Len(t, parents, 1)
	assert.Equal(t, "http://purl.obolibrary.org/obo/HP_0000001", parents[0].Value)
}

func TestDecodeRDFXMLDescriptionNode(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#">
  <rdf:Description rdf:about="http://example.org/a">
    <rdfs:comment>plain node</rdfs:comment>
  </rdf:Description>
</rdf:RDF>
`

	g, err := LoadReader(strings.NewReader(doc), FormatRDFXML)
	require.NoError(t, err)

	// rdf:Description contributes no type triple.
	assert.Empty(t, g.Objects("http://example.org/a", rdfTypeIRI))

	comments := g.Objects("http://example.org/a", "http://www.w3.org/2000/01/rdf-schema#comment")
	require.Len(t, comments, 1)
	assert.Equal(t, "plain node", comments[0].Value)
}

func TestDecodeRDFXMLNestedNode(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:owl="http://www.w3.org/2002/07/owl#"
         xmlns:rdfs="http://www.w3.org/2000/01/rdf-schema#">
  <owl:Class rdf:about="http://example.org/a">
    <rdfs:subClassOf>
      <owl:Restriction>
        <owl:onProperty rdf:resource="http://example.org/partOf"/>
        <owl:someValuesFrom rdf:resource="http://example.org/b"/>
      </owl:Restriction>
    </rdfs:subClassOf>
  </owl:Class>
</rdf:RDF>
`

	g, err := LoadReader(strings.NewReader(doc), FormatRDFXML)
	require.NoError(t, err)

	parents := g.Objects("http://example.org/a", "http://www.w3.org/2000/01/rdf-schema#subClassOf")
	require.Len(t, parents, 1)
	assert.Equal(t, Blank, parents[0].Kind)

	// The restriction's own properties hang off the blank node.
	blank := parents[0].Value
	on := g.Objects(blank, "http://www.w3.org/2002/07/owl#onProperty")
	require.Len(t, on, 1)
	assert.Equal(t, "http://example.org/partOf", on[0].Value)
}

func TestDecodeRDFXMLParseTypeResource(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:detail rdf:parseType="Resource">
      <ex:inner rdf:resource="http://example.org/b"/>
    </ex:detail>
  </rdf:Description>
</rdf:RDF>
`

	g, err := LoadReader(strings.NewReader(doc), FormatRDFXML)
	require.NoError(t, err)

	details := g.Objects("http://example.org/a", "http://example.org/detail")
	require.Len(t, details, 1)
	require.Equal(t, Blank, details[0].Kind)

	inner := g.Objects(details[0].Value, "http://example.org/inner")
	require.Len(t, inner, 1)
	assert.Equal(t, "http://example.org/b", inner[0].Value)
}

func TestDecodeRDFXMLBlankNodeIDs(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#"
         xmlns:ex="http://example.org/">
  <rdf:Description rdf:about="http://example.org/a">
    <ex:link rdf:nodeID="n1"/>
  </rdf:Description>
  <rdf:Description rdf:nodeID="n1">
    <ex:name>shared blank</ex:name>
  </rdf:Description>
</rdf:RDF>
`

	g, err := LoadReader(strings.NewReader(doc), FormatRDFXML)
	require.NoError(t, err)

	links := g.Objects("http://example.org/a", "http://example.org/link")
	require.Len(t, links, 1)
	assert.Equal(t, "_:n1", links[0].Value)

	names := g.Objects("_:n1", "http://example.org/name")
	require.Len(t, names, 1)
	assert.Equal(t, "shared blank", names[0].Value)
}

func TestDecodeRDFXMLMalformed(t *testing.T) {
	t.Parallel()

	_, err := LoadReader(strings.NewReader("<rdf:RDF><unclosed>"), FormatRDFXML)
	assert.Error(t, err)
}
