// Package vocab defines the RDF vocabulary recognized in OBO ontology
// releases: the core RDF/RDFS/OWL terms plus the oboInOwl annotation
// properties that carry class metadata.
package vocab

// OBO is the base IRI prefix for OBO Foundry ontology classes.
const OBO = "http://purl.obolibrary.org/obo/"

// OboInOwl is the base IRI prefix for oboInOwl annotation properties.
const OboInOwl = "http://www.geneontology.org/formats/oboInOwl#"

// Core RDF, RDFS, and OWL terms.
const (
	RDFType        = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFSSubClassOf = "http://www.w3.org/2000/01/rdf-schema#subClassOf"
	RDFSLabel      = "http://www.w3.org/2000/01/rdf-schema#label"

	OWLClass      = "http://www.w3.org/2002/07/owl#Class"
	OWLOntology   = "http://www.w3.org/2002/07/owl#Ontology"
	OWLDeprecated = "http://www.w3.org/2002/07/owl#deprecated"
	OWLVersionIRI = "http://www.w3.org/2002/07/owl#versionIRI"
)

// Definition is the IAO textual-definition annotation property.
const Definition = OBO + "IAO_0000115"

// oboInOwl annotation properties.
const (
	ExactSynonym   = OboInOwl + "hasExactSynonym"
	BroadSynonym   = OboInOwl + "hasBroadSynonym"
	NarrowSynonym  = OboInOwl + "hasNarrowSynonym"
	RelatedSynonym = OboInOwl + "hasRelatedSynonym"

	DbXref           = OboInOwl + "hasDbXref"
	DefaultNamespace = OboInOwl + "default-namespace"

	// ObsoleteClass is the parent under which retired classes are filed.
	ObsoleteClass = OboInOwl + "ObsoleteClass"
)

// SynonymPredicates lists the synonym annotation properties in the order
// their rows are generated.
var SynonymPredicates = []string{
	ExactSynonym,
	BroadSynonym,
	NarrowSynonym,
	RelatedSynonym,
}

// SynonymKind returns the kind tag recorded for a synonym predicate IRI,
// which is the predicate's local name (e.g. "hasExactSynonym").
func SynonymKind(predicate string) string {
	if len(predicate) > len(OboInOwl) && predicate[:len(OboInOwl)] == OboInOwl {
		return predicate[len(OboInOwl):]
	}
	return predicate
}

// DbXrefKind is the predicate-kind tag stamped on cross-reference rows.
const DbXrefKind = "oboInOwl:hasDbXref"
