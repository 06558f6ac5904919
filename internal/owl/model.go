// Package owl provides an in-memory RDF triple graph for OWL ontology
// releases along with decoders for the serializations they ship in.
//
// It defines the term and triple types produced by the decoders and the
// in-memory graph that stores them for class-level queries.
package owl

// TermKind represents the kind of an RDF term.
type TermKind int

const (
	// IRI is a resource identifier term.
	IRI TermKind = iota

	// Literal is a string-valued term, optionally tagged with a language
	// or a datatype IRI.
	Literal

	// Blank is an anonymous node label (e.g. "_:b0").
	Blank
)

// Term is the object position of a triple.
type Term struct {
	// Value is the IRI, literal text, or blank node label.
	Value string

	// Kind discriminates how Value is interpreted.
	Kind TermKind

	// Lang is the language tag for language-tagged literals.
	Lang string

	// Datatype is the datatype IRI for typed literals.
	Datatype string
}

// Triple is one RDF statement.
//
// Subjects are IRIs or blank node labels; predicates are always IRIs.
type Triple struct {
	Subject   string
	Predicate string
	Object    Term
}

// IRITerm returns an IRI term for the given identifier.
func IRITerm(iri string) Term {
	return Term{Value: iri, Kind: IRI}
}

// LiteralTerm returns a plain literal term.
func LiteralTerm(text string) Term {
	return Term{Value: text, Kind: Literal}
}

// BlankTerm returns a blank node term.
func BlankTerm(label string) Term {
	return Term{Value: label, Kind: Blank}
}
