// Package ontology extracts class-level information from a decoded
// ontology release graph.
package ontology

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/obokit/oboindex/internal/owl"
	"github.com/obokit/oboindex/internal/vocab"
)

var (
	// ErrNotLoaded reports a query against a nil or empty release graph.
	ErrNotLoaded = errors.New("ontology graph is not loaded")

	// ErrNoClasses reports a release graph that declares no classes in the
	// requested namespace.
	ErrNoClasses = errors.New("ontology contains no classes")
)

// Annotation is a single piece of text attached to a class, such as a label
// or a definition.
type Annotation struct {
	Class string
	Text  string
}

// Synonym is an alternative name for a class. Kind is the local name of the
// oboInOwl synonym property that carried it, e.g. "hasExactSynonym".
type Synonym struct {
	Class string
	Text  string
	Kind  string
}

// CrossReference links a class to an entry in an external vocabulary.
// Code is the identifier within that vocabulary and Source its lowercased
// prefix, so "MSH:D003117" yields Code "D003117" and Source "msh".
type CrossReference struct {
	Class  string
	Code   string
	Kind   string
	Source string
}

// Accessor answers class-level queries against one ontology's release
// graph. Class IRIs are filtered to the ontology's namespace by a
// case-insensitive substring match on the ontology identifier, mirroring
// how OBO class IRIs embed their ontology prefix.
type Accessor struct {
	g  *owl.Graph
	id string

	liveOnce sync.Once
	live     map[string]bool
	liveErr  error
}

// NewAccessor wraps a release graph for the ontology identified by id
// (e.g. "hp", "mondo").
func NewAccessor(g *owl.Graph, id string) *Accessor {
	return &Accessor{g: g, id: strings.ToLower(id)}
}

// ID returns the lowercased ontology identifier.
func (a *Accessor) ID() string {
	return a.id
}

// Classes returns the sorted IRIs of all owl:Class declarations in the
// ontology's namespace, including deprecated and obsolete ones. It returns
// ErrNotLoaded when the graph is nil or empty and ErrNoClasses when the
// graph holds no matching class declarations.
func (a *Accessor) Classes() ([]string, error) {
	if a.g == nil || a.g.Len() == 0 {
		return nil, ErrNotLoaded
	}

	seen := make(map[string]struct{})
	for _, subject := range a.g.SubjectsWith(vocab.RDFType, vocab.OWLClass) {
		if strings.HasPrefix(subject, "_:") {
			continue
		}
		if !strings.Contains(strings.ToLower(subject), a.id) {
			continue
		}
		seen[subject] = struct{}{}
	}
	if len(seen) == 0 {
		return nil, ErrNoClasses
	}

	return sortedKeys(seen), nil
}

// DeprecatedClasses returns the sorted IRIs of namespace classes marked
// owl:deprecated true.
func (a *Accessor) DeprecatedClasses() []string {
	if a.g == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, subject := range a.g.SubjectsWith(vocab.OWLDeprecated, "true") {
		if strings.HasPrefix(subject, "_:") {
			continue
		}
		if !strings.Contains(strings.ToLower(subject), a.id) {
			continue
		}
		seen[subject] = struct{}{}
	}
	return sortedKeys(seen)
}

// ObsoleteClasses returns the sorted IRIs of namespace classes filed under
// oboInOwl:ObsoleteClass.
func (a *Accessor) ObsoleteClasses() []string {
	if a.g == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, subject := range a.g.SubjectsWith(vocab.RDFSSubClassOf, vocab.ObsoleteClass) {
		if strings.HasPrefix(subject, "_:") {
			continue
		}
		if !strings.Contains(strings.ToLower(subject), a.id) {
			continue
		}
		seen[subject] = struct{}{}
	}
	return sortedKeys(seen)
}

// LiveSet returns the set of class IRIs that are neither deprecated nor
// obsolete. The set is computed once and shared; callers must not mutate it.
func (a *Accessor) LiveSet() (map[string]bool, error) {
	a.liveOnce.Do(func() {
		classes, err := a.Classes()
		if err != nil {
			a.liveErr = err
			return
		}

		dead := make(map[string]struct{})
		for _, class := range a.DeprecatedClasses() {
			dead[class] = struct{}{}
		}
		for _, class := range a.ObsoleteClasses() {
			dead[class] = struct{}{}
		}

		live := make(map[string]bool, len(classes))
		for _, class := range classes {
			if _, gone := dead[class]; !gone {
				live[class] = true
			}
		}
		a.live = live
	})
	return a.live, a.liveErr
}

// LiveClasses returns the sorted IRIs of the live class set.
func (a *Accessor) LiveClasses() ([]string, error) {
	set, err := a.LiveSet()
	if err != nil {
		return nil, err
	}

	classes := make([]string, 0, len(set))
	for class := range set {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes, nil
}

// Labels collects rdfs:label text for the classes in set, lowercased.
func (a *Accessor) Labels(set map[string]bool) []Annotation {
	return a.annotations(vocab.RDFSLabel, set)
}

// Definitions collects IAO definition text for the classes in set,
// lowercased.
func (a *Accessor) Definitions(set map[string]bool) []Annotation {
	return a.annotations(vocab.Definition, set)
}

func (a *Accessor) annotations(predicate string, set map[string]bool) []Annotation {
	if a.g == nil {
		return nil
	}

	seen := make(map[Annotation]struct{})
	for _, t := range a.g.TriplesWith(predicate) {
		if t.Object.Kind != owl.Literal || !set[t.Subject] {
			continue
		}
		seen[Annotation{Class: t.Subject, Text: strings.ToLower(t.Object.Value)}] = struct{}{}
	}

	out := make([]Annotation, 0, len(seen))
	for ann := range seen {
		out = append(out, ann)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		return out[i].Text < out[j].Text
	})
	return out
}

// Synonyms collects all oboInOwl synonym text for the classes in set,
// lowercased and tagged with the synonym kind.
func (a *Accessor) Synonyms(set map[string]bool) []Synonym {
	if a.g == nil {
		return nil
	}

	seen := make(map[Synonym]struct{})
	for _, predicate := range vocab.SynonymPredicates {
		kind := vocab.SynonymKind(predicate)
		for _, t := range a.g.TriplesWith(predicate) {
			if t.Object.Kind != owl.Literal || !set[t.Subject] {
				continue
			}
			seen[Synonym{Class: t.Subject, Text: strings.ToLower(t.Object.Value), Kind: kind}] = struct{}{}
		}
	}

	out := make([]Synonym, 0, len(seen))
	for syn := range seen {
		out = append(out, syn)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		if out[i].Text != out[j].Text {
			return out[i].Text < out[j].Text
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// CrossReferences collects oboInOwl:hasDbXref entries for the classes in
// set. Each raw value is split on its first colon into a source prefix and
// a code; values without a colon keep the whole text as the code and use
// its lowercased form as the source.
func (a *Accessor) CrossReferences(set map[string]bool) []CrossReference {
	if a.g == nil {
		return nil
	}

	seen := make(map[CrossReference]struct{})
	for _, t := range a.g.TriplesWith(vocab.DbXref) {
		if t.Object.Kind != owl.Literal || !set[t.Subject] {
			continue
		}

		raw := strings.TrimSpace(t.Object.Value)
		if raw == "" {
			continue
		}

		xref := CrossReference{Class: t.Subject, Kind: vocab.DbXrefKind}
		if i := strings.IndexByte(raw, ':'); i > 0 {
			xref.Code = raw[i+1:]
			xref.Source = strings.ToLower(raw[:i])
		} else {
			xref.Code = raw
			xref.Source = strings.ToLower(raw)
		}
		seen[xref] = struct{}{}
	}

	out := make([]CrossReference, 0, len(seen))
	for xref := range seen {
		out = append(out, xref)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Class != out[j].Class {
			return out[i].Class < out[j].Class
		}
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// DirectParents returns the live superclasses of class, excluding the class
// itself. The result is sorted. A class outside the live set still reports
// its live parents; only endpoints are filtered.
func (a *Accessor) DirectParents(class string) []string {
	set, err := a.LiveSet()
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, term := range a.g.Objects(class, vocab.RDFSSubClassOf) {
		if term.Kind != owl.IRI || term.Value == class || !set[term.Value] {
			continue
		}
		seen[term.Value] = struct{}{}
	}
	return sortedKeys(seen)
}

// DirectChildren returns the live subclasses of class, excluding the class
// itself. The result is sorted.
func (a *Accessor) DirectChildren(class string) []string {
	set, err := a.LiveSet()
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, subject := range a.g.SubjectsWith(vocab.RDFSSubClassOf, class) {
		if subject == class || !set[subject] {
			continue
		}
		seen[subject] = struct{}{}
	}
	return sortedKeys(seen)
}

// ReleaseIRI identifies the ontology release, preferring the owl:versionIRI
// statement and falling back to the ontology identifier.
func (a *Accessor) ReleaseIRI() string {
	if a.g != nil {
		if term, ok := a.g.FirstObject(vocab.OWLVersionIRI); ok {
			return term.Value
		}
	}
	return a.id
}

// DefaultNamespace returns the ontology's oboInOwl default namespace, used
// as the semantic type of its classes, falling back to the ontology
// identifier.
func (a *Accessor) DefaultNamespace() string {
	if a.g != nil {
		if term, ok := a.g.FirstObject(vocab.DefaultNamespace); ok && term.Value != "" {
			return term.Value
		}
	}
	return a.id
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
