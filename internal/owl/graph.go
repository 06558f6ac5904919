package owl

import (
	"sync"
)

// Graph is an in-memory collection of RDF triples.
//
// The graph is write-once in practice: a decoder fills it during load and
// every later access is a read. All methods are safe for concurrent use;
// query results are copies and may be retained by callers.
type Graph struct {
	mu   sync.RWMutex
	size int

	// Secondary indexes, kept in sync by Add.
	objects  map[string]map[string][]Term   // subject -> predicate -> objects
	subjects map[string]map[string][]string // predicate -> object value -> subjects
	byPred   map[string][]Triple            // predicate -> triples in insertion order
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		objects:  make(map[string]map[string][]Term),
		subjects: make(map[string]map[string][]string),
		byPred:   make(map[string][]Triple),
	}
}

// Add inserts a triple. Duplicate statements are stored as given; queries
// that need set semantics deduplicate on read.
func (g *Graph) Add(t Triple) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.size++

	if g.objects[t.Subject] == nil {
		g.objects[t.Subject] = make(map[string][]Term)
	}
	g.objects[t.Subject][t.Predicate] = append(g.objects[t.Subject][t.Predicate], t.Object)

	if g.subjects[t.Predicate] == nil {
		g.subjects[t.Predicate] = make(map[string][]string)
	}
	g.subjects[t.Predicate][t.Object.Value] = append(g.subjects[t.Predicate][t.Object.Value], t.Subject)

	g.byPred[t.Predicate] = append(g.byPred[t.Predicate], t)
}

// Len returns the number of stored triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.size
}

// Objects returns the object terms of every (subject, predicate, *) triple,
// in insertion order.
func (g *Graph) Objects(subject, predicate string) []Term {
	g.mu.RLock()
	defer g.mu.RUnlock()

	terms, ok := g.objects[subject][predicate]
	if !ok {
		return nil
	}

	result := make([]Term, len(terms))
	copy(result, terms)
	return result
}

// SubjectsWith returns the subjects of every (*, predicate, object) triple
// whose object value equals objectValue, in insertion order. Matching is on
// the object's value only, so a literal "true" matches regardless of its
// datatype annotation.
func (g *Graph) SubjectsWith(predicate, objectValue string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	subs, ok := g.subjects[predicate][objectValue]
	if !ok {
		return nil
	}

	result := make([]string, len(subs))
	copy(result, subs)
	return result
}

// FirstObject returns the object of the first triple carrying the given
// predicate, in insertion order. The second return is false when the graph
// holds no such triple.
func (g *Graph) FirstObject(predicate string) (Term, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	triples := g.byPred[predicate]
	if len(triples) == 0 {
		return Term{}, false
	}
	return triples[0].Object, true
}

// TriplesWith returns every triple carrying the given predicate, in
// insertion order.
func (g *Graph) TriplesWith(predicate string) []Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()

	triples, ok := g.byPred[predicate]
	if !ok {
		return nil
	}

	result := make([]Triple, len(triples))
	copy(result, triples)
	return result
}
