package owl

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphAddAndLen(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	assert.Equal(t, 0, g.Len())

	g.Add(Triple{Subject: "a", Predicate: "p", Object: IRITerm("b")})
	g.Add(Triple{Subject: "a", Predicate: "p", Object: IRITerm("c")})
	g.Add(Triple{Subject: "b", Predicate: "q", Object: LiteralTerm("text")})

	assert.Equal(t, 3, g.Len())
}

func TestGraphObjects(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Add(Triple{Subject: "a", Predicate: "p", Object: IRITerm("b")})
	g.Add(Triple{Subject: "a", Predicate: "p", Object: IRITerm("c")})
	g.Add(Triple{Subject: "a", Predicate: "q", Object: LiteralTerm("label")})

	objects := g.Objects("a", "p")
	require.Len(t, objects, 2)
	assert.Equal(t, "b", objects[0].Value)
	assert.Equal(t, "c", objects[1].Value)

	assert.Empty(t, g.Objects("a", "missing"))
	assert.Empty(t, g.Objects("missing", "p"))
}

func TestGraphObjectsReturnsCopy(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Add(Triple{Subject: "a", Predicate: "p", Object: IRITerm("b")})

	objects := g.Objects("a", "p")
	objects[0] = IRITerm("mutated")

	assert.Equal(t, "b", g.Objects("a", "p")[0].Value)
}

func TestGraphSubjectsWith(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Add(Triple{Subject: "child1", Predicate: "subClassOf", Object: IRITerm("parent")})
	g.Add(Triple{Subject: "child2", Predicate: "subClassOf", Object: IRITerm("parent")})
	g.Add(Triple{Subject: "other", Predicate: "subClassOf", Object: IRITerm("elsewhere")})
	g.Add(Triple{Subject: "flagged", Predicate: "deprecated", Object: Term{
		Value:    "true",
		Kind:     Literal,
		Datatype: "http://www.w3.org/2001/XMLSchema#boolean",
	}})

	subjects := g.SubjectsWith("subClassOf", "parent")
	assert.ElementsMatch(t, []string{"child1", "child2"}, subjects)

	// Matching is on the object's value, independent of datatype.
	assert.Equal(t, []string{"flagged"}, g.SubjectsWith("deprecated", "true"))
	assert.Empty(t, g.SubjectsWith("subClassOf", "nobody"))
}

func TestGraphFirstObject(t *testing.T) {
	t.Parallel()

	g := NewGraph()

	_, ok := g.FirstObject("versionIRI")
	assert.False(t, ok)

	g.Add(Triple{Subject: "ont", Predicate: "versionIRI", Object: IRITerm("releases/2024-01-01")})
	g.Add(Triple{Subject: "ont2", Predicate: "versionIRI", Object: IRITerm("releases/2024-06-01")})

	first, ok := g.FirstObject("versionIRI")
	require.True(t, ok)
	assert.Equal(t, "releases/2024-01-01", first.Value)
}

func TestGraphTriplesWith(t *testing.T) {
	t.Parallel()

	g := NewGraph()
	g.Add(Triple{Subject: "a", Predicate: "label", Object: LiteralTerm("first")})
	g.Add(Triple{Subject: "b", Predicate: "label", Object: LiteralTerm("second")})
	g.Add(Triple{Subject: "a", Predicate: "comment", Object: LiteralTerm("ignored")})

	triples := g.TriplesWith("label")
	require.Len(t, triples, 2)
	assert.Equal(t, "a", triples[0].Subject)
	assert.Equal(t, "first", triples[0].Object.Value)
	assert.Equal(t, "b", triples[1].Subject)
}

func TestGraphConcurrentAccess(t *testing.T) {
	t.Parallel()

	g := NewGraph()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.Add(Triple{
					Subject:   fmt.Sprintf("s%d", n),
					Predicate: "p",
					Object:    IRITerm(fmt.Sprintf("o%d", j)),
				})
				g.Objects(fmt.Sprintf("s%d", n), "p")
				g.Len()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 800, g.Len())
}
