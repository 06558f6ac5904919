// Package closure computes transitive closures over an ontology's live
// subclass graph, organized by the depth at which each class is first
// reached.
package closure

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Direction names which way the subclass hierarchy is walked.
type Direction string

const (
	// Ancestors walks child to parent.
	Ancestors Direction = "ancestors"

	// Descendants walks parent to child.
	Descendants Direction = "descendants"
)

// Levels maps traversal depth to the classes first reached at that depth.
// Depth zero holds the class's direct neighbors. A closure that ends on
// classes whose neighbors were all reached earlier carries a final empty
// depth; a class with no neighbors at all has no depths.
type Levels map[int][]string

// Depths returns the recorded depths in ascending order.
func (l Levels) Depths() []int {
	out := make([]int, 0, len(l))
	for depth := range l {
		out = append(out, depth)
	}
	sort.Ints(out)
	return out
}

// UnknownClassError reports a lookup for a class the index does not cover.
type UnknownClassError struct {
	Class string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("class %s is not in the closure index", e.Class)
}

// Index holds the closure of every indexed class of one ontology in one
// direction.
type Index struct {
	Direction Direction

	closures map[string]Levels
}

// NewIndex returns an empty index for the given direction.
func NewIndex(direction Direction) *Index {
	return &Index{Direction: direction, closures: make(map[string]Levels)}
}

// Len returns the number of indexed classes.
func (x *Index) Len() int {
	return len(x.closures)
}

// Classes returns the sorted IRIs of all indexed classes.
func (x *Index) Classes() []string {
	classes := make([]string, 0, len(x.closures))
	for class := range x.closures {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

// Lookup returns the closure levels recorded for class. Mutating the
// result is not allowed. An *UnknownClassError is returned for classes the
// index does not cover.
func (x *Index) Lookup(class string) (Levels, error) {
	levels, ok := x.closures[class]
	if !ok {
		return nil, &UnknownClassError{Class: class}
	}
	return levels, nil
}

// MarshalArtifact renders the index as a JSON object mapping each class
// IRI to its depth-keyed closure. Output is deterministic, so re-running
// an unchanged ontology reproduces the artifact byte for byte.
func (x *Index) MarshalArtifact() ([]byte, error) {
	data, err := json.Marshal(x.closures)
	if err != nil {
		return nil, fmt.Errorf("encoding %s index: %w", x.Direction, err)
	}
	return data, nil
}

// UnmarshalArtifact parses an index previously rendered by MarshalArtifact.
func UnmarshalArtifact(direction Direction, data []byte) (*Index, error) {
	closures := make(map[string]Levels)
	if err := json.Unmarshal(data, &closures); err != nil {
		return nil, fmt.Errorf("decoding %s index: %w", direction, err)
	}
	return &Index{Direction: direction, closures: closures}, nil
}
