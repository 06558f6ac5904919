package owl

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/formats/rdf"
)

// Format identifies the serialization of an ontology source.
type Format int

const (
	FormatUnknown Format = iota

	// FormatNTriples covers line-oriented statement files (N-Triples and
	// N-Quads; graph labels are ignored).
	FormatNTriples

	// FormatRDFXML covers RDF/XML documents, the serialization OBO
	// ontology releases ship in.
	FormatRDFXML
)

// DetectFormat maps a source path to its serialization by extension.
// A trailing .gz is transparent.
func DetectFormat(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(name) {
	case ".nt", ".ntriples", ".nq", ".nquads":
		return FormatNTriples
	case ".owl", ".rdf", ".xml":
		return FormatRDFXML
	default:
		return FormatUnknown
	}
}

// Load reads the ontology source at path into a new graph. Gzip-compressed
// sources are decompressed transparently based on the .gz extension.
func Load(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ontology source: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unrecognized ontology format: %s", path)
	}

	g, err := LoadReader(r, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return g, nil
}

// LoadReader decodes an ontology source of the given format into a new graph.
func LoadReader(r io.Reader, format Format) (*Graph, error) {
	g := NewGraph()

	switch format {
	case FormatNTriples:
		if err := decodeStatements(r, g); err != nil {
			return nil, err
		}
	case FormatRDFXML:
		if err := decodeRDFXML(r, g); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unrecognized ontology format")
	}

	return g, nil
}

// decodeStatements reads N-Triples/N-Quads statements into the graph.
func decodeStatements(r io.Reader, g *Graph) error {
	dec := rdf.NewDecoder(r)
	for {
		s, err := dec.Unmarshal()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("decoding statement: %w", err)
		}

		g.Add(Triple{
			Subject:   parseTerm(s.Subject.Value).Value,
			Predicate: parseTerm(s.Predicate.Value).Value,
			Object:    parseTerm(s.Object.Value),
		})
	}
}

// parseTerm converts a raw N-Triples term into a Term. IRIs arrive wrapped
// in angle brackets, literals in quotes with an optional @lang or
// ^^<datatype> suffix, and blank node labels as-is.
func parseTerm(raw string) Term {
	switch {
	case strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">"):
		return Term{Value: raw[1 : len(raw)-1], Kind: IRI}

	case strings.HasPrefix(raw, "_:"):
		return Term{Value: raw, Kind: Blank}

	case strings.HasPrefix(raw, `"`):
		end := strings.LastIndexByte(raw, '"')
		if end <= 0 {
			return Term{Value: raw, Kind: Literal}
		}
		term := Term{Value: unquote(raw[:end+1]), Kind: Literal}
		switch suffix := raw[end+1:]; {
		case strings.HasPrefix(suffix, "@"):
			term.Lang = suffix[1:]
		case strings.HasPrefix(suffix, "^^<") && strings.HasSuffix(suffix, ">"):
			term.Datatype = suffix[3 : len(suffix)-1]
		}
		return term

	default:
		return Term{Value: raw, Kind: Literal}
	}
}

// unquote resolves the escape sequences of a quoted N-Triples literal.
// The escape set is a subset of Go's except \', which is replaced before
// unquoting.
func unquote(quoted string) string {
	s := strings.ReplaceAll(quoted, `\'`, "'")
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(quoted, `"`)
}
