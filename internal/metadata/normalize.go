package metadata

import (
	"sort"

	"github.com/obokit/oboindex/internal/ontology"
)

// Input carries the extracted views of one ontology release.
type Input struct {
	Labels          []ontology.Annotation
	Definitions     []ontology.Annotation
	Synonyms        []ontology.Synonym
	CrossReferences []ontology.CrossReference

	// Release identifies the ontology release the rows came from.
	Release string

	// SemanticType is the ontology-wide semantic type stamped on every row.
	SemanticType string
}

// Text kinds for label and definition rows. Synonym rows carry the synonym
// property's local name instead.
const (
	KindLabel      = "class label"
	KindDefinition = "class definition"
)

// Normalize flattens the extracted views into a metadata table. Every text
// row is joined against the class's cross references, one output row per
// (text, cross reference) pair; classes without cross references get a
// single row with None placeholders. Exact duplicate rows collapse and the
// result is sorted, so equal inputs render byte-identical tables.
func Normalize(in Input) *Table {
	type textRow struct {
		class, text, kind string
	}

	base := make([]textRow, 0, len(in.Labels)+len(in.Definitions)+len(in.Synonyms))
	for _, ann := range in.Labels {
		base = append(base, textRow{ann.Class, ann.Text, KindLabel})
	}
	for _, ann := range in.Definitions {
		base = append(base, textRow{ann.Class, ann.Text, KindDefinition})
	}
	for _, syn := range in.Synonyms {
		base = append(base, textRow{syn.Class, syn.Text, syn.Kind})
	}

	xrefs := make(map[string][]ontology.CrossReference)
	for _, x := range in.CrossReferences {
		xrefs[x.Class] = append(xrefs[x.Class], x)
	}

	seen := make(map[Record]struct{}, len(base))
	rows := make([]Record, 0, len(base))
	emit := func(rec Record) {
		if _, dup := seen[rec]; dup {
			return
		}
		seen[rec] = struct{}{}
		rows = append(rows, rec)
	}

	for _, b := range base {
		rec := Record{
			ClassID:      b.class,
			Code:         CodeFor(b.class),
			Text:         b.text,
			TextKind:     b.kind,
			Source:       in.Release,
			SemanticType: in.SemanticType,
		}

		linked := xrefs[b.class]
		if len(linked) == 0 {
			rec.DBX = NoneValue
			rec.DBXType = NoneValue
			rec.DBXSource = NoneValue
			rec.DBXSourceName = NoneValue
			emit(rec)
			continue
		}

		for _, x := range linked {
			rec.DBX = x.Code
			rec.DBXType = x.Kind
			rec.DBXSource = x.Source
			rec.DBXSourceName = x.Source
			emit(rec)
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ClassID != b.ClassID {
			return a.ClassID < b.ClassID
		}
		if a.TextKind != b.TextKind {
			return a.TextKind < b.TextKind
		}
		if a.Text != b.Text {
			return a.Text < b.Text
		}
		if a.DBXSource != b.DBXSource {
			return a.DBXSource < b.DBXSource
		}
		return a.DBX < b.DBX
	})

	return &Table{Rows: rows}
}
