// Package metadata builds per-ontology metadata tables: one row per piece
// of class text, joined against the class's database cross references.
package metadata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// NoneValue fills cross-reference columns for classes without any.
const NoneValue = "None"

// Record is one metadata table row. A row associates one piece of text for
// a class (its label, definition, or a synonym) with one cross reference,
// or with None placeholders when the class has no cross references.
type Record struct {
	ClassID       string
	Code          string
	Text          string
	TextKind      string
	DBX           string
	DBXType       string
	DBXSource     string
	DBXSourceName string
	Source        string
	SemanticType  string
}

// Table is an ontology's full metadata table.
type Table struct {
	Rows []Record
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ClassIDs returns the sorted distinct class IRIs present in the table.
func (t *Table) ClassIDs() []string {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		seen[row.ClassID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CodeFor derives the compact class code from a class IRI: the final path
// segment with every underscore replaced by a colon, so
// ".../obo/HP_0000002" becomes "HP:0000002".
func CodeFor(classID string) string {
	segment := classID
	if i := strings.LastIndexByte(classID, '/'); i >= 0 {
		segment = classID[i+1:]
	}
	return strings.ReplaceAll(segment, "_", ":")
}

var csvHeader = []string{
	"obo_id",
	"code",
	"string",
	"string_type",
	"dbx",
	"dbx_type",
	"dbx_source",
	"dbx_source_name",
	"obo_source",
	"obo_semantic_type",
}

// MarshalCSV renders the table as CSV with a fixed header row. Output is
// deterministic for a given row order.
func (t *Table) MarshalCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("writing metadata header: %w", err)
	}
	for _, row := range t.Rows {
		record := []string{
			row.ClassID,
			row.Code,
			row.Text,
			row.TextKind,
			row.DBX,
			row.DBXType,
			row.DBXSource,
			row.DBXSourceName,
			row.Source,
			row.SemanticType,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("writing metadata row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing metadata table: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalCSV parses a table previously rendered by MarshalCSV.
func UnmarshalCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading metadata table: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("metadata table is empty")
	}

	for i, name := range csvHeader {
		if records[0][i] != name {
			return nil, fmt.Errorf("unexpected metadata column %q, want %q", records[0][i], name)
		}
	}

	table := &Table{Rows: make([]Record, 0, len(records)-1)}
	for _, rec := range records[1:] {
		table.Rows = append(table.Rows, Record{
			ClassID:       rec[0],
			Code:          rec[1],
			Text:          rec[2],
			TextKind:      rec[3],
			DBX:           rec[4],
			DBXType:       rec[5],
			DBXSource:     rec[6],
			DBXSourceName: rec[7],
			Source:        rec[8],
			SemanticType:  rec[9],
		})
	}
	return table, nil
}
