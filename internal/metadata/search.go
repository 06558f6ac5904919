package metadata

import (
	"sort"
	"strings"
	"unicode"
)

// SearchHit is one search result. Score counts the distinct query tokens
// that matched the entry's text or code.
type SearchHit struct {
	ClassID  string
	Code     string
	Text     string
	TextKind string
	Score    int
}

type searchEntry struct {
	classID  string
	code     string
	text     string
	textKind string
}

// SearchIndex is an inverted token index over a metadata table's distinct
// text entries. Build once with NewSearchIndex; lookups are read-only and
// safe for concurrent use.
type SearchIndex struct {
	entries []searchEntry
	tokens  map[string][]int
}

// NewSearchIndex indexes the distinct (class, code, text, kind) entries of
// the table. Cross-reference columns do not affect search.
func NewSearchIndex(t *Table) *SearchIndex {
	idx := &SearchIndex{tokens: make(map[string][]int)}

	seen := make(map[searchEntry]struct{})
	for _, row := range t.Rows {
		entry := searchEntry{
			classID:  row.ClassID,
			code:     row.Code,
			text:     row.Text,
			textKind: row.TextKind,
		}
		if _, dup := seen[entry]; dup {
			continue
		}
		seen[entry] = struct{}{}

		id := len(idx.entries)
		idx.entries = append(idx.entries, entry)

		posted := make(map[string]struct{})
		for _, tok := range tokenize(entry.text) {
			posted[tok] = struct{}{}
		}
		for _, tok := range tokenize(entry.code) {
			posted[tok] = struct{}{}
		}
		for tok := range posted {
			idx.tokens[tok] = append(idx.tokens[tok], id)
		}
	}
	return idx
}

// Len returns the number of indexed entries.
func (idx *SearchIndex) Len() int {
	return len(idx.entries)
}

// Search returns the entries matching query ranked by score, ties broken
// by class then text. A limit of zero or less returns all matches.
func (idx *SearchIndex) Search(query string, limit int) []SearchHit {
	queryTokens := make(map[string]struct{})
	for _, tok := range tokenize(query) {
		queryTokens[tok] = struct{}{}
	}
	if len(queryTokens) == 0 {
		return nil
	}

	scores := make(map[int]int)
	for tok := range queryTokens {
		for _, id := range idx.tokens[tok] {
			scores[id]++
		}
	}

	hits := make([]SearchHit, 0, len(scores))
	for id, score := range scores {
		entry := idx.entries[id]
		hits = append(hits, SearchHit{
			ClassID:  entry.classID,
			Code:     entry.code,
			Text:     entry.text,
			TextKind: entry.textKind,
			Score:    score,
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].ClassID != hits[j].ClassID {
			return hits[i].ClassID < hits[j].ClassID
		}
		return hits[i].Text < hits[j].Text
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// tokenize lowercases s and splits it on non-alphanumeric runes, keeping
// tokens of two or more characters.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
