// Package glossary keeps the per-language terminology lists: normalization,
// CSV import/export, seeding and monitoring.
package glossary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/marczakme/enzo-translator/internal"
)

// Columns is the canonical CSV header.
var Columns = []string{"term_pl", "term_target", "locked", "notes"}

// columnAliases maps alternative header names onto Columns.
var columnAliases = map[string]string{
	"pl":          "term_pl",
	"source":      "term_pl",
	"term":        "term_pl",
	"target":      "term_target",
	"translation": "term_target",
	"is_locked":   "locked",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ParseLocked accepts true/1/yes/y/t in any case; everything else is false.
func ParseLocked(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}

// Normalize trims terms, drops entries without a source term and keeps
// only the last entry for each source term, at the position of that last
// occurrence.
func Normalize(entries []internal.GlossaryEntry) []internal.GlossaryEntry {
	lastIndex := make(map[string]int, len(entries))
	cleaned := make([]internal.GlossaryEntry, 0, len(entries))
	for _, e := range entries {
		e.TermSource = strings.TrimSpace(e.TermSource)
		e.TermTarget = strings.TrimSpace(e.TermTarget)
		if e.TermSource == "" {
			continue
		}
		lastIndex[e.TermSource] = len(cleaned)
		cleaned = append(cleaned, e)
	}

	out := make([]internal.GlossaryEntry, 0, len(lastIndex))
	for i, e := range cleaned {
		if lastIndex[e.TermSource] == i {
			out = append(out, e)
		}
	}
	return out
}

// Merge applies incoming over existing, last write wins.
func Merge(existing, incoming []internal.GlossaryEntry) []internal.GlossaryEntry {
	all := make([]internal.GlossaryEntry, 0, len(existing)+len(incoming))
	all = append(all, existing...)
	all = append(all, incoming...)
	return Normalize(all)
}

// ReadCSV reads a glossary with a header row. Header names are matched
// case-insensitively and the aliases pl, source, term, target,
// translation and is_locked are accepted. Missing columns read as empty.
func ReadCSV(r io.Reader) ([]internal.GlossaryEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []internal.GlossaryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := columnIndex(header)
	if _, ok := index["term_pl"]; !ok {
		return nil, fmt.Errorf("missing term_pl column (got %s)", strings.Join(header, ", "))
	}

	field := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var entries []internal.GlossaryEntry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		entries = append(entries, internal.GlossaryEntry{
			TermSource: field(record, "term_pl"),
			TermTarget: field(record, "term_target"),
			Locked:     ParseLocked(field(record, "locked")),
			Notes:      field(record, "notes"),
		})
	}
	return Normalize(entries), nil
}

func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	// aliases only fill columns that are not present under their own name
	for alias, canonical := range columnAliases {
		if i, ok := index[alias]; ok {
			if _, exists := index[canonical]; !exists {
				index[canonical] = i
			}
		}
	}
	return index
}

// WriteCSV writes entries with the canonical header.
func WriteCSV(w io.Writer, entries []internal.GlossaryEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range entries {
		if err := writer.Write([]string{e.TermSource, e.TermTarget, strconv.FormatBool(e.Locked), e.Notes}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ParseTermList reads a one-column list of Polish terms, with or without a
// header. Whitespace runs collapse to one space, trailing "," and ";" are
// dropped and repeated terms are kept once.
func ParseTermList(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	seen := make(map[string]struct{})
	terms := make([]string, 0)
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read term list: %w", err)
		}
		if len(record) == 0 {
			continue
		}

		term := whitespaceRe.ReplaceAllString(strings.TrimSpace(record[0]), " ")
		term = strings.TrimRight(term, ",;")
		if first {
			first = false
			if isHeaderName(term) {
				continue
			}
		}
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms, nil
}

func isHeaderName(s string) bool {
	s = strings.ToLower(strings.TrimPrefix(s, "\ufeff"))
	if s == "term_pl" {
		return true
	}
	return columnAliases[s] == "term_pl"
}
