package glossary

import (
	"context"
	"fmt"

	"github.com/marczakme/enzo-translator/internal"
)

type SeedMode string

const (
	// SeedAppend adds missing source terms and leaves existing entries alone.
	SeedAppend SeedMode = "append"
	// SeedReset clears targets, locks and notes of existing entries, then
	// adds missing source terms.
	SeedReset SeedMode = "reset"
)

// ParseSeedMode accepts "append" and "reset".
func ParseSeedMode(s string) (SeedMode, error) {
	switch SeedMode(s) {
	case SeedAppend, SeedReset:
		return SeedMode(s), nil
	}
	return "", fmt.Errorf("unknown seed mode %q (want %s or %s)", s, SeedAppend, SeedReset)
}

// SeedReport summarizes seeding of one language.
type SeedReport struct {
	LanguageCode string `json:"language"`
	Existing     int    `json:"existing"`
	Added        int    `json:"added"`
	Total        int    `json:"total"`
}

// Seed adds terms, with empty targets, to the glossary of every language.
func Seed(ctx context.Context, store internal.GlossaryStore, languages []string, terms []string, mode SeedMode) ([]SeedReport, error) {
	reports := make([]SeedReport, 0, len(languages))
	for _, lang := range languages {
		existing, err := store.Load(ctx, lang)
		if err != nil {
			return reports, fmt.Errorf("failed to load %s glossary: %w", lang, err)
		}

		entries, added := seedEntries(existing, terms, mode)
		if err := store.Save(ctx, lang, entries); err != nil {
			return reports, fmt.Errorf("failed to save %s glossary: %w", lang, err)
		}

		reports = append(reports, SeedReport{
			LanguageCode: lang,
			Existing:     len(existing),
			Added:        added,
			Total:        len(entries),
		})
	}
	return reports, nil
}

func seedEntries(existing []internal.GlossaryEntry, terms []string, mode SeedMode) ([]internal.GlossaryEntry, int) {
	entries := make([]internal.GlossaryEntry, 0, len(existing)+len(terms))
	present := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		if mode == SeedReset {
			e.TermTarget = ""
			e.Locked = false
			e.Notes = ""
		}
		present[e.TermSource] = struct{}{}
		entries = append(entries, e)
	}

	added := 0
	for _, term := range terms {
		if _, ok := present[term]; ok {
			continue
		}
		present[term] = struct{}{}
		entries = append(entries, internal.GlossaryEntry{TermSource: term})
		added++
	}
	return entries, added
}
