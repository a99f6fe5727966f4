// Package consistency runs deterministic checks of a translation against
// its source: locked glossary terms and numeric tokens.
package consistency

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/marczakme/enzo-translator/internal"
)

// numericTokenRe matches a number with an optional decimal part and an
// optional unit. Units are matched case-sensitively so that words such as
// the Polish "w" are not read as watts. Units that are also common short
// words (in, s, t, A) are left out.
var numericTokenRe = regexp.MustCompile(
	`(\d+(?:[.,]\d+)?)(?:\s*(%|°[CF]?|(?:mAh|kHz|kPa|kW|psi|bar|min|mm|cm|dm|km|kg|mg|ml|mL|cl|cL|Ah|Hz|Pa|cal|lb|oz|ft|m|g|l|L|W|V|h)\b))?`,
)

// Report is the combined outcome of the checks.
type Report struct {
	LockedTermGaps       []internal.TermGap `json:"locked_term_gaps"`
	MissingNumericTokens []string           `json:"missing_numeric_tokens"`
}

// OK reports whether both checks passed.
func (r Report) OK() bool {
	return len(r.LockedTermGaps) == 0 && len(r.MissingNumericTokens) == 0
}

// Check runs both checks of translated against source.
func Check(source, translated string, glossary []internal.GlossaryEntry) Report {
	return Report{
		LockedTermGaps:       LockedGaps(source, translated, glossary),
		MissingNumericTokens: NumericGaps(source, translated),
	}
}

// LockedGaps returns locked entries whose source term occurs in source but
// whose target term does not occur in translated. Matching is a
// case-insensitive substring test, so an inflected form that still
// contains the target term counts as present.
func LockedGaps(source, translated string, glossary []internal.GlossaryEntry) []internal.TermGap {
	src := fold(source)
	dst := fold(translated)

	gaps := make([]internal.TermGap, 0)
	for _, e := range glossary {
		if !e.Locked {
			continue
		}
		termSource := fold(e.TermSource)
		termTarget := fold(e.TermTarget)
		if termSource == "" || termTarget == "" {
			continue
		}
		if strings.Contains(src, termSource) && !strings.Contains(dst, termTarget) {
			gaps = append(gaps, internal.TermGap{
				TermSource: strings.TrimSpace(e.TermSource),
				TermTarget: strings.TrimSpace(e.TermTarget),
			})
		}
	}
	return gaps
}

// NumericGaps returns numeric tokens of source that are absent from
// translated, in order of first appearance and without duplicates.
// Tokens are compared with whitespace removed, "," read as "." and the
// unit lower-cased.
func NumericGaps(source, translated string) []string {
	present := make(map[string]struct{})
	for _, tok := range NumericTokens(translated) {
		present[normalizeToken(tok)] = struct{}{}
	}

	missing := make([]string, 0)
	seen := make(map[string]struct{})
	for _, tok := range NumericTokens(source) {
		key := normalizeToken(tok)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := present[key]; !ok {
			missing = append(missing, tok)
		}
	}
	return missing
}

// NumericTokens returns the tokens of text with inner whitespace removed.
func NumericTokens(text string) []string {
	matches := numericTokenRe.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.Join(strings.Fields(m), ""))
	}
	return tokens
}

// normalizeToken reads "," as "." and ignores unit case, so 1,5 l and
// 1.5 L compare equal.
func normalizeToken(tok string) string {
	return strings.ToLower(strings.ReplaceAll(tok, ",", "."))
}

func fold(s string) string {
	return strings.ToLower(norm.NFC.String(strings.TrimSpace(s)))
}
