package archive

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/prompt"
)

const (
	// DatetimeLayout is the timestamp format of the index datetime column.
	DatetimeLayout = "2006-01-02 15:04:05"
	fileTimeLayout = "2006-01-02_15-04-05"
	maxSlugRunes   = 60
)

var slugReplacer = strings.NewReplacer("ł", "l", "Ł", "L", "ß", "ss", "ø", "o", "Ø", "O", "đ", "d", "Đ", "D")

// Slug turns a title into a lower-case ASCII file name fragment. Diacritics
// are stripped and every other run of non-alphanumerics becomes one dash.
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, slugReplacer.Replace(title))
	if err != nil {
		plain = title
	}

	var sb strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(plain) {
		if n >= maxSlugRunes {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
			n++
		}
	}

	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

// FileName is the archive file name for a record created at the record's
// CreatedAt.
func FileName(rec internal.ArchiveRecord) string {
	return fmt.Sprintf("%s_%s.txt", rec.CreatedAt.Format(fileTimeLayout), Slug(rec.Request.TitleSource))
}

// Render formats a record as the plain-text archive document.
func Render(rec internal.ArchiveRecord) string {
	req, res := rec.Request, rec.Result

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", rec.ID)
	fmt.Fprintf(&sb, "DATETIME: %s\n", rec.CreatedAt.Format(DatetimeLayout))
	fmt.Fprintf(&sb, "LANGUAGE: %s", rec.LanguageCode)
	if req.TargetLabel != "" {
		fmt.Fprintf(&sb, " (%s)", req.TargetLabel)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "PROVIDER: %s\n", res.Provider)
	if req.ModelHint != "" {
		fmt.Fprintf(&sb, "MODEL: %s\n", req.ModelHint)
	}
	fmt.Fprintf(&sb, "TEMPERATURE: %.2f\n", req.Temperature)
	fmt.Fprintf(&sb, "REVIEWER: %s\n", res.Reviewer)
	fmt.Fprintf(&sb, "STATE: %s\n", res.State)

	sb.WriteString("\n=== SOURCE (PL) ===\n")
	sb.WriteString(prompt.SourceDocument(req.TitleSource, req.BodySource))

	sb.WriteString("\n\n=== TRANSLATION ===\n")
	sb.WriteString(prompt.SourceDocument(res.TitleTarget, res.BodyTarget))

	sb.WriteString("\n\n=== REVIEW ===\n")
	switch {
	case res.ReviewFailed:
		fmt.Fprintf(&sb, "Review failed: %s\n", res.ReviewError)
	default:
		fmt.Fprintf(&sb, "VERDICT: %s\n", orDash(res.ReviewVerdict))
		if res.ReviewConfidence >= 0 {
			fmt.Fprintf(&sb, "CONFIDENCE: %d\n", res.ReviewConfidence)
		}
		if report := strings.TrimSpace(res.ReviewReport); report != "" {
			sb.WriteString("\n")
			sb.WriteString(report)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n=== CONSISTENCY ===\n")
	sb.WriteString("Locked term gaps:")
	if len(res.LockedTermGaps) == 0 {
		sb.WriteString(" none\n")
	} else {
		sb.WriteString("\n")
		for _, g := range res.LockedTermGaps {
			fmt.Fprintf(&sb, "- %s => %s\n", g.TermSource, g.TermTarget)
		}
	}
	sb.WriteString("Missing numeric tokens:")
	if len(res.MissingNumericTokens) == 0 {
		sb.WriteString(" none\n")
	} else {
		fmt.Fprintf(&sb, " %s\n", strings.Join(res.MissingNumericTokens, ", "))
	}
	if res.TargetLanguageMismatch != "" {
		fmt.Fprintf(&sb, "Language check: %s\n", res.TargetLanguageMismatch)
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
