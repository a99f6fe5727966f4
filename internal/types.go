package internal

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores for records that do not exist.
var ErrNotFound = errors.New("not found")

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

const (
	VerdictOK  = "OK"
	VerdictFix = "FIX"
)

// Message is one chat-style prompt fragment.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GlossaryEntry maps a Polish source term to its rendering in one target
// language. TermTarget may be empty when the term is not translated yet.
type GlossaryEntry struct {
	TermSource string `json:"term_pl"`
	TermTarget string `json:"term_target"`
	Locked     bool   `json:"locked"`
	Notes      string `json:"notes"`
}

// TranslationRequest is built once per translate action and never mutated.
type TranslationRequest struct {
	LanguageCode string          `json:"language"`
	TitleSource  string          `json:"title"`
	BodySource   string          `json:"body"`
	TargetLabel  string          `json:"target_label"`
	StyleContext string          `json:"style_context"`
	Glossary     []GlossaryEntry `json:"glossary,omitempty"`
	Temperature  float64         `json:"temperature"`
	Provider     string          `json:"provider"`
	ModelHint    string          `json:"model,omitempty"`
}

// SourceText is the title and body joined the way the consistency checks see them.
func (r TranslationRequest) SourceText() string {
	return joinParts(r.TitleSource, r.BodySource)
}

// TermGap is a locked glossary term missing from a translation.
type TermGap struct {
	TermSource string `json:"term_pl"`
	TermTarget string `json:"term_target"`
}

// TranslationResult is produced once per request.
type TranslationResult struct {
	TitleTarget    string `json:"title"`
	BodyTarget     string `json:"body"`
	RawTranslation string `json:"raw_translation"`

	ReviewReport     string   `json:"review_report"`
	ReviewVerdict    string   `json:"review_verdict"`
	ReviewIssues     []string `json:"review_issues,omitempty"`
	SuggestedFixes   []string `json:"suggested_fixes,omitempty"`
	ReviewConfidence int      `json:"review_confidence"`
	ReviewFailed     bool     `json:"review_failed"`
	ReviewError      string   `json:"review_error,omitempty"`

	LockedTermGaps         []TermGap `json:"locked_term_gaps"`
	MissingNumericTokens   []string  `json:"missing_numeric_tokens"`
	TargetLanguageMismatch string    `json:"target_language_mismatch,omitempty"`

	State    string `json:"state"`
	Provider string `json:"provider"`
	Reviewer string `json:"reviewer"`
}

// TranslatedText is the title and body joined the way the consistency checks see them.
func (r TranslationResult) TranslatedText() string {
	return joinParts(r.TitleTarget, r.BodyTarget)
}

// ArchiveRecord is one archived translate-and-review transaction.
type ArchiveRecord struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	LanguageCode string             `json:"language"`
	Request      TranslationRequest `json:"request"`
	Result       TranslationResult  `json:"result"`
}

// IndexEntry is one line of a per-language archive index.
type IndexEntry struct {
	Datetime string `json:"datetime"`
	Title    string `json:"title"`
	Filename string `json:"filename"`
}

// GlossaryStore persists one glossary per language code.
type GlossaryStore interface {
	Load(ctx context.Context, languageCode string) ([]GlossaryEntry, error)
	Save(ctx context.Context, languageCode string, entries []GlossaryEntry) error
}

// ArchiveStore persists translation records. Append returns the name the
// record was stored under.
type ArchiveStore interface {
	Append(ctx context.Context, languageCode string, record ArchiveRecord) (string, error)
	Index(ctx context.Context, languageCode string) ([]IndexEntry, error)
	Read(ctx context.Context, languageCode, filename string) (string, error)
}

func joinParts(title, body string) string {
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n\n" + body
	}
}
