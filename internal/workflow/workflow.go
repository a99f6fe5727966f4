// Package workflow turns user input into translation requests, runs them
// and archives the outcome. The CLI and the HTTP API share it.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/orchestrator"
)

// ErrInvalidInput marks input rejected before any provider is called.
var ErrInvalidInput = errors.New("invalid input")

type Translator interface {
	TranslateAndReview(ctx context.Context, req internal.TranslationRequest) (*internal.TranslationResult, error)
}

// Defaults fill the fields an Input leaves empty.
type Defaults struct {
	Provider    string
	Model       string
	Temperature float64
	Style       string
}

type Input struct {
	LanguageCode string   `json:"language"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Style        string   `json:"style_context,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	SkipArchive  bool     `json:"skip_archive,omitempty"`
}

type Outcome struct {
	Request      internal.TranslationRequest `json:"request"`
	Result       *internal.TranslationResult `json:"result"`
	RecordID     string                      `json:"record_id,omitempty"`
	Filename     string                      `json:"filename,omitempty"`
	ArchiveError string                      `json:"archive_error,omitempty"`
}

// Consistency is the local check of a translation against its source.
type Consistency struct {
	LockedTermGaps       []internal.TermGap `json:"locked_term_gaps"`
	MissingNumericTokens []string           `json:"missing_numeric_tokens"`
}

type Service struct {
	translator Translator
	glossaries internal.GlossaryStore
	archive    internal.ArchiveStore
	defaults   Defaults
	label      func(string) string
	logger     zerolog.Logger
	now        func() time.Time
}

// New wires a Service. archive may be nil to disable archiving; label
// renders the target-language label shown to the model.
func New(translator Translator, glossaries internal.GlossaryStore, archive internal.ArchiveStore, defaults Defaults, label func(string) string, logger zerolog.Logger) *Service {
	if label == nil {
		label = strings.ToUpper
	}
	return &Service{
		translator: translator,
		glossaries: glossaries,
		archive:    archive,
		defaults:   defaults,
		label:      label,
		logger:     logger,
		now:        time.Now,
	}
}

// BuildRequest validates in and assembles the immutable request, loading
// the glossary of the target language.
func (s *Service) BuildRequest(ctx context.Context, in Input) (internal.TranslationRequest, error) {
	lang := strings.ToLower(strings.TrimSpace(in.LanguageCode))
	if lang == "" {
		return internal.TranslationRequest{}, fmt.Errorf("%w: target language is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if title == "" && body == "" {
		return internal.TranslationRequest{}, fmt.Errorf("%w: title or body is required", ErrInvalidInput)
	}

	entries, err := s.glossaries.Load(ctx, lang)
	if err != nil {
		return internal.TranslationRequest{}, fmt.Errorf("failed to load %s glossary: %w", lang, err)
	}

	temperature := s.defaults.Temperature
	if in.Temperature != nil {
		temperature = *in.Temperature
	}

	return internal.TranslationRequest{
		LanguageCode: lang,
		TitleSource:  title,
		BodySource:   body,
		TargetLabel:  s.label(lang),
		StyleContext: firstNonEmpty(in.Style, s.defaults.Style),
		Glossary:     entries,
		Temperature:  orchestrator.ClampTemperature(temperature),
		Provider:     strings.ToLower(firstNonEmpty(in.Provider, s.defaults.Provider)),
		ModelHint:    firstNonEmpty(in.Model, s.defaults.Model),
	}, nil
}

// Translate runs one translate-and-review transaction and archives it.
// Archive failures are reported in the Outcome, not as an error.
func (s *Service) Translate(ctx context.Context, in Input) (*Outcome, error) {
	req, err := s.BuildRequest(ctx, in)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Request: req}
	result, err := s.translator.TranslateAndReview(ctx, req)
	out.Result = result
	if err != nil {
		return out, err
	}

	if s.archive == nil || in.SkipArchive {
		return out, nil
	}

	rec := internal.ArchiveRecord{
		ID:           uuid.NewString(),
		CreatedAt:    s.now(),
		LanguageCode: req.LanguageCode,
		Request:      req,
		Result:       *result,
	}
	name, err := s.archive.Append(ctx, req.LanguageCode, rec)
	if err != nil {
		s.logger.Warn().Err(err).Str("language", req.LanguageCode).Msg("failed to archive translation")
		out.ArchiveError = err.Error()
		return out, nil
	}
	out.RecordID = rec.ID
	out.Filename = name
	s.logger.Info().
		Str("language", req.LanguageCode).
		Str("file", name).
		Str("verdict", result.ReviewVerdict).
		Msg("translation archived")
	return out, nil
}

// Check runs the local consistency checks against the glossary of
// languageCode without calling any provider.
func (s *Service) Check(ctx context.Context, languageCode, source, translated string) (*Consistency, error) {
	lang := strings.ToLower(strings.TrimSpace(languageCode))
	if lang == "" {
		return nil, fmt.Errorf("%w: target language is required", ErrInvalidInput)
	}
	entries, err := s.glossaries.Load(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s glossary: %w", lang, err)
	}
	gaps, missing := orchestrator.CheckConsistency(source, translated, entries)
	return &Consistency{LockedTermGaps: gaps, MissingNumericTokens: missing}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
