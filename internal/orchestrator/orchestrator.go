// Package orchestrator runs the two-pass translate-then-review workflow.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/consistency"
	"github.com/marczakme/enzo-translator/internal/placeholder"
	"github.com/marczakme/enzo-translator/internal/postprocess"
	"github.com/marczakme/enzo-translator/internal/prompt"
	"github.com/marczakme/enzo-translator/internal/provider"
)

const (
	StateIdle        = "IDLE"
	StateTranslating = "TRANSLATING"
	StateReviewing   = "REVIEWING"
	StateDone        = "DONE"
	StateFailed      = "FAILED"
)

const (
	// ReviewerProvider reviews every translation, whichever provider
	// produced it, so reviews stay comparable.
	ReviewerProvider = provider.Claude

	reviewTemperature = 0.1

	MinTemperature = 0.0
	MaxTemperature = 0.8
)

// Invoker calls a provider with model fallback.
type Invoker interface {
	InvokeDefault(ctx context.Context, providerID, system, user string, temperature float64, modelHint string) (string, error)
}

// LanguageChecker reports when a text is not in the expected language.
// An empty string means the text passed.
type LanguageChecker interface {
	Mismatch(text, languageCode string) string
}

type Config struct {
	Limits        prompt.Limits
	ReviewModel   string
	ProtectMarkup bool
	// MaxParallel bounds concurrent requests in Benchmark.
	MaxParallel int
}

// StageError reports which pass failed.
type StageError struct {
	Stage    string
	Provider string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s with %s failed: %v", e.Stage, e.Provider, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type Orchestrator struct {
	invoker Invoker
	checker LanguageChecker
	config  Config
	logger  zerolog.Logger
}

type Option func(*Orchestrator)

// WithLanguageChecker enables the advisory target-language check.
func WithLanguageChecker(c LanguageChecker) Option {
	return func(o *Orchestrator) {
		o.checker = c
	}
}

func New(invoker Invoker, config Config, logger zerolog.Logger, opts ...Option) *Orchestrator {
	if config.MaxParallel <= 0 {
		config.MaxParallel = 3
	}
	o := &Orchestrator{
		invoker: invoker,
		config:  config,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ClampTemperature bounds t to the supported range.
func ClampTemperature(t float64) float64 {
	switch {
	case t < MinTemperature:
		return MinTemperature
	case t > MaxTemperature:
		return MaxTemperature
	}
	return t
}

// TranslateAndReview translates req with its provider, checks the result
// locally and has it reviewed by ReviewerProvider.
//
// A failed translation returns a *StageError. A failed review does not:
// the translation is returned with ReviewFailed set.
func (o *Orchestrator) TranslateAndReview(ctx context.Context, req internal.TranslationRequest) (*internal.TranslationResult, error) {
	result := &internal.TranslationResult{
		State:                StateIdle,
		Provider:             req.Provider,
		Reviewer:             ReviewerProvider,
		ReviewConfidence:     -1,
		LockedTermGaps:       []internal.TermGap{},
		MissingNumericTokens: []string{},
	}
	log := o.logger.With().
		Str("language", req.LanguageCode).
		Str("provider", req.Provider).
		Logger()

	result.State = StateTranslating
	if err := o.translate(ctx, req, result); err != nil {
		result.State = StateFailed
		log.Error().Err(err).Msg("translation failed")
		return result, &StageError{Stage: StateTranslating, Provider: req.Provider, Err: err}
	}

	gaps, missing := CheckConsistency(req.SourceText(), result.TranslatedText(), req.Glossary)
	result.LockedTermGaps = gaps
	result.MissingNumericTokens = missing

	if o.checker != nil {
		result.TargetLanguageMismatch = o.checker.Mismatch(result.TranslatedText(), req.LanguageCode)
	}

	result.State = StateReviewing
	if err := o.review(ctx, req, result); err != nil {
		result.ReviewFailed = true
		result.ReviewError = (&StageError{Stage: StateReviewing, Provider: ReviewerProvider, Err: err}).Error()
		log.Warn().Err(err).Msg("review failed, keeping translation")
	}

	result.State = StateDone
	log.Info().
		Str("verdict", result.ReviewVerdict).
		Int("locked_gaps", len(result.LockedTermGaps)).
		Int("numeric_gaps", len(result.MissingNumericTokens)).
		Msg("translation finished")
	return result, nil
}

func (o *Orchestrator) translate(ctx context.Context, req internal.TranslationRequest, result *internal.TranslationResult) error {
	promptReq := req
	var rules []string
	var protected placeholder.Protected
	if o.config.ProtectMarkup {
		protected = placeholder.Protect(req.BodySource)
		if !protected.Empty() {
			promptReq.BodySource = protected.Text
			rules = append(rules, placeholder.InstructionHint())
		}
	}

	system, user := prompt.ComposeClipped(prompt.TranslateMessages(promptReq, rules...), o.config.Limits)
	raw, err := o.invoker.InvokeDefault(ctx, req.Provider, system, user, ClampTemperature(req.Temperature), req.ModelHint)
	if err != nil {
		return err
	}

	title, body := prompt.ParseTranslation(postprocess.Clean(raw))
	if !protected.Empty() {
		if missing := protected.Missing(body); len(missing) > 0 {
			o.logger.Warn().Ints("markers", missing).Msg("translation dropped markup markers")
		}
		body = protected.Restore(body)
	}

	result.RawTranslation = raw
	result.TitleTarget = title
	result.BodyTarget = body
	return nil
}

func (o *Orchestrator) review(ctx context.Context, req internal.TranslationRequest, result *internal.TranslationResult) error {
	system, user := prompt.ComposeClipped(prompt.ReviewMessages(req, result.TitleTarget, result.BodyTarget), o.config.Limits)
	report, err := o.invoker.InvokeDefault(ctx, ReviewerProvider, system, user, reviewTemperature, o.config.ReviewModel)
	if err != nil {
		return err
	}

	review := prompt.ParseReview(report)
	result.ReviewReport = report
	result.ReviewVerdict = review.Verdict
	result.ReviewIssues = review.Issues
	result.SuggestedFixes = review.SuggestedFixes
	result.ReviewConfidence = review.Confidence
	return nil
}

// CheckConsistency compares a translation with its source without any
// network call: locked glossary terms first, numeric tokens second.
func CheckConsistency(source, translated string, glossary []internal.GlossaryEntry) ([]internal.TermGap, []string) {
	report := consistency.Check(source, translated, glossary)
	return report.LockedTermGaps, report.MissingNumericTokens
}
