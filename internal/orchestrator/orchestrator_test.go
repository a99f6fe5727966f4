package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/provider"
)

type call struct {
	provider    string
	system      string
	user        string
	temperature float64
	model       string
}

// fakeInvoker answers per provider id and records every call.
type fakeInvoker struct {
	mu      sync.Mutex
	calls   []call
	answers map[string]func(user string) (string, error)
}

func (f *fakeInvoker) InvokeDefault(_ context.Context, providerID, system, user string, temperature float64, modelHint string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{providerID, system, user, temperature, modelHint})
	answer := f.answers[providerID]
	f.mu.Unlock()

	if answer == nil {
		return "", &provider.UnknownProviderError{Provider: providerID}
	}
	return answer(user)
}

func (f *fakeInvoker) callsTo(providerID string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.provider == providerID {
			out = append(out, c)
		}
	}
	return out
}

func fixed(out string) func(string) (string, error) {
	return func(string) (string, error) { return out, nil }
}

func failing(err error) func(string) (string, error) {
	return func(string) (string, error) { return "", err }
}

func baseRequest() internal.TranslationRequest {
	return internal.TranslationRequest{
		LanguageCode: "de",
		TitleSource:  "Test",
		BodySource:   "Hello",
		TargetLabel:  "German (DE)",
		Temperature:  0.2,
		Provider:     provider.OpenAI,
	}
}

func TestTranslateAndReview_Verdicts(t *testing.T) {
	tests := []struct {
		name   string
		review string
		want   string
	}{
		{"ok", "VERDICT: OK\nISSUES:\n- none\nCONFIDENCE: 95", "OK"},
		{"fix", "VERDICT: FIX\nISSUES:\n- wrong term", "FIX"},
		{"lower case anywhere", "Overall fine.\nverdict: ok", "OK"},
		{"unknown verdict", "VERDICT: MAYBE", ""},
		{"missing verdict", "Looks good.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvoker{answers: map[string]func(string) (string, error){
				provider.OpenAI:  fixed("NAME:\nTest\nBODY:\nHallo"),
				ReviewerProvider: fixed(tt.review),
			}}
			o := New(inv, Config{}, zerolog.Nop())

			res, err := o.TranslateAndReview(context.Background(), baseRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.ReviewVerdict)
			assert.Equal(t, "Test", res.TitleTarget)
			assert.Equal(t, "Hallo", res.BodyTarget)
			assert.Equal(t, tt.review, res.ReviewReport)
			assert.Equal(t, StateDone, res.State)
			assert.False(t, res.ReviewFailed)
		})
	}
}

func TestTranslateAndReview_FixedReviewer(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.Gemini:  fixed("NAME:\nTest\nBODY:\nHallo"),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{ReviewModel: "claude-review"}, zerolog.Nop())

	req := baseRequest()
	req.Provider = provider.Gemini
	req.ModelHint = "gemini-hint"
	res, err := o.TranslateAndReview(context.Background(), req)
	require.NoError(t, err)

	translateCalls := inv.callsTo(provider.Gemini)
	require.Len(t, translateCalls, 1)
	assert.Equal(t, "gemini-hint", translateCalls[0].model)
	assert.Equal(t, 0.2, translateCalls[0].temperature)

	reviewCalls := inv.callsTo(ReviewerProvider)
	require.Len(t, reviewCalls, 1)
	assert.Equal(t, reviewTemperature, reviewCalls[0].temperature)
	assert.Equal(t, "claude-review", reviewCalls[0].model)
	assert.Contains(t, reviewCalls[0].user, "TRANSLATION:\nNAME:\nTest\n\nBODY:\nHallo")

	assert.Equal(t, provider.Gemini, res.Provider)
	assert.Equal(t, ReviewerProvider, res.Reviewer)
}

func TestTranslateAndReview_TranslationFailure(t *testing.T) {
	cause := &provider.ConfigurationError{Provider: provider.OpenAI, Variable: "OPENAI_API_KEY"}
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  failing(cause),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, StateTranslating, stageErr.Stage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StateFailed, res.State)
	assert.Empty(t, inv.callsTo(ReviewerProvider), "review must not run without a translation")
}

func TestTranslateAndReview_ReviewFailureKeepsTranslation(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("NAME:\nTest\nBODY:\nHallo"),
		ReviewerProvider: failing(errors.New("connection reset")),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.True(t, res.ReviewFailed)
	assert.Contains(t, res.ReviewError, "connection reset")
	assert.Equal(t, "", res.ReviewVerdict)
	assert.Equal(t, -1, res.ReviewConfidence)
	assert.Equal(t, "Hallo", res.BodyTarget)
	assert.Equal(t, StateDone, res.State)
}

func TestTranslateAndReview_ParseDegradation(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("just plain text, no markers"),
		ReviewerProvider: fixed("VERDICT: FIX"),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "", res.TitleTarget)
	assert.Equal(t, "just plain text, no markers", res.BodyTarget)
}

func TestTranslateAndReview_CleansOutput(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("<think>hmm</think>\n**NAME:** Test\n**BODY:** Hallo"),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Test", res.TitleTarget)
	assert.Equal(t, "Hallo", res.BodyTarget)
	assert.Contains(t, res.RawTranslation, "<think>")
}

func TestTranslateAndReview_Consistency(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("NAME:\nBuy the Enzo chair\nBODY:\nWidth: 60 cm"),
		ReviewerProvider: fixed("VERDICT: FIX"),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	req := baseRequest()
	req.TitleSource = "Kup fotel fryzjerski Enzo"
	req.BodySource = "Szerokość: 60 cm, waga 12,5 kg"
	req.Glossary = []internal.GlossaryEntry{
		{TermSource: "fotel fryzjerski", TermTarget: "Friseurstuhl", Locked: true},
	}

	res, err := o.TranslateAndReview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []internal.TermGap{{TermSource: "fotel fryzjerski", TermTarget: "Friseurstuhl"}}, res.LockedTermGaps)
	assert.Equal(t, []string{"12,5kg"}, res.MissingNumericTokens)

	user := inv.callsTo(provider.OpenAI)[0].user
	assert.Contains(t, user, "- fotel fryzjerski => Friseurstuhl [LOCKED]")
}

func TestTranslateAndReview_ClampsTemperature(t *testing.T) {
	for _, tc := range []struct{ in, want float64 }{{1.5, 0.8}, {-0.3, 0}, {0.5, 0.5}} {
		inv := &fakeInvoker{answers: map[string]func(string) (string, error){
			provider.OpenAI:  fixed("BODY: x"),
			ReviewerProvider: fixed("VERDICT: OK"),
		}}
		o := New(inv, Config{}, zerolog.Nop())

		req := baseRequest()
		req.Temperature = tc.in
		_, err := o.TranslateAndReview(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, inv.callsTo(provider.OpenAI)[0].temperature)
	}
}

func TestTranslateAndReview_ProtectMarkup(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI: func(user string) (string, error) {
			if strings.Contains(user, "<p>") {
				return "", errors.New("markup leaked into the prompt")
			}
			return "NAME:\nStuhl\nBODY:\n[PH0]Friseurstuhl[PH1]", nil
		},
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{ProtectMarkup: true}, zerolog.Nop())

	req := baseRequest()
	req.BodySource = "<p>Fotel</p>"
	res, err := o.TranslateAndReview(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "<p>Friseurstuhl</p>", res.BodyTarget)
	assert.Contains(t, inv.callsTo(provider.OpenAI)[0].user, "[PHn]")
}

type stubChecker struct{ msg string }

func (s stubChecker) Mismatch(string, string) string { return s.msg }

func TestTranslateAndReview_LanguageChecker(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("BODY: Hallo"),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{}, zerolog.Nop(), WithLanguageChecker(stubChecker{msg: "expected DE but detected PL"}))

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "expected DE but detected PL", res.TargetLanguageMismatch)
}

func TestTranslateAndReview_ReviewDetails(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("BODY: Hallo"),
		ReviewerProvider: fixed("VERDICT: FIX\nISSUES:\n- term\nSUGGESTED FIXES:\n- use Friseurstuhl\nCONFIDENCE: 70"),
	}}
	o := New(inv, Config{}, zerolog.Nop())

	res, err := o.TranslateAndReview(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"term"}, res.ReviewIssues)
	assert.Equal(t, []string{"use Friseurstuhl"}, res.SuggestedFixes)
	assert.Equal(t, 70, res.ReviewConfidence)
}

func TestCheckConsistency(t *testing.T) {
	glossary := []internal.GlossaryEntry{{TermSource: "fotel fryzjerski", TermTarget: "Friseurstuhl", Locked: true}}

	gaps, missing := CheckConsistency("Kup fotel fryzjerski Enzo", "Kaufen Sie den Friseurstuhl Enzo", glossary)
	assert.Empty(t, gaps)
	assert.Empty(t, missing)
}

func TestBenchmark(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("NAME:\nA\nBODY:\nfrom openai"),
		provider.Gemini:  fixed("NAME:\nB\nBODY:\nfrom gemini"),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{MaxParallel: 2}, zerolog.Nop())

	results := o.Benchmark(context.Background(), baseRequest(), []string{provider.Gemini, "missing", provider.OpenAI})
	require.Len(t, results, 3)

	assert.Equal(t, provider.Gemini, results[0].Provider)
	assert.Equal(t, "from gemini", results[0].Result.BodyTarget)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, "missing", results[1].Provider)
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, StateFailed, results[1].Result.State)

	assert.Equal(t, provider.OpenAI, results[2].Provider)
	assert.Equal(t, "from openai", results[2].Result.BodyTarget)
	assert.Equal(t, "OK", results[2].Result.ReviewVerdict)

	assert.Len(t, inv.callsTo(ReviewerProvider), 2)
}

func TestBenchmark_Cancelled(t *testing.T) {
	inv := &fakeInvoker{answers: map[string]func(string) (string, error){
		provider.OpenAI:  fixed("NAME:\nA\nBODY:\nB"),
		ReviewerProvider: fixed("VERDICT: OK"),
	}}
	o := New(inv, Config{MaxParallel: 1}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.Benchmark(ctx, baseRequest(), []string{provider.OpenAI, provider.OpenAI, provider.OpenAI})
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, provider.OpenAI, r.Provider)
		assert.Nil(t, r.Result)
		assert.Equal(t, context.Canceled.Error(), r.Error)
	}
	assert.Empty(t, inv.callsTo(provider.OpenAI))
}

func TestClampTemperature(t *testing.T) {
	assert.Equal(t, 0.0, ClampTemperature(-1))
	assert.Equal(t, 0.8, ClampTemperature(2))
	assert.Equal(t, 0.3, ClampTemperature(0.3))
}
