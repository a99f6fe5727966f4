package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/archive"
	"github.com/marczakme/enzo-translator/internal/glossary"
	"github.com/marczakme/enzo-translator/internal/orchestrator"
	"github.com/marczakme/enzo-translator/internal/provider"
	"github.com/marczakme/enzo-translator/internal/workflow"
)

type fakeTranslator struct {
	result *internal.TranslationResult
	err    error
}

func (f *fakeTranslator) TranslateAndReview(_ context.Context, req internal.TranslationRequest) (*internal.TranslationResult, error) {
	if f.err != nil {
		return &internal.TranslationResult{State: orchestrator.StateFailed, Provider: req.Provider}, f.err
	}
	res := *f.result
	res.Provider = req.Provider
	return &res, nil
}

type testEnv struct {
	handler    http.Handler
	glossaries *glossary.CSVStore
	archive    *archive.FileStore
}

func newTestEnv(t *testing.T, tr *fakeTranslator) *testEnv {
	t.Helper()
	dir := t.TempDir()
	glossaries := glossary.NewCSVStore(dir)
	arch := archive.NewFileStore(dir + "/translations")
	wf := workflow.New(tr, glossaries, arch, workflow.Defaults{Provider: "openai", Temperature: 0.2}, nil, zerolog.Nop())

	srv := NewServer(Deps{
		Workflow:   wf,
		Glossaries: glossaries,
		Archive:    arch,
		Languages:  []string{"de", "fr"},
		Label:      func(code string) string { return strings.ToUpper(code) + " market" },
	}, zerolog.Nop(), Options{})

	return &testEnv{handler: srv.Handler(), glossaries: glossaries, archive: arch}
}

func (e *testEnv) do(t *testing.T, method, path, contentType, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var payload map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("invalid json response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func okResult() *internal.TranslationResult {
	return &internal.TranslationResult{
		TitleTarget:      "Friseurstuhl",
		BodyTarget:       "Höhe 120 cm",
		ReviewVerdict:    internal.VerdictOK,
		ReviewConfidence: 90,
		State:            orchestrator.StateDone,
		Reviewer:         provider.Claude,
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	rec, payload := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if payload["status"] != "success" {
		t.Errorf("expected success, got %v", payload["status"])
	}
}

func TestLanguages(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	_, payload := env.do(t, http.MethodGet, "/api/v1/languages", "", "")
	items := payload["data"].(map[string]any)["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 languages, got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["code"] != "de" || first["label"] != "DE market" {
		t.Errorf("unexpected first language: %v", first)
	}
}

func TestTranslate(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	rec, payload := env.do(t, http.MethodPost, "/api/v1/translate", "application/json",
		`{"language":"DE","title":"Fotel","body":"Wysokość 120 cm","provider":"gemini"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := payload["data"].(map[string]any)
	result := data["result"].(map[string]any)
	if result["title"] != "Friseurstuhl" || result["provider"] != "gemini" {
		t.Errorf("unexpected result: %v", result)
	}
	if data["filename"] == "" || data["filename"] == nil {
		t.Errorf("expected archived file name, got %v", data["filename"])
	}

	idx, err := env.archive.Index(context.Background(), "de")
	if err != nil {
		t.Fatalf("Index failed: %v", err)
	}
	if len(idx) != 1 {
		t.Fatalf("expected 1 archived record, got %d", len(idx))
	}

	rec, _ = env.do(t, http.MethodGet, "/api/v1/archive/de/"+idx[0].Filename, "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Friseurstuhl") {
		t.Errorf("expected archived document, got %d: %s", rec.Code, rec.Body.String())
	}

	_, payload = env.do(t, http.MethodGet, "/api/v1/archive/de", "", "")
	items := payload["data"].(map[string]any)["items"].([]any)
	if len(items) != 1 {
		t.Errorf("expected 1 index entry, got %d", len(items))
	}
}

func TestTranslate_Validation(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"unsupported language", `{"language":"sv","body":"x"}`, http.StatusBadRequest},
		{"missing language", `{"body":"x"}`, http.StatusBadRequest},
		{"empty source", `{"language":"de","title":" ","body":""}`, http.StatusBadRequest},
		{"broken json", `{"language":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, payload := env.do(t, http.MethodPost, "/api/v1/translate", "application/json", tt.body)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if payload["status"] != "fail" {
				t.Errorf("expected fail status, got %v", payload["status"])
			}
		})
	}
}

func TestTranslate_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"unknown provider", &provider.UnknownProviderError{Provider: "x"}, http.StatusBadRequest},
		{"not configured", &orchestrator.StageError{Stage: orchestrator.StateTranslating, Provider: "claude",
			Err: &provider.ConfigurationError{Provider: "claude", Variable: "ANTHROPIC_API_KEY"}}, http.StatusServiceUnavailable},
		{"rejected", &orchestrator.StageError{Stage: orchestrator.StateTranslating, Provider: "openai",
			Err: &provider.ProviderRequestError{Provider: "openai", StatusCode: 500}}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, &fakeTranslator{err: tt.err})
			rec, _ := env.do(t, http.MethodPost, "/api/v1/translate", "application/json", `{"language":"de","body":"x"}`)
			if rec.Code != tt.code {
				t.Errorf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestConsistency(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})
	if err := env.glossaries.Save(context.Background(), "de", []internal.GlossaryEntry{
		{TermSource: "fotel", TermTarget: "Stuhl", Locked: true},
	}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, payload := env.do(t, http.MethodPost, "/api/v1/consistency", "application/json",
		`{"language":"de","source":"Fotel 120 cm","translation":"Sessel 12 cm"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := payload["data"].(map[string]any)
	gaps := data["locked_term_gaps"].([]any)
	missing := data["missing_numeric_tokens"].([]any)
	if len(gaps) != 1 || len(missing) != 1 || missing[0] != "120cm" {
		t.Errorf("unexpected report: %v", data)
	}
}

func TestGlossary_PutGet(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	rec, _ := env.do(t, http.MethodPut, "/api/v1/glossary/de", "application/json",
		`[{"term_pl":"fotel","term_target":"Stuhl","locked":true},{"term_pl":"fotel","term_target":"Sessel"}]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	_, payload := env.do(t, http.MethodGet, "/api/v1/glossary/de", "", "")
	items := payload["data"].(map[string]any)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(items))
	}
	if items[0].(map[string]any)["term_target"] != "Sessel" {
		t.Errorf("expected last entry to win, got %v", items[0])
	}

	rec, _ = env.do(t, http.MethodPut, "/api/v1/glossary/fr", "text/csv",
		"source,translation,is_locked\nlustro,miroir,yes\n")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = env.do(t, http.MethodGet, "/api/v1/glossary/fr?format=csv", "", "")
	if got := rec.Body.String(); got != "term_pl,term_target,locked,notes\nlustro,miroir,true,\n" {
		t.Errorf("unexpected csv export %q", got)
	}

	_, payload = env.do(t, http.MethodGet, "/api/v1/glossary", "", "")
	stats := payload["data"].(map[string]any)["items"].([]any)
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 languages, got %d", len(stats))
	}
}

func TestGlossary_Errors(t *testing.T) {
	env := newTestEnv(t, &fakeTranslator{result: okResult()})

	rec, _ := env.do(t, http.MethodGet, "/api/v1/glossary/xx", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown language, got %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodPut, "/api/v1/glossary/de", "text/csv", "foo,bar\n1,2\n")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for csv without term_pl, got %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodGet, "/api/v1/archive/de/missing.txt", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing record, got %d", rec.Code)
	}
	rec, _ = env.do(t, http.MethodGet, "/api/v1/nope", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown route, got %d", rec.Code)
	}
}
