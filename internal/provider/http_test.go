package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestChatCompletions_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  NAME:\nStuhl\n\nBODY:\nText  "}}]}`))
	}))
	defer server.Close()

	s := NewOpenAI(Credentials{APIKey: "test-key", BaseURL: server.URL}, 5*time.Second)
	out, err := s.Complete(context.Background(), Completion{System: "sys", User: "usr", Temperature: 0.2, Model: "gpt-test"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "NAME:\nStuhl\n\nBODY:\nText" {
		t.Errorf("Complete() = %q, want trimmed content", out)
	}

	if gotBody["model"] != "gpt-test" {
		t.Errorf("model = %v, want gpt-test", gotBody["model"])
	}
	messages, _ := gotBody["messages"].([]interface{})
	if len(messages) != 2 {
		t.Fatalf("messages = %v, want system and user", messages)
	}
	first := messages[0].(map[string]interface{})
	if first["role"] != "system" || first["content"] != "sys" {
		t.Errorf("first message = %v", first)
	}
}

func TestChatCompletions_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	s := NewOpenRouter(Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)
	out, err := s.Complete(context.Background(), Completion{System: "sys", User: "usr", Model: "m"})
	if err != nil {
		t.Fatalf("Complete() error = %v, want empty success", err)
	}
	if out != "" {
		t.Errorf("Complete() = %q, want empty", out)
	}
}

func TestChatCompletions_BadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"The model does not exist"}}`))
	}))
	defer server.Close()

	s := NewOpenAI(Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)
	_, err := s.Complete(context.Background(), Completion{User: "x", Model: "missing"})

	var reqErr *ProviderRequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want ProviderRequestError", err)
	}
	if reqErr.StatusCode != http.StatusNotFound || !reqErr.BadRequest() {
		t.Errorf("unexpected error: %+v", reqErr)
	}
	if reqErr.Message != "The model does not exist" {
		t.Errorf("Message = %q", reqErr.Message)
	}
	if reqErr.Model != "missing" {
		t.Errorf("Model = %q", reqErr.Model)
	}
}

func TestChatCompletions_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer server.Close()

	s := NewOpenRouter(Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)
	_, err := s.Complete(context.Background(), Completion{User: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsBadRequest(err) {
		t.Errorf("401 must not be classified as bad request")
	}
}

func TestChatCompletions_MissingKey(t *testing.T) {
	s := NewOpenAI(Credentials{}, time.Second)
	_, err := s.Complete(context.Background(), Completion{User: "x"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if cfgErr.Variable != "OPENAI_API_KEY" {
		t.Errorf("Variable = %q", cfgErr.Variable)
	}
}

func TestOpenRouter_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Title") == "" || r.Header.Get("HTTP-Referer") == "" {
			t.Errorf("missing OpenRouter attribution headers")
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	s := NewOpenRouter(Credentials{APIKey: "k", BaseURL: server.URL}, 5*time.Second)
	if _, err := s.Complete(context.Background(), Completion{User: "x"}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
}

func TestAnthropic_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "ak" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("anthropic-version = %q", r.Header.Get("anthropic-version"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"VERDICT: OK\n"}]}`))
	}))
	defer server.Close()

	p := NewAnthropic(Credentials{APIKey: "ak", BaseURL: server.URL}, 5*time.Second)
	out, err := p.Complete(context.Background(), Completion{System: "reviewer", User: "check", Temperature: 0.1})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "VERDICT: OK" {
		t.Errorf("Complete() = %q", out)
	}
	if gotBody["system"] != "reviewer" {
		t.Errorf("system = %v", gotBody["system"])
	}
	if gotBody["model"] != DefaultClaudeModels[0] {
		t.Errorf("model = %v, want default", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(maxOutputTokens) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
}

func TestAnthropic_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"type":"error","error":{"type":"not_found_error","message":"model: claude-x"}}`))
	}))
	defer server.Close()

	p := NewAnthropic(Credentials{APIKey: "ak", BaseURL: server.URL}, 5*time.Second)
	_, err := p.Complete(context.Background(), Completion{User: "x", Model: "claude-x"})

	var reqErr *ProviderRequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want ProviderRequestError", err)
	}
	if !reqErr.BadRequest() || reqErr.Message != "model: claude-x" {
		t.Errorf("unexpected error: %+v", reqErr)
	}
}

func TestAnthropic_MissingKey(t *testing.T) {
	p := NewAnthropic(Credentials{}, time.Second)
	_, err := p.Complete(context.Background(), Completion{User: "x"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Variable != "ANTHROPIC_API_KEY" {
		t.Fatalf("error = %v, want ConfigurationError for ANTHROPIC_API_KEY", err)
	}
}

func TestOllama_Complete(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"response":" Hallo \n"}`))
	}))
	defer server.Close()

	p := NewOllama(Credentials{BaseURL: server.URL}, 5*time.Second)
	out, err := p.Complete(context.Background(), Completion{System: "S", User: "U", Model: "llama3.2"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Hallo" {
		t.Errorf("Complete() = %q", out)
	}
	if gotBody["prompt"] != "S\n\nU" {
		t.Errorf("prompt = %q, want merged system and user", gotBody["prompt"])
	}
	if gotBody["stream"] != false {
		t.Errorf("stream = %v", gotBody["stream"])
	}
	options, _ := gotBody["options"].(map[string]interface{})
	if options["num_predict"] != float64(maxOutputTokens) {
		t.Errorf("num_predict = %v", options["num_predict"])
	}
}

func TestOllama_ModelMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model 'nope' not found"}`))
	}))
	defer server.Close()

	p := NewOllama(Credentials{BaseURL: server.URL}, 5*time.Second)
	_, err := p.Complete(context.Background(), Completion{User: "x", Model: "nope"})
	if !IsBadRequest(err) {
		t.Fatalf("error = %v, want bad request", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error message = %q", err.Error())
	}
}

func TestGemini_Complete(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hallo "},{"text":"Welt"}]}}]}`))
	}))
	defer server.Close()

	p := NewGemini(Credentials{APIKey: "gk", BaseURL: server.URL + "/"}, 5*time.Second)
	out, err := p.Complete(context.Background(), Completion{System: "S", User: "U"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if out != "Hallo Welt" {
		t.Errorf("Complete() = %q", out)
	}
	if !strings.Contains(gotPath, "gemini-1.5-pro:generateContent") {
		t.Errorf("path = %q, want default model", gotPath)
	}
}

func TestGemini_MissingKey(t *testing.T) {
	p := NewGemini(Credentials{}, time.Second)
	_, err := p.Complete(context.Background(), Completion{User: "x"})

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Variable != "GEMINI_API_KEY" {
		t.Fatalf("error = %v, want ConfigurationError for GEMINI_API_KEY", err)
	}
}

func TestSinglePrompt(t *testing.T) {
	if got := singlePrompt("", "U"); got != "U" {
		t.Errorf("singlePrompt without system = %q", got)
	}
	if got := singlePrompt(" S ", "U"); got != "S\n\nU" {
		t.Errorf("singlePrompt = %q", got)
	}
}
