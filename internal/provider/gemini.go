package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

var DefaultGeminiModels = []string{
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// GeminiProvider calls the Gemini API through the genai SDK. The API has
// no separate system role here, so system and user text go out as one
// prompt.
type GeminiProvider struct {
	creds   Credentials
	models  []string
	timeout time.Duration

	mu     sync.Mutex
	client *genai.Client
}

func NewGemini(creds Credentials, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		creds:   creds,
		models:  DefaultGeminiModels,
		timeout: timeout,
	}
}

func (p *GeminiProvider) Name() string {
	return Gemini
}

func (p *GeminiProvider) DefaultModel() string {
	return defaultModel(p.creds, p.models)
}

func (p *GeminiProvider) FallbackModels() []string {
	return copyModels(p.models)
}

func (p *GeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:     p.creds.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: p.timeout},
	}
	if p.creds.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.creds.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, c Completion) (string, error) {
	if p.creds.APIKey == "" {
		return "", &ConfigurationError{Provider: Gemini, Variable: "GEMINI_API_KEY"}
	}

	client, err := p.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	model := pickModel(c.Model, p.creds, p.models)
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.Temperature)),
		MaxOutputTokens: maxOutputTokens,
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(singlePrompt(c.System, c.User)), config)
	if err != nil {
		if code, msg, ok := geminiAPIError(err); ok {
			return "", &ProviderRequestError{Provider: Gemini, Model: model, StatusCode: code, Message: msg}
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractText(result), nil
}

func geminiAPIError(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}

// extractText joins the text parts of the first candidate. A response
// without candidates yields an empty string.
func extractText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
