package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const anthropicVersion = "2023-06-01"

// DefaultClaudeModels lists stable aliases before pinned snapshots, with a
// small model as the last resort.
var DefaultClaudeModels = []string{
	"claude-3-5-sonnet-latest",
	"claude-3-5-sonnet-20241022",
	"claude-3-5-sonnet-20240620",
	"claude-3-haiku-20240307",
}

// AnthropicProvider calls the Anthropic Messages API.
type AnthropicProvider struct {
	baseURL string
	creds   Credentials
	models  []string
	http    *resty.Client
}

func NewAnthropic(creds Credentials, timeout time.Duration) *AnthropicProvider {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return &AnthropicProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		models:  DefaultClaudeModels,
		http:    resty.New().SetTimeout(timeout),
	}
}

func (p *AnthropicProvider) Name() string {
	return Claude
}

func (p *AnthropicProvider) DefaultModel() string {
	return defaultModel(p.creds, p.models)
}

func (p *AnthropicProvider) FallbackModels() []string {
	return copyModels(p.models)
}

func (p *AnthropicProvider) Complete(ctx context.Context, c Completion) (string, error) {
	if p.creds.APIKey == "" {
		return "", &ConfigurationError{Provider: Claude, Variable: "ANTHROPIC_API_KEY"}
	}

	model := pickModel(c.Model, p.creds, p.models)
	body := map[string]any{
		"model":       model,
		"max_tokens":  maxOutputTokens,
		"temperature": c.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": c.User},
		},
	}
	if system := strings.TrimSpace(c.System); system != "" {
		body["system"] = system
	}

	var resp struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	var errResp struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}

	rr, err := p.http.R().SetContext(ctx).
		SetHeader("x-api-key", p.creds.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&resp).
		SetError(&errResp).
		Post(p.baseURL + "/v1/messages")
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	if rr.IsError() {
		msg := errResp.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(rr.String())
		}
		return "", &ProviderRequestError{
			Provider:   Claude,
			Model:      model,
			StatusCode: rr.StatusCode(),
			Message:    msg,
		}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
