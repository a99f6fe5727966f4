package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	DefaultOpenAIModels = []string{
		"gpt-4.1-mini",
		"gpt-4o-mini",
	}

	DefaultOpenRouterModels = []string{
		"openai/gpt-4.1-mini",
		"google/gemini-2.0-flash-001",
		"mistralai/mistral-nemo",
	}
)

// ChatCompletions talks to OpenAI-compatible /chat/completions endpoints,
// which take distinct system and user messages.
type ChatCompletions struct {
	name      string
	envPrefix string
	baseURL   string
	creds     Credentials
	models    []string
	headers   map[string]string
	client    *http.Client
}

func NewOpenAI(creds Credentials, timeout time.Duration) *ChatCompletions {
	return newChatCompletions(OpenAI, "OPENAI", "https://api.openai.com/v1", creds, DefaultOpenAIModels, timeout, nil)
}

func NewOpenRouter(creds Credentials, timeout time.Duration) *ChatCompletions {
	return newChatCompletions(OpenRouter, "OPENROUTER", "https://openrouter.ai/api/v1", creds, DefaultOpenRouterModels, timeout, map[string]string{
		"HTTP-Referer": "https://enzo-translator.local",
		"X-Title":      "Enzo Translator",
	})
}

func newChatCompletions(name, envPrefix, baseURL string, creds Credentials, models []string, timeout time.Duration, headers map[string]string) *ChatCompletions {
	if creds.BaseURL != "" {
		baseURL = creds.BaseURL
	}
	return &ChatCompletions{
		name:      name,
		envPrefix: envPrefix,
		baseURL:   strings.TrimRight(baseURL, "/"),
		creds:     creds,
		models:    models,
		headers:   headers,
		client:    &http.Client{Timeout: timeout},
	}
}

func (s *ChatCompletions) Name() string {
	return s.name
}

func (s *ChatCompletions) DefaultModel() string {
	return defaultModel(s.creds, s.models)
}

func (s *ChatCompletions) FallbackModels() []string {
	return copyModels(s.models)
}

func (s *ChatCompletions) Complete(ctx context.Context, c Completion) (string, error) {
	if s.creds.APIKey == "" {
		return "", &ConfigurationError{Provider: s.name, Variable: s.envPrefix + "_API_KEY"}
	}

	model := pickModel(c.Model, s.creds, s.models)

	messages := make([]map[string]string, 0, 2)
	if system := strings.TrimSpace(c.System); system != "" {
		messages = append(messages, map[string]string{"role": "system", "content": system})
	}
	messages = append(messages, map[string]string{"role": "user", "content": c.User})

	chatReq := map[string]interface{}{
		"model":       model,
		"messages":    messages,
		"temperature": c.Temperature,
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.creds.APIKey)
	for k, v := range s.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", requestError(s.name, model, resp)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// no choices is an empty completion, not an error
	if len(chatResp.Choices) == 0 {
		return "", nil
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// requestError turns a non-200 net/http response into a ProviderRequestError.
func requestError(name, model string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	return &ProviderRequestError{
		Provider:   name,
		Model:      model,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body, string(raw)),
	}
}
