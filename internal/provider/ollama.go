package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var DefaultOllamaModels = []string{
	"llama3.2",
	"qwen2.5:7b",
	"mistral:7b",
	"gemma2:2b",
}

// OllamaProvider uses the single-prompt /api/generate endpoint of a local
// Ollama server. It needs no API key.
type OllamaProvider struct {
	baseURL string
	creds   Credentials
	models  []string
	client  *http.Client
}

func NewOllama(creds Credentials, timeout time.Duration) *OllamaProvider {
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		models:  DefaultOllamaModels,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaProvider) Name() string {
	return Ollama
}

func (s *OllamaProvider) DefaultModel() string {
	return defaultModel(s.creds, s.models)
}

func (s *OllamaProvider) FallbackModels() []string {
	return copyModels(s.models)
}

func (s *OllamaProvider) Complete(ctx context.Context, c Completion) (string, error) {
	model := pickModel(c.Model, s.creds, s.models)

	ollamaReq := map[string]interface{}{
		"model":  model,
		"prompt": singlePrompt(c.System, c.User),
		"stream": false,
		"options": map[string]interface{}{
			"temperature": c.Temperature,
			"num_predict": maxOutputTokens,
		},
	}

	jsonData, err := json.Marshal(ollamaReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", requestError(Ollama, model, resp)
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return strings.TrimSpace(ollamaResp.Response), nil
}
