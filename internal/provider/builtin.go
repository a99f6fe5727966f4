package provider

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

const (
	OpenAI     = "openai"
	OpenRouter = "openrouter"
	Claude     = "claude"
	Gemini     = "gemini"
	Ollama     = "ollama"
)

// defaultTimeout bounds one provider call at the transport level.
const defaultTimeout = 120 * time.Second

// envPrefixes maps provider ids to the environment prefixes read for them.
var envPrefixes = map[string][]string{
	OpenAI:     {"OPENAI"},
	OpenRouter: {"OPENROUTER"},
	Claude:     {"ANTHROPIC", "CLAUDE"},
	Gemini:     {"GEMINI"},
	Ollama:     {"OLLAMA"},
}

// EnvPrefixes returns the environment prefixes read for a provider id.
func EnvPrefixes(id string) []string {
	return envPrefixes[id]
}

// NewDefaultRegistry registers every built-in backend with credentials
// resolved from src.
func NewDefaultRegistry(src CredentialSource, timeout time.Duration, logger zerolog.Logger) (*Registry, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	lookup := func(id string) (Credentials, error) {
		return src.Lookup(id, envPrefixes[id]...)
	}

	registry := NewRegistry(logger)
	builders := []struct {
		id    string
		build func(Credentials) Provider
	}{
		{OpenAI, func(c Credentials) Provider { return NewOpenAI(c, timeout) }},
		{OpenRouter, func(c Credentials) Provider { return NewOpenRouter(c, timeout) }},
		{Claude, func(c Credentials) Provider { return NewAnthropic(c, timeout) }},
		{Gemini, func(c Credentials) Provider { return NewGemini(c, timeout) }},
		{Ollama, func(c Credentials) Provider { return NewOllama(c, timeout) }},
	}
	for _, b := range builders {
		creds, err := lookup(b.id)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(b.build(creds)); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", b.id, err)
		}
	}
	return registry, nil
}
