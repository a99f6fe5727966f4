// Package provider normalizes calls to heterogeneous LLM backends behind a
// single Complete signature and resolves them by identifier.
package provider

import (
	"context"
	"strings"
)

const (
	// maxOutputTokens caps generated output on backends that need an
	// explicit ceiling.
	maxOutputTokens = 4096
)

// Completion is one system/user prompt pair sent to a backend.
type Completion struct {
	System      string
	User        string
	Temperature float64
	Model       string
}

// Provider is one LLM backend.
type Provider interface {
	// Name is the identifier the provider is registered under.
	Name() string
	// DefaultModel is the configured model override, or the first known-good
	// model when none is configured.
	DefaultModel() string
	// FallbackModels lists known-good models, most preferred first.
	FallbackModels() []string
	// Complete sends one request and returns the trimmed generated text.
	Complete(ctx context.Context, c Completion) (string, error)
}

// singlePrompt merges system and user text for backends without roles.
func singlePrompt(system, user string) string {
	system = strings.TrimSpace(system)
	if system == "" {
		return user
	}
	return system + "\n\n" + user
}

func pickModel(requested string, creds Credentials, fallback []string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	if m := strings.TrimSpace(creds.Model); m != "" {
		return m
	}
	if len(fallback) > 0 {
		return fallback[0]
	}
	return ""
}

func defaultModel(creds Credentials, fallback []string) string {
	return pickModel("", creds, fallback)
}

func copyModels(models []string) []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}
