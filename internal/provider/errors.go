package provider

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ConfigurationError reports a missing credential for a provider.
type ConfigurationError struct {
	Provider string
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("provider %q is not configured: %s is not set", e.Provider, e.Variable)
}

// UnknownProviderError reports a provider identifier nobody registered.
type UnknownProviderError struct {
	Provider  string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("provider %q is not registered (available: %s)", e.Provider, strings.Join(e.Available, ", "))
}

// ProviderRequestError reports a request the backend rejected.
type ProviderRequestError struct {
	Provider   string
	Model      string
	StatusCode int
	Message    string
}

func (e *ProviderRequestError) Error() string {
	msg := fmt.Sprintf("%s request failed with status %d", e.Provider, e.StatusCode)
	if e.Model != "" {
		msg += fmt.Sprintf(" (model %s)", e.Model)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// BadRequest reports whether the rejection is client-side (unknown or
// unavailable model, malformed payload). Only these are worth retrying
// with another model.
func (e *ProviderRequestError) BadRequest() bool {
	switch e.StatusCode {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// IsBadRequest reports whether err wraps a bad-request ProviderRequestError.
func IsBadRequest(err error) bool {
	var reqErr *ProviderRequestError
	return errors.As(err, &reqErr) && reqErr.BadRequest()
}

// errorMessage extracts a human message from a JSON error body of the
// common {"error": {"message": ...}} or {"error": "..."} shapes.
func errorMessage(body map[string]any, raw string) string {
	if e, ok := body["error"]; ok {
		switch v := e.(type) {
		case string:
			return v
		case map[string]any:
			if m, ok := v["message"].(string); ok {
				return m
			}
		}
	}
	if m, ok := body["message"].(string); ok {
		return m
	}
	return strings.TrimSpace(raw)
}
