// Package fallback retries a provider call across an ordered list of
// candidate models when the backend rejects a model as a bad request.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal/provider"
)

// Invoker is the provider surface the controller needs.
type Invoker interface {
	Provider(id string) (provider.Provider, error)
	Invoke(ctx context.Context, id, system, user string, temperature float64, modelHint string) (string, error)
}

// Candidates builds the ordered candidate list: the caller's hint, then the
// configured override, then the provider's known-good models. Blank and
// repeated identifiers are dropped.
func Candidates(hint, override string, defaults []string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(defaults)+2)

	add := func(model string) {
		model = strings.TrimSpace(model)
		if model == "" {
			return
		}
		if _, ok := seen[model]; ok {
			return
		}
		seen[model] = struct{}{}
		out = append(out, model)
	}

	add(hint)
	add(override)
	for _, m := range defaults {
		add(m)
	}
	return out
}

type Controller struct {
	invoker Invoker
	logger  zerolog.Logger
}

func New(invoker Invoker, logger zerolog.Logger) *Controller {
	return &Controller{invoker: invoker, logger: logger}
}

// Invoke tries each candidate once, in order. Only bad-request rejections
// move on to the next candidate; any other error is returned at once. An
// empty response is a success. After the last candidate fails, the last
// rejection is returned wrapped.
func (c *Controller) Invoke(ctx context.Context, providerID, system, user string, temperature float64, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidate models for provider %q", providerID)
	}

	var lastErr error
	for i, model := range candidates {
		out, err := c.invoker.Invoke(ctx, providerID, system, user, temperature, model)
		if err == nil {
			if i > 0 {
				c.logger.Info().
					Str("provider", providerID).
					Str("model", model).
					Int("attempt", i+1).
					Msg("fallback model succeeded")
			}
			return out, nil
		}

		if !provider.IsBadRequest(err) {
			return "", err
		}

		c.logger.Warn().
			Err(err).
			Str("provider", providerID).
			Str("model", model).
			Int("attempt", i+1).
			Int("candidates", len(candidates)).
			Msg("model rejected, trying next candidate")
		lastErr = err
	}

	return "", fmt.Errorf("all %d candidate models failed for %s: %w", len(candidates), providerID, lastErr)
}

// InvokeDefault builds candidates from modelHint and the provider's own
// configuration, then calls Invoke.
func (c *Controller) InvokeDefault(ctx context.Context, providerID, system, user string, temperature float64, modelHint string) (string, error) {
	p, err := c.invoker.Provider(providerID)
	if err != nil {
		return "", err
	}
	candidates := Candidates(modelHint, p.DefaultModel(), p.FallbackModels())
	return c.Invoke(ctx, providerID, system, user, temperature, candidates)
}
