package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Registry stores providers by identifier.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    zerolog.Logger
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    logger,
	}
}

// Register adds one provider, replacing any provider with the same name.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("provider is nil")
	}
	name := normalizeProviderName(p.Name())
	if name == "" {
		return fmt.Errorf("provider name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	return nil
}

// Provider resolves a provider by identifier.
func (r *Registry) Provider(id string) (Provider, error) {
	name := normalizeProviderName(id)

	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownProviderError{Provider: name, Available: r.Names()}
	}
	return p, nil
}

// Names lists registered identifiers in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke sends one completion to the provider registered as id. A
// non-empty modelHint takes precedence over the provider's default model.
func (r *Registry) Invoke(ctx context.Context, id, system, user string, temperature float64, modelHint string) (string, error) {
	p, err := r.Provider(id)
	if err != nil {
		return "", err
	}

	model := strings.TrimSpace(modelHint)
	if model == "" {
		model = p.DefaultModel()
	}

	start := time.Now()
	out, err := p.Complete(ctx, Completion{
		System:      system,
		User:        user,
		Temperature: temperature,
		Model:       model,
	})
	logEvent := r.logger.Debug()
	if err != nil {
		logEvent = r.logger.Warn().Err(err)
	}
	logEvent.
		Str("provider", p.Name()).
		Str("model", model).
		Dur("latency", time.Since(start)).
		Msg("provider call")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
