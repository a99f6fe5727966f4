package provider

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Credentials are the per-provider settings read from the environment or
// the config file.
type Credentials struct {
	APIKey  string `envconfig:"API_KEY" mapstructure:"api_key"`
	BaseURL string `envconfig:"BASE_URL" mapstructure:"base_url"`
	Model   string `envconfig:"MODEL" mapstructure:"model"`
}

func (c Credentials) merge(other Credentials) Credentials {
	if c.APIKey == "" {
		c.APIKey = other.APIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = other.BaseURL
	}
	if c.Model == "" {
		c.Model = other.Model
	}
	return c
}

// CredentialSource resolves credentials for a provider. prefixes are the
// environment prefixes to try, most specific first.
type CredentialSource interface {
	Lookup(providerID string, prefixes ...string) (Credentials, error)
}

// EnvSource reads <PREFIX>_API_KEY, <PREFIX>_BASE_URL and <PREFIX>_MODEL.
// With several prefixes the first non-empty value of each field wins.
type EnvSource struct{}

func (EnvSource) Lookup(providerID string, prefixes ...string) (Credentials, error) {
	var out Credentials
	for _, prefix := range prefixes {
		var c Credentials
		if err := envconfig.Process(strings.ToUpper(prefix), &c); err != nil {
			return Credentials{}, fmt.Errorf("failed to read %s credentials: %w", providerID, err)
		}
		out = out.merge(c)
	}
	return out, nil
}

// StaticSource serves credentials from the config file, keyed by provider id.
type StaticSource map[string]Credentials

func (s StaticSource) Lookup(providerID string, _ ...string) (Credentials, error) {
	return s[providerID], nil
}

// ChainSource merges sources field by field; earlier sources win.
type ChainSource []CredentialSource

func (s ChainSource) Lookup(providerID string, prefixes ...string) (Credentials, error) {
	var out Credentials
	for _, src := range s {
		c, err := src.Lookup(providerID, prefixes...)
		if err != nil {
			return Credentials{}, err
		}
		out = out.merge(c)
	}
	return out, nil
}
