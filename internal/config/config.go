// Package config loads settings from the config file, ENZO_* environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/marczakme/enzo-translator/internal/prompt"
	"github.com/marczakme/enzo-translator/internal/provider"
)

const (
	EnvPrefix = "ENZO"

	BackendFiles  = "files"
	BackendSQLite = "sqlite"
)

type Config struct {
	DataDir   string                          `mapstructure:"data_dir"`
	Languages []string                        `mapstructure:"languages"`
	Storage   StorageConfig                   `mapstructure:"storage"`
	Log       LogConfig                       `mapstructure:"log"`
	Translate TranslateConfig                 `mapstructure:"translate"`
	Review    ReviewConfig                    `mapstructure:"review"`
	Limits    prompt.Limits                   `mapstructure:"limits"`
	HTTP      HTTPConfig                      `mapstructure:"http"`
	Providers map[string]provider.Credentials `mapstructure:"providers"`
	// Timeout bounds a single provider call.
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	// DBPath is relative to DataDir unless absolute.
	DBPath string `mapstructure:"db_path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TranslateConfig struct {
	Provider       string  `mapstructure:"provider"`
	Model          string  `mapstructure:"model"`
	Temperature    float64 `mapstructure:"temperature"`
	Style          string  `mapstructure:"style"`
	TargetLanguage string  `mapstructure:"target_language"`
	ProtectMarkup  bool    `mapstructure:"protect_markup"`
	LanguageCheck  bool    `mapstructure:"language_check"`
	MaxParallel    int     `mapstructure:"max_parallel"`
}

type ReviewConfig struct {
	Model string `mapstructure:"model"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// SetDefaults registers every key so environment variables are picked up
// for all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", "data")
	v.SetDefault("languages", DefaultLanguages)
	v.SetDefault("storage.backend", BackendFiles)
	v.SetDefault("storage.db_path", "enzo.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("translate.provider", provider.OpenAI)
	v.SetDefault("translate.model", "")
	v.SetDefault("translate.temperature", 0.2)
	v.SetDefault("translate.style", "")
	v.SetDefault("translate.target_language", "de")
	v.SetDefault("translate.protect_markup", false)
	v.SetDefault("translate.language_check", true)
	v.SetDefault("translate.max_parallel", 3)
	v.SetDefault("review.model", "")
	v.SetDefault("limits.system_chars", prompt.DefaultSystemLimit)
	v.SetDefault("limits.user_chars", prompt.DefaultUserLimit)
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("timeout", 120*time.Second)
}

// LoadDotEnv loads the given .env files, or ./.env when none are given.
// Missing files are skipped and variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration into v and decodes it. cfgFile, when set, must
// exist; otherwise enzo.{yaml,toml,json} is looked up in the working
// directory and $HOME/.enzo.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("enzo")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.enzo")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendFiles, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q (want %s or %s)", c.Storage.Backend, BackendFiles, BackendSQLite)
	}

	langs := make([]string, 0, len(c.Languages))
	seen := make(map[string]struct{}, len(c.Languages))
	for _, l := range c.Languages {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		langs = append(langs, l)
	}
	if len(langs) == 0 {
		langs = append(langs, DefaultLanguages...)
	}
	c.Languages = langs

	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	c.Translate.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Translate.TargetLanguage))

	normalized := make(map[string]provider.Credentials, len(c.Providers))
	for id, creds := range c.Providers {
		normalized[strings.ToLower(strings.TrimSpace(id))] = creds
	}
	c.Providers = normalized
	return nil
}

// DBPath resolves the SQLite file against DataDir.
func (c *Config) DBPath() string {
	if filepath.IsAbs(c.Storage.DBPath) {
		return c.Storage.DBPath
	}
	return filepath.Join(c.DataDir, c.Storage.DBPath)
}

// ArchiveDir is where the file archive keeps its records.
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.DataDir, "translations")
}

// HasLanguage reports whether code is one of the configured markets.
func (c *Config) HasLanguage(code string) bool {
	for _, l := range c.Languages {
		if l == code {
			return true
		}
	}
	return false
}

// CredentialSource resolves provider credentials from the environment
// first and the config file second.
func (c *Config) CredentialSource() provider.CredentialSource {
	return provider.ChainSource{provider.EnvSource{}, provider.StaticSource(c.Providers)}
}
