/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/archive"
	"github.com/marczakme/enzo-translator/internal/config"
	"github.com/marczakme/enzo-translator/internal/detector"
	"github.com/marczakme/enzo-translator/internal/fallback"
	"github.com/marczakme/enzo-translator/internal/glossary"
	"github.com/marczakme/enzo-translator/internal/logging"
	"github.com/marczakme/enzo-translator/internal/orchestrator"
	"github.com/marczakme/enzo-translator/internal/provider"
	"github.com/marczakme/enzo-translator/internal/store"
	"github.com/marczakme/enzo-translator/internal/validator"
	"github.com/marczakme/enzo-translator/internal/workflow"
)

// stores are the persistence backends selected by storage.backend.
type stores struct {
	glossaries internal.GlossaryStore
	archive    internal.ArchiveStore
	close      func() error
}

// app holds everything a translating command needs.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	stores   stores
	registry *provider.Registry
	orch     *orchestrator.Orchestrator
	workflow *workflow.Service
	// languages checks source and target languages with one shared detector.
	languages *validator.Validator
}

// loadConfig reads .env, the config file and the environment, and builds
// the logger.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg, err := config.Load(settings, cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logger, err := logging.New(cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger, nil
}

func openStores(cfg *config.Config) (stores, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		dbPath := cfg.DBPath()
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return stores{}, fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := store.New(dbPath)
		if err != nil {
			return stores{}, fmt.Errorf("failed to open database: %w", err)
		}
		return stores{glossaries: db, archive: db, close: db.Close}, nil
	default:
		return stores{
			glossaries: glossary.NewCSVStore(cfg.DataDir),
			archive:    archive.NewFileStore(cfg.ArchiveDir()),
			close:      func() error { return nil },
		}, nil
	}
}

// openStorage loads configuration and opens the stores for commands that
// never call a provider.
func openStorage() (*config.Config, zerolog.Logger, stores, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, logger, stores{}, err
	}
	st, err := openStores(cfg)
	if err != nil {
		return nil, logger, stores{}, err
	}
	return cfg, logger, st, nil
}

// newApp wires config, stores, provider registry, fallback controller,
// orchestrator and workflow.
func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st, err := openStores(cfg)
	if err != nil {
		return nil, err
	}

	registry, err := provider.NewDefaultRegistry(cfg.CredentialSource(), cfg.Timeout, logger)
	if err != nil {
		st.close()
		return nil, err
	}

	languages := validator.NewWith(detector.New())

	var opts []orchestrator.Option
	if cfg.Translate.LanguageCheck {
		opts = append(opts, orchestrator.WithLanguageChecker(languages))
	}
	orch := orchestrator.New(fallback.New(registry, logger), orchestrator.Config{
		Limits:        cfg.Limits,
		ReviewModel:   cfg.Review.Model,
		ProtectMarkup: cfg.Translate.ProtectMarkup,
		MaxParallel:   cfg.Translate.MaxParallel,
	}, logger, opts...)

	wf := workflow.New(orch, st.glossaries, st.archive, workflow.Defaults{
		Provider:    cfg.Translate.Provider,
		Model:       cfg.Translate.Model,
		Temperature: cfg.Translate.Temperature,
		Style:       cfg.Translate.Style,
	}, config.Label, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		stores:   st,
		registry: registry,
		orch:     orch,
		workflow: wf,

		languages: languages,
	}, nil
}

func (a *app) Close() {
	if err := a.stores.close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close storage")
	}
}

// checkLanguage rejects codes outside the configured markets.
func checkLanguage(cfg *config.Config, lang string) (string, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "", fmt.Errorf("--lang is required (one of %s)", strings.Join(cfg.Languages, ", "))
	}
	if !cfg.HasLanguage(lang) {
		return "", fmt.Errorf("unsupported language %q (one of %s)", lang, strings.Join(cfg.Languages, ", "))
	}
	return lang, nil
}

// languagesOrAll returns the selected languages, or every configured one.
func languagesOrAll(cfg *config.Config, selected []string) ([]string, error) {
	if len(selected) == 0 {
		return cfg.Languages, nil
	}
	out := make([]string, 0, len(selected))
	for _, l := range selected {
		lang, err := checkLanguage(cfg, l)
		if err != nil {
			return nil, err
		}
		out = append(out, lang)
	}
	return out, nil
}

// readText reads a file, or stdin for "-".
func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}
