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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.1.0"

var (
	cfgFile string
	envFile string

	// settings collects config file, environment and bound flags.
	settings = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "enzo-translator",
	Short: "Polish product text translator for foreign markets",
	Long: `Translates Polish product names and descriptions into the languages of the
target markets with an LLM provider, then has every translation reviewed by a
fixed reviewer model and checked locally against the market glossary.

Supported providers: openai, openrouter, claude, gemini, ollama

Use "enzo-translator translate --help" for translation options.`,
	Version:      version,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./enzo.yaml or $HOME/.enzo/enzo.yaml)")
	flags.StringVar(&envFile, "env-file", ".env", "Environment file loaded before configuration")
	flags.String("data-dir", "data", "Directory holding glossaries, archive and database")
	flags.String("storage", "files", "Storage backend: files or sqlite")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", "console", "Log format: console or json")

	_ = settings.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = settings.BindPFlag("storage.backend", flags.Lookup("storage"))
	_ = settings.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = settings.BindPFlag("log.format", flags.Lookup("log-format"))
}
