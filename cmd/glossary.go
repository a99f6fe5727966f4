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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/config"
	"github.com/marczakme/enzo-translator/internal/glossary"
)

var glossaryLang string

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the per-market terminology glossaries",
	Long: `List, edit, import, export and seed the glossary of each target market.

Each entry maps a Polish term to its rendering in one target language.
Locked entries are enforced: the translator is told to use them verbatim and
every translation is checked for them.`,
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the glossary of one language",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, glossaryLang)
		if err != nil {
			return err
		}
		entries, err := st.glossaries.Load(cmd.Context(), lang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		if len(entries) == 0 {
			fmt.Printf("Glossary for %s is empty.\n", config.Label(lang))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM PL\tTERM TARGET\tLOCKED\tNOTES")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", e.TermSource, e.TermTarget, e.Locked, e.Notes)
		}
		return w.Flush()
	},
}

var (
	glossaryAddLocked bool
	glossaryAddNotes  string
)

var glossaryAddCmd = &cobra.Command{
	Use:   "add <term-pl> [term-target]",
	Short: "Add or update a glossary entry",
	Long: `Add an entry to the glossary of one language. An entry with the same Polish
term is replaced.

Example:
  enzo-translator glossary add "fotel fryzjerski" "Friseurstuhl" --lang de --locked`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, glossaryLang)
		if err != nil {
			return err
		}
		entry := internal.GlossaryEntry{
			TermSource: strings.TrimSpace(args[0]),
			Locked:     glossaryAddLocked,
			Notes:      glossaryAddNotes,
		}
		if len(args) == 2 {
			entry.TermTarget = strings.TrimSpace(args[1])
		}
		if entry.TermSource == "" {
			return fmt.Errorf("term must not be empty")
		}

		existing, err := st.glossaries.Load(cmd.Context(), lang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}
		if err := st.glossaries.Save(cmd.Context(), lang, glossary.Merge(existing, []internal.GlossaryEntry{entry})); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Added: [%s] %q => %q\n", lang, entry.TermSource, entry.TermTarget)
		return nil
	},
}

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <term-pl>",
	Short: "Delete a glossary entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, glossaryLang)
		if err != nil {
			return err
		}
		existing, err := st.glossaries.Load(cmd.Context(), lang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		term := strings.TrimSpace(args[0])
		kept := make([]internal.GlossaryEntry, 0, len(existing))
		for _, e := range existing {
			if !strings.EqualFold(e.TermSource, term) {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(existing) {
			return fmt.Errorf("term %q not found in %s glossary", term, lang)
		}
		if err := st.glossaries.Save(cmd.Context(), lang, kept); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Deleted: [%s] %q\n", lang, term)
		return nil
	},
}

var glossaryImportReplace bool

var glossaryImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import glossary entries from CSV",
	Long: `Import entries from a CSV file with the columns term_pl, term_target, locked
and notes. Entries are merged into the existing glossary unless --replace is
given. Use - to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, glossaryLang)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open CSV: %w", err)
			}
			defer f.Close()
			r = f
		}
		incoming, err := glossary.ReadCSV(r)
		if err != nil {
			return err
		}

		entries := incoming
		if !glossaryImportReplace {
			existing, err := st.glossaries.Load(cmd.Context(), lang)
			if err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
			entries = glossary.Merge(existing, incoming)
		}
		if err := st.glossaries.Save(cmd.Context(), lang, entries); err != nil {
			return fmt.Errorf("failed to save glossary: %w", err)
		}
		fmt.Printf("Imported %d entries into %s glossary (%d total).\n", len(incoming), lang, len(glossary.Normalize(entries)))
		return nil
	},
}

var glossaryExportOutput string

var glossaryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the glossary of one language as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, glossaryLang)
		if err != nil {
			return err
		}
		entries, err := st.glossaries.Load(cmd.Context(), lang)
		if err != nil {
			return fmt.Errorf("failed to load glossary: %w", err)
		}

		w := io.Writer(os.Stdout)
		if glossaryExportOutput != "" {
			f, err := os.Create(glossaryExportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return glossary.WriteCSV(w, entries)
	},
}

var (
	glossarySeedLangs []string
	glossarySeedMode  string
)

var glossarySeedCmd = &cobra.Command{
	Use:   "seed <terms-file>",
	Short: "Add Polish terms to the glossaries of many languages",
	Long: `Read a list of Polish terms, one per line or as the first CSV column, and add
them with empty targets to the glossary of every selected language.

Modes:
  append  keep existing entries, add missing terms
  reset   clear targets, locks and notes of existing entries, then add missing terms

Example:
  enzo-translator glossary seed terms.txt --langs de,fr --mode append`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := glossary.ParseSeedMode(glossarySeedMode)
		if err != nil {
			return err
		}

		cfg, logger, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		langs, err := languagesOrAll(cfg, glossarySeedLangs)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open terms file: %w", err)
		}
		defer f.Close()
		terms, err := glossary.ParseTermList(f)
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			return fmt.Errorf("no terms found in %s", args[0])
		}

		reports, err := glossary.Seed(cmd.Context(), st.glossaries, langs, terms, mode)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tEXISTING\tADDED\tTOTAL")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.LanguageCode, r.Existing, r.Added, r.Total)
		}
		w.Flush()
		if err != nil {
			return err
		}
		logger.Info().Int("terms", len(terms)).Int("languages", len(reports)).Str("mode", string(mode)).Msg("glossaries seeded")
		return nil
	},
}

var glossaryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the state of every language's glossary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tPHRASES\tFILLED\tLOCKED\tLAST UPDATE\tSTATUS")
		for _, s := range glossary.Monitor(cmd.Context(), st.glossaries, cfg.Languages) {
			updated := "-"
			if !s.LastUpdate.IsZero() {
				updated = s.LastUpdate.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
				config.Label(s.LanguageCode), s.Phrases, s.Filled, s.Locked, updated, s.Status)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	for _, c := range []*cobra.Command{glossaryListCmd, glossaryAddCmd, glossaryDeleteCmd, glossaryImportCmd, glossaryExportCmd} {
		c.Flags().StringVarP(&glossaryLang, "lang", "l", "", "Target language code, e.g. de (required)")
		c.MarkFlagRequired("lang")
	}

	glossaryAddCmd.Flags().BoolVar(&glossaryAddLocked, "locked", false, "Enforce this rendering in every translation")
	glossaryAddCmd.Flags().StringVar(&glossaryAddNotes, "notes", "", "Free-form notes")

	glossaryImportCmd.Flags().BoolVar(&glossaryImportReplace, "replace", false, "Replace the glossary instead of merging")

	glossaryExportCmd.Flags().StringVarP(&glossaryExportOutput, "output", "o", "", "Write CSV to a file instead of stdout")

	glossarySeedCmd.Flags().StringSliceVar(&glossarySeedLangs, "langs", nil, "Languages to seed (default: all configured)")
	glossarySeedCmd.Flags().StringVar(&glossarySeedMode, "mode", string(glossary.SeedAppend), "Seed mode: append or reset")

	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
	glossaryCmd.AddCommand(glossaryImportCmd)
	glossaryCmd.AddCommand(glossaryExportCmd)
	glossaryCmd.AddCommand(glossarySeedCmd)
	glossaryCmd.AddCommand(glossaryStatsCmd)
}
