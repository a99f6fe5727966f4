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
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	archiveLang  string
	archiveLimit int
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived translations",
	Long:  `List and show the translate-and-review transactions archived per language.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived translations of one language, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, archiveLang)
		if err != nil {
			return err
		}
		entries, err := st.archive.Index(cmd.Context(), lang)
		if err != nil {
			return fmt.Errorf("failed to read archive index: %w", err)
		}

		if len(entries) == 0 {
			fmt.Printf("No archived translations for %s.\n", lang)
			return nil
		}
		if archiveLimit > 0 && len(entries) > archiveLimit {
			entries = entries[:archiveLimit]
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATETIME\tTITLE\tFILE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Datetime, oneLine(e.Title), e.Filename)
		}
		return w.Flush()
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Print one archived translation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.close()

		lang, err := checkLanguage(cfg, archiveLang)
		if err != nil {
			return err
		}
		doc, err := st.archive.Read(cmd.Context(), lang, args[0])
		if err != nil {
			return err
		}
		fmt.Print(doc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.PersistentFlags().StringVarP(&archiveLang, "lang", "l", "", "Target language code (required)")
	archiveCmd.MarkPersistentFlagRequired("lang")

	archiveListCmd.Flags().IntVarP(&archiveLimit, "limit", "n", 0, "Show at most n entries (0 for all)")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
}
