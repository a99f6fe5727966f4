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

	"github.com/spf13/cobra"
)

var (
	checkLang        string
	checkSource      string
	checkTranslation string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check a translation against the glossary and source numbers",
	Long: `Run the local consistency checks on an existing translation without calling
any provider: locked glossary terms present in the source must appear in the
translation, and every number with its unit must survive.

Example:
  enzo-translator check --lang de --source opis.txt --translation opis_de.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		lang, err := checkLanguage(a.cfg, checkLang)
		if err != nil {
			return err
		}
		source, err := readText(checkSource)
		if err != nil {
			return err
		}
		translated, err := readText(checkTranslation)
		if err != nil {
			return err
		}

		report, err := a.workflow.Check(cmd.Context(), lang, source, translated)
		if err != nil {
			return err
		}

		if len(report.LockedTermGaps) == 0 && len(report.MissingNumericTokens) == 0 {
			fmt.Println("Consistency: OK")
			return nil
		}
		for _, g := range report.LockedTermGaps {
			fmt.Fprintf(os.Stdout, "Locked term missing: %s => %s\n", g.TermSource, g.TermTarget)
		}
		for _, tok := range report.MissingNumericTokens {
			fmt.Fprintf(os.Stdout, "Number missing: %s\n", tok)
		}
		return fmt.Errorf("%d locked terms and %d numbers missing", len(report.LockedTermGaps), len(report.MissingNumericTokens))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkLang, "lang", "l", "", "Target language code (required)")
	checkCmd.Flags().StringVarP(&checkSource, "source", "s", "", "Polish source file (required)")
	checkCmd.Flags().StringVarP(&checkTranslation, "translation", "t", "", "Translated file (required)")

	checkCmd.MarkFlagRequired("lang")
	checkCmd.MarkFlagRequired("source")
	checkCmd.MarkFlagRequired("translation")
}
