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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/workflow"
)

var (
	translateLang        string
	translateTitle       string
	translateBody        string
	translateInput       string
	translateOutput      string
	translateProvider    string
	translateModel       string
	translateTemperature float64
	translateStyle       string
	translateNoArchive   bool
	translateJSON        bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate and review one product text",
	Long: `Translate a Polish product name and description into one target market
language, then have the translation reviewed.

The translation uses the chosen provider with model fallback; the review always
uses claude. Locked glossary terms and numbers are checked locally, and the
transaction is archived under the data directory.

Example:
  enzo-translator translate --lang de --title "Fotel fryzjerski" --input opis.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		lang, err := checkLanguage(a.cfg, translateLang)
		if err != nil {
			return err
		}

		body := translateBody
		if translateInput != "" {
			if body, err = readText(translateInput); err != nil {
				return err
			}
		}

		in := workflow.Input{
			LanguageCode: lang,
			Title:        translateTitle,
			Body:         body,
			Style:        translateStyle,
			Provider:     translateProvider,
			Model:        translateModel,
			SkipArchive:  translateNoArchive,
		}
		if cmd.Flags().Changed("temperature") {
			in.Temperature = &translateTemperature
		}

		warnIfNotPolish(a, in.Title+"\n"+in.Body)

		out, err := a.workflow.Translate(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		w := io.Writer(os.Stdout)
		if translateOutput != "" {
			f, err := os.Create(translateOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if translateJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		printOutcome(w, out)
		return nil
	},
}

// warnIfNotPolish logs when the source does not look Polish. Detection
// is advisory; the translation runs regardless.
func warnIfNotPolish(a *app, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if mismatch := a.languages.Mismatch(text, "pl"); mismatch != "" {
		a.logger.Warn().Str("check", mismatch).Msg("source text does not look Polish")
	}
}

func printOutcome(w io.Writer, out *workflow.Outcome) {
	res := out.Result
	fmt.Fprintf(w, "NAME:\n%s\n\nBODY:\n%s\n\n", res.TitleTarget, res.BodyTarget)

	fmt.Fprintf(w, "Provider: %s, reviewer: %s\n", res.Provider, res.Reviewer)
	printReview(w, res)
	printChecks(w, res)

	switch {
	case out.Filename != "":
		fmt.Fprintf(w, "Archived: %s\n", out.Filename)
	case out.ArchiveError != "":
		fmt.Fprintf(w, "Archive failed: %s\n", out.ArchiveError)
	}
}

func printReview(w io.Writer, res *internal.TranslationResult) {
	if res.ReviewFailed {
		fmt.Fprintf(w, "Review failed: %s\n", res.ReviewError)
		return
	}
	verdict := res.ReviewVerdict
	if verdict == "" {
		verdict = "unparsed"
	}
	if res.ReviewConfidence >= 0 {
		fmt.Fprintf(w, "Verdict: %s (confidence %d)\n", verdict, res.ReviewConfidence)
	} else {
		fmt.Fprintf(w, "Verdict: %s\n", verdict)
	}
	for _, issue := range res.ReviewIssues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
	for _, fix := range res.SuggestedFixes {
		fmt.Fprintf(w, "  fix:   %s\n", fix)
	}
}

func printChecks(w io.Writer, res *internal.TranslationResult) {
	if len(res.LockedTermGaps) == 0 && len(res.MissingNumericTokens) == 0 {
		fmt.Fprintln(w, "Consistency: OK")
	}
	for _, g := range res.LockedTermGaps {
		fmt.Fprintf(w, "Locked term missing: %s => %s\n", g.TermSource, g.TermTarget)
	}
	if len(res.MissingNumericTokens) > 0 {
		fmt.Fprintf(w, "Numbers missing: %s\n", strings.Join(res.MissingNumericTokens, ", "))
	}
	if res.TargetLanguageMismatch != "" {
		fmt.Fprintf(w, "Language check: %s\n", res.TargetLanguageMismatch)
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&translateLang, "lang", "l", "", "Target language code, e.g. de (required)")
	translateCmd.Flags().StringVarP(&translateTitle, "title", "t", "", "Polish product name")
	translateCmd.Flags().StringVarP(&translateBody, "body", "b", "", "Polish product description")
	translateCmd.Flags().StringVarP(&translateInput, "input", "i", "", "Read the description from a file (- for stdin)")
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "Write the result to a file instead of stdout")
	translateCmd.Flags().StringVarP(&translateProvider, "provider", "p", "", "Translation provider (default from config)")
	translateCmd.Flags().StringVarP(&translateModel, "model", "m", "", "Model to try first")
	translateCmd.Flags().Float64Var(&translateTemperature, "temperature", 0.2, "Sampling temperature, clamped to 0-0.8")
	translateCmd.Flags().StringVar(&translateStyle, "style", "", "Style and context notes for the translator")
	translateCmd.Flags().BoolVar(&translateNoArchive, "no-archive", false, "Do not archive the result")
	translateCmd.Flags().BoolVar(&translateJSON, "json", false, "Print the full result as JSON")

	translateCmd.MarkFlagRequired("lang")
}
