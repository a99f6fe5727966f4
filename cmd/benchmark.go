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
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/marczakme/enzo-translator/internal/workflow"
)

var (
	benchLang      string
	benchTitle     string
	benchBody      string
	benchInput     string
	benchProviders []string
	benchJSON      bool
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Translate one text with several providers and compare reviews",
	Long: `Run the same translate-and-review request once per provider, concurrently.
Every translation is reviewed by the same reviewer, so verdicts and confidence
are comparable. Results are not archived.

Example:
  enzo-translator benchmark --lang fr --input opis.txt --providers openai,gemini,ollama`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		lang, err := checkLanguage(a.cfg, benchLang)
		if err != nil {
			return err
		}
		body := benchBody
		if benchInput != "" {
			if body, err = readText(benchInput); err != nil {
				return err
			}
		}

		providers := benchProviders
		if len(providers) == 0 {
			providers = a.registry.Names()
		}
		for _, id := range providers {
			if _, err := a.registry.Provider(id); err != nil {
				return err
			}
		}

		req, err := a.workflow.BuildRequest(cmd.Context(), workflow.Input{
			LanguageCode: lang,
			Title:        benchTitle,
			Body:         body,
		})
		if err != nil {
			return err
		}

		results := a.orch.Benchmark(cmd.Context(), req, providers)

		if benchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PROVIDER\tSTATE\tVERDICT\tCONFIDENCE\tLOCKED GAPS\tNUMBER GAPS\tLATENCY\tERROR")
		for _, r := range results {
			state, verdict, confidence, locked, numeric := "-", "-", "-", "-", "-"
			if res := r.Result; res != nil {
				state = res.State
				if res.ReviewVerdict != "" {
					verdict = res.ReviewVerdict
				}
				if res.ReviewConfidence >= 0 {
					confidence = fmt.Sprint(res.ReviewConfidence)
				}
				locked = fmt.Sprint(len(res.LockedTermGaps))
				numeric = fmt.Sprint(len(res.MissingNumericTokens))
				if res.ReviewFailed && r.Error == "" {
					r.Error = res.ReviewError
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.Provider, state, verdict, confidence, locked, numeric,
				r.Latency.Round(time.Millisecond), oneLine(r.Error))
		}
		return w.Flush()
	},
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len([]rune(s)) > 80 {
		return string([]rune(s)[:77]) + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().StringVarP(&benchLang, "lang", "l", "", "Target language code (required)")
	benchmarkCmd.Flags().StringVarP(&benchTitle, "title", "t", "", "Polish product name")
	benchmarkCmd.Flags().StringVarP(&benchBody, "body", "b", "", "Polish product description")
	benchmarkCmd.Flags().StringVarP(&benchInput, "input", "i", "", "Read the description from a file (- for stdin)")
	benchmarkCmd.Flags().StringSliceVar(&benchProviders, "providers", nil, "Providers to compare (default: all registered)")
	benchmarkCmd.Flags().BoolVar(&benchJSON, "json", false, "Print results as JSON")

	benchmarkCmd.MarkFlagRequired("lang")
}
