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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marczakme/enzo-translator/internal/config"
	"github.com/marczakme/enzo-translator/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation workflow over HTTP",
	Long: `Start a JSON API exposing translation, consistency checks, glossaries and the
archive under /api/v1. The server stops gracefully on SIGINT or SIGTERM.

Example:
  enzo-translator serve --addr :8080 --storage sqlite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := httpapi.NewServer(httpapi.Deps{
			Workflow:   a.workflow,
			Glossaries: a.stores.glossaries,
			Archive:    a.stores.archive,
			Languages:  a.cfg.Languages,
			Label:      config.Label,
		}, a.logger, httpapi.Options{
			Addr: a.cfg.HTTP.Addr,
		})
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Listen address")
	_ = settings.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}
