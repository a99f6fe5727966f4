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
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/marczakme/enzo-translator/internal/backup"
)

var backupOutput string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Pack the data directory into a ZIP file",
	Long: `Write every file under the data directory (glossaries, archive, database)
into one ZIP file. The default name carries the current date and time.

Example:
  enzo-translator backup --output /backups/`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		out := backupOutput
		name := backup.FileName(time.Now())
		switch {
		case out == "":
			out = name
		case isDir(out):
			out = filepath.Join(out, name)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}

		count, err := backup.Create(cfg.DataDir, f, out)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			os.Remove(out)
			return fmt.Errorf("backup failed: %w", err)
		}

		logger.Info().Str("file", out).Int("files", count).Msg("backup written")
		fmt.Printf("Backup written: %s (%d files)\n", out, count)
		return nil
	},
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func init() {
	rootCmd.AddCommand(backupCmd)

	backupCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "Output file or directory (default: dated name in the current directory)")
}
