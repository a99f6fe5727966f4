// Package backup packs the data directory into a single ZIP file.
package backup

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const fileNameLayout = "2006-01-02_15-04-05"

// ErrNoData is returned when the data directory does not exist.
var ErrNoData = errors.New("data directory does not exist")

// FileName is the name of a backup taken at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("enzo-translator-backup-%s.zip", now.Format(fileNameLayout))
}

// Create writes every regular file under dataDir into a deflated ZIP on w,
// with paths relative to dataDir. It returns the number of files written.
// skip, when not empty, is an absolute path left out of the archive.
func Create(dataDir string, w io.Writer, skip ...string) (int, error) {
	info, err := os.Stat(dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, ErrNoData
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", dataDir)
	}

	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		if abs, err := filepath.Abs(p); err == nil {
			skipped[abs] = struct{}{}
		}
	}

	zw := zip.NewWriter(w)
	count := 0
	err = filepath.WalkDir(dataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil {
			if _, ok := skipped[abs]; ok {
				return nil
			}
		}

		rel, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel)); err != nil {
			return fmt.Errorf("failed to add %s: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		zw.Close()
		return count, err
	}
	if err := zw.Close(); err != nil {
		return count, fmt.Errorf("failed to finish zip: %w", err)
	}
	return count, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}
