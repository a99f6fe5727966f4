package glossary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/marczakme/enzo-translator/internal"
)

// CSVStore keeps one glossary_<lang>.csv file per language in dir.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{dir: dir}
}

// Path is the file holding the glossary for languageCode.
func (s *CSVStore) Path(languageCode string) string {
	return filepath.Join(s.dir, fmt.Sprintf("glossary_%s.csv", languageCode))
}

// Load returns the normalized glossary, or an empty one when the file does
// not exist yet.
func (s *CSVStore) Load(_ context.Context, languageCode string) ([]internal.GlossaryEntry, error) {
	f, err := os.Open(s.Path(languageCode))
	if errors.Is(err, fs.ErrNotExist) {
		return []internal.GlossaryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open glossary: %w", err)
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path(languageCode), err)
	}
	return entries, nil
}

// Save normalizes and writes entries, replacing the file atomically.
func (s *CSVStore) Save(_ context.Context, languageCode string, entries []internal.GlossaryEntry) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".glossary_%s-*.csv", languageCode))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, Normalize(entries)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(languageCode)); err != nil {
		return fmt.Errorf("failed to replace glossary: %w", err)
	}
	return nil
}

// ModTime reports when the glossary file last changed; ok is false when it
// does not exist.
func (s *CSVStore) ModTime(_ context.Context, languageCode string) (time.Time, bool, error) {
	info, err := os.Stat(s.Path(languageCode))
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}
