// Package archive keeps translated documents as plain-text files, one
// directory per language, with a CSV index per language.
package archive

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marczakme/enzo-translator/internal"
)

// IndexColumns is the header of every index_<lang>.csv file.
var IndexColumns = []string{"datetime", "title", "filename"}

const maxNameAttempts = 100

// FileStore lays records out as <dir>/<lang>/<file>.txt and indexes them in
// <dir>/index_<lang>.csv.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir is the root directory of the archive.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) indexPath(languageCode string) string {
	return filepath.Join(s.dir, fmt.Sprintf("index_%s.csv", languageCode))
}

// Append writes the rendered record and adds it to the language index. A
// missing ID or CreatedAt is filled in.
func (s *FileStore) Append(_ context.Context, languageCode string, rec internal.ArchiveRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.LanguageCode = languageCode

	langDir := filepath.Join(s.dir, languageCode)
	if err := os.MkdirAll(langDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	f, name, err := createUnique(langDir, FileName(rec))
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(f, Render(rec)); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write record: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close record: %w", err)
	}

	entry := internal.IndexEntry{
		Datetime: rec.CreatedAt.Format(DatetimeLayout),
		Title:    rec.Request.TitleSource,
		Filename: name,
	}
	if err := s.appendIndex(languageCode, entry); err != nil {
		return "", err
	}
	return name, nil
}

func createUnique(dir, name string) (*os.File, string, error) {
	base := strings.TrimSuffix(name, ".txt")
	candidate := name
	for i := 2; i <= maxNameAttempts; i++ {
		f, err := os.OpenFile(filepath.Join(dir, candidate), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("failed to create record file: %w", err)
		}
		candidate = fmt.Sprintf("%s_%d.txt", base, i)
	}
	return nil, "", fmt.Errorf("failed to create record file: too many records named %s", name)
}

func (s *FileStore) appendIndex(languageCode string, entry internal.IndexEntry) error {
	path := s.indexPath(languageCode)
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(IndexColumns); err != nil {
			return fmt.Errorf("failed to write index header: %w", err)
		}
	}
	if err := w.Write([]string{entry.Datetime, entry.Title, entry.Filename}); err != nil {
		return fmt.Errorf("failed to write index row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Index lists the records of one language, newest first. A language
// without an index has no records.
func (s *FileStore) Index(_ context.Context, languageCode string) ([]internal.IndexEntry, error) {
	f, err := os.Open(s.indexPath(languageCode))
	if errors.Is(err, fs.ErrNotExist) {
		return []internal.IndexEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}
	defer f.Close()

	entries, err := ReadIndex(f)
	if err != nil {
		return nil, err
	}
	SortNewestFirst(entries)
	return entries, nil
}

// ReadIndex parses an index file. The title column is also accepted under
// the name title_pl.
func ReadIndex(r io.Reader) ([]internal.IndexEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []internal.IndexEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "title_pl" {
			name = "title"
		}
		col[name] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	entries := []internal.IndexEntry{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read index row: %w", err)
		}
		entries = append(entries, internal.IndexEntry{
			Datetime: get(rec, "datetime"),
			Title:    get(rec, "title"),
			Filename: get(rec, "filename"),
		})
	}
	return entries, nil
}

// SortNewestFirst orders entries by datetime, newest first.
func SortNewestFirst(entries []internal.IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Datetime > entries[j].Datetime
	})
}

// Read returns the stored text of one record.
func (s *FileStore) Read(_ context.Context, languageCode, filename string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("invalid archive file name %q", filename)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, languageCode, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s/%s: %w", languageCode, filename, internal.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read record: %w", err)
	}
	return string(data), nil
}
