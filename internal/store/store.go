// Package store is the SQLite backend for glossaries and the translation
// archive.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/marczakme/enzo-translator/internal"
	"github.com/marczakme/enzo-translator/internal/archive"
	"github.com/marczakme/enzo-translator/internal/glossary"
)

const maxNameAttempts = 100

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS glossary (
		language TEXT NOT NULL,
		position INTEGER NOT NULL,
		term_pl TEXT NOT NULL,
		term_target TEXT NOT NULL DEFAULT '',
		locked BOOLEAN NOT NULL DEFAULT FALSE,
		notes TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (language, term_pl)
	);

	-- glossary_languages records when each language's glossary was last saved
	CREATE TABLE IF NOT EXISTS glossary_languages (
		language TEXT PRIMARY KEY,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_records (
		id TEXT PRIMARY KEY,
		language TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		title TEXT NOT NULL,
		filename TEXT NOT NULL,
		document TEXT NOT NULL,
		request_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		UNIQUE(language, filename)
	);

	CREATE INDEX IF NOT EXISTS idx_glossary_position ON glossary(language, position);
	CREATE INDEX IF NOT EXISTS idx_archive_language ON archive_records(language, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the glossary of one language in saved order.
func (s *Store) Load(ctx context.Context, languageCode string) ([]internal.GlossaryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT term_pl, term_target, locked, notes FROM glossary WHERE language = ? ORDER BY position`,
		languageCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []internal.GlossaryEntry{}
	for rows.Next() {
		var e internal.GlossaryEntry
		if err := rows.Scan(&e.TermSource, &e.TermTarget, &e.Locked, &e.Notes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the glossary of one language.
func (s *Store) Save(ctx context.Context, languageCode string, entries []internal.GlossaryEntry) error {
	cleaned := make([]internal.GlossaryEntry, len(entries))
	for i, e := range entries {
		e.TermSource = normalizeText(e.TermSource)
		e.TermTarget = normalizeText(e.TermTarget)
		cleaned[i] = e
	}
	cleaned = glossary.Normalize(cleaned)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM glossary WHERE language = ?`, languageCode); err != nil {
		return fmt.Errorf("failed to clear glossary: %w", err)
	}
	for i, e := range cleaned {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO glossary (language, position, term_pl, term_target, locked, notes) VALUES (?, ?, ?, ?, ?, ?)`,
			languageCode, i, e.TermSource, e.TermTarget, e.Locked, e.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert %q: %w", e.TermSource, err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO glossary_languages (language, updated_at) VALUES (?, ?)`,
		languageCode, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to touch glossary: %w", err)
	}

	return tx.Commit()
}

// ModTime reports when the glossary of languageCode was last saved.
func (s *Store) ModTime(ctx context.Context, languageCode string) (time.Time, bool, error) {
	var nanos int64
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM glossary_languages WHERE language = ?`, languageCode).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.Unix(0, nanos), true, nil
}

// Append stores a record under the same file name the file archive would
// use, so both backends list identical names.
func (s *Store) Append(ctx context.Context, languageCode string, rec internal.ArchiveRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.LanguageCode = languageCode

	reqJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}
	resJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	name, err := uniqueName(ctx, tx, languageCode, archive.FileName(rec))
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO archive_records (id, language, created_at, title, filename, document, request_json, result_json) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, languageCode, rec.CreatedAt.UnixNano(), rec.Request.TitleSource, name, archive.Render(rec), string(reqJSON), string(resJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return name, nil
}

func uniqueName(ctx context.Context, tx *sql.Tx, languageCode, name string) (string, error) {
	base := strings.TrimSuffix(name, ".txt")
	candidate := name
	for i := 2; i <= maxNameAttempts; i++ {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM archive_records WHERE language = ? AND filename = ?`,
			languageCode, candidate).Scan(&n)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d.txt", base, i)
	}
	return "", fmt.Errorf("too many records named %s", name)
}

// Index lists archived records of one language, newest first.
func (s *Store) Index(ctx context.Context, languageCode string) ([]internal.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at, title, filename FROM archive_records WHERE language = ? ORDER BY created_at DESC, filename DESC`,
		languageCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []internal.IndexEntry{}
	for rows.Next() {
		var nanos int64
		var e internal.IndexEntry
		if err := rows.Scan(&nanos, &e.Title, &e.Filename); err != nil {
			return nil, err
		}
		e.Datetime = time.Unix(0, nanos).Format(archive.DatetimeLayout)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Read returns the rendered document of one archived record.
func (s *Store) Read(ctx context.Context, languageCode, filename string) (string, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM archive_records WHERE language = ? AND filename = ?`,
		languageCode, filename).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s/%s: %w", languageCode, filename, internal.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return doc, nil
}

// Record returns the structured form of one archived record.
func (s *Store) Record(ctx context.Context, languageCode, filename string) (internal.ArchiveRecord, error) {
	var (
		rec              internal.ArchiveRecord
		nanos            int64
		reqJSON, resJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, request_json, result_json FROM archive_records WHERE language = ? AND filename = ?`,
		languageCode, filename).Scan(&rec.ID, &nanos, &reqJSON, &resJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%s/%s: %w", languageCode, filename, internal.ErrNotFound)
	}
	if err != nil {
		return rec, err
	}

	rec.CreatedAt = time.Unix(0, nanos)
	rec.LanguageCode = languageCode
	if err := json.Unmarshal([]byte(reqJSON), &rec.Request); err != nil {
		return rec, fmt.Errorf("failed to decode request: %w", err)
	}
	if err := json.Unmarshal([]byte(resJSON), &rec.Result); err != nil {
		return rec, fmt.Errorf("failed to decode result: %w", err)
	}
	return rec, nil
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// so equal terms share one primary key.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
