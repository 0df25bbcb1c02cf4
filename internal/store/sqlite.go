package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"gametext/internal/language"
	"gametext/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Debug().Str("path", dbPath).Msg("Opened SQLite store")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS string_entries (
		table_name   TEXT NOT NULL,
		language     INTEGER NOT NULL,
		seq          INTEGER NOT NULL,
		label        TEXT NOT NULL,
		text         TEXT NOT NULL,
		speech       TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL,
		PRIMARY KEY (table_name, language, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_string_entries_label ON string_entries(table_name, label);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveTable(ctx context.Context, name string, lang language.ID, entries []model.Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	previous, err := s.hashes(ctx, tx, name, lang)
	if err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM string_entries WHERE table_name = ? AND language = ?`, name, int(lang)); err != nil {
		return 0, fmt.Errorf("delete rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO string_entries (table_name, language, seq, label, text, speech, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := toRows(entries)
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, name, int(lang), r.seq, r.label, r.text, r.speech, r.hash); err != nil {
			return 0, fmt.Errorf("insert %q: %w", r.label, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	changed := countChanged(rows, previous)
	log.Info().
		Str("table", name).
		Str("language", lang.String()).
		Int("entries", len(rows)).
		Int("changed", changed).
		Msg("Stored string table")
	return changed, nil
}

func (s *SQLiteStore) hashes(ctx context.Context, tx *sql.Tx, name string, lang language.ID) (map[string]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT label, content_hash FROM string_entries WHERE table_name = ? AND language = ?`, name, int(lang))
	if err != nil {
		return nil, fmt.Errorf("query hashes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var label, hash string
		if err := rows.Scan(&label, &hash); err != nil {
			return nil, fmt.Errorf("scan hash: %w", err)
		}
		out[label] = hash
	}
	return out, rows.Err()
}

func (s *SQLiteStore) LoadTable(ctx context.Context, name string, lang language.ID) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label, text, speech FROM string_entries
		WHERE table_name = ? AND language = ?
		ORDER BY seq`, name, int(lang))
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var label, text, speech string
		if err := rows.Scan(&label, &text, &speech); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, toEntry(label, text, speech))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, lang)
	}
	return entries, nil
}

func (s *SQLiteStore) Languages(ctx context.Context, name string) (language.Languages, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT language FROM string_entries WHERE table_name = ?`, name)
	if err != nil {
		return language.None, fmt.Errorf("query languages: %w", err)
	}
	defer rows.Close()

	var langs language.Languages
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return language.None, fmt.Errorf("scan language: %w", err)
		}
		if id, ok := language.FromOrdinal(n); ok {
			langs.Set(id)
		}
	}
	return langs, rows.Err()
}

func (s *SQLiteStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT table_name FROM string_entries ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
