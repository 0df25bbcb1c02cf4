package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"gametext/internal/language"
	"gametext/internal/model"
)

// PostgresStore implements Store on a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the schema if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Msg("Connected to PostgreSQL")
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS string_entries (
			table_name   TEXT NOT NULL,
			language     SMALLINT NOT NULL,
			seq          INTEGER NOT NULL,
			label        TEXT NOT NULL,
			text         TEXT NOT NULL,
			speech       TEXT NOT NULL DEFAULT '',
			content_hash TEXT NOT NULL,
			PRIMARY KEY (table_name, language, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_string_entries_label ON string_entries(table_name, label);
	`)
	return err
}

func (s *PostgresStore) SaveTable(ctx context.Context, name string, lang language.ID, entries []model.Entry) (int, error) {
	rows := toRows(entries)
	var changed int

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		previous, err := s.hashes(ctx, tx, name, lang)
		if err != nil {
			return err
		}
		changed = countChanged(rows, previous)

		if _, err := tx.Exec(ctx,
			`DELETE FROM string_entries WHERE table_name = $1 AND language = $2`, name, int16(lang)); err != nil {
			return fmt.Errorf("delete rows: %w", err)
		}

		batch := &pgx.Batch{}
		for _, r := range rows {
			batch.Queue(`
				INSERT INTO string_entries (table_name, language, seq, label, text, speech, content_hash)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				name, int16(lang), r.seq, r.label, r.text, r.speech, r.hash)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save table %s: %w", name, err)
	}

	log.Info().
		Str("table", name).
		Str("language", lang.String()).
		Int("entries", len(rows)).
		Int("changed", changed).
		Msg("Stored string table")
	return changed, nil
}

func (s *PostgresStore) hashes(ctx context.Context, tx pgx.Tx, name string, lang language.ID) (map[string]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT label, content_hash FROM string_entries WHERE table_name = $1 AND language = $2`, name, int16(lang))
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

func (s *PostgresStore) LoadTable(ctx context.Context, name string, lang language.ID) ([]model.Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT label, text, speech FROM string_entries
		WHERE table_name = $1 AND language = $2
		ORDER BY seq`, name, int16(lang))
	if err != nil {
		return nil, fmt.Errorf("query table: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Entry, error) {
		var label, text, speech string
		err := row.Scan(&label, &text, &speech)
		return toEntry(label, text, speech), err
	})
	if err != nil {
		return nil, fmt.Errorf("collect entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, name, lang)
	}
	return entries, nil
}

func (s *PostgresStore) Languages(ctx context.Context, name string) (language.Languages, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT language FROM string_entries WHERE table_name = $1`, name)
	if err != nil {
		return language.None, fmt.Errorf("query languages: %w", err)
	}
	ordinals, err := pgx.CollectRows(rows, pgx.RowTo[int16])
	if err != nil {
		return language.None, fmt.Errorf("collect languages: %w", err)
	}

	var langs language.Languages
	for _, n := range ordinals {
		if id, ok := language.FromOrdinal(int(n)); ok {
			langs.Set(id)
		}
	}
	return langs, nil
}

func (s *PostgresStore) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT table_name FROM string_entries ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect tables: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
