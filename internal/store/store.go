// Package store persists string tables per language in a relational
// database: SQLite for local work, PostgreSQL for a shared catalogue.
package store

import (
	"context"
	"errors"
	"strings"

	"gametext/internal/language"
	"gametext/internal/model"
	"gametext/internal/textutil"
)

// ErrNotFound is returned when a table has no rows for a language.
var ErrNotFound = errors.New("gametext: table not found in store")

// Store defines the string table storage interface.
type Store interface {
	// SaveTable replaces the rows of one table language and returns how many
	// entries are new or changed compared with the stored version.
	SaveTable(ctx context.Context, name string, lang language.ID, entries []model.Entry) (int, error)

	// LoadTable returns the entries of one table language in saved order.
	LoadTable(ctx context.Context, name string, lang language.ID) ([]model.Entry, error)

	// Languages returns the languages stored for a table.
	Languages(ctx context.Context, name string) (language.Languages, error)

	// Tables lists the stored table names.
	Tables(ctx context.Context) ([]string, error)

	Close() error
}

// Open selects a backend from dsn: postgres:// and postgresql:// URLs use
// PostgreSQL, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (Store, error) {
	if IsPostgres(dsn) {
		return NewPostgresStore(ctx, dsn)
	}
	return NewSQLiteStore(dsn)
}

// IsPostgres reports whether dsn names a PostgreSQL database.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// row is one stored entry.
type row struct {
	seq    int
	label  string
	text   string
	speech string
	hash   string
}

func toRows(entries []model.Entry) []row {
	rows := make([]row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, row{
			seq:    i,
			label:  e.Label,
			text:   e.Text.String(),
			speech: e.Speech,
			hash:   textutil.EntryHash(e),
		})
	}
	return rows
}

// countChanged counts rows whose label is new or whose hash differs from
// the previous hash stored for that label.
func countChanged(rows []row, previous map[string]string) int {
	changed := 0
	for _, r := range rows {
		if h, ok := previous[r.label]; !ok || h != r.hash {
			changed++
		}
	}
	return changed
}

func toEntry(label, text, speech string) model.Entry {
	return model.Entry{Label: label, Text: model.NewText(text), Speech: speech}
}
