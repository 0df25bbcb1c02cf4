package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"gametext/internal/parser"
)

// FileEntry represents a discovered string table.
type FileEntry struct {
	Path   string
	Rel    string // path relative to the walk root
	Ext    string
	Format parser.Format
}

// Walker traverses directories looking for string tables.
type Walker struct {
	codecs []parser.Codec
}

// NewWalker creates a Walker for every supported table format. A non-empty
// only restricts the walk to those formats.
func NewWalker(only ...parser.Format) *Walker {
	w := &Walker{}
	for _, c := range parser.Codecs() {
		if len(only) == 0 || slices.Contains(only, c.Format()) {
			w.codecs = append(w.codecs, c)
		}
	}
	return w
}

func (w *Walker) codecFor(ext string) (parser.Codec, bool) {
	for _, c := range w.codecs {
		if c.CanParse(ext) {
			return c, true
		}
	}
	return nil, false
}

// Walk discovers all supported files under the given root directory in
// lexical order.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		codec, ok := w.codecFor(ext)
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		entries = append(entries, FileEntry{
			Path:   path,
			Rel:    rel,
			Ext:    ext,
			Format: codec.Format(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered string tables")
	return entries, nil
}

// TableName derives a store table name from a relative path: slashes
// become dots and the extension is dropped, so "ui/menu.csf" is "ui.menu".
func TableName(rel string) string {
	rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
	return strings.ReplaceAll(rel, "/", ".")
}
