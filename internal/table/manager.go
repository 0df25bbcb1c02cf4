// Package table owns the per-language entry collections of a string table
// and moves them between memory and the on-disk formats.
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"

	"gametext/internal/language"
	"gametext/internal/model"
	"gametext/internal/parser"
)

var (
	ErrEmptyPath = errors.New("gametext: empty path")
	ErrOpen      = errors.New("gametext: cannot open table")
	ErrCreate    = errors.New("gametext: cannot create table")
	ErrNoData    = errors.New("gametext: no entries to save")
	ErrNoEntries = errors.New("gametext: table holds no usable entries")
)

// Config configures a Manager.
type Config struct {
	Logger zerolog.Logger
	// Options defaults to OptimizeMemory when zero.
	Options model.Options
	// Encoding of text tables; nil selects UTF-8.
	Encoding encoding.Encoding
	// Assert is called for every language whose entries exceed a length cap.
	// Nil ignores violations beyond the log.
	Assert func(LengthReport)
}

// Manager holds one entry collection per language slot.
type Manager struct {
	log     zerolog.Logger
	options model.Options
	enc     encoding.Encoding
	assert  func(LengthReport)

	tables [language.Count][]model.Entry
	active language.ID
}

// NewManager creates an empty Manager whose active language is Unknown.
func NewManager(cfg Config) *Manager {
	opts := cfg.Options
	if opts == model.NoOptions {
		opts = model.OptimizeMemory
	}
	return &Manager{
		log:     cfg.Logger,
		options: opts,
		enc:     cfg.Encoding,
		assert:  cfg.Assert,
		active:  language.Unknown,
	}
}

func (m *Manager) Options() model.Options { return m.options }

func (m *Manager) SetOptions(o model.Options) { m.options = o }

func (m *Manager) ActiveLanguage() language.ID { return m.active }

func (m *Manager) SetActiveLanguage(id language.ID) {
	if id.Valid() {
		m.active = id
	}
}

// Entries returns the collection of lang. The slice is shared with the
// Manager.
func (m *Manager) Entries(lang language.ID) []model.Entry {
	if !lang.Valid() {
		return nil
	}
	return m.tables[lang]
}

// SetEntries replaces the collection of lang.
func (m *Manager) SetEntries(lang language.ID, entries []model.Entry) {
	if lang.Valid() {
		m.tables[lang] = entries
	}
}

// Loaded returns the languages that currently hold entries.
func (m *Manager) Loaded() language.Languages {
	var l language.Languages
	for i := range m.tables {
		if len(m.tables[i]) > 0 {
			l.Set(language.ID(i))
		}
	}
	return l
}

// AnyLoaded reports whether at least one language of langs holds entries.
func (m *Manager) AnyLoaded(langs language.Languages) bool {
	loaded := false
	for _, id := range langs.IDs() {
		loaded = loaded || len(m.tables[id]) > 0
	}
	return loaded
}

// AllLoaded reports whether every language of langs holds entries. An empty
// selector is never loaded.
func (m *Manager) AllLoaded(langs language.Languages) bool {
	ids := langs.IDs()
	all := len(ids) > 0
	for _, id := range ids {
		all = all && len(m.tables[id]) > 0
	}
	return all
}

// Unload clears the collections of langs.
func (m *Manager) Unload(langs language.Languages) {
	for _, id := range langs.IDs() {
		m.tables[id] = nil
	}
}

// Reset clears every collection and forgets the active language.
func (m *Manager) Reset() {
	m.tables = [language.Count][]model.Entry{}
	m.active = language.Unknown
}

// Swap exchanges the collections of a and b.
func (m *Manager) Swap(a, b language.ID) {
	if !a.Valid() || !b.Valid() {
		return
	}
	m.tables[a], m.tables[b] = m.tables[b], m.tables[a]
}

// Load reads the table at path into the languages of langs. Binary tables
// carry their own language, which becomes the active language. Single-language
// text tables go into the only language of langs, or the active language when
// langs selects several. On failure the Manager is left unchanged.
func (m *Manager) Load(path string, format parser.Format, langs language.Languages) error {
	if path == "" {
		return ErrEmptyPath
	}
	format = format.Resolve(path)
	usable := language.FilterUsable(langs)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer f.Close()

	m.log.Debug().Str("path", path).Str("format", format.String()).Str("languages", usable.String()).Msg("Loading string table")

	updated, err := m.load(bufio.NewReader(f), format, usable)
	if err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("Failed to load string table")
		return fmt.Errorf("load %s: %w", path, err)
	}

	m.log.Info().Str("path", path).Str("format", format.String()).Str("languages", updated.String()).Msg("Loaded string table")
	if m.options.Has(model.CheckLengthOnLoad) {
		m.Validate(updated)
	}
	return nil
}

func (m *Manager) load(r io.Reader, format parser.Format, usable language.Languages) (language.Languages, error) {
	switch format {
	case parser.FormatTextSingle:
		target := m.active
		if usable.Count() == 1 {
			target, _ = usable.First()
		}
		entries, err := parser.NewTextCodec(m.log, m.options, m.enc).Read(r)
		if err != nil {
			return language.None, err
		}
		if len(entries) == 0 {
			return language.None, ErrNoEntries
		}
		m.tables[target] = entries
		return language.Of(target), nil

	case parser.FormatTextMulti:
		multi, err := parser.NewMultiTextCodec(m.log, m.options, m.enc).Read(r, usable)
		if err != nil {
			return language.None, err
		}
		parsed := unpack(multi, usable, m.options.Has(model.OptimizeMemory))
		var updated language.Languages
		for _, id := range usable.IDs() {
			if len(parsed[id]) > 0 {
				m.tables[id] = parsed[id]
				updated.Set(id)
			}
		}
		if updated.Empty() {
			return language.None, ErrNoEntries
		}
		return updated, nil

	default:
		table, err := parser.NewBinaryCodec(m.log).Read(r)
		if err != nil {
			return language.None, err
		}
		m.tables[table.Language] = table.Entries
		m.active = table.Language
		return language.Of(table.Language), nil
	}
}

// Save writes the table to path. Multi-language text tables receive the
// usable languages of langs; the other formats receive the active language.
func (m *Manager) Save(path string, format parser.Format, langs language.Languages) error {
	if path == "" {
		return ErrEmptyPath
	}
	format = format.Resolve(path)

	targets := language.Of(m.active)
	if format == parser.FormatTextMulti {
		targets = language.FilterUsable(langs)
	}
	if !m.AnyLoaded(targets) {
		return fmt.Errorf("save %s: %w", path, ErrNoData)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrCreate, path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	n, err := m.save(w, format, targets)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Close()
	}
	if err != nil {
		m.log.Error().Err(err).Str("path", path).Msg("Failed to save string table")
		return fmt.Errorf("save %s: %w", path, err)
	}

	m.log.Info().Str("path", path).Str("format", format.String()).Str("languages", targets.String()).Int("entries", n).Msg("Saved string table")
	if m.options.Has(model.CheckLengthOnSave) {
		m.Validate(targets)
	}
	return nil
}

func (m *Manager) save(w io.Writer, format parser.Format, targets language.Languages) (int, error) {
	switch format {
	case parser.FormatTextSingle:
		return parser.NewTextCodec(m.log, m.options, m.enc).Write(w, m.tables[m.active])
	case parser.FormatTextMulti:
		return parser.NewMultiTextCodec(m.log, m.options, m.enc).Write(w, m.Pack(targets), targets)
	default:
		return parser.NewBinaryCodec(m.log).Write(w, m.active, m.tables[m.active])
	}
}

func (m *Manager) LoadBinary(path string) error {
	return m.Load(path, parser.FormatBinary, language.All)
}

func (m *Manager) LoadText(path string, langs language.Languages) error {
	return m.Load(path, parser.FormatTextSingle, langs)
}

func (m *Manager) LoadMultiText(path string, langs language.Languages) error {
	return m.Load(path, parser.FormatTextMulti, langs)
}

func (m *Manager) SaveBinary(path string) error {
	return m.Save(path, parser.FormatBinary, language.None)
}

func (m *Manager) SaveText(path string) error {
	return m.Save(path, parser.FormatTextSingle, language.None)
}

func (m *Manager) SaveMultiText(path string, langs language.Languages) error {
	return m.Save(path, parser.FormatTextMulti, langs)
}
