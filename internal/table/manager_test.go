package table_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gametext/internal/language"
	"gametext/internal/model"
	"gametext/internal/parser"
	"gametext/internal/table"
)

func newManager() *table.Manager {
	return table.NewManager(table.Config{Logger: zerolog.Nop()})
}

func entries(pairs ...string) []model.Entry {
	var out []model.Entry
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.Entry{Label: pairs[i], Text: model.NewText(pairs[i+1])})
	}
	return out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewManagerDefaults(t *testing.T) {
	t.Parallel()

	m := newManager()
	assert.Equal(t, language.Unknown, m.ActiveLanguage())
	assert.True(t, m.Options().Has(model.OptimizeMemory))
	assert.True(t, m.Loaded().Empty())

	custom := table.NewManager(table.Config{Logger: zerolog.Nop(), Options: model.CheckLengthOnLoad})
	assert.False(t, custom.Options().Has(model.OptimizeMemory))
}

func TestBinaryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "game.csf")
	want := []model.Entry{
		{Label: "GUI:Start", Text: model.NewText("Start"), Speech: "start.wav"},
		{Label: "GUI:Quit", Text: model.NewText("Quit")},
	}

	src := newManager()
	src.SetActiveLanguage(language.German)
	src.SetEntries(language.German, want)
	require.NoError(t, src.SaveBinary(path))

	dst := newManager()
	require.NoError(t, dst.Load(path, parser.FormatAuto, language.Of(language.US)))
	assert.Equal(t, language.German, dst.ActiveLanguage())
	assert.Equal(t, want, dst.Entries(language.German))
	assert.Empty(t, dst.Entries(language.US))
}

func TestLoadTextScenario(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "scenario.str", "Hello\r\n\"Hi \\\"there\\\"\\n\"\r\nEND\r\nBye\r\n\"Goodbye\"\r\nEND\r\n")

	m := newManager()
	require.NoError(t, m.Load(path, parser.FormatAuto, language.All))
	got := m.Entries(language.Unknown)
	require.Len(t, got, 2)
	assert.Equal(t, "Hello", got[0].Label)
	assert.Equal(t, "Hi \"there\"\n", got[0].Text.String())
	assert.Equal(t, "Goodbye", got[1].Text.String())
	assert.Equal(t, language.Unknown, m.ActiveLanguage())

	french := newManager()
	require.NoError(t, french.LoadText(path, language.Of(language.French)))
	assert.Len(t, french.Entries(language.French), 2)
	assert.Equal(t, language.Unknown, french.ActiveLanguage())
}

func TestTextSaveUsesActiveLanguage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.str")
	m := newManager()
	m.SetEntries(language.Spanish, entries("A", "uno"))
	require.ErrorIs(t, m.SaveText(path), table.ErrNoData)

	m.SetActiveLanguage(language.Spanish)
	require.NoError(t, m.SaveText(path))

	back := newManager()
	require.NoError(t, back.LoadText(path, language.Of(language.Spanish)))
	assert.Equal(t, m.Entries(language.Spanish), back.Entries(language.Spanish))
}

func TestMultiTextRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "all.multistr")
	src := newManager()
	src.SetEntries(language.US, entries("GUI:Start", "Start", "GUI:Quit", "Quit"))
	src.SetEntries(language.German, entries("GUI:Start", "Starten"))
	src.SetEntries(language.UK, entries("GUI:Start", "Start"))
	require.NoError(t, src.Save(path, parser.FormatAuto, language.All))

	dst := newManager()
	require.NoError(t, dst.LoadMultiText(path, language.All))
	assert.Equal(t, language.Of(language.US, language.German), dst.Loaded())
	assert.Equal(t, src.Entries(language.US), dst.Entries(language.US))
	assert.Equal(t, src.Entries(language.German), dst.Entries(language.German))

	germanOnly := newManager()
	germanOnly.SetEntries(language.French, entries("KEEP", "garder"))
	require.NoError(t, germanOnly.LoadMultiText(path, language.Of(language.German)))
	assert.Equal(t, language.Of(language.German, language.French), germanOnly.Loaded())
}

func TestPathErrors(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.SetActiveLanguage(language.US)
	m.SetEntries(language.US, entries("A", "a"))

	require.ErrorIs(t, m.Load("", parser.FormatAuto, language.All), table.ErrEmptyPath)
	require.ErrorIs(t, m.Save("", parser.FormatAuto, language.All), table.ErrEmptyPath)

	missing := filepath.Join(t.TempDir(), "missing.csf")
	require.ErrorIs(t, m.Load(missing, parser.FormatAuto, language.All), table.ErrOpen)

	noDir := filepath.Join(t.TempDir(), "no", "such", "dir.csf")
	require.ErrorIs(t, m.Save(noDir, parser.FormatAuto, language.All), table.ErrCreate)

	empty := newManager()
	require.ErrorIs(t, empty.Save(filepath.Join(t.TempDir(), "x.multistr"), parser.FormatAuto, language.All), table.ErrNoData)
}

func TestFailedLoadLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.SetActiveLanguage(language.Italian)
	before := entries("A", "a", "B", "b")
	m.SetEntries(language.Italian, before)

	bad := writeFile(t, "bad.csf", strings.Repeat("x", 64))
	require.ErrorIs(t, m.Load(bad, parser.FormatAuto, language.All), parser.ErrFormat)

	truncated := writeFile(t, "short.csf", " FSC")
	require.ErrorIs(t, m.Load(truncated, parser.FormatAuto, language.All), parser.ErrTruncated)

	comments := writeFile(t, "comments.str", "// nothing here\r\n")
	require.ErrorIs(t, m.Load(comments, parser.FormatAuto, language.Of(language.Italian)), table.ErrNoEntries)

	assert.Equal(t, language.Italian, m.ActiveLanguage())
	assert.Equal(t, before, m.Entries(language.Italian))
	assert.Equal(t, language.Of(language.Italian), m.Loaded())
}

func TestMergeOverwrite(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.SetEntries(language.US, entries("A", "a", "B", "b"))
	other := newManager()
	other.SetEntries(language.US, []model.Entry{
		{Label: "D", Text: model.NewText("d")},
		{Label: "b", Text: model.NewText("B2"), Speech: "b.wav"},
		{Label: "C", Text: model.NewText("c")},
	})
	other.SetEntries(language.German, entries("X", "x"))

	m.MergeOverwrite(other, language.Of(language.US))

	got := m.Entries(language.US)
	require.Len(t, got, 4)
	assert.Equal(t, []string{"A", "B", "D", "C"}, []string{got[0].Label, got[1].Label, got[2].Label, got[3].Label})
	assert.Equal(t, "B2", got[1].Text.String())
	assert.Equal(t, "b.wav", got[1].Speech)
	assert.Empty(t, m.Entries(language.German))
}

func TestPackUnpackIdempotent(t *testing.T) {
	t.Parallel()

	m := newManager()
	us := entries("GUI:Start", "Start", "GUI:Quit", "Quit")
	de := entries("gui:quit", "Beenden", "GUI:Extra", "Extra")
	m.SetEntries(language.US, us)
	m.SetEntries(language.German, de)

	multi := m.Pack(language.All)
	require.Len(t, multi, 3)
	assert.Equal(t, "GUI:Quit", multi[1].Label)
	assert.Equal(t, language.Of(language.US, language.German), multi[1].Present)
	assert.Equal(t, "Beenden", multi[1].Text[language.German].String())
	assert.Equal(t, language.Of(language.German), multi[2].Present)

	m.Unpack(multi, language.All)
	assert.Equal(t, us, m.Entries(language.US))
	require.Len(t, m.Entries(language.German), 2)
	assert.Equal(t, "GUI:Quit", m.Entries(language.German)[0].Label)
	assert.Equal(t, "Beenden", m.Entries(language.German)[0].Text.String())

	again := m.Pack(language.All)
	assert.Equal(t, multi, again)
}

func TestPackDuplicatesWithinLanguage(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.SetEntries(language.US, entries("A", "first", "a", "second"))

	multi := m.Pack(language.Of(language.US))
	require.Len(t, multi, 1)
	assert.Equal(t, "A", multi[0].Label)
	assert.Equal(t, "second", multi[0].Text[language.US].String())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	var fired []table.LengthReport
	m := table.NewManager(table.Config{
		Logger: zerolog.Nop(),
		Assert: func(r table.LengthReport) { fired = append(fired, r) },
	})
	m.SetEntries(language.US, []model.Entry{
		{Label: "OK", Text: model.NewText("fine"), Speech: "s.wav"},
	})
	m.SetEntries(language.German, []model.Entry{
		{Label: strings.Repeat("L", model.MaxLabelLen), Text: model.NewText("é")},
	})

	reports := m.Validate(language.All)
	require.Len(t, reports, 2)
	assert.Equal(t, table.LengthReport{
		Language: language.US, Entries: 1, MaxLabel: 2, MaxTextBytes: 4, MaxTextUnits: 4, MaxSpeech: 5,
	}, reports[0])
	assert.False(t, reports[0].Exceeded())
	assert.True(t, reports[1].Exceeded())
	assert.Equal(t, 2, reports[1].MaxTextBytes)

	require.Len(t, fired, 1)
	assert.Equal(t, language.German, fired[0].Language)
}

func TestCheckLengthOnLoad(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "long.str", strings.Repeat("L", model.MaxLabelLen+1)+"\r\n\"x\"\r\nEND\r\n")
	fired := 0
	m := table.NewManager(table.Config{
		Logger:  zerolog.Nop(),
		Options: model.CheckLengthOnLoad,
		Assert:  func(table.LengthReport) { fired++ },
	})
	require.NoError(t, m.LoadText(path, language.Of(language.US)))
	assert.Equal(t, 1, fired)
}

func TestSlotManagement(t *testing.T) {
	t.Parallel()

	m := newManager()
	m.SetEntries(language.US, entries("A", "a"))
	m.SetEntries(language.Korean, entries("B", "b"))

	assert.True(t, m.AnyLoaded(language.Of(language.US, language.French)))
	assert.False(t, m.AllLoaded(language.Of(language.US, language.French)))
	assert.True(t, m.AllLoaded(language.Of(language.US, language.Korean)))
	assert.False(t, m.AnyLoaded(language.None))
	assert.False(t, m.AllLoaded(language.None))

	m.Swap(language.US, language.French)
	assert.Empty(t, m.Entries(language.US))
	assert.Equal(t, "A", m.Entries(language.French)[0].Label)

	m.Unload(language.Of(language.French))
	assert.Equal(t, language.Of(language.Korean), m.Loaded())

	m.SetActiveLanguage(language.Korean)
	m.Reset()
	assert.True(t, m.Loaded().Empty())
	assert.Equal(t, language.Unknown, m.ActiveLanguage())
}
