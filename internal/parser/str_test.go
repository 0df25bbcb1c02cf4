package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gametext/internal/language"
	"gametext/internal/model"
)

func TestTextReadScenario(t *testing.T) {
	t.Parallel()

	input := "Hello\r\n\"Hi \\\"there\\\"\\n\"\r\nEND\r\nBye\r\n\"Goodbye\"\r\nEND\r\n"
	entries, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "Hello", entries[0].Label)
	assert.Equal(t, "Hi \"there\"\n", entries[0].Text.String())
	assert.Equal(t, "Bye", entries[1].Label)
	assert.Equal(t, "Goodbye", entries[1].Text.String())
}

func TestTextReadSpeechCommentsAndCase(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"// header comment",
		`\\ another comment`,
		"",
		"  GUI:Start  ",
		`"Start"`,
		"start.wav",
		"end",
		"GUI:Tagged",
		`US: "Tagged"`,
		"END",
	}, "\n")
	entries, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "GUI:Start", entries[0].Label)
	assert.Equal(t, "Start", entries[0].Text.String())
	assert.Equal(t, "start.wav", entries[0].Speech)
	assert.Equal(t, "Tagged", entries[1].Text.String())
}

func TestTextReadContinuationLines(t *testing.T) {
	t.Parallel()

	input := "LONG\r\n\"first\r\nsecond\\n\r\nthird\"\r\nEND\r\n"
	entries, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "first second\nthird", entries[0].Text.String())
}

func TestTextReadPreTextLine(t *testing.T) {
	t.Parallel()

	input := "GUI:Start\r\n\"\r\n\"Hello\"\r\nEND\r\nGUI:Tagged\r\nUS: \"\r\n\"two\r\nlines\"\r\nEND\r\n"
	entries, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Hello", entries[0].Text.String())
	assert.Equal(t, "two lines", entries[1].Text.String())

	multi := "GUI:Start\r\nUS: \"\r\n\"Hello\"\r\nDE: \"Hallo\"\r\nEND\r\n"
	all, err := NewMultiTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(multi), language.All)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Hello", all[0].Text[language.US].String())
	assert.Equal(t, "Hallo", all[0].Text[language.German].String())
}

func TestTextReadDropsMalformedRecords(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"BROKEN",
		`"never closed`,
		"END",
		"GOOD",
		`"ok"`,
		"END",
		"OPEN",
		`"dangling"`,
	}, "\r\n")
	entries, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GOOD", entries[0].Label)
}

func TestTextReadSpaces(t *testing.T) {
	t.Parallel()

	input := "SPACES\r\n\"a  b\tc\"\r\nEND\r\n"

	collapsed, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, collapsed, 1)
	assert.Equal(t, "a b c", collapsed[0].Text.String())

	kept, err := NewTextCodec(zerolog.Nop(), model.KeepObsoleteSpacesOnLoad, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "a  b c", kept[0].Text.String())
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		{Label: "GUI:Start", Text: model.NewText("Start"), Speech: "start.wav"},
		{Label: "GUI:Quote", Text: model.NewText(`Say "hi" \ bye`)},
		{Label: "GUI:Lines", Text: model.NewText("one\ntwo\n")},
		{Label: "GUI:Tab", Text: model.NewText("a\tb")},
		{Label: "GUI:Empty"},
		{Label: "GUI:Unicode", Text: model.NewText("Größe 世界")},
	}

	for _, opts := range []model.Options{model.NoOptions, model.WriteExtraLineFeedOnSave} {
		t.Run(opts.String(), func(t *testing.T) {
			t.Parallel()
			codec := NewTextCodec(zerolog.Nop(), opts, nil)
			var buf bytes.Buffer
			n, err := codec.Write(&buf, entries)
			require.NoError(t, err)
			require.Equal(t, len(entries), n)

			got, err := codec.Read(&buf)
			require.NoError(t, err)
			require.Len(t, got, len(entries))
			for i, want := range entries {
				assert.Equal(t, want.Label, got[i].Label)
				assert.Equal(t, want.Text.String(), got[i].Text.String(), want.Label)
				assert.Equal(t, want.Speech, got[i].Speech)
			}
		})
	}
}

func TestTextWriteLayout(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	_, err := NewTextCodec(zerolog.Nop(), model.WriteExtraLineFeedOnSave, nil).Write(&buf, []model.Entry{
		{Label: "A", Text: model.NewText("x\ny"), Speech: "a.wav"},
		{Label: "", Text: model.NewText("skipped")},
	})
	require.NoError(t, err)
	assert.Equal(t, "A\r\n\"x\\n\r\ny\"\r\na.wav\r\nEND\r\n\r\n", buf.String())
}

func TestTextEncoding(t *testing.T) {
	t.Parallel()

	enc, err := LookupEncoding("windows-1252")
	require.NoError(t, err)
	codec := NewTextCodec(zerolog.Nop(), model.NoOptions, enc)

	var buf bytes.Buffer
	_, err = codec.Write(&buf, []model.Entry{{Label: "CAFE", Text: model.NewText("Café")}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Caf\xe9")

	got, err := codec.Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Café", got[0].Text.String())
}

func TestTextReadSkipsByteOrderMark(t *testing.T) {
	t.Parallel()

	input := "\xef\xbb\xbfBOM\r\n\"x\"\r\nEND\r\n"
	got, err := NewTextCodec(zerolog.Nop(), model.NoOptions, nil).Read(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BOM", got[0].Label)
}

func TestMultiTextReadSelector(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"GUI:Start",
		`US: "Start"`,
		"US: start.wav",
		`DE: "Starten"`,
		`XX: "ignored"`,
		`"untagged"`,
		"END",
		"GUI:GermanOnly",
		`DE: "Nur Deutsch"`,
		"END",
	}, "\r\n")

	codec := NewMultiTextCodec(zerolog.Nop(), model.NoOptions, nil)

	all, err := codec.Read(strings.NewReader(input), language.All)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, language.Of(language.US, language.German), all[0].Present)
	assert.Equal(t, "Start", all[0].Text[language.US].String())
	assert.Equal(t, "start.wav", all[0].Speech[language.US])
	assert.Equal(t, "Starten", all[0].Text[language.German].String())

	usOnly, err := codec.Read(strings.NewReader(input), language.Of(language.US))
	require.NoError(t, err)
	require.Len(t, usOnly, 1)
	assert.Equal(t, language.Of(language.US), usOnly[0].Present)
	assert.Nil(t, usOnly[0].Text[language.German])
}

func TestMultiTextRoundTrip(t *testing.T) {
	t.Parallel()

	var start, only model.MultiEntry
	start.Label = "GUI:Start"
	start.Put(language.US, model.NewText("Start\n\"now\""), "start.wav")
	start.Put(language.French, model.NewText("Démarrer"), "")
	start.Put(language.UK, model.NewText("dropped"), "")
	only.Label = "GUI:UKOnly"
	only.Put(language.UK, model.NewText("never written"), "")

	codec := NewMultiTextCodec(zerolog.Nop(), model.WriteExtraLineFeedOnSave, nil)
	var buf bytes.Buffer
	n, err := codec.Write(&buf, []model.MultiEntry{start, only}, language.All)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotContains(t, buf.String(), "XX:")

	got, err := codec.Read(&buf, language.All)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "GUI:Start", got[0].Label)
	assert.Equal(t, language.Of(language.US, language.French), got[0].Present)
	assert.Equal(t, "Start\n\"now\"", got[0].Text[language.US].String())
	assert.Equal(t, "start.wav", got[0].Speech[language.US])
	assert.Equal(t, "Démarrer", got[0].Text[language.French].String())
}
