package parser

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"gametext/internal/language"
	"gametext/internal/model"
)

// A text table is a sequence of records:
//
//	GUI:Start
//	"Start the \"game\"\n"
//	start.wav
//	END
//
// The multi-language variant prefixes every value line with a language code:
//
//	GUI:Start
//	US: "Start"
//	US: start.wav
//	DE: "Starten"
//	END
//
// Lines starting with // or \\ are comments. A quoted value may continue
// over several lines until a line ends with an unescaped quote. A value line
// holding only the opening quote is followed by the quoted text on its own
// line:
//
//	US: "
//	"Start"

type scanState int

const (
	stateLabel scanState = iota
	stateSearch
	stateText
)

// item is one value line of a record.
type item struct {
	code  string
	text  bool
	value string
}

type textTable struct {
	log     zerolog.Logger
	options model.Options
	enc     encoding.Encoding
}

func newTextTable(logger zerolog.Logger, options model.Options, enc encoding.Encoding) textTable {
	if enc == nil {
		enc = DefaultEncoding
	}
	return textTable{log: logger, options: options, enc: enc}
}

// scan runs the record state machine over r and calls emit for every record
// closed by END. Records left open at the end of input are dropped.
func (t *textTable) scan(r io.Reader, multi bool, emit func(label string, items []item)) error {
	scanner := bufio.NewScanner(transform.NewReader(r, unicode.BOMOverride(t.enc.NewDecoder())))
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var (
		state   = stateLabel
		label   string
		items   []item
		pending item
		pretext bool
		body    strings.Builder
		lineNum int
		dropped int
	)

	for scanner.Scan() {
		lineNum++
		raw := stripLineEnd(scanner.Text())
		line := strings.Trim(raw, " \t")

		switch state {
		case stateLabel:
			if line == "" || isComment(line) {
				continue
			}
			label = line
			items = items[:0]
			state = stateSearch

		case stateSearch:
			if line == "" || isComment(line) {
				continue
			}
			if strings.EqualFold(line, "END") {
				emit(label, items)
				state = stateLabel
				continue
			}
			code, payload, tagged := splitCode(line)
			if multi && !tagged {
				t.log.Debug().Int("line", lineNum).Str("label", label).Msg("Skipping line without language code")
				continue
			}
			if !multi && (!tagged || !strings.HasPrefix(payload, `"`)) {
				code, payload = "", line
			}
			if !strings.HasPrefix(payload, `"`) {
				items = append(items, item{code: code, value: payload})
				continue
			}
			rest := payload[1:]
			if hasClosingQuote(rest) {
				items = append(items, item{code: code, text: true, value: rest[:len(rest)-1]})
				continue
			}
			pending = item{code: code, text: true}
			pretext = strings.TrimSpace(rest) == ""
			body.Reset()
			if !pretext {
				body.WriteString(rest)
			}
			state = stateText

		case stateText:
			if strings.EqualFold(line, "END") {
				t.log.Debug().Int("line", lineNum).Str("label", label).Msg("Dropping record with unterminated text")
				dropped++
				state = stateLabel
				continue
			}
			if pretext {
				raw = strings.TrimPrefix(strings.TrimLeft(raw, " \t"), `"`)
				pretext = false
			}
			tail := strings.TrimRight(raw, " \t")
			closed := hasClosingQuote(tail)
			if closed {
				raw = tail[:len(tail)-1]
			}
			if body.Len() > 0 && !endsWithNewlineEscape(body.String()) {
				body.WriteByte(' ')
			}
			body.WriteString(raw)
			if closed {
				pending.value = body.String()
				items = append(items, pending)
				state = stateSearch
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan text table: %w", err)
	}
	if state != stateLabel {
		t.log.Debug().Str("label", label).Msg("Dropping unterminated record at end of input")
		dropped++
	}
	if dropped > 0 {
		t.log.Debug().Int("dropped", dropped).Msg("Dropped malformed records")
	}
	return nil
}

// decodeText turns the raw body of a quoted value into text.
func (t *textTable) decodeText(raw string) model.Text {
	s := normalizeSpaces(raw, t.options.Has(model.KeepObsoleteSpacesOnLoad))
	return model.NewText(unescapeText(s))
}

func (t *textTable) encodeText(text model.Text) string {
	return `"` + escapeText(text.String(), t.options.Has(model.WriteExtraLineFeedOnSave)) + `"`
}

func (t *textTable) newWriter(w io.Writer) *transform.Writer {
	return transform.NewWriter(w, encoding.ReplaceUnsupported(t.enc.NewEncoder()))
}

// splitCode splits "XX: payload" into its code and payload.
func splitCode(line string) (code, payload string, ok bool) {
	if len(line) < 3 || line[2] != ':' || !isLetter(line[0]) || !isLetter(line[1]) {
		return "", line, false
	}
	return line[:2], strings.TrimLeft(line[3:], " \t"), true
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func endsWithNewlineEscape(s string) bool {
	if !strings.HasSuffix(s, `\n`) {
		return false
	}
	backslashes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 1
}

// TextCodec handles single-language .str tables.
type TextCodec struct {
	textTable
}

// NewTextCodec creates a single-language text codec. A nil enc selects UTF-8.
func NewTextCodec(logger zerolog.Logger, options model.Options, enc encoding.Encoding) *TextCodec {
	return &TextCodec{textTable: newTextTable(logger, options, enc)}
}

func (c *TextCodec) CanParse(ext string) bool { return ext == ".str" }

func (c *TextCodec) Format() Format { return FormatTextSingle }

// Read parses every well-formed record of r. Language codes in front of
// quoted values are ignored. When a record holds several text or speech
// lines the last one wins.
func (c *TextCodec) Read(r io.Reader) ([]model.Entry, error) {
	var entries []model.Entry
	err := c.scan(r, false, func(label string, items []item) {
		e := model.Entry{Label: label}
		for _, it := range items {
			if it.text {
				e.Text = c.decodeText(it.value)
			} else {
				e.Speech = it.value
			}
		}
		entries = append(entries, e)
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("entries", len(entries)).Msg("Parsed text table")
	return entries, nil
}

// Write emits entries as a single-language text table and returns the number
// of records written.
func (c *TextCodec) Write(w io.Writer, entries []model.Entry) (int, error) {
	tw := c.newWriter(w)
	bw := bufio.NewWriter(tw)
	written := 0
	for i, e := range entries {
		if e.Label == "" {
			c.log.Warn().Int("index", i).Msg("Skipping entry with empty label")
			continue
		}
		bw.WriteString(e.Label + "\r\n")
		bw.WriteString(c.encodeText(e.Text) + "\r\n")
		if e.Speech != "" {
			bw.WriteString(e.Speech + "\r\n")
		}
		bw.WriteString("END\r\n\r\n")
		written++
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("write text table: %w", err)
	}
	if err := tw.Close(); err != nil {
		return written, fmt.Errorf("flush text table: %w", err)
	}
	return written, nil
}

// MultiTextCodec handles multi-language .multistr tables.
type MultiTextCodec struct {
	textTable
}

// NewMultiTextCodec creates a multi-language text codec. A nil enc selects UTF-8.
func NewMultiTextCodec(logger zerolog.Logger, options model.Options, enc encoding.Encoding) *MultiTextCodec {
	return &MultiTextCodec{textTable: newTextTable(logger, options, enc)}
}

func (c *MultiTextCodec) CanParse(ext string) bool { return ext == ".multistr" }

func (c *MultiTextCodec) Format() Format { return FormatTextMulti }

// Read parses every well-formed record of r keeping only the languages in
// langs. Records without any selected language are dropped.
func (c *MultiTextCodec) Read(r io.Reader, langs language.Languages) ([]model.MultiEntry, error) {
	var entries []model.MultiEntry
	skipped := 0
	err := c.scan(r, true, func(label string, items []item) {
		e := model.MultiEntry{Label: label}
		for _, it := range items {
			lang, ok := language.ForCode(it.code)
			if !ok || !langs.Has(lang) {
				continue
			}
			if it.text {
				e.Text[lang] = c.decodeText(it.value)
			} else {
				e.Speech[lang] = it.value
			}
			e.Present.Set(lang)
		}
		if e.Present.Empty() {
			skipped++
			return
		}
		entries = append(entries, e)
	})
	if err != nil {
		return nil, err
	}
	c.log.Debug().Int("entries", len(entries)).Int("skipped", skipped).Msg("Parsed multi-language text table")
	return entries, nil
}

// Write emits entries as a multi-language text table restricted to langs and
// returns the number of records written.
func (c *MultiTextCodec) Write(w io.Writer, entries []model.MultiEntry, langs language.Languages) (int, error) {
	usable := language.FilterUsable(langs)
	ids := usable.IDs()
	tw := c.newWriter(w)
	bw := bufio.NewWriter(tw)
	written := 0
	for i := range entries {
		e := &entries[i]
		if e.Label == "" {
			c.log.Warn().Int("index", i).Msg("Skipping entry with empty label")
			continue
		}
		if !e.Present.AnyOf(usable) {
			continue
		}
		bw.WriteString(e.Label + "\r\n")
		for _, lang := range ids {
			if !e.Present.Has(lang) {
				continue
			}
			code := language.CodeFor(lang)
			bw.WriteString(code + ": " + c.encodeText(e.Text[lang]) + "\r\n")
			if e.Speech[lang] != "" {
				bw.WriteString(code + ": " + e.Speech[lang] + "\r\n")
			}
		}
		bw.WriteString("END\r\n\r\n")
		written++
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("write text table: %w", err)
	}
	if err := tw.Close(); err != nil {
		return written, fmt.Errorf("flush text table: %w", err)
	}
	return written, nil
}
