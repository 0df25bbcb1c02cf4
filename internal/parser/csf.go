package parser

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"gametext/internal/language"
	"gametext/internal/model"
)

// Four-character tags, stored as little-endian 32-bit integers.
const (
	magicTable  uint32 = 'C'<<24 | 'S'<<16 | 'F'<<8 | ' '
	magicLabel  uint32 = 'L'<<24 | 'B'<<16 | 'L'<<8 | ' '
	magicText   uint32 = 'S'<<24 | 'T'<<16 | 'R'<<8 | ' '
	magicSpeech uint32 = 'S'<<24 | 'T'<<16 | 'R'<<8 | 'W'
	reservedTag uint32 = 'G'<<24 | 'T'<<16 | 'X'<<8 | 'T'

	// BinaryVersion is written into every table. Tables with a version of 1
	// or lower carry no language id.
	BinaryVersion = 3

	// maxPrealloc caps the entry slots reserved from the header label count.
	maxPrealloc = 4096
)

type tableHeader struct {
	Magic    uint32
	Version  int32
	Labels   int32
	Strings  int32
	Reserved uint32
	Language int32
}

type labelHeader struct {
	Magic  uint32
	Texts  int32
	Length int32
}

type textHeader struct {
	Magic  uint32
	Length int32
}

// BinaryTable is the decoded content of a binary table.
type BinaryTable struct {
	Version  int32
	Language language.ID
	Entries  []model.Entry
}

// BinaryCodec handles .csf tables.
//
// Layout:
//   - table header: magic "CSF ", version, label count, string count,
//     reserved tag, language id
//   - per label: magic "LBL ", text count, label length, label bytes
//   - per text: magic "STR " or "STRW", unit count, UTF-16 units with every
//     bit inverted; "STRW" is followed by a speech length and speech bytes
type BinaryCodec struct {
	log zerolog.Logger
}

// NewBinaryCodec creates a binary codec logging to logger.
func NewBinaryCodec(logger zerolog.Logger) *BinaryCodec {
	return &BinaryCodec{log: logger}
}

func (c *BinaryCodec) CanParse(ext string) bool { return ext == ".csf" }

func (c *BinaryCodec) Format() Format { return FormatBinary }

// Read decodes a whole binary table. Any tag mismatch or short read fails
// the table; text longer than the unit cap is truncated.
func (c *BinaryCodec) Read(r io.Reader) (*BinaryTable, error) {
	var hdr tableHeader
	if err := readLE(r, &hdr); err != nil {
		return nil, fmt.Errorf("read table header: %w", err)
	}
	if hdr.Magic != magicTable {
		return nil, fmt.Errorf("%w: bad table tag %08x", ErrFormat, hdr.Magic)
	}
	if hdr.Labels < 0 {
		return nil, fmt.Errorf("%w: negative label count %d", ErrFormat, hdr.Labels)
	}

	table := &BinaryTable{Version: hdr.Version, Language: language.US}
	if hdr.Version > 1 {
		lang, ok := language.FromOrdinal(int(hdr.Language))
		if !ok {
			return nil, fmt.Errorf("%w: language id %d out of range", ErrFormat, hdr.Language)
		}
		table.Language = lang
	}

	table.Entries = make([]model.Entry, 0, min(int(hdr.Labels), maxPrealloc))
	truncated := 0
	for i := range hdr.Labels {
		var e model.Entry
		cut, err := c.readEntry(r, &e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if cut {
			truncated++
		}
		table.Entries = append(table.Entries, e)
	}

	c.log.Debug().
		Int32("version", hdr.Version).
		Int("labels", len(table.Entries)).
		Int32("strings", hdr.Strings).
		Str("language", table.Language.String()).
		Int("truncated", truncated).
		Msg("Decoded binary table")
	return table, nil
}

func (c *BinaryCodec) readEntry(r io.Reader, e *model.Entry) (truncated bool, err error) {
	var lh labelHeader
	if err := readLE(r, &lh); err != nil {
		return false, fmt.Errorf("read label header: %w", err)
	}
	if lh.Magic != magicLabel {
		return false, fmt.Errorf("%w: bad label tag %08x", ErrFormat, lh.Magic)
	}
	if lh.Texts < 0 {
		return false, fmt.Errorf("%w: negative text count %d", ErrFormat, lh.Texts)
	}
	label, err := readBytes(r, lh.Length)
	if err != nil {
		return false, fmt.Errorf("read label: %w", err)
	}
	e.Label = string(label)

	for n := range lh.Texts {
		text, speech, cut, err := c.readText(r)
		if err != nil {
			return false, fmt.Errorf("label %q text %d: %w", e.Label, n, err)
		}
		if n > 0 {
			c.log.Debug().Str("label", e.Label).Int32("text", n).Msg("Ignoring additional text record")
			continue
		}
		e.Text, e.Speech, truncated = text, speech, cut
	}
	return truncated, nil
}

func (c *BinaryCodec) readText(r io.Reader) (model.Text, string, bool, error) {
	var th textHeader
	if err := readLE(r, &th); err != nil {
		return nil, "", false, fmt.Errorf("read text header: %w", err)
	}
	if th.Magic != magicText && th.Magic != magicSpeech {
		return nil, "", false, fmt.Errorf("%w: bad text tag %08x", ErrFormat, th.Magic)
	}
	if th.Length < 0 {
		return nil, "", false, fmt.Errorf("%w: negative text length %d", ErrFormat, th.Length)
	}

	keep := min(int(th.Length), model.MaxTextUnits-1)
	var text model.Text
	if keep > 0 {
		text = make(model.Text, keep)
		if err := readLE(r, []uint16(text)); err != nil {
			return nil, "", false, fmt.Errorf("read text: %w", err)
		}
		for i := range text {
			text[i] = ^text[i]
		}
	}
	truncated := int(th.Length) > keep
	if truncated {
		skip := int64(int(th.Length)-keep) * 2
		if n, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, "", false, fmt.Errorf("%w: skipped %d of %d bytes", ErrTruncated, n, skip)
		}
	}

	var speech string
	if th.Magic == magicSpeech {
		var length int32
		if err := readLE(r, &length); err != nil {
			return nil, "", false, fmt.Errorf("read speech header: %w", err)
		}
		b, err := readBytes(r, length)
		if err != nil {
			return nil, "", false, fmt.Errorf("read speech: %w", err)
		}
		speech = string(b)
	}
	return text, speech, truncated, nil
}

// Write encodes entries as a binary table for lang and returns the number of
// entries written. Entries without a label are skipped.
func (c *BinaryCodec) Write(w io.Writer, lang language.ID, entries []model.Entry) (int, error) {
	labels := 0
	for _, e := range entries {
		if e.Label != "" {
			labels++
		}
	}

	hdr := tableHeader{
		Magic:    magicTable,
		Version:  BinaryVersion,
		Labels:   int32(labels),
		Strings:  int32(labels),
		Reserved: reservedTag,
		Language: int32(lang),
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return 0, fmt.Errorf("write table header: %w", err)
	}

	written := 0
	for i, e := range entries {
		if e.Label == "" {
			c.log.Warn().Int("index", i).Msg("Skipping entry with empty label")
			continue
		}
		if err := c.writeEntry(w, e); err != nil {
			return written, fmt.Errorf("write entry %q: %w", e.Label, err)
		}
		written++
	}
	return written, nil
}

func (c *BinaryCodec) writeEntry(w io.Writer, e model.Entry) error {
	lh := labelHeader{Magic: magicLabel, Texts: 1, Length: int32(len(e.Label))}
	if err := binary.Write(w, binary.LittleEndian, &lh); err != nil {
		return err
	}
	if _, err := io.WriteString(w, e.Label); err != nil {
		return err
	}

	th := textHeader{Magic: magicText, Length: int32(len(e.Text))}
	if e.Speech != "" {
		th.Magic = magicSpeech
	}
	if err := binary.Write(w, binary.LittleEndian, &th); err != nil {
		return err
	}
	inverted := make([]uint16, len(e.Text))
	for i, u := range e.Text {
		inverted[i] = ^u
	}
	if err := binary.Write(w, binary.LittleEndian, inverted); err != nil {
		return err
	}

	if e.Speech != "" {
		if err := binary.Write(w, binary.LittleEndian, int32(len(e.Speech))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, e.Speech); err != nil {
			return err
		}
	}
	return nil
}

func readLE(r io.Reader, v any) error {
	err := binary.Read(r, binary.LittleEndian, v)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}

func readBytes(r io.Reader, n int32) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrFormat, n)
	}
	b, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return nil, err
	}
	if len(b) < int(n) {
		return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncated, len(b), n)
	}
	return b, nil
}
