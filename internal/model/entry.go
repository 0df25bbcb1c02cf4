// Package model holds the in-memory shapes of string-table entries.
package model

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"gametext/internal/language"
)

// Length caps. A value must stay strictly below its cap.
const (
	MaxLabelLen  = 4096 // label bytes
	MaxSpeechLen = 4096 // speech reference bytes
	MaxTextBytes = 4096 // text converted to UTF-8
	MaxTextUnits = 1024 // text in UTF-16 code units
)

// Text is a UTF-16 code-unit sequence. Unpaired surrogates are kept as-is so
// binary tables survive a load/save cycle bit for bit.
type Text []uint16

// NewText encodes s as UTF-16.
func NewText(s string) Text {
	if s == "" {
		return nil
	}
	return Text(utf16.Encode([]rune(s)))
}

func (t Text) String() string {
	return string(utf16.Decode(t))
}

// Len returns the number of code units.
func (t Text) Len() int { return len(t) }

// UTF8Len returns the length of the text once converted to UTF-8.
func (t Text) UTF8Len() int {
	n := 0
	for _, r := range utf16.Decode(t) {
		n += utf8.RuneLen(r)
	}
	return n
}

// Equal reports whether both texts hold the same code units.
func (t Text) Equal(o Text) bool {
	if len(t) != len(o) {
		return false
	}
	for i := range t {
		if t[i] != o[i] {
			return false
		}
	}
	return true
}

// Entry is one localized string in a single language.
type Entry struct {
	Label  string
	Text   Text
	Speech string
}

// LabelKey returns the lookup key of the entry.
func (e Entry) LabelKey() string { return e.Label }

// MultiEntry holds the same label in every language slot.
type MultiEntry struct {
	Label   string
	Text    [language.Count]Text
	Speech  [language.Count]string
	Present language.Languages // slots that carried text or speech
}

// LabelKey returns the lookup key of the entry.
func (e MultiEntry) LabelKey() string { return e.Label }

// Put stores text and speech in the slot of lang and marks it present.
func (e *MultiEntry) Put(lang language.ID, text Text, speech string) {
	if !lang.Valid() {
		return
	}
	e.Text[lang] = text
	e.Speech[lang] = speech
	e.Present.Set(lang)
}

// Single extracts the slot of lang as a single-language entry.
func (e *MultiEntry) Single(lang language.ID) Entry {
	return Entry{Label: e.Label, Text: e.Text[lang], Speech: e.Speech[lang]}
}

// Labeled is implemented by every entry shape.
type Labeled interface {
	LabelKey() string
}

// CategoryOf returns the part of a label before its first colon, which game
// tables use to group strings ("GUI:Start" belongs to "GUI"). Labels without
// a colon have no category.
func CategoryOf(label string) string {
	i := strings.IndexByte(label, ':')
	if i <= 0 {
		return ""
	}
	return label[:i]
}
