// Package language is the fixed registry of string-table language slots.
//
// Every per-language array in gametext is indexed by ID. The order of the
// slots is part of the binary table format (the table header stores the
// ordinal), so it must never change.
package language

import (
	"strconv"
	"strings"
)

// ID is the ordinal of a language slot.
type ID uint8

const (
	US ID = iota
	UK
	German
	French
	Spanish
	Italian
	Japanese
	Jabber
	Korean
	Chinese
	Unused
	Brazilian
	Polish
	Unknown
	Russian
	Arabic

	// Count is the number of language slots.
	Count = 16
)

// InvalidCode marks a language that cannot be addressed by code in
// multi-language text tables.
const InvalidCode = "XX"

type entry struct {
	ident string // constant name, lower case
	name  string
	code  string
}

var languages = [Count]entry{
	US:        {"us", "English (US)", "US"},
	UK:        {"uk", "English (UK)", InvalidCode},
	German:    {"german", "German", "DE"},
	French:    {"french", "French", "FR"},
	Spanish:   {"spanish", "Spanish", "ES"},
	Italian:   {"italian", "Italian", "IT"},
	Japanese:  {"japanese", "Japanese", "JA"},
	Jabber:    {"jabber", "Jabber", "JB"},
	Korean:    {"korean", "Korean", "KO"},
	Chinese:   {"chinese", "Chinese", "ZH"},
	Unused:    {"unused", "Unused", InvalidCode},
	Brazilian: {"brazilian", "Brazilian", "BP"},
	Polish:    {"polish", "Polish", "PL"},
	Unknown:   {"unknown", "Unknown", InvalidCode},
	Russian:   {"russian", "Russian", "RU"},
	Arabic:    {"arabic", "Arabic", "AR"},
}

// Index maps built at init time.
var (
	byName  map[string]ID
	byCode  map[string]ID
	byIdent map[string]ID
)

func init() {
	byName = make(map[string]ID, Count)
	byCode = make(map[string]ID, Count)
	byIdent = make(map[string]ID, Count)
	for i, e := range languages {
		byIdent[e.ident] = ID(i)
		byName[strings.ToLower(e.name)] = ID(i)
		if e.code != InvalidCode {
			byCode[e.code] = ID(i)
		}
	}
}

// FromOrdinal converts a raw integer into an ID, rejecting values outside
// the slot range.
func FromOrdinal(n int) (ID, bool) {
	if n < 0 || n >= Count {
		return Unknown, false
	}
	return ID(n), true
}

// Valid reports whether id addresses one of the Count slots.
func (id ID) Valid() bool { return int(id) < Count }

func (id ID) String() string { return NameFor(id) }

// NameFor returns the display name of a language.
func NameFor(id ID) string {
	if !id.Valid() {
		return languages[Unknown].name
	}
	return languages[id].name
}

// ForName finds a language by display name, ignoring case.
func ForName(name string) (ID, bool) {
	id, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return id, ok
}

// CodeFor returns the two-letter code of a language, or InvalidCode when the
// language has none.
func CodeFor(id ID) string {
	if !id.Valid() {
		return InvalidCode
	}
	return languages[id].code
}

// ForCode finds a language by its two-letter code, ignoring case.
// InvalidCode never matches.
func ForCode(code string) (ID, bool) {
	id, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return id, ok
}

// Parse resolves a code, a display name, a slot identifier such as "uk" or
// "brazilian", or a decimal ordinal.
func Parse(s string) (ID, bool) {
	if id, ok := ForCode(s); ok {
		return id, true
	}
	if id, ok := ForName(s); ok {
		return id, true
	}
	if id, ok := byIdent[strings.ToLower(strings.TrimSpace(s))]; ok {
		return id, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Unknown, false
	}
	return FromOrdinal(n)
}

// FilterUsable removes every language that has no code from langs.
// Multi-language text tables identify languages by code only.
func FilterUsable(langs Languages) Languages {
	out := langs
	for _, id := range langs.IDs() {
		if CodeFor(id) == InvalidCode {
			out.Reset(id)
		}
	}
	return out
}
