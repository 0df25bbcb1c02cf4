package language

import (
	"fmt"
	"math/bits"
	"strings"
)

// Languages is a set of language slots.
type Languages uint16

const (
	// None selects no language.
	None Languages = 0
	// All selects every valid slot.
	All Languages = 1<<Count - 1
)

// Of builds a selector from individual languages.
func Of(ids ...ID) Languages {
	var l Languages
	for _, id := range ids {
		l.Set(id)
	}
	return l
}

// Has reports whether id is selected.
func (l Languages) Has(id ID) bool {
	return id.Valid() && l&(1<<id) != 0
}

// Set selects id. Invalid ids are ignored.
func (l *Languages) Set(id ID) {
	if id.Valid() {
		*l |= 1 << id
	}
}

// Reset deselects id.
func (l *Languages) Reset(id ID) {
	if id.Valid() {
		*l &^= 1 << id
	}
}

// AllOf reports whether every language of other is selected.
func (l Languages) AllOf(other Languages) bool { return l&other == other }

// AnyOf reports whether at least one language of other is selected.
func (l Languages) AnyOf(other Languages) bool { return l&other != 0 }

// Empty reports whether no language is selected.
func (l Languages) Empty() bool { return l&All == 0 }

// Count returns the number of selected languages.
func (l Languages) Count() int { return bits.OnesCount16(uint16(l & All)) }

// IDs lists the selected languages in slot order.
func (l Languages) IDs() []ID {
	ids := make([]ID, 0, l.Count())
	for i := range Count {
		if l.Has(ID(i)) {
			ids = append(ids, ID(i))
		}
	}
	return ids
}

// First returns the lowest selected language.
func (l Languages) First() (ID, bool) {
	if l.Empty() {
		return Unknown, false
	}
	return ID(bits.TrailingZeros16(uint16(l & All))), true
}

func (l Languages) String() string {
	if l.Empty() {
		return "none"
	}
	if l&All == All {
		return "all"
	}
	parts := make([]string, 0, l.Count())
	for _, id := range l.IDs() {
		if code := CodeFor(id); code != InvalidCode {
			parts = append(parts, code)
		} else {
			parts = append(parts, NameFor(id))
		}
	}
	return strings.Join(parts, ",")
}

// ParseList parses a comma separated list of codes, names or ordinals.
// "all" selects every slot, "" and "none" select nothing.
func ParseList(s string) (Languages, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "all":
		return All, nil
	}
	var l Languages
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, ok := Parse(part)
		if !ok {
			return None, fmt.Errorf("unknown language %q", part)
		}
		l.Set(id)
	}
	return l, nil
}
