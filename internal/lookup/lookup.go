// Package lookup builds case-insensitive label indexes over entry collections.
//
// An Index stores positions into the collection it was built from, never
// pointers. It is a snapshot: after the collection is appended to, reordered
// or replaced the index must be rebuilt.
package lookup

import (
	"slices"
	"sort"

	"gametext/internal/model"
)

type slot struct {
	label string
	pos   int
}

// Index is a sorted (label, position) table.
type Index struct {
	slots []slot
}

// Build indexes every entry of entries by label.
func Build[E model.Labeled](entries []E) *Index {
	ix := &Index{slots: make([]slot, len(entries))}
	for i, e := range entries {
		ix.slots[i] = slot{label: e.LabelKey(), pos: i}
	}
	slices.SortStableFunc(ix.slots, func(a, b slot) int {
		return CompareFold(a.label, b.label)
	})
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.slots) }

// Find returns the position of the first entry labelled label, ignoring
// ASCII case.
func (ix *Index) Find(label string) (int, bool) {
	i := sort.Search(len(ix.slots), func(i int) bool {
		return CompareFold(ix.slots[i].label, label) >= 0
	})
	if i < len(ix.slots) && CompareFold(ix.slots[i].label, label) == 0 {
		return ix.slots[i].pos, true
	}
	return -1, false
}

// Entry resolves label to an element of entries, which must be the
// collection the index was built from.
func Entry[E model.Labeled](ix *Index, entries []E, label string) (*E, bool) {
	pos, ok := ix.Find(label)
	if !ok || pos >= len(entries) {
		return nil, false
	}
	return &entries[pos], true
}

// CompareFold compares two labels byte-wise with ASCII letters folded to
// lower case.
func CompareFold(a, b string) int {
	n := min(len(a), len(b))
	for i := range n {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// Fold returns label with ASCII letters in lower case. Two labels compare
// equal under CompareFold exactly when their folded forms are equal.
func Fold(label string) string {
	for i := 0; i < len(label); i++ {
		if 'A' <= label[i] && label[i] <= 'Z' {
			b := []byte(label)
			for j := i; j < len(b); j++ {
				b[j] = lower(b[j])
			}
			return string(b)
		}
	}
	return label
}
