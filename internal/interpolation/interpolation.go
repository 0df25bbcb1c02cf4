package interpolation

import (
	"cmp"
	"regexp"
	"slices"

	"gametext/internal/language"
	"gametext/internal/model"
)

// varMatch stores a detected interpolation variable position.
type varMatch struct {
	start, end int
	value      string
}

// patterns to detect interpolation variables in game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`\$\{[a-zA-Z_][a-zA-Z0-9_]*\}`),           // ${value}
	regexp.MustCompile(`\{[0-9]+\}`),                             // {0}, {1}
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*l?[dsfieEgGxXoubcpqS]`), // %d, %s, %ls, %2d, etc.
	regexp.MustCompile(`%%`),                                     // escaped percent literal
}

// Extract returns the interpolation variables of text in order of
// appearance. Overlapping matches keep the one starting first, longest
// first on ties.
func Extract(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	slices.SortFunc(all, func(a, b varMatch) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		return cmp.Compare(b.end-b.start, a.end-a.start)
	})

	var vars []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			vars = append(vars, m.value)
			lastEnd = m.end
		}
	}
	return vars
}

// Mismatch describes how the variables of a translation differ from the
// reference text. Escaped percent signs are ignored.
type Mismatch struct {
	Missing []string // in the reference, not in the translation
	Extra   []string // in the translation, not in the reference
}

func (m Mismatch) Empty() bool { return len(m.Missing) == 0 && len(m.Extra) == 0 }

// Compare matches the variables of translated against reference as
// multisets.
func Compare(reference, translated string) Mismatch {
	counts := make(map[string]int)
	for _, v := range Extract(reference) {
		if v != "%%" {
			counts[v]++
		}
	}
	var m Mismatch
	for _, v := range Extract(translated) {
		if v == "%%" {
			continue
		}
		if counts[v] > 0 {
			counts[v]--
			continue
		}
		m.Extra = append(m.Extra, v)
	}
	for _, v := range Extract(reference) {
		if counts[v] > 0 {
			m.Missing = append(m.Missing, v)
			counts[v]--
		}
	}
	return m
}

// Issue is a placeholder mismatch of one label in one language.
type Issue struct {
	Label    string
	Language language.ID
	Mismatch
}

// CheckTable compares every present language of langs against the ref
// language slot of each entry. Entries without the reference language are
// skipped.
func CheckTable(entries []model.MultiEntry, ref language.ID, langs language.Languages) []Issue {
	var issues []Issue
	for i := range entries {
		e := &entries[i]
		if !e.Present.Has(ref) {
			continue
		}
		reference := e.Text[ref].String()
		for _, id := range langs.IDs() {
			if id == ref || !e.Present.Has(id) {
				continue
			}
			if m := Compare(reference, e.Text[id].String()); !m.Empty() {
				issues = append(issues, Issue{Label: e.Label, Language: id, Mismatch: m})
			}
		}
	}
	return issues
}
