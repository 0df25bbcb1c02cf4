package table

import (
	"gametext/internal/language"
	"gametext/internal/lookup"
	"gametext/internal/model"
)

// MergeOverwrite copies the entries of other into m for every language of
// langs. Entries whose label already exists in m get their text and speech
// overwritten in place; the rest are appended in other's order.
func (m *Manager) MergeOverwrite(other *Manager, langs language.Languages) {
	for _, id := range langs.IDs() {
		src := other.tables[id]
		if len(src) == 0 {
			continue
		}
		dst := m.tables[id]
		ix := lookup.Build(dst)

		var staged []model.Entry
		updated := 0
		for _, oe := range src {
			if e, ok := lookup.Entry(ix, dst, oe.Label); ok {
				e.Text = oe.Text
				e.Speech = oe.Speech
				updated++
				continue
			}
			staged = append(staged, oe)
		}
		m.tables[id] = append(dst, staged...)

		m.log.Debug().
			Str("language", id.String()).
			Int("updated", updated).
			Int("added", len(staged)).
			Msg("Merged entries")
	}
}

// Pack transposes the collections of langs into one entry per label. Labels
// are matched ignoring ASCII case; the first spelling seen wins.
func (m *Manager) Pack(langs language.Languages) []model.MultiEntry {
	var multi []model.MultiEntry
	for _, id := range langs.IDs() {
		entries := m.tables[id]
		if len(entries) == 0 {
			continue
		}
		ix := lookup.Build(multi)
		pending := make(map[string]int)
		for _, e := range entries {
			if me, ok := lookup.Entry(ix, multi, e.Label); ok {
				me.Put(id, e.Text, e.Speech)
				continue
			}
			key := lookup.Fold(e.Label)
			if pos, ok := pending[key]; ok {
				multi[pos].Put(id, e.Text, e.Speech)
				continue
			}
			pending[key] = len(multi)
			me := model.MultiEntry{Label: e.Label}
			me.Put(id, e.Text, e.Speech)
			multi = append(multi, me)
		}
	}
	return multi
}

// Unpack replaces the collections of langs with the matching slots of multi.
func (m *Manager) Unpack(multi []model.MultiEntry, langs language.Languages) {
	parsed := unpack(multi, langs, m.options.Has(model.OptimizeMemory))
	for _, id := range langs.IDs() {
		m.tables[id] = parsed[id]
	}
}

// unpack copies every present slot of multi into per-language collections.
// With exact the collections are allocated at their final size.
func unpack(multi []model.MultiEntry, langs language.Languages, exact bool) [language.Count][]model.Entry {
	var out [language.Count][]model.Entry
	for _, id := range langs.IDs() {
		size := len(multi)
		if exact {
			size = 0
			for i := range multi {
				if multi[i].Present.Has(id) {
					size++
				}
			}
		}
		if size == 0 {
			continue
		}
		out[id] = make([]model.Entry, 0, size)
		for i := range multi {
			if multi[i].Present.Has(id) {
				out[id] = append(out[id], multi[i].Single(id))
			}
		}
		if len(out[id]) == 0 {
			out[id] = nil
		}
	}
	return out
}
