package table

import (
	"gametext/internal/language"
	"gametext/internal/model"
)

// LengthReport holds the longest values found in one language.
type LengthReport struct {
	Language     language.ID
	Entries      int
	MaxLabel     int // bytes
	MaxTextBytes int // UTF-8 bytes
	MaxTextUnits int // UTF-16 code units
	MaxSpeech    int // bytes
}

// Exceeded reports whether any maximum reaches its cap.
func (r LengthReport) Exceeded() bool {
	return r.MaxLabel >= model.MaxLabelLen ||
		r.MaxTextBytes >= model.MaxTextBytes ||
		r.MaxTextUnits >= model.MaxTextUnits ||
		r.MaxSpeech >= model.MaxSpeechLen
}

// Measure computes the length report of entries.
func Measure(lang language.ID, entries []model.Entry) LengthReport {
	r := LengthReport{Language: lang, Entries: len(entries)}
	for i := range entries {
		e := &entries[i]
		r.MaxLabel = max(r.MaxLabel, len(e.Label))
		r.MaxTextBytes = max(r.MaxTextBytes, e.Text.UTF8Len())
		r.MaxTextUnits = max(r.MaxTextUnits, e.Text.Len())
		r.MaxSpeech = max(r.MaxSpeech, len(e.Speech))
	}
	return r
}

// Validate measures every language of langs that holds entries and logs the
// maxima against their caps. Violations are passed to the configured assert
// hook; they never fail the table.
func (m *Manager) Validate(langs language.Languages) []LengthReport {
	var reports []LengthReport
	for _, id := range langs.IDs() {
		if len(m.tables[id]) == 0 {
			continue
		}
		r := Measure(id, m.tables[id])
		reports = append(reports, r)

		ev := m.log.Debug()
		if r.Exceeded() {
			ev = m.log.Warn()
		}
		ev.Str("language", id.String()).
			Int("entries", r.Entries).
			Int("max_label", r.MaxLabel).
			Int("label_cap", model.MaxLabelLen).
			Int("max_text_bytes", r.MaxTextBytes).
			Int("text_bytes_cap", model.MaxTextBytes).
			Int("max_text_units", r.MaxTextUnits).
			Int("text_units_cap", model.MaxTextUnits).
			Int("max_speech", r.MaxSpeech).
			Int("speech_cap", model.MaxSpeechLen).
			Msg("Checked entry lengths")

		if r.Exceeded() && m.assert != nil {
			m.assert(r)
		}
	}
	return reports
}
