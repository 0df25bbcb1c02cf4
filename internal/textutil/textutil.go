package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"gametext/internal/model"
)

// Hash computes a SHA-256 hex hash of a string for change detection.
func Hash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// EntryHash hashes the label, text and speech of an entry. Entries that
// differ in any of the three never share a hash.
func EntryHash(e model.Entry) string {
	var b strings.Builder
	b.WriteString(e.Label)
	b.WriteByte(0)
	b.WriteString(e.Text.String())
	b.WriteByte(0)
	b.WriteString(e.Speech)
	return Hash(b.String())
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// OneLine replaces line breaks and tabs with visible escapes for table output.
func OneLine(s string) string {
	return strings.NewReplacer("\r", `\r`, "\n", `\n`, "\t", `\t`).Replace(s)
}
