package parser

import "strings"

// escapeText turns text into the body of a quoted text line. With
// extraLineFeed every escaped newline is followed by a real line break so
// long texts stay readable in an editor.
func escapeText(s string, extraLineFeed bool) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
			if extraLineFeed {
				b.WriteString("\r\n")
			}
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// unescapeText resolves \n \t \" \? \' and \\ in one pass. Any other
// backslash sequence is kept verbatim.
func unescapeText(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '"', '?', '\'', '\\':
			b.WriteByte(s[i+1])
		default:
			b.WriteByte(c)
			continue
		}
		i++
	}
	return b.String()
}

// normalizeSpaces maps tab, vertical tab and form feed to a space and, unless
// keep is set, collapses every run of spaces to a single one.
func normalizeSpaces(s string, keep bool) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\v', '\f':
			return ' '
		}
		return r
	}, s)
	if keep || !strings.Contains(s, "  ") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// hasClosingQuote reports whether s ends with a quote that is not escaped.
func hasClosingQuote(s string) bool {
	if !strings.HasSuffix(s, `"`) {
		return false
	}
	backslashes := 0
	for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}

func stripLineEnd(s string) string {
	return strings.TrimRight(s, "\r\n")
}

func isComment(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, `\\`)
}
