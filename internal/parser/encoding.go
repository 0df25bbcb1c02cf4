package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncoding is used for text tables unless configured otherwise.
var DefaultEncoding encoding.Encoding = unicode.UTF8

// LookupEncoding resolves an IANA character set name such as "UTF-8",
// "windows-1252" or "UTF-16LE".
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return DefaultEncoding, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("lookup encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// EncodingName returns the IANA name of enc, or "UTF-8" when it is unknown.
func EncodingName(enc encoding.Encoding) string {
	if enc == nil {
		return "UTF-8"
	}
	name, err := ianaindex.IANA.Name(enc)
	if err != nil || name == "" {
		return "UTF-8"
	}
	return name
}
