// Package parser reads and writes string tables in their on-disk formats:
// the compact binary table (.csf) and the line-oriented text table in its
// single-language (.str) and multi-language (.multistr) variants.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrFormat    = errors.New("gametext: malformed string table")
	ErrTruncated = errors.New("gametext: truncated string table")
)

// Format selects an on-disk table format.
type Format int

const (
	// FormatAuto infers the format from the file extension.
	FormatAuto Format = iota
	FormatBinary
	FormatTextSingle
	FormatTextMulti
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatBinary:
		return "csf"
	case FormatTextSingle:
		return "str"
	case FormatTextMulti:
		return "multistr"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Codec is implemented by every table format handler.
type Codec interface {
	// CanParse returns true if this codec handles the given file extension.
	CanParse(ext string) bool
	// Format returns the format the codec implements.
	Format() Format
}

// Codecs returns one handler per table format, binary first.
func Codecs() []Codec {
	return []Codec{&BinaryCodec{}, &TextCodec{}, &MultiTextCodec{}}
}

// CodecFor returns the codec handling the extension of path.
func CodecFor(path string) (Codec, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, c := range Codecs() {
		if c.CanParse(ext) {
			return c, true
		}
	}
	return nil, false
}

// FormatForPath infers the table format from a file name. Unknown
// extensions are treated as binary tables.
func FormatForPath(path string) Format {
	if c, ok := CodecFor(path); ok {
		return c.Format()
	}
	return FormatBinary
}

// Resolve replaces FormatAuto with the format inferred from path.
func (f Format) Resolve(path string) Format {
	if f == FormatAuto {
		return FormatForPath(path)
	}
	return f
}

// ParseFormat parses a format name as used on the command line.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "auto":
		return FormatAuto, nil
	case "csf", "bin", "binary":
		return FormatBinary, nil
	case "str", "text":
		return FormatTextSingle, nil
	case "multistr", "multi":
		return FormatTextMulti, nil
	}
	return FormatAuto, fmt.Errorf("unknown table format %q", name)
}
