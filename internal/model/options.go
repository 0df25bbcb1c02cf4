package model

import (
	"fmt"
	"strings"
)

// Options tunes loading and saving of string tables.
type Options uint8

const (
	// OptimizeMemory shrinks collections to their exact size after unpacking.
	OptimizeMemory Options = 1 << iota
	// CheckLengthOnLoad validates entry lengths after a successful load.
	CheckLengthOnLoad
	// CheckLengthOnSave validates entry lengths after a successful save.
	CheckLengthOnSave
	// KeepObsoleteSpacesOnLoad disables collapsing of repeated spaces in text tables.
	KeepObsoleteSpacesOnLoad
	// WriteExtraLineFeedOnSave breaks text table lines after every escaped newline.
	WriteExtraLineFeedOnSave

	NoOptions Options = 0
)

var optionNames = []struct {
	opt  Options
	name string
}{
	{OptimizeMemory, "optimize_memory"},
	{CheckLengthOnLoad, "check_length_on_load"},
	{CheckLengthOnSave, "check_length_on_save"},
	{KeepObsoleteSpacesOnLoad, "keep_obsolete_spaces_on_load"},
	{WriteExtraLineFeedOnSave, "write_extra_line_feed_on_save"},
}

// Has reports whether every flag of f is set.
func (o Options) Has(f Options) bool { return o&f == f && f != 0 }

// Set turns on the flags of f.
func (o *Options) Set(f Options) { *o |= f }

// Reset turns off the flags of f.
func (o *Options) Reset(f Options) { *o &^= f }

// AllOf reports whether every flag of f is set.
func (o Options) AllOf(f Options) bool { return o&f == f }

// AnyOf reports whether at least one flag of f is set.
func (o Options) AnyOf(f Options) bool { return o&f != 0 }

func (o Options) String() string {
	if o == NoOptions {
		return "none"
	}
	var parts []string
	for _, n := range optionNames {
		if o.Has(n.opt) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, ",")
}

// ParseOptions parses a comma separated list of option names.
func ParseOptions(s string) (Options, error) {
	var o Options
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return o, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for _, n := range optionNames {
			if n.name == part {
				o.Set(n.opt)
				found = true
				break
			}
		}
		if !found {
			return NoOptions, fmt.Errorf("unknown option %q", part)
		}
	}
	return o, nil
}
