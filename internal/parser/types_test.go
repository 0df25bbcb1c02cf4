package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Format
	}{
		{"game.csf", FormatBinary},
		{"ui/menu.STR", FormatTextSingle},
		{"all.multistr", FormatTextMulti},
	}
	for _, tt := range tests {
		c, ok := CodecFor(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.want, c.Format(), tt.path)
		assert.Equal(t, tt.want, FormatForPath(tt.path), tt.path)
	}

	_, ok := CodecFor("readme.txt")
	assert.False(t, ok)
	assert.Equal(t, FormatBinary, FormatForPath("readme.txt"))
}

func TestCodecsCoverEveryFormat(t *testing.T) {
	t.Parallel()

	var got []Format
	for _, c := range Codecs() {
		got = append(got, c.Format())
	}
	assert.Equal(t, []Format{FormatBinary, FormatTextSingle, FormatTextMulti}, got)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Format{
		"":         FormatAuto,
		"auto":     FormatAuto,
		".csf":     FormatBinary,
		"STR":      FormatTextSingle,
		"multistr": FormatTextMulti,
	} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatTextMulti, FormatAuto.Resolve("x.multistr"))
	assert.Equal(t, FormatTextSingle, FormatTextSingle.Resolve("x.csf"))
}
