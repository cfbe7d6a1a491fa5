package glyphtools

import (
	"testing"

	"github.com/go-text/typesetting/language"
	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/internal/testfont"
	"github.com/npillmayer/fontfeatures/ot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinByValue(t *testing.T) {
	values := map[string]int{"a": 99, "b": 100, "c": 110, "d": 120, "e": 500, "f": 510}
	glyphs := []string{"f", "e", "d", "c", "b", "a"}
	tests := []struct {
		n    int
		want [][]string
	}{
		{1, [][]string{{"a", "b", "c", "d", "e", "f"}}},
		{2, [][]string{{"a", "b", "c", "d"}, {"e", "f"}}},
		{3, [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}},
		{7, [][]string{{"a"}, {"b"}, {"c"}, {"d"}, {"e"}, {"f"}, nil}},
	}
	for _, tt := range tests {
		bins := BinByValue(glyphs, values, tt.n)
		require.Len(t, bins, tt.n)
		for i := range tt.want {
			assert.Equal(t, len(tt.want[i]), len(bins[i]), "bin %d of %d", i, tt.n)
			if len(tt.want[i]) > 0 {
				assert.Equal(t, tt.want[i], bins[i])
			}
		}
	}
}

func TestBinByValueEqualValues(t *testing.T) {
	values := map[string]int{"a": 10, "b": 10, "c": 10}
	bins := BinByValue([]string{"a", "b", "c"}, values, 2)
	require.Len(t, bins, 2)
	assert.Equal(t, []string{"a", "b", "c"}, bins[0])
	assert.Empty(t, bins[1])
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("xMax")
	require.NoError(t, err)
	assert.Equal(t, XMax, m)
	_, err = ParseMetric("height")
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestMetrics(t *testing.T) {
	otf, err := ot.Parse(testfont.Font(nil))
	require.NoError(t, err)
	in := NewInspector(otf)
	want, err := otf.Metrics(ot.GlyphIndex(testfont.GID('A')))
	require.NoError(t, err)
	width, err := in.Metric("A", Width)
	require.NoError(t, err)
	assert.Equal(t, want.Advance, width)
	rsb, err := in.Metric("A", RSB)
	require.NoError(t, err)
	assert.Equal(t, want.Advance-want.XMax, rsb)
	rise, err := in.Metric("A", Rise)
	require.NoError(t, err)
	assert.Zero(t, rise)
	_, err = in.Metric("no-such-glyph", Width)
	assert.ErrorIs(t, err, ErrUnknownGlyph)

	bins, err := in.Bin([]string{"i", "l", "m"}, Width, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"m"}, bins[1])
}

func TestRise(t *testing.T) {
	a, b := testfont.GID('a'), testfont.GID('b')
	gpos := testfont.Layout([]testfont.Script{testfont.DefaultScript(1)},
		[]testfont.Feature{{Tag: "curs", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: 3, Subtables: [][]byte{testfont.CursivePos(
			map[uint16][2]int16{a: {0, 100}, b: {0, 0}},
			map[uint16][2]int16{a: {500, 250}},
		)}}})
	otf, err := ot.Parse(testfont.Font(map[string][]byte{"GPOS": gpos}))
	require.NoError(t, err)
	in := NewInspector(otf)
	rise, err := in.Metric("a", Rise)
	require.NoError(t, err)
	assert.Equal(t, 150, rise)
	rise, err = in.Metric("b", Rise)
	require.NoError(t, err)
	assert.Equal(t, 0, rise, "no exit anchor")
}

func TestCategory(t *testing.T) {
	otf, err := ot.Parse(testfont.Font(nil))
	require.NoError(t, err)
	in := NewInspector(otf)
	assert.Equal(t, fontfeatures.BaseGlyph, in.Category("A"))
	assert.Equal(t, fontfeatures.UnknownGlyph, in.Category("no-such-glyph"))

	acute := testfont.GID('´')
	gdef := testfont.GDEF(map[uint16]uint16{testfont.GID('A'): 1, acute: 3}, nil)
	otf, err = ot.Parse(testfont.Font(map[string][]byte{"GDEF": gdef}))
	require.NoError(t, err)
	in = NewInspector(otf)
	assert.Equal(t, fontfeatures.MarkGlyph, in.Category(otf.GlyphName(ot.GlyphIndex(acute))))
	assert.Equal(t, fontfeatures.UnknownGlyph, in.Category("B"), "GDEF lists no class for B")
}

func TestScriptTag(t *testing.T) {
	tests := []struct {
		script language.Script
		want   string
	}{
		{language.Latin, "latn"},
		{language.Cyrillic, "cyrl"},
		{language.Arabic, "arab"},
		{language.Katakana, "kana"},
		{language.Lao, "lao"},
		{language.Common, ""},
		{language.Inherited, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScriptTag(tt.script), "script %s", tt.script)
	}
}

func TestScript(t *testing.T) {
	otf, err := ot.Parse(testfont.Font(nil))
	require.NoError(t, err)
	in := NewInspector(otf)
	nameOf := func(r rune) string {
		gid, ok := otf.GlyphForRune(r)
		require.True(t, ok, "no glyph for %q", r)
		return otf.GlyphName(gid)
	}
	assert.Equal(t, "latn", in.Script(nameOf('a')))
	assert.Equal(t, "grek", in.Script(nameOf('λ')))
	assert.Equal(t, "cyrl", in.Script(nameOf('ж')))
	assert.Equal(t, "", in.Script(nameOf('0')), "digits are common to all scripts")
	assert.Equal(t, "", in.Script(".notdef"))
	assert.Equal(t, "", in.Script("no-such-glyph"))
}
