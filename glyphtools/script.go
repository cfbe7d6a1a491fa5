package glyphtools

import (
	"github.com/go-text/typesetting/language"
	"github.com/npillmayer/fontfeatures/ot"
)

// Script returns the OpenType script tag of the Unicode script of a glyph,
// e.g. "latn" or "cyrl". Glyphs without a code point and glyphs of the
// common, inherited or unknown script have no script tag and yield "".
func (in *Inspector) Script(glyph string) string {
	gid, ok := in.font.GlyphByName(glyph)
	if !ok {
		return ""
	}
	r, ok := in.font.RuneForGlyph(gid)
	if !ok {
		return ""
	}
	return ScriptTag(language.LookupScript(r))
}

// ScriptTag maps an ISO 15924 script to its OpenType script tag. Scripts
// shared between writing systems map to "".
func ScriptTag(script language.Script) string {
	switch script {
	case 0, language.Common, language.Inherited, language.Unknown:
		return ""
	case language.Mathematical_notation:
		return "math"
	case language.Hiragana, language.Katakana:
		return "kana"
	case language.Lao:
		return "lao"
	case language.Yi:
		return "yi"
	case language.Nko:
		return "nko"
	case language.Vai:
		return "vai"
	}
	// OpenType tags are ISO 15924 codes with a lowercase initial
	return ot.Tag(uint32(script) | 0x20000000).Name()
}
