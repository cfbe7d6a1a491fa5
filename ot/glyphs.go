package ot

import (
	"fmt"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Glyph names are what feature files talk about, while layout tables talk
// about glyph indices. Names come from the 'post' or 'CFF ' table (through
// sfnt). Glyphs without a name are called after the character they are mapped
// to ("uni0041", "u1F600"), or after their index ("glyph00042").

type glyphNames struct {
	names  []string
	byName map[string]GlyphIndex
}

// NumGlyphs returns the number of glyphs in the font.
func (otf *Font) NumGlyphs() int {
	return otf.SFNT.NumGlyphs()
}

// GlyphName returns the name of a glyph.
func (otf *Font) GlyphName(gid GlyphIndex) string {
	gn := otf.glyphNames()
	if int(gid) < len(gn.names) {
		return gn.names[gid]
	}
	return fmt.Sprintf("glyph%05d", gid)
}

// GlyphByName returns the index of a glyph name.
func (otf *Font) GlyphByName(name string) (GlyphIndex, bool) {
	gid, ok := otf.glyphNames().byName[name]
	return gid, ok
}

// GlyphNames returns the names of all glyphs in glyph index order.
func (otf *Font) GlyphNames() []string {
	gn := otf.glyphNames()
	names := make([]string, len(gn.names))
	copy(names, gn.names)
	return names
}

// GlyphForRune returns the glyph a character is mapped to by the cmap table.
func (otf *Font) GlyphForRune(r rune) (GlyphIndex, bool) {
	otf.mx.Lock()
	defer otf.mx.Unlock()
	gid, err := otf.SFNT.GlyphIndex(&otf.buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return GlyphIndex(gid), true
}

// RuneForGlyph returns a character which the cmap table maps to a glyph.
// If more than one character maps to the glyph, the smallest one is returned.
// Only the Basic Multilingual Plane and the Supplementary Multilingual Plane
// are searched.
func (otf *Font) RuneForGlyph(gid GlyphIndex) (rune, bool) {
	otf.mx.Lock()
	defer otf.mx.Unlock()
	otf.buildRuneMap()
	r, ok := otf.runemap[gid]
	return r, ok
}

// buildRuneMap inverts the cmap. sfnt offers no iteration over cmap entries,
// thus code points are scanned. Caller must hold otf.mx.
func (otf *Font) buildRuneMap() {
	if otf.runemap != nil {
		return
	}
	otf.runemap = make(map[GlyphIndex]rune)
	for r := rune(0x20); r < 0x20000; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue // surrogates
		}
		gid, err := otf.SFNT.GlyphIndex(&otf.buf, r)
		if err != nil || gid == 0 {
			continue
		}
		if _, ok := otf.runemap[GlyphIndex(gid)]; !ok {
			otf.runemap[GlyphIndex(gid)] = r
		}
	}
}

func (otf *Font) glyphNames() *glyphNames {
	otf.mx.Lock()
	defer otf.mx.Unlock()
	if otf.names != nil {
		return otf.names
	}
	n := otf.SFNT.NumGlyphs()
	gn := &glyphNames{
		names:  make([]string, n),
		byName: make(map[string]GlyphIndex, n),
	}
	for i := 0; i < n; i++ {
		name, err := otf.SFNT.GlyphName(&otf.buf, sfnt.GlyphIndex(i))
		if err != nil || name == "" {
			name = otf.fallbackGlyphName(GlyphIndex(i))
		}
		if _, dup := gn.byName[name]; dup {
			base := name
			for k := 1; ; k++ {
				name = base + "#" + strconv.Itoa(k)
				if _, dup = gn.byName[name]; !dup {
					break
				}
			}
		}
		gn.names[i] = name
		gn.byName[name] = GlyphIndex(i)
	}
	tracer().Debugf("glyph names for %d glyphs", n)
	otf.names = gn
	return gn
}

// Caller must hold otf.mx.
func (otf *Font) fallbackGlyphName(gid GlyphIndex) string {
	if gid == 0 {
		return ".notdef"
	}
	otf.buildRuneMap()
	if r, ok := otf.runemap[gid]; ok {
		if r <= 0xFFFF {
			return fmt.Sprintf("uni%04X", r)
		}
		return fmt.Sprintf("u%X", r)
	}
	return fmt.Sprintf("glyph%05d", gid)
}

// --- Metrics ---------------------------------------------------------------

// GlyphMetrics holds the horizontal metrics and the bounding box of a glyph,
// in font design units, y-axis pointing up.
type GlyphMetrics struct {
	Advance    int
	XMin, YMin int
	XMax, YMax int
}

// LSB is the left side bearing of a glyph.
func (m GlyphMetrics) LSB() int {
	return m.XMin
}

// RSB is the right side bearing of a glyph.
func (m GlyphMetrics) RSB() int {
	return m.Advance - m.XMax
}

// UnitsPerEm returns the design units per em of the font.
func (otf *Font) UnitsPerEm() int {
	return int(otf.SFNT.UnitsPerEm())
}

// Metrics returns the metrics of a glyph in design units.
func (otf *Font) Metrics(gid GlyphIndex) (GlyphMetrics, error) {
	otf.mx.Lock()
	defer otf.mx.Unlock()
	// With ppem = units per em one pixel equals one design unit.
	ppem := fixed.I(int(otf.SFNT.UnitsPerEm()))
	bounds, advance, err := otf.SFNT.GlyphBounds(&otf.buf, sfnt.GlyphIndex(gid), ppem, font.HintingNone)
	if err != nil {
		return GlyphMetrics{}, fmt.Errorf("metrics for glyph %d: %w", gid, err)
	}
	// sfnt bounds have the y-axis pointing down
	return GlyphMetrics{
		Advance: advance.Round(),
		XMin:    bounds.Min.X.Round(),
		XMax:    bounds.Max.X.Round(),
		YMin:    -bounds.Max.Y.Round(),
		YMax:    -bounds.Min.Y.Round(),
	}, nil
}
