/*
Package glyphtools answers questions about single glyphs of a font: their
metrics, their category, and how a set of glyphs falls into groups of
similar metrics.

Glyphs are addressed by name, as in feature files.
*/
package glyphtools

import (
	"errors"
	"fmt"
	"sync"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/ot"
)

// Metric names a glyph metric usable in class predicates and for binning.
type Metric string

// Glyph metrics, in font design units.
const (
	Width Metric = "width" // advance width
	LSB   Metric = "lsb"   // left side bearing
	RSB   Metric = "rsb"   // right side bearing
	XMin  Metric = "xMin"
	XMax  Metric = "xMax"
	YMin  Metric = "yMin"
	YMax  Metric = "yMax"
	Rise  Metric = "rise" // y difference between cursive exit and entry anchors
)

var metrics = []Metric{Width, LSB, RSB, XMin, XMax, YMin, YMax, Rise}

// ErrUnknownMetric is returned for metric names not in the list above.
var ErrUnknownMetric = errors.New("unknown metric")

// ErrUnknownGlyph is returned for glyph names not in the font.
var ErrUnknownGlyph = errors.New("unknown glyph")

// ParseMetric checks a metric name.
func ParseMetric(name string) (Metric, error) {
	for _, m := range metrics {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownMetric, name)
}

// Inspector looks up metrics and categories of glyphs of a font.
// It is safe for concurrent use.
type Inspector struct {
	font  *ot.Font
	once  sync.Once
	rises map[ot.GlyphIndex]int
}

// NewInspector creates an inspector for a font.
func NewInspector(font *ot.Font) *Inspector {
	return &Inspector{font: font}
}

// Font returns the font inspected.
func (in *Inspector) Font() *ot.Font {
	return in.font
}

// Metric returns a metric of a glyph.
func (in *Inspector) Metric(glyph string, m Metric) (int, error) {
	gid, ok := in.font.GlyphByName(glyph)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownGlyph, glyph)
	}
	if m == Rise {
		in.once.Do(in.collectRises)
		return in.rises[gid], nil
	}
	gm, err := in.font.Metrics(gid)
	if err != nil {
		return 0, err
	}
	switch m {
	case Width:
		return gm.Advance, nil
	case LSB:
		return gm.LSB(), nil
	case RSB:
		return gm.RSB(), nil
	case XMin:
		return gm.XMin, nil
	case XMax:
		return gm.XMax, nil
	case YMin:
		return gm.YMin, nil
	case YMax:
		return gm.YMax, nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMetric, m)
}

// collectRises reads the cursive attachment anchors of the font's GPOS
// table. The first entry and exit anchors found for a glyph count.
func (in *Inspector) collectRises() {
	in.rises = make(map[ot.GlyphIndex]int)
	gpos := in.font.Layout.GPos
	if gpos == nil {
		return
	}
	entries := make(map[ot.GlyphIndex]*ot.Anchor)
	exits := make(map[ot.GlyphIndex]*ot.Anchor)
	for _, l := range gpos.Lookups {
		for _, st := range l.Subtables {
			cp, ok := st.(*ot.CursivePos)
			if !ok {
				continue
			}
			for i, g := range cp.Glyphs {
				if entries[g] == nil && cp.Entry[i] != nil {
					entries[g] = cp.Entry[i]
				}
				if exits[g] == nil && cp.Exit[i] != nil {
					exits[g] = cp.Exit[i]
				}
			}
		}
	}
	for g, entry := range entries {
		if exit := exits[g]; exit != nil {
			in.rises[g] = int(exit.Y) - int(entry.Y)
		}
	}
}

// Category returns the category of a glyph. The GDEF table decides if the
// font has one. Otherwise glyphs without advance are marks, and glyphs with
// an underscore in their name are ligatures.
func (in *Inspector) Category(glyph string) fontfeatures.GlyphCategory {
	gid, ok := in.font.GlyphByName(glyph)
	if !ok {
		return fontfeatures.UnknownGlyph
	}
	if gdef := in.font.Layout.GDef; gdef != nil && len(gdef.GlyphClassDef) > 0 {
		return fontfeatures.GlyphCategory(gdef.GlyphClassDef[gid])
	}
	if gm, err := in.font.Metrics(gid); err == nil && gm.Advance == 0 && gid != 0 {
		return fontfeatures.MarkGlyph
	}
	for _, c := range glyph {
		if c == '_' {
			return fontfeatures.LigatureGlyph
		}
	}
	return fontfeatures.BaseGlyph
}
