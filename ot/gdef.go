package ot

import "fmt"

// GDefTable, the Glyph Definition (GDEF) table, provides various glyph properties
// used in OpenType Layout processing.
//
// See also
// https://learn.microsoft.com/en-us/typography/opentype/spec/gdef
type GDefTable struct {
	GlyphClassDef          ClassDef       // glyph class: 1 base, 2 ligature, 3 mark, 4 component
	MarkAttachmentClassDef ClassDef       // mark attachment classes referenced by lookup flags
	MarkGlyphSets          [][]GlyphIndex // mark filtering sets referenced by lookups
}

// Glyph classes of GDEF GlyphClassDef.
const (
	GlyphClassBase      uint16 = 1
	GlyphClassLigature  uint16 = 2
	GlyphClassMark      uint16 = 3
	GlyphClassComponent uint16 = 4
)

// Header: majorVersion, minorVersion, glyphClassDefOffset, attachListOffset,
// ligCaretListOffset, markAttachClassDefOffset, [markGlyphSetsDefOffset (1.2)],
// [itemVarStoreOffset (1.3)].
func parseGDef(b binarySegm) (*GDefTable, error) {
	r := reader(b)
	major, minor := r.u16(0), r.u16(2)
	if r.err != nil {
		return nil, r.err
	}
	if major != 1 {
		return nil, fmt.Errorf("GDEF: unsupported table version %d.%d", major, minor)
	}
	gdef := &GDefTable{}
	var err error
	if gdef.GlyphClassDef, err = parseClassDef(r.sub(4)); err != nil {
		return nil, fmt.Errorf("GDEF glyph classes: %w", err)
	}
	if gdef.MarkAttachmentClassDef, err = parseClassDef(r.sub(10)); err != nil {
		return nil, fmt.Errorf("GDEF mark attachment classes: %w", err)
	}
	if minor >= 2 {
		// MarkGlyphSets: format, markGlyphSetCount, coverageOffsets[] (32 bit)
		if mgs := r.sub(12); mgs != nil {
			mr := reader(mgs)
			n := int(mr.u16(2))
			for i := 0; i < n && mr.err == nil; i++ {
				cov, err := parseCoverage(mr.sub32(4 + 4*i))
				if err != nil {
					return nil, fmt.Errorf("GDEF mark glyph set %d: %w", i, err)
				}
				gdef.MarkGlyphSets = append(gdef.MarkGlyphSets, cov)
			}
			if mr.err != nil {
				return nil, fmt.Errorf("GDEF mark glyph sets: %w", mr.err)
			}
		}
	}
	return gdef, r.err
}
