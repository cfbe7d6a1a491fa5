package ot

import (
	"errors"
	"fmt"
	"slices"
)

var errNoCoverage = errors.New("missing coverage table")

// parseCoverage decodes a coverage table into the list of covered glyphs,
// ordered by coverage index.
//
// Format 1: format, glyphCount, glyphArray[glyphCount].
// Format 2: format, rangeCount, rangeRecords[] of {startGlyphID, endGlyphID, startCoverageIndex}.
func parseCoverage(b binarySegm) ([]GlyphIndex, error) {
	if b == nil {
		return nil, errNoCoverage
	}
	r := reader(b)
	format := r.u16(0)
	n := int(r.u16(2))
	if r.err != nil {
		return nil, r.err
	}
	switch format {
	case 1:
		glyphs := r.glyphs(4, n)
		return glyphs, r.err
	case 2:
		size := 0
		for i := 0; i < n && r.err == nil; i++ {
			from, to := r.u16(4+6*i), r.u16(4+6*i+2)
			if to < from {
				return nil, fmt.Errorf("coverage range %d..%d reversed", from, to)
			}
			if top := int(r.u16(4+6*i+4)) + int(to-from) + 1; top > size {
				size = top
			}
		}
		if r.err != nil {
			return nil, r.err
		}
		if size > MaxGlyphCount {
			return nil, fmt.Errorf("coverage size %d exceeds glyph limit", size)
		}
		glyphs := make([]GlyphIndex, size)
		for i := 0; i < n; i++ {
			from, to, start := r.u16(4+6*i), r.u16(4+6*i+2), int(r.u16(4+6*i+4))
			for g := int(from); g <= int(to); g++ {
				glyphs[start+g-int(from)] = GlyphIndex(g)
			}
		}
		return glyphs, r.err
	}
	return nil, fmt.Errorf("unsupported coverage format %d", format)
}

// ClassDef maps glyphs to class values. Glyphs not contained in the map
// belong to class 0.
type ClassDef map[GlyphIndex]uint16

// parseClassDef decodes a class definition table. A NULL table yields an
// empty ClassDef, i.e. every glyph is of class 0.
//
// Format 1: format, startGlyphID, glyphCount, classValueArray[glyphCount].
// Format 2: format, classRangeCount, classRangeRecords[] of {startGlyphID, endGlyphID, class}.
func parseClassDef(b binarySegm) (ClassDef, error) {
	cd := ClassDef{}
	if b == nil {
		return cd, nil
	}
	r := reader(b)
	switch format := r.u16(0); format {
	case 1:
		start := int(r.u16(2))
		n := int(r.u16(4))
		for i, c := range r.u16s(6, n) {
			if c != 0 && start+i < MaxGlyphCount {
				cd[GlyphIndex(start+i)] = c
			}
		}
	case 2:
		n := int(r.u16(2))
		for i := 0; i < n && r.err == nil; i++ {
			from, to, c := int(r.u16(4+6*i)), int(r.u16(4+6*i+2)), r.u16(4+6*i+4)
			if to < from {
				return nil, fmt.Errorf("class range %d..%d reversed", from, to)
			}
			if c == 0 {
				continue
			}
			for g := from; g <= to; g++ {
				cd[GlyphIndex(g)] = c
			}
		}
	default:
		if r.err == nil {
			return nil, fmt.Errorf("unsupported class definition format %d", format)
		}
	}
	return cd, r.err
}

// Glyphs returns the glyphs of a class in ascending order. For class 0, all
// glyphs of the font without a class assignment are returned, which requires
// the number of glyphs in the font.
func (cd ClassDef) Glyphs(class uint16, numGlyphs int) []GlyphIndex {
	var glyphs []GlyphIndex
	if class == 0 {
		for g := 0; g < numGlyphs; g++ {
			if _, ok := cd[GlyphIndex(g)]; !ok {
				glyphs = append(glyphs, GlyphIndex(g))
			}
		}
		return glyphs
	}
	for g, c := range cd {
		if c == class {
			glyphs = append(glyphs, g)
		}
	}
	slices.Sort(glyphs)
	return glyphs
}

// Classes returns the distinct non-zero class values of cd in ascending order.
func (cd ClassDef) Classes() []uint16 {
	seen := map[uint16]bool{}
	var classes []uint16
	for _, c := range cd {
		if !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}
	slices.Sort(classes)
	return classes
}

// intersectGlyphs returns the glyphs of a which are contained in b, in the
// order of a.
func intersectGlyphs(a, b []GlyphIndex) []GlyphIndex {
	set := make(map[GlyphIndex]bool, len(b))
	for _, g := range b {
		set[g] = true
	}
	var r []GlyphIndex
	for _, g := range a {
		if set[g] {
			r = append(r, g)
		}
	}
	return r
}
