package ot

import (
	"fmt"
	"math/bits"
)

// GPOS table
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos

// ValueFormat is a bitmask that describes which fields are present in a ValueRecord.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#value-record
type ValueFormat uint16

const (
	ValueFormatXPlacement ValueFormat = 0x0001 // Includes horizontal adjustment for placement
	ValueFormatYPlacement ValueFormat = 0x0002 // Includes vertical adjustment for placement
	ValueFormatXAdvance   ValueFormat = 0x0004 // Includes horizontal adjustment for advance
	ValueFormatYAdvance   ValueFormat = 0x0008 // Includes vertical adjustment for advance
	ValueFormatXPlaDevice ValueFormat = 0x0010 // Includes Device table for horizontal placement
	ValueFormatYPlaDevice ValueFormat = 0x0020 // Includes Device table for vertical placement
	ValueFormatXAdvDevice ValueFormat = 0x0040 // Includes Device table for horizontal advance
	ValueFormatYAdvDevice ValueFormat = 0x0080 // Includes Device table for vertical advance
	// Bits 0x0F00 are reserved for future use
)

// size returns the number of bytes of a value record of this format.
func (vf ValueFormat) size() int {
	return 2 * bits.OnesCount16(uint16(vf&0x00FF))
}

// ValueRecord represents a positioning adjustment for a glyph, in design units.
// Device tables are not decoded.
type ValueRecord struct {
	XPlacement int16 // Horizontal adjustment for placement
	YPlacement int16 // Vertical adjustment for placement
	XAdvance   int16 // Horizontal adjustment for advance
	YAdvance   int16 // Vertical adjustment for advance
}

// IsZero is true if a value record does not adjust anything.
func (vr ValueRecord) IsZero() bool {
	return vr == ValueRecord{}
}

func (r *segmReader) valueRecord(at int, vf ValueFormat) ValueRecord {
	vr := ValueRecord{}
	pos := at
	if vf&ValueFormatXPlacement != 0 {
		vr.XPlacement = r.i16(pos)
		pos += 2
	}
	if vf&ValueFormatYPlacement != 0 {
		vr.YPlacement = r.i16(pos)
		pos += 2
	}
	if vf&ValueFormatXAdvance != 0 {
		vr.XAdvance = r.i16(pos)
		pos += 2
	}
	if vf&ValueFormatYAdvance != 0 {
		vr.YAdvance = r.i16(pos)
	}
	return vr
}

// Anchor is an attachment point in design units. Contour points and device
// tables of anchor formats 2 and 3 are ignored.
type Anchor struct {
	X, Y int16
}

// Anchor: anchorFormat, xCoordinate, yCoordinate[, ...]. A NULL anchor yields nil.
func parseAnchor(b binarySegm) (*Anchor, error) {
	if b == nil {
		return nil, nil
	}
	r := reader(b)
	if format := r.u16(0); r.err == nil && (format < 1 || format > 3) {
		return nil, fmt.Errorf("unsupported anchor format %d", format)
	}
	a := &Anchor{X: r.i16(2), Y: r.i16(4)}
	return a, r.err
}

// SinglePos is a GPOS lookup type 1 subtable.
type SinglePos struct {
	Glyphs []GlyphIndex
	Values []ValueRecord
}

// PairAdjustment adjusts every pair of a glyph from First followed by a glyph
// from Second.
type PairAdjustment struct {
	First, Second  []GlyphIndex
	Value1, Value2 ValueRecord
}

// PairPos is a GPOS lookup type 2 subtable. Format 1 subtables yield
// adjustments for single glyphs, format 2 subtables for glyph classes.
type PairPos struct {
	Format uint16
	Pairs  []PairAdjustment
}

// CursivePos is a GPOS lookup type 3 subtable. Entry and exit anchors may be nil.
type CursivePos struct {
	Glyphs []GlyphIndex
	Entry  []*Anchor
	Exit   []*Anchor
}

// MarkRecord assigns a mark glyph to a mark class and anchor.
type MarkRecord struct {
	Glyph  GlyphIndex
	Class  uint16
	Anchor Anchor
}

// MarkAttachPos represents GPOS lookup types 4 (mark-to-base), 5 (mark-to-ligature)
// and 6 (mark-to-mark). For types 4 and 6 Bases holds the base glyphs (or base marks),
// BaseAnchors[i][class] the anchor of base i for a mark class. For type 5
// LigatureAnchors[i][component][class] holds the anchors of ligature Bases[i].
type MarkAttachPos struct {
	Type            LayoutTableLookupType
	ClassCount      int
	Marks           []MarkRecord
	Bases           []GlyphIndex
	BaseAnchors     [][]*Anchor
	LigatureAnchors [][][]*Anchor
}

// LookupType is part of interface Subtable.
func (*SinglePos) LookupType() LayoutTableLookupType { return GPosLookupTypeSingle }

// LookupType is part of interface Subtable.
func (*PairPos) LookupType() LayoutTableLookupType { return GPosLookupTypePair }

// LookupType is part of interface Subtable.
func (*CursivePos) LookupType() LayoutTableLookupType { return GPosLookupTypeCursive }

// LookupType is part of interface Subtable.
func (m *MarkAttachPos) LookupType() LayoutTableLookupType { return m.Type }

func (p *lookupParser) parseGPosSubtable(typ LayoutTableLookupType, b binarySegm) (Subtable, error) {
	switch typ {
	case GPosLookupTypeSingle:
		return parseSinglePos(b)
	case GPosLookupTypePair:
		return p.parsePairPos(b)
	case GPosLookupTypeCursive:
		return parseCursivePos(b)
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToLigature, GPosLookupTypeMarkToMark:
		return parseMarkAttachPos(typ, b)
	case GPosLookupTypeContextPos:
		return p.parseSequenceContext(typ, false, b)
	case GPosLookupTypeChainedContextPos:
		return p.parseSequenceContext(typ, true, b)
	}
	return nil, fmt.Errorf("unsupported GPOS lookup type %d", typ)
}

// Format 1: format, coverageOffset, valueFormat, valueRecord.
// Format 2: format, coverageOffset, valueFormat, valueCount, valueRecords[valueCount].
func parseSinglePos(b binarySegm) (*SinglePos, error) {
	r := reader(b)
	format := r.u16(0)
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	vf := ValueFormat(r.u16(4))
	st := &SinglePos{Glyphs: cov}
	switch format {
	case 1:
		vr := r.valueRecord(6, vf)
		for range cov {
			st.Values = append(st.Values, vr)
		}
	case 2:
		n := int(r.u16(6))
		if r.err == nil && n != len(cov) {
			return nil, fmt.Errorf("single positioning: %d values for %d covered glyphs", n, len(cov))
		}
		for i := 0; i < n && r.err == nil; i++ {
			st.Values = append(st.Values, r.valueRecord(8+i*vf.size(), vf))
		}
	default:
		return nil, fmt.Errorf("unsupported single positioning format %d", format)
	}
	return st, r.err
}

// Format 1: format, coverageOffset, valueFormat1, valueFormat2, pairSetCount, pairSetOffsets[].
// PairSet: pairValueCount, pairValueRecords[] of {secondGlyph, valueRecord1, valueRecord2}.
//
// Format 2: format, coverageOffset, valueFormat1, valueFormat2, classDef1Offset,
// classDef2Offset, class1Count, class2Count, class1Records[class1Count] of
// class2Records[class2Count] of {valueRecord1, valueRecord2}.
func (p *lookupParser) parsePairPos(b binarySegm) (*PairPos, error) {
	r := reader(b)
	format := r.u16(0)
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	vf1, vf2 := ValueFormat(r.u16(4)), ValueFormat(r.u16(6))
	st := &PairPos{Format: format}
	switch format {
	case 1:
		n := r.count(8, len(cov), "pair set")
		recSize := 2 + vf1.size() + vf2.size()
		for i := 0; i < n && r.err == nil; i++ {
			psb := r.sub(10 + 2*i)
			if psb == nil {
				continue
			}
			ps := reader(psb)
			m := int(ps.u16(0))
			for j := 0; j < m && ps.err == nil; j++ {
				at := 2 + j*recSize
				pa := PairAdjustment{
					First:  []GlyphIndex{cov[i]},
					Second: []GlyphIndex{GlyphIndex(ps.u16(at))},
					Value1: ps.valueRecord(at+2, vf1),
					Value2: ps.valueRecord(at+2+vf1.size(), vf2),
				}
				if !pa.Value1.IsZero() || !pa.Value2.IsZero() {
					st.Pairs = append(st.Pairs, pa)
				}
			}
			r.fail(ps.err)
		}
	case 2:
		cd1, err := parseClassDef(r.sub(8))
		if err != nil {
			return nil, err
		}
		cd2, err := parseClassDef(r.sub(10))
		if err != nil {
			return nil, err
		}
		c1count, c2count := int(r.u16(12)), int(r.u16(14))
		recSize := vf1.size() + vf2.size()
		for c1 := 0; c1 < c1count && r.err == nil; c1++ {
			first := intersectGlyphs(cov, cd1.Glyphs(uint16(c1), p.numGlyphs))
			if len(first) == 0 {
				continue
			}
			// class 0 of the second glyph is the catch-all class; rows for it are
			// zero in practice and would enumerate the whole font
			for c2 := 1; c2 < c2count && r.err == nil; c2++ {
				at := 16 + (c1*c2count+c2)*recSize
				pa := PairAdjustment{
					First:  first,
					Value1: r.valueRecord(at, vf1),
					Value2: r.valueRecord(at+vf1.size(), vf2),
				}
				if pa.Value1.IsZero() && pa.Value2.IsZero() {
					continue
				}
				pa.Second = cd2.Glyphs(uint16(c2), p.numGlyphs)
				if len(pa.Second) > 0 {
					st.Pairs = append(st.Pairs, pa)
				}
			}
		}
	default:
		return nil, fmt.Errorf("unsupported pair positioning format %d", format)
	}
	return st, r.err
}

// Format 1: format, coverageOffset, entryExitCount, entryExitRecords[] of
// {entryAnchorOffset, exitAnchorOffset}.
func parseCursivePos(b binarySegm) (*CursivePos, error) {
	r := reader(b)
	if format := r.u16(0); r.err == nil && format != 1 {
		return nil, fmt.Errorf("unsupported cursive attachment format %d", format)
	}
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	n := int(r.u16(4))
	if r.err == nil && n != len(cov) {
		return nil, fmt.Errorf("cursive attachment: %d records for %d covered glyphs", n, len(cov))
	}
	st := &CursivePos{Glyphs: cov}
	for i := 0; i < n && r.err == nil; i++ {
		entry, err := parseAnchor(r.sub(6 + 4*i))
		if err != nil {
			return nil, err
		}
		exit, err := parseAnchor(r.sub(6 + 4*i + 2))
		if err != nil {
			return nil, err
		}
		st.Entry = append(st.Entry, entry)
		st.Exit = append(st.Exit, exit)
	}
	return st, r.err
}

// Mark attachment subtables (types 4, 5 and 6) share a header:
// format, markCoverageOffset, baseCoverageOffset, markClassCount,
// markArrayOffset, baseArrayOffset.
func parseMarkAttachPos(typ LayoutTableLookupType, b binarySegm) (*MarkAttachPos, error) {
	r := reader(b)
	if format := r.u16(0); r.err == nil && format != 1 {
		return nil, fmt.Errorf("unsupported mark attachment format %d", format)
	}
	markCov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	baseCov, err := parseCoverage(r.sub(4))
	if err != nil {
		return nil, err
	}
	st := &MarkAttachPos{Type: typ, ClassCount: int(r.u16(6)), Bases: baseCov}
	if st.Marks, err = parseMarkArray(r.sub(8), markCov, st.ClassCount); err != nil {
		return nil, err
	}
	ab := r.sub(10)
	if r.err != nil {
		return nil, r.err
	}
	if ab == nil {
		return nil, fmt.Errorf("missing base array")
	}
	if typ == GPosLookupTypeMarkToLigature {
		st.LigatureAnchors, err = parseLigatureArray(ab, len(baseCov), st.ClassCount)
	} else {
		st.BaseAnchors, err = parseAnchorMatrix(ab, 0, len(baseCov), st.ClassCount)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

// MarkArray: markCount, markRecords[] of {markClass, markAnchorOffset}.
func parseMarkArray(b binarySegm, cov []GlyphIndex, classCount int) ([]MarkRecord, error) {
	if b == nil {
		return nil, fmt.Errorf("missing mark array")
	}
	r := reader(b)
	n := int(r.u16(0))
	if r.err == nil && n != len(cov) {
		return nil, fmt.Errorf("mark array: %d records for %d covered marks", n, len(cov))
	}
	marks := make([]MarkRecord, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		class := r.u16(2 + 4*i)
		if int(class) >= classCount {
			return nil, fmt.Errorf("mark class %d out of range", class)
		}
		a, err := parseAnchor(r.sub(2 + 4*i + 2))
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		marks = append(marks, MarkRecord{Glyph: cov[i], Class: class, Anchor: *a})
	}
	return marks, r.err
}

// BaseArray (and Mark2Array, and a LigatureAttach component list):
// count, records[count] of anchorOffsets[classCount], offsets relative to b.
// start is the byte position of the count field.
func parseAnchorMatrix(b binarySegm, start, expected, classCount int) ([][]*Anchor, error) {
	r := reader(b)
	n := int(r.u16(start))
	if r.err == nil && expected >= 0 && n != expected {
		return nil, fmt.Errorf("anchor array: %d records for %d covered glyphs", n, expected)
	}
	matrix := make([][]*Anchor, n)
	for i := 0; i < n && r.err == nil; i++ {
		matrix[i] = make([]*Anchor, classCount)
		for c := 0; c < classCount; c++ {
			a, err := parseAnchor(r.sub(start + 2 + 2*(i*classCount+c)))
			if err != nil {
				return nil, err
			}
			matrix[i][c] = a
		}
	}
	return matrix, r.err
}

// LigatureArray: ligatureCount, ligatureAttachOffsets[].
// LigatureAttach: componentCount, componentRecords[] of ligatureAnchorOffsets[classCount].
func parseLigatureArray(b binarySegm, expected, classCount int) ([][][]*Anchor, error) {
	r := reader(b)
	n := int(r.u16(0))
	if r.err == nil && n != expected {
		return nil, fmt.Errorf("ligature array: %d records for %d covered ligatures", n, expected)
	}
	ligs := make([][][]*Anchor, n)
	for i := 0; i < n && r.err == nil; i++ {
		lab := r.sub(2 + 2*i)
		if lab == nil {
			continue
		}
		comps, err := parseAnchorMatrix(lab, 0, -1, classCount)
		if err != nil {
			return nil, err
		}
		ligs[i] = comps
	}
	return ligs, r.err
}
