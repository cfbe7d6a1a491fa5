package ot

import "fmt"

// GSUB table
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub

// SingleSubst is a GSUB lookup type 1 subtable. Input[i] is replaced by Output[i].
type SingleSubst struct {
	Input  []GlyphIndex
	Output []GlyphIndex
}

// MultipleSubst is a GSUB lookup type 2 subtable. Input[i] is replaced by
// the sequence Sequences[i].
type MultipleSubst struct {
	Input     []GlyphIndex
	Sequences [][]GlyphIndex
}

// AlternateSubst is a GSUB lookup type 3 subtable. Input[i] may be replaced
// by one of Alternates[i].
type AlternateSubst struct {
	Input      []GlyphIndex
	Alternates [][]GlyphIndex
}

// Ligature is a single ligature of a LigatureSubst. Components contains all
// glyphs forming the ligature, including the first one.
type Ligature struct {
	Components []GlyphIndex
	Glyph      GlyphIndex
}

// LigatureSubst is a GSUB lookup type 4 subtable.
type LigatureSubst struct {
	Ligatures []Ligature
}

// ReverseChainSubst is a GSUB lookup type 8 subtable. Backtrack is stored in
// logical order.
type ReverseChainSubst struct {
	Input     []GlyphIndex
	Output    []GlyphIndex
	Backtrack [][]GlyphIndex
	Lookahead [][]GlyphIndex
}

// LookupType is part of interface Subtable.
func (*SingleSubst) LookupType() LayoutTableLookupType { return GSubLookupTypeSingle }

// LookupType is part of interface Subtable.
func (*MultipleSubst) LookupType() LayoutTableLookupType { return GSubLookupTypeMultiple }

// LookupType is part of interface Subtable.
func (*AlternateSubst) LookupType() LayoutTableLookupType { return GSubLookupTypeAlternate }

// LookupType is part of interface Subtable.
func (*LigatureSubst) LookupType() LayoutTableLookupType { return GSubLookupTypeLigature }

// LookupType is part of interface Subtable.
func (*ReverseChainSubst) LookupType() LayoutTableLookupType { return GSubLookupTypeReverseChaining }

func (p *lookupParser) parseGSubSubtable(typ LayoutTableLookupType, b binarySegm) (Subtable, error) {
	switch typ {
	case GSubLookupTypeSingle:
		return parseSingleSubst(b)
	case GSubLookupTypeMultiple:
		in, seqs, err := parseSequenceSets(b)
		if err != nil {
			return nil, err
		}
		return &MultipleSubst{Input: in, Sequences: seqs}, nil
	case GSubLookupTypeAlternate:
		in, alts, err := parseSequenceSets(b)
		if err != nil {
			return nil, err
		}
		return &AlternateSubst{Input: in, Alternates: alts}, nil
	case GSubLookupTypeLigature:
		return parseLigatureSubst(b)
	case GSubLookupTypeContext:
		return p.parseSequenceContext(typ, false, b)
	case GSubLookupTypeChainingContext:
		return p.parseSequenceContext(typ, true, b)
	case GSubLookupTypeReverseChaining:
		return parseReverseChainSubst(b)
	}
	return nil, fmt.Errorf("unsupported GSUB lookup type %d", typ)
}

// Format 1: format, coverageOffset, deltaGlyphID.
// Format 2: format, coverageOffset, glyphCount, substituteGlyphIDs[glyphCount].
func parseSingleSubst(b binarySegm) (*SingleSubst, error) {
	r := reader(b)
	format := r.u16(0)
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	st := &SingleSubst{Input: cov}
	switch format {
	case 1:
		delta := int(r.i16(4))
		for _, g := range cov {
			// "Addition of deltaGlyphID is modulo 65536."
			st.Output = append(st.Output, GlyphIndex((int(g)+delta)&0xFFFF))
		}
	case 2:
		n := int(r.u16(4))
		if r.err == nil && n != len(cov) {
			return nil, fmt.Errorf("single substitution: %d substitutes for %d covered glyphs", n, len(cov))
		}
		st.Output = r.glyphs(6, n)
	default:
		return nil, fmt.Errorf("unsupported single substitution format %d", format)
	}
	return st, r.err
}

// Multiple and alternate substitutions share their layout:
// format, coverageOffset, setCount, setOffsets[setCount],
// and each set is glyphCount, glyphIDs[glyphCount].
func parseSequenceSets(b binarySegm) ([]GlyphIndex, [][]GlyphIndex, error) {
	r := reader(b)
	if format := r.u16(0); r.err == nil && format != 1 {
		return nil, nil, fmt.Errorf("unsupported substitution format %d", format)
	}
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, nil, err
	}
	n := int(r.u16(4))
	if r.err == nil && n != len(cov) {
		return nil, nil, fmt.Errorf("%d sequences for %d covered glyphs", n, len(cov))
	}
	sets := make([][]GlyphIndex, n)
	for i := 0; i < n && r.err == nil; i++ {
		sb := r.sub(6 + 2*i)
		if sb == nil {
			continue
		}
		sr := reader(sb)
		sets[i] = sr.glyphs(2, int(sr.u16(0)))
		r.fail(sr.err)
	}
	return cov, sets, r.err
}

// Format 1: format, coverageOffset, ligatureSetCount, ligatureSetOffsets[].
// LigatureSet: ligatureCount, ligatureOffsets[].
// Ligature: ligatureGlyph, componentCount, componentGlyphIDs[componentCount-1].
func parseLigatureSubst(b binarySegm) (*LigatureSubst, error) {
	r := reader(b)
	if format := r.u16(0); r.err == nil && format != 1 {
		return nil, fmt.Errorf("unsupported ligature substitution format %d", format)
	}
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	st := &LigatureSubst{}
	n := r.count(4, len(cov), "ligature set")
	for i := 0; i < n && r.err == nil; i++ {
		lsb := r.sub(6 + 2*i)
		if lsb == nil {
			continue
		}
		ls := reader(lsb)
		m := int(ls.u16(0))
		for j := 0; j < m && ls.err == nil; j++ {
			lb := ls.sub(2 + 2*j)
			if lb == nil {
				continue
			}
			lr := reader(lb)
			lig := Ligature{Glyph: GlyphIndex(lr.u16(0))}
			cc := int(lr.u16(2))
			if lr.err == nil && cc == 0 {
				return nil, fmt.Errorf("ligature without components")
			}
			lig.Components = append([]GlyphIndex{cov[i]}, lr.glyphs(4, cc-1)...)
			if lr.err != nil {
				return nil, lr.err
			}
			st.Ligatures = append(st.Ligatures, lig)
		}
		r.fail(ls.err)
	}
	return st, r.err
}

// Format 1: format, coverageOffset, backtrackGlyphCount, backtrackCoverageOffsets[],
// lookaheadGlyphCount, lookaheadCoverageOffsets[], glyphCount, substituteGlyphIDs[].
func parseReverseChainSubst(b binarySegm) (*ReverseChainSubst, error) {
	r := reader(b)
	if format := r.u16(0); r.err == nil && format != 1 {
		return nil, fmt.Errorf("unsupported reverse chaining format %d", format)
	}
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return nil, err
	}
	st := &ReverseChainSubst{Input: cov}
	pos := 4
	bc := int(r.u16(pos))
	for k := 0; k < bc; k++ {
		c, err := parseCoverage(r.sub(pos + 2 + 2*k))
		if err != nil {
			return nil, err
		}
		st.Backtrack = append(st.Backtrack, c)
	}
	st.Backtrack = reverse(st.Backtrack)
	pos += 2 + 2*bc
	lc := int(r.u16(pos))
	for k := 0; k < lc; k++ {
		c, err := parseCoverage(r.sub(pos + 2 + 2*k))
		if err != nil {
			return nil, err
		}
		st.Lookahead = append(st.Lookahead, c)
	}
	pos += 2 + 2*lc
	n := int(r.u16(pos))
	if r.err == nil && n != len(cov) {
		return nil, fmt.Errorf("reverse chaining: %d substitutes for %d covered glyphs", n, len(cov))
	}
	st.Output = r.glyphs(pos+2, n)
	return st, r.err
}
