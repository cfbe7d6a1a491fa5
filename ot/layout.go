package ot

import (
	"fmt"
	"strconv"
)

// Maximum reasonable counts for OpenType table structures.
// These limits prevent broken fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation.
const (
	MaxScriptCount   = 200   // Scripts: typically < 10
	MaxLangSysCount  = 500   // Language systems per script
	MaxFeatureCount  = 2000  // Features: typically < 200
	MaxLookupCount   = 5000  // Lookups: typically < 500
	MaxSubtableCount = 5000  // Subtables per lookup
	MaxGlyphCount    = 65536 // Maximum glyph index (uint16)
)

// LayoutTable represents one of the OpenType advanced layout tables GSUB or
// GPOS. Both share the same top-level structure: a script list, a feature
// list and a lookup list.
//
// See https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2
type LayoutTable struct {
	Tag      Tag // GSUB or GPOS
	Scripts  []Script
	Features []Feature
	Lookups  []*Lookup
}

// IsGPos is true for a GPOS table.
func (lytt *LayoutTable) IsGPos() bool {
	return lytt != nil && lytt.Tag == T("GPOS")
}

// Script is a script record of a layout table's script list.
type Script struct {
	Tag         Tag
	DefaultLang *LangSys // may be nil
	Langs       []LangSys
}

// LangSys identifies the features to activate for a language system.
// RequiredFeature is -1 if the language system has no required feature.
type LangSys struct {
	Tag             Tag // 'dflt' for a script's default language system
	RequiredFeature int
	FeatureIndices  []int
}

// AllLangSys returns the default language system (tagged 'dflt') followed by
// the language specific ones.
func (s Script) AllLangSys() []LangSys {
	all := make([]LangSys, 0, len(s.Langs)+1)
	if s.DefaultLang != nil {
		all = append(all, *s.DefaultLang)
	}
	return append(all, s.Langs...)
}

// Feature is a feature record of a layout table's feature list.
type Feature struct {
	Tag     Tag
	Lookups []int // indices into the lookup list
}

// Lookup is a decoded lookup of a layout table.
// Extension lookups are resolved, i.e. Type is never an extension type.
type Lookup struct {
	Index            int
	Type             LayoutTableLookupType
	Flag             LayoutTableLookupFlag
	MarkFilteringSet int // -1 if flag does not contain LOOKUP_FLAG_USE_MARK_FILTERING_SET
	Subtables        []Subtable
}

// MarkAttachmentType returns the mark attachment class filter of a lookup's flag.
func (l *Lookup) MarkAttachmentType() int {
	return int(l.Flag&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK) >> 8
}

// Subtable is implemented by every decoded lookup subtable type.
type Subtable interface {
	// LookupType returns the (resolved) lookup type of a subtable.
	LookupType() LayoutTableLookupType
}

// LayoutTableLookupFlag is a flag type for layout tables (GPOS and GSUB).
type LayoutTableLookupFlag uint16

// Lookup flags of layout tables (GPOS and GSUB)
const ( // LookupFlag bit enumeration
	// Note that the RIGHT_TO_LEFT flag is used only for GPOS type 3 lookups and is ignored
	// otherwise. It is not used by client software in determining text direction.
	LOOKUP_FLAG_RIGHT_TO_LEFT             LayoutTableLookupFlag = 0x0001
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LayoutTableLookupFlag = 0x0002 // If set, skips over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LayoutTableLookupFlag = 0x0004 // If set, skips over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LayoutTableLookupFlag = 0x0008 // If set, skips over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LayoutTableLookupFlag = 0x0010 // If set, the lookup table is followed by a MarkFilteringSet field.
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LayoutTableLookupFlag = 0xFF00 // If not zero, skips over all marks of attachment type different from specified.
)

// LayoutTableLookupType is a type identifier for layout lookup records (GPOS and GSUB).
// Enum values are different for GPOS and GSUB.
type LayoutTableLookupType uint16

// GSUB Lookup Type Enumeration
const (
	GSubLookupTypeSingle          LayoutTableLookupType = 1 // Replace one glyph with one glyph
	GSubLookupTypeMultiple        LayoutTableLookupType = 2 // Replace one glyph with more than one glyph
	GSubLookupTypeAlternate       LayoutTableLookupType = 3 // Replace one glyph with one of many glyphs
	GSubLookupTypeLigature        LayoutTableLookupType = 4 // Replace multiple glyphs with one glyph
	GSubLookupTypeContext         LayoutTableLookupType = 5 // Replace one or more glyphs in context
	GSubLookupTypeChainingContext LayoutTableLookupType = 6 // Replace one or more glyphs in chained context
	GSubLookupTypeExtensionSubs   LayoutTableLookupType = 7 // Extension mechanism for other substitutions
	GSubLookupTypeReverseChaining LayoutTableLookupType = 8 // Applied in reverse order, replace single glyph in chaining context
)

// GPOS Lookup Type Enumeration
const (
	GPosLookupTypeSingle            LayoutTableLookupType = 1 // Adjust position of a single glyph
	GPosLookupTypePair              LayoutTableLookupType = 2 // Adjust position of a pair of glyphs
	GPosLookupTypeCursive           LayoutTableLookupType = 3 // Attach cursive glyphs
	GPosLookupTypeMarkToBase        LayoutTableLookupType = 4 // Attach a combining mark to a base glyph
	GPosLookupTypeMarkToLigature    LayoutTableLookupType = 5 // Attach a combining mark to a ligature
	GPosLookupTypeMarkToMark        LayoutTableLookupType = 6 // Attach a combining mark to another mark
	GPosLookupTypeContextPos        LayoutTableLookupType = 7 // Position one or more glyphs in context
	GPosLookupTypeChainedContextPos LayoutTableLookupType = 8 // Position one or more glyphs in chained context
	GPosLookupTypeExtensionPos      LayoutTableLookupType = 9 // Extension mechanism for other positionings
)

var gsubLookupTypeNames = [...]string{"Single", "Multiple", "Alternate", "Ligature",
	"Context", "Chaining", "Extension", "Reverse"}

var gposLookupTypeNames = [...]string{"Single", "Pair", "Cursive", "MarkToBase",
	"MarkToLigature", "MarkToMark", "ContextPos", "Chained", "Ext"}

// GSubString interprets a layout table lookup type as a GSUB table type.
func (lt LayoutTableLookupType) GSubString() string {
	if lt >= 1 && int(lt) <= len(gsubLookupTypeNames) {
		return gsubLookupTypeNames[lt-1]
	}
	return strconv.Itoa(int(lt))
}

// GPosString interprets a layout table lookup type as a GPOS table type.
func (lt LayoutTableLookupType) GPosString() string {
	if lt >= 1 && int(lt) <= len(gposLookupTypeNames) {
		return gposLookupTypeNames[lt-1]
	}
	return strconv.Itoa(int(lt))
}

// SequenceLookupRecord identifies a nested lookup to apply at a position
// within a matched input sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// --- Parsing ---------------------------------------------------------------

// parseLayoutTable decodes a GSUB or GPOS table. An error is returned for a
// broken header or broken script/feature/lookup lists. Damaged lookup
// subtables are skipped and recorded as warnings in ec.
func parseLayoutTable(tag Tag, b binarySegm, numGlyphs int, ec *errorCollector) (*LayoutTable, error) {
	r := reader(b)
	major, minor := r.u16(0), r.u16(2)
	if r.err != nil {
		return nil, fmt.Errorf("%s header: %w", tag, r.err)
	}
	if major != 1 || minor > 1 {
		return nil, fmt.Errorf("%s: unsupported table version %d.%d", tag, major, minor)
	}
	tracer().Debugf("%s table version %d.%d", tag, major, minor)
	lytt := &LayoutTable{Tag: tag}
	var err error
	if sl := r.sub(4); sl != nil {
		if lytt.Scripts, err = parseScriptList(sl); err != nil {
			return nil, fmt.Errorf("%s script list: %w", tag, err)
		}
	}
	if fl := r.sub(6); fl != nil {
		if lytt.Features, err = parseFeatureList(fl); err != nil {
			return nil, fmt.Errorf("%s feature list: %w", tag, err)
		}
	}
	if ll := r.sub(8); ll != nil {
		p := &lookupParser{table: tag, isGPos: tag == T("GPOS"), numGlyphs: numGlyphs, ec: ec}
		if lytt.Lookups, err = p.parseLookupList(ll); err != nil {
			return nil, fmt.Errorf("%s lookup list: %w", tag, err)
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("%s header offsets: %w", tag, r.err)
	}
	return lytt, nil
}

// ScriptList: scriptCount, then ScriptRecords of {tag, offset}.
func parseScriptList(b binarySegm) ([]Script, error) {
	r := reader(b)
	n := r.count(0, MaxScriptCount, "script")
	scripts := make([]Script, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		rec := 2 + 6*i
		scr := Script{Tag: Tag(r.u32(rec))}
		sb := r.sub(rec + 4)
		if sb == nil {
			continue
		}
		sr := reader(sb)
		if dflt := sr.sub(0); dflt != nil {
			ls := parseLangSys(dflt, DFLTLang, sr)
			scr.DefaultLang = &ls
		}
		m := sr.count(2, MaxLangSysCount, "language system")
		for j := 0; j < m && sr.err == nil; j++ {
			lrec := 4 + 6*j
			ltag := Tag(sr.u32(lrec))
			if lb := sr.sub(lrec + 4); lb != nil {
				scr.Langs = append(scr.Langs, parseLangSys(lb, ltag, sr))
			}
		}
		if sr.err != nil {
			return nil, fmt.Errorf("script %s: %w", scr.Tag, sr.err)
		}
		scripts = append(scripts, scr)
	}
	return scripts, r.err
}

// LangSys: lookupOrderOffset (reserved), requiredFeatureIndex, featureIndexCount,
// featureIndices. Errors are reported through parent.
func parseLangSys(b binarySegm, tag Tag, parent *segmReader) LangSys {
	r := reader(b)
	ls := LangSys{Tag: tag, RequiredFeature: -1}
	if req := r.u16(2); req != 0xFFFF {
		ls.RequiredFeature = int(req)
	}
	n := r.count(4, MaxFeatureCount, "feature index")
	for _, inx := range r.u16s(6, n) {
		ls.FeatureIndices = append(ls.FeatureIndices, int(inx))
	}
	parent.fail(r.err)
	return ls
}

// FeatureList: featureCount, then FeatureRecords of {tag, offset}.
// Feature: featureParamsOffset, lookupIndexCount, lookupListIndices.
func parseFeatureList(b binarySegm) ([]Feature, error) {
	r := reader(b)
	n := r.count(0, MaxFeatureCount, "feature")
	features := make([]Feature, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		rec := 2 + 6*i
		f := Feature{Tag: Tag(r.u32(rec))}
		if fb := r.sub(rec + 4); fb != nil {
			fr := reader(fb)
			m := fr.count(2, MaxLookupCount, "lookup index")
			for _, inx := range fr.u16s(4, m) {
				f.Lookups = append(f.Lookups, int(inx))
			}
			if fr.err != nil {
				return nil, fmt.Errorf("feature %s: %w", f.Tag, fr.err)
			}
		}
		features = append(features, f)
	}
	return features, r.err
}

// lookupParser holds the context needed to decode lookup subtables.
type lookupParser struct {
	table     Tag
	isGPos    bool
	numGlyphs int
	ec        *errorCollector
}

// LookupList: lookupCount, lookupOffsets.
// Lookup: lookupType, lookupFlag, subTableCount, subtableOffsets, [markFilteringSet].
func (p *lookupParser) parseLookupList(b binarySegm) ([]*Lookup, error) {
	r := reader(b)
	n := r.count(0, MaxLookupCount, "lookup")
	lookups := make([]*Lookup, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		lb := r.sub(2 + 2*i)
		if r.err != nil {
			break
		}
		if lb == nil {
			p.ec.addWarning(p.table, i, "NULL lookup offset")
			lookups = append(lookups, &Lookup{Index: i, MarkFilteringSet: -1})
			continue
		}
		lookups = append(lookups, p.parseLookup(i, lb))
	}
	return lookups, r.err
}

func (p *lookupParser) parseLookup(inx int, b binarySegm) *Lookup {
	r := reader(b)
	lookup := &Lookup{
		Index:            inx,
		Type:             LayoutTableLookupType(r.u16(0)),
		Flag:             LayoutTableLookupFlag(r.u16(2)),
		MarkFilteringSet: -1,
	}
	n := r.count(4, MaxSubtableCount, "subtable")
	if lookup.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		lookup.MarkFilteringSet = int(r.u16(6 + 2*n))
	}
	if r.err != nil {
		p.ec.addWarning(p.table, inx, fmt.Sprintf("lookup header: %v", r.err))
		return lookup
	}
	for j := 0; j < n; j++ {
		sb := r.sub(6 + 2*j)
		if r.err != nil || sb == nil {
			p.ec.addWarning(p.table, inx, fmt.Sprintf("subtable %d: bad offset", j))
			r.err = nil
			continue
		}
		st, typ, err := p.parseSubtable(lookup.Type, sb, 0)
		if err != nil {
			p.ec.addWarning(p.table, inx, fmt.Sprintf("subtable %d: %v", j, err))
			continue
		}
		if typ != lookup.Type {
			lookup.Type = typ // extension lookups take the type of their targets
		}
		lookup.Subtables = append(lookup.Subtables, st)
	}
	if p.isGPos {
		tracer().Debugf("GPOS lookup #%d of type %s with %d subtables", inx, lookup.Type.GPosString(), len(lookup.Subtables))
	} else {
		tracer().Debugf("GSUB lookup #%d of type %s with %d subtables", inx, lookup.Type.GSubString(), len(lookup.Subtables))
	}
	return lookup
}

const maxExtensionDepth = 4

// parseSubtable dispatches on the lookup type. It returns the resolved lookup
// type, which differs from typ for extension subtables.
func (p *lookupParser) parseSubtable(typ LayoutTableLookupType, b binarySegm, depth int) (Subtable, LayoutTableLookupType, error) {
	if p.isExtension(typ) {
		if depth >= maxExtensionDepth {
			return nil, typ, fmt.Errorf("extension nesting too deep")
		}
		// Extension: format, extensionLookupType, extensionOffset (32 bit)
		r := reader(b)
		if format := r.u16(0); r.err == nil && format != 1 {
			return nil, typ, fmt.Errorf("unsupported extension format %d", format)
		}
		target := LayoutTableLookupType(r.u16(2))
		ext := r.sub32(4)
		if r.err != nil {
			return nil, typ, r.err
		}
		if ext == nil || p.isExtension(target) {
			return nil, typ, fmt.Errorf("invalid extension subtable")
		}
		return p.parseSubtable(target, ext, depth+1)
	}
	var st Subtable
	var err error
	if p.isGPos {
		st, err = p.parseGPosSubtable(typ, b)
	} else {
		st, err = p.parseGSubSubtable(typ, b)
	}
	return st, typ, err
}

func (p *lookupParser) isExtension(typ LayoutTableLookupType) bool {
	if p.isGPos {
		return typ == GPosLookupTypeExtensionPos
	}
	return typ == GSubLookupTypeExtensionSubs
}

// --- Sequence context (shared by GSUB 5/6 and GPOS 7/8) -------------------

// ContextRule is a normalized rule of a (chained) sequence context subtable.
// Every position holds the set of glyphs it matches. Backtrack is stored in
// logical order, i.e. the glyph immediately preceding the input comes last.
type ContextRule struct {
	Backtrack [][]GlyphIndex
	Input     [][]GlyphIndex
	Lookahead [][]GlyphIndex
	Records   []SequenceLookupRecord
}

// SequenceContext represents GSUB lookup types 5 and 6 and GPOS lookup types
// 7 and 8, in any of their three formats.
type SequenceContext struct {
	Type    LayoutTableLookupType
	Chained bool
	Format  uint16
	Rules   []ContextRule
}

// LookupType is part of interface Subtable.
func (sc *SequenceContext) LookupType() LayoutTableLookupType {
	return sc.Type
}

func (p *lookupParser) parseSequenceContext(typ LayoutTableLookupType, chained bool, b binarySegm) (*SequenceContext, error) {
	r := reader(b)
	sc := &SequenceContext{Type: typ, Chained: chained, Format: r.u16(0)}
	if r.err != nil {
		return nil, r.err
	}
	var err error
	switch sc.Format {
	case 1:
		err = p.parseContextFmt1(sc, r)
	case 2:
		err = p.parseContextFmt2(sc, r)
	case 3:
		err = p.parseContextFmt3(sc, r)
	default:
		err = fmt.Errorf("unsupported context format %d", sc.Format)
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// Format 1: glyph based rules.
// Non-chained: format, coverageOffset, ruleSetCount, ruleSetOffsets.
// Rule: glyphCount, seqLookupCount, inputSequence[glyphCount-1], seqLookupRecords.
// Chained: format, coverageOffset, chainedRuleSetCount, chainedRuleSetOffsets.
// ChainedRule: backtrackGlyphCount, backtrack[], inputGlyphCount, input[-1],
// lookaheadGlyphCount, lookahead[], seqLookupCount, seqLookupRecords.
func (p *lookupParser) parseContextFmt1(sc *SequenceContext, r *segmReader) error {
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return err
	}
	n := r.count(4, len(cov), "rule set")
	for i := 0; i < n && r.err == nil; i++ {
		rsb := r.sub(6 + 2*i)
		if rsb == nil {
			continue
		}
		rs := reader(rsb)
		m := rs.count(0, 0xFFFF, "rule")
		for j := 0; j < m && rs.err == nil; j++ {
			rb := rs.sub(2 + 2*j)
			if rb == nil {
				continue
			}
			rule := ContextRule{}
			rr := reader(rb)
			pos := 0
			if sc.Chained {
				bc := int(rr.u16(pos))
				rule.Backtrack = singletons(reverse(rr.glyphs(pos+2, bc)))
				pos += 2 + 2*bc
			}
			ic := int(rr.u16(pos))
			if ic == 0 {
				return fmt.Errorf("context rule without input")
			}
			pos += 2
			if !sc.Chained {
				lc := int(rr.u16(pos))
				rule.Input = append([][]GlyphIndex{{cov[i]}}, singletons(rr.glyphs(pos+2, ic-1))...)
				pos += 2 + 2*(ic-1)
				rule.Records = readSeqLookupRecords(rr, pos, lc)
			} else {
				rule.Input = append([][]GlyphIndex{{cov[i]}}, singletons(rr.glyphs(pos, ic-1))...)
				pos += 2 * (ic - 1)
				lac := int(rr.u16(pos))
				rule.Lookahead = singletons(rr.glyphs(pos+2, lac))
				pos += 2 + 2*lac
				lc := int(rr.u16(pos))
				rule.Records = readSeqLookupRecords(rr, pos+2, lc)
			}
			if rr.err != nil {
				return rr.err
			}
			sc.Rules = append(sc.Rules, rule)
		}
		if rs.err != nil {
			return rs.err
		}
	}
	return r.err
}

// Format 2: class based rules.
// Non-chained: format, coverageOffset, classDefOffset, classSeqRuleSetCount, offsets.
// Chained: format, coverageOffset, backtrackClassDefOffset, inputClassDefOffset,
// lookaheadClassDefOffset, chainedClassSeqRuleSetCount, offsets.
// Rules have the layout of format 1, with class values instead of glyphs.
func (p *lookupParser) parseContextFmt2(sc *SequenceContext, r *segmReader) error {
	cov, err := parseCoverage(r.sub(2))
	if err != nil {
		return err
	}
	var backCD, inCD, aheadCD ClassDef
	var setsAt int
	if sc.Chained {
		if backCD, err = parseClassDef(r.sub(4)); err != nil {
			return err
		}
		if inCD, err = parseClassDef(r.sub(6)); err != nil {
			return err
		}
		if aheadCD, err = parseClassDef(r.sub(8)); err != nil {
			return err
		}
		setsAt = 10
	} else {
		if inCD, err = parseClassDef(r.sub(4)); err != nil {
			return err
		}
		setsAt = 6
	}
	expand := func(cd ClassDef, classes []uint16) [][]GlyphIndex {
		sets := make([][]GlyphIndex, len(classes))
		for k, c := range classes {
			sets[k] = cd.Glyphs(c, p.numGlyphs)
		}
		return sets
	}
	n := r.count(setsAt, 0xFFFF, "class rule set")
	for i := 0; i < n && r.err == nil; i++ {
		rsb := r.sub(setsAt + 2 + 2*i)
		if rsb == nil {
			continue
		}
		// the first input position matches glyphs of class i which are also covered
		first := intersectGlyphs(cov, inCD.Glyphs(uint16(i), p.numGlyphs))
		if len(first) == 0 {
			continue
		}
		rs := reader(rsb)
		m := rs.count(0, 0xFFFF, "class rule")
		for j := 0; j < m && rs.err == nil; j++ {
			rb := rs.sub(2 + 2*j)
			if rb == nil {
				continue
			}
			rule := ContextRule{}
			rr := reader(rb)
			pos := 0
			if sc.Chained {
				bc := int(rr.u16(pos))
				rule.Backtrack = expand(backCD, reverse(rr.u16s(pos+2, bc)))
				pos += 2 + 2*bc
			}
			ic := int(rr.u16(pos))
			if ic == 0 {
				return fmt.Errorf("class context rule without input")
			}
			pos += 2
			if !sc.Chained {
				lc := int(rr.u16(pos))
				rule.Input = append([][]GlyphIndex{first}, expand(inCD, rr.u16s(pos+2, ic-1))...)
				pos += 2 + 2*(ic-1)
				rule.Records = readSeqLookupRecords(rr, pos, lc)
			} else {
				rule.Input = append([][]GlyphIndex{first}, expand(inCD, rr.u16s(pos, ic-1))...)
				pos += 2 * (ic - 1)
				lac := int(rr.u16(pos))
				rule.Lookahead = expand(aheadCD, rr.u16s(pos+2, lac))
				pos += 2 + 2*lac
				lc := int(rr.u16(pos))
				rule.Records = readSeqLookupRecords(rr, pos+2, lc)
			}
			if rr.err != nil {
				return rr.err
			}
			sc.Rules = append(sc.Rules, rule)
		}
		if rs.err != nil {
			return rs.err
		}
	}
	return r.err
}

// Format 3: coverage based, exactly one rule.
// Non-chained: format, glyphCount, seqLookupCount, coverageOffsets[glyphCount], seqLookupRecords.
// Chained: format, backtrackGlyphCount, backtrackCoverageOffsets, inputGlyphCount,
// inputCoverageOffsets, lookaheadGlyphCount, lookaheadCoverageOffsets,
// seqLookupCount, seqLookupRecords.
func (p *lookupParser) parseContextFmt3(sc *SequenceContext, r *segmReader) error {
	coverages := func(at, n int) ([][]GlyphIndex, error) {
		sets := make([][]GlyphIndex, n)
		for k := 0; k < n; k++ {
			cov, err := parseCoverage(r.sub(at + 2*k))
			if err != nil {
				return nil, err
			}
			sets[k] = cov
		}
		return sets, r.err
	}
	rule := ContextRule{}
	var err error
	if !sc.Chained {
		ic := int(r.u16(2))
		lc := int(r.u16(4))
		if rule.Input, err = coverages(6, ic); err != nil {
			return err
		}
		rule.Records = readSeqLookupRecords(r, 6+2*ic, lc)
	} else {
		pos := 2
		bc := int(r.u16(pos))
		if rule.Backtrack, err = coverages(pos+2, bc); err != nil {
			return err
		}
		rule.Backtrack = reverse(rule.Backtrack)
		pos += 2 + 2*bc
		ic := int(r.u16(pos))
		if rule.Input, err = coverages(pos+2, ic); err != nil {
			return err
		}
		pos += 2 + 2*ic
		lac := int(r.u16(pos))
		if rule.Lookahead, err = coverages(pos+2, lac); err != nil {
			return err
		}
		pos += 2 + 2*lac
		lc := int(r.u16(pos))
		rule.Records = readSeqLookupRecords(r, pos+2, lc)
	}
	if r.err != nil {
		return r.err
	}
	if len(rule.Input) == 0 {
		return fmt.Errorf("context rule without input")
	}
	sc.Rules = append(sc.Rules, rule)
	return nil
}

func readSeqLookupRecords(r *segmReader, at, n int) []SequenceLookupRecord {
	vals := r.u16s(at, 2*n)
	if vals == nil {
		return nil
	}
	recs := make([]SequenceLookupRecord, n)
	for i := range recs {
		recs[i] = SequenceLookupRecord{SequenceIndex: vals[2*i], LookupListIndex: vals[2*i+1]}
	}
	return recs
}

func singletons(glyphs []GlyphIndex) [][]GlyphIndex {
	sets := make([][]GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		sets[i] = []GlyphIndex{g}
	}
	return sets
}

func reverse[T any](s []T) []T {
	r := make([]T, len(s))
	for i, x := range s {
		r[len(s)-1-i] = x
	}
	return r
}
