package ot

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/fontfeatures/internal/testfont"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupRecordTypeString(t *testing.T) {
	if GSubLookupTypeChainingContext.GSubString() != "Chaining" {
		t.Errorf("expected GSUB type 6 to have string 'Chaining', has %s",
			GSubLookupTypeChainingContext.GSubString())
	}
	if GSubLookupTypeReverseChaining.GSubString() != "Reverse" {
		t.Errorf("expected GSUB type 8 to have string 'Reverse', has %s",
			GSubLookupTypeReverseChaining.GSubString())
	}
	if GPosLookupTypeMarkToLigature.GPosString() != "MarkToLigature" {
		t.Errorf("expected GPOS type 5 to have string 'MarkToLigature', has %s",
			GPosLookupTypeMarkToLigature.GPosString())
	}
	if LayoutTableLookupType(42).GSubString() != "42" {
		t.Errorf("expected unknown lookup type to print as number")
	}
}

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	tag := Tag(0x636d6170)
	if tag.String() != "cmap" {
		t.Errorf("expected tag 0x636d6170 to be 'cmap', is %s", tag.String())
	}
	tag = MakeTag([]byte("cmap"))
	if tag.String() != "cmap" {
		t.Errorf("expected tag MakeTag(cmap) to be 'cmap', is %s", tag.String())
	}
	tag = T("cmap")
	if tag.String() != "cmap" {
		t.Errorf("expected tag T(cmap) to be 'cmap', is %s", tag.String())
	}
	assert.Equal(t, "ENG ", MakeTag([]byte("ENG")).String())
	assert.Equal(t, "ENG", T("ENG").Name())
	assert.Equal(t, "dflt", DFLTLang.Name())
}

func TestParseDirectory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	record := func(b []byte, i int) []byte { return b[12+16*i:] }
	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"too short", func(b []byte) []byte { return b[:8] }},
		{"collection", func(b []byte) []byte {
			copy(b, "ttcf")
			return b
		}},
		{"unknown type", func(b []byte) []byte {
			copy(b, "wOFF")
			return b
		}},
		{"unsorted", func(b []byte) []byte {
			r0, r1 := record(b, 0), record(b, 1)
			tmp := make([]byte, 16)
			copy(tmp, r0[:16])
			copy(r0[:16], r1[:16])
			copy(r1[:16], tmp)
			return b
		}},
		{"misaligned", func(b []byte) []byte {
			r := record(b, 2)
			binary.BigEndian.PutUint32(r[8:], binary.BigEndian.Uint32(r[8:])+1)
			return b
		}},
		{"out of bounds", func(b []byte) []byte {
			r := record(b, 2)
			binary.BigEndian.PutUint32(r[12:], uint32(len(b)))
			return b
		}},
		{"truncated directory", func(b []byte) []byte { return b[:40] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := append([]byte(nil), testfont.GoRegular()...)
			_, err := Parse(tt.mangle(b))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFontFormat), "error %v should be a font format error", err)
		})
	}
}

func TestParseGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	otf, err := Parse(testfont.Font(nil))
	require.NoError(t, err)
	assert.Nil(t, otf.Layout.GSub)
	assert.Nil(t, otf.Layout.GPos)
	assert.Nil(t, otf.Layout.GDef)
	assert.True(t, otf.HasTable(T("cmap")))
	assert.False(t, otf.HasTable(T("GSUB")))
	assert.NotNil(t, otf.Table(T("head")))
	tags := otf.TableTags()
	for i := 1; i < len(tags); i++ {
		assert.Less(t, tags[i-1], tags[i])
	}
	assert.NotEmpty(t, otf.FullName())
}

func TestGlyphNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	otf, err := Parse(testfont.Font(nil))
	require.NoError(t, err)
	tests := []struct {
		r    rune
		name string
	}{
		{'A', "A"},
		{'!', "exclam"},
		{'{', "braceleft"},
		{'Ä', "Adieresis"},
	}
	for _, tt := range tests {
		gid, ok := otf.GlyphForRune(tt.r)
		require.True(t, ok)
		assert.Equal(t, GlyphIndex(testfont.GID(tt.r)), gid)
		assert.Equal(t, tt.name, otf.GlyphName(gid))
		back, ok := otf.GlyphByName(tt.name)
		assert.True(t, ok)
		assert.Equal(t, gid, back)
		r, ok := otf.RuneForGlyph(gid)
		assert.True(t, ok)
		assert.Equal(t, tt.r, r)
	}
	assert.Equal(t, ".notdef", otf.GlyphName(0))
	_, ok := otf.GlyphByName("no-such-glyph")
	assert.False(t, ok)
	_, ok = otf.GlyphForRune('\ufffe')
	assert.False(t, ok)
	assert.Len(t, otf.GlyphNames(), otf.NumGlyphs())
}

func TestMetrics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	otf, err := Parse(testfont.Font(nil))
	require.NoError(t, err)
	m, err := otf.Metrics(GlyphIndex(testfont.GID('A')))
	require.NoError(t, err)
	assert.Greater(t, m.Advance, 0)
	assert.Less(t, m.XMin, m.XMax)
	assert.Less(t, m.YMin, m.YMax)
	assert.Equal(t, m.XMin, m.LSB())
	assert.Equal(t, m.Advance-m.XMax, m.RSB())
	x, err := otf.Metrics(GlyphIndex(testfont.GID('x')))
	require.NoError(t, err)
	assert.Less(t, x.YMax, m.YMax, "x-height should be below cap height")
}

func TestParseGSUB(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	a, b, c := testfont.GID('a'), testfont.GID('b'), testfont.GID('c')
	A, B := testfont.GID('A'), testfont.GID('B')
	gsub := testfont.Layout(
		[]testfont.Script{
			testfont.DefaultScript(2),
			{Tag: "latn", DefaultFeatures: []uint16{0}, Langs: map[string][]uint16{"DEU": {0, 1}}},
		},
		[]testfont.Feature{{Tag: "smcp", Lookups: []uint16{0}}, {Tag: "calt", Lookups: []uint16{2}}},
		[]testfont.Lookup{
			{Type: 1, Subtables: [][]byte{testfont.SingleSubst(map[uint16]uint16{a: A, b: B})}},
			{Type: 4, Flag: 0x0008, Subtables: [][]byte{testfont.LigatureSubst(testfont.Lig{Components: []uint16{a, b, c}, Glyph: A})}},
			{Type: 6, Subtables: [][]byte{testfont.ChainContext3(
				[][]uint16{{a}, {b}}, [][]uint16{{c}}, [][]uint16{{a, b}},
				testfont.SeqLookup{SequenceIndex: 0, Lookup: 0})}},
			{Type: 7, Subtables: [][]byte{(&testfont.Writer{}).U16(1).U16(1).U32(8).
				Bytes(testfont.SingleSubst(map[uint16]uint16{c: B})).Data()}},
		})
	otf, err := Parse(testfont.Font(map[string][]byte{"GSUB": gsub}))
	require.NoError(t, err)
	require.NotNil(t, otf.Layout.GSub)
	lytt := otf.Layout.GSub
	assert.False(t, lytt.IsGPos())
	assert.Empty(t, otf.Warnings())

	require.Len(t, lytt.Scripts, 2)
	assert.Equal(t, "DFLT", lytt.Scripts[0].Tag.String())
	latn := lytt.Scripts[1]
	require.Len(t, latn.AllLangSys(), 2)
	assert.Equal(t, DFLTLang, latn.AllLangSys()[0].Tag)
	assert.Equal(t, "DEU ", latn.Langs[0].Tag.String())
	assert.Equal(t, []int{0, 1}, latn.Langs[0].FeatureIndices)
	assert.Equal(t, -1, latn.Langs[0].RequiredFeature)

	require.Len(t, lytt.Features, 2)
	assert.Equal(t, T("calt"), lytt.Features[1].Tag)
	assert.Equal(t, []int{2}, lytt.Features[1].Lookups)

	require.Len(t, lytt.Lookups, 4)
	single, ok := lytt.Lookups[0].Subtables[0].(*SingleSubst)
	require.True(t, ok)
	in, out := []GlyphIndex{GlyphIndex(a), GlyphIndex(b)}, []GlyphIndex{GlyphIndex(A), GlyphIndex(B)}
	if a > b {
		in, out = []GlyphIndex{GlyphIndex(b), GlyphIndex(a)}, []GlyphIndex{GlyphIndex(B), GlyphIndex(A)}
	}
	assert.Equal(t, in, single.Input)
	assert.Equal(t, out, single.Output)

	assert.Equal(t, LOOKUP_FLAG_IGNORE_MARKS, lytt.Lookups[1].Flag)
	lig := lytt.Lookups[1].Subtables[0].(*LigatureSubst)
	want := []Ligature{{Components: []GlyphIndex{GlyphIndex(a), GlyphIndex(b), GlyphIndex(c)}, Glyph: GlyphIndex(A)}}
	if diff := cmp.Diff(want, lig.Ligatures); diff != "" {
		t.Errorf("ligatures mismatch (-want +got):\n%s", diff)
	}

	chain := lytt.Lookups[2].Subtables[0].(*SequenceContext)
	assert.True(t, chain.Chained)
	assert.Equal(t, uint16(3), chain.Format)
	require.Len(t, chain.Rules, 1)
	rule := chain.Rules[0]
	assert.Equal(t, [][]GlyphIndex{{GlyphIndex(a)}, {GlyphIndex(b)}}, rule.Backtrack, "backtrack in logical order")
	assert.Equal(t, [][]GlyphIndex{{GlyphIndex(c)}}, rule.Input)
	assert.Len(t, rule.Lookahead[0], 2)
	assert.Equal(t, []SequenceLookupRecord{{SequenceIndex: 0, LookupListIndex: 0}}, rule.Records)

	ext := lytt.Lookups[3]
	assert.Equal(t, GSubLookupTypeSingle, ext.Type, "extension should be resolved")
	assert.Equal(t, []GlyphIndex{GlyphIndex(B)}, ext.Subtables[0].(*SingleSubst).Output)
}

func TestParseGPOS(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	A, V, tee := testfont.GID('A'), testfont.GID('V'), testfont.GID('T')
	acute := testfont.GID('´')
	gpos := testfont.Layout(
		[]testfont.Script{testfont.DefaultScript(2)},
		[]testfont.Feature{{Tag: "dist", Lookups: []uint16{0, 1}}, {Tag: "mark", Lookups: []uint16{2}}},
		[]testfont.Lookup{
			{Type: 1, Subtables: [][]byte{testfont.SinglePos(20, A, V)}},
			{Type: 2, Subtables: [][]byte{testfont.PairPos(
				testfont.Pair{First: A, Second: V, XAdvance: -80},
				testfont.Pair{First: tee, Second: A, XAdvance: -60},
				testfont.Pair{First: A, Second: tee, XAdvance: 0},
			)}},
			{Type: 4, Subtables: [][]byte{testfont.MarkToBase(
				map[uint16][2]int16{acute: {100, 500}},
				map[uint16][2]int16{A: {300, 700}},
			)}},
		})
	gdef := testfont.GDEF(map[uint16]uint16{A: 1, acute: 3}, nil)
	otf, err := Parse(testfont.Font(map[string][]byte{"GPOS": gpos, "GDEF": gdef}))
	require.NoError(t, err)
	require.NotNil(t, otf.Layout.GPos)
	assert.True(t, otf.Layout.GPos.IsGPos())
	lookups := otf.Layout.GPos.Lookups
	require.Len(t, lookups, 3)

	sp := lookups[0].Subtables[0].(*SinglePos)
	assert.Len(t, sp.Glyphs, 2)
	for _, v := range sp.Values {
		assert.Equal(t, ValueRecord{XAdvance: 20}, v)
	}

	pp := lookups[1].Subtables[0].(*PairPos)
	assert.Equal(t, uint16(1), pp.Format)
	require.Len(t, pp.Pairs, 2, "zero adjustments are dropped")
	for _, p := range pp.Pairs {
		switch p.First[0] {
		case GlyphIndex(A):
			assert.Equal(t, []GlyphIndex{GlyphIndex(V)}, p.Second)
			assert.Equal(t, int16(-80), p.Value1.XAdvance)
		case GlyphIndex(tee):
			assert.Equal(t, int16(-60), p.Value1.XAdvance)
		default:
			t.Errorf("unexpected first glyph %d", p.First[0])
		}
	}

	mb := lookups[2].Subtables[0].(*MarkAttachPos)
	assert.Equal(t, GPosLookupTypeMarkToBase, mb.LookupType())
	assert.Equal(t, 1, mb.ClassCount)
	assert.Equal(t, []MarkRecord{{Glyph: GlyphIndex(acute), Class: 0, Anchor: Anchor{X: 100, Y: 500}}}, mb.Marks)
	assert.Equal(t, []GlyphIndex{GlyphIndex(A)}, mb.Bases)
	require.Len(t, mb.BaseAnchors, 1)
	assert.Equal(t, &Anchor{300, 700}, mb.BaseAnchors[0][0])

	require.NotNil(t, otf.Layout.GDef)
	assert.Equal(t, GlyphClassMark, otf.Layout.GDef.GlyphClassDef[GlyphIndex(acute)])
	assert.Equal(t, []GlyphIndex{GlyphIndex(A)}, otf.Layout.GDef.GlyphClassDef.Glyphs(GlyphClassBase, otf.NumGlyphs()))
}

func sortedGlyphs(glyphs ...uint16) []GlyphIndex {
	gids := make([]GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		gids[i] = GlyphIndex(g)
	}
	slices.Sort(gids)
	return gids
}

func TestParseSequenceContexts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	a, b, c, x, y := testfont.GID('a'), testfont.GID('b'), testfont.GID('c'), testfont.GID('x'), testfont.GID('y')
	A, B := testfont.GID('A'), testfont.GID('B')
	one := func(g uint16) []GlyphIndex { return []GlyphIndex{GlyphIndex(g)} }
	rec := func(seq, lookup uint16) []SequenceLookupRecord {
		return []SequenceLookupRecord{{SequenceIndex: seq, LookupListIndex: lookup}}
	}
	gsub := testfont.Layout(
		[]testfont.Script{testfont.DefaultScript(1)},
		[]testfont.Feature{{Tag: "calt", Lookups: []uint16{1, 2, 3, 4, 5, 6}}},
		[]testfont.Lookup{
			{Type: 1, Subtables: [][]byte{testfont.SingleSubst(map[uint16]uint16{a: A})}},
			{Type: 5, Subtables: [][]byte{testfont.Context1(
				testfont.GlyphRule{Input: []uint16{a, b}, Records: []testfont.SeqLookup{{SequenceIndex: 0, Lookup: 0}}},
				testfont.GlyphRule{Input: []uint16{a, c}, Records: []testfont.SeqLookup{{SequenceIndex: 1, Lookup: 0}}},
			)}},
			{Type: 5, Subtables: [][]byte{testfont.Context2(
				[]uint16{a, b}, map[uint16]uint16{a: 1, b: 1, c: 2},
				testfont.ClassRule{Input: []uint16{1, 2}, Records: []testfont.SeqLookup{{SequenceIndex: 1, Lookup: 0}}},
			)}},
			{Type: 5, Subtables: [][]byte{testfont.Context3(
				[][]uint16{{a, b}, {c}}, testfont.SeqLookup{SequenceIndex: 0, Lookup: 0})}},
			{Type: 6, Subtables: [][]byte{testfont.ChainContext1(
				testfont.GlyphRule{Backtrack: []uint16{x, y}, Input: []uint16{a, b}, Lookahead: []uint16{c},
					Records: []testfont.SeqLookup{{SequenceIndex: 0, Lookup: 0}}},
			)}},
			{Type: 6, Subtables: [][]byte{testfont.ChainContext2(
				[]uint16{a}, map[uint16]uint16{x: 1}, map[uint16]uint16{a: 1, b: 2}, map[uint16]uint16{c: 1},
				testfont.ClassRule{Backtrack: []uint16{1}, Input: []uint16{1, 2}, Lookahead: []uint16{1},
					Records: []testfont.SeqLookup{{SequenceIndex: 0, Lookup: 0}}},
			)}},
			{Type: 8, Subtables: [][]byte{testfont.ReverseChainSubst(
				[][]uint16{{x}}, [][]uint16{{c}}, map[uint16]uint16{a: A, b: B})}},
		})
	otf, err := Parse(testfont.Font(map[string][]byte{"GSUB": gsub}))
	require.NoError(t, err)
	assert.Empty(t, otf.Warnings())
	lookups := otf.Layout.GSub.Lookups
	require.Len(t, lookups, 7)

	tests := []struct {
		name    string
		lookup  int
		chained bool
		format  uint16
		rules   []ContextRule
	}{
		{"glyph rules", 1, false, 1, []ContextRule{
			{Input: [][]GlyphIndex{one(a), one(b)}, Records: rec(0, 0)},
			{Input: [][]GlyphIndex{one(a), one(c)}, Records: rec(1, 0)},
		}},
		{"class rules", 2, false, 2, []ContextRule{
			{Input: [][]GlyphIndex{sortedGlyphs(a, b), one(c)}, Records: rec(1, 0)},
		}},
		{"coverage rule", 3, false, 3, []ContextRule{
			{Input: [][]GlyphIndex{sortedGlyphs(a, b), one(c)}, Records: rec(0, 0)},
		}},
		{"chained glyph rules", 4, true, 1, []ContextRule{
			{Backtrack: [][]GlyphIndex{one(x), one(y)}, Input: [][]GlyphIndex{one(a), one(b)},
				Lookahead: [][]GlyphIndex{one(c)}, Records: rec(0, 0)},
		}},
		{"chained class rules", 5, true, 2, []ContextRule{
			{Backtrack: [][]GlyphIndex{one(x)}, Input: [][]GlyphIndex{one(a), one(b)},
				Lookahead: [][]GlyphIndex{one(c)}, Records: rec(0, 0)},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := lookups[tt.lookup].Subtables[0].(*SequenceContext)
			require.True(t, ok, "subtable is %T", lookups[tt.lookup].Subtables[0])
			assert.Equal(t, tt.chained, sc.Chained)
			assert.Equal(t, tt.format, sc.Format)
			if diff := cmp.Diff(tt.rules, sc.Rules, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("rules mismatch (-want +got):\n%s", diff)
			}
		})
	}

	rev, ok := lookups[6].Subtables[0].(*ReverseChainSubst)
	require.True(t, ok)
	assert.Equal(t, GSubLookupTypeReverseChaining, rev.LookupType())
	assert.Equal(t, sortedGlyphs(a, b), rev.Input)
	assert.Equal(t, []GlyphIndex{GlyphIndex(A), GlyphIndex(B)}, rev.Output)
	assert.Equal(t, [][]GlyphIndex{one(x)}, rev.Backtrack)
	assert.Equal(t, [][]GlyphIndex{one(c)}, rev.Lookahead)
}

func TestParseGPOSKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	A, V, tee, o, f := testfont.GID('A'), testfont.GID('V'), testfont.GID('T'), testfont.GID('o'), testfont.GID('f')
	acute, grave := testfont.GID('´'), testfont.GID('`')
	gpos := testfont.Layout(
		[]testfont.Script{testfont.DefaultScript(3)},
		[]testfont.Feature{
			{Tag: "kern", Lookups: []uint16{1, 4}},
			{Tag: "mark", Lookups: []uint16{2}},
			{Tag: "mkmk", Lookups: []uint16{3}},
		},
		[]testfont.Lookup{
			{Type: 1, Subtables: [][]byte{testfont.SinglePos(10, A)}},
			{Type: 2, Subtables: [][]byte{testfont.PairPosClass(
				map[uint16]uint16{A: 1, tee: 1},
				map[uint16]uint16{V: 1, o: 2},
				map[[2]uint16]int16{{1, 1}: -80, {1, 2}: -40},
			)}},
			{Type: 5, Subtables: [][]byte{testfont.MarkToLigature(
				map[uint16][2]int16{acute: {100, 500}},
				map[uint16][][2]int16{f: {{100, 600}, {350, 600}}},
			)}},
			{Type: 6, Subtables: [][]byte{testfont.MarkToBase(
				map[uint16][2]int16{grave: {0, 500}},
				map[uint16][2]int16{acute: {0, 800}},
			)}},
			{Type: 7, Subtables: [][]byte{testfont.Context3(
				[][]uint16{{A}, {V}}, testfont.SeqLookup{SequenceIndex: 1, Lookup: 0})}},
		})
	otf, err := Parse(testfont.Font(map[string][]byte{"GPOS": gpos}))
	require.NoError(t, err)
	assert.Empty(t, otf.Warnings())
	lookups := otf.Layout.GPos.Lookups
	require.Len(t, lookups, 5)

	pp := lookups[1].Subtables[0].(*PairPos)
	assert.Equal(t, uint16(2), pp.Format)
	want := []PairAdjustment{
		{First: sortedGlyphs(A, tee), Second: sortedGlyphs(V), Value1: ValueRecord{XAdvance: -80}},
		{First: sortedGlyphs(A, tee), Second: sortedGlyphs(o), Value1: ValueRecord{XAdvance: -40}},
	}
	if diff := cmp.Diff(want, pp.Pairs); diff != "" {
		t.Errorf("class pairs mismatch (-want +got):\n%s", diff)
	}

	ml := lookups[2].Subtables[0].(*MarkAttachPos)
	assert.Equal(t, GPosLookupTypeMarkToLigature, ml.LookupType())
	assert.Equal(t, []MarkRecord{{Glyph: GlyphIndex(acute), Class: 0, Anchor: Anchor{X: 100, Y: 500}}}, ml.Marks)
	assert.Equal(t, []GlyphIndex{GlyphIndex(f)}, ml.Bases)
	assert.Equal(t, [][][]*Anchor{{{{X: 100, Y: 600}}, {{X: 350, Y: 600}}}}, ml.LigatureAnchors)
	assert.Nil(t, ml.BaseAnchors)

	mm := lookups[3].Subtables[0].(*MarkAttachPos)
	assert.Equal(t, GPosLookupTypeMarkToMark, mm.LookupType())
	assert.Equal(t, []GlyphIndex{GlyphIndex(acute)}, mm.Bases)
	assert.Equal(t, [][]*Anchor{{{X: 0, Y: 800}}}, mm.BaseAnchors)
	assert.Equal(t, GlyphIndex(grave), mm.Marks[0].Glyph)

	ctx := lookups[4].Subtables[0].(*SequenceContext)
	assert.Equal(t, GPosLookupTypeContextPos, ctx.LookupType())
	assert.False(t, ctx.Chained)
	require.Len(t, ctx.Rules, 1)
	assert.Equal(t, [][]GlyphIndex{{GlyphIndex(A)}, {GlyphIndex(V)}}, ctx.Rules[0].Input)
	assert.Equal(t, []SequenceLookupRecord{{SequenceIndex: 1, LookupListIndex: 0}}, ctx.Rules[0].Records)
}

func TestBrokenSubtableIsWarning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	broken := (&testfont.Writer{}).U16(9).U16(0).Data() // unknown format, NULL coverage
	gsub := testfont.Layout(
		[]testfont.Script{testfont.DefaultScript(1)},
		[]testfont.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: 1, Subtables: [][]byte{broken}}})
	otf, err := Parse(testfont.Font(map[string][]byte{"GSUB": gsub}))
	require.NoError(t, err)
	require.Len(t, otf.Warnings(), 1)
	assert.Equal(t, 0, otf.Warnings()[0].Lookup)
	assert.Empty(t, otf.Layout.GSub.Lookups[0].Subtables)
}

func TestBrokenLayoutHeader(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.ot")
	defer teardown()
	//
	gsub := (&testfont.Writer{}).U16(2).U16(0).U16(0).U16(0).U16(0).Data()
	_, err := Parse(testfont.Font(map[string][]byte{"GSUB": gsub}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFontFormat))
	var fe FontError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, T("GSUB"), fe.Table)
}

func TestCoverageFormat2(t *testing.T) {
	cov := (&testfont.Writer{}).U16(2).U16(2).
		U16(10).U16(12).U16(0).
		U16(20).U16(20).U16(3).Data()
	glyphs, err := parseCoverage(cov)
	require.NoError(t, err)
	assert.Equal(t, []GlyphIndex{10, 11, 12, 20}, glyphs)
	_, err = parseCoverage(nil)
	assert.ErrorIs(t, err, errNoCoverage)
}

func TestClassDefGlyphs(t *testing.T) {
	cd, err := parseClassDef(testfont.ClassDef(map[uint16]uint16{3: 1, 5: 1, 4: 2}))
	require.NoError(t, err)
	assert.Equal(t, []GlyphIndex{3, 5}, cd.Glyphs(1, 8))
	assert.Equal(t, []GlyphIndex{0, 1, 2, 6, 7}, cd.Glyphs(0, 8))
	assert.Equal(t, []uint16{1, 2}, cd.Classes())
}
