package testfont

import (
	"slices"
)

// Coverage builds a coverage table of format 1. Glyphs are sorted.
func Coverage(glyphs ...uint16) []byte {
	sorted := slices.Clone(glyphs)
	slices.Sort(sorted)
	w := &Writer{}
	w.U16(1).U16(uint16(len(sorted)))
	for _, g := range sorted {
		w.U16(g)
	}
	return w.Data()
}

// SingleSubst builds a GSUB lookup type 1 subtable of format 2.
func SingleSubst(mapping map[uint16]uint16) []byte {
	inputs := sortedKeys(mapping)
	w := &Writer{}
	w.U16(2)
	covSlot := w.Len()
	w.U16(0).U16(uint16(len(inputs)))
	for _, g := range inputs {
		w.U16(mapping[g])
	}
	w.appendLinked([]int{covSlot}, [][]byte{Coverage(inputs...)})
	return w.Data()
}

// MultipleSubst builds a GSUB lookup type 2 subtable.
func MultipleSubst(mapping map[uint16][]uint16) []byte {
	return sequenceSets(mapping)
}

// AlternateSubst builds a GSUB lookup type 3 subtable.
func AlternateSubst(mapping map[uint16][]uint16) []byte {
	return sequenceSets(mapping)
}

func sequenceSets(mapping map[uint16][]uint16) []byte {
	inputs := sortedKeys(mapping)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0).U16(uint16(len(inputs)))
	blobs := [][]byte{Coverage(inputs...)}
	for _, g := range inputs {
		slots = append(slots, w.Len())
		w.U16(0)
		sw := &Writer{}
		sw.U16(uint16(len(mapping[g])))
		for _, s := range mapping[g] {
			sw.U16(s)
		}
		blobs = append(blobs, sw.Data())
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// Lig is a ligature for LigatureSubst.
type Lig struct {
	Components []uint16
	Glyph      uint16
}

// LigatureSubst builds a GSUB lookup type 4 subtable.
func LigatureSubst(ligs ...Lig) []byte {
	byFirst := map[uint16][]Lig{}
	for _, l := range ligs {
		byFirst[l.Components[0]] = append(byFirst[l.Components[0]], l)
	}
	firsts := sortedKeys(byFirst)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0).U16(uint16(len(firsts)))
	blobs := [][]byte{Coverage(firsts...)}
	for _, first := range firsts {
		slots = append(slots, w.Len())
		w.U16(0)
		set := byFirst[first]
		sw := &Writer{}
		sw.U16(uint16(len(set)))
		lslots := make([]int, len(set))
		lblobs := make([][]byte, len(set))
		for i, l := range set {
			lslots[i] = sw.Len()
			sw.U16(0)
			lw := &Writer{}
			lw.U16(l.Glyph).U16(uint16(len(l.Components)))
			for _, c := range l.Components[1:] {
				lw.U16(c)
			}
			lblobs[i] = lw.Data()
		}
		sw.appendLinked(lslots, lblobs)
		blobs = append(blobs, sw.Data())
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// SeqLookup is a sequence lookup record.
type SeqLookup struct {
	SequenceIndex uint16
	Lookup        uint16
}

// ChainContext3 builds a chained context subtable of format 3, which has the
// same layout for GSUB lookup type 6 and GPOS lookup type 8. Backtrack is
// given in logical order and written reversed, as OpenType requires.
func ChainContext3(backtrack, input, lookahead [][]uint16, records ...SeqLookup) []byte {
	w := &Writer{}
	w.U16(3)
	var slots []int
	var blobs [][]byte
	sequence := func(seq [][]uint16) {
		w.U16(uint16(len(seq)))
		for _, glyphs := range seq {
			slots = append(slots, w.Len())
			w.U16(0)
			blobs = append(blobs, Coverage(glyphs...))
		}
	}
	back := slices.Clone(backtrack)
	slices.Reverse(back)
	sequence(back)
	sequence(input)
	sequence(lookahead)
	w.U16(uint16(len(records)))
	for _, r := range records {
		w.U16(r.SequenceIndex).U16(r.Lookup)
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// Context3 builds a (non-chained) sequence context subtable of format 3,
// for GSUB lookup type 5 or GPOS lookup type 7.
func Context3(input [][]uint16, records ...SeqLookup) []byte {
	w := &Writer{}
	w.U16(3).U16(uint16(len(input))).U16(uint16(len(records)))
	slots := make([]int, len(input))
	blobs := make([][]byte, len(input))
	for i, glyphs := range input {
		slots[i] = w.Len()
		w.U16(0)
		blobs[i] = Coverage(glyphs...)
	}
	for _, r := range records {
		w.U16(r.SequenceIndex).U16(r.Lookup)
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// GlyphRule is a rule of a glyph based context subtable (format 1).
// Backtrack is given in logical order.
type GlyphRule struct {
	Backtrack, Input, Lookahead []uint16
	Records                     []SeqLookup
}

// Context1 builds a sequence context subtable of format 1.
func Context1(rules ...GlyphRule) []byte {
	return context1(false, rules)
}

// ChainContext1 builds a chained sequence context subtable of format 1.
func ChainContext1(rules ...GlyphRule) []byte {
	return context1(true, rules)
}

func context1(chained bool, rules []GlyphRule) []byte {
	byFirst := map[uint16][]GlyphRule{}
	for _, r := range rules {
		byFirst[r.Input[0]] = append(byFirst[r.Input[0]], r)
	}
	firsts := sortedKeys(byFirst)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0).U16(uint16(len(firsts)))
	blobs := [][]byte{Coverage(firsts...)}
	for _, first := range firsts {
		slots = append(slots, w.Len())
		w.U16(0)
		var set [][]byte
		for _, r := range byFirst[first] {
			set = append(set, contextRule(chained, r.Backtrack, r.Input[1:], r.Lookahead, r.Records))
		}
		blobs = append(blobs, ruleSet(set))
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// ClassRule is a rule of a class based context subtable (format 2). All
// sequences hold class values; Input[0] selects the rule set.
type ClassRule struct {
	Backtrack, Input, Lookahead []uint16
	Records                     []SeqLookup
}

// Context2 builds a sequence context subtable of format 2 covering the
// glyphs cov, with input classes as given.
func Context2(cov []uint16, input map[uint16]uint16, rules ...ClassRule) []byte {
	return context2(false, cov, []map[uint16]uint16{input}, rules)
}

// ChainContext2 builds a chained sequence context subtable of format 2. A
// nil class map is written as NULL offset, putting every glyph into class 0.
func ChainContext2(cov []uint16, backtrack, input, lookahead map[uint16]uint16, rules ...ClassRule) []byte {
	return context2(true, cov, []map[uint16]uint16{backtrack, input, lookahead}, rules)
}

func context2(chained bool, cov []uint16, classDefs []map[uint16]uint16, rules []ClassRule) []byte {
	var sets [][][]byte
	for _, r := range rules {
		for len(sets) <= int(r.Input[0]) {
			sets = append(sets, nil)
		}
		sets[r.Input[0]] = append(sets[r.Input[0]],
			contextRule(chained, r.Backtrack, r.Input[1:], r.Lookahead, r.Records))
	}
	w := &Writer{}
	w.U16(2)
	slots := []int{w.Len()}
	w.U16(0)
	blobs := [][]byte{Coverage(cov...)}
	for _, cd := range classDefs {
		slots = append(slots, w.Len())
		w.U16(0)
		var blob []byte
		if cd != nil {
			blob = ClassDef(cd)
		}
		blobs = append(blobs, blob)
	}
	w.U16(uint16(len(sets)))
	for _, set := range sets {
		slots = append(slots, w.Len())
		w.U16(0)
		var blob []byte
		if set != nil {
			blob = ruleSet(set)
		}
		blobs = append(blobs, blob)
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

func ruleSet(rules [][]byte) []byte {
	w := &Writer{}
	w.U16(uint16(len(rules)))
	slots := make([]int, len(rules))
	for i := range rules {
		slots[i] = w.Len()
		w.U16(0)
	}
	w.appendLinked(slots, rules)
	return w.Data()
}

// contextRule writes a rule of format 1 or 2. tail is the input without its
// first position, which the rule set stands for.
func contextRule(chained bool, backtrack, tail, lookahead []uint16, records []SeqLookup) []byte {
	w := &Writer{}
	values := func(vals []uint16) {
		for _, v := range vals {
			w.U16(v)
		}
	}
	if chained {
		back := slices.Clone(backtrack)
		slices.Reverse(back)
		w.U16(uint16(len(back)))
		values(back)
		w.U16(uint16(len(tail) + 1))
		values(tail)
		w.U16(uint16(len(lookahead)))
		values(lookahead)
		w.U16(uint16(len(records)))
	} else {
		w.U16(uint16(len(tail) + 1)).U16(uint16(len(records)))
		values(tail)
	}
	for _, r := range records {
		w.U16(r.SequenceIndex).U16(r.Lookup)
	}
	return w.Data()
}

// ReverseChainSubst builds a GSUB lookup type 8 subtable. Backtrack is given
// in logical order.
func ReverseChainSubst(backtrack, lookahead [][]uint16, mapping map[uint16]uint16) []byte {
	inputs := sortedKeys(mapping)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0)
	blobs := [][]byte{Coverage(inputs...)}
	back := slices.Clone(backtrack)
	slices.Reverse(back)
	for _, seq := range [][][]uint16{back, lookahead} {
		w.U16(uint16(len(seq)))
		for _, glyphs := range seq {
			slots = append(slots, w.Len())
			w.U16(0)
			blobs = append(blobs, Coverage(glyphs...))
		}
	}
	w.U16(uint16(len(inputs)))
	for _, g := range inputs {
		w.U16(mapping[g])
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// SinglePos builds a GPOS lookup type 1 subtable of format 1 adjusting the
// x advance of all glyphs.
func SinglePos(xAdvance int16, glyphs ...uint16) []byte {
	w := &Writer{}
	w.U16(1)
	covSlot := w.Len()
	w.U16(0).U16(0x0004).I16(xAdvance)
	w.appendLinked([]int{covSlot}, [][]byte{Coverage(glyphs...)})
	return w.Data()
}

// Pair is a kerning pair for PairPos.
type Pair struct {
	First, Second uint16
	XAdvance      int16
}

// PairPos builds a GPOS lookup type 2 subtable of format 1 adjusting the x
// advance of the first glyph of each pair.
func PairPos(pairs ...Pair) []byte {
	byFirst := map[uint16][]Pair{}
	for _, p := range pairs {
		byFirst[p.First] = append(byFirst[p.First], p)
	}
	firsts := sortedKeys(byFirst)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0).U16(0x0004).U16(0).U16(uint16(len(firsts)))
	blobs := [][]byte{Coverage(firsts...)}
	for _, first := range firsts {
		slots = append(slots, w.Len())
		w.U16(0)
		set := byFirst[first]
		slices.SortFunc(set, func(a, b Pair) int { return int(a.Second) - int(b.Second) })
		pw := &Writer{}
		pw.U16(uint16(len(set)))
		for _, p := range set {
			pw.U16(p.Second).I16(p.XAdvance)
		}
		blobs = append(blobs, pw.Data())
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

// MarkToBase builds a GPOS lookup type 4 subtable with a single mark class.
// Anchors are given as {x, y}. Mark-to-mark subtables (lookup type 6) have
// the same layout, with base marks in bases.
func MarkToBase(marks map[uint16][2]int16, bases map[uint16][2]int16) []byte {
	baseGlyphs := sortedKeys(bases)
	bw := &Writer{}
	bw.U16(uint16(len(baseGlyphs)))
	bslots := make([]int, len(baseGlyphs))
	bblobs := make([][]byte, len(baseGlyphs))
	for i, g := range baseGlyphs {
		bslots[i] = bw.Len()
		bw.U16(0)
		bblobs[i] = anchor(bases[g])
	}
	bw.appendLinked(bslots, bblobs)
	return markAttachment(marks, baseGlyphs, bw.Data())
}

// MarkToLigature builds a GPOS lookup type 5 subtable with a single mark
// class. Every ligature lists one anchor per component.
func MarkToLigature(marks map[uint16][2]int16, ligatures map[uint16][][2]int16) []byte {
	ligGlyphs := sortedKeys(ligatures)
	lw := &Writer{}
	lw.U16(uint16(len(ligGlyphs)))
	lslots := make([]int, len(ligGlyphs))
	lblobs := make([][]byte, len(ligGlyphs))
	for i, g := range ligGlyphs {
		lslots[i] = lw.Len()
		lw.U16(0)
		comps := ligatures[g]
		cw := &Writer{}
		cw.U16(uint16(len(comps)))
		cslots := make([]int, len(comps))
		cblobs := make([][]byte, len(comps))
		for j, a := range comps {
			cslots[j] = cw.Len()
			cw.U16(0)
			cblobs[j] = anchor(a)
		}
		cw.appendLinked(cslots, cblobs)
		lblobs[i] = cw.Data()
	}
	lw.appendLinked(lslots, lblobs)
	return markAttachment(marks, ligGlyphs, lw.Data())
}

func anchor(a [2]int16) []byte {
	return (&Writer{}).U16(1).I16(a[0]).I16(a[1]).Data()
}

// markAttachment writes the header and mark array shared by the mark
// attachment subtables, followed by the base (or ligature) array.
func markAttachment(marks map[uint16][2]int16, baseGlyphs []uint16, baseArray []byte) []byte {
	markGlyphs := sortedKeys(marks)
	mw := &Writer{}
	mw.U16(uint16(len(markGlyphs)))
	mslots := make([]int, len(markGlyphs))
	mblobs := make([][]byte, len(markGlyphs))
	for i, g := range markGlyphs {
		mw.U16(0)
		mslots[i] = mw.Len()
		mw.U16(0)
		mblobs[i] = anchor(marks[g])
	}
	mw.appendLinked(mslots, mblobs)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len(), w.Len() + 2}
	w.U16(0).U16(0).U16(1)
	slots = append(slots, w.Len(), w.Len()+2)
	w.U16(0).U16(0)
	w.appendLinked(slots, [][]byte{Coverage(markGlyphs...), Coverage(baseGlyphs...), mw.Data(), baseArray})
	return w.Data()
}

// PairPosClass builds a GPOS lookup type 2 subtable of format 2, adjusting
// the x advance of the first glyph. Kerning values are given per pair of
// classes {class1, class2}. The glyphs of first are covered.
func PairPosClass(first, second map[uint16]uint16, kerns map[[2]uint16]int16) []byte {
	c1count, c2count := 1, 1
	for _, c := range first {
		c1count = max(c1count, int(c)+1)
	}
	for _, c := range second {
		c2count = max(c2count, int(c)+1)
	}
	w := &Writer{}
	w.U16(2)
	slots := []int{w.Len()}
	w.U16(0).U16(0x0004).U16(0)
	slots = append(slots, w.Len(), w.Len()+2)
	w.U16(0).U16(0).U16(uint16(c1count)).U16(uint16(c2count))
	for c1 := 0; c1 < c1count; c1++ {
		for c2 := 0; c2 < c2count; c2++ {
			w.I16(kerns[[2]uint16{uint16(c1), uint16(c2)}])
		}
	}
	w.appendLinked(slots, [][]byte{Coverage(sortedKeys(first)...), ClassDef(first), ClassDef(second)})
	return w.Data()
}

func sortedKeys[V any](m map[uint16]V) []uint16 {
	keys := make([]uint16, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ClassDef builds a class definition table of format 2 with one range per glyph.
func ClassDef(classes map[uint16]uint16) []byte {
	glyphs := sortedKeys(classes)
	w := &Writer{}
	w.U16(2).U16(uint16(len(glyphs)))
	for _, g := range glyphs {
		w.U16(g).U16(g).U16(classes[g])
	}
	return w.Data()
}

// GDEF builds a GDEF table of version 1.0 with glyph classes and, if
// markAttach is not nil, mark attachment classes.
func GDEF(glyphClasses, markAttach map[uint16]uint16) []byte {
	w := &Writer{}
	w.U16(1).U16(0)
	slots := []int{w.Len()}
	w.U16(0).U16(0).U16(0)
	slots = append(slots, w.Len())
	w.U16(0)
	var mac []byte
	if markAttach != nil {
		mac = ClassDef(markAttach)
	}
	w.appendLinked(slots, [][]byte{ClassDef(glyphClasses), mac})
	return w.Data()
}

// CursivePos builds a GPOS lookup type 3 subtable. Every glyph of entries
// or exits is covered; a missing anchor is written as NULL.
func CursivePos(entries, exits map[uint16][2]int16) []byte {
	all := map[uint16]bool{}
	for g := range entries {
		all[g] = true
	}
	for g := range exits {
		all[g] = true
	}
	glyphs := sortedKeys(all)
	w := &Writer{}
	w.U16(1)
	slots := []int{w.Len()}
	w.U16(0).U16(uint16(len(glyphs)))
	blobs := [][]byte{Coverage(glyphs...)}
	anchor := func(m map[uint16][2]int16, g uint16) []byte {
		a, ok := m[g]
		if !ok {
			return nil
		}
		return (&Writer{}).U16(1).I16(a[0]).I16(a[1]).Data()
	}
	for _, g := range glyphs {
		slots = append(slots, w.Len(), w.Len()+2)
		w.U16(0).U16(0)
		blobs = append(blobs, anchor(entries, g), anchor(exits, g))
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}
