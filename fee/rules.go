package fee

import (
	"github.com/npillmayer/fontfeatures"
)

// sequence holds the positions of a rule, split into context and input
// by braces.
type sequence struct {
	pre, input, post [][]string
	values           []*fontfeatures.ValueRecord // per input position
	lookups          [][]*fontfeatures.Routine   // per input position
}

// ruleSequence parses selectors up to a token which is neither a selector nor
// a brace. Inside braces, each selector may be followed by a value record
// (withValues) or by routine references (withLookups). Without braces all
// positions are input.
func (s *source) ruleSequence(withValues, withLookups bool) sequence {
	var seq sequence
	var open *item
	braced := false
	var positions [][]string
	var values []*fontfeatures.ValueRecord
	var lookups [][]*fontfeatures.Routine
	for {
		it := s.peek(0)
		switch {
		case it.typ == itemBraceOpen:
			if braced {
				s.fatal(it, nil, "more than one input block")
			}
			s.next()
			open, braced = &it, true
			seq.pre, positions, values, lookups = positions, nil, nil, nil
			continue
		case it.typ == itemBraceClose:
			if open == nil {
				s.fatal(it, nil, "unexpected '}'")
			}
			s.next()
			open = nil
			seq.input, seq.values, seq.lookups = positions, values, lookups
			positions, values, lookups = nil, nil, nil
			continue
		case !isSelector(it):
			if open != nil {
				s.fatal(*open, nil, "unmatched '{'")
			}
			if braced {
				seq.post = positions
			} else {
				seq.input, seq.values, seq.lookups = positions, values, lookups
			}
			if len(seq.input) == 0 {
				s.fatal(it, nil, "expected glyph selector, got %s", it)
			}
			return seq
		}
		positions = append(positions, s.nonEmptySelector())
		inputPosition := open != nil || !braced
		var vr *fontfeatures.ValueRecord
		if withValues && s.atValueRecord() {
			at := s.peek(0)
			vr = s.valueRecord()
			if !inputPosition {
				s.fatal(at, nil, "value record in context")
			}
		}
		values = append(values, vr)
		var refs []*fontfeatures.Routine
		for withLookups && s.peek(0).typ == itemRoutineRef {
			ref := s.next()
			if !inputPosition {
				s.fatal(ref, nil, "routine reference in context")
			}
			refs = append(refs, s.routineRef(ref))
		}
		lookups = append(lookups, refs)
	}
}

func (s *source) routineRef(ref item) *fontfeatures.Routine {
	r := s.p.Features.RoutineByName(ref.val)
	if r == nil {
		s.unknown(ref, ErrUnknownRoutine, "^"+ref.val)
	}
	if r == s.routine {
		s.fatal(ref, nil, "routine %s references itself", r.Name)
	}
	return r
}

// atValueRecord tells if a value record follows: an integer, or '<' and an
// integer.
func (s *source) atValueRecord() bool {
	switch s.peek(0).typ {
	case itemInteger:
		return true
	case itemLess:
		return s.peek(1).typ == itemInteger
	}
	return false
}

func (s *source) valueRecord() *fontfeatures.ValueRecord {
	it := s.next()
	if it.typ == itemInteger {
		return &fontfeatures.ValueRecord{XAdvance: s.fontUnits(it)}
	}
	var v [4]int
	for i := range v {
		v[i] = s.fontUnits(s.required(itemInteger))
	}
	s.required(itemGreater)
	return &fontfeatures.ValueRecord{XPlacement: v[0], YPlacement: v[1], XAdvance: v[2], YAdvance: v[3]}
}

// languages parses an optional "<LANG/script, …>".
func (s *source) languages() []fontfeatures.LangSys {
	if s.peek(0).typ != itemLess || s.peek(1).typ != itemIdentifier {
		return nil
	}
	s.next()
	var langs []fontfeatures.LangSys
	for {
		lang := s.identifier("language tag")
		s.required(itemSlash)
		script := s.identifier("script tag")
		ls := fontfeatures.LangSys{Script: script.val, Language: lang.val}
		if ls.Language == "*" {
			ls.Language = "dflt"
		}
		langs = append(langs, ls)
		if !s.optional(itemComma) {
			break
		}
	}
	s.required(itemGreater)
	return langs
}

// --- Substitution ----------------------------------------------------------

func (s *source) substitute(verb item) {
	seq := s.ruleSequence(false, false)
	arrow := s.required(itemArrow)
	var repl [][]string
	for isSelector(s.peek(0)) {
		repl = append(repl, s.nonEmptySelector())
	}
	if len(repl) == 0 {
		s.fatal(s.peek(0), nil, "expected replacement, got %s", s.peek(0))
	}
	sub := &fontfeatures.Substitution{
		Context: fontfeatures.Context{
			Precontext:  seq.pre,
			Postcontext: seq.post,
			Languages:   s.languages(),
		},
		Input:       seq.input,
		Replacement: repl,
		Reverse:     verb.val == "ReverseSubstitute",
	}
	s.end()
	s.checkSubstitution(arrow, sub)
	s.addRule(verb, sub)
}

func (s *source) checkSubstitution(at item, sub *fontfeatures.Substitution) {
	in, out := len(sub.Input), len(sub.Replacement)
	if sub.Reverse && (in != 1 || out != 1) {
		s.fatal(at, nil, "reverse substitution replaces one glyph by one glyph")
	}
	if sub.LookupType() == 0 || (in > 1 && out > 1) {
		s.fatal(at, nil, "cannot substitute %d positions by %d positions", in, out)
	}
	if in == 1 && out == 1 {
		nIn, nOut := len(sub.Input[0]), len(sub.Replacement[0])
		if nOut > 1 && nIn != nOut {
			s.fatal(at, nil, "cannot substitute %d glyphs by %d glyphs", nIn, nOut)
		}
	} else {
		for _, r := range sub.Replacement {
			if in == 1 && out > 1 && len(r) > 1 {
				s.fatal(at, nil, "multiple substitution replaces by single glyphs")
			}
		}
		if out == 1 && len(sub.Replacement[0]) > 1 {
			s.fatal(at, nil, "ligature substitution replaces by a single glyph")
		}
	}
}

func (s *source) alternate(verb item) {
	in := s.nonEmptySelector()
	s.required(itemArrow)
	var alternates []string
	for isSelector(s.peek(0)) {
		alternates = fontfeatures.Union(alternates, s.nonEmptySelector())
	}
	if len(alternates) == 0 {
		s.fatal(s.peek(0), nil, "expected alternates, got %s", s.peek(0))
	}
	langs := s.languages()
	s.end()
	s.addRule(verb, &fontfeatures.Substitution{
		Context:     fontfeatures.Context{Languages: langs},
		Input:       [][]string{in},
		Replacement: [][]string{alternates},
		Alternate:   true,
	})
}

// --- Positioning -----------------------------------------------------------

func (s *source) position(verb item) {
	seq := s.ruleSequence(true, false)
	hasValue := false
	for _, v := range seq.values {
		hasValue = hasValue || v != nil
	}
	if !hasValue {
		s.fatal(verb, nil, "Position without value record")
	}
	pos := &fontfeatures.Positioning{
		Context: fontfeatures.Context{
			Precontext:  seq.pre,
			Postcontext: seq.post,
			Languages:   s.languages(),
		},
		Glyphs: seq.input,
		Values: seq.values,
	}
	s.end()
	s.addRule(verb, pos)
}

// --- Chaining --------------------------------------------------------------

func (s *source) chain(verb item) {
	seq := s.ruleSequence(false, true)
	ch := &fontfeatures.Chaining{
		Context: fontfeatures.Context{
			Precontext:  seq.pre,
			Postcontext: seq.post,
			Languages:   s.languages(),
		},
		Input:   seq.input,
		Lookups: seq.lookups,
	}
	s.end()
	stage := fontfeatures.NoStage
	for _, refs := range ch.Lookups {
		for _, r := range refs {
			switch st := r.Stage(); {
			case st == fontfeatures.NoStage:
			case stage == fontfeatures.NoStage:
				stage = st
			case st != stage:
				s.fatal(verb, nil, "chain mixes substitution and positioning routines")
			}
		}
	}
	s.addRule(verb, ch)
}

// --- Anchors and attachment ------------------------------------------------

// anchors parses "Anchors glyph { name <x y> ... }".
func (s *source) anchors(verb item) {
	g := s.identifier("glyph name")
	glyph := s.glyph(g)
	open := s.required(itemBraceOpen)
	for {
		it := s.next()
		switch it.typ {
		case itemBraceClose:
			s.optional(itemSemicolon)
			return
		case itemEOF:
			s.fatal(open, nil, "unmatched '{'")
		case itemIdentifier:
			s.required(itemLess)
			x := s.fontUnits(s.required(itemInteger))
			y := s.fontUnits(s.required(itemInteger))
			s.required(itemGreater)
			s.p.Features.SetAnchor(glyph, it.val, fontfeatures.Anchor{X: x, Y: y})
		default:
			s.fatal(it, nil, "expected anchor name, got %s", it)
		}
	}
}

var attachKinds = map[string]fontfeatures.AttachmentKind{
	"bases":   fontfeatures.MarkToBase,
	"marks":   fontfeatures.MarkToMark,
	"cursive": fontfeatures.CursiveAttachment,
}

// attach parses "Attach &base &mark [bases|marks|cursive]" and attaches the
// glyphs carrying the mark anchor to the glyphs carrying the base anchor.
func (s *source) attach(verb item) {
	base := s.required(itemAnchor)
	mark := s.required(itemAnchor)
	kind := fontfeatures.MarkToBase
	if it := s.peek(0); it.typ == itemIdentifier {
		s.next()
		k, ok := attachKinds[it.val]
		if !ok {
			s.fatal(it, nil, "expected bases, marks or cursive, got %s", it)
		}
		kind = k
	}
	s.end()
	att := &fontfeatures.Attachment{
		BaseName: base.val,
		MarkName: mark.val,
		Bases:    make(map[string]fontfeatures.Anchor),
		Marks:    make(map[string]fontfeatures.Anchor),
		Kind:     kind,
	}
	for _, g := range s.p.Features.GlyphsWithAnchor(base.val) {
		isMark := s.category(g) == fontfeatures.MarkGlyph
		if kind == fontfeatures.CursiveAttachment || (kind == fontfeatures.MarkToMark) == isMark {
			att.Bases[g] = s.p.Features.Anchors[g][base.val]
		}
	}
	for _, g := range s.p.Features.GlyphsWithAnchor(mark.val) {
		att.Marks[g] = s.p.Features.Anchors[g][mark.val]
	}
	if len(att.Bases) == 0 {
		s.fatal(base, nil, "no glyph has anchor &%s", base.val)
	}
	if len(att.Marks) == 0 {
		s.fatal(mark, nil, "no glyph has anchor &%s", mark.val)
	}
	s.addRule(verb, att)
}

// category returns the category of a glyph, declared or derived from the
// font.
func (s *source) category(glyph string) fontfeatures.GlyphCategory {
	if c, ok := s.p.Features.GlyphClasses[glyph]; ok {
		return c
	}
	if s.p.glyphs != nil {
		return s.p.glyphs.Category(glyph)
	}
	return fontfeatures.UnknownGlyph
}
