package fee

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/glyphtools"
)

// isSelector tells if an item starts a glyph selector.
func isSelector(it item) bool {
	switch it.typ {
	case itemIdentifier, itemClass, itemBracketOpen, itemRegex, itemUnicode:
		return true
	}
	return false
}

// selector parses a glyph selector with optional suffixes and returns the
// glyphs it selects.
func (s *source) selector() []string {
	it := s.next()
	var glyphs []string
	switch it.typ {
	case itemIdentifier:
		glyphs = []string{s.glyph(it)}
	case itemClass:
		glyphs = s.class(it)
	case itemRegex:
		glyphs = s.regex(it)
	case itemUnicode:
		glyphs = []string{s.codepoint(it)}
	case itemBracketOpen:
		glyphs = s.inlineClass(it)
	default:
		s.fatal(it, nil, "expected glyph selector, got %s", it)
	}
	for s.peek(0).typ == itemSuffix {
		glyphs = s.applySuffix(s.next(), glyphs)
	}
	return glyphs
}

// nonEmptySelector is a selector which has to select at least one glyph.
func (s *source) nonEmptySelector() []string {
	at := s.peek(0)
	glyphs := s.selector()
	if len(glyphs) == 0 {
		s.fatal(at, nil, "selector matches no glyphs")
	}
	return glyphs
}

func (s *source) glyph(it item) string {
	if s.p.Font == nil {
		return it.val
	}
	if _, ok := s.p.Font.GlyphByName(it.val); !ok {
		s.unknown(it, ErrUnknownGlyph, strconv.Quote(it.val))
	}
	return it.val
}

func (s *source) class(it item) []string {
	glyphs, ok := s.p.Features.Class(it.val)
	if !ok {
		s.unknown(it, ErrUnknownClass, "@"+it.val)
	}
	return glyphs
}

func (s *source) needFont(it item) {
	if s.p.Font == nil {
		s.fatal(it, nil, "%s needs a font", it)
	}
}

func (s *source) regex(it item) []string {
	s.needFont(it)
	re, err := regexp.Compile(it.val)
	if err != nil {
		s.fatal(it, err, "bad regular expression")
	}
	var glyphs []string
	for _, name := range s.p.Font.GlyphNames() {
		if re.MatchString(name) {
			glyphs = append(glyphs, name)
		}
	}
	return glyphs
}

func (s *source) codepoint(it item) string {
	s.needFont(it)
	cp, err := strconv.ParseUint(it.val, 16, 32)
	if err != nil {
		s.fatal(it, err, "bad code point")
	}
	gid, ok := s.p.Font.GlyphForRune(rune(cp))
	if !ok {
		s.unknown(it, ErrUnknownGlyph, fmt.Sprintf("for U+%04X", cp))
	}
	return s.p.Font.GlyphName(gid)
}

func (s *source) inlineClass(open item) []string {
	var glyphs []string
	for {
		it := s.peek(0)
		switch {
		case it.typ == itemBracketClose:
			s.next()
			return glyphs
		case it.typ == itemEOF:
			s.fatal(open, nil, "unmatched '['")
		case it.typ == itemBracketOpen || !isSelector(it):
			s.fatal(it, nil, "unexpected %s in glyph class", it)
		}
		glyphs = fontfeatures.Union(glyphs, s.selector())
	}
}

// applySuffix appends (".sc") or strips ("~sc") a suffix. Glyphs which do not
// carry the suffix to strip, or do not exist, are dropped.
func (s *source) applySuffix(it item, glyphs []string) []string {
	suffix := "." + it.val[1:]
	var result []string
	for _, g := range glyphs {
		var name string
		if it.val[0] == '.' {
			name = g + suffix
		} else if base, ok := strings.CutSuffix(g, suffix); ok {
			name = base
		} else {
			continue
		}
		if s.p.Font != nil {
			if _, ok := s.p.Font.GlyphByName(name); !ok {
				tracer().Debugf("%s: no glyph %s", it.val, name)
				continue
			}
		}
		result = append(result, name)
	}
	return result
}

// --- Class expressions -----------------------------------------------------

// classExpr parses unions and intersections of predicated selectors. The
// operators are left associative and of equal precedence.
func (s *source) classExpr() []string {
	glyphs := s.predicated()
	for {
		switch {
		case s.optional(itemPipe):
			glyphs = fontfeatures.Union(glyphs, s.predicated())
		case s.optional(itemAmp):
			glyphs = fontfeatures.Intersection(glyphs, s.predicated())
		default:
			return glyphs
		}
	}
}

func (s *source) predicated() []string {
	var glyphs []string
	if s.optional(itemParenOpen) {
		glyphs = s.classExpr()
		s.required(itemParenClose)
	} else {
		glyphs = s.selector()
	}
	for it := s.peek(0); it.typ == itemIdentifier && it.val == "and"; it = s.peek(0) {
		s.next()
		glyphs = s.predicate(glyphs)
	}
	return glyphs
}

// predicate parses "(metric cmp value)" or "(script = tag)" and filters
// glyphs by it.
func (s *source) predicate(glyphs []string) []string {
	s.required(itemParenOpen)
	if it := s.peek(0); it.typ == itemIdentifier && it.val == "script" {
		return s.scriptPredicate(glyphs)
	}
	metric := s.metric()
	cmp := s.next()
	var test func(a, b int) bool
	switch cmp.typ {
	case itemLess:
		test = func(a, b int) bool { return a < b }
	case itemLessEq:
		test = func(a, b int) bool { return a <= b }
	case itemEquals:
		test = func(a, b int) bool { return a == b }
	case itemGreaterEq:
		test = func(a, b int) bool { return a >= b }
	case itemGreater:
		test = func(a, b int) bool { return a > b }
	default:
		s.fatal(cmp, nil, "expected comparator, got %s", cmp)
	}
	value := s.metricValue()
	s.required(itemParenClose)
	var result []string
	for _, g := range glyphs {
		v, err := s.p.glyphs.Metric(g, metric)
		if err != nil {
			s.fatal(cmp, err, "cannot test %s", g)
		}
		if test(v, value) {
			result = append(result, g)
		}
	}
	return result
}

// scriptPredicate keeps the glyphs whose code point belongs to a script,
// given as OpenType script tag.
func (s *source) scriptPredicate(glyphs []string) []string {
	it := s.next()
	s.needFont(it)
	s.required(itemEquals)
	tag := s.identifier("script tag")
	s.required(itemParenClose)
	var result []string
	for _, g := range glyphs {
		if s.p.glyphs.Script(g) == tag.val {
			result = append(result, g)
		}
	}
	return result
}

func (s *source) metric() glyphtools.Metric {
	it := s.identifier("metric")
	s.needFont(it)
	m, err := glyphtools.ParseMetric(it.val)
	if err != nil {
		s.fatal(it, err, "bad predicate")
	}
	return m
}

// metricValue parses an integer or "metric(glyph)".
func (s *source) metricValue() int {
	if it := s.peek(0); it.typ == itemInteger {
		s.next()
		return s.integer(it)
	}
	m := s.metric()
	s.required(itemParenOpen)
	g := s.identifier("glyph name")
	s.required(itemParenClose)
	v, err := s.p.glyphs.Metric(s.glyph(g), m)
	if err != nil {
		s.fatal(g, err, "cannot measure %s", g.val)
	}
	return v
}

func (s *source) integer(it item) int {
	n, err := strconv.Atoi(it.val)
	if err != nil {
		s.fatal(it, err, "bad number")
	}
	return n
}

// fontUnits reads a coordinate or adjustment. Fonts store these as int16.
func (s *source) fontUnits(it item) int {
	n := s.integer(it)
	if n < math.MinInt16 || n > math.MaxInt16 {
		s.fatal(it, ErrOutOfRange, "%d is not a 16-bit font unit value", n)
	}
	return n
}

// --- Class definitions -----------------------------------------------------

func (s *source) defineClass(verb item) {
	name := s.required(itemClass)
	s.required(itemEquals)
	glyphs := s.classExpr()
	s.end()
	s.p.Features.DefineClass(name.val, glyphs)
}

func (s *source) defineClassBinned(verb item) {
	name := s.required(itemClass)
	s.required(itemBracketOpen)
	metric := s.metric()
	s.required(itemComma)
	count := s.required(itemInteger)
	n := s.integer(count)
	if n < 1 {
		s.fatal(count, nil, "need at least one bin")
	}
	s.required(itemBracketClose)
	s.required(itemEquals)
	glyphs := s.classExpr()
	s.end()
	bins, err := s.p.glyphs.Bin(glyphs, metric, n)
	if err != nil {
		s.fatal(name, err, "cannot bin @%s", name.val)
	}
	for i, bin := range bins {
		s.p.Features.DefineClass(fmt.Sprintf("%s_%s%d", name.val, metric, i+1), bin)
	}
}

func (s *source) showClass(verb item) {
	start := s.peek(0)
	glyphs := s.classExpr()
	end := s.required(itemSemicolon)
	text := strings.TrimSpace(s.src[start.off:end.off])
	fmt.Fprintf(s.p.Diagnostics, "# [warning] %s = [%s]\n", text, strings.Join(glyphs, " "))
}
