package fee

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/glyphtools"
	"github.com/npillmayer/fontfeatures/ot"
)

// Errors wrapped by ParseError.
var (
	ErrUnknownGlyph   = errors.New("unknown glyph")
	ErrUnknownClass   = errors.New("unknown class")
	ErrUnknownRoutine = errors.New("unknown routine")
	ErrUnknownVerb    = errors.New("unknown verb")
	ErrUnknownPlugin  = errors.New("unknown plugin")
	ErrOutOfRange     = errors.New("value out of range")
)

// ParseError is an error in FEE source, located by file, line and column.
type ParseError struct {
	File      string
	Line, Col int
	Msg       string
	Err       error // underlying error, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const maxIncludeDepth = 16

// Parser holds the state of FEE parsing: the font glyph names refer to and
// the feature collection statements add to. A parser may parse more than one
// file; each adds to the same collection.
type Parser struct {
	Font        *ot.Font
	Features    *fontfeatures.FontFeatures
	Diagnostics io.Writer // ShowClass output, os.Stderr by default
	IncludePath []string  // searched after the directory of the including file
	glyphs      *glyphtools.Inspector
	plugins     []string
	depth       int
}

// NewParser creates a parser for a font, with an empty feature collection.
// font may be nil, in which case glyph names are not checked and selectors
// depending on font data are rejected.
func NewParser(font *ot.Font) *Parser {
	p := &Parser{
		Font:        font,
		Features:    fontfeatures.New(),
		Diagnostics: os.Stderr,
	}
	if font != nil {
		p.glyphs = glyphtools.NewInspector(font)
	}
	for _, group := range verbGroups {
		p.plugins = append(p.plugins, group.name)
	}
	return p
}

// ParseFile parses a FEE file.
func (p *Parser) ParseFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	return p.parse(path, string(src))
}

// ParseString parses FEE statements.
func (p *Parser) ParseString(src string) error {
	return p.parse("<string>", src)
}

func (p *Parser) parse(file, src string) (err error) {
	tracer().Debugf("parsing %s", file)
	s := &source{
		p:     p,
		file:  file,
		dir:   filepath.Dir(file),
		src:   src,
		items: lex(src),
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*ParseError); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	s.statements(nil)
	return nil
}

// source is a FEE text being parsed, together with the block it is in.
type source struct {
	p       *Parser
	file    string
	dir     string
	src     string
	items   []item
	pos     int
	feature string                // tag of the enclosing Feature block
	routine *fontfeatures.Routine // enclosing Routine block
	inline  *fontfeatures.Routine // routine for rules directly in the Feature block
}

func (s *source) next() item {
	it := s.items[s.pos]
	if s.pos < len(s.items)-1 {
		s.pos++
	}
	if it.typ == itemError {
		s.fatal(it, nil, "%s", it.val)
	}
	return it
}

// peek returns the item n positions ahead without consuming anything.
func (s *source) peek(n int) item {
	if s.pos+n >= len(s.items) {
		return s.items[len(s.items)-1]
	}
	return s.items[s.pos+n]
}

func (s *source) optional(typ itemType) bool {
	if s.peek(0).typ == typ {
		s.next()
		return true
	}
	return false
}

func (s *source) required(typ itemType) item {
	it := s.next()
	if it.typ != typ {
		s.fatal(it, nil, "expected %s, got %s", typ, it)
	}
	return it
}

func (s *source) identifier(what string) item {
	it := s.next()
	if it.typ != itemIdentifier {
		s.fatal(it, nil, "expected %s, got %s", what, it)
	}
	return it
}

// unknown reports a name which does not resolve.
func (s *source) unknown(at item, err error, name string) {
	panic(&ParseError{File: s.file, Line: at.line, Col: at.col, Msg: err.Error() + " " + name, Err: err})
}

func (s *source) fatal(at item, err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	panic(&ParseError{File: s.file, Line: at.line, Col: at.col, Msg: msg, Err: err})
}

// statements parses statements up to the end of input or, inside a block,
// up to the closing brace matching open.
func (s *source) statements(open *item) {
	for {
		it := s.next()
		switch it.typ {
		case itemEOF:
			if open != nil {
				s.fatal(*open, nil, "unmatched '{'")
			}
			return
		case itemSemicolon:
		case itemBraceClose:
			if open == nil {
				s.fatal(it, nil, "unexpected '}'")
			}
			return
		case itemIdentifier:
			s.statement(it)
		default:
			s.fatal(it, nil, "expected verb, got %s", it)
		}
	}
}

// block parses a brace-enclosed list of statements, with an optional
// semicolon after it.
func (s *source) block() {
	open := s.required(itemBraceOpen)
	s.statements(&open)
	s.optional(itemSemicolon)
}

// end requires the semicolon ending a statement.
func (s *source) end() {
	s.required(itemSemicolon)
}

// --- Verbs -----------------------------------------------------------------

type verbGroup struct {
	name  string
	verbs map[string]func(s *source, verb item)
}

var verbGroups []verbGroup

func init() {
	verbGroups = []verbGroup{
		{"Core", map[string]func(*source, item){
			"LoadPlugin":     (*source).loadPlugin,
			"Include":        (*source).include,
			"LanguageSystem": (*source).languageSystem,
		}},
		{"ClassDefinition", map[string]func(*source, item){
			"DefineClass":       (*source).defineClass,
			"DefineClassBinned": (*source).defineClassBinned,
			"ShowClass":         (*source).showClass,
		}},
		{"Feature", map[string]func(*source, item){"Feature": (*source).featureBlock}},
		{"Routine", map[string]func(*source, item){"Routine": (*source).routineBlock}},
		{"Substitute", map[string]func(*source, item){
			"Substitute":        (*source).substitute,
			"ReverseSubstitute": (*source).substitute,
			"Alternate":         (*source).alternate,
		}},
		{"Position", map[string]func(*source, item){"Position": (*source).position}},
		{"Chain", map[string]func(*source, item){"Chain": (*source).chain}},
		{"Anchors", map[string]func(*source, item){
			"Anchors": (*source).anchors,
			"Attach":  (*source).attach,
		}},
	}
}

func (s *source) statement(verb item) {
	for _, group := range verbGroups {
		if fn, ok := group.verbs[verb.val]; ok && slices.Contains(s.p.plugins, group.name) {
			fn(s, verb)
			return
		}
	}
	s.unknown(verb, ErrUnknownVerb, strconv.Quote(verb.val))
}

const pluginPrefix = "fontFeatures.feeLib."

func (s *source) loadPlugin(verb item) {
	it := s.identifier("plugin name")
	name := strings.TrimPrefix(it.val, pluginPrefix)
	known := slices.ContainsFunc(verbGroups, func(g verbGroup) bool {
		return g.name == name && g.name != "Core"
	})
	if !known {
		s.unknown(it, ErrUnknownPlugin, strconv.Quote(it.val))
	}
	if !slices.Contains(s.p.plugins, name) {
		s.p.plugins = append(s.p.plugins, name)
	}
	tracer().Debugf("plugin %s loaded", name)
	s.end()
}

func (s *source) include(verb item) {
	it := s.next()
	if it.typ != itemString && it.typ != itemIdentifier {
		s.fatal(it, nil, "expected file name, got %s", it)
	}
	s.end()
	if s.feature != "" || s.routine != nil {
		s.fatal(verb, nil, "Include inside a block")
	}
	if s.p.depth >= maxIncludeDepth {
		s.fatal(it, nil, "includes nested too deeply")
	}
	path, err := s.resolve(it.val)
	if err != nil {
		s.fatal(it, err, "cannot include %q", it.val)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		s.fatal(it, err, "cannot include %q", it.val)
	}
	s.p.depth++
	defer func() { s.p.depth-- }()
	if err := s.p.parse(path, string(src)); err != nil {
		panic(err)
	}
}

// resolve finds an included file, relative to the including file first and
// the include path second.
func (s *source) resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		return name, nil
	}
	dirs := append([]string{s.dir}, s.p.IncludePath...)
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", os.ErrNotExist
}

func (s *source) languageSystem(verb item) {
	script := s.identifier("script tag")
	lang := s.identifier("language tag")
	s.end()
	if len(script.val) > 4 || len(lang.val) > 4 {
		s.fatal(script, nil, "tags have at most 4 characters")
	}
	s.p.Features.AddLanguageSystem(script.val, lang.val)
}

// --- Blocks ----------------------------------------------------------------

func (s *source) featureBlock(verb item) {
	tag := s.identifier("feature tag")
	if len(tag.val) > 4 {
		s.fatal(tag, nil, "feature tag %q has more than 4 characters", tag.val)
	}
	if s.feature != "" || s.routine != nil {
		s.fatal(verb, nil, "Feature inside a block")
	}
	s.feature = tag.val
	defer func() {
		s.feature = ""
		s.inline = nil
	}()
	if s.p.Features.Feature(tag.val) == nil {
		tracer().Debugf("feature %s", tag.val)
	}
	s.block()
}

var routineFlags = map[string]fontfeatures.LookupFlag{
	"RightToLeft":         fontfeatures.RightToLeft,
	"IgnoreBases":         fontfeatures.IgnoreBaseGlyphs,
	"IgnoreBaseGlyphs":    fontfeatures.IgnoreBaseGlyphs,
	"IgnoreLigatures":     fontfeatures.IgnoreLigatures,
	"IgnoreMarks":         fontfeatures.IgnoreMarks,
	"UseMarkFilteringSet": fontfeatures.UseMarkFilteringSet,
	"MarkAttachmentType":  0,
}

// routineBlock parses a routine definition, or, inside a feature, a reference
// to a routine defined before.
func (s *source) routineBlock(verb item) {
	if s.routine != nil {
		s.fatal(verb, nil, "Routine inside a Routine")
	}
	var name item
	if it := s.peek(0); it.typ == itemIdentifier {
		if _, isFlag := routineFlags[it.val]; !isFlag {
			name = s.next()
		}
	}
	if name.val != "" && s.peek(0).typ == itemSemicolon {
		s.next()
		s.routineReference(verb, name)
		return
	}
	r := fontfeatures.NewRoutine(name.val)
	if name.val == "" {
		r.Name = s.unusedRoutineName()
	} else if s.p.Features.RoutineByName(name.val) != nil {
		s.fatal(name, nil, "routine %q already defined", name.val)
	}
	for s.peek(0).typ == itemIdentifier {
		flag := s.next()
		bit, ok := routineFlags[flag.val]
		if !ok {
			s.fatal(flag, nil, "unknown routine flag %q", flag.val)
		}
		r.Flags |= bit
		switch flag.val {
		case "UseMarkFilteringSet":
			r.MarkFilteringSet = s.className()
		case "MarkAttachmentType":
			r.MarkAttachmentClass = s.className()
		}
	}
	s.routine = r
	s.inline = nil
	defer func() { s.routine = nil }()
	if s.feature != "" {
		s.p.Features.AddFeature(s.feature, r)
	} else {
		s.p.Features.AddRoutine(r)
	}
	s.block()
	tracer().Debugf("routine %s with %d rules", r.Name, len(r.Rules))
}

func (s *source) routineReference(verb, name item) {
	if s.feature == "" {
		s.fatal(verb, nil, "routine reference outside of a Feature")
	}
	r := s.p.Features.RoutineByName(name.val)
	if r == nil {
		s.unknown(name, ErrUnknownRoutine, strconv.Quote(name.val))
	}
	s.inline = nil
	s.p.Features.AddFeature(s.feature, r)
}

func (s *source) className() string {
	it := s.required(itemClass)
	if _, ok := s.p.Features.Class(it.val); !ok {
		s.unknown(it, ErrUnknownClass, "@"+it.val)
	}
	return it.val
}

func (s *source) unusedRoutineName() string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("Routine_%d", i)
		if s.p.Features.RoutineByName(name) == nil {
			return name
		}
	}
}

// addRule adds a rule to the enclosing routine, or to the routine collecting
// the rules directly inside a Feature block.
func (s *source) addRule(verb item, rule fontfeatures.Rule) {
	switch {
	case s.routine != nil:
		s.routine.AddRule(rule)
	case s.feature != "":
		if s.inline == nil {
			s.inline = fontfeatures.NewRoutine(s.unusedRoutineName())
			s.p.Features.AddFeature(s.feature, s.inline)
		}
		s.inline.AddRule(rule)
	default:
		s.fatal(verb, nil, "%s outside of a Feature or Routine", verb.val)
	}
	tracer().Debugf("%s", rule)
}
