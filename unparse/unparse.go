/*
Package unparse turns the layout tables of a font back into a feature
collection.

Every lookup of GSUB and GPOS becomes a routine, named after its lookup type
and index ("SingleSubstitution3", "ChainedContextualPositioning7"). Features
reference these routines. Lookups that only some of the language systems of a
feature use are referenced through a copy of the routine restricted to these
language systems.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package unparse

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/ot"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfeatures.unparse'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.unparse")
}

// Options control what is extracted.
type Options struct {
	GDEF            bool     // extract GDEF glyph categories
	ExcludeFeatures []string // feature tags to skip
}

// ErrNoFont is returned if no font is given.
var ErrNoFont = errors.New("unparse: no font")

// Unparse extracts the features of a font.
func Unparse(font *ot.Font, opts Options) (*fontfeatures.FontFeatures, error) {
	if font == nil {
		return nil, ErrNoFont
	}
	ff := fontfeatures.New()
	u := &unparser{font: font, ff: ff, opts: opts}
	tables := []*ot.LayoutTable{font.Layout.GSub, font.Layout.GPos}
	for _, lytt := range tables {
		if lytt != nil {
			u.languageSystems(lytt)
		}
	}
	if opts.GDEF && font.Layout.GDef != nil {
		u.glyphCategories(font.Layout.GDef)
	}
	for _, lytt := range tables {
		if lytt == nil {
			continue
		}
		u.table = lytt
		u.routines = make(map[int]*fontfeatures.Routine)
		u.used = make(map[int][]*fontfeatures.Routine)
		u.features(lytt)
		u.registerLookups(lytt)
	}
	tracer().Infof("extracted %d features, %d routines", len(ff.Features()), len(ff.AllRoutines()))
	return ff, nil
}

type unparser struct {
	font     *ot.Font
	ff       *fontfeatures.FontFeatures
	opts     Options
	table    *ot.LayoutTable
	routines map[int]*fontfeatures.Routine   // by lookup index, for the current table
	used     map[int][]*fontfeatures.Routine // routines written for a lookup index
}

func (u *unparser) languageSystems(lytt *ot.LayoutTable) {
	for _, script := range lytt.Scripts {
		for _, ls := range script.AllLangSys() {
			u.ff.AddLanguageSystem(script.Tag.Name(), ls.Tag.Name())
		}
	}
}

func (u *unparser) glyphCategories(gdef *ot.GDefTable) {
	for gid, class := range gdef.GlyphClassDef {
		if class >= 1 && class <= 4 {
			u.ff.GlyphClasses[u.font.GlyphName(gid)] = fontfeatures.GlyphCategory(class)
		}
	}
}

// features creates the features of a layout table. A feature tag may occur
// in more than one feature record, usually with different lookups for
// different language systems.
func (u *unparser) features(lytt *ot.LayoutTable) {
	type usage struct {
		lookup int
		langs  []fontfeatures.LangSys
	}
	var tags []string
	allLangs := map[string][]fontfeatures.LangSys{}
	usages := map[string][]*usage{}
	for _, script := range lytt.Scripts {
		for _, ls := range script.AllLangSys() {
			langsys := fontfeatures.LangSys{Script: script.Tag.Name(), Language: ls.Tag.Name()}
			indices := ls.FeatureIndices
			if ls.RequiredFeature >= 0 {
				indices = append([]int{ls.RequiredFeature}, indices...)
			}
			for _, fi := range indices {
				if fi >= len(lytt.Features) {
					tracer().Infof("%s: %s references feature %d beyond feature list", lytt.Tag, langsys, fi)
					continue
				}
				f := lytt.Features[fi]
				tag := f.Tag.Name()
				if slices.Contains(u.opts.ExcludeFeatures, tag) {
					continue
				}
				if _, seen := allLangs[tag]; !seen {
					tags = append(tags, tag)
				}
				if !slices.Contains(allLangs[tag], langsys) {
					allLangs[tag] = append(allLangs[tag], langsys)
				}
				for _, li := range f.Lookups {
					inx := slices.IndexFunc(usages[tag], func(us *usage) bool { return us.lookup == li })
					if inx < 0 {
						usages[tag] = append(usages[tag], &usage{lookup: li})
						inx = len(usages[tag]) - 1
					}
					if us := usages[tag][inx]; !slices.Contains(us.langs, langsys) {
						us.langs = append(us.langs, langsys)
					}
				}
			}
		}
	}
	for _, tag := range tags {
		for _, us := range usages[tag] {
			r := u.routine(us.lookup)
			if r == nil {
				continue
			}
			if len(us.langs) < len(allLangs[tag]) {
				r = restrict(r, us.langs)
			}
			u.use(us.lookup, r)
			u.ff.AddFeature(tag, r)
		}
	}
}

// use records that a routine stands for a lookup in the output. A lookup may
// be represented by several routines restricted to different language
// systems.
func (u *unparser) use(inx int, r *fontfeatures.Routine) {
	if !slices.Contains(u.used[inx], r) {
		u.used[inx] = append(u.used[inx], r)
	}
}

// registerLookups adds the routines of a layout table to the standalone
// routines, in lookup list order. Lookups which no feature and no chaining
// rule references are included. The lookup list order is the order of
// application, and serializers write routines in this order.
func (u *unparser) registerLookups(lytt *ot.LayoutTable) {
	for i := range lytt.Lookups {
		if _, done := u.routines[i]; !done {
			if r := u.routine(i); r != nil {
				u.use(i, r)
			}
		}
		for _, r := range u.used[i] {
			u.ff.AddRoutine(r)
		}
	}
}

// restrict returns a copy of a routine sharing its rules, restricted to some
// language systems.
func restrict(r *fontfeatures.Routine, langs []fontfeatures.LangSys) *fontfeatures.Routine {
	restricted := *r
	restricted.Languages = slices.Clone(langs)
	var suffix []string
	for _, ls := range langs {
		suffix = append(suffix, ls.Script+"_"+ls.Language)
	}
	restricted.Name = r.Name + "_" + strings.Join(suffix, "_")
	return &restricted
}

var gsubRoutineNames = [...]string{"SingleSubstitution", "MultipleSubstitution", "AlternateSubstitution",
	"LigatureSubstitution", "ContextualSubstitution", "ChainedContextualSubstitution",
	"ExtensionSubstitution", "ReverseChainSubstitution"}

var gposRoutineNames = [...]string{"SinglePositioning", "PairPositioning", "CursiveAttachment",
	"MarkToBase", "MarkToLigature", "MarkToMark", "ContextualPositioning",
	"ChainedContextualPositioning", "ExtensionPositioning"}

func routineName(lytt *ot.LayoutTable, l *ot.Lookup) string {
	names := gsubRoutineNames[:]
	if lytt.IsGPos() {
		names = gposRoutineNames[:]
	}
	if l.Type >= 1 && int(l.Type) <= len(names) {
		return fmt.Sprintf("%s%d", names[l.Type-1], l.Index)
	}
	return fmt.Sprintf("Lookup%d", l.Index)
}

// routine returns the routine for a lookup of the current table, creating it
// on first use.
func (u *unparser) routine(inx int) *fontfeatures.Routine {
	if r, ok := u.routines[inx]; ok {
		return r
	}
	if inx < 0 || inx >= len(u.table.Lookups) {
		tracer().Infof("%s: reference to lookup %d beyond lookup list", u.table.Tag, inx)
		return nil
	}
	l := u.table.Lookups[inx]
	r := fontfeatures.NewRoutine(routineName(u.table, l))
	r.Address = fmt.Sprintf("%s lookup %d", u.table.Tag, inx)
	r.Flags = fontfeatures.LookupFlag(l.Flag & 0x001F)
	u.routines[inx] = r // register before decoding, chains may refer back
	if l.MarkFilteringSet >= 0 {
		r.MarkFilteringSet = u.markFilteringSet(l.MarkFilteringSet)
	}
	if mat := l.MarkAttachmentType(); mat > 0 {
		r.MarkAttachmentClass = u.markAttachmentClass(mat)
	}
	for _, st := range l.Subtables {
		var rules []fontfeatures.Rule
		if u.table.IsGPos() {
			rules = u.gposRules(l, st)
		} else {
			rules = u.gsubRules(st)
		}
		for _, rule := range rules {
			r.AddRule(rule)
		}
	}
	tracer().Debugf("%s: %d rules", r.Name, len(r.Rules))
	return r
}

func (u *unparser) markFilteringSet(inx int) string {
	name := fmt.Sprintf("MarkFilteringSet%d", inx)
	if _, ok := u.ff.Class(name); !ok {
		var glyphs []ot.GlyphIndex
		if gdef := u.font.Layout.GDef; gdef != nil && inx < len(gdef.MarkGlyphSets) {
			glyphs = gdef.MarkGlyphSets[inx]
		}
		u.ff.DefineClass(name, u.names(glyphs))
	}
	return name
}

func (u *unparser) markAttachmentClass(class int) string {
	name := fmt.Sprintf("MarkAttachmentType%d", class)
	if _, ok := u.ff.Class(name); !ok {
		var glyphs []ot.GlyphIndex
		if gdef := u.font.Layout.GDef; gdef != nil {
			glyphs = gdef.MarkAttachmentClassDef.Glyphs(uint16(class), u.font.NumGlyphs())
		}
		u.ff.DefineClass(name, u.names(glyphs))
	}
	return name
}

// --- Glyph names -----------------------------------------------------------

func (u *unparser) names(glyphs []ot.GlyphIndex) []string {
	names := make([]string, len(glyphs))
	for i, g := range glyphs {
		names[i] = u.font.GlyphName(g)
	}
	return names
}

func (u *unparser) sequence(sets [][]ot.GlyphIndex) [][]string {
	seq := make([][]string, len(sets))
	for i, set := range sets {
		seq[i] = u.names(set)
	}
	return seq
}

func (u *unparser) single(g ot.GlyphIndex) [][]string {
	return [][]string{{u.font.GlyphName(g)}}
}

// --- Contextual lookups ----------------------------------------------------

// chainingRules converts the rules of a (chained) sequence context.
// Sequence lookup records pointing to contextual lookups are dropped, as are
// records with a sequence index beyond the input.
func (u *unparser) chainingRules(sc *ot.SequenceContext) []fontfeatures.Rule {
	var rules []fontfeatures.Rule
	for _, cr := range sc.Rules {
		ch := &fontfeatures.Chaining{
			Context: fontfeatures.Context{
				Precontext:  u.sequence(cr.Backtrack),
				Postcontext: u.sequence(cr.Lookahead),
			},
			Input:   u.sequence(cr.Input),
			Lookups: make([][]*fontfeatures.Routine, len(cr.Input)),
		}
		for _, rec := range cr.Records {
			if int(rec.SequenceIndex) >= len(cr.Input) {
				tracer().Infof("%s: sequence index %d beyond input", u.table.Tag, rec.SequenceIndex)
				continue
			}
			li := int(rec.LookupListIndex)
			if li < len(u.table.Lookups) && isContextual(u.table, u.table.Lookups[li]) {
				tracer().Infof("%s: nested contextual lookup %d not supported", u.table.Tag, li)
				continue
			}
			if r := u.routine(li); r != nil {
				u.use(li, r)
				ch.Lookups[rec.SequenceIndex] = append(ch.Lookups[rec.SequenceIndex], r)
			}
		}
		rules = append(rules, ch)
	}
	return rules
}

func isContextual(lytt *ot.LayoutTable, l *ot.Lookup) bool {
	if lytt.IsGPos() {
		return l.Type == ot.GPosLookupTypeContextPos || l.Type == ot.GPosLookupTypeChainedContextPos
	}
	return l.Type == ot.GSubLookupTypeContext || l.Type == ot.GSubLookupTypeChainingContext
}
