package fontfeatures

import (
	"fmt"
	"slices"
)

// LangSys is a pair of an OpenType script tag and language tag, as it appears
// in a 'languagesystem' statement. Tags are stored without padding.
type LangSys struct {
	Script   string
	Language string
}

func (ls LangSys) String() string {
	return ls.Script + "/" + ls.Language
}

// DefaultLangSys is the language system which applies if nothing else does.
var DefaultLangSys = LangSys{Script: "DFLT", Language: "dflt"}

// Anchor is an attachment point, in font design units.
type Anchor struct {
	X, Y int
}

// GlyphCategory is the GDEF class of a glyph.
type GlyphCategory uint8

// Glyph categories as used by GDEF.
const (
	UnknownGlyph GlyphCategory = iota
	BaseGlyph
	LigatureGlyph
	MarkGlyph
	ComponentGlyph
)

func (gc GlyphCategory) String() string {
	switch gc {
	case BaseGlyph:
		return "base"
	case LigatureGlyph:
		return "ligature"
	case MarkGlyph:
		return "mark"
	case ComponentGlyph:
		return "component"
	}
	return "unknown"
}

// Feature is an OpenType feature. It references routines, which may be
// referenced by other features as well.
type Feature struct {
	Tag      string
	Routines []*Routine
}

// FontFeatures is a collection of glyph classes, routines and features.
// The zero value is not usable, clients call New.
type FontFeatures struct {
	GlyphClasses    map[string]GlyphCategory     // GDEF categories by glyph name
	Anchors         map[string]map[string]Anchor // glyph name → anchor name → anchor
	LanguageSystems []LangSys                    // in order of declaration
	Routines        []*Routine                   // standalone routines
	classes         map[string][]string
	classOrder      []string
	features        []*Feature
}

// New creates an empty feature collection.
func New() *FontFeatures {
	return &FontFeatures{
		GlyphClasses: make(map[string]GlyphCategory),
		Anchors:      make(map[string]map[string]Anchor),
		classes:      make(map[string][]string),
	}
}

// --- Named classes ---------------------------------------------------------

// DefineClass defines or redefines a named glyph class. Class names are given
// without the '@' sigil. A redefined class keeps its position.
func (ff *FontFeatures) DefineClass(name string, glyphs []string) {
	if _, exists := ff.classes[name]; !exists {
		ff.classOrder = append(ff.classOrder, name)
	}
	ff.classes[name] = slices.Clone(glyphs)
	tracer().Debugf("class @%s = %v", name, glyphs)
}

// Class returns the glyphs of a named class.
func (ff *FontFeatures) Class(name string) ([]string, bool) {
	glyphs, ok := ff.classes[name]
	return glyphs, ok
}

// ClassNames returns the names of all classes in order of definition.
func (ff *FontFeatures) ClassNames() []string {
	return slices.Clone(ff.classOrder)
}

// UnusedClassName returns the first name of the form prefix1, prefix2, …
// which is not yet a class name.
func (ff *FontFeatures) UnusedClassName(prefix string) string {
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%d", prefix, i)
		if _, exists := ff.classes[name]; !exists {
			return name
		}
	}
}

// --- Language systems, anchors, categories --------------------------------

// AddLanguageSystem adds a language system, if not already present.
func (ff *FontFeatures) AddLanguageSystem(script, language string) {
	ls := LangSys{Script: script, Language: language}
	if !slices.Contains(ff.LanguageSystems, ls) {
		ff.LanguageSystems = append(ff.LanguageSystems, ls)
	}
}

// SetAnchor defines a named anchor of a glyph.
func (ff *FontFeatures) SetAnchor(glyph, name string, a Anchor) {
	if ff.Anchors[glyph] == nil {
		ff.Anchors[glyph] = make(map[string]Anchor)
	}
	ff.Anchors[glyph][name] = a
}

// GlyphsWithAnchor returns the glyphs which have an anchor of the given name,
// sorted by glyph name.
func (ff *FontFeatures) GlyphsWithAnchor(name string) []string {
	var glyphs []string
	for g, anchors := range ff.Anchors {
		if _, ok := anchors[name]; ok {
			glyphs = append(glyphs, g)
		}
	}
	slices.Sort(glyphs)
	return glyphs
}

// --- Routines and features -------------------------------------------------

// AddRoutine adds a standalone routine.
func (ff *FontFeatures) AddRoutine(r *Routine) {
	if !slices.Contains(ff.Routines, r) {
		ff.Routines = append(ff.Routines, r)
	}
}

// AddFeature appends a reference to a routine to a feature, creating the
// feature if necessary.
func (ff *FontFeatures) AddFeature(tag string, r *Routine) {
	f := ff.Feature(tag)
	if f == nil {
		f = &Feature{Tag: tag}
		ff.features = append(ff.features, f)
	}
	f.Routines = append(f.Routines, r)
}

// Feature returns the feature for a tag, or nil.
func (ff *FontFeatures) Feature(tag string) *Feature {
	for _, f := range ff.features {
		if f.Tag == tag {
			return f
		}
	}
	return nil
}

// Features returns all features in order of their first appearance.
func (ff *FontFeatures) Features() []*Feature {
	return ff.features
}

// RemoveFeature deletes a feature. Routines it referenced remain untouched.
func (ff *FontFeatures) RemoveFeature(tag string) {
	ff.features = slices.DeleteFunc(ff.features, func(f *Feature) bool {
		return f.Tag == tag
	})
}

// RoutineByName returns the first routine with a given name, searching
// standalone routines, routines of features and routines referenced by
// chaining rules.
func (ff *FontFeatures) RoutineByName(name string) *Routine {
	for _, r := range ff.AllRoutines() {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// AllRoutines returns every routine reachable from the collection: standalone
// routines first, then routines referenced by features, then routines
// referenced from chaining rules. Each routine appears once.
func (ff *FontFeatures) AllRoutines() []*Routine {
	seen := make(map[*Routine]bool)
	var all []*Routine
	var visit func(r *Routine)
	visit = func(r *Routine) {
		if r == nil || seen[r] {
			return
		}
		seen[r] = true
		all = append(all, r)
		for _, rule := range r.Rules {
			if ch, ok := rule.(*Chaining); ok {
				for _, lookups := range ch.Lookups {
					for _, l := range lookups {
						visit(l)
					}
				}
			}
		}
	}
	for _, r := range ff.Routines {
		visit(r)
	}
	for _, f := range ff.features {
		for _, r := range f.Routines {
			visit(r)
		}
	}
	return all
}

// References counts how often a routine is referenced by features and by
// chaining rules. Being a standalone routine does not count.
func (ff *FontFeatures) References(r *Routine) int {
	n := 0
	for _, f := range ff.features {
		for _, fr := range f.Routines {
			if fr == r {
				n++
			}
		}
	}
	for _, other := range ff.AllRoutines() {
		for _, rule := range other.Rules {
			if ch, ok := rule.(*Chaining); ok {
				for _, lookups := range ch.Lookups {
					for _, l := range lookups {
						if l == r {
							n++
						}
					}
				}
			}
		}
	}
	return n
}

// Merge adds the classes, anchors, glyph categories, language systems,
// routines and features of another collection to ff. Features present in
// both get the routines of other appended.
func (ff *FontFeatures) Merge(other *FontFeatures) {
	for _, name := range other.classOrder {
		ff.DefineClass(name, other.classes[name])
	}
	for g, cat := range other.GlyphClasses {
		ff.GlyphClasses[g] = cat
	}
	for g, anchors := range other.Anchors {
		for name, a := range anchors {
			ff.SetAnchor(g, name, a)
		}
	}
	for _, ls := range other.LanguageSystems {
		ff.AddLanguageSystem(ls.Script, ls.Language)
	}
	for _, r := range other.Routines {
		ff.AddRoutine(r)
	}
	for _, f := range other.features {
		for _, r := range f.Routines {
			ff.AddFeature(f.Tag, r)
		}
	}
}
