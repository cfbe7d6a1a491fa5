package fea

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/fontfeatures"
)

// Errors returned by AsFea.
var (
	ErrSplitRoutine = errors.New("chain references a routine which has to be split")
	ErrCycle        = errors.New("routines reference each other in a cycle")
)

// AsFea returns the feature file text for a feature collection.
func AsFea(ff *fontfeatures.FontFeatures) (string, error) {
	w := newWriter(ff)
	if err := w.prepare(); err != nil {
		return "", err
	}
	w.languageSystems()
	w.namedClasses()
	w.markClasses()
	w.gdef()
	for _, r := range w.order {
		w.lookup(r)
	}
	for _, f := range ff.Features() {
		w.feature(f)
	}
	tracer().Debugf("wrote %d lookups, %d features", len(w.order), len(ff.Features()))
	return w.String(), nil
}

type writer struct {
	strings.Builder
	ff      *fontfeatures.FontFeatures
	parts   map[*fontfeatures.Routine][]*fontfeatures.Routine
	order   []*fontfeatures.Routine // routines in order of output, chain targets first
	classes map[string]string       // glyph list → class name
	marks   []markClass
	section bool
}

func newWriter(ff *fontfeatures.FontFeatures) *writer {
	w := &writer{
		ff:      ff,
		parts:   make(map[*fontfeatures.Routine][]*fontfeatures.Routine),
		classes: make(map[string]string),
	}
	for _, name := range ff.ClassNames() {
		glyphs, _ := ff.Class(name)
		if key := classKey(glyphs); len(glyphs) > 1 && w.classes[key] == "" {
			w.classes[key] = name
		}
	}
	return w
}

// prepare orders the routines, arranges them into lookups and collects mark
// classes. Empty routines are left out.
func (w *writer) prepare() error {
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*fontfeatures.Routine]int)
	var visit func(r *fontfeatures.Routine) error
	visit = func(r *fontfeatures.Routine) error {
		switch state[r] {
		case visiting:
			return fmt.Errorf("%w: %s", ErrCycle, r.Name)
		case done:
			return nil
		}
		state[r] = visiting
		for _, target := range chainTargets(r) {
			if err := visit(target); err != nil {
				return err
			}
			if len(w.parts[target]) > 1 {
				return fmt.Errorf("%w: %s references %s", ErrSplitRoutine, r.Name, target.Name)
			}
		}
		state[r] = done
		if r.IsEmpty() {
			return nil
		}
		w.parts[r] = arrange(r)
		w.order = append(w.order, r)
		return nil
	}
	for _, r := range w.ff.AllRoutines() {
		if err := visit(r); err != nil {
			return err
		}
	}
	w.collectMarkClasses()
	return nil
}

func chainTargets(r *fontfeatures.Routine) []*fontfeatures.Routine {
	var targets []*fontfeatures.Routine
	for _, rule := range r.Rules {
		if ch, ok := rule.(*fontfeatures.Chaining); ok {
			for _, lookups := range ch.Lookups {
				for _, target := range lookups {
					if target != nil && !slices.Contains(targets, target) {
						targets = append(targets, target)
					}
				}
			}
		}
	}
	return targets
}

// startSection separates sections of output by an empty line.
func (w *writer) startSection() {
	if w.section {
		w.WriteString("\n")
	}
	w.section = true
}

func (w *writer) languageSystems() {
	langs := slices.Clone(w.ff.LanguageSystems)
	for _, r := range w.order {
		for _, part := range w.parts[r] {
			for _, ls := range part.Languages {
				if !slices.Contains(langs, ls) {
					langs = append(langs, ls)
				}
			}
		}
	}
	if len(langs) == 0 {
		return
	}
	if i := slices.Index(langs, fontfeatures.DefaultLangSys); i > 0 {
		langs = slices.Delete(langs, i, i+1)
		langs = slices.Insert(langs, 0, fontfeatures.DefaultLangSys)
	}
	w.startSection()
	for _, ls := range langs {
		fmt.Fprintf(w, "languagesystem %s %s;\n", ls.Script, ls.Language)
	}
}

func (w *writer) namedClasses() {
	names := w.ff.ClassNames()
	if len(names) == 0 {
		return
	}
	w.startSection()
	for _, name := range names {
		glyphs, _ := w.ff.Class(name)
		fmt.Fprintf(w, "@%s = [%s];\n", name, glyphNames(glyphs))
	}
}

func (w *writer) gdef() {
	if len(w.ff.GlyphClasses) == 0 {
		return
	}
	categories := []fontfeatures.GlyphCategory{
		fontfeatures.BaseGlyph, fontfeatures.LigatureGlyph,
		fontfeatures.MarkGlyph, fontfeatures.ComponentGlyph,
	}
	slots := make([]string, len(categories))
	for i, cat := range categories {
		var glyphs []string
		for g, c := range w.ff.GlyphClasses {
			if c == cat {
				glyphs = append(glyphs, g)
			}
		}
		if len(glyphs) > 0 {
			slices.Sort(glyphs)
			if name, ok := w.classes[classKey(glyphs)]; ok {
				slots[i] = "@" + name
			} else {
				slots[i] = "[" + glyphNames(glyphs) + "]"
			}
		}
	}
	w.startSection()
	w.WriteString("table GDEF {\n")
	fmt.Fprintf(w, "    GlyphClassDef %s;\n", strings.Join(slots, ", "))
	w.WriteString("} GDEF;\n")
}

// lookup writes the lookups of a routine.
func (w *writer) lookup(r *fontfeatures.Routine) {
	for _, part := range w.parts[r] {
		w.startSection()
		fmt.Fprintf(w, "lookup %s {\n", part.Name)
		if part.Address != "" {
			fmt.Fprintf(w, "    # %s\n", part.Address)
		}
		for _, c := range part.Comments {
			fmt.Fprintf(w, "    # %s\n", c)
		}
		if flags := w.lookupFlags(part); flags != "" {
			fmt.Fprintf(w, "    lookupflag %s;\n", flags)
		}
		for _, rule := range part.Rules {
			for _, stmt := range w.statements(rule, part) {
				fmt.Fprintf(w, "    %s\n", stmt)
			}
		}
		fmt.Fprintf(w, "} %s;\n", part.Name)
	}
}

func (w *writer) lookupFlags(r *fontfeatures.Routine) string {
	var flags []string
	for _, f := range []struct {
		bit  fontfeatures.LookupFlag
		name string
	}{
		{fontfeatures.RightToLeft, "RightToLeft"},
		{fontfeatures.IgnoreBaseGlyphs, "IgnoreBaseGlyphs"},
		{fontfeatures.IgnoreLigatures, "IgnoreLigatures"},
		{fontfeatures.IgnoreMarks, "IgnoreMarks"},
	} {
		if r.Flags&f.bit != 0 {
			flags = append(flags, f.name)
		}
	}
	if r.MarkAttachmentClass != "" {
		flags = append(flags, "MarkAttachmentType @"+r.MarkAttachmentClass)
	}
	if r.Flags&fontfeatures.UseMarkFilteringSet != 0 && r.MarkFilteringSet != "" {
		flags = append(flags, "UseMarkFilteringSet @"+r.MarkFilteringSet)
	}
	return strings.Join(flags, " ")
}

// feature writes a feature block. Lookups for all language systems come
// first, then the lookups restricted to language systems.
func (w *writer) feature(f *fontfeatures.Feature) {
	var common []string
	var langs []fontfeatures.LangSys
	restricted := make(map[fontfeatures.LangSys][]string)
	for _, r := range f.Routines {
		for _, part := range w.parts[r] {
			if len(part.Languages) == 0 {
				common = appendNew(common, part.Name)
				continue
			}
			for _, ls := range part.Languages {
				if _, ok := restricted[ls]; !ok {
					langs = append(langs, ls)
				}
				restricted[ls] = appendNew(restricted[ls], part.Name)
			}
		}
	}
	if len(common) == 0 && len(langs) == 0 {
		tracer().Infof("feature %s has no lookups, skipped", f.Tag)
		return
	}
	w.startSection()
	fmt.Fprintf(w, "feature %s {\n", f.Tag)
	for _, name := range common {
		fmt.Fprintf(w, "    lookup %s;\n", name)
	}
	for _, ls := range langs {
		fmt.Fprintf(w, "    script %s;\n", ls.Script)
		fmt.Fprintf(w, "    language %s;\n", ls.Language)
		for _, name := range restricted[ls] {
			fmt.Fprintf(w, "    lookup %s;\n", name)
		}
	}
	fmt.Fprintf(w, "} %s;\n", f.Tag)
}

func appendNew(names []string, name string) []string {
	if slices.Contains(names, name) {
		return names
	}
	return append(names, name)
}
