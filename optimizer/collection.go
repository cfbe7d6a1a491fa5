package optimizer

import (
	"slices"

	"github.com/npillmayer/fontfeatures"
)

// pruneEmpty drops standalone routines without rules which nothing
// references.
func (o *Optimizer) pruneEmpty() bool {
	n := len(o.ff.Routines)
	o.ff.Routines = slices.DeleteFunc(o.ff.Routines, func(r *fontfeatures.Routine) bool {
		return r.IsEmpty() && o.ff.References(r) == 0
	})
	return len(o.ff.Routines) != n
}

// mergeRoutines joins neighbouring routines of a feature into one, if the
// result behaves like applying them one after the other.
func (o *Optimizer) mergeRoutines() bool {
	changed := false
	for _, f := range o.ff.Features() {
		for i := 0; i+1 < len(f.Routines); {
			r1, r2 := f.Routines[i], f.Routines[i+1]
			if !o.mergeable(r1, r2) {
				i++
				continue
			}
			tracer().Debugf("feature %s: merging %s into %s", f.Tag, r2.Name, r1.Name)
			rules := slices.Clone(r1.Rules)
			r1.Rules = append(rules, r2.Rules...)
			f.Routines = slices.Delete(f.Routines, i+1, i+2)
			changed = true
		}
	}
	return changed
}

// mergeable lookup types, by stage. Contextual rules may observe the glyphs
// an earlier routine produced; these routines are left alone.
var mergeableTypes = map[fontfeatures.Stage][]int{
	fontfeatures.SubstitutionStage: {1, 2, 3, 4},
	fontfeatures.PositioningStage:  {1, 2},
}

func (o *Optimizer) mergeable(r1, r2 *fontfeatures.Routine) bool {
	if r1 == r2 || r1.IsEmpty() || r2.IsEmpty() || !r1.SameOptions(r2) {
		return false
	}
	if slices.Contains(o.ff.Routines, r1) || slices.Contains(o.ff.Routines, r2) ||
		o.ff.References(r1) != 1 || o.ff.References(r2) != 1 {
		return false
	}
	stage := r1.Stage()
	if stage != r2.Stage() {
		return false
	}
	t1, t2 := r1.LookupTypes(), r2.LookupTypes()
	if len(t1) != 1 || !slices.Equal(t1, t2) || !slices.Contains(mergeableTypes[stage], t1[0]) {
		return false
	}
	if !fontfeatures.Disjoint(firstInputs(r1), firstInputs(r2)) {
		return false
	}
	if stage == fontfeatures.SubstitutionStage {
		return fontfeatures.Disjoint(outputs(r1), allInputs(r2)) &&
			fontfeatures.Disjoint(outputs(r2), allInputs(r1))
	}
	return true
}

func firstInputs(r *fontfeatures.Routine) []string {
	var glyphs []string
	for _, rule := range r.Rules {
		if in := rule.Inputs(); len(in) > 0 {
			glyphs = append(glyphs, in[0]...)
		}
	}
	return glyphs
}

func allInputs(r *fontfeatures.Routine) []string {
	var glyphs []string
	for _, rule := range r.Rules {
		for _, in := range rule.Inputs() {
			glyphs = append(glyphs, in...)
		}
	}
	return glyphs
}

func outputs(r *fontfeatures.Routine) []string {
	var glyphs []string
	for _, rule := range r.Rules {
		if sub, ok := rule.(*fontfeatures.Substitution); ok {
			for _, repl := range sub.Replacement {
				glyphs = append(glyphs, repl...)
			}
		}
	}
	return glyphs
}

// longClass is the number of glyphs from which on an inline glyph class is
// given a name.
const longClass = 6

// hoistClasses defines named classes for long inline glyph classes. The
// serializer refers to glyph classes equal to a named class by name.
func (o *Optimizer) hoistClasses() bool {
	known := make(map[string]bool)
	for _, name := range o.ff.ClassNames() {
		glyphs, _ := o.ff.Class(name)
		known[orderedKey(glyphs)] = true
	}
	changed := false
	hoist := func(glyphs []string) {
		if len(glyphs) < longClass || known[orderedKey(glyphs)] {
			return
		}
		name := o.ff.UnusedClassName("class")
		o.ff.DefineClass(name, glyphs)
		known[orderedKey(glyphs)] = true
		changed = true
	}
	for _, r := range o.ff.AllRoutines() {
		for _, rule := range r.Rules {
			for _, glyphs := range ruleClasses(rule) {
				hoist(glyphs)
			}
		}
	}
	return changed
}

func ruleClasses(rule fontfeatures.Rule) [][]string {
	var classes [][]string
	switch rule := rule.(type) {
	case *fontfeatures.Substitution:
		classes = append(classes, rule.Precontext...)
		classes = append(classes, rule.Input...)
		classes = append(classes, rule.Postcontext...)
		classes = append(classes, rule.Replacement...)
	case *fontfeatures.Positioning:
		classes = append(classes, rule.Precontext...)
		classes = append(classes, rule.Glyphs...)
		classes = append(classes, rule.Postcontext...)
	case *fontfeatures.Chaining:
		classes = append(classes, rule.Precontext...)
		classes = append(classes, rule.Input...)
		classes = append(classes, rule.Postcontext...)
	}
	return classes
}

// orderedKey identifies a glyph class including the order of its glyphs,
// which matters for substitutions.
func orderedKey(glyphs []string) string {
	key := ""
	for _, g := range glyphs {
		key += g + " "
	}
	return key
}
