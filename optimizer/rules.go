package optimizer

import (
	"slices"

	"github.com/npillmayer/fontfeatures"
)

// Routine passes never modify a rule or a rule slice in place, as routines
// may share their rules with other routines.

func dropDuplicates(r *fontfeatures.Routine) bool {
	seen := make(map[string]bool, len(r.Rules))
	var rules []fontfeatures.Rule
	for _, rule := range r.Rules {
		s := rule.String()
		if seen[s] {
			continue
		}
		seen[s] = true
		rules = append(rules, rule)
	}
	return replaceRules(r, rules)
}

// plainSingle returns a rule as a context-free single substitution, or nil.
func plainSingle(rule fontfeatures.Rule) *fontfeatures.Substitution {
	sub, ok := rule.(*fontfeatures.Substitution)
	if !ok || sub.LookupType() != 1 {
		return nil
	}
	return sub
}

// dropShadowedSingles removes glyphs from single substitutions which an
// earlier single substitution of the same routine already covers. They could
// never apply.
func dropShadowedSingles(r *fontfeatures.Routine) bool {
	covered := make(map[string]map[string]bool) // by languages
	var rules []fontfeatures.Rule
	changed := false
	for _, rule := range r.Rules {
		sub := plainSingle(rule)
		if sub == nil {
			rules = append(rules, rule)
			continue
		}
		key := languagesKey(sub.Languages)
		if covered[key] == nil {
			covered[key] = make(map[string]bool)
		}
		in, out := sub.Input[0], sub.Replacement[0]
		classToClass := len(out) > 1 && len(out) == len(in)
		var keepIn, keepOut []string
		for i, g := range in {
			if covered[key][g] {
				continue
			}
			covered[key][g] = true
			keepIn = append(keepIn, g)
			if classToClass {
				keepOut = append(keepOut, out[i])
			}
		}
		switch {
		case len(keepIn) == len(in):
			rules = append(rules, rule)
			continue
		case len(keepIn) == 0:
		default:
			if !classToClass {
				keepOut = out
			}
			rules = append(rules, withSingle(sub, keepIn, keepOut))
		}
		changed = true
	}
	if changed {
		r.Rules = rules
	}
	return changed
}

// mergeSingles joins runs of single substitutions with disjoint inputs into
// one class substitution.
func mergeSingles(r *fontfeatures.Routine) bool {
	return mergeRuns(r, func(a, b fontfeatures.Rule) bool {
		s, t := plainSingle(a), plainSingle(b)
		return s != nil && t != nil &&
			slices.Equal(s.Languages, t.Languages) &&
			fontfeatures.Disjoint(s.Input[0], t.Input[0])
	}, func(run []fontfeatures.Rule) fontfeatures.Rule {
		first := plainSingle(run[0])
		var in, out []string
		for _, rule := range run {
			sub := plainSingle(rule)
			in = append(in, sub.Input[0]...)
			repl := sub.Replacement[0]
			for i := range sub.Input[0] {
				if len(repl) == 1 {
					out = append(out, repl[0])
				} else {
					out = append(out, repl[i])
				}
			}
		}
		if allSame(out) {
			out = out[:1]
		}
		return withSingle(first, in, out)
	})
}

func withSingle(sub *fontfeatures.Substitution, in, out []string) *fontfeatures.Substitution {
	return &fontfeatures.Substitution{
		Context:     fontfeatures.Context{Languages: sub.Languages, Address: sub.Address},
		Input:       [][]string{in},
		Replacement: [][]string{out},
	}
}

// plainPositioning returns a rule as a context-free positioning of the given
// lookup type, or nil.
func plainPositioning(rule fontfeatures.Rule, lookupType int) *fontfeatures.Positioning {
	pos, ok := rule.(*fontfeatures.Positioning)
	if !ok || pos.HasContext() || pos.LookupType() != lookupType {
		return nil
	}
	return pos
}

// mergeSinglePositions joins runs of single positionings with equal value
// records.
func mergeSinglePositions(r *fontfeatures.Routine) bool {
	return mergeRuns(r, func(a, b fontfeatures.Rule) bool {
		p, q := plainPositioning(a, 1), plainPositioning(b, 1)
		return p != nil && q != nil &&
			slices.Equal(p.Languages, q.Languages) &&
			sameValues(p.Values, q.Values)
	}, func(run []fontfeatures.Rule) fontfeatures.Rule {
		first := plainPositioning(run[0], 1)
		var glyphs []string
		for _, rule := range run {
			glyphs = fontfeatures.Union(glyphs, rule.(*fontfeatures.Positioning).Glyphs[0])
		}
		return &fontfeatures.Positioning{
			Context: fontfeatures.Context{Languages: first.Languages, Address: first.Address},
			Glyphs:  [][]string{glyphs},
			Values:  first.Values,
		}
	})
}

// mergePairPositions joins runs of pair positionings with the same first
// glyphs and equal value records, and disjoint second glyphs.
func mergePairPositions(r *fontfeatures.Routine) bool {
	return mergeRuns(r, func(a, b fontfeatures.Rule) bool {
		p, q := plainPositioning(a, 2), plainPositioning(b, 2)
		return p != nil && q != nil &&
			slices.Equal(p.Languages, q.Languages) &&
			fontfeatures.SameGlyphs(p.Glyphs[0], q.Glyphs[0]) &&
			fontfeatures.Disjoint(p.Glyphs[1], q.Glyphs[1]) &&
			sameValues(p.Values, q.Values)
	}, func(run []fontfeatures.Rule) fontfeatures.Rule {
		first := plainPositioning(run[0], 2)
		var second []string
		for _, rule := range run {
			second = append(second, rule.(*fontfeatures.Positioning).Glyphs[1]...)
		}
		return &fontfeatures.Positioning{
			Context: fontfeatures.Context{Languages: first.Languages, Address: first.Address},
			Glyphs:  [][]string{first.Glyphs[0], second},
			Values:  first.Values,
		}
	})
}

// mergeRuns replaces each run of two or more rules, where every rule is
// joinable with the merged run before it, by the merged rule.
func mergeRuns(r *fontfeatures.Routine, joinable func(a, b fontfeatures.Rule) bool,
	merge func(run []fontfeatures.Rule) fontfeatures.Rule) bool {
	//
	var rules []fontfeatures.Rule
	changed := false
	for i := 0; i < len(r.Rules); {
		run := []fontfeatures.Rule{r.Rules[i]}
		acc := r.Rules[i]
		j := i + 1
		for ; j < len(r.Rules) && joinable(acc, r.Rules[j]); j++ {
			run = append(run, r.Rules[j])
			acc = merge(run)
		}
		if len(run) > 1 {
			changed = true
		}
		rules = append(rules, acc)
		i = j
	}
	if changed {
		r.Rules = rules
	}
	return changed
}

func replaceRules(r *fontfeatures.Routine, rules []fontfeatures.Rule) bool {
	if len(rules) == len(r.Rules) {
		return false
	}
	r.Rules = rules
	return true
}

func sameValues(a, b []*fontfeatures.ValueRecord) bool {
	return slices.EqualFunc(a, b, func(v, w *fontfeatures.ValueRecord) bool {
		if v == nil || w == nil {
			return v == w
		}
		return *v == *w
	})
}

func allSame(glyphs []string) bool {
	for _, g := range glyphs[1:] {
		if g != glyphs[0] {
			return false
		}
	}
	return true
}

func languagesKey(langs []fontfeatures.LangSys) string {
	var key string
	for _, ls := range langs {
		key += ls.String() + ","
	}
	return key
}
