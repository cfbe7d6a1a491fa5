package unparse

import (
	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/ot"
)

func (u *unparser) gsubRules(st ot.Subtable) []fontfeatures.Rule {
	var rules []fontfeatures.Rule
	switch st := st.(type) {
	case *ot.SingleSubst:
		for i, g := range st.Input {
			if i >= len(st.Output) {
				break
			}
			rules = append(rules, &fontfeatures.Substitution{
				Input:       u.single(g),
				Replacement: u.single(st.Output[i]),
			})
		}
	case *ot.MultipleSubst:
		for i, g := range st.Input {
			rules = append(rules, &fontfeatures.Substitution{
				Input:       u.single(g),
				Replacement: u.sequence(singletons(st.Sequences[i])),
			})
		}
	case *ot.AlternateSubst:
		for i, g := range st.Input {
			rules = append(rules, &fontfeatures.Substitution{
				Input:       u.single(g),
				Replacement: [][]string{u.names(st.Alternates[i])},
				Alternate:   true,
			})
		}
	case *ot.LigatureSubst:
		for _, lig := range st.Ligatures {
			rules = append(rules, &fontfeatures.Substitution{
				Input:       u.sequence(singletons(lig.Components)),
				Replacement: u.single(lig.Glyph),
			})
		}
	case *ot.SequenceContext:
		rules = u.chainingRules(st)
	case *ot.ReverseChainSubst:
		rules = append(rules, &fontfeatures.Substitution{
			Context: fontfeatures.Context{
				Precontext:  u.sequence(st.Backtrack),
				Postcontext: u.sequence(st.Lookahead),
			},
			Input:       [][]string{u.names(st.Input)},
			Replacement: [][]string{u.names(st.Output)},
			Reverse:     true,
		})
	default:
		tracer().Infof("GSUB: cannot extract subtable of type %d", st.LookupType())
	}
	return rules
}

func singletons(glyphs []ot.GlyphIndex) [][]ot.GlyphIndex {
	sets := make([][]ot.GlyphIndex, len(glyphs))
	for i, g := range glyphs {
		sets[i] = []ot.GlyphIndex{g}
	}
	return sets
}
