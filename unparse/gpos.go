package unparse

import (
	"fmt"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/ot"
)

func valueRecord(vr ot.ValueRecord) *fontfeatures.ValueRecord {
	if vr.IsZero() {
		return nil
	}
	return &fontfeatures.ValueRecord{
		XPlacement: int(vr.XPlacement),
		YPlacement: int(vr.YPlacement),
		XAdvance:   int(vr.XAdvance),
		YAdvance:   int(vr.YAdvance),
	}
}

func anchor(a *ot.Anchor) fontfeatures.Anchor {
	return fontfeatures.Anchor{X: int(a.X), Y: int(a.Y)}
}

func (u *unparser) gposRules(l *ot.Lookup, st ot.Subtable) []fontfeatures.Rule {
	var rules []fontfeatures.Rule
	switch st := st.(type) {
	case *ot.SinglePos:
		if len(st.Glyphs) > 0 && allEqual(st.Values) {
			return []fontfeatures.Rule{&fontfeatures.Positioning{
				Glyphs: [][]string{u.names(st.Glyphs)},
				Values: []*fontfeatures.ValueRecord{valueRecord(st.Values[0])},
			}}
		}
		for i, g := range st.Glyphs {
			rules = append(rules, &fontfeatures.Positioning{
				Glyphs: u.single(g),
				Values: []*fontfeatures.ValueRecord{valueRecord(st.Values[i])},
			})
		}
	case *ot.PairPos:
		for _, pa := range st.Pairs {
			rules = append(rules, &fontfeatures.Positioning{
				Glyphs: [][]string{u.names(pa.First), u.names(pa.Second)},
				Values: []*fontfeatures.ValueRecord{valueRecord(pa.Value1), valueRecord(pa.Value2)},
			})
		}
	case *ot.CursivePos:
		att := &fontfeatures.Attachment{
			BaseName: "entry",
			MarkName: "exit",
			Bases:    make(map[string]fontfeatures.Anchor),
			Marks:    make(map[string]fontfeatures.Anchor),
			Kind:     fontfeatures.CursiveAttachment,
		}
		for i, g := range st.Glyphs {
			if st.Entry[i] != nil {
				att.Bases[u.font.GlyphName(g)] = anchor(st.Entry[i])
			}
			if st.Exit[i] != nil {
				att.Marks[u.font.GlyphName(g)] = anchor(st.Exit[i])
			}
		}
		rules = append(rules, att)
	case *ot.MarkAttachPos:
		rules = u.markAttachments(l, st)
	case *ot.SequenceContext:
		rules = u.chainingRules(st)
	default:
		tracer().Infof("GPOS: cannot extract subtable of type %d", st.LookupType())
	}
	return rules
}

// markAttachments creates one attachment per mark class. Anchor names are
// unique per lookup and class, as a glyph may carry different anchors in
// different lookups.
func (u *unparser) markAttachments(l *ot.Lookup, st *ot.MarkAttachPos) []fontfeatures.Rule {
	var rules []fontfeatures.Rule
	for class := 0; class < st.ClassCount; class++ {
		name := fmt.Sprintf("anchor%d_%d", l.Index, class)
		att := &fontfeatures.Attachment{
			BaseName: name,
			MarkName: name,
			Bases:    make(map[string]fontfeatures.Anchor),
			Marks:    make(map[string]fontfeatures.Anchor),
			Kind:     fontfeatures.AttachmentKind(st.Type),
		}
		for _, m := range st.Marks {
			if int(m.Class) == class {
				att.Marks[u.font.GlyphName(m.Glyph)] = anchor(&m.Anchor)
			}
		}
		if st.Type == ot.GPosLookupTypeMarkToLigature {
			att.Components = make(map[string][]*fontfeatures.Anchor)
			for i, lig := range st.Bases {
				if i >= len(st.LigatureAnchors) {
					break
				}
				var comps []*fontfeatures.Anchor
				for _, row := range st.LigatureAnchors[i] {
					if a := row[class]; a != nil {
						fa := anchor(a)
						comps = append(comps, &fa)
					} else {
						comps = append(comps, nil)
					}
				}
				att.Components[u.font.GlyphName(lig)] = comps
			}
		} else {
			for i, base := range st.Bases {
				if i < len(st.BaseAnchors) && st.BaseAnchors[i][class] != nil {
					att.Bases[u.font.GlyphName(base)] = anchor(st.BaseAnchors[i][class])
				}
			}
		}
		if len(att.Marks) > 0 {
			rules = append(rules, att)
		}
	}
	return rules
}

func allEqual(values []ot.ValueRecord) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
