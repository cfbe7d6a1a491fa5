package fea

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/fontfeatures"
)

// statements returns the feature file statements for a rule of a lookup.
func (w *writer) statements(rule fontfeatures.Rule, lookup *fontfeatures.Routine) []string {
	switch rule := rule.(type) {
	case *fontfeatures.Substitution:
		return []string{w.substitution(rule)}
	case *fontfeatures.Positioning:
		return []string{w.positioning(rule)}
	case *fontfeatures.Attachment:
		return w.attachment(rule)
	case *fontfeatures.Chaining:
		return []string{w.chaining(rule, lookup)}
	}
	return []string{fmt.Sprintf("# cannot write %s", rule)}
}

func (w *writer) substitution(s *fontfeatures.Substitution) string {
	verb := "sub"
	if s.Reverse {
		verb = "rsub"
	}
	by := "by"
	if s.Alternate {
		by = "from"
	}
	var sb strings.Builder
	sb.WriteString(verb)
	w.writeContext(&sb, s.Context, s.Input, nil)
	sb.WriteString(" " + by)
	for _, g := range s.Replacement {
		if s.Alternate {
			sb.WriteString(" [" + glyphNames(g) + "]")
		} else {
			sb.WriteString(" " + w.glyphClass(g))
		}
	}
	sb.WriteString(";")
	return sb.String()
}

func (w *writer) positioning(p *fontfeatures.Positioning) string {
	var sb strings.Builder
	sb.WriteString("pos")
	switch p.LookupType() {
	case 1:
		fmt.Fprintf(&sb, " %s %s", w.glyphClass(p.Glyphs[0]), shortValue(value(p.Values, 0)))
	case 2:
		first, second := w.glyphClass(p.Glyphs[0]), w.glyphClass(p.Glyphs[1])
		if value(p.Values, 1) == nil {
			fmt.Fprintf(&sb, " %s %s %s", first, second, shortValue(value(p.Values, 0)))
		} else {
			fmt.Fprintf(&sb, " %s %s %s %s", first, fullValue(value(p.Values, 0)),
				second, fullValue(value(p.Values, 1)))
		}
	default:
		w.writeContext(&sb, p.Context, p.Glyphs, func(i int) string {
			if v := value(p.Values, i); v != nil {
				return " " + shortValue(v)
			}
			return ""
		})
	}
	sb.WriteString(";")
	return sb.String()
}

func value(values []*fontfeatures.ValueRecord, i int) *fontfeatures.ValueRecord {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func shortValue(v *fontfeatures.ValueRecord) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func fullValue(v *fontfeatures.ValueRecord) string {
	if v == nil {
		return "<NULL>"
	}
	return fmt.Sprintf("<%d %d %d %d>", v.XPlacement, v.YPlacement, v.XAdvance, v.YAdvance)
}

// chaining writes a chaining rule in the stage of the lookup it is part of.
// References to routines without rules are dropped.
func (w *writer) chaining(c *fontfeatures.Chaining, lookup *fontfeatures.Routine) string {
	verb := "sub"
	if lookup.Stage() == fontfeatures.PositioningStage {
		verb = "pos"
	}
	var sb strings.Builder
	applies := false
	w.writeContext(&sb, c.Context, c.Input, func(i int) string {
		var refs string
		if i < len(c.Lookups) {
			for _, target := range c.Lookups[i] {
				if len(w.parts[target]) > 0 {
					refs += " lookup " + w.parts[target][0].Name
					applies = true
				}
			}
		}
		return refs
	})
	if !applies {
		return fmt.Sprintf("ignore %s%s;", verb, sb.String())
	}
	return fmt.Sprintf("%s%s;", verb, sb.String())
}

// writeContext writes glyph classes, marking the input positions if there
// is context. after returns text to follow an input position.
func (w *writer) writeContext(sb *strings.Builder, ctx fontfeatures.Context, input [][]string,
	after func(i int) string) {
	//
	marked := ctx.HasContext() || after != nil
	for _, g := range ctx.Precontext {
		sb.WriteString(" " + w.glyphClass(g))
	}
	for i, g := range input {
		sb.WriteString(" " + w.glyphClass(g))
		if marked {
			sb.WriteString("'")
		}
		if after != nil {
			sb.WriteString(after(i))
		}
	}
	for _, g := range ctx.Postcontext {
		sb.WriteString(" " + w.glyphClass(g))
	}
}

// --- Attachments ---------------------------------------------------------

// markClass is a mark class of the feature file, one per mark anchor name.
type markClass struct {
	name    string
	anchors map[string]fontfeatures.Anchor
}

func (w *writer) collectMarkClasses() {
	for _, r := range w.order {
		for _, rule := range r.Rules {
			att, ok := rule.(*fontfeatures.Attachment)
			if !ok || att.Kind == fontfeatures.CursiveAttachment {
				continue
			}
			mc := w.markClass(att.MarkName)
			for g, a := range att.Marks {
				if _, ok := mc.anchors[g]; !ok {
					mc.anchors[g] = a
				}
			}
		}
	}
}

// markClass returns the mark class for a mark anchor name, creating it if
// necessary.
func (w *writer) markClass(anchor string) *markClass {
	name := "MC_" + anchor
	for i := range w.marks {
		if w.marks[i].name == name {
			return &w.marks[i]
		}
	}
	w.marks = append(w.marks, markClass{name: name, anchors: make(map[string]fontfeatures.Anchor)})
	return &w.marks[len(w.marks)-1]
}

// markClasses writes one markClass statement per anchor position.
func (w *writer) markClasses() {
	if len(w.marks) == 0 {
		return
	}
	w.startSection()
	for _, mc := range w.marks {
		for _, group := range groupByAnchor(mc.anchors) {
			fmt.Fprintf(w, "markClass %s %s @%s;\n", w.glyphClass(group.glyphs),
				anchorString(&group.anchor), mc.name)
		}
	}
}

type anchorGroup struct {
	anchor fontfeatures.Anchor
	glyphs []string
}

// groupByAnchor groups glyphs sharing an anchor position, in order of glyph
// names.
func groupByAnchor(anchors map[string]fontfeatures.Anchor) []anchorGroup {
	var groups []anchorGroup
	names := make([]string, 0, len(anchors))
	for g := range anchors {
		names = append(names, g)
	}
	slices.Sort(names)
	for _, g := range names {
		i := slices.IndexFunc(groups, func(ag anchorGroup) bool { return ag.anchor == anchors[g] })
		if i < 0 {
			groups = append(groups, anchorGroup{anchor: anchors[g]})
			i = len(groups) - 1
		}
		groups[i].glyphs = append(groups[i].glyphs, g)
	}
	return groups
}

func anchorString(a *fontfeatures.Anchor) string {
	if a == nil {
		return "<anchor NULL>"
	}
	return fmt.Sprintf("<anchor %d %d>", a.X, a.Y)
}

func (w *writer) attachment(att *fontfeatures.Attachment) []string {
	var stmts []string
	mc := "@MC_" + att.MarkName
	switch att.Kind {
	case fontfeatures.CursiveAttachment:
		var glyphs []string
		for g := range att.Bases {
			glyphs = append(glyphs, g)
		}
		for g := range att.Marks {
			if _, ok := att.Bases[g]; !ok {
				glyphs = append(glyphs, g)
			}
		}
		slices.Sort(glyphs)
		for _, g := range glyphs {
			stmts = append(stmts, fmt.Sprintf("pos cursive %s %s %s;", escape(g),
				anchorString(anchorOf(att.Bases, g)), anchorString(anchorOf(att.Marks, g))))
		}
	case fontfeatures.MarkToLigature:
		ligs := make([]string, 0, len(att.Components))
		for g := range att.Components {
			ligs = append(ligs, g)
		}
		slices.Sort(ligs)
		for _, g := range ligs {
			var comps []string
			for _, a := range att.Components[g] {
				if a == nil {
					comps = append(comps, anchorString(nil))
				} else {
					comps = append(comps, anchorString(a)+" mark "+mc)
				}
			}
			stmts = append(stmts, fmt.Sprintf("pos ligature %s %s;", escape(g),
				strings.Join(comps, " ligComponent ")))
		}
	default:
		verb := "base"
		if att.Kind == fontfeatures.MarkToMark {
			verb = "mark"
		}
		for _, group := range groupByAnchor(att.Bases) {
			stmts = append(stmts, fmt.Sprintf("pos %s %s %s mark %s;", verb,
				w.glyphClass(group.glyphs), anchorString(&group.anchor), mc))
		}
	}
	return stmts
}

func anchorOf(anchors map[string]fontfeatures.Anchor, glyph string) *fontfeatures.Anchor {
	if a, ok := anchors[glyph]; ok {
		return &a
	}
	return nil
}

// --- Glyphs ----------------------------------------------------------------

// glyphClass returns a single glyph name, a reference to a named class
// holding exactly the glyphs, or an inline class.
func (w *writer) glyphClass(glyphs []string) string {
	if len(glyphs) == 1 {
		return escape(glyphs[0])
	}
	if name, ok := w.classes[classKey(glyphs)]; ok {
		return "@" + name
	}
	return "[" + glyphNames(glyphs) + "]"
}

func classKey(glyphs []string) string {
	return strings.Join(glyphs, " ")
}

func glyphNames(glyphs []string) string {
	escaped := make([]string, len(glyphs))
	for i, g := range glyphs {
		escaped[i] = escape(g)
	}
	return strings.Join(escaped, " ")
}

// keywords of the feature file syntax which may collide with glyph names.
var keywords = map[string]bool{
	"anchor": true, "anchorDef": true, "anon": true, "anonymous": true, "by": true,
	"contour": true, "cursive": true, "device": true, "enum": true, "enumerate": true,
	"exclude_dflt": true, "excludeDFLT": true, "feature": true, "from": true,
	"ignore": true, "IgnoreBaseGlyphs": true, "IgnoreLigatures": true, "IgnoreMarks": true,
	"include": true, "include_dflt": true, "includeDFLT": true, "language": true,
	"languagesystem": true, "lookup": true, "lookupflag": true, "mark": true,
	"MarkAttachmentType": true, "markClass": true, "nameid": true, "NULL": true,
	"parameters": true, "pos": true, "position": true, "required": true,
	"reversesub": true, "RightToLeft": true, "rsub": true, "script": true, "sub": true,
	"substitute": true, "subtable": true, "table": true, "useExtension": true,
	"UseMarkFilteringSet": true, "valueRecordDef": true, "base": true, "ligature": true,
	"ligComponent": true,
}

func escape(glyph string) string {
	if keywords[glyph] {
		return `\` + glyph
	}
	return glyph
}
