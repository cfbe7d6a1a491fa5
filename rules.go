package fontfeatures

import (
	"fmt"
	"strings"
)

// Stage tells whether a rule belongs to glyph substitution (GSUB) or glyph
// positioning (GPOS).
type Stage uint8

// Layout stages.
const (
	NoStage Stage = iota
	SubstitutionStage
	PositioningStage
	MixedStage
)

func (s Stage) String() string {
	switch s {
	case SubstitutionStage:
		return "sub"
	case PositioningStage:
		return "pos"
	case MixedStage:
		return "mixed"
	}
	return "none"
}

// Rule is a single rule of a routine. Every position of a rule matches a set
// of glyphs, given by name.
//
// Rules of equal String representation are considered equal.
type Rule interface {
	Stage() Stage
	// LookupType is the OpenType lookup type of a lookup holding the rule,
	// 0 for rules which cannot be expressed.
	LookupType() int
	// Inputs returns the glyphs of the input positions.
	Inputs() [][]string
	String() string
}

// Context holds the parts every contextual rule shares.
type Context struct {
	Precontext  [][]string
	Postcontext [][]string
	Languages   []LangSys // restricts a rule to language systems, if set
	Address     string
}

// HasContext is true if the rule has a pre- or postcontext.
func (c Context) HasContext() bool {
	return len(c.Precontext) > 0 || len(c.Postcontext) > 0
}

// --- Substitution ----------------------------------------------------------

// Substitution replaces glyphs by glyphs.
type Substitution struct {
	Context
	Input       [][]string
	Replacement [][]string
	Reverse     bool // reverse chaining single substitution
	Alternate   bool // Replacement[0] lists alternates for Input[0]
}

// Stage is part of interface Rule.
func (s *Substitution) Stage() Stage { return SubstitutionStage }

// Inputs is part of interface Rule.
func (s *Substitution) Inputs() [][]string { return s.Input }

// LookupType is part of interface Rule.
func (s *Substitution) LookupType() int {
	switch {
	case s.Reverse:
		return 8
	case s.HasContext():
		return 6
	case s.Alternate:
		return 3
	case len(s.Input) == 1 && len(s.Replacement) == 1:
		return 1
	case len(s.Input) == 1 && len(s.Replacement) > 1:
		return 2
	case len(s.Input) > 1 && len(s.Replacement) == 1:
		return 4
	}
	return 0
}

func (s *Substitution) String() string {
	verb := "Substitute"
	if s.Reverse {
		verb = "ReverseSubstitute"
	} else if s.Alternate {
		verb = "Alternate"
	}
	return fmt.Sprintf("%s %s -> %s%s;", verb, contextString(s.Context, sequenceString(s.Input, nil)),
		sequenceString(s.Replacement, nil), languagesString(s.Languages))
}

// --- Positioning -----------------------------------------------------------

// ValueRecord adjusts the position of a glyph, in font design units.
type ValueRecord struct {
	XPlacement, YPlacement int
	XAdvance, YAdvance     int
}

// IsZero is true if a value record adjusts nothing.
func (vr ValueRecord) IsZero() bool {
	return vr == ValueRecord{}
}

// String returns the FEA notation: a single number for advance-only records,
// the full form "<x y xAdv yAdv>" otherwise.
func (vr ValueRecord) String() string {
	if vr.XPlacement == 0 && vr.YPlacement == 0 && vr.YAdvance == 0 {
		return fmt.Sprint(vr.XAdvance)
	}
	return fmt.Sprintf("<%d %d %d %d>", vr.XPlacement, vr.YPlacement, vr.XAdvance, vr.YAdvance)
}

// Positioning adjusts the positions of glyphs. Values holds one entry per
// position of Glyphs, nil for positions without adjustment.
type Positioning struct {
	Context
	Glyphs [][]string
	Values []*ValueRecord
}

// Stage is part of interface Rule.
func (p *Positioning) Stage() Stage { return PositioningStage }

// Inputs is part of interface Rule.
func (p *Positioning) Inputs() [][]string { return p.Glyphs }

// LookupType is part of interface Rule.
func (p *Positioning) LookupType() int {
	switch {
	case p.HasContext():
		return 8
	case len(p.Glyphs) == 1:
		return 1
	case len(p.Glyphs) == 2:
		return 2
	}
	return 8
}

func (p *Positioning) String() string {
	return fmt.Sprintf("Position %s%s;", contextString(p.Context, sequenceString(p.Glyphs, p.Values)),
		languagesString(p.Languages))
}

// --- Attachment ------------------------------------------------------------

// AttachmentKind selects the kind of mark attachment.
type AttachmentKind int

// Attachment kinds, numbered like the GPOS lookup types.
const (
	CursiveAttachment AttachmentKind = 3
	MarkToBase        AttachmentKind = 4
	MarkToLigature    AttachmentKind = 5
	MarkToMark        AttachmentKind = 6
)

// Attachment attaches marks to bases by named anchors. For cursive
// attachment Bases hold the entry anchors and Marks the exit anchors.
// Mark-to-ligature attachment uses Components instead of Bases.
type Attachment struct {
	BaseName   string // anchor name on bases
	MarkName   string // anchor name on marks
	Bases      map[string]Anchor
	Marks      map[string]Anchor
	Components map[string][]*Anchor // ligature → anchor per component, nil if none
	Kind       AttachmentKind
	Address    string
}

// Stage is part of interface Rule.
func (a *Attachment) Stage() Stage { return PositioningStage }

// LookupType is part of interface Rule.
func (a *Attachment) LookupType() int { return int(a.Kind) }

// Inputs is part of interface Rule. It returns the marks.
func (a *Attachment) Inputs() [][]string {
	return [][]string{sortedNames(a.Marks)}
}

func (a *Attachment) String() string {
	kind := map[AttachmentKind]string{CursiveAttachment: "cursive", MarkToBase: "bases",
		MarkToLigature: "ligatures", MarkToMark: "marks"}[a.Kind]
	return fmt.Sprintf("Attach &%s &%s %s; # %v %v", a.BaseName, a.MarkName, kind,
		anchorsString(a.Bases), anchorsString(a.Marks))
}

// --- Chaining --------------------------------------------------------------

// Chaining applies routines at positions of a matched glyph sequence.
// Lookups holds, per input position, the routines to apply there.
// A chaining rule without any lookups is an 'ignore' rule.
type Chaining struct {
	Context
	Input   [][]string
	Lookups [][]*Routine
}

// IsIgnore is true if the rule does not apply any routine.
func (c *Chaining) IsIgnore() bool {
	for _, l := range c.Lookups {
		if len(l) > 0 {
			return false
		}
	}
	return true
}

// Stage is part of interface Rule. It is the stage of the routines
// referenced, or the substitution stage for an ignore rule.
func (c *Chaining) Stage() Stage {
	for _, lookups := range c.Lookups {
		for _, r := range lookups {
			if s := r.Stage(); s == PositioningStage {
				return s
			}
		}
	}
	return SubstitutionStage
}

// Inputs is part of interface Rule.
func (c *Chaining) Inputs() [][]string { return c.Input }

// LookupType is part of interface Rule.
func (c *Chaining) LookupType() int {
	if c.Stage() == PositioningStage {
		return 8
	}
	return 6
}

func (c *Chaining) String() string {
	var sb strings.Builder
	sb.WriteString("Chain ")
	var pre, post []string
	for _, g := range c.Precontext {
		pre = append(pre, glyphsString(g))
	}
	for _, g := range c.Postcontext {
		post = append(post, glyphsString(g))
	}
	if len(pre) > 0 {
		sb.WriteString(strings.Join(pre, " ") + " ")
	}
	sb.WriteString("{")
	for i, g := range c.Input {
		sb.WriteString(" " + glyphsString(g))
		if i < len(c.Lookups) {
			for _, r := range c.Lookups[i] {
				sb.WriteString(" ^" + r.Name)
			}
		}
	}
	sb.WriteString(" }")
	if len(post) > 0 {
		sb.WriteString(" " + strings.Join(post, " "))
	}
	sb.WriteString(languagesString(c.Languages))
	sb.WriteString(";")
	return sb.String()
}

// --- Helpers ---------------------------------------------------------------

func glyphsString(glyphs []string) string {
	if len(glyphs) == 1 {
		return glyphs[0]
	}
	return "[" + strings.Join(glyphs, " ") + "]"
}

func sequenceString(seq [][]string, values []*ValueRecord) string {
	parts := make([]string, 0, len(seq))
	for i, g := range seq {
		s := glyphsString(g)
		if i < len(values) && values[i] != nil {
			s += " " + values[i].String()
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

func contextString(c Context, input string) string {
	if !c.HasContext() {
		return input
	}
	var parts []string
	for _, g := range c.Precontext {
		parts = append(parts, glyphsString(g))
	}
	parts = append(parts, "{ "+input+" }")
	for _, g := range c.Postcontext {
		parts = append(parts, glyphsString(g))
	}
	return strings.Join(parts, " ")
}

func languagesString(langs []LangSys) string {
	if len(langs) == 0 {
		return ""
	}
	parts := make([]string, len(langs))
	for i, ls := range langs {
		parts[i] = ls.Language + "/" + ls.Script
	}
	return " <" + strings.Join(parts, ", ") + ">"
}

func anchorsString(anchors map[string]Anchor) string {
	names := sortedNames(anchors)
	parts := make([]string, len(names))
	for i, n := range names {
		a := anchors[n]
		parts[i] = fmt.Sprintf("%s<%d %d>", n, a.X, a.Y)
	}
	return strings.Join(parts, " ")
}
