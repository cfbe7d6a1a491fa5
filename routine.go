package fontfeatures

import (
	"slices"
	"strings"
)

// LookupFlag mirrors the lookup flags of OpenType layout tables.
// Mark attachment types and mark filtering sets are referenced by class name
// in a Routine, not by number.
type LookupFlag uint16

// Lookup flags, bit compatible with OpenType.
const (
	RightToLeft         LookupFlag = 0x0001
	IgnoreBaseGlyphs    LookupFlag = 0x0002
	IgnoreLigatures     LookupFlag = 0x0004
	IgnoreMarks         LookupFlag = 0x0008
	UseMarkFilteringSet LookupFlag = 0x0010
)

// Routine is an ordered list of rules sharing lookup flags. A routine of
// uniform rules becomes a single OpenType lookup. Routines mixing rule kinds
// are split when written (see package fea).
type Routine struct {
	Name                string
	Rules               []Rule
	Flags               LookupFlag
	MarkFilteringSet    string    // class name, if Flags has UseMarkFilteringSet
	MarkAttachmentClass string    // class name for the mark attachment type, if any
	Languages           []LangSys // language systems the routine is restricted to
	Comments            []string
	Address             string // where the routine came from, e.g. "GSUB lookup 3"
}

// NewRoutine creates an empty routine.
func NewRoutine(name string) *Routine {
	return &Routine{Name: name}
}

// AddRule appends a rule.
func (r *Routine) AddRule(rule Rule) {
	r.Rules = append(r.Rules, rule)
}

// IsEmpty is true if the routine has no rules.
func (r *Routine) IsEmpty() bool {
	return len(r.Rules) == 0
}

// Stage returns the layout stage of the routine's rules: NoStage for an
// empty routine, MixedStage if it contains substitutions and positionings.
func (r *Routine) Stage() Stage {
	stage := NoStage
	for _, rule := range r.Rules {
		s := rule.Stage()
		switch {
		case stage == NoStage:
			stage = s
		case s != stage:
			return MixedStage
		}
	}
	return stage
}

// LookupTypes returns the distinct lookup types of the rules, in order of
// first appearance.
func (r *Routine) LookupTypes() []int {
	var types []int
	for _, rule := range r.Rules {
		if lt := rule.LookupType(); !slices.Contains(types, lt) {
			types = append(types, lt)
		}
	}
	return types
}

// SameOptions is true if two routines share flags, mark filtering set, mark
// attachment class and languages.
func (r *Routine) SameOptions(other *Routine) bool {
	return r.Flags == other.Flags &&
		r.MarkFilteringSet == other.MarkFilteringSet &&
		r.MarkAttachmentClass == other.MarkAttachmentClass &&
		slices.Equal(r.Languages, other.Languages)
}

func (r *Routine) String() string {
	var sb strings.Builder
	sb.WriteString("Routine ")
	sb.WriteString(r.Name)
	sb.WriteString(" {\n")
	for _, rule := range r.Rules {
		sb.WriteString("    ")
		sb.WriteString(rule.String())
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}
