package fontfeatures

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func g(names ...string) [][]string {
	seq := make([][]string, len(names))
	for i, n := range names {
		seq[i] = []string{n}
	}
	return seq
}

func TestSubstitutionLookupType(t *testing.T) {
	tests := []struct {
		name string
		rule *Substitution
		want int
	}{
		{"single", &Substitution{Input: g("a"), Replacement: g("A")}, 1},
		{"multiple", &Substitution{Input: g("ffi"), Replacement: g("f", "f", "i")}, 2},
		{"alternate", &Substitution{Input: g("a"), Replacement: [][]string{{"a.alt1", "a.alt2"}}, Alternate: true}, 3},
		{"ligature", &Substitution{Input: g("f", "i"), Replacement: g("fi")}, 4},
		{"contextual", &Substitution{Context: Context{Precontext: g("x")}, Input: g("a"), Replacement: g("A")}, 6},
		{"reverse", &Substitution{Input: g("a"), Replacement: g("A"), Reverse: true}, 8},
		{"many to many", &Substitution{Input: g("a", "b"), Replacement: g("c", "d")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rule.LookupType())
			assert.Equal(t, SubstitutionStage, tt.rule.Stage())
		})
	}
}

func TestPositioningLookupType(t *testing.T) {
	vr := &ValueRecord{XAdvance: -50}
	assert.Equal(t, 1, (&Positioning{Glyphs: g("A"), Values: []*ValueRecord{vr}}).LookupType())
	assert.Equal(t, 2, (&Positioning{Glyphs: g("A", "V"), Values: []*ValueRecord{vr, nil}}).LookupType())
	assert.Equal(t, 8, (&Positioning{Context: Context{Postcontext: g("V")}, Glyphs: g("A"),
		Values: []*ValueRecord{vr}}).LookupType())
	assert.Equal(t, 5, (&Attachment{Kind: MarkToLigature}).LookupType())
}

func TestValueRecordString(t *testing.T) {
	assert.Equal(t, "-50", ValueRecord{XAdvance: -50}.String())
	assert.Equal(t, "<10 0 20 0>", ValueRecord{XPlacement: 10, XAdvance: 20}.String())
	assert.True(t, ValueRecord{}.IsZero())
}

func TestChainingStage(t *testing.T) {
	sub := &Routine{Name: "s", Rules: []Rule{&Substitution{Input: g("a"), Replacement: g("b")}}}
	pos := &Routine{Name: "p", Rules: []Rule{&Positioning{Glyphs: g("a"), Values: []*ValueRecord{{XAdvance: 5}}}}}
	assert.Equal(t, 6, (&Chaining{Input: g("a"), Lookups: [][]*Routine{{sub}}}).LookupType())
	assert.Equal(t, 8, (&Chaining{Input: g("a"), Lookups: [][]*Routine{{pos}}}).LookupType())
	ignore := &Chaining{Input: g("a", "b"), Lookups: [][]*Routine{nil, nil}}
	assert.True(t, ignore.IsIgnore())
	assert.Equal(t, "Chain { a ^p };", (&Chaining{Input: g("a"), Lookups: [][]*Routine{{pos}}}).String())
}

func TestRoutineStage(t *testing.T) {
	r := NewRoutine("r")
	assert.Equal(t, NoStage, r.Stage())
	r.AddRule(&Substitution{Input: g("a"), Replacement: g("b")})
	r.AddRule(&Substitution{Input: g("f", "i"), Replacement: g("fi")})
	assert.Equal(t, SubstitutionStage, r.Stage())
	assert.Equal(t, []int{1, 4}, r.LookupTypes())
	r.AddRule(&Positioning{Glyphs: g("a"), Values: []*ValueRecord{{XAdvance: 5}}})
	assert.Equal(t, MixedStage, r.Stage())
}

func TestCollection(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures")
	defer teardown()
	//
	ff := New()
	ff.DefineClass("upper", []string{"A", "B"})
	ff.DefineClass("lower", []string{"a", "b"})
	ff.DefineClass("upper", []string{"A", "B", "C"})
	assert.Equal(t, []string{"upper", "lower"}, ff.ClassNames())
	upper, ok := ff.Class("upper")
	assert.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, upper)
	assert.Equal(t, "class1", ff.UnusedClassName("class"))

	ff.AddLanguageSystem("DFLT", "dflt")
	ff.AddLanguageSystem("latn", "dflt")
	ff.AddLanguageSystem("DFLT", "dflt")
	assert.Len(t, ff.LanguageSystems, 2)

	inner := NewRoutine("inner")
	inner.AddRule(&Substitution{Input: g("a"), Replacement: g("A")})
	outer := NewRoutine("outer")
	outer.AddRule(&Chaining{Input: g("a"), Lookups: [][]*Routine{{inner}}})
	ff.AddFeature("calt", outer)
	ff.AddFeature("calt", outer)
	ff.AddRoutine(inner)
	assert.Equal(t, []*Routine{inner, outer}, ff.AllRoutines())
	assert.Equal(t, 1, ff.References(inner))
	assert.Equal(t, 2, ff.References(outer))
	assert.Same(t, inner, ff.RoutineByName("inner"))
	assert.Nil(t, ff.RoutineByName("nope"))

	other := New()
	other.DefineClass("digits", []string{"one", "two"})
	other.AddLanguageSystem("latn", "DEU")
	kern := NewRoutine("kern1")
	other.AddFeature("kern", kern)
	other.AddFeature("calt", kern)
	other.SetAnchor("A", "top", Anchor{300, 700})
	ff.Merge(other)
	assert.Equal(t, []string{"upper", "lower", "digits"}, ff.ClassNames())
	assert.Len(t, ff.LanguageSystems, 3)
	assert.Len(t, ff.Feature("calt").Routines, 3)
	assert.Equal(t, []string{"A"}, ff.GlyphsWithAnchor("top"))
	assert.Equal(t, []string{"calt", "kern"}, []string{ff.Features()[0].Tag, ff.Features()[1].Tag})
	ff.RemoveFeature("kern")
	assert.Len(t, ff.Features(), 1)
}

func TestGlyphClassOperations(t *testing.T) {
	a, b := []string{"x", "y", "z"}, []string{"z", "w"}
	assert.Equal(t, []string{"x", "y", "z", "w"}, Union(a, b))
	assert.Equal(t, []string{"z"}, Intersection(a, b))
	assert.False(t, Disjoint(a, b))
	assert.True(t, Disjoint(a, []string{"q"}))
	assert.True(t, SameGlyphs([]string{"b", "a"}, []string{"a", "b"}))
	assert.Equal(t, "a b", ClassKey([]string{"b", "a"}))
}
