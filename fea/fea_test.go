package fea

import (
	"strings"
	"testing"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/fee"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *fontfeatures.FontFeatures {
	t.Helper()
	p := fee.NewParser(nil)
	require.NoError(t, p.ParseString(src))
	return p.Features
}

func asFea(t *testing.T, ff *fontfeatures.FontFeatures) string {
	t.Helper()
	text, err := AsFea(ff)
	require.NoError(t, err)
	return text
}

func TestSimpleFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := parse(t, `
		LanguageSystem latn DEU;
		LanguageSystem DFLT dflt;
		DefineClass @lower = [a b c];
		Feature smcp {
		    Substitute @lower -> [A B C];
		};
	`)
	assert.Equal(t, `languagesystem DFLT dflt;
languagesystem latn DEU;

@lower = [a b c];

lookup Routine_1 {
    sub @lower by [A B C];
} Routine_1;

feature smcp {
    lookup Routine_1;
} smcp;
`, asFea(t, ff))
}

func TestStatements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	tests := []struct {
		fee  string
		want string
	}{
		{"Substitute a -> b;", "sub a by b;"},
		{"Substitute a -> b c;", "sub a by b c;"},
		{"Substitute f i -> f_i;", "sub f i by f_i;"},
		{"Substitute x { a } y -> b;", "sub x a' y by b;"},
		{"ReverseSubstitute x { a } -> b;", "rsub x a' by b;"},
		{"Alternate a -> A B;", "sub a from [A B];"},
		{"Substitute sub -> by;", `sub \sub by \by;`},
		{"Position a 10;", "pos a 10;"},
		{"Position a <0 10 20 0>;", "pos a <0 10 20 0>;"},
		{"Position A 10 V;", "pos A V 10;"},
		{"Position A <0 0 10 0> V <0 0 5 0>;", "pos A <0 0 10 0> V <0 0 5 0>;"},
		{"Position A V 10;", "pos A <NULL> V <0 0 10 0>;"},
		{"Position x { a 10 };", "pos x a' 10;"},
		{"Chain { a } b;", "ignore sub a' b;"},
	}
	for _, tt := range tests {
		t.Run(tt.fee, func(t *testing.T) {
			text := asFea(t, parse(t, "Feature test { "+tt.fee+" };"))
			assert.Contains(t, text, "    "+tt.want+"\n")
		})
	}
}

func TestArrangement(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := parse(t, `
		Feature test {
		    Substitute a -> b;
		    Position a 10;
		    Substitute a -> b c;
		    Substitute x { a } -> d;
		    Substitute f i -> f_i <DEU/latn>;
		};
	`)
	text := asFea(t, ff)
	assert.True(t, strings.HasPrefix(text, "languagesystem latn DEU;\n"))
	assert.Contains(t, text, "lookup Routine_1_1 {\n    sub a by b;\n    sub a by b c;\n} Routine_1_1;\n")
	assert.Contains(t, text, "lookup Routine_1_2 {\n    pos a 10;\n} Routine_1_2;\n")
	assert.Contains(t, text, "lookup Routine_1_3 {\n    sub x a' by d;\n} Routine_1_3;\n")
	assert.Contains(t, text, "lookup Routine_1_4 {\n    sub f i by f_i;\n} Routine_1_4;\n")
	assert.Contains(t, text, `feature test {
    lookup Routine_1_1;
    lookup Routine_1_2;
    lookup Routine_1_3;
    script latn;
    language DEU;
    lookup Routine_1_4;
} test;
`)
}

func TestChains(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := parse(t, `
		Routine Sub { Substitute a -> A; };
		Routine Kern { Position a 10; };
		Feature calt {
		    Chain x { a ^Sub } y;
		    Chain { b } c;
		};
		Feature kern { Chain { a ^Kern } b; };
	`)
	text := asFea(t, ff)
	assert.Contains(t, text, "    sub x a' lookup Sub y;\n    ignore sub b' c;\n")
	assert.Contains(t, text, "    pos a' lookup Kern b;\n")
	assert.Less(t, strings.Index(text, "lookup Sub {"), strings.Index(text, "lookup Sub y"))
	assert.Less(t, strings.Index(text, "lookup Kern {"), strings.Index(text, "lookup Kern b"))
}

func TestChainToSplitRoutine(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := parse(t, `
		Routine Mixed { Substitute a -> b; Substitute f i -> f_i; };
		Feature calt { Chain { a ^Mixed }; };
	`)
	_, err := AsFea(ff)
	assert.ErrorIs(t, err, ErrSplitRoutine)
}

func TestCycle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	r1, r2 := fontfeatures.NewRoutine("one"), fontfeatures.NewRoutine("two")
	r1.AddRule(&fontfeatures.Chaining{Input: [][]string{{"a"}}, Lookups: [][]*fontfeatures.Routine{{r2}}})
	r2.AddRule(&fontfeatures.Chaining{Input: [][]string{{"a"}}, Lookups: [][]*fontfeatures.Routine{{r1}}})
	ff := fontfeatures.New()
	ff.AddFeature("calt", r1)
	_, err := AsFea(ff)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestLookupFlagsAndLanguages(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := parse(t, `
		DefineClass @marks = [acute grave];
		Routine R IgnoreMarks UseMarkFilteringSet @marks { Substitute a -> b; };
		Routine Empty {};
		Feature ccmp { Routine R; Routine Empty; };
		Feature liga { Routine Empty; };
	`)
	ff.RoutineByName("R").Languages = []fontfeatures.LangSys{{Script: "arab", Language: "URD"}}
	ff.RoutineByName("R").Comments = []string{"from ccmp"}
	text := asFea(t, ff)
	assert.Contains(t, text, "lookup R {\n    # from ccmp\n    lookupflag IgnoreMarks UseMarkFilteringSet @marks;\n")
	assert.Contains(t, text, "feature ccmp {\n    script arab;\n    language URD;\n    lookup R;\n} ccmp;\n")
	assert.Contains(t, text, "languagesystem arab URD;\n")
	assert.NotContains(t, text, "Empty")
	assert.NotContains(t, text, "liga")
}

func TestAttachments(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.fea")
	defer teardown()
	//
	ff := fontfeatures.New()
	ff.GlyphClasses["A"] = fontfeatures.BaseGlyph
	ff.GlyphClasses["acute"] = fontfeatures.MarkGlyph
	marks := map[string]fontfeatures.Anchor{"acute": {X: 0, Y: 450}}
	r := fontfeatures.NewRoutine("Marks")
	r.AddRule(&fontfeatures.Attachment{
		BaseName: "top", MarkName: "_top",
		Bases: map[string]fontfeatures.Anchor{"A": {X: 100, Y: 500}, "B": {X: 100, Y: 500}, "C": {X: 120, Y: 600}},
		Marks: marks,
		Kind:  fontfeatures.MarkToBase,
	})
	ff.AddFeature("mark", r)
	lig := fontfeatures.NewRoutine("Ligatures")
	lig.AddRule(&fontfeatures.Attachment{
		BaseName: "top", MarkName: "_top",
		Marks:      marks,
		Components: map[string][]*fontfeatures.Anchor{"f_i": {{X: 100, Y: 500}, nil}},
		Kind:       fontfeatures.MarkToLigature,
	})
	ff.AddFeature("mark", lig)
	curs := fontfeatures.NewRoutine("Cursive")
	curs.AddRule(&fontfeatures.Attachment{
		BaseName: "entry", MarkName: "exit",
		Bases: map[string]fontfeatures.Anchor{"a": {}},
		Marks: map[string]fontfeatures.Anchor{"a": {X: 500}, "b": {X: 400}},
		Kind:  fontfeatures.CursiveAttachment,
	})
	ff.AddFeature("curs", curs)
	//
	text := asFea(t, ff)
	assert.Contains(t, text, "markClass acute <anchor 0 450> @MC__top;\n")
	assert.Contains(t, text, "table GDEF {\n    GlyphClassDef [A], , [acute], ;\n} GDEF;\n")
	assert.Contains(t, text, "    pos base [A B] <anchor 100 500> mark @MC__top;\n")
	assert.Contains(t, text, "    pos base C <anchor 120 600> mark @MC__top;\n")
	assert.Contains(t, text, "    pos ligature f_i <anchor 100 500> mark @MC__top ligComponent <anchor NULL>;\n")
	assert.Contains(t, text, "    pos cursive a <anchor 0 0> <anchor 500 0>;\n")
	assert.Contains(t, text, "    pos cursive b <anchor NULL> <anchor 400 0>;\n")
	assert.NotContains(t, text, "@MC_exit")
}
