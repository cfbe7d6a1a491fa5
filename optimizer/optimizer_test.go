package optimizer

import (
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

func ruleStrings(r *fontfeatures.Routine) []string {
	var s []string
	for _, rule := range r.Rules {
		s = append(s, rule.String())
	}
	return s
}

func TestLevels(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	o := New(fontfeatures.New())
	for _, level := range []int{-1, MaxLevel + 1} {
		assert.ErrorIs(t, o.Optimize(level), ErrInvalidLevel, "level %d", level)
	}
	for level := 0; level <= MaxLevel; level++ {
		assert.NoError(t, o.Optimize(level))
		assert.Equal(t, 0, o.Changes())
	}
}

func TestLevelZeroKeepsRules(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Routine Empty {};
		Feature smcp { Substitute a -> A; Substitute a -> A; };
	`)
	o := New(ff)
	require.NoError(t, o.Optimize(0))
	assert.Equal(t, 0, o.Changes())
	assert.Len(t, ff.Routines, 1)
	assert.Len(t, ff.Feature("smcp").Routines[0].Rules, 2)
}

func TestSubstitutionCleanup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Feature smcp {
		    Substitute a -> A;
		    Substitute a -> A;
		    Substitute b -> B;
		    Substitute a -> X;
		    Substitute [b c] -> [Y C];
		    Substitute a -> Z <DEU/latn>;
		};
	`)
	o := New(ff)
	require.NoError(t, o.Optimize(1))
	assert.Greater(t, o.Changes(), 0)
	r := ff.Feature("smcp").Routines[0]
	assert.Equal(t, []string{
		"Substitute [a b c] -> [A B C];",
		"Substitute a -> Z <DEU/latn>;",
	}, ruleStrings(r))
	//
	require.NoError(t, o.Optimize(1))
	assert.Equal(t, 0, o.Changes())
}

func TestMergeSinglesToOneGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `Feature salt { Substitute a -> x; Substitute [b c] -> x; };`)
	require.NoError(t, New(ff).Optimize(1))
	assert.Equal(t, []string{"Substitute [a b c] -> x;"}, ruleStrings(ff.Feature("salt").Routines[0]))
}

func TestPruneEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Routine Empty {};
		Routine Used {};
		Feature test { Routine Used; };
	`)
	require.NoError(t, New(ff).Optimize(1))
	require.Len(t, ff.Routines, 1)
	assert.Equal(t, "Used", ff.Routines[0].Name)
}

func TestPositioningMerges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Feature kern {
		    Position a 10;
		    Position b 10;
		    Position c 20;
		    Position A 10 V;
		    Position A 10 W;
		    Position A 10 V;
		};
	`)
	o := New(ff)
	require.NoError(t, o.Optimize(1))
	r := ff.Feature("kern").Routines[0]
	assert.Len(t, r.Rules, 5, "duplicates go at level 1")
	require.NoError(t, o.Optimize(2))
	assert.Equal(t, []string{
		"Position [a b] 10;",
		"Position c 20;",
		"Position A 10 [V W];",
	}, ruleStrings(r))
}

func TestMergeRoutines(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Feature liga {
		    Routine { Substitute f i -> f_i; };
		    Routine { Substitute s t -> s_t; };
		    Routine IgnoreMarks { Substitute c t -> c_t; };
		};
		Feature ss01 {
		    Routine { Substitute a -> A; };
		    Routine { Substitute A -> B; };
		};
	`)
	o := New(ff)
	require.NoError(t, o.Optimize(1))
	assert.Len(t, ff.Feature("liga").Routines, 3)
	require.NoError(t, o.Optimize(2))
	liga := ff.Feature("liga").Routines
	require.Len(t, liga, 2)
	assert.Equal(t, []string{
		"Substitute f i -> f_i;",
		"Substitute s t -> s_t;",
	}, ruleStrings(liga[0]))
	assert.Equal(t, fontfeatures.IgnoreMarks, liga[1].Flags)
	// a -> A -> B must stay two steps
	assert.Len(t, ff.Feature("ss01").Routines, 2)
}

func TestSharedRoutinesStay(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		Routine Shared { Substitute a -> A; };
		Feature smcp {
		    Routine Shared;
		    Routine { Substitute b -> B; };
		};
		Feature c2sc { Routine Shared; };
	`)
	require.NoError(t, New(ff).Optimize(2))
	smcp := ff.Feature("smcp").Routines
	require.Len(t, smcp, 2)
	assert.Equal(t, "Shared", smcp[0].Name)
	assert.Len(t, smcp[0].Rules, 1)
}

func TestHoistClasses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	ff := parse(t, `
		DefineClass @lower = [a b c d e f];
		Feature kern {
		    Position [a b c d e f] 10;
		    Position [g h i j k l] 20;
		    Position [m n] 30;
		};
	`)
	o := New(ff)
	require.NoError(t, o.Optimize(2))
	assert.Equal(t, []string{"lower", "class1"}, ff.ClassNames())
	glyphs, ok := ff.Class("class1")
	require.True(t, ok)
	assert.Equal(t, []string{"g", "h", "i", "j", "k", "l"}, glyphs)
	//
	require.NoError(t, o.Optimize(2))
	assert.Equal(t, 0, o.Changes())
	assert.Len(t, ff.ClassNames(), 2)
}

func TestInconsistent(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.optimizer")
	defer teardown()
	//
	dangling := fontfeatures.New()
	r := fontfeatures.NewRoutine("calt")
	r.AddRule(&fontfeatures.Chaining{
		Input:   [][]string{{"a"}},
		Lookups: [][]*fontfeatures.Routine{{nil}},
	})
	dangling.AddFeature("calt", r)
	//
	twins := fontfeatures.New()
	twins.AddRoutine(fontfeatures.NewRoutine("twin"))
	twins.AddRoutine(fontfeatures.NewRoutine("twin"))
	//
	beyond := fontfeatures.New()
	target := fontfeatures.NewRoutine("target")
	r = fontfeatures.NewRoutine("chain")
	r.AddRule(&fontfeatures.Chaining{
		Input:   [][]string{{"a"}},
		Lookups: [][]*fontfeatures.Routine{{target}, {target}},
	})
	beyond.AddRoutine(r)
	//
	noRoutine := fontfeatures.New()
	noRoutine.AddFeature("liga", nil)
	//
	for name, ff := range map[string]*fontfeatures.FontFeatures{
		"dangling": dangling, "twins": twins, "beyond": beyond, "no routine": noRoutine,
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, New(ff).Optimize(1), ErrInconsistent)
		})
	}
}
