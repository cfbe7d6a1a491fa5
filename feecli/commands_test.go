package main

import (
	"bytes"
	"testing"

	"github.com/npillmayer/fontfeatures/fee"
	"github.com/npillmayer/fontfeatures/glyphtools"
	"github.com/npillmayer/fontfeatures/internal/config"
	"github.com/npillmayer/fontfeatures/internal/testfont"
	"github.com/npillmayer/fontfeatures/optimizer"
	"github.com/npillmayer/fontfeatures/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func session(t *testing.T, tables map[string][]byte) (*Intp, *bytes.Buffer) {
	t.Helper()
	otf, err := ot.Parse(testfont.Font(tables))
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return newIntp(otf, config.Defaults(), out), out
}

func exec(t *testing.T, intp *Intp, lines ...string) {
	t.Helper()
	for _, line := range lines {
		quit, err := intp.execute(line)
		require.NoError(t, err, line)
		require.False(t, quit, line)
	}
}

func TestMultiLineStatements(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.cli")
	defer teardown()
	//
	intp, _ := session(t, nil)
	exec(t, intp, "DefineClass @lower = [a b];", "Feature smcp {  # small caps")
	assert.Equal(t, 1, intp.depth)
	assert.Nil(t, intp.parser.Features.Feature("smcp"))
	exec(t, intp, "    Substitute @lower -> [A B];", "};")
	assert.Equal(t, 0, intp.depth)
	require.NotNil(t, intp.parser.Features.Feature("smcp"))
	assert.Equal(t, 2, braceDepth("Feature x { Routine y {"))
	assert.Equal(t, -1, braceDepth("}; # {"))
	assert.Equal(t, 0, braceDepth("Feature x { Substitute a -> b; }; # {"))
}

func TestStatementErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.cli")
	defer teardown()
	//
	intp, _ := session(t, nil)
	_, err := intp.execute("Feature liga { Substitute f i -> nosuchglyph; };")
	var perr *fee.ParseError
	assert.ErrorAs(t, err, &perr)
	exec(t, intp, "Feature liga { Substitute f i -> A; };")
	assert.NotNil(t, intp.parser.Features.Feature("liga"))
}

func TestCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.cli")
	defer teardown()
	//
	intp, out := session(t, nil)
	exec(t, intp, "DefineClass @lower = [a b c];",
		"Feature smcp { Substitute a -> A; Substitute b -> B; };")
	//
	exec(t, intp, ":fea")
	assert.Contains(t, out.String(), "feature smcp {")
	out.Reset()
	exec(t, intp, ":optimize")
	assert.Contains(t, out.String(), "optimized at level 1")
	out.Reset()
	exec(t, intp, ":fea")
	assert.Contains(t, out.String(), "sub [a b] by [A B];")
	_, err := intp.execute(":optimize 3")
	assert.ErrorIs(t, err, optimizer.ErrInvalidLevel)
	_, err = intp.execute(":optimize high")
	assert.ErrorIs(t, err, optimizer.ErrInvalidLevel)
	//
	out.Reset()
	exec(t, intp, ":classes")
	assert.Contains(t, out.String(), "@lower")
	out.Reset()
	exec(t, intp, ":features")
	assert.Contains(t, out.String(), "Routine_1")
	out.Reset()
	exec(t, intp, ":help")
	assert.Contains(t, out.String(), ":optimize [N]")
	//
	exec(t, intp, ":reset")
	assert.Empty(t, intp.parser.Features.Features())
	_, err = intp.execute(":frobnicate")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	quit, err := intp.execute(":quit")
	assert.NoError(t, err)
	assert.True(t, quit)
}

func TestGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.cli")
	defer teardown()
	//
	intp, out := session(t, nil)
	for _, arg := range []string{"A", "U+0041", "u+41"} {
		out.Reset()
		exec(t, intp, ":glyph "+arg)
		assert.Contains(t, out.String(), "LATIN CAPITAL LETTER A", arg)
		assert.Contains(t, out.String(), "width", arg)
		assert.Contains(t, out.String(), "latn", arg)
	}
	_, err := intp.execute(":glyph U+E000")
	assert.ErrorIs(t, err, glyphtools.ErrUnknownGlyph)
	_, err = intp.execute(":glyph")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fontfeatures.cli")
	defer teardown()
	//
	a, A := testfont.GID('a'), testfont.GID('A')
	gsub := testfont.Layout(
		[]testfont.Script{testfont.DefaultScript(1)},
		[]testfont.Feature{{Tag: "smcp", Lookups: []uint16{0}}},
		[]testfont.Lookup{{Type: 1, Subtables: [][]byte{testfont.SingleSubst(map[uint16]uint16{a: A})}}},
	)
	intp, out := session(t, map[string][]byte{"GSUB": gsub})
	exec(t, intp, ":load")
	assert.Contains(t, out.String(), "loaded 1 features")
	require.NotNil(t, intp.parser.Features.Feature("smcp"))
	exec(t, intp, "Feature smcp { Substitute b -> B; };")
	assert.Len(t, intp.parser.Features.Feature("smcp").Routines, 2)
}
