package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/fontfeatures/fea"
	"github.com/npillmayer/fontfeatures/glyphtools"
	"github.com/npillmayer/fontfeatures/optimizer"
	"github.com/npillmayer/fontfeatures/ot"
	"github.com/npillmayer/fontfeatures/unparse"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

// Op is a command of the shell.
type Op struct {
	name string
	args string // argument help
	help string
	fn   func(intp *Intp, arg string) (bool, error)
}

var ops []Op

func init() {
	ops = []Op{
		{"help", "", "show this help, or help on FEE verbs with ':help verbs'", helpOp},
		{"quit", "", "end the session", quitOp},
		{"fea", "", "print the feature collection in feature file syntax", feaOp},
		{"optimize", "[N]", "optimize the feature collection at level N (default 1)", optimizeOp},
		{"load", "", "add the features of the font", loadOp},
		{"reset", "", "start over with an empty feature collection", resetOp},
		{"classes", "", "list the named glyph classes", classesOp},
		{"features", "", "list features with their routines", featuresOp},
		{"glyph", "<name>|U+XXXX", "show glyph index, Unicode name, script and metrics of a glyph", glyphOp},
	}
}

// ErrUnknownCommand is returned for command names not in ops.
var ErrUnknownCommand = errors.New("unknown command")

// command executes a line starting with a colon, colon stripped.
func (intp *Intp) command(line string) (bool, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	for _, op := range ops {
		if op.name == strings.ToLower(name) {
			tracer().Debugf("command %s %q", op.name, arg)
			return op.fn(intp, arg)
		}
	}
	return false, fmt.Errorf("%w :%s, try :help", ErrUnknownCommand, name)
}

func helpOp(intp *Intp, arg string) (bool, error) {
	if strings.ToLower(arg) == "verbs" {
		fmt.Fprint(intp.out, verbHelp)
		return false, nil
	}
	data := pterm.TableData{{"Command", "Description"}}
	for _, op := range ops {
		data = append(data, []string{strings.TrimSpace(":" + op.name + " " + op.args), op.help})
	}
	return false, intp.table(data)
}

const verbHelp = `
	LanguageSystem latn DEU;
	DefineClass @lower = /^[a-z]$/ and (width > 500);
	DefineClassBinned @round[rsb,3] = @lower;
	Feature smcp { Substitute @lower -> @lower.sc; };
	Routine Kern IgnoreMarks { Position A -50 V; };
	Feature kern { Routine Kern; Chain { T ^Kern } o; };
	Anchors A { top <300 700> };
	Routine Marks { Attach &top &_top bases; };
	ShowClass @lower;
`

func quitOp(intp *Intp, arg string) (bool, error) {
	return true, nil
}

func feaOp(intp *Intp, arg string) (bool, error) {
	text, err := fea.AsFea(intp.parser.Features)
	if err != nil {
		return false, err
	}
	fmt.Fprint(intp.out, text)
	return false, nil
}

func optimizeOp(intp *Intp, arg string) (bool, error) {
	level := 1
	if arg != "" {
		var err error
		if level, err = strconv.Atoi(arg); err != nil {
			return false, fmt.Errorf("%w: %q", optimizer.ErrInvalidLevel, arg)
		}
	}
	o := optimizer.New(intp.parser.Features)
	if err := o.Optimize(level); err != nil {
		return false, err
	}
	intp.infof("optimized at level %d, %d changes", level, o.Changes())
	return false, nil
}

func loadOp(intp *Intp, arg string) (bool, error) {
	loaded, err := unparse.Unparse(intp.font, unparse.Options{
		GDEF:            intp.settings.GDEF,
		ExcludeFeatures: intp.settings.ExcludeFeatures,
	})
	if err != nil {
		return false, err
	}
	intp.parser.Features.Merge(loaded)
	intp.infof("loaded %d features, %d routines", len(loaded.Features()), len(loaded.AllRoutines()))
	return false, nil
}

func resetOp(intp *Intp, arg string) (bool, error) {
	intp.reset()
	return false, nil
}

func classesOp(intp *Intp, arg string) (bool, error) {
	ff := intp.parser.Features
	data := pterm.TableData{{"Class", "Glyphs", ""}}
	for _, name := range ff.ClassNames() {
		glyphs, _ := ff.Class(name)
		data = append(data, []string{"@" + name, strconv.Itoa(len(glyphs)), abbreviate(glyphs, 8)})
	}
	return false, intp.table(data)
}

func abbreviate(glyphs []string, n int) string {
	if len(glyphs) <= n {
		return strings.Join(glyphs, " ")
	}
	return strings.Join(glyphs[:n], " ") + " …"
}

func featuresOp(intp *Intp, arg string) (bool, error) {
	data := pterm.TableData{{"Feature", "Routine", "Rules", "Lookup types"}}
	for _, f := range intp.parser.Features.Features() {
		for _, r := range f.Routines {
			var types []string
			for _, t := range r.LookupTypes() {
				types = append(types, strconv.Itoa(t))
			}
			data = append(data, []string{f.Tag, r.Name, strconv.Itoa(len(r.Rules)), strings.Join(types, ",")})
		}
	}
	return false, intp.table(data)
}

func glyphOp(intp *Intp, arg string) (bool, error) {
	gid, err := intp.lookupGlyph(arg)
	if err != nil {
		return false, err
	}
	name := intp.font.GlyphName(gid)
	data := pterm.TableData{{"Property", "Value"}, {"name", name}, {"index", strconv.Itoa(int(gid))}}
	if r, ok := intp.font.RuneForGlyph(gid); ok {
		data = append(data, []string{"unicode", fmt.Sprintf("U+%04X %s", r, runenames.Name(r))})
	}
	inspector := glyphtools.NewInspector(intp.font)
	data = append(data, []string{"category", inspector.Category(name).String()})
	if tag := inspector.Script(name); tag != "" {
		data = append(data, []string{"script", tag})
	}
	metrics := []glyphtools.Metric{glyphtools.Width, glyphtools.LSB, glyphtools.RSB,
		glyphtools.YMin, glyphtools.YMax}
	for _, m := range metrics {
		v, err := inspector.Metric(name, m)
		if err != nil {
			return false, err
		}
		data = append(data, []string{string(m), strconv.Itoa(v)})
	}
	return false, intp.table(data)
}

// lookupGlyph finds a glyph by name, by code point written as U+XXXX, or by
// a single character.
func (intp *Intp) lookupGlyph(arg string) (ot.GlyphIndex, error) {
	if arg == "" {
		return 0, errors.New("glyph name or code point expected")
	}
	if gid, ok := intp.font.GlyphByName(arg); ok {
		return gid, nil
	}
	var r rune = utf8.RuneError
	if hex, ok := strings.CutPrefix(strings.ToUpper(arg), "U+"); ok {
		if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
			r = rune(n)
		}
	} else if utf8.RuneCountInString(arg) == 1 {
		r, _ = utf8.DecodeRuneInString(arg)
	}
	if r != utf8.RuneError {
		if gid, ok := intp.font.GlyphForRune(r); ok {
			return gid, nil
		}
	}
	return 0, fmt.Errorf("%w %q", glyphtools.ErrUnknownGlyph, arg)
}

// table renders table data with a header row.
func (intp *Intp) table(data pterm.TableData) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(intp.out, s)
	return err
}
