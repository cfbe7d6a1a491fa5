package main

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/fontfeatures"
	"github.com/npillmayer/fontfeatures/fea"
	"github.com/npillmayer/fontfeatures/fee"
	"github.com/npillmayer/fontfeatures/internal/config"
	"github.com/npillmayer/fontfeatures/internal/fontload"
	"github.com/npillmayer/fontfeatures/optimizer"
	"github.com/npillmayer/fontfeatures/unparse"
	"github.com/pterm/pterm"
)

// options of a run, after resolving flags against configuration and defaults.
type options struct {
	fontPath string
	feePath  string
	settings config.Settings
	stats    bool
}

// cliFlags are the flag values as parsed from the command line.
type cliFlags struct {
	load, gdef, stats bool
	optimize          int
	optimizeGiven     bool
	trace             string // "-" if not given
}

// resolve overrides settings with flags given on the command line.
func (f cliFlags) resolve(s config.Settings) config.Settings {
	if f.load {
		s.Load = true
	}
	if f.gdef {
		s.GDEF = true
	}
	if f.optimizeGiven {
		s.Optimization = f.optimize
	}
	if f.trace != "-" && f.trace != "" {
		s.Trace = f.trace
	}
	return s
}

var compactLevel = regexp.MustCompile(`^-O([0-9]+)$`)

// normalizeArgs rewrites optimization flags to the form "-O N": a bare -O
// (not followed by a level) means level 1, "-O2" and "--optimize=2" are
// split.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if m := compactLevel.FindStringSubmatch(arg); m != nil {
			out = append(out, "-O", m[1])
			continue
		}
		if level, ok := strings.CutPrefix(arg, "--optimize="); ok {
			out = append(out, "--optimize", level)
			continue
		}
		out = append(out, arg)
		if arg == "-O" || arg == "--optimize" {
			if i+1 < len(args) && isLevel(args[i+1]) {
				out = append(out, args[i+1])
				i++
			} else {
				out = append(out, "1")
			}
		}
	}
	return out
}

func isLevel(arg string) bool {
	_, err := strconv.Atoi(arg)
	return err == nil
}

// flagGiven is true if a flag is present in normalized arguments.
func flagGiven(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		if arg == "--"+long || arg == "-"+short {
			return true
		}
	}
	return false
}

// run compiles the FEE file and writes the feature file text to stdout.
// Nothing is written to stdout if an error occurs.
func run(opts options, stdout, stderr io.Writer) error {
	ff, err := compile(opts, stderr)
	if err != nil {
		return err
	}
	text, err := fea.AsFea(ff)
	if err != nil {
		return err
	}
	if opts.stats {
		if err := writeStats(ff, stderr); err != nil {
			return err
		}
	}
	_, err = io.WriteString(stdout, text)
	return err
}

// compile loads the font, optionally extracts its features, parses the FEE
// file and optimizes the resulting collection.
func compile(opts options, stderr io.Writer) (*fontfeatures.FontFeatures, error) {
	s := opts.settings
	if s.Optimization < 0 || s.Optimization > optimizer.MaxLevel {
		return nil, fmt.Errorf("%w: %d (0..%d)", optimizer.ErrInvalidLevel, s.Optimization, optimizer.MaxLevel)
	}
	font, err := fontload.Load(opts.fontPath)
	if err != nil {
		return nil, err
	}
	p := fee.NewParser(font)
	p.Diagnostics = stderr
	p.IncludePath = s.IncludePath
	if s.Load {
		loaded, err := unparse.Unparse(font, unparse.Options{GDEF: s.GDEF, ExcludeFeatures: s.ExcludeFeatures})
		if err != nil {
			return nil, err
		}
		p.Features.Merge(loaded)
		tracer().Infof("loaded %d features from %s", len(loaded.Features()), opts.fontPath)
	}
	if err := p.ParseFile(opts.feePath); err != nil {
		return nil, err
	}
	o := optimizer.New(p.Features)
	if err := o.Optimize(s.Optimization); err != nil {
		return nil, err
	}
	tracer().Infof("optimization level %d, %d changes", s.Optimization, o.Changes())
	return p.Features, nil
}

// writeStats prints a table of the features with their routine and rule
// counts.
func writeStats(ff *fontfeatures.FontFeatures, w io.Writer) error {
	data := pterm.TableData{{"Feature", "Routines", "Rules"}}
	var routines, rules int
	for _, f := range ff.Features() {
		n := 0
		for _, r := range f.Routines {
			n += len(r.Rules)
		}
		data = append(data, []string{f.Tag, strconv.Itoa(len(f.Routines)), strconv.Itoa(n)})
	}
	for _, r := range ff.AllRoutines() {
		routines++
		rules += len(r.Rules)
	}
	data = append(data, []string{"(all)", strconv.Itoa(routines), strconv.Itoa(rules)})
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}
