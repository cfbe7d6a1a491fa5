/*
Command fee2fea compiles FEE feature definitions for a font to OpenType
feature file syntax.

	fee2fea [--load] [-O N] [--config file.hcl] [--gdef] [--stats] [--trace LEVEL] FONT FEE

The feature file text is written to stdout. Diagnostics, statistics and
traces go to stderr. With --load the features of the font are extracted
first and the FEE rules are added to them. -O selects the optimization level
(0 to 2, default 1); a bare -O means level 1.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/fontfeatures/internal/config"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/thatisuday/commando"
)

// tracer traces with key 'fontfeatures.cli'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.cli")
}

func main() {
	initDisplay()
	argv := normalizeArgs(os.Args[1:])

	commando.
		SetExecutableName("fee2fea").
		SetVersion("v0.1.0").
		SetDescription("Compile FEE feature definitions for a font to OpenType feature file syntax.")

	commando.
		Register(nil).
		AddArgument("font", "OpenType font file path", "").
		AddArgument("fee", "FEE file path", "").
		AddFlag("load,l", "start from the features of the font", commando.Bool, nil).
		AddFlag("optimize,O", "optimization level 0..2", commando.Int, 1).
		AddFlag("config,c", "HCL configuration file", commando.String, "-").
		AddFlag("gdef,g", "emit GDEF glyph classes of the font (with --load)", commando.Bool, nil).
		AddFlag("stats,s", "print a table of features, routines and rules to stderr", commando.Bool, nil).
		AddFlag("trace,t", "trace level [Debug|Info|Error]", commando.String, "-").
		SetAction(func(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
			runCommand(argv, args, flags)
		})

	commando.Parse(argv)
}

func runCommand(argv []string, args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	f := cliFlags{
		load:     mustFlagBool(flags["load"], "load"),
		gdef:     mustFlagBool(flags["gdef"], "gdef"),
		stats:    mustFlagBool(flags["stats"], "stats"),
		optimize: mustFlagInt(flags["optimize"], "optimize"),
		trace:    mustFlagString(flags["trace"], "trace"),
	}
	f.optimizeGiven = flagGiven(argv, "optimize", "O")
	var conf *config.Config
	if path := mustFlagString(flags["config"], "config"); path != "-" {
		var err error
		if conf, err = config.Load(path); err != nil {
			fatalf("%v", err)
		}
	}
	opts := options{
		fontPath: args["font"].Value,
		feePath:  args["fee"].Value,
		settings: f.resolve(config.Defaults().Apply(conf)),
		stats:    f.stats,
	}
	if err := config.SetupTracing(opts.settings.Trace); err != nil {
		fatalf("%v", err)
	}
	tracer().Infof("trace level is %s", opts.settings.Trace)
	if err := run(opts, os.Stdout, os.Stderr); err != nil {
		fatalf("%v", err)
	}
}

// We use pterm for the statistics table. All of it goes to stderr.
func initDisplay() {
	pterm.SetDefaultOutput(os.Stderr)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

func mustFlagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return s
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "fee2fea: "+format+"\n", args...)
	os.Exit(1)
}
