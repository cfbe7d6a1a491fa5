/*
Command feecli is an interactive shell for FEE feature definitions.

	feecli -font MyFont.otf [-config file.hcl] [-trace Info]

Lines are FEE statements, added to the feature collection of the session.
Statements may span lines as long as braces are open. Lines starting with a
colon are commands; ":help" lists them.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/fontfeatures/fee"
	"github.com/npillmayer/fontfeatures/internal/config"
	"github.com/npillmayer/fontfeatures/internal/fontload"
	"github.com/npillmayer/fontfeatures/ot"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// tracer traces with key 'fontfeatures.cli'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.cli")
}

const (
	prompt         = "fee > "
	continuePrompt = "  … > "
)

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	confname := flag.String("config", "", "HCL configuration file")
	flag.Parse()
	settings := config.Defaults()
	if *confname != "" {
		conf, err := config.Load(*confname)
		if err != nil {
			pterm.Error.Println(err.Error())
			os.Exit(2)
		}
		settings = settings.Apply(conf)
	}
	if *tlevel != "" {
		settings.Trace = *tlevel
	}
	if err := config.SetupTracing(settings.Trace); err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	pterm.Info.Println("Welcome to the FEE shell") // colored welcome message
	//
	// load font to use
	if *fontname == "" {
		pterm.Error.Println("no font given, use -font")
		os.Exit(4)
	}
	otf, err := fontload.Load(*fontname)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(4)
	}
	//
	// set up REPL
	repl, err := readline.New(prompt)
	if err != nil {
		tracer().Errorf("%v", err)
		os.Exit(3)
	}
	defer repl.Close()
	intp := newIntp(otf, settings, os.Stdout)
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D or :quit") // inform user how to stop the CLI
	intp.REPL()                                      // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font     *ot.Font
	parser   *fee.Parser
	settings config.Settings
	repl     *readline.Instance
	out      io.Writer
	pending  strings.Builder // FEE text of unbalanced braces
	depth    int
}

func newIntp(otf *ot.Font, settings config.Settings, out io.Writer) *Intp {
	intp := &Intp{font: otf, settings: settings, out: out}
	intp.reset()
	return intp
}

// reset starts with an empty feature collection.
func (intp *Intp) reset() {
	intp.parser = fee.NewParser(intp.font)
	intp.parser.Diagnostics = intp.out
	intp.parser.IncludePath = intp.settings.IncludePath
	intp.pending.Reset()
	intp.depth = 0
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		quit, err := intp.execute(line)
		if err != nil {
			intp.errorf("%v", err)
		}
		if quit {
			break
		}
		if intp.depth > 0 {
			intp.repl.SetPrompt(continuePrompt)
		} else {
			intp.repl.SetPrompt(prompt)
		}
	}
	pterm.Info.Println("Good bye!")
}

// execute interprets a line of input. It returns true if the session should
// end.
func (intp *Intp) execute(line string) (bool, error) {
	trimmed := strings.TrimSpace(line)
	if intp.depth == 0 {
		if trimmed == "" {
			return false, nil
		}
		if strings.HasPrefix(trimmed, ":") {
			return intp.command(trimmed[1:])
		}
	}
	intp.pending.WriteString(line)
	intp.pending.WriteString("\n")
	intp.depth += braceDepth(line)
	if intp.depth > 0 {
		return false, nil
	}
	src := intp.pending.String()
	intp.pending.Reset()
	intp.depth = 0
	tracer().Debugf("parsing %q", src)
	return false, intp.parser.ParseString(src)
}

// braceDepth is the number of braces a line opens, minus the braces it
// closes. Comments are ignored.
func braceDepth(line string) int {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.Count(line, "{") - strings.Count(line, "}")
}

func (intp *Intp) infof(format string, args ...any) {
	fmt.Fprint(intp.out, pterm.Info.Sprintfln(format, args...))
}

func (intp *Intp) errorf(format string, args ...any) {
	fmt.Fprint(intp.out, pterm.Error.Sprintfln(format, args...))
}
