/*
Package config reads the optional HCL configuration of the fontfeatures
command line tools and sets up tracing.

A configuration file sets defaults for command line flags:

	trace            = "Info"
	optimization     = 2
	load             = true
	gdef             = false
	exclude_features = ["kern"]
	include_path     = ["${env.HOME}/fee"]

Environment variables are available as attributes of the object 'env'.
Settings are resolved with precedence explicit flag, configuration file,
built-in default.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/zclconf/go-cty/cty"
)

// Config is the content of a configuration file. Attributes not present in
// the file are nil.
type Config struct {
	Trace           *string  `hcl:"trace,optional"`
	Optimization    *int     `hcl:"optimization,optional"`
	Load            *bool    `hcl:"load,optional"`
	GDEF            *bool    `hcl:"gdef,optional"`
	ExcludeFeatures []string `hcl:"exclude_features,optional"`
	IncludePath     []string `hcl:"include_path,optional"`
}

// Load reads and decodes a configuration file.
func Load(path string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, diags)
	}
	return decode(f.Body, path)
}

// Parse decodes configuration source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", filename, diags)
	}
	return decode(f.Body, filename)
}

func decode(body hcl.Body, filename string) (*Config, error) {
	conf := &Config{}
	if diags := gohcl.DecodeBody(body, EvalContext(), conf); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", filename, diags)
	}
	return conf, nil
}

// EvalContext exposes the environment variables as attributes of 'env'.
func EvalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 && hclsyntax.ValidIdentifier(pair[0]) {
			env[pair[0]] = cty.StringVal(pair[1])
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(env)},
	}
}

// --- Settings --------------------------------------------------------------

// Settings are the resolved settings of a run.
type Settings struct {
	Trace           string
	Optimization    int
	Load            bool
	GDEF            bool
	ExcludeFeatures []string
	IncludePath     []string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{Trace: "Error", Optimization: 1}
}

// Apply overrides settings with the attributes present in a configuration.
// A nil configuration changes nothing.
func (s Settings) Apply(conf *Config) Settings {
	if conf == nil {
		return s
	}
	if conf.Trace != nil {
		s.Trace = *conf.Trace
	}
	if conf.Optimization != nil {
		s.Optimization = *conf.Optimization
	}
	if conf.Load != nil {
		s.Load = *conf.Load
	}
	if conf.GDEF != nil {
		s.GDEF = *conf.GDEF
	}
	if conf.ExcludeFeatures != nil {
		s.ExcludeFeatures = conf.ExcludeFeatures
	}
	if conf.IncludePath != nil {
		s.IncludePath = conf.IncludePath
	}
	return s
}

// --- Tracing ---------------------------------------------------------------

// ErrTraceLevel is returned for trace levels other than Debug, Info and Error.
var ErrTraceLevel = errors.New("invalid trace level")

// TraceLevel converts a level name.
func TraceLevel(name string) (tracing.TraceLevel, error) {
	switch name {
	case "Debug":
		return tracing.LevelDebug, nil
	case "Info":
		return tracing.LevelInfo, nil
	case "Error":
		return tracing.LevelError, nil
	}
	return tracing.LevelError, fmt.Errorf("%w: %q", ErrTraceLevel, name)
}

// TraceKeys are the trace keys of the packages of this module.
var TraceKeys = []string{
	"fontfeatures.ot",
	"fontfeatures.unparse",
	"fontfeatures.fee",
	"fontfeatures.optimizer",
	"fontfeatures.fea",
	"fontfeatures",
	"fontfeatures.cli",
}

// SetupTracing routes all trace keys of this module to the Go logger, at the
// given level.
func SetupTracing(level string) error {
	l, err := TraceLevel(level)
	if err != nil {
		return err
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{"tracing.adapter": "go"}
	for _, key := range TraceKeys {
		conf["trace."+key] = level
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("error configuring tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	for _, key := range TraceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
	return nil
}
