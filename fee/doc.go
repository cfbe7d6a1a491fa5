/*
Package fee parses FEE, a language for describing OpenType layout features at
a higher level than the AFDKO feature file syntax.

A FEE file is a sequence of statements, each introduced by a verb and ended by
a semicolon. Blocks in braces may follow a verb; the semicolon after a closing
brace is optional. A '#' starts a comment extending to the end of the line.

	LoadPlugin Anchors;
	LanguageSystem arab URD;
	DefineClass @lower = /^[a-z]$/ and (width < width(m));
	DefineClass @greek = /./ and (script = grek);
	DefineClassBinned @bases[width,3] = @lower;

	Feature smcp {
	    Substitute @lower -> @lower.sc;
	};

	Routine Ktail IgnoreMarks {
	    Position @lower 20;
	};

	Feature kern {
	    Routine Ktail;
	    Position A -50 V;
	    Chain a { b ^Ktail } c;
	};

Glyph selectors are glyph names, named classes (@name), inline classes
([a b @digits]), regular expressions matched against all glyph names (/^a/)
and code points mapped by the font's cmap (U+0041). A selector may be
followed by suffixes: ".sc" appends ".sc" to every glyph name, "~sc" removes
a trailing ".sc". Glyphs which do not exist after applying a suffix are
dropped.

Rules outside of a Feature or Routine block are an error. Rules directly
inside a Feature block go into a routine created for them.

Verbs are grouped into plugins, which are all loaded by default. LoadPlugin
accepts their names, with or without the "fontFeatures.feeLib." prefix:
Anchors, Chain, ClassDefinition, Feature, Position, Substitute and Routine.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fee

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontfeatures.fee'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.fee")
}
