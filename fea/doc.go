/*
Package fea writes a feature collection as OpenType feature file text, in
the syntax of the AFDKO feature file specification.

The text consists of language system statements, named glyph classes, mark
classes, a GDEF table (if glyph categories are known), one top-level lookup
per routine and the feature blocks referencing them:

	languagesystem DFLT dflt;

	@lower = [a b c];

	lookup Routine_1 {
	    sub @lower by A;
	} Routine_1;

	feature smcp {
	    lookup Routine_1;
	} smcp;

An OpenType lookup holds rules of a single lookup type only. Routines mixing
rule kinds, lookup types or languages are therefore split into lookups named
Routine_1_1, Routine_1_2, …, all of which are referenced by the features of
the routine. Chaining rules cannot reference more than one lookup per
position and routine, so a chain referencing a routine which has to be split
is an error.

Routines restricted to language systems are referenced below "script" and
"language" statements in feature blocks.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fea

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontfeatures.fea'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.fea")
}
