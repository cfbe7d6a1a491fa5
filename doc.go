/*
Package fontfeatures holds an in-memory representation of the layout
features of a font, independent of both the binary OpenType tables and the
textual feature file formats.

A FontFeatures collection is filled by extracting the features of a font
binary (package unparse), by parsing FEE feature descriptions (package fee),
or both. It may then be rewritten by package optimizer and finally be
written as an AFDKO feature file (package fea).

The model follows the structure of OpenType layout tables, but talks about
glyphs by name:

  - Named glyph classes
  - Routines: ordered lists of rules which end up as one or more lookups
  - Features: ordered lists of references to routines
  - Anchors for mark attachment, and GDEF glyph categories

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontfeatures

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfeatures'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures")
}
