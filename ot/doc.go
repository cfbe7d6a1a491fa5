/*
Package ot reads the parts of an OpenType font which are needed to recover its
typographic features: the table directory, the advanced layout tables GSUB,
GPOS and GDEF, glyph names, the character map and glyph metrics.

Package ot does not apply features to text. It decodes lookups into plain Go
values (coverage sets, substitution mappings, value records, anchors and
normalized context rules) and leaves their interpretation to clients, e.g.
package unparse, which converts them into a feature collection.

Glyph names, cmap lookups and metrics are delegated to golang.org/x/image/font/sfnt,
which is well suited for these tasks. Layout tables are decoded here, as sfnt
does not expose them.

▪︎ Format versions: lookups of every format are normalized. Context lookups of
format 1, 2 and 3 all end up as lists of glyph-set rules.

▪︎ Extension lookups are resolved transparently.

▪︎ Bugs in fonts: a damaged lookup subtable will not abort parsing. It is
skipped and recorded as a FontWarning. Only a broken table directory or a
broken layout table header make Parse fail.

No font collections nor variable fonts are supported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

// Code comments often cite the OpenType specification version 1.9;
// see https://learn.microsoft.com/en-us/typography/opentype/spec/.

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'fontfeatures.ot'
func tracer() tracing.Trace {
	return tracing.Select("fontfeatures.ot")
}
