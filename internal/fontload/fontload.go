// Package fontload loads OpenType fonts from the file system.
package fontload

import (
	"errors"
	"fmt"
	"os"

	"github.com/npillmayer/fontfeatures/ot"
	"github.com/npillmayer/schuko/tracing"
)

// ErrNoFont is returned if a font file cannot be read.
var ErrNoFont = errors.New("cannot read font")

// Load loads an OpenType font (TTF or OTF) from a file.
// Errors reading the file wrap ErrNoFont, errors decoding it wrap
// ot.ErrFontFormat.
func Load(fontfile string) (*ot.Font, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoFont, err)
	}
	otf, err := Parse(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fontfile, err)
	}
	otf.Path = fontfile
	tracing.Select("fontfeatures.ot").Infof("loaded font %q from %s", otf.FullName(), fontfile)
	return otf, nil
}

// Parse parses an OpenType font from memory and reports warnings collected
// while decoding its layout tables.
func Parse(fbytes []byte) (*ot.Font, error) {
	otf, err := ot.Parse(fbytes)
	if err != nil {
		return nil, err
	}
	for _, w := range otf.Warnings() {
		tracing.Select("fontfeatures.ot").Infof("%s", w)
	}
	return otf, nil
}
