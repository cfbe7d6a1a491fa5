package ot

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font/sfnt"
)

// Font represents the internal structure of an OpenType font, as far as it
// is needed to reconstruct the font's features.
type Font struct {
	Path   string     // file path, if loaded from a file
	Binary []byte     // the font's bytes; must not be changed while the Font is in use
	Header FontHeader // top-level table directory header
	SFNT   *sfnt.Font // glyph names, cmap and metrics are delegated to sfnt
	Layout struct {   // OpenType core layout tables, nil if absent
		GSub *LayoutTable
		GPos *LayoutTable
		GDef *GDefTable
	}
	tables  map[Tag]binarySegm
	ec      errorCollector
	mx      sync.Mutex // guards buf and names
	buf     sfnt.Buffer
	names   *glyphNames
	runemap map[GlyphIndex]rune
}

// FontHeader is the header of the table directory of a font.
//
// OpenType fonts that contain TrueType outlines use the value of 0x00010000
// for the FontType. OpenType fonts containing CFF data (version 1 or 2)
// use 0x4F54544F ('OTTO', when re-interpreted as a Tag).
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// Table returns the bytes of the font table for a given tag. If a table for a
// tag cannot be found in the font, nil is returned.
func (otf *Font) Table(tag Tag) []byte {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// HasTable is true if the font contains a table with the given tag.
func (otf *Font) HasTable(tag Tag) bool {
	_, ok := otf.tables[tag]
	return ok
}

// TableTags returns a list of tags, one for each table contained in the font,
// in the order of the table directory.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Errors returns all non-fatal errors encountered during font parsing.
func (otf *Font) Errors() []FontError {
	return otf.ec.errors
}

// Warnings returns all warnings encountered during font parsing.
func (otf *Font) Warnings() []FontWarning {
	return otf.ec.warnings
}

// FullName returns the full font name from the 'name' table, or the file path
// if the font has no name entry.
func (otf *Font) FullName() string {
	otf.mx.Lock()
	defer otf.mx.Unlock()
	name, err := otf.SFNT.Name(&otf.buf, sfnt.NameIDFull)
	if err != nil || name == "" {
		return otf.Path
	}
	return name
}

// --- Tags ------------------------------------------------------------------

// Tag is defined by the OpenType specification as:
// Array of four uint8s (length = 32 bits) used to identify a table,
// design-variation axis, script, language system, feature, or baseline
type Tag uint32

// Tags for the default script and language system.
var (
	DFLT     = T("DFLT")
	DFLTLang = T("dflt")
)

// MakeTag creates a Tag from 4 bytes, e.g.,
// If b is shorter or longer, it will be silently extended or cut as appropriate
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	if b == nil {
		b = []byte{0, 0, 0, 0}
	} else if len(b) > 4 {
		b = b[:4]
	} else if len(b) < 4 {
		b = append(b[:len(b):len(b)], []byte("    ")[:4-len(b)]...)
	}
	return Tag(u32(b))
}

// T returns a Tag from a (4-letter) string.
// If t is shorter or longer, it will be silently extended or cut as appropriate
func T(t string) Tag {
	t = (t + "    ")[:4]
	return Tag(u32([]byte(t)))
}

func (t Tag) String() string {
	bytes := []byte{
		byte(t >> 24 & 0xff),
		byte(t >> 16 & 0xff),
		byte(t >> 8 & 0xff),
		byte(t & 0xff),
	}
	return string(bytes)
}

// Name returns the tag's string with padding spaces removed, as used in
// feature files ("ENG " → "ENG").
func (t Tag) Name() string {
	return strings.TrimRight(t.String(), " ")
}

// GlyphIndex is a glyph index in a Font.
type GlyphIndex uint16
