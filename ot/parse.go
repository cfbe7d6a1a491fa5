package ot

import (
	"fmt"

	"golang.org/x/image/font/sfnt"
)

// Parse parses an OpenType font from a byte slice.
// An ot.Font needs ongoing access to the font's byte-data after the Parse function returns.
// Its elements are assumed immutable while the ot.Font remains in use.
//
// Parse fails for font collections, for binaries with a broken table
// directory, and for fonts with broken GSUB, GPOS or GDEF headers. Problems
// inside single lookups are recorded as warnings (see Font.Warnings).
func Parse(font []byte) (*Font, error) {
	src := binarySegm(font)
	ec := errorCollector{}
	// https://learn.microsoft.com/en-us/typography/opentype/spec/otff: Offset Table is 12 bytes.
	hdr, err := src.view(0, 12)
	if err != nil {
		return nil, errFontFormat("font too short for a table directory")
	}
	h := FontHeader{FontType: u32(hdr), TableCount: u16(hdr[4:])}
	tracer().Debugf("header = %v, tag = %x|%s", h, h.FontType, Tag(h.FontType).String())
	switch h.FontType {
	case 0x4f54544f, // OTTO
		0x00010000, // TrueType
		0x74727565: // true
	case 0x74746366: // ttcf
		return nil, errFontFormat("font collections are not supported")
	default:
		ec.addError(T(""), "Header", fmt.Sprintf("font type not supported: %x", h.FontType), SeverityCritical, 0)
		return nil, ec.critical()
	}
	otf := &Font{Header: h, Binary: font, tables: make(map[Tag]binarySegm)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	buf, err := src.view(12, 16*int(h.TableCount))
	if err != nil {
		ec.addError(T(""), "TableRecords", "table record entries", SeverityCritical, 12)
		return nil, ec.critical()
	}
	for b, prevTag := buf, Tag(0); len(b) > 0; b = b[16:] {
		tag := MakeTag(b)
		if tag < prevTag {
			ec.addError(tag, "TableRecords", "table order", SeverityCritical, 12)
			return nil, ec.critical()
		}
		prevTag = tag
		off, size := u32(b[8:12]), u32(b[12:16])
		if off&3 != 0 { // ignore checksums, but "all tables must begin on four byte boundries".
			ec.addError(tag, "Offset", "invalid table offset", SeverityCritical, off)
			return nil, ec.critical()
		}
		if uint64(off)+uint64(size) > uint64(len(src)) {
			ec.addError(tag, "Bounds", fmt.Sprintf("bounds [%d:%d] exceed font size %d",
				off, uint64(off)+uint64(size), len(src)), SeverityCritical, off)
			return nil, ec.critical()
		}
		otf.tables[tag] = src[off : off+size]
	}
	for _, tag := range []string{"cmap", "head", "maxp"} {
		if !otf.HasTable(T(tag)) {
			ec.addError(T(tag), "Missing", "missing required table", SeverityCritical, 0)
			return nil, ec.critical()
		}
	}
	if otf.SFNT, err = sfnt.Parse(font); err != nil {
		return nil, errFontFormat(err.Error())
	}
	if err := otf.parseLayoutTables(&ec); err != nil {
		return nil, err
	}
	otf.ec = ec
	return otf, nil
}

func (otf *Font) parseLayoutTables(ec *errorCollector) error {
	numGlyphs := otf.SFNT.NumGlyphs()
	if b := otf.tables[T("GDEF")]; b != nil {
		gdef, err := parseGDef(b)
		if err != nil {
			ec.addError(T("GDEF"), "Header", err.Error(), SeverityCritical, 0)
			return ec.critical()
		}
		otf.Layout.GDef = gdef
	}
	for _, tag := range []Tag{T("GSUB"), T("GPOS")} {
		b := otf.tables[tag]
		if b == nil {
			continue
		}
		lytt, err := parseLayoutTable(tag, b, numGlyphs, ec)
		if err != nil {
			ec.addError(tag, "Header", err.Error(), SeverityCritical, 0)
			return ec.critical()
		}
		tracer().Infof("%s: %d scripts, %d features, %d lookups", tag,
			len(lytt.Scripts), len(lytt.Features), len(lytt.Lookups))
		if tag == T("GSUB") {
			otf.Layout.GSub = lytt
		} else {
			otf.Layout.GPos = lytt
		}
	}
	return nil
}
