/*
Package testfont synthesizes OpenType fonts for tests.

Go Regular (golang.org/x/image/font/gofont/goregular) serves as the carrier
font: it has outlines, glyph names and a cmap. Layout tables built with the
helpers of this package are spliced into its table directory, replacing
existing tables of the same tag.

All offsets written by the builders are 16 bit, which is plenty for the
small tables tests need.
*/
package testfont

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"slices"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// GoRegular returns the unmodified carrier font.
func GoRegular() []byte {
	return goregular.TTF
}

var carrier struct {
	once sync.Once
	font *sfnt.Font
	buf  sfnt.Buffer
	mx   sync.Mutex
}

// GID returns the glyph index Go Regular maps a character to. It panics if
// the character is not mapped, as this is a bug in the test.
func GID(r rune) uint16 {
	carrier.once.Do(func() {
		f, err := sfnt.Parse(goregular.TTF)
		if err != nil {
			panic(err)
		}
		carrier.font = f
	})
	carrier.mx.Lock()
	defer carrier.mx.Unlock()
	gid, err := carrier.font.GlyphIndex(&carrier.buf, r)
	if err != nil || gid == 0 {
		panic(fmt.Sprintf("testfont: Go Regular has no glyph for %q", r))
	}
	return uint16(gid)
}

// WithTables returns a copy of font with the given tables added. Tables with
// a tag already present in font are replaced, a nil table removes a tag.
func WithTables(font []byte, tables map[string][]byte) ([]byte, error) {
	if len(font) < 12 {
		return nil, fmt.Errorf("testfont: font too short")
	}
	n := int(binary.BigEndian.Uint16(font[4:]))
	type entry struct {
		tag  string
		data []byte
	}
	var entries []entry
	for i := 0; i < n; i++ {
		rec := font[12+16*i:]
		tag := string(rec[:4])
		if _, replaced := tables[tag]; replaced {
			continue
		}
		off, size := binary.BigEndian.Uint32(rec[8:]), binary.BigEndian.Uint32(rec[12:])
		if int(off+size) > len(font) {
			return nil, fmt.Errorf("testfont: table %s out of bounds", tag)
		}
		entries = append(entries, entry{tag, font[off : off+size]})
	}
	for tag, data := range tables {
		if len(tag) != 4 {
			return nil, fmt.Errorf("testfont: invalid tag %q", tag)
		}
		if data == nil {
			continue
		}
		entries = append(entries, entry{tag, data})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	count := len(entries)
	w := &Writer{}
	w.Bytes(font[:4]) // sfnt version
	w.U16(uint16(count))
	entrySelector := bits.Len(uint(count)) - 1
	searchRange := (1 << entrySelector) * 16
	w.U16(uint16(searchRange))
	w.U16(uint16(entrySelector))
	w.U16(uint16(count*16 - searchRange))
	offset := 12 + 16*count
	for _, e := range entries {
		w.Bytes([]byte(e.tag))
		w.U32(checksum(e.data))
		w.U32(uint32(offset))
		w.U32(uint32(len(e.data)))
		offset += pad4(len(e.data))
	}
	for _, e := range entries {
		w.Bytes(e.data)
		w.Bytes(make([]byte, pad4(len(e.data))-len(e.data)))
	}
	return w.Data(), nil
}

// Font returns Go Regular with the given tables spliced in. Layout tables of
// Go Regular not given are removed, so tests see exactly the layout they
// build. Font panics on error, as tests construct the tables themselves.
func Font(tables map[string][]byte) []byte {
	all := map[string][]byte{"GDEF": nil, "GSUB": nil, "GPOS": nil, "kern": nil}
	for tag, data := range tables {
		all[tag] = data
	}
	f, err := WithTables(goregular.TTF, all)
	if err != nil {
		panic(err)
	}
	return f
}

func pad4(n int) int {
	return (n + 3) &^ 3
}

func checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		var word [4]byte
		copy(word[:], b[i:])
		sum += binary.BigEndian.Uint32(word[:])
	}
	return sum
}

// --- Writer ----------------------------------------------------------------

// Writer appends big-endian data to a byte buffer.
type Writer struct {
	b []byte
}

// U16 appends a 16-bit value.
func (w *Writer) U16(v uint16) *Writer {
	w.b = binary.BigEndian.AppendUint16(w.b, v)
	return w
}

// I16 appends a signed 16-bit value.
func (w *Writer) I16(v int16) *Writer {
	return w.U16(uint16(v))
}

// U32 appends a 32-bit value.
func (w *Writer) U32(v uint32) *Writer {
	w.b = binary.BigEndian.AppendUint32(w.b, v)
	return w
}

// Bytes appends raw bytes.
func (w *Writer) Bytes(b []byte) *Writer {
	w.b = append(w.b, b...)
	return w
}

// Len is the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.b)
}

// PatchU16 overwrites the 16-bit value at position at.
func (w *Writer) PatchU16(at int, v uint16) {
	binary.BigEndian.PutUint16(w.b[at:], v)
}

// Data returns the bytes written.
func (w *Writer) Data() []byte {
	return w.b
}

// appendLinked appends blobs and patches their offsets (relative to the start
// of w) into the 16-bit slots at the given positions. Nil blobs keep a NULL offset.
func (w *Writer) appendLinked(slots []int, blobs [][]byte) {
	for i, blob := range blobs {
		if blob == nil {
			continue
		}
		w.PatchU16(slots[i], uint16(w.Len()))
		w.Bytes(blob)
	}
}

// --- Layout tables ---------------------------------------------------------

// Lookup is a lookup of a layout table under construction.
type Lookup struct {
	Type             uint16
	Flag             uint16
	MarkFilteringSet uint16 // written if Flag has bit 0x0010 set
	Subtables        [][]byte
}

// Feature is a feature record referencing lookups by index.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Script is a script record. Its default language system enables the
// features of DefaultFeatures, language systems in Langs the listed features.
type Script struct {
	Tag             string
	DefaultFeatures []uint16
	Langs           map[string][]uint16
}

// Layout builds a GSUB or GPOS table (version 1.0).
func Layout(scripts []Script, features []Feature, lookups []Lookup) []byte {
	sl, fl, ll := scriptList(scripts), featureList(features), lookupList(lookups)
	w := &Writer{}
	w.U16(1).U16(0)
	w.U16(10).U16(uint16(10 + len(sl))).U16(uint16(10 + len(sl) + len(fl)))
	return w.Bytes(sl).Bytes(fl).Bytes(ll).Data()
}

// DefaultScript returns a 'DFLT' script enabling all of n features.
func DefaultScript(n int) Script {
	s := Script{Tag: "DFLT"}
	for i := 0; i < n; i++ {
		s.DefaultFeatures = append(s.DefaultFeatures, uint16(i))
	}
	return s
}

func langSys(features []uint16) []byte {
	w := &Writer{}
	w.U16(0).U16(0xFFFF).U16(uint16(len(features)))
	for _, f := range features {
		w.U16(f)
	}
	return w.Data()
}

func scriptList(scripts []Script) []byte {
	w := &Writer{}
	w.U16(uint16(len(scripts)))
	slots := make([]int, len(scripts))
	blobs := make([][]byte, len(scripts))
	for i, s := range scripts {
		w.Bytes([]byte((s.Tag + "    ")[:4]))
		slots[i] = w.Len()
		w.U16(0)
		langs := make([]string, 0, len(s.Langs))
		for l := range s.Langs {
			langs = append(langs, (l + "    ")[:4])
		}
		slices.Sort(langs)
		sw := &Writer{}
		sw.U16(0).U16(uint16(len(langs)))
		lslots := make([]int, len(langs))
		lblobs := make([][]byte, len(langs))
		for j, l := range langs {
			sw.Bytes([]byte(l))
			lslots[j] = sw.Len()
			sw.U16(0)
			lblobs[j] = langSys(s.Langs[trimTag(l)])
		}
		if s.DefaultFeatures != nil {
			sw.PatchU16(0, uint16(sw.Len()))
			sw.Bytes(langSys(s.DefaultFeatures))
		}
		sw.appendLinked(lslots, lblobs)
		blobs[i] = sw.Data()
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

func trimTag(t string) string {
	for len(t) > 0 && t[len(t)-1] == ' ' {
		t = t[:len(t)-1]
	}
	return t
}

func featureList(features []Feature) []byte {
	w := &Writer{}
	w.U16(uint16(len(features)))
	slots := make([]int, len(features))
	blobs := make([][]byte, len(features))
	for i, f := range features {
		w.Bytes([]byte((f.Tag + "    ")[:4]))
		slots[i] = w.Len()
		w.U16(0)
		fw := &Writer{}
		fw.U16(0).U16(uint16(len(f.Lookups)))
		for _, l := range f.Lookups {
			fw.U16(l)
		}
		blobs[i] = fw.Data()
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}

func lookupList(lookups []Lookup) []byte {
	w := &Writer{}
	w.U16(uint16(len(lookups)))
	slots := make([]int, len(lookups))
	blobs := make([][]byte, len(lookups))
	for i, l := range lookups {
		slots[i] = w.Len()
		w.U16(0)
		lw := &Writer{}
		lw.U16(l.Type).U16(l.Flag).U16(uint16(len(l.Subtables)))
		sslots := make([]int, len(l.Subtables))
		for j := range l.Subtables {
			sslots[j] = lw.Len()
			lw.U16(0)
		}
		if l.Flag&0x0010 != 0 {
			lw.U16(l.MarkFilteringSet)
		}
		lw.appendLinked(sslots, l.Subtables)
		blobs[i] = lw.Data()
	}
	w.appendLinked(slots, blobs)
	return w.Data()
}
