package ot

import (
	"errors"
	"fmt"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// binarySegm is a segment of byte data.
// We use it throughout this package to navigate the font's binary data.
type binarySegm []byte

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n < 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// from returns the tail of b starting at offset. Sub-tables of OpenType
// structures are addressed by offsets relative to their parent, and their
// length is rarely known in advance.
func (b binarySegm) from(offset int) (binarySegm, error) {
	if offset < 0 || offset >= len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// --- Sticky reader ---------------------------------------------------------

// segmReader wraps a binarySegm and remembers the first error encountered.
// Decoding a lookup subtable needs dozens of reads; checking once at the end
// keeps the decoders readable. Every read after an error returns zero.
type segmReader struct {
	b   binarySegm
	err error
}

func reader(b binarySegm) *segmReader {
	return &segmReader{b: b}
}

func (r *segmReader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *segmReader) u16(i int) uint16 {
	if r.err != nil {
		return 0
	}
	n, err := r.b.u16(i)
	r.fail(err)
	return n
}

func (r *segmReader) i16(i int) int16 {
	return int16(r.u16(i))
}

func (r *segmReader) u32(i int) uint32 {
	if r.err != nil {
		return 0
	}
	n, err := r.b.u32(i)
	r.fail(err)
	return n
}

// u16s reads n consecutive uint16 values starting at byte offset i.
func (r *segmReader) u16s(i, n int) []uint16 {
	if r.err != nil {
		return nil
	}
	buf, err := r.b.view(i, 2*n)
	if err != nil {
		r.fail(err)
		return nil
	}
	vals := make([]uint16, n)
	for j := range vals {
		vals[j] = u16(buf[2*j:])
	}
	return vals
}

// glyphs reads n consecutive glyph indices starting at byte offset i.
func (r *segmReader) glyphs(i, n int) []GlyphIndex {
	vals := r.u16s(i, n)
	if vals == nil {
		return nil
	}
	glyphs := make([]GlyphIndex, n)
	for j, v := range vals {
		glyphs[j] = GlyphIndex(v)
	}
	return glyphs
}

// sub follows a 16-bit offset stored at byte offset i and returns the
// segment it points to. A zero offset denotes a NULL link and yields nil
// without an error.
func (r *segmReader) sub(i int) binarySegm {
	off := r.u16(i)
	if r.err != nil || off == 0 {
		return nil
	}
	return r.at(int(off))
}

// sub32 is like sub, but for 32-bit offsets.
func (r *segmReader) sub32(i int) binarySegm {
	off := r.u32(i)
	if r.err != nil || off == 0 {
		return nil
	}
	return r.at(int(off))
}

func (r *segmReader) at(offset int) binarySegm {
	if r.err != nil {
		return nil
	}
	b, err := r.b.from(offset)
	if err != nil {
		r.fail(fmt.Errorf("offset %d beyond segment of size %d: %w", offset, len(r.b), err))
		return nil
	}
	return b
}

// count reads a 16-bit count at offset i and checks it against a limit.
func (r *segmReader) count(i int, limit int, what string) int {
	n := int(r.u16(i))
	if r.err == nil && n > limit {
		r.fail(fmt.Errorf("%s count %d exceeds limit %d", what, n, limit))
		return 0
	}
	return n
}
