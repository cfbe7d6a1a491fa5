package fontfeatures

import (
	"slices"
	"strings"
)

// Glyph classes are plain lists of glyph names. Order matters for
// substitutions (input and replacement classes correspond by position), so
// the operations below keep the order of their first operand.

// Union returns the glyphs of a followed by those of b not in a.
func Union(a, b []string) []string {
	u := slices.Clone(a)
	set := toSet(a)
	for _, g := range b {
		if !set[g] {
			set[g] = true
			u = append(u, g)
		}
	}
	return u
}

// Intersection returns the glyphs of a which are also in b.
func Intersection(a, b []string) []string {
	set := toSet(b)
	var r []string
	for _, g := range a {
		if set[g] {
			r = append(r, g)
		}
	}
	return r
}

// Disjoint is true if a and b have no glyph in common.
func Disjoint(a, b []string) bool {
	set := toSet(a)
	for _, g := range b {
		if set[g] {
			return false
		}
	}
	return true
}

// SameGlyphs is true if a and b contain the same glyphs, in any order.
func SameGlyphs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	return slices.Equal(sortedCopy(a), sortedCopy(b))
}

// ClassKey returns a canonical key for a set of glyphs, independent of order.
func ClassKey(glyphs []string) string {
	return strings.Join(sortedCopy(glyphs), " ")
}

func toSet(glyphs []string) map[string]bool {
	set := make(map[string]bool, len(glyphs))
	for _, g := range glyphs {
		set[g] = true
	}
	return set
}

func sortedCopy(glyphs []string) []string {
	s := slices.Clone(glyphs)
	slices.Sort(s)
	return s
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
