package glyphtools

import (
	"cmp"
	"slices"
)

// Bin splits glyphs into n groups of similar metric values, in increasing
// order of the metric. Groups are cut at the n-1 largest gaps between
// neighbouring values, thus bins differ in size. If there are fewer distinct
// values than bins, the trailing bins are empty.
func (in *Inspector) Bin(glyphs []string, m Metric, n int) ([][]string, error) {
	values := make(map[string]int, len(glyphs))
	for _, g := range glyphs {
		v, err := in.Metric(g, m)
		if err != nil {
			return nil, err
		}
		values[g] = v
	}
	return BinByValue(glyphs, values, n), nil
}

// BinByValue is Bin for precomputed values.
func BinByValue(glyphs []string, values map[string]int, n int) [][]string {
	bins := make([][]string, max(n, 0))
	if n <= 0 || len(glyphs) == 0 {
		return bins
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return cmp.Compare(values[a], values[b])
	})
	type gap struct{ at, width int }
	var gaps []gap
	for i := 1; i < len(sorted); i++ {
		if w := values[sorted[i]] - values[sorted[i-1]]; w > 0 {
			gaps = append(gaps, gap{i, w})
		}
	}
	slices.SortStableFunc(gaps, func(a, b gap) int {
		return cmp.Compare(b.width, a.width)
	})
	if len(gaps) > n-1 {
		gaps = gaps[:n-1]
	}
	cuts := make([]int, 0, len(gaps)+1)
	for _, g := range gaps {
		cuts = append(cuts, g.at)
	}
	slices.Sort(cuts)
	cuts = append(cuts, len(sorted))
	start := 0
	for i, cut := range cuts {
		bins[i] = sorted[start:cut]
		start = cut
	}
	return bins
}
