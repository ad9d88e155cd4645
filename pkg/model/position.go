package model

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"
)

// MalformedOffset is the offset assigned to keys whose offset part is not a
// non-negative integer. It sorts after every real offset.
const MalformedOffset = math.MaxInt

// FormatKey builds the canonical "<contig> <offset>" position key.
func FormatKey(contig string, offset int) string {
	return contig + " " + strconv.Itoa(offset)
}

// SplitKey cuts a key at its first space.
func SplitKey(key string) (contig, offset string, ok bool) {
	return strings.Cut(key, " ")
}

// ParseKey returns the contig and numeric offset of key. ok is false when the
// offset is missing or malformed, in which case offset is MalformedOffset.
func ParseKey(key string) (contig string, offset int, ok bool) {
	contig, raw, found := SplitKey(key)
	if !found {
		return key, MalformedOffset, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return contig, MalformedOffset, false
	}
	return contig, n, true
}

// ContigRank is the numeric part of a chrN-style label. Labels that do not
// reduce to an integer rank last.
func ContigRank(contig string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(contig, "chr", ""))
	if err != nil {
		return math.MaxInt
	}
	return n
}

// CompareKeys orders keys by contig rank, contig name, then offset.
func CompareKeys(a, b string) int {
	ac, ao, _ := ParseKey(a)
	bc, bo, _ := ParseKey(b)
	if c := cmp.Compare(ContigRank(ac), ContigRank(bc)); c != 0 {
		return c
	}
	if c := strings.Compare(ac, bc); c != 0 {
		return c
	}
	if c := cmp.Compare(ao, bo); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

// SortRow sorts row in place. Sorting a sorted row is a no-op.
func SortRow(row SparseRow) {
	slices.SortStableFunc(row, func(a, b Position) int {
		return CompareKeys(a.Key, b.Key)
	})
}

// DistinctContigs returns the contig prefixes of keys in first-seen order.
func DistinctContigs(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	var out []string
	for _, k := range keys {
		c, _, _ := SplitKey(k)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
