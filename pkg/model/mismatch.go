package model

import "strings"

// CallMismatch scores one call against the reference call. scored is false
// when there is no call to compare.
func CallMismatch(call, ref string) (score float64, scored bool) {
	if call == "" {
		return 0, false
	}
	switch {
	case call == ref:
		return 0, true
	case strings.Contains(call, ref):
		return 0.5, true
	default:
		return 1, true
	}
}

// RowMismatch sums CallMismatch over the reference keys present in row.
func RowMismatch(row, ref SparseRow) float64 {
	calls := row.Map()
	var total float64
	for _, p := range ref {
		if s, ok := CallMismatch(calls[p.Key], p.Call); ok {
			total += s
		}
	}
	return total
}
