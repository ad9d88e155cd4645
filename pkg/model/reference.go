package model

// ReferenceRowBuilder collects reference calls with put semantics: a key keeps
// the position of its first insertion and the value of its last.
type ReferenceRowBuilder struct {
	index map[string]int
	row   SparseRow
}

func NewReferenceRowBuilder() *ReferenceRowBuilder {
	return &ReferenceRowBuilder{index: make(map[string]int)}
}

func (b *ReferenceRowBuilder) Put(key, call string) {
	if i, ok := b.index[key]; ok {
		b.row[i].Call = call
		return
	}
	b.index[key] = len(b.row)
	b.row = append(b.row, Position{Key: key, Call: call})
}

// Add puts every position of raw in order.
func (b *ReferenceRowBuilder) Add(raw ...RawRow) {
	for _, r := range raw {
		for _, p := range r.Positions {
			b.Put(p.Key, p.Call)
		}
	}
}

// Row returns the collected calls in insertion order.
func (b *ReferenceRowBuilder) Row() SparseRow {
	out := make(SparseRow, len(b.row))
	copy(out, b.row)
	return out
}

// ReferenceRowFromRaw flattens reference rows fetched for one region and
// sorts the result by contig and offset.
func ReferenceRowFromRaw(raw []RawRow) SparseRow {
	b := NewReferenceRowBuilder()
	b.Add(raw...)
	row := b.Row()
	SortRow(row)
	return row
}

// ReferenceRowByKeys prunes the fetched reference calls to keys and orders
// them as keys are ordered. Repeated keys appear once.
func ReferenceRowByKeys(raw []RawRow, keys []string) SparseRow {
	calls := make(map[string]string)
	for _, r := range raw {
		for _, p := range r.Positions {
			calls[p.Key] = p.Call
		}
	}
	row := make(SparseRow, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		call, ok := calls[k]
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		row = append(row, Position{Key: k, Call: call})
	}
	return row
}
