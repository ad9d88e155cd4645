package model

import (
	"maps"
	"slices"
)

// Assembler accumulates raw rows into a matrix. Conflicting calls for the same
// (owner, key) are joined with "/" in the order they were added.
type Assembler struct {
	cells  map[string]map[string]string
	owners []string
}

func NewAssembler() *Assembler {
	return &Assembler{cells: make(map[string]map[string]string)}
}

// Add merges raw rows into the accumulated state.
func (a *Assembler) Add(raw ...RawRow) {
	for _, r := range raw {
		cells, ok := a.cells[r.OwnerID]
		if !ok {
			cells = make(map[string]string, len(r.Positions))
			a.cells[r.OwnerID] = cells
			a.owners = append(a.owners, r.OwnerID)
		}
		for _, p := range r.Positions {
			prev, exists := cells[p.Key]
			cells[p.Key] = MergeCall(prev, p.Call, exists)
		}
	}
}

// MergeCall combines an existing call with a new one.
func MergeCall(prev, next string, exists bool) string {
	if !exists {
		return next
	}
	if prev == next {
		return prev
	}
	return prev + "/" + next
}

// Build returns the matrix. Every requested id gets exactly one row; owners
// seen in raw data but not requested follow in id order.
func (a *Assembler) Build(requested []string) Matrix {
	m := Matrix{Rows: make(map[string]SparseRow, len(a.cells)+len(requested))}
	for _, id := range requested {
		if _, dup := m.Rows[id]; dup {
			continue
		}
		m.IDs = append(m.IDs, id)
		m.Rows[id] = a.row(id)
	}

	var extra []string
	for _, id := range a.owners {
		if _, ok := m.Rows[id]; !ok {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		m.IDs = append(m.IDs, id)
		m.Rows[id] = a.row(id)
	}
	return m
}

func (a *Assembler) row(id string) SparseRow {
	cells := a.cells[id]
	row := make(SparseRow, 0, len(cells))
	for _, k := range slices.Sorted(maps.Keys(cells)) {
		row = append(row, Position{Key: k, Call: cells[k]})
	}
	SortRow(row)
	return row
}

// Merge assembles raw into a matrix covering requested.
func Merge(raw []RawRow, requested []string) Matrix {
	a := NewAssembler()
	a.Add(raw...)
	return a.Build(requested)
}
