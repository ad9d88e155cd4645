package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferenceRowByKeysFollowsCallerOrder(t *testing.T) {
	raw := []RawRow{
		{OwnerID: "R", Positions: []Position{{"chr1 100", "A"}, {"chr2 5", "C"}, {"chr1 7", "G"}}},
	}
	keys := []string{"chr2 5", "chr9 1", "chr1 100", "chr2 5", "chr1 7"}

	row := ReferenceRowByKeys(raw, keys)
	assert.Equal(t, []string{"chr2 5", "chr1 100", "chr1 7"}, row.Keys())
}

func TestReferenceRowFromRawSorted(t *testing.T) {
	raw := []RawRow{
		{OwnerID: "R", Positions: []Position{{"chr1 150", "G"}, {"chr1 100", "A"}}},
	}
	assert.Equal(t, SparseRow{{"chr1 100", "A"}, {"chr1 150", "G"}}, ReferenceRowFromRaw(raw))
}

func TestReferenceRowBuilderPut(t *testing.T) {
	b := NewReferenceRowBuilder()
	b.Put("chr3 1", "A")
	b.Put("chr1 1", "C")
	b.Put("chr3 1", "T")

	assert.Equal(t, SparseRow{{"chr3 1", "T"}, {"chr1 1", "C"}}, b.Row())
}
