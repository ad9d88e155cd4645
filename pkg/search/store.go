// Package search assembles genotype matrices from the variety, reference
// genome and position stores.
package search

import (
	"context"

	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/model"
)

// VarietyStore is the read side of the variety table.
type VarietyStore interface {
	PageIDs(ctx context.Context, f model.VarietyFilter, page, size int) ([]string, error)
	CountIDs(ctx context.Context, f model.VarietyFilter) (int, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.VarietyRecord, error)
	FindByItems(ctx context.Context, items []string, varietySet string) ([]model.VarietyRecord, error)
}

// ReferenceStore resolves reference genomes.
type ReferenceStore interface {
	FindID(ctx context.Context, name, snpSet string) (string, error)
	Names(ctx context.Context) ([]string, error)
}

// PositionStore is one sparse position table.
type PositionStore interface {
	FetchRange(ctx context.Context, owners []string, contig string, start, end int) ([]model.RawRow, error)
	FetchKeys(ctx context.Context, owners, contigs, keys []string) ([]model.RawRow, error)
}

// OptionStore lists dataset options.
type OptionStore interface {
	List(ctx context.Context) ([]db.DatasetOption, error)
}

// Stores bundles the backing stores of an Engine and a Catalog.
type Stores struct {
	Varieties          VarietyStore
	References         ReferenceStore
	VarietyPositions   PositionStore
	ReferencePositions PositionStore
	Options            OptionStore
}

// FromGenoDB wires the SQL stores.
func FromGenoDB(g *db.GenoDB) Stores {
	return Stores{
		Varieties:          g.Varieties,
		References:         g.References,
		VarietyPositions:   g.VarietyPositions,
		ReferencePositions: g.ReferencePositions,
		Options:            g.Options,
	}
}
