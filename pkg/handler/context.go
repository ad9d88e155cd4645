package handler

// DI for all handlers.

import (
	"context"

	"github.com/yumyai/snpseek/pkg/blob"
	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/model"
	"github.com/yumyai/snpseek/pkg/search"
)

// Searcher runs one genotype search.
type Searcher interface {
	Search(ctx context.Context, mode model.Mode, c model.SearchCriteria) (*model.Result, error)
}

// Exporter renders a search into a spreadsheet.
type Exporter interface {
	Bytes(ctx context.Context, mode model.Mode, c model.SearchCriteria, varietyIDs []string) ([]byte, error)
}

// Catalog answers the lookup endpoints.
type Catalog interface {
	ReferenceGenomeNames(ctx context.Context) ([]string, error)
	DatasetOptions(ctx context.Context) ([]db.DatasetOption, error)
	VarietiesByIDs(ctx context.Context, ids []string) ([]model.VarietyRecord, error)
	VarietyNamesByIDs(ctx context.Context, ids []string) ([]string, error)
	CheckItems(ctx context.Context, items []string, varietySet string) (search.ItemCheck, error)
	CheckPositions(ctx context.Context, positions []string, referenceName, snpSet string) (search.PositionCheck, error)
}

// Pinger reports backing store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type AppContext struct {
	Searcher       Searcher
	Exporter       Exporter
	Catalog        Catalog
	Health         Pinger     // optional
	Archive        blob.Store // optional, receives a copy of every export
	ExportFilename string
}
