package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/model"
)

// Catalog answers the lookup queries that sit beside the genotype searches.
type Catalog struct {
	varieties  VarietyStore
	references ReferenceStore
	options    OptionStore
	locator    *ReferenceGenomeLocator
	positions  *PositionFetcher
	retry      RetryPolicy
}

func NewCatalog(s Stores, opts Options) *Catalog {
	return &Catalog{
		varieties:  s.Varieties,
		references: s.References,
		options:    s.Options,
		locator:    NewReferenceGenomeLocator(s.References, opts.Retry),
		positions:  NewPositionFetcher("reference_positions", s.ReferencePositions, opts.OwnerBatchSize, opts.Retry),
		retry:      opts.Retry,
	}
}

// ItemCheck splits requested variety items into found records and the items
// nothing matched.
type ItemCheck struct {
	Existing    []model.VarietyRecord `json:"existing"`
	NonExisting []string              `json:"nonExisting"`
}

// PositionCheck splits "<contig> <offset>" entries by presence in a
// reference genome.
type PositionCheck struct {
	Existing    []string `json:"existing"`
	NonExisting []string `json:"nonExisting"`
}

func (c *Catalog) ReferenceGenomeNames(ctx context.Context) ([]string, error) {
	names, err := retryValue(ctx, c.retry, "reference.names", c.references.Names)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (c *Catalog) DatasetOptions(ctx context.Context) ([]db.DatasetOption, error) {
	opts, err := retryValue(ctx, c.retry, "options.list", c.options.List)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []db.DatasetOption{}
	}
	return opts, nil
}

func (c *Catalog) VarietiesByIDs(ctx context.Context, ids []string) ([]model.VarietyRecord, error) {
	recs, err := retryValue(ctx, c.retry, "variety.find", func(ctx context.Context) ([]model.VarietyRecord, error) {
		return c.varieties.FindByIDs(ctx, ids)
	})
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []model.VarietyRecord{}
	}
	return recs, nil
}

func (c *Catalog) VarietyNamesByIDs(ctx context.Context, ids []string) ([]string, error) {
	recs, err := c.VarietiesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names, nil
}

// CheckItems matches items against the name, IRIS id and accession of the
// varieties of varietySet.
func (c *Catalog) CheckItems(ctx context.Context, items []string, varietySet string) (ItemCheck, error) {
	recs, err := retryValue(ctx, c.retry, "variety.items", func(ctx context.Context) ([]model.VarietyRecord, error) {
		return c.varieties.FindByItems(ctx, items, varietySet)
	})
	if err != nil {
		return ItemCheck{}, err
	}

	found := make(map[string]struct{}, len(recs)*3)
	for _, r := range recs {
		for _, v := range []string{r.Name, r.IrisID, r.Accession} {
			if v != "" {
				found[v] = struct{}{}
			}
		}
	}

	out := ItemCheck{Existing: recs, NonExisting: []string{}}
	if out.Existing == nil {
		out.Existing = []model.VarietyRecord{}
	}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := found[it]; ok {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out.NonExisting = append(out.NonExisting, it)
	}
	return out, nil
}

// CheckPositions classifies entries against the reference genome named
// referenceName in snpSet. Entries that are not "<contig> <offset>" are
// dropped.
func (c *Catalog) CheckPositions(ctx context.Context, positions []string, referenceName, snpSet string) (PositionCheck, error) {
	var keys []string
	for _, p := range positions {
		parts := strings.Split(p, " ")
		if len(parts) != 2 {
			continue
		}
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			continue
		}
		keys = append(keys, model.FormatKey(parts[0], n))
	}

	id, err := c.locator.Locate(ctx, referenceName, snpSet)
	if err != nil {
		return PositionCheck{}, err
	}

	out := PositionCheck{Existing: []string{}, NonExisting: []string{}}
	if len(keys) == 0 {
		return out, nil
	}
	raw, err := c.positions.Keys(ctx, []string{id}, nil, keys)
	if err != nil {
		return PositionCheck{}, fmt.Errorf("check positions: %w", err)
	}
	present := model.Merge(raw, []string{id}).Row(id).Map()
	for _, k := range keys {
		if _, ok := present[k]; ok {
			out.Existing = append(out.Existing, k)
		} else {
			out.NonExisting = append(out.NonExisting, k)
		}
	}
	return out, nil
}
