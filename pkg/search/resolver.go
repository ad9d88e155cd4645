package search

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/model"
)

// Resolution is the outcome of variety id resolution. TotalPages is nil
// unless it was requested and the ids came from paging.
type Resolution struct {
	IDs        []string
	TotalPages *int
}

// VarietyIDResolver pages the variety store or passes explicit ids through.
type VarietyIDResolver struct {
	store    VarietyStore
	pageSize int
	retry    RetryPolicy
}

func NewVarietyIDResolver(store VarietyStore, pageSize int, retry RetryPolicy) *VarietyIDResolver {
	return &VarietyIDResolver{store: store, pageSize: pageSize, retry: retry}
}

func (r *VarietyIDResolver) Resolve(ctx context.Context, c model.SearchCriteria) (Resolution, error) {
	if len(c.VarietyIDs) > 0 {
		return Resolution{IDs: slices.Clone(c.VarietyIDs)}, nil
	}

	f := c.Filter()
	if f.Subpopulation == "" {
		// An empty label matches no variety.
		logger.Warn("Empty subpopulation filter, no varieties selected",
			zap.String("variety_set", f.VarietySet),
			zap.String("snp_set", f.SnpSet),
		)
		res := Resolution{IDs: []string{}}
		if c.WantTotalPages {
			zero := 0
			res.TotalPages = &zero
		}
		return res, nil
	}

	var res Resolution
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := retryValue(gctx, r.retry, "variety.page", func(ctx context.Context) ([]string, error) {
			return r.store.PageIDs(ctx, f, c.Page, r.pageSize)
		})
		if err != nil {
			return err
		}
		if ids == nil {
			ids = []string{}
		}
		res.IDs = ids
		return nil
	})
	if c.WantTotalPages {
		g.Go(func() error {
			n, err := retryValue(gctx, r.retry, "variety.count", func(ctx context.Context) (int, error) {
				return r.store.CountIDs(ctx, f)
			})
			if err != nil {
				return err
			}
			pages := (n + r.pageSize - 1) / r.pageSize
			res.TotalPages = &pages
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Resolution{}, err
	}
	return res, nil
}
