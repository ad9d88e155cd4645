package search

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/yumyai/snpseek/internal/util"
	"github.com/yumyai/snpseek/pkg/model"
)

// PositionFetcher runs range and key-list fetches against one position
// store, splitting large owner sets into concurrent chunks.
type PositionFetcher struct {
	name       string
	store      PositionStore
	ownerBatch int
	retry      RetryPolicy
}

func NewPositionFetcher(name string, store PositionStore, ownerBatch int, retry RetryPolicy) *PositionFetcher {
	return &PositionFetcher{name: name, store: store, ownerBatch: ownerBatch, retry: retry}
}

// Range returns the calls of owners inside [start, end] on contig.
func (f *PositionFetcher) Range(ctx context.Context, owners []string, contig string, start, end int) ([]model.RawRow, error) {
	return f.fanOut(ctx, owners, "range", func(ctx context.Context, chunk []string) ([]model.RawRow, error) {
		return f.store.FetchRange(ctx, chunk, contig, start, end)
	})
}

// Keys returns the calls of owners at exactly keys.
func (f *PositionFetcher) Keys(ctx context.Context, owners, contigs, keys []string) ([]model.RawRow, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	return f.fanOut(ctx, owners, "keys", func(ctx context.Context, chunk []string) ([]model.RawRow, error) {
		return f.store.FetchKeys(ctx, chunk, contigs, keys)
	})
}

// fanOut fetches every owner chunk concurrently. Results keep chunk order.
func (f *PositionFetcher) fanOut(ctx context.Context, owners []string, shape string, fetch func(context.Context, []string) ([]model.RawRow, error)) ([]model.RawRow, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	op := f.name + "." + shape
	chunks := util.Chunk(owners, f.ownerBatch)
	results := make([][]model.RawRow, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			rows, err := retryValue(gctx, f.retry, op, func(ctx context.Context) ([]model.RawRow, error) {
				return fetch(ctx, chunk)
			})
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return slices.Concat(results...), nil
}
