package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yumyai/snpseek/internal/util"
	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/model"
)

// Options sizes the engine's batches and deadlines.
type Options struct {
	PageSize       int
	LocusBatchSize int
	OwnerBatchSize int
	RequestTimeout time.Duration
	Retry          RetryPolicy
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		PageSize:       10,
		LocusBatchSize: 10,
		OwnerBatchSize: 500,
		RequestTimeout: 60 * time.Second,
		Retry: RetryPolicy{
			Attempts:       3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			LeafTimeout:    15 * time.Second,
		},
	}
}

// Engine runs the three genotype search modes. It holds no per-request state.
type Engine struct {
	resolver           *VarietyIDResolver
	locator            *ReferenceGenomeLocator
	varietyPositions   *PositionFetcher
	referencePositions *PositionFetcher
	joiner             *VarietyMetadataJoiner
	locusBatch         int
	requestTimeout     time.Duration
}

func NewEngine(s Stores, opts Options) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.LocusBatchSize <= 0 {
		opts.LocusBatchSize = 10
	}
	return &Engine{
		resolver:           NewVarietyIDResolver(s.Varieties, opts.PageSize, opts.Retry),
		locator:            NewReferenceGenomeLocator(s.References, opts.Retry),
		varietyPositions:   NewPositionFetcher("variety_positions", s.VarietyPositions, opts.OwnerBatchSize, opts.Retry),
		referencePositions: NewPositionFetcher("reference_positions", s.ReferencePositions, opts.OwnerBatchSize, opts.Retry),
		joiner:             NewVarietyMetadataJoiner(s.Varieties, opts.Retry),
		locusBatch:         opts.LocusBatchSize,
		requestTimeout:     opts.RequestTimeout,
	}
}

func (e *Engine) SearchRange(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	return e.Search(ctx, model.ModeRange, c)
}

func (e *Engine) SearchSnpList(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	return e.Search(ctx, model.ModeSnpList, c)
}

func (e *Engine) SearchLocusList(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	return e.Search(ctx, model.ModeLocusList, c)
}

// Search validates c and runs it in mode under the request deadline. Any
// failing branch cancels the rest and no partial result is returned.
func (e *Engine) Search(ctx context.Context, mode model.Mode, c model.SearchCriteria) (*model.Result, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	logger.Debug("Genotype search",
		zap.Stringer("mode", mode),
		zap.Int("page", c.Page),
		zap.Int("explicit_ids", len(c.VarietyIDs)),
		zap.Bool("reference", c.WantReferenceRow),
		zap.Bool("total_pages", c.WantTotalPages),
	)

	start := time.Now()
	var (
		res *model.Result
		err error
	)
	switch mode {
	case model.ModeRange:
		res, err = e.searchRange(ctx, c)
	case model.ModeSnpList:
		res, err = e.searchSnpList(ctx, c)
	case model.ModeLocusList:
		res, err = e.searchLocusList(ctx, c)
	}
	searchDuration.WithLabelValues(mode.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		searchTotal.WithLabelValues(mode.String(), "error").Inc()
		return nil, fmt.Errorf("%s search: %w", mode, err)
	}
	searchTotal.WithLabelValues(mode.String(), "ok").Inc()
	res.Mode = mode
	return res, nil
}

func (e *Engine) searchRange(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	var (
		ref  model.SparseRow
		res  Resolution
		rows []model.RawRow
	)
	g, gctx := errgroup.WithContext(ctx)
	if c.WantReferenceRow {
		g.Go(func() error {
			id, err := e.locator.Locate(gctx, c.ReferenceGenome, c.SnpSet)
			if err != nil {
				return err
			}
			raw, err := e.referencePositions.Range(gctx, []string{id}, c.Contig, c.Start, c.End)
			if err != nil {
				return err
			}
			ref = model.ReferenceRowFromRaw(raw)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		if res, err = e.resolver.Resolve(gctx, c); err != nil {
			return err
		}
		rows, err = e.varietyPositions.Range(gctx, res.IDs, c.Contig, c.Start, c.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e.finish(ctx, c, res, model.Merge(rows, res.IDs), ref)
}

func (e *Engine) searchSnpList(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	contigs := model.DistinctContigs(c.SnpKeys)
	var (
		ref  model.SparseRow
		res  Resolution
		rows []model.RawRow
	)
	g, gctx := errgroup.WithContext(ctx)
	if c.WantReferenceRow {
		g.Go(func() error {
			id, err := e.locator.Locate(gctx, c.ReferenceGenome, c.SnpSet)
			if err != nil {
				return err
			}
			raw, err := e.referencePositions.Keys(gctx, []string{id}, contigs, c.SnpKeys)
			if err != nil {
				return err
			}
			// caller order, not contig/offset order
			ref = model.ReferenceRowByKeys(raw, c.SnpKeys)
			return nil
		})
	}
	g.Go(func() error {
		var err error
		if res, err = e.resolver.Resolve(gctx, c); err != nil {
			return err
		}
		rows, err = e.varietyPositions.Keys(gctx, res.IDs, contigs, c.SnpKeys)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return e.finish(ctx, c, res, model.Merge(rows, res.IDs), ref)
}

func (e *Engine) searchLocusList(ctx context.Context, c model.SearchCriteria) (*model.Result, error) {
	var (
		res   Resolution
		refID string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = e.resolver.Resolve(gctx, c)
		return err
	})
	if c.WantReferenceRow {
		g.Go(func() error {
			var err error
			refID, err = e.locator.Locate(gctx, c.ReferenceGenome, c.SnpSet)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asm := model.NewAssembler()
	refRow := model.NewReferenceRowBuilder()
	for n, batch := range util.Chunk(c.Loci, e.locusBatch) {
		varRows := make([][]model.RawRow, len(batch))
		refRows := make([][]model.RawRow, len(batch))

		bg, bctx := errgroup.WithContext(ctx)
		for i, l := range batch {
			bg.Go(func() error {
				rows, err := e.varietyPositions.Range(bctx, res.IDs, l.Contig, l.Start, l.End)
				varRows[i] = rows
				return err
			})
			if c.WantReferenceRow {
				bg.Go(func() error {
					rows, err := e.referencePositions.Range(bctx, []string{refID}, l.Contig, l.Start, l.End)
					refRows[i] = rows
					return err
				})
			}
		}
		if err := bg.Wait(); err != nil {
			return nil, fmt.Errorf("locus batch %d: %w", n, err)
		}

		// window order, whatever order the fetches finished in
		for i := range batch {
			asm.Add(varRows[i]...)
			refRow.Add(refRows[i]...)
		}
	}
	return e.finish(ctx, c, res, asm.Build(res.IDs), refRow.Row())
}

// finish joins metadata and fills in the optional parts of the result.
func (e *Engine) finish(ctx context.Context, c model.SearchCriteria, res Resolution, m model.Matrix, ref model.SparseRow) (*model.Result, error) {
	varieties, err := e.joiner.Join(ctx, m.IDs)
	if err != nil {
		return nil, err
	}
	out := &model.Result{
		TotalPages: res.TotalPages,
		Matrix:     m,
		Varieties:  varieties,
	}
	if c.WantReferenceRow {
		if ref == nil {
			ref = model.SparseRow{}
		}
		out.ReferenceRow = &ref
	}
	return out, nil
}
