package search

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/model"
)

var errTransient = errors.New("connection reset")

type fakeVarieties struct {
	recs []model.VarietyRecord
}

func (f *fakeVarieties) match(flt model.VarietyFilter) []string {
	var ids []string
	for _, r := range f.recs {
		if r.SnpSet != flt.SnpSet || r.VarietySet != flt.VarietySet {
			continue
		}
		if flt.Subpopulation != model.AllSubpopulations && r.Subpopulation != flt.Subpopulation {
			continue
		}
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeVarieties) PageIDs(_ context.Context, flt model.VarietyFilter, page, size int) ([]string, error) {
	ids := f.match(flt)
	lo := min(page*size, len(ids))
	hi := min(lo+size, len(ids))
	return ids[lo:hi], nil
}

func (f *fakeVarieties) CountIDs(_ context.Context, flt model.VarietyFilter) (int, error) {
	return len(f.match(flt)), nil
}

func (f *fakeVarieties) FindByIDs(_ context.Context, ids []string) ([]model.VarietyRecord, error) {
	var out []model.VarietyRecord
	for _, r := range f.recs {
		if slices.Contains(ids, r.ID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeVarieties) FindByItems(context.Context, []string, string) ([]model.VarietyRecord, error) {
	return nil, nil
}

type fakeReferences struct {
	mu    sync.Mutex
	calls int
	ids   map[string]string // name -> id
}

func (f *fakeReferences) FindID(_ context.Context, name, _ string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	id, ok := f.ids[name]
	if !ok {
		return "", db.ErrNotFound
	}
	return id, nil
}

func (f *fakeReferences) Names(context.Context) ([]string, error) {
	return nil, nil
}

// fakePositions serves rows from memory. It can fail its first calls, or
// block until the caller gives up.
type fakePositions struct {
	rows      map[string][]model.Position
	failFirst int
	block     bool

	mu    sync.Mutex
	calls int
}

func (f *fakePositions) hit(ctx context.Context) error {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if n <= f.failFirst {
		return errTransient
	}
	return nil
}

func (f *fakePositions) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePositions) collect(owners []string, keep func(model.Position) bool) []model.RawRow {
	var out []model.RawRow
	for _, o := range owners {
		var ps []model.Position
		for _, p := range f.rows[o] {
			if keep(p) {
				ps = append(ps, p)
			}
		}
		if len(ps) > 0 {
			out = append(out, model.RawRow{OwnerID: o, Positions: ps})
		}
	}
	return out
}

func (f *fakePositions) FetchRange(ctx context.Context, owners []string, contig string, start, end int) ([]model.RawRow, error) {
	if err := f.hit(ctx); err != nil {
		return nil, err
	}
	return f.collect(owners, func(p model.Position) bool {
		c, off, ok := model.ParseKey(p.Key)
		return ok && c == contig && off >= start && off <= end
	}), nil
}

func (f *fakePositions) FetchKeys(ctx context.Context, owners, _ []string, keys []string) ([]model.RawRow, error) {
	if err := f.hit(ctx); err != nil {
		return nil, err
	}
	return f.collect(owners, func(p model.Position) bool {
		return slices.Contains(keys, p.Key)
	}), nil
}
