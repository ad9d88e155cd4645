package db

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/yumyai/snpseek/pkg/model"
)

// PositionStore reads one sparse position table. Each record holds the calls
// of one owner over the interval [start_pos, end_pos] of a contig as a JSON
// object mapping offsets to calls.
type PositionStore struct {
	db    *sqlx.DB
	table string
}

type positionRecord struct {
	OwnerID   string `db:"owner_id"`
	Contig    string `db:"contig"`
	Positions string `db:"positions"`
}

// FetchRange returns, per owner whose stored intervals overlap [start, end],
// the calls inside that window.
func (s *PositionStore) FetchRange(ctx context.Context, owners []string, contig string, start, end int) ([]model.RawRow, error) {
	if len(owners) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT owner_id, contig, positions FROM `+s.table+`
		WHERE owner_id IN (?) AND contig = ? AND start_pos <= ? AND end_pos >= ?
		ORDER BY owner_id, start_pos, id`, owners, contig, end, start)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s range query: %w", s.table, err)
	}

	var recs []positionRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch %s %s:%d-%d: %w", s.table, contig, start, end, err)
	}
	return groupRecords(recs, func(_ string, offset int) bool {
		return offset >= start && offset <= end
	})
}

// FetchKeys returns, per owner, the calls whose canonical key is in keys.
// Stored interval boundaries are ignored. contigs narrows the scan and is
// derived from keys when empty.
func (s *PositionStore) FetchKeys(ctx context.Context, owners, contigs, keys []string) ([]model.RawRow, error) {
	if len(owners) == 0 || len(keys) == 0 {
		return nil, nil
	}
	if len(contigs) == 0 {
		contigs = model.DistinctContigs(keys)
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}

	q, args, err := sqlx.In(`SELECT owner_id, contig, positions FROM `+s.table+`
		WHERE owner_id IN (?) AND contig IN (?)
		ORDER BY owner_id, start_pos, id`, owners, contigs)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s key query: %w", s.table, err)
	}

	var recs []positionRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to fetch %s by key: %w", s.table, err)
	}
	return groupRecords(recs, func(key string, _ int) bool {
		_, ok := want[key]
		return ok
	})
}

// groupRecords decodes records and groups kept positions by owner, owners in
// first-seen order, positions of a record by ascending offset.
func groupRecords(recs []positionRecord, keep func(key string, offset int) bool) ([]model.RawRow, error) {
	var rows []model.RawRow
	index := make(map[string]int)
	for _, rec := range recs {
		positions, err := decodePositions(rec, keep)
		if err != nil {
			return nil, err
		}
		i, ok := index[rec.OwnerID]
		if !ok {
			i = len(rows)
			index[rec.OwnerID] = i
			rows = append(rows, model.RawRow{OwnerID: rec.OwnerID})
		}
		rows[i].Positions = append(rows[i].Positions, positions...)
	}
	return rows, nil
}

type offsetCall struct {
	offset int
	call   string
}

func decodePositions(rec positionRecord, keep func(string, int) bool) ([]model.Position, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(rec.Positions), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode positions of %s on %s: %w", rec.OwnerID, rec.Contig, err)
	}

	cells := make([]offsetCall, 0, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 {
			continue
		}
		cells = append(cells, offsetCall{offset: n, call: v})
	}
	slices.SortFunc(cells, func(a, b offsetCall) int { return a.offset - b.offset })

	out := make([]model.Position, 0, len(cells))
	for _, c := range cells {
		key := model.FormatKey(rec.Contig, c.offset)
		if keep(key, c.offset) {
			out = append(out, model.Position{Key: key, Call: c.call})
		}
	}
	return out, nil
}
