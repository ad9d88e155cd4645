package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yumyai/snpseek/pkg/model"
)

const varietyColumns = `id, name, iris_id, accession, subpopulation, country, snp_set, variety_set`

// VarietyStore reads the varieties table.
type VarietyStore struct {
	db *sqlx.DB
}

func varietyWhere(f model.VarietyFilter) (string, []any) {
	where := `snp_set = ? AND variety_set = ?`
	args := []any{f.SnpSet, f.VarietySet}
	if f.Subpopulation != model.AllSubpopulations {
		where += ` AND subpopulation = ?`
		args = append(args, f.Subpopulation)
	}
	return where, args
}

// PageIDs returns page (0-based) of the ids matching f in ascending id order.
func (s *VarietyStore) PageIDs(ctx context.Context, f model.VarietyFilter, page, size int) ([]string, error) {
	where, args := varietyWhere(f)
	q := s.db.Rebind(`SELECT id FROM varieties WHERE ` + where + ` ORDER BY id LIMIT ? OFFSET ?`)
	args = append(args, size, page*size)

	var ids []string
	if err := s.db.SelectContext(ctx, &ids, q, args...); err != nil {
		return nil, fmt.Errorf("failed to page variety ids: %w", err)
	}
	return ids, nil
}

// CountIDs counts the ids matching f.
func (s *VarietyStore) CountIDs(ctx context.Context, f model.VarietyFilter) (int, error) {
	where, args := varietyWhere(f)
	q := s.db.Rebind(`SELECT COUNT(*) FROM varieties WHERE ` + where)

	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, fmt.Errorf("failed to count variety ids: %w", err)
	}
	return n, nil
}

// FindByIDs bulk loads records. Unknown ids are skipped.
func (s *VarietyStore) FindByIDs(ctx context.Context, ids []string) ([]model.VarietyRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT `+varietyColumns+` FROM varieties WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build variety lookup: %w", err)
	}

	var recs []model.VarietyRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to load varieties: %w", err)
	}
	return recs, nil
}

// FindByItems returns records of varietySet whose name, IRIS id or accession
// equals one of items.
func (s *VarietyStore) FindByItems(ctx context.Context, items []string, varietySet string) ([]model.VarietyRecord, error) {
	if len(items) == 0 {
		return nil, nil
	}
	q, args, err := sqlx.In(`SELECT `+varietyColumns+` FROM varieties
		WHERE variety_set = ? AND (name IN (?) OR iris_id IN (?) OR accession IN (?))
		ORDER BY id`, varietySet, items, items, items)
	if err != nil {
		return nil, fmt.Errorf("failed to build item lookup: %w", err)
	}

	var recs []model.VarietyRecord
	if err := s.db.SelectContext(ctx, &recs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to load varieties by item: %w", err)
	}
	return recs, nil
}
