package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// DatasetOption lists the SNP sets and subpopulations available for one
// variety set.
type DatasetOption struct {
	VarietySet     string   `json:"varietySet"`
	SnpSets        []string `json:"snpSets"`
	Subpopulations []string `json:"subpopulations"`
}

// OptionStore reads the dataset_options table.
type OptionStore struct {
	db *sqlx.DB
}

type optionRecord struct {
	VarietySet     string `db:"variety_set"`
	SnpSets        string `db:"snp_sets"`
	Subpopulations string `db:"subpopulations"`
}

// List returns every dataset option ordered by variety set.
func (s *OptionStore) List(ctx context.Context) ([]DatasetOption, error) {
	var recs []optionRecord
	if err := s.db.SelectContext(ctx, &recs, `SELECT variety_set, snp_sets, subpopulations FROM dataset_options ORDER BY variety_set`); err != nil {
		return nil, fmt.Errorf("failed to list dataset options: %w", err)
	}

	out := make([]DatasetOption, 0, len(recs))
	for _, r := range recs {
		opt := DatasetOption{VarietySet: r.VarietySet}
		if err := json.Unmarshal([]byte(r.SnpSets), &opt.SnpSets); err != nil {
			return nil, fmt.Errorf("failed to decode snp sets of %s: %w", r.VarietySet, err)
		}
		if err := json.Unmarshal([]byte(r.Subpopulations), &opt.Subpopulations); err != nil {
			return nil, fmt.Errorf("failed to decode subpopulations of %s: %w", r.VarietySet, err)
		}
		out = append(out, opt)
	}
	return out, nil
}
