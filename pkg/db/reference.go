package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ReferenceStore reads the reference_genomes table.
type ReferenceStore struct {
	db *sqlx.DB
}

// FindID returns the id of the reference genome called name in snpSet.
func (s *ReferenceStore) FindID(ctx context.Context, name, snpSet string) (string, error) {
	q := s.db.Rebind(`SELECT id FROM reference_genomes WHERE name = ? AND snp_set = ? ORDER BY id LIMIT 1`)

	var id string
	err := s.db.GetContext(ctx, &id, q, name, snpSet)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("reference genome %q in snp set %q: %w", name, snpSet, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up reference genome: %w", err)
	}
	return id, nil
}

// Names lists the distinct reference genome names in order.
func (s *ReferenceStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	if err := s.db.SelectContext(ctx, &names, `SELECT DISTINCT name FROM reference_genomes ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list reference genomes: %w", err)
	}
	return names, nil
}
