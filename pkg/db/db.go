// Package db provides read-only SQL stores backing the genotype search engine.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a single-record lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Table names of the two position stores.
const (
	VarietyPositionTable   = "variety_positions"
	ReferencePositionTable = "reference_positions"
)

// Open connects to driver ("sqlite" or "pgx") and verifies the connection.
func Open(ctx context.Context, driver, dsn string, maxOpenConns int) (*sqlx.DB, error) {
	// modernc registers itself as "sqlite", which sqlx does not know as a
	// question-mark driver.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

// GenoDB groups the stores sharing one connection pool.
type GenoDB struct {
	db                 *sqlx.DB
	Varieties          *VarietyStore
	References         *ReferenceStore
	VarietyPositions   *PositionStore
	ReferencePositions *PositionStore
	Options            *OptionStore
}

func NewGenoDB(db *sqlx.DB) *GenoDB {
	return &GenoDB{
		db:                 db,
		Varieties:          &VarietyStore{db: db},
		References:         &ReferenceStore{db: db},
		VarietyPositions:   &PositionStore{db: db, table: VarietyPositionTable},
		ReferencePositions: &PositionStore{db: db, table: ReferencePositionTable},
		Options:            &OptionStore{db: db},
	}
}

func (g *GenoDB) Close() error {
	return g.db.Close()
}

// Ping checks that the pool can still reach the database.
func (g *GenoDB) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}
