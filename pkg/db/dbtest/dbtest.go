// Package dbtest opens in-memory sqlite databases carrying the snpseek schema
// and loads fixtures into them.
package dbtest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/model"
)

// Schema is the table layout the stores read from.
const Schema = `
CREATE TABLE varieties (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL DEFAULT '',
	iris_id       TEXT NOT NULL DEFAULT '',
	accession     TEXT NOT NULL DEFAULT '',
	subpopulation TEXT NOT NULL DEFAULT '',
	country       TEXT NOT NULL DEFAULT '',
	snp_set       TEXT NOT NULL DEFAULT '',
	variety_set   TEXT NOT NULL DEFAULT ''
);
CREATE TABLE reference_genomes (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	snp_set     TEXT NOT NULL,
	variety_set TEXT NOT NULL DEFAULT ''
);
CREATE TABLE variety_positions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id  TEXT NOT NULL,
	contig    TEXT NOT NULL,
	start_pos INTEGER NOT NULL,
	end_pos   INTEGER NOT NULL,
	positions TEXT NOT NULL
);
CREATE INDEX idx_variety_positions ON variety_positions (owner_id, contig, start_pos);
CREATE TABLE reference_positions (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id  TEXT NOT NULL,
	contig    TEXT NOT NULL,
	start_pos INTEGER NOT NULL,
	end_pos   INTEGER NOT NULL,
	positions TEXT NOT NULL
);
CREATE INDEX idx_reference_positions ON reference_positions (owner_id, contig, start_pos);
CREATE TABLE dataset_options (
	variety_set    TEXT PRIMARY KEY,
	snp_sets       TEXT NOT NULL,
	subpopulations TEXT NOT NULL
);
`

// Segment is one stored position record.
type Segment struct {
	OwnerID string
	Contig  string
	Start   int
	End     int
	Calls   map[int]string
}

// Open returns a fresh in-memory database with Schema applied. It is closed
// when t finishes.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	// one connection, since every sqlite :memory: connection is its own database
	conn, err := db.Open(context.Background(), "sqlite", ":memory:", 1)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range strings.Split(Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}

// AddVarieties inserts variety records.
func AddVarieties(t testing.TB, conn *sqlx.DB, recs ...model.VarietyRecord) {
	t.Helper()
	for _, r := range recs {
		_, err := conn.NamedExec(`INSERT INTO varieties (id, name, iris_id, accession, subpopulation, country, snp_set, variety_set)
			VALUES (:id, :name, :iris_id, :accession, :subpopulation, :country, :snp_set, :variety_set)`, r)
		if err != nil {
			t.Fatalf("insert variety %s: %v", r.ID, err)
		}
	}
}

// AddReference inserts one reference genome.
func AddReference(t testing.TB, conn *sqlx.DB, id, name, snpSet string) {
	t.Helper()
	if _, err := conn.Exec(`INSERT INTO reference_genomes (id, name, snp_set) VALUES (?, ?, ?)`, id, name, snpSet); err != nil {
		t.Fatalf("insert reference %s: %v", id, err)
	}
}

// AddSegments inserts position records into table.
func AddSegments(t testing.TB, conn *sqlx.DB, table string, segs ...Segment) {
	t.Helper()
	for _, s := range segs {
		calls := make(map[string]string, len(s.Calls))
		for off, c := range s.Calls {
			calls[fmt.Sprint(off)] = c
		}
		body, err := json.Marshal(calls)
		if err != nil {
			t.Fatalf("encode segment: %v", err)
		}
		q := `INSERT INTO ` + table + ` (owner_id, contig, start_pos, end_pos, positions) VALUES (?, ?, ?, ?, ?)`
		if _, err := conn.Exec(q, s.OwnerID, s.Contig, s.Start, s.End, string(body)); err != nil {
			t.Fatalf("insert segment into %s: %v", table, err)
		}
	}
}

// AddRawSegment inserts a record with a literal positions document.
func AddRawSegment(t testing.TB, conn *sqlx.DB, table, owner, contig string, start, end int, positions string) {
	t.Helper()
	q := `INSERT INTO ` + table + ` (owner_id, contig, start_pos, end_pos, positions) VALUES (?, ?, ?, ?, ?)`
	if _, err := conn.Exec(q, owner, contig, start, end, positions); err != nil {
		t.Fatalf("insert raw segment into %s: %v", table, err)
	}
}

// AddOption inserts one dataset option row.
func AddOption(t testing.TB, conn *sqlx.DB, varietySet string, snpSets, subpops []string) {
	t.Helper()
	a, _ := json.Marshal(snpSets)
	b, _ := json.Marshal(subpops)
	if _, err := conn.Exec(`INSERT INTO dataset_options (variety_set, snp_sets, subpopulations) VALUES (?, ?, ?)`, varietySet, string(a), string(b)); err != nil {
		t.Fatalf("insert option %s: %v", varietySet, err)
	}
}
