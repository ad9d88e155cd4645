package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/db/dbtest"
	"github.com/yumyai/snpseek/pkg/model"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.AddVarieties(t, conn,
		model.VarietyRecord{ID: "V1", Name: "IR64", IrisID: "IRIS 1", Accession: "A1", VarietySet: "3K"},
		model.VarietyRecord{ID: "V2", Name: "Azucena", IrisID: "IRIS 2", Accession: "A2", VarietySet: "3K"},
		model.VarietyRecord{ID: "V3", Name: "Kasalath", IrisID: "IRIS 3", Accession: "A3", VarietySet: "HDRA"},
	)
	dbtest.AddReference(t, conn, "R1", "Japonica Nipponbare", "3k")
	dbtest.AddSegments(t, conn, db.ReferencePositionTable,
		dbtest.Segment{OwnerID: "R1", Contig: "chr1", Start: 1, End: 500, Calls: map[int]string{10: "A", 20: "C"}},
		dbtest.Segment{OwnerID: "R1", Contig: "chr3", Start: 1, End: 500, Calls: map[int]string{30: "G"}},
	)
	dbtest.AddOption(t, conn, "3K", []string{"3k"}, []string{"All", "indx"})
	return NewCatalog(FromGenoDB(db.NewGenoDB(conn)), testOptions())
}

func TestCheckItems(t *testing.T) {
	c := newTestCatalog(t)

	got, err := c.CheckItems(context.Background(), []string{"IR64", "IRIS 2", "Kasalath", "nope", "nope"}, "3K")
	require.NoError(t, err)

	require.Len(t, got.Existing, 2)
	assert.Equal(t, "V1", got.Existing[0].ID)
	assert.Equal(t, "V2", got.Existing[1].ID)
	assert.Equal(t, []string{"Kasalath", "nope"}, got.NonExisting)
}

func TestCheckPositions(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	got, err := c.CheckPositions(ctx, []string{"chr3 30", "chr1 11", "chr1 10", "garbage", "chr1 x", "chr1 20 extra"}, "Japonica Nipponbare", "3k")
	require.NoError(t, err)
	assert.Equal(t, []string{"chr3 30", "chr1 10"}, got.Existing)
	assert.Equal(t, []string{"chr1 11"}, got.NonExisting)

	_, err = c.CheckPositions(ctx, []string{"chr1 10"}, "Unknown", "3k")
	assert.True(t, errors.Is(err, ErrReferenceNotFound), "got %v", err)
}

func TestCatalogLookups(t *testing.T) {
	c := newTestCatalog(t)
	ctx := context.Background()

	names, err := c.ReferenceGenomeNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Japonica Nipponbare"}, names)

	opts, err := c.DatasetOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, []string{"All", "indx"}, opts[0].Subpopulations)

	recs, err := c.VarietiesByIDs(ctx, []string{"V3", "V1"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	varietyNames, err := c.VarietyNamesByIDs(ctx, []string{"V3", "V1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"IR64", "Kasalath"}, varietyNames)

	empty, err := c.VarietiesByIDs(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
