package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yumyai/snpseek/pkg/blob"
	"github.com/yumyai/snpseek/pkg/db"
	"github.com/yumyai/snpseek/pkg/db/dbtest"
	"github.com/yumyai/snpseek/pkg/model"
	"github.com/yumyai/snpseek/pkg/render"
	"github.com/yumyai/snpseek/pkg/search"
)

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("db gone") }

func newTestServer(t *testing.T) (*http.ServeMux, *AppContext, *blob.Memory) {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.AddVarieties(t, conn,
		model.VarietyRecord{ID: "V1", Name: "IR64", IrisID: "IRIS 1", Accession: "A1", Subpopulation: "indx", SnpSet: "3k", VarietySet: "3K"},
		model.VarietyRecord{ID: "V2", Name: "Azucena", IrisID: "IRIS 2", Accession: "A2", Subpopulation: "trop", SnpSet: "3k", VarietySet: "3K"},
	)
	dbtest.AddReference(t, conn, "R1", "Japonica Nipponbare", "3k")
	dbtest.AddSegments(t, conn, db.ReferencePositionTable,
		dbtest.Segment{OwnerID: "R1", Contig: "chr1", Start: 1, End: 1000, Calls: map[int]string{100: "A", 150: "G"}},
	)
	dbtest.AddSegments(t, conn, db.VarietyPositionTable,
		dbtest.Segment{OwnerID: "V1", Contig: "chr1", Start: 1, End: 1000, Calls: map[int]string{100: "A", 150: "T"}},
	)

	g := db.NewGenoDB(conn)
	stores := search.FromGenoDB(g)
	opts := search.DefaultOptions()
	engine := search.NewEngine(stores, opts)
	archive := blob.NewMemory()
	app := &AppContext{
		Searcher:       engine,
		Exporter:       render.NewGenotypeExporter(engine, ""),
		Catalog:        search.NewCatalog(stores, opts),
		Health:         g,
		Archive:        archive,
		ExportFilename: "genotype.xlsx",
	}
	mux := http.NewServeMux()
	app.RegisterRoutes(mux)
	return mux, app, archive
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenotypeSearchEndpoints(t *testing.T) {
	mux, _, _ := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		check  func(t *testing.T, res model.Result)
	}{
		{
			name: "Range",
			path: "/api/variety/genotypeSearchRange",
			body: `{"referenceGenome":"Japonica Nipponbare","snpSet":"3k","varietySet":"3K","subpopulation":"All",
				"contig":"chr1","start":100,"end":200,"page":0,"askTotalPages":true,"askReferenceGenome":true}`,
			status: http.StatusOK,
			check: func(t *testing.T, res model.Result) {
				require.NotNil(t, res.TotalPages)
				assert.Equal(t, 1, *res.TotalPages)
				assert.Equal(t, []string{"chr1 100", "chr1 150"}, res.ReferenceRow.Keys())
				assert.Equal(t, []string{"V1", "V2"}, res.Matrix.IDs)
				assert.Equal(t, "IR64", res.Varieties["V1"].Name)
			},
		},
		{
			name: "SnpList",
			path: "/api/variety/general/genotypeSearchSnpList",
			body: `{"referenceGenome":"Japonica Nipponbare","snpSet":"3k","varietyList":["V1"],
				"snpList":["chr1 150","chr1 100"],"askReferenceGenome":true}`,
			status: http.StatusOK,
			check: func(t *testing.T, res model.Result) {
				assert.Nil(t, res.TotalPages)
				assert.Equal(t, []string{"chr1 150", "chr1 100"}, res.ReferenceRow.Keys())
				assert.Equal(t, []string{"chr1 100", "chr1 150"}, res.Matrix.Row("V1").Keys())
			},
		},
		{
			name: "LocusList",
			path: "/api/variety/general/genotypeSearchLocusList",
			body: `{"snpSet":"3k","varietySet":"3K","subpopulation":"indx",
				"contigs":["chr1"],"starts":[120],"ends":[200]}`,
			status: http.StatusOK,
			check: func(t *testing.T, res model.Result) {
				assert.Nil(t, res.ReferenceRow)
				assert.Equal(t, model.SparseRow{{Key: "chr1 150", Call: "T"}}, res.Matrix.Row("V1"))
			},
		},
		{
			name:   "LocusListMismatchedLists",
			path:   "/api/variety/general/genotypeSearchLocusList",
			body:   `{"contigs":["chr1","chr2"],"starts":[1],"ends":[2,3]}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "UnknownReference",
			path:   "/api/variety/genotypeSearchRange",
			body:   `{"referenceGenome":"Nope","snpSet":"3k","varietyList":["V1"],"contig":"chr1","start":1,"end":2,"askReferenceGenome":true}`,
			status: http.StatusNotFound,
		},
		{
			name:   "MalformedBody",
			path:   "/api/variety/genotypeSearchRange",
			body:   `{"contig":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "MissingContig",
			path:   "/api/variety/genotypeSearchRange",
			body:   `{"varietyList":["V1"]}`,
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, tt.path, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.check == nil {
				return
			}
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var res model.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			tt.check(t, res)
		})
	}
}

func TestGenerateExcel(t *testing.T) {
	mux, _, archive := newTestServer(t)

	rec := post(t, mux, "/api/variety/general/generateExcel", `{"genotypeSearchRequest":{
		"referenceGenome":"Japonica Nipponbare","snpSet":"3k","varietySet":"3K","subpopulation":"All",
		"contig":"chr1","start":100,"end":200},"varietyListIds":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, render.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=genotype.xlsx", rec.Header().Get("Content-Disposition"))

	key := rec.Header().Get("X-Export-Key")
	require.NotEmpty(t, key)
	stored, ct, ok := archive.Get(key)
	require.True(t, ok)
	assert.Equal(t, render.ContentType, ct)
	assert.Equal(t, rec.Body.Bytes(), stored)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(render.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "IR64", rows[2][0])
	assert.Equal(t, "1", rows[2][5])
	assert.Equal(t, "Azucena", rows[3][0])
}

func TestGenerateExcelLocus(t *testing.T) {
	mux, app, _ := newTestServer(t)
	app.Archive = nil

	rec := post(t, mux, "/api/variety/general/generateExcelLocus", `{"genotypeSearchLocusListRequest":{
		"referenceGenome":"Japonica Nipponbare","snpSet":"3k","varietySet":"3K","subpopulation":"All",
		"contigs":["chr1"],"starts":[1],"ends":[120]},"varietyListIds":["V2"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Export-Key"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(render.SheetName, "G1")
	require.NoError(t, err)
	assert.Equal(t, "chr1 100", v)
	v, err = f.GetCellValue(render.SheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Azucena", v)
}

func TestCatalogEndpoints(t *testing.T) {
	mux, _, _ := newTestServer(t)

	rec := post(t, mux, "/api/variety/getAllReferenceGenomeNames", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Japonica Nipponbare"]`, rec.Body.String())

	rec = post(t, mux, "/api/variety/getVarietyNamesByIds", `{"ids":["V2","V1"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["IR64","Azucena"]`, rec.Body.String())

	rec = post(t, mux, "/api/variety/general/checkItemsExistence", `{"items":["IR64","ghost"],"varietySet":"3K"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var items search.ItemCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items.Existing, 1)
	assert.Equal(t, []string{"ghost"}, items.NonExisting)

	rec = post(t, mux, "/api/variety/general/checkPositions", `{"chromosomePositions":["chr1 100","chr1 101"],"referenceName":"Japonica Nipponbare","snpSet":"3k"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"existing":["chr1 100"],"nonExisting":["chr1 101"]}`, rec.Body.String())

	rec = post(t, mux, "/api/variety/getAllSnpSetAndVarietySet", ``)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	mux, app, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Health)

	app.Health = downPinger{}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
