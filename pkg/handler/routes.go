package handler

import (
	"net/http"

	"github.com/yumyai/snpseek/pkg/middle"
)

// RegisterRoutes mounts every endpoint on mux. JSON responses are gzipped;
// spreadsheets already are.
func (app *AppContext) RegisterRoutes(mux *http.ServeMux) {
	jsonRoute := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middle.Gzip(h))
	}

	jsonRoute("POST /api/variety/genotypeSearchRange", app.GenotypeSearchRange)
	jsonRoute("POST /api/variety/general/genotypeSearchSnpList", app.GenotypeSearchSnpList)
	jsonRoute("POST /api/variety/general/genotypeSearchLocusList", app.GenotypeSearchLocusList)
	mux.HandleFunc("POST /api/variety/general/generateExcel", app.GenerateExcel)
	mux.HandleFunc("POST /api/variety/general/generateExcelLocus", app.GenerateExcelLocus)

	jsonRoute("POST /api/variety/getAllReferenceGenomeNames", app.AllReferenceGenomeNames)
	jsonRoute("POST /api/variety/getAllSnpSetAndVarietySet", app.AllSnpSetAndVarietySet)
	jsonRoute("POST /api/variety/getVarietiesByIds", app.VarietiesByIDs)
	jsonRoute("POST /api/variety/getVarietyNamesByIds", app.VarietyNamesByIDs)
	jsonRoute("POST /api/variety/general/checkItemsExistence", app.CheckItemsExistence)
	jsonRoute("POST /api/variety/general/checkPositions", app.CheckPositions)

	mux.HandleFunc("GET /api/v1/health", app.HealthCheck)
}
