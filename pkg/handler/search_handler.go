package handler

import (
	"bytes"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yumyai/snpseek/pkg/handler/request"
	"github.com/yumyai/snpseek/pkg/model"
	"github.com/yumyai/snpseek/pkg/render"
)

const defaultExportFilename = "genotype.xlsx"

func (app *AppContext) GenotypeSearchRange(w http.ResponseWriter, r *http.Request) {
	var req request.GenotypeSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	app.search(w, r, model.ModeRange, req.Criteria())
}

func (app *AppContext) GenotypeSearchSnpList(w http.ResponseWriter, r *http.Request) {
	var req request.GenotypeSearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	app.search(w, r, model.ModeSnpList, req.Criteria())
}

func (app *AppContext) GenotypeSearchLocusList(w http.ResponseWriter, r *http.Request) {
	var req request.GenotypeSearchLocusListRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	c, err := req.Criteria()
	if err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	app.search(w, r, model.ModeLocusList, c)
}

func (app *AppContext) search(w http.ResponseWriter, r *http.Request, mode model.Mode, c model.SearchCriteria) {
	res, err := app.Searcher.Search(r.Context(), mode, c)
	if err != nil {
		writeError(w, r, "Genotype search failed", err)
		return
	}
	writeJSON(w, r, res)
}

func (app *AppContext) GenerateExcel(w http.ResponseWriter, r *http.Request) {
	var req request.ExcelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	sr := req.GenotypeSearchRequest
	app.export(w, r, sr.Mode(), sr.Criteria(), req.VarietyListIDs)
}

func (app *AppContext) GenerateExcelLocus(w http.ResponseWriter, r *http.Request) {
	var req request.ExcelLocusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	c, err := req.GenotypeSearchLocusListRequest.Criteria()
	if err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	app.export(w, r, model.ModeLocusList, c, req.VarietyListIDs)
}

func (app *AppContext) export(w http.ResponseWriter, r *http.Request, mode model.Mode, c model.SearchCriteria, ids []string) {
	data, err := app.Exporter.Bytes(r.Context(), mode, c, ids)
	if err != nil {
		writeError(w, r, "Export failed", err)
		return
	}

	if app.Archive != nil {
		key := "exports/" + uuid.NewString() + ".xlsx"
		if err := app.Archive.Put(r.Context(), key, bytes.NewReader(data), render.ContentType); err != nil {
			// the client still gets its file
			requestLogger(r).Warn("Failed to archive export", zap.String("key", key), zap.Error(err))
		} else {
			w.Header().Set("X-Export-Key", key)
		}
	}

	filename := app.ExportFilename
	if filename == "" {
		filename = defaultExportFilename
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Type", render.ContentType)
	if _, err := w.Write(data); err != nil {
		requestLogger(r).Warn("Failed to send export", zap.Error(err))
	}
}
