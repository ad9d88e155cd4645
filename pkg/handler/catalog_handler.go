package handler

import (
	"net/http"

	"github.com/yumyai/snpseek/pkg/handler/request"
)

func (app *AppContext) AllReferenceGenomeNames(w http.ResponseWriter, r *http.Request) {
	names, err := app.Catalog.ReferenceGenomeNames(r.Context())
	if err != nil {
		writeError(w, r, "Failed to list reference genomes", err)
		return
	}
	writeJSON(w, r, names)
}

func (app *AppContext) AllSnpSetAndVarietySet(w http.ResponseWriter, r *http.Request) {
	opts, err := app.Catalog.DatasetOptions(r.Context())
	if err != nil {
		writeError(w, r, "Failed to list dataset options", err)
		return
	}
	writeJSON(w, r, opts)
}

func (app *AppContext) VarietiesByIDs(w http.ResponseWriter, r *http.Request) {
	var req request.VarietiesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	recs, err := app.Catalog.VarietiesByIDs(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, "Failed to load varieties", err)
		return
	}
	writeJSON(w, r, recs)
}

func (app *AppContext) VarietyNamesByIDs(w http.ResponseWriter, r *http.Request) {
	var req request.VarietiesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	names, err := app.Catalog.VarietyNamesByIDs(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, "Failed to load variety names", err)
		return
	}
	writeJSON(w, r, names)
}

func (app *AppContext) CheckItemsExistence(w http.ResponseWriter, r *http.Request) {
	var req request.ItemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	out, err := app.Catalog.CheckItems(r.Context(), req.Items, req.VarietySet)
	if err != nil {
		writeError(w, r, "Failed to check items", err)
		return
	}
	writeJSON(w, r, out)
}

func (app *AppContext) CheckPositions(w http.ResponseWriter, r *http.Request) {
	var req request.PositionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, "Error parsing request", err)
		return
	}
	out, err := app.Catalog.CheckPositions(r.Context(), req.ChromosomePositions, req.ReferenceName, req.SnpSet)
	if err != nil {
		writeError(w, r, "Failed to check positions", err)
		return
	}
	writeJSON(w, r, out)
}
