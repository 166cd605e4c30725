// Package handlers implements the read/write REST surface over the
// Catalog, Clusterer, and pipeline Runner, in the same respondJSON /
// respondError, chi.URLParam style as the teacher's own handlers.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jnovak/facecat/internal/catalog"
)

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondCatalogError maps a typed catalog.Error to the right HTTP
// status, falling back to 500 for anything unrecognized.
func respondCatalogError(w http.ResponseWriter, err error) {
	switch catalog.KindOf(err) {
	case catalog.KindNotFound:
		respondError(w, http.StatusNotFound, err.Error())
	case catalog.KindConflict:
		respondError(w, http.StatusConflict, err.Error())
	case catalog.KindInvalidInput:
		respondError(w, http.StatusBadRequest, err.Error())
	case catalog.KindInvalidState:
		respondError(w, http.StatusConflict, err.Error())
	case catalog.KindCancelled:
		respondError(w, http.StatusRequestTimeout, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func chiURLParamID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
