package handlers

import (
	"net/http"

	"github.com/jnovak/facecat/internal/catalog"
)

// PhotosHandler serves read access to cataloged Photos.
type PhotosHandler struct {
	store *catalog.Store
}

func NewPhotosHandler(store *catalog.Store) *PhotosHandler {
	return &PhotosHandler{store: store}
}

// Get returns a single Photo by id.
func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}
	photo, err := h.store.GetPhoto(id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// ListForPerson returns every Photo containing at least one Face
// assigned to personID.
func (h *PhotosHandler) ListForPerson(w http.ResponseWriter, r *http.Request) {
	personID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	photos, err := h.store.ListPhotosForPerson(personID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}
