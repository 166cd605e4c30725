package handlers

import (
	"net/http"
	"strconv"

	"github.com/jnovak/facecat/internal/catalog"
)

// FacesHandler serves read access to detected Faces.
type FacesHandler struct {
	store *catalog.Store
}

func NewFacesHandler(store *catalog.Store) *FacesHandler {
	return &FacesHandler{store: store}
}

// Get returns a single Face by id.
func (h *FacesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid face id")
		return
	}
	face, err := h.store.GetFace(id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, face)
}

// ListForPhoto returns every Face detected in a given Photo.
func (h *FacesHandler) ListForPhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid photo id")
		return
	}
	faces, err := h.store.ListFacesForPhoto(photoID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faces)
}

// ListForCluster returns every Face currently assigned to a Cluster.
func (h *FacesHandler) ListForCluster(w http.ResponseWriter, r *http.Request) {
	clusterID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	faces, err := h.store.ListFacesForCluster(clusterID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faces)
}

// List handles "/faces?unclustered=true" as a convenience for the
// review UI's incremental-clustering queue.
func (h *FacesHandler) List(w http.ResponseWriter, r *http.Request) {
	if unclustered, _ := strconv.ParseBool(r.URL.Query().Get("unclustered")); unclustered {
		faces, err := h.store.ListUnclusteredFaces()
		if err != nil {
			respondCatalogError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, faces)
		return
	}
	faces, err := h.store.ListAllFacesWithEmbeddings()
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faces)
}
