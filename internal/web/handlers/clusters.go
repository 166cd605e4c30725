package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/cluster"
)

// ClustersHandler exposes the Clusterer's review-and-correct surface:
// list, representative face, merge, split, person assignment, and
// merge suggestions.
type ClustersHandler struct {
	store  *catalog.Store
	engine *cluster.Engine
}

func NewClustersHandler(store *catalog.Store, engine *cluster.Engine) *ClustersHandler {
	return &ClustersHandler{store: store, engine: engine}
}

// List returns every Cluster.
func (h *ClustersHandler) List(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.store.ListClusters()
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, clusters)
}

// Stats returns per-Cluster statistics for the review UI.
func (h *ClustersHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.engine.Stats()
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Representative returns the representative Face of a Cluster.
func (h *ClustersHandler) Representative(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	face, err := h.engine.Representative(id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, face)
}

type mergeRequest struct {
	SourceID int64 `json:"source_id"`
}

// Merge merges SourceID into the cluster named in the URL, the
// survivor absorbing the source's faces.
func (h *ClustersHandler) Merge(w http.ResponseWriter, r *http.Request) {
	targetID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	var req mergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mergedID, err := h.engine.Merge(targetID, req.SourceID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"cluster_id": mergedID})
}

type splitRequest struct {
	FaceIDs []int64 `json:"face_ids"`
}

// Split moves the given Face ids out of the cluster named in the URL
// into a new Cluster.
func (h *ClustersHandler) Split(w http.ResponseWriter, r *http.Request) {
	sourceID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	var req splitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newID, err := h.engine.Split(sourceID, req.FaceIDs)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"cluster_id": newID})
}

type assignPersonRequest struct {
	PersonID int64 `json:"person_id"`
}

// AssignPerson labels every Face in a Cluster with a Person.
func (h *ClustersHandler) AssignPerson(w http.ResponseWriter, r *http.Request) {
	clusterID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	var req assignPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.engine.AssignPerson(clusterID, req.PersonID); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

// UnassignPerson clears the Person label from every Face in a
// Cluster and from the Cluster itself.
func (h *ClustersHandler) UnassignPerson(w http.ResponseWriter, r *http.Request) {
	clusterID, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid cluster id")
		return
	}
	if err := h.engine.UnassignPerson(clusterID); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

// Suggestions returns candidate merge pairs in (threshold, upper].
func (h *ClustersHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	upper := h.engine.Threshold() * 2
	if v := r.URL.Query().Get("upper"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			upper = float32(f)
		}
	}
	pairs, err := h.engine.MergeSuggestions(upper)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pairs)
}
