package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jnovak/facecat/internal/catalog"
)

// PersonsHandler manages the user-identified Person roster.
type PersonsHandler struct {
	store *catalog.Store
}

func NewPersonsHandler(store *catalog.Store) *PersonsHandler {
	return &PersonsHandler{store: store}
}

func (h *PersonsHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.store.ListPersons()
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, persons)
}

func (h *PersonsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	person, err := h.store.GetPerson(id)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, person)
}

type createPersonRequest struct {
	Name  string  `json:"name"`
	Notes *string `json:"notes,omitempty"`
}

func (h *PersonsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := h.store.InsertPerson(&catalog.Person{Name: req.Name, Notes: req.Notes})
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *PersonsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	var req createPersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.store.UpdatePerson(&catalog.Person{ID: id, Name: req.Name, Notes: req.Notes}); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (h *PersonsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt64(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	if err := h.store.DeletePerson(id); err != nil {
		respondCatalogError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}
