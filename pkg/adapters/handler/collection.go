package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

type CollectionHandler struct {
	service ports.CollectionService
}

func NewCollectionHandler(service ports.CollectionService) *CollectionHandler {
	return &CollectionHandler{service: service}
}

type collectionResponse struct {
	VariantIDs []string `json:"variant_ids"`
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		RespondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ids, err := h.service.List(r.Context(), user.ID)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, collectionResponse{VariantIDs: ids})
}

func (h *CollectionHandler) Add(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		RespondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ids, err := h.service.Add(r.Context(), user.ID, r.PathValue("variantID"))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, collectionResponse{VariantIDs: ids})
}

func (h *CollectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		RespondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	ids, err := h.service.Remove(r.Context(), user.ID, r.PathValue("variantID"))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, collectionResponse{VariantIDs: ids})
}

// Items handles GET /api/v1/collection/items?sort=&dir=
func (h *CollectionHandler) Items(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		RespondMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sort, err := search.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("dir"))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	rows, err := h.service.Items(r.Context(), user.ID, sort)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{"items": rows, "sort": sort})
}
