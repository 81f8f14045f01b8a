package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/search"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/ports"
)

const maxListBodyBytes = 1 << 20

type CatalogHandler struct {
	service        ports.CatalogService
	minQueryLength int
}

func NewCatalogHandler(service ports.CatalogService, minQueryLength int) *CatalogHandler {
	return &CatalogHandler{service: service, minQueryLength: minQueryLength}
}

// Search handles GET /api/search?field=&value=&year=&view=
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := search.Query{
		Field: r.URL.Query().Get("field"),
		Value: r.URL.Query().Get("value"),
		Year:  r.URL.Query().Get("year"),
	}

	view := search.Projection(r.URL.Query().Get("view"))
	switch view {
	case "", search.ProjectFull, search.ProjectSummary:
	default:
		RespondMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown view %q", view))
		return
	}

	// Opt-in: a zero minimum accepts any value.
	value := strings.TrimSpace(q.Value)
	if h.minQueryLength > 0 && q.Year == "" && value != "" && utf8.RuneCountInString(value) < h.minQueryLength {
		RespondMessage(w, http.StatusBadRequest, fmt.Sprintf("value must be at least %d characters without a year", h.minQueryLength))
		return
	}

	models, err := h.service.SearchView(r.Context(), q, view)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, models)
}

// Car handles GET /api/car?lnk=KEY
func (h *CatalogHandler) Car(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("lnk")
	if key == "" {
		RespondMessage(w, http.StatusBadRequest, "lnk is required")
		return
	}
	view, err := h.service.Describe(r.Context(), key)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// Cars handles POST /api/cars {"keys": [...]}
func (h *CatalogHandler) Cars(w http.ResponseWriter, r *http.Request) {
	keys, err := decodeStringList(w, r, "keys")
	if err != nil {
		RespondError(w, r, err)
		return
	}
	models, err := h.service.GetManyByKeys(r.Context(), keys)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, models)
}

// Variants handles POST /api/variants {"ids": [...]}
func (h *CatalogHandler) Variants(w http.ResponseWriter, r *http.Request) {
	ids, err := decodeStringList(w, r, "ids")
	if err != nil {
		RespondError(w, r, err)
		return
	}
	models, err := h.service.GetVariantsByIDs(r.Context(), ids)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, models)
}

func (h *CatalogHandler) Years(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.AvailableYears(r.Context())
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"years":  years,
		"ranges": search.FormatYearRanges(years),
	})
}

func (h *CatalogHandler) Fields(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string][]string{"fields": search.Fields()})
}

// Image handles GET /api/image/{id} by redirecting to the resolved URL.
func (h *CatalogHandler) Image(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.ResolveImage(r.Context(), r.PathValue("id"))
	if err != nil {
		RespondError(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// decodeStringList reads {"<name>": ["a", "b"]} and rejects any other shape.
func decodeStringList(w http.ResponseWriter, r *http.Request, name string) ([]string, error) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxListBodyBytes)).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrInvalidQuery, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidQuery)
	}
	raw, ok := body[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s must be an array of strings", domain.ErrInvalidQuery, name)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return nil, fmt.Errorf("%w: %s must be an array of strings", domain.ErrInvalidQuery, name)
	}
	return list, nil
}
