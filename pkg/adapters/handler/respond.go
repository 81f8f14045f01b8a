package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("encode response failed", "error", err)
	}
}

// RespondMessage sends {"error": message} with status.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondError maps a service error to a status code. Internal details of
// unavailable data and unexpected failures are logged, not returned.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context(), slog.Default())
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		RespondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		RespondMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrDataUnavailable):
		log.Error("data unavailable", "path", r.URL.Path, "error", err)
		RespondMessage(w, http.StatusServiceUnavailable, "data temporarily unavailable, please retry")
	default:
		log.Error("request failed", "path", r.URL.Path, "error", err)
		RespondMessage(w, http.StatusInternalServerError, "internal server error")
	}
}
