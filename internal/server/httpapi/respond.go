package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MMaus/listkeeper/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps service errors onto HTTP statuses. Internal detail
// stays out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		writeErrorMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrMalformedChange):
		// Reached only from direct CRUD validation (empty title/name).
		// The sync path never surfaces it: malformed batch items are
		// skipped per item inside the engine.
		writeErrorMessage(w, http.StatusBadRequest, "bad request")
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
