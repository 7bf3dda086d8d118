package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/happypororo/W-Best-Tracker/pkg/apperrors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error body with a machine-readable code.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(errorBody{Error: errorCode, Message: message})
}

// RepoError translates a repository error into the HTTP response the read
// handlers share: an unknown row becomes 404, anything else a logged 500.
// The resource string names what was being loaded, e.g. "product: PROD_123".
func RepoError(w http.ResponseWriter, logger *zap.Logger, err error, resource string) {
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "Unknown "+resource)
		return
	}
	logger.Error("Failed to load "+resource, zap.Error(err))
	_ = ErrorResponse(w, http.StatusInternalServerError, "query_failed", "Failed to load "+resource)
}
