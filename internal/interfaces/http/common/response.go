package common

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/tastemap/catalog-api/internal/catalog/domain"
)

// MaxRequestBody limits JSON request bodies for store/review endpoints.
const MaxRequestBody = 1 << 20

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteError maps domain errors to HTTP statuses and writes a JSON error
// body. Unknown errors become 500 and are logged; their details stay out of
// the response.
func WriteError(logger *zap.Logger, w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		WriteJSON(logger, w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case domain.IsNotFound(err):
		WriteJSON(logger, w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case domain.IsAuthorization(err):
		WriteJSON(logger, w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case domain.IsUniqueness(err):
		WriteJSON(logger, w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		WriteJSON(logger, w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
