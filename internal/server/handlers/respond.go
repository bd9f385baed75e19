package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/iudanet/rentkeeper/pkg/api"
)

// WriteJSON пишет ответ в JSON
func WriteJSON(logger *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// WriteError пишет ошибку в формате api.ErrorResponse
func WriteError(logger *slog.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, api.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
