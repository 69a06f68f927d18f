package handlers

import (
	"encoding/json"
	"net/http"

	"tonecheck-backend/internal/models"
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(message, details string) models.ErrorResponse {
	return models.ErrorResponse{Error: message, Details: details}
}
