package handlers

import (
	"encoding/json"
	"net/http"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"
)

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps an error's classification onto an HTTP status and writes
// a JSON error body
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := models.KindOf(err)
	switch kind {
	case models.ErrorKindAuth:
		status = http.StatusUnauthorized
	case models.ErrorKindValidation:
		status = http.StatusBadRequest
	case models.ErrorKindState:
		status = http.StatusConflict
	case models.ErrorKindUpstream:
		status = http.StatusBadGateway
	case models.ErrorKindPersistence:
		status = http.StatusInternalServerError
	}

	body := map[string]string{"error": err.Error()}
	if kind != "" {
		body["kind"] = string(kind)
	}
	writeJSON(w, status, body)
}
