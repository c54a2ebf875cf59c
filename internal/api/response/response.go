package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the error payload of every failed API call
type ErrorBody struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	Details      any    `json:"details,omitempty"`
	Timeout      bool   `json:"timeout,omitempty"`
	Status       int    `json:"status,omitempty"`
	BackendError bool   `json:"backendError,omitempty"`
}

// JSON sends v as a JSON response
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// OK sends a 200 response with success:true merged into fields
func OK(w http.ResponseWriter, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	JSON(w, http.StatusOK, body)
}

// Fail sends an error payload
func Fail(w http.ResponseWriter, status int, body ErrorBody) {
	body.Success = false
	JSON(w, status, body)
}

// Error sends an error response with a message only
func Error(w http.ResponseWriter, status int, message string) {
	Fail(w, status, ErrorBody{Error: message})
}

// BadRequest sends a 400 Bad Request response
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// InternalError sends a 500 Internal Server Error response
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
