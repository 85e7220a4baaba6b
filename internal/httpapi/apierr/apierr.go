// Package apierr is the JSON error body shape shared across the HTTP
// service's handlers: {"statusCode": n, "message": str, "details": [str]}.
package apierr

import (
	"encoding/json"
	"net/http"
)

// Body is the wire shape of every non-2xx response this service returns.
type Body struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Details    []string `json:"details"`
}

// Write encodes Body for statusCode/message/details and writes it with the
// matching HTTP status.
func Write(w http.ResponseWriter, statusCode int, message string, details ...string) {
	if details == nil {
		details = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Body{StatusCode: statusCode, Message: message, Details: details})
}

// NotFound writes a 404 with message.
func NotFound(w http.ResponseWriter, message string) {
	Write(w, http.StatusNotFound, message)
}

// BadRequest writes a 400 with message and optional details.
func BadRequest(w http.ResponseWriter, message string, details ...string) {
	Write(w, http.StatusBadRequest, message, details...)
}

// Internal writes a 500 with message.
func Internal(w http.ResponseWriter, message string) {
	Write(w, http.StatusInternalServerError, message)
}
