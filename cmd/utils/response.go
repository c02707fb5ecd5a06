package utils

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// APIResponse is the uniform envelope every endpoint responds with.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes an arbitrary payload with the given status code.
func WriteJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, code int, message string, data interface{}) {
	WriteJSON(w, code, APIResponse{Status: "success", Message: message, Data: data})
}

// WriteError writes an error envelope.
func WriteError(w http.ResponseWriter, code int, message string) {
	WriteJSON(w, code, APIResponse{Status: "error", Message: message})
}

// RequestIDMiddleware tags every response with an X-Request-ID header so
// access-log lines can be correlated with client reports.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}
