package common

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the body of every non-2xx JSON answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON serializes payload to JSON with status and logs on failure.
func WriteJSON(logger *log.Logger, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Printf("JSON エンコードに失敗: %v", err)
	}
}

// WriteError writes {"error": message} with status.
func WriteError(logger *log.Logger, w http.ResponseWriter, status int, message string) {
	WriteJSON(logger, w, status, ErrorResponse{Error: message})
}

// MethodNotAllowed answers 405 and advertises the allowed methods.
func MethodNotAllowed(logger *log.Logger, w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteError(logger, w, http.StatusMethodNotAllowed, MessageMethodNotAllowed)
}
