// Package respond implements the JSON response envelope shared by every
// handler. Success and failure use the same shape so mobile clients can
// decode uniformly.
package respond

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes. Clients branch on these, never on the
// human-readable message.
const (
	CodeNoToken         = "NO_TOKEN"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeAccessDenied    = "ACCESS_DENIED"
	CodeAuthError       = "AUTH_ERROR"
	CodeUserNotFound    = "USER_NOT_FOUND"
	CodeUserExists      = "USER_EXISTS"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeUploadsDisabled = "UPLOADS_DISABLED"
)

// Envelope is the uniform response body
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// JSON writes a success envelope
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// Error writes a failure envelope with a machine-readable code
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: false, Error: message, Code: code})
}
