package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/homebase/internal/home"
	"github.com/nerrad567/homebase/internal/store"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeNotFound       = "not_found"
	ErrCodeConflict       = "conflict"
	ErrCodeInternal       = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeMethodNotAllow = "method_not_allowed"
	ErrCodeTooLarge       = "payload_too_large"
	ErrCodeUnavailable    = "unavailable"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// isValidationError reports whether err is an entity validation failure.
func isValidationError(err error) bool {
	return errors.Is(err, home.ErrValidation)
}

// writeStoreError maps a registry error onto an HTTP response.
// Corrupt documents and backend failures are logged and reported as 500
// without detail.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrCorrupt):
		s.logger.Error("corrupt collection document",
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		writeInternalError(w, "stored data is corrupt")
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		s.logger.Error("store operation failed",
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		writeInternalError(w, "internal server error")
	}
}
