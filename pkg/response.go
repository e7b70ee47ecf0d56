package pkg

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, APIResponse{Success: true, Data: data})
}

// Error writes an error envelope with the status mapped from err. Errors
// that map to 500 are logged and replaced by a generic message.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[http] internal error: %v", err)
		msg = ErrInternal.Error()
	}
	writeEnvelope(w, status, APIResponse{Success: false, Error: msg})
}

// ErrorWithMessage writes an error envelope with an explicit status and
// message, typically an already localized one.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, APIResponse{Success: false, Error: message})
}

func writeEnvelope(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

// StatusFor returns the HTTP status Error would use for err.
func StatusFor(err error) int {
	return mapErrorToStatus(err)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
