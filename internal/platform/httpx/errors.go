package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// RespondError writes an error envelope whose status is derived from err.
// The message is caller supplied so it can be localized.
func RespondError(w http.ResponseWriter, err error, message string) {
	Error(w, StatusFor(err), message)
}
