// Package httpx provides the JSON envelope shared by every API response.
package httpx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

// ContentTypeJSON is sent with every API response.
const ContentTypeJSON = "application/json; charset=UTF-8"

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope wraps every response body. Data stays present when it holds an
// empty list; Count is a pointer so a zero count is still rendered.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// Success sends a success envelope.
func Success(w http.ResponseWriter, status int, env Envelope) {
	env.Status = StatusSuccess
	JSON(w, status, env)
}

// Error sends an error envelope carrying message.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Status: StatusError, Message: message})
}

// DecodeJSON decodes exactly one JSON value from the request body into
// target. Syntax errors, type mismatches and trailing data wrap
// shared.ErrValidation.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("%w: decode json: %v", shared.ErrValidation, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after json value", shared.ErrValidation)
	}
	return nil
}
