package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates a malformed payload or a missing required value.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates a missing or rejected API key.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMethodNotAllowed indicates an HTTP verb the API does not serve.
	ErrMethodNotAllowed = errors.New("method not allowed")
)
