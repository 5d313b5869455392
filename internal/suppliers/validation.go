package suppliers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

// FieldError names the first required field missing from a create payload.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return "field " + e.Field + " is required"
}

func (e *FieldError) Unwrap() error {
	return shared.ErrValidation
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateCreate checks company_name before contact_name so the message
// always names the first missing field.
func (h *Handler) validateCreate(in Input) error {
	err := h.validator.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &FieldError{Field: fieldErrs[0].Field()}
	}
	return err
}
