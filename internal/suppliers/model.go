package suppliers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/odyssey-erp/suppliers-api/internal/shared"
)

// TableName is the table every store reads and writes.
const TableName = "suppliers"

// Supplier represents a supplier row.
type Supplier struct {
	ID          int64     `json:"id"`
	CompanyName string    `json:"company_name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Input carries the four user-editable fields of a create or update request.
// Absent JSON fields decode to empty strings; an update writes all four.
type Input struct {
	CompanyName string `json:"company_name" validate:"required"`
	ContactName string `json:"contact_name" validate:"required"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// UnmarshalJSON accepts JSON numbers and booleans for any field and stores
// them as text, so `"phone": 5551234` reads as "5551234". null and false
// decode to "", true to "1". Objects and arrays are rejected.
func (in *Input) UnmarshalJSON(b []byte) error {
	var raw struct {
		CompanyName text `json:"company_name"`
		ContactName text `json:"contact_name"`
		Phone       text `json:"phone"`
		Email       text `json:"email"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*in = Input{
		CompanyName: string(raw.CompanyName),
		ContactName: string(raw.ContactName),
		Phone:       string(raw.Phone),
		Email:       string(raw.Email),
	}
	return nil
}

// text is a scalar JSON value read as a string.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*t = ""
	case string:
		*t = text(x)
	case json.Number:
		*t = text(x.String())
	case bool:
		if x {
			*t = "1"
		} else {
			*t = ""
		}
	default:
		return fmt.Errorf("expected a scalar, got %s", bytes.TrimSpace(b)[:1])
	}
	return nil
}

// Sanitized returns a copy of in with markup stripped and HTML-significant
// characters escaped in every field.
func (in Input) Sanitized() Input {
	return Input{
		CompanyName: shared.Sanitize(in.CompanyName),
		ContactName: shared.Sanitize(in.ContactName),
		Phone:       shared.Sanitize(in.Phone),
		Email:       shared.Sanitize(in.Email),
	}
}
