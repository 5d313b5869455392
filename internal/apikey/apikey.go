// Package apikey authenticates requests carrying the shared API secret.
package apikey

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HeaderName is the header clients send the key in.
const HeaderName = "X-API-Key"

// envName is the CGI-style name gateways use when they forward the header
// as a server variable.
const envName = "HTTP_X_API_KEY"

// FromRequest extracts the API key. The canonical header wins, then raw
// map entries written without canonicalization, then any header that
// spells the key in server-environment form (HTTP_X_API_KEY, X_Api_Key).
func FromRequest(r *http.Request) string {
	if v := r.Header.Get(HeaderName); v != "" {
		return v
	}
	for _, name := range []string{HeaderName, strings.ToLower(HeaderName)} {
		if vals := r.Header[name]; len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	for name, vals := range r.Header {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		if envStyle(name) == envName {
			return vals[0]
		}
	}
	return ""
}

func envStyle(name string) string {
	n := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if !strings.HasPrefix(n, "HTTP_") {
		n = "HTTP_" + n
	}
	return n
}

// Validator checks presented keys against the configured secret, held
// either in plaintext or as a bcrypt hash.
type Validator struct {
	key  []byte
	hash []byte
}

// NewValidator builds a Validator. Exactly one of key and hash must be set.
func NewValidator(key, hash string) (*Validator, error) {
	switch {
	case key == "" && hash == "":
		return nil, errors.New("apikey: a key or a bcrypt hash is required")
	case key != "" && hash != "":
		return nil, errors.New("apikey: configure either a key or a hash, not both")
	case hash != "":
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.New("apikey: hash is not a bcrypt hash")
		}
		return &Validator{hash: []byte(hash)}, nil
	default:
		return &Validator{key: []byte(key)}, nil
	}
}

// Validate reports whether presented matches the secret. Empty keys never match.
func (v *Validator) Validate(presented string) bool {
	if v == nil || presented == "" {
		return false
	}
	if len(v.hash) > 0 {
		return bcrypt.CompareHashAndPassword(v.hash, []byte(presented)) == nil
	}
	return subtle.ConstantTimeCompare(v.key, []byte(presented)) == 1
}
