/*
Package req provides helpers for HTTP request parsing and data binding.

It wraps JSON and URL-encoded form parsing with the application error taxonomy
so handlers can bind input and report validation failures uniformly.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"chatrelay/internal/pkg/errs"
)

// MaxBodyBytes caps the request body size for the JSON and form entry points.
const MaxBodyBytes int64 = 64 << 10 // 64 KB

// BindJSON binds the JSON request body to dst. Unknown fields and trailing
// content are rejected.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// IsForm reports whether the request carries URL-encoded form data.
func IsForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// ParseForm parses URL-encoded form data from the request body, bounded by
// MaxBodyBytes.
func ParseForm(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	if err := r.ParseForm(); err != nil {
		return errs.NewError(errs.ErrFormParseFailed)
	}

	return nil
}
