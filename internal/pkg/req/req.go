/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON bodies strictly, applies struct validation rules declared with
`validate` tags, and reads required query parameters, translating every failure
into an *errs.CustomError the handlers can send back unchanged.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"meetassist/internal/pkg/errs"
)

// MaxBodySize caps the size of any JSON request body (1 MB).
const MaxBodySize int64 = 1 << 20

var validate = newValidator()

// newValidator builds a validator that reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst,
// then validates dst against its `validate` tags.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return Validate(dst)
}

// Validate runs the struct validation rules on v.
// A failed "required" rule is reported as ErrMissingField naming the first offending field.
func Validate(v any) *errs.CustomError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		if first.Tag() == "required" {
			return errs.NewError(errs.ErrMissingField, first.Field())
		}
	}

	return errs.NewError(errs.ErrInvalidParams)
}

// QueryParam returns the named query parameter, or ErrMissingField if it is absent or blank.
func QueryParam(r *http.Request, name string) (string, *errs.CustomError) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		return "", errs.NewError(errs.ErrMissingField, name)
	}
	return value, nil
}
