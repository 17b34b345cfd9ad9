package api

// validation.go decodes request bodies and checks them against the request schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared validator. Field names in errors are the json names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// DecodeRequest reads a JSON request body into dst and validates it.
//
// An empty body is decoded as {}. Bodies that are not JSON return a malformed request error (400);
// unknown fields, wrong types and failed validation rules return a validation error (422) with one
// FieldError per problem. Bodies over the size limit return a request too large error.
func DecodeRequest(r *http.Request, dst any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return NewRequestTooLargeError(fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit))
		}
		return WrapMalformedRequestError(err, "failed to read request body")
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return NewMalformedRequestError("request body must contain a single JSON object")
	}

	return ValidateStruct(dst)
}

// decodeError classifies json decoding errors
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "" {
			return NewValidationError("request body must be a JSON object",
				FieldError{Field: "", Message: fmt.Sprintf("expected object, got %s", typeErr.Value)})
		}
		return NewValidationError("request body is invalid",
			FieldError{Field: typeErr.Field, Message: fmt.Sprintf("%s must be a %s", typeErr.Field, jsonTypeName(typeErr.Type))})
	}

	// json: unknown field "name"
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return NewValidationError("request body is invalid",
			FieldError{Field: field, Message: fmt.Sprintf("%s is not allowed", field)})
	}

	return WrapMalformedRequestError(err, "request body is not valid JSON")
}

// ValidateStruct checks the validate tags on v
func ValidateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return WrapInternalError(err, "failed to validate request")
	}

	details := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, FieldError{Field: fe.Field(), Message: fieldErrorMessage(fe)})
	}
	return NewValidationError("request body is invalid", details...)
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int32, reflect.Int64, reflect.Float64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice:
		return "array"
	default:
		return t.String()
	}
}
