// Package validation turns loosely-typed request bodies into typed values or a structured error
// before any business logic runs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string
	Message string
}

// Error is returned for any input the caller must fix. Handlers render it as 400.
type Error struct {
	Message string
	Hint    string
	Fields  []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func New(message, hint string, fields ...FieldError) *Error {
	return &Error{Message: message, Hint: hint, Fields: fields}
}

// Field is shorthand for a single-field "Invalid request" error.
func Field(field, message string) *Error {
	return New("Invalid request", "", FieldError{Field: field, Message: message})
}

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(time.RFC3339, fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("timezone", func(fl validator.FieldLevel) bool {
		return ValidTimezone(fl.Field().String())
	})
	return &Validator{v: v}
}

// Struct validates s and returns nil or an *Error listing every failing field.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := New("Invalid request", "")
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fieldPath(fe.Namespace()), Message: message(fe)})
	}
	return out
}

// fieldPath drops the root struct name: "ReserveRequest.customer.email" -> "customer.email".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "rfc3339":
		return "must be an ISO-8601 datetime such as 2030-01-15T14:00:00Z"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "slug":
		return "must contain only lowercase letters, digits and hyphens"
	case "timezone":
		return "must be an IANA time zone such as America/New_York"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

// ParseSlot parses an ISO-8601 instant.
// ValidTimezone reports whether name is a loadable IANA zone. "Local" is refused since it
// resolves to the server's own zone.
func ValidTimezone(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "local") {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

func ParseSlot(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, Field(field, "must be an ISO-8601 datetime such as 2030-01-15T14:00:00Z")
	}
	return t, nil
}
