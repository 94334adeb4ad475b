package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

const (
	maxNameLen        = 255
	maxDescriptionLen = 5000
	minPasswordLen    = 6
	maxPasswordLen    = 72 // bcrypt ignores anything longer
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func requiredText(errs []FieldError, field, value string, max int) []FieldError {
	v := strings.TrimSpace(value)
	if v == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if utf8.RuneCountInString(v) > max {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)})
	}
	return errs
}

func optionalText(errs []FieldError, field string, value *string, max int) []FieldError {
	if value != nil && utf8.RuneCountInString(*value) > max {
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, max)})
	}
	return errs
}

func oneOf(errs []FieldError, field, value string, allowed []string) []FieldError {
	for _, a := range allowed {
		if value == a {
			return errs
		}
	}
	return append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", "))})
}

// ValidEmail reports whether s is a bare email address.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func email(errs []FieldError, field, value string) []FieldError {
	v := strings.TrimSpace(value)
	switch {
	case v == "":
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	case !ValidEmail(v):
		return append(errs, FieldError{Field: field, Message: field + " must be a valid email address"})
	}
	return errs
}

func password(errs []FieldError, field, value string) []FieldError {
	switch {
	case value == "":
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	case len(value) < minPasswordLen:
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, minPasswordLen)})
	case len(value) > maxPasswordLen:
		return append(errs, FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %d bytes", field, maxPasswordLen)})
	}
	return errs
}

// ParseDate parses an optional YYYY-MM-DD date. An empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func date(errs []FieldError, field string, value *string) ([]FieldError, *time.Time) {
	if value == nil {
		return errs, nil
	}
	d, err := ParseDate(*value)
	if err != nil {
		return append(errs, FieldError{Field: field, Message: field + " must be a date in YYYY-MM-DD format"}), nil
	}
	return errs, d
}
