// Package models defines the data shapes shared by the rxconsole packages.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is one rejected field. Field is a dotted config path such
// as "sync.limit"; Cause is kept for errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (v ValidationError) Error() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// ValidationErrors collects every rejected field of a query or config so the
// operator sees them all at once.
type ValidationErrors struct {
	Errors []ValidationError
}

// Add records err against field. Nested ValidationErrors are flattened with
// their fields prefixed, so a query checked inside the config reports
// "sync.limit" rather than "limit".
func (v *ValidationErrors) Add(field string, err error) {
	if err == nil {
		return
	}

	var nested *ValidationErrors
	if errors.As(err, &nested) {
		for _, sub := range nested.Errors {
			sub.Field = joinField(field, sub.Field)
			v.Errors = append(v.Errors, sub)
		}
		return
	}

	v.Errors = append(v.Errors, ValidationError{Field: field, Message: err.Error(), Cause: err})
}

// AddMessage records a plain message against field.
func (v *ValidationErrors) AddMessage(field, message string) {
	if message == "" {
		return
	}
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// Require rejects a blank value.
func (v *ValidationErrors) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.AddMessage(field, "is required")
	}
}

// OneOf rejects got unless it is in allowed. The message lists the allowed
// values; sentinel, when set, is matched by errors.Is on the result.
func OneOf[T comparable](v *ValidationErrors, field string, got T, allowed []T, sentinel error) {
	for _, option := range allowed {
		if option == got {
			return
		}
	}
	message := fmt.Sprintf("must be one of %s (got %v)", FormatChoices(allowed), got)
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message, Cause: sentinel})
}

// FormatChoices renders an option set as "a, b, c".
func FormatChoices[T any](options []T) string {
	parts := make([]string, len(options))
	for i, option := range options {
		parts[i] = fmt.Sprint(option)
	}
	return strings.Join(parts, ", ")
}

// Fields lists the rejected fields in the order they were recorded.
func (v *ValidationErrors) Fields() []string {
	if v == nil {
		return nil
	}
	fields := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		fields = append(fields, err.Field)
	}
	return fields
}

// Err returns nil when nothing was rejected.
func (v *ValidationErrors) Err() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// Is matches the cause of any recorded field.
func (v *ValidationErrors) Is(target error) bool {
	if v == nil {
		return false
	}
	for _, err := range v.Errors {
		if err.Cause != nil && errors.Is(err.Cause, target) {
			return true
		}
	}
	return false
}

func joinField(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	default:
		return prefix + "." + field
	}
}
