package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/injectkit/errors"
)

// Validator collects validation errors for checks struct tags cannot
// express, such as uniqueness across a list.
type Validator struct {
	errors []FieldError
	seen   map[string]map[string]string
}

// FieldError represents a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
		seen:   make(map[string]map[string]string),
	}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate returns an AppError if there are validation errors, nil otherwise.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	return errors.InvalidConfig(strings.Join(messages, "; ")).
		WithDetail("fields", v.errors)
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// OneOf checks if a non-empty value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" || slices.Contains(allowed, value) {
		return v
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Unique records key within group and reports a duplicate the second time
// it is seen. field names the current element; the error points back at
// the first one.
func (v *Validator) Unique(group, field, key string) *Validator {
	keys, ok := v.seen[group]
	if !ok {
		keys = make(map[string]string)
		v.seen[group] = keys
	}
	if first, dup := keys[key]; dup {
		v.AddError(field, fmt.Sprintf("duplicates %s", first))
		return v
	}
	keys[key] = field
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
