package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is the sentinel wrapped by every ValidationError so callers can
// test for it with errors.Is without caring about the field details.
var ErrValidation = errors.New("entity validation failed")

// FieldError describes a single rule violation on one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when an entity breaks one or more declarative
// rules (required fields, formats, uniqueness).
type ValidationError struct {
	Type   string
	ID     string
	Fields []FieldError
}

// Error renders every field violation on its own line, prefixed by the
// attribute name.
func (e *ValidationError) Error() string {
	var b strings.Builder
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s", f.Field, f.Message)
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Add appends a field violation.
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any violation was recorded.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// MergeValidationErrors folds several validation errors into one, keeping
// field order. Nil entries are skipped; nil is returned when nothing is left.
func MergeValidationErrors(errs ...*ValidationError) *ValidationError {
	var merged *ValidationError
	for _, e := range errs {
		if !e.HasErrors() {
			continue
		}
		if merged == nil {
			merged = &ValidationError{Type: e.Type, ID: e.ID}
		}
		merged.Fields = append(merged.Fields, e.Fields...)
	}
	return merged
}
