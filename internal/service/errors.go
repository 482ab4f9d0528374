package service

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/store"
)

// ErrNotFound is wrapped by every NotFoundError.
var ErrNotFound = errors.New("resource not found")

// NotFoundError carries the client facing message of a failed lookup.
type NotFoundError struct {
	Message string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFoundByID(resourceType, id string) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(`Could not find type "%s" with id: %s`, resourceType, id)}
}

func notFoundByCriteria(resourceType, field, value string) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf("No entity of type %s found using criteria { %s: %s, }.", resourceType, field, value),
	}
}

func noRelationship(resourceType, relation string) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf(`This entity of type "%s" does not have a relationship with resource "%s".`,
			resourceType, relation),
	}
}

func emptyRelationship(resourceType, relation string) *NotFoundError {
	return &NotFoundError{
		Message: fmt.Sprintf(`This entity of type "%s" has a relationship with resource "%s", but it is empty.`,
			resourceType, relation),
	}
}

// ValidationError collects the violations of every invalid item of a write
// batch, in input order.
type ValidationError struct {
	Items []*domain.ValidationError
}

// Error renders the violations one per line. Items other than the first are
// introduced by their type and id so a client can tell them apart.
func (e *ValidationError) Error() string {
	var b strings.Builder
	for i, item := range e.Items {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(e.Items) > 1 {
			id := item.ID
			if id == "" || id == "0" {
				id = "new"
			}
			fmt.Fprintf(&b, "%s[%s]: ", item.Type, id)
		}
		b.WriteString(strings.ReplaceAll(item.Error(), "\n", "; "))
	}
	return b.String()
}

// Unwrap lets errors.Is match domain.ErrValidation.
func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

// ResourceServiceError wraps unexpected failures with the operation that
// produced them. Stack is the goroutine stack at the point of wrapping.
type ResourceServiceError struct {
	Operation string
	Message   string
	Err       error
	Stack     []byte
}

// Error implements the error interface.
func (e *ResourceServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("resource service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ResourceServiceError) Unwrap() error {
	return e.Err
}

// NewResourceServiceError wraps err unless it is already one of the errors
// the API layer maps to a client response, which are returned unchanged.
func NewResourceServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	var validation *ValidationError
	var request *jsonapi.RequestError
	if errors.As(err, &notFound) || errors.As(err, &validation) || errors.As(err, &request) {
		return err
	}
	if errors.Is(err, store.ErrDuplicate) {
		return err
	}
	return &ResourceServiceError{Operation: operation, Message: message, Err: err, Stack: debug.Stack()}
}
