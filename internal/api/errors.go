package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/service"
	"github.com/phrazzld/agency-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Structural problems with the request document
	case errors.Is(err, jsonapi.ErrBadRequest):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Entity rule violations, including unique constraints lost to a
	// concurrent writer
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns the message shown to clients for err. Errors
// built for clients carry their own message; anything else gets a generic
// sentence so internal details never leave the server.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var notFound *service.NotFoundError
	var validation *service.ValidationError
	var request *jsonapi.RequestError

	switch {
	case errors.As(err, &request):
		return request.Message
	case errors.As(err, &notFound):
		return notFound.Message
	case errors.As(err, &validation):
		return validation.Error()
	case errors.Is(err, store.ErrDuplicate):
		return domain.UniqueMessage
	case errors.Is(err, store.ErrInvalidEntity):
		return "This value is not valid."
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	default:
		return "An unexpected error occurred"
	}
}
