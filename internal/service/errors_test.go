package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/store"
)

func TestValidationErrorMessage(t *testing.T) {
	first := &domain.ValidationError{Type: "agencies", ID: "0"}
	first.Add("name", "This value should not be blank.")
	first.Add("contact_email", "This value is not a valid email address.")

	single := &ValidationError{Items: []*domain.ValidationError{first}}
	assert.Equal(t, "name: This value should not be blank.; contact_email: This value is not a valid email address.",
		single.Error())
	assert.ErrorIs(t, single, domain.ErrValidation)

	second := &domain.ValidationError{Type: "agencies", ID: "2"}
	second.Add("web_address", domain.UniqueMessage)

	batch := &ValidationError{Items: []*domain.ValidationError{first, second}}
	assert.Equal(t,
		"agencies[new]: name: This value should not be blank.; contact_email: This value is not a valid email address.\n"+
			"agencies[2]: web_address: This value is already used.",
		batch.Error())
}

func TestNewResourceServiceError(t *testing.T) {
	passthrough := []error{
		notFoundByID("agencies", "4"),
		&ValidationError{},
		jsonapi.NewRequestError(jsonapi.CodeTypeMissing, "missing"),
		fmt.Errorf("create: %w", store.ErrDuplicate),
	}
	for _, err := range passthrough {
		assert.Same(t, err, NewResourceServiceError("op", "msg", err))
	}

	assert.NoError(t, NewResourceServiceError("op", "msg", nil))

	cause := errors.New("connection reset")
	wrapped := NewResourceServiceError("index", "failed to list agencies", cause)
	var rsErr *ResourceServiceError
	assert.ErrorAs(t, wrapped, &rsErr)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "resource service index failed: failed to list agencies: connection reset", wrapped.Error())
	assert.Contains(t, string(rsErr.Stack), "TestNewResourceServiceError")
}

func TestNotFoundMessages(t *testing.T) {
	assert.Equal(t, `This entity of type "agencies" does not have a relationship with resource "owners".`,
		noRelationship("agencies", "owners").Error())
	assert.Equal(t, `This entity of type "services" has a relationship with resource "agencies", but it is empty.`,
		emptyRelationship("services", "agencies").Error())
	assert.ErrorIs(t, notFoundByCriteria("services", "slug", "x"), ErrNotFound)
}
