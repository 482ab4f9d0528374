package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by all entities. Field names are reported using the
// json tag so they match the attribute names clients send.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateEntity runs the struct tags of entity and converts the result into a
// ValidationError.
func validateEntity(entity any, resourceType, id string) error {
	err := validate.Struct(entity)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating %s: %w", resourceType, err)
	}

	verr := &ValidationError{Type: resourceType, ID: id}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), ruleMessage(fe))
	}
	return verr
}

// ruleMessage maps a failed validator tag to a client facing sentence.
func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "email":
		return "This value is not a valid email address."
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "numeric":
		return "This value should be numeric."
	default:
		return "This value is not valid."
	}
}

// UniqueMessage is the violation reported for attributes that must be unique
// across all entities of a type.
const UniqueMessage = "This value is already used."

// MarkupMessage is the violation reported for free-text attributes that
// contain HTML, including entity-escaped HTML.
const MarkupMessage = "This value should not contain markup."
