package jsonapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Code identifies which structural rule a request broke.
type Code int

// Structural rule codes. The numbering of 1 to 6 follows the order in which
// the rules are applied to each item.
const (
	CodeDataMissing         Code = 0
	CodeDataNotObject       Code = 1
	CodeIDOnCreate          Code = 2
	CodeTypeMissing         Code = 3
	CodeTypeMismatch        Code = 4
	CodeAttributesMissing   Code = 5
	CodeSlugBulkUpdate      Code = 6
	CodeMalformedMember     Code = 7
	CodeUnknownAttribute    Code = 8
	CodeUnknownRelationship Code = 9
	CodeInvalidLinkage      Code = 10
)

// String returns the machine readable name of the code.
func (c Code) String() string {
	switch c {
	case CodeDataMissing:
		return "data_missing"
	case CodeDataNotObject:
		return "data_not_object"
	case CodeIDOnCreate:
		return "id_on_create"
	case CodeTypeMissing:
		return "type_missing"
	case CodeTypeMismatch:
		return "type_mismatch"
	case CodeAttributesMissing:
		return "attributes_missing"
	case CodeSlugBulkUpdate:
		return "slug_bulk_update"
	case CodeMalformedMember:
		return "malformed_member"
	case CodeUnknownAttribute:
		return "unknown_attribute"
	case CodeUnknownRelationship:
		return "unknown_relationship"
	case CodeInvalidLinkage:
		return "invalid_linkage"
	default:
		return fmt.Sprintf("code_%d", int(c))
	}
}

// ErrBadRequest is wrapped by every RequestError.
var ErrBadRequest = errors.New("bad request")

// RequestError is a structural problem with an inbound document.
type RequestError struct {
	Code    Code
	Message string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrBadRequest.
func (e *RequestError) Unwrap() error {
	return ErrBadRequest
}

// NewRequestError builds a RequestError with a formatted message.
func NewRequestError(code Code, format string, args ...any) *RequestError {
	return &RequestError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CheckPayload applies the structural rules to the data member of a request
// document sent to the endpoint of resourceType. key is the identifier taken
// from the URL, empty on collection endpoints. It returns the decoded items in
// input order, or the first rule violation.
func CheckPayload(data json.RawMessage, method, resourceType, key string) ([]ResourcePayload, error) {
	raw, err := splitData(data)
	if err != nil {
		return nil, err
	}

	if method == http.MethodPut && key != "" && len(raw) != 1 {
		return nil, NewRequestError(CodeSlugBulkUpdate,
			"When using the 'PUT' method to update more than one item do not use a slug.")
	}

	items := make([]ResourcePayload, 0, len(raw))
	for _, r := range raw {
		item, err := checkItem(r, method, resourceType)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// splitData turns the data member into a list of raw items. A single object is
// accepted as a one item list.
func splitData(data json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewRequestError(CodeDataMissing, `Request body must contain a "data" member.`)
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, NewRequestError(CodeMalformedMember, "JSON body is invalid: %s", err)
		}
		return items, nil
	case '{':
		return []json.RawMessage{trimmed}, nil
	default:
		return nil, dataNotObject()
	}
}

func dataNotObject() *RequestError {
	return NewRequestError(CodeDataNotObject,
		`Request data is not formed correctly. Please ensure the contents of the "data" key is an array`)
}

// checkItem applies rules 1 to 5 to one item.
func checkItem(raw json.RawMessage, method, resourceType string) (ResourcePayload, error) {
	var item ResourcePayload

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return item, dataNotObject()
	}
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return item, NewRequestError(CodeMalformedMember, "Resource object is malformed: %s", err)
	}

	if item.ID != nil && method == http.MethodPost {
		return item, NewRequestError(CodeIDOnCreate,
			"Please use the 'PUT' request method when updating an existing entity.")
	}
	if item.Type == nil {
		return item, NewRequestError(CodeTypeMissing, `"type" member must be set in request body.`)
	}
	if *item.Type != resourceType {
		return item, NewRequestError(CodeTypeMismatch,
			`%s "type" member should be "%s" for this resource endpoint.`, *item.Type, resourceType)
	}
	if item.Attributes == nil && method == http.MethodPost {
		return item, NewRequestError(CodeAttributesMissing,
			`"attributes" object must be set to create a new entity.`)
	}
	return item, nil
}
