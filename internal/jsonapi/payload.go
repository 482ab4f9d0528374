package jsonapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// RequestDocument is the body of a POST or PUT request.
type RequestDocument struct {
	Data json.RawMessage `json:"data"`
}

// ResourcePayload is one inbound resource object. Pointer and map fields are
// nil when the member is absent or null, which is how the gate tells "not
// sent" from "sent empty".
type ResourcePayload struct {
	ID            *ResourceID                    `json:"id"`
	Type          *string                        `json:"type"`
	Attributes    map[string]any                 `json:"attributes"`
	Relationships map[string]RelationshipPayload `json:"relationships"`
}

// ResourceID accepts both JSON strings and numbers, since clients commonly
// send numeric ids unquoted.
type ResourceID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ResourceID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ResourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ResourceID(n.String())
	return nil
}

// Int64 parses the id as a numeric identifier.
func (id ResourceID) Int64() (int64, error) {
	return strconv.ParseInt(string(id), 10, 64)
}

// String implements fmt.Stringer.
func (id ResourceID) String() string {
	return string(id)
}

// RelationshipPayload is the relationships.<name> member of an inbound
// resource object.
type RelationshipPayload struct {
	Data json.RawMessage `json:"data"`
}

// LinkagePayload is one inbound {type, id} reference.
type LinkagePayload struct {
	Type string     `json:"type"`
	ID   ResourceID `json:"id"`
}

// Linkages decodes the data member. Null or absent data means an empty set.
// To-one linkage is not supported by any relationship and is refused.
func (p RelationshipPayload) Linkages() ([]LinkagePayload, error) {
	data := bytes.TrimSpace(p.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("relationship data must be an array of resource identifiers")
	}
	var out []LinkagePayload
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("relationship data is malformed: %w", err)
	}
	return out, nil
}
