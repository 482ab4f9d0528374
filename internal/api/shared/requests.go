package shared

import (
	"encoding/json"
	"mime"
	"net/http"
)

// JSON media types accepted on request bodies.
var jsonMediaTypes = map[string]bool{
	"application/json":         true,
	"application/vnd.api+json": true,
}

// IsJSONContentType reports whether a Content-Type header names a JSON media
// type. Parameters such as charset are ignored.
func IsJSONContentType(header string) bool {
	if header == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return jsonMediaTypes[mediaType]
}

// DecodeJSON decodes the request body into the given value.
func DecodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
