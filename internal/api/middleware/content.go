package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/phrazzld/agency-api/internal/api/shared"
)

// MaxBodyBytes bounds the size of request bodies.
const MaxBodyBytes = 1 << 20

// NotJSONMessage is returned when a request body is not declared as JSON.
const NotJSONMessage = `Request "Content-Type" header type is not set to JSON.`

// RequireJSON refuses requests with a body that is not declared as JSON or
// does not parse as JSON. GET, HEAD and OPTIONS requests pass through
// untouched. The body is buffered and handed on unchanged.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !shared.IsJSONContentType(r.Header.Get("Content-Type")) {
			shared.RespondWithError(w, r, http.StatusBadRequest, NotJSONMessage)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Request body could not be read.", err)
			return
		}

		var probe json.RawMessage
		if err := json.Unmarshal(body, &probe); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, fmt.Sprintf("JSON body is invalid: %s", err))
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))
		next.ServeHTTP(w, r)
	})
}
