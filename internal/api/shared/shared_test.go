package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/platform/logger"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	traced := SetTraceID(ctx)
	_, err := uuid.Parse(GetTraceID(traced))
	assert.NoError(t, err)
	assert.Empty(t, GetTraceID(ctx), "original context must be unchanged")

	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
	assert.Equal(t, "abc", GetTraceID(WithTraceID(ctx, "abc")))
}

func TestUserContext(t *testing.T) {
	_, ok := GetUser(context.Background())
	assert.False(t, ok)

	user := &domain.User{ID: 1, Username: "test"}
	got, ok := GetUser(WithUser(context.Background(), user))
	require.True(t, ok)
	assert.Same(t, user, got)
}

func TestIsJSONContentType(t *testing.T) {
	tests := map[string]bool{
		"application/json":                  true,
		"application/json; charset=utf-8":   true,
		"application/vnd.api+json":          true,
		"APPLICATION/JSON":                  true,
		"text/plain":                        false,
		"":                                  false,
		"application/x-www-form-urlencoded": false,
		";;":                                false,
	}
	for header, want := range tests {
		assert.Equal(t, want, IsJSONContentType(header), header)
	}
}

func TestRespondWithError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/agencies/9999", nil)

	RespondWithError(rec, req, http.StatusNotFound, `Could not find type "agencies" with id: 9999`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"errors": {"message": "Could not find type \"agencies\" with id: 9999"}}`, rec.Body.String())
}

func TestRespondWithErrorAndLog(t *testing.T) {
	var logs bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	req := httptest.NewRequest(http.MethodPost, "/api/services", nil)
	req = req.WithContext(logger.WithLogger(WithTraceID(req.Context(), "trace-1"), l))
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "An unexpected error occurred",
		errors.New("dial postgres://app:hunter2@db:5432/agencies failed"),
		WithTrace("goroutine 1 [running]"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "An unexpected error occurred", body.Errors.Message)
	assert.Equal(t, "goroutine 1 [running]", body.Errors.Trace)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.NotContains(t, entry["error"], "hunter2")
}

func TestRespondWithErrorAndLogLevels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		want   string
	}{
		{name: "client error", status: http.StatusNotFound, want: "DEBUG"},
		{name: "elevated client error", status: http.StatusUnauthorized, opts: []ResponseOption{WithElevatedLogLevel()}, want: "WARN"},
		{name: "server error", status: http.StatusInternalServerError, want: "ERROR"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var logs bytes.Buffer
			l := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
			req := httptest.NewRequest(http.MethodGet, "/api/agencies", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), l))

			RespondWithErrorAndLog(httptest.NewRecorder(), req, tc.status, "msg", nil, tc.opts...)

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tc.want, entry["level"])
		})
	}
}
