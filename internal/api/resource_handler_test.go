package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agency-api/internal/api"
	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/service"
)

// fakeService records the arguments of the last call and answers with doc
// and err.
type fakeService struct {
	doc any
	err error

	method       string
	resourceType string
	key          string
	relation     string
	baseURL      string
	data         json.RawMessage
}

func (f *fakeService) Index(ctx context.Context, resourceType, baseURL string) (any, error) {
	f.method, f.resourceType, f.baseURL = "Index", resourceType, baseURL
	return f.doc, f.err
}

func (f *fakeService) Item(ctx context.Context, resourceType, key, baseURL string) (any, error) {
	f.method, f.resourceType, f.key, f.baseURL = "Item", resourceType, key, baseURL
	return f.doc, f.err
}

func (f *fakeService) RelatedIndex(ctx context.Context, resourceType, key, relation, baseURL string) (any, error) {
	f.method, f.resourceType, f.key, f.relation, f.baseURL = "RelatedIndex", resourceType, key, relation, baseURL
	return f.doc, f.err
}

func (f *fakeService) Relationships(ctx context.Context, resourceType, key, relation, baseURL string) (any, error) {
	f.method, f.resourceType, f.key, f.relation, f.baseURL = "Relationships", resourceType, key, relation, baseURL
	return f.doc, f.err
}

func (f *fakeService) RelatedType(resourceType, relation string) (string, error) {
	f.method, f.resourceType, f.relation = "RelatedType", resourceType, relation
	if f.err != nil {
		return "", f.err
	}
	if relation == "services" {
		return "services", nil
	}
	return "agencies", nil
}

func (f *fakeService) Create(ctx context.Context, resourceType string, data json.RawMessage, baseURL string) (any, error) {
	f.method, f.resourceType, f.data, f.baseURL = "Create", resourceType, data, baseURL
	return f.doc, f.err
}

func (f *fakeService) Update(ctx context.Context, resourceType, key string, data json.RawMessage, baseURL string) (any, error) {
	f.method, f.resourceType, f.key, f.data, f.baseURL = "Update", resourceType, key, data, baseURL
	return f.doc, f.err
}

func newTestRouter(svc api.ResourceService, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Route(api.Prefix, api.NewResourceHandler(svc, cfg, slog.Default()).RegisterRoutes)
	return r
}

func TestRouting(t *testing.T) {
	tests := []struct {
		method       string
		path         string
		wantMethod   string
		wantType     string
		wantKey      string
		wantRelation string
		wantStatus   int
	}{
		{http.MethodGet, "/api/agencies", "Index", "agencies", "", "", http.StatusOK},
		{http.MethodGet, "/api/services", "Index", "services", "", "", http.StatusOK},
		{http.MethodGet, "/api/agencies/3", "Item", "agencies", "3", "", http.StatusOK},
		{http.MethodGet, "/api/services/web-development", "Item", "services", "web-development", "", http.StatusOK},
		{http.MethodGet, "/api/agencies/1/services", "RelatedIndex", "agencies", "1", "services", http.StatusOK},
		{http.MethodGet, "/api/services/seo/relationships", "Relationships", "services", "seo", "", http.StatusOK},
		{http.MethodGet, "/api/services/seo/relationships/agencies", "Relationships", "services", "seo", "agencies", http.StatusOK},
		{http.MethodPost, "/api/services", "Create", "services", "", "", http.StatusCreated},
		{http.MethodPut, "/api/agencies", "Update", "agencies", "", "", http.StatusCreated},
		{http.MethodPut, "/api/services/seo", "Update", "services", "seo", "", http.StatusCreated},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			svc := &fakeService{doc: map[string]any{"data": []any{}}}
			var body *strings.Reader
			if tc.method == http.MethodGet {
				body = strings.NewReader("")
			} else {
				body = strings.NewReader(`{"data": {"type": "x"}}`)
			}
			req := httptest.NewRequest(tc.method, tc.path, body)
			rec := httptest.NewRecorder()
			newTestRouter(svc, config.ServerConfig{}).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantMethod, svc.method)
			assert.Equal(t, tc.wantType, svc.resourceType)
			assert.Equal(t, tc.wantKey, svc.key)
			assert.Equal(t, tc.wantRelation, svc.relation)
			assert.Equal(t, "http://example.com/api", svc.baseURL)
		})
	}
}

func TestAgencyKeyMustBeNumeric(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()
	newTestRouter(svc, config.ServerConfig{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agencies/roro", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, svc.method)
}

func TestCreateSetsLocation(t *testing.T) {
	svc := &fakeService{doc: map[string]any{"data": []any{}}}
	req := httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(`{"data": {"type": "services"}}`))
	rec := httptest.NewRecorder()
	newTestRouter(svc, config.ServerConfig{BaseURL: "https://agencies.example.org/"}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "https://agencies.example.org/api/services", rec.Header().Get("Location"))
	assert.JSONEq(t, `{"type": "services"}`, string(svc.data))
}

func TestRedirect(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/agencies/1/services/seo", "http://example.com/api/services/seo"},
		{"/api/services/seo/agencies/2", "http://example.com/api/agencies/2"},
		{"/api/agencies/1/relationships/services/ppc", "http://example.com/api/services/ppc"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(&fakeService{}, config.ServerConfig{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tc.want, rec.Header().Get("Location"))
		})
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "not found",
			err:         &service.NotFoundError{Message: `Could not find type "agencies" with id: 9999`},
			wantStatus:  http.StatusNotFound,
			wantMessage: `Could not find type "agencies" with id: 9999`,
		},
		{
			name:        "bad request",
			err:         jsonapi.NewRequestError(jsonapi.CodeSlugBulkUpdate, "When using the 'PUT' method to update more than one item do not use a slug."),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "When using the 'PUT' method to update more than one item do not use a slug.",
		},
		{
			name:        "internal",
			err:         errors.New("disk I/O error"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestRouter(&fakeService{err: tc.err}, config.ServerConfig{}).
				ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agencies/9999", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			var body map[string]map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMessage, body["errors"]["message"])
			assert.NotContains(t, body["errors"], "trace")
		})
	}
}

func TestErrorTraceInDebugMode(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeService{err: errors.New("boom")}, config.ServerConfig{Debug: true}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["errors"]["trace"], "goroutine")
	assert.Contains(t, body["errors"]["trace"], "respondError")
}

func TestErrorTraceFromWrappingSite(t *testing.T) {
	wrapped := service.NewResourceServiceError("index", "failed to list services", errors.New("boom"))
	var rsErr *service.ResourceServiceError
	require.ErrorAs(t, wrapped, &rsErr)

	rec := httptest.NewRecorder()
	newTestRouter(&fakeService{err: wrapped}, config.ServerConfig{Debug: true}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(rsErr.Stack), body["errors"]["trace"])
	assert.Contains(t, body["errors"]["trace"], "TestErrorTraceFromWrappingSite")
	assert.NotContains(t, body["errors"]["trace"], "respondError")
}

func TestMalformedBody(t *testing.T) {
	svc := &fakeService{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/services", strings.NewReader(`[1, 2]`))
	newTestRouter(svc, config.ServerConfig{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "JSON body is invalid")
	assert.Empty(t, svc.method)
}

func TestNewResourceHandlerPanics(t *testing.T) {
	assert.Panics(t, func() { api.NewResourceHandler(nil, config.ServerConfig{}, slog.Default()) })
	assert.Panics(t, func() { api.NewResourceHandler(&fakeService{}, config.ServerConfig{}, nil) })
}
