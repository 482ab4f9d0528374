package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/agency-api/internal/api/shared"
	"github.com/phrazzld/agency-api/internal/config"
	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/service"
)

// Prefix is the path under which the resource routes are mounted.
const Prefix = "/api"

// ResourceService is the application service behind the resource routes.
type ResourceService interface {
	Index(ctx context.Context, resourceType, baseURL string) (any, error)
	Item(ctx context.Context, resourceType, key, baseURL string) (any, error)
	RelatedIndex(ctx context.Context, resourceType, key, relation, baseURL string) (any, error)
	Relationships(ctx context.Context, resourceType, key, relation, baseURL string) (any, error)
	RelatedType(resourceType, relation string) (string, error)
	Create(ctx context.Context, resourceType string, data json.RawMessage, baseURL string) (any, error)
	Update(ctx context.Context, resourceType, key string, data json.RawMessage, baseURL string) (any, error)
}

// ResourceHandler serves the agencies and services resources.
type ResourceHandler struct {
	service ResourceService
	baseURL string
	debug   bool
	logger  *slog.Logger
}

// NewResourceHandler creates a new ResourceHandler. cfg supplies the public
// base URL, if any, and whether error responses carry stack traces.
func NewResourceHandler(svc ResourceService, cfg config.ServerConfig, logger *slog.Logger) *ResourceHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("service cannot be nil for ResourceHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ResourceHandler")
	}

	return &ResourceHandler{
		service: svc,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		debug:   cfg.Debug,
		logger:  logger.With(slog.String("component", "resource_handler")),
	}
}

// RegisterRoutes mounts the routes of both resources on r. Agencies are
// addressed by numeric id, services by slug.
func (h *ResourceHandler) RegisterRoutes(r chi.Router) {
	h.resourceRoutes(r, domain.AgencyType, "{key:[0-9]+}")
	h.resourceRoutes(r, domain.ServiceType, "{key}")
}

func (h *ResourceHandler) resourceRoutes(r chi.Router, resourceType, keyPattern string) {
	r.Route("/"+resourceType, func(r chi.Router) {
		r.Get("/", h.Index(resourceType))
		r.Post("/", h.Create(resourceType))
		r.Put("/", h.Update(resourceType))

		r.Route("/"+keyPattern, func(r chi.Router) {
			r.Get("/", h.Item(resourceType))
			r.Put("/", h.Update(resourceType))
			r.Get("/relationships", h.Relationships(resourceType))
			r.Get("/relationships/{relation}", h.Relationships(resourceType))
			r.Get("/relationships/{relation}/{otherKey}", h.Redirect(resourceType))
			r.Get("/{relation}", h.RelatedIndex(resourceType))
			r.Get("/{relation}/{otherKey}", h.Redirect(resourceType))
		})
	})
}

// Index handles GET /{resource}.
func (h *ResourceHandler) Index(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.Index(r.Context(), resourceType, h.apiRoot(r))
		h.respond(w, r, http.StatusOK, doc, err)
	}
}

// Item handles GET /{resource}/{key}.
func (h *ResourceHandler) Item(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.Item(r.Context(), resourceType, chi.URLParam(r, "key"), h.apiRoot(r))
		h.respond(w, r, http.StatusOK, doc, err)
	}
}

// RelatedIndex handles GET /{resource}/{key}/{relation}.
func (h *ResourceHandler) RelatedIndex(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.RelatedIndex(r.Context(), resourceType,
			chi.URLParam(r, "key"), chi.URLParam(r, "relation"), h.apiRoot(r))
		h.respond(w, r, http.StatusOK, doc, err)
	}
}

// Relationships handles GET /{resource}/{key}/relationships[/{relation}].
func (h *ResourceHandler) Relationships(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.Relationships(r.Context(), resourceType,
			chi.URLParam(r, "key"), chi.URLParam(r, "relation"), h.apiRoot(r))
		h.respond(w, r, http.StatusOK, doc, err)
	}
}

// Redirect handles links into a relationship that name a member, such as
// GET /agencies/1/services/seo, by redirecting to the member's own URL.
func (h *ResourceHandler) Redirect(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := h.service.RelatedType(resourceType, chi.URLParam(r, "relation"))
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		location := service.CollectionURL(h.apiRoot(r), target) + "/" + url.PathEscape(chi.URLParam(r, "otherKey"))
		logger.FromContextOrDefault(r.Context(), h.logger).Debug("redirecting to related resource",
			slog.String("from", r.URL.Path),
			slog.String("location", location))
		http.Redirect(w, r, location, http.StatusFound)
	}
}

// Create handles POST /{resource}.
func (h *ResourceHandler) Create(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeData(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		root := h.apiRoot(r)
		doc, err := h.service.Create(r.Context(), resourceType, data, root)
		if err == nil {
			w.Header().Set("Location", service.CollectionURL(root, resourceType))
		}
		h.respond(w, r, http.StatusCreated, doc, err)
	}
}

// Update handles PUT /{resource} and PUT /{resource}/{key}.
func (h *ResourceHandler) Update(resourceType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := decodeData(r)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		root := h.apiRoot(r)
		doc, err := h.service.Update(r.Context(), resourceType, chi.URLParam(r, "key"), data, root)
		if err == nil {
			w.Header().Set("Location", service.CollectionURL(root, resourceType))
		}
		h.respond(w, r, http.StatusCreated, doc, err)
	}
}

// decodeData returns the data member of the request document.
func decodeData(r *http.Request) (json.RawMessage, error) {
	var doc jsonapi.RequestDocument
	if err := shared.DecodeJSON(r, &doc); err != nil {
		return nil, jsonapi.NewRequestError(jsonapi.CodeMalformedMember, "JSON body is invalid: %s", err)
	}
	return doc.Data, nil
}

func (h *ResourceHandler) respond(w http.ResponseWriter, r *http.Request, status int, doc any, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, status, doc)
}

func (h *ResourceHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	var opts []shared.ResponseOption
	if h.debug {
		opts = append(opts, shared.WithTrace(errorTrace(err)))
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}

// errorTrace returns the stack captured when err was wrapped by the service.
// Client errors are not wrapped and report the response path instead.
func errorTrace(err error) string {
	var rsErr *service.ResourceServiceError
	if errors.As(err, &rsErr) && len(rsErr.Stack) > 0 {
		return string(rsErr.Stack)
	}
	return string(debug.Stack())
}

// apiRoot returns the absolute URL of the API root for links in responses.
func (h *ResourceHandler) apiRoot(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL + Prefix
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host + Prefix
}
