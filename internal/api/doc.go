// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between JSON:API clients
// and the resource service, translating HTTP concerns to reads and writes of
// agencies and services.
package api
