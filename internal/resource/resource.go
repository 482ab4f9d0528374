// Package resource declares how agencies and services are exposed over
// JSON:API: their attribute order, which attributes are writable and which
// relationships link them.
package resource

import (
	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
)

// Relationship names.
const (
	ServicesRelationship = "services"
	AgenciesRelationship = "agencies"
)

// Agencies describes the agencies resource. Agencies are addressed by id.
var Agencies = jsonapi.NewDescriptor(domain.AgencyType, "id",
	func(a *domain.Agency) int64 { return a.ID },
	jsonapi.StringAttr("name",
		func(a *domain.Agency) string { return a.Name },
		func(a *domain.Agency, v string) { a.Name = v }).Prose(),
	jsonapi.StringAttr("contact_email",
		func(a *domain.Agency) string { return a.ContactEmail },
		func(a *domain.Agency, v string) { a.ContactEmail = v }),
	jsonapi.StringAttr("web_address",
		func(a *domain.Agency) string { return a.WebAddress },
		func(a *domain.Agency, v string) { a.WebAddress = v }),
	jsonapi.StringAttr("short_description",
		func(a *domain.Agency) string { return a.ShortDescription },
		func(a *domain.Agency, v string) { a.ShortDescription = v }).Prose(),
	jsonapi.StringAttr("established",
		func(a *domain.Agency) string { return a.Established },
		func(a *domain.Agency, v string) { a.Established = v }),
	jsonapi.ToMany(ServicesRelationship, domain.ServiceType,
		func(a *domain.Agency) []*domain.Service { return a.Services }),
)

// Services describes the services resource. Services are addressed by slug.
var Services = jsonapi.NewDescriptor(domain.ServiceType, "slug",
	func(s *domain.Service) int64 { return s.ID },
	jsonapi.StringAttr("name",
		func(s *domain.Service) string { return s.Name },
		func(s *domain.Service, v string) { s.Name = v }).Prose(),
	jsonapi.StringAttr("slug",
		func(s *domain.Service) string { return s.Slug },
		func(s *domain.Service, v string) { s.Slug = v }),
	jsonapi.ToMany(AgenciesRelationship, domain.AgencyType,
		func(s *domain.Service) []*domain.Agency { return s.Agencies }),
)

// NewRegistry returns a registry holding both resource types.
func NewRegistry() *jsonapi.Registry {
	return jsonapi.NewRegistry(Agencies, Services)
}
