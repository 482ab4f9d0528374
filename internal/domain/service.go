package domain

// ServiceType is the resource type name of services.
const ServiceType = "services"

// Service is something an agency offers, such as "SEO". Services are
// addressed by slug rather than id.
type Service struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name" validate:"required,max=255"`
	Slug     string    `json:"slug" validate:"required,max=255"`
	Agencies []*Agency `json:"-"`
}

// Key returns the slug.
func (s *Service) Key() string {
	return s.Slug
}

// IsNew reports whether the service has not been stored yet.
func (s *Service) IsNew() bool {
	return s.ID == 0
}

// AgencyIDs lists the ids of the linked agencies.
func (s *Service) AgencyIDs() []int64 {
	ids := make([]int64, 0, len(s.Agencies))
	for _, a := range s.Agencies {
		ids = append(ids, a.ID)
	}
	return ids
}

// HasAgency reports whether an agency with the given id is linked.
func (s *Service) HasAgency(id int64) bool {
	for _, a := range s.Agencies {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Validate checks required fields and lengths. Unique name and slug are
// enforced against the store.
func (s *Service) Validate() error {
	return validateEntity(s, ServiceType, s.Slug)
}
