package domain

import "strconv"

// AgencyType is the resource type name of agencies.
const AgencyType = "agencies"

// Agency is a company listed in the directory. It owns the agency_service
// association: the services it offers are persisted from this side.
type Agency struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name" validate:"required,max=255"`
	ContactEmail     string     `json:"contact_email" validate:"required,email,max=255"`
	WebAddress       string     `json:"web_address" validate:"required,max=255"`
	ShortDescription string     `json:"short_description"`
	Established      string     `json:"established" validate:"omitempty,max=4,numeric"`
	Services         []*Service `json:"-"`
}

// Key returns the external identifier used in URLs, which for agencies is the
// numeric id.
func (a *Agency) Key() string {
	return strconv.FormatInt(a.ID, 10)
}

// IsNew reports whether the agency has not been stored yet.
func (a *Agency) IsNew() bool {
	return a.ID == 0
}

// ServiceIDs lists the ids of the linked services in their current order.
func (a *Agency) ServiceIDs() []int64 {
	ids := make([]int64, 0, len(a.Services))
	for _, s := range a.Services {
		ids = append(ids, s.ID)
	}
	return ids
}

// HasService reports whether a service with the given id is linked.
func (a *Agency) HasService(id int64) bool {
	for _, s := range a.Services {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Validate checks the declarative rules of the agency. Uniqueness of
// contact_email and web_address needs the store and is checked elsewhere.
func (a *Agency) Validate() error {
	return validateEntity(a, AgencyType, a.Key())
}
