package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/agency-api/internal/domain"
)

// ServiceStore persists services. Links written through SetAgencies land in
// the same agency_service table the AgencyStore maintains.
type ServiceStore interface {
	// List returns all services ordered by id, each with its agencies.
	List(ctx context.Context) ([]*domain.Service, error)

	// GetByID returns one service with its agencies.
	// Returns ErrServiceNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Service, error)

	// GetBySlug returns one service with its agencies.
	// Returns ErrServiceNotFound if it does not exist.
	GetBySlug(ctx context.Context, slug string) (*domain.Service, error)

	// Create inserts the service and sets its ID.
	Create(ctx context.Context, service *domain.Service) error

	// Update overwrites name and slug of an existing service.
	Update(ctx context.Context, service *domain.Service) error

	// SetAgencies makes the stored associations of a service exactly
	// agencyIDs.
	SetAgencies(ctx context.Context, serviceID int64, agencyIDs []int64) error

	// Conflicts returns the unique attributes of service already used by
	// another service.
	Conflicts(ctx context.Context, service *domain.Service) ([]string, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) ServiceStore
}
