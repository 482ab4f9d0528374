package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/agency-api/internal/domain"
)

// AgencyStore persists agencies and owns the agency_service association.
type AgencyStore interface {
	// List returns all agencies ordered by id, each with its services.
	List(ctx context.Context) ([]*domain.Agency, error)

	// GetByID returns one agency with its services.
	// Returns ErrAgencyNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Agency, error)

	// Create inserts the agency and sets its ID.
	// Returns ErrDuplicate if a unique attribute is taken.
	Create(ctx context.Context, agency *domain.Agency) error

	// Update overwrites the attributes of an existing agency.
	// Returns ErrAgencyNotFound if it does not exist.
	Update(ctx context.Context, agency *domain.Agency) error

	// SetServices makes the stored associations of an agency exactly
	// serviceIDs.
	SetServices(ctx context.Context, agencyID int64, serviceIDs []int64) error

	// Conflicts returns the unique attributes of agency that are already used
	// by another agency.
	Conflicts(ctx context.Context, agency *domain.Agency) ([]string, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) AgencyStore
}
