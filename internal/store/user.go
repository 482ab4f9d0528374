package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/agency-api/internal/domain"
)

// UserStore persists API users.
type UserStore interface {
	// Create hashes apiKey, stores the user and sets its ID.
	// Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, username, apiKey string) (*domain.User, error)

	// GetByAPIKey returns the user owning apiKey.
	// Returns ErrUserNotFound when no stored hash matches.
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error)

	// WithTx returns a store bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
