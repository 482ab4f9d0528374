package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/agency-api/internal/api/shared"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/store"
)

// APIKeyHeader is the request header holding the client's API key.
const APIKeyHeader = "X-API-Key"

// Messages returned to unauthenticated clients.
const (
	MissingAPIKeyMessage = "No API key in headers"
	UnknownAPIKeyMessage = "No user exists for the supplied API key."
)

// AuthMiddleware authenticates requests by API key.
type AuthMiddleware struct {
	users store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(users store.UserStore) *AuthMiddleware {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{users: users}
}

// Authenticate resolves the X-API-Key header to a stored user and adds the
// user to the request context. Requests without a matching key are refused
// with 401 before reaching the handler.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(APIKeyHeader)
		if key == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, MissingAPIKeyMessage)
			return
		}

		user, err := m.users.GetByAPIKey(r.Context(), key)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, UnknownAPIKeyMessage, err,
					shared.WithElevatedLogLevel())
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		logger.FromContext(r.Context()).Debug("request authenticated",
			slog.Int64("user_id", user.ID),
			slog.String("username", user.Username))

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}
