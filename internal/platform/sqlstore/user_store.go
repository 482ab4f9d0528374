package sqlstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/store"
)

// VerifiedKeyTTL bounds how long a verified key is trusted without going
// back to app_users. Deleting a user takes effect within this window.
const VerifiedKeyTTL = 5 * time.Minute

// UserStore implements store.UserStore. Keys that passed a bcrypt comparison
// are remembered by their SHA-256 digest for VerifiedKeyTTL so repeated
// requests with the same key skip the hash.
type UserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
	verified   *sync.Map
	now        func() time.Time
}

type verifiedKey struct {
	user    domain.User
	expires time.Time
}

// NewUserStore creates a UserStore on db hashing new keys with bcryptCost.
func NewUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
		verified:   &sync.Map{},
		now:        time.Now,
	}
}

var _ store.UserStore = (*UserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
		verified:   s.verified,
		now:        s.now,
	}
}

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, username, apiKey string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateAPIKey(apiKey); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash api key: %w", err)
	}

	user := &domain.User{
		Username:     username,
		APIKeyPrefix: domain.APIKeyPrefix(apiKey),
		APIKeyHash:   string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO app_users (username, api_key_prefix, api_key_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		user.Username, user.APIKeyPrefix, user.APIKeyHash, user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("username already exists", slog.String("username", username))
			return nil, store.ErrUsernameExists
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("username", username))
		return nil, store.NewStoreError("user", "create", "insert failed", MapError(err))
	}

	log.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))
	return user, nil
}

// GetByAPIKey implements store.UserStore.GetByAPIKey.
func (s *UserStore) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if domain.ValidateAPIKey(apiKey) != nil {
		return nil, store.ErrUserNotFound
	}

	digest := keyDigest(apiKey)
	if cached, ok := s.verified.Load(digest); ok {
		entry := cached.(verifiedKey)
		if s.now().Before(entry.expires) {
			user := entry.user
			return &user, nil
		}
		s.verified.CompareAndDelete(digest, cached)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, api_key_prefix, api_key_hash, created_at
		FROM app_users
		WHERE api_key_prefix = $1
		ORDER BY id`,
		domain.APIKeyPrefix(apiKey))
	if err != nil {
		log.Error("failed to look up api key", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get by api key", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var candidates []*domain.User
	for rows.Next() {
		u := &domain.User{}
		if err := rows.Scan(&u.ID, &u.Username, &u.APIKeyPrefix, &u.APIKeyHash, &u.CreatedAt); err != nil {
			return nil, store.NewStoreError("user", "get by api key", "scan failed", err)
		}
		candidates = append(candidates, u)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("user", "get by api key", "row iteration failed", err)
	}

	for _, u := range candidates {
		err := bcrypt.CompareHashAndPassword([]byte(u.APIKeyHash), []byte(apiKey))
		if err == nil {
			s.verified.Store(digest, verifiedKey{user: *u, expires: s.now().Add(VerifiedKeyTTL)})
			user := *u
			return &user, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Warn("stored api key hash is unusable",
				slog.Int64("user_id", u.ID),
				slog.String("error", err.Error()))
		}
	}

	log.Debug("no user matches api key")
	return nil, store.ErrUserNotFound
}

func keyDigest(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}
