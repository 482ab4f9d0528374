package mocks

import (
	"context"
	"database/sql"
	"sync"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Users are keyed by
// their plaintext API key.
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn      func(ctx context.Context, username, apiKey string) (*domain.User, error)
	GetByAPIKeyFn func(ctx context.Context, apiKey string) (*domain.User, error)

	// Data for default implementation
	Users map[string]*domain.User
	Err   error

	// Call tracking for verification
	GetByAPIKeyCalls struct {
		mu   sync.Mutex
		Keys []string
	}

	nextID int64
}

// NewMockUserStore creates a mock store holding users.
func NewMockUserStore(users map[string]*domain.User) *MockUserStore {
	if users == nil {
		users = make(map[string]*domain.User)
	}
	return &MockUserStore{Users: users}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, username, apiKey string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, username, apiKey)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if err := domain.ValidateAPIKey(apiKey); err != nil {
		return nil, store.NewStoreError("user", "create", "invalid api key", err)
	}
	for _, u := range m.Users {
		if u.Username == username {
			return nil, store.ErrUsernameExists
		}
	}

	m.nextID++
	user := &domain.User{
		ID:           m.nextID,
		Username:     username,
		APIKeyPrefix: domain.APIKeyPrefix(apiKey),
		APIKeyHash:   "mock-hash",
	}
	m.Users[apiKey] = user
	return user, nil
}

// GetByAPIKey implements the UserStore interface
func (m *MockUserStore) GetByAPIKey(ctx context.Context, apiKey string) (*domain.User, error) {
	m.GetByAPIKeyCalls.mu.Lock()
	m.GetByAPIKeyCalls.Keys = append(m.GetByAPIKeyCalls.Keys, apiKey)
	m.GetByAPIKeyCalls.mu.Unlock()

	if m.GetByAPIKeyFn != nil {
		return m.GetByAPIKeyFn(ctx, apiKey)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	user, ok := m.Users[apiKey]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// WithTx implements the UserStore interface. The mock has no transactional
// state and returns itself.
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}

// LookupCount returns how many times GetByAPIKey was called.
func (m *MockUserStore) LookupCount() int {
	m.GetByAPIKeyCalls.mu.Lock()
	defer m.GetByAPIKeyCalls.mu.Unlock()
	return len(m.GetByAPIKeyCalls.Keys)
}
