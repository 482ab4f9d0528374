package service

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/store"
)

type mockAgencyStore struct {
	mock.Mock
}

func (m *mockAgencyStore) List(ctx context.Context) ([]*domain.Agency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Agency), args.Error(1)
}

func (m *mockAgencyStore) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Agency), args.Error(1)
}

func (m *mockAgencyStore) Create(ctx context.Context, agency *domain.Agency) error {
	return m.Called(ctx, agency).Error(0)
}

func (m *mockAgencyStore) Update(ctx context.Context, agency *domain.Agency) error {
	return m.Called(ctx, agency).Error(0)
}

func (m *mockAgencyStore) SetServices(ctx context.Context, agencyID int64, serviceIDs []int64) error {
	return m.Called(ctx, agencyID, serviceIDs).Error(0)
}

func (m *mockAgencyStore) Conflicts(ctx context.Context, agency *domain.Agency) ([]string, error) {
	args := m.Called(ctx, agency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAgencyStore) WithTx(tx *sql.Tx) store.AgencyStore {
	return m
}

type mockServiceStore struct {
	mock.Mock
}

func (m *mockServiceStore) List(ctx context.Context) ([]*domain.Service, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Service), args.Error(1)
}

func (m *mockServiceStore) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceStore) GetBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *mockServiceStore) Create(ctx context.Context, service *domain.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *mockServiceStore) Update(ctx context.Context, service *domain.Service) error {
	return m.Called(ctx, service).Error(0)
}

func (m *mockServiceStore) SetAgencies(ctx context.Context, serviceID int64, agencyIDs []int64) error {
	return m.Called(ctx, serviceID, agencyIDs).Error(0)
}

func (m *mockServiceStore) Conflicts(ctx context.Context, service *domain.Service) ([]string, error) {
	args := m.Called(ctx, service)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockServiceStore) WithTx(tx *sql.Tx) store.ServiceStore {
	return m
}
