package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/store"
)

// ServiceStore implements store.ServiceStore.
type ServiceStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewServiceStore creates a ServiceStore on db.
func NewServiceStore(db store.DBTX, logger *slog.Logger) *ServiceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ServiceStore{
		db:     db,
		logger: logger.With(slog.String("component", "service_store")),
	}
}

var _ store.ServiceStore = (*ServiceStore)(nil)

// WithTx implements store.ServiceStore.WithTx.
func (s *ServiceStore) WithTx(tx *sql.Tx) store.ServiceStore {
	return &ServiceStore{db: tx, logger: s.logger}
}

// List implements store.ServiceStore.List.
func (s *ServiceStore) List(ctx context.Context) ([]*domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug FROM services ORDER BY id`)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list services",
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("service", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	services := []*domain.Service{}
	byID := map[int64]*domain.Service{}
	for rows.Next() {
		svc := &domain.Service{}
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Slug); err != nil {
			return nil, store.NewStoreError("service", "list", "scan failed", err)
		}
		services = append(services, svc)
		byID[svc.ID] = svc
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("service", "list", "row iteration failed", err)
	}

	links, err := s.linkedAgencies(ctx, 0)
	if err != nil {
		return nil, err
	}
	for serviceID, agencies := range links {
		if svc, ok := byID[serviceID]; ok {
			svc.Agencies = agencies
		}
	}
	return services, nil
}

// GetByID implements store.ServiceStore.GetByID.
func (s *ServiceStore) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	return s.getOne(ctx, `SELECT id, name, slug FROM services WHERE id = $1`, id)
}

// GetBySlug implements store.ServiceStore.GetBySlug.
func (s *ServiceStore) GetBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	return s.getOne(ctx, `SELECT id, name, slug FROM services WHERE slug = $1`, slug)
}

func (s *ServiceStore) getOne(ctx context.Context, query string, arg any) (*domain.Service, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	svc := &domain.Service{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&svc.ID, &svc.Name, &svc.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("service not found", slog.Any("lookup", arg))
			return nil, store.ErrServiceNotFound
		}
		log.Error("failed to get service",
			slog.String("error", err.Error()),
			slog.Any("lookup", arg))
		return nil, store.NewStoreError("service", "get", "query failed", MapError(err))
	}

	links, err := s.linkedAgencies(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	svc.Agencies = links[svc.ID]
	return svc, nil
}

// Create implements store.ServiceStore.Create.
func (s *ServiceStore) Create(ctx context.Context, service *domain.Service) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO services (name, slug) VALUES ($1, $2) RETURNING id`,
		service.Name, service.Slug,
	).Scan(&service.ID)
	if err != nil {
		log.Error("failed to create service",
			slog.String("error", err.Error()),
			slog.String("slug", service.Slug))
		return store.NewStoreError("service", "create", "insert failed", MapError(err))
	}

	log.Info("service created",
		slog.Int64("service_id", service.ID),
		slog.String("slug", service.Slug))
	return nil
}

// Update implements store.ServiceStore.Update.
func (s *ServiceStore) Update(ctx context.Context, service *domain.Service) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE services SET name = $1, slug = $2 WHERE id = $3`,
		service.Name, service.Slug, service.ID)
	if err != nil {
		log.Error("failed to update service",
			slog.String("error", err.Error()),
			slog.Int64("service_id", service.ID))
		return store.NewStoreError("service", "update", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrServiceNotFound); err != nil {
		return err
	}

	log.Info("service updated", slog.Int64("service_id", service.ID))
	return nil
}

// SetAgencies implements store.ServiceStore.SetAgencies.
func (s *ServiceStore) SetAgencies(ctx context.Context, serviceID int64, agencyIDs []int64) error {
	if err := replaceLinks(ctx, s.db, "service_id", serviceID, "agency_id", agencyIDs); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to set service agencies",
			slog.String("error", err.Error()),
			slog.Int64("service_id", serviceID))
		return store.NewStoreError("service", "set agencies", "link update failed", MapError(err))
	}
	return nil
}

// Conflicts implements store.ServiceStore.Conflicts.
func (s *ServiceStore) Conflicts(ctx context.Context, service *domain.Service) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, slug
		FROM services
		WHERE (name = $1 OR slug = $2) AND id <> $3`,
		service.Name, service.Slug, service.ID)
	if err != nil {
		return nil, store.NewStoreError("service", "conflicts", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var nameTaken, slugTaken bool
	for rows.Next() {
		var name, slug string
		if err := rows.Scan(&name, &slug); err != nil {
			return nil, store.NewStoreError("service", "conflicts", "scan failed", err)
		}
		nameTaken = nameTaken || name == service.Name
		slugTaken = slugTaken || slug == service.Slug
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("service", "conflicts", "row iteration failed", err)
	}

	var fields []string
	if nameTaken {
		fields = append(fields, "name")
	}
	if slugTaken {
		fields = append(fields, "slug")
	}
	return fields, nil
}

// linkedAgencies loads the agencies linked to serviceID, or to every service
// when serviceID is 0. The agencies come without their own services.
func (s *ServiceStore) linkedAgencies(ctx context.Context, serviceID int64) (map[int64][]*domain.Agency, error) {
	query := `
		SELECT l.service_id, ` + agencyColumns + `
		FROM agency_service l
		JOIN agencies a ON a.id = l.agency_id`
	var args []any
	if serviceID != 0 {
		query += ` WHERE l.service_id = $1`
		args = append(args, serviceID)
	}
	query += ` ORDER BY l.service_id, a.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("service", "load agencies", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	links := map[int64][]*domain.Agency{}
	for rows.Next() {
		var owner int64
		a := &domain.Agency{}
		err := rows.Scan(&owner,
			&a.ID, &a.Name, &a.ContactEmail, &a.WebAddress, &a.ShortDescription, &a.Established)
		if err != nil {
			return nil, store.NewStoreError("service", "load agencies", "scan failed", err)
		}
		links[owner] = append(links[owner], a)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("service", "load agencies", "row iteration failed", err)
	}
	return links, nil
}
