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

const agencyColumns = `a.id, a.name, a.contact_email, a.web_address, a.short_description, a.established`

// AgencyStore implements store.AgencyStore.
type AgencyStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAgencyStore creates an AgencyStore on db. A nil logger means the slog
// default.
func NewAgencyStore(db store.DBTX, logger *slog.Logger) *AgencyStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AgencyStore{
		db:     db,
		logger: logger.With(slog.String("component", "agency_store")),
	}
}

var _ store.AgencyStore = (*AgencyStore)(nil)

// WithTx implements store.AgencyStore.WithTx.
func (s *AgencyStore) WithTx(tx *sql.Tx) store.AgencyStore {
	return &AgencyStore{db: tx, logger: s.logger}
}

// List implements store.AgencyStore.List.
func (s *AgencyStore) List(ctx context.Context) ([]*domain.Agency, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT `+agencyColumns+` FROM agencies a ORDER BY a.id`)
	if err != nil {
		log.Error("failed to list agencies", slog.String("error", err.Error()))
		return nil, store.NewStoreError("agency", "list", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	agencies := []*domain.Agency{}
	byID := map[int64]*domain.Agency{}
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, store.NewStoreError("agency", "list", "scan failed", err)
		}
		agencies = append(agencies, a)
		byID[a.ID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("agency", "list", "row iteration failed", err)
	}

	links, err := s.linkedServices(ctx, 0)
	if err != nil {
		return nil, err
	}
	for agencyID, services := range links {
		if a, ok := byID[agencyID]; ok {
			a.Services = services
		}
	}

	log.Debug("listed agencies", slog.Int("count", len(agencies)))
	return agencies, nil
}

// GetByID implements store.AgencyStore.GetByID.
func (s *AgencyStore) GetByID(ctx context.Context, id int64) (*domain.Agency, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+agencyColumns+` FROM agencies a WHERE a.id = $1`, id)
	a, err := scanAgency(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("agency not found", slog.Int64("agency_id", id))
			return nil, store.ErrAgencyNotFound
		}
		log.Error("failed to get agency",
			slog.String("error", err.Error()),
			slog.Int64("agency_id", id))
		return nil, store.NewStoreError("agency", "get", "query failed", MapError(err))
	}

	links, err := s.linkedServices(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Services = links[id]
	return a, nil
}

// Create implements store.AgencyStore.Create.
func (s *AgencyStore) Create(ctx context.Context, agency *domain.Agency) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO agencies (name, contact_email, web_address, short_description, established)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		agency.Name,
		agency.ContactEmail,
		agency.WebAddress,
		agency.ShortDescription,
		agency.Established,
	).Scan(&agency.ID)
	if err != nil {
		log.Error("failed to create agency",
			slog.String("error", err.Error()),
			slog.String("name", agency.Name))
		return store.NewStoreError("agency", "create", "insert failed", MapError(err))
	}

	log.Info("agency created", slog.Int64("agency_id", agency.ID))
	return nil
}

// Update implements store.AgencyStore.Update.
func (s *AgencyStore) Update(ctx context.Context, agency *domain.Agency) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE agencies
		SET name = $1, contact_email = $2, web_address = $3, short_description = $4, established = $5
		WHERE id = $6`,
		agency.Name,
		agency.ContactEmail,
		agency.WebAddress,
		agency.ShortDescription,
		agency.Established,
		agency.ID,
	)
	if err != nil {
		log.Error("failed to update agency",
			slog.String("error", err.Error()),
			slog.Int64("agency_id", agency.ID))
		return store.NewStoreError("agency", "update", "update failed", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrAgencyNotFound); err != nil {
		return err
	}

	log.Info("agency updated", slog.Int64("agency_id", agency.ID))
	return nil
}

// SetServices implements store.AgencyStore.SetServices.
func (s *AgencyStore) SetServices(ctx context.Context, agencyID int64, serviceIDs []int64) error {
	if err := replaceLinks(ctx, s.db, "agency_id", agencyID, "service_id", serviceIDs); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to set agency services",
			slog.String("error", err.Error()),
			slog.Int64("agency_id", agencyID))
		return store.NewStoreError("agency", "set services", "link update failed", MapError(err))
	}
	return nil
}

// Conflicts implements store.AgencyStore.Conflicts.
func (s *AgencyStore) Conflicts(ctx context.Context, agency *domain.Agency) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contact_email, web_address
		FROM agencies
		WHERE (contact_email = $1 OR web_address = $2) AND id <> $3`,
		agency.ContactEmail, agency.WebAddress, agency.ID)
	if err != nil {
		return nil, store.NewStoreError("agency", "conflicts", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var emailTaken, webTaken bool
	for rows.Next() {
		var email, web string
		if err := rows.Scan(&email, &web); err != nil {
			return nil, store.NewStoreError("agency", "conflicts", "scan failed", err)
		}
		emailTaken = emailTaken || email == agency.ContactEmail
		webTaken = webTaken || web == agency.WebAddress
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("agency", "conflicts", "row iteration failed", err)
	}

	var fields []string
	if emailTaken {
		fields = append(fields, "contact_email")
	}
	if webTaken {
		fields = append(fields, "web_address")
	}
	return fields, nil
}

// linkedServices loads the services linked to agencyID, or to every agency
// when agencyID is 0. The services are partial: their own Agencies are not
// loaded.
func (s *AgencyStore) linkedServices(ctx context.Context, agencyID int64) (map[int64][]*domain.Service, error) {
	query := `
		SELECT l.agency_id, s.id, s.name, s.slug
		FROM agency_service l
		JOIN services s ON s.id = l.service_id`
	var args []any
	if agencyID != 0 {
		query += ` WHERE l.agency_id = $1`
		args = append(args, agencyID)
	}
	query += ` ORDER BY l.agency_id, s.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("agency", "load services", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	links := map[int64][]*domain.Service{}
	for rows.Next() {
		var owner int64
		svc := &domain.Service{}
		if err := rows.Scan(&owner, &svc.ID, &svc.Name, &svc.Slug); err != nil {
			return nil, store.NewStoreError("agency", "load services", "scan failed", err)
		}
		links[owner] = append(links[owner], svc)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("agency", "load services", "row iteration failed", err)
	}
	return links, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgency(row scanner) (*domain.Agency, error) {
	a := &domain.Agency{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ContactEmail,
		&a.WebAddress,
		&a.ShortDescription,
		&a.Established,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// replaceLinks makes the agency_service rows for one owner exactly ids.
func replaceLinks(ctx context.Context, db store.DBTX, ownerColumn string, ownerID int64, otherColumn string, ids []int64) error {
	if _, err := db.ExecContext(ctx,
		`DELETE FROM agency_service WHERE `+ownerColumn+` = $1`, ownerID); err != nil {
		return err
	}

	seen := make(map[int64]bool, len(ids))
	insert := `INSERT INTO agency_service (` + ownerColumn + `, ` + otherColumn + `) VALUES ($1, $2)`
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := db.ExecContext(ctx, insert, ownerID, id); err != nil {
			return err
		}
	}
	return nil
}
