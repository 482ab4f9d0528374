// Package fixtures holds the sample directory data used by tests and by the
// server's -seed flag. Loading is always an explicit step; nothing in the
// application core calls it.
package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
	"github.com/phrazzld/agency-api/internal/store"
)

// Credentials of the seeded API user.
const (
	Username = "test"
	APIKey   = "1234567890"
)

// Services are the seeded services in insertion order, so the first one gets
// id 1 on an empty database.
var Services = []domain.Service{
	{Name: "Web Development", Slug: "web-development"},
	{Name: "PPC", Slug: "ppc"},
	{Name: "SEO", Slug: "seo"},
}

// SeedAgency is an agency fixture with the slugs of its services.
type SeedAgency struct {
	Agency   domain.Agency
	Services []string
}

// Agencies are the seeded agencies in insertion order.
var Agencies = []SeedAgency{
	{
		Agency: domain.Agency{
			Name:             "RoRo's Rocket Chips",
			ContactEmail:     "hello@roro.com",
			WebAddress:       "http://roro.com",
			ShortDescription: "The fieriest chips known to man.",
			Established:      "2019",
		},
		Services: []string{"web-development", "ppc"},
	},
	{
		Agency: domain.Agency{
			Name:             "Heavy Profesh Web Dev",
			ContactEmail:     "us@greatdevs.biz",
			WebAddress:       "https://greatdevs.biz",
			ShortDescription: "The most professional developers in town.",
			Established:      "1994",
		},
		Services: []string{"web-development", "seo"},
	},
	{
		Agency: domain.Agency{
			Name:             "Shass Kinsalott",
			ContactEmail:     "sounds@shasskinsal.ot",
			WebAddress:       "https://shasskinsal.ot",
			ShortDescription: "Post-modern audio branding agency based in London.",
			Established:      "2000",
		},
		Services: []string{"ppc", "seo"},
	},
}

// Load inserts every fixture in one transaction.
func Load(ctx context.Context, db *sql.DB, bcryptCost int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		services := sqlstore.NewServiceStore(tx, logger)
		agencies := sqlstore.NewAgencyStore(tx, logger)
		users := sqlstore.NewUserStore(tx, bcryptCost, logger)

		ids := make(map[string]int64, len(Services))
		for _, fixture := range Services {
			svc := fixture
			if err := services.Create(ctx, &svc); err != nil {
				return fmt.Errorf("seeding service %q: %w", svc.Slug, err)
			}
			ids[svc.Slug] = svc.ID
		}

		for _, fixture := range Agencies {
			agency := fixture.Agency
			if err := agencies.Create(ctx, &agency); err != nil {
				return fmt.Errorf("seeding agency %q: %w", agency.Name, err)
			}
			serviceIDs := make([]int64, 0, len(fixture.Services))
			for _, slug := range fixture.Services {
				serviceIDs = append(serviceIDs, ids[slug])
			}
			if err := agencies.SetServices(ctx, agency.ID, serviceIDs); err != nil {
				return fmt.Errorf("linking agency %q: %w", agency.Name, err)
			}
		}

		if _, err := users.Create(ctx, Username, APIKey); err != nil {
			return fmt.Errorf("seeding user %q: %w", Username, err)
		}

		logger.Info("fixtures loaded",
			slog.Int("services", len(Services)),
			slog.Int("agencies", len(Agencies)))
		return nil
	})
}
