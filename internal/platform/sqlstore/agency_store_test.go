package sqlstore_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/platform/sqlstore"
	"github.com/phrazzld/agency-api/internal/store"
	"github.com/phrazzld/agency-api/internal/testdb"
)

func serviceSlugs(services []*domain.Service) []string {
	slugs := make([]string, 0, len(services))
	for _, s := range services {
		slugs = append(slugs, s.Slug)
	}
	return slugs
}

func TestAgencyStoreReadsFixtures(t *testing.T) {
	db := testdb.Seeded(t)
	agencies := sqlstore.NewAgencyStore(db, nil)
	ctx := context.Background()

	list, err := agencies.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "RoRo's Rocket Chips", list[0].Name)
	assert.Equal(t, []string{"web-development", "ppc"}, serviceSlugs(list[0].Services))
	assert.Equal(t, []string{"web-development", "seo"}, serviceSlugs(list[1].Services))

	a, err := agencies.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Shass Kinsalott", a.Name)
	assert.Equal(t, "sounds@shasskinsal.ot", a.ContactEmail)
	assert.Equal(t, "2000", a.Established)
	assert.Equal(t, []string{"ppc", "seo"}, serviceSlugs(a.Services))

	_, err = agencies.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, store.ErrAgencyNotFound)
}

func TestAgencyStoreCreateUpdateAndLinks(t *testing.T) {
	db := testdb.Seeded(t)
	agencies := sqlstore.NewAgencyStore(db, nil)
	ctx := context.Background()

	a := &domain.Agency{
		Name:         "Quiet Pixels",
		ContactEmail: "hi@quietpixels.io",
		WebAddress:   "https://quietpixels.io",
	}
	require.NoError(t, agencies.Create(ctx, a))
	assert.Equal(t, int64(4), a.ID)

	require.NoError(t, agencies.SetServices(ctx, a.ID, []int64{3, 1, 3}))
	got, err := agencies.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"web-development", "seo"}, serviceSlugs(got.Services))

	got.Name = "Loud Pixels"
	got.Established = "2021"
	require.NoError(t, agencies.Update(ctx, got))

	got, err = agencies.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loud Pixels", got.Name)
	assert.Equal(t, "2021", got.Established)

	require.NoError(t, agencies.SetServices(ctx, a.ID, nil))
	got, err = agencies.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Services)

	err = agencies.Update(ctx, &domain.Agency{ID: 9999, Name: "x", ContactEmail: "x@x.io", WebAddress: "x"})
	assert.ErrorIs(t, err, store.ErrAgencyNotFound)
}

func TestAgencyStoreUniqueness(t *testing.T) {
	db := testdb.Seeded(t)
	agencies := sqlstore.NewAgencyStore(db, nil)
	ctx := context.Background()

	clash := &domain.Agency{
		Name:         "Copycat",
		ContactEmail: "hello@roro.com",
		WebAddress:   "https://greatdevs.biz",
	}

	fields, err := agencies.Conflicts(ctx, clash)
	require.NoError(t, err)
	assert.Equal(t, []string{"contact_email", "web_address"}, fields)

	err = agencies.Create(ctx, clash)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	// An agency never conflicts with itself.
	own, err := agencies.GetByID(ctx, 1)
	require.NoError(t, err)
	fields, err = agencies.Conflicts(ctx, own)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestAgencyStoreForeignKeys(t *testing.T) {
	db := testdb.Seeded(t)
	agencies := sqlstore.NewAgencyStore(db, nil)

	err := agencies.SetServices(context.Background(), 1, []int64{42})
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestAgencyStoreWithTxRollsBack(t *testing.T) {
	db := testdb.Seeded(t)
	agencies := sqlstore.NewAgencyStore(db, nil)
	ctx := context.Background()

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		a := &domain.Agency{Name: "Ephemeral", ContactEmail: "gone@soon.io", WebAddress: "https://soon.io"}
		require.NoError(t, agencies.WithTx(tx).Create(ctx, a))
	})

	list, err := agencies.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
