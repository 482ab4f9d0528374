package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/store"
)

// loadedGraph returns a graph that already holds agency 1 linked to services
// 1, 2 and 3, plus an unlinked service 4.
func loadedGraph(agencies store.AgencyStore, services store.ServiceStore) (*graph, *domain.Agency) {
	g := newGraph(agencies, services)
	agency := &domain.Agency{ID: 1, Name: "RoRo's Rocket Chips"}
	g.agencies[1] = agency
	for id := int64(1); id <= 4; id++ {
		svc := &domain.Service{ID: id}
		g.services[id] = svc
		if id <= 3 {
			linkAgencyService(agency, svc)
		}
	}
	return g, agency
}

func serviceIDs(a *domain.Agency) []int64 {
	return a.ServiceIDs()
}

func TestReconcileReplacesMembers(t *testing.T) {
	g, agency := loadedGraph(nil, nil)

	delta, err := g.Reconcile(context.Background(), agency, "services", []int64{2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []int64{1}, delta.Removed)
	assert.Equal(t, []int64{4}, delta.Added)
	assert.ElementsMatch(t, []int64{2, 3, 4}, serviceIDs(agency))

	assert.Empty(t, g.services[1].Agencies, "removed service must drop the agency too")
	for _, id := range []int64{2, 3, 4} {
		require.Len(t, g.services[id].Agencies, 1)
		assert.Same(t, agency, g.services[id].Agencies[0])
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	g, agency := loadedGraph(nil, nil)

	_, err := g.Reconcile(context.Background(), agency, "services", []int64{2, 3, 4})
	require.NoError(t, err)

	delta, err := g.Reconcile(context.Background(), agency, "services", []int64{4, 3, 2})
	require.NoError(t, err)
	assert.True(t, delta.Empty())
	assert.ElementsMatch(t, []int64{2, 3, 4}, serviceIDs(agency))
}

func TestReconcileIgnoresDuplicates(t *testing.T) {
	g, agency := loadedGraph(nil, nil)

	delta, err := g.Reconcile(context.Background(), agency, "services", []int64{4, 4, 1, 1})
	require.NoError(t, err)

	assert.Equal(t, []int64{4}, delta.Added)
	assert.ElementsMatch(t, []int64{2, 3}, delta.Removed)
	assert.ElementsMatch(t, []int64{1, 4}, serviceIDs(agency))
	assert.Len(t, g.services[4].Agencies, 1)
}

func TestReconcileEmptyClearsRelation(t *testing.T) {
	g, agency := loadedGraph(nil, nil)

	delta, err := g.Reconcile(context.Background(), agency, "services", nil)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int64{1, 2, 3}, delta.Removed)
	assert.Empty(t, agency.Services)
	for id := int64(1); id <= 3; id++ {
		assert.Empty(t, g.services[id].Agencies)
	}
}

func TestReconcileFromServiceSide(t *testing.T) {
	g, agency := loadedGraph(nil, nil)
	other := &domain.Agency{ID: 2}
	g.agencies[2] = other
	svc := g.services[4]

	delta, err := g.Reconcile(context.Background(), svc, "agencies", []int64{1, 2})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, delta.Added)
	assert.Equal(t, []int64{1, 2}, svc.AgencyIDs())
	assert.True(t, agency.HasService(4))
	assert.True(t, other.HasService(4))
}

func TestReconcileUnknownIDLeavesGraphUntouched(t *testing.T) {
	services := new(mockServiceStore)
	services.On("GetByID", mock.Anything, int64(99)).Return(nil, store.ErrServiceNotFound)

	g, agency := loadedGraph(nil, services)

	_, err := g.Reconcile(context.Background(), agency, "services", []int64{4, 99})
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, `Could not find type "services" with id: 99`, notFound.Message)
	assert.Equal(t, []int64{1, 2, 3}, serviceIDs(agency))
	assert.Empty(t, g.services[4].Agencies)
	services.AssertExpectations(t)
}

func TestReconcileRejectsUnknownRelation(t *testing.T) {
	g, agency := loadedGraph(nil, nil)

	_, err := g.Reconcile(context.Background(), agency, "agencies", []int64{1})
	assert.Error(t, err)

	_, err = g.Reconcile(context.Background(), "not an entity", "services", nil)
	assert.Error(t, err)
}
