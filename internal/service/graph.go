package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/store"
)

// graph is the unit of work of one write request. Every stored entity it
// hands out is canonical: asking twice for the same row yields the same
// pointer, and the relationship lists of canonical entities point at the
// canonical instance of every related entity the graph has loaded. Related
// entities the graph has not loaded stay as the partial copies the store
// returned.
//
// A link between two entities is only ever changed after both are canonical,
// so adopting a new entity never has to merge diverging views of a link; it
// only swaps partial copies for canonical ones.
type graph struct {
	agencyStore  store.AgencyStore
	serviceStore store.ServiceStore

	agencies map[int64]*domain.Agency
	services map[int64]*domain.Service
}

func newGraph(agencies store.AgencyStore, services store.ServiceStore) *graph {
	return &graph{
		agencyStore:  agencies,
		serviceStore: services,
		agencies:     make(map[int64]*domain.Agency),
		services:     make(map[int64]*domain.Service),
	}
}

// Agency returns the canonical agency with id, loading it on first use.
func (g *graph) Agency(ctx context.Context, id int64) (*domain.Agency, error) {
	if a, ok := g.agencies[id]; ok {
		return a, nil
	}
	a, err := g.agencyStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundByID(domain.AgencyType, strconv.FormatInt(id, 10))
		}
		return nil, err
	}
	g.adoptAgency(a)
	return a, nil
}

// Service returns the canonical service with id, loading it on first use.
func (g *graph) Service(ctx context.Context, id int64) (*domain.Service, error) {
	if s, ok := g.services[id]; ok {
		return s, nil
	}
	s, err := g.serviceStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundByID(domain.ServiceType, strconv.FormatInt(id, 10))
		}
		return nil, err
	}
	g.adoptService(s)
	return s, nil
}

// ServiceBySlug returns the canonical service with slug.
func (g *graph) ServiceBySlug(ctx context.Context, slug string) (*domain.Service, error) {
	for _, s := range g.services {
		if s.Slug == slug {
			return s, nil
		}
	}
	s, err := g.serviceStore.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFoundByCriteria(domain.ServiceType, "slug", slug)
		}
		return nil, err
	}
	if known, ok := g.services[s.ID]; ok {
		return known, nil
	}
	g.adoptService(s)
	return s, nil
}

// adoptAgency registers a freshly loaded agency as canonical.
func (g *graph) adoptAgency(a *domain.Agency) {
	g.agencies[a.ID] = a
	for i, s := range a.Services {
		canonical, ok := g.services[s.ID]
		if !ok {
			continue
		}
		a.Services[i] = canonical
		for j, other := range canonical.Agencies {
			if other.ID == a.ID {
				canonical.Agencies[j] = a
			}
		}
	}
}

// adoptService registers a freshly loaded service as canonical.
func (g *graph) adoptService(s *domain.Service) {
	g.services[s.ID] = s
	for i, a := range s.Agencies {
		canonical, ok := g.agencies[a.ID]
		if !ok {
			continue
		}
		s.Agencies[i] = canonical
		for j, other := range canonical.Services {
			if other.ID == s.ID {
				canonical.Services[j] = s
			}
		}
	}
}

// ByKey resolves the external identifier used in URLs: the numeric id of an
// agency or the slug of a service.
func (g *graph) ByKey(ctx context.Context, resourceType, key string) (any, error) {
	switch resourceType {
	case domain.AgencyType:
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, notFoundByID(resourceType, key)
		}
		return g.Agency(ctx, id)
	case domain.ServiceType:
		return g.ServiceBySlug(ctx, key)
	default:
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
}

// ByID resolves the id member of a resource object.
func (g *graph) ByID(ctx context.Context, resourceType, rawID string) (any, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, notFoundByID(resourceType, rawID)
	}
	switch resourceType {
	case domain.AgencyType:
		return g.Agency(ctx, id)
	case domain.ServiceType:
		return g.Service(ctx, id)
	default:
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
}

// New returns an empty entity of resourceType. It is not tracked by the
// graph until it has been stored and has an id.
func (g *graph) New(resourceType string) (any, error) {
	switch resourceType {
	case domain.AgencyType:
		return &domain.Agency{}, nil
	case domain.ServiceType:
		return &domain.Service{}, nil
	default:
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
}

// Save writes entity to the store: an insert when it is new, an update
// otherwise. With links set the stored associations of entity are replaced
// by its current relationship list.
func (g *graph) Save(ctx context.Context, entity any, links bool) error {
	switch e := entity.(type) {
	case *domain.Agency:
		if e.IsNew() {
			if err := g.agencyStore.Create(ctx, e); err != nil {
				return err
			}
			g.agencies[e.ID] = e
		} else if err := g.agencyStore.Update(ctx, e); err != nil {
			return err
		}
		if links {
			return g.agencyStore.SetServices(ctx, e.ID, e.ServiceIDs())
		}
		return nil
	case *domain.Service:
		if e.IsNew() {
			if err := g.serviceStore.Create(ctx, e); err != nil {
				return err
			}
			g.services[e.ID] = e
		} else if err := g.serviceStore.Update(ctx, e); err != nil {
			return err
		}
		if links {
			return g.serviceStore.SetAgencies(ctx, e.ID, e.AgencyIDs())
		}
		return nil
	default:
		return fmt.Errorf("cannot save %T", entity)
	}
}

// Conflicts asks the store which unique attributes of entity are taken by
// another row.
func (g *graph) Conflicts(ctx context.Context, entity any) ([]string, error) {
	switch e := entity.(type) {
	case *domain.Agency:
		return g.agencyStore.Conflicts(ctx, e)
	case *domain.Service:
		return g.serviceStore.Conflicts(ctx, e)
	default:
		return nil, fmt.Errorf("cannot check uniqueness of %T", entity)
	}
}
