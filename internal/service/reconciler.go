package service

import (
	"context"
	"fmt"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/resource"
)

// Delta lists the related ids a reconciliation linked and unlinked, in the
// order the changes were made.
type Delta struct {
	Added   []int64
	Removed []int64
}

// Empty reports whether nothing changed.
func (d Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Reconcile makes the relation of owner contain exactly the entities with the
// desired ids. Duplicates in desired are ignored and order does not matter.
// Every related entity is looked up before anything changes, so an unknown id
// leaves the graph untouched. Both sides of each link are updated together.
func (g *graph) Reconcile(ctx context.Context, owner any, relation string, desired []int64) (Delta, error) {
	switch o := owner.(type) {
	case *domain.Agency:
		if relation != resource.ServicesRelationship {
			break
		}
		return reconcileSide(ctx, o, desired, side[*domain.Agency, *domain.Service]{
			members: func(a *domain.Agency) []*domain.Service { return a.Services },
			id:      func(s *domain.Service) int64 { return s.ID },
			lookup:  g.Service,
			link:    linkAgencyService,
			unlink:  unlinkAgencyService,
		})
	case *domain.Service:
		if relation != resource.AgenciesRelationship {
			break
		}
		return reconcileSide(ctx, o, desired, side[*domain.Service, *domain.Agency]{
			members: func(s *domain.Service) []*domain.Agency { return s.Agencies },
			id:      func(a *domain.Agency) int64 { return a.ID },
			lookup:  g.Agency,
			link:    func(s *domain.Service, a *domain.Agency) { linkAgencyService(a, s) },
			unlink:  func(s *domain.Service, a *domain.Agency) { unlinkAgencyService(a, s) },
		})
	}
	return Delta{}, fmt.Errorf("cannot reconcile relationship %q of %T", relation, owner)
}

// side describes one direction of a many-to-many association.
type side[O any, R comparable] struct {
	members func(O) []R
	id      func(R) int64
	lookup  func(context.Context, int64) (R, error)
	link    func(O, R)
	unlink  func(O, R)
}

func reconcileSide[O any, R comparable](ctx context.Context, owner O, desired []int64, s side[O, R]) (Delta, error) {
	wanted := make(map[int64]bool, len(desired))
	var order []int64
	for _, id := range desired {
		if !wanted[id] {
			wanted[id] = true
			order = append(order, id)
		}
	}

	related := make([]R, 0, len(order))
	for _, id := range order {
		r, err := s.lookup(ctx, id)
		if err != nil {
			return Delta{}, err
		}
		related = append(related, r)
	}

	var delta Delta
	current := make(map[int64]bool)
	for _, m := range append([]R(nil), s.members(owner)...) {
		id := s.id(m)
		if !wanted[id] {
			s.unlink(owner, m)
			delta.Removed = append(delta.Removed, id)
			continue
		}
		current[id] = true
	}

	for _, r := range related {
		id := s.id(r)
		if current[id] {
			continue
		}
		s.link(owner, r)
		delta.Added = append(delta.Added, id)
	}
	return delta, nil
}

// linkAgencyService adds the link on both sides unless it exists.
func linkAgencyService(a *domain.Agency, s *domain.Service) {
	if !containsPtr(a.Services, s) {
		a.Services = append(a.Services, s)
	}
	if !containsPtr(s.Agencies, a) {
		s.Agencies = append(s.Agencies, a)
	}
}

// unlinkAgencyService removes the link on both sides.
func unlinkAgencyService(a *domain.Agency, s *domain.Service) {
	a.Services = removePtr(a.Services, s)
	s.Agencies = removePtr(s.Agencies, a)
}

func containsPtr[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func removePtr[T comparable](list []T, v T) []T {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
