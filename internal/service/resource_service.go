package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
	"github.com/phrazzld/agency-api/internal/platform/logger"
	"github.com/phrazzld/agency-api/internal/resource"
	"github.com/phrazzld/agency-api/internal/store"
)

// uniqueAttributes lists, per resource type, the attributes no two entities
// may share.
var uniqueAttributes = map[string][]string{
	domain.AgencyType:  {"contact_email", "web_address"},
	domain.ServiceType: {"name", "slug"},
}

// ResourceService answers JSON:API reads and writes for agencies and
// services. Every method takes the API root URL (for example
// "https://host/api") from which document links are built, and returns a
// value ready for encoding/json.
type ResourceService struct {
	db           *sql.DB
	agencies     store.AgencyStore
	services     store.ServiceStore
	registry     *jsonapi.Registry
	serializer   *jsonapi.Serializer
	materializer *materializer
	logger       *slog.Logger
}

// NewResourceService creates a ResourceService. Writes run in transactions
// started on db.
func NewResourceService(
	db *sql.DB,
	agencies store.AgencyStore,
	services store.ServiceStore,
	logger *slog.Logger,
) (*ResourceService, error) {
	if db == nil {
		return nil, &ResourceServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if agencies == nil {
		return nil, &ResourceServiceError{Operation: "create_service", Message: "agency store cannot be nil"}
	}
	if services == nil {
		return nil, &ResourceServiceError{Operation: "create_service", Message: "service store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	registry := resource.NewRegistry()
	serializer, err := jsonapi.NewSerializer(registry, logger)
	if err != nil {
		return nil, NewResourceServiceError("create_service", "failed to create serializer", err)
	}

	return &ResourceService{
		db:           db,
		agencies:     agencies,
		services:     services,
		registry:     registry,
		serializer:   serializer,
		materializer: newMaterializer(),
		logger:       logger.With(slog.String("component", "resource_service")),
	}, nil
}

// Index renders every entity of resourceType.
func (s *ResourceService) Index(ctx context.Context, resourceType, baseURL string) (any, error) {
	desc, err := s.descriptor(resourceType)
	if err != nil {
		return nil, err
	}

	items, err := s.list(ctx, resourceType)
	if err != nil {
		return nil, NewResourceServiceError("index", "failed to list "+resourceType, err)
	}

	return s.serializer.Serialize(jsonapi.Input{Mode: jsonapi.ModeIndex, Items: items}, jsonapi.Context{
		Type:          resourceType,
		BaseURL:       collectionURL(baseURL, resourceType),
		SlugAttribute: desc.SlugAttribute,
		IndexFormat:   true,
	})
}

// Item renders the entity addressed by key.
func (s *ResourceService) Item(ctx context.Context, resourceType, key, baseURL string) (any, error) {
	if _, err := s.descriptor(resourceType); err != nil {
		return nil, err
	}

	entity, err := newGraph(s.agencies, s.services).ByKey(ctx, resourceType, key)
	if err != nil {
		return nil, NewResourceServiceError("item", "failed to load "+resourceType, err)
	}

	return s.serializer.Serialize(jsonapi.Input{Mode: jsonapi.ModeItem, Item: entity}, jsonapi.Context{
		Type:         resourceType,
		BaseURL:      collectionURL(baseURL, resourceType) + "/" + key,
		SlugAttached: true,
	})
}

// RelatedIndex renders the members of one relationship of the entity
// addressed by key as full resource objects.
func (s *ResourceService) RelatedIndex(ctx context.Context, resourceType, key, relation, baseURL string) (any, error) {
	entity, field, err := s.relationship(ctx, resourceType, key, relation)
	if err != nil {
		return nil, err
	}
	members := field.Members(entity)
	if len(members) == 0 {
		return nil, emptyRelationship(resourceType, relation)
	}

	target, ok := s.registry.Lookup(field.Target)
	if !ok {
		return nil, fmt.Errorf("relationship %q targets unregistered type %q", relation, field.Target)
	}
	relationSlug := ""
	if target.SlugAttribute != "id" {
		relationSlug = target.SlugAttribute
	}

	return s.serializer.Serialize(jsonapi.Input{
		Mode:        jsonapi.ModeRelatedIndex,
		Collections: []jsonapi.Collection{{Name: relation, Members: members}},
	}, jsonapi.Context{
		Type:            relation,
		BaseURL:         collectionURL(baseURL, resourceType) + "/" + key + "/" + relation,
		SlugAttribute:   target.SlugAttribute,
		IndexFormat:     true,
		RelatedURLStrip: resourceType + "/" + key,
		RelationSlug:    relationSlug,
	})
}

// Relationships renders the linkage of one relationship of the entity
// addressed by key, or of all its relationships when relation is empty.
func (s *ResourceService) Relationships(ctx context.Context, resourceType, key, relation, baseURL string) (any, error) {
	base := collectionURL(baseURL, resourceType) + "/" + key + "/relationships"

	var collections []jsonapi.Collection
	if relation == "" {
		desc, err := s.descriptor(resourceType)
		if err != nil {
			return nil, err
		}
		entity, err := newGraph(s.agencies, s.services).ByKey(ctx, resourceType, key)
		if err != nil {
			return nil, NewResourceServiceError("relationships", "failed to load "+resourceType, err)
		}
		for _, f := range desc.Relationships() {
			collections = append(collections, jsonapi.Collection{Name: f.Name, Members: f.Members(entity)})
		}
	} else {
		entity, field, err := s.relationship(ctx, resourceType, key, relation)
		if err != nil {
			return nil, err
		}
		members := field.Members(entity)
		if len(members) == 0 {
			return nil, emptyRelationship(resourceType, relation)
		}
		collections = []jsonapi.Collection{{Name: relation, Members: members}}
		base += "/" + relation
	}

	return s.serializer.Serialize(jsonapi.Input{
		Mode:        jsonapi.ModeWrappedLinkage,
		Collections: collections,
	}, jsonapi.Context{
		Type:          resourceType,
		BaseURL:       base,
		Relationships: true,
	})
}

// RelatedType returns the resource type of the members of relation, so that
// links into a relationship can be redirected to the member's own URL.
func (s *ResourceService) RelatedType(resourceType, relation string) (string, error) {
	desc, err := s.descriptor(resourceType)
	if err != nil {
		return "", err
	}
	field, ok := desc.Relationship(relation)
	if !ok {
		return "", noRelationship(resourceType, relation)
	}
	return field.Target, nil
}

// Create stores the resource objects of a POST request and renders them.
func (s *ResourceService) Create(ctx context.Context, resourceType string, data json.RawMessage, baseURL string) (any, error) {
	desc, err := s.descriptor(resourceType)
	if err != nil {
		return nil, err
	}

	written, err := s.write(ctx, http.MethodPost, desc, "", data)
	if err != nil {
		return nil, err
	}

	return s.serializer.Serialize(jsonapi.Input{Mode: jsonapi.ModeIndex, Items: written}, jsonapi.Context{
		Type:           resourceType,
		BaseURL:        collectionURL(baseURL, resourceType),
		SlugAttribute:  desc.SlugAttribute,
		NewlyPersisted: true,
		IndexFormat:    true,
	})
}

// Update applies the resource objects of a PUT request. key is the
// identifier from the URL and may be empty. An item with an id updates that
// entity; an item without one updates the entity addressed by key, or is
// created when there is no key either.
func (s *ResourceService) Update(ctx context.Context, resourceType, key string, data json.RawMessage, baseURL string) (any, error) {
	desc, err := s.descriptor(resourceType)
	if err != nil {
		return nil, err
	}

	written, err := s.write(ctx, http.MethodPut, desc, key, data)
	if err != nil {
		return nil, err
	}

	return s.serializer.Serialize(jsonapi.Input{Mode: jsonapi.ModeIndex, Items: written}, jsonapi.Context{
		Type:           resourceType,
		BaseURL:        collectionURL(baseURL, resourceType),
		SlugAttribute:  desc.SlugAttribute,
		NewlyPersisted: true,
	})
}

// write runs the whole batch in one transaction: resolve and materialize
// every item, validate them all, and only then store them.
func (s *ResourceService) write(ctx context.Context, method string, desc *jsonapi.Descriptor, key string, data json.RawMessage) ([]any, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	items, err := jsonapi.CheckPayload(data, method, desc.Type, key)
	if err != nil {
		log.Debug("payload rejected", slog.String("error", err.Error()))
		return nil, err
	}

	var written []any
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		g := newGraph(s.agencies.WithTx(tx), s.services.WithTx(tx))

		var entities []any
		links := make(map[any]bool)
		rejected := make(map[any]*domain.ValidationError)
		for _, item := range items {
			entity, err := s.target(ctx, g, desc.Type, key, item)
			if err != nil {
				return err
			}
			if err := s.materializer.apply(ctx, g, desc, entity, item); err != nil {
				var fieldErrs *domain.ValidationError
				if !errors.As(err, &fieldErrs) {
					return err
				}
				rejected[entity] = domain.MergeValidationErrors(rejected[entity], fieldErrs)
			}
			if _, seen := links[entity]; !seen {
				entities = append(entities, entity)
				links[entity] = false
			}
			if len(item.Relationships) > 0 {
				links[entity] = true
			}
		}

		if err := s.validate(ctx, g, desc, entities, rejected); err != nil {
			return err
		}

		for _, entity := range entities {
			if err := g.Save(ctx, entity, links[entity]); err != nil {
				return err
			}
		}
		written = entities
		return nil
	})
	if err != nil {
		return nil, NewResourceServiceError(strings.ToLower(method), "failed to write "+desc.Type, err)
	}

	log.Info("resources written",
		slog.String("type", desc.Type),
		slog.String("method", method),
		slog.Int("count", len(written)))
	return written, nil
}

// target picks the entity an item applies to.
func (s *ResourceService) target(ctx context.Context, g *graph, resourceType, key string, item jsonapi.ResourcePayload) (any, error) {
	switch {
	case item.ID != nil:
		return g.ByID(ctx, resourceType, item.ID.String())
	case key != "":
		return g.ByKey(ctx, resourceType, key)
	default:
		return g.New(resourceType)
	}
}

type validatable interface {
	Validate() error
}

// validate checks every entity of a batch and reports all violations at once,
// starting with those the materializer already recorded in rejected.
// Uniqueness is checked against the store and within the batch.
func (s *ResourceService) validate(
	ctx context.Context,
	g *graph,
	desc *jsonapi.Descriptor,
	entities []any,
	rejected map[any]*domain.ValidationError,
) error {
	var failures []*domain.ValidationError
	claimed := make(map[string]map[string]any)

	for _, entity := range entities {
		v, ok := entity.(validatable)
		if !ok {
			return fmt.Errorf("%T cannot be validated", entity)
		}

		verr := &domain.ValidationError{Type: desc.Type, ID: desc.ID(entity)}
		if prior := rejected[entity]; prior != nil {
			verr.Fields = append(verr.Fields, prior.Fields...)
		}
		if err := v.Validate(); err != nil {
			var fieldErrs *domain.ValidationError
			if !errors.As(err, &fieldErrs) {
				return err
			}
			verr.ID = fieldErrs.ID
			verr.Fields = append(verr.Fields, fieldErrs.Fields...)
		}

		taken, err := g.Conflicts(ctx, entity)
		if err != nil {
			return err
		}
		flagged := make(map[string]bool)
		for _, field := range taken {
			verr.Add(field, domain.UniqueMessage)
			flagged[field] = true
		}

		for _, name := range uniqueAttributes[desc.Type] {
			field, ok := desc.Field(name)
			if !ok {
				continue
			}
			value, _ := field.Value(entity).(string)
			if value == "" {
				continue
			}
			if claimed[name] == nil {
				claimed[name] = make(map[string]any)
			}
			if owner, dup := claimed[name][value]; dup && owner != entity && !flagged[name] {
				verr.Add(name, domain.UniqueMessage)
				continue
			}
			claimed[name][value] = entity
		}

		if verr.HasErrors() {
			failures = append(failures, verr)
		}
	}

	if len(failures) > 0 {
		return &ValidationError{Items: failures}
	}
	return nil
}

func (s *ResourceService) descriptor(resourceType string) (*jsonapi.Descriptor, error) {
	desc, ok := s.registry.Lookup(resourceType)
	if !ok {
		return nil, &NotFoundError{Message: fmt.Sprintf(`Resource type "%s" does not exist.`, resourceType)}
	}
	return desc, nil
}

// relationship loads the entity addressed by key and the field of relation.
func (s *ResourceService) relationship(ctx context.Context, resourceType, key, relation string) (any, jsonapi.Field, error) {
	desc, err := s.descriptor(resourceType)
	if err != nil {
		return nil, jsonapi.Field{}, err
	}
	field, ok := desc.Relationship(relation)
	if !ok {
		return nil, jsonapi.Field{}, noRelationship(resourceType, relation)
	}
	entity, err := newGraph(s.agencies, s.services).ByKey(ctx, resourceType, key)
	if err != nil {
		return nil, jsonapi.Field{}, NewResourceServiceError("relationship", "failed to load "+resourceType, err)
	}
	return entity, field, nil
}

func (s *ResourceService) list(ctx context.Context, resourceType string) ([]any, error) {
	switch resourceType {
	case domain.AgencyType:
		agencies, err := s.agencies.List(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(agencies))
		for _, a := range agencies {
			items = append(items, a)
		}
		return items, nil
	case domain.ServiceType:
		services, err := s.services.List(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(services))
		for _, svc := range services {
			items = append(items, svc)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
}

// CollectionURL returns the URL of the collection of resourceType under the
// API root baseURL.
func CollectionURL(baseURL, resourceType string) string {
	return collectionURL(baseURL, resourceType)
}

func collectionURL(baseURL, resourceType string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + resourceType
}
