package jsonapi

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Input is what gets serialized. Which field is read depends on Mode.
type Input struct {
	Mode Mode
	// Item is read by ModeItem.
	Item any
	// Items is read by ModeIndex.
	Items []any
	// Collections is read by ModeLinkage, ModeWrappedLinkage and
	// ModeRelatedIndex. Members of each collection are typed by its name.
	Collections []Collection
}

// Serializer renders entities described by a Registry.
type Serializer struct {
	registry *Registry
	logger   *slog.Logger
}

// NewSerializer creates a serializer over registry.
func NewSerializer(registry *Registry, logger *slog.Logger) (*Serializer, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Serializer{
		registry: registry,
		logger:   logger.With(slog.String("component", "jsonapi_serializer")),
	}, nil
}

// Serialize renders in under c. The result is ready for encoding/json.
func (s *Serializer) Serialize(in Input, c Context) (any, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	if c.CacheKey == "" {
		c.CacheKey = CacheKey("json", c)
	}
	s.logger.Debug("serializing",
		slog.String("mode", in.Mode.String()),
		slog.String("type", c.Type),
		slog.String("cache_key", c.CacheKey))

	switch in.Mode {
	case ModeItem:
		return s.item(in.Item, c)
	case ModeIndex:
		return s.index(in.Items, c)
	case ModeLinkage:
		return s.linkage(in.Collections, c, c.Relationships)
	case ModeWrappedLinkage:
		return s.linkage(in.Collections, c, true)
	case ModeRelatedIndex:
		return s.relatedIndex(in.Collections, c)
	default:
		return nil, fmt.Errorf("unknown serialization mode %s", in.Mode)
	}
}

// item renders one entity. It returns a *ResourceObject when MultipleItems or
// RelationshipItem is set, otherwise a *Document holding a single element
// array.
func (s *Serializer) item(entity any, c Context) (any, error) {
	obj, err := s.resource(entity, c)
	if err != nil {
		return nil, err
	}
	if c.MultipleItems || c.RelationshipItem {
		return obj, nil
	}
	return &Document{Data: []*ResourceObject{obj}}, nil
}

// resource builds the resource object of entity.
func (s *Serializer) resource(entity any, c Context) (*ResourceObject, error) {
	desc, err := s.registry.For(entity)
	if err != nil {
		return nil, err
	}

	obj := &ResourceObject{Type: c.Type, ID: desc.ID(entity)}
	if c.RelationshipItem {
		return obj, nil
	}

	attributes := make(map[string]any)
	var relationships map[string]*Relationship
	var slug string
	slugResolved := false

	for _, f := range desc.Fields {
		if f.Kind == KindScalar {
			attributes[f.Name] = f.Value(entity)
			continue
		}

		if !slugResolved && !c.SlugAttached {
			slug = resolveSlug(desc, entity, c.SlugAttribute)
		}
		slugResolved = true

		if c.NoRelationships {
			continue
		}

		data, err := s.members(f.Members(entity), f.Name)
		if err != nil {
			return nil, fmt.Errorf("relationship %q: %w", f.Name, err)
		}
		if len(data) == 0 {
			continue
		}

		slugPath := "/"
		if slug != "" {
			slugPath = "/" + slug + "/"
		}
		if relationships == nil {
			relationships = make(map[string]*Relationship)
		}
		relationships[f.Name] = &Relationship{
			Data: data,
			Links: &Links{
				Self:    c.BaseURL + slugPath + "relationships/" + f.Name,
				Related: c.BaseURL + slugPath + f.Name,
			},
		}
	}

	if len(attributes) > 0 {
		obj.Attributes = attributes
	}
	obj.Relationships = relationships
	obj.Links = resourceLinks(attributes, slug, c)
	return obj, nil
}

// resolveSlug picks the URL suffix of entity: the slug attribute when it has a
// value, the id otherwise.
func resolveSlug(desc *Descriptor, entity any, slugAttribute string) string {
	if slugAttribute != "" {
		if v := desc.slugValue(entity, slugAttribute); v != "" {
			return v
		}
	}
	return desc.ID(entity)
}

// resourceLinks builds the links member of a resource object.
func resourceLinks(attributes map[string]any, slug string, c Context) *Links {
	if c.RelationSlug != "" {
		if v, ok := attributes[c.RelationSlug].(string); ok && v != "" {
			slug = v
		}
	}

	links := &Links{Self: c.BaseURL}
	if slug != "" {
		links.Self = c.BaseURL + "/" + slug
	}
	if c.RelatedURLStrip != "" {
		stripped := strings.ReplaceAll(c.BaseURL, "/"+c.RelatedURLStrip, "")
		links.Related = stripped + "/" + slug
	}
	return links
}

// members renders related entities as linkage typed by relationType.
func (s *Serializer) members(related []any, relationType string) ([]Linkage, error) {
	out := make([]Linkage, 0, len(related))
	for _, r := range related {
		desc, err := s.registry.For(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Linkage{Type: relationType, ID: desc.ID(r)})
	}
	return out, nil
}

// index renders a list of entities of the context type. Stored entities shown
// in an index drop their relationships; freshly written ones keep them.
func (s *Serializer) index(entities []any, c Context) (*Document, error) {
	itemCtx := c
	itemCtx.MultipleItems = true
	if !c.NewlyPersisted {
		itemCtx.NoRelationships = true
	}

	data := make([]*ResourceObject, 0, len(entities))
	for _, e := range entities {
		obj, err := s.resource(e, itemCtx)
		if err != nil {
			return nil, err
		}
		data = append(data, obj)
	}

	doc := &Document{Data: data}
	if c.IndexFormat {
		doc.Links = &Links{Self: c.BaseURL}
	}
	return doc, nil
}

// linkage renders collections as {type, id} pairs, optionally wrapped into a
// relationship object.
func (s *Serializer) linkage(collections []Collection, c Context, wrap bool) (any, error) {
	data := make([]Linkage, 0)
	for _, col := range collections {
		members, err := s.members(col.Members, col.Name)
		if err != nil {
			return nil, fmt.Errorf("collection %q: %w", col.Name, err)
		}
		data = append(data, members...)
	}
	if !wrap {
		return data, nil
	}
	return &Relationship{Data: data, Links: wrapperLinks(c.BaseURL)}, nil
}

// relatedIndex renders collections as full resource objects typed by the
// collection name.
func (s *Serializer) relatedIndex(collections []Collection, c Context) (*Document, error) {
	data := make([]*ResourceObject, 0)
	for _, col := range collections {
		itemCtx := c
		itemCtx.Type = col.Name
		itemCtx.MultipleItems = true
		itemCtx.RelationshipItem = false
		if !c.NewlyPersisted {
			itemCtx.NoRelationships = true
		}
		for _, m := range col.Members {
			obj, err := s.resource(m, itemCtx)
			if err != nil {
				return nil, fmt.Errorf("collection %q: %w", col.Name, err)
			}
			data = append(data, obj)
		}
	}
	return &Document{Data: data, Links: wrapperLinks(c.BaseURL)}, nil
}

// wrapperLinks returns the links of a relationship wrapper: self is the base
// URL, related is the base URL without its "/relationships" segment.
func wrapperLinks(baseURL string) *Links {
	return &Links{
		Self:    baseURL,
		Related: strings.Replace(baseURL, "/relationships", "", 1),
	}
}
