package service

import (
	"context"
	"errors"
	"html"
	"sort"

	"github.com/microcosm-cc/bluemonday"

	"github.com/phrazzld/agency-api/internal/domain"
	"github.com/phrazzld/agency-api/internal/jsonapi"
)

// materializer applies inbound resource objects to entities.
type materializer struct {
	policy *bluemonday.Policy
}

func newMaterializer() *materializer {
	return &materializer{policy: bluemonday.StrictPolicy()}
}

// apply assigns the attributes of p to entity and reconciles every
// relationship p names. Attributes are applied before relationships, both in
// name order, and the first request problem aborts the item.
//
// Free-text values containing markup are reported together, after the rest
// of the item was applied, as a *domain.ValidationError. The caller must not
// persist an entity that got one.
func (m *materializer) apply(ctx context.Context, g *graph, desc *jsonapi.Descriptor, entity any, p jsonapi.ResourcePayload) error {
	markup := &domain.ValidationError{Type: desc.Type, ID: desc.ID(entity)}
	for _, name := range sortedKeys(p.Attributes) {
		err := m.assign(desc, entity, name, p.Attributes[name])
		if errors.Is(err, errMarkup) {
			markup.Add(name, domain.MarkupMessage)
			continue
		}
		if err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(p.Relationships) {
		field, ok := desc.Relationship(name)
		if !ok {
			return jsonapi.NewRequestError(jsonapi.CodeUnknownRelationship,
				`Relationship "%s" does not exist on resource "%s".`, name, desc.Type)
		}

		ids, err := linkageIDs(field, p.Relationships[name])
		if err != nil {
			return err
		}
		if _, err := g.Reconcile(ctx, entity, name, ids); err != nil {
			return err
		}
	}

	if markup.HasErrors() {
		return markup
	}
	return nil
}

var errMarkup = errors.New("value contains markup")

func (m *materializer) assign(desc *jsonapi.Descriptor, entity any, name string, value any) error {
	if name == "id" {
		return jsonapi.NewRequestError(jsonapi.CodeUnknownAttribute,
			`"id" cannot be set as an attribute; use the "id" member of the resource object.`)
	}

	field, ok := desc.Field(name)
	if !ok || field.Kind != jsonapi.KindScalar || !field.Writable() {
		return jsonapi.NewRequestError(jsonapi.CodeUnknownAttribute,
			`Attribute "%s" does not exist on resource "%s".`, name, desc.Type)
	}

	text, isString := value.(string)
	markup := isString && field.FreeText && m.hasMarkup(text)

	if err := field.Assign(entity, value); err != nil {
		var typeErr *jsonapi.AttributeTypeError
		if errors.As(err, &typeErr) {
			return jsonapi.NewRequestError(jsonapi.CodeMalformedMember,
				`Attribute "%s" must be a %s, got %s.`, typeErr.Attribute, typeErr.Expected, typeErr.Got)
		}
		return err
	}
	if markup {
		return errMarkup
	}
	return nil
}

// hasMarkup reports whether the strict policy would change text. Sanitize
// returns escaped text, so plain prose survives the round trip unchanged while
// tags and entity-escaped tags do not.
func (m *materializer) hasMarkup(text string) bool {
	return html.UnescapeString(m.policy.Sanitize(text)) != text
}

// linkageIDs decodes relationship data into the ids of field.Target members.
func linkageIDs(field jsonapi.Field, rp jsonapi.RelationshipPayload) ([]int64, error) {
	linkages, err := rp.Linkages()
	if err != nil {
		return nil, jsonapi.NewRequestError(jsonapi.CodeInvalidLinkage,
			`Relationship "%s": %s.`, field.Name, err)
	}

	ids := make([]int64, 0, len(linkages))
	for _, l := range linkages {
		if l.Type != field.Target {
			return nil, jsonapi.NewRequestError(jsonapi.CodeInvalidLinkage,
				`Relationship "%s" only accepts members of type "%s", got "%s".`, field.Name, field.Target, l.Type)
		}
		id, err := l.ID.Int64()
		if err != nil {
			return nil, jsonapi.NewRequestError(jsonapi.CodeInvalidLinkage,
				`Relationship "%s" member id "%s" is not a valid identifier.`, field.Name, l.ID)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
