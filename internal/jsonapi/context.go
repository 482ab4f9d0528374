package jsonapi

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Mode selects which document shape the serializer produces.
type Mode int

const (
	// ModeItem renders one resource.
	ModeItem Mode = iota
	// ModeIndex renders a list of resources of the context type.
	ModeIndex
	// ModeLinkage renders relationship members as {type, id} pairs. When the
	// context has Relationships set the result is wrapped like
	// ModeWrappedLinkage.
	ModeLinkage
	// ModeWrappedLinkage renders relationship members as {type, id} pairs inside
	// a {data, links} object.
	ModeWrappedLinkage
	// ModeRelatedIndex renders relationship members as full resource objects
	// typed by the relationship name, inside a {data, links} object.
	ModeRelatedIndex
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeItem:
		return "item"
	case ModeIndex:
		return "index"
	case ModeLinkage:
		return "linkage"
	case ModeWrappedLinkage:
		return "wrapped_linkage"
	case ModeRelatedIndex:
		return "related_index"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Context carries the options that shape a document.
type Context struct {
	// Type is the resource type written into every rendered object.
	Type string `json:"type,omitempty"`
	// BaseURL is the absolute URL links are built from.
	BaseURL string `json:"base_url,omitempty"`
	// SlugAttribute names the field whose value is appended to BaseURL for
	// links. Defaults to the id.
	SlugAttribute string `json:"slug_attribute,omitempty"`
	// MultipleItems returns bare resource objects instead of a document.
	MultipleItems bool `json:"multiple_items,omitempty"`
	// NoRelationships drops the relationships member of resource objects.
	NoRelationships bool `json:"no_relationships,omitempty"`
	// RelationshipItem reduces resource objects to {type, id}.
	RelationshipItem bool `json:"relationship_item,omitempty"`
	// Relationships wraps linkage into a relationship object with links.
	Relationships bool `json:"relationships,omitempty"`
	// NewlyPersisted keeps relationships on index members.
	NewlyPersisted bool `json:"newly_persisted,omitempty"`
	// RelatedURLStrip is removed from BaseURL to derive a related link.
	RelatedURLStrip string `json:"related_url_strip,omitempty"`
	// RelationSlug names the attribute that supplies the slug of members of a
	// related index.
	RelationSlug string `json:"relation_slug,omitempty"`
	// IndexFormat adds a top level self link to index documents.
	IndexFormat bool `json:"index_format,omitempty"`
	// SlugAttached means BaseURL already ends with the external identifier of
	// the resource, so no slug is appended.
	SlugAttached bool `json:"slug_attached,omitempty"`
	// CacheKey is filled in by the serializer when empty.
	CacheKey string `json:"-"`
}

// ConfigurationError reports a context that lacks a mandatory option.
type ConfigurationError struct {
	Option  string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// check verifies the mandatory options.
func (c Context) check() error {
	if c.Type == "" {
		return &ConfigurationError{Option: "type", Message: `"type" member must be set`}
	}
	if c.BaseURL == "" {
		return &ConfigurationError{Option: "base_url", Message: "Base URL not found in context."}
	}
	return nil
}

// CacheKey derives an advisory key from the output format and the context.
// It returns an empty string when the context cannot be encoded.
func CacheKey(format string, ctx Context) string {
	encoded, err := json.Marshal(ctx)
	if err != nil {
		return ""
	}
	sum := md5.Sum(append([]byte(format), encoded...))
	return hex.EncodeToString(sum[:])
}
