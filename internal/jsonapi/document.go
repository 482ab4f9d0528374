package jsonapi

// Document is a top level JSON:API document.
type Document struct {
	Data  any    `json:"data"`
	Links *Links `json:"links,omitempty"`
}

// Links holds the self and related links of a document, resource or
// relationship.
type Links struct {
	Self    string `json:"self,omitempty"`
	Related string `json:"related,omitempty"`
}

// ResourceObject is one rendered resource. With relationship_item only Type
// and ID are set.
type ResourceObject struct {
	Type          string                   `json:"type"`
	ID            string                   `json:"id"`
	Attributes    map[string]any           `json:"attributes,omitempty"`
	Relationships map[string]*Relationship `json:"relationships,omitempty"`
	Links         *Links                   `json:"links,omitempty"`
}

// Relationship is the relationships.<name> member of a resource object.
type Relationship struct {
	Data  []Linkage `json:"data"`
	Links *Links    `json:"links,omitempty"`
}

// Linkage is a minimal {type, id} reference to another resource.
type Linkage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Collection is a named group of related entities, typically one to-many
// relationship of an entity.
type Collection struct {
	Name    string
	Members []any
}
