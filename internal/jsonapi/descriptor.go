package jsonapi

import (
	"fmt"
	"strconv"
)

// FieldKind tells scalar attributes and to-many relationships apart.
type FieldKind int

const (
	// KindScalar is a plain attribute rendered under "attributes".
	KindScalar FieldKind = iota
	// KindToMany is a relationship rendered under "relationships".
	KindToMany
)

// Field describes one member of a resource. Accessors are type-erased so that
// descriptors of different entity types can share a Registry; the typed
// constructors below do the assertions.
type Field struct {
	Name string
	Kind FieldKind
	// Target is the resource type of the members of a to-many field.
	Target string
	// FreeText marks string attributes whose content is user prose and must
	// not carry markup.
	FreeText bool

	value   func(entity any) any
	members func(entity any) []any
	assign  func(entity any, value any) error
}

// Value returns the scalar value of the field on entity.
func (f Field) Value(entity any) any {
	if f.value == nil {
		return nil
	}
	return f.value(entity)
}

// Members returns the related entities of a to-many field.
func (f Field) Members(entity any) []any {
	if f.members == nil {
		return nil
	}
	return f.members(entity)
}

// Writable reports whether the field accepts inbound attribute values.
func (f Field) Writable() bool {
	return f.assign != nil
}

// Assign type-checks value against the field and stores it on entity.
func (f Field) Assign(entity any, value any) error {
	if f.assign == nil {
		return fmt.Errorf("attribute %q is read-only", f.Name)
	}
	return f.assign(entity, value)
}

// Prose returns a copy of the field flagged as free text.
func (f Field) Prose() Field {
	f.FreeText = true
	return f
}

// StringAttr declares a string attribute of T.
func StringAttr[T any](name string, get func(T) string, set func(T, string)) Field {
	return Field{
		Name: name,
		Kind: KindScalar,
		value: func(entity any) any {
			e, ok := entity.(T)
			if !ok {
				return nil
			}
			return get(e)
		},
		assign: func(entity any, value any) error {
			e, ok := entity.(T)
			if !ok {
				return fmt.Errorf("attribute %q: unexpected entity %T", name, entity)
			}
			switch v := value.(type) {
			case string:
				set(e, v)
			case nil:
				set(e, "")
			default:
				return &AttributeTypeError{Attribute: name, Expected: "string", Got: jsonKind(value)}
			}
			return nil
		},
	}
}

// ToMany declares a to-many relationship of T whose members are R values of
// resource type target.
func ToMany[T any, R any](name, target string, get func(T) []R) Field {
	return Field{
		Name:   name,
		Kind:   KindToMany,
		Target: target,
		members: func(entity any) []any {
			e, ok := entity.(T)
			if !ok {
				return nil
			}
			related := get(e)
			out := make([]any, 0, len(related))
			for _, r := range related {
				out = append(out, r)
			}
			return out
		},
	}
}

// AttributeTypeError is returned when an inbound attribute has the wrong JSON
// type.
type AttributeTypeError struct {
	Attribute string
	Expected  string
	Got       string
}

// Error implements the error interface.
func (e *AttributeTypeError) Error() string {
	return fmt.Sprintf("attribute %q must be a %s, got %s", e.Attribute, e.Expected, e.Got)
}

func jsonKind(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Descriptor is the static description of one resource type.
type Descriptor struct {
	Type string
	// SlugAttribute is the field used as external identifier in URLs.
	SlugAttribute string
	Fields        []Field

	id      func(entity any) (string, bool)
	matches func(entity any) bool
}

// NewDescriptor builds the descriptor of entity type T.
func NewDescriptor[T any](resourceType, slugAttribute string, id func(T) int64, fields ...Field) *Descriptor {
	return &Descriptor{
		Type:          resourceType,
		SlugAttribute: slugAttribute,
		Fields:        fields,
		id: func(entity any) (string, bool) {
			e, ok := entity.(T)
			if !ok {
				return "", false
			}
			return strconv.FormatInt(id(e), 10), true
		},
		matches: func(entity any) bool {
			_, ok := entity.(T)
			return ok
		},
	}
}

// ID returns the stringified id of entity.
func (d *Descriptor) ID(entity any) string {
	id, _ := d.id(entity)
	return id
}

// Field looks a field up by name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Relationship looks a to-many field up by name.
func (d *Descriptor) Relationship(name string) (Field, bool) {
	f, ok := d.Field(name)
	if !ok || f.Kind != KindToMany {
		return Field{}, false
	}
	return f, true
}

// Relationships lists the to-many fields in declaration order.
func (d *Descriptor) Relationships() []Field {
	var out []Field
	for _, f := range d.Fields {
		if f.Kind == KindToMany {
			out = append(out, f)
		}
	}
	return out
}

// slugValue returns the value of attribute name as a string, with "id"
// resolving to the identifier.
func (d *Descriptor) slugValue(entity any, name string) string {
	if name == "id" {
		return d.ID(entity)
	}
	f, ok := d.Field(name)
	if !ok || f.Kind != KindScalar {
		return ""
	}
	switch v := f.Value(entity).(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Registry holds the descriptors known to a serializer.
type Registry struct {
	byType map[string]*Descriptor
	order  []*Descriptor
}

// NewRegistry returns a registry containing descriptors.
func NewRegistry(descriptors ...*Descriptor) *Registry {
	r := &Registry{byType: make(map[string]*Descriptor, len(descriptors))}
	for _, d := range descriptors {
		r.byType[d.Type] = d
		r.order = append(r.order, d)
	}
	return r
}

// Lookup returns the descriptor of a resource type.
func (r *Registry) Lookup(resourceType string) (*Descriptor, bool) {
	d, ok := r.byType[resourceType]
	return d, ok
}

// For returns the descriptor describing entity.
func (r *Registry) For(entity any) (*Descriptor, error) {
	for _, d := range r.order {
		if d.matches(entity) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no resource descriptor registered for %T", entity)
}
