// Package jsonapi turns entities into JSON:API documents and checks the shape
// of inbound JSON:API payloads.
//
// Serialization is driven by two inputs: a static Descriptor per resource type
// listing its attributes and to-many relationships in order, and a Context
// describing where the document is rendered (base URL, slug handling, whether
// nested relationships are wanted). The caller picks one of the Mode values
// explicitly; the serializer never guesses the mode from the shape of its
// input.
//
// The Gate applies the ordered structural rules to request documents before
// any entity is touched. Each rule has its own Code so clients and tests can
// tell the failures apart.
package jsonapi
