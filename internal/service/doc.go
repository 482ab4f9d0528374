// Package service holds the use cases of the directory: reading agencies and
// services as JSON:API documents and writing inbound JSON:API payloads back to
// the store.
//
// A write request is handled as one unit of work. Entities are loaded into a
// request-scoped graph so that each stored row is represented by exactly one
// object, payload items are materialized onto those objects, relationship
// changes go through the reconciler (the only code that mutates both sides of
// an agency-service link), every item is validated, and only then is the whole
// batch written in a single transaction.
package service
