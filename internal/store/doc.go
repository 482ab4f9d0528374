// Package store defines the persistence contracts of the agency directory.
// Implementations live under internal/platform; the service layer only sees
// these interfaces, the DBTX abstraction and the sentinel errors below.
//
// Entities returned by the stores carry their relationships one level deep:
// an agency comes with its services (attributes filled, no back links) and a
// service with its agencies. Building a symmetric object graph out of those is
// the job of the caller.
package store
