// Package domain contains the entity graph of the agency directory: agencies,
// the services they offer and the many-to-many association between them, plus
// the API users allowed to call the service. Entities here carry declarative
// validation rules but know nothing about persistence or HTTP.
package domain
