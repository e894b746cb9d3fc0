// Package session persists opaque bearer-token records in Redis.
//
// # Design
//
// Each record is a versioned binary blob keyed by the bearer string, with
// a Redis TTL mirroring the record's own expiry timestamp. Expiry is
// enforced lazily at lookup against a caller-supplied clock instant; the
// TTL is hygiene, not the correctness mechanism. A per-user set indexes
// every live token so revocation of all of a user's sessions is a set
// scan, not a keyspace scan.
//
// # Architecture boundaries
//
// This package owns persistence of token records. It does NOT generate
// token strings, decide lifetimes, or derive claims — those belong to the
// engine. It never reads the wall clock for expiry decisions.
package session
