// Package memstore provides the in-memory reference implementation of
// the user persistence interface. It exists for tests, examples, and
// prototyping; production deployments implement the interface over their
// own database.
package memstore
