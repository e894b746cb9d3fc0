// Package policy implements claims-based authorization: a typed claims
// set derived per request from current account state, and named boolean
// policies evaluated against it.
//
// Claims are never cached across requests — ban status and privileges can
// change between any two requests, so the engine re-derives them from the
// persistence boundary every time.
package policy
