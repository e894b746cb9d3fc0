// Package authcore implements the authentication and session-credential
// core of the gimana.id portal: opaque bearer-token sessions, salted
// password credentials, single-use email-verification and password-reset
// tokens, and claims-based authorization policies.
//
// # Components
//
//   - [Engine] — the only sanctioned entry point into credential and
//     session state. Built through [Builder].
//   - [UserStore] — the persistence boundary callers implement; the
//     memstore subpackage ships an in-memory reference implementation.
//   - session — Redis-backed store for [AuthToken] records with lazy
//     expiry and forward-only remembered extension.
//   - password — argon2id credential hashing with per-credential salts.
//   - policy — typed claims and named authorization policies.
//   - randtoken — cryptographically random alphanumeric token strings.
//
// # Time
//
// Every expiry comparison uses a single [Clock] injected at build time.
// One Engine operation reads the clock once and threads the same instant
// through resolution, extension, and claims derivation, so behavior is
// reproducible under a fixed test clock.
//
// # Errors
//
// Failures surface as package-level sentinel errors ([ErrTokenNotFound],
// [ErrTokenExpired], [ErrTokenMismatch], [ErrUnauthenticated],
// [ErrAuthorizationDenied], ...) matched with errors.Is. A wrong password
// during verification is a boolean false, never an error.
package authcore
