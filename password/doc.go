// Package password implements salted argon2id credential hashing.
//
// The original system left the hash function unspecified; this package
// deliberately uses a memory-hard KDF with configurable cost parameters
// instead of a fast general-purpose hash. The salt is stored as its own
// printable field on the credential rather than packed into a PHC string,
// because the credential schema owns (hash, salt) as separate columns and
// the reset-token flow replaces both atomically.
//
// # What this package must NOT do
//
//   - Store or log plaintext passwords.
//   - Compare digests with non-constant-time operations.
//   - Reuse a salt across credentials.
package password
