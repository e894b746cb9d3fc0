// Package randtoken generates cryptographically unpredictable alphanumeric
// token strings. It backs session bearer tokens, email-verification tokens,
// and password-reset tokens.
//
// The generator is a pure function aside from the random source: no state
// is kept between calls and no seed is ever reused. At the recommended
// minimum length of 32 the collision probability over a 62-symbol alphabet
// is negligible.
package randtoken
