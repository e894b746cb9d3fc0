package authcore

import "errors"

var (
	// ErrInvalidInput is returned for malformed request data, such as an
	// empty password or a blank username.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned when a login or password change
	// presents a wrong username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when the persistence boundary has no
	// user for the given identifier.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned by account creation when the username
	// is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrTokenNotFound is returned when a presented auth token does not
	// resolve to any stored session.
	ErrTokenNotFound = errors.New("auth token not found")
	// ErrTokenExpired is returned when a token exists but its expiry has
	// passed at the injected clock's current instant.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMismatch is returned when a presented single-use token does
	// not match the stored one.
	ErrTokenMismatch = errors.New("token mismatch")
	// ErrUnauthenticated is returned by Authorize when no resolvable
	// session token accompanies the request. Distinct from denial.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrAuthorizationDenied is returned when a resolved session fails an
	// attached policy.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrStoreUnavailable is returned when the token store backend cannot
	// be reached.
	ErrStoreUnavailable = errors.New("token store unavailable")
	// ErrEngineNotReady is returned when an Engine method is invoked on a
	// partially constructed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
