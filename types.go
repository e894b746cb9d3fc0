package authcore

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/gimanaid/authcore/internal/audit"
	"github.com/gimanaid/authcore/session"
)

// Privilege names recognized by the claims evaluator. Callers may grant
// additional names; only these two feed IsModerator/IsAdmin claims.
const (
	PrivilegeAdmin     = "Admin"
	PrivilegeModerator = "Moderator"
)

// Clock supplies the current time for every expiry comparison. Injected so
// tests can fix time; one logical request reads it exactly once.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default [Clock], reading the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// EmailSender delivers notification messages. The engine treats delivery
// as fire-and-forget: a send failure is audited but never rolls back a
// token or flag change already persisted.
type EmailSender interface {
	Send(recipient, subject, body string) error
}

// NoopEmailSender discards all messages. Used when no sender is wired.
type NoopEmailSender struct{}

// Send discards the message.
func (NoopEmailSender) Send(recipient, subject, body string) error { return nil }

// User is the identity root. Auth tokens are not embedded here; the
// session store holds the canonical per-user token collection, and each
// token carries the owner's ID as a back-reference.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        UserEmail
	Privileges   []string
	ProfileImage string

	// BanLiftedDate in the future means the account is currently banned.
	// The zero time means the user was never banned.
	BanLiftedDate time.Time

	Credential PasswordCredential
}

// HasPrivilege reports whether the privilege name has been granted.
func (u *User) HasPrivilege(name string) bool {
	for _, p := range u.Privileges {
		if p == name {
			return true
		}
	}
	return false
}

// UserEmail is the email value object. VerificationToken holds at most one
// live verification token; a nil pointer means none outstanding.
type UserEmail struct {
	Address           string
	IsVerified        bool
	VerificationToken *EmailVerificationToken
}

// EmailVerificationToken is a single-use, time-boxed verification token.
// Re-requesting verification replaces any prior unconsumed instance.
type EmailVerificationToken struct {
	Token     string
	CreatedAt time.Time
}

// PasswordCredential is owned 1:1 by a User. HashedPassword is the argon2id
// digest of (plaintext, salt); the salt is random, printable, and never
// reused across credentials. ResetToken holds at most one live reset token.
type PasswordCredential struct {
	HashedPassword string
	Salt           string
	ResetToken     *PasswordResetToken
}

// PasswordResetToken is a single-use, time-boxed reset token embedded in
// the owning credential.
type PasswordResetToken struct {
	Token     string
	CreatedAt time.Time
}

// AuthToken is an opaque bearer-token session record. The Token string is
// the bearer credential; ExpiresAt is enforced lazily at resolution time.
type AuthToken = session.Token

// UserStore is the persistence boundary callers implement. Implementations
// must return [ErrUserNotFound] (or an error wrapping it) when a lookup
// misses, and provide read-your-writes consistency within a request.
//
// The memstore subpackage provides the in-memory reference implementation.
type UserStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditKind identifies which engine operation an [AuditEvent] records.
type AuditKind = internalaudit.Kind

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes JSON-encoded audit events, one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
