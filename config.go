package authcore

import (
	"errors"
	"time"
)

// Config groups all tunables of the engine. Zero values are filled by
// defaultConfig; Validate rejects configurations that would weaken token
// unguessability or break expiry arithmetic.
type Config struct {
	Session           SessionConfig
	Password          PasswordConfig
	PasswordReset     PasswordResetConfig
	EmailVerification EmailVerificationConfig
	Audit             AuditConfig
	Metrics           MetricsConfig
}

// SessionConfig controls auth-token issuance and expiry.
type SessionConfig struct {
	// RedisPrefix namespaces token keys in the backing store.
	RedisPrefix string
	// TokenLength is the length of issued bearer tokens, in alphanumeric
	// characters. Minimum 32.
	TokenLength int
	// SessionTTL is the lifetime of a non-remembered token.
	SessionTTL time.Duration
	// RememberedTTL is the lifetime of a remembered token, applied at
	// issuance and re-applied on every successful resolution (sliding
	// window).
	RememberedTTL time.Duration
}

// PasswordConfig carries the argon2id cost parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// PasswordResetConfig controls single-use password-reset tokens.
type PasswordResetConfig struct {
	TokenLength int
	ResetTTL    time.Duration
}

// EmailVerificationConfig controls single-use email-verification tokens.
type EmailVerificationConfig struct {
	TokenLength     int
	VerificationTTL time.Duration
}

// AuditConfig controls the async audit dispatcher. Emission never blocks
// an engine operation; events beyond BufferSize are dropped and counted.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const minTokenLength = 32

// Defaults follow the original portal deployment: 32-character tokens,
// 24h plain sessions, 30-day remembered sessions and verification tokens,
// 2h reset tokens.
func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix:   "at",
			TokenLength:   32,
			SessionTTL:    24 * time.Hour,
			RememberedTTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		PasswordReset: PasswordResetConfig{
			TokenLength: 32,
			ResetTTL:    2 * time.Hour,
		},
		EmailVerification: EmailVerificationConfig{
			TokenLength:     32,
			VerificationTTL: 30 * 24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Session.TokenLength < minTokenLength {
		return errors.New("session token length must be >= 32")
	}
	if c.Session.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Session.RememberedTTL < c.Session.SessionTTL {
		return errors.New("remembered ttl must be >= session ttl")
	}
	if c.PasswordReset.TokenLength < minTokenLength {
		return errors.New("password reset token length must be >= 32")
	}
	if c.PasswordReset.ResetTTL <= 0 {
		return errors.New("password reset ttl must be positive")
	}
	if c.EmailVerification.TokenLength < minTokenLength {
		return errors.New("email verification token length must be >= 32")
	}
	if c.EmailVerification.VerificationTTL <= 0 {
		return errors.New("email verification ttl must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}
