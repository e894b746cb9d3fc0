package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// ErrEmptyPassword is returned when a credential is created or recomputed
// from an empty plaintext.
var ErrEmptyPassword = errors.New("password must not be empty")

// Config carries the argon2id cost parameters.
type Config struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Hasher computes and verifies salted argon2id password digests. The salt
// travels alongside the hash as a separate printable string, so a stored
// credential is the pair (hash, salt).
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a [Hasher].
func NewHasher(cfg Config) (*Hasher, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return &Hasher{config: cfg}, nil
}

// Generate derives a digest from plaintext under a fresh random salt.
// The returned salt is base64-encoded and unique per call; SaltLength of
// 16 bytes gives 128 bits of entropy.
func (h *Hasher) Generate(plaintext string) (hash, salt string, err error) {
	if plaintext == "" {
		return "", "", ErrEmptyPassword
	}

	raw := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", "", err
	}
	salt = base64.StdEncoding.EncodeToString(raw)

	hash, err = h.HashWithSalt(plaintext, salt)
	if err != nil {
		return "", "", err
	}
	return hash, salt, nil
}

// HashWithSalt deterministically recomputes the digest of plaintext under
// an existing salt. The salt string is fed to the KDF as-is; it only needs
// to round-trip byte-identically with what Generate stored.
func (h *Hasher) HashWithSalt(plaintext, salt string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if salt == "" {
		return "", errors.New("salt must not be empty")
	}

	digest := argon2.IDKey(
		[]byte(plaintext),
		[]byte(salt),
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)
	return base64.StdEncoding.EncodeToString(digest), nil
}

// Verify recomputes the digest of plaintext under salt and compares it to
// hash in constant time. A wrong password is (false, nil), never an error.
func (h *Hasher) Verify(plaintext, salt, hash string) (bool, error) {
	if plaintext == "" || salt == "" || hash == "" {
		return false, nil
	}

	computed, err := h.HashWithSalt(plaintext, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

func validateConfig(cfg Config) error {
	if cfg.Memory < minMemoryKB {
		return errors.New("password memory must be >= 8192 KB")
	}
	if cfg.Time < minTimeCost {
		return errors.New("password time must be >= 1")
	}
	if cfg.Parallelism < minParallelism {
		return errors.New("password parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return errors.New("password key length must be >= 16")
	}
	return nil
}
