package session

import "time"

// Token is an opaque bearer-token session record. The Token string itself
// is the store key; the record value carries the owner back-reference and
// issuance metadata. Timestamps are unix seconds.
type Token struct {
	Token      string
	UserID     string
	UserAgent  string
	IPAddress  string
	Remembered bool

	IssuedAt  int64
	ExpiresAt int64
}

// Expiry returns ExpiresAt as a time.Time.
func (t *Token) Expiry() time.Time {
	return time.Unix(t.ExpiresAt, 0)
}

// ExpiredAt reports whether the token is past its expiry at the given
// instant. Expiry is exclusive: a token resolved exactly at ExpiresAt is
// still valid.
func (t *Token) ExpiredAt(now time.Time) bool {
	return now.Unix() > t.ExpiresAt
}
