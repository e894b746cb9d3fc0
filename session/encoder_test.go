package session

import (
	"testing"
	"time"
)

func TestEncodeDecodeRoundtrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	original := &Token{
		Token:      "abcdefghijklmnopqrstuvwxyz012345",
		UserID:     "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		UserAgent:  "Mozilla/5.0 (X11; Linux x86_64)",
		IPAddress:  "203.0.113.7",
		Remembered: true,
		IssuedAt:   now.Unix(),
		ExpiresAt:  now.Add(30 * 24 * time.Hour).Unix(),
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	// The bearer string is the key, not part of the value.
	decoded.Token = original.Token

	if *decoded != *original {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestEncodeRejectsOversizedFields(t *testing.T) {
	long := make([]byte, 70000)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := Encode(&Token{UserID: string(long[:300])}); err == nil {
		t.Fatal("oversized user ID accepted")
	}
	if _, err := Encode(&Token{UserID: "u", UserAgent: string(long)}); err == nil {
		t.Fatal("oversized user agent accepted")
	}
	if _, err := Encode(&Token{UserID: "u", IPAddress: string(long[:300])}); err == nil {
		t.Fatal("oversized ip accepted")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	token := &Token{UserID: "u", IssuedAt: 1, ExpiresAt: 2}
	data, err := Encode(token)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	data[0] = 99
	if _, err := Decode(data); err == nil {
		t.Fatal("unknown record version accepted")
	}
}

func TestDecodeTruncated(t *testing.T) {
	token := &Token{UserID: "user-1", UserAgent: "ua", IPAddress: "ip", IssuedAt: 1, ExpiresAt: 2}
	data, err := Encode(token)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	for i := 1; i < len(data); i++ {
		if _, err := Decode(data[:i]); err == nil {
			t.Fatalf("truncated record of %d bytes accepted", i)
		}
	}
}

func TestExpiredAtBoundary(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	token := &Token{ExpiresAt: now.Unix()}

	if token.ExpiredAt(now) {
		t.Fatal("token expired at its own expiry instant")
	}
	if !token.ExpiredAt(now.Add(time.Second)) {
		t.Fatal("token alive past its expiry instant")
	}
}
