package password

import (
	"errors"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}
	return h
}

func TestGenerateAndVerify(t *testing.T) {
	h := testHasher(t)

	hash, salt, err := h.Generate("correct-horse-battery")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hash == "" || salt == "" {
		t.Fatal("empty hash or salt")
	}

	ok, err := h.Verify("correct-horse-battery", salt, hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	h := testHasher(t)

	hash, salt, err := h.Generate("correct-horse-battery")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// A wrong password is a clean false, never an error.
	ok, err := h.Verify("wrong-password", salt, hash)
	if err != nil {
		t.Fatalf("Verify returned error for wrong password: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestGenerateUniqueSalts(t *testing.T) {
	h := testHasher(t)

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		_, salt, err := h.Generate("same-password")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, dup := seen[salt]; dup {
			t.Fatalf("salt repeated after %d generations", i)
		}
		seen[salt] = struct{}{}
	}
}

func TestSamePasswordDifferentHashes(t *testing.T) {
	h := testHasher(t)

	hash1, _, err := h.Generate("same-password")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	hash2, _, err := h.Generate("same-password")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if hash1 == hash2 {
		t.Fatal("same password produced identical hashes under fresh salts")
	}
}

func TestHashWithSaltDeterministic(t *testing.T) {
	h := testHasher(t)

	_, salt, err := h.Generate("correct-horse-battery")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	first, err := h.HashWithSalt("correct-horse-battery", salt)
	if err != nil {
		t.Fatalf("HashWithSalt failed: %v", err)
	}
	second, err := h.HashWithSalt("correct-horse-battery", salt)
	if err != nil {
		t.Fatalf("HashWithSalt failed: %v", err)
	}
	if first != second {
		t.Fatal("recomputation under the same salt diverged")
	}
}

func TestEmptyPassword(t *testing.T) {
	h := testHasher(t)

	if _, _, err := h.Generate(""); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("Generate err = %v, want ErrEmptyPassword", err)
	}
	if _, err := h.HashWithSalt("", "somesalt"); !errors.Is(err, ErrEmptyPassword) {
		t.Fatalf("HashWithSalt err = %v, want ErrEmptyPassword", err)
	}

	ok, err := h.Verify("", "somesalt", "somehash")
	if err != nil || ok {
		t.Fatalf("Verify(\"\") = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16}},
		{"zero parallelism", Config{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16}},
		{"short salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}},
		{"short key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		if _, err := NewHasher(tc.cfg); err == nil {
			t.Fatalf("%s: NewHasher accepted weak config", tc.name)
		}
	}
}
