package randtoken

import (
	"crypto/rand"
	"errors"
)

// Alphabet is the 62-symbol alphanumeric alphabet tokens are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// ErrInvalidLength is returned when the requested length is not positive.
var ErrInvalidLength = errors.New("token length must be positive")

// Generate returns a token of the given length with each character drawn
// uniformly from [Alphabet] using the platform CSPRNG. Rejection sampling
// keeps the distribution unbiased: 62 does not divide 256, so raw bytes
// that would skew toward the low end of the alphabet are discarded.
func Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	// Largest multiple of len(Alphabet) that fits in a byte.
	const limit = byte(256 - 256%len(Alphabet))

	out := make([]byte, 0, length)
	buf := make([]byte, length)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
