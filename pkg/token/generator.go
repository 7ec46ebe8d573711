package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// DefaultLength is the default token length in bytes.
const DefaultLength = 32

// SlugAlphabet is the character set of generated slugs.
const SlugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate generates a cryptographically secure random token.
//
// The returned token is Base64 RawURL encoded for safe URL transmission.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token with the specified byte length.
func GenerateWithLength(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// GenerateSlug returns n characters drawn uniformly from SlugAlphabet.
//
// Rejection sampling keeps the distribution uniform: bytes at or above
// the largest multiple of the alphabet size are discarded.
func GenerateSlug(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("token: slug length must be positive")
	}

	const limit = 256 - 256%len(SlugAlphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n*2)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, SlugAlphabet[int(b)%len(SlugAlphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
