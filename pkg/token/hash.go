package token

import (
	"crypto/sha256"
	"crypto/subtle"
)

// Equal compares two secrets in constant time.
//
// Both sides are hashed first so the comparison time does not depend on
// where, or whether, their lengths differ.
func Equal(got, want string) bool {
	g := sha256.Sum256([]byte(got))
	w := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(g[:], w[:]) == 1
}
