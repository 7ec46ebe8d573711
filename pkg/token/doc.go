// Package token provides random identifier generation and secret comparison.
//
//   - GenerateSlug: short lowercase alphanumeric identifiers (snapshot slugs)
//   - Generate: Base64 RawURL encoded random tokens
//   - Equal: constant-time comparison of shared secrets
//
// All randomness comes from crypto/rand.
package token
