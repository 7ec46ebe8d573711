package archive

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/supsim/internal/core/domain"
)

// CipherType names the AEAD sealing the key-check record.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

const (
	saltLength = 16
	keyLength  = 32

	// Argon2id runs on the request path for every protected create.
	argon2Time    = 1
	argon2Memory  = 8 * 1024
	argon2Threads = 1

	keyCheckInfo = "supsim archive key-check"
)

var keyCheckPlaintext = []byte("supsim-key-check")

// DefaultCipher prefers AES-GCM where Go uses hardware AES.
func DefaultCipher() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// deriveKey stretches the password with Argon2id and expands a purpose
// bound subkey with HKDF.
func deriveKey(password string, salt []byte) ([]byte, error) {
	master := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, keyLength)
	reader := hkdf.New(sha256.New, master, salt, []byte(keyCheckInfo))
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive subkey: %w", err)
	}
	return key, nil
}

func newAEAD(kind CipherType, key []byte) (cipher.AEAD, error) {
	switch kind {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		return cipher.NewGCM(block)
	case CipherChaCha20:
		return chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("unknown cipher %q", kind)
	}
}

// sealKeyCheck returns salt || nonce || ciphertext, with the slug bound as
// additional data.
func sealKeyCheck(kind CipherType, password, slug string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(kind, key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, saltLength+len(nonce)+len(keyCheckPlaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, keyCheckPlaintext, []byte(slug)), nil
}

func openKeyCheck(kind CipherType, password, slug string, record []byte) error {
	if kind == "" {
		kind = CipherAESGCM
	}
	if len(record) < saltLength {
		return domain.ErrCorruptArchive.WithDetails("short key check")
	}
	salt := record[:saltLength]

	key, err := deriveKey(password, salt)
	if err != nil {
		return domain.ErrInternalServer.WithCause(err)
	}
	aead, err := newAEAD(kind, key)
	if err != nil {
		return domain.ErrCorruptArchive.WithCause(err)
	}

	rest := record[saltLength:]
	if len(rest) < aead.NonceSize()+aead.Overhead() {
		return domain.ErrCorruptArchive.WithDetails("short key check")
	}
	nonce, sealed := rest[:aead.NonceSize()], rest[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, sealed, []byte(slug))
	if err != nil || !bytes.Equal(plain, keyCheckPlaintext) {
		return domain.ErrSnapshotPassword
	}
	return nil
}
