package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	// SaltLength is the size in bytes of freshly generated credential salts.
	SaltLength = 16

	argonTime    = 2
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
)

// GenerateSalt returns a random salt for password hashing.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword derives an Argon2id digest of the password under the given salt.
// The salt is stored alongside the digest by the caller; the password itself is
// never retained.
func HashPassword(password string, salt []byte) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("crypto: password is required")
	}
	if len(salt) < SaltLength {
		return nil, fmt.Errorf("crypto: salt must be at least %d bytes (got %d)", SaltLength, len(salt))
	}

	digest := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return digest, nil
}

// VerifyPassword re-derives the digest for the candidate password and compares
// it against the stored digest in constant time.
func VerifyPassword(password string, salt, digest []byte) bool {
	if password == "" || len(salt) == 0 || len(digest) == 0 {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}

// GenerateToken returns a random URL-safe token of the requested byte length.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("crypto: token length must be positive")
	}

	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("crypto: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buffer), nil
}
