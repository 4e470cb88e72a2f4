// Package cryptox provides the credential hashing primitives used by the
// user administration service.
package cryptox

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt. The salt is generated
// by the algorithm, so hashing the same password twice yields different
// strings while still verifying.
//
// Plaintext length policy (8-30 characters) is enforced at the validation
// boundary, not here; this function only guards the bcrypt 72-byte input cap.
func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", errors.New("cryptox: password exceeds bcrypt input limit")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
// A mismatch is not an error, it just returns false.
func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
