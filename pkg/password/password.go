// Package password hashes user passwords with bcrypt.
//
// bcrypt reads at most 72 bytes. Longer passwords are first reduced to the
// base64 of their SHA-256 digest so every byte still counts and no length is
// rejected.
package password

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// maxBcryptInput is the largest input bcrypt accepts.
const maxBcryptInput = 72

// Hash returns the bcrypt hash of password at cost.
func Hash(password string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword(prepare(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// Compare reports a nil error when password matches hash.
func Compare(hash []byte, password string) error {
	return bcrypt.CompareHashAndPassword(hash, prepare(password))
}

func prepare(password string) []byte {
	if len(password) <= maxBcryptInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
