// Package password hashes and verifies stored credentials with bcrypt.
package password

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used by Hash.
var Cost = bcrypt.DefaultCost

// maxBcryptInput is the longest input bcrypt accepts.
const maxBcryptInput = 72

// Hash returns a salted bcrypt digest of plaintext. Any length is accepted.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(prepare(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest.
func Verify(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), prepare(plaintext)) == nil
}

// prepare condenses inputs longer than bcrypt's limit into a SHA-256 digest
// so that every byte of the password counts.
func prepare(plaintext string) []byte {
	if len(plaintext) <= maxBcryptInput {
		return []byte(plaintext)
	}
	sum := sha256.Sum256([]byte(plaintext))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
