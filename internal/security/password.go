// Package security hashes and verifies account passwords.
package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt = "bcrypt"
	AlgorithmArgon2 = "argon2"
)

var ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")

// PasswordHasher is the hash/compare collaborator used by accounts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) bool
}

// NewPasswordHasher returns a hasher that produces hashes with algorithm.
// Verification recognises both encodings so switching algorithms does not
// lock out existing accounts.
func NewPasswordHasher(algorithm string) (PasswordHasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, "":
		return &hasher{hash: hashBcrypt}, nil
	case AlgorithmArgon2:
		return &hasher{hash: hashArgon2}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, algorithm)
}

type hasher struct {
	hash func(password string) (string, error)
}

func (h *hasher) Hash(password string) (string, error) {
	return h.hash(password)
}

func (h *hasher) Verify(encodedHash, password string) bool {
	switch {
	case strings.HasPrefix(encodedHash, "$argon2"):
		ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
		return err == nil && ok
	case strings.HasPrefix(encodedHash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	}
	return false
}

func hashBcrypt(password string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(encoded), nil
}

func hashArgon2(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("argon2 hash failed: %w", err)
	}
	return string(encoded), nil
}
