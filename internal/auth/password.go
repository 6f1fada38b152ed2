package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordLength is bcrypt's hard input limit in bytes.
const MaxPasswordLength = 72

var ErrPasswordTooLong = errors.New("password exceeds maximum length of 72 bytes")

// HashPassword creates a bcrypt hash of the password with the given cost.
// The salt is random per call, so hashing the same password twice yields
// different hashes.
func HashPassword(password string, cost int) (string, error) {
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash. A mismatch returns
// (false, nil); only a corrupt hash or primitive failure returns an error.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
