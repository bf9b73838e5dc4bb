package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash indicates a stored hash that bcrypt cannot parse. Callers
// treat it as an authentication failure, never as a crash.
var ErrMalformedHash = errors.New("malformed password hash")

// HashPassword hashes a plaintext password with the configured cost. bcrypt
// embeds a fresh random salt, so repeated calls with the same input yield
// different digests.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value in constant
// time. A mismatch returns (false, nil); only an unparseable stored hash
// returns an error.
func ComparePassword(hashed, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrMalformedHash
}
