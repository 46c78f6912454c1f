package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Validate checks a plaintext secret against the configured policy.
func (c Config) Validate(password string) error {
	if len(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if len(password) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}

// Hash hashes a secret with bcrypt and returns the encoded hash string.
// bcrypt generates a fresh random salt on every call, so hashing the
// same secret twice yields different outputs.
func (c Config) Hash(password string) (string, error) {
	if err := c.Validate(password); err != nil {
		return "", err
	}

	cost := c.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Verify checks whether password matches the given encoded hash.
// Returns (true, nil) for a match, (false, nil) for a mismatch, and
// (false, err) when the stored hash is malformed or hashing fails.
func (c Config) Verify(encodedHash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	var hv bcrypt.HashVersionTooNewError
	if errors.Is(err, bcrypt.ErrHashTooShort) || errors.As(err, &hv) {
		return false, ErrInvalidHash
	}

	var iv bcrypt.InvalidHashPrefixError
	if errors.As(err, &iv) {
		return false, ErrInvalidHash
	}

	return false, err
}
