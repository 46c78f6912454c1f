package session

import "errors"

var (
	// ErrUnknownIdentity is returned internally when the login name does
	// not match any user. It must never be distinguishable from
	// ErrInvalidCredential over the wire; use IsAuthFailure at the boundary.
	ErrUnknownIdentity = errors.New("unknown identity")

	// ErrInvalidCredential is returned internally when the secret does
	// not match the stored hash.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrSessionNotActive is returned when a token is unknown, expired,
	// or invalidated. The three cases are deliberately merged to avoid
	// token probing.
	ErrSessionNotActive = errors.New("session not active")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid session config")
)

// IsAuthFailure reports whether err is one of the authentication
// failures that must surface as a single generic response to clients.
// Both kinds stay distinct internally for logging.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnknownIdentity) || errors.Is(err, ErrInvalidCredential)
}
