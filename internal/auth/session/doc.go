// Package session implements session management: authenticating a user
// against the credential store and binding the resulting identity to an
// opaque token.
//
// Tokens are random, never derived from identity or time. Only a hash
// of the token is stored server-side; the plain token is returned to
// the client exactly once. A session carries only the user id — the
// full user record is re-fetched on every Resolve so profile data is
// never stale.
package session
