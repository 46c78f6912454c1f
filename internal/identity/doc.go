// Package identity holds the user record model and its persistence
// boundary.
//
// It is the durable side of authentication: registration writes a user
// with a hashed credential, login and session resolution read it back.
// The package stays dependency-light so both the HTTP and WebSocket
// layers can consume it.
package identity
