// Package api exposes the HTTP surface for accounts and sessions:
// registration, login, logout, profile reads and updates, and avatar
// uploads. Handlers speak JSON except the multipart avatar upload.
//
// Error responses use a stable machine-readable code so clients never
// have to parse messages. Authentication failures are deliberately
// indistinguishable from each other over the wire.
package api
