// Package password provides credential hashing and verification.
//
// It wraps bcrypt with a configurable cost and a small length policy:
// - Hash generates a fresh random salt per call, so two hashes of the
//   same secret never match byte-for-byte.
// - Verify distinguishes "wrong secret" (false, nil) from an internal
//   or malformed-hash failure (false, err). Callers must never collapse
//   the two.
package password
