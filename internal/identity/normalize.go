package identity

import "strings"

// NormalizeUsername performs case-insensitive canonicalization.
// Uniqueness is enforced on the normalized form so "Alice" and "alice"
// are the same account.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
