package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// newOpaqueToken generates a random token and its storage hash.
// The plain token is base64url without padding; it goes to the client
// exactly once and is never persisted.
func newOpaqueToken(nBytes int, hmacKey string) (plain, hash string, err error) {
	if nBytes <= 0 {
		nBytes = 32
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("token entropy: %w", err)
	}

	plain = base64.RawURLEncoding.EncodeToString(b)
	return plain, hashTokenHex(plain, hmacKey), nil
}

// hashTokenHex hashes a plain token for server-side storage.
// With an HMAC key configured the digest is keyed; otherwise plain
// SHA-256 is used.
func hashTokenHex(plain, hmacKey string) string {
	if hmacKey == "" {
		sum := sha256.Sum256([]byte(plain))
		return hex.EncodeToString(sum[:])
	}
	m := hmac.New(sha256.New, []byte(hmacKey))
	_, _ = m.Write([]byte(plain))
	return hex.EncodeToString(m.Sum(nil))
}
