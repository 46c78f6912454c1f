package session

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config defines runtime configuration for the session subsystem.
type Config struct {
	// TTL is the session lifetime from issue time.
	TTL time.Duration

	// TokenBytes is the number of random bytes behind an opaque token.
	TokenBytes int

	// HMACKey, when non-empty, switches token hashing from plain
	// SHA-256 to HMAC-SHA256 so a leaked session table cannot be
	// checked offline against candidate tokens.
	HMACKey string
}

// DefaultConfig returns a configuration suitable for development.
func DefaultConfig() Config {
	return Config{
		TTL:        7 * 24 * time.Hour,
		TokenBytes: 32,
	}
}

// LoadConfigFromEnv loads session configuration from environment variables.
//
// Env surface:
// - CHAT_SESSION_TTL (Go duration)
// - CHAT_SESSION_TOKEN_BYTES
// - CHAT_TOKEN_HMAC_KEY
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("CHAT_SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%w: CHAT_SESSION_TTL=%q", ErrConfig, v)
		}
		cfg.TTL = d
	}

	if v := strings.TrimSpace(os.Getenv("CHAT_SESSION_TOKEN_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 16 || n > 128 {
			return Config{}, fmt.Errorf("%w: CHAT_SESSION_TOKEN_BYTES=%q", ErrConfig, v)
		}
		cfg.TokenBytes = n
	}

	cfg.HMACKey = strings.TrimSpace(os.Getenv("CHAT_TOKEN_HMAC_KEY"))

	return cfg, nil
}
