package password

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Policy controls secret length bounds checked before hashing.
type Policy struct {
	MinLength int
	MaxLength int
}

// Config is the single configuration surface for this package.
type Config struct {
	// Cost is the bcrypt work factor (log2 rounds).
	Cost   int
	Policy Policy
}

// DefaultConfig matches the historical product behavior: bcrypt with a
// work factor of 10 and no minimum length enforced by default.
// MaxLength is capped at 72 because bcrypt ignores bytes past that.
func DefaultConfig() Config {
	return Config{
		Cost: bcrypt.DefaultCost,
		Policy: Policy{
			MinLength: 1,
			MaxLength: 72,
		},
	}
}

// FromEnv loads config from environment variables.
//
// Env surface:
// - CHAT_BCRYPT_COST
// - CHAT_PASSWORD_MIN_LEN
// - CHAT_PASSWORD_MAX_LEN
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("CHAT_BCRYPT_COST"); ok {
		n, err := atoiRange(v, bcrypt.MinCost, bcrypt.MaxCost)
		if err != nil {
			return Config{}, fmt.Errorf("CHAT_BCRYPT_COST: %w", err)
		}
		cfg.Cost = n
	}

	if v, ok := os.LookupEnv("CHAT_PASSWORD_MIN_LEN"); ok {
		n, err := atoiRange(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("CHAT_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.Policy.MinLength = n
	}

	if v, ok := os.LookupEnv("CHAT_PASSWORD_MAX_LEN"); ok {
		n, err := atoiRange(v, 1, 72)
		if err != nil {
			return Config{}, fmt.Errorf("CHAT_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.Policy.MaxLength = n
	}

	if cfg.Policy.MinLength > cfg.Policy.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.Policy.MinLength,
			cfg.Policy.MaxLength,
		)
	}

	return cfg, nil
}

func atoiRange(s string, minVal, maxVal int) (int, error) {
	s = strings.TrimSpace(s)
	i64, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}

	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}
