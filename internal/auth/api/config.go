package api

import (
	"os"
	"strconv"
	"strings"
)

const (
	defaultMaxBodyBytes   = 1 << 20 // 1 MiB for JSON bodies
	defaultMaxUploadBytes = 5 << 20 // 5 MiB for avatar uploads
	defaultUploadDir      = "uploads"
)

// Config carries the request-shaping knobs of the HTTP layer.
type Config struct {
	// MaxBodyBytes bounds JSON request bodies.
	MaxBodyBytes int64

	// MaxUploadBytes bounds multipart avatar uploads.
	MaxUploadBytes int64

	// UploadDir is where avatar files land on disk. Served back to
	// clients under the /uploads/ URL prefix.
	UploadDir string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   defaultMaxBodyBytes,
		MaxUploadBytes: defaultMaxUploadBytes,
		UploadDir:      defaultUploadDir,
	}
}

// FromEnv loads Config from the environment, falling back to defaults
// for unset or malformed values.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.MaxBodyBytes = envBytesAPI("CHAT_AUTH_MAX_BODY_BYTES", cfg.MaxBodyBytes)
	cfg.MaxUploadBytes = envBytesAPI("CHAT_UPLOAD_MAX_BYTES", cfg.MaxUploadBytes)
	if v := strings.TrimSpace(os.Getenv("CHAT_UPLOAD_DIR")); v != "" {
		cfg.UploadDir = v
	}
	return cfg
}

func envBytesAPI(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
