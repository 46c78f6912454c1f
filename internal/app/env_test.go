package app

import (
	"testing"
	"time"
)

func TestEnvHelpersDefaults(t *testing.T) {
	t.Setenv("CHAT_TEST_STR", "")
	t.Setenv("CHAT_TEST_BOOL", "not-a-bool")
	t.Setenv("CHAT_TEST_INT", "-5")
	t.Setenv("CHAT_TEST_DUR", "soon")

	if got := EnvString("CHAT_TEST_STR", "fallback"); got != "fallback" {
		t.Fatalf("EnvString: %q", got)
	}
	if got := EnvBool("CHAT_TEST_BOOL", true); got != true {
		t.Fatalf("EnvBool: %v", got)
	}
	if got := EnvInt("CHAT_TEST_INT", 7); got != 7 {
		t.Fatalf("EnvInt: %d", got)
	}
	if got := EnvDuration("CHAT_TEST_DUR", time.Minute); got != time.Minute {
		t.Fatalf("EnvDuration: %v", got)
	}
}

func TestEnvHelpersParse(t *testing.T) {
	t.Setenv("CHAT_TEST_BOOL", "true")
	t.Setenv("CHAT_TEST_INT", "42")
	t.Setenv("CHAT_TEST_INT32", "12")
	t.Setenv("CHAT_TEST_DUR", "90s")
	t.Setenv("CHAT_TEST_CSV", " a, ,b ,")

	if got := EnvBool("CHAT_TEST_BOOL", false); !got {
		t.Fatalf("EnvBool: %v", got)
	}
	if got := EnvInt("CHAT_TEST_INT", 1); got != 42 {
		t.Fatalf("EnvInt: %d", got)
	}
	if got := EnvInt32("CHAT_TEST_INT32", 1); got != 12 {
		t.Fatalf("EnvInt32: %d", got)
	}
	if got := EnvDuration("CHAT_TEST_DUR", time.Second); got != 90*time.Second {
		t.Fatalf("EnvDuration: %v", got)
	}

	csv := EnvCSV("CHAT_TEST_CSV", "")
	if len(csv) != 2 || csv[0] != "a" || csv[1] != "b" {
		t.Fatalf("EnvCSV: %v", csv)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CHAT_HTTP_ADDR", "")
	t.Setenv("CHAT_DATABASE_URL", "")

	cfg := LoadConfig()
	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("DatabaseURL should default empty, got %q", cfg.DatabaseURL)
	}
	if len(cfg.AllowedOrigins) == 0 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins: %v", cfg.AllowedOrigins)
	}
}
