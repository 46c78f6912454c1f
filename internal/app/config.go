package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// CORS allow-list for the browser frontend. Also used as the default
	// WebSocket origin allow-list unless CHAT_WS_ALLOWED_ORIGINS overrides it.
	AllowedOrigins []string

	// PublicDir, when set, is served at / for the bundled frontend.
	PublicDir string

	// UploadDir holds avatar files, served under /uploads/.
	UploadDir string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CHAT_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CHAT_LOG_LEVEL", "info"),
		LogFormat: EnvString("CHAT_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CHAT_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CHAT_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CHAT_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CHAT_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("CHAT_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("CHAT_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CHAT_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CHAT_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("CHAT_READINESS_REQUIRE_DB", false),

		AllowedOrigins: EnvCSV("CHAT_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost,http://127.0.0.1"),

		PublicDir: EnvString("CHAT_PUBLIC_DIR", ""),
		UploadDir: EnvString("CHAT_UPLOAD_DIR", "uploads"),
	}
}
