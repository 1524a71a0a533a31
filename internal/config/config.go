package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	JWTSecret string

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// SchedulerDisabled stops the due-monitor scheduler entirely (maintenance mode).
	SchedulerDisabled bool
	// SchedulerTick is the cadence of the due-monitor scan (default 5m).
	SchedulerTick time.Duration

	// ScanWorkers is the number of concurrent scan executors per worker process (default 4).
	ScanWorkers int
	// QueueLease is the dispatch queue visibility timeout (default 5m).
	QueueLease time.Duration
	// ScanTimeout bounds one scan execution end to end (default 90s, mirroring
	// the provider-side hard limit).
	ScanTimeout time.Duration

	// SearchURL is the external search provider endpoint.
	SearchURL string
	// SearchAPIKey authenticates against the provider.
	SearchAPIKey string
	// SearchMaxAttempts bounds provider retries per scan (default 3).
	SearchMaxAttempts int
	// SearchTimeout bounds one provider call (default 30s).
	SearchTimeout time.Duration

	// ArtifactDir is where rendered report PDFs are written.
	ArtifactDir string
	// ArtifactBaseURL maps stored artifacts to their public locations.
	ArtifactBaseURL string

	// NotificationsEnabled gates outbound report notifications.
	NotificationsEnabled bool
	// NotifyWebhookURL receives report-ready notifications when enabled.
	NotifyWebhookURL string

	// ReportRetentionDays is how long reports are kept before the daily
	// cleanup removes them (default 30).
	ReportRetentionDays int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	TLSCertFile string
	TLSKeyFile  string
}

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8080"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "threatwatch"),
		DBUser: getEnv("DB_USER", "threatwatch"),
		DBPass: getEnv("DB_PASS", "threatwatch"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret: getEnv("JWT_SECRET", "supersecretkey"),
		Env:       getEnv("ENV", "dev"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SchedulerDisabled: getEnvBool("SCHEDULER_DISABLED", false),
		SchedulerTick:     getEnvDuration("SCHEDULER_TICK", 5*time.Minute),

		ScanWorkers: getEnvInt("SCAN_WORKERS", 4),
		QueueLease:  getEnvDuration("QUEUE_LEASE", 5*time.Minute),
		ScanTimeout: getEnvDuration("SCAN_TIMEOUT", 90*time.Second),

		SearchURL:         getEnv("SEARCH_URL", "http://localhost:9200/search"),
		SearchAPIKey:      getEnv("SEARCH_API_KEY", ""),
		SearchMaxAttempts: getEnvInt("SEARCH_MAX_ATTEMPTS", 3),
		SearchTimeout:     getEnvDuration("SEARCH_TIMEOUT", 30*time.Second),

		ArtifactDir:     getEnv("ARTIFACT_DIR", "./artifacts"),
		ArtifactBaseURL: getEnv("ARTIFACT_BASE_URL", "http://localhost:8080/artifacts"),

		NotificationsEnabled: getEnvBool("NOTIFICATIONS_ENABLED", false),
		NotifyWebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),

		ReportRetentionDays: getEnvInt("REPORT_RETENTION_DAYS", 30),

		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),
	}
}

// DatabaseURL returns the postgres DSN for the configured database.
func (c Config) DatabaseURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPass + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=disable"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
