package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/critree/internal/criteria"
)

type Config struct {
	Port string

	// Database
	DatabaseDriver string
	DatabaseURL    string

	// Optional pathstore mirror; disabled when PathstoreURL is empty.
	PathstoreURL    string
	PathstoreAPIKey string

	// Auth
	CritreeAPIKey string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentBuild int

	// Persistence retries
	StoreMaxRetries int
	StoreRetryDelay time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Tokenizing
	DefaultSectionKind criteria.SectionKind

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DatabaseDriver: envOr("DATABASE_DRIVER", "pgx"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),

		PathstoreURL:    os.Getenv("PATHSTORE_URL"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		CritreeAPIKey: os.Getenv("CRITREE_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentBuild: envInt("MAX_CONCURRENT_BUILD", 4),

		StoreMaxRetries: envInt("STORE_MAX_RETRIES", 3),
		StoreRetryDelay: envDuration("STORE_RETRY_DELAY", 500*time.Millisecond),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		DefaultSectionKind: criteria.ParseSectionKind(envOr("DEFAULT_SECTION_KIND", "eligibility")),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentBuild <= 0 {
		cfg.MaxConcurrentBuild = 4
	}
	if cfg.StoreMaxRetries <= 0 {
		cfg.StoreMaxRetries = 1
	}
	if cfg.StoreRetryDelay <= 0 {
		cfg.StoreRetryDelay = 500 * time.Millisecond
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.CritreeAPIKey == "" {
		return fmt.Errorf("CRITREE_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.DatabaseDriver {
	case "pgx", "postgres", "sqlite":
	default:
		return fmt.Errorf("DATABASE_DRIVER must be pgx, postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.PathstoreURL != "" && c.PathstoreAPIKey == "" {
		return fmt.Errorf("PATHSTORE_API_KEY is required when PATHSTORE_URL is set")
	}
	return nil
}

// MirrorEnabled reports whether tagged criteria are also written to pathstore.
func (c Config) MirrorEnabled() bool {
	return c.PathstoreURL != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
