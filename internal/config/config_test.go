package config

import (
	"testing"
	"time"

	"github.com/dgallion1/critree/internal/criteria"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DRIVER", "WORKER_COUNT", "JOB_TTL", "DEFAULT_SECTION_KIND", "PATHSTORE_URL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" || cfg.DatabaseDriver != "pgx" {
		t.Errorf("unexpected defaults: port=%q driver=%q", cfg.Port, cfg.DatabaseDriver)
	}
	if cfg.WorkerCount != 4 || cfg.JobTTL != time.Hour {
		t.Errorf("unexpected pool defaults: workers=%d ttl=%s", cfg.WorkerCount, cfg.JobTTL)
	}
	if cfg.DefaultSectionKind != criteria.Eligibility {
		t.Errorf("expected eligibility default kind, got %s", cfg.DefaultSectionKind)
	}
	if cfg.MirrorEnabled() {
		t.Error("expected mirror disabled without PATHSTORE_URL")
	}
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-2")
	t.Setenv("MAX_CONCURRENT_BUILD", "8")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("DEFAULT_SECTION_KIND", "Exclusion Criteria")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.WorkerCount != 4 {
		t.Errorf("expected negative worker count clamped to 4, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConcurrentBuild != 8 || cfg.JobTTL != 15*time.Minute {
		t.Errorf("unexpected overrides: build=%d ttl=%s", cfg.MaxConcurrentBuild, cfg.JobTTL)
	}
	if cfg.DefaultSectionKind != criteria.Exclusion {
		t.Errorf("expected exclusion, got %s", cfg.DefaultSectionKind)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{CritreeAPIKey: "k", DatabaseURL: "postgres://x", DatabaseDriver: "pgx"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"missing api key", func(c *Config) { c.CritreeAPIKey = "" }},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }},
		{"mirror without key", func(c *Config) { c.PathstoreURL = "http://ps" }},
	}
	for _, tt := range tests {
		c := valid
		tt.mod(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}
