package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/circletel")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("SMTP_HOST", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.GetQuoteValidityDays() != 30 {
		t.Fatalf("expected 30 validity days, got %d", cfg.GetQuoteValidityDays())
	}
	if cfg.GetPackageCacheTTL() != 5*time.Minute {
		t.Fatalf("expected 5m cache ttl, got %s", cfg.GetPackageCacheTTL())
	}
	if cfg.GetEmailEnabled() {
		t.Fatal("expected email disabled without SMTP_HOST")
	}
	if cfg.IsMinIOEnabled() {
		t.Fatal("expected MinIO disabled without endpoint")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequired(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
}

func TestLoadRejectsWildcardCORSWithCredentials(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "*")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "true")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for wildcard CORS with credentials")
	}
}

func TestLoadRejectsNonPositiveValidity(t *testing.T) {
	setRequired(t)
	t.Setenv("QUOTE_VALIDITY_DAYS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero validity days")
	}
}
