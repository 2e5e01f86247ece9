package config

import (
	"strings"
	"testing"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinident")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.ClinicTimezone != "America/Guayaquil" {
		t.Errorf("unexpected default timezone: %q", cfg.ClinicTimezone)
	}
	if !cfg.IsDev() {
		t.Error("expected development env by default")
	}
}

func TestValidate_RequiresSecretOutsideDev(t *testing.T) {
	cfg := &Config{Env: "production", ClinicTimezone: "America/Guayaquil"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing JWT_SECRET in production")
	}
	cfg.JWTSecret = strings.Repeat("k", 32)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ShortSecret(t *testing.T) {
	cfg := &Config{Env: "production", ClinicTimezone: "America/Guayaquil", JWTSecret: "short"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT_SECRET")
	}
}

func TestValidate_BadTimezone(t *testing.T) {
	cfg := &Config{Env: "development", ClinicTimezone: "Mars/Olympus"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestClinicLocation(t *testing.T) {
	cfg := &Config{ClinicTimezone: "America/Guayaquil"}
	loc, err := cfg.ClinicLocation()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "America/Guayaquil" {
		t.Errorf("unexpected location: %v", loc)
	}
}
