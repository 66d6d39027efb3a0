package config

import (
	"strings"
	"testing"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendMemory)
	}
	if !cfg.IsDev() {
		t.Error("expected default ENV to be development")
	}
	if cfg.TokenTTLMinutes != 60 {
		t.Errorf("TokenTTLMinutes = %d, want 60", cfg.TokenTTLMinutes)
	}
}

func TestValidatePostgresRequiresURL(t *testing.T) {
	cfg := &Config{
		Env:             "development",
		StorageBackend:  BackendPostgres,
		TokenTTLMinutes: 60,
		SessionTTLHours: 24,
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("expected DATABASE_URL error, got %v", err)
	}

	cfg.DatabaseURL = "postgres://localhost/clinic"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Env:             "production",
		StorageBackend:  BackendPostgres,
		DatabaseURL:     "postgres://localhost/clinic",
		TokenTTLMinutes: 60,
		SessionTTLHours: 24,
	}

	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Errorf("expected JWT_SECRET error, got %v", err)
	}

	cfg.JWTSecret = "short"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "32 characters") {
		t.Errorf("expected secret length error, got %v", err)
	}

	cfg.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.StorageBackend = BackendMemory
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "in-memory") {
		t.Errorf("expected memory-backend refusal, got %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := &Config{
		Env:             "development",
		StorageBackend:  "sqlite",
		TokenTTLMinutes: 60,
		SessionTTLHours: 24,
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown backend")
	}
}
