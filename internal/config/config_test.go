package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DATABASE_DSN", "IDENTITY_URL", "APP_ENV", "HISTORY_LIMIT", "PERSIST_WORKERS", "IDENTITY_TIMEOUT_SECONDS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "5002" {
		t.Errorf("Port = %q, want 5002", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.PersistWorkers != 8 {
		t.Errorf("PersistWorkers = %d, want 8", cfg.PersistWorkers)
	}
	if cfg.IdentityTimeout != 5 {
		t.Errorf("IdentityTimeout = %d, want 5", cfg.IdentityTimeout)
	}
	if cfg.IdentityURL == "" {
		t.Error("IdentityURL default is empty")
	}
	if cfg.DatabaseDSN == "" {
		t.Error("DatabaseDSN default is empty")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("IDENTITY_URL", "http://identity:5001")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("PERSIST_WORKERS", "2")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.Env != "prod" {
		t.Errorf("Env = %q, want prod", cfg.Env)
	}
	if cfg.IdentityURL != "http://identity:5001" {
		t.Errorf("IdentityURL = %q", cfg.IdentityURL)
	}
	if cfg.HistoryLimit != 25 {
		t.Errorf("HistoryLimit = %d, want 25", cfg.HistoryLimit)
	}
	if cfg.PersistWorkers != 2 {
		t.Errorf("PersistWorkers = %d, want 2", cfg.PersistWorkers)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "not-a-number")
	t.Setenv("PERSIST_WORKERS", "-3")

	cfg := Load()

	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want default 50", cfg.HistoryLimit)
	}
	if cfg.PersistWorkers != 8 {
		t.Errorf("PersistWorkers = %d, want default 8", cfg.PersistWorkers)
	}
}
