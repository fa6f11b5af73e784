package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  allowed_origins: ["http://localhost:3000"]
redis:
  addr: localhost:6379
postgres:
  url: postgres://quiz@localhost/quiz
activities:
  ttl: 2m
log:
  env: production
  level: debug
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Postgres.URL == "" {
		t.Fatalf("unexpected storage sections %+v %+v", cfg.Redis, cfg.Postgres)
	}
	if cfg.Log.Env != "production" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
	if got := TTLDuration(cfg.Activities.TTL, time.Minute); got != 2*time.Minute {
		t.Fatalf("expected 2m ttl, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Server.Port != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected fallback for empty, got %v", got)
	}
	if got := TTLDuration("soon", 5*time.Minute); got != 5*time.Minute {
		t.Fatalf("expected fallback for invalid, got %v", got)
	}
}
