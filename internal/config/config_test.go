package config

import (
	"os"
	"testing"
)

func TestDefaults_PassesValidation(t *testing.T) {
	if err := Defaults().validate(); err != nil {
		t.Fatalf("defaults should validate cleanly: %v", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("does/not/exist.yaml")
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected default listen addr, got %q", cfg.Listen)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/fraud.yaml"
	contents := "listen: \":9090\"\nstorage:\n  backend: sqlite\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("expected listen override, got %q", cfg.Listen)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("expected storage backend override, got %q", cfg.Storage.Backend)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FRAUD_LISTEN", ":7070")
	t.Setenv("FRAUD_RATE_LIMIT_ENABLED", "false")
	t.Setenv("FRAUD_STORAGE_BACKEND", "redis")

	cfg := Defaults()
	cfg.applyEnvOverrides()

	if cfg.Listen != ":7070" {
		t.Fatalf("expected FRAUD_LISTEN override, got %q", cfg.Listen)
	}
	if cfg.RateLimit.Enabled {
		t.Fatal("expected rate limiting disabled by env override")
	}
	if cfg.Storage.Backend != "redis" {
		t.Fatalf("expected storage backend override, got %q", cfg.Storage.Backend)
	}
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Backend = "memcached"
	if err := cfg.validate(); err == nil {
		t.Fatal("expected validation error for unknown storage backend")
	}
}

func TestValidate_RejectsNonPositiveRateLimitWhenEnabled(t *testing.T) {
	cfg := Defaults()
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.MaxRequestsPerMinute = 0
	if err := cfg.validate(); err == nil {
		t.Fatal("expected validation error for non-positive rate limit")
	}
}

func TestDebugEndpointsEnabled(t *testing.T) {
	cfg := Defaults()
	if cfg.DebugEndpointsEnabled() {
		t.Fatal("production default should not enable debug endpoints")
	}
	cfg.Environment = "development"
	if !cfg.DebugEndpointsEnabled() {
		t.Fatal("development environment should enable debug endpoints")
	}
}
