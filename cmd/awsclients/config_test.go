package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig("./testdata/missing.yaml")
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if !cfg.Clock.Sync {
		t.Fatal("expected clock sync enabled by default")
	}

	if cfg.HTTP.Bind != ":9109" {
		t.Fatalf("unexpected http bind address: %q", cfg.HTTP.Bind)
	}

	if cfg.OCI.Auth != "config_file" {
		t.Fatalf("unexpected oci auth mode: %q", cfg.OCI.Auth)
	}
}

func TestLoadConfigAppliesFileOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "config.yaml")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Clients.Region != "eu-central-1" {
		t.Fatalf("expected region override, got %q", cfg.Clients.Region)
	}

	if cfg.Clients.Endpoint != "http://localhost:4566" {
		t.Fatalf("expected endpoint override, got %q", cfg.Clients.Endpoint)
	}

	if cfg.Clients.MaxAttempts != 5 || cfg.Clients.RetryMode != "adaptive" {
		t.Fatalf("unexpected retry settings: %d %q", cfg.Clients.MaxAttempts, cfg.Clients.RetryMode)
	}

	if cfg.Clients.HTTPTimeout != 15*time.Second {
		t.Fatalf("expected http timeout override, got %v", cfg.Clients.HTTPTimeout)
	}

	if cfg.Clients.UserAgent["team"] != "platform" {
		t.Fatalf("expected user agent pair, got %v", cfg.Clients.UserAgent)
	}

	if cfg.Clock.Sync {
		t.Fatal("expected clock sync disabled by file")
	}

	if cfg.HTTP.Bind != ":9200" {
		t.Fatalf("expected http bind override, got %q", cfg.HTTP.Bind)
	}

	if cfg.OCI.Region != "us-ashburn-1" {
		t.Fatalf("expected oci region override, got %q", cfg.OCI.Region)
	}

	if cfg.OCI.Profile != "ANALYTICS" {
		t.Fatalf("expected oci profile override, got %q", cfg.OCI.Profile)
	}

	defaults := cfg.defaults()
	if defaults.Region != "eu-central-1" || defaults.AppID != "inventory-sync" ||
		defaults.OCIProfile != "ANALYTICS" || defaults.OCIRegion != "us-ashburn-1" {
		t.Fatalf("unexpected factory defaults: %+v", defaults)
	}
}

func TestLoadConfigAppliesEnvOverrides(t *testing.T) {
	t.Setenv(envRegion, " ap-southeast-2 ")
	t.Setenv(envEndpoint, "http://127.0.0.1:9000")
	t.Setenv(envMaxAttempts, "7")
	t.Setenv(envRetryMode, "standard")
	t.Setenv(envHTTPTimeout, "250ms")
	t.Setenv(envAppID, "reporting")
	t.Setenv(envClockSync, "false")
	t.Setenv(envHTTPBind, " :9300 ")
	t.Setenv(envOCIRegion, "eu-frankfurt-1")
	t.Setenv(envOCIProfile, "OPS")
	t.Setenv(envOCIAuth, "instance_principal")

	cfg, err := loadConfig(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Clients.Region != "ap-southeast-2" {
		t.Fatalf("expected env override for region, got %q", cfg.Clients.Region)
	}

	if cfg.Clients.Endpoint != "http://127.0.0.1:9000" {
		t.Fatalf("expected env override for endpoint, got %q", cfg.Clients.Endpoint)
	}

	if cfg.Clients.MaxAttempts != 7 || cfg.Clients.RetryMode != "standard" {
		t.Fatalf("unexpected retry overrides: %d %q", cfg.Clients.MaxAttempts, cfg.Clients.RetryMode)
	}

	if cfg.Clients.HTTPTimeout != 250*time.Millisecond {
		t.Fatalf("expected env override for http timeout, got %v", cfg.Clients.HTTPTimeout)
	}

	if cfg.Clients.AppID != "reporting" {
		t.Fatalf("expected env override for app id, got %q", cfg.Clients.AppID)
	}

	if cfg.Clock.Sync {
		t.Fatal("expected env override to disable clock sync")
	}

	if cfg.HTTP.Bind != ":9300" {
		t.Fatalf("expected env override for http bind, got %q", cfg.HTTP.Bind)
	}

	if cfg.OCI.Region != "eu-frankfurt-1" || cfg.OCI.Profile != "OPS" || cfg.OCI.Auth != "instance_principal" {
		t.Fatalf("unexpected oci overrides: %+v", cfg.OCI)
	}
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv(envMaxAttempts, "many")
	t.Setenv(envHTTPTimeout, "soon")
	t.Setenv(envClockSync, "perhaps")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig returned error: %v", err)
	}

	if cfg.Clients.MaxAttempts != 0 {
		t.Fatalf("expected malformed max attempts to be ignored, got %d", cfg.Clients.MaxAttempts)
	}

	if cfg.Clients.HTTPTimeout != 0 {
		t.Fatalf("expected malformed timeout to be ignored, got %v", cfg.Clients.HTTPTimeout)
	}

	if !cfg.Clock.Sync {
		t.Fatal("expected malformed clock sync to keep the default")
	}
}

func TestLoadConfigReturnsDecodeError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")

	writeErr := os.WriteFile(path, []byte("clients: ["), 0o600)
	if writeErr != nil {
		t.Fatalf("write temp file: %v", writeErr)
	}

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
