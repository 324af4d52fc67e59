package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REPLAY_API_URL", "REQUEST_TIMEOUT", "MAX_RETRIES",
		"RETRY_BACKOFF_CAP", "REQUEST_INTERVAL", "OUTPUT_DIR", "WEBHOOK_URL",
	} {
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.APIURL != "https://replay.pokemonshowdown.com/search.json" {
		t.Errorf("Unexpected default API URL: %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("Unexpected default timeout: %s", cfg.RequestTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Unexpected default retries: %d", cfg.MaxRetries)
	}
	if cfg.RetryBackoffCap != 5*time.Second {
		t.Errorf("Unexpected default backoff cap: %s", cfg.RetryBackoffCap)
	}
	if cfg.RequestInterval != time.Second {
		t.Errorf("Unexpected default request interval: %s", cfg.RequestInterval)
	}
	if cfg.OutputDir != "." {
		t.Errorf("Unexpected default output dir: %s", cfg.OutputDir)
	}
	if cfg.WebhookURL != "" {
		t.Errorf("Expected webhook to default off, got %s", cfg.WebhookURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("REPLAY_API_URL", "http://localhost:8080/search.json")
	t.Setenv("MAX_RETRIES", "5")
	t.Setenv("REQUEST_INTERVAL", "250ms")
	t.Setenv("OUTPUT_DIR", "/tmp/replays")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.APIURL != "http://localhost:8080/search.json" {
		t.Errorf("Expected API URL override, got %s", cfg.APIURL)
	}
	if cfg.MaxRetries != 5 {
		t.Errorf("Expected 5 retries, got %d", cfg.MaxRetries)
	}
	if cfg.RequestInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms interval, got %s", cfg.RequestInterval)
	}
	if cfg.OutputDir != "/tmp/replays" {
		t.Errorf("Expected output dir override, got %s", cfg.OutputDir)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("REQUEST_TIMEOUT", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Error("Expected an error for a malformed duration")
	}
}
